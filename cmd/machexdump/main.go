// Command machexdump extracts and renders the declared interface of a
// Mach-O binary: its Objective-C runtime metadata and Swift type
// metadata, as an Objective-C header, a Swift interface, structured
// JSON, or a DocC symbol graph (spec.md §1 "Purpose & scope").
//
// This command is the external collaborator spec.md §1 carves out of the
// core ("Command-line argument parsing ... (§6 specifies only the
// interfaces exposed to them)"): it owns argv parsing and file I/O and
// calls straight into pkg/pipeline for everything else.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/appsworld/machex"
	"github.com/appsworld/machex/pkg/pipeline"
	"github.com/appsworld/machex/pkg/visit"
	"github.com/appsworld/machex/pkg/xlog"
	"github.com/appsworld/machex/types"
)

const version = "0.1.0"

var (
	flagArch           string
	flagOutput         string
	flagDemangleStyle  string
	flagMethodStyle    string
	flagOutputStyle    string
	flagSortAlpha      bool
	flagSortByInherit  bool
	flagShowMethodAddr bool
	flagShowIvarOffset bool
	flagShowRawTypes   bool
	flagHideClasses    bool
	flagHideProtocols  bool
	flagHideStructures bool
	flagVerbose        bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "machexdump <binary>",
		Short:   "Dump the Objective-C and Swift interface of a Mach-O binary",
		Args:    cobra.ExactArgs(1),
		Version: version,
		RunE:    runDump,
	}

	rootCmd.Flags().StringVar(&flagArch, "arch", "", "architecture to select in a universal binary (e.g. arm64, x86_64)")
	rootCmd.Flags().StringVar(&flagOutput, "output", "text", "output format: text|swift|json|symbolgraph")
	rootCmd.Flags().StringVar(&flagDemangleStyle, "demangle-style", "swift", "Swift name rendering: swift|objc|none")
	rootCmd.Flags().StringVar(&flagMethodStyle, "method-style", "objc", "method rendering grammar: objc|swift")
	rootCmd.Flags().StringVar(&flagOutputStyle, "output-style", "objc", "text sink declaration grammar: objc|swift")
	rootCmd.Flags().BoolVar(&flagSortAlpha, "sort-alphabetic", false, "emit classes/protocols in name order")
	rootCmd.Flags().BoolVar(&flagSortByInherit, "sort-by-inheritance", false, "emit classes in inheritance-topological order")
	rootCmd.Flags().BoolVar(&flagShowMethodAddr, "show-method-addresses", false, "append IMP addresses to methods")
	rootCmd.Flags().BoolVar(&flagShowIvarOffset, "show-ivar-offsets", false, "append runtime offsets to ivars")
	rootCmd.Flags().BoolVar(&flagShowRawTypes, "show-raw-types", false, "append the raw encoding string as a comment")
	rootCmd.Flags().BoolVar(&flagHideClasses, "hide-classes", false, "suppress the classes/categories section")
	rootCmd.Flags().BoolVar(&flagHideProtocols, "hide-protocols", false, "suppress the protocols section")
	rootCmd.Flags().BoolVar(&flagHideStructures, "hide-structures", false, "suppress the aggregated struct header")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runDump(cmd *cobra.Command, args []string) error {
	if flagVerbose {
		xlog.SetLevel("debug")
	}

	path := args[0]
	f, closer, err := openSlice(path, flagArch)
	if err != nil {
		return err
	}
	defer closer()

	opts, err := buildOptions()
	if err != nil {
		return err
	}

	result, err := pipeline.Process(f)
	if err != nil {
		return fmt.Errorf("machexdump: %w", err)
	}

	format, err := parseFormat(flagOutput)
	if err != nil {
		return err
	}

	doc := visit.DocumentInfo{
		GeneratorName:    "machexdump",
		GeneratorVersion: version,
		ModuleName:       moduleName(path),
		Platform:         "unknown",
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
	}

	return pipeline.Emit(cmd.OutOrStdout(), result, doc, opts, format)
}

// openSlice opens path, selecting a single Mach-O slice: the named arch
// of a universal binary, the best match if archName is empty, or the
// file itself if it is a thin Mach-O (spec.md §4.2 "Fat handling").
func openSlice(path, archName string) (*machex.File, func() error, error) {
	if ff, err := machex.OpenFat(path); err == nil {
		target, ok := types.ArchFromName(archName)
		if archName != "" && !ok {
			ff.Close()
			return nil, nil, fmt.Errorf("machexdump: unknown architecture %q", archName)
		}
		// With no (or unresolved) target, BestMatch's any64/any32/first
		// fallback (spec.md §4.2, §8 scenario 2) still picks a slice.
		best, err := ff.BestMatch(target)
		if err != nil {
			ff.Close()
			return nil, nil, fmt.Errorf("machexdump: %w", err)
		}
		slice := best.File
		return slice, func() error { slice.Close(); return ff.Close() }, nil
	}

	mf, err := machex.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("machexdump: %w", err)
	}
	return mf, mf.Close, nil
}

func moduleName(path string) string {
	base := path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			base = path[i+1:]
			break
		}
	}
	return base
}

func parseFormat(s string) (pipeline.Format, error) {
	switch s {
	case "text":
		return pipeline.FormatText, nil
	case "swift":
		return pipeline.FormatSwift, nil
	case "json":
		return pipeline.FormatJSON, nil
	case "symbolgraph":
		return pipeline.FormatSymbolGraph, nil
	default:
		return 0, fmt.Errorf("machexdump: unknown output format %q", s)
	}
}

func buildOptions() (visit.Options, error) {
	opts := visit.DefaultOptions()
	opts.Arch = flagArch
	opts.ShowMethodAddresses = flagShowMethodAddr
	opts.ShowIvarOffsets = flagShowIvarOffset
	opts.ShowRawTypes = flagShowRawTypes
	opts.HideClasses = flagHideClasses
	opts.HideProtocols = flagHideProtocols
	opts.HideStructures = flagHideStructures

	switch {
	case flagSortByInherit:
		opts.Sort = visit.SortByInheritance
	case flagSortAlpha:
		opts.Sort = visit.SortAlphabetic
	default:
		opts.Sort = visit.SortSourceOrder
	}

	switch flagDemangleStyle {
	case "swift":
		opts.DemangleStyle = visit.DemangleSwift
	case "objc":
		opts.DemangleStyle = visit.DemangleObjC
	case "none":
		opts.DemangleStyle = visit.DemangleNone
	default:
		return opts, fmt.Errorf("machexdump: unknown demangle style %q", flagDemangleStyle)
	}

	switch flagMethodStyle {
	case "objc":
		opts.MethodStyle = visit.MethodStyleObjC
	case "swift":
		opts.MethodStyle = visit.MethodStyleSwift
	default:
		return opts, fmt.Errorf("machexdump: unknown method style %q", flagMethodStyle)
	}

	switch flagOutputStyle {
	case "objc":
		opts.OutputStyle = visit.OutputObjC
	case "swift":
		opts.OutputStyle = visit.OutputSwift
	default:
		return opts, fmt.Errorf("machexdump: unknown output style %q", flagOutputStyle)
	}

	return opts, nil
}
