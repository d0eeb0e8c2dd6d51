// Package pipeline wires the per-component processors and the visitor
// boundary together into the handful of calls spec.md §6 names as the
// core's external interface: process_objc, process_swift, visit. It owns
// no parsing logic of its own -- it is the feed-forward glue spec.md §2
// describes ("(5)/(6) draw on (7)/(8)/(9); (10) consumes the results").
package pipeline

import (
	"fmt"
	"io"

	"github.com/appsworld/machex/pkg/objc"
	"github.com/appsworld/machex/pkg/registry"
	"github.com/appsworld/machex/pkg/swiftmeta"
	"github.com/appsworld/machex/pkg/visit"
	"github.com/appsworld/machex/pkg/visit/sink/jsonsink"
	"github.com/appsworld/machex/pkg/visit/sink/swiftsink"
	"github.com/appsworld/machex/pkg/visit/sink/symbolgraph"
	"github.com/appsworld/machex/pkg/visit/sink/text"
)

// Source is the subset of *machex.File a full process_objc + process_swift
// + visit run needs. It embeds the narrower Source interfaces pkg/objc
// and pkg/swiftmeta each declare for themselves, so this package never
// needs to know about the root package's concrete *File type.
type Source interface {
	objc.Source
	swiftmeta.Source
}

// Format selects which of the four sinks spec.md §6 "Output sinks" names
// drives emission.
type Format int

const (
	FormatText Format = iota
	FormatSwift
	FormatJSON
	FormatSymbolGraph
)

// Result bundles the two processed models plus the shared registry
// Context an emission pass reads from (structures, method signatures,
// caches) -- everything a caller needs either to drive visit.Walk itself
// or to inspect the models directly (e.g. for a -json-only dump that
// skips the visitor).
type Result struct {
	ObjC  *objc.Model
	Swift *swiftmeta.Model
	Ctx   *registry.Context
	Model *visit.Model
}

// Process runs process_objc and process_swift over src, sharing one
// registry.Context between them (spec.md §9 "Global state -> scoped
// context": a fresh Context per run, not per component).
func Process(src Source) (*Result, error) {
	ctx := registry.NewContext()

	objcProc := objc.NewProcessor(src, ctx)
	objcModel, err := objcProc.Process()
	if err != nil {
		return nil, fmt.Errorf("pipeline: process_objc: %w", err)
	}

	swiftProc := swiftmeta.NewProcessor(src, ctx, objcModel)
	swiftModel, err := swiftProc.Process()
	if err != nil {
		return nil, fmt.Errorf("pipeline: process_swift: %w", err)
	}

	return &Result{
		ObjC:  objcModel,
		Swift: swiftModel,
		Ctx:   ctx,
		Model: &visit.Model{ObjC: objcModel, Swift: swiftModel, Structures: ctx.Structures},
	}, nil
}

// Emit drives the visitor over r.Model using the sink named by format,
// writing to w (spec.md §6 "visit(model, sink, options)").
func Emit(w io.Writer, r *Result, doc visit.DocumentInfo, opts visit.Options, format Format) error {
	if r.ObjC != nil {
		doc.SwiftABIVersion = r.ObjC.SwiftABIVersion
	}
	switch format {
	case FormatText:
		visit.Walk(r.Model, text.New(w, r.Ctx.Structures, opts), doc, opts)
	case FormatSwift:
		visit.Walk(r.Model, swiftsink.New(w, r.Ctx.Structures, opts), doc, opts)
	case FormatJSON:
		visit.Walk(r.Model, jsonsink.New(w, opts), doc, opts)
	case FormatSymbolGraph:
		visit.Walk(r.Model, symbolgraph.New(w, opts), doc, opts)
	default:
		return fmt.Errorf("pipeline: unknown output format %d", format)
	}
	return nil
}
