package types

import "fmt"

// Arch identifies a single CPU in a Mach-O file or a fat-binary arch-table
// entry: a (cputype, cpusubtype) pair (spec.md §3 "Architecture slice").
// Two Archs match when both cputype and the masked subtype compare equal;
// the 64-bit-ABI bit of CPU determines pointer width.
type Arch struct {
	CPU    CPU
	Sub    CPUSubtype
}

// Is64 reports whether this architecture uses the 64-bit ABI (spec.md §3
// "the 64-bit-ABI bit of the type field determines pointer width").
func (a Arch) Is64() bool { return a.CPU&cpuArch64 != 0 }

// Matches reports whether a and b name the same architecture, masking off
// the capability bits (ptr-auth ABI flags etc.) carried in the subtype.
func (a Arch) Matches(b Arch) bool {
	return a.CPU == b.CPU && (a.Sub&CpuSubtypeMask) == (b.Sub&CpuSubtypeMask)
}

// archName is a well-known (cputype, cpusubtype) -> human name entry, kept
// as a small built-in table per spec.md §9 "Deprecated host lookups":
// architecture name<->code conversion is resolved against a built-in table
// for the common cases, rather than any platform syscall lookup.
type archName struct {
	name string
	cpu  CPU
	sub  CPUSubtype
}

var archTable = []archName{
	{"x86_64", CPUAmd64, CPUSubtypeX8664All},
	{"x86_64h", CPUAmd64, CPUSubtypeX86_64H},
	{"i386", CPU386, CPUSubtypeX86Arch1},
	{"arm64", CPUArm64, CPUSubtypeArm64All},
	{"arm64e", CPUArm64, CPUSubtypeArm64E},
	{"armv4t", CPU(CPUArm), CPUSubtypeArmV4T},
	{"armv6", CPU(CPUArm), CPUSubtypeArmV6},
	{"armv5", CPU(CPUArm), CPUSubtypeArmV5Tej},
	{"armv7", CPU(CPUArm), CPUSubtypeArmV7},
	{"armv7f", CPU(CPUArm), CPUSubtypeArmV7F},
	{"armv7s", CPU(CPUArm), CPUSubtypeArmV7S},
	{"armv7k", CPU(CPUArm), CPUSubtypeArmV7K},
	{"armv6m", CPU(CPUArm), CPUSubtypeArmV6M},
	{"armv7m", CPU(CPUArm), CPUSubtypeArmV7M},
	{"armv7em", CPU(CPUArm), CPUSubtypeArmV7Em},
}

// Name returns the conventional architecture name for a ("x86_64",
// "arm64e", ...), falling back to a numeric rendering for anything not in
// the built-in table (spec.md §8 scenario 1).
func (a Arch) Name() string {
	masked := a.Sub & CpuSubtypeMask
	for _, e := range archTable {
		if e.cpu == a.CPU && (e.sub&CpuSubtypeMask) == masked {
			return e.name
		}
	}
	return fmt.Sprintf("cpu(%#x,%#x)", uint32(a.CPU), uint32(a.Sub))
}

func (a Arch) String() string { return a.Name() }

// ArchFromName resolves a conventional architecture name ("arm64",
// "armv7s", ...) to its (cputype, cpusubtype) pair. The second return
// value is false for unrecognized names (spec.md §8 scenario 1:
// `Arch::from_name("armv7s")` -> cputype=0x0C, cpusubtype=11).
func ArchFromName(name string) (Arch, bool) {
	for _, e := range archTable {
		if e.name == name {
			return Arch{CPU: e.cpu, Sub: e.sub}, true
		}
	}
	return Arch{}, false
}
