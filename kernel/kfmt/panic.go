package kfmt

import (
	"github.com/gsandeep1241/SimulatedOS/kernel"
	"github.com/gsandeep1241/SimulatedOS/kernel/cpu"
)

// cpuHaltFn is overridden by tests so that Panic/Assert can be exercised
// without actually stopping the test binary.
var cpuHaltFn = cpu.Halt

// SetHaltHookForTest overrides the function Panic calls to halt the CPU.
// Passing nil restores cpu.Halt. Packages outside kfmt that need to assert
// an Assert/Panic call fired without hanging their test binary in cpu.Halt's
// infinite select use this instead of reaching into the unexported
// cpuHaltFn var directly.
func SetHaltHookForTest(fn func()) {
	if fn == nil {
		cpuHaltFn = cpu.Halt
		return
	}
	cpuHaltFn = fn
}

// Panic prints the supplied error (if any) to the console and halts the
// CPU. Panic never returns.
func Panic(err *kernel.Error) {
	Printf("\n-----------------------------------\n")
	if err != nil {
		Printf("[%s] unrecoverable error: %s\n", err.Module, err.Message)
	}
	Printf("*** kernel panic: system halted ***")
	Printf("\n-----------------------------------\n")

	cpuHaltFn()
}

// Assert implements the external "assert macro" collaborator named in
// spec.md §1: every precondition violation that this kernel treats as
// programmer error (double free, releasing a non-head frame, a VM pool
// overflow, a page fault in an illegitimate region, ...) is reported this
// way per spec.md §7's "assert-and-halt" discipline. Assert returns
// normally when cond is true; it never returns when cond is false.
func Assert(cond bool, err *kernel.Error) {
	if cond {
		return
	}
	Panic(err)
}
