// Package cpu states the contract for the low-level x86 register operations
// that this kernel depends on (spec.md §6: "CPU register contracts"). The
// actual register file is an external collaborator — on real hardware these
// are single instructions (MOV from/to CR0/CR2/CR3, HLT, INVLPG) implemented
// in architecture assembly, grounded on gopheros/kernel/cpu/cpu_amd64.go's
// pattern of declaring each operation as a plain Go function. Here those
// functions read and write a package-level software register file; tests
// drive it through SetFaultAddress rather than through a function-variable
// indirection.
//
// This package ships a software register file so that the rest of the
// kernel can be built and tested without a real bootloader; it is not meant
// to be read as "the" hardware implementation.
package cpu

// Registers holds the subset of the x86 control-register file that the
// paging subsystem consumes: CR0 (protection/paging enable bits), CR2 (last
// fault address) and CR3 (active page directory physical address).
type Registers struct {
	cr0, cr2, cr3 uint32
	halted        bool
}

// file is the process-wide register file. A freestanding kernel has exactly
// one CPU's worth of control registers; a single package-level instance
// mirrors that.
var file Registers

// ReadCR0 returns the current value of CR0.
func ReadCR0() uint32 { return file.cr0 }

// WriteCR0 sets CR0 to v.
func WriteCR0(v uint32) { file.cr0 = v }

// ReadCR2 returns the faulting address recorded by the last page fault.
func ReadCR2() uint32 { return file.cr2 }

// SetFaultAddress is invoked by the interrupt trampoline (an external
// collaborator) immediately before delivering a page fault, mirroring the
// CPU's own behavior of latching the faulting address into CR2.
func SetFaultAddress(addr uint32) { file.cr2 = addr }

// ReadCR3 returns the physical address of the active page directory.
func ReadCR3() uint32 { return file.cr3 }

// WriteCR3 installs pdAddr as the active page directory and implicitly
// flushes the TLB, matching real x86 semantics.
func WriteCR3(pdAddr uint32) { file.cr3 = pdAddr }

// FlushTLBEntry invalidates a single TLB entry for virtAddr. The software
// register file has no TLB to invalidate; the call exists so that callers
// written against the real contract need no change.
func FlushTLBEntry(virtAddr uint32) {}

// Halt stops instruction execution. kfmt.Panic expects this call to never
// return control to the caller; the software
// implementation parks the goroutine instead of trapping to a hypervisor.
func Halt() {
	file.halted = true
	select {}
}

// Halted reports whether Halt has been called. Exposed for tests that need
// to assert a code path reached Halt without actually blocking forever.
func Halted() bool { return file.halted }
