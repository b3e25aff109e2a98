// Package kmain wires every subsystem together in the dependency order
// spec.md §2's data-flow paragraph describes: C1 backs C2, C2 backs the
// address space C3's threads run in, C3 backs C4's wait queue, and C4 backs
// C5. Grounded on gopheros/kernel/kmain/kmain.go's single linear Kmain
// entry point.
package kmain

import (
	"github.com/gsandeep1241/SimulatedOS/disk"
	"github.com/gsandeep1241/SimulatedOS/fs"
	"github.com/gsandeep1241/SimulatedOS/kernel"
	"github.com/gsandeep1241/SimulatedOS/kernel/console"
	"github.com/gsandeep1241/SimulatedOS/kernel/irq"
	"github.com/gsandeep1241/SimulatedOS/kernel/kfmt"
	"github.com/gsandeep1241/SimulatedOS/kernel/mem"
	"github.com/gsandeep1241/SimulatedOS/mem/pmm"
	"github.com/gsandeep1241/SimulatedOS/mem/vmm"
	"github.com/gsandeep1241/SimulatedOS/sched"
)

var errKmainReturned = &kernel.Error{Module: "kmain", Message: "Kmain returned"}

const (
	// kernelPoolFrames and processPoolFrames are arbitrarily sized for a
	// teaching system; both must be multiples of 8 (mem/pmm.New's
	// requirement).
	kernelPoolFrames  = 2048
	processPoolFrames = 8192

	// sharedRegion is the identity-mapped low region every address space
	// shares: the kernel image plus the memory-mapped I/O range.
	sharedRegion = 4 * mem.MB

	// fsSizeSectors is the formatted size handed to fs.Format on first
	// boot.
	fsSizeSectors = 2048
)

// Kmain is the kernel's single entry point. It is not expected to return;
// if it does, that is itself a programmer error worth halting over.
//
//go:noinline
func Kmain() {
	kfmt.SetOutputSink(console.NewRingConsole())
	kfmt.Printf("starting kernel\n")

	kernelPool := pmm.New(0, kernelPoolFrames, 0, pmm.NeededInfoFrames(kernelPoolFrames))
	processPool := pmm.New(kernelPoolFrames, processPoolFrames, 0, pmm.NeededInfoFrames(processPoolFrames))

	vmm.InitPaging(kernelPool, processPool, sharedRegion)
	pt := vmm.New()
	pt.Load()

	irq.HandleException(irq.PageFaultException, pt.HandleFault)

	vmPool := vmm.NewVMPool(uint32(sharedRegion), uint32(sharedRegion), processPool, pt)
	_ = vmPool

	pt.EnablePaging()

	scheduler := sched.New()

	device := disk.NewDevice()
	blockingDisk := disk.NewBlockingDisk(device, scheduler)

	fs.Format(blockingDisk, fsSizeSectors)
	fsys := fs.Mount(blockingDisk)

	boot := sched.NewTCB("boot")
	scheduler.Add(boot)
	scheduler.Yield()

	fsys.CreateFile(1)
	kfmt.Printf("kernel initialized, file system mounted\n")

	kfmt.Panic(errKmainReturned)
}
