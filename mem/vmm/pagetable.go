package vmm

import (
	"sync"

	"github.com/gsandeep1241/SimulatedOS/kernel"
	"github.com/gsandeep1241/SimulatedOS/kernel/cpu"
	"github.com/gsandeep1241/SimulatedOS/kernel/irq"
	"github.com/gsandeep1241/SimulatedOS/kernel/kfmt"
	"github.com/gsandeep1241/SimulatedOS/kernel/mem"
	"github.com/gsandeep1241/SimulatedOS/mem/pmm"
)

var (
	errFaultNotLegitimate = &kernel.Error{Module: "vmm", Message: "page fault address is not claimed by any registered VM pool"}
	errFaultUnexplained   = &kernel.Error{Module: "vmm", Message: "page fault on an already-present page table entry"}
	errPagingNotInit      = &kernel.Error{Module: "vmm", Message: "New called before InitPaging wired the frame pools"}

	// CR0PagingBit is the control-register bit EnablePaging sets.
	CR0PagingBit uint32 = 1 << 31
)

var (
	initOnce    sync.Once
	kernelPool  *pmm.FramePool
	processPool *pmm.FramePool
	sharedSize  mem.Size
)

// InitPaging wires in the two frame pools this package allocates from (the
// kernel pool backs the bootstrap directory and identity-mapped low region;
// the process pool backs every fault-driven allocation) and the size of
// that identity-mapped region. It is idempotent: only the first call takes
// effect, per spec.md §4.2.
func InitPaging(kp, pp *pmm.FramePool, shared mem.Size) {
	initOnce.Do(func() {
		kernelPool = kp
		processPool = pp
		sharedSize = shared
	})
}

// resetPaging undoes InitPaging so that package tests can exercise it
// against a fresh pair of frame pools; production code never calls this.
func resetPaging() {
	initOnce = sync.Once{}
	kernelPool = nil
	processPool = nil
	sharedSize = 0
}

// table is the 1024-entry content of one page directory or page table.
type table [mem.EntriesPerTable]pte

// PageTable is one address space's page directory, together with the
// in-memory content of every page table it currently references and the VM
// pools registered against it for fault legitimacy checks.
type PageTable struct {
	dirFrame pmm.Frame
	dir      *table
	tables   [mem.EntriesPerTable]*table

	pools   []*VMPool
	enabled bool
}

// New allocates a directory frame and an identity-mapping page table frame
// from the kernel pool, installs PTE[i] = (i*4KiB)|present|writable for
// every page of the shared (identity-mapped) region, marks PDE[0] present
// and pointing at that table, leaves every other PDE not-present
// (value 0x2, matching spec.md's "R/W but present-bit clear"), and installs
// the recursive self-mapping at PDE[1023].
//
// InitPaging must have been called first; calling New before that is a
// programmer error and halts the system.
func New() *PageTable {
	kfmt.Assert(kernelPool != nil, errPagingNotInit)

	idFrame := kernelPool.GetFrames(1)
	idTable := &table{}
	nPages := uint32(sharedSize) / uint32(mem.PageSize)
	for i := uint32(0); i < nPages && i < mem.EntriesPerTable; i++ {
		idTable[i] = newPTE(pmm.Frame(i), FlagPresent|FlagWritable)
	}

	dirFrame := kernelPool.GetFrames(1)
	dir := &table{}
	dir[0] = newPTE(idFrame, FlagPresent|FlagWritable)
	for i := 1; i < mem.RecursiveSlot; i++ {
		dir[i] = pte(FlagWritable)
	}
	dir[mem.RecursiveSlot] = newPTE(dirFrame, FlagPresent|FlagWritable)

	pt := &PageTable{dirFrame: dirFrame, dir: dir}
	pt.tables[0] = idTable
	return pt
}

// Load writes this address space's directory frame to the CPU's
// address-space register (CR3).
func (pt *PageTable) Load() {
	cpu.WriteCR3(pt.dirFrame.Address())
}

// EnablePaging sets the paging-enable control bit and marks this as the
// active address space for fault handling.
func (pt *PageTable) EnablePaging() {
	cpu.WriteCR0(cpu.ReadCR0() | CR0PagingBit)
	pt.enabled = true
}

// RegisterPool appends vmp to this address space's list of VM pools,
// consulted by HandleFault's legitimacy check.
func (pt *PageTable) RegisterPool(vmp *VMPool) {
	pt.pools = append(pt.pools, vmp)
}

// decompose splits a virtual address into its directory index and table
// index, per spec.md §4.2 step 3; the page offset is not returned.
func decompose(addr uint32) (dirIdx, tabIdx uint32) {
	return addr >> (mem.PageShift + mem.PTEBits), (addr >> mem.PageShift) & (mem.EntriesPerTable - 1)
}

// FreePage unmaps virt from this address space and flushes the TLB by
// reloading CR3. It does not release the underlying physical frame: the
// frame stays allocated in its pool after the page is unmapped, a leak
// spec.md §7 accepts rather than papers over.
func (pt *PageTable) FreePage(virt uint32) {
	dirIdx, tabIdx := decompose(virt)
	if tbl := pt.tables[dirIdx]; tbl != nil {
		tbl[tabIdx] = pte(FlagWritable)
	}
	pt.Load()
}

// legitimate reports whether addr is claimed by any VM pool registered
// against this address space.
func (pt *PageTable) legitimate(addr uint32) bool {
	for _, p := range pt.pools {
		if p.IsLegitimate(addr) {
			return true
		}
	}
	return false
}

// HandleFault is the page-fault handler: it reads the faulting address from
// the CPU, verifies legitimacy against the registered VM pools, and
// lazily installs whatever is missing — a page table, a page, or neither,
// in which case the fault is unexplained and halts the system.
func (pt *PageTable) HandleFault(regs *irq.Regs) {
	addr := cpu.ReadCR2()
	kfmt.Assert(pt.legitimate(addr), errFaultNotLegitimate)

	dirIdx, tabIdx := decompose(addr)

	if !pt.dir[dirIdx].HasFlags(FlagPresent) {
		tableFrame := processPool.GetFrames(1)
		tbl := &table{}
		for i := range tbl {
			tbl[i] = pte(FlagWritable)
		}
		pt.tables[dirIdx] = tbl
		pt.dir[dirIdx] = newPTE(tableFrame, FlagPresent|FlagWritable)

		pageFrame := processPool.GetFrames(1)
		tbl[tabIdx] = newPTE(pageFrame, FlagPresent|FlagWritable)
		return
	}

	tbl := pt.tables[dirIdx]
	kfmt.Assert(!tbl[tabIdx].HasFlags(FlagPresent), errFaultUnexplained)

	pageFrame := processPool.GetFrames(1)
	tbl[tabIdx] = newPTE(pageFrame, FlagPresent|FlagWritable)
}
