package vmm

import (
	"github.com/gsandeep1241/SimulatedOS/kernel"
	"github.com/gsandeep1241/SimulatedOS/kernel/kfmt"
	"github.com/gsandeep1241/SimulatedOS/kernel/mem"
	"github.com/gsandeep1241/SimulatedOS/mem/pmm"
)

var (
	errVMPoolFull     = &kernel.Error{Module: "vmm", Message: "VM pool region array is full"}
	errVMPoolNoRegion = &kernel.Error{Module: "vmm", Message: "release called with a start address matching no recorded region"}
)

// regionSize is sizeof(Region): two packed uint32 fields.
const regionSize = 8

// maxRegionsPerPool is PAGE_SIZE / sizeof(Region), the capacity of the
// region array that lives in a VM pool's first page.
const maxRegionsPerPool = int(mem.PageSize) / regionSize

// Region records one allocated (or, at index 0, metadata) span of a VM
// pool's virtual address range.
type Region struct {
	Start uint32
	Size  uint32
}

// VMPool tracks the virtual regions allocated within [Base, Base+Size) of
// one address space. Region index 0 is always the self-referential
// metadata region describing the pool's own first page, per spec.md §4.2.
type VMPool struct {
	base uint32
	size uint32

	framePool *pmm.FramePool
	pageTable *PageTable

	regions []Region
}

// NewVMPool creates a pool covering [base, base+size), records its own
// metadata region at index 0, and registers itself with pageTable so that
// HandleFault's legitimacy check sees it.
func NewVMPool(base, size uint32, framePool *pmm.FramePool, pageTable *PageTable) *VMPool {
	vmp := &VMPool{
		base:      base,
		size:      size,
		framePool: framePool,
		pageTable: pageTable,
		regions:   []Region{{Start: base, Size: uint32(mem.PageSize)}},
	}
	pageTable.RegisterPool(vmp)
	return vmp
}

func roundUpToPage(size uint32) uint32 {
	ps := uint32(mem.PageSize)
	return (size + ps - 1) / ps * ps
}

// Allocate reserves size bytes (rounded up to a whole number of pages)
// immediately after the last recorded region, appends it to the region
// array, and returns its starting virtual address. Halts the system if the
// region array has no room left, per spec.md §4.2.
func (vmp *VMPool) Allocate(size uint32) uint32 {
	kfmt.Assert(len(vmp.regions) < maxRegionsPerPool, errVMPoolFull)

	pages := roundUpToPage(size)
	var start uint32
	if len(vmp.regions) == 1 {
		start = vmp.base + uint32(mem.PageSize)
	} else {
		last := vmp.regions[len(vmp.regions)-1]
		start = last.Start + last.Size
	}

	vmp.regions = append(vmp.regions, Region{Start: start, Size: pages})
	return start
}

// Release finds the region starting at start, removes it by swapping with
// the last entry (mirroring spec.md §4.2's "swap with the last entry,
// decrement num_regions" rather than a shift, since order among allocated
// regions carries no meaning), and frees every page in the released range
// through the owning page table.
func (vmp *VMPool) Release(start uint32) {
	idx := -1
	for i, r := range vmp.regions {
		if r.Start == start {
			idx = i
			break
		}
	}
	kfmt.Assert(idx >= 0, errVMPoolNoRegion)

	r := vmp.regions[idx]
	last := len(vmp.regions) - 1
	vmp.regions[idx] = vmp.regions[last]
	vmp.regions = vmp.regions[:last]

	ps := uint32(mem.PageSize)
	for addr := r.Start; addr < r.Start+r.Size; addr += ps {
		vmp.pageTable.FreePage(addr)
	}
}

// IsLegitimate reports whether addr falls within the metadata region or any
// allocated region of this pool. The scan starts at index 0 so that the
// metadata page itself is a legitimate fault target, just like any other
// region; skipping it would make the pool's own bookkeeping page fault as
// illegitimate the moment anything tried to grow the region array.
func (vmp *VMPool) IsLegitimate(addr uint32) bool {
	for _, r := range vmp.regions {
		if addr >= r.Start && addr < r.Start+r.Size {
			return true
		}
	}
	return false
}

// NumRegions returns the number of live (metadata + allocated) regions.
func (vmp *VMPool) NumRegions() int {
	return len(vmp.regions)
}
