// Package pmm implements the contiguous physical frame allocator described
// in spec.md §3/§4.1 (component C1): a half-open range of frames tracked by
// two parallel bitmaps (allocation + head), organized into a registry of
// pools sorted by base frame number.
//
// Grounded on gopheros/kernel/mem/pmm/frame.go (the Frame type) and
// gopheros/kernel/mem/pmm/allocator/bitmap_allocator.go (bitmap layout and
// per-frame bookkeeping), generalized to the two-bitmap HEAD/BODY/FREE state
// machine spec.md requires.
package pmm

import "github.com/gsandeep1241/SimulatedOS/kernel/mem"

// Frame identifies a physical 4 KiB page by its absolute (not pool-relative)
// frame number.
type Frame uint32

// InvalidFrame is returned by GetFrames when no suitable run of frames is
// available.
const InvalidFrame = Frame(0)

// Valid reports whether f is usable, i.e. not the InvalidFrame sentinel.
func (f Frame) Valid() bool {
	return f != InvalidFrame
}

// Address returns the physical byte address of the start of this frame.
func (f Frame) Address() uint32 {
	return uint32(f) << mem.PageShift
}

// FrameFromAddress returns the frame that contains the given physical
// address.
func FrameFromAddress(addr uint32) Frame {
	return Frame(addr >> mem.PageShift)
}
