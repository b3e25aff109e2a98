package pmm

import (
	"github.com/gsandeep1241/SimulatedOS/kernel"
	"github.com/gsandeep1241/SimulatedOS/kernel/kfmt"
)

var (
	errPoolNotMultipleOf8 = &kernel.Error{Module: "pmm", Message: "frame pool size must be a multiple of 8"}
	errPoolOutOfFrames    = &kernel.Error{Module: "pmm", Message: "get_frames called with insufficient free frames"}
	errPoolNotOwner       = &kernel.Error{Module: "pmm", Message: "no frame pool owns the given frame"}
	errPoolNotHead        = &kernel.Error{Module: "pmm", Message: "release_frames called on a non-head frame"}
	errPoolNotFree        = &kernel.Error{Module: "pmm", Message: "mark_inaccessible requires a fully free range"}
)

// frameState is one of the three per-frame states spec.md §3/§4.1 defines.
type frameState uint8

const (
	stateFree frameState = iota
	stateHead
	stateBody
)

// FramePool manages a half-open range [Base, Base+N) of physical frames
// using two parallel bitmaps, exactly as spec.md §3 describes: the
// allocation bitmap (1 == free) and the head bitmap (0 == head-of-run).
type FramePool struct {
	base Frame
	n    uint32

	// allocBitmap: bit i == 1 means frame (base+i) is FREE.
	allocBitmap []byte
	// headBitmap: bit i == 0 means frame (base+i) is the head of a run.
	headBitmap []byte

	nFree uint32
}

// NeededInfoFrames returns ceil(2*n / (frame_size*8)), the number of frames
// required to hold both bitmaps for a pool of n frames (two bits per
// frame), per spec.md §4.1.
func NeededInfoFrames(n uint32) uint32 {
	const bitsPerFrame = 2
	const frameSizeBits = uint32(4096) * 8
	return (n*bitsPerFrame + frameSizeBits - 1) / frameSizeBits
}

// New constructs a frame pool covering [base, base+n). If infoBase is 0, the
// pool's own bitmaps are considered to live in the first nInfo frames of the
// pool and that prefix is pre-marked as a single allocated run. Otherwise the
// bitmaps are assumed to live outside the pool (at infoBase, tracked only
// for documentation purposes — this implementation keeps the bitmaps as
// ordinary Go slices in either case) and every frame starts FREE.
//
// n must be a multiple of 8; violating this is a programmer error and halts
// the system, per spec.md §4.1.
func New(base Frame, n uint32, infoBase Frame, nInfo uint32) *FramePool {
	kfmt.Assert(n%8 == 0, errPoolNotMultipleOf8)

	p := &FramePool{
		base:        base,
		n:           n,
		allocBitmap: newAllOnes(n),
		headBitmap:  newAllOnes(n),
		nFree:       n,
	}

	if infoBase == 0 {
		p.markRunAllocated(0, nInfo)
	}

	register(p)
	return p
}

func newAllOnes(n uint32) []byte {
	buf := make([]byte, (n+7)/8)
	for i := range buf {
		buf[i] = 0xFF
	}
	return buf
}

func getBit(bitmap []byte, i uint32) bool {
	return bitmap[i/8]&(1<<(7-(i%8))) != 0
}

func setBit(bitmap []byte, i uint32) {
	bitmap[i/8] |= 1 << (7 - (i % 8))
}

func clearBit(bitmap []byte, i uint32) {
	bitmap[i/8] &^= 1 << (7 - (i % 8))
}

// stateAt returns the state of the i'th frame relative to this pool's base.
func (p *FramePool) stateAt(i uint32) frameState {
	alloc := getBit(p.allocBitmap, i)
	head := getBit(p.headBitmap, i)
	switch {
	case alloc && head:
		return stateFree
	case !alloc && !head:
		return stateHead
	default:
		return stateBody
	}
}

// markRunAllocated clears the alloc bits of count frames starting at
// relative index start, and clears the head bit of only the first one. Used
// both by New (info-frame prefix) and by MarkInaccessible.
func (p *FramePool) markRunAllocated(start, count uint32) {
	clearBit(p.headBitmap, start)
	for i := uint32(0); i < count; i++ {
		clearBit(p.allocBitmap, start+i)
	}
	p.nFree -= count
}

// GetFrames performs a first-fit search for a run of exactly k FREE frames,
// scanning from the lowest frame number upward. If a candidate run is
// blocked before reaching k frames, the scan resumes at the blocker's
// successor rather than at the candidate's successor, per spec.md §4.1 and
// the explicit state machine called for in §9 (replacing the original
// source's byte/bit reset bug).
//
// Returns InvalidFrame if no such run exists.
func (p *FramePool) GetFrames(k uint32) Frame {
	kfmt.Assert(p.nFree >= k, errPoolOutOfFrames)
	if k == 0 {
		return InvalidFrame
	}

	var (
		candidateStart uint32
		run            uint32
		scanning       bool
	)

	for i := uint32(0); i < p.n; i++ {
		if p.stateAt(i) == stateFree {
			if !scanning {
				candidateStart = i
				scanning = true
				run = 0
			}
			run++
			if run == k {
				p.markRunAllocated(candidateStart, k)
				return p.base + Frame(candidateStart)
			}
			continue
		}

		// Blocked before reaching k: resume scanning at the blocker's
		// successor, never reconsidering the skipped prefix.
		scanning = false
		run = 0
	}

	return InvalidFrame
}

// MarkInaccessible forces the k-frame range starting at base (an absolute
// frame number) into the allocated-run state. The range must be entirely
// FREE; violating this corrupts the bitmaps, per spec.md §4.1's documented
// limitation.
func (p *FramePool) MarkInaccessible(base Frame, k uint32) {
	start := uint32(base - p.base)
	for i := uint32(0); i < k; i++ {
		kfmt.Assert(p.stateAt(start+i) == stateFree, errPoolNotFree)
	}
	p.markRunAllocated(start, k)
}

// release marks the run starting at the HEAD frame frameNo as free again:
// it sets the head bit on frameNo, then walks forward setting alloc bits on
// BODY frames, stopping at the first FREE or HEAD frame.
func (p *FramePool) release(frameNo Frame) {
	start := uint32(frameNo - p.base)
	kfmt.Assert(p.stateAt(start) == stateHead, errPoolNotHead)

	setBit(p.headBitmap, start)
	setBit(p.allocBitmap, start)
	p.nFree++

	for i := start + 1; i < p.n; i++ {
		if p.stateAt(i) != stateBody {
			break
		}
		setBit(p.allocBitmap, i)
		p.nFree++
	}
}

// NFree returns the number of currently free frames in this pool.
func (p *FramePool) NFree() uint32 {
	return p.nFree
}

// Base returns the first frame number managed by this pool.
func (p *FramePool) Base() Frame {
	return p.base
}

// N returns the number of frames managed by this pool.
func (p *FramePool) N() uint32 {
	return p.n
}

// contains reports whether frameNo falls within this pool's range.
func (p *FramePool) contains(frameNo Frame) bool {
	return frameNo >= p.base && frameNo < p.base+Frame(p.n)
}

// ReleaseFrames locates the pool that owns frameNo by walking the sorted
// pool registry and releases the run starting at frameNo. It is a
// programmer error to release a frame no pool owns, or one that is not
// currently a HEAD frame; both halt the system per spec.md §4.1/§7.
func ReleaseFrames(frameNo Frame) {
	p := ownerOf(frameNo)
	kfmt.Assert(p != nil, errPoolNotOwner)
	p.release(frameNo)
}
