package disk

import (
	"container/list"

	"github.com/gsandeep1241/SimulatedOS/sched"
)

// BlockingDisk wraps a SimpleDisk with a FIFO wait queue: instead of
// spinning on the device's ready bit, a caller waiting for the device
// parks on that queue and yields to the scheduler, per spec.md §4.4.
// BlockingDisk implements sched.ReadyPoller so the scheduler gives disk
// completions priority over an ordinary Yield dequeue.
type BlockingDisk struct {
	disk  SimpleDisk
	sched *sched.Scheduler
	waitQ *list.List
}

// NewBlockingDisk wraps disk with a wait queue driven by s.
func NewBlockingDisk(d SimpleDisk, s *sched.Scheduler) *BlockingDisk {
	bd := &BlockingDisk{disk: d, sched: s, waitQ: list.New()}
	s.RegisterPoller(bd)
	return bd
}

// waitUntilReady is the "wait for device ready" hook spec.md §4.4 says this
// type overrides: instead of spinning, it parks the currently running
// thread on the wait queue and yields, looping until the device reports
// ready.
func (bd *BlockingDisk) waitUntilReady() {
	for !bd.disk.IsReady() {
		if cur := bd.sched.Current(); cur != nil {
			bd.waitQ.PushBack(cur)
		}
		bd.sched.Yield()
	}
}

// Ready reports whether a waiter can be resumed right now: the wait queue
// must be non-empty and the device's ready bit must be set, per spec.md
// §4.4. Both conditions matter — a ready device with no one waiting has
// nothing to resume, and a non-empty queue means nothing if the device is
// still busy.
func (bd *BlockingDisk) Ready() bool {
	return bd.waitQ.Len() > 0 && bd.disk.IsReady()
}

// Resume dequeues one waiter and hands it back to the scheduler.
func (bd *BlockingDisk) Resume() {
	front := bd.waitQ.Front()
	if front == nil {
		return
	}
	bd.waitQ.Remove(front)
	bd.sched.Add(front.Value.(*sched.TCB))
}

// Read performs a blocking sector read: it waits for the device, issues
// the command, waits again for the transfer to be ready, then pulls the
// sector into a freshly allocated SectorSize buffer.
func (bd *BlockingDisk) Read(blockNo int) []byte {
	bd.waitUntilReady()
	bd.disk.IssueOperation(blockNo, OpRead)
	bd.waitUntilReady()

	buf := make([]byte, SectorSize)
	bd.disk.TransferIn(buf)
	return buf
}

// Write performs a blocking sector write of buf (which must be exactly
// SectorSize bytes) to blockNo.
func (bd *BlockingDisk) Write(blockNo int, buf []byte) {
	bd.waitUntilReady()
	bd.disk.IssueOperation(blockNo, OpWrite)
	bd.waitUntilReady()
	bd.disk.TransferOut(buf)
}
