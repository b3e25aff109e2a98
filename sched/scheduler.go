// Package sched implements the cooperative FIFO thread scheduler described
// in spec.md §4.3 (component C3): no preemption, no priorities, no time
// slicing. A thread remains runnable only by being on the ready queue or by
// being resumed from a wait queue (component C4); Yield never re-enqueues
// whichever thread was previously current.
//
// Grounded on spec.md §4.3/§8 directly — none of the surveyed repos ships a
// literal cooperative thread scheduler (gopheros has no process model yet;
// the biscuit `proc` package was retrieved as a go.mod only, without
// source). The queueing style follows
// Oichkatzelesfrettschen-biscuit/biscuit/src/fs/blk.go's BlkList_t, which
// wraps container/list for an analogous FIFO of pending block requests; the
// error and tracing idioms follow gopheros' kernel.Error/kfmt conventions
// used throughout mem/pmm and mem/vmm.
//
// On real hardware a context switch swaps stacks and registers, so a thread
// that yields resumes later exactly where it left off, and Terminate truly
// never returns to its caller (its stack is gone). This package has no
// stacks to swap: Current reports which TCB the scheduler considers
// "running" and callers are expected to act accordingly, but Go's call
// stack is unaffected by Yield/Terminate — a documented gap between the
// teaching model and what a hosted simulation can enforce.
package sched

import "container/list"

// TCB is a thread control block: the minimal state a cooperative scheduler
// needs to track one schedulable unit of work.
type TCB struct {
	Name string
}

// NewTCB creates a thread control block identified by name.
func NewTCB(name string) *TCB {
	return &TCB{Name: name}
}

// ReadyPoller is implemented by the blocking disk driver (component C4):
// Yield consults it on every call so that I/O completion takes priority
// over an ordinary dequeue, per spec.md §4.3/§4.4.
type ReadyPoller interface {
	// Ready reports whether a waiter can be resumed right now.
	Ready() bool
	// Resume dequeues one waiter and hands it to the scheduler via Add.
	Resume()
}

// Scheduler is a single ready queue of runnable threads, dispatched FIFO.
type Scheduler struct {
	ready   *list.List
	current *TCB
	pollers []ReadyPoller
}

// New creates an empty scheduler.
func New() *Scheduler {
	return &Scheduler{ready: list.New()}
}

// RegisterPoller adds p to the set of drivers consulted at the start of
// every Yield, per spec.md §4.3's "if the blocking-disk driver reports
// ready, resume one waiter from its queue first".
func (s *Scheduler) RegisterPoller(p ReadyPoller) {
	s.pollers = append(s.pollers, p)
}

// Add enqueues t at the tail of the ready queue.
func (s *Scheduler) Add(t *TCB) {
	s.ready.PushBack(t)
}

// Resume is an alias for Add: both enqueue a thread at the tail, per
// spec.md §4.3 ("resume(t) / add(t) — enqueue t at the tail").
func (s *Scheduler) Resume(t *TCB) {
	s.Add(t)
}

// Current returns the thread the scheduler last dispatched, or nil before
// the first successful Yield.
func (s *Scheduler) Current() *TCB {
	return s.current
}

// Len reports the number of threads currently waiting on the ready queue.
func (s *Scheduler) Len() int {
	return s.ready.Len()
}

// Yield gives every registered poller first crack at resuming one of its
// own waiters. If a poller reports ready, its Resume enqueues one waiter at
// the tail and Yield dispatches that waiter ahead of every thread already on
// the ready queue; otherwise Yield dequeues and dispatches the head of the
// ready queue. If the ready queue is empty, Yield returns without changing
// Current — the caller continues running, per spec.md §4.3.
func (s *Scheduler) Yield() {
	resumed := false
	for _, p := range s.pollers {
		if p.Ready() {
			p.Resume()
			resumed = true
			break
		}
	}

	next := s.ready.Front()
	if resumed {
		// Resume appended the waiter at the tail; run it first.
		next = s.ready.Back()
	}
	if next == nil {
		return
	}
	s.ready.Remove(next)
	s.current = next.Value.(*TCB)
}

// Terminate releases t's resources (clearing it as Current if it was
// running) and calls Yield on its behalf. On real hardware this never
// returns to its caller; see the package doc for why a hosted simulation
// cannot enforce that.
func (s *Scheduler) Terminate(t *TCB) {
	if s.current == t {
		s.current = nil
	}
	s.Yield()
}
