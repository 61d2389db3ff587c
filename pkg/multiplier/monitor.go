package multiplier

import (
	"sync"

	"github.com/fluxorio/blockmul/pkg/failfast"
)

// monitor serializes every access to the dispatch queue, the invocation
// table and the termination flag. It is the only shared mutable state in
// the pool.
//
// Both condition variables are woken with Signal, never Broadcast. A single
// wake does not guarantee the awaited condition still holds once the woken
// goroutine reacquires the lock (another waiter may have raced ahead), so
// every wait sits in a loop that re-checks its condition.
type monitor struct {
	mu sync.Mutex

	// jobReady is signalled once per enqueued job, and exactly workers
	// times when termination is requested
	jobReady *sync.Cond

	// jobDone is signalled once per completion report. It is shared by all
	// waiting dispatchers; see waitCompletion for the stolen-wake rule.
	jobDone *sync.Cond

	// queue holds pending jobs across all invocations, FIFO
	queue []job

	// invocations tracks completion counts per in-flight Multiply call.
	// An entry exists iff the invocation has outstanding or just-finished
	// jobs not yet acknowledged by its waiting dispatcher.
	invocations map[int64]*invocation
	nextID      int64

	// releasable counts invocations whose jobs are all done but whose
	// waiter has not yet been released. Guards the stolen-wake hand-off in
	// waitCompletion.
	releasable int

	// terminating is monotonic: set exactly once, never reset
	terminating bool

	// workers is the fixed pool size, fixing the termination wake count
	workers int

	// completedJobs counts every completion report over the pool lifetime,
	// for stats; per-invocation records are deleted on completion so this
	// total is not recoverable from them
	completedJobs int64
}

// invocation is the per-Multiply bookkeeping record
type invocation struct {
	total int
	done  int
}

func newMonitor(workers int) *monitor {
	m := &monitor{
		invocations: make(map[int64]*invocation),
		workers:     workers,
	}
	m.jobReady = sync.NewCond(&m.mu)
	m.jobDone = sync.NewCond(&m.mu)
	return m
}

// enqueue appends a job and wakes one goroutine blocked in dequeue
func (m *monitor) enqueue(j job) {
	m.mu.Lock()
	m.queue = append(m.queue, j)
	m.jobReady.Signal()
	m.mu.Unlock()
}

// dequeue blocks until a job is available or termination has been requested
// with the queue drained. ok is false only in the latter case, which tells
// the calling worker to exit.
func (m *monitor) dequeue() (j job, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for len(m.queue) == 0 && !m.terminating {
		m.jobReady.Wait()
	}

	if m.terminating && len(m.queue) == 0 {
		return job{}, false
	}

	j = m.queue[0]
	m.queue = m.queue[1:]
	if len(m.queue) == 0 {
		// Drop the drained backing array so finished invocations do not
		// pin their matrices
		m.queue = nil
	}
	return j, true
}

// registerInvocation allocates the next invocation identifier and installs
// its counters. Identifiers are never reused; int64 does not overflow at
// any realistic call rate.
func (m *monitor) registerInvocation(totalJobs int) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.invocations[id] = &invocation{total: totalJobs}
	return id
}

// reportCompletion records one finished job for the invocation and wakes
// one waiting dispatcher. The dispatcher may not have started waiting yet;
// that is fine because waitCompletion re-checks its counters before ever
// blocking, so the report cannot be lost.
func (m *monitor) reportCompletion(id int64) {
	m.mu.Lock()
	if inv, ok := m.invocations[id]; ok {
		inv.done++
		if inv.done == inv.total {
			m.releasable++
		}
	}
	m.completedJobs++
	m.jobDone.Signal()
	m.mu.Unlock()
}

// waitCompletion blocks until every job of the invocation has been reported
// done, then removes its bookkeeping entry.
//
// jobDone is shared by all waiting dispatchers, so a wake may have been
// meant for a different invocation. The loop condition keeps us from
// returning early, and a stolen wake is passed along before re-waiting so
// the waiter it was meant for is never starved. The hand-off only happens
// while some invocation is actually releasable; with none, the wake is
// dropped rather than ping-ponged between waiters that cannot proceed,
// and the report that eventually completes an invocation brings a fresh
// wake of its own.
func (m *monitor) waitCompletion(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inv, ok := m.invocations[id]
	failfast.If(ok, "wait on unknown invocation %d", id)

	for inv.done < inv.total {
		m.jobDone.Wait()
		if inv.done < inv.total && m.releasable > 0 {
			m.jobDone.Signal()
		}
	}

	m.releasable--
	delete(m.invocations, id)
}

// requestTermination sets the termination flag and issues exactly as many
// jobReady wakes as there are workers. Each worker consumes at most one
// wake before observing the flag and exiting; a worker not currently
// blocked sees the flag on its next empty-queue check without needing a
// wake at all. With single-wake semantics this count is the minimum that
// is provably sufficient.
//
// Callers must not terminate with invocations still in flight; that is a
// lifecycle-precondition violation and trips the fail-fast check.
func (m *monitor) requestTermination() {
	m.mu.Lock()
	failfast.If(len(m.invocations) == 0,
		"pool terminated with %d invocations still in flight", len(m.invocations))
	m.terminating = true
	for i := 0; i < m.workers; i++ {
		m.jobReady.Signal()
	}
	m.mu.Unlock()
}

// snapshot returns current queue depth, in-flight invocation count and the
// lifetime completed-job total
func (m *monitor) snapshot() (queued int, active int, completed int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue), len(m.invocations), m.completedJobs
}
