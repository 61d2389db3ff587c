package multiplier

import (
	"testing"
	"time"
)

func TestMonitor_DequeueFIFO(t *testing.T) {
	m := newMonitor(1)

	for i := 0; i < 3; i++ {
		m.enqueue(job{blockRow: i})
	}

	for i := 0; i < 3; i++ {
		j, ok := m.dequeue()
		if !ok {
			t.Fatalf("dequeue() ok = false, want job %d", i)
		}
		if j.blockRow != i {
			t.Errorf("dequeue() returned block %d, want %d (FIFO order)", j.blockRow, i)
		}
	}
}

func TestMonitor_DequeueBlocksUntilEnqueue(t *testing.T) {
	m := newMonitor(1)

	got := make(chan job)
	go func() {
		j, ok := m.dequeue()
		if !ok {
			t.Error("dequeue() ok = false, want a job")
		}
		got <- j
	}()

	// The consumer must still be blocked with nothing enqueued
	select {
	case <-got:
		t.Fatal("dequeue() returned before any job was enqueued")
	case <-time.After(50 * time.Millisecond):
	}

	m.enqueue(job{blockCol: 7})

	select {
	case j := <-got:
		if j.blockCol != 7 {
			t.Errorf("dequeue() returned block col %d, want 7", j.blockCol)
		}
	case <-time.After(time.Second):
		t.Fatal("dequeue() did not wake after enqueue")
	}
}

func TestMonitor_TerminationWakesAllWorkers(t *testing.T) {
	const workers = 8
	m := newMonitor(workers)

	exited := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		go func() {
			if _, ok := m.dequeue(); ok {
				t.Error("dequeue() ok = true, want false after termination")
			}
			exited <- struct{}{}
		}()
	}

	// Let every worker reach its wait
	time.Sleep(50 * time.Millisecond)
	m.requestTermination()

	for i := 0; i < workers; i++ {
		select {
		case <-exited:
		case <-time.After(time.Second):
			t.Fatalf("only %d of %d blocked workers exited after termination", i, workers)
		}
	}
}

func TestMonitor_TerminationDrainsQueueFirst(t *testing.T) {
	m := newMonitor(1)

	m.enqueue(job{blockRow: 0})
	m.enqueue(job{blockRow: 1})
	m.requestTermination()

	for i := 0; i < 2; i++ {
		j, ok := m.dequeue()
		if !ok {
			t.Fatalf("dequeue() ok = false with %d jobs still queued", 2-i)
		}
		if j.blockRow != i {
			t.Errorf("dequeue() returned block %d, want %d", j.blockRow, i)
		}
	}

	if _, ok := m.dequeue(); ok {
		t.Error("dequeue() ok = true on a drained terminating queue")
	}
}

func TestMonitor_RegisterInvocation_MonotonicIDs(t *testing.T) {
	m := newMonitor(1)

	prev := int64(-1)
	for i := 0; i < 5; i++ {
		id := m.registerInvocation(1)
		if id <= prev {
			t.Errorf("registerInvocation() id = %d, want > %d", id, prev)
		}
		prev = id

		m.reportCompletion(id)
		m.waitCompletion(id)
	}
}

func TestMonitor_ReportBeforeWait(t *testing.T) {
	m := newMonitor(1)

	id := m.registerInvocation(2)
	m.reportCompletion(id)
	m.reportCompletion(id)

	// All reports landed before the dispatcher started waiting; the
	// re-check in waitCompletion must return without blocking
	done := make(chan struct{})
	go func() {
		m.waitCompletion(id)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waitCompletion() blocked even though all jobs were already reported")
	}

	if _, active, _ := m.snapshot(); active != 0 {
		t.Errorf("invocation table has %d entries after completion, want 0", active)
	}
}

func TestMonitor_WaitCompletion_SharedWakeChannel(t *testing.T) {
	m := newMonitor(2)

	first := m.registerInvocation(1)
	second := m.registerInvocation(2)

	firstDone := make(chan struct{})
	secondDone := make(chan struct{})
	go func() {
		m.waitCompletion(first)
		close(firstDone)
	}()
	go func() {
		m.waitCompletion(second)
		close(secondDone)
	}()
	time.Sleep(50 * time.Millisecond)

	// Completing the second invocation's first job wakes one waiter; if
	// the wake lands on the wrong invocation it must be passed along, and
	// neither waiter may be released yet on its own account
	m.reportCompletion(second)

	select {
	case <-firstDone:
		t.Fatal("first invocation released before any of its jobs completed")
	case <-secondDone:
		t.Fatal("second invocation released with one of two jobs outstanding")
	case <-time.After(50 * time.Millisecond):
	}

	m.reportCompletion(first)
	select {
	case <-firstDone:
	case <-time.After(time.Second):
		t.Fatal("first invocation's waiter never released")
	}

	m.reportCompletion(second)
	select {
	case <-secondDone:
	case <-time.After(time.Second):
		t.Fatal("second invocation's waiter never released")
	}
}

func TestMonitor_CompletedJobsAccounting(t *testing.T) {
	m := newMonitor(1)

	id := m.registerInvocation(3)
	for i := 0; i < 3; i++ {
		m.reportCompletion(id)
	}
	m.waitCompletion(id)

	_, active, completed := m.snapshot()
	if active != 0 {
		t.Errorf("active invocations = %d, want 0", active)
	}
	if completed != 3 {
		t.Errorf("completed jobs = %d, want 3", completed)
	}
}

func TestMonitor_TerminationWithInFlightInvocationPanics(t *testing.T) {
	m := newMonitor(1)
	m.registerInvocation(4)

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("requestTermination() with an in-flight invocation should panic")
		}
	}()
	m.requestTermination()
}
