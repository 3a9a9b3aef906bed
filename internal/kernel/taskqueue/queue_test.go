package taskqueue

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestEnqueueRunsTaskAndResolvesFuture(t *testing.T) {
	q := New()
	var ran int32
	f := q.Enqueue("agent-1", func() { atomic.StoreInt32(&ran, 1) })
	f.Wait()
	if atomic.LoadInt32(&ran) != 1 {
		t.Fatal("task did not run")
	}
}

func TestSameAgentTasksRunInFIFOOrder(t *testing.T) {
	q := New()
	var mu sync.Mutex
	var order []int
	var futures []*Future
	for i := 0; i < 20; i++ {
		i := i
		futures = append(futures, q.Enqueue("agent-1", func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}))
	}
	for _, f := range futures {
		f.Wait()
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("order = %v, expected strictly increasing", order)
		}
	}
}

func TestDifferentAgentsRunConcurrently(t *testing.T) {
	q := New()
	release := make(chan struct{})
	blockerStarted := make(chan struct{})

	blocker := q.Enqueue("agent-A", func() {
		close(blockerStarted)
		<-release
	})

	<-blockerStarted
	select {
	case <-blocker.done:
		t.Fatal("blocker resolved too early")
	default:
	}

	other := q.Enqueue("agent-B", func() {})
	select {
	case <-other.done:
	case <-time.After(2 * time.Second):
		t.Fatal("agent-B's task never ran while agent-A was blocked")
	}

	close(release)
	blocker.Wait()
}

func TestPanickingTaskDoesNotAbortLane(t *testing.T) {
	q := New()
	first := q.Enqueue("agent-1", func() { panic("boom") })
	var secondRan int32
	second := q.Enqueue("agent-1", func() { atomic.StoreInt32(&secondRan, 1) })

	first.Wait()
	second.Wait()
	if atomic.LoadInt32(&secondRan) != 1 {
		t.Fatal("second task did not run after first panicked")
	}
}

func TestDepthReflectsPendingCount(t *testing.T) {
	q := New()
	release := make(chan struct{})
	started := make(chan struct{})
	q.Enqueue("agent-1", func() { close(started); <-release })
	<-started
	for i := 0; i < 3; i++ {
		q.Enqueue("agent-1", func() {})
	}
	if got := q.Depth("agent-1"); got != 3 {
		t.Fatalf("depth = %d, want 3", got)
	}
	close(release)
}
