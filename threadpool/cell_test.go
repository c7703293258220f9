package threadpool

import (
	"fmt"
	"testing"
	"time"
)

func noop(any) {}

// Test: a broadcast with nothing to do does not release a waiting worker
func TestCellSpuriousWakeup(t *testing.T) {
	c := newStateCell()

	got := make(chan *task, 1)
	go func() {
		tk, _, ok := c.next()
		if !ok {
			tk = nil
		}
		got <- tk
	}()

	// Wake the waiter without changing the predicate.
	time.Sleep(10 * time.Millisecond)
	c.mu.Lock()
	c.cond.Broadcast()
	c.mu.Unlock()

	select {
	case <-got:
		t.Fatal("next() returned without work or shutdown")
	case <-time.After(50 * time.Millisecond):
	}

	admitted, _, _ := c.admit(noop, "x")
	select {
	case tk := <-got:
		if tk != admitted {
			t.Fatalf("next() = %v, want the admitted task", tk)
		}
	case <-time.After(time.Second):
		t.Fatal("next() did not return after admit")
	}
}

// Test: admit assigns increasing IDs and rejects once shutdown has begun
func TestCellAdmit(t *testing.T) {
	c := newStateCell()

	first, depth, st := c.admit(noop, 1)
	if first == nil || st != Online || depth != 1 {
		t.Fatalf("admit() = %v, %d, %v", first, depth, st)
	}
	second, depth, _ := c.admit(noop, 2)
	if second.id <= first.id || depth != 2 {
		t.Fatalf("ids %d then %d, depth %d", first.id, second.id, depth)
	}

	if _, ok := c.transition(SoftShutdown); !ok {
		t.Fatal("transition from online should succeed")
	}

	rejected, depth, st := c.admit(noop, 3)
	if rejected != nil {
		t.Fatal("admit() after shutdown should reject")
	}
	if st != SoftShutdown || depth != 2 {
		t.Errorf("rejection reported state %v depth %d", st, depth)
	}
}

// Test: only the first transition wins
func TestCellTransitionOnce(t *testing.T) {
	c := newStateCell()

	if from, ok := c.transition(HardShutdown); !ok || from != Online {
		t.Fatalf("first transition = %v, %v", from, ok)
	}
	if from, ok := c.transition(SoftShutdown); ok || from != HardShutdown {
		t.Fatalf("second transition = %v, %v", from, ok)
	}
	if st, _ := c.snapshot(); st != HardShutdown {
		t.Errorf("state = %v, want hard_shutdown", st)
	}
}

// Test: escalation only turns a soft shutdown into a hard one
func TestCellEscalate(t *testing.T) {
	c := newStateCell()
	if c.escalate() {
		t.Fatal("escalate() on an online pool should fail")
	}

	var depths []int
	c.observe = func(depth int) { depths = append(depths, depth) }
	for i := 0; i < 3; i++ {
		c.admit(noop, i)
	}
	c.transition(SoftShutdown)
	if _, _, ok := c.next(); !ok {
		t.Fatal("next() during soft shutdown should hand out a task")
	}

	if !c.escalate() {
		t.Fatal("escalate() from soft shutdown should succeed")
	}
	if c.escalate() {
		t.Error("escalate() twice should fail")
	}
	if _, depth, ok := c.next(); ok || depth != 2 {
		t.Errorf("next() after escalate = ok %v depth %d, want stop with 2 queued", ok, depth)
	}
	c.close()

	if fmt.Sprint(depths) != "[1 2 3 2 0]" {
		t.Errorf("observed depths %v, want [1 2 3 2 0]", depths)
	}
}

// Test: soft shutdown hands out the remaining tasks, then stops
func TestCellSoftDrain(t *testing.T) {
	c := newStateCell()
	for i := 0; i < 3; i++ {
		c.admit(noop, i)
	}
	c.transition(SoftShutdown)

	for i := 0; i < 3; i++ {
		tk, _, ok := c.next()
		if !ok || tk.arg != i {
			t.Fatalf("next() #%d = %v, %v", i, tk, ok)
		}
	}
	if _, _, ok := c.next(); ok {
		t.Error("next() on drained soft shutdown should stop the worker")
	}
}

// Test: hard shutdown stops workers even with tasks queued
func TestCellHardStop(t *testing.T) {
	c := newStateCell()
	for i := 0; i < 3; i++ {
		c.admit(noop, i)
	}
	c.transition(HardShutdown)

	if _, depth, ok := c.next(); ok || depth != 3 {
		t.Fatalf("next() = ok %v depth %d, want stop with 3 queued", ok, depth)
	}

	rest := c.close()
	if len(rest) != 3 {
		t.Fatalf("close() returned %d tasks, want 3", len(rest))
	}
	for i, tk := range rest {
		if tk.arg != i {
			t.Errorf("rest[%d].arg = %v, want %d", i, tk.arg, i)
		}
	}
	if st, pending := c.snapshot(); st != Offline || pending != 0 {
		t.Errorf("after close: %v with %d pending", st, pending)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Online, "online"},
		{SoftShutdown, "soft_shutdown"},
		{HardShutdown, "hard_shutdown"},
		{Offline, "offline"},
		{State(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}

	if WorkerRunning.String() != "running" || WorkerWaiting.String() != "waiting" {
		t.Error("unexpected WorkerState strings")
	}
}
