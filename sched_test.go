package delin

import (
	"testing"
	"time"
)

// --- ManualScheduler ---

func TestManualSchedulerFireOrder(t *testing.T) {
	s := &ManualScheduler{}
	var order []int
	s.Request(func() { order = append(order, 1) })
	s.Request(func() { order = append(order, 2) })
	if s.Pending() != 2 {
		t.Fatalf("pending = %d", s.Pending())
	}
	s.Fire()
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("order = %v", order)
	}
	if s.Pending() != 0 {
		t.Error("fired callbacks must not linger")
	}
}

func TestManualSchedulerCancel(t *testing.T) {
	s := &ManualScheduler{}
	ran := false
	cancel := s.Request(func() { ran = true })
	cancel()
	if s.Pending() != 0 {
		t.Errorf("pending = %d after cancel", s.Pending())
	}
	s.Fire()
	if ran {
		t.Error("canceled callback ran")
	}
	cancel() // safe to call twice
}

func TestManualSchedulerRequestDuringFire(t *testing.T) {
	s := &ManualScheduler{}
	nested := false
	s.Request(func() {
		s.Request(func() { nested = true })
	})
	s.Fire()
	if nested {
		t.Error("nested request must wait for the next Fire")
	}
	s.Fire()
	if !nested {
		t.Error("nested request never ran")
	}
}

// --- TickScheduler ---

func TestTickScheduler(t *testing.T) {
	s := &TickScheduler{}
	ran := 0
	s.Request(func() { ran++ })
	cancel := s.Request(func() { ran += 10 })
	cancel()
	s.Tick()
	if ran != 1 {
		t.Errorf("ran = %d, want 1", ran)
	}
	s.Tick() // nothing queued
	if ran != 1 {
		t.Errorf("ran = %d after empty tick", ran)
	}
}

// --- ManualClock ---

func TestManualClock(t *testing.T) {
	c := NewManualClock(time.Unix(10, 0))
	if !c.Now().Equal(time.Unix(10, 0)) {
		t.Error("start time")
	}
	c.Advance(3 * time.Second)
	if !c.Now().Equal(time.Unix(13, 0)) {
		t.Error("advance")
	}
}

// --- drawThrottle ---

func TestDrawThrottleIdleInterval(t *testing.T) {
	clock := NewManualClock(time.Unix(100, 0))
	th := drawThrottle{clock: clock}

	if !th.allow(false) {
		t.Fatal("first request always passes")
	}
	if th.allow(false) {
		t.Error("immediate repeat must be throttled")
	}
	clock.Advance(idleRedrawInterval - time.Millisecond)
	if th.allow(false) {
		t.Error("still inside the idle interval")
	}
	clock.Advance(time.Millisecond)
	if !th.allow(false) {
		t.Error("past the idle interval")
	}
}

func TestDrawThrottleActiveIntervalIsTighter(t *testing.T) {
	clock := NewManualClock(time.Unix(100, 0))
	th := drawThrottle{clock: clock}

	th.allow(true)
	clock.Advance(10 * time.Millisecond)
	// 10 ms exceeds the ~8.3 ms active interval but not the 33 ms idle one.
	if !th.allow(true) {
		t.Error("active gestures redraw at the tighter interval")
	}

	th2 := drawThrottle{clock: clock}
	th2.allow(false)
	clock.Advance(10 * time.Millisecond)
	if th2.allow(false) {
		t.Error("idle requests keep the 33 ms interval")
	}
}
