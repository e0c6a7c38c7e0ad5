package delin

import "time"

// Clock provides the current time. Injected so gesture timestamps and the
// redraw throttle are deterministic under test.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock is a settable Clock for tests.
type ManualClock struct {
	t time.Time
}

// NewManualClock creates a clock starting at the given time.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{t: start}
}

// Now returns the clock's current time.
func (c *ManualClock) Now() time.Time { return c.t }

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// CancelFunc cancels a pending frame callback. Safe to call more than once.
type CancelFunc func()

// FrameScheduler schedules a callback for the next frame. Production
// schedulers run callbacks from the host game loop; the manual scheduler
// fires them explicitly so stroke and ghost rendering can be driven without
// a real display loop.
type FrameScheduler interface {
	Request(fn func()) CancelFunc
}

// ManualScheduler queues frame callbacks until Fire is called. For tests.
type ManualScheduler struct {
	pending []*manualRequest
}

type manualRequest struct {
	fn       func()
	canceled bool
}

// Request queues fn for the next Fire.
func (s *ManualScheduler) Request(fn func()) CancelFunc {
	req := &manualRequest{fn: fn}
	s.pending = append(s.pending, req)
	return func() { req.canceled = true }
}

// Pending returns the number of queued, non-canceled callbacks.
func (s *ManualScheduler) Pending() int {
	n := 0
	for _, req := range s.pending {
		if !req.canceled {
			n++
		}
	}
	return n
}

// Fire runs all queued callbacks in request order. Callbacks requested
// during Fire run on the next Fire.
func (s *ManualScheduler) Fire() {
	pending := s.pending
	s.pending = nil
	for _, req := range pending {
		if !req.canceled {
			req.fn()
		}
	}
}

// TickScheduler runs callbacks at the start of the host's next Update tick.
// Attach its Tick method to the game loop.
type TickScheduler struct {
	pending []*manualRequest
}

// Request queues fn for the next Tick.
func (s *TickScheduler) Request(fn func()) CancelFunc {
	req := &manualRequest{fn: fn}
	s.pending = append(s.pending, req)
	return func() { req.canceled = true }
}

// Tick runs all queued callbacks. Call once per host frame.
func (s *TickScheduler) Tick() {
	pending := s.pending
	s.pending = nil
	for _, req := range pending {
		if !req.canceled {
			req.fn()
		}
	}
}

// Redraw intervals: ~120 Hz while a gesture is active, 30 Hz idle.
const (
	activeRedrawInterval = 8300 * time.Microsecond
	idleRedrawInterval   = 33 * time.Millisecond
)

// drawThrottle coalesces redraw requests so at most one fires per interval.
// The interval tightens while a gesture is active.
type drawThrottle struct {
	clock Clock
	last  time.Time
}

// allow reports whether a redraw may fire now, and records the time if so.
func (t *drawThrottle) allow(active bool) bool {
	interval := idleRedrawInterval
	if active {
		interval = activeRedrawInterval
	}
	now := t.clock.Now()
	if !t.last.IsZero() && now.Sub(t.last) < interval {
		return false
	}
	t.last = now
	return true
}
