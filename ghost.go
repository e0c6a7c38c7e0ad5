package delin

import "time"

// sliceToleranceFactor scales the slice spacing into the matching tolerance
// for ghost visibility: a ghost shows in a sibling viewport when the slice
// Z values differ by less than 40% of the spacing.
const sliceToleranceFactor = 0.4

// GhostStroke is the non-authoritative preview of an in-progress stroke,
// broadcast so sibling viewports can render concurrent edits. It carries no
// contour state of its own; the authoritative edit always flows through the
// action sink.
type GhostStroke struct {
	SourceViewport string
	Tool           ToolType
	StructureID    string
	Color          Color
	SliceZ         float64
	// Points are the owner's screen-pixel samples; PatientPoints the same
	// samples in patient mm, which is what siblings project into their own
	// view.
	Points        []Vec2
	PatientPoints []Vec3
	Mode          Mode
	BrushRadius   float64
	UpdatedAt     time.Time
}

// GhostEventKind distinguishes feed notifications.
type GhostEventKind uint8

const (
	GhostBegin  GhostEventKind = iota // first sample of a gesture
	GhostUpdate                       // subsequent samples
	GhostEnd                          // gesture finished or canceled
)

// GhostEvent is one feed notification.
type GhostEvent struct {
	Kind   GhostEventKind
	Stroke GhostStroke
}

type ghostHandler struct {
	id uint32
	fn func(GhostEvent)
}

// GhostHandle allows removing a registered ghost subscriber.
type GhostHandle struct {
	id   uint32
	feed *GhostFeed
}

// Remove unregisters this subscriber so it no longer fires.
func (h GhostHandle) Remove() {
	if h.feed == nil {
		return
	}
	s := h.feed.handlers
	for i := range s {
		if s[i].id == h.id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = ghostHandler{}
			h.feed.handlers = s[:len(s)-1]
			return
		}
	}
}

// GhostFeed broadcasts in-progress strokes across viewports. Write-one,
// read-many: only the owning viewport updates its own entry, and at most
// one entry exists per owner. All access happens on the UI goroutine.
type GhostFeed struct {
	active   map[string]*GhostStroke // by source viewport id
	handlers []ghostHandler
	nextID   uint32
	clock    Clock
}

// NewGhostFeed creates an empty feed.
func NewGhostFeed(clock Clock) *GhostFeed {
	if clock == nil {
		clock = SystemClock{}
	}
	return &GhostFeed{
		active: make(map[string]*GhostStroke),
		clock:  clock,
	}
}

// OnGhost registers a subscriber for begin/update/end events.
func (f *GhostFeed) OnGhost(fn func(GhostEvent)) GhostHandle {
	f.nextID++
	f.handlers = append(f.handlers, ghostHandler{id: f.nextID, fn: fn})
	return GhostHandle{id: f.nextID, feed: f}
}

// Begin publishes the first sample of a gesture. Any stale entry for the
// same owner is replaced silently.
func (f *GhostFeed) Begin(g GhostStroke) {
	g.UpdatedAt = f.clock.Now()
	f.active[g.SourceViewport] = &g
	f.emit(GhostEvent{Kind: GhostBegin, Stroke: g})
}

// Update replaces the owner's entry with the latest stroke state. A no-op
// when no gesture is active for the owner.
func (f *GhostFeed) Update(g GhostStroke) {
	if _, ok := f.active[g.SourceViewport]; !ok {
		return
	}
	g.UpdatedAt = f.clock.Now()
	f.active[g.SourceViewport] = &g
	f.emit(GhostEvent{Kind: GhostUpdate, Stroke: g})
}

// End removes the owner's entry. A no-op when nothing is active.
func (f *GhostFeed) End(ownerViewport string) {
	g, ok := f.active[ownerViewport]
	if !ok {
		return
	}
	delete(f.active, ownerViewport)
	f.emit(GhostEvent{Kind: GhostEnd, Stroke: *g})
}

// Active returns the stroke currently owned by the given viewport, if any.
func (f *GhostFeed) Active(ownerViewport string) (GhostStroke, bool) {
	g, ok := f.active[ownerViewport]
	if !ok {
		return GhostStroke{}, false
	}
	return *g, true
}

// VisibleIn returns the ghosts a viewport should render: strokes owned by a
// different viewport whose slice Z lies within 40% of the slice spacing of
// the viewport's current slice. The owner never sees its own ghost.
func (f *GhostFeed) VisibleIn(vp *Viewport) []GhostStroke {
	if vp == nil || len(f.active) == 0 {
		return nil
	}
	tol := sliceToleranceFactor * vp.SliceSpacing()
	z := vp.SliceZ()
	var out []GhostStroke
	for owner, g := range f.active {
		if owner == vp.ID {
			continue
		}
		dz := g.SliceZ - z
		if dz < 0 {
			dz = -dz
		}
		if dz <= tol {
			out = append(out, *g)
		}
	}
	return out
}

func (f *GhostFeed) emit(ev GhostEvent) {
	for _, h := range f.handlers {
		h.fn(ev)
	}
}
