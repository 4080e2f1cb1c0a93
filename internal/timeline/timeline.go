package timeline

import (
	"log/slog"
	"math"
)

// Zoom bounds in pixels per frame.
const (
	MinZoom float32 = 0.05
	MaxZoom float32 = 20
)

// dragState is the cross-frame state of one widget while it is dragged.
type dragState struct {
	origTime float32
	pressX   float32
	index    int // curve sample grabbed by CurveEdit
}

// Timeline is the persistent part of a timeline widget: the zoom factor
// and the drags in progress, keyed by widget ID path.
type Timeline struct {
	zoom   float32
	drags  map[string]*dragState
	active bool
}

// New creates a timeline at zoom 1.
func New() *Timeline {
	return &Timeline{zoom: 1, drags: make(map[string]*dragState)}
}

// Zoom returns the current zoom factor.
func (t *Timeline) Zoom() float32 {
	return t.zoom
}

// SetZoom sets the zoom factor, clamped to [MinZoom, MaxZoom].
func (t *Timeline) SetZoom(z float32) {
	t.zoom = clamp(z, MinZoom, MaxZoom)
}

// Dragging reports whether any widget is being dragged.
func (t *Timeline) Dragging() bool {
	return len(t.drags) > 0
}

// Begin starts a frame. Ctrl+wheel scales the zoom by 2^wheel before any
// widget runs, and a released pointer ends every drag. The playhead is
// handled here unless span.Time is NoTime.
func (t *Timeline) Begin(id string, in Input, layout Layout, span Span) (*Frame, error) {
	if t.active {
		return nil, ErrTimelineActive
	}
	t.active = true

	if in.Ctrl && in.Wheel != 0 {
		old := t.zoom
		t.SetZoom(t.zoom * float32(math.Pow(2, float64(in.Wheel))))
		slog.Debug("timeline zoom", "id", id, "from", old, "to", t.zoom)
	}
	if !in.Down {
		clear(t.drags)
	}

	f := &Frame{
		tl:      t,
		in:      in,
		layout:  layout,
		zoom:    t.zoom,
		span:    span,
		ids:     []string{id},
		cursorY: layout.Origin.Y + layout.HeaderHeight,
	}
	if span.Time != NoTime && span.Length > 0 {
		header := RectAt(layout.Origin, Vec2{span.Length * f.zoom, layout.HeaderHeight})
		f.timeChanged = f.TimeSelect("playhead", &f.span.Time, header, 0, span.Length)
	}
	return f, nil
}
