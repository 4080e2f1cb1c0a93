package timeline

// Vec2 is a screen-space point or size in pixels.
type Vec2 struct {
	X, Y float32
}

// Add returns v+o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Rect is an axis-aligned screen rectangle. Max is exclusive.
type Rect struct {
	Min, Max Vec2
}

// RectAt builds a rectangle from its top-left corner and size.
func RectAt(pos, size Vec2) Rect {
	return Rect{Min: pos, Max: pos.Add(size)}
}

// Width returns the horizontal extent.
func (r Rect) Width() float32 { return r.Max.X - r.Min.X }

// Height returns the vertical extent.
func (r Rect) Height() float32 { return r.Max.Y - r.Min.Y }

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Min.X && p.X < r.Max.X && p.Y >= r.Min.Y && p.Y < r.Max.Y
}

// Input is the pointer state for one frame.
type Input struct {
	Pos      Vec2
	Down     bool    // primary button held
	Pressed  bool    // primary button went down this frame
	Released bool    // primary button went up this frame
	Wheel    float32 // vertical wheel steps
	Ctrl     bool
}

// Layout places the timeline on screen.
type Layout struct {
	Origin       Vec2    // top-left of the time column
	NameWidth    float32 // track name column, left of Origin
	HeaderHeight float32 // playhead row
	TrackHeight  float32 // minimum row height
	TitleHeight  float32 // clip title bar, also the handle height
}

// DefaultLayout returns the editor's layout at the given origin.
func DefaultLayout(origin Vec2) Layout {
	return Layout{
		Origin:       origin,
		NameWidth:    200,
		HeaderHeight: 20,
		TrackHeight:  20,
		TitleHeight:  17,
	}
}

// Span is the time data of one frame.
type Span struct {
	Time     float32 // playhead, NoTime hides it
	Length   float32
	Division float32 // grid division length
}

// NoTime hides the playhead.
const NoTime float32 = -1

func clamp(v, lo, hi float32) float32 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
