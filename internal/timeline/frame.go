package timeline

import (
	"math"
	"strings"

	"github.com/ashrindy/dvscenetool/internal/curve"
)

// Widget metrics in pixels.
const (
	HandleWidth  float32 = 5
	EventRadius  float32 = 5
	EventSpacing float32 = 5
)

type scopeKind int

const (
	scopeTrack scopeKind = iota
	scopeGroup
	scopeClip
)

func (k scopeKind) String() string {
	switch k {
	case scopeGroup:
		return "group"
	case scopeClip:
		return "clip"
	default:
		return "track"
	}
}

// Frame is the per-frame context between Timeline.Begin and End. It is
// not reusable and must not outlive the frame.
type Frame struct {
	tl     *Timeline
	in     Input
	layout Layout
	zoom   float32
	span   Span

	timeChanged bool
	claimed     bool // a widget took this frame's press

	ids         []string
	scopes      []scopeKind
	trackOrigin Vec2
	trackHeight float32
	cursorY     float32
	clip        Rect // whole clip including the title bar
	clipSize    Vec2 // clip content size, title bar excluded

	err  error
	done bool
}

// ClipResult reports what a clip's handles did this frame.
type ClipResult struct {
	StartChanged bool
	EndChanged   bool
	Moved        bool // set only by the body drag
}

// Changed reports whether either bound changed.
func (r ClipResult) Changed() bool {
	return r.StartChanged || r.EndChanged
}

// Time returns the playhead time, updated by this frame's interaction.
func (f *Frame) Time() float32 { return f.span.Time }

// TimeChanged reports whether the playhead moved this frame.
func (f *Frame) TimeChanged() bool { return f.timeChanged }

// Length returns the timeline length in frames.
func (f *Frame) Length() float32 { return f.span.Length }

// Zoom returns the zoom used by every mapping of this frame.
func (f *Frame) Zoom() float32 { return f.zoom }

// Input returns the pointer state of this frame.
func (f *Frame) Input() Input { return f.in }

// Origin returns the screen origin of the time column.
func (f *Frame) Origin() Vec2 { return f.layout.Origin }

// TrackOrigin returns the screen origin of the current track.
func (f *Frame) TrackOrigin() Vec2 { return f.trackOrigin }

// ClipSize returns the content size of the current clip.
func (f *Frame) ClipSize() Vec2 { return f.clipSize }

// ScreenX maps a time to a screen X on the current track.
func (f *Frame) ScreenX(t float32) float32 {
	return f.trackOrigin.X + t*f.zoom
}

// TimeAt maps a screen X on the current track back to a time.
func (f *Frame) TimeAt(x float32) float32 {
	return (x - f.trackOrigin.X) / f.zoom
}

// MouseTime returns the time under the pointer.
func (f *Frame) MouseTime() float32 {
	return (f.in.Pos.X - f.layout.Origin.X) / f.zoom
}

// NameColumnHovered reports whether the pointer is over the track names.
func (f *Frame) NameColumnHovered() bool {
	x := f.in.Pos.X
	return x >= f.layout.Origin.X-f.layout.NameWidth && x < f.layout.Origin.X && f.in.Pos.Y >= f.layout.Origin.Y
}

// TimeColumnHovered reports whether the pointer is over the time column.
func (f *Frame) TimeColumnHovered() bool {
	x := f.in.Pos.X
	return x >= f.layout.Origin.X && x < f.layout.Origin.X+f.span.Length*f.zoom && f.in.Pos.Y >= f.layout.Origin.Y
}

func (f *Frame) misuse(op, reason string) {
	if f.err == nil {
		f.err = &MisuseError{Op: op, Reason: reason}
	}
}

func (f *Frame) usable(op string) bool {
	if f.done {
		f.misuse(op, "frame already ended")
		return false
	}
	return true
}

func (f *Frame) path(id string) string {
	return strings.Join(f.ids, "/") + "/" + id
}

func (f *Frame) top() (scopeKind, bool) {
	if len(f.scopes) == 0 {
		return 0, false
	}
	return f.scopes[len(f.scopes)-1], true
}

func (f *Frame) inTrack() bool {
	k, ok := f.top()
	return ok && k == scopeTrack
}

// press starts a drag on r if this frame's press landed there and no
// earlier widget took it.
func (f *Frame) press(key string, r Rect, orig float32) bool {
	if !f.in.Pressed || f.claimed || !r.Contains(f.in.Pos) {
		return false
	}
	f.claimed = true
	f.tl.drags[key] = &dragState{origTime: orig, pressX: f.in.Pos.X}
	return true
}

// TimeSelect sets *time to the pointer time on a press inside r and
// follows the pointer while dragged. The result is clamped to [lo, hi].
// A press reports changed even when the time stays the same.
func (f *Frame) TimeSelect(id string, time *float32, r Rect, lo, hi float32) bool {
	if !f.usable("TimeSelect") {
		return false
	}
	key := f.path(id)
	if f.press(key, r, *time) {
		*time = clamp((f.in.Pos.X-r.Min.X)/f.zoom, lo, hi)
		return true
	}
	if _, ok := f.tl.drags[key]; !ok || !f.in.Down {
		return false
	}
	next := clamp((f.in.Pos.X-r.Min.X)/f.zoom, lo, hi)
	if next == *time {
		return false
	}
	*time = next
	return true
}

// TimeDrag moves *time by the pointer displacement since the press that
// started the drag, divided by zoom and clamped to [lo, hi].
func (f *Frame) TimeDrag(id string, time *float32, r Rect, lo, hi float32) bool {
	if !f.usable("TimeDrag") {
		return false
	}
	key := f.path(id)
	if f.press(key, r, *time) {
		return false
	}
	st, ok := f.tl.drags[key]
	if !ok || !f.in.Down {
		return false
	}
	next := clamp(st.origTime+(f.in.Pos.X-st.pressX)/f.zoom, lo, hi)
	if next == *time {
		return false
	}
	*time = next
	return true
}

// BeginTrack opens a track row. Tracks do not nest in tracks or clips.
func (f *Frame) BeginTrack(id string) bool {
	if !f.usable("BeginTrack") {
		return false
	}
	if k, ok := f.top(); ok && k != scopeGroup {
		f.misuse("BeginTrack", "track inside "+k.String())
		return false
	}
	f.scopes = append(f.scopes, scopeTrack)
	f.ids = append(f.ids, id)
	f.trackOrigin = Vec2{f.layout.Origin.X, f.cursorY}
	f.trackHeight = f.layout.TrackHeight
	return true
}

// EndTrack closes the current track and advances to the next row.
func (f *Frame) EndTrack() {
	if !f.usable("EndTrack") {
		return
	}
	if !f.inTrack() {
		f.misuse("EndTrack", "no open track")
		return
	}
	f.pop()
	f.cursorY += f.trackHeight
}

// BeginGroup opens a collapsible group row holding tracks.
func (f *Frame) BeginGroup(id string) bool {
	if !f.usable("BeginGroup") {
		return false
	}
	if k, ok := f.top(); ok && k != scopeGroup {
		f.misuse("BeginGroup", "group inside "+k.String())
		return false
	}
	f.scopes = append(f.scopes, scopeGroup)
	f.ids = append(f.ids, id)
	f.cursorY += f.layout.TrackHeight
	return true
}

// EndGroup closes the current group.
func (f *Frame) EndGroup() {
	if !f.usable("EndGroup") {
		return
	}
	if k, ok := f.top(); !ok || k != scopeGroup {
		f.misuse("EndGroup", "no open group")
		return
	}
	f.pop()
}

func (f *Frame) pop() {
	f.scopes = f.scopes[:len(f.scopes)-1]
	f.ids = f.ids[:len(f.ids)-1]
}

// BeginClip lays out a clip spanning [*start, *end] with content height
// height and runs its three drag regions in this order: left handle
// (start, kept ≤ end-1), right handle (end, kept ≥ start+1) and body
// (start with end-start held, interval kept inside [0, length]). The
// handles overlap the body and win because they run first.
//
// Every BeginClip inside a track must be closed by EndClip.
func (f *Frame) BeginClip(id string, start, end *float32, height float32) ClipResult {
	var res ClipResult
	if !f.usable("BeginClip") {
		return res
	}
	if !f.inTrack() {
		f.misuse("BeginClip", "clip outside a track")
		return res
	}
	f.scopes = append(f.scopes, scopeClip)
	f.ids = append(f.ids, id)

	diff := *end - *start
	title := f.layout.TitleHeight
	f.clipSize = Vec2{diff * f.zoom, height}
	pos := Vec2{f.ScreenX(*start), f.trackOrigin.Y}
	f.clip = RectAt(pos, Vec2{f.clipSize.X, height + title})
	f.trackHeight = max(f.trackHeight, height+title)

	left := RectAt(pos, Vec2{HandleWidth, title})
	if old := *start; f.TimeDrag("start", start, left, 0, f.span.Length) {
		*start = min(*start, *end-1)
		res.StartChanged = *start != old
	}

	right := RectAt(Vec2{pos.X + f.clipSize.X - HandleWidth, pos.Y}, Vec2{HandleWidth, title})
	if old := *end; f.TimeDrag("end", end, right, 0, f.span.Length) {
		*end = max(*end, *start+1)
		res.EndChanged = *end != old
	}

	body := RectAt(pos, Vec2{f.clipSize.X, title})
	if f.TimeDrag("body", start, body, 0, f.span.Length-diff) {
		*end = *start + diff
		res.Moved = true
		res.StartChanged = true
		res.EndChanged = true
	}
	return res
}

// ContentRect returns the current clip's area below the title bar.
func (f *Frame) ContentRect() Rect {
	return RectAt(Vec2{f.clip.Min.X, f.clip.Min.Y + f.layout.TitleHeight}, f.clipSize)
}

// EndClip closes the current clip.
func (f *Frame) EndClip() {
	if !f.usable("EndClip") {
		return
	}
	if k, ok := f.top(); !ok || k != scopeClip {
		f.misuse("EndClip", "no open clip")
		return
	}
	f.pop()
}

// EventRect returns the hit region of an event marker at time t.
func (f *Frame) EventRect(t float32) Rect {
	d := (EventRadius + EventSpacing) * 2
	return RectAt(Vec2{f.ScreenX(t) - EventRadius - EventSpacing, f.trackOrigin.Y}, Vec2{d, d})
}

// Event is a single draggable marker on the current track, clamped to
// [0, length].
func (f *Frame) Event(id string, time *float32) bool {
	if !f.usable("Event") {
		return false
	}
	if !f.inTrack() {
		f.misuse("Event", "event outside a track")
		return false
	}
	f.ids = append(f.ids, id)
	defer func() { f.ids = f.ids[:len(f.ids)-1] }()
	return f.TimeDrag("handle", time, f.EventRect(*time), 0, f.span.Length)
}

// CurvePoint returns the screen position of sample i of buf inside the
// current clip's content area.
func (f *Frame) CurvePoint(buf []float32, i int) Vec2 {
	r := f.ContentRect()
	var x float32
	if len(buf) > 1 {
		x = float32(i) / float32(len(buf)-1) * r.Width()
	}
	return Vec2{r.Min.X + x, r.Max.Y - buf[i]*r.Height()}
}

// CurveEdit lets the pointer drag samples of buf inside the current clip.
// A press grabs the nearest sample, which then follows the pointer height
// through curve.InteractiveEdit with falloff until release. It reports
// whether buf changed.
func (f *Frame) CurveEdit(id string, buf []float32, falloff float32) (bool, error) {
	if !f.usable("CurveEdit") {
		return false, nil
	}
	if k, ok := f.top(); !ok || k != scopeClip {
		f.misuse("CurveEdit", "curve outside a clip")
		return false, nil
	}
	r := f.ContentRect()
	if len(buf) == 0 || r.Width() <= 0 || r.Height() <= 0 {
		return false, nil
	}
	key := f.path(id)
	if f.press(key, r, 0) {
		pos := (f.in.Pos.X - r.Min.X) / r.Width() * float32(len(buf)-1)
		f.tl.drags[key].index = int(math.Round(float64(pos)))
	}
	st, ok := f.tl.drags[key]
	if !ok || !f.in.Down {
		return false, nil
	}
	if st.index < 0 || st.index >= len(buf) {
		// buf shrank since the press
		delete(f.tl.drags, key)
		return false, nil
	}
	v := clamp((r.Max.Y-f.in.Pos.Y)/r.Height(), 0, 1)
	if buf[st.index] == v {
		return false, nil
	}
	if err := curve.InteractiveEdit(buf, st.index, v, falloff); err != nil {
		return false, err
	}
	return true, nil
}

// Stripe is one shaded half-division of the grid, in screen space.
type Stripe struct {
	Rect
}

// Stripes returns the shaded first half of every division from the header
// down to the last track row. A trailing partial division is shaded up to
// half a division or the remaining length, whichever is shorter.
func (f *Frame) Stripes() []Stripe {
	div := f.span.Division
	if div <= 0 || f.span.Length <= 0 {
		return nil
	}
	o := f.layout.Origin
	top := o.Y + f.layout.HeaderHeight
	bottom := f.cursorY
	count := int(f.span.Length / div)
	rem := float32(math.Mod(float64(f.span.Length), float64(div)))

	out := make([]Stripe, 0, count+1)
	for i := 0; i < count; i++ {
		x0 := float32(i) * div
		out = append(out, Stripe{Rect{
			Min: Vec2{o.X + x0*f.zoom, top},
			Max: Vec2{o.X + (x0+div/2)*f.zoom, bottom},
		}})
	}
	if rem > 0 {
		x0 := float32(count) * div
		out = append(out, Stripe{Rect{
			Min: Vec2{o.X + x0*f.zoom, top},
			Max: Vec2{o.X + (x0+min(div/2, rem))*f.zoom, bottom},
		}})
	}
	return out
}

// End consumes the frame. It reports the first misuse seen during the
// frame, or an unbalanced scope left open.
func (f *Frame) End() error {
	if f.done {
		return &MisuseError{Op: "End", Reason: "frame already ended"}
	}
	f.done = true
	f.tl.active = false
	if f.err == nil && len(f.scopes) > 0 {
		k, _ := f.top()
		f.err = &MisuseError{Op: "End", Reason: "unclosed " + k.String()}
	}
	return f.err
}
