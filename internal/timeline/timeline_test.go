package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Track rows start at y=70; the time column starts at x=100.
var testLayout = DefaultLayout(Vec2{100, 50})

func press(x, y float32) Input   { return Input{Pos: Vec2{x, y}, Down: true, Pressed: true} }
func hold(x, y float32) Input    { return Input{Pos: Vec2{x, y}, Down: true} }
func release(x, y float32) Input { return Input{Pos: Vec2{x, y}, Released: true} }

func span(length float32) Span {
	return Span{Time: NoTime, Length: length, Division: 10}
}

// clipFrame runs one frame with a single track holding one clip.
func clipFrame(t *testing.T, tl *Timeline, in Input, start, end *float32) ClipResult {
	t.Helper()
	f, err := tl.Begin("timeline", in, testLayout, span(100))
	require.NoError(t, err)
	require.True(t, f.BeginTrack("track"))
	res := f.BeginClip("clip", start, end, 60)
	f.EndClip()
	f.EndTrack()
	require.NoError(t, f.End())
	return res
}

func TestMappingRoundTrip(t *testing.T) {
	for _, zoom := range []float32{MinZoom, 0.3, 1, 2.5, MaxZoom} {
		tl := New()
		tl.SetZoom(zoom)
		f, err := tl.Begin("timeline", Input{}, testLayout, span(1000))
		require.NoError(t, err)
		require.True(t, f.BeginTrack("track"))

		for tm := float32(0); tm <= 1000; tm += 12.5 {
			x := f.ScreenX(tm)
			assert.InDelta(t, testLayout.Origin.X+tm*zoom, x, 1e-3)
			assert.InDelta(t, tm, f.TimeAt(x), 1e-3, "zoom=%v t=%v", zoom, tm)
		}
		f.EndTrack()
		require.NoError(t, f.End())
	}
}

func TestZoom(t *testing.T) {
	tl := New()
	assert.Equal(t, float32(1), tl.Zoom())

	run := func(in Input) {
		f, err := tl.Begin("timeline", in, testLayout, span(100))
		require.NoError(t, err)
		require.NoError(t, f.End())
	}

	run(Input{Wheel: 1, Ctrl: true})
	assert.Equal(t, float32(2), tl.Zoom())

	run(Input{Wheel: 1})
	assert.Equal(t, float32(2), tl.Zoom(), "wheel without ctrl scrolls")

	run(Input{Wheel: -2, Ctrl: true})
	assert.Equal(t, float32(0.5), tl.Zoom())

	run(Input{Wheel: 20, Ctrl: true})
	assert.Equal(t, MaxZoom, tl.Zoom())

	run(Input{Wheel: -40, Ctrl: true})
	assert.Equal(t, MinZoom, tl.Zoom())
}

func TestBeginRejectsNestedFrames(t *testing.T) {
	tl := New()
	f, err := tl.Begin("a", Input{}, testLayout, span(100))
	require.NoError(t, err)

	_, err = tl.Begin("b", Input{}, testLayout, span(100))
	assert.ErrorIs(t, err, ErrTimelineActive)

	require.NoError(t, f.End())
	f2, err := tl.Begin("b", Input{}, testLayout, span(100))
	require.NoError(t, err)
	require.NoError(t, f2.End())
}

func TestClipLeftHandleClamp(t *testing.T) {
	tl := New()
	start, end := float32(10), float32(30)

	// Left handle covers x in [110,115) on the title bar.
	res := clipFrame(t, tl, press(112, 75), &start, &end)
	assert.False(t, res.Changed())

	res = clipFrame(t, tl, hold(112+50, 75), &start, &end)
	assert.True(t, res.StartChanged)
	assert.False(t, res.EndChanged)
	assert.False(t, res.Moved)
	assert.Equal(t, end-1, start, "start never crosses end-1")

	res = clipFrame(t, tl, hold(112+80, 75), &start, &end)
	assert.False(t, res.StartChanged, "already at the clamp")
	assert.Equal(t, float32(29), start)
}

func TestClipRightHandleClamp(t *testing.T) {
	tl := New()
	start, end := float32(10), float32(30)

	// Right handle covers x in [125,130).
	clipFrame(t, tl, press(127, 75), &start, &end)
	res := clipFrame(t, tl, hold(127-50, 75), &start, &end)

	assert.True(t, res.EndChanged)
	assert.False(t, res.StartChanged)
	assert.Equal(t, start+1, end)
}

func TestClipBodyMoveKeepsDuration(t *testing.T) {
	tl := New()
	start, end := float32(10), float32(30)

	clipFrame(t, tl, press(120, 75), &start, &end)

	res := clipFrame(t, tl, hold(135, 75), &start, &end)
	assert.True(t, res.Moved)
	assert.True(t, res.StartChanged)
	assert.True(t, res.EndChanged)
	assert.Equal(t, float32(25), start)
	assert.Equal(t, float32(45), end)

	clipFrame(t, tl, hold(500, 75), &start, &end)
	assert.Equal(t, float32(80), start)
	assert.Equal(t, float32(100), end, "interval stays within length")

	clipFrame(t, tl, hold(-500, 75), &start, &end)
	assert.Equal(t, float32(0), start)
	assert.Equal(t, float32(20), end)
}

func TestClipDragUsesSnapshot(t *testing.T) {
	tl := New()
	start, end := float32(10), float32(30)

	clipFrame(t, tl, press(120, 75), &start, &end)
	for x := float32(121); x <= 130; x++ {
		clipFrame(t, tl, hold(x, 75), &start, &end)
	}
	// Absolute displacement of 10 px, not an accumulation of per-frame deltas
	assert.Equal(t, float32(20), start)
	assert.Equal(t, float32(40), end)
}

func TestClipDragHonoursZoom(t *testing.T) {
	tl := New()
	tl.SetZoom(2)
	start, end := float32(10), float32(30)

	// At zoom 2 the clip spans x in [120,160).
	clipFrame(t, tl, press(140, 75), &start, &end)
	clipFrame(t, tl, hold(150, 75), &start, &end)
	assert.Equal(t, float32(15), start)
	assert.Equal(t, float32(35), end)
}

func TestClipReleaseEndsDrag(t *testing.T) {
	tl := New()
	start, end := float32(10), float32(30)

	clipFrame(t, tl, press(120, 75), &start, &end)
	clipFrame(t, tl, hold(125, 75), &start, &end)
	assert.True(t, tl.Dragging())

	clipFrame(t, tl, release(125, 75), &start, &end)
	assert.False(t, tl.Dragging())

	res := clipFrame(t, tl, hold(200, 75), &start, &end)
	assert.False(t, res.Changed())
	assert.Equal(t, float32(15), start)
}

func TestClipHandlesWinOverBody(t *testing.T) {
	tl := New()
	start, end := float32(10), float32(11)

	// One pixel wide clip: the left handle, right handle and body overlap.
	clipFrame(t, tl, press(110.5, 75), &start, &end)
	res := clipFrame(t, tl, hold(113.5, 75), &start, &end)

	assert.False(t, res.Moved)
	assert.False(t, res.EndChanged)
	assert.Equal(t, float32(10), start, "left handle clamps to end-1")
	assert.Equal(t, float32(11), end)
}

func TestPlayhead(t *testing.T) {
	tl := New()
	s := Span{Time: 0, Length: 100, Division: 10}

	// Header row spans y in [50,70).
	f, err := tl.Begin("timeline", press(130, 60), testLayout, s)
	require.NoError(t, err)
	assert.True(t, f.TimeChanged())
	assert.Equal(t, float32(30), f.Time())
	require.NoError(t, f.End())

	s.Time = 30
	f, err = tl.Begin("timeline", hold(150, 60), testLayout, s)
	require.NoError(t, err)
	assert.True(t, f.TimeChanged())
	assert.Equal(t, float32(50), f.Time())
	require.NoError(t, f.End())

	s.Time = 50
	f, err = tl.Begin("timeline", hold(900, 60), testLayout, s)
	require.NoError(t, err)
	assert.Equal(t, float32(100), f.Time(), "clamped to length")
	require.NoError(t, f.End())
}

func TestPlayheadHidden(t *testing.T) {
	tl := New()
	f, err := tl.Begin("timeline", press(130, 60), testLayout, span(100))
	require.NoError(t, err)
	assert.False(t, f.TimeChanged())
	assert.Equal(t, NoTime, f.Time())
	require.NoError(t, f.End())
}

func eventFrame(t *testing.T, tl *Timeline, in Input, cuts []float32) []bool {
	t.Helper()
	f, err := tl.Begin("timeline", in, testLayout, span(100))
	require.NoError(t, err)
	require.True(t, f.BeginTrack("Cuts"))
	changed := make([]bool, len(cuts))
	for i := range cuts {
		changed[i] = f.Event(string(rune('a'+i)), &cuts[i])
	}
	f.EndTrack()
	require.NoError(t, f.End())
	return changed
}

func TestEventDrag(t *testing.T) {
	tl := New()
	cuts := []float32{40, 70}

	// Event at 40 is hit in x [130,150), y [70,90).
	assert.Equal(t, []bool{false, false}, eventFrame(t, tl, press(140, 75), cuts))
	assert.Equal(t, []bool{true, false}, eventFrame(t, tl, hold(165, 75), cuts))
	assert.Equal(t, []float32{65, 70}, cuts)

	eventFrame(t, tl, hold(1000, 75), cuts)
	assert.Equal(t, float32(100), cuts[0], "clamped to length")

	eventFrame(t, tl, release(1000, 75), cuts)
	assert.Equal(t, []bool{false, false}, eventFrame(t, tl, hold(0, 75), cuts))
}

func TestCurveEdit(t *testing.T) {
	tl := New()
	start, end := float32(0), float32(70)
	buf := make([]float32, 8)

	edit := func(in Input) bool {
		f, err := tl.Begin("timeline", in, testLayout, span(100))
		require.NoError(t, err)
		require.True(t, f.BeginTrack("track"))
		f.BeginClip("clip", &start, &end, 60)
		changed, err := f.CurveEdit("curve", buf, 1)
		require.NoError(t, err)
		f.EndClip()
		f.EndTrack()
		require.NoError(t, f.End())
		return changed
	}

	// Content spans x [100,170), y [87,147); sample 4 sits at x=140.
	assert.True(t, edit(press(140, 147-0.2*60)))
	assert.InDelta(t, 0.2, buf[4], 1e-5)
	assert.Greater(t, buf[3], float32(0))
	assert.Greater(t, buf[5], float32(0))

	// The grabbed sample follows the pointer height only.
	assert.True(t, edit(hold(160, 147-0.5*60)))
	assert.InDelta(t, 0.5, buf[4], 1e-5)

	assert.False(t, edit(hold(160, 147-0.5*60)), "no movement")
	assert.Equal(t, float32(0), start, "clip untouched")
	assert.Equal(t, float32(70), end)
}

func TestCurveEditDropsGrabWhenBufferShrinks(t *testing.T) {
	tl := New()
	start, end := float32(0), float32(70)

	edit := func(in Input, buf []float32) bool {
		f, err := tl.Begin("timeline", in, testLayout, span(100))
		require.NoError(t, err)
		require.True(t, f.BeginTrack("track"))
		f.BeginClip("clip", &start, &end, 60)
		changed, err := f.CurveEdit("curve", buf, 1)
		require.NoError(t, err)
		f.EndClip()
		f.EndTrack()
		require.NoError(t, f.End())
		return changed
	}

	// x=169 grabs sample 7 of 8.
	assert.True(t, edit(press(169, 147-0.5*60), make([]float32, 8)))

	short := make([]float32, 4)
	assert.NotPanics(t, func() {
		assert.False(t, edit(hold(169, 147-0.8*60), short))
	})
	assert.Equal(t, []float32{0, 0, 0, 0}, short)

	full := make([]float32, 8)
	assert.False(t, edit(hold(169, 147-0.8*60), full), "grab released")
	assert.Equal(t, make([]float32, 8), full)
}

func TestStripes(t *testing.T) {
	tl := New()
	f, err := tl.Begin("timeline", Input{}, testLayout, Span{Time: NoTime, Length: 25, Division: 10})
	require.NoError(t, err)
	require.True(t, f.BeginTrack("track"))
	f.EndTrack()

	stripes := f.Stripes()
	require.Len(t, stripes, 3)
	assert.Equal(t, Rect{Min: Vec2{100, 70}, Max: Vec2{105, 90}}, stripes[0].Rect)
	assert.Equal(t, Rect{Min: Vec2{110, 70}, Max: Vec2{115, 90}}, stripes[1].Rect)
	assert.Equal(t, Rect{Min: Vec2{120, 70}, Max: Vec2{125, 90}}, stripes[2].Rect)
	require.NoError(t, f.End())
}

func TestMouseTimeAndHover(t *testing.T) {
	tl := New()
	tl.SetZoom(2)
	f, err := tl.Begin("timeline", Input{Pos: Vec2{150, 80}}, testLayout, span(100))
	require.NoError(t, err)
	assert.Equal(t, float32(25), f.MouseTime())
	assert.True(t, f.TimeColumnHovered())
	assert.False(t, f.NameColumnHovered())
	require.NoError(t, f.End())

	f, err = tl.Begin("timeline", Input{Pos: Vec2{20, 80}}, testLayout, span(100))
	require.NoError(t, err)
	assert.True(t, f.NameColumnHovered())
	require.NoError(t, f.End())
}

func TestMisuse(t *testing.T) {
	tests := []struct {
		name string
		run  func(f *Frame)
	}{
		{"clip outside track", func(f *Frame) {
			var a, b float32 = 0, 10
			f.BeginClip("clip", &a, &b, 10)
		}},
		{"event outside track", func(f *Frame) {
			var a float32
			f.Event("e", &a)
		}},
		{"end track without begin", func(f *Frame) { f.EndTrack() }},
		{"end clip without begin", func(f *Frame) {
			f.BeginTrack("t")
			f.EndClip()
			f.EndTrack()
		}},
		{"unclosed track", func(f *Frame) { f.BeginTrack("t") }},
		{"track in clip", func(f *Frame) {
			var a, b float32 = 0, 10
			f.BeginTrack("t")
			f.BeginClip("c", &a, &b, 10)
			f.BeginTrack("inner")
		}},
		{"curve outside clip", func(f *Frame) {
			f.BeginTrack("t")
			_, _ = f.CurveEdit("c", []float32{0, 1}, 1)
			f.EndTrack()
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl := New()
			f, err := tl.Begin("timeline", Input{}, testLayout, span(100))
			require.NoError(t, err)
			tt.run(f)

			err = f.End()
			require.Error(t, err)
			assert.True(t, IsMisuse(err))
			assert.ErrorIs(t, err, ErrUnbalanced)

			// The timeline is free again after End
			f, err = tl.Begin("timeline", Input{}, testLayout, span(100))
			require.NoError(t, err)
			require.NoError(t, f.End())
		})
	}
}

func TestFrameEndedTwice(t *testing.T) {
	tl := New()
	f, err := tl.Begin("timeline", Input{}, testLayout, span(100))
	require.NoError(t, err)
	require.NoError(t, f.End())
	assert.Error(t, f.End())
	assert.False(t, f.BeginTrack("late"))
}

func TestGroupsNestTracks(t *testing.T) {
	tl := New()
	f, err := tl.Begin("timeline", Input{}, testLayout, span(100))
	require.NoError(t, err)
	require.True(t, f.BeginGroup("group"))
	require.True(t, f.BeginTrack("track"))
	assert.Equal(t, Vec2{100, 90}, f.TrackOrigin(), "group row sits above the track")
	f.EndTrack()
	f.EndGroup()
	require.NoError(t, f.End())
}
