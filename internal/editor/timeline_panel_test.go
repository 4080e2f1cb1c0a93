package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashrindy/dvscenetool/internal/scene"
	"github.com/ashrindy/dvscenetool/internal/testutil"
	"github.com/ashrindy/dvscenetool/internal/timeline"
)

// With the panel at (100,50) and zoom 1 the first track starts at y=70.
// A clip over [0,60] spans x [100,160) with its title bar at y [70,87)
// and its content at y [87,147).

func panelSession(t *testing.T, defName string) (*Session, *TimelinePanel, scene.Handle) {
	t.Helper()
	s := newSession(t)
	s.Scene.Common.End = 100
	h, err := s.AddChild(s.Scene.Tree.Root(), def(t, s, defName))
	require.NoError(t, err)
	return s, NewTimelinePanel(s, timeline.Vec2{X: 100, Y: 50}), h
}

func render(t *testing.T, p *TimelinePanel, in timeline.Input) PanelResult {
	t.Helper()
	res, err := p.Render(in)
	require.NoError(t, err)
	return res
}

func TestPanelMovesClipInOneEntry(t *testing.T) {
	s, p, fx := panelSession(t, "Effect")
	history := s.Stack.UndoLen()

	render(t, p, testutil.Press(130, 75))
	res := render(t, p, testutil.Hold(140, 75))
	assert.True(t, res.ClipChanged)
	assert.False(t, res.TimeChanged)

	n := s.Scene.Node(fx)
	assert.Equal(t, scene.Float(10), n.Fields["frameStart"].Value)
	assert.Equal(t, scene.Float(70), n.Fields["frameEnd"].Value)
	assert.Equal(t, history+1, s.Stack.UndoLen())

	// Past the end the body stops so the clip stays inside the timeline
	render(t, p, testutil.Hold(250, 75))
	assert.Equal(t, scene.Float(40), n.Fields["frameStart"].Value)
	assert.Equal(t, scene.Float(100), n.Fields["frameEnd"].Value)

	res = render(t, p, testutil.Release(250, 75))
	assert.False(t, res.Changed())
	assert.False(t, p.Timeline.Dragging())

	require.True(t, s.Undo())
	require.True(t, s.Undo())
	assert.Equal(t, scene.Float(0), n.Fields["frameStart"].Value)
	assert.Equal(t, scene.Float(60), n.Fields["frameEnd"].Value)
}

func TestPanelResizesTickClip(t *testing.T) {
	s, p, cm := panelSession(t, "CameraMotion")

	render(t, p, testutil.Press(157, 75))
	res := render(t, p, testutil.Hold(167, 75))
	require.True(t, res.ClipChanged)

	n := s.Scene.Node(cm)
	assert.Equal(t, scene.UInt(0), n.Fields["frameStart"].Value)
	assert.Equal(t, scene.UInt(7000), n.Fields["frameEnd"].Value, "ticks are frames times 100")
}

func TestPanelEditsElementCurve(t *testing.T) {
	s, p, fx := panelSession(t, "Effect")

	// Content width 60 over 32 samples: x=130 grabs sample 16,
	// y=117 is halfway up
	res := render(t, p, testutil.Press(130, 117))
	require.True(t, res.CurveChanged)
	c := s.Scene.Node(fx).Element.Fields["Curve"].Value.(scene.Curve)
	assert.Equal(t, float32(0.5), c[16])
	assert.Greater(t, c[15], float32(0))
	assert.False(t, res.ClipChanged)

	res = render(t, p, testutil.Hold(130, 117))
	assert.False(t, res.CurveChanged, "same height changes nothing")

	require.True(t, s.Undo())
	c = s.Scene.Node(fx).Element.Fields["Curve"].Value.(scene.Curve)
	assert.Equal(t, float32(0), c[16])
}

func TestPanelTracksAreKeyedByNode(t *testing.T) {
	s, p, a := panelSession(t, "Effect")
	b, err := s.AddChild(s.Scene.Tree.Root(), def(t, s, "Effect"))
	require.NoError(t, err)
	s.Scene.Node(b).Name = s.Scene.Node(a).Name
	nb := s.Scene.Node(b)
	nb.Element.Fields["Curve"] = scene.Field{Value: scene.Curve{0, 0, 0, 0}}

	// Grab sample 16 of a's curve, then switch to b mid-drag
	s.Selection = a
	require.True(t, render(t, p, testutil.Press(130, 117)).CurveChanged)

	s.Selection = b
	var res PanelResult
	assert.NotPanics(t, func() { res = render(t, p, testutil.Hold(130, 100)) })
	assert.False(t, res.CurveChanged)
	assert.Equal(t, scene.Curve{0, 0, 0, 0}, nb.Element.Fields["Curve"].Value)
}

func TestPanelDragsCuts(t *testing.T) {
	s := newSession(t)
	s.Scene.Common.End = 100
	s.Scene.Common.Cuts = []float32{20}
	p := NewTimelinePanel(s, timeline.Vec2{X: 100, Y: 50})

	// No selection: the cut track is the first row
	render(t, p, testutil.Press(120, 80))
	res := render(t, p, testutil.Hold(125, 80))
	assert.True(t, res.CutsChanged)
	assert.Equal(t, []float32{25}, s.Scene.Common.Cuts)

	require.True(t, s.Undo())
	assert.Equal(t, []float32{20}, s.Scene.Common.Cuts)
}

func TestPanelPlayhead(t *testing.T) {
	s, p, _ := panelSession(t, "Folder")
	history := s.Stack.UndoLen()

	res := render(t, p, testutil.Press(130, 60))
	assert.True(t, res.TimeChanged)
	assert.Equal(t, float32(30), p.Time)
	assert.False(t, res.Changed(), "the playhead is not a scene edit")
	assert.Equal(t, history, s.Stack.UndoLen())
}

func TestPanelWithoutScene(t *testing.T) {
	s := New(rangers(t))
	p := NewTimelinePanel(s, timeline.Vec2{})
	_, err := p.Render(timeline.Input{})
	assert.ErrorIs(t, err, ErrNoScene)
}
