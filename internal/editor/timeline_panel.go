package editor

import (
	"fmt"
	"slices"

	"github.com/ashrindy/dvscenetool/internal/scene"
	"github.com/ashrindy/dvscenetool/internal/timeline"
)

// Panel defaults.
const (
	DefaultDivision   float32 = 10
	DefaultClipHeight float32 = 60
)

// TimelinePanel draws the selected node as a clip, the curve of its
// element inside the clip, and one track per cut list. Every change it
// makes is recorded in the session's history.
type TimelinePanel struct {
	Session    *Session
	Timeline   *timeline.Timeline
	Layout     timeline.Layout
	Division   float32
	ClipHeight float32
	Time       float32 // playhead
}

// NewTimelinePanel creates a panel for s placed at origin.
func NewTimelinePanel(s *Session, origin timeline.Vec2) *TimelinePanel {
	return &TimelinePanel{
		Session:    s,
		Timeline:   timeline.New(),
		Layout:     timeline.DefaultLayout(origin),
		Division:   DefaultDivision,
		ClipHeight: DefaultClipHeight,
	}
}

// PanelResult reports what a Render call changed.
type PanelResult struct {
	TimeChanged  bool
	ClipChanged  bool
	CurveChanged bool
	CutsChanged  bool
}

// Changed reports whether the scene was edited.
func (r PanelResult) Changed() bool {
	return r.ClipChanged || r.CurveChanged || r.CutsChanged
}

// Render runs one frame of the panel with the pointer state in. The
// timeline spans the scene's playback end.
func (p *TimelinePanel) Render(in timeline.Input) (PanelResult, error) {
	var res PanelResult
	sc := p.Session.Scene
	if sc == nil {
		return res, ErrNoScene
	}
	span := timeline.Span{Time: p.Time, Length: sc.Common.End, Division: p.Division}
	f, err := p.Timeline.Begin("timeline", in, p.Layout, span)
	if err != nil {
		return res, err
	}
	if f.TimeChanged() {
		p.Time = f.Time()
		res.TimeChanged = true
	}

	var firstErr error
	if p.Session.Selection != scene.Nil {
		res.ClipChanged, res.CurveChanged, firstErr = p.renderNode(f, p.Session.Selection)
	}
	for _, l := range []scene.CutList{scene.CutFrames, scene.CutResources} {
		changed, err := p.renderCuts(f, l)
		res.CutsChanged = res.CutsChanged || changed
		if firstErr == nil {
			firstErr = err
		}
	}

	if err := f.End(); err != nil {
		return res, err
	}
	return res, firstErr
}

// renderNode draws the clip of node h when its fields carry a time range.
func (p *TimelinePanel) renderNode(f *timeline.Frame, h scene.Handle) (clipChanged, curveChanged bool, err error) {
	n := p.Session.Scene.Tree.Node(h)
	tr, ok := scene.FindTimeRange(n.Fields)
	if !ok {
		return false, false, nil
	}
	start, _ := scene.TimeOf(n.Fields[tr.StartKey])
	end, _ := scene.TimeOf(n.Fields[tr.EndKey])

	f.BeginTrack(n.GUID.String())
	defer f.EndTrack()

	res := f.BeginClip("clip", &start, &end, p.ClipHeight)
	defer f.EndClip()
	if res.Changed() {
		var changes []FieldChange
		if res.StartChanged {
			sf, _ := scene.WithTime(n.Fields[tr.StartKey], start)
			changes = append(changes, FieldChange{Ref: FieldRef{Node: h, Key: tr.StartKey}, Value: sf.Value})
		}
		if res.EndChanged {
			ef, _ := scene.WithTime(n.Fields[tr.EndKey], end)
			changes = append(changes, FieldChange{Ref: FieldRef{Node: h, Key: tr.EndKey}, Value: ef.Value})
		}
		label := "resize clip"
		if res.Moved {
			label = "move clip"
		}
		if clipChanged, err = p.Session.SetFields(label, changes...); err != nil {
			return clipChanged, false, err
		}
	}

	key, ok := elementCurve(n)
	if !ok {
		return clipChanged, false, nil
	}
	buf := slices.Clone([]float32(n.Element.Fields[key].Value.(scene.Curve)))
	changed, err := f.CurveEdit("curve", buf, p.Session.Curve.Falloff)
	if err != nil || !changed {
		return clipChanged, false, err
	}
	curveChanged, err = p.Session.SetElementField(h, key, scene.Curve(buf))
	return clipChanged, curveChanged, err
}

// elementCurve returns the key of the first Curve field of n's element,
// in key order.
func elementCurve(n *scene.Node) (string, bool) {
	if n.Element == nil {
		return "", false
	}
	for _, k := range n.Element.Fields.SortedKeys() {
		if n.Element.Fields[k].DataType() == scene.DataTypeCurve {
			return k, true
		}
	}
	return "", false
}

// renderCuts draws one track with a draggable event per cut.
func (p *TimelinePanel) renderCuts(f *timeline.Frame, l scene.CutList) (bool, error) {
	f.BeginTrack(l.String())
	defer f.EndTrack()

	cuts := slices.Clone(*p.Session.Scene.Common.CutSlice(l))
	changed := false
	for i := range cuts {
		if !f.Event(fmt.Sprintf("cut%d", i), &cuts[i]) {
			continue
		}
		ok, err := p.Session.SetCut(l, i, cuts[i])
		if err != nil {
			return changed, err
		}
		changed = changed || ok
	}
	return changed, nil
}
