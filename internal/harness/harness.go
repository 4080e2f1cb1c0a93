package harness

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/ashrindy/dvscenetool/internal/command"
	"github.com/ashrindy/dvscenetool/internal/editor"
	"github.com/ashrindy/dvscenetool/internal/scene"
	"github.com/ashrindy/dvscenetool/internal/templates"
	"github.com/ashrindy/dvscenetool/internal/testutil"
	"github.com/ashrindy/dvscenetool/internal/timeline"
)

// DefaultOrigin is the panel origin when a scenario sets none.
var DefaultOrigin = timeline.Vec2{X: 100, Y: 50}

// Harness drives one scenario run.
type Harness struct {
	session *editor.Session
	panel   *editor.TimelinePanel
	node    scene.Handle
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each run builds its own session over the scenario's templates, so runs
// never share history or selection. Execution flow:
//  1. Open the definition database
//  2. Create the scene, its cuts and the selected node
//  3. Clear the history
//  4. Feed every frame to the timeline panel, recording a trace event
//  5. Check the final state against the expect block
//
// A frame the panel rejects aborts the run with an error.
func Run(sc *Scenario) (*Result, error) {
	db, err := templates.Open(sc.dir, sc.Templates)
	if err != nil {
		return nil, fmt.Errorf("failed to open templates: %w", err)
	}

	h := &Harness{
		session: editor.New(db, editor.WithClock(command.NewClock())),
		logger:  slog.Default().With("scenario", sc.Name),
	}
	if err := h.setup(sc); err != nil {
		return nil, fmt.Errorf("failed to set up scene: %w", err)
	}

	result := NewResult()
	result.Setup = h.state()

	n := 0
	for i, f := range sc.Frames {
		for r := 0; r < max(f.Repeat, 1); r++ {
			n++
			ev, err := h.frame(n, f)
			if err != nil {
				return nil, fmt.Errorf("frames[%d]: %w", i, err)
			}
			result.Trace = append(result.Trace, ev)
		}
	}

	result.Final = h.state()
	for _, msg := range EvaluateExpect(sc.Expect, result.Final) {
		result.AddError(msg)
	}
	h.logger.Debug("scenario finished", "frames", n, "pass", result.Pass)
	return result, nil
}

// setup builds the starting scene. None of its edits stay in the history.
func (h *Harness) setup(sc *Scenario) error {
	s := h.session
	if err := s.NewScene(); err != nil {
		return err
	}
	c := &s.Scene.Common
	c.End = sc.Length
	c.Cuts = slices.Clone(sc.Cuts)
	c.ResourceCuts = slices.Clone(sc.ResourceCuts)

	origin := DefaultOrigin
	if sc.Origin != nil {
		origin = timeline.Vec2{X: sc.Origin[0], Y: sc.Origin[1]}
	}
	h.panel = editor.NewTimelinePanel(s, origin)

	if sc.Node != "" {
		def, ok := s.DB.Lookup(sc.Node)
		if !ok {
			return fmt.Errorf("unknown definition %q", sc.Node)
		}
		node, err := s.AddChild(s.Scene.Tree.Root(), def)
		if err != nil {
			return err
		}
		h.node = node
		if sc.Clip != nil {
			if err := setClip(s.Scene.Node(node), sc.Clip[0], sc.Clip[1]); err != nil {
				return err
			}
		}
	}
	s.Stack.Clear()
	return nil
}

func setClip(n *scene.Node, start, end float32) error {
	tr, ok := scene.FindTimeRange(n.Fields)
	if !ok {
		return fmt.Errorf("%s has no time range", n.Name)
	}
	for key, v := range map[string]float32{tr.StartKey: start, tr.EndKey: end} {
		f, ok := scene.WithTime(n.Fields[key], v)
		if !ok {
			return fmt.Errorf("%s.%s is not a time field", n.Name, key)
		}
		n.Fields[key] = f
	}
	return nil
}

// frame runs one frame: shortcuts first, then the panel.
func (h *Harness) frame(n int, f Frame) (TraceEvent, error) {
	ev := TraceEvent{Frame: n, Input: describe(f)}

	keys := editor.Keys{Ctrl: f.Keys != "", Z: f.Keys == KeysUndo, Y: f.Keys == KeysRedo}
	if sc := h.session.HandleShortcuts(keys); sc != editor.ShortcutNone {
		ev.Changes = append(ev.Changes, sc.String())
	}

	zoom := h.panel.Timeline.Zoom()
	res, err := h.panel.Render(input(f))
	if err != nil {
		return ev, err
	}
	if res.TimeChanged {
		ev.Changes = append(ev.Changes, "time")
	}
	if h.panel.Timeline.Zoom() != zoom {
		ev.Changes = append(ev.Changes, "zoom")
	}
	if res.ClipChanged {
		ev.Changes = append(ev.Changes, "clip")
	}
	if res.CurveChanged {
		ev.Changes = append(ev.Changes, "curve")
	}
	if res.CutsChanged {
		ev.Changes = append(ev.Changes, "cuts")
	}
	if len(ev.Changes) > 0 {
		ev.State = h.state().String()
	}
	h.logger.Debug("frame", "n", n, "input", ev.Input, "changes", ev.Changes)
	return ev, nil
}

func input(f Frame) timeline.Input {
	var x, y float32
	if f.At != nil {
		x, y = f.At[0], f.At[1]
	}
	var in timeline.Input
	switch f.Pointer {
	case PointerPress:
		in = testutil.Press(x, y)
	case PointerHold:
		in = testutil.Hold(x, y)
	case PointerRelease:
		in = testutil.Release(x, y)
	default:
		in = testutil.Hover(x, y)
	}
	in.Wheel = f.Wheel
	in.Ctrl = f.Ctrl
	return in
}

func describe(f Frame) string {
	pointer := f.Pointer
	if pointer == "" {
		pointer = PointerHover
	}
	var x, y float32
	if f.At != nil {
		x, y = f.At[0], f.At[1]
	}
	out := fmt.Sprintf("%s %s,%s", pointer, num(x), num(y))
	if f.Ctrl {
		out += " ctrl"
	}
	if f.Wheel != 0 {
		out += " wheel=" + num(f.Wheel)
	}
	if f.Keys != "" {
		out += " " + f.Keys
	}
	return out
}

// state snapshots the session.
func (h *Harness) state() *State {
	s := h.session
	st := &State{
		Cuts:         slices.Clone(s.Scene.Common.Cuts),
		ResourceCuts: slices.Clone(s.Scene.Common.ResourceCuts),
		Time:         h.panel.Time,
		Zoom:         h.panel.Timeline.Zoom(),
		History:      []string{},
	}
	if st.Cuts == nil {
		st.Cuts = []float32{}
	}
	if st.ResourceCuts == nil {
		st.ResourceCuts = []float32{}
	}
	for _, e := range s.Stack.History() {
		st.History = append(st.History, e.Label)
	}

	if h.node == scene.Nil || !s.Scene.Tree.Attached(h.node) {
		return st
	}
	n := s.Scene.Node(h.node)
	if tr, ok := scene.FindTimeRange(n.Fields); ok {
		start, _ := scene.TimeOf(n.Fields[tr.StartKey])
		end, _ := scene.TimeOf(n.Fields[tr.EndKey])
		st.Clip = []float32{start, end}
	}
	if n.Element != nil {
		for _, k := range n.Element.Fields.SortedKeys() {
			if c, ok := n.Element.Fields[k].Value.(scene.Curve); ok {
				st.Curve = slices.Clone([]float32(c))
				break
			}
		}
	}
	return st
}
