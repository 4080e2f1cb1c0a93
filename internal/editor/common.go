package editor

import (
	"reflect"
	"slices"

	"github.com/ashrindy/dvscenetool/internal/command"
	"github.com/ashrindy/dvscenetool/internal/scene"
)

// AddResource appends a new resource entry and returns its position.
func (s *Session) AddResource() (int, error) {
	if s.Scene == nil {
		return -1, ErrNoScene
	}
	sc := s.Scene
	r := scene.NewResource()
	_, err := s.exec(&command.Func{
		Name:   "add resource",
		DoFn:   func() { sc.Resources = append(sc.Resources, r) },
		UndoFn: func() { sc.Resources = sc.Resources[:len(sc.Resources)-1] },
	})
	return len(sc.Resources) - 1, err
}

// RemoveResource deletes the resource entry at i.
func (s *Session) RemoveResource(i int) error {
	if s.Scene == nil {
		return ErrNoScene
	}
	sc := s.Scene
	if i < 0 || i >= len(sc.Resources) {
		return editErr(ErrCodeOutOfRange, "", "resource %d of %d", i, len(sc.Resources))
	}
	r := sc.Resources[i]
	_, err := s.exec(&command.Func{
		Name:   "remove resource " + r.Name,
		DoFn:   func() { sc.Resources = slices.Delete(sc.Resources, i, i+1) },
		UndoFn: func() { sc.Resources = slices.Insert(sc.Resources, i, r) },
	})
	return err
}

// UpdateResource replaces the resource entry at i. The name is truncated
// to the resource name buffer.
func (s *Session) UpdateResource(i int, r scene.ResourceEntry) (bool, error) {
	if s.Scene == nil {
		return false, ErrNoScene
	}
	sc := s.Scene
	if i < 0 || i >= len(sc.Resources) {
		return false, editErr(ErrCodeOutOfRange, "", "resource %d of %d", i, len(sc.Resources))
	}
	r.SetName(r.Name)
	old := sc.Resources[i]
	if old == r {
		return false, nil
	}
	return s.exec(command.Change("update resource", func(v scene.ResourceEntry) { sc.Resources[i] = v }, old, r))
}

// AddCut appends a cut at frame to the selected list.
func (s *Session) AddCut(l scene.CutList, frame float32) (int, error) {
	if s.Scene == nil {
		return -1, ErrNoScene
	}
	c := &s.Scene.Common
	var at int
	_, err := s.exec(&command.Func{
		Name:   "add " + l.String(),
		DoFn:   func() { at = c.AddCut(l, frame) },
		UndoFn: func() { c.RemoveCut(l, at) },
	})
	return at, err
}

// RemoveCut deletes cut i of the selected list.
func (s *Session) RemoveCut(l scene.CutList, i int) error {
	if s.Scene == nil {
		return ErrNoScene
	}
	c := &s.Scene.Common
	cuts := c.CutSlice(l)
	if i < 0 || i >= len(*cuts) {
		return editErr(ErrCodeOutOfRange, "", "%s %d of %d", l, i, len(*cuts))
	}
	frame := (*cuts)[i]
	_, err := s.exec(&command.Func{
		Name:   "remove " + l.String(),
		DoFn:   func() { c.RemoveCut(l, i) },
		UndoFn: func() { *cuts = slices.Insert(*cuts, i, frame) },
	})
	return err
}

// SetCut moves cut i of the selected list to frame.
func (s *Session) SetCut(l scene.CutList, i int, frame float32) (bool, error) {
	if s.Scene == nil {
		return false, ErrNoScene
	}
	cuts := s.Scene.Common.CutSlice(l)
	if i < 0 || i >= len(*cuts) {
		return false, editErr(ErrCodeOutOfRange, "", "%s %d of %d", l, i, len(*cuts))
	}
	if (*cuts)[i] == frame {
		return false, nil
	}
	return s.exec(command.Change("move "+l.String(), func(v float32) { (*cuts)[i] = v }, (*cuts)[i], frame))
}

// UpdatePage replaces the page at position i.
func (s *Session) UpdatePage(i int, p scene.Page) (bool, error) {
	if s.Scene == nil {
		return false, ErrNoScene
	}
	pages := s.Scene.Common.Pages
	if i < 0 || i >= len(pages) {
		return false, editErr(ErrCodeOutOfRange, "", "page %d of %d", i, len(pages))
	}
	old := pages[i]
	p.Transitions = slices.Clone(p.Transitions)
	if reflect.DeepEqual(old, p) {
		return false, nil
	}
	return s.exec(command.Change("update page "+p.Name, func(v scene.Page) { pages[i] = v }, old, p))
}

// SetRange sets the scene's playback start and end frames.
func (s *Session) SetRange(start, end float32) (bool, error) {
	if s.Scene == nil {
		return false, ErrNoScene
	}
	if end < start {
		return false, editErr(ErrCodeInvalidValue, "", "end %v before start %v", end, start)
	}
	c := &s.Scene.Common
	type bounds struct{ start, end float32 }
	old, next := bounds{c.Start, c.End}, bounds{start, end}
	if old == next {
		return false, nil
	}
	return s.exec(command.Change("set range", func(b bounds) { c.Start, c.End = b.start, b.end }, old, next))
}
