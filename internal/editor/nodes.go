package editor

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/google/uuid"

	"github.com/ashrindy/dvscenetool/internal/command"
	"github.com/ashrindy/dvscenetool/internal/scene"
	"github.com/ashrindy/dvscenetool/internal/templates"
)

// AddChild creates a node from def as the last child of parent and
// selects it. Element definitions are wrapped in the database's element
// base definition.
func (s *Session) AddChild(parent scene.Handle, def *templates.Definition) (scene.Handle, error) {
	pn, err := s.node(parent)
	if err != nil {
		return scene.Nil, err
	}
	n, err := s.DB.New(def)
	if err != nil {
		return scene.Nil, editErr(ErrCodeNoDefinition, pn.Name, "%v", err)
	}
	h, err := s.Scene.Tree.Add(parent, n)
	if err != nil {
		return scene.Nil, fmt.Errorf("editor: add %s: %w", def.FullName, err)
	}
	if err := s.recordAttach("add "+def.Name, h); err != nil {
		return scene.Nil, err
	}
	s.Selection = h
	slog.Debug("node added", "definition", def.FullName, "parent", pn.Name)
	return h, nil
}

// Duplicate copies h and its subtree next to h. Every copied node gets a
// fresh identity.
func (s *Session) Duplicate(h scene.Handle) (scene.Handle, error) {
	n, err := s.node(h)
	if err != nil {
		return scene.Nil, err
	}
	t := s.Scene.Tree
	if h == t.Root() {
		return scene.Nil, fmt.Errorf("editor: duplicate %s: %w", n.Name, scene.ErrRootNode)
	}
	sub, err := t.CloneSubtree(h)
	if err != nil {
		return scene.Nil, fmt.Errorf("editor: duplicate %s: %w", n.Name, err)
	}
	for _, sh := range sub.Handles() {
		sub.Node(sh).RegenerateGUID()
	}
	dup, err := t.Graft(t.Parent(h), t.IndexOf(h)+1, sub)
	if err != nil {
		return scene.Nil, fmt.Errorf("editor: duplicate %s: %w", n.Name, err)
	}
	if err := s.recordAttach("duplicate "+n.Name, dup); err != nil {
		return scene.Nil, err
	}
	s.Selection = dup
	return dup, nil
}

// recordAttach records the already attached node h as an undoable insert.
// A refused record detaches h again.
func (s *Session) recordAttach(label string, h scene.Handle) error {
	t := s.Scene.Tree
	parent, index := t.Parent(h), t.IndexOf(h)
	err := s.Stack.Record(&command.Func{
		Name:   label,
		DoFn:   func() { must(t.Attach(h, parent, index)) },
		UndoFn: func() { _, _, err := t.Detach(h); must(err) },
	})
	if err != nil {
		_, _, _ = t.Detach(h)
	}
	return err
}

// Remove detaches h and its subtree. Undo attaches it back at the same
// position with the same handles.
func (s *Session) Remove(h scene.Handle) error {
	n, err := s.node(h)
	if err != nil {
		return err
	}
	t := s.Scene.Tree
	if h == t.Root() {
		return fmt.Errorf("editor: remove %s: %w", n.Name, scene.ErrRootNode)
	}
	parent, index := t.Parent(h), t.IndexOf(h)
	err = s.Stack.Execute(&command.Func{
		Name:   "remove " + n.Name,
		DoFn:   func() { _, _, err := t.Detach(h); must(err) },
		UndoFn: func() { must(t.Attach(h, parent, index)) },
	})
	if err != nil {
		return err
	}
	s.fixSelection()
	slog.Debug("node removed", "node", n.Name)
	return nil
}

// Move reparents h as the last child of newParent. Moving a node under
// itself or one of its descendants fails with scene.ErrCycle.
func (s *Session) Move(h, newParent scene.Handle) error {
	n, err := s.node(h)
	if err != nil {
		return err
	}
	if _, err := s.node(newParent); err != nil {
		return err
	}
	t := s.Scene.Tree
	oldParent, oldIndex := t.Parent(h), t.IndexOf(h)
	if err := t.Reparent(h, newParent); err != nil {
		return fmt.Errorf("editor: move %s: %w", n.Name, err)
	}
	newIndex := t.IndexOf(h)
	err = s.Stack.Record(&command.Func{
		Name:   "move " + n.Name,
		DoFn:   func() { must(t.Move(h, newParent, newIndex)) },
		UndoFn: func() { must(t.Move(h, oldParent, oldIndex)) },
	})
	if err != nil {
		must(t.Move(h, oldParent, oldIndex))
	}
	return err
}

// FieldRef addresses a top-level field of a node, or of its element.
type FieldRef struct {
	Node    scene.Handle
	Key     string
	Element bool
}

func (r FieldRef) String() string {
	if r.Element {
		return "element." + r.Key
	}
	return r.Key
}

// fields returns the field map ref points into.
func (s *Session) fields(ref FieldRef) (scene.Fields, *scene.Node, error) {
	n, err := s.node(ref.Node)
	if err != nil {
		return nil, nil, err
	}
	fs := n.Fields
	if ref.Element {
		if n.Element == nil {
			return nil, n, editErr(ErrCodeNotElement, n.Name, "node has no element fields")
		}
		fs = n.Element.Fields
	}
	if _, ok := fs[ref.Key]; !ok {
		return nil, n, editErr(ErrCodeNoField, n.Name, "no field %q", ref)
	}
	return fs, n, nil
}

// Field returns the field ref points at.
func (s *Session) Field(ref FieldRef) (scene.Field, error) {
	fs, _, err := s.fields(ref)
	if err != nil {
		return scene.Field{}, err
	}
	return fs[ref.Key], nil
}

// SetField replaces the payload of a node field. The value must have the
// field's DataType. It reports whether anything changed; an equal value
// records nothing.
func (s *Session) SetField(h scene.Handle, key string, v scene.Value) (bool, error) {
	return s.SetFieldValue(FieldRef{Node: h, Key: key}, v)
}

// SetElementField replaces the payload of an element field.
func (s *Session) SetElementField(h scene.Handle, key string, v scene.Value) (bool, error) {
	return s.SetFieldValue(FieldRef{Node: h, Key: key, Element: true}, v)
}

// SetFieldValue replaces the payload of the field ref points at.
func (s *Session) SetFieldValue(ref FieldRef, v scene.Value) (bool, error) {
	return s.SetFields("set "+ref.String(), FieldChange{Ref: ref, Value: v})
}

// FieldChange is one value of a SetFields batch.
type FieldChange struct {
	Ref   FieldRef
	Value scene.Value
}

// SetFields applies several field changes as one history entry. Every
// change is checked before any is applied. Changes to an equal value are
// dropped; when all are dropped nothing is recorded.
func (s *Session) SetFields(label string, changes ...FieldChange) (bool, error) {
	var cmds []*command.ChangeValue[scene.Field]
	for _, c := range changes {
		fs, n, err := s.fields(c.Ref)
		if err != nil {
			return false, err
		}
		old := fs[c.Ref.Key]
		if c.Value == nil || c.Value.DataType() != old.DataType() {
			return false, editErr(ErrCodeTypeMismatch, n.Name, "field %q holds %v", c.Ref, old.DataType())
		}
		if reflect.DeepEqual(old.Value, c.Value) {
			continue
		}
		key := c.Ref.Key
		cmds = append(cmds, command.Change(c.Ref.String(), func(f scene.Field) { fs[key] = f },
			old, old.With(scene.CloneValue(c.Value))))
	}
	if len(cmds) == 0 {
		return false, nil
	}
	if len(cmds) == 1 {
		cmds[0].Name = label
		return s.exec(cmds[0])
	}
	group := &command.Group{Name: label}
	for _, c := range cmds {
		group.Commands = append(group.Commands, c)
	}
	return s.exec(group)
}

// exec runs cmd through the history and reports a change on success.
func (s *Session) exec(cmd command.Command) (bool, error) {
	if err := s.Stack.Execute(cmd); err != nil {
		return false, err
	}
	return true, nil
}

// SetName renames h, truncated to the node name buffer.
func (s *Session) SetName(h scene.Handle, name string) (bool, error) {
	n, err := s.node(h)
	if err != nil {
		return false, err
	}
	probe := *n
	probe.SetName(name)
	if probe.Name == n.Name {
		return false, nil
	}
	return s.exec(command.Change("rename", func(v string) { n.Name = v }, n.Name, probe.Name))
}

// SetGUID replaces the identity of h from its text form. Text that does
// not parse is rejected and the identity is kept.
func (s *Session) SetGUID(h scene.Handle, text string) (bool, error) {
	n, err := s.node(h)
	if err != nil {
		return false, err
	}
	id, err := uuid.Parse(text)
	if err != nil {
		return false, editErr(ErrCodeInvalidValue, n.Name, "invalid guid %q", text)
	}
	return s.setGUID(n, id)
}

// RegenerateGUID gives h a fresh identity.
func (s *Session) RegenerateGUID(h scene.Handle) error {
	n, err := s.node(h)
	if err != nil {
		return err
	}
	_, err = s.setGUID(n, uuid.New())
	return err
}

func (s *Session) setGUID(n *scene.Node, id uuid.UUID) (bool, error) {
	if n.GUID == id {
		return false, nil
	}
	return s.exec(command.Change("set guid", func(v uuid.UUID) { n.GUID = v }, n.GUID, id))
}

// SetPriority sets the playback priority of h.
func (s *Session) SetPriority(h scene.Handle, priority int32) (bool, error) {
	n, err := s.node(h)
	if err != nil {
		return false, err
	}
	return s.setInt32(&n.Priority, "set priority", priority)
}

// SetFlags sets the raw node flags of h.
func (s *Session) SetFlags(h scene.Handle, flags int32) (bool, error) {
	n, err := s.node(h)
	if err != nil {
		return false, err
	}
	return s.setInt32(&n.Flags, "set flags", flags)
}

func (s *Session) setInt32(p *int32, label string, v int32) (bool, error) {
	if *p == v {
		return false, nil
	}
	return s.exec(command.Change(label, func(x int32) { *p = x }, *p, v))
}
