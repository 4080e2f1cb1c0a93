package editor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashrindy/dvscenetool/internal/command"
	"github.com/ashrindy/dvscenetool/internal/scene"
	"github.com/ashrindy/dvscenetool/internal/templates"
	"github.com/ashrindy/dvscenetool/internal/testutil"
)

// memStorage keeps encoded documents in memory.
type memStorage struct {
	docs map[string][]byte
}

func (m *memStorage) Save(_ context.Context, path string, s *scene.Scene) error {
	data, err := scene.MarshalDocument(s)
	if err != nil {
		return err
	}
	m.docs[path] = data
	return nil
}

func (m *memStorage) Load(_ context.Context, path string, db *templates.Database) (*scene.Scene, error) {
	data, ok := m.docs[path]
	if !ok {
		return nil, errors.New("not found")
	}
	s, err := scene.UnmarshalDocument(data)
	if err != nil {
		return nil, err
	}
	if unknown := db.Resolve(s); len(unknown) > 0 {
		return nil, errors.New("unknown definition " + unknown[0].FullName)
	}
	return s, nil
}

func rangers(t *testing.T) *templates.Database {
	t.Helper()
	db, err := templates.Builtin("rangers")
	require.NoError(t, err)
	return db
}

func newSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	s := New(rangers(t), opts...)
	require.NoError(t, s.NewScene())
	return s
}

func def(t *testing.T, s *Session, name string) *templates.Definition {
	t.Helper()
	d, ok := s.DB.Lookup(name)
	require.True(t, ok, "definition %s", name)
	return d
}

func TestNewScene(t *testing.T) {
	s := newSession(t)

	root := s.Scene.Tree.Node(s.Scene.Tree.Root())
	assert.Equal(t, "Root", root.Category)
	assert.Equal(t, 1, s.Scene.Tree.Len())
	assert.False(t, s.Stack.CanUndo())
	assert.Equal(t, scene.Nil, s.Selection)
}

func TestNewSceneWithoutRootDefinition(t *testing.T) {
	db, err := templates.LoadString("bare", `node: Folder: {}`)
	require.NoError(t, err)

	s := New(db)
	err = s.NewScene()
	assert.True(t, IsEditError(err, ErrCodeNoDefinition))
	assert.Nil(t, s.Scene)
}

func TestNewSceneClearsHistory(t *testing.T) {
	s := newSession(t)
	_, err := s.AddChild(s.Scene.Tree.Root(), def(t, s, "Folder"))
	require.NoError(t, err)
	require.True(t, s.Stack.CanUndo())

	require.NoError(t, s.NewScene())
	assert.False(t, s.Stack.CanUndo())

	s.Close()
	assert.Nil(t, s.Scene)
	_, err = s.AddChild(scene.Handle(1), def(t, s, "Folder"))
	assert.ErrorIs(t, err, ErrNoScene)
}

func TestAddChildNodeAndElement(t *testing.T) {
	s := newSession(t)
	root := s.Scene.Tree.Root()

	cam, err := s.AddChild(root, def(t, s, "Camera"))
	require.NoError(t, err)
	assert.Equal(t, cam, s.Selection)
	assert.Equal(t, "Camera", s.Scene.Node(cam).Category)
	assert.False(t, s.Scene.Node(cam).IsElement())

	fx, err := s.AddChild(cam, def(t, s, "Effect"))
	require.NoError(t, err)
	n := s.Scene.Node(fx)
	assert.Equal(t, "Element", n.Category)
	require.True(t, n.IsElement())
	assert.Equal(t, "Effect", n.Element.Definition)
	assert.Contains(t, n.Fields, "frameStart")
	assert.Len(t, n.Element.Fields["Curve"].Value, 32)

	require.NoError(t, s.Select(cam))
	require.True(t, s.Undo())
	assert.False(t, s.Scene.Tree.Attached(fx))
	assert.Equal(t, cam, s.Selection, "selection survives an unrelated undo")

	require.True(t, s.Undo())
	assert.Equal(t, scene.Nil, s.Selection, "selection of a detached node is dropped")

	require.True(t, s.Redo())
	require.True(t, s.Redo())
	assert.Equal(t, []scene.Handle{root, cam, fx}, s.Scene.Nodes(), "redo restores the same handles")
}

func TestAddElementWithoutBase(t *testing.T) {
	db, err := templates.LoadString("nobase", `
node: Root: descriptions: rootNode: "true"
element: Fade: {}
`)
	require.NoError(t, err)
	s := New(db)
	require.NoError(t, s.NewScene())

	fade, _ := db.Element("Fade")
	_, err = s.AddChild(s.Scene.Tree.Root(), fade)
	assert.True(t, IsEditError(err, ErrCodeNoDefinition))
	assert.Equal(t, 1, s.Scene.Tree.Len())
	assert.False(t, s.Stack.CanUndo())
}

func TestRemoveAndUndo(t *testing.T) {
	s := newSession(t)
	root := s.Scene.Tree.Root()
	a, _ := s.AddChild(root, def(t, s, "Folder"))
	b, _ := s.AddChild(root, def(t, s, "Folder"))
	a1, _ := s.AddChild(a, def(t, s, "Path"))
	require.NoError(t, s.Select(a1))

	require.NoError(t, s.Remove(a))
	assert.Equal(t, []scene.Handle{root, b}, s.Scene.Nodes())
	assert.Equal(t, scene.Nil, s.Selection)

	require.True(t, s.Undo())
	assert.Equal(t, []scene.Handle{root, a, a1, b}, s.Scene.Nodes())

	assert.ErrorIs(t, s.Remove(root), scene.ErrRootNode)
	require.NoError(t, s.Remove(a))
	err := s.Remove(a)
	assert.True(t, IsEditError(err, ErrCodeInvalidNode), "removed node is no longer editable")
}

func TestMove(t *testing.T) {
	s := newSession(t)
	root := s.Scene.Tree.Root()
	a, _ := s.AddChild(root, def(t, s, "Folder"))
	b, _ := s.AddChild(root, def(t, s, "Folder"))
	a1, _ := s.AddChild(a, def(t, s, "Path"))
	history := s.Stack.UndoLen()

	assert.ErrorIs(t, s.Move(a, a1), scene.ErrCycle)
	assert.ErrorIs(t, s.Move(a, a), scene.ErrCycle)
	assert.ErrorIs(t, s.Move(root, b), scene.ErrRootNode)
	assert.Equal(t, history, s.Stack.UndoLen(), "rejected moves record nothing")

	require.NoError(t, s.Move(a, b))
	assert.Equal(t, []scene.Handle{root, b, a, a1}, s.Scene.Nodes())

	require.True(t, s.Undo())
	assert.Equal(t, []scene.Handle{root, a, a1, b}, s.Scene.Nodes(), "original position restored")

	require.True(t, s.Redo())
	assert.Equal(t, b, s.Scene.Tree.Parent(a))
}

func TestDuplicate(t *testing.T) {
	s := newSession(t)
	root := s.Scene.Tree.Root()
	a, _ := s.AddChild(root, def(t, s, "Folder"))
	a1, _ := s.AddChild(a, def(t, s, "Path"))
	b, _ := s.AddChild(root, def(t, s, "Folder"))

	dup, err := s.Duplicate(a)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Scene.Tree.IndexOf(dup))
	assert.Equal(t, 2, s.Scene.Tree.IndexOf(b))

	dupChild := s.Scene.Tree.Children(dup)[0]
	assert.NotEqual(t, s.Scene.Node(a).GUID, s.Scene.Node(dup).GUID)
	assert.NotEqual(t, s.Scene.Node(a1).GUID, s.Scene.Node(dupChild).GUID)
	assert.Equal(t, s.Scene.Node(a1).Name, s.Scene.Node(dupChild).Name)

	require.True(t, s.Undo())
	assert.Equal(t, 4, s.Scene.Tree.Len())

	_, err = s.Duplicate(root)
	assert.ErrorIs(t, err, scene.ErrRootNode)
}

func TestDuplicateIdentitiesAreFresh(t *testing.T) {
	testutil.UseGUIDSource(t)
	s := newSession(t)
	root := s.Scene.Tree.Root()
	a, _ := s.AddChild(root, def(t, s, "Folder"))
	_, _ = s.AddChild(a, def(t, s, "Path"))
	assert.Equal(t, testutil.GUID(1), s.Scene.Node(root).GUID)

	dup, err := s.Duplicate(a)
	require.NoError(t, err)
	assert.Equal(t, testutil.GUID(4), s.Scene.Node(dup).GUID)
	assert.Equal(t, testutil.GUID(5), s.Scene.Node(s.Scene.Tree.Children(dup)[0]).GUID)
}

func TestSetField(t *testing.T) {
	s := newSession(t)
	cam, _ := s.AddChild(s.Scene.Tree.Root(), def(t, s, "Camera"))
	history := s.Stack.UndoLen()

	changed, err := s.SetField(cam, "fov", scene.Float(60))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, scene.Float(60), s.Scene.Node(cam).Fields["fov"].Value)

	changed, err = s.SetField(cam, "fov", scene.Float(60))
	require.NoError(t, err)
	assert.False(t, changed, "equal value")
	assert.Equal(t, history+1, s.Stack.UndoLen(), "equal value records nothing")

	_, err = s.SetField(cam, "fov", scene.Int(3))
	assert.True(t, IsEditError(err, ErrCodeTypeMismatch))
	_, err = s.SetField(cam, "missing", scene.Float(1))
	assert.True(t, IsEditError(err, ErrCodeNoField))
	_, err = s.SetElementField(cam, "Curve", scene.Curve{1})
	assert.True(t, IsEditError(err, ErrCodeNotElement))
	assert.Equal(t, scene.Float(60), s.Scene.Node(cam).Fields["fov"].Value, "rejected edits are no-ops")

	require.True(t, s.Undo())
	assert.Equal(t, scene.Float(45), s.Scene.Node(cam).Fields["fov"].Value)
}

func TestSetFieldKeepsDescriptionsAndCopiesValue(t *testing.T) {
	s := newSession(t)
	fx, _ := s.AddChild(s.Scene.Tree.Root(), def(t, s, "Effect"))

	c := scene.Curve{0.25, 0.5}
	_, err := s.SetElementField(fx, "Curve", c)
	require.NoError(t, err)
	c[0] = 1
	assert.Equal(t, scene.Curve{0.25, 0.5}, s.Scene.Node(fx).Element.Fields["Curve"].Value)

	f, err := s.Field(FieldRef{Node: fx, Key: "updateTiming"})
	require.NoError(t, err)
	assert.True(t, f.Hidden())
	e := f.Value.(scene.Enum)
	e, ok := e.WithSelected("CharacterFix")
	require.True(t, ok)
	_, err = s.SetField(fx, "updateTiming", e)
	require.NoError(t, err)
	f, _ = s.Field(FieldRef{Node: fx, Key: "updateTiming"})
	assert.True(t, f.Hidden(), "descriptions survive the edit")
}

func TestSetFieldsGroupsOneEntry(t *testing.T) {
	s := newSession(t)
	fx, _ := s.AddChild(s.Scene.Tree.Root(), def(t, s, "Effect"))
	history := s.Stack.UndoLen()

	changed, err := s.SetFields("move clip",
		FieldChange{Ref: FieldRef{Node: fx, Key: "frameStart"}, Value: scene.Float(5)},
		FieldChange{Ref: FieldRef{Node: fx, Key: "frameEnd"}, Value: scene.Float(65)},
	)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, history+1, s.Stack.UndoLen())
	assert.Equal(t, "move clip", command.LabelOf(s.Stack.History()[history].Command))

	_, err = s.SetFields("bad",
		FieldChange{Ref: FieldRef{Node: fx, Key: "frameStart"}, Value: scene.Float(9)},
		FieldChange{Ref: FieldRef{Node: fx, Key: "frameEnd"}, Value: scene.UInt(9)},
	)
	assert.Error(t, err)
	assert.Equal(t, scene.Float(5), s.Scene.Node(fx).Fields["frameStart"].Value, "batch is all or nothing")

	require.True(t, s.Undo())
	assert.Equal(t, scene.Float(0), s.Scene.Node(fx).Fields["frameStart"].Value)
	assert.Equal(t, scene.Float(60), s.Scene.Node(fx).Fields["frameEnd"].Value)
}

func TestNodeProperties(t *testing.T) {
	s := newSession(t)
	h, _ := s.AddChild(s.Scene.Tree.Root(), def(t, s, "Folder"))
	n := s.Scene.Node(h)
	oldGUID := n.GUID

	changed, err := s.SetName(h, strings.Repeat("n", 100))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Len(t, n.Name, scene.MaxNodeNameLength-1)

	_, err = s.SetGUID(h, "not-a-guid")
	assert.True(t, IsEditError(err, ErrCodeInvalidValue))
	assert.Equal(t, oldGUID, n.GUID)

	_, err = s.SetGUID(h, "6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	require.NoError(t, err)
	assert.Equal(t, uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), n.GUID)

	require.NoError(t, s.RegenerateGUID(h))
	assert.NotEqual(t, uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), n.GUID)

	_, err = s.SetPriority(h, 4)
	require.NoError(t, err)
	_, err = s.SetFlags(h, 3)
	require.NoError(t, err)
	changed, err = s.SetFlags(h, 3)
	require.NoError(t, err)
	assert.False(t, changed)

	for s.Stack.UndoLen() > 1 {
		require.True(t, s.Undo())
	}
	assert.Equal(t, "Folder", n.Name)
	assert.Equal(t, oldGUID, n.GUID)
	assert.Equal(t, int32(0), n.Priority)
	assert.Equal(t, int32(0), n.Flags)
}

func TestOpenSave(t *testing.T) {
	st := &memStorage{docs: map[string][]byte{}}
	s := newSession(t, WithStorage(st))
	ctx := context.Background()
	cam, _ := s.AddChild(s.Scene.Tree.Root(), def(t, s, "Camera"))
	camGUID := s.Scene.Node(cam).GUID

	assert.ErrorIs(t, s.Save(ctx, ""), ErrNoPath)
	require.NoError(t, s.Save(ctx, "scenes/a.dvscene"))
	assert.Equal(t, "scenes/a.dvscene", s.Path)
	require.NoError(t, s.Save(ctx, ""), "reuses the session path")

	s2 := New(s.DB, WithStorage(st))
	require.NoError(t, s2.Open(ctx, "scenes/a.dvscene"))
	assert.Equal(t, "scenes/a.dvscene", s2.Path)
	_, ok := s2.Scene.Tree.FindByGUID(camGUID)
	assert.True(t, ok)
	assert.False(t, s2.Stack.CanUndo())

	before := s2.Scene
	assert.Error(t, s2.Open(ctx, "missing"))
	assert.Same(t, before, s2.Scene, "failed open keeps the scene")

	bare := New(s.DB)
	assert.ErrorIs(t, bare.Open(ctx, "x"), ErrNoStorage)
	require.NoError(t, bare.NewScene())
	assert.ErrorIs(t, bare.Save(ctx, "x"), ErrNoStorage)
}

func TestOpenRejectsUnknownDefinitions(t *testing.T) {
	st := &memStorage{docs: map[string][]byte{}}
	s := newSession(t, WithStorage(st))
	_, err := s.Scene.Tree.Add(s.Scene.Tree.Root(), scene.NewNode("Ghost", "ghost"))
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), "ghost"))

	err = New(s.DB, WithStorage(st)).Open(context.Background(), "ghost")
	assert.ErrorContains(t, err, "Ghost")
}

func TestSelect(t *testing.T) {
	s := newSession(t)
	assert.Nil(t, s.Selected())

	require.NoError(t, s.Select(s.Scene.Tree.Root()))
	assert.Equal(t, "Root", s.Selected().Category)
	assert.Error(t, s.Select(scene.Handle(99)))

	require.NoError(t, s.Select(scene.Nil))
	assert.Nil(t, s.Selected())
}

func TestWithClockStampsHistory(t *testing.T) {
	s := newSession(t, WithClock(command.NewClockAt(41)))
	_, err := s.AddChild(s.Scene.Tree.Root(), def(t, s, "Folder"))
	require.NoError(t, err)
	assert.Equal(t, int64(42), s.Stack.History()[0].Seq)
}
