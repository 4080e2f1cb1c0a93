package editor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ashrindy/dvscenetool/internal/command"
	"github.com/ashrindy/dvscenetool/internal/curve"
	"github.com/ashrindy/dvscenetool/internal/scene"
	"github.com/ashrindy/dvscenetool/internal/templates"
)

// Storage persists scenes by path.
type Storage interface {
	Save(ctx context.Context, path string, s *scene.Scene) error
	Load(ctx context.Context, path string, db *templates.Database) (*scene.Scene, error)
}

// Session is one editing session: at most one open scene, the database
// its nodes are created from, and the undo history of its edits.
type Session struct {
	Scene     *scene.Scene // nil when no scene is open
	DB        *templates.Database
	Stack     *command.Stack
	Selection scene.Handle
	Curve     curve.Settings
	Path      string // where the scene was last opened or saved

	storage Storage
	keys    Keys // previous frame's shortcut keys
}

// Option configures a Session.
type Option func(*Session)

// WithStorage sets the storage used by Open and Save.
func WithStorage(st Storage) Option {
	return func(s *Session) {
		s.storage = st
	}
}

// WithClock stamps history entries from c.
func WithClock(c *command.Clock) Option {
	return func(s *Session) {
		s.Stack = command.NewStack(command.WithClock(c))
	}
}

// WithCurveSettings sets the initial curve generation settings.
func WithCurveSettings(cs curve.Settings) Option {
	return func(s *Session) {
		s.Curve = cs
	}
}

// New creates a session over db with no scene open.
func New(db *templates.Database, opts ...Option) *Session {
	s := &Session{
		DB:    db,
		Curve: curve.DefaultSettings(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Stack == nil {
		s.Stack = command.NewStack()
	}
	return s
}

// NewScene replaces the open scene with a fresh one whose root is built
// from the database's rootNode definition.
func (s *Session) NewScene() error {
	root, ok := s.DB.Root()
	if !ok {
		return editErr(ErrCodeNoDefinition, "", "database %q has no rootNode definition", s.DB.Name)
	}
	s.replace(scene.New(root.Instantiate()), "")
	slog.Info("new scene", "root", root.FullName)
	return nil
}

// Close drops the open scene and its history.
func (s *Session) Close() {
	s.replace(nil, "")
}

// Open loads the scene at path, replacing the open one. On error the
// open scene stays.
func (s *Session) Open(ctx context.Context, path string) error {
	if s.storage == nil {
		return ErrNoStorage
	}
	sc, err := s.storage.Load(ctx, path, s.DB)
	if err != nil {
		return fmt.Errorf("editor: open %s: %w", path, err)
	}
	s.replace(sc, path)
	slog.Info("opened scene", "path", path, "nodes", sc.Tree.Len())
	return nil
}

// Save stores the open scene at path, or at the session path when path
// is empty. A successful save remembers the path.
func (s *Session) Save(ctx context.Context, path string) error {
	if s.Scene == nil {
		return ErrNoScene
	}
	if s.storage == nil {
		return ErrNoStorage
	}
	if path == "" {
		path = s.Path
	}
	if path == "" {
		return ErrNoPath
	}
	if err := s.storage.Save(ctx, path, s.Scene); err != nil {
		return fmt.Errorf("editor: save %s: %w", path, err)
	}
	s.Path = path
	slog.Info("saved scene", "path", path)
	return nil
}

func (s *Session) replace(sc *scene.Scene, path string) {
	s.Scene = sc
	s.Path = path
	s.Selection = scene.Nil
	s.Stack.Clear()
}

// Undo reverts the most recent edit.
func (s *Session) Undo() bool {
	ok := s.Stack.Undo()
	s.fixSelection()
	return ok
}

// Redo re-applies the most recently undone edit.
func (s *Session) Redo() bool {
	ok := s.Stack.Redo()
	s.fixSelection()
	return ok
}

// fixSelection drops a selection that an edit detached.
func (s *Session) fixSelection() {
	if s.Scene != nil && s.Selection != scene.Nil && !s.Scene.Tree.Attached(s.Selection) {
		s.Selection = scene.Nil
	}
}

// Select makes h the selected node. scene.Nil clears the selection.
func (s *Session) Select(h scene.Handle) error {
	if h == scene.Nil {
		s.Selection = scene.Nil
		return nil
	}
	if _, err := s.node(h); err != nil {
		return err
	}
	s.Selection = h
	return nil
}

// Selected returns the selected node, or nil.
func (s *Session) Selected() *scene.Node {
	if s.Scene == nil || s.Selection == scene.Nil {
		return nil
	}
	return s.Scene.Tree.Node(s.Selection)
}

func (s *Session) node(h scene.Handle) (*scene.Node, error) {
	if s.Scene == nil {
		return nil, ErrNoScene
	}
	if !s.Scene.Tree.Attached(h) {
		return nil, editErr(ErrCodeInvalidNode, "", "handle %d is not in the tree", h)
	}
	return s.Scene.Tree.Node(h), nil
}

// must panics on tree errors inside apply and undo. Commands replay
// changes that already succeeded once, so a failure is a broken history.
func must(err error) {
	if err != nil {
		panic(fmt.Sprintf("editor: history out of sync with tree: %v", err))
	}
}
