package command

import (
	"errors"
	"log/slog"
	"slices"
)

var (
	// ErrReentrant is returned when a command calls back into the stack
	// that is running it.
	ErrReentrant = errors.New("command: reentrant call into command stack")

	// ErrNilCommand is returned by Execute and Record for a nil command.
	ErrNilCommand = errors.New("command: nil command")
)

// Entry is one history item.
type Entry struct {
	Seq     int64
	Label   string
	Command Command
}

// Stack is an undo/redo history. It is not safe for concurrent use; one
// editing session owns one Stack.
type Stack struct {
	undo    []Entry
	redo    []Entry
	clock   *Clock
	running bool
}

// Option configures a Stack.
type Option func(*Stack)

// WithClock stamps entries from c instead of a private clock.
func WithClock(c *Clock) Option {
	return func(s *Stack) {
		s.clock = c
	}
}

// NewStack creates an empty stack.
func NewStack(opts ...Option) *Stack {
	s := &Stack{}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = NewClock()
	}
	return s
}

// Execute applies cmd, pushes it onto the undo history and clears redo.
func (s *Stack) Execute(cmd Command) error {
	if cmd == nil {
		return ErrNilCommand
	}
	if s.running {
		return ErrReentrant
	}
	s.run(cmd.Apply)
	s.push(cmd)
	slog.Debug("command executed", "label", LabelOf(cmd), "depth", len(s.undo))
	return nil
}

// Record pushes cmd without applying it. The caller has already changed
// the target. Redo is cleared.
func (s *Stack) Record(cmd Command) error {
	if cmd == nil {
		return ErrNilCommand
	}
	if s.running {
		return ErrReentrant
	}
	s.push(cmd)
	slog.Debug("command recorded", "label", LabelOf(cmd), "depth", len(s.undo))
	return nil
}

func (s *Stack) push(cmd Command) {
	s.undo = append(s.undo, Entry{Seq: s.clock.Next(), Label: LabelOf(cmd), Command: cmd})
	s.redo = nil
}

func (s *Stack) run(fn func()) {
	s.running = true
	defer func() { s.running = false }()
	fn()
}

// Undo reverts the newest command. It reports false when there is nothing
// to undo or when called from inside a running command.
func (s *Stack) Undo() bool {
	if s.running || len(s.undo) == 0 {
		return false
	}
	e := s.undo[len(s.undo)-1]
	s.undo[len(s.undo)-1] = Entry{}
	s.undo = s.undo[:len(s.undo)-1]
	s.run(e.Command.Undo)
	s.redo = append(s.redo, e)
	slog.Debug("command undone", "label", e.Label, "seq", e.Seq)
	return true
}

// Redo re-applies the newest undone command. It reports false when there
// is nothing to redo or when called from inside a running command.
func (s *Stack) Redo() bool {
	if s.running || len(s.redo) == 0 {
		return false
	}
	e := s.redo[len(s.redo)-1]
	s.redo[len(s.redo)-1] = Entry{}
	s.redo = s.redo[:len(s.redo)-1]
	s.run(e.Command.Apply)
	s.undo = append(s.undo, e)
	slog.Debug("command redone", "label", e.Label, "seq", e.Seq)
	return true
}

// CanUndo reports whether Undo would do anything.
func (s *Stack) CanUndo() bool { return !s.running && len(s.undo) > 0 }

// CanRedo reports whether Redo would do anything.
func (s *Stack) CanRedo() bool { return !s.running && len(s.redo) > 0 }

// UndoLen returns the number of undoable entries.
func (s *Stack) UndoLen() int { return len(s.undo) }

// RedoLen returns the number of redoable entries.
func (s *Stack) RedoLen() int { return len(s.redo) }

// History returns the undoable entries, oldest first.
func (s *Stack) History() []Entry {
	return slices.Clone(s.undo)
}

// Pending returns the redoable entries, next to redo first.
func (s *Stack) Pending() []Entry {
	out := slices.Clone(s.redo)
	slices.Reverse(out)
	return out
}

// Clear drops both histories. Used when the session switches scenes.
func (s *Stack) Clear() {
	s.undo = nil
	s.redo = nil
}
