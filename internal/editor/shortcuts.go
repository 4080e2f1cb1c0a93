package editor

import "log/slog"

// Keys is the keyboard state of one frame.
type Keys struct {
	Ctrl bool
	Z    bool
	Y    bool
}

// Shortcut is the action a frame's keys triggered.
type Shortcut int

const (
	ShortcutNone Shortcut = iota
	ShortcutUndo
	ShortcutRedo
)

func (a Shortcut) String() string {
	switch a {
	case ShortcutUndo:
		return "undo"
	case ShortcutRedo:
		return "redo"
	default:
		return "none"
	}
}

// HandleShortcuts runs Ctrl+Z (undo) and Ctrl+Y (redo). A shortcut fires
// once on the frame its key goes down; holding the key does not repeat.
func (s *Session) HandleShortcuts(k Keys) Shortcut {
	prev := s.keys
	s.keys = k
	if !k.Ctrl {
		return ShortcutNone
	}
	switch {
	case k.Z && !prev.Z:
		if s.Undo() {
			slog.Debug("shortcut", "action", ShortcutUndo)
			return ShortcutUndo
		}
	case k.Y && !prev.Y:
		if s.Redo() {
			slog.Debug("shortcut", "action", ShortcutRedo)
			return ShortcutRedo
		}
	}
	return ShortcutNone
}
