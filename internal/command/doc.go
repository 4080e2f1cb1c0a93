// Package command implements the reversible edit history of an editing
// session.
//
// A Command exposes two actions, Apply and Undo, each closing over one
// target location and a before/after value pair. The Stack keeps two
// unbounded sequences of commands:
//
//   - Execute applies a command and pushes it onto the undo sequence.
//   - Record pushes a command whose effect the caller already applied.
//   - Undo pops the newest command, reverts it and moves it to redo.
//   - Redo pops the newest undone command and applies it again.
//
// Any new Execute or Record clears the redo sequence. Rapid successive
// edits are never merged: each call is its own history entry.
//
// Commands must not call back into the Stack that is running them.
// Such calls return ErrReentrant and leave both sequences untouched.
package command
