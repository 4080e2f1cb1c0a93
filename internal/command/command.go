package command

import "fmt"

// Command is a reversible edit. Apply and Undo must be idempotent and
// touch only the command's own target.
type Command interface {
	Apply()
	Undo()
}

// Labeler is implemented by commands that can describe themselves in
// history listings.
type Labeler interface {
	Label() string
}

// LabelOf returns cmd's label, or its Go type when it has none.
func LabelOf(cmd Command) string {
	if l, ok := cmd.(Labeler); ok {
		return l.Label()
	}
	return fmt.Sprintf("%T", cmd)
}

// ChangeValue swaps one target between an old and a new value through a
// setter. It is the command behind every field edit.
type ChangeValue[T any] struct {
	Name string
	Set  func(T)
	Old  T
	New  T
}

// Change builds a ChangeValue command.
func Change[T any](name string, set func(T), old, next T) *ChangeValue[T] {
	return &ChangeValue[T]{Name: name, Set: set, Old: old, New: next}
}

func (c *ChangeValue[T]) Apply() { c.Set(c.New) }
func (c *ChangeValue[T]) Undo()  { c.Set(c.Old) }

// Label implements Labeler.
func (c *ChangeValue[T]) Label() string { return c.Name }

// Func adapts a pair of closures to Command.
type Func struct {
	Name   string
	DoFn   func()
	UndoFn func()
}

func (f *Func) Apply() { f.DoFn() }
func (f *Func) Undo()  { f.UndoFn() }

// Label implements Labeler.
func (f *Func) Label() string { return f.Name }

// Group applies its commands in order and undoes them in reverse, so a
// multi-target edit occupies a single history entry.
type Group struct {
	Name     string
	Commands []Command
}

func (g *Group) Apply() {
	for _, c := range g.Commands {
		c.Apply()
	}
}

func (g *Group) Undo() {
	for i := len(g.Commands) - 1; i >= 0; i-- {
		g.Commands[i].Undo()
	}
}

// Label implements Labeler.
func (g *Group) Label() string { return g.Name }
