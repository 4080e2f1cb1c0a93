package cli

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ashrindy/dvscenetool/internal/scene"
	"github.com/ashrindy/dvscenetool/internal/store"
)

// NodeSummary describes a node in command output.
type NodeSummary struct {
	GUID     string `json:"guid"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Element  string `json:"element,omitempty"`
}

func summarize(n *scene.Node) NodeSummary {
	s := NodeSummary{GUID: n.GUID.String(), Name: n.Name, Category: n.Category}
	if n.Element != nil {
		s.Element = n.Element.Definition
	}
	return s
}

// NewNewCommand creates the new command.
func NewNewCommand(rootOpts *RootOptions) *cobra.Command {
	var length float32
	var force bool

	cmd := &cobra.Command{
		Use:   "new <path>",
		Short: "Create an empty scene in the store",
		Long: `Create a scene whose root is the template database's rootNode
definition and store it as the first revision of <path>.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(cmd, rootOpts, args[0], length, force)
		},
	}

	cmd.Flags().Float32Var(&length, "length", 0, "scene end frame")
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing scene")
	return cmd
}

func runNew(cmd *cobra.Command, opts *RootOptions, path string, length float32, force bool) error {
	f := opts.formatter(cmd)
	if length < 0 {
		return f.Fail(ExitCommandError, ErrCodeInvalidArg, fmt.Errorf("length %g is negative", length))
	}
	e, err := openEnv(opts, f)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	if !force {
		_, err := e.store.Load(ctx, path, nil)
		if err == nil {
			return f.Fail(ExitCommandError, ErrCodeInvalidArg, fmt.Errorf("scene %s already exists (use --force)", path))
		}
		if !errors.Is(err, store.ErrNotFound) {
			return f.Fail(ExitCommandError, ErrCodeGeneric, err)
		}
	}

	s, err := e.session()
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeSettings, err)
	}
	if err := s.NewScene(); err != nil {
		return f.Fail(ExitCommandError, ErrCodeTemplates, err)
	}
	if _, err := s.SetRange(0, length); err != nil {
		return f.Fail(ExitCommandError, ErrCodeInvalidArg, err)
	}
	if err := s.Save(ctx, path); err != nil {
		return f.Fail(ExitCommandError, ErrCodeWriteFailed, err)
	}

	root := s.Scene.Node(s.Scene.Tree.Root())
	if f.JSON() {
		return f.Success(map[string]any{"path": path, "root": summarize(root), "end": length})
	}
	fmt.Fprintf(f.Writer, "✓ created %s (root %s)\n", path, root)
	return nil
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "add <path> <definition>",
		Short: "Add a node to a stored scene",
		Long: `Instantiate a node or element definition under the root, or under
the node given by --parent, and save a new revision.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, rootOpts, args[0], args[1], parent)
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "GUID of the parent node (default root)")
	return cmd
}

func runAdd(cmd *cobra.Command, opts *RootOptions, path, definition, parent string) error {
	f := opts.formatter(cmd)
	e, err := openEnv(opts, f)
	if err != nil {
		return err
	}
	defer e.Close()

	def, ok := e.db.Lookup(definition)
	if !ok {
		return f.Fail(ExitCommandError, ErrCodeInvalidArg, fmt.Errorf("database %s has no definition %q", e.db.Name, definition))
	}

	s, err := e.session()
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeSettings, err)
	}
	ctx := cmd.Context()
	if err := s.Open(ctx, path); err != nil {
		return loadFailure(f, err)
	}

	target := s.Scene.Tree.Root()
	if parent != "" {
		id, err := uuid.Parse(parent)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeInvalidArg, fmt.Errorf("parent: %w", err))
		}
		h, ok := s.Scene.Tree.FindByGUID(id)
		if !ok {
			return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Errorf("no node %s in %s", id, path))
		}
		target = h
	}

	h, err := s.AddChild(target, def)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeInvalidArg, err)
	}
	if err := s.Save(ctx, ""); err != nil {
		return f.Fail(ExitCommandError, ErrCodeWriteFailed, err)
	}

	n := s.Scene.Node(h)
	if f.JSON() {
		return f.Success(summarize(n))
	}
	fmt.Fprintf(f.Writer, "✓ added %s to %s\n", n, path)
	return nil
}

// NewRemoveCommand creates the rm command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "rm <path>",
		Short:         "Delete a scene and its revisions",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(cmd, rootOpts, args[0])
		},
	}
}

func runRemove(cmd *cobra.Command, opts *RootOptions, path string) error {
	f := opts.formatter(cmd)
	e, err := openEnv(opts, f)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.store.Delete(cmd.Context(), path); err != nil {
		return loadFailure(f, err)
	}
	if f.JSON() {
		return f.Success(map[string]string{"path": path})
	}
	fmt.Fprintf(f.Writer, "✓ deleted %s\n", path)
	return nil
}
