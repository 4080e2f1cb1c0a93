package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// SceneEntry is one row of the list command.
type SceneEntry struct {
	Path      string `json:"path"`
	Root      string `json:"root"`
	RootGUID  string `json:"root_guid"`
	Nodes     int    `json:"nodes"`
	Revisions int64  `json:"revisions"`
}

// RevisionEntry is one row of the revisions command.
type RevisionEntry struct {
	Seq   int64  `json:"seq"`
	Nodes int    `json:"nodes"`
	Hash  string `json:"hash"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List stored scenes",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, rootOpts)
		},
	}
}

func runList(cmd *cobra.Command, opts *RootOptions) error {
	f := opts.formatter(cmd)
	e, err := openEnv(opts, f)
	if err != nil {
		return err
	}
	defer e.Close()

	entries, err := e.store.List(cmd.Context())
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, err)
	}
	out := make([]SceneEntry, len(entries))
	for i, en := range entries {
		out[i] = SceneEntry{Path: en.Path, Root: en.RootName, RootGUID: en.RootGUID, Nodes: en.NodeCount, Revisions: en.Seq}
	}

	if f.JSON() {
		return f.Success(out)
	}
	if len(out) == 0 {
		fmt.Fprintln(f.Writer, "no scenes")
		return nil
	}
	for _, en := range out {
		fmt.Fprintf(f.Writer, "%s\t%s\t%d nodes\t%d revisions\n", en.Path, en.Root, en.Nodes, en.Revisions)
	}
	return nil
}

// NewRevisionsCommand creates the revisions command.
func NewRevisionsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "revisions <path>",
		Short:         "List the saves of a scene",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRevisions(cmd, rootOpts, args[0])
		},
	}
}

func runRevisions(cmd *cobra.Command, opts *RootOptions, path string) error {
	f := opts.formatter(cmd)
	e, err := openEnv(opts, f)
	if err != nil {
		return err
	}
	defer e.Close()

	revs, err := e.store.Revisions(cmd.Context(), path)
	if err != nil {
		return loadFailure(f, err)
	}
	out := make([]RevisionEntry, len(revs))
	for i, r := range revs {
		out[i] = RevisionEntry{Seq: r.Seq, Nodes: r.NodeCount, Hash: r.Hash}
	}

	if f.JSON() {
		return f.Success(out)
	}
	for _, r := range out {
		fmt.Fprintf(f.Writer, "%d\t%d nodes\t%s\n", r.Seq, r.Nodes, shortHash(r.Hash))
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
