package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ashrindy/dvscenetool/internal/scene"
)

// InspectResult is the inspect command payload.
type InspectResult struct {
	Path         string            `json:"path"`
	Revision     int64             `json:"revision,omitempty"`
	Start        float32           `json:"start"`
	End          float32           `json:"end"`
	Cuts         []float32         `json:"cuts"`
	ResourceCuts []float32         `json:"resource_cuts"`
	Pages        []PageSummary     `json:"pages,omitempty"`
	Resources    []ResourceSummary `json:"resources,omitempty"`
	Nodes        []TreeEntry       `json:"nodes"`
	Dangling     []DanglingSummary `json:"dangling,omitempty"`
}

// PageSummary describes a page and where its transitions lead.
type PageSummary struct {
	Index int32   `json:"index"`
	Name  string  `json:"name"`
	Start float32 `json:"start"`
	End   float32 `json:"end"`
	Next  []int32 `json:"next,omitempty"`
}

// ResourceSummary describes a resource entry.
type ResourceSummary struct {
	GUID string `json:"guid"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// TreeEntry is a node with its depth below the root.
type TreeEntry struct {
	NodeSummary
	Depth int `json:"depth"`
}

// DanglingSummary is a Guid field pointing outside the tree.
type DanglingSummary struct {
	Node   string `json:"node"`
	Field  string `json:"field"`
	Target string `json:"target"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	var revision int64

	cmd := &cobra.Command{
		Use:   "inspect <path>",
		Short: "Print a stored scene",
		Long: `Print the node tree, playback range, cuts, pages and resources of a
stored scene. Guid fields whose target is missing from the tree are listed
as dangling.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, rootOpts, args[0], revision)
		},
	}

	cmd.Flags().Int64Var(&revision, "revision", 0, "revision to show (default latest)")
	return cmd
}

func runInspect(cmd *cobra.Command, opts *RootOptions, path string, revision int64) error {
	f := opts.formatter(cmd)
	if revision < 0 {
		return f.Fail(ExitCommandError, ErrCodeInvalidArg, fmt.Errorf("revision %d is negative", revision))
	}
	e, err := openEnv(opts, f)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	var sc *scene.Scene
	if revision > 0 {
		sc, err = e.store.LoadRevision(ctx, path, revision, e.db)
	} else {
		sc, err = e.store.Load(ctx, path, e.db)
	}
	if err != nil {
		return loadFailure(f, err)
	}

	result := inspect(path, revision, sc)
	if f.JSON() {
		return f.Success(result)
	}
	writeInspect(f.Writer, result)
	return nil
}

func inspect(path string, revision int64, sc *scene.Scene) InspectResult {
	c := sc.Common
	r := InspectResult{
		Path:         path,
		Revision:     revision,
		Start:        c.Start,
		End:          c.End,
		Cuts:         nonNil(c.Cuts),
		ResourceCuts: nonNil(c.ResourceCuts),
	}
	for _, p := range c.Pages {
		ps := PageSummary{Index: p.Index, Name: p.Name, Start: p.Start, End: p.End}
		for _, l := range c.PageLinks() {
			if l.From == p.Index {
				ps.Next = append(ps.Next, l.To)
			}
		}
		r.Pages = append(r.Pages, ps)
	}
	for _, res := range sc.Resources {
		r.Resources = append(r.Resources, ResourceSummary{GUID: res.GUID.String(), Name: res.Name, Kind: res.Kind.String()})
	}

	var walk func(h scene.Handle, depth int)
	walk = func(h scene.Handle, depth int) {
		r.Nodes = append(r.Nodes, TreeEntry{NodeSummary: summarize(sc.Node(h)), Depth: depth})
		for _, child := range sc.Tree.Children(h) {
			walk(child, depth+1)
		}
	}
	walk(sc.Tree.Root(), 0)

	for _, d := range sc.DanglingRefs() {
		r.Dangling = append(r.Dangling, DanglingSummary{
			Node:   sc.Node(d.Node).GUID.String(),
			Field:  d.Path,
			Target: d.Target.String(),
		})
	}
	return r
}

func writeInspect(w io.Writer, r InspectResult) {
	header := r.Path
	if r.Revision > 0 {
		header += fmt.Sprintf(" @%d", r.Revision)
	}
	fmt.Fprintln(w, header)
	fmt.Fprintf(w, "range: %s..%s\n", frame(r.Start), frame(r.End))
	fmt.Fprintf(w, "cuts: %s\n", frames(r.Cuts))
	fmt.Fprintf(w, "resource cuts: %s\n", frames(r.ResourceCuts))
	for _, p := range r.Pages {
		fmt.Fprintf(w, "page %d %s: %s..%s", p.Index, p.Name, frame(p.Start), frame(p.End))
		for _, n := range p.Next {
			fmt.Fprintf(w, " -> %d", n)
		}
		fmt.Fprintln(w)
	}
	for _, res := range r.Resources {
		fmt.Fprintf(w, "resource %s - %s (%s)\n", res.Name, res.Kind, res.GUID)
	}
	fmt.Fprintln(w, "nodes:")
	for _, n := range r.Nodes {
		fmt.Fprintf(w, "%s- %s [%s", strings.Repeat("  ", n.Depth+1), n.Name, n.Category)
		if n.Element != "" {
			fmt.Fprintf(w, " / %s", n.Element)
		}
		fmt.Fprintf(w, "] %s\n", n.GUID)
	}
	for _, d := range r.Dangling {
		fmt.Fprintf(w, "✗ dangling %s.%s -> %s\n", d.Node, d.Field, d.Target)
	}
}

func frame(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

func frames(vs []float32) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = frame(v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func nonNil(vs []float32) []float32 {
	if vs == nil {
		return []float32{}
	}
	return vs
}
