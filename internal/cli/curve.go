package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ashrindy/dvscenetool/internal/curve"
)

// CurveOptions holds flags for the curve command.
type CurveOptions struct {
	Samples    int
	Decreasing bool
	Falloff    float32
	Edits      []string // "index=value"
	Save       bool
}

// CurveResult is the curve command payload.
type CurveResult struct {
	Type       string    `json:"type"`
	Decreasing bool      `json:"decreasing"`
	Falloff    float32   `json:"falloff"`
	Samples    []float32 `json:"samples"`
}

// NewCurveCommand creates the curve command.
func NewCurveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CurveOptions{}

	cmd := &cobra.Command{
		Use:   "curve [type]",
		Short: "Generate a curve buffer",
		Long: `Generate a normalized curve of the given family and print its samples.

Without a type, and for flags left unset, the curve settings from the
settings file are used. Each --edit index=value drags the curve toward
value around index with the configured falloff. --save stores the
resulting type, direction and falloff as the new defaults.`,
		Args:          cobra.MaximumNArgs(1),
		ValidArgs:     curveTypeNames(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCurve(cmd, rootOpts, opts, args)
		},
	}

	cmd.Flags().IntVarP(&opts.Samples, "samples", "n", 32, "number of samples")
	cmd.Flags().BoolVar(&opts.Decreasing, "decreasing", false, "flip the curve")
	cmd.Flags().Float32Var(&opts.Falloff, "falloff", 0, "edit falloff (sigma)")
	cmd.Flags().StringArrayVar(&opts.Edits, "edit", nil, "interactive edit index=value, repeatable")
	cmd.Flags().BoolVar(&opts.Save, "save", false, "store the curve settings")
	return cmd
}

func curveTypeNames() []string {
	var out []string
	for _, t := range curve.Types() {
		out = append(out, t.String())
	}
	return out
}

func runCurve(cmd *cobra.Command, rootOpts *RootOptions, opts *CurveOptions, args []string) error {
	f := rootOpts.formatter(cmd)
	s, err := loadSettings(rootOpts, f)
	if err != nil {
		return err
	}
	cs, err := s.CurveSettings()
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeSettings, err)
	}

	if len(args) == 1 {
		if cs.Type, err = curve.ParseType(args[0]); err != nil {
			return f.Fail(ExitCommandError, ErrCodeInvalidArg, err)
		}
	}
	if cmd.Flags().Changed("decreasing") {
		cs.Decreasing = opts.Decreasing
	}
	if cmd.Flags().Changed("falloff") {
		cs.Falloff = opts.Falloff
	}

	buf := make([]float32, opts.Samples)
	if err := curve.Generate(buf, cs.Type, cs.Decreasing); err != nil {
		return f.Fail(ExitCommandError, ErrCodeInvalidArg, err)
	}
	for _, edit := range opts.Edits {
		index, v, err := parseEdit(edit)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeInvalidArg, err)
		}
		if err := curve.InteractiveEdit(buf, index, v, cs.Falloff); err != nil {
			return f.Fail(ExitCommandError, ErrCodeInvalidArg, fmt.Errorf("edit %s: %w", edit, err))
		}
		f.VerboseLog("edit sample %d -> %g", index, v)
	}

	if opts.Save {
		s.SetCurve(cs)
		if err := s.Save(rootOpts.Settings); err != nil {
			return f.Fail(ExitCommandError, ErrCodeWriteFailed, err)
		}
		f.VerboseLog("saved curve settings to %s", rootOpts.Settings)
	}

	result := CurveResult{Type: cs.Type.String(), Decreasing: cs.Decreasing, Falloff: cs.Falloff, Samples: buf}
	if f.JSON() {
		return f.Success(result)
	}
	direction := "increasing"
	if cs.Decreasing {
		direction = "decreasing"
	}
	fmt.Fprintf(f.Writer, "%s %s, %d samples\n", result.Type, direction, len(buf))
	parts := make([]string, len(buf))
	for i, v := range buf {
		parts[i] = strconv.FormatFloat(float64(v), 'f', 4, 32)
	}
	fmt.Fprintln(f.Writer, strings.Join(parts, " "))
	return nil
}

// parseEdit splits "index=value".
func parseEdit(s string) (int, float32, error) {
	is, vs, ok := strings.Cut(s, "=")
	if !ok {
		return 0, 0, fmt.Errorf("edit %q: want index=value", s)
	}
	index, err := strconv.Atoi(strings.TrimSpace(is))
	if err != nil {
		return 0, 0, fmt.Errorf("edit %q: index: %w", s, err)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(vs), 32)
	if err != nil {
		return 0, 0, fmt.Errorf("edit %q: value: %w", s, err)
	}
	return index, float32(v), nil
}
