package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ashrindy/dvscenetool/internal/harness"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	Golden string // golden trace directory; empty skips trace comparison
	Update bool
}

// PlayResult summarizes a play run.
type PlayResult struct {
	Passed    int               `json:"passed"`
	Failed    int               `json:"failed"`
	Total     int               `json:"total"`
	Scenarios []ScenarioOutcome `json:"scenarios"`
}

// ScenarioOutcome is the result of one scenario file.
type ScenarioOutcome struct {
	Name   string   `json:"name"`
	File   string   `json:"file"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{}

	cmd := &cobra.Command{
		Use:   "play <scenario.yaml>...",
		Short: "Replay timeline scenarios",
		Long: `Replay scripted pointer and keyboard input against the timeline panel
and check each scenario's expectations.

With --golden, the rendered trace of each scenario is compared against
<dir>/<name>.golden. --update rewrites the golden files instead.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, rootOpts, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Golden, "golden", "", "golden trace directory")
	cmd.Flags().BoolVar(&opts.Update, "update", false, "rewrite golden traces")
	return cmd
}

func runPlay(cmd *cobra.Command, rootOpts *RootOptions, opts *PlayOptions, files []string) error {
	f := rootOpts.formatter(cmd)
	if opts.Update && opts.Golden == "" {
		return f.Fail(ExitCommandError, ErrCodeInvalidArg, fmt.Errorf("--update needs --golden"))
	}

	result := PlayResult{Total: len(files)}
	for _, file := range files {
		outcome, err := playFile(file, opts, f)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeGeneric, err)
		}
		if outcome.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
		result.Scenarios = append(result.Scenarios, outcome)

		if !f.JSON() {
			if outcome.Pass {
				fmt.Fprintf(f.Writer, "✓ %s\n", outcome.Name)
			} else {
				fmt.Fprintf(f.Writer, "✗ %s\n", outcome.Name)
				for _, e := range outcome.Errors {
					fmt.Fprintf(f.Writer, "    %s\n", e)
				}
			}
		}
	}

	message := fmt.Sprintf("%d scenario(s) failed", result.Failed)
	if f.JSON() {
		if result.Failed > 0 {
			if err := f.Error(ErrCodeFailed, message, result); err != nil {
				return err
			}
		} else if err := f.Success(result); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(f.Writer)
		fmt.Fprintf(f.Writer, "Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, message)
	}
	return nil
}

// playFile runs one scenario. Load and setup problems are command errors;
// failed expectations and trace mismatches are reported in the outcome.
func playFile(file string, opts *PlayOptions, f *OutputFormatter) (ScenarioOutcome, error) {
	name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	outcome := ScenarioOutcome{Name: name, File: file}

	sc, err := harness.LoadScenario(file)
	if err != nil {
		return outcome, err
	}
	outcome.Name = sc.Name

	r, err := harness.Run(sc)
	if err != nil {
		return outcome, fmt.Errorf("%s: %w", file, err)
	}
	f.VerboseLog("%s: %d frame(s)", sc.Name, len(r.Trace))
	outcome.Pass = r.Pass
	outcome.Errors = append(outcome.Errors, r.Errors...)

	if opts.Golden == "" {
		return outcome, nil
	}

	trace := harness.Format(sc.Name, r)
	goldenPath := filepath.Join(opts.Golden, name+".golden")
	if opts.Update {
		if err := os.MkdirAll(opts.Golden, 0o755); err != nil {
			return outcome, err
		}
		if err := os.WriteFile(goldenPath, trace, 0o644); err != nil {
			return outcome, err
		}
		f.VerboseLog("updated %s", goldenPath)
		return outcome, nil
	}

	want, err := os.ReadFile(goldenPath)
	if err != nil {
		return outcome, fmt.Errorf("golden trace: %w", err)
	}
	if !bytes.Equal(want, trace) {
		outcome.Pass = false
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("trace differs from %s", goldenPath))
	}
	return outcome, nil
}
