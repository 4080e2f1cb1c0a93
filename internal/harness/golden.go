package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Format renders a result as the text trace stored in golden files.
func Format(name string, r *Result) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", name)
	fmt.Fprintf(&b, "setup: %s\n", r.Setup)
	for _, ev := range r.Trace {
		fmt.Fprintln(&b, ev)
	}
	fmt.Fprintf(&b, "final: %s zoom=%s\n", r.Final, num(r.Final.Zoom))
	if len(r.Final.History) == 0 {
		fmt.Fprintln(&b, "history: none")
	} else {
		fmt.Fprintln(&b, "history:")
		for _, label := range r.Final.History {
			fmt.Fprintf(&b, "  - %s\n", label)
		}
	}
	if r.Pass {
		fmt.Fprintln(&b, "result: pass")
	} else {
		fmt.Fprintln(&b, "result: fail")
		for _, msg := range r.Errors {
			fmt.Fprintf(&b, "  %s\n", msg)
		}
	}
	return []byte(b.String())
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. A trace mismatch fails t.
func RunWithGolden(t *testing.T, sc *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(sc)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, sc.Name, result)
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, Format(name, result))
}
