package harness

import (
	"fmt"
	"strconv"
	"strings"
)

// State is a snapshot of what a scenario can check.
type State struct {
	Clip         []float32 `json:"clip,omitempty"` // [start, end] of the selected node
	Curve        []float32 `json:"curve,omitempty"`
	Cuts         []float32 `json:"cuts"`
	ResourceCuts []float32 `json:"resource_cuts"`
	Time         float32   `json:"time"`
	Zoom         float32   `json:"zoom"`
	History      []string  `json:"history"` // undo entry labels, oldest first
}

// String is the one-line form used in traces. Curve, zoom and history
// are left out.
func (s *State) String() string {
	var b strings.Builder
	if s.Clip != nil {
		fmt.Fprintf(&b, "clip=%s..%s ", num(s.Clip[0]), num(s.Clip[1]))
	}
	fmt.Fprintf(&b, "cuts=%s resource_cuts=%s time=%s", nums(s.Cuts), nums(s.ResourceCuts), num(s.Time))
	return b.String()
}

// TraceEvent records one frame.
type TraceEvent struct {
	Frame   int      `json:"frame"`
	Input   string   `json:"input"`
	Changes []string `json:"changes,omitempty"` // shortcut, time, zoom, clip, curve, cuts
	State   string   `json:"state,omitempty"`   // set when Changes is not empty
}

// String formats the event as one trace line.
func (e TraceEvent) String() string {
	if len(e.Changes) == 0 {
		return fmt.Sprintf("frame %d: %s => none", e.Frame, e.Input)
	}
	return fmt.Sprintf("frame %d: %s => %s | %s", e.Frame, e.Input, strings.Join(e.Changes, ","), e.State)
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expect entry matched.
	Pass bool `json:"pass"`

	// Setup is the state before the first frame.
	Setup *State `json:"setup"`

	// Trace holds one event per executed frame.
	Trace []TraceEvent `json:"trace"`

	// Final is the state after the last frame.
	Final *State `json:"final"`

	// Errors lists failed expectations. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

func num(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

func nums(vs []float32) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = num(v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
