package harness

import (
	"fmt"
	"math"
	"sort"
)

// tolerance absorbs float32 rounding in time and curve comparisons.
const tolerance = 1e-4

// AssertionError is returned when an expect entry does not match.
type AssertionError struct {
	Field    string // expect key, e.g. "clip" or "curve[16]"
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("expect %s: want %s, got %s", e.Field, e.Expected, e.Actual)
}

// EvaluateExpect checks every set entry of e against st and returns one
// message per mismatch, in a fixed order. A nil e always passes.
func EvaluateExpect(e *Expect, st *State) []string {
	if e == nil {
		return nil
	}
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	if e.Clip != nil {
		add(assertFloats("clip", e.Clip, st.Clip))
	}
	if e.Cuts != nil {
		add(assertFloats("cuts", e.Cuts, st.Cuts))
	}
	if e.ResourceCuts != nil {
		add(assertFloats("resource_cuts", e.ResourceCuts, st.ResourceCuts))
	}
	if e.Time != nil {
		add(assertFloat("time", *e.Time, st.Time))
	}
	if e.Zoom != nil {
		add(assertFloat("zoom", *e.Zoom, st.Zoom))
	}
	if e.History != nil && *e.History != len(st.History) {
		add(&AssertionError{
			Field:    "history",
			Expected: fmt.Sprintf("%d entries", *e.History),
			Actual:   fmt.Sprintf("%d entries %q", len(st.History), st.History),
		})
	}
	for _, err := range assertCurve(e.Curve, st.Curve) {
		add(err)
	}

	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return msgs
}

func assertFloat(field string, want, got float32) error {
	if math.Abs(float64(want-got)) <= tolerance {
		return nil
	}
	return &AssertionError{Field: field, Expected: num(want), Actual: num(got)}
}

// assertFloats compares element-wise. A missing actual slice only matches
// an empty expectation.
func assertFloats(field string, want, got []float32) error {
	mismatch := &AssertionError{Field: field, Expected: nums(want), Actual: nums(got)}
	if len(want) != len(got) {
		return mismatch
	}
	for i := range want {
		if math.Abs(float64(want[i]-got[i])) > tolerance {
			return mismatch
		}
	}
	return nil
}

// assertCurve checks the expected samples in index order.
func assertCurve(want map[int]float32, got []float32) []error {
	indexes := make([]int, 0, len(want))
	for i := range want {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	var errs []error
	for _, i := range indexes {
		field := fmt.Sprintf("curve[%d]", i)
		if i < 0 || i >= len(got) {
			errs = append(errs, &AssertionError{
				Field:    field,
				Expected: num(want[i]),
				Actual:   fmt.Sprintf("no sample (curve has %d)", len(got)),
			})
			continue
		}
		if err := assertFloat(field, want[i], got[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
