package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateExpect_NilPasses(t *testing.T) {
	assert.Empty(t, EvaluateExpect(nil, &State{}))
}

func TestEvaluateExpect_Tolerance(t *testing.T) {
	st := &State{Clip: []float32{10.00001, 70}, Time: 3, Zoom: 1}
	e := &Expect{Clip: []float32{10, 70}, Time: ptr(float32(3.00002))}
	assert.Empty(t, EvaluateExpect(e, st))
}

func TestEvaluateExpect_Mismatches(t *testing.T) {
	st := &State{
		Clip:         []float32{0, 60},
		Curve:        []float32{0, 0.5},
		Cuts:         []float32{},
		ResourceCuts: []float32{1, 2},
		Zoom:         1,
		History:      []string{"move clip"},
	}
	e := &Expect{
		Clip:         []float32{0, 61},
		Cuts:         []float32{5},
		ResourceCuts: []float32{1, 2},
		Zoom:         ptr(float32(2)),
		History:      ptr(2),
		Curve:        map[int]float32{1: 0.25, 0: 0, 9: 1},
	}

	assert.Equal(t, []string{
		"expect clip: want [0 61], got [0 60]",
		"expect cuts: want [5], got []",
		"expect zoom: want 2, got 1",
		`expect history: want 2 entries, got 1 entries ["move clip"]`,
		"expect curve[1]: want 0.25, got 0.5",
		"expect curve[9]: want 1, got no sample (curve has 2)",
	}, EvaluateExpect(e, st))
}

func TestAssertionError(t *testing.T) {
	err := &AssertionError{Field: "time", Expected: "1", Actual: "2"}
	assert.Equal(t, "expect time: want 1, got 2", err.Error())
}
