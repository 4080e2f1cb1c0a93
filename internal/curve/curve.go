// Package curve generates and edits normalized curve buffers.
//
// A curve is a fixed-length []float32 whose samples lie in [0,1]. Both
// operations mutate the caller's buffer in place; the package never keeps
// a reference to it.
package curve

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrTooShort is returned by Generate for buffers shorter than two
	// samples.
	ErrTooShort = errors.New("curve: buffer needs at least 2 samples")

	// ErrInvalidFalloff is returned by InteractiveEdit for σ ≤ 0.
	ErrInvalidFalloff = errors.New("curve: falloff must be positive")

	// ErrIndexOutOfRange is returned by InteractiveEdit for an index
	// outside the buffer.
	ErrIndexOutOfRange = errors.New("curve: index out of range")
)

// Type selects a curve family.
type Type int

const (
	Linear Type = iota
	QuadraticIn
	QuadraticOut
	Cubic
	Sine
	LogarithmicIn
	LogarithmicOut
)

var typeNames = []string{
	Linear:         "Linear",
	QuadraticIn:    "QuadraticIn",
	QuadraticOut:   "QuadraticOut",
	Cubic:          "Cubic",
	Sine:           "Sine",
	LogarithmicIn:  "LogarithmicIn",
	LogarithmicOut: "LogarithmicOut",
}

func (t Type) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Types lists every family in declaration order.
func Types() []Type {
	out := make([]Type, len(typeNames))
	for i := range out {
		out[i] = Type(i)
	}
	return out
}

// ParseType resolves a family from its name, ignoring case.
func ParseType(s string) (Type, error) {
	for i, n := range typeNames {
		if strings.EqualFold(n, s) {
			return Type(i), nil
		}
	}
	return 0, fmt.Errorf("curve: unknown type %q", s)
}

// Settings are the generator controls the editor keeps per session.
type Settings struct {
	Type       Type
	Decreasing bool
	Falloff    float32
}

// DefaultSettings returns the editor's startup controls.
func DefaultSettings() Settings {
	return Settings{Type: Linear, Falloff: 3}
}

// logNorm is log1p(9) = ln 10, so log1p(9t)/logNorm spans [0,1] exactly.
var logNorm = math.Log1p(9)

// Generate overwrites buf with the selected family evaluated at
// t = i/(N-1). Decreasing flips the curve; for the logarithmic pair it
// flips the input or the output instead (see value).
func Generate(buf []float32, typ Type, decreasing bool) error {
	if len(buf) < 2 {
		return ErrTooShort
	}
	if typ < 0 || int(typ) >= len(typeNames) {
		return fmt.Errorf("curve: unknown type %d", int(typ))
	}
	last := float64(len(buf) - 1)
	for i := range buf {
		buf[i] = float32(clamp01(value(typ, float64(i)/last, decreasing)))
	}
	return nil
}

// value evaluates one family at t.
func value(typ Type, t float64, decreasing bool) float64 {
	switch typ {
	case LogarithmicIn:
		// Input flipped unless decreasing, output always inverted.
		if !decreasing {
			t = 1 - t
		}
		return 1 - math.Log1p(9*t)/logNorm
	case LogarithmicOut:
		if decreasing {
			t = 1 - t
		}
		return math.Log1p(9*t) / logNorm
	}

	var v float64
	switch typ {
	case Linear:
		v = t
	case QuadraticIn:
		v = t * t
	case QuadraticOut:
		v = 1 - (1-t)*(1-t)
	case Cubic:
		if t < 0.5 {
			v = 4 * t * t * t
		} else {
			v = 1 - math.Pow(-2*t+2, 3)/2
		}
	case Sine:
		v = 0.5 * (1 - math.Cos(t*math.Pi))
	}
	if decreasing {
		v = 1 - v
	}
	return v
}

// InteractiveEdit moves sample index toward v and drags its neighbours
// along with Gaussian weight exp(-(x-index)²/σ²). The delta is taken
// against the sample's current value, and every sample is clamped to
// [0,1] as it is written. The whole buffer may change.
func InteractiveEdit(buf []float32, index int, v float32, falloff float32) error {
	if !(falloff > 0) {
		return ErrInvalidFalloff
	}
	if index < 0 || index >= len(buf) {
		return ErrIndexOutOfRange
	}
	delta := float64(clamp01f(v)) - float64(buf[index])
	sigma2 := float64(falloff) * float64(falloff)
	for x := range buf {
		d := float64(x - index)
		w := math.Exp(-d * d / sigma2)
		buf[x] = float32(clamp01(float64(buf[x]) + delta*w))
	}
	return nil
}

// Sample linearly interpolates buf at normalized position t in [0,1].
// An empty buffer samples as 0.
func Sample(buf []float32, t float32) float32 {
	switch len(buf) {
	case 0:
		return 0
	case 1:
		return buf[0]
	}
	pos := float64(clamp01f(t)) * float64(len(buf)-1)
	i := int(math.Floor(pos))
	if i >= len(buf)-1 {
		return buf[len(buf)-1]
	}
	frac := pos - float64(i)
	return float32(float64(buf[i])*(1-frac) + float64(buf[i+1])*frac)
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

func clamp01f(v float32) float32 {
	return float32(clamp01(float64(v)))
}
