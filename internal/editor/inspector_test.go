package editor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashrindy/dvscenetool/internal/curve"
	"github.com/ashrindy/dvscenetool/internal/scene"
)

// TestSineCurveDragScenario generates a Sine curve on a root node field of
// eight samples, drags sample 4 down to 0.2 with falloff 1 and walks the
// history back.
func TestSineCurveDragScenario(t *testing.T) {
	s := newSession(t)
	root := s.Scene.Tree.Root()
	s.Scene.Node(root).Fields["curve"] = scene.NewField(make(scene.Curve, 8))
	ref := FieldRef{Node: root, Key: "curve"}

	s.Curve = curve.Settings{Type: curve.Sine, Falloff: 1}
	changed, err := s.GenerateCurve(ref)
	require.NoError(t, err)
	require.True(t, changed)

	generated := s.Scene.Node(root).Fields["curve"].Value.(scene.Curve)
	for i, v := range generated {
		want := 0.5 * (1 - math.Cos(float64(i)/7*math.Pi))
		assert.InDelta(t, want, v, 1e-6, "sample %d", i)
	}
	generated = append(scene.Curve(nil), generated...)

	changed, err = s.EditCurve(ref, 4, 0.2)
	require.NoError(t, err)
	require.True(t, changed)

	edited := s.Scene.Node(root).Fields["curve"].Value.(scene.Curve)
	assert.InDelta(t, 0.2, edited[4], 1e-6)
	assert.Less(t, edited[3], generated[3], "neighbours follow the drag")
	assert.Less(t, edited[5], generated[5])
	// Far samples move by the Gaussian weight of their distance
	delta := 0.2 - float64(generated[4])
	for _, i := range []int{0, 7} {
		d := float64(i - 4)
		want := math.Max(0, math.Min(1, float64(generated[i])+delta*math.Exp(-d*d)))
		assert.InDelta(t, want, edited[i], 1e-6, "sample %d", i)
		assert.InDelta(t, generated[i], edited[i], 1e-3, "sample %d barely moves", i)
	}

	require.True(t, s.Undo())
	assert.Equal(t, generated, s.Scene.Node(root).Fields["curve"].Value)
	require.True(t, s.Undo())
	assert.Equal(t, make(scene.Curve, 8), s.Scene.Node(root).Fields["curve"].Value)
}

func TestCurveEditErrors(t *testing.T) {
	s := newSession(t)
	cam, _ := s.AddChild(s.Scene.Tree.Root(), def(t, s, "Camera"))
	fx, _ := s.AddChild(s.Scene.Tree.Root(), def(t, s, "Effect"))
	history := s.Stack.UndoLen()

	_, err := s.GenerateCurve(FieldRef{Node: cam, Key: "fov"})
	assert.True(t, IsEditError(err, ErrCodeTypeMismatch))

	ref := FieldRef{Node: fx, Key: "Curve", Element: true}
	_, err = s.EditCurve(ref, 32, 0.5)
	assert.True(t, IsEditError(err, ErrCodeInvalidValue))

	s.Curve.Falloff = 0
	_, err = s.EditCurve(ref, 0, 0.5)
	assert.True(t, IsEditError(err, ErrCodeInvalidValue))
	assert.Equal(t, history, s.Stack.UndoLen())
}

func TestGenerateCurveDecreasing(t *testing.T) {
	s := newSession(t)
	fx, _ := s.AddChild(s.Scene.Tree.Root(), def(t, s, "Effect"))
	ref := FieldRef{Node: fx, Key: "Curve", Element: true}

	s.Curve.Type = curve.Linear
	s.Curve.Decreasing = true
	_, err := s.GenerateCurve(ref)
	require.NoError(t, err)

	c := s.Scene.Node(fx).Element.Fields["Curve"].Value.(scene.Curve)
	assert.Equal(t, float32(1), c[0])
	assert.Equal(t, float32(0), c[len(c)-1])
}

func TestArrayItems(t *testing.T) {
	s := newSession(t)
	pp, _ := s.AddChild(s.Scene.Tree.Root(), def(t, s, "PathPoints"))
	ref := FieldRef{Node: pp, Key: "points", Element: true}

	changed, err := s.AppendArrayItem(ref)
	require.NoError(t, err)
	assert.True(t, changed)
	arr := s.Scene.Node(pp).Element.Fields["points"].Value.(scene.Array)
	assert.Equal(t, 3, arr.Len())
	assert.Equal(t, scene.Vector3{}, arr.Items[2].Value)

	_, err = s.RemoveArrayItem(ref, 0)
	require.NoError(t, err)
	_, err = s.RemoveArrayItem(ref, 9)
	assert.True(t, IsEditError(err, ErrCodeInvalidValue))

	_, err = s.AppendArrayItem(FieldRef{Node: pp, Key: "frameEnd"})
	assert.True(t, IsEditError(err, ErrCodeTypeMismatch))

	require.True(t, s.Undo())
	require.True(t, s.Undo())
	assert.Equal(t, 2, s.Scene.Node(pp).Element.Fields["points"].Value.(scene.Array).Len())
}
