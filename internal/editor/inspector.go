package editor

import (
	"slices"

	"github.com/ashrindy/dvscenetool/internal/curve"
	"github.com/ashrindy/dvscenetool/internal/scene"
)

// curveField returns a copy of the Curve payload ref points at.
func (s *Session) curveField(ref FieldRef) ([]float32, error) {
	f, err := s.Field(ref)
	if err != nil {
		return nil, err
	}
	c, ok := f.Value.(scene.Curve)
	if !ok {
		return nil, editErr(ErrCodeTypeMismatch, s.Scene.Tree.Node(ref.Node).Name, "field %q holds %v, not curve", ref, f.DataType())
	}
	return slices.Clone([]float32(c)), nil
}

// GenerateCurve overwrites the curve at ref with the session's curve
// type and direction.
func (s *Session) GenerateCurve(ref FieldRef) (bool, error) {
	buf, err := s.curveField(ref)
	if err != nil {
		return false, err
	}
	if err := curve.Generate(buf, s.Curve.Type, s.Curve.Decreasing); err != nil {
		return false, editErr(ErrCodeInvalidValue, "", "%v", err)
	}
	return s.SetFields("generate "+s.Curve.Type.String()+" curve", FieldChange{Ref: ref, Value: scene.Curve(buf)})
}

// EditCurve drags sample index of the curve at ref to v, pulling its
// neighbours along with the session's falloff.
func (s *Session) EditCurve(ref FieldRef, index int, v float32) (bool, error) {
	buf, err := s.curveField(ref)
	if err != nil {
		return false, err
	}
	if err := curve.InteractiveEdit(buf, index, v, s.Curve.Falloff); err != nil {
		return false, editErr(ErrCodeInvalidValue, "", "%v", err)
	}
	return s.SetFieldValue(ref, scene.Curve(buf))
}

// AppendArrayItem adds a default item to the resizable array at ref.
func (s *Session) AppendArrayItem(ref FieldRef) (bool, error) {
	return s.editArray(ref, "append", func(a scene.Array) (scene.Array, bool) { return a.WithAppended() })
}

// RemoveArrayItem deletes item i of the resizable array at ref.
func (s *Session) RemoveArrayItem(ref FieldRef, i int) (bool, error) {
	return s.editArray(ref, "remove", func(a scene.Array) (scene.Array, bool) { return a.WithoutIndex(i) })
}

func (s *Session) editArray(ref FieldRef, op string, fn func(scene.Array) (scene.Array, bool)) (bool, error) {
	f, err := s.Field(ref)
	if err != nil {
		return false, err
	}
	a, ok := f.Value.(scene.Array)
	if !ok {
		return false, editErr(ErrCodeTypeMismatch, "", "field %q holds %v, not array", ref, f.DataType())
	}
	out, ok := fn(a)
	if !ok {
		return false, editErr(ErrCodeInvalidValue, "", "cannot %s on array %q", op, ref)
	}
	return s.SetFieldValue(ref, out)
}
