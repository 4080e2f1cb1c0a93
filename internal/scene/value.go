package scene

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// Value is a sealed interface over the field payload types.
// Only the types declared in this file implement it.
type Value interface {
	DataType() DataType
	fieldValue() // Sealed
}

// DefaultStringLength is the buffer length given to strings created from
// DefaultValue, matching the node name buffer.
const DefaultStringLength = 64

type (
	// UByte is an unsigned 8-bit integer.
	UByte uint8
	// Byte is a signed 8-bit integer.
	Byte int8
	// UShort is an unsigned 16-bit integer.
	UShort uint16
	// Short is a signed 16-bit integer.
	Short int16
	// UInt is an unsigned 32-bit integer. Under time keys it holds ticks.
	UInt uint32
	// Int is a signed 32-bit integer.
	Int int32
	// Float is a 32-bit float.
	Float float32
	// Vector2 is a pair of floats.
	Vector2 [2]float32
	// Vector3 is a triple of floats.
	Vector3 [3]float32
	// Vector4 is a quadruple of floats.
	Vector4 [4]float32
	// Matrix4x4 is a row-major 4x4 matrix (M11, M12, ... M44).
	Matrix4x4 [16]float32
	// Curve is a fixed-length sequence of samples in [0, 1].
	Curve []float32
	// Boolean is a bool.
	Boolean bool
	// GuidRef names another node by identity. It is a weak reference.
	GuidRef uuid.UUID
	// Struct is a nested field mapping.
	Struct Fields
)

// String is bounded text. Length is the buffer size the format reserves;
// Text never exceeds Length-1 bytes.
type String struct {
	Text   string
	Length int
}

// EnumValue is one named value of an Enum.
type EnumValue struct {
	Name  string
	Value int32
}

// Enum is a named-value set plus the selected value.
type Enum struct {
	Values   []EnumValue
	Selected int32
}

// Array is a homogeneous sequence of fields. Fixed-size arrays reject
// append and remove.
type Array struct {
	Elem      DataType
	Items     []Field
	Resizable bool
}

// RGBA8 is a colour with byte channels.
type RGBA8 struct{ R, G, B, A uint8 }

// RGB32 is a colour whose byte channels are stored as 32-bit integers.
type RGB32 struct{ R, G, B uint32 }

// RGB32F is a colour with float channels.
type RGB32F struct{ R, G, B float32 }

// RGBA32 is a colour whose byte channels are stored as 32-bit integers.
type RGBA32 struct{ R, G, B, A uint32 }

// Flag is a set of named bit positions over an int.
// Names[i] labels bit i.
type Flag struct {
	Names []string
	Bits  int32
}

func (UByte) DataType() DataType     { return DataTypeUByte }
func (Byte) DataType() DataType      { return DataTypeByte }
func (UShort) DataType() DataType    { return DataTypeUShort }
func (Short) DataType() DataType     { return DataTypeShort }
func (UInt) DataType() DataType      { return DataTypeUInt }
func (Int) DataType() DataType       { return DataTypeInt }
func (Float) DataType() DataType     { return DataTypeFloat }
func (Vector2) DataType() DataType   { return DataTypeVector2 }
func (Vector3) DataType() DataType   { return DataTypeVector3 }
func (Vector4) DataType() DataType   { return DataTypeVector4 }
func (Matrix4x4) DataType() DataType { return DataTypeMatrix4x4 }
func (Curve) DataType() DataType     { return DataTypeCurve }
func (String) DataType() DataType    { return DataTypeString }
func (Enum) DataType() DataType      { return DataTypeEnum }
func (Struct) DataType() DataType    { return DataTypeStruct }
func (GuidRef) DataType() DataType   { return DataTypeGuid }
func (Array) DataType() DataType     { return DataTypeArray }
func (Boolean) DataType() DataType   { return DataTypeBoolean }
func (RGBA8) DataType() DataType     { return DataTypeRGBA8 }
func (RGB32) DataType() DataType     { return DataTypeRGB32 }
func (RGB32F) DataType() DataType    { return DataTypeRGB32F }
func (RGBA32) DataType() DataType    { return DataTypeRGBA32 }
func (Flag) DataType() DataType      { return DataTypeFlag }

func (UByte) fieldValue()     {}
func (Byte) fieldValue()      {}
func (UShort) fieldValue()    {}
func (Short) fieldValue()     {}
func (UInt) fieldValue()      {}
func (Int) fieldValue()       {}
func (Float) fieldValue()     {}
func (Vector2) fieldValue()   {}
func (Vector3) fieldValue()   {}
func (Vector4) fieldValue()   {}
func (Matrix4x4) fieldValue() {}
func (Curve) fieldValue()     {}
func (String) fieldValue()    {}
func (Enum) fieldValue()      {}
func (Struct) fieldValue()    {}
func (GuidRef) fieldValue()   {}
func (Array) fieldValue()     {}
func (Boolean) fieldValue()   {}
func (RGBA8) fieldValue()     {}
func (RGB32) fieldValue()     {}
func (RGB32F) fieldValue()    {}
func (RGBA32) fieldValue()    {}
func (Flag) fieldValue()      {}

// IdentityMatrix returns the 4x4 identity.
func IdentityMatrix() Matrix4x4 {
	return Matrix4x4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// DefaultValue returns a correctly typed default payload for t.
// Used when appending to resizable arrays and instantiating struct members.
// Panics on an unknown DataType.
func DefaultValue(t DataType) Value {
	switch t {
	case DataTypeUByte:
		return UByte(0)
	case DataTypeByte:
		return Byte(0)
	case DataTypeUShort:
		return UShort(0)
	case DataTypeShort:
		return Short(0)
	case DataTypeUInt:
		return UInt(0)
	case DataTypeInt:
		return Int(0)
	case DataTypeFloat:
		return Float(0)
	case DataTypeVector2:
		return Vector2{}
	case DataTypeVector3:
		return Vector3{}
	case DataTypeVector4:
		return Vector4{}
	case DataTypeMatrix4x4:
		return IdentityMatrix()
	case DataTypeCurve:
		return Curve{}
	case DataTypeString:
		return String{Length: DefaultStringLength}
	case DataTypeEnum:
		return Enum{}
	case DataTypeStruct:
		return Struct{}
	case DataTypeGuid:
		return GuidRef(uuid.Nil)
	case DataTypeArray:
		// Nested arrays carry no element type of their own; start empty.
		return Array{Elem: DataTypeUByte, Resizable: true}
	case DataTypeBoolean:
		return Boolean(false)
	case DataTypeRGBA8:
		return RGBA8{}
	case DataTypeRGB32:
		return RGB32{}
	case DataTypeRGB32F:
		return RGB32F{}
	case DataTypeRGBA32:
		return RGBA32{}
	case DataTypeFlag:
		return Flag{}
	default:
		panic(fmt.Sprintf("scene: no default for %v", t))
	}
}

// CloneValue deep-copies a payload. Scalar payloads are returned as is.
// Panics on a nil value.
func CloneValue(v Value) Value {
	switch val := v.(type) {
	case UByte, Byte, UShort, Short, UInt, Int, Float,
		Vector2, Vector3, Vector4, Matrix4x4,
		GuidRef, Boolean, RGBA8, RGB32, RGB32F, RGBA32:
		return val
	case Curve:
		return slices.Clone(val)
	case String:
		return val
	case Enum:
		return Enum{Values: slices.Clone(val.Values), Selected: val.Selected}
	case Struct:
		return Struct(Fields(val).Clone())
	case Array:
		items := make([]Field, len(val.Items))
		for i, f := range val.Items {
			items[i] = f.Clone()
		}
		if val.Items == nil {
			items = nil
		}
		return Array{Elem: val.Elem, Items: items, Resizable: val.Resizable}
	case Flag:
		return Flag{Names: slices.Clone(val.Names), Bits: val.Bits}
	default:
		panic(fmt.Sprintf("scene: cannot clone %T", v))
	}
}

// NewString creates a bounded string, truncating text to fit length.
func NewString(text string, length int) String {
	return String{Text: truncateText(text, length-1), Length: length}
}

// WithText returns a copy of s holding text truncated to the bound.
func (s String) WithText(text string) String {
	return NewString(text, s.Length)
}

// Lookup returns the value registered under name.
func (e Enum) Lookup(name string) (int32, bool) {
	for _, v := range e.Values {
		if v.Name == name {
			return v.Value, true
		}
	}
	return 0, false
}

// SelectedName returns the name of the selected value, or "" when the
// selection matches no entry.
func (e Enum) SelectedName() string {
	for _, v := range e.Values {
		if v.Value == e.Selected {
			return v.Name
		}
	}
	return ""
}

// WithSelected returns a copy selecting name. Unknown names report false
// and leave the selection unchanged.
func (e Enum) WithSelected(name string) (Enum, bool) {
	v, ok := e.Lookup(name)
	if !ok {
		return e, false
	}
	out := CloneValue(e).(Enum)
	out.Selected = v
	return out, true
}

// IsSet reports whether bit is set.
func (f Flag) IsSet(bit int) bool {
	if bit < 0 || bit >= 32 {
		return false
	}
	return f.Bits&(1<<bit) != 0
}

// WithBit returns a copy with bit set or cleared. Bits outside the named
// range report false.
func (f Flag) WithBit(bit int, on bool) (Flag, bool) {
	if bit < 0 || bit >= len(f.Names) || bit >= 32 {
		return f, false
	}
	out := CloneValue(f).(Flag)
	if on {
		out.Bits |= 1 << bit
	} else {
		out.Bits &^= 1 << bit
	}
	return out, true
}

// Len returns the number of items.
func (a Array) Len() int { return len(a.Items) }

// WithAppended returns a copy with one default element appended.
// Fixed-size arrays report false.
func (a Array) WithAppended() (Array, bool) {
	if !a.Resizable {
		return a, false
	}
	out := CloneValue(a).(Array)
	out.Items = append(out.Items, NewField(DefaultValue(a.Elem)))
	return out, true
}

// WithoutIndex returns a copy with item i removed.
// Fixed-size arrays and out of range indexes report false.
func (a Array) WithoutIndex(i int) (Array, bool) {
	if !a.Resizable || i < 0 || i >= len(a.Items) {
		return a, false
	}
	out := CloneValue(a).(Array)
	out.Items = slices.Delete(out.Items, i, i+1)
	return out, true
}

// WithItem returns a copy with item i replaced. The replacement must have
// the element DataType.
func (a Array) WithItem(i int, f Field) (Array, bool) {
	if i < 0 || i >= len(a.Items) || f.Value == nil || f.DataType() != a.Elem {
		return a, false
	}
	out := CloneValue(a).(Array)
	out.Items[i] = f.Clone()
	return out, true
}
