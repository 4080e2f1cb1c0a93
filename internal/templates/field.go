package templates

import (
	"fmt"
	"math"

	"cuelang.org/go/cue"
	"github.com/google/uuid"

	"github.com/ashrindy/dvscenetool/internal/scene"
)

// A field definition is a CUE struct:
//
//	{
//		type:          "float"   // a scene.DataType name
//		value?:        _         // default payload, shape depends on type
//		length?:       int       // string buffer size, or curve sample count
//		values?:       [...{name: string, value: int}] // enum entries
//		names?:        [...string]                     // flag bit names
//		elem?:         string    // array element type
//		count?:        int       // array item count when items is absent
//		resizable?:    bool
//		items?:        [...field]
//		fields?:       {[string]: field}               // struct members
//		descriptions?: {[string]: string}
//	}
//
// Missing values take scene.DefaultValue.

func parseFields(at string, v cue.Value) (scene.Fields, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, cueError(at, err)
	}
	out := scene.Fields{}
	for iter.Next() {
		f, err := parseField(at+"."+iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		out[iter.Label()] = f
	}
	return out, nil
}

func parseField(at string, v cue.Value) (scene.Field, error) {
	fail := func(format string, args ...any) (scene.Field, error) {
		return scene.Field{}, &LoadError{Path: at, Message: fmt.Sprintf(format, args...), Pos: v.Pos()}
	}

	tv := v.LookupPath(cue.ParsePath("type"))
	if !tv.Exists() {
		return fail("type is required")
	}
	typeName, err := tv.String()
	if err != nil {
		return scene.Field{}, cueError(at+".type", err)
	}
	dt, err := scene.ParseDataType(typeName)
	if err != nil {
		return fail("%v", err)
	}

	descs, err := parseDescriptions(at, v)
	if err != nil {
		return scene.Field{}, err
	}

	val, err := parseValue(at, dt, v)
	if err != nil {
		return scene.Field{}, err
	}
	return scene.Field{Value: val, Descriptions: descs}, nil
}

func parseValue(at string, dt scene.DataType, v cue.Value) (scene.Value, error) {
	vv := v.LookupPath(cue.ParsePath("value"))
	has := vv.Exists()
	errAt := func(err error) error { return cueError(at+".value", err) }

	switch dt {
	case scene.DataTypeUByte, scene.DataTypeByte, scene.DataTypeUShort,
		scene.DataTypeShort, scene.DataTypeUInt, scene.DataTypeInt:
		if !has {
			return scene.DefaultValue(dt), nil
		}
		n, err := vv.Int64()
		if err != nil {
			return nil, errAt(err)
		}
		return intValue(at, dt, n, v)

	case scene.DataTypeFloat:
		if !has {
			return scene.Float(0), nil
		}
		f, err := vv.Float64()
		if err != nil {
			return nil, errAt(err)
		}
		return scene.Float(f), nil

	case scene.DataTypeBoolean:
		if !has {
			return scene.Boolean(false), nil
		}
		b, err := vv.Bool()
		if err != nil {
			return nil, errAt(err)
		}
		return scene.Boolean(b), nil

	case scene.DataTypeVector2, scene.DataTypeVector3, scene.DataTypeVector4,
		scene.DataTypeMatrix4x4, scene.DataTypeRGB32F:
		if !has {
			return scene.DefaultValue(dt), nil
		}
		want := map[scene.DataType]int{
			scene.DataTypeVector2: 2, scene.DataTypeVector3: 3, scene.DataTypeVector4: 4,
			scene.DataTypeMatrix4x4: 16, scene.DataTypeRGB32F: 3,
		}[dt]
		fs, err := floats(vv)
		if err != nil {
			return nil, errAt(err)
		}
		if len(fs) != want {
			return nil, &LoadError{Path: at + ".value", Message: fmt.Sprintf("%v needs %d numbers, got %d", dt, want, len(fs)), Pos: vv.Pos()}
		}
		switch dt {
		case scene.DataTypeVector2:
			return scene.Vector2(fs), nil
		case scene.DataTypeVector3:
			return scene.Vector3(fs), nil
		case scene.DataTypeVector4:
			return scene.Vector4(fs), nil
		case scene.DataTypeRGB32F:
			return scene.RGB32F{R: fs[0], G: fs[1], B: fs[2]}, nil
		default:
			return scene.Matrix4x4(fs), nil
		}

	case scene.DataTypeRGBA8, scene.DataTypeRGB32, scene.DataTypeRGBA32:
		if !has {
			return scene.DefaultValue(dt), nil
		}
		ns, err := ints(vv)
		if err != nil {
			return nil, errAt(err)
		}
		return colorValue(at, dt, ns, vv)

	case scene.DataTypeCurve:
		if has {
			fs, err := floats(vv)
			if err != nil {
				return nil, errAt(err)
			}
			for i, f := range fs {
				if f < 0 || f > 1 {
					return nil, &LoadError{Path: fmt.Sprintf("%s.value[%d]", at, i), Message: "curve samples must lie in [0,1]", Pos: vv.Pos()}
				}
			}
			return scene.Curve(fs), nil
		}
		n, err := optInt(v, "length", 0)
		if err != nil {
			return nil, cueError(at+".length", err)
		}
		return make(scene.Curve, n), nil

	case scene.DataTypeString:
		length, err := optInt(v, "length", scene.DefaultStringLength)
		if err != nil {
			return nil, cueError(at+".length", err)
		}
		text := ""
		if has {
			if text, err = vv.String(); err != nil {
				return nil, errAt(err)
			}
		}
		return scene.NewString(text, int(length)), nil

	case scene.DataTypeEnum:
		return parseEnum(at, v, vv)

	case scene.DataTypeFlag:
		names, err := strs(v.LookupPath(cue.ParsePath("names")))
		if err != nil {
			return nil, cueError(at+".names", err)
		}
		var bits int64
		if has {
			if bits, err = vv.Int64(); err != nil {
				return nil, errAt(err)
			}
		}
		return scene.Flag{Names: names, Bits: int32(bits)}, nil

	case scene.DataTypeGuid:
		if !has {
			return scene.GuidRef(uuid.Nil), nil
		}
		s, err := vv.String()
		if err != nil {
			return nil, errAt(err)
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, &LoadError{Path: at + ".value", Message: err.Error(), Pos: vv.Pos()}
		}
		return scene.GuidRef(id), nil

	case scene.DataTypeStruct:
		sv := v.LookupPath(cue.ParsePath("fields"))
		if !sv.Exists() {
			return scene.Struct{}, nil
		}
		fs, err := parseFields(at+".fields", sv)
		if err != nil {
			return nil, err
		}
		return scene.Struct(fs), nil

	case scene.DataTypeArray:
		return parseArray(at, v)
	}
	panic(fmt.Sprintf("templates: unhandled data type %v", dt))
}

func intValue(at string, dt scene.DataType, n int64, v cue.Value) (scene.Value, error) {
	lo, hi := int64(0), int64(0)
	switch dt {
	case scene.DataTypeUByte:
		lo, hi = 0, math.MaxUint8
	case scene.DataTypeByte:
		lo, hi = math.MinInt8, math.MaxInt8
	case scene.DataTypeUShort:
		lo, hi = 0, math.MaxUint16
	case scene.DataTypeShort:
		lo, hi = math.MinInt16, math.MaxInt16
	case scene.DataTypeUInt:
		lo, hi = 0, math.MaxUint32
	case scene.DataTypeInt:
		lo, hi = math.MinInt32, math.MaxInt32
	}
	if n < lo || n > hi {
		return nil, &LoadError{Path: at + ".value", Message: fmt.Sprintf("%d out of range for %v", n, dt), Pos: v.Pos()}
	}
	switch dt {
	case scene.DataTypeUByte:
		return scene.UByte(n), nil
	case scene.DataTypeByte:
		return scene.Byte(n), nil
	case scene.DataTypeUShort:
		return scene.UShort(n), nil
	case scene.DataTypeShort:
		return scene.Short(n), nil
	case scene.DataTypeUInt:
		return scene.UInt(n), nil
	default:
		return scene.Int(n), nil
	}
}

func colorValue(at string, dt scene.DataType, ns []int64, v cue.Value) (scene.Value, error) {
	want, hi := 4, int64(math.MaxUint8)
	switch dt {
	case scene.DataTypeRGB32:
		want, hi = 3, math.MaxUint32
	case scene.DataTypeRGBA32:
		hi = math.MaxUint32
	}
	if len(ns) != want {
		return nil, &LoadError{Path: at + ".value", Message: fmt.Sprintf("%v needs %d channels, got %d", dt, want, len(ns)), Pos: v.Pos()}
	}
	for _, n := range ns {
		if n < 0 || n > hi {
			return nil, &LoadError{Path: at + ".value", Message: fmt.Sprintf("channel %d out of range for %v", n, dt), Pos: v.Pos()}
		}
	}
	switch dt {
	case scene.DataTypeRGBA8:
		return scene.RGBA8{R: uint8(ns[0]), G: uint8(ns[1]), B: uint8(ns[2]), A: uint8(ns[3])}, nil
	case scene.DataTypeRGB32:
		return scene.RGB32{R: uint32(ns[0]), G: uint32(ns[1]), B: uint32(ns[2])}, nil
	default:
		return scene.RGBA32{R: uint32(ns[0]), G: uint32(ns[1]), B: uint32(ns[2]), A: uint32(ns[3])}, nil
	}
}

// parseEnum reads values as a list of {name, value}. The default selection
// is named by value, or is the first entry.
func parseEnum(at string, v, vv cue.Value) (scene.Value, error) {
	var e scene.Enum
	lv := v.LookupPath(cue.ParsePath("values"))
	if lv.Exists() {
		iter, err := lv.List()
		if err != nil {
			return nil, cueError(at+".values", err)
		}
		for iter.Next() {
			name, err := iter.Value().LookupPath(cue.ParsePath("name")).String()
			if err != nil {
				return nil, cueError(at+".values", err)
			}
			n, err := iter.Value().LookupPath(cue.ParsePath("value")).Int64()
			if err != nil {
				return nil, cueError(at+".values", err)
			}
			e.Values = append(e.Values, scene.EnumValue{Name: name, Value: int32(n)})
		}
	}
	if len(e.Values) > 0 {
		e.Selected = e.Values[0].Value
	}
	if vv.Exists() {
		name, err := vv.String()
		if err != nil {
			return nil, cueError(at+".value", err)
		}
		sel, ok := e.Lookup(name)
		if !ok {
			return nil, &LoadError{Path: at + ".value", Message: fmt.Sprintf("unknown enum value %q", name), Pos: vv.Pos()}
		}
		e.Selected = sel
	}
	return e, nil
}

func parseArray(at string, v cue.Value) (scene.Value, error) {
	ev := v.LookupPath(cue.ParsePath("elem"))
	if !ev.Exists() {
		return nil, &LoadError{Path: at, Message: "array needs elem", Pos: v.Pos()}
	}
	elemName, err := ev.String()
	if err != nil {
		return nil, cueError(at+".elem", err)
	}
	elem, err := scene.ParseDataType(elemName)
	if err != nil {
		return nil, &LoadError{Path: at + ".elem", Message: err.Error(), Pos: ev.Pos()}
	}
	a := scene.Array{Elem: elem}
	if rv := v.LookupPath(cue.ParsePath("resizable")); rv.Exists() {
		if a.Resizable, err = rv.Bool(); err != nil {
			return nil, cueError(at+".resizable", err)
		}
	}

	if iv := v.LookupPath(cue.ParsePath("items")); iv.Exists() {
		iter, err := iv.List()
		if err != nil {
			return nil, cueError(at+".items", err)
		}
		for i := 0; iter.Next(); i++ {
			item, err := parseField(fmt.Sprintf("%s.items[%d]", at, i), iter.Value())
			if err != nil {
				return nil, err
			}
			if item.DataType() != elem {
				return nil, &LoadError{Path: fmt.Sprintf("%s.items[%d]", at, i), Message: fmt.Sprintf("%v item in array of %v", item.DataType(), elem), Pos: iter.Value().Pos()}
			}
			a.Items = append(a.Items, item)
		}
		return a, nil
	}

	count, err := optInt(v, "count", 0)
	if err != nil {
		return nil, cueError(at+".count", err)
	}
	for i := int64(0); i < count; i++ {
		a.Items = append(a.Items, scene.NewField(scene.DefaultValue(elem)))
	}
	return a, nil
}

func optInt(v cue.Value, label string, def int64) (int64, error) {
	lv := v.LookupPath(cue.ParsePath(label))
	if !lv.Exists() {
		return def, nil
	}
	n, err := lv.Int64()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%s must not be negative", label)
	}
	return n, nil
}

func floats(v cue.Value) ([]float32, error) {
	iter, err := v.List()
	if err != nil {
		return nil, err
	}
	var out []float32
	for iter.Next() {
		f, err := iter.Value().Float64()
		if err != nil {
			return nil, err
		}
		out = append(out, float32(f))
	}
	return out, nil
}

func ints(v cue.Value) ([]int64, error) {
	iter, err := v.List()
	if err != nil {
		return nil, err
	}
	var out []int64
	for iter.Next() {
		n, err := iter.Value().Int64()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func strs(v cue.Value) ([]string, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, err
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
