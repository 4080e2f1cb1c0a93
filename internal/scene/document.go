package scene

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// DocumentVersion is written into every encoded scene.
const DocumentVersion = 1

// The document is a self-describing JSON rendition of a Scene. It is the
// storage format of internal/store, not the game's binary format.
type document struct {
	Version   int           `json:"version"`
	Common    commonDoc     `json:"common"`
	Resources []resourceDoc `json:"resources"`
	Root      *nodeDoc      `json:"root"`
}

type commonDoc struct {
	Start        float32   `json:"start"`
	End          float32   `json:"end"`
	Cuts         []float32 `json:"cuts"`
	ResourceCuts []float32 `json:"resource_cuts"`
	Pages        []pageDoc `json:"pages"`
}

type pageDoc struct {
	Index       int32           `json:"index"`
	Name        string          `json:"name"`
	Start       float32         `json:"start"`
	End         float32         `json:"end"`
	Transitions []transitionDoc `json:"transitions"`
}

type transitionDoc struct {
	DestPageIndex int32   `json:"dest_page_index"`
	Conditions    []int32 `json:"conditions"`
}

type resourceDoc struct {
	GUID    string `json:"guid"`
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Field14 int32  `json:"field14"`
	Field18 int32  `json:"field18"`
	Unk0    int32  `json:"unk0"`
	Unk1    int32  `json:"unk1"`
}

type nodeDoc struct {
	GUID     string              `json:"guid"`
	Name     string              `json:"name"`
	Category string              `json:"category"`
	Priority int32               `json:"priority"`
	Flags    int32               `json:"flags"`
	Fields   map[string]fieldDoc `json:"fields"`
	Element  *elementDoc         `json:"element,omitempty"`
	Children []*nodeDoc          `json:"children,omitempty"`
}

type elementDoc struct {
	Definition string              `json:"definition"`
	Fields     map[string]fieldDoc `json:"fields"`
}

type fieldDoc struct {
	Type         string              `json:"type"`
	Value        json.RawMessage     `json:"value,omitempty"`
	Length       int                 `json:"length,omitempty"`
	Values       []enumValueDoc      `json:"values,omitempty"`
	Names        []string            `json:"names,omitempty"`
	Elem         string              `json:"elem,omitempty"`
	Resizable    bool                `json:"resizable,omitempty"`
	Items        []fieldDoc          `json:"items,omitempty"`
	Fields       map[string]fieldDoc `json:"fields,omitempty"`
	Descriptions map[string]string   `json:"descriptions,omitempty"`
}

type enumValueDoc struct {
	Name  string `json:"name"`
	Value int32  `json:"value"`
}

// MarshalDocument encodes s as indented JSON with sorted object keys.
func MarshalDocument(s *Scene) ([]byte, error) {
	if s == nil || s.Tree == nil {
		return nil, fmt.Errorf("marshal document: scene has no tree")
	}
	doc := document{
		Version:   DocumentVersion,
		Common:    encodeCommon(s.Common),
		Resources: make([]resourceDoc, 0, len(s.Resources)),
	}
	for _, r := range s.Resources {
		doc.Resources = append(doc.Resources, resourceDoc{
			GUID:    r.GUID.String(),
			Name:    r.Name,
			Kind:    r.Kind.String(),
			Field14: r.Field14,
			Field18: r.Field18,
			Unk0:    r.Unk0,
			Unk1:    r.Unk1,
		})
	}
	root, err := encodeNode(s.Tree, s.Tree.Root())
	if err != nil {
		return nil, err
	}
	doc.Root = root

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeCommon(c Common) commonDoc {
	out := commonDoc{
		Start:        c.Start,
		End:          c.End,
		Cuts:         nonNil(c.Cuts),
		ResourceCuts: nonNil(c.ResourceCuts),
		Pages:        make([]pageDoc, 0, len(c.Pages)),
	}
	for _, p := range c.Pages {
		pd := pageDoc{
			Index:       p.Index,
			Name:        p.Name,
			Start:       p.Start,
			End:         p.End,
			Transitions: make([]transitionDoc, 0, len(p.Transitions)),
		}
		for _, tr := range p.Transitions {
			td := transitionDoc{DestPageIndex: tr.DestPageIndex, Conditions: make([]int32, 0, len(tr.Conditions))}
			for _, c := range tr.Conditions {
				td.Conditions = append(td.Conditions, c.Kind)
			}
			pd.Transitions = append(pd.Transitions, td)
		}
		out.Pages = append(out.Pages, pd)
	}
	return out
}

func nonNil(s []float32) []float32 {
	if s == nil {
		return []float32{}
	}
	return s
}

func encodeNode(t *Tree, h Handle) (*nodeDoc, error) {
	n := t.Node(h)
	fields, err := encodeFields(n.Fields)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", n.Name, err)
	}
	out := &nodeDoc{
		GUID:     n.GUID.String(),
		Name:     n.Name,
		Category: n.Category,
		Priority: n.Priority,
		Flags:    n.Flags,
		Fields:   fields,
	}
	if n.Element != nil {
		ef, err := encodeFields(n.Element.Fields)
		if err != nil {
			return nil, fmt.Errorf("node %q element: %w", n.Name, err)
		}
		out.Element = &elementDoc{Definition: n.Element.Definition, Fields: ef}
	}
	for _, c := range t.Children(h) {
		cd, err := encodeNode(t, c)
		if err != nil {
			return nil, err
		}
		out.Children = append(out.Children, cd)
	}
	return out, nil
}

func encodeFields(fs Fields) (map[string]fieldDoc, error) {
	out := make(map[string]fieldDoc, len(fs))
	for k, f := range fs {
		fd, err := encodeField(f)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = fd
	}
	return out, nil
}

func encodeField(f Field) (fieldDoc, error) {
	if f.Value == nil {
		return fieldDoc{}, fmt.Errorf("field has no value")
	}
	fd := fieldDoc{Type: f.DataType().String()}
	if len(f.Descriptions) > 0 {
		fd.Descriptions = f.Descriptions
	}

	var raw any
	switch v := f.Value.(type) {
	case UByte, Byte, UShort, Short, UInt, Int, Float, Boolean,
		Vector2, Vector3, Vector4, Matrix4x4:
		raw = v
	case Curve:
		raw = nonNil([]float32(v))
	case String:
		raw = v.Text
		fd.Length = v.Length
	case Enum:
		raw = v.Selected
		for _, ev := range v.Values {
			fd.Values = append(fd.Values, enumValueDoc{Name: ev.Name, Value: ev.Value})
		}
	case Struct:
		fields, err := encodeFields(Fields(v))
		if err != nil {
			return fieldDoc{}, err
		}
		fd.Fields = fields
		return fd, nil
	case GuidRef:
		raw = uuid.UUID(v).String()
	case Array:
		fd.Elem = v.Elem.String()
		fd.Resizable = v.Resizable
		for i, item := range v.Items {
			id, err := encodeField(item)
			if err != nil {
				return fieldDoc{}, fmt.Errorf("item %d: %w", i, err)
			}
			fd.Items = append(fd.Items, id)
		}
		return fd, nil
	case RGBA8:
		raw = [4]uint8{v.R, v.G, v.B, v.A}
	case RGB32:
		raw = [3]uint32{v.R, v.G, v.B}
	case RGB32F:
		raw = [3]float32{v.R, v.G, v.B}
	case RGBA32:
		raw = [4]uint32{v.R, v.G, v.B, v.A}
	case Flag:
		raw = v.Bits
		fd.Names = v.Names
	default:
		panic(fmt.Sprintf("scene: cannot encode %T", f.Value))
	}

	b, err := marshalRaw(raw)
	if err != nil {
		return fieldDoc{}, err
	}
	fd.Value = b
	return fd, nil
}

// marshalRaw is json.Marshal without HTML escaping.
func marshalRaw(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// UnmarshalDocument decodes a scene produced by MarshalDocument. On error
// no scene is returned.
func UnmarshalDocument(data []byte) (*Scene, error) {
	var doc document
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	if doc.Version != DocumentVersion {
		return nil, fmt.Errorf("unmarshal document: unsupported version %d", doc.Version)
	}
	if doc.Root == nil {
		return nil, fmt.Errorf("unmarshal document: missing root node")
	}

	root, err := decodeNode(doc.Root)
	if err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	s := New(root)
	if err := decodeChildren(s.Tree, s.Tree.Root(), doc.Root.Children); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}

	s.Common = Common{
		Start:        doc.Common.Start,
		End:          doc.Common.End,
		Cuts:         doc.Common.Cuts,
		ResourceCuts: doc.Common.ResourceCuts,
	}
	for _, pd := range doc.Common.Pages {
		p := Page{Index: pd.Index, Name: pd.Name, Start: pd.Start, End: pd.End}
		for _, td := range pd.Transitions {
			tr := Transition{DestPageIndex: td.DestPageIndex}
			for _, k := range td.Conditions {
				tr.Conditions = append(tr.Conditions, Condition{Kind: k})
			}
			p.Transitions = append(p.Transitions, tr)
		}
		s.Common.Pages = append(s.Common.Pages, p)
	}

	for _, rd := range doc.Resources {
		id, err := uuid.Parse(rd.GUID)
		if err != nil {
			return nil, fmt.Errorf("unmarshal document: resource %q: %w", rd.Name, err)
		}
		kind, err := ParseResourceKind(rd.Kind)
		if err != nil {
			return nil, fmt.Errorf("unmarshal document: resource %q: %w", rd.Name, err)
		}
		s.Resources = append(s.Resources, ResourceEntry{
			GUID:    id,
			Name:    rd.Name,
			Kind:    kind,
			Field14: rd.Field14,
			Field18: rd.Field18,
			Unk0:    rd.Unk0,
			Unk1:    rd.Unk1,
		})
	}
	return s, nil
}

func decodeChildren(t *Tree, parent Handle, docs []*nodeDoc) error {
	for _, cd := range docs {
		if cd == nil {
			return fmt.Errorf("null child node")
		}
		n, err := decodeNode(cd)
		if err != nil {
			return err
		}
		h, err := t.Add(parent, n)
		if err != nil {
			return err
		}
		if err := decodeChildren(t, h, cd.Children); err != nil {
			return err
		}
	}
	return nil
}

func decodeNode(nd *nodeDoc) (*Node, error) {
	id, err := uuid.Parse(nd.GUID)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", nd.Name, err)
	}
	fields, err := decodeFields(nd.Fields)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", nd.Name, err)
	}
	n := &Node{
		GUID:     id,
		Name:     nd.Name,
		Category: nd.Category,
		Priority: nd.Priority,
		Flags:    nd.Flags,
		Fields:   fields,
	}
	if nd.Element != nil {
		ef, err := decodeFields(nd.Element.Fields)
		if err != nil {
			return nil, fmt.Errorf("node %q element: %w", nd.Name, err)
		}
		n.Element = &Element{Definition: nd.Element.Definition, Fields: ef}
	}
	return n, nil
}

func decodeFields(docs map[string]fieldDoc) (Fields, error) {
	out := make(Fields, len(docs))
	for k, fd := range docs {
		f, err := decodeField(fd)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = f
	}
	return out, nil
}

func decodeField(fd fieldDoc) (Field, error) {
	t, err := ParseDataType(fd.Type)
	if err != nil {
		return Field{}, err
	}
	f := Field{Descriptions: fd.Descriptions}
	if f.Descriptions == nil {
		f.Descriptions = map[string]string{}
	}

	switch t {
	case DataTypeUByte:
		f.Value, err = decodeScalar[UByte](fd.Value)
	case DataTypeByte:
		f.Value, err = decodeScalar[Byte](fd.Value)
	case DataTypeUShort:
		f.Value, err = decodeScalar[UShort](fd.Value)
	case DataTypeShort:
		f.Value, err = decodeScalar[Short](fd.Value)
	case DataTypeUInt:
		f.Value, err = decodeScalar[UInt](fd.Value)
	case DataTypeInt:
		f.Value, err = decodeScalar[Int](fd.Value)
	case DataTypeFloat:
		f.Value, err = decodeScalar[Float](fd.Value)
	case DataTypeBoolean:
		f.Value, err = decodeScalar[Boolean](fd.Value)
	case DataTypeVector2:
		f.Value, err = decodeScalar[Vector2](fd.Value)
	case DataTypeVector3:
		f.Value, err = decodeScalar[Vector3](fd.Value)
	case DataTypeVector4:
		f.Value, err = decodeScalar[Vector4](fd.Value)
	case DataTypeMatrix4x4:
		f.Value, err = decodeScalar[Matrix4x4](fd.Value)
	case DataTypeCurve:
		var c Curve
		c, err = decodeScalar[Curve](fd.Value)
		if err == nil && c == nil {
			c = Curve{}
		}
		f.Value = c
	case DataTypeString:
		var s string
		s, err = decodeScalar[string](fd.Value)
		f.Value = String{Text: s, Length: fd.Length}
	case DataTypeEnum:
		var sel int32
		sel, err = decodeScalar[int32](fd.Value)
		e := Enum{Selected: sel}
		for _, ev := range fd.Values {
			e.Values = append(e.Values, EnumValue{Name: ev.Name, Value: ev.Value})
		}
		f.Value = e
	case DataTypeStruct:
		var fs Fields
		fs, err = decodeFields(fd.Fields)
		f.Value = Struct(fs)
	case DataTypeGuid:
		var s string
		if s, err = decodeScalar[string](fd.Value); err == nil {
			var id uuid.UUID
			id, err = uuid.Parse(s)
			f.Value = GuidRef(id)
		}
	case DataTypeArray:
		var elem DataType
		if elem, err = ParseDataType(fd.Elem); err != nil {
			break
		}
		a := Array{Elem: elem, Resizable: fd.Resizable}
		for i, id := range fd.Items {
			item, ierr := decodeField(id)
			if ierr != nil {
				return Field{}, fmt.Errorf("item %d: %w", i, ierr)
			}
			if item.DataType() != elem {
				return Field{}, fmt.Errorf("item %d: %v in array of %v", i, item.DataType(), elem)
			}
			a.Items = append(a.Items, item)
		}
		f.Value = a
	case DataTypeRGBA8:
		var c [4]uint8
		c, err = decodeScalar[[4]uint8](fd.Value)
		f.Value = RGBA8{c[0], c[1], c[2], c[3]}
	case DataTypeRGB32:
		var c [3]uint32
		c, err = decodeScalar[[3]uint32](fd.Value)
		f.Value = RGB32{c[0], c[1], c[2]}
	case DataTypeRGB32F:
		var c [3]float32
		c, err = decodeScalar[[3]float32](fd.Value)
		f.Value = RGB32F{c[0], c[1], c[2]}
	case DataTypeRGBA32:
		var c [4]uint32
		c, err = decodeScalar[[4]uint32](fd.Value)
		f.Value = RGBA32{c[0], c[1], c[2], c[3]}
	case DataTypeFlag:
		var bits int32
		bits, err = decodeScalar[int32](fd.Value)
		f.Value = Flag{Names: fd.Names, Bits: bits}
	}
	if err != nil {
		return Field{}, fmt.Errorf("%v: %w", t, err)
	}
	return f, nil
}

func decodeScalar[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 {
		return v, fmt.Errorf("missing value")
	}
	err := json.Unmarshal(raw, &v)
	return v, err
}
