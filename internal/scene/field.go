package scene

import (
	"maps"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Description keys with meaning to the editor. Everything else in a
// description map is opaque metadata and is kept verbatim.
const (
	DescVisibleEditor = "visibleEditor"
	DescCategory      = "Category"
)

// Field is a single named, typed value attached to a node.
type Field struct {
	Value        Value
	Descriptions map[string]string
}

// NewField wraps a payload with an empty description map.
func NewField(v Value) Field {
	return Field{Value: v, Descriptions: map[string]string{}}
}

// DataType returns the tag of the payload.
func (f Field) DataType() DataType {
	return f.Value.DataType()
}

// Clone deep-copies the payload and the descriptions.
func (f Field) Clone() Field {
	out := Field{Descriptions: maps.Clone(f.Descriptions)}
	if f.Value != nil {
		out.Value = CloneValue(f.Value)
	}
	return out
}

// With returns a copy of f carrying v and the same descriptions.
func (f Field) With(v Value) Field {
	return Field{Value: v, Descriptions: maps.Clone(f.Descriptions)}
}

// Hidden reports whether the field asks not to be shown in editors.
func (f Field) Hidden() bool {
	return f.Descriptions[DescVisibleEditor] == "false"
}

// Fields maps field names to fields. Keys are unique; order carries no
// meaning, use SortedKeys for deterministic iteration.
type Fields map[string]Field

// SortedKeys returns the field names in byte order.
func (fs Fields) SortedKeys() []string {
	return slices.Sorted(maps.Keys(fs))
}

// Clone deep-copies every field.
func (fs Fields) Clone() Fields {
	if fs == nil {
		return nil
	}
	out := make(Fields, len(fs))
	for k, f := range fs {
		out[k] = f.Clone()
	}
	return out
}

// TicksPerFrame converts UInt time fields to frames.
const TicksPerFrame = 100

// TimeOf reads a frame time from a Float field or a UInt tick field.
func TimeOf(f Field) (float32, bool) {
	switch v := f.Value.(type) {
	case Float:
		return float32(v), true
	case UInt:
		return float32(v) / TicksPerFrame, true
	default:
		return 0, false
	}
}

// WithTime writes a frame time back in the representation f already uses.
// Negative times are stored as zero ticks.
func WithTime(f Field, t float32) (Field, bool) {
	switch f.Value.(type) {
	case Float:
		return f.With(Float(t)), true
	case UInt:
		if t < 0 {
			t = 0
		}
		return f.With(UInt(t * TicksPerFrame)), true
	default:
		return f, false
	}
}

// TimeRange names the fields holding a clip's start and end.
type TimeRange struct {
	StartKey string
	EndKey   string
}

// FindTimeRange locates the start/end fields of a node. A key containing
// "start" (case-insensitive) is a start key, otherwise a key containing
// "end" is an end key; only Float and UInt fields qualify. The first key in
// sorted order wins.
func FindTimeRange(fs Fields) (TimeRange, bool) {
	var r TimeRange
	for _, k := range fs.SortedKeys() {
		if _, ok := TimeOf(fs[k]); !ok {
			continue
		}
		lower := strings.ToLower(k)
		switch {
		case strings.Contains(lower, "start"):
			if r.StartKey == "" {
				r.StartKey = k
			}
		case strings.Contains(lower, "end"):
			if r.EndKey == "" {
				r.EndKey = k
			}
		}
	}
	return r, r.StartKey != "" && r.EndKey != ""
}

// truncateText NFC-normalises s and cuts it to at most max bytes without
// splitting a rune.
func truncateText(s string, max int) string {
	s = norm.NFC.String(s)
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
