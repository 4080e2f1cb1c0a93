package scene

import "fmt"

// DataType tags the payload carried by a Field.
type DataType uint8

const (
	DataTypeUByte DataType = iota
	DataTypeByte
	DataTypeUShort
	DataTypeShort
	DataTypeUInt
	DataTypeInt
	DataTypeFloat
	DataTypeVector2
	DataTypeVector3
	DataTypeVector4
	DataTypeMatrix4x4
	DataTypeCurve
	DataTypeString
	DataTypeEnum
	DataTypeStruct
	DataTypeGuid
	DataTypeArray
	DataTypeBoolean
	DataTypeRGBA8
	DataTypeRGB32
	DataTypeRGB32F
	DataTypeRGBA32
	DataTypeFlag

	dataTypeCount
)

var dataTypeNames = [dataTypeCount]string{
	DataTypeUByte:     "ubyte",
	DataTypeByte:      "byte",
	DataTypeUShort:    "ushort",
	DataTypeShort:     "short",
	DataTypeUInt:      "uint",
	DataTypeInt:       "int",
	DataTypeFloat:     "float",
	DataTypeVector2:   "vector2",
	DataTypeVector3:   "vector3",
	DataTypeVector4:   "vector4",
	DataTypeMatrix4x4: "matrix4x4",
	DataTypeCurve:     "curve",
	DataTypeString:    "string",
	DataTypeEnum:      "enum",
	DataTypeStruct:    "struct",
	DataTypeGuid:      "guid",
	DataTypeArray:     "array",
	DataTypeBoolean:   "boolean",
	DataTypeRGBA8:     "rgba8",
	DataTypeRGB32:     "rgb32",
	DataTypeRGB32F:    "rgb32f",
	DataTypeRGBA32:    "rgba32",
	DataTypeFlag:      "flag",
}

// String returns the lower-case name used in documents and templates.
func (t DataType) String() string {
	if t < dataTypeCount {
		return dataTypeNames[t]
	}
	return fmt.Sprintf("datatype(%d)", uint8(t))
}

// Valid reports whether t names a known DataType.
func (t DataType) Valid() bool {
	return t < dataTypeCount
}

// ParseDataType resolves a DataType from its name.
func ParseDataType(name string) (DataType, error) {
	for i, n := range dataTypeNames {
		if n == name {
			return DataType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown data type %q", name)
}

// DataTypes returns every known DataType in declaration order.
func DataTypes() []DataType {
	out := make([]DataType, dataTypeCount)
	for i := range out {
		out[i] = DataType(i)
	}
	return out
}
