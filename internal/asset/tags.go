package asset

import (
	"github.com/google/uuid"
)

// Type tags with a fixed text representation. Every other tag names a
// registry type and is decoded structurally.
const (
	TagByte           = "Byte"
	TagSByte          = "SByte"
	TagInt16          = "Int16"
	TagUInt16         = "UInt16"
	TagInt32          = "Int32"
	TagInt            = "Int"
	TagUInt32         = "UInt32"
	TagUInt           = "UInt"
	TagInt64          = "Int64"
	TagUInt64         = "UInt64"
	TagFloat          = "Float"
	TagSingle         = "Single"
	TagDouble         = "Double"
	TagBoolean        = "Boolean"
	TagVec2           = "Vec2"
	TagVec3           = "Vec3"
	TagVec4           = "Vec4"
	TagGuid           = "Guid"
	TagAssetClassGuid = "AssetClassGuid"
	TagResourceRef    = "ResourceRef"
	TagCString        = "CString"
	TagPointerRef     = "PointerRef"
	TagList           = "List"
)

var zeroValues = map[string]func() Value{
	TagByte:           func() Value { return uint8(0) },
	TagSByte:          func() Value { return int8(0) },
	TagInt16:          func() Value { return int16(0) },
	TagUInt16:         func() Value { return uint16(0) },
	TagInt32:          func() Value { return int32(0) },
	TagInt:            func() Value { return int32(0) },
	TagUInt32:         func() Value { return uint32(0) },
	TagUInt:           func() Value { return uint32(0) },
	TagInt64:          func() Value { return int64(0) },
	TagUInt64:         func() Value { return uint64(0) },
	TagFloat:          func() Value { return float32(0) },
	TagSingle:         func() Value { return float32(0) },
	TagDouble:         func() Value { return float64(0) },
	TagBoolean:        func() Value { return false },
	TagVec2:           func() Value { return Vec2{} },
	TagVec3:           func() Value { return Vec3{} },
	TagVec4:           func() Value { return Vec4{} },
	TagGuid:           func() Value { return uuid.Nil },
	TagAssetClassGuid: func() Value { return AssetClassGuid{} },
	TagResourceRef:    func() Value { return ResourceRef(0) },
	TagCString:        func() Value { return CString("") },
	TagPointerRef:     func() Value { return NullPointer() },
}

// IsScalarTag reports whether tag belongs to the closed set of tags whose
// value fits on a single field line.
func IsScalarTag(tag string) bool {
	_, ok := zeroValues[tag]
	return ok
}

// ZeroValue returns the default value for a scalar tag.
func ZeroValue(tag string) (Value, bool) {
	fn, ok := zeroValues[tag]
	if !ok {
		return nil, false
	}
	return fn(), true
}
