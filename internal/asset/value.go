package asset

import (
	"github.com/google/uuid"
)

// Value is a decoded field value. The concrete type is one of the Go scalar
// types (uint8, int8, int16, uint16, int32, uint32, int64, uint64, float32,
// float64, bool), one of the identity and vector types below, a PointerRef,
// an EnumValue, a List, or a *Object for structural (composite) values.
type Value = any

// Vec2 is a two component float vector.
type Vec2 struct{ X, Y float32 }

// Vec3 is a three component float vector.
type Vec3 struct{ X, Y, Z float32 }

// Vec4 is a four component float vector.
type Vec4 struct{ X, Y, Z, W float32 }

// AssetClassGuid is an object identity stored as a field value.
type AssetClassGuid struct {
	Guid       uuid.UUID
	InternalID int32
}

// ResourceRef is a 64-bit resource id, written as hex.
type ResourceRef uint64

// CString is an engine string. It is kept distinct from plain Go strings so
// the encoder can pick the right tag for untyped values.
type CString string

// EnumValue is a member of a registered enumeration.
type EnumValue struct {
	Type   string
	Member string
}

// List is an ordered collection of values sharing an element tag.
type List struct {
	Elem  string
	Items []Value
}
