// Package asset defines the in-memory model shared by the text and binary
// codecs: object identities, pointer references, field values, object graphs
// and the store entries the project orchestrator reads and writes.
package asset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ObjectID identifies one object instance inside its owning file.
type ObjectID struct {
	ExportedGuid uuid.UUID
	InternalID   int32
}

// String renders the identity as "guid,internalId", the form used by
// AssetClassGuid values and internal pointers.
func (id ObjectID) String() string {
	return id.ExportedGuid.String() + "," + strconv.FormatInt(int64(id.InternalID), 10)
}

// ParseObjectID parses "guid,internalId".
func ParseObjectID(s string) (ObjectID, error) {
	guidPart, idPart, ok := strings.Cut(s, ",")
	if !ok {
		return ObjectID{}, fmt.Errorf("object id %q: expected guid,internalId", s)
	}
	guid, err := uuid.Parse(strings.TrimSpace(guidPart))
	if err != nil {
		return ObjectID{}, fmt.Errorf("object id %q: %w", s, err)
	}
	internal, err := strconv.ParseInt(strings.TrimSpace(idPart), 10, 32)
	if err != nil {
		return ObjectID{}, fmt.Errorf("object id %q: %w", s, err)
	}
	return ObjectID{ExportedGuid: guid, InternalID: int32(internal)}, nil
}

// ImportRef points at an object living in another file.
type ImportRef struct {
	FileGuid  uuid.UUID
	ClassGuid uuid.UUID
}

// PointerKind discriminates PointerRef variants.
type PointerKind int

const (
	PointerNone PointerKind = iota
	PointerInternal
	PointerExternal
)

func (k PointerKind) String() string {
	switch k {
	case PointerInternal:
		return "internal"
	case PointerExternal:
		return "external"
	default:
		return "null"
	}
}

// PointerRef is a reference that crosses the serialized boundary. Internal
// pointers hold the target's ObjectID, which is a handle into the owning
// Graph rather than a Go pointer.
type PointerRef struct {
	Kind     PointerKind
	Internal ObjectID
	External ImportRef
}

// NullPointer returns the None variant.
func NullPointer() PointerRef { return PointerRef{} }

// InternalPointer references an object in the same file.
func InternalPointer(id ObjectID) PointerRef {
	return PointerRef{Kind: PointerInternal, Internal: id}
}

// ExternalPointer references an object in another file.
func ExternalPointer(fileGuid, classGuid uuid.UUID) PointerRef {
	return PointerRef{Kind: PointerExternal, External: ImportRef{FileGuid: fileGuid, ClassGuid: classGuid}}
}

// IsNull reports whether the pointer references nothing.
func (p PointerRef) IsNull() bool { return p.Kind == PointerNone }
