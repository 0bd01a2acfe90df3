package asset

import (
	"github.com/google/uuid"
)

// Store is the host asset manager. The serialization engine only reads and
// writes through this interface; it never caches entries itself.
type Store interface {
	// Assets enumerates the project's assets in a stable order.
	Assets() []*AssetEntry
	AssetByID(id uuid.UUID) *AssetEntry
	AssetByName(name string) *AssetEntry
	AddAsset(e *AssetEntry) error
	// ModifyAsset replaces the entry sharing e.FileID.
	ModifyAsset(e *AssetEntry) error

	Resources() []*ResourceEntry
	Resource(name string) *ResourceEntry
	AddResource(e *ResourceEntry) error

	Chunks() []*ChunkEntry
	Chunk(id uuid.UUID) *ChunkEntry
	AddChunk(e *ChunkEntry) error

	Bundles() []*BundleEntry
	Bundle(id int) *BundleEntry
	BundleID(name string) (int, bool)
	AddBundle(name string, kind BundleKind, superBundle int) int

	SuperBundleID(name string) (int, bool)
	SuperBundleName(id int) (string, bool)
	AddSuperBundle(name string) int

	// ItemCount is the number of project items recorded in the manifest.
	ItemCount() int
}

// Field describes one persisted field of a registry type.
type Field struct {
	Name string
	// Type is the tag written in front of the field, e.g. "Float" or a
	// registered type name.
	Type string
	// Elem is the element tag of List fields.
	Elem string
	// Transient fields are never persisted.
	Transient bool
}

// Registry creates and introspects typed instances by name.
type Registry interface {
	// Create returns a new instance with every field at its default value.
	Create(typeName string) (*Object, error)
	// Fields returns the fields of a composite type in persistence order.
	Fields(typeName string) ([]Field, bool)
	IsEnum(typeName string) bool
	Members(typeName string) []string
}

// FieldByName finds a field of typeName.
func FieldByName(reg Registry, typeName, name string) (Field, bool) {
	fields, ok := reg.Fields(typeName)
	if !ok {
		return Field{}, false
	}
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
