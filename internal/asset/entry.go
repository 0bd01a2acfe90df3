package asset

import (
	"fmt"

	"github.com/google/uuid"
)

// BundleKind classifies a bundle.
type BundleKind int

const (
	BundleNone BundleKind = iota
	BundleSubLevel
	BundleBlueprint
	BundleShared
)

var bundleKindNames = map[BundleKind]string{
	BundleNone:      "None",
	BundleSubLevel:  "SubLevel",
	BundleBlueprint: "BlueprintBundle",
	BundleShared:    "SharedBundle",
}

func (k BundleKind) String() string {
	if name, ok := bundleKindNames[k]; ok {
		return name
	}
	return "None"
}

// ParseBundleKind parses the names produced by BundleKind.String.
func ParseBundleKind(s string) (BundleKind, error) {
	for kind, name := range bundleKindNames {
		if name == s {
			return kind, nil
		}
	}
	return BundleNone, fmt.Errorf("unknown bundle type %q", s)
}

// BundleEntry is a bundle known to the store.
type BundleEntry struct {
	ID          int
	Name        string
	Kind        BundleKind
	SuperBundle int
	// Blueprint is the name of the asset owning a non-shared bundle.
	Blueprint string
}

// LinkKind names the kind of a linked asset.
type LinkKind string

const (
	LinkAsset    LinkKind = "ebx"
	LinkResource LinkKind = "res"
	LinkChunk    LinkKind = "chunk"
)

// LinkRef references a secondary record owned by an asset or resource.
// Resources and assets are referenced by name, chunks by id.
type LinkRef struct {
	Kind LinkKind
	Name string
	ID   uuid.UUID
}

// ResourceLink references a resource by name.
func ResourceLink(name string) LinkRef { return LinkRef{Kind: LinkResource, Name: name} }

// ChunkLink references a chunk by id.
func ChunkLink(id uuid.UUID) LinkRef { return LinkRef{Kind: LinkChunk, ID: id} }

// Key identifies the referenced record within one session.
func (l LinkRef) Key() string {
	if l.Kind == LinkChunk {
		return string(l.Kind) + ":" + l.ID.String()
	}
	return string(l.Kind) + ":" + l.Name
}

// Sha1 is a raw SHA-1 digest. The all-zero value is a sentinel.
type Sha1 [20]byte

// IsZero reports whether the digest is the all-zero sentinel.
func (s Sha1) IsZero() bool { return s == Sha1{} }

// AssetEntry is one typed-object asset in the store.
type AssetEntry struct {
	Name      string
	Type      string
	FileID    uuid.UUID
	Transient bool

	// Graph holds the decoded objects. It is nil when HandlerData is set.
	Graph *Graph
	// HandlerData is an opaque payload owned by a custom asset handler. Such
	// assets are never represented as text.
	HandlerData []byte

	Bundles      []int
	Dependencies []uuid.UUID
	Linked       []LinkRef
}

// HasHandlerData reports whether the asset is stored as an opaque payload.
func (e *AssetEntry) HasHandlerData() bool { return e.HandlerData != nil }

// RemoveDependency drops id from the dependency list and the graph.
func (e *AssetEntry) RemoveDependency(id uuid.UUID) {
	if e.Graph != nil {
		e.Graph.RemoveDependency(id)
	}
	out := e.Dependencies[:0]
	for _, dep := range e.Dependencies {
		if dep != id {
			out = append(out, dep)
		}
	}
	e.Dependencies = out
}

// ModifiedResource is the edited payload of a resource. When Sha1 is the
// zero sentinel, Data holds a handler-owned modified-resource blob rather
// than raw resource bytes.
type ModifiedResource struct {
	Sha1         Sha1
	OriginalSize int64
	ResMeta      []byte
	UserData     string
	Data         []byte
}

// IsHandlerOwned reports whether Data is a nested modified-resource blob.
func (m *ModifiedResource) IsHandlerOwned() bool { return m.Sha1.IsZero() }

// ResourceEntry is a resource record in the store.
type ResourceEntry struct {
	Name         string
	RID          uint64
	ResType      uint32
	Meta         [16]byte
	IsAdded      bool
	AddedBundles []int
	Linked       []LinkRef
	Modified     *ModifiedResource
}

// ModifiedChunk is the edited payload of a chunk.
type ModifiedChunk struct {
	Sha1             Sha1
	LogicalOffset    uint32
	LogicalSize      uint32
	RangeStart       uint32
	RangeEnd         uint32
	AddToChunkBundle bool
	UserData         string
	Data             []byte
}

// ChunkEntry is a chunk record in the store.
type ChunkEntry struct {
	ID           uuid.UUID
	IsAdded      bool
	H32          int32
	FirstMip     int32
	AddedBundles []int
	Linked       []LinkRef
	Modified     *ModifiedChunk
}
