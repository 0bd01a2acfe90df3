// Package memstore is an in-memory asset.Store. Enumeration follows
// insertion order so repeated saves of the same store are byte-identical.
package memstore

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/vbxproj/vbxproj/internal/asset"
)

// Store implements asset.Store. It is not safe for concurrent use; a
// project save or load owns the store for its whole duration.
type Store struct {
	assets      []*asset.AssetEntry
	assetByID   map[uuid.UUID]int
	assetByName map[string]int

	resources  []*asset.ResourceEntry
	resByName  map[string]int
	chunks     []*asset.ChunkEntry
	chunkByID  map[uuid.UUID]int
	bundles    []*asset.BundleEntry
	bundleByNm map[string]int

	superBundles []string
	superByName  map[string]int
}

// New creates an empty store.
func New() *Store {
	return &Store{
		assetByID:   make(map[uuid.UUID]int),
		assetByName: make(map[string]int),
		resByName:   make(map[string]int),
		chunkByID:   make(map[uuid.UUID]int),
		bundleByNm:  make(map[string]int),
		superByName: make(map[string]int),
	}
}

func normalize(name string) string {
	return strings.ToLower(name)
}

func (s *Store) Assets() []*asset.AssetEntry {
	out := make([]*asset.AssetEntry, len(s.assets))
	copy(out, s.assets)
	return out
}

func (s *Store) AssetByID(id uuid.UUID) *asset.AssetEntry {
	if i, ok := s.assetByID[id]; ok {
		return s.assets[i]
	}
	return nil
}

// AssetByName looks an asset up case-insensitively.
func (s *Store) AssetByName(name string) *asset.AssetEntry {
	if i, ok := s.assetByName[normalize(name)]; ok {
		return s.assets[i]
	}
	return nil
}

func (s *Store) AddAsset(e *asset.AssetEntry) error {
	if _, exists := s.assetByID[e.FileID]; exists {
		return fmt.Errorf("asset %s already exists", e.FileID)
	}
	if _, exists := s.assetByName[normalize(e.Name)]; exists {
		return fmt.Errorf("asset %s already exists", e.Name)
	}
	s.assetByID[e.FileID] = len(s.assets)
	s.assetByName[normalize(e.Name)] = len(s.assets)
	s.assets = append(s.assets, e)
	return nil
}

func (s *Store) ModifyAsset(e *asset.AssetEntry) error {
	i, ok := s.assetByID[e.FileID]
	if !ok {
		return fmt.Errorf("asset %s not found", e.FileID)
	}
	old := s.assets[i]
	if normalize(old.Name) != normalize(e.Name) {
		delete(s.assetByName, normalize(old.Name))
		s.assetByName[normalize(e.Name)] = i
	}
	s.assets[i] = e
	return nil
}

func (s *Store) Resources() []*asset.ResourceEntry {
	out := make([]*asset.ResourceEntry, len(s.resources))
	copy(out, s.resources)
	return out
}

func (s *Store) Resource(name string) *asset.ResourceEntry {
	if i, ok := s.resByName[normalize(name)]; ok {
		return s.resources[i]
	}
	return nil
}

func (s *Store) AddResource(e *asset.ResourceEntry) error {
	key := normalize(e.Name)
	if _, exists := s.resByName[key]; exists {
		return fmt.Errorf("resource %s already exists", e.Name)
	}
	s.resByName[key] = len(s.resources)
	s.resources = append(s.resources, e)
	return nil
}

func (s *Store) Chunks() []*asset.ChunkEntry {
	out := make([]*asset.ChunkEntry, len(s.chunks))
	copy(out, s.chunks)
	return out
}

func (s *Store) Chunk(id uuid.UUID) *asset.ChunkEntry {
	if i, ok := s.chunkByID[id]; ok {
		return s.chunks[i]
	}
	return nil
}

func (s *Store) AddChunk(e *asset.ChunkEntry) error {
	if _, exists := s.chunkByID[e.ID]; exists {
		return fmt.Errorf("chunk %s already exists", e.ID)
	}
	s.chunkByID[e.ID] = len(s.chunks)
	s.chunks = append(s.chunks, e)
	return nil
}

func (s *Store) Bundles() []*asset.BundleEntry {
	out := make([]*asset.BundleEntry, len(s.bundles))
	copy(out, s.bundles)
	return out
}

func (s *Store) Bundle(id int) *asset.BundleEntry {
	if id < 0 || id >= len(s.bundles) {
		return nil
	}
	return s.bundles[id]
}

func (s *Store) BundleID(name string) (int, bool) {
	id, ok := s.bundleByNm[normalize(name)]
	return id, ok
}

// AddBundle registers a bundle and returns its id. Adding an existing name
// updates the bundle in place.
func (s *Store) AddBundle(name string, kind asset.BundleKind, superBundle int) int {
	if id, ok := s.bundleByNm[normalize(name)]; ok {
		s.bundles[id].Kind = kind
		s.bundles[id].SuperBundle = superBundle
		return id
	}
	id := len(s.bundles)
	s.bundles = append(s.bundles, &asset.BundleEntry{ID: id, Name: name, Kind: kind, SuperBundle: superBundle})
	s.bundleByNm[normalize(name)] = id
	return id
}

func (s *Store) SuperBundleID(name string) (int, bool) {
	id, ok := s.superByName[normalize(name)]
	return id, ok
}

func (s *Store) SuperBundleName(id int) (string, bool) {
	if id < 0 || id >= len(s.superBundles) {
		return "", false
	}
	return s.superBundles[id], true
}

func (s *Store) AddSuperBundle(name string) int {
	if id, ok := s.superByName[normalize(name)]; ok {
		return id
	}
	id := len(s.superBundles)
	s.superBundles = append(s.superBundles, name)
	s.superByName[normalize(name)] = id
	return id
}

// ItemCount counts assets, resources and chunks.
func (s *Store) ItemCount() int {
	return len(s.assets) + len(s.resources) + len(s.chunks)
}

var _ asset.Store = (*Store)(nil)
