package memstore

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbxproj/vbxproj/internal/asset"
)

func TestStore_Assets(t *testing.T) {
	s := New()
	a := &asset.AssetEntry{Name: "Characters/Hero", FileID: uuid.New()}
	b := &asset.AssetEntry{Name: "Levels/Intro", FileID: uuid.New()}

	require.NoError(t, s.AddAsset(a))
	require.NoError(t, s.AddAsset(b))
	assert.Error(t, s.AddAsset(&asset.AssetEntry{Name: "other", FileID: a.FileID}))
	assert.Error(t, s.AddAsset(&asset.AssetEntry{Name: "characters/hero", FileID: uuid.New()}))

	assert.Equal(t, []*asset.AssetEntry{a, b}, s.Assets())
	assert.Same(t, a, s.AssetByID(a.FileID))
	assert.Same(t, a, s.AssetByName("characters/HERO"))
	assert.Nil(t, s.AssetByID(uuid.New()))

	renamed := &asset.AssetEntry{Name: "Characters/Villain", FileID: a.FileID}
	require.NoError(t, s.ModifyAsset(renamed))
	assert.Same(t, renamed, s.AssetByName("characters/villain"))
	assert.Nil(t, s.AssetByName("characters/hero"))
	assert.Error(t, s.ModifyAsset(&asset.AssetEntry{FileID: uuid.New()}))
}

func TestStore_ResourcesAndChunks(t *testing.T) {
	s := New()
	res := &asset.ResourceEntry{Name: "textures/hero_d"}
	chunk := &asset.ChunkEntry{ID: uuid.New()}

	require.NoError(t, s.AddResource(res))
	assert.Error(t, s.AddResource(&asset.ResourceEntry{Name: "Textures/Hero_D"}))
	require.NoError(t, s.AddChunk(chunk))
	assert.Error(t, s.AddChunk(&asset.ChunkEntry{ID: chunk.ID}))

	assert.Same(t, res, s.Resource("TEXTURES/hero_d"))
	assert.Same(t, chunk, s.Chunk(chunk.ID))
	assert.Nil(t, s.Chunk(uuid.New()))
	assert.Equal(t, 2, s.ItemCount())
}

func TestStore_Bundles(t *testing.T) {
	s := New()
	sb := s.AddSuperBundle("win32/levels")
	assert.Equal(t, sb, s.AddSuperBundle("Win32/Levels"))

	id := s.AddBundle("win32/levels/intro", asset.BundleSubLevel, sb)
	got, ok := s.BundleID("WIN32/levels/intro")
	require.True(t, ok)
	assert.Equal(t, id, got)

	again := s.AddBundle("win32/levels/intro", asset.BundleShared, sb)
	assert.Equal(t, id, again)
	assert.Equal(t, asset.BundleShared, s.Bundle(id).Kind)
	assert.Nil(t, s.Bundle(42))

	name, ok := s.SuperBundleName(sb)
	require.True(t, ok)
	assert.Equal(t, "win32/levels", name)
	_, ok = s.SuperBundleName(-1)
	assert.False(t, ok)
}
