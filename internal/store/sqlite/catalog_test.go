package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbxproj/vbxproj/internal/asset"
	"github.com/vbxproj/vbxproj/internal/asset/memstore"
	"github.com/vbxproj/vbxproj/internal/asset/typelib"
)

const testSchema = `
types:
  - name: SoundWaveAsset
    fields:
      - {name: Speed, type: Float}
      - {name: Target, type: PointerRef}
`

var (
	heroID  = uuid.MustParse("10000000-0000-0000-0000-000000000002")
	themeID = uuid.MustParse("10000000-0000-0000-0000-000000000001")
	chunkID = uuid.MustParse("30000000-0000-0000-0000-00000000000c")
)

func newRegistry(t *testing.T) *typelib.Registry {
	t.Helper()
	reg, err := typelib.Parse([]byte(testSchema))
	require.NoError(t, err)
	return reg
}

func setupCatalog(t *testing.T, reg asset.Registry) *Catalog {
	t.Helper()
	c, err := Open(context.Background(), filepath.Join(t.TempDir(), "catalog.db"), reg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func fixtureStore(t *testing.T, reg asset.Registry) *memstore.Store {
	t.Helper()
	st := memstore.New()
	super := st.AddSuperBundle("win32/game")
	bundle := st.AddBundle("win32/levels/hero", asset.BundleSubLevel, super)
	st.Bundle(bundle).Blueprint = "levels/hero"

	obj, err := reg.Create("SoundWaveAsset")
	require.NoError(t, err)
	obj.ID = asset.ObjectID{ExportedGuid: heroID, InternalID: 1}
	obj.Set("Speed", float32(3.25))
	obj.Set("Target", asset.ExternalPointer(themeID, uuid.Nil))
	g := asset.NewGraph(heroID)
	_, err = g.Add(obj, true)
	require.NoError(t, err)
	g.AddDependency(themeID)

	require.NoError(t, st.AddAsset(&asset.AssetEntry{
		Name:         "levels/hero",
		Type:         "SoundWaveAsset",
		FileID:       heroID,
		Graph:        g,
		Bundles:      []int{bundle},
		Dependencies: g.Dependencies(),
		Linked:       []asset.LinkRef{asset.ResourceLink("textures/rock_d")},
	}))
	require.NoError(t, st.AddAsset(&asset.AssetEntry{
		Name:        "ui/custom",
		Type:        "CustomAsset",
		FileID:      themeID,
		HandlerData: []byte{1, 2, 3},
	}))
	require.NoError(t, st.AddResource(&asset.ResourceEntry{
		Name:         "textures/rock_d",
		RID:          42,
		IsAdded:      true,
		AddedBundles: []int{bundle},
		Linked:       []asset.LinkRef{asset.ChunkLink(chunkID)},
		Modified:     &asset.ModifiedResource{Sha1: asset.Sha1{1}, Data: []byte("pixels")},
	}))
	require.NoError(t, st.AddChunk(&asset.ChunkEntry{ID: chunkID, IsAdded: true, H32: 9, FirstMip: -1}))
	return st
}

func TestCatalog_SnapshotRestore(t *testing.T) {
	reg := newRegistry(t)
	c := setupCatalog(t, reg)
	ctx := context.Background()
	orig := fixtureStore(t, reg)

	require.NoError(t, c.Snapshot(ctx, orig))

	restored := memstore.New()
	require.NoError(t, c.Restore(ctx, restored))

	assert.Equal(t, orig.Bundles(), restored.Bundles())
	name, ok := restored.SuperBundleName(0)
	assert.True(t, ok)
	assert.Equal(t, "win32/game", name)

	hero := restored.AssetByID(heroID)
	require.NotNil(t, hero)
	assert.Equal(t, "levels/hero", hero.Name)
	assert.Equal(t, []uuid.UUID{themeID}, hero.Dependencies)
	assert.Equal(t, orig.AssetByID(heroID).Linked, hero.Linked)
	assert.Equal(t, orig.AssetByID(heroID).Bundles, hero.Bundles)
	speed, _ := hero.Graph.Root().Get("Speed")
	assert.Equal(t, float32(3.25), speed)

	custom := restored.AssetByID(themeID)
	require.NotNil(t, custom)
	assert.Equal(t, []byte{1, 2, 3}, custom.HandlerData)
	assert.Nil(t, custom.Graph)

	assert.Equal(t, orig.Resources(), restored.Resources())
	assert.Equal(t, orig.Chunks(), restored.Chunks())
	assert.Equal(t, orig.ItemCount(), restored.ItemCount())
}

func TestCatalog_SnapshotReplaces(t *testing.T) {
	reg := newRegistry(t)
	c := setupCatalog(t, reg)
	ctx := context.Background()

	require.NoError(t, c.Snapshot(ctx, fixtureStore(t, reg)))
	require.NoError(t, c.Snapshot(ctx, fixtureStore(t, reg)))

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Bundles)
	assert.Equal(t, 2, stats.Assets)
	assert.Equal(t, 1, stats.Resources)
	assert.Equal(t, 1, stats.Chunks)
	assert.Greater(t, stats.Bytes, int64(0))

	require.NoError(t, c.Snapshot(ctx, memstore.New()))
	stats, err = c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
}

func TestCatalog_SnapshotBeginFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin().WillReturnError(errors.New("database is locked"))

	c := New(db, newRegistry(t), nil)
	err = c.Snapshot(context.Background(), memstore.New())
	assert.ErrorContains(t, err, "failed to begin snapshot")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalog_SnapshotRollsBackOnInsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	st := memstore.New()
	st.AddSuperBundle("win32/game")

	mock.ExpectBegin()
	for _, table := range []string{"chunks", "resources", "assets", "bundles", "superbundles"} {
		mock.ExpectExec("DELETE FROM " + table).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec("INSERT INTO superbundles").
		WithArgs(0, "win32/game").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	c := New(db, newRegistry(t), nil)
	err = c.Snapshot(context.Background(), st)
	assert.ErrorContains(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalog_RestoreQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT name FROM superbundles").WillReturnError(errors.New("no such table"))

	c := New(db, newRegistry(t), nil)
	err = c.Restore(context.Background(), memstore.New())
	assert.ErrorContains(t, err, "failed to query superbundles")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalog_Stats(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"bundles", "assets", "resources", "chunks", "bytes"}).
			AddRow(1, 2, 3, 4, 2048))

	c := New(db, newRegistry(t), nil)
	stats, err := c.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Bundles: 1, Assets: 2, Resources: 3, Chunks: 4, Bytes: 2048}, stats)
	assert.NoError(t, mock.ExpectationsWereMet())
}
