// Package sqlite keeps a snapshot of an asset store in a SQLite database so
// the CLI can carry a loaded project between invocations.
//
// Assets are stored in the asset text format and resources and chunks in
// their binary record format, so a catalog holds exactly what a project
// directory would.
package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/vbxproj/vbxproj/internal/asset"
	"github.com/vbxproj/vbxproj/internal/codec/binary"
	"github.com/vbxproj/vbxproj/internal/codec/text"
)

const schema = `
CREATE TABLE IF NOT EXISTS superbundles (
	id   INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS bundles (
	id          INTEGER PRIMARY KEY,
	name        TEXT NOT NULL,
	kind        INTEGER NOT NULL,
	superbundle INTEGER NOT NULL,
	blueprint   TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS assets (
	seq          INTEGER PRIMARY KEY,
	file_id      TEXT NOT NULL UNIQUE,
	name         TEXT NOT NULL,
	body         BLOB NOT NULL,
	handler_data BLOB
);

CREATE TABLE IF NOT EXISTS resources (
	seq    INTEGER PRIMARY KEY,
	name   TEXT NOT NULL UNIQUE,
	record BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS chunks (
	seq    INTEGER PRIMARY KEY,
	id     TEXT NOT NULL UNIQUE,
	record BLOB NOT NULL
);
`

// tables in dependency order; they are cleared in reverse.
var tables = []string{"superbundles", "bundles", "assets", "resources", "chunks"}

// Stats summarizes a catalog.
type Stats struct {
	Bundles   int
	Assets    int
	Resources int
	Chunks    int
	// Bytes is the size of all stored bodies and records.
	Bytes int64
}

// Catalog is a store snapshot in SQLite.
type Catalog struct {
	db  *sql.DB
	reg asset.Registry
	log *zap.Logger
}

// Open opens or creates the catalog database at path.
func Open(ctx context.Context, path string, reg asset.Registry, log *zap.Logger) (*Catalog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	c := New(db, reg, log)
	if err := c.Initialize(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// New wraps an open database. Initialize must run before first use.
func New(db *sql.DB, reg asset.Registry, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	return &Catalog{db: db, reg: reg, log: log}
}

// Initialize creates the catalog tables if they do not exist.
func (c *Catalog) Initialize(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize catalog: %w", err)
	}
	return nil
}

// Close closes the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Snapshot replaces the catalog content with st in one transaction.
func (c *Catalog) Snapshot(ctx context.Context, st asset.Store) (err error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for i := len(tables) - 1; i >= 0; i-- {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+tables[i]); err != nil {
			return fmt.Errorf("failed to clear %s: %w", tables[i], err)
		}
	}

	for id := 0; ; id++ {
		name, ok := st.SuperBundleName(id)
		if !ok {
			break
		}
		if _, err = tx.ExecContext(ctx, `INSERT INTO superbundles (id, name) VALUES (?, ?)`, id, name); err != nil {
			return fmt.Errorf("failed to insert superbundle %s: %w", name, err)
		}
	}

	for _, b := range st.Bundles() {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO bundles (id, name, kind, superbundle, blueprint) VALUES (?, ?, ?, ?, ?)`,
			b.ID, b.Name, int(b.Kind), b.SuperBundle, b.Blueprint)
		if err != nil {
			return fmt.Errorf("failed to insert bundle %s: %w", b.Name, err)
		}
	}

	for _, a := range st.Assets() {
		var body bytes.Buffer
		env := text.NewEnvelope(a, bundleNames(st, a.Bundles))
		if err = text.WriteAsset(&body, env, a.Graph, c.reg); err != nil {
			return fmt.Errorf("failed to encode asset %s: %w", a.Name, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO assets (file_id, name, body, handler_data) VALUES (?, ?, ?, ?)`,
			a.FileID.String(), a.Name, body.Bytes(), a.HandlerData)
		if err != nil {
			return fmt.Errorf("failed to insert asset %s: %w", a.Name, err)
		}
	}

	for _, res := range st.Resources() {
		var rec []byte
		if rec, err = binary.MarshalResource(resourceRecord(st, res)); err != nil {
			return fmt.Errorf("failed to encode resource %s: %w", res.Name, err)
		}
		if _, err = tx.ExecContext(ctx, `INSERT INTO resources (name, record) VALUES (?, ?)`, res.Name, rec); err != nil {
			return fmt.Errorf("failed to insert resource %s: %w", res.Name, err)
		}
	}

	for _, ch := range st.Chunks() {
		rec := binary.MarshalChunk(chunkRecord(st, ch))
		if _, err = tx.ExecContext(ctx, `INSERT INTO chunks (id, record) VALUES (?, ?)`, ch.ID.String(), rec); err != nil {
			return fmt.Errorf("failed to insert chunk %s: %w", ch.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	c.log.Debug("catalog snapshot written", zap.Int("items", st.ItemCount()))
	return nil
}

// Restore adds the catalog content to st. Entries are added in the order
// they were snapshotted. st is expected to be empty.
func (c *Catalog) Restore(ctx context.Context, st asset.Store) error {
	if err := c.restoreBundles(ctx, st); err != nil {
		return err
	}

	rows, err := c.db.QueryContext(ctx, `SELECT name, body, handler_data FROM assets ORDER BY seq`)
	if err != nil {
		return fmt.Errorf("failed to query assets: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var body, handlerData []byte
		if err := rows.Scan(&name, &body, &handlerData); err != nil {
			return fmt.Errorf("failed to scan asset: %w", err)
		}
		env, g, err := text.ReadAsset(bytes.NewReader(body), name, c.reg, c.log)
		if err != nil {
			return fmt.Errorf("failed to decode asset %s: %w", name, err)
		}
		e := &asset.AssetEntry{
			Name:         env.Name,
			Type:         env.Type,
			FileID:       env.FileID,
			Transient:    env.Transient,
			Graph:        g,
			Bundles:      bundleIDs(st, env.Bundles),
			Dependencies: env.Dependencies,
			Linked:       env.Linked,
			HandlerData:  handlerData,
		}
		if g != nil {
			e.Dependencies = g.Dependencies()
		}
		if env.ModifiedResource && e.HandlerData == nil {
			e.HandlerData = []byte{}
		}
		if err := st.AddAsset(e); err != nil {
			return fmt.Errorf("failed to restore asset %s: %w", name, err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating assets: %w", err)
	}

	if err := c.restoreResources(ctx, st); err != nil {
		return err
	}
	return c.restoreChunks(ctx, st)
}

func (c *Catalog) restoreBundles(ctx context.Context, st asset.Store) error {
	rows, err := c.db.QueryContext(ctx, `SELECT name FROM superbundles ORDER BY id`)
	if err != nil {
		return fmt.Errorf("failed to query superbundles: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("failed to scan superbundle: %w", err)
		}
		st.AddSuperBundle(name)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating superbundles: %w", err)
	}

	rows, err = c.db.QueryContext(ctx, `SELECT name, kind, superbundle, blueprint FROM bundles ORDER BY id`)
	if err != nil {
		return fmt.Errorf("failed to query bundles: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name, blueprint string
		var kind, super int
		if err := rows.Scan(&name, &kind, &super, &blueprint); err != nil {
			return fmt.Errorf("failed to scan bundle: %w", err)
		}
		id := st.AddBundle(name, asset.BundleKind(kind), super)
		if b := st.Bundle(id); b != nil {
			b.Blueprint = blueprint
		}
	}
	return rows.Err()
}

func (c *Catalog) restoreResources(ctx context.Context, st asset.Store) error {
	rows, err := c.db.QueryContext(ctx, `SELECT record FROM resources ORDER BY seq`)
	if err != nil {
		return fmt.Errorf("failed to query resources: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return fmt.Errorf("failed to scan resource: %w", err)
		}
		rec, err := binary.UnmarshalResource(data)
		if err != nil {
			return err
		}
		e := &asset.ResourceEntry{
			Name:         rec.Name,
			RID:          rec.RID,
			ResType:      rec.ResType,
			Meta:         rec.Meta,
			IsAdded:      rec.IsAdded,
			AddedBundles: bundleIDs(st, rec.Bundles),
			Linked:       binary.Refs(rec.Linked),
			Modified:     rec.Modified,
		}
		if err := st.AddResource(e); err != nil {
			return fmt.Errorf("failed to restore resource %s: %w", rec.Name, err)
		}
	}
	return rows.Err()
}

func (c *Catalog) restoreChunks(ctx context.Context, st asset.Store) error {
	rows, err := c.db.QueryContext(ctx, `SELECT id, record FROM chunks ORDER BY seq`)
	if err != nil {
		return fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return fmt.Errorf("failed to scan chunk: %w", err)
		}
		rec, err := binary.UnmarshalChunk(data)
		if err != nil {
			return err
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return fmt.Errorf("chunk id %q: %w", id, err)
		}
		e := &asset.ChunkEntry{
			ID:           rec.ID,
			IsAdded:      rec.IsAdded,
			H32:          rec.H32,
			FirstMip:     rec.FirstMip,
			AddedBundles: bundleIDs(st, rec.Bundles),
			Modified:     rec.Modified,
		}
		if err := st.AddChunk(e); err != nil {
			return fmt.Errorf("failed to restore chunk %s: %w", rec.ID, err)
		}
	}
	return rows.Err()
}

// Stats counts the catalog content.
func (c *Catalog) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	query := `
SELECT
	(SELECT COUNT(*) FROM bundles),
	(SELECT COUNT(*) FROM assets),
	(SELECT COUNT(*) FROM resources),
	(SELECT COUNT(*) FROM chunks),
	(SELECT COALESCE(SUM(COALESCE(LENGTH(body), 0) + COALESCE(LENGTH(handler_data), 0)), 0) FROM assets) +
	(SELECT COALESCE(SUM(LENGTH(record)), 0) FROM resources) +
	(SELECT COALESCE(SUM(LENGTH(record)), 0) FROM chunks)
`
	err := c.db.QueryRowContext(ctx, query).Scan(&s.Bundles, &s.Assets, &s.Resources, &s.Chunks, &s.Bytes)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to read catalog stats: %w", err)
	}
	return s, nil
}

func resourceRecord(st asset.Store, res *asset.ResourceEntry) *binary.ResourceRecord {
	linked := make([]binary.LinkNode, len(res.Linked))
	for i, ref := range res.Linked {
		linked[i] = binary.LinkNode{Ref: ref}
	}
	return &binary.ResourceRecord{
		IsAdded:  res.IsAdded,
		Name:     res.Name,
		RID:      res.RID,
		ResType:  res.ResType,
		Meta:     res.Meta,
		Linked:   linked,
		Bundles:  bundleNames(st, res.AddedBundles),
		Modified: res.Modified,
	}
}

func chunkRecord(st asset.Store, ch *asset.ChunkEntry) *binary.ChunkRecord {
	return &binary.ChunkRecord{
		IsAdded:  ch.IsAdded,
		ID:       ch.ID,
		H32:      ch.H32,
		Bundles:  bundleNames(st, ch.AddedBundles),
		FirstMip: ch.FirstMip,
		Modified: ch.Modified,
	}
}

func bundleNames(st asset.Store, ids []int) []string {
	var names []string
	for _, id := range ids {
		if b := st.Bundle(id); b != nil {
			names = append(names, b.Name)
		}
	}
	return names
}

func bundleIDs(st asset.Store, names []string) []int {
	var ids []int
	for _, name := range names {
		if id, ok := st.BundleID(name); ok {
			ids = append(ids, id)
		}
	}
	return ids
}
