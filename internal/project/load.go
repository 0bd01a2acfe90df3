package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vbxproj/vbxproj/internal/asset"
	"github.com/vbxproj/vbxproj/internal/codec/binary"
	"github.com/vbxproj/vbxproj/internal/codec/text"
	verrors "github.com/vbxproj/vbxproj/internal/errors"
	"github.com/vbxproj/vbxproj/internal/utils"
)

// linkOwner is an entry loaded this session whose links are checked once
// everything is loaded.
type linkOwner struct {
	file  string
	links *[]asset.LinkRef
}

// Load reads the project whose manifest is manifestPath into the store.
//
// A manifest written by another format version is only loaded when Confirm
// agrees. Once every file is read, dependencies and links that do not
// resolve are dropped with a warning and bundle blueprints are recomputed.
func (s *Session) Load(ctx context.Context, manifestPath string) error {
	s.reset()
	dir := filepath.Dir(manifestPath)

	m, err := s.readManifest(manifestPath)
	if err != nil {
		return err
	}
	if m.Version != text.FormatVersion {
		s.report(verrors.Compatibility, verrors.ErrVersionMismatch, manifestPath,
			"project version %d differs from %d", m.Version, text.FormatVersion)
		if err := s.confirmVersion(manifestPath, m.Version); err != nil {
			return err
		}
	}

	lck, err := lockDir(dir)
	if err != nil {
		return err
	}
	defer lck.Unlock()

	var owners []linkOwner
	if err := s.loadBundles(ctx, dir); err != nil {
		return err
	}
	if err := s.loadAssets(ctx, dir, &owners); err != nil {
		return err
	}
	if err := s.loadResources(ctx, dir, &owners); err != nil {
		return err
	}
	if err := s.loadChunks(ctx, dir, &owners); err != nil {
		return err
	}

	if err := s.checkpoint(ctx, StageLink, 0, 0); err != nil {
		return err
	}
	s.pruneDependencies()
	s.pruneLinks(owners)
	s.linkBlueprints()

	s.current = newProject(manifestPath, m.Version, m.ItemsCount)
	s.log.Info("loaded project",
		zap.String("project", s.current.DisplayName),
		zap.Int("assets", len(s.loadedAssets)),
		zap.Int("records", len(s.written)))
	return s.runHooks(ctx, s.onLoad)
}

func (s *Session) readManifest(manifestPath string) (text.Manifest, error) {
	f, err := os.Open(manifestPath)
	if err != nil {
		return text.Manifest{}, fmt.Errorf("opening manifest: %w", err)
	}
	defer f.Close()

	m, err := text.ReadManifest(f, manifestPath, s.log)
	if err != nil {
		return text.Manifest{}, fmt.Errorf("reading manifest: %w", err)
	}
	return m, nil
}

func (s *Session) confirmVersion(manifestPath string, version int) error {
	if s.opts.Confirm == nil {
		return ErrDeclined
	}
	msg := fmt.Sprintf("%s was saved with project version %d, this build uses %d. Load it anyway?",
		filepath.Base(manifestPath), version, text.FormatVersion)
	ok, err := s.opts.Confirm(msg)
	if err != nil {
		return fmt.Errorf("confirming project version: %w", err)
	}
	if !ok {
		return ErrDeclined
	}
	return nil
}

func (s *Session) loadBundles(ctx context.Context, dir string) error {
	files, err := utils.FindFiles(filepath.Join(dir, bundleDir), bundleExt)
	if err != nil {
		return fmt.Errorf("scanning bundles: %w", err)
	}
	for i, file := range files {
		if err := s.checkpoint(ctx, StageBundles, i, len(files)); err != nil {
			return err
		}
		b, err := readFile(file, func(f *os.File) (text.Bundle, error) { return text.ReadBundle(f, file, s.log) })
		if err != nil {
			s.ioError(verrors.ErrReadFile, file, err)
			continue
		}

		super, ok := s.store.SuperBundleID(b.SuperBundle)
		if !ok {
			super = s.store.AddSuperBundle(b.SuperBundle)
			s.log.Debug("added superbundle", zap.String("superbundle", b.SuperBundle), zap.String("file", file))
		}
		s.loadedBundles = append(s.loadedBundles, s.store.AddBundle(b.Name, b.Kind, super))
	}
	return nil
}

type assetFile struct {
	env   *text.Envelope
	graph *asset.Graph
}

func (s *Session) loadAssets(ctx context.Context, dir string, owners *[]linkOwner) error {
	root := filepath.Join(dir, assetDir)
	files, err := utils.FindFiles(root, assetExt)
	if err != nil {
		return fmt.Errorf("scanning assets: %w", err)
	}
	for i, file := range files {
		if err := s.checkpoint(ctx, StageAssets, i, len(files)); err != nil {
			return err
		}
		if e := s.loadAsset(root, file); e != nil {
			*owners = append(*owners, linkOwner{file: file, links: &e.Linked})
		}

		sidecar := sibling(file, sidecarExt)
		if !fileExists(sidecar) {
			continue
		}
		data, err := os.ReadFile(sidecar)
		if err == nil {
			var nodes []binary.SidecarNode
			if nodes, err = binary.UnmarshalSidecar(data); err == nil {
				s.applySidecar(sidecar, nodes, owners)
			}
		}
		if err != nil {
			s.ioError(verrors.ErrReadFile, sidecar, err)
		}
	}
	return nil
}

// loadAsset reads one asset file and registers it. It returns the
// registered entry, or nil when the asset was skipped.
func (s *Session) loadAsset(root, file string) *asset.AssetEntry {
	af, err := readFile(file, func(f *os.File) (assetFile, error) {
		env, g, err := text.ReadAsset(f, file, s.reg, s.log)
		return assetFile{env: env, graph: g}, err
	})
	if err != nil {
		s.ioError(verrors.ErrReadFile, file, err)
		return nil
	}

	env := af.env
	e := &asset.AssetEntry{
		Name:         env.Name,
		Type:         env.Type,
		FileID:       env.FileID,
		Transient:    env.Transient,
		Graph:        af.graph,
		Bundles:      s.bundleIDs(file, env.Bundles),
		Dependencies: env.Dependencies,
		Linked:       env.Linked,
	}
	if e.Name == "" {
		e.Name = nameFromPath(root, file)
	}
	if af.graph != nil {
		e.Dependencies = af.graph.Dependencies()
	}

	if env.ModifiedResource {
		payload := sibling(file, payloadExt)
		data, err := os.ReadFile(payload)
		if err != nil {
			code := verrors.ErrReadFile
			if os.IsNotExist(err) {
				code = verrors.ErrMissingFile
			}
			s.ioError(code, payload, err)
			return nil
		}
		if e.HandlerData, err = binary.UnmarshalPayload(data); err != nil {
			s.ioError(verrors.ErrReadFile, payload, err)
			return nil
		}
		if e.HandlerData == nil {
			e.HandlerData = []byte{}
		}
	}

	if existing := s.store.AssetByID(e.FileID); existing != nil {
		if !s.opts.Overwrite {
			s.report(verrors.Resolution, verrors.ErrAssetConflict, file,
				"asset %s is already in the store as %s", e.FileID, existing.Name)
			return nil
		}
		err = s.store.ModifyAsset(e)
	} else {
		err = s.store.AddAsset(e)
	}
	if err != nil {
		s.report(verrors.Resolution, verrors.ErrAssetConflict, file, "%v", err)
		return nil
	}
	s.loadedAssets = append(s.loadedAssets, e)
	return e
}

func (s *Session) applySidecar(file string, nodes []binary.SidecarNode, owners *[]linkOwner) {
	for _, n := range nodes {
		if n.Resource != nil {
			if e := s.putResource(file, n.Resource); e != nil {
				*owners = append(*owners, linkOwner{file: file, links: &e.Linked})
			}
		} else if n.Chunk != nil {
			if e := s.putChunk(file, n.Chunk); e != nil {
				*owners = append(*owners, linkOwner{file: file, links: &e.Linked})
			}
		}
		s.applySidecar(file, n.Children, owners)
	}
}

func (s *Session) loadResources(ctx context.Context, dir string, owners *[]linkOwner) error {
	files, err := utils.FindFiles(filepath.Join(dir, resourceDir), resourceExt)
	if err != nil {
		return fmt.Errorf("scanning resources: %w", err)
	}
	for i, file := range files {
		if err := s.checkpoint(ctx, StageResources, i, len(files)); err != nil {
			return err
		}
		data, err := os.ReadFile(file)
		if err != nil {
			s.ioError(verrors.ErrReadFile, file, err)
			continue
		}
		rec, err := binary.UnmarshalResource(data)
		if err != nil {
			s.ioError(verrors.ErrReadFile, file, err)
			continue
		}
		if e := s.putResource(file, rec); e != nil {
			*owners = append(*owners, linkOwner{file: file, links: &e.Linked})
		}
	}
	return nil
}

func (s *Session) loadChunks(ctx context.Context, dir string, owners *[]linkOwner) error {
	files, err := utils.FindFiles(filepath.Join(dir, chunkDir), chunkExt)
	if err != nil {
		return fmt.Errorf("scanning chunks: %w", err)
	}
	for i, file := range files {
		if err := s.checkpoint(ctx, StageChunks, i, len(files)); err != nil {
			return err
		}
		data, err := os.ReadFile(file)
		if err != nil {
			s.ioError(verrors.ErrReadFile, file, err)
			continue
		}
		rec, err := binary.UnmarshalChunk(data)
		if err != nil {
			s.ioError(verrors.ErrReadFile, file, err)
			continue
		}
		if e := s.putChunk(file, rec); e != nil {
			*owners = append(*owners, linkOwner{file: file, links: &e.Linked})
		}
	}
	return nil
}

// putResource applies a resource record to the store. Records flagged as
// added create their entry; other records modify an existing one. It
// returns nil when the record was skipped.
func (s *Session) putResource(file string, rec *binary.ResourceRecord) *asset.ResourceEntry {
	key := asset.ResourceLink(rec.Name).Key()
	if s.written[key] {
		s.log.Debug("resource already loaded", zap.String("resource", rec.Name), zap.String("file", file))
		return nil
	}
	s.written[key] = true

	e := s.store.Resource(rec.Name)
	switch {
	case e != nil && rec.IsAdded && !s.opts.Overwrite:
		s.report(verrors.Resolution, verrors.ErrAssetConflict, file, "resource %s is already in the store", rec.Name)
		return nil
	case e == nil && !rec.IsAdded && !s.opts.AdoptMissing:
		s.report(verrors.Resolution, verrors.ErrMissingEntry, file, "resource %s is not in the store", rec.Name)
		return nil
	}

	isNew := e == nil
	if isNew {
		e = &asset.ResourceEntry{Name: rec.Name}
	}
	if isNew || rec.IsAdded {
		e.IsAdded = rec.IsAdded
		e.RID = rec.RID
		e.ResType = rec.ResType
		e.Meta = rec.Meta
	}
	e.AddedBundles = s.bundleIDs(file, rec.Bundles)
	e.Linked = binary.Refs(rec.Linked)
	e.Modified = rec.Modified

	if isNew {
		if err := s.store.AddResource(e); err != nil {
			s.report(verrors.Resolution, verrors.ErrAssetConflict, file, "%v", err)
			return nil
		}
	}
	return e
}

// putChunk applies a chunk record the way putResource does.
func (s *Session) putChunk(file string, rec *binary.ChunkRecord) *asset.ChunkEntry {
	key := asset.ChunkLink(rec.ID).Key()
	if s.written[key] {
		s.log.Debug("chunk already loaded", zap.Stringer("chunk", rec.ID), zap.String("file", file))
		return nil
	}
	s.written[key] = true

	e := s.store.Chunk(rec.ID)
	switch {
	case e != nil && rec.IsAdded && !s.opts.Overwrite:
		s.report(verrors.Resolution, verrors.ErrAssetConflict, file, "chunk %s is already in the store", rec.ID)
		return nil
	case e == nil && !rec.IsAdded && !s.opts.AdoptMissing:
		s.report(verrors.Resolution, verrors.ErrMissingEntry, file, "chunk %s is not in the store", rec.ID)
		return nil
	}

	isNew := e == nil
	if isNew {
		e = &asset.ChunkEntry{ID: rec.ID}
	}
	e.IsAdded = e.IsAdded || rec.IsAdded
	e.H32 = rec.H32
	e.FirstMip = rec.FirstMip
	e.AddedBundles = s.bundleIDs(file, rec.Bundles)
	e.Modified = rec.Modified

	if isNew {
		if err := s.store.AddChunk(e); err != nil {
			s.report(verrors.Resolution, verrors.ErrAssetConflict, file, "%v", err)
			return nil
		}
	}
	return e
}

func (s *Session) bundleIDs(file string, names []string) []int {
	if len(names) == 0 {
		return nil
	}
	ids := make([]int, 0, len(names))
	for _, name := range names {
		id, ok := s.store.BundleID(name)
		if !ok {
			s.report(verrors.Resolution, verrors.ErrUnknownBundle, file, "unknown bundle %q", name)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// pruneDependencies drops dependency ids of loaded assets that name no
// asset in the store.
func (s *Session) pruneDependencies() {
	for _, a := range s.loadedAssets {
		for _, dep := range append([]uuid.UUID(nil), a.Dependencies...) {
			if s.store.AssetByID(dep) != nil {
				continue
			}
			s.report(verrors.Resolution, verrors.ErrUnresolvedDep, a.Name, "dropping unresolved dependency %s", dep)
			a.RemoveDependency(dep)
		}
	}
}

// pruneLinks drops links of loaded entries whose target is not in the store.
func (s *Session) pruneLinks(owners []linkOwner) {
	for _, o := range owners {
		links := *o.links
		kept := links[:0]
		for _, ref := range links {
			if s.linkExists(ref) {
				kept = append(kept, ref)
				continue
			}
			s.unresolvedLink(o.file, ref)
		}
		if len(kept) == 0 {
			kept = nil
		}
		*o.links = kept
	}
}

func (s *Session) linkExists(ref asset.LinkRef) bool {
	switch ref.Kind {
	case asset.LinkResource:
		return s.store.Resource(ref.Name) != nil
	case asset.LinkChunk:
		return s.store.Chunk(ref.ID) != nil
	case asset.LinkAsset:
		return s.store.AssetByName(ref.Name) != nil
	}
	return false
}

// linkBlueprints points every non-shared bundle loaded this session at the
// asset named like the bundle without its platform segment.
func (s *Session) linkBlueprints() {
	for _, id := range s.loadedBundles {
		b := s.store.Bundle(id)
		if b == nil || b.Kind == asset.BundleShared {
			continue
		}
		_, name, ok := strings.Cut(b.Name, "/")
		if !ok {
			name = b.Name
		}
		if a := s.store.AssetByName(name); a != nil {
			b.Blueprint = a.Name
			continue
		}
		b.Blueprint = ""
		s.log.Debug("bundle has no blueprint asset", zap.String("bundle", b.Name))
	}
}

// readFile opens file and decodes it with read.
func readFile[T any](file string, read func(*os.File) (T, error)) (T, error) {
	f, err := os.Open(file)
	if err != nil {
		var zero T
		return zero, err
	}
	defer f.Close()
	return read(f)
}
