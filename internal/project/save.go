package project

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/vbxproj/vbxproj/internal/asset"
	"github.com/vbxproj/vbxproj/internal/codec/binary"
	"github.com/vbxproj/vbxproj/internal/codec/text"
	verrors "github.com/vbxproj/vbxproj/internal/errors"
	"github.com/vbxproj/vbxproj/internal/utils"
)

// Save writes the store to the project whose manifest is manifestPath.
//
// Generated files of a previous save are removed first, but only when the
// manifest already exists, so a first save never deletes anything. Files
// that fail to write are reported and skipped; only directory, lock and
// manifest failures and cancellation abort the save.
func (s *Session) Save(ctx context.Context, manifestPath string) error {
	s.reset()
	dir := filepath.Dir(manifestPath)
	existed := fileExists(manifestPath)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating project directory: %w", err)
	}
	lck, err := lockDir(dir)
	if err != nil {
		return err
	}
	defer lck.Unlock()

	if existed {
		if err := s.checkpoint(ctx, StageClean, 0, 0); err != nil {
			return err
		}
		if err := s.clean(dir); err != nil {
			return err
		}
	}

	if err := s.saveBundles(ctx, dir); err != nil {
		return err
	}

	if err := s.checkpoint(ctx, StageManifest, 0, 0); err != nil {
		return err
	}
	m := text.Manifest{Version: text.FormatVersion, ItemsCount: s.store.ItemCount()}
	if err := writeFile(manifestPath, func(w io.Writer) error { return text.WriteManifest(w, m) }); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}

	if err := s.saveAssets(ctx, dir); err != nil {
		return err
	}
	if err := s.saveResources(ctx, dir); err != nil {
		return err
	}
	if err := s.saveChunks(ctx, dir); err != nil {
		return err
	}

	s.current = newProject(manifestPath, m.Version, m.ItemsCount)
	s.log.Info("saved project",
		zap.String("project", s.current.DisplayName),
		zap.Int("items", m.ItemsCount),
		zap.Int("records", len(s.written)))
	return s.runHooks(ctx, s.onSave)
}

func (s *Session) clean(dir string) error {
	files, err := utils.FindFiles(dir, managedExts...)
	if err != nil {
		return fmt.Errorf("scanning project directory: %w", err)
	}
	for _, f := range files {
		if err := os.Remove(f); err != nil {
			s.ioError(verrors.ErrRemoveFile, f, err)
		}
	}
	return nil
}

func (s *Session) saveBundles(ctx context.Context, dir string) error {
	bundles := s.store.Bundles()
	for i, b := range bundles {
		if err := s.checkpoint(ctx, StageBundles, i, len(bundles)); err != nil {
			return err
		}
		super, _ := s.store.SuperBundleName(b.SuperBundle)
		rec := text.Bundle{Name: b.Name, Kind: b.Kind, SuperBundle: super}

		file := bundlePath(dir, b.Name)
		if err := writeFile(file, func(w io.Writer) error { return text.WriteBundle(w, rec) }); err != nil {
			s.ioError(verrors.ErrWriteFile, file, err)
		}
	}
	return nil
}

func (s *Session) saveAssets(ctx context.Context, dir string) error {
	assets := s.store.Assets()
	s.claimOwners(dir, assets)
	for i, a := range assets {
		if err := s.checkpoint(ctx, StageAssets, i, len(assets)); err != nil {
			return err
		}
		s.saveAsset(dir, a)
	}
	return nil
}

// claimOwners picks the sidecar that carries each linked record. Assets
// claim in asset path order, so the owner does not depend on the order the
// store enumerates them in and a reloaded project saves the same files.
func (s *Session) claimOwners(dir string, assets []*asset.AssetEntry) {
	files := make([]string, len(assets))
	order := make([]int, len(assets))
	for i, a := range assets {
		files[i] = assetPath(dir, a.Name)
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return files[order[i]] < files[order[j]] })

	s.owners = make(map[string]string)
	for _, i := range order {
		s.claim(files[i], assets[i].Linked)
	}
}

func (s *Session) claim(file string, refs []asset.LinkRef) {
	for _, ref := range refs {
		key, linked, ok := s.resolveLink(ref)
		if !ok {
			continue
		}
		if _, taken := s.owners[key]; taken {
			continue
		}
		s.owners[key] = file
		s.claim(file, linked)
	}
}

// resolveLink returns the store key of the record ref names and that
// record's own links. Keys come from the resolved record, so refs that
// differ only in case share one key.
func (s *Session) resolveLink(ref asset.LinkRef) (string, []asset.LinkRef, bool) {
	switch ref.Kind {
	case asset.LinkResource:
		if res := s.store.Resource(ref.Name); res != nil {
			return asset.ResourceLink(res.Name).Key(), res.Linked, true
		}
	case asset.LinkChunk:
		if ch := s.store.Chunk(ref.ID); ch != nil {
			return asset.ChunkLink(ch.ID).Key(), ch.Linked, true
		}
	}
	return "", nil, false
}

func (s *Session) saveAsset(dir string, a *asset.AssetEntry) {
	file := assetPath(dir, a.Name)
	env := text.NewEnvelope(a, s.bundleNames(file, a.Bundles))

	err := writeFile(file, func(w io.Writer) error { return text.WriteAsset(w, env, a.Graph, s.reg) })
	if err != nil {
		s.ioError(verrors.ErrWriteFile, file, err)
		return
	}

	if a.HasHandlerData() {
		payload := sibling(file, payloadExt)
		if err := writeBytes(payload, binary.MarshalPayload(a.HandlerData)); err != nil {
			s.ioError(verrors.ErrWriteFile, payload, err)
		}
	}

	nodes := s.sidecarNodes(file, a.Linked)
	if len(nodes) == 0 {
		return
	}
	sidecar := sibling(file, sidecarExt)
	data, err := binary.MarshalSidecar(nodes)
	if err == nil {
		err = writeBytes(sidecar, data)
	}
	if err != nil {
		s.ioError(verrors.ErrWriteFile, sidecar, err)
	}
}

// sidecarNodes collects the records owned by file that have not been
// written yet this session. Records are marked before their own links are
// followed, so a record reachable from several paths is written once.
func (s *Session) sidecarNodes(file string, refs []asset.LinkRef) []binary.SidecarNode {
	var nodes []binary.SidecarNode
	for _, ref := range refs {
		key, _, ok := s.resolveLink(ref)
		if !ok {
			s.unresolvedLink(file, ref)
			continue
		}
		if s.written[key] || s.owners[key] != file {
			continue
		}
		s.written[key] = true

		switch ref.Kind {
		case asset.LinkResource:
			res := s.store.Resource(ref.Name)
			rec := s.resourceRecord(file, res)
			nodes = append(nodes, binary.SidecarNode{Resource: rec, Children: s.sidecarNodes(file, res.Linked)})
		case asset.LinkChunk:
			ch := s.store.Chunk(ref.ID)
			rec := s.chunkRecord(file, ch)
			nodes = append(nodes, binary.SidecarNode{Chunk: rec, Children: s.sidecarNodes(file, ch.Linked)})
		}
	}
	return nodes
}

func (s *Session) saveResources(ctx context.Context, dir string) error {
	resources := s.store.Resources()
	for i, res := range resources {
		if err := s.checkpoint(ctx, StageResources, i, len(resources)); err != nil {
			return err
		}
		key := asset.ResourceLink(res.Name).Key()
		if s.written[key] {
			continue
		}
		s.written[key] = true

		file := resourcePath(dir, res.Name)
		data, err := binary.MarshalResource(s.resourceRecord(file, res))
		if err == nil {
			err = writeBytes(file, data)
		}
		if err != nil {
			s.ioError(verrors.ErrWriteFile, file, err)
		}
	}
	return nil
}

func (s *Session) saveChunks(ctx context.Context, dir string) error {
	chunks := s.store.Chunks()
	for i, ch := range chunks {
		if err := s.checkpoint(ctx, StageChunks, i, len(chunks)); err != nil {
			return err
		}
		key := asset.ChunkLink(ch.ID).Key()
		if s.written[key] {
			continue
		}
		s.written[key] = true

		file := chunkPath(dir, ch.ID)
		if err := writeBytes(file, binary.MarshalChunk(s.chunkRecord(file, ch))); err != nil {
			s.ioError(verrors.ErrWriteFile, file, err)
		}
	}
	return nil
}

func (s *Session) resourceRecord(file string, res *asset.ResourceEntry) *binary.ResourceRecord {
	self := asset.ResourceLink(res.Name).Key()
	return &binary.ResourceRecord{
		IsAdded:  res.IsAdded,
		Name:     res.Name,
		RID:      res.RID,
		ResType:  res.ResType,
		Meta:     res.Meta,
		Linked:   s.linkNodes(res.Linked, map[string]bool{self: true}),
		Bundles:  s.bundleNames(file, res.AddedBundles),
		Modified: res.Modified,
	}
}

func (s *Session) chunkRecord(file string, ch *asset.ChunkEntry) *binary.ChunkRecord {
	return &binary.ChunkRecord{
		IsAdded:  ch.IsAdded,
		ID:       ch.ID,
		H32:      ch.H32,
		Bundles:  s.bundleNames(file, ch.AddedBundles),
		FirstMip: ch.FirstMip,
		Modified: ch.Modified,
	}
}

// linkNodes expands refs into a tree. onPath holds the keys of the
// enclosing nodes; a reference back to one of them is written as a leaf.
func (s *Session) linkNodes(refs []asset.LinkRef, onPath map[string]bool) []binary.LinkNode {
	if len(refs) == 0 {
		return nil
	}
	nodes := make([]binary.LinkNode, 0, len(refs))
	for _, ref := range refs {
		node := binary.LinkNode{Ref: ref}
		if key := ref.Key(); !onPath[key] {
			onPath[key] = true
			node.Children = s.linkNodes(s.linksOf(ref), onPath)
			delete(onPath, key)
		}
		nodes = append(nodes, node)
	}
	return nodes
}

func (s *Session) linksOf(ref asset.LinkRef) []asset.LinkRef {
	switch ref.Kind {
	case asset.LinkResource:
		if res := s.store.Resource(ref.Name); res != nil {
			return res.Linked
		}
	case asset.LinkChunk:
		if ch := s.store.Chunk(ref.ID); ch != nil {
			return ch.Linked
		}
	case asset.LinkAsset:
		if a := s.store.AssetByName(ref.Name); a != nil {
			return a.Linked
		}
	}
	return nil
}

func (s *Session) bundleNames(file string, ids []int) []string {
	if len(ids) == 0 {
		return nil
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		b := s.store.Bundle(id)
		if b == nil {
			s.report(verrors.Resolution, verrors.ErrUnknownBundle, file, "unknown bundle id %d", id)
			continue
		}
		names = append(names, b.Name)
	}
	return names
}

func (s *Session) report(cat verrors.Category, code, file, format string, args ...any) {
	verrors.Report(s.log, verrors.New(cat, code, verrors.Location{File: file}, format, args...))
}

func (s *Session) ioError(code, file string, err error) {
	verrors.Report(s.log, verrors.New(verrors.IO, code, verrors.Location{File: file}, "skipping file").Wrap(err))
}

func (s *Session) unresolvedLink(file string, ref asset.LinkRef) {
	s.report(verrors.Resolution, verrors.ErrUnresolvedLink, file, "linked %s %s not found", ref.Kind, linkName(ref))
}

func linkName(ref asset.LinkRef) string {
	if ref.Kind == asset.LinkChunk {
		return ref.ID.String()
	}
	return ref.Name
}

// writeFile creates file and its directory and writes it with write.
func writeFile(file string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return err
	}
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(file)
		return err
	}
	return f.Close()
}

func writeBytes(file string, data []byte) error {
	return writeFile(file, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}
