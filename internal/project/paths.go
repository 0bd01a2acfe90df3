package project

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	ManifestExt = ".vproj"

	bundleExt   = ".bdl"
	assetExt    = ".vbx"
	sidecarExt  = ".bin"
	payloadExt  = ".mres"
	resourceExt = ".res"
	chunkExt    = ".chunk"

	bundleDir   = "Bundles"
	assetDir    = "Vbx"
	resourceDir = "Res"
	chunkDir    = "Chunks"
)

// managedExts are the generated extensions removed before a re-save.
var managedExts = []string{assetExt, bundleExt, resourceExt, chunkExt, sidecarExt, payloadExt}

var illegalChars = strings.NewReplacer(
	"!", "", "?", "", "*", "", "$", "",
	`"`, "", "'", "", "[", "", "]", "", "@", "",
)

// Sanitize removes characters that are not allowed in project paths from
// every segment of a slash separated name.
func Sanitize(name string) string {
	segs := strings.Split(name, "/")
	for i, seg := range segs {
		segs[i] = illegalChars.Replace(seg)
	}
	return strings.Join(segs, "/")
}

func entryPath(dir, sub, name, ext string) string {
	return filepath.Join(dir, sub, filepath.FromSlash(Sanitize(name))+ext)
}

func bundlePath(dir, name string) string   { return entryPath(dir, bundleDir, name, bundleExt) }
func assetPath(dir, name string) string    { return entryPath(dir, assetDir, name, assetExt) }
func resourcePath(dir, name string) string { return entryPath(dir, resourceDir, name, resourceExt) }

func chunkPath(dir string, id uuid.UUID) string {
	return filepath.Join(dir, chunkDir, id.String()+chunkExt)
}

// sibling swaps the extension of an asset file.
func sibling(assetFile, ext string) string {
	return strings.TrimSuffix(assetFile, assetExt) + ext
}

// nameFromPath recovers the slash separated entry name of file under root.
func nameFromPath(root, file string) string {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		rel = filepath.Base(file)
	}
	rel = filepath.ToSlash(rel)
	return strings.TrimSuffix(rel, path.Ext(rel))
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
