package text

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vbxproj/vbxproj/internal/asset"
	verrors "github.com/vbxproj/vbxproj/internal/errors"
)

func TestBundle_RoundTrip(t *testing.T) {
	in := Bundle{Name: "win32/levels/hero", Kind: asset.BundleBlueprint, SuperBundle: "win32/levels"}

	var buf bytes.Buffer
	require.NoError(t, WriteBundle(&buf, in))
	assert.Contains(t, buf.String(), "\ttype = BlueprintBundle\n")

	out, err := ReadBundle(&buf, "Bundles/hero.bdl", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestReadBundle_UnknownKind(t *testing.T) {
	log, logs := newObservedLogger()

	src := "FILEDATA\n{\n\tname = shared\n\ttype = Mystery\n\tsuperbundle = \n}\n"
	b, err := ReadBundle(strings.NewReader(src), "shared.bdl", log)
	require.NoError(t, err)
	assert.Equal(t, "shared", b.Name)
	assert.Equal(t, asset.BundleNone, b.Kind)
	assert.Equal(t, "", b.SuperBundle)
	assert.Equal(t, []string{verrors.ErrInvalidBundleKind}, loggedCodes(logs))
}

func TestReadBundle_NoName(t *testing.T) {
	_, err := ReadBundle(strings.NewReader("FILEDATA\n{\n}\n"), "x.bdl", zap.NewNop())
	assert.Error(t, err)
}

func TestManifest_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteManifest(&buf, Manifest{Version: FormatVersion, ItemsCount: 12}))
	assert.Contains(t, buf.String(), "Version 1005\nItemsCount 12\n")

	m, err := ReadManifest(&buf, "project.vproj", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, Manifest{Version: 1005, ItemsCount: 12}, m)
}

func TestReadManifest_Problems(t *testing.T) {
	log, logs := newObservedLogger()

	m, err := ReadManifest(strings.NewReader("// old\nItemsCount many\nColor blue\n"), "project.vproj", log)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Version)
	assert.Equal(t, []string{verrors.ErrInvalidManifest, verrors.ErrInvalidManifest}, loggedCodes(logs))
}
