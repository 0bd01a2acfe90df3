package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDir(t *testing.T) {
	reg := newRegistry(t)
	dir := t.TempDir()
	require.NoError(t, NewSession(fixtureStore(t, reg), reg, nil, Options{}).Save(context.Background(), filepath.Join(dir, "demo.vproj")))

	results, err := CheckDir(context.Background(), dir, reg, nil)
	require.NoError(t, err)
	assert.Len(t, results, 10)
	for _, r := range results {
		assert.True(t, r.OK(), "%s: %d warnings, err %v", r.File, r.Warnings, r.Err)
	}
}

func TestCheckFile_CountsWarnings(t *testing.T) {
	reg := newRegistry(t)
	dir := t.TempDir()
	file := filepath.Join(dir, "hero.vbx")
	body := `FILEDATA
{
	"name" "hero"
	"type" "SoundWaveAsset"
	"fid" "10000000-0000-0000-0000-000000000002"
	Objects
	{
		"SoundWaveAsset" "10000000-0000-0000-0000-000000000002" "1" "True"
	}
}
SoundWaveAsset 10000000-0000-0000-0000-000000000002 1
{
	"Float" "Speed" "fast"
	"Float" "Bogus" "1"
}
`
	require.NoError(t, os.WriteFile(file, []byte(body), 0o644))

	log, logs := newObservedLogger()
	r := CheckFile(file, reg, log)
	assert.NoError(t, r.Err)
	assert.Equal(t, 2, r.Warnings)
	assert.False(t, r.OK())
	assert.Len(t, loggedCodes(logs), 2)
}

func TestCheckFile_Errors(t *testing.T) {
	reg := newRegistry(t)
	dir := t.TempDir()

	r := CheckFile(filepath.Join(dir, "missing.vbx"), reg, nil)
	assert.Error(t, r.Err)

	truncated := filepath.Join(dir, "rock.res")
	require.NoError(t, os.WriteFile(truncated, []byte{1, 'a'}, 0o644))
	assert.Error(t, CheckFile(truncated, reg, nil).Err)

	other := filepath.Join(dir, "readme.md")
	require.NoError(t, os.WriteFile(other, []byte("#"), 0o644))
	assert.ErrorContains(t, CheckFile(other, reg, nil).Err, "unsupported")
}
