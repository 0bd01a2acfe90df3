package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"Vbx/levels/hero.vbx", "Vbx/levels/hero.bin", "Res/ROCK.RES", "notes.txt"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}

	files, err := FindFiles(dir, ".vbx", ".res")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "Res", "ROCK.RES"),
		filepath.Join(dir, "Vbx", "levels", "hero.vbx"),
	}, files)
}

func TestFindFiles_MissingDir(t *testing.T) {
	files, err := FindFiles(filepath.Join(t.TempDir(), "Chunks"), ".chunk")
	assert.NoError(t, err)
	assert.Empty(t, files)
}
