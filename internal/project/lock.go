package project

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/juju/fslock"
)

const lockFile = ".vbxproj.lock"

// ErrLocked is returned when another process owns the project directory.
var ErrLocked = errors.New("project directory is in use")

// lockDir takes the exclusive lock of a project directory. It does not wait.
func lockDir(dir string) (*fslock.Lock, error) {
	lck := fslock.New(filepath.Join(dir, lockFile))
	if err := lck.TryLock(); err != nil {
		if errors.Is(err, fslock.ErrLocked) {
			return nil, fmt.Errorf("%s: %w", dir, ErrLocked)
		}
		return nil, fmt.Errorf("locking %s: %w", dir, err)
	}
	return lck, nil
}
