package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchCommand_Creation(t *testing.T) {
	cmd := newWatchCommand(&env{})

	if cmd.Name() != "watch" {
		t.Errorf("Expected name to be 'watch', got %q", cmd.Name())
	}

	if cmd.Short == "" || cmd.Long == "" {
		t.Error("Expected descriptions to be set")
	}
}

func TestWatchCommand_ReportsEdits(t *testing.T) {
	dir, manifest := workspace(t)
	src := filepath.Dir(manifest)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out lockedBuffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--config-dir", dir, "--no-color", "watch", src})

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	// Wait for the banner, then edit files until the checks show up.
	deadline := time.Now().Add(3 * time.Second)
	for !strings.Contains(out.String(), "Watching") && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	broken := filepath.Join(src, "Res", "broken.res")
	good := filepath.Join(src, "Vbx", "levels", "hero.vbx")
	body, err := os.ReadFile(good)
	if err != nil {
		t.Fatalf("Failed to read asset: %v", err)
	}

	for time.Now().Before(deadline) {
		os.WriteFile(broken, []byte{1}, 0o644)
		os.WriteFile(good, body, 0o644)
		time.Sleep(150 * time.Millisecond)
		s := out.String()
		if strings.Contains(s, "✗ Res/broken.res") && strings.Contains(s, "✓ Vbx/levels/hero.vbx") {
			break
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watch returned error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}

	s := out.String()
	if !strings.Contains(s, "✗ Res/broken.res") {
		t.Errorf("Expected broken resource to be reported, got:\n%s", s)
	}
	if !strings.Contains(s, "✓ Vbx/levels/hero.vbx") {
		t.Errorf("Expected asset to check clean, got:\n%s", s)
	}
	if !strings.Contains(s, "Shutting down") {
		t.Errorf("Expected shutdown message, got:\n%s", s)
	}
}
