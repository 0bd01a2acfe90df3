// Package project saves an asset store to a project directory and loads it
// back. A project is a manifest file next to four trees: Bundles/ (.bdl),
// Vbx/ (.vbx asset files with their .bin and .mres siblings), Res/ (.res)
// and Chunks/ (.chunk).
package project

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/vbxproj/vbxproj/internal/asset"
)

// ErrDeclined is returned when the caller refuses to load a project written
// by another format version.
var ErrDeclined = errors.New("load declined")

// Stage names one phase of a save or load.
type Stage string

const (
	StageClean     Stage = "clean"
	StageBundles   Stage = "bundles"
	StageManifest  Stage = "manifest"
	StageAssets    Stage = "assets"
	StageResources Stage = "resources"
	StageChunks    Stage = "chunks"
	StageLink      Stage = "link"
)

// Progress receives progress between phases and between files. total is 0
// when the phase has no countable items.
type Progress interface {
	Update(stage Stage, current, total int)
}

// ProgressFunc adapts a function to Progress.
type ProgressFunc func(stage Stage, current, total int)

func (f ProgressFunc) Update(stage Stage, current, total int) { f(stage, current, total) }

// ConfirmFunc asks a yes/no question.
type ConfirmFunc func(message string) (bool, error)

// Hook runs after a successful save or load.
type Hook func(ctx context.Context, p *Project) error

// Project describes the manifest of the last saved or loaded project.
type Project struct {
	Path        string
	Dir         string
	DisplayName string
	Version     int
	ItemsCount  int
}

func newProject(manifestPath string, version, items int) *Project {
	base := filepath.Base(manifestPath)
	return &Project{
		Path:        manifestPath,
		Dir:         filepath.Dir(manifestPath),
		DisplayName: strings.TrimSuffix(base, filepath.Ext(base)),
		Version:     version,
		ItemsCount:  items,
	}
}

// Options configures a Session.
type Options struct {
	// Overwrite lets loaded records replace entries the store already has.
	// Without it such records are reported and skipped.
	Overwrite bool
	// AdoptMissing creates store entries for records that are not flagged
	// as added but are missing from the store.
	AdoptMissing bool

	Progress Progress
	// Confirm answers the version gate. A nil Confirm declines.
	Confirm ConfirmFunc
}

// Session saves and loads projects for one store. It is not safe for
// concurrent use.
type Session struct {
	store asset.Store
	reg   asset.Registry
	log   *zap.Logger
	opts  Options

	onSave  []Hook
	onLoad  []Hook
	current *Project

	// Reset at the start of every Save and Load.
	written       map[string]bool
	owners        map[string]string
	loadedAssets  []*asset.AssetEntry
	loadedBundles []int
}

// NewSession creates a session. A nil log discards diagnostics.
func NewSession(store asset.Store, reg asset.Registry, log *zap.Logger, opts Options) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		store: store,
		reg:   reg,
		log:   log,
		opts:  opts,
	}
}

// OnSave registers a hook run after every successful Save.
func (s *Session) OnSave(h Hook) { s.onSave = append(s.onSave, h) }

// OnLoad registers a hook run after every successful Load.
func (s *Session) OnLoad(h Hook) { s.onLoad = append(s.onLoad, h) }

// Current returns the project of the last successful operation, or nil.
func (s *Session) Current() *Project { return s.current }

func (s *Session) reset() {
	s.written = make(map[string]bool)
	s.owners = nil
	s.loadedAssets = nil
	s.loadedBundles = nil
}

// checkpoint observes cancellation and reports progress.
func (s *Session) checkpoint(ctx context.Context, stage Stage, current, total int) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", stage, err)
	}
	if s.opts.Progress != nil {
		s.opts.Progress.Update(stage, current, total)
	}
	return nil
}

func (s *Session) runHooks(ctx context.Context, hooks []Hook) error {
	for _, h := range hooks {
		if err := h(ctx, s.current); err != nil {
			return fmt.Errorf("project hook: %w", err)
		}
	}
	return nil
}
