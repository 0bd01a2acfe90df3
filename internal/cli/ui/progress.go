package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/vbxproj/vbxproj/internal/project"
)

// Spinner is a single line indicator for operations of unknown length.
type Spinner struct {
	writer   io.Writer
	frames   []string
	interval time.Duration
	noColor  bool

	mu      sync.Mutex
	message string
	active  bool
	done    chan struct{}
	stopped chan struct{}
}

// SpinnerOptions configures spinner behavior
type SpinnerOptions struct {
	Message  string
	NoColor  bool
	Interval time.Duration // Default: 100ms
}

var defaultFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// NewSpinner creates a new spinner
func NewSpinner(w io.Writer, opts SpinnerOptions) *Spinner {
	interval := opts.Interval
	if interval == 0 {
		interval = 100 * time.Millisecond
	}

	return &Spinner{
		writer:   w,
		message:  opts.Message,
		frames:   defaultFrames,
		interval: interval,
		noColor:  opts.NoColor,
	}
}

// Start begins the animation. Starting a running spinner is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return
	}
	s.active = true
	s.done = make(chan struct{})
	s.stopped = make(chan struct{})
	go s.animate(s.done, s.stopped)
}

// Stop stops the spinner and clears the line
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	close(s.done)
	stopped := s.stopped
	s.mu.Unlock()

	<-stopped
	fmt.Fprint(s.writer, "\r\033[K")
}

// Success stops the spinner and shows a success message
func (s *Spinner) Success(message string) {
	s.Stop()
	s.color(color.FgGreen, color.Bold).Fprintf(s.writer, "✓ %s\n", message)
}

// Warn stops the spinner and shows a warning message
func (s *Spinner) Warn(message string) {
	s.Stop()
	s.color(color.FgYellow, color.Bold).Fprintf(s.writer, "⚠ %s\n", message)
}

// Error stops the spinner and shows an error message
func (s *Spinner) Error(message string) {
	s.Stop()
	s.color(color.FgRed, color.Bold).Fprintf(s.writer, "❌ %s\n", message)
}

// UpdateMessage changes the spinner message
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}

func (s *Spinner) color(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if s.noColor {
		c.DisableColor()
	}
	return c
}

func (s *Spinner) animate(done <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)

	frameIndex := 0
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	cyan := s.color(color.FgCyan)

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.mu.Lock()
			msg := s.message
			s.mu.Unlock()
			cyan.Fprintf(s.writer, "\r\033[K%s %s", s.frames[frameIndex], msg)
			frameIndex = (frameIndex + 1) % len(s.frames)
		}
	}
}

// StageProgress shows save and load phases on a spinner.
type StageProgress struct {
	spinner *Spinner
	verb    string
}

var _ project.Progress = (*StageProgress)(nil)

// NewStageProgress returns a progress sink whose messages start with verb,
// e.g. "Saving".
func NewStageProgress(w io.Writer, verb string, noColor bool) *StageProgress {
	return &StageProgress{
		spinner: NewSpinner(w, SpinnerOptions{Message: verb + "...", NoColor: noColor}),
		verb:    verb,
	}
}

// Update implements project.Progress.
func (p *StageProgress) Update(stage project.Stage, current, total int) {
	p.spinner.UpdateMessage(StageMessage(p.verb, stage, current, total))
}

// Spinner returns the underlying spinner.
func (p *StageProgress) Spinner() *Spinner { return p.spinner }

// StageMessage formats one progress line.
func StageMessage(verb string, stage project.Stage, current, total int) string {
	if total == 0 {
		return fmt.Sprintf("%s %s...", verb, stage)
	}
	return fmt.Sprintf("%s %s (%d/%d)...", verb, stage, current, total)
}

// WithSpinner runs fn while a spinner shows message. The spinner is
// replaced by a success or failure line once fn returns.
func WithSpinner(w io.Writer, message string, noColor bool, fn func() error) error {
	spinner := NewSpinner(w, SpinnerOptions{
		Message: message,
		NoColor: noColor,
	})
	spinner.Start()

	if err := fn(); err != nil {
		spinner.Error(fmt.Sprintf("%s failed", message))
		return err
	}

	spinner.Success(message)
	return nil
}
