// Package errors classifies the problems the serialization engine survives.
// Parse and resolution problems are logged as warnings and the affected
// field or edge is dropped; I/O problems are logged as errors and the
// affected file is skipped; compatibility problems are surfaced to the
// caller as a yes/no decision.
package errors

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category is the error taxonomy of the engine.
type Category int

const (
	Parse Category = iota
	Resolution
	IO
	Compatibility
)

// String returns the string representation of the category
func (c Category) String() string {
	switch c {
	case Parse:
		return "parse"
	case Resolution:
		return "resolution"
	case IO:
		return "io"
	case Compatibility:
		return "compatibility"
	default:
		return "unknown"
	}
}

// Level is the log level a category is reported at.
func (c Category) Level() zapcore.Level {
	if c == IO {
		return zapcore.ErrorLevel
	}
	return zapcore.WarnLevel
}

// Location is a position in a project file. Line is 1-based; zero means the
// problem is not tied to a line.
type Location struct {
	File string
	Line int
}

func (l Location) String() string {
	if l.Line > 0 {
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	}
	return l.File
}

// Diagnostic is one reported problem.
type Diagnostic struct {
	Category Category
	Code     string
	Message  string
	Location Location
	Err      error
}

// Error implements the error interface
func (d Diagnostic) Error() string {
	msg := fmt.Sprintf("%s: %s: %s", d.Location, d.Code, d.Message)
	if d.Err != nil {
		msg += ": " + d.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (d Diagnostic) Unwrap() error { return d.Err }

// New creates a diagnostic.
func New(category Category, code string, loc Location, format string, args ...any) Diagnostic {
	return Diagnostic{
		Category: category,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
	}
}

// Wrap attaches a cause to the diagnostic.
func (d Diagnostic) Wrap(err error) Diagnostic {
	d.Err = err
	return d
}

// Fields returns the structured log fields of the diagnostic.
func (d Diagnostic) Fields() []zap.Field {
	fields := []zap.Field{
		zap.String("category", d.Category.String()),
		zap.String("code", d.Code),
	}
	if d.Location.File != "" {
		fields = append(fields, zap.String("file", d.Location.File))
	}
	if d.Location.Line > 0 {
		fields = append(fields, zap.Int("line", d.Location.Line))
	}
	if d.Err != nil {
		fields = append(fields, zap.Error(d.Err))
	}
	return fields
}

// Report logs d at the level of its category. A nil logger drops it.
func Report(log *zap.Logger, d Diagnostic) {
	if log == nil {
		return
	}
	if ce := log.Check(d.Category.Level(), d.Message); ce != nil {
		ce.Write(d.Fields()...)
	}
}
