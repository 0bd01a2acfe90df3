package text

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	verrors "github.com/vbxproj/vbxproj/internal/errors"
)

// FormatVersion is the project format written by this package.
const FormatVersion = 1005

// Manifest is the content of the project file.
type Manifest struct {
	Version    int
	ItemsCount int
}

// WriteManifest writes the project file.
func WriteManifest(w io.Writer, m Manifest) error {
	tw := NewWriter(w)
	tw.Banner("Project")
	tw.Line("Version " + strconv.Itoa(m.Version))
	tw.Line("ItemsCount " + strconv.Itoa(m.ItemsCount))
	return tw.Flush()
}

// ReadManifest reads the project file. A file without a Version line reads
// as version 0.
func ReadManifest(r io.Reader, file string, log *zap.Logger) (Manifest, error) {
	lr := NewLineReader(r, file)
	report := func(format string, args ...any) {
		loc := verrors.Location{File: file, Line: lr.Line()}
		verrors.Report(log, verrors.New(verrors.Parse, verrors.ErrInvalidManifest, loc, format, args...))
	}

	var m Manifest
	for {
		line, ok := lr.Next()
		if !ok {
			break
		}
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			report("malformed manifest line %q", line)
			continue
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			report("%s: %q is not a number", fields[0], fields[1])
			continue
		}
		switch fields[0] {
		case "Version":
			m.Version = n
		case "ItemsCount":
			m.ItemsCount = n
		default:
			report("unknown manifest key %q", fields[0])
		}
	}

	if err := lr.Err(); err != nil {
		return Manifest{}, fmt.Errorf("reading %s: %w", file, err)
	}
	return m, nil
}
