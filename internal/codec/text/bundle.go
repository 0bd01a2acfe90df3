package text

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/vbxproj/vbxproj/internal/asset"
	verrors "github.com/vbxproj/vbxproj/internal/errors"
)

// Bundle is the content of a bundle file.
type Bundle struct {
	Name        string
	Kind        asset.BundleKind
	SuperBundle string
}

// WriteBundle writes b as "key = value" lines inside a FILEDATA block.
func WriteBundle(w io.Writer, b Bundle) error {
	tw := NewWriter(w)
	tw.Banner("Bundle: " + b.Name)
	tw.Line(headerKeyword)
	tw.Open()
	tw.Line("name = " + b.Name)
	tw.Line("type = " + b.Kind.String())
	tw.Line("superbundle = " + b.SuperBundle)
	tw.Close()
	return tw.Flush()
}

// ReadBundle reads a bundle file. An unknown bundle type is reported and
// read as None.
func ReadBundle(r io.Reader, file string, log *zap.Logger) (Bundle, error) {
	lr := NewLineReader(r, file)
	report := func(code, format string, args ...any) {
		loc := verrors.Location{File: file, Line: lr.Line()}
		verrors.Report(log, verrors.New(verrors.Parse, code, loc, format, args...))
	}

	var b Bundle
	for {
		line, ok := lr.Next()
		if !ok {
			break
		}
		switch line {
		case "", headerKeyword, "{", "}":
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			report(verrors.ErrMalformedLine, "malformed bundle line %q", line)
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "name":
			b.Name = value
		case "type":
			kind, err := asset.ParseBundleKind(value)
			if err != nil {
				report(verrors.ErrInvalidBundleKind, "%v", err)
			}
			b.Kind = kind
		case "superbundle":
			b.SuperBundle = value
		default:
			report(verrors.ErrMalformedLine, "unknown bundle key %q", key)
		}
	}

	if err := lr.Err(); err != nil {
		return Bundle{}, fmt.Errorf("reading %s: %w", file, err)
	}
	if b.Name == "" {
		return Bundle{}, fmt.Errorf("%s: bundle has no name", file)
	}
	return b, nil
}
