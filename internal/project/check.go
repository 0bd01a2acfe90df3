package project

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vbxproj/vbxproj/internal/asset"
	"github.com/vbxproj/vbxproj/internal/codec/binary"
	"github.com/vbxproj/vbxproj/internal/codec/text"
	"github.com/vbxproj/vbxproj/internal/utils"
)

// CheckResult is the outcome of validating one project file.
type CheckResult struct {
	File     string
	Warnings int
	// Err is set when the file could not be read at all.
	Err error
}

// OK reports whether the file read cleanly.
func (r CheckResult) OK() bool { return r.Err == nil && r.Warnings == 0 }

// CheckExts are the extensions CheckFile understands.
var CheckExts = append([]string{ManifestExt}, managedExts...)

// CheckFile decodes file with the codec matching its extension without
// touching any store. Diagnostics go to log and warnings are counted
// whatever the level of log.
func CheckFile(file string, reg asset.Registry, log *zap.Logger) CheckResult {
	if log == nil {
		log = zap.NewNop()
	}
	res := CheckResult{File: file}
	counter := zapcore.RegisterHooks(
		zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(io.Discard), zapcore.WarnLevel),
		func(zapcore.Entry) error {
			res.Warnings++
			return nil
		})
	log = log.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core { return zapcore.NewTee(c, counter) }))

	data, err := os.ReadFile(file)
	if err != nil {
		res.Err = err
		return res
	}
	r := bytes.NewReader(data)

	switch strings.ToLower(filepath.Ext(file)) {
	case ManifestExt:
		_, err = text.ReadManifest(r, file, log)
	case bundleExt:
		_, err = text.ReadBundle(r, file, log)
	case assetExt:
		_, _, err = text.ReadAsset(r, file, reg, log)
	case sidecarExt:
		_, err = binary.UnmarshalSidecar(data)
	case payloadExt:
		_, err = binary.UnmarshalPayload(data)
	case resourceExt:
		_, err = binary.UnmarshalResource(data)
	case chunkExt:
		_, err = binary.UnmarshalChunk(data)
	default:
		err = fmt.Errorf("unsupported file type %q", filepath.Ext(file))
	}
	res.Err = err
	return res
}

// CheckDir validates every project file under dir.
func CheckDir(ctx context.Context, dir string, reg asset.Registry, log *zap.Logger) ([]CheckResult, error) {
	files, err := utils.FindFiles(dir, CheckExts...)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	results := make([]CheckResult, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, CheckFile(f, reg, log))
	}
	return results, nil
}
