// pkg/persist/files.go
package persist

import (
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/xkilldash9x/domunify/pkg/dom"
)

// Downloader hands finished content to the user.
type Downloader interface {
	Download(ctx context.Context, filename, mimeType string, content []byte) error
}

// FSDownloader saves downloads as files in Dir on Fs.
type FSDownloader struct {
	Fs     afero.Fs
	Dir    string
	logger *zap.Logger
}

// NewFSDownloader returns a downloader writing into dir.
func NewFSDownloader(fs afero.Fs, dir string, logger *zap.Logger) *FSDownloader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FSDownloader{Fs: fs, Dir: dir, logger: logger.Named("downloader")}
}

// Download writes content to Dir. Only the base name of filename is used.
func (d *FSDownloader) Download(ctx context.Context, filename, mimeType string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name := filepath.Base(filepath.Clean("/" + filename))
	if name == "/" || name == "." {
		return fmt.Errorf("invalid download filename %q", filename)
	}
	if d.Dir != "" {
		if err := d.Fs.MkdirAll(d.Dir, 0o755); err != nil {
			return fmt.Errorf("failed to create download directory: %w", err)
		}
	}
	path := filepath.Join(d.Dir, name)
	if err := afero.WriteFile(d.Fs, path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write download %s: %w", path, err)
	}
	d.logger.Debug("Download saved", zap.String("path", path), zap.String("mime_type", mimeType), zap.Int("bytes", len(content)))
	return nil
}

// FileReader reads the bytes behind a selected file.
type FileReader interface {
	Read(ctx context.Context, f dom.File) ([]byte, error)
}

// FSReader resolves dom.File.Path on Fs.
type FSReader struct {
	Fs afero.Fs
}

func (r FSReader) Read(ctx context.Context, f dom.File) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.Path == "" {
		return nil, fmt.Errorf("%w: %s has no backing path", ErrReadFailed, f.Name)
	}
	data, err := afero.ReadFile(r.Fs, f.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	return data, nil
}

// ReadMode selects how file bytes are presented to a load callback.
type ReadMode string

const (
	ReadText         ReadMode = "text"
	ReadBinary       ReadMode = "binary"
	ReadArrayBuffer  ReadMode = "arrayBuffer"
	ReadDataURL      ReadMode = "dataURL"
	ReadBinaryString ReadMode = "binaryString"
)

// Present converts raw file bytes for mode. Text and binary strings are
// strings, binary modes are []byte.
func Present(mode ReadMode, data []byte, mimeType string) (any, error) {
	switch mode {
	case "", ReadText:
		if !utf8.Valid(data) {
			return strings.ToValidUTF8(string(data), "�"), nil
		}
		return string(data), nil
	case ReadBinary, ReadArrayBuffer:
		return append([]byte(nil), data...), nil
	case ReadDataURL:
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
	case ReadBinaryString:
		var sb strings.Builder
		sb.Grow(len(data))
		for _, b := range data {
			sb.WriteRune(rune(b))
		}
		return sb.String(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownReadMode, mode)
}
