package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/glitchtale/engine/pkg/save"
)

// FileStorage implements Storage on a local directory, one JSON save
// document per session. Meant for single-node development runs where
// Redis is not available. Files are written atomically via rename.
type FileStorage struct {
	dir    string
	logger *slog.Logger
}

var _ Storage = (*FileStorage)(nil)

// NewFileStorage creates a file storage instance rooted at dir.
func NewFileStorage(dir string, logger *slog.Logger) *FileStorage {
	return &FileStorage{dir: dir, logger: logger}
}

// Ping creates the data directory and verifies it is writable.
func (f *FileStorage) Ping(_ context.Context) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("data dir unavailable: %w", err)
	}
	check, err := os.CreateTemp(f.dir, ".writecheck-*")
	if err != nil {
		return fmt.Errorf("data dir not writable: %w", err)
	}
	name := check.Name()
	_ = check.Close()
	_ = os.Remove(name)
	f.logger.Debug("File storage ready", "dir", f.dir)
	return nil
}

// sessionPath maps an id to its file, refusing ids that would escape
// the data directory.
func (f *FileStorage) sessionPath(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", fmt.Errorf("invalid session id %q", id)
	}
	return filepath.Join(f.dir, id+".json"), nil
}

func (f *FileStorage) SaveSession(_ context.Context, id string, doc *save.Document) error {
	path, err := f.sessionPath(id)
	if err != nil {
		return err
	}
	data, err := doc.Encode()
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("data dir unavailable: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		f.logger.Error("Session write failed", "path", tmp, "error", err)
		return fmt.Errorf("file write failed: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("file rename failed: %w", err)
	}
	f.logger.Debug("Session saved", "path", path, "bytes", len(data))
	return nil
}

func (f *FileStorage) LoadSession(_ context.Context, id string) (*save.Document, error) {
	path, err := f.sessionPath(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			f.logger.Debug("Session not found", "path", path)
			return nil, nil
		}
		return nil, fmt.Errorf("file read failed: %w", err)
	}
	doc, err := save.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("stored session is invalid: %w", err)
	}
	return doc, nil
}

func (f *FileStorage) DeleteSession(_ context.Context, id string) error {
	path, err := f.sessionPath(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("file delete failed: %w", err)
	}
	return nil
}

func (f *FileStorage) Close() error {
	return nil
}
