package storage

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/admitflow/admitflow-backend/pkg/config"
	"github.com/admitflow/admitflow-backend/pkg/errors"
)

// MIME types accepted for document uploads.
var allowedMimeTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"text/plain":      true,
}

// StoredFile describes a file the store has written to disk.
type StoredFile struct {
	Name string
	Path string
	Size int64
}

// UploadStore writes document uploads to a local directory. Stored names
// are generated to be unique per user and upload, so the original file
// name never influences the on-disk path.
type UploadStore struct {
	dir         string
	maxFileSize int64
}

// NewUploadStore creates the upload directory if needed and returns a store.
func NewUploadStore(cfg *config.UploadsConfig) (*UploadStore, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	return &UploadStore{
		dir:         cfg.Dir,
		maxFileSize: cfg.MaxFileSize,
	}, nil
}

// Save validates and writes an upload to disk.
func (s *UploadStore) Save(userID, originalName, mimeType string, data []byte) (*StoredFile, error) {
	if len(data) == 0 {
		return nil, errors.BadRequest("uploaded file is empty")
	}
	if int64(len(data)) > s.maxFileSize {
		return nil, errors.BadRequest(fmt.Sprintf("file exceeds maximum size of %d bytes", s.maxFileSize))
	}
	if !allowedMimeTypes[mimeType] {
		return nil, errors.BadRequest(fmt.Sprintf("unsupported file type %q", mimeType))
	}

	name := storedName(userID, originalName)
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}

	return &StoredFile{
		Name: name,
		Path: path,
		Size: int64(len(data)),
	}, nil
}

// Read returns the raw bytes of a stored file.
func (s *UploadStore) Read(path string) ([]byte, error) {
	clean := filepath.Clean(path)
	if !strings.HasPrefix(clean, filepath.Clean(s.dir)+string(filepath.Separator)) {
		return nil, errors.BadRequest("file path outside upload directory")
	}

	data, err := os.ReadFile(clean)
	if os.IsNotExist(err) {
		return nil, errors.NotFound("file")
	}
	if err != nil {
		return nil, err
	}

	return data, nil
}

// Remove deletes a stored file. A missing file is not an error: the
// caller uses this to undo a save whose follow-up write failed.
func (s *UploadStore) Remove(path string) error {
	clean := filepath.Clean(path)
	if !strings.HasPrefix(clean, filepath.Clean(s.dir)+string(filepath.Separator)) {
		return errors.BadRequest("file path outside upload directory")
	}

	if err := os.Remove(clean); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// storedName builds a collision-resistant on-disk name:
// <userID>-<epoch-ms>-<random>.<ext>.
func storedName(userID, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%s-%d-%06d%s", userID, time.Now().UnixMilli(), rand.IntN(1000000), ext)
}
