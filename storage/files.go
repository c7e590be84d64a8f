package storage

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// FileStore keeps downloaded documents on the local disk, optionally
// mirroring each write to S3. The local copy is authoritative; the mirror is
// best-effort and a failed upload only costs a log line.
type FileStore struct {
	root     string
	uploader *S3Uploader
}

func NewFileStore(root string, uploader *S3Uploader) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create files dir: %w", err)
	}
	return &FileStore{root: root, uploader: uploader}, nil
}

func (f *FileStore) path(name string) string {
	return filepath.Join(f.root, filepath.FromSlash(name))
}

// Exists reports whether a document is already on disk.
func (f *FileStore) Exists(name string) bool {
	info, err := os.Stat(f.path(name))
	return err == nil && !info.IsDir()
}

// Read returns a stored document's bytes.
func (f *FileStore) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(f.path(name))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// Write stores a document and returns the location to record on the scrap:
// the mirror URL when one exists, the relative name otherwise.
func (f *FileStore) Write(ctx context.Context, name string, data []byte) (string, error) {
	p := f.path(name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}

	if f.uploader != nil {
		if err := f.uploader.Upload(ctx, name, data, ""); err != nil {
			log.Printf("Error: mirror %s to s3: %v", name, err)
		} else {
			return f.uploader.PublicURL(name), nil
		}
	}
	return name, nil
}
