package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

const maxLogSize = 4 * 1024 * 1024

// RotatingWriter is a size-capped log file. When the cap is hit the file is
// renamed to <path>.1 and a fresh one is started, so at most one backup
// generation survives.
type RotatingWriter struct {
	mu   sync.Mutex
	file *os.File
	path string
	size int64
}

// NewRotatingWriter opens (or continues) the log file at path.
func NewRotatingWriter(path string) (*RotatingWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	w := &RotatingWriter{file: f, path: path}
	if info, err := f.Stat(); err == nil {
		w.size = info.Size()
	}
	if w.size > maxLogSize {
		w.rotate()
	}
	return w, nil
}

// Setup points the standard logger at stdout and a rotating file, so every
// log.Printf in the process lands in both places.
func Setup(path string) (*RotatingWriter, error) {
	w, err := NewRotatingWriter(path)
	if err != nil {
		return nil, err
	}
	log.SetOutput(io.MultiWriter(os.Stdout, w))
	log.SetFlags(log.LstdFlags)
	return w, nil
}

func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.file.Write(p)
	w.size += int64(n)
	if w.size > maxLogSize {
		w.rotate()
	}
	return n, err
}

// rotate must be called with the lock held (or before the writer is shared).
func (w *RotatingWriter) rotate() {
	w.file.Close()
	os.Rename(w.path, w.path+".1")

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return
	}
	w.file = f
	w.size = 0
}

func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}
