package tui

import (
	"io"
	"log"
	"os"
	"path/filepath"
)

// NewFileLogger opens path for appending and returns a logger writing to it.
// The caller closes the returned file.
func NewFileLogger(path string) (*log.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return log.New(f, "[mailagent] ", log.LstdFlags|log.Lmicroseconds), f, nil
}
