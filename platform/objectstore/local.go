package objectstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local writes files below a directory that the HTTP server exposes at
// /uploads.
type Local struct {
	dir     string
	baseURL string
}

func NewLocal(dir, publicBaseURL string) (*Local, error) {
	if dir == "" {
		dir = "./uploads"
	}
	// Create destination directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("objectstore: create %s: %w", dir, err)
	}
	base := publicBaseURL + "/uploads"
	return &Local{dir: dir, baseURL: base}, nil
}

func (l *Local) Dir() string { return l.dir }

func (l *Local) Put(ctx context.Context, key string, r io.Reader, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean := filepath.Clean("/" + key)
	if strings.Contains(clean, "..") {
		return "", fmt.Errorf("objectstore: invalid key %q", key)
	}
	filePath := filepath.Join(l.dir, filepath.FromSlash(clean))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return "", err
	}
	dst, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	// Copy the file content
	if _, err := io.Copy(dst, r); err != nil {
		return "", err
	}
	return joinURL(l.baseURL, clean), nil
}
