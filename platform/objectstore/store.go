// Package objectstore saves uploaded policy files and returns the URL they
// are served from.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Store interface {
	// Put stores r under key and returns its public URL.
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

type Config struct {
	Mode          string // local, gcs or s3
	UploadDir     string
	PublicBaseURL string
	GCSBucket     string
	S3Bucket      string
	S3Region      string
}

// New builds the store selected by cfg.Mode.
func New(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(cfg.Mode) {
	case "", "local":
		return NewLocal(cfg.UploadDir, cfg.PublicBaseURL)
	case "gcs":
		return NewGCS(ctx, cfg.GCSBucket, cfg.PublicBaseURL)
	case "s3":
		return NewS3(ctx, cfg.S3Bucket, cfg.S3Region, cfg.PublicBaseURL)
	default:
		return nil, fmt.Errorf("objectstore: unknown STORAGE_MODE %q", cfg.Mode)
	}
}

// BuildKey names an upload <user id>/<unix millis>.<ext>, keeping the
// original file extension.
func BuildKey(userID uuid.UUID, at time.Time, fileName string) string {
	key := userID.String() + "/" + strconv.FormatInt(at.UnixMilli(), 10)
	if ext := strings.ToLower(path.Ext(fileName)); ext != "" {
		key += ext
	}
	return key
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
