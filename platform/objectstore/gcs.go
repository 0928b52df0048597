package objectstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type GCS struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

// NewGCS uses application default credentials, or the emulator when
// STORAGE_EMULATOR_HOST is set.
func NewGCS(ctx context.Context, bucket, publicBaseURL string) (*GCS, error) {
	if bucket == "" {
		return nil, fmt.Errorf("objectstore: GCS_BUCKET is required for gcs mode")
	}

	var opts []option.ClientOption
	if host := strings.TrimSpace(os.Getenv("STORAGE_EMULATOR_HOST")); host != "" {
		opts = append(opts, option.WithoutAuthentication())
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("objectstore: gcs client: %w", err)
	}

	base := publicBaseURL
	if base == "" {
		base = "https://storage.googleapis.com/" + bucket
	}
	return &GCS{client: client, bucket: bucket, baseURL: base}, nil
}

func (g *GCS) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	w := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("objectstore: gcs write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("objectstore: gcs close %s: %w", key, err)
	}
	return joinURL(g.baseURL, key), nil
}

func (g *GCS) Close() error { return g.client.Close() }
