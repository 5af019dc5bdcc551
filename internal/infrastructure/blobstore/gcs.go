// Package blobstore keeps rendered PDFs and issues time-limited links to them.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"salesdocs/internal/domain/documents"
)

// GCSConfig selects the bucket and the service account.
// CredentialsJSON wins over CredentialsFile; with neither, application
// default credentials are used.
type GCSConfig struct {
	Bucket          string
	CredentialsJSON string
	CredentialsFile string
}

// GCS stores objects in a Google Cloud Storage bucket. The reference
// returned by Upload is the object name.
type GCS struct {
	client *storage.Client
	bucket *storage.BucketHandle
	name   string
	now    func() time.Time
}

var _ documents.BlobStore = (*GCS)(nil)

// NewGCS opens a storage client for cfg.Bucket.
func NewGCS(ctx context.Context, cfg GCSConfig) (*GCS, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("gcs: bucket required")
	}

	opts, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs: create client: %w", err)
	}
	return &GCS{
		client: client,
		bucket: client.Bucket(cfg.Bucket),
		name:   cfg.Bucket,
		now:    time.Now,
	}, nil
}

func clientOptions(cfg GCSConfig) ([]option.ClientOption, error) {
	switch {
	case cfg.CredentialsJSON != "":
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cfg.CredentialsJSON))}, nil
	case cfg.CredentialsFile != "":
		if _, err := os.Stat(cfg.CredentialsFile); err != nil {
			return nil, fmt.Errorf("gcs: credentials file: %w", err)
		}
		return []option.ClientOption{option.WithCredentialsFile(cfg.CredentialsFile)}, nil
	default:
		return nil, nil
	}
}

// Upload writes data to the object at path.
func (g *GCS) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	w := g.bucket.Object(path).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "private, max-age=0"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("gcs: write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("gcs: finalize %s: %w", path, err)
	}
	return path, nil
}

// SignedURL returns a V4 signed GET link valid for ttl.
func (g *GCS) SignedURL(_ context.Context, ref string, ttl time.Duration) (string, error) {
	url, err := g.bucket.SignedURL(ref, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: g.now().Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("gcs: sign %s: %w", ref, err)
	}
	return url, nil
}

// Delete removes the object. A missing object is not an error.
func (g *GCS) Delete(ctx context.Context, ref string) error {
	err := g.bucket.Object(ref).Delete(ctx)
	if err == nil || errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return fmt.Errorf("gcs: delete %s: %w", ref, err)
}

// Ping checks that the bucket is reachable with the configured credentials.
func (g *GCS) Ping(ctx context.Context) error {
	if _, err := g.bucket.Attrs(ctx); err != nil {
		return fmt.Errorf("gcs: bucket %s: %w", g.name, err)
	}
	return nil
}

// Close releases the client.
func (g *GCS) Close() error {
	return g.client.Close()
}
