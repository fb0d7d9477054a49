package storage

import (
	"context"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/tonedial/calltone-backend/internal/platform/apierr"
	"github.com/tonedial/calltone-backend/internal/platform/logger"
)

const gcsKeyPrefix = "calltones/"

type GCSConfig struct {
	BucketName      string
	CredentialsFile string
	// CDNDomain, when set, fronts public URLs instead of the default
	// storage.googleapis.com host.
	CDNDomain string
}

type gcsBackend struct {
	log    *logger.Logger
	client *gcs.Client
	cfg    GCSConfig
}

func NewGCSBackend(ctx context.Context, log *logger.Logger, cfg GCSConfig) (Backend, error) {
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("gcs backend requires a bucket name")
	}
	opts := []option.ClientOption{option.WithScopes(gcs.ScopeReadWrite)}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &gcsBackend{
		log:    log.With("backend", "gcs", "bucket", cfg.BucketName),
		client: client,
		cfg:    cfg,
	}, nil
}

func (b *gcsBackend) Kind() Kind { return KindGCS }

func (b *gcsBackend) Store(ctx context.Context, file io.Reader, originalName, contentType string) (*StoredObject, error) {
	key := NewObjectKey(gcsKeyPrefix, originalName)

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	w := b.client.Bucket(b.cfg.BucketName).Object(key).NewWriter(ctx)
	w.ContentType = contentType

	n, err := io.Copy(w, file)
	if err != nil {
		// Cancel before Close so the partial upload is aborted rather
		// than committed.
		cancel()
		_ = w.Close()
		return nil, apierr.Wrap(apierr.CodeStorageUnavailable, fmt.Errorf("write object %q: %w", key, err))
	}
	if err := w.Close(); err != nil {
		return nil, apierr.Wrap(apierr.CodeStorageUnavailable, fmt.Errorf("finalize object %q: %w", key, err))
	}

	return &StoredObject{
		Locator: b.publicURL(key),
		Key:     key,
		Size:    n,
	}, nil
}

// Remove intentionally never deletes the remote object; the contract only
// requires physical reclamation for local locators. The retained key is
// logged so operators can reconcile.
func (b *gcsBackend) Remove(ctx context.Context, locator string) error {
	b.log.Info("Remote object retained, physical deletion skipped", "locator", locator)
	return nil
}

func (b *gcsBackend) publicURL(key string) string {
	if b.cfg.CDNDomain != "" {
		return fmt.Sprintf("https://%s/%s", b.cfg.CDNDomain, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", b.cfg.BucketName, key)
}
