package app

import (
	"context"

	"github.com/tonedial/calltone-backend/internal/platform/logger"
	"github.com/tonedial/calltone-backend/internal/storage"
)

// resolveStorageBackend constructs the one backend this process will use.
// Object-store configuration present wins; otherwise the local filesystem
// fallback. The choice is fixed for the process lifetime.
func resolveStorageBackend(ctx context.Context, log *logger.Logger, cfg Config) (storage.Backend, error) {
	if cfg.UseObjectStore() {
		log.Info("Selecting storage backend", "kind", storage.KindGCS, "bucket", cfg.GCSBucketName)
		return storage.NewGCSBackend(ctx, log, storage.GCSConfig{
			BucketName:      cfg.GCSBucketName,
			CredentialsFile: cfg.GCSCredentialsFile,
			CDNDomain:       cfg.CDNDomain,
		})
	}
	log.Info("Selecting storage backend", "kind", storage.KindLocal, "dir", cfg.UploadDir)
	return storage.NewLocalBackend(log, cfg.UploadDir)
}
