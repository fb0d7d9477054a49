package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/tonedial/calltone-backend/internal/platform/apierr"
	"github.com/tonedial/calltone-backend/internal/platform/logger"
)

// PublicMount is the URL path the HTTP layer serves the upload directory
// under. Local locators are rooted here.
const PublicMount = "/uploads"

const localNamePrefix = "calltone-"

type localBackend struct {
	log *logger.Logger
	dir string
}

// NewLocalBackend stores objects as flat files under dir. It is the fallback
// when no object-store configuration is present.
func NewLocalBackend(log *logger.Logger, dir string) (Backend, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apierr.Wrap(apierr.CodeStorageUnavailable, fmt.Errorf("create upload dir %q: %w", dir, err))
	}
	return &localBackend{
		log: log.With("backend", "local", "dir", dir),
		dir: dir,
	}, nil
}

func (b *localBackend) Kind() Kind { return KindLocal }

func (b *localBackend) Store(ctx context.Context, file io.Reader, originalName, contentType string) (*StoredObject, error) {
	name := NewObjectKey(localNamePrefix, originalName)
	finalPath := filepath.Join(b.dir, name)
	tmpPath := finalPath + ".tmp"

	n, err := b.writeFull(tmpPath, file)
	if err != nil {
		_ = os.Remove(tmpPath)
		return nil, apierr.Wrap(apierr.CodeStorageUnavailable, fmt.Errorf("write %q: %w", name, err))
	}
	// Rename only after the full stream is on disk, so a partial write
	// never surfaces as a retrievable locator.
	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return nil, apierr.Wrap(apierr.CodeStorageUnavailable, fmt.Errorf("publish %q: %w", name, err))
	}

	return &StoredObject{
		Locator: path.Join(PublicMount, name),
		Key:     name,
		Size:    n,
	}, nil
}

func (b *localBackend) writeFull(dst string, src io.Reader) (int64, error) {
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, src)
	if err != nil {
		_ = f.Close()
		return n, err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return n, err
	}
	return n, f.Close()
}

func (b *localBackend) Remove(ctx context.Context, locator string) error {
	name, ok := b.resolveName(locator)
	if !ok {
		return fmt.Errorf("locator %q is not under %s", locator, PublicMount)
	}
	if err := os.Remove(filepath.Join(b.dir, name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			b.log.Warn("File already gone", "locator", locator)
			return nil
		}
		return fmt.Errorf("unlink %q: %w", name, err)
	}
	return nil
}

// resolveName maps a locator back to its flat file name, rejecting anything
// that would escape the upload directory.
func (b *localBackend) resolveName(locator string) (string, bool) {
	if !strings.HasPrefix(locator, PublicMount+"/") {
		return "", false
	}
	name := path.Base(locator)
	if name == "" || name == "." || name == "/" {
		return "", false
	}
	return name, true
}
