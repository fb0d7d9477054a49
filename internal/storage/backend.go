// Package storage persists call-tone byte streams. Exactly two backends
// exist: Google Cloud Storage and the local filesystem. The active backend is
// chosen once at startup from configuration and injected; nothing outside the
// wiring code knows which one is running.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindGCS   Kind = "gcs"
	KindLocal Kind = "local"
)

// StoredObject describes a fully-written object. Locator is opaque to
// callers: an absolute URL for the object store, a path under the public
// mount for the local backend. Size is the byte count actually written.
type StoredObject struct {
	Locator string
	Key     string
	Size    int64
}

type Backend interface {
	// Store writes the stream fully before returning. A failed write fails
	// the whole operation and surfaces no locator.
	Store(ctx context.Context, file io.Reader, originalName, contentType string) (*StoredObject, error)
	// Remove deletes the bytes behind locator, best effort. A missing
	// object is not an error.
	Remove(ctx context.Context, locator string) error
	Kind() Kind
}

const storeTimeout = 2 * time.Minute

// NewObjectKey builds a collision-resistant object name: time prefix,
// random suffix, original extension preserved.
func NewObjectKey(prefix, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s%d-%s%s", prefix, time.Now().UnixMilli(), suffix, ext)
}
