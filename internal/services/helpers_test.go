package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tonedial/calltone-backend/internal/platform/apierr"
	"github.com/tonedial/calltone-backend/internal/storage"
	"github.com/tonedial/calltone-backend/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&types.User{}, &types.CallTone{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// fakeBackend is an in-memory storage.Backend. With retainOnRemove it
// mimics the object-store variant, which keeps remote bytes on Remove.
type fakeBackend struct {
	mu             sync.Mutex
	objects        map[string][]byte
	kind           storage.Kind
	retainOnRemove bool
	failStore      bool
	removeCalls    []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{objects: make(map[string][]byte), kind: storage.KindLocal}
}

func (f *fakeBackend) Kind() storage.Kind { return f.kind }

func (f *fakeBackend) Store(ctx context.Context, file io.Reader, originalName, contentType string) (*storage.StoredObject, error) {
	if f.failStore {
		return nil, apierr.New(apierr.CodeStorageUnavailable, "backend down")
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apierr.Wrap(apierr.CodeStorageUnavailable, err)
	}
	key := storage.NewObjectKey("calltones/", originalName)
	locator := "/uploads/" + strings.TrimPrefix(key, "calltones/")
	if f.kind == storage.KindGCS {
		locator = fmt.Sprintf("https://storage.googleapis.com/fake/%s", key)
	}
	f.mu.Lock()
	f.objects[locator] = data
	f.mu.Unlock()
	return &storage.StoredObject{Locator: locator, Key: key, Size: int64(len(data))}, nil
}

func (f *fakeBackend) Remove(ctx context.Context, locator string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeCalls = append(f.removeCalls, locator)
	if f.retainOnRemove {
		return nil
	}
	delete(f.objects, locator)
	return nil
}

func (f *fakeBackend) objectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

func (f *fakeBackend) hasObject(locator string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[locator]
	return ok
}

func countTones(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&types.CallTone{}).Count(&n).Error; err != nil {
		t.Fatalf("count tones: %v", err)
	}
	return n
}
