package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tonedial/calltone-backend/internal/platform/apierr"
	"github.com/tonedial/calltone-backend/internal/platform/logger"
	"github.com/tonedial/calltone-backend/internal/repos"
	"github.com/tonedial/calltone-backend/internal/storage"
	"github.com/tonedial/calltone-backend/internal/types"
)

type toneFixture struct {
	svc     CallToneService
	backend *fakeBackend
	repo    repos.CallToneRepo
	db      *gorm.DB
}

func newToneFixture(t *testing.T) *toneFixture {
	t.Helper()
	db := newTestDB(t)
	log := logger.NewNop()
	backend := newFakeBackend()
	repo := repos.NewCallToneRepo(db, log)
	svc := NewCallToneService(db, log, backend, DefaultUploadPolicy(), repo)
	return &toneFixture{svc: svc, backend: backend, repo: repo, db: db}
}

func (f *toneFixture) upload(t *testing.T, owner uuid.UUID, in UploadInput, body string) *types.CallTone {
	t.Helper()
	tone, err := f.svc.Upload(context.Background(), owner, strings.NewReader(body), in)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	return tone
}

func TestUploadRoundTrip(t *testing.T) {
	f := newToneFixture(t)
	owner := uuid.New()

	body := strings.Repeat("x", 2048)
	tone := f.upload(t, owner, UploadInput{
		FileName:    "ring1.mp3",
		ContentType: "audio/mpeg",
		Size:        int64(len(body)),
		Title:       "Ring1",
		Description: "first tone",
		IsPublic:    false,
		Tags:        "calm, upbeat",
	}, body)

	got, err := f.repo.GetByID(context.Background(), nil, tone.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != "Ring1" {
		t.Fatalf("title: want Ring1 got %q", got.Title)
	}
	if got.FileType != "audio/mpeg" {
		t.Fatalf("file type: got %q", got.FileType)
	}
	if got.FileSize != int64(len(body)) {
		t.Fatalf("file size: want %d got %d", len(body), got.FileSize)
	}
	if got.Category != types.ToneCategoryUserUploaded {
		t.Fatalf("category: got %q", got.Category)
	}
	if got.UploadedBy == nil || *got.UploadedBy != owner {
		t.Fatalf("owner: got %v", got.UploadedBy)
	}
	if got.IsPublic {
		t.Fatal("tone should default to private")
	}
	tags := got.GetTags()
	if len(tags) != 2 || tags[0] != "calm" || tags[1] != "upbeat" {
		t.Fatalf("tags: got %v", tags)
	}
	if !f.backend.hasObject(got.FileURL) {
		t.Fatalf("no stored object behind locator %q", got.FileURL)
	}
}

func TestUploadTitleDefaultsToFileName(t *testing.T) {
	f := newToneFixture(t)
	tone := f.upload(t, uuid.New(), UploadInput{
		FileName:    "sunrise.ogg",
		ContentType: "audio/ogg",
		Size:        4,
	}, "abcd")
	if tone.Title != "sunrise.ogg" {
		t.Fatalf("title: want file name, got %q", tone.Title)
	}
}

func TestUploadInvalidTypeLeavesNothingBehind(t *testing.T) {
	f := newToneFixture(t)

	_, err := f.svc.Upload(context.Background(), uuid.New(), strings.NewReader("mp4 bytes"), UploadInput{
		FileName:    "clip.mp4",
		ContentType: "video/mp4",
		Size:        9,
	})
	if apierr.CodeOf(err) != apierr.CodeInvalidFileType {
		t.Fatalf("want invalid_file_type, got %v", err)
	}
	if f.backend.objectCount() != 0 {
		t.Fatal("rejected upload must not reach the backend")
	}
	if countTones(t, f.db) != 0 {
		t.Fatal("rejected upload must not create a record")
	}
}

func TestUploadTooLargeLeavesNothingBehind(t *testing.T) {
	f := newToneFixture(t)

	_, err := f.svc.Upload(context.Background(), uuid.New(), strings.NewReader("..."), UploadInput{
		FileName:    "big.mp3",
		ContentType: "audio/mpeg",
		Size:        11 << 20,
	})
	if apierr.CodeOf(err) != apierr.CodeFileTooLarge {
		t.Fatalf("want file_too_large, got %v", err)
	}
	if f.backend.objectCount() != 0 {
		t.Fatal("oversized upload must not reach the backend")
	}
	if countTones(t, f.db) != 0 {
		t.Fatal("oversized upload must not create a record")
	}
}

func TestUploadStorageFailureCreatesNoRecord(t *testing.T) {
	f := newToneFixture(t)
	f.backend.failStore = true

	_, err := f.svc.Upload(context.Background(), uuid.New(), strings.NewReader("x"), UploadInput{
		FileName:    "a.mp3",
		ContentType: "audio/mpeg",
		Size:        1,
	})
	if apierr.CodeOf(err) != apierr.CodeStorageUnavailable {
		t.Fatalf("want storage_unavailable, got %v", err)
	}
	if countTones(t, f.db) != 0 {
		t.Fatal("failed store must not create a record")
	}
}

func TestUploadRequiresOwner(t *testing.T) {
	f := newToneFixture(t)
	_, err := f.svc.Upload(context.Background(), uuid.Nil, strings.NewReader("x"), UploadInput{
		FileName:    "a.mp3",
		ContentType: "audio/mpeg",
		Size:        1,
	})
	if apierr.CodeOf(err) != apierr.CodeValidation {
		t.Fatalf("want validation_error, got %v", err)
	}
}

func TestDeleteByOwnerRemovesBytesAndRecord(t *testing.T) {
	f := newToneFixture(t)
	owner := uuid.New()
	tone := f.upload(t, owner, UploadInput{FileName: "a.mp3", ContentType: "audio/mpeg", Size: 1}, "x")

	if err := f.svc.Delete(context.Background(), owner, tone.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if f.backend.hasObject(tone.FileURL) {
		t.Fatal("stored bytes should be gone after owner delete")
	}
	if _, err := f.repo.GetByID(context.Background(), nil, tone.ID); !apierr.IsNotFound(err) {
		t.Fatalf("record should be gone, got %v", err)
	}
}

func TestDeleteByNonOwnerIsForbidden(t *testing.T) {
	f := newToneFixture(t)
	ownerA := uuid.New()
	userB := uuid.New()
	tone := f.upload(t, ownerA, UploadInput{FileName: "a.mp3", ContentType: "audio/mpeg", Size: 1}, "x")

	err := f.svc.Delete(context.Background(), userB, tone.ID)
	if !apierr.IsForbidden(err) {
		t.Fatalf("want forbidden, got %v", err)
	}
	// Authorization failure must have no side effects.
	if len(f.backend.removeCalls) != 0 {
		t.Fatal("forbidden delete must not touch storage")
	}
	if _, err := f.repo.GetByID(context.Background(), nil, tone.ID); err != nil {
		t.Fatalf("tone must still exist: %v", err)
	}
}

func TestDeleteTwiceIsSoftNotFound(t *testing.T) {
	f := newToneFixture(t)
	owner := uuid.New()
	tone := f.upload(t, owner, UploadInput{FileName: "a.mp3", ContentType: "audio/mpeg", Size: 1}, "x")

	if err := f.svc.Delete(context.Background(), owner, tone.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	err := f.svc.Delete(context.Background(), owner, tone.ID)
	if !apierr.IsNotFound(err) {
		t.Fatalf("second delete: want soft not_found, got %v", err)
	}
}

func TestDeleteOwnerlessToneIsForbidden(t *testing.T) {
	f := newToneFixture(t)
	seeded := &types.CallTone{
		Title:    "seeded",
		FileURL:  "/uploads/seeded.mp3",
		FileType: "audio/mpeg",
		FileSize: 1,
		IsPublic: true,
		Category: types.ToneCategoryDefault,
	}
	if _, err := f.repo.Create(context.Background(), nil, seeded); err != nil {
		t.Fatalf("create seeded: %v", err)
	}
	if err := f.svc.Delete(context.Background(), uuid.New(), seeded.ID); !apierr.IsForbidden(err) {
		t.Fatalf("want forbidden on ownerless tone, got %v", err)
	}
}

// The object-store variant retains remote bytes on Remove; the record must
// still go away. Accepted limitation, asserted on purpose.
func TestDeleteRemoteLocatorKeepsObject(t *testing.T) {
	f := newToneFixture(t)
	f.backend.kind = storage.KindGCS
	f.backend.retainOnRemove = true
	owner := uuid.New()
	tone := f.upload(t, owner, UploadInput{FileName: "a.mp3", ContentType: "audio/mpeg", Size: 1}, "x")

	if err := f.svc.Delete(context.Background(), owner, tone.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !f.backend.hasObject(tone.FileURL) {
		t.Fatal("remote bytes should be retained")
	}
	if _, err := f.repo.GetByID(context.Background(), nil, tone.ID); !apierr.IsNotFound(err) {
		t.Fatalf("record should be gone, got %v", err)
	}
}

func TestListVisibleScenario(t *testing.T) {
	f := newToneFixture(t)
	u1 := uuid.New()
	u2 := uuid.New()

	private := f.upload(t, u1, UploadInput{
		FileName:    "ring1.mp3",
		ContentType: "audio/mpeg",
		Size:        16,
		Title:       "Ring1",
	}, strings.Repeat("x", 16))

	publicForOthers, err := f.svc.ListVisible(context.Background(), u2, ListFilter{PublicOnly: true})
	if err != nil {
		t.Fatalf("ListVisible(u2): %v", err)
	}
	for _, tone := range publicForOthers {
		if tone.ID == private.ID {
			t.Fatal("u1's private tone leaked into u2's public listing")
		}
	}

	own, err := f.svc.ListVisible(context.Background(), u1, ListFilter{})
	if err != nil {
		t.Fatalf("ListVisible(u1): %v", err)
	}
	found := false
	for _, tone := range own {
		if tone.ID == private.ID {
			found = true
		}
	}
	if !found {
		t.Fatal("u1 must see their own private tone")
	}
}

func TestListAIGeneratedIgnoresOwnership(t *testing.T) {
	f := newToneFixture(t)
	owner := uuid.New()
	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	ai := &types.CallTone{
		Title: "Aurora", FileURL: "/uploads/aurora.mp3", FileType: "audio/mpeg",
		FileSize: 1, IsPublic: true, Category: types.ToneCategoryAIGenerated,
		UploadedBy: &owner, CreatedAt: base,
	}
	if _, err := f.repo.Create(context.Background(), nil, ai); err != nil {
		t.Fatalf("create ai tone: %v", err)
	}

	got, err := f.svc.ListAIGenerated(context.Background())
	if err != nil {
		t.Fatalf("ListAIGenerated: %v", err)
	}
	if len(got) != 1 || got[0].ID != ai.ID {
		t.Fatalf("want the ai tone regardless of owner, got %+v", got)
	}
}
