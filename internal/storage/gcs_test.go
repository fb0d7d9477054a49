package storage

import (
	"context"
	"testing"

	"github.com/tonedial/calltone-backend/internal/platform/logger"
)

func TestGCSPublicURLDefaultHost(t *testing.T) {
	b := &gcsBackend{
		log: logger.NewNop(),
		cfg: GCSConfig{BucketName: "tones"},
	}
	got := b.publicURL("calltones/1-abc.mp3")
	want := "https://storage.googleapis.com/tones/calltones/1-abc.mp3"
	if got != want {
		t.Fatalf("publicURL: want=%q got=%q", want, got)
	}
}

func TestGCSPublicURLWithCDN(t *testing.T) {
	b := &gcsBackend{
		log: logger.NewNop(),
		cfg: GCSConfig{BucketName: "tones", CDNDomain: "media.example.com"},
	}
	got := b.publicURL("calltones/1-abc.mp3")
	want := "https://media.example.com/calltones/1-abc.mp3"
	if got != want {
		t.Fatalf("publicURL: want=%q got=%q", want, got)
	}
}

// Physical deletion of remote objects is deliberately not performed; Remove
// must succeed without touching the bucket.
func TestGCSRemoveIsRetainingNoop(t *testing.T) {
	b := &gcsBackend{
		log: logger.NewNop(),
		cfg: GCSConfig{BucketName: "tones"},
	}
	if err := b.Remove(context.Background(), "https://storage.googleapis.com/tones/calltones/1-abc.mp3"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
}

func TestNewGCSBackendRequiresBucket(t *testing.T) {
	if _, err := NewGCSBackend(context.Background(), logger.NewNop(), GCSConfig{}); err == nil {
		t.Fatal("expected error without bucket name")
	}
}
