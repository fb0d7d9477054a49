package services

import (
	"strings"

	"github.com/tonedial/calltone-backend/internal/platform/apierr"
)

const DefaultMaxUploadBytes = 10 << 20 // 10 MiB

// DefaultAllowedFileTypes mirrors the audio formats playable as ringback
// media in every supported client.
var DefaultAllowedFileTypes = []string{"audio/mpeg", "audio/mp3", "audio/wav", "audio/ogg"}

// UploadPolicy is the single authoritative pre-storage check: no byte
// reaches a backend for a stream that fails it.
type UploadPolicy struct {
	AllowedTypes []string
	MaxBytes     int64
}

func DefaultUploadPolicy() UploadPolicy {
	return UploadPolicy{
		AllowedTypes: DefaultAllowedFileTypes,
		MaxBytes:     DefaultMaxUploadBytes,
	}
}

func (p UploadPolicy) Validate(contentType string, size int64) error {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if !p.typeAllowed(ct) {
		return apierr.New(apierr.CodeInvalidFileType, "file type %q is not allowed, expected one of %s", contentType, strings.Join(p.AllowedTypes, ", "))
	}
	if size <= 0 {
		return apierr.New(apierr.CodeValidation, "file size must be positive")
	}
	if size > p.MaxBytes {
		return apierr.New(apierr.CodeFileTooLarge, "file size %d exceeds limit of %d bytes", size, p.MaxBytes)
	}
	return nil
}

func (p UploadPolicy) typeAllowed(ct string) bool {
	for _, allowed := range p.AllowedTypes {
		if strings.EqualFold(strings.TrimSpace(allowed), ct) {
			return true
		}
	}
	return false
}
