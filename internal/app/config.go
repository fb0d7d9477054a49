package app

import (
	"time"

	"github.com/tonedial/calltone-backend/internal/platform/envutil"
	"github.com/tonedial/calltone-backend/internal/services"
)

type Config struct {
	Port           string
	AllowedOrigins []string

	// Object store. A non-empty bucket name selects the GCS backend;
	// absence is the supported local-filesystem state, not an error.
	GCSBucketName      string
	GCSCredentialsFile string
	CDNDomain          string

	// Local backend mount directory.
	UploadDir string

	MaxUploadBytes   int64
	AllowedFileTypes []string

	JWTSecretKey   string
	AccessTokenTTL time.Duration

	// Rate limiting; enabled only when RedisAddr is set.
	RedisAddr          string
	GeneralLimitMax    int
	GeneralLimitWindow time.Duration
	UploadLimitMax     int
	UploadLimitWindow  time.Duration

	SeedManifestPath string
}

func LoadConfig() Config {
	return Config{
		Port:           envutil.String("PORT", "8080"),
		AllowedOrigins: envutil.CSV("ALLOWED_ORIGINS", nil),

		GCSBucketName:      envutil.String("GCS_BUCKET_NAME", ""),
		GCSCredentialsFile: envutil.String("GOOGLE_APPLICATION_CREDENTIALS_JSON", ""),
		CDNDomain:          envutil.String("CDN_DOMAIN", ""),

		UploadDir: envutil.String("UPLOAD_DIR", "uploads"),

		MaxUploadBytes:   envutil.Int64("MAX_FILE_SIZE", services.DefaultMaxUploadBytes),
		AllowedFileTypes: envutil.CSV("ALLOWED_FILE_TYPES", services.DefaultAllowedFileTypes),

		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		AccessTokenTTL: time.Duration(envutil.Int("ACCESS_TOKEN_TTL", 3600)) * time.Second,

		RedisAddr:          envutil.String("REDIS_ADDR", ""),
		GeneralLimitMax:    envutil.Int("RATE_LIMIT_MAX", 100),
		GeneralLimitWindow: time.Duration(envutil.Int("RATE_LIMIT_WINDOW_SECONDS", 900)) * time.Second,
		UploadLimitMax:     envutil.Int("UPLOAD_RATE_LIMIT_MAX", 10),
		UploadLimitWindow:  time.Duration(envutil.Int("UPLOAD_RATE_LIMIT_WINDOW_SECONDS", 3600)) * time.Second,

		SeedManifestPath: envutil.String("SEED_MANIFEST_PATH", ""),
	}
}

// UseObjectStore reports whether startup should pick the object-store
// backend. Decided once here; nothing downstream branches on it again.
func (c Config) UseObjectStore() bool {
	return c.GCSBucketName != ""
}

func (c Config) UploadPolicy() services.UploadPolicy {
	return services.UploadPolicy{
		AllowedTypes: c.AllowedFileTypes,
		MaxBytes:     c.MaxUploadBytes,
	}
}
