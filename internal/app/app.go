package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/tonedial/calltone-backend/internal/db"
	"github.com/tonedial/calltone-backend/internal/handlers"
	"github.com/tonedial/calltone-backend/internal/middleware"
	"github.com/tonedial/calltone-backend/internal/platform/logger"
	"github.com/tonedial/calltone-backend/internal/repos"
	"github.com/tonedial/calltone-backend/internal/server"
	"github.com/tonedial/calltone-backend/internal/services"
	"github.com/tonedial/calltone-backend/internal/storage"
)

const ServiceName = "calltone-backend"

type Repos struct {
	CallTones repos.CallToneRepo
	Users     repos.UserRepo
}

type Services struct {
	Auth      services.AuthService
	CallTones services.CallToneService
	Selection services.SelectionService
	Seed      services.SeedService
}

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Backend  storage.Backend
	Repos    Repos
	Services Services
}

func New(ctx context.Context) (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg := LoadConfig()

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	backend, err := resolveStorageBackend(ctx, log, cfg)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init storage backend: %w", err)
	}

	reposet := Repos{
		CallTones: repos.NewCallToneRepo(theDB, log),
		Users:     repos.NewUserRepo(theDB, log),
	}

	policy := cfg.UploadPolicy()
	serviceset := Services{
		Auth:      services.NewAuthService(theDB, log, reposet.Users, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		CallTones: services.NewCallToneService(theDB, log, backend, policy, reposet.CallTones),
		Selection: services.NewSelectionService(theDB, log, reposet.CallTones, reposet.Users),
		Seed:      services.NewSeedService(theDB, log, backend, policy, reposet.CallTones),
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		log.Info("Rate limiting enabled", "redis_addr", cfg.RedisAddr)
	}
	rateLimiter := middleware.NewRateLimiter(log, redisClient)
	authMw := middleware.NewAuthMiddleware(log, serviceset.Auth)

	staticDir := ""
	if backend.Kind() == storage.KindLocal {
		staticDir = cfg.UploadDir
	}

	router := server.NewRouter(server.RouterConfig{
		ServiceName:        ServiceName,
		AllowedOrigins:     cfg.AllowedOrigins,
		AuthHandler:        handlers.NewAuthHandler(log, serviceset.Auth, serviceset.Selection),
		CallToneHandler:    handlers.NewCallToneHandler(log, serviceset.CallTones, serviceset.Selection),
		AuthMiddleware:     authMw,
		RateLimiter:        rateLimiter,
		GeneralLimitMax:    cfg.GeneralLimitMax,
		GeneralLimitWindow: cfg.GeneralLimitWindow,
		UploadLimitMax:     cfg.UploadLimitMax,
		UploadLimitWindow:  cfg.UploadLimitWindow,
		StaticUploadDir:    staticDir,
	})

	return &App{
		Log:      log,
		DB:       theDB,
		Router:   router,
		Cfg:      cfg,
		Backend:  backend,
		Repos:    reposet,
		Services: serviceset,
	}, nil
}

// Seed loads the curated tone pool when a manifest is configured.
func (a *App) Seed(ctx context.Context) error {
	if a.Cfg.SeedManifestPath == "" {
		return nil
	}
	return a.Services.Seed.SeedFromManifest(ctx, a.Cfg.SeedManifestPath)
}

func (a *App) Run() error {
	return a.Router.Run(":" + a.Cfg.Port)
}

func (a *App) Close() {
	if a != nil && a.Log != nil {
		a.Log.Sync()
	}
}
