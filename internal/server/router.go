package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tonedial/calltone-backend/internal/handlers"
	"github.com/tonedial/calltone-backend/internal/middleware"
	"github.com/tonedial/calltone-backend/internal/storage"
)

type RouterConfig struct {
	ServiceName     string
	AllowedOrigins  []string
	AuthHandler     *handlers.AuthHandler
	CallToneHandler *handlers.CallToneHandler
	AuthMiddleware  *middleware.AuthMiddleware
	RateLimiter     *middleware.RateLimiter

	GeneralLimitMax    int
	GeneralLimitWindow time.Duration
	UploadLimitMax     int
	UploadLimitWindow  time.Duration

	// StaticUploadDir, when non-empty, is served under the public mount;
	// set only when the local filesystem backend is active.
	StaticUploadDir string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.ServiceName))

	corsCfg := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", handlers.Health)

	if cfg.StaticUploadDir != "" {
		router.Static(storage.PublicMount, cfg.StaticUploadDir)
	}

	general := cfg.RateLimiter.Limit("general", cfg.GeneralLimitMax, cfg.GeneralLimitWindow)
	uploads := cfg.RateLimiter.Limit("upload", cfg.UploadLimitMax, cfg.UploadLimitWindow)

	api := router.Group("/api", general)
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", cfg.AuthHandler.Register)
			auth.POST("/login", cfg.AuthHandler.Login)
			auth.GET("/me", cfg.AuthMiddleware.RequireAuth(), cfg.AuthHandler.Me)
		}

		tones := api.Group("/calltones", cfg.AuthMiddleware.RequireAuth())
		{
			tones.GET("", cfg.CallToneHandler.List)
			tones.GET("/ai-generated", cfg.CallToneHandler.ListAIGenerated)
			tones.GET("/:id", cfg.CallToneHandler.Get)
			tones.POST("/upload", uploads, cfg.CallToneHandler.Upload)
			tones.DELETE("/:id", cfg.CallToneHandler.Delete)
			tones.PUT("/:id/select", cfg.CallToneHandler.Select)
		}
	}

	return router
}
