package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-assistant/internal/api/handlers/conversation"
	"recipe-assistant/internal/api/handlers/health"
	recipeHandler "recipe-assistant/internal/api/handlers/recipe"
	"recipe-assistant/internal/api/handlers/webhook"
	"recipe-assistant/internal/api/middleware"
	"recipe-assistant/internal/core/dialog"
	"recipe-assistant/internal/core/extract"
	"recipe-assistant/internal/core/recipe"
	"recipe-assistant/internal/core/search"
	"recipe-assistant/internal/infrastructure/config"
	"recipe-assistant/internal/pkg/common"
)

// Services 路由需要的核心服務
type Services struct {
	Engine    *dialog.Engine
	Catalog   *recipe.Catalog
	Extractor extract.Extractor
	Words     *extract.Deterministic
	Ranker    search.Ranker
}

func (s *Services) validate() error {
	if s == nil || s.Engine == nil || s.Catalog == nil || s.Extractor == nil || s.Words == nil || s.Ranker == nil {
		return errors.New("missing core services")
	}
	return nil
}

// SetupRouter 設置路由；ctx 結束時停止背景清理
func SetupRouter(ctx context.Context, cfg *config.Config, svc *Services) (*gin.Engine, error) {
	if err := svc.validate(); err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		return nil, err
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger("/health", "/ready", "/live"))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		limiter.Start(ctx)
		router.Use(limiter.Handler())
	}

	// 全局中間件：設置超時與共用物件
	timeout := cfg.Server.RequestTimeout
	router.Use(func(c *gin.Context) {
		reqCtx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(reqCtx)

		c.Set("config", cfg)
		c.Set("catalog", svc.Catalog)
		c.Set("sessions", svc.Engine.Store())

		c.Next()

		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeout),
			)
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, common.ErrRequestTimeout.ToResponse(false))
		}
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	// 語音平台 webhook，重送的請求直接重播回應
	dedup := middleware.NewDeduplicator(cfg.DedupWindow, middleware.WebhookKey)
	dedup.Start(ctx, 10*cfg.DedupWindow)
	webhookHandler := webhook.NewHandler(svc.Engine, cfg.Webhook, cfg.Session)
	router.POST("/webhook", dedup.Handler(), webhookHandler.Handle)

	api := router.Group("/api/v1")
	{
		dialogHandler := conversation.NewHandler(svc.Engine, cfg.Webhook.MaxUtteranceLength)
		dialogGroup := api.Group("/dialog")
		{
			dialogGroup.POST("/turn", dialogHandler.Turn)
			dialogGroup.GET("/:session_id", dialogHandler.Session)
			dialogGroup.DELETE("/:session_id", dialogHandler.Reset)
		}

		recipes := recipeHandler.NewHandler(svc.Extractor, svc.Words, svc.Ranker, svc.Catalog,
			search.NewPager(cfg.Search.PageSize))
		recipeGroup := api.Group("/recipe")
		{
			recipeGroup.POST("/search", recipes.HandleSearch)
			recipeGroup.GET("/:position", recipes.HandleGet)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Int("recipes", svc.Catalog.Size()),
		zap.Duration("timeout", timeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
	)

	return router, nil
}
