package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/turtacn/oralrisk/internal/config"
	"github.com/turtacn/oralrisk/internal/domain/service"
	"github.com/turtacn/oralrisk/internal/interfaces/http/handlers"
	"github.com/turtacn/oralrisk/internal/interfaces/http/middleware"
	"github.com/turtacn/oralrisk/internal/interfaces/http/web"
	"github.com/turtacn/oralrisk/pkg/errors"
	"github.com/turtacn/oralrisk/pkg/logger"
)

// Router HTTP 路由器
type Router struct {
	engine            *gin.Engine
	config            *config.Config
	logger            logger.Logger
	registry          *prometheus.Registry
	recorder          middleware.HTTPRecorder
	sessions          service.SessionStore
	tokens            middleware.TokenVerifier
	limiter           service.RateLimiter
	webHandler        *handlers.WebHandler
	authHandler       *handlers.AuthHandler
	predictionHandler *handlers.PredictionHandler
	healthHandler     *handlers.HealthHandler
	server            *http.Server
}

// NewRouter 创建路由器并注册全部路由
func NewRouter(
	cfg *config.Config,
	log logger.Logger,
	registry *prometheus.Registry,
	recorder middleware.HTTPRecorder,
	sessions service.SessionStore,
	tokens middleware.TokenVerifier,
	limiter service.RateLimiter,
	webHandler *handlers.WebHandler,
	authHandler *handlers.AuthHandler,
	predictionHandler *handlers.PredictionHandler,
	healthHandler *handlers.HealthHandler,
) (*Router, error) {
	// 设置 Gin 模式
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	tmpl, err := web.Templates()
	if err != nil {
		return nil, errors.ErrInternalServer.WithMessage("parse page templates").WithCause(err)
	}
	engine := gin.New()
	engine.SetHTMLTemplate(tmpl)

	r := &Router{
		engine:            engine,
		config:            cfg,
		logger:            log.WithComponent("http"),
		registry:          registry,
		recorder:          recorder,
		sessions:          sessions,
		tokens:            tokens,
		limiter:           limiter,
		webHandler:        webHandler,
		authHandler:       authHandler,
		predictionHandler: predictionHandler,
		healthHandler:     healthHandler,
	}
	r.SetupRoutes()
	r.server = &http.Server{
		Addr:           cfg.Server.Address(),
		Handler:        engine,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:    time.Duration(cfg.Server.IdleTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
	}
	return r, nil
}

// SetupRoutes 设置路由
func (r *Router) SetupRoutes() {
	// 全局中间件
	r.engine.Use(middleware.Recovery(r.logger))
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Observability(r.recorder))
	r.engine.Use(middleware.Logger(r.logger))
	r.engine.Use(r.apiCORS())

	// 健康检查路由（不需要认证）
	r.engine.GET("/healthz", r.healthHandler.LivenessCheck)
	r.engine.GET("/readyz", r.healthHandler.ReadinessCheck)

	// Prometheus metrics
	r.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})))

	// Pprof 性能分析（仅在非生产环境）
	if !r.config.Server.IsProduction() {
		pprof.Register(r.engine)
	}

	// 凭证接口限流
	throttle := middleware.RateLimit(r.limiter, r.logger)

	// 浏览器页面
	pages := r.engine.Group("/")
	pages.Use(middleware.LoadSession(r.sessions, r.logger))
	{
		pages.GET("/", r.webHandler.Welcome)
		pages.GET("/welcome", r.webHandler.Welcome)
		pages.GET("/login", r.webHandler.LoginPage)
		pages.POST("/login", throttle, r.webHandler.Login)
		pages.GET("/logout", r.webHandler.Logout)
		pages.GET("/register", r.webHandler.RegisterPage)
		pages.POST("/register", throttle, r.webHandler.Register)

		gated := pages.Group("/")
		gated.Use(middleware.RequireSession(r.sessions, r.logger))
		{
			gated.GET("/index", r.webHandler.IndexPage)
			gated.POST("/index", r.webHandler.Predict)
			gated.GET("/history", r.webHandler.History)
		}
	}

	// API 路由组
	v1 := r.engine.Group("/api/v1")
	{
		v1.POST("/auth/token", throttle, r.authHandler.IssueToken)

		predictions := v1.Group("/predictions")
		predictions.Use(middleware.RequireBearer(r.tokens, r.logger))
		{
			predictions.POST("", r.predictionHandler.Create)
			predictions.GET("", r.predictionHandler.List)
		}
	}

	// 404 处理
	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":             "not_found",
			"error_description": "The requested resource was not found",
		})
	})
}

// apiCORS applies CORS to /api paths only. It runs as a global middleware so
// preflight requests, which match no route, are still answered.
func (r *Router) apiCORS() gin.HandlerFunc {
	handler := cors.New(r.corsConfig())
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			handler(c)
			return
		}
		c.Next()
	}
}

func (r *Router) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	origins := r.config.Server.AllowedOrigins
	for _, o := range origins {
		if o == "*" {
			origins = nil
			break
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

// Handler exposes the engine, mainly for tests.
func (r *Router) Handler() http.Handler {
	return r.engine
}

// Start 启动 HTTP 服务器，阻塞直到服务器关闭
func (r *Router) Start() error {
	r.logger.Info(context.Background(), "Starting HTTP server", logger.Fields{"address": r.server.Addr})
	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop 停止 HTTP 服务器
func (r *Router) Stop(ctx context.Context) error {
	r.logger.Info(ctx, "Stopping HTTP server...")
	return r.server.Shutdown(ctx)
}
