package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"taskmanager/internal/handler"
	"taskmanager/pkg/config"
	"taskmanager/pkg/util"
)

const MsgRouteNotFound = "Route not found"

// Pinger reports store reachability for /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	AuthHandler *handler.AuthHandler
	TaskHandler *handler.TaskHandler
	Tokens      *util.TokenService
	DB          Pinger
	Logger      *zap.Logger

	CORS      config.CORSConfig
	RateLimit config.RateLimitConfig
}

type Router struct {
	Engine *gin.Engine
}

// Interceptors is the ordered chain applied to every request.
func Interceptors(log *zap.Logger, cors config.CORSConfig) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		Recovery(log),
		RequestID(),
		RequestLogger(log),
		Metrics(),
		ErrorRenderer(log),
		CORS(cors.AllowedOrigin),
	}
}

func NewRouter(d Deps) *Router {
	r := gin.New()
	// 末尾斜杠不重定向，/api/tasks/ 由下面的别名直接处理
	r.RedirectTrailingSlash = false
	r.Use(Interceptors(d.Logger, d.CORS)...)

	// Health endpoints (放在最前面)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/readyz", func(c *gin.Context) {
		if d.DB == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_not_configured"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		if err := d.DB.Ping(ctx); err != nil {
			d.Logger.Warn("readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_not_ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	// Public
	authGroup := api.Group("/auth")
	authGroup.Use(RateLimit(d.RateLimit.RPS, d.RateLimit.Burst))
	{
		authGroup.POST("/register", d.AuthHandler.Register)
		authGroup.POST("/login", d.AuthHandler.Login)
	}

	// Protected
	tasks := api.Group("/tasks")
	tasks.Use(AuthMiddleware(d.Tokens, d.Logger))
	{
		tasks.GET("", d.TaskHandler.List)
		tasks.GET("/", d.TaskHandler.List)
		tasks.POST("", d.TaskHandler.Create)
		tasks.POST("/", d.TaskHandler.Create)
		tasks.PUT("/:id", d.TaskHandler.Update)
		tasks.DELETE("/:id", d.TaskHandler.Delete)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": MsgRouteNotFound})
	})

	return &Router{Engine: r}
}
