package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/katkatprog/sleepApp-sub000/pkg/cache"
	"github.com/katkatprog/sleepApp-sub000/pkg/config"
	"github.com/katkatprog/sleepApp-sub000/pkg/middleware"
	"github.com/katkatprog/sleepApp-sub000/pkg/storage"
)

// Handlers carries the live API's resources. store may be nil when no
// object store is configured; readiness probes then report unknown.
type Handlers struct {
	db    *gorm.DB
	cfg   *config.Config
	cache cache.Cache
	store storage.Store
	log   *zap.Logger
	now   func() time.Time
}

func New(db *gorm.DB, cfg *config.Config, c cache.Cache, store storage.Store, log *zap.Logger) *Handlers {
	return &Handlers{
		db:    db,
		cfg:   cfg,
		cache: c,
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// Register wires all routes. The rate limiter guards only the
// submission endpoint; reads stay cheap.
func (h *Handlers) Register(r *gin.Engine, rl *middleware.RateLimiter) {
	r.GET("/healthz", h.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/queue/:userId", h.handleQueueStatus)
	api.POST("/queue", rl.Middleware(), h.handleSubmitRequest)
	api.GET("/artifacts", h.handleListArtifacts)
	api.GET("/artifacts/:id", h.handleGetArtifact)
}

// RequestLogger logs one line per request through zap.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
