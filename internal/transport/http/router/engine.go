package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"gin-gorm-market/internal/core/auth"
	"gin-gorm-market/internal/core/config"
	"gin-gorm-market/internal/core/metrics"
	"gin-gorm-market/internal/core/ratelimit"
	"gin-gorm-market/internal/core/server"
	"gin-gorm-market/internal/domain"
	mdw "gin-gorm-market/internal/transport/http/middleware"
)

type Options struct {
	Origins     []string
	RPS         float64
	Burst       int
	Concurrency int64
	MaxBody     int64
	Timeout     time.Duration
	// PerIP 按来源 IP 限流；nil 表示不限
	PerIP ratelimit.Limiter
	// Mutations 按用户限制写请求；nil 表示不限
	Mutations ratelimit.Limiter
}

func OptionsFrom(cfg *config.Config, mutations ratelimit.Limiter) Options {
	var perIP ratelimit.Limiter
	if rl := cfg.RateLimit; rl.IPRPS > 0 {
		perIP = ratelimit.NewLocal(rate.Limit(rl.IPRPS), rl.IPBurst)
	}
	return Options{
		Origins:     cfg.CORS.AllowOrigins,
		RPS:         cfg.RateLimit.RPS,
		Burst:       cfg.RateLimit.Burst,
		Concurrency: 300,
		MaxBody:     4 << 20,
		Timeout:     10 * time.Second,
		PerIP:       perIP,
		Mutations:   mutations,
	}
}

func newEngine(l *zap.Logger, o Options) *gin.Engine {
	r := server.NewRouter(l, o.Origins)
	r.Use(
		mdw.RequestID(),
		mdw.Recovery(l),
		mdw.RateLimit(rate.Limit(o.RPS), o.Burst),
		mdw.RateLimitPerIP(o.PerIP),
		mdw.ConcurrencyLimit(o.Concurrency),
		mdw.MaxBodyBytes(o.MaxBody),
		mdw.Timeout(o.Timeout),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	return r
}

// NewAPIEngine 用户端：任意已登录用户
func NewAPIEngine(l *zap.Logger, jwter *auth.JWTer, o Options) *gin.Engine {
	r := newEngine(l, o)
	api := r.Group("/api/v1")
	api.Use(mdw.AuthJWT(jwter, domain.RankAuthenticated), mdw.RateLimitMutations(o.Mutations, l))
	MountAllAPI(api)
	return r
}

// NewAdminEngine 审核端：版主及以上
func NewAdminEngine(l *zap.Logger, jwter *auth.JWTer, o Options) *gin.Engine {
	r := newEngine(l, o)
	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(jwter, domain.RankModerator), mdw.RateLimitMutations(o.Mutations, l))
	MountAllAdmin(admin)
	return r
}
