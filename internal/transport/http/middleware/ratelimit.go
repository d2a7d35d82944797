package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"gin-gorm-market/internal/core/ratelimit"
	resp "gin-gorm-market/internal/transport/http/response"
)

// RateLimit 全局令牌桶
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	lim := rate.NewLimiter(rps, burst)
	return func(c *gin.Context) {
		if lim.Allow() {
			c.Next()
			return
		}
		abort(c, resp.CodeTooManyRequests, "")
	}
}

// RateLimitPerIP 每个来源 IP 一个桶
func RateLimitPerIP(lim ratelimit.Limiter) gin.HandlerFunc {
	return keyed(lim, nil, func(c *gin.Context) string { return "ip:" + c.ClientIP() }, false)
}

// RateLimitMutations 按用户限制写请求（非 GET/HEAD），需放在 AuthJWT 之后。
// 限流存储不可用时放行并记日志。
func RateLimitMutations(lim ratelimit.Limiter, l *zap.Logger) gin.HandlerFunc {
	return keyed(lim, l, func(c *gin.Context) string {
		id, ok := IdentityFrom(c)
		if !ok {
			return ""
		}
		return "user:" + id.UserID
	}, true)
}

func keyed(lim ratelimit.Limiter, l *zap.Logger, key func(*gin.Context) string, mutationsOnly bool) gin.HandlerFunc {
	if lim == nil {
		return func(c *gin.Context) { c.Next() }
	}
	if l == nil {
		l = zap.NewNop()
	}
	return func(c *gin.Context) {
		if mutationsOnly && (c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead) {
			c.Next()
			return
		}
		k := key(c)
		if k == "" {
			c.Next()
			return
		}
		ok, err := lim.Allow(c.Request.Context(), k)
		if err != nil {
			l.Warn("rate limiter unavailable", zap.String("key", k), zap.Error(err))
			c.Next()
			return
		}
		if !ok {
			abort(c, resp.CodeTooManyRequests, "")
			return
		}
		c.Next()
	}
}
