package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	resp "gin-gorm-market/internal/transport/http/response"
)

// ConcurrencyLimit 限制同时处理的请求数，保护数据库连接池
func ConcurrencyLimit(max int64) gin.HandlerFunc {
	if max <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	sem := semaphore.NewWeighted(max)
	return func(c *gin.Context) {
		if err := sem.Acquire(c.Request.Context(), 1); err != nil {
			abort(c, resp.CodeUnavailable, "")
			return
		}
		defer sem.Release(1)
		c.Next()
	}
}
