package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "gin-gorm-market/internal/transport/http/response"
)

func abort(c *gin.Context, code int, msg string) {
	SetRespCode(c, code)
	c.AbortWithStatusJSON(http.StatusOK, resp.Error(code, msg))
}
