package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"gin-gorm-market/internal/core/auth"
	"gin-gorm-market/internal/domain"
	resp "gin-gorm-market/internal/transport/http/response"
)

const KeyIdentity = "identity"

// AuthJWT 解析 Bearer 令牌并把 domain.Identity 放入上下文；minRank 为准入等级
func AuthJWT(j *auth.JWTer, minRank domain.Rank) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			abort(c, resp.CodeUnauthorized, "auth.missing_token")
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			abort(c, resp.CodeUnauthorized, "auth.invalid_token")
			return
		}
		id, err := claims.Identity()
		if err != nil {
			abort(c, resp.CodeUnauthorized, "auth.invalid_token")
			return
		}
		if !id.Rank.AtLeast(minRank) {
			abort(c, resp.CodeForbidden, "auth.rank_required")
			return
		}
		SetIdentity(c, id)
		c.Next()
	}
}

func SetIdentity(c *gin.Context, id domain.Identity) { c.Set(KeyIdentity, id) }

func IdentityFrom(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(KeyIdentity)
	if !ok {
		return domain.Identity{}, false
	}
	id, ok := v.(domain.Identity)
	return id, ok && id.UserID != ""
}
