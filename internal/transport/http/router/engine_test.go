package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gin-gorm-market/internal/core/auth"
	"gin-gorm-market/internal/core/config"
	"gin-gorm-market/internal/core/ratelimit"
	"gin-gorm-market/internal/domain"
	mdw "gin-gorm-market/internal/transport/http/middleware"
	resp "gin-gorm-market/internal/transport/http/response"
)

func init() { gin.SetMode(gin.TestMode) }

type pingModule struct{}

func (pingModule) MountAPI(g *gin.RouterGroup) {
	g.PUT("/ping", func(c *gin.Context) {
		id, _ := mdw.IdentityFrom(c)
		c.JSON(http.StatusOK, resp.OK(gin.H{"uid": id.UserID}))
	})
}

func (pingModule) MountAdmin(g *gin.RouterGroup) {
	g.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, resp.OK(nil)) })
}

type firstModule struct{ order *[]string }

func (m firstModule) MountAPI(*gin.RouterGroup) { *m.order = append(*m.order, "first") }
func (firstModule) Priority() int               { return 1 }

type lastModule struct{ order *[]string }

func (m lastModule) MountAPI(*gin.RouterGroup) { *m.order = append(*m.order, "last") }

func TestRegistry_PriorityAndDispatch(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var order []string
	assert.True(t, Register(lastModule{&order}, firstModule{&order}))
	assert.False(t, Register(struct{}{}))

	MountAllAPI(gin.New().Group("/"))
	assert.Equal(t, []string{"first", "last"}, order)

	MountAllAdmin(gin.New().Group("/"))
	assert.Len(t, adminMods, 0)
}

func TestEngines(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	Register(pingModule{})

	j := &auth.JWTer{Secret: []byte("secret"), Issuer: "market", TTL: time.Minute}
	o := Options{Concurrency: 4, MaxBody: 1 << 10, Timeout: time.Second, Mutations: ratelimit.NewLocal(0.0001, 1)}
	api := NewAPIEngine(zap.NewNop(), j, o)
	admin := NewAdminEngine(zap.NewNop(), j, o)

	send := func(r http.Handler, method, path, token string) (int, resp.Resp) {
		req := httptest.NewRequest(method, path, strings.NewReader(""))
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		var out resp.Resp
		_ = json.Unmarshal(w.Body.Bytes(), &out)
		return w.Code, out
	}

	code, _ := send(api, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	admin.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "market_http_requests_total")

	_, out := send(api, http.MethodPut, "/api/v1/ping", "")
	assert.Equal(t, resp.CodeUnauthorized, out.Code)

	user, err := j.Issue("u1", domain.RankAuthenticated)
	require.NoError(t, err)
	_, out = send(api, http.MethodPut, "/api/v1/ping", user)
	require.Equal(t, resp.CodeOK, out.Code)
	_, out = send(api, http.MethodPut, "/api/v1/ping", user)
	assert.Equal(t, resp.CodeTooManyRequests, out.Code)

	_, out = send(admin, http.MethodGet, "/admin/v1/ping", user)
	assert.Equal(t, resp.CodeForbidden, out.Code)

	mod, err := j.Issue("m1", domain.RankModerator)
	require.NoError(t, err)
	_, out = send(admin, http.MethodGet, "/admin/v1/ping", mod)
	assert.Equal(t, resp.CodeOK, out.Code)
}

func TestOptionsFrom_PerIP(t *testing.T) {
	cfg := &config.Config{}
	assert.Nil(t, OptionsFrom(cfg, nil).PerIP)

	cfg.RateLimit.IPRPS = 0.0001
	cfg.RateLimit.IPBurst = 1
	o := OptionsFrom(cfg, nil)
	require.NotNil(t, o.PerIP)

	api := NewAPIEngine(zap.NewNop(), &auth.JWTer{Secret: []byte("secret")}, o)
	health := func(addr string) resp.Resp {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		api.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		var out resp.Resp
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		return out
	}
	assert.Equal(t, resp.CodeOK, health("10.1.0.1:5000").Code)
	assert.Equal(t, resp.CodeTooManyRequests, health("10.1.0.1:5001").Code)
	assert.Equal(t, resp.CodeOK, health("10.1.0.2:5000").Code)
}
