// Package ez 一行注册动作接口：绑定入参、校验等级、调用服务、统一信封
package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gin-gorm-market/internal/domain"
	mdw "gin-gorm-market/internal/transport/http/middleware"
	resp "gin-gorm-market/internal/transport/http/response"
)

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

type Binder string

const (
	BindJSON  Binder = "json"  // JSON 请求体
	BindQuery Binder = "query" // ?a=b
	BindURI   Binder = "uri"   // 路径参数，随后再绑定 query
	BindNone  Binder = "none"
)

// AErr 传输层自己的错误，核心错误走 domain.Error
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: resp.CodeUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: resp.CodeForbidden, Msg: msg} }

// Action I 入参，O 出参
type Action[I any, O any] struct {
	Method  string
	Path    string
	Binder  Binder
	MinRank domain.Rank // 默认任意已登录用户
	Msg     string      // 成功时的结果键
	Handler func(c *gin.Context, id domain.Identity, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		id, ok := mdw.IdentityFrom(c)
		if !ok {
			writeErr(c, Unauthorized(""))
			return
		}
		if !id.Rank.AtLeast(a.MinRank) {
			writeErr(c, Forbidden("auth.rank_required"))
			return
		}

		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		case BindURI:
			if bindErr = c.ShouldBindUri(&in); bindErr == nil {
				bindErr = c.ShouldBindQuery(&in)
			}
		}
		if bindErr != nil {
			reply(c, resp.Error(resp.CodeBadRequest, "request.invalid"))
			_ = c.Error(bindErr)
			return
		}

		out, err := a.Handler(c, id, &in)
		if err != nil {
			writeErr(c, err)
			return
		}
		reply(c, resp.Done(a.Msg, out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default:
		e.g.POST(a.Path, h)
	}
}

func writeErr(c *gin.Context, err error) {
	var ae *AErr
	if errors.As(err, &ae) {
		reply(c, resp.Error(ae.Code, ae.Msg))
		return
	}
	if domain.KindOf(err) == domain.KindPersistence {
		_ = c.Error(err)
	}
	reply(c, resp.FromError(err))
}

func reply(c *gin.Context, r resp.Resp) {
	mdw.SetRespCode(c, r.Code)
	c.JSON(http.StatusOK, r)
}
