package response

import "gin-gorm-market/internal/domain"

// 错误码沿用 HTTP 语义，HTTP 状态码统一为 200
const (
	CodeOK              = 0
	CodeBadRequest      = 400
	CodeUnauthorized    = 401
	CodeForbidden       = 403
	CodeNotFound        = 404
	CodeConflict        = 409
	CodeTooManyRequests = 429
	CodeServerError     = 500
	CodeUnavailable     = 503
	CodeTimeout         = 504
)

// CodeMsgMap 默认消息键，翻译由客户端完成
var CodeMsgMap = map[int]string{
	CodeOK:              "ok",
	CodeBadRequest:      "request.invalid",
	CodeUnauthorized:    "auth.unauthorized",
	CodeForbidden:       "auth.forbidden",
	CodeNotFound:        "resource.not_found",
	CodeConflict:        "resource.conflict",
	CodeTooManyRequests: "request.rate_limited",
	CodeServerError:     "server.error",
	CodeUnavailable:     "server.busy",
	CodeTimeout:         "server.timeout",
}

// CodeOf 核心错误类别到错误码
func CodeOf(k domain.Kind) int {
	switch k {
	case domain.KindValidation:
		return CodeBadRequest
	case domain.KindNotFound:
		return CodeNotFound
	case domain.KindConflict:
		return CodeConflict
	case domain.KindAuthorization:
		return CodeForbidden
	default:
		return CodeServerError
	}
}
