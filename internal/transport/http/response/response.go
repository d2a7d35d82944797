package response

import (
	"errors"

	"gin-gorm-market/internal/domain"
)

type Resp struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

// New 保证 data 不为 null
func New(code int, msg string, data interface{}) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

func OK(data interface{}) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

// Done 成功响应，msg 为结果键，如 market.product_added
func Done(msg string, data interface{}) Resp {
	if msg == "" {
		msg = CodeMsgMap[CodeOK]
	}
	return New(CodeOK, msg, data)
}

// Error 失败响应，customMsg 为空时用默认消息
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, struct{}{})
}

// FromError 核心错误转响应；存储错误不向外暴露细节
func FromError(err error) Resp {
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind == domain.KindPersistence {
		return Error(CodeServerError, "")
	}
	return Error(CodeOf(de.Kind), de.Msg)
}
