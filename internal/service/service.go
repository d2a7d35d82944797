// Package service 市场核心：审核流程、互动账本与受保护字段的资料修改
package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"gin-gorm-market/internal/domain"
)

const defaultPageSize = 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// invalid 把校验错误转成 ValidationError，消息里带第一个出错字段
func invalid(key string, err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return domain.Validation(fmt.Sprintf("%s: %s %s", key, ve[0].Field(), ve[0].Tag()))
	}
	return domain.Validation(key)
}

func persist(op string, err error) error {
	return domain.Persistence(op, err)
}

func page(offset, limit, max int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if max > 0 && limit > max {
		limit = max
	}
	return offset, limit
}
