package handler

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"taskmanager/pkg/apperr"
)

const MsgInvalidBody = "Invalid request body"

var registerOnce sync.Once

// registerValidators 注册 json 字段名和 notblank 规则到 gin 的校验引擎（只执行一次）
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("notblank", validators.NotBlank)
	})
}

// request is a JSON body with a client message per field.
type request interface {
	fieldMessages() map[string]string
}

// bindJSON decodes and validates the body into req. Every violated field is
// reported; an empty body validates like {}.
func bindJSON(c *gin.Context, req request) error {
	err := c.ShouldBindJSON(req)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(req)
	}
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return toValidationError(verrs, req.fieldMessages())
	}
	return apperr.Wrap(apperr.KindValidation, MsgInvalidBody, err)
}

func toValidationError(verrs validator.ValidationErrors, messages map[string]string) *apperr.Error {
	fields := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := messages[fe.Field()]
		if !ok {
			msg = "Invalid value"
		}
		fields = append(fields, apperr.FieldError{Field: fe.Field(), Message: msg})
	}
	return apperr.Validation(fields...)
}
