package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

func init() {
	// 校验错误中使用请求里的字段名（json/form/uri），而不是Go结构体字段名
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(requestFieldName)
	}
}

func requestFieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form", "uri"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

// bindError 参数绑定/校验失败统一转换为40001
// 只返回字段级别的提示，不暴露解码器的内部错误文本
func bindError(err error) error {
	return apperrors.ErrBindError.WithMessage("参数错误: " + bindMessage(err))
}

func bindMessage(err error) string {
	var (
		fieldErrs validator.ValidationErrors
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
		numErr    *strconv.NumError
	)

	switch {
	case errors.As(err, &fieldErrs):
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, fieldMessage(fe))
		}
		return strings.Join(msgs, "; ")
	case errors.As(err, &typeErr):
		if typeErr.Field == "" {
			return "请求体格式错误"
		}
		return fmt.Sprintf("%s类型错误", typeErr.Field)
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return "请求体不是合法的JSON"
	case errors.As(err, &numErr):
		return fmt.Sprintf("%q不是合法的数字", numErr.Num)
	default:
		return "参数格式错误"
	}
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + "不能为空"
	case "email":
		return field + "格式不正确"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s长度不能少于%s", field, fe.Param())
		}
		return fmt.Sprintf("%s不能小于%s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s长度不能超过%s", field, fe.Param())
		}
		return fmt.Sprintf("%s不能大于%s", field, fe.Param())
	default:
		return fmt.Sprintf("%s校验失败(%s)", field, fe.Tag())
	}
}
