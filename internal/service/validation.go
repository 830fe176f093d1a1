package service

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"robotconsole/internal/model"

	"github.com/go-playground/validator/v10"
)

var (
	robotCodePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]+$`)
	proxyAddrPattern = regexp.MustCompile(`^[^:]+:\d+$`)

	validate = newValidator()
)

// 字段 + 规则 -> 提示文案
var fieldMessages = map[string]string{
	"robot_code.required":  "机器人编码不能为空",
	"robot_code.min":       "机器人编码至少输入5个字符",
	"robot_code.max":       "机器人编码不能超过64个字符",
	"robot_code.robotcode": "机器人编码必须以字母开头，且只能是字母、数字或下划线",
	"proxy_ip.proxyaddr":   "代理地址格式错误，应为 IP:端口 格式",
	"id.required":          "机器人ID不能为空",
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("robotcode", func(fl validator.FieldLevel) bool {
		return robotCodePattern.MatchString(fl.Field().String())
	})
	v.RegisterStructValidation(proxyLevel, model.RobotCreateRequest{}, model.ProxySettings{})
	return v
}

// proxyLevel 仅当启用代理且填写了地址时校验 host:port 格式
func proxyLevel(sl validator.StructLevel) {
	var enabled bool
	var addr string
	switch v := sl.Current().Interface().(type) {
	case model.RobotCreateRequest:
		enabled, addr = v.ProxyEnabled, v.ProxyIP
	case model.ProxySettings:
		enabled, addr = v.ProxyEnabled, v.ProxyIP
	default:
		return
	}
	if !ValidProxyAddress(enabled, addr) {
		sl.ReportError(addr, "proxy_ip", "ProxyIP", "proxyaddr", "")
	}
}

// ValidProxyAddress 代理地址规则
func ValidProxyAddress(enabled bool, addr string) bool {
	if !enabled || addr == "" {
		return true
	}
	return proxyAddrPattern.MatchString(addr)
}

// ValidateCreate 校验创建请求
func ValidateCreate(req *model.RobotCreateRequest) error {
	if req == nil {
		return &ValidationError{Fields: []FieldError{{Field: "robot_code", Message: fieldMessages["robot_code.required"]}}}
	}
	return translate(validate.Struct(req))
}

// ValidateProxy 校验代理设置
func ValidateProxy(settings *model.ProxySettings) error {
	if settings == nil {
		return &ValidationError{Fields: []FieldError{{Field: "id", Message: fieldMessages["id.required"]}}}
	}
	return translate(validate.Struct(settings))
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fe.Error()
		}
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: msg})
	}
	return out
}
