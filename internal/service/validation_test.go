package service

import (
	"strings"
	"testing"

	"robotconsole/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCreateRobotCode(t *testing.T) {
	tests := []struct {
		name string
		code string
		msg  string
	}{
		{"empty", "", "机器人编码不能为空"},
		{"too short", "abcd", "机器人编码至少输入5个字符"},
		{"too long", "a" + strings.Repeat("b", 64), "机器人编码不能超过64个字符"},
		{"leading digit", "1robot", "机器人编码必须以字母开头，且只能是字母、数字或下划线"},
		{"leading underscore", "_robot", "机器人编码必须以字母开头，且只能是字母、数字或下划线"},
		{"dash", "robot-01", "机器人编码必须以字母开头，且只能是字母、数字或下划线"},
		{"space", "robot 01", "机器人编码必须以字母开头，且只能是字母、数字或下划线"},
		{"min length", "abcde", ""},
		{"max length", "a" + strings.Repeat("b", 63), ""},
		{"underscore and digits", "Robot_01", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCreate(&model.RobotCreateRequest{RobotCode: tt.code})
			if tt.msg == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.msg, verr.Message("robot_code"))
		})
	}
}

func TestValidateProxyAddress(t *testing.T) {
	const msg = "代理地址格式错误，应为 IP:端口 格式"
	tests := []struct {
		name    string
		enabled bool
		addr    string
		valid   bool
	}{
		{"disabled ignores garbage", false, "not an address", true},
		{"enabled empty", true, "", true},
		{"ip and port", true, "127.0.0.1:8080", true},
		{"host and port", true, "proxy.local:3128", true},
		{"missing port", true, "127.0.0.1", false},
		{"non numeric port", true, "127.0.0.1:http", false},
		{"empty host", true, ":8080", false},
		{"two colons", true, "a:b:80", false},
		{"trailing colon", true, "127.0.0.1:", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidProxyAddress(tt.enabled, tt.addr))

			createErr := ValidateCreate(&model.RobotCreateRequest{
				RobotCode:    "robot_01",
				ProxyEnabled: tt.enabled,
				ProxyIP:      tt.addr,
			})
			proxyErr := ValidateProxy(&model.ProxySettings{ID: 1, ProxyEnabled: tt.enabled, ProxyIP: tt.addr})
			if tt.valid {
				assert.NoError(t, createErr)
				assert.NoError(t, proxyErr)
				return
			}
			for _, err := range []error{createErr, proxyErr} {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, msg, verr.Message("proxy_ip"))
			}
		})
	}
}

func TestValidateProxyRequiresID(t *testing.T) {
	var verr *ValidationError
	require.ErrorAs(t, ValidateProxy(&model.ProxySettings{}), &verr)
	assert.Equal(t, "机器人ID不能为空", verr.Message("id"))

	require.ErrorAs(t, ValidateProxy(nil), &verr)
}
