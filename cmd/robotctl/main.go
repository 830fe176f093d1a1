// robotctl 是机器人控制台的命令行前端：确认框变为 y/N 提示，下载变为本地文件。
package main

import (
	"errors"
	"fmt"
	"os"

	"robotconsole/internal/service"
	"robotconsole/pkg/robotapi"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !alreadyReported(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// alreadyReported 服务层已经通过终端提示输出过的错误
func alreadyReported(err error) bool {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return true
	}
	if _, ok := robotapi.AsError(err); ok {
		return true
	}
	for _, target := range []error{
		service.ErrActionBusy,
		service.ErrLoginDataExpired,
		service.ErrExportDelivery,
		service.ErrNoImportFile,
		service.ErrImportExtension,
		service.ErrImportInvalidJSON,
		service.ErrImportTooLarge,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
