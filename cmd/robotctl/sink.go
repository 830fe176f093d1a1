package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"robotconsole/internal/model"
)

// fileSink 把导出的登录数据写到目录中。
// 先写临时文件再改名；无论成功与否临时文件都会被删除。
type fileSink struct {
	dir  string
	path string // 最近一次写出的文件
}

func (s *fileSink) Deliver(_ context.Context, file *model.LoginDataFile) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, ".logindata-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(file.Data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	dst := filepath.Join(s.dir, filepath.Base(file.Name))
	if err := os.Rename(tmpName, dst); err != nil {
		return fmt.Errorf("rename to %s: %w", dst, err)
	}
	s.path = dst
	return nil
}
