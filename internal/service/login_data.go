package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"robotconsole/internal/model"
	"robotconsole/internal/notify"
	"robotconsole/pkg/logger"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DownloadSink 接收导出的登录数据文件。实现负责释放交付过程中占用的临时资源。
type DownloadSink interface {
	Deliver(ctx context.Context, file *model.LoginDataFile) error
}

// DownloadFunc 函数适配器
type DownloadFunc func(ctx context.Context, file *model.LoginDataFile) error

func (f DownloadFunc) Deliver(ctx context.Context, file *model.LoginDataFile) error { return f(ctx, file) }

// ExportLoginData 导出登录数据。
//
// 后端没有返回数据时提示“登录信息已过期”并返回 ErrLoginDataExpired，不会调用 sink。
func (m *ActionMenu) ExportLoginData(ctx context.Context, sink DownloadSink) (err error) {
	start := time.Now()
	defer func() { record(ctx, m.recorder, m.robotID, model.ActionExportLoginData, start, err) }()

	n := notify.With(ctx, m.notifier)
	if err = m.gate(ctx, n, &m.exporting, msgExportBusy, promptExport); err != nil {
		return err
	}

	m.exporting.begin()
	defer m.exporting.end()

	data, err := m.api.ExportLoginData(ctx, m.robotID)
	if err != nil {
		notify.Error(n, err.Error())
		return err
	}
	if data == "" {
		notify.Error(n, msgLoginExpired)
		return ErrLoginDataExpired
	}

	wechatID := m.wechatID(ctx)
	file := &model.LoginDataFile{
		Name:        model.LoginDataFileName(wechatID),
		ContentType: model.LoginDataContentType,
		Data:        []byte(data),
	}
	if derr := sink.Deliver(ctx, file); derr != nil {
		notify.Error(n, msgExportFailed+derr.Error())
		return fmt.Errorf("%w: %v", ErrExportDelivery, derr)
	}

	notify.Success(n, msgExported)
	m.archive(ctx, model.SnapshotExport, wechatID, data)
	return nil
}

// wechatID 优先使用已持有的机器人记录，没有时向后端查询一次
func (m *ActionMenu) wechatID(ctx context.Context) string {
	if robot := m.Robot(); robot != nil {
		return robot.WeChatID
	}
	robot, err := m.api.ViewRobot(ctx, m.robotID)
	if err != nil {
		logger.Warn("view robot=%d for export filename: %v", m.robotID, err)
		return ""
	}
	m.SetRobot(robot)
	return robot.WeChatID
}

// SelectImportFile 保存待导入的文件，替换之前的选择
func (m *ActionMenu) SelectImportFile(ctx context.Context, name string, data []byte) error {
	if int64(len(data)) > m.maxImport {
		notify.Error(notify.With(ctx, m.notifier), msgFileTooLarge)
		return ErrImportTooLarge
	}
	return m.pending.Put(ctx, m.robotID, &model.PendingFile{
		Name:       name,
		Data:       data,
		SelectedAt: time.Now(),
	})
}

// ClearImportFile 移除已选择的文件
func (m *ActionMenu) ClearImportFile(ctx context.Context) error {
	return m.pending.Clear(ctx, m.robotID)
}

// PendingImportFile 当前选择的文件，没有时为 nil
func (m *ActionMenu) PendingImportFile(ctx context.Context) (*model.PendingFile, error) {
	return m.pending.Get(ctx, m.robotID)
}

// ImportLoginData 导入已选择的登录数据文件。
//
// 取消确认会清除已选择的文件。缺少文件、扩展名不是 .json、内容不是合法 JSON 时
// 提示具体原因并返回错误，不发出请求。成功后清除文件并通知上层刷新；
// 后端失败时保留文件以便重试。
func (m *ActionMenu) ImportLoginData(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { record(ctx, m.recorder, m.robotID, model.ActionImportLoginData, start, err) }()

	n := notify.With(ctx, m.notifier)
	if err = m.gate(ctx, n, &m.importing, msgImportBusy, promptImport); err != nil {
		if errors.Is(err, ErrCancelled) {
			if cerr := m.pending.Clear(ctx, m.robotID); cerr != nil {
				logger.Warn("clear pending file robot=%d: %v", m.robotID, cerr)
			}
		}
		return err
	}

	file, err := m.pending.Get(ctx, m.robotID)
	if err != nil {
		notify.Error(n, err.Error())
		return fmt.Errorf("load pending file: %w", err)
	}
	if file == nil {
		notify.Error(n, msgNoImportFile)
		return ErrNoImportFile
	}
	if !strings.HasSuffix(strings.ToLower(file.Name), ".json") {
		notify.Error(n, msgBadExtension)
		return ErrImportExtension
	}
	// Windows 编辑器保存的文件带 UTF-8 BOM，按文本读取时应当去掉
	data := bytes.TrimPrefix(file.Data, utf8BOM)
	if !json.Valid(data) {
		notify.Error(n, msgInvalidJSON)
		return ErrImportInvalidJSON
	}

	text := string(data)
	m.importing.begin()
	err = m.api.ImportLoginData(ctx, m.robotID, text)
	m.importing.end()
	if err != nil {
		notify.Error(n, err.Error())
		return err
	}

	notify.Success(n, msgImported)
	if cerr := m.pending.Clear(ctx, m.robotID); cerr != nil {
		logger.Warn("clear pending file robot=%d: %v", m.robotID, cerr)
	}
	var wechatID string
	if robot := m.Robot(); robot != nil {
		wechatID = robot.WeChatID
	}
	m.archive(ctx, model.SnapshotImport, wechatID, text)
	m.refresh(ctx)
	return nil
}

// archive 归档失败不影响操作结果
func (m *ActionMenu) archive(ctx context.Context, dir model.SnapshotDirection, wechatID, data string) {
	if m.snapshots == nil {
		return
	}
	sum := sha256.Sum256([]byte(data))
	snapshot := &model.LoginDataSnapshot{
		RobotID:   m.robotID,
		WeChatID:  wechatID,
		Direction: dir,
		Data:      data,
		Size:      len(data),
		SHA256:    hex.EncodeToString(sum[:]),
		Operator:  OperatorFrom(ctx),
		CreatedAt: time.Now(),
	}
	if err := m.snapshots.Create(context.WithoutCancel(ctx), snapshot); err != nil {
		logger.Warn("archive login data robot=%d direction=%s: %v", m.robotID, dir, err)
	}
}

// Snapshots 最近的登录数据归档
func (m *ActionMenu) Snapshots(ctx context.Context, limit int64) ([]*model.LoginDataSnapshot, error) {
	if m.snapshots == nil {
		return []*model.LoginDataSnapshot{}, nil
	}
	return m.snapshots.ListByRobot(ctx, m.robotID, limit)
}
