package service

import (
	"context"
	"errors"
	"time"

	"robotconsole/internal/journal"
	"robotconsole/internal/model"
	"robotconsole/internal/repository"
	"robotconsole/pkg/logger"
)

// ActionRecorder 记录每次操作的结果
type ActionRecorder interface {
	Record(ctx context.Context, action *model.RobotAction) error
}

type operatorKey struct{}

// WithOperator 在 ctx 上附加操作人
func WithOperator(ctx context.Context, operator string) context.Context {
	return context.WithValue(ctx, operatorKey{}, operator)
}

// OperatorFrom 取出操作人，未设置时为空
func OperatorFrom(ctx context.Context) string {
	op, _ := ctx.Value(operatorKey{}).(string)
	return op
}

// actionRecorder 写入操作历史（可选）与操作日志（可选），并推送给已连接的控制台
type actionRecorder struct {
	repo   repository.RobotActionRepository
	writer *journal.Writer
	hub    *journal.Hub
}

// NewActionRecorder 任一参数可为 nil
func NewActionRecorder(repo repository.RobotActionRepository, writer *journal.Writer, hub *journal.Hub) ActionRecorder {
	return &actionRecorder{repo: repo, writer: writer, hub: hub}
}

func (r *actionRecorder) Record(ctx context.Context, action *model.RobotAction) error {
	var errs []error
	if r.repo != nil {
		if err := r.repo.Create(ctx, action); err != nil {
			errs = append(errs, err)
		}
	}

	entry := &journal.Entry{
		ID:         action.ID,
		Timestamp:  action.CreatedAt,
		Kind:       journal.KindAction,
		RobotID:    action.RobotID,
		Action:     string(action.Action),
		Status:     string(action.Status),
		Message:    action.Message,
		Operator:   action.Operator,
		DurationMS: action.DurationMS,
	}
	if r.writer != nil {
		if err := r.writer.Write(entry); err != nil {
			errs = append(errs, err)
		}
	}
	if r.hub != nil {
		r.hub.Broadcast(entry)
	}
	return errors.Join(errs...)
}

// statusOf 把操作返回的错误归类为历史状态
func statusOf(err error) model.ActionStatus {
	var verr *ValidationError
	switch {
	case err == nil:
		return model.ActionSucceeded
	case errors.As(err, &verr),
		errors.Is(err, ErrNoImportFile),
		errors.Is(err, ErrImportExtension),
		errors.Is(err, ErrImportInvalidJSON),
		errors.Is(err, ErrImportTooLarge):
		return model.ActionRejected
	case errors.Is(err, ErrActionBusy):
		return model.ActionBusy
	case errors.Is(err, ErrCancelled):
		return model.ActionCancelled
	case errors.Is(err, ErrLoginDataExpired):
		return model.ActionExpired
	default:
		return model.ActionFailed
	}
}

// record 记录失败只写日志，不影响操作结果
func record(ctx context.Context, rec ActionRecorder, robotID int64, action model.ActionType, start time.Time, err error) {
	if rec == nil {
		return
	}
	entry := &model.RobotAction{
		RobotID:    robotID,
		Action:     action,
		Status:     statusOf(err),
		Operator:   OperatorFrom(ctx),
		DurationMS: time.Since(start).Milliseconds(),
		CreatedAt:  time.Now(),
	}
	if err != nil {
		entry.Message = err.Error()
	}
	if recErr := rec.Record(context.WithoutCancel(ctx), entry); recErr != nil {
		logger.Warn("failed to record action=%s robot=%d: %v", action, robotID, recErr)
	}
}
