package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"robotconsole/internal/model"
	"robotconsole/pkg/redis"

	goredis "github.com/redis/go-redis/v9"
)

// PendingFileRepository 保存“已选择、未确认”的导入文件，每个机器人最多一个
type PendingFileRepository interface {
	Put(ctx context.Context, robotID int64, file *model.PendingFile) error
	// Get 没有待导入文件时返回 nil, nil
	Get(ctx context.Context, robotID int64) (*model.PendingFile, error)
	Clear(ctx context.Context, robotID int64) error
}

type memoryPendingFileRepository struct {
	mu    sync.Mutex
	files map[int64]*model.PendingFile
}

// NewMemoryPendingFileRepository 进程内实现，单实例部署与 CLI 使用
func NewMemoryPendingFileRepository() PendingFileRepository {
	return &memoryPendingFileRepository{files: make(map[int64]*model.PendingFile)}
}

func (r *memoryPendingFileRepository) Put(_ context.Context, robotID int64, file *model.PendingFile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[robotID] = file
	return nil
}

func (r *memoryPendingFileRepository) Get(_ context.Context, robotID int64) (*model.PendingFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.files[robotID], nil
}

func (r *memoryPendingFileRepository) Clear(_ context.Context, robotID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.files, robotID)
	return nil
}

type redisPendingFileRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisPendingFileRepository Redis 实现，多个控制台实例共享选择状态；ttl 后自动失效
func NewRedisPendingFileRepository(client *redis.Client, ttl time.Duration) PendingFileRepository {
	return &redisPendingFileRepository{client: client, ttl: ttl}
}

func pendingFileKey(robotID int64) string {
	return fmt.Sprintf("robot:%d:pending_login_file", robotID)
}

func (r *redisPendingFileRepository) Put(ctx context.Context, robotID int64, file *model.PendingFile) error {
	data, err := json.Marshal(file)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, pendingFileKey(robotID), data, r.ttl)
}

func (r *redisPendingFileRepository) Get(ctx context.Context, robotID int64) (*model.PendingFile, error) {
	raw, err := r.client.Get(ctx, pendingFileKey(robotID))
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var file model.PendingFile
	if err := json.Unmarshal([]byte(raw), &file); err != nil {
		return nil, fmt.Errorf("decode pending file: %w", err)
	}
	return &file, nil
}

func (r *redisPendingFileRepository) Clear(ctx context.Context, robotID int64) error {
	return r.client.Del(ctx, pendingFileKey(robotID))
}
