package boot

import (
	"robotconsole/internal/repository"
	"robotconsole/pkg/config"
)

// Repositories 包含所有仓储实例；对应存储未启用时为 nil（PendingFileRepo 除外）
type Repositories struct {
	ActionRepo      repository.RobotActionRepository
	SnapshotRepo    repository.LoginDataSnapshotRepository
	PendingFileRepo repository.PendingFileRepository
}

// InitRepositories 初始化所有仓储实例
func InitRepositories(cfg *config.Config, stores *Stores) *Repositories {
	repos := &Repositories{}
	if stores.DB != nil {
		repos.ActionRepo = repository.NewRobotActionRepository(stores.DB)
	}
	if stores.Mongo != nil {
		repos.SnapshotRepo = repository.NewLoginDataSnapshotRepository(stores.Mongo)
	}
	if stores.Redis != nil {
		repos.PendingFileRepo = repository.NewRedisPendingFileRepository(stores.Redis, cfg.Robot.PendingFileTTL)
	} else {
		repos.PendingFileRepo = repository.NewMemoryPendingFileRepository()
	}
	return repos
}
