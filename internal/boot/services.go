package boot

import (
	"robotconsole/internal/notify"
	"robotconsole/internal/service"
	"robotconsole/pkg/config"
	"robotconsole/pkg/robotapi"
)

// Services 包含所有服务实例
type Services struct {
	API        robotapi.API
	Recorder   service.ActionRecorder
	Directory  *service.RobotDirectory
	Creator    *service.RobotCreator
	Menus      *service.ActionMenus
	ProxyForms *service.ProxyForms
}

// ServiceOptions 前端相关的依赖：HTTP 控制台与 CLI 各自提供
type ServiceOptions struct {
	Confirmer service.Confirmer
	Notifier  notify.Notifier
	// Journal 为 nil 时不写操作日志
	Journal *JournalComponents
	// API 为 nil 时按配置创建后端客户端
	API robotapi.API
}

// InitServices 初始化所有服务实例
func InitServices(cfg *config.Config, repos *Repositories, opts ServiceOptions) *Services {
	client := opts.API
	if client == nil {
		var clientOpts []robotapi.Option
		if cfg.Backend.Token != "" {
			clientOpts = append(clientOpts, robotapi.WithToken(cfg.Backend.Token))
		}
		client = robotapi.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, clientOpts...)
	}

	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.Log{}
	}

	var recorder service.ActionRecorder
	if opts.Journal != nil {
		recorder = service.NewActionRecorder(repos.ActionRepo, opts.Journal.Writer, opts.Journal.Hub)
		notifier = notify.Fanout{notifier, opts.Journal.Hub}
	} else if repos.ActionRepo != nil {
		recorder = service.NewActionRecorder(repos.ActionRepo, nil, nil)
	}

	directory := service.NewRobotDirectory(client)

	// 未配置时取 viper 默认值 20s；显式配置为 0 表示不等待
	creator := service.NewRobotCreator(client, notifier, recorder, service.WithSettleDelay(cfg.Robot.CreateSettleDelay))

	menus := service.NewActionMenus(service.MenuDeps{
		API:           client,
		Confirmer:     opts.Confirmer,
		Notifier:      notifier,
		Recorder:      recorder,
		Pending:       repos.PendingFileRepo,
		Snapshots:     repos.SnapshotRepo,
		MaxImportSize: cfg.Robot.MaxLoginDataSize,
	}, directory.Refresh)
	forms := service.NewProxyForms(client, notifier, recorder, directory.Refresh)

	directory.AddObserver(menus)
	directory.AddObserver(forms)

	return &Services{
		API:        client,
		Recorder:   recorder,
		Directory:  directory,
		Creator:    creator,
		Menus:      menus,
		ProxyForms: forms,
	}
}
