package boot

import (
	"robotconsole/pkg/config"
	"robotconsole/pkg/logger"
)

// InitConfig 加载配置并设置日志级别
func InitConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	return cfg, nil
}
