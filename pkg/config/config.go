package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Backend  BackendConfig  `mapstructure:"backend"`
	Robot    RobotConfig    `mapstructure:"robot"`
	Database DatabaseConfig `mapstructure:"database"`
	MongoDB  MongoDBConfig  `mapstructure:"mongodb"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Journal  JournalConfig  `mapstructure:"journal"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig 控制台 HTTP 服务配置
type ServerConfig struct {
	Port        int
	Mode        string
	AuthEnabled bool `mapstructure:"auth_enabled"` // 是否启用 JWT 认证
}

// BackendConfig 机器人管理后端配置
type BackendConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Token   string        `mapstructure:"token"` // 透传给后端的访问令牌，可为空
}

// RobotConfig 机器人操作相关配置
type RobotConfig struct {
	// 创建成功后等待后端完成初始化的时长
	CreateSettleDelay time.Duration `mapstructure:"create_settle_delay"`
	// 待导入登录文件的保留时长
	PendingFileTTL time.Duration `mapstructure:"pending_file_ttl"`
	// 登录数据文件大小上限（字节）
	MaxLoginDataSize int64 `mapstructure:"max_login_data_size"`
}

// DatabaseConfig PostgreSQL 配置，用于操作历史
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// MongoDBConfig MongoDB 配置，用于登录数据快照
type MongoDBConfig struct {
	Enabled     bool
	URI         string `mapstructure:"uri"`
	Database    string `mapstructure:"database"`
	MaxPoolSize uint64 `mapstructure:"max_pool_size"`
	MinPoolSize uint64 `mapstructure:"min_pool_size"`
}

// RedisConfig Redis 配置，用于跨请求保存待导入文件
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig 控制台认证配置
type JWTConfig struct {
	Secret string
	Issuer string
}

// JournalConfig 操作日志配置
type JournalConfig struct {
	Dir          string `mapstructure:"dir"`
	RotationSize int64  `mapstructure:"rotation_size"`
	WebSocket    WebSocketConfig
}

// WebSocketConfig WebSocket 推送配置
type WebSocketConfig struct {
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 9000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("backend.base_url", "http://127.0.0.1:9001")
	v.SetDefault("backend.timeout", 30*time.Second)
	v.SetDefault("robot.create_settle_delay", 20*time.Second)
	v.SetDefault("robot.pending_file_ttl", 10*time.Minute)
	v.SetDefault("robot.max_login_data_size", 4*1024*1024)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("mongodb.database", "robot_console")
	v.SetDefault("mongodb.max_pool_size", 20)
	v.SetDefault("redis.port", 6379)
	v.SetDefault("journal.dir", "data/journal")
	v.SetDefault("journal.rotation_size", 32*1024*1024)
	v.SetDefault("journal.websocket.ping_interval", 30*time.Second)
	v.SetDefault("journal.websocket.write_wait", 10*time.Second)
	v.SetDefault("journal.websocket.max_message_size", 1024)
	v.SetDefault("log.level", "info")
}

// LoadConfig 加载配置文件，文件不存在时仅使用默认值与环境变量
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("ROBOT_CONSOLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !isNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Backend.BaseURL), "/")
	if cfg.Backend.BaseURL == "" {
		return nil, fmt.Errorf("backend.base_url is required")
	}
	if cfg.Server.AuthEnabled && cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt.secret is required when server.auth_enabled is true")
	}
	return &cfg, nil
}

// viper 对 SetConfigFile 指定的路径返回底层的 *fs.PathError，而不是 ConfigFileNotFoundError
func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
