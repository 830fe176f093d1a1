package boot

import (
	"robotconsole/internal/model"
	"robotconsole/pkg/config"
	"robotconsole/pkg/database"
	"robotconsole/pkg/logger"
	"robotconsole/pkg/redis"

	"gorm.io/gorm"
)

// Stores 可选的外部存储；未启用或连接失败时对应字段为 nil
type Stores struct {
	DB    *gorm.DB
	Mongo *database.MongoClient
	Redis *redis.Client
}

// InitDB 初始化 PostgreSQL 连接并迁移操作历史表
func InitDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	db, err := database.NewPostgresDB(cfg, debug)
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&model.RobotAction{}); err != nil {
		return nil, err
	}
	return db, nil
}

// InitMongo 初始化 MongoDB 连接
func InitMongo(cfg *config.MongoDBConfig) (*database.MongoClient, error) {
	return database.NewMongoClient(cfg)
}

// InitRedis 初始化 Redis 客户端
func InitRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	return redis.NewClient(&redis.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// InitStores 按配置连接各存储。存储都是可选的，连接失败只记录警告并降级。
func InitStores(cfg *config.Config) *Stores {
	stores := &Stores{}
	debug := cfg.Server.Mode == "debug"

	if cfg.Database.Enabled {
		db, err := InitDB(&cfg.Database, debug)
		if err != nil {
			logger.Warn("postgres unavailable, action history disabled: %v", err)
		} else {
			stores.DB = db
		}
	}
	if cfg.MongoDB.Enabled {
		mongo, err := InitMongo(&cfg.MongoDB)
		if err != nil {
			logger.Warn("mongodb unavailable, login data snapshots disabled: %v", err)
		} else {
			stores.Mongo = mongo
		}
	}
	if cfg.Redis.Enabled {
		client, err := InitRedis(&cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, pending files kept in memory: %v", err)
		} else {
			stores.Redis = client
		}
	}
	return stores
}
