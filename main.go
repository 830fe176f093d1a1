package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"robotconsole/internal/boot"
	"robotconsole/internal/model"
	"robotconsole/internal/service"
	"robotconsole/pkg/copyright"
	"robotconsole/pkg/logger"
	"robotconsole/pkg/version"

	"github.com/gin-gonic/gin"
)

// checkFatalErr 用于统一处理错误检查并中断流程。
func checkFatalErr(err error, message string) {
	if err != nil {
		logger.Fatal("%s: %v", message, err)
	}
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	flag.Parse()

	if version.BuildTime == "unknown" {
		version.BuildTime = time.Now().Format(time.RFC3339)
	}

	// 加载配置文件（Configuration）
	cfg, err := boot.InitConfig(*configPath)
	checkFatalErr(err, "Failed to load config")

	gin.SetMode(cfg.Server.Mode)

	// 可选存储（PostgreSQL / MongoDB / Redis）
	stores := boot.InitStores(cfg)
	if stores.DB != nil {
		if sqlDB, err := stores.DB.DB(); err == nil {
			defer sqlDB.Close()
		}
	}
	if stores.Mongo != nil {
		defer stores.Mongo.Close(context.Background())
	}
	if stores.Redis != nil {
		defer stores.Redis.Close()
	}

	// 操作日志（Journal）
	journal, err := boot.InitJournal(&cfg.Journal)
	checkFatalErr(err, "Failed to init journal")
	defer journal.Writer.Close()

	repos := boot.InitRepositories(cfg, stores)
	services := boot.InitServices(cfg, repos, boot.ServiceOptions{
		// HTTP 请求本身就是用户的确认
		Confirmer: service.AutoConfirm,
		Journal:   journal,
	})
	handlers := boot.InitHandlers(cfg, services, repos, journal)

	engine := gin.New()
	engine.Use(gin.Recovery())
	_ = boot.InitRouter(engine, handlers, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go journal.Hub.Run(ctx)

	// 预加载机器人列表，菜单与代理表单从这里拿到机器人记录
	var robotCount int64
	listCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if list, err := services.Directory.List(listCtx, &model.RobotListQuery{PageIndex: 1, PageSize: 100}); err != nil {
		logger.Warn("Failed to preload robot list: %v", err)
	} else {
		robotCount = list.Total
	}
	cancel()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	copyright.PrintCopyright(copyright.SystemStatus{
		Version:        version.GetVersion(),
		Addr:           addr,
		Backend:        cfg.Backend.BaseURL,
		AuthEnabled:    cfg.Server.AuthEnabled,
		RedisStatus:    stores.Redis != nil,
		MongoDBStatus:  stores.Mongo != nil,
		PostgresStatus: stores.DB != nil,
		JournalDir:     cfg.Journal.Dir,
		JournalHash:    journal.Writer.LastHash(),
		RobotCount:     robotCount,
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown: %v", err)
	}
}
