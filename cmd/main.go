package main

import (
	"log"

	"stock-sentry/pkg/config"
	"stock-sentry/pkg/logger"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("加载配置失败:", err)
	}

	// 初始化日志
	if err := logger.Init(cfg.Log); err != nil {
		log.Fatal("初始化日志失败:", err)
	}
	defer logger.Sync()

	// 启动应用
	app := NewApp(cfg)
	app.Start()

	// 等待中断信号
	app.WaitForShutdown()
	app.Stop()
}
