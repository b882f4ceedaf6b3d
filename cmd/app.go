package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
	"stock-sentry/internal/analyzer"
	"stock-sentry/internal/database"
	"stock-sentry/internal/fetcher"
	"stock-sentry/internal/monitor"
	"stock-sentry/internal/notifier"
	"stock-sentry/internal/storage"
	"stock-sentry/pkg/types"
)

// App 应用程序管理器
type App struct {
	config *types.Config
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	watcher *monitor.Monitor
	db      *database.Manager
}

// NewApp 创建应用程序实例
func NewApp(config *types.Config) *App {
	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start 启动应用程序
func (app *App) Start() {
	zap.L().Info("🚀 Stock Sentry 启动中...")

	// 数据库可选，未启用时告警和分析快照只留在内存里
	if app.config.Database.MySQL.Enabled {
		db, err := database.NewManager(app.config.Database.MySQL)
		if err != nil {
			zap.L().Error("❌ 数据库连接失败，持久化功能关闭", zap.Error(err))
		} else {
			app.db = db
		}
	}

	quotes := fetcher.NewClient(app.config.Network)
	history := fetcher.NewHistoryFetcher(app.config.Network)
	stateManager := storage.NewStateManager(app.config.Redis, 0)
	notifyService := app.buildNotifier()

	var alertStore monitor.AlertStore
	var advisoryStore analyzer.AdvisoryStore
	if app.db != nil {
		alertStore = app.db
		advisoryStore = app.db
	}

	app.watcher = monitor.New(quotes, notifyService, stateManager, alertStore)

	// 订阅状态变化，输出到日志
	app.watcher.Subscribe(func(state types.MonitorState) {
		if state.LastQuote != nil {
			zap.L().Debug("监控状态更新",
				zap.Bool("active", state.IsActive),
				zap.Float64("price", state.LastQuote.Price),
				zap.Int("alerts", len(state.Alerts)))
		}
	})

	// 启动时执行一次深度分析
	if len(app.config.Analysis.Codes) > 0 {
		engine := analyzer.NewEngine(quotes, history, advisoryStore, app.config.Analysis.Days)
		app.wg.Add(1)
		go func() {
			defer app.wg.Done()
			app.runAnalysis(engine)
		}()
	}

	// 配置了监控目标时自动开始盯盘
	if app.config.Watch.Code != "" {
		watchConfig := types.WatchConfig{
			Code:     app.config.Watch.Code,
			Rise:     app.config.Watch.Rise,
			Fall:     app.config.Watch.Fall,
			Interval: app.config.Watch.Interval,
		}
		// 阈值或间隔缺省时落到稳健预设
		if watchConfig.Rise <= 0 || watchConfig.Fall <= 0 {
			preset := monitor.PresetThresholds()["稳健"]
			watchConfig.Rise = preset.Rise
			watchConfig.Fall = preset.Fall
		}
		if watchConfig.Interval <= 0 {
			watchConfig.Interval = monitor.PresetIntervals()["正常"]
		}

		result := app.watcher.Start(watchConfig)
		if result.Success {
			fmt.Println(result.Message)
		} else {
			zap.L().Error("❌ 启动监控失败", zap.String("message", result.Message))
		}
	}

	zap.L().Info("✅ Stock Sentry 已启动")
}

// Stop 停止应用程序
func (app *App) Stop() {
	zap.L().Info("🛑 收到停止信号，正在优雅关闭...")

	if app.watcher != nil {
		app.watcher.Stop()
	}
	app.cancel()

	// 等待所有goroutine结束，最多等待30秒
	done := make(chan struct{})
	go func() {
		app.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		zap.L().Warn("⚠️ 强制关闭超时")
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			zap.L().Warn("关闭数据库连接失败", zap.Error(err))
		}
	}

	zap.L().Info("✅ Stock Sentry 已安全关闭")
}

// WaitForShutdown 等待关闭信号
func (app *App) WaitForShutdown() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
}

// buildNotifier 根据配置选择通知服务（优先级：钉钉 > 桌面通知 > 控制台）
func (app *App) buildNotifier() notifier.Interface {
	if app.config.DingTalk.WebhookURL != "" {
		return notifier.NewDingTalkNotifier(app.config.DingTalk.WebhookURL, app.config.DingTalk.Secret)
	}
	if app.config.DesktopNotify {
		return notifier.NewDesktopNotifier()
	}
	return notifier.NewConsoleNotifier()
}

// runAnalysis 对配置的股票逐只执行深度分析并打印报告
func (app *App) runAnalysis(engine *analyzer.Engine) {
	for _, code := range app.config.Analysis.Codes {
		select {
		case <-app.ctx.Done():
			return
		default:
		}

		if !fetcher.IsValidStockCode(code) {
			zap.L().Warn("股票代码格式无效，跳过分析", zap.String("code", code))
			continue
		}

		result := engine.Analyze(app.ctx, code)
		if result == nil {
			zap.L().Warn("分析失败，数据不可用", zap.String("code", code))
			continue
		}
		fmt.Println(analyzer.FormatResult(result))
	}
}
