package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"stock-sentry/pkg/types"
)

// Init 初始化全局zap日志器，日志同时写入控制台和滚动文件
func Init(cfg types.LogConfig) error {
	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	// 控制台输出
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		level,
	)

	// 文件输出，lumberjack负责切割
	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.FilePath, "stock-sentry.log"),
		MaxSize:    cfg.MaxSize,
		MaxAge:     cfg.MaxAge,
		MaxBackups: cfg.MaxBackups,
		Compress:   cfg.Compress,
	}
	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(fileWriter),
		level,
	)

	logger := zap.New(zapcore.NewTee(consoleCore, fileCore), zap.AddCaller())
	zap.ReplaceGlobals(logger)

	return nil
}

// Sync 刷新日志缓冲区
func Sync() {
	_ = zap.L().Sync()
}
