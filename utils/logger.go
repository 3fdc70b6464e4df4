package utils

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger 全局日志（InitLogger前为Nop，避免测试/工具链空指针）
var Logger = zap.NewNop()

// InitLogger 初始化日志
func InitLogger() error {
	config := zap.NewProductionConfig()
	// 开发环境可改为zap.NewDevelopmentConfig()
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	logger, err := config.Build()
	if err != nil {
		return err
	}

	Logger = logger
	zap.ReplaceGlobals(logger)
	return nil
}
