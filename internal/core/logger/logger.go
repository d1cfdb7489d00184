package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceName is attached to every entry so shipped logs can be filtered by service.
const ServiceName = "order-tracker"

var globalLogger *zap.Logger

// Init initializes the global logger.
// "production" emits JSON; anything else emits colored console output.
// An unknown level falls back to info and is reported once the logger is built.
func Init(environment string, level string) error {
	var config zap.Config

	if environment == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	parsed, levelErr := zapcore.ParseLevel(level)
	if levelErr != nil {
		parsed = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(parsed)
	config.InitialFields = map[string]interface{}{
		"service": ServiceName,
		"env":     environment,
	}

	logger, err := config.Build()
	if err != nil {
		return err
	}

	globalLogger = logger
	if levelErr != nil {
		logger.Warn("Unknown log level, using info", zap.String("level", level))
	}
	return nil
}

// Get returns the global logger instance.
// If not initialized, it returns a no-op logger to prevent panics.
func Get() *zap.Logger {
	if globalLogger == nil {
		return zap.NewNop()
	}
	return globalLogger
}

// Named returns the global logger scoped to a component (e.g. "shopify", "lookup").
func Named(component string) *zap.Logger {
	return Get().Named(component)
}

// ForRequest returns the global logger tagged with the request's ray id.
func ForRequest(rayID string) *zap.Logger {
	if rayID == "" {
		return Get()
	}
	return Get().With(zap.String("ray_id", rayID))
}

// Sync flushes any buffered log entries.
func Sync() {
	if globalLogger != nil {
		_ = globalLogger.Sync()
	}
}
