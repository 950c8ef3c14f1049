package logger

import (
	"fmt"

	"go.uber.org/zap"
)

var InfoLogger, FatalLogger *zap.Logger

var (
	serviceName = "default"
)

func SetServiceName(newName string) string {
	oldName := serviceName
	serviceName = newName

	return oldName
}

type Config struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
	Encoding    string `mapstructure:"encoding"` // json | console
}

// New собирает zap.Logger из конфига; пустые поля: дефолты zap.
func New(cfg Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		lvl, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
		}
		zc.Level = lvl
	}
	if cfg.Encoding != "" {
		zc.Encoding = cfg.Encoding
	}
	return zc.Build()
}

// Init подменяет глобальные логгеры, которыми пользуются Info/Error/Fatal.
func Init(l *zap.Logger) {
	InfoLogger = l
	FatalLogger = l
}

// L returns the shared logger tagged with the service name.
func L() *zap.Logger {
	if InfoLogger == nil {
		panic("InfoLogger is not initialized")
	}
	return InfoLogger.With(zap.String("service", serviceName))
}

func Debug(format string, args ...interface{}) {
	L().Debug(fmt.Sprintf(format, args...))
}

func Info(format string, args ...interface{}) {
	L().Info(fmt.Sprintf(format, args...))
}

func Warn(format string, args ...interface{}) {
	L().Warn(fmt.Sprintf(format, args...))
}

func Error(format string, args ...interface{}) {
	L().Error(fmt.Sprintf(format, args...))
}

func Fatal(format string, args ...interface{}) {
	if FatalLogger == nil {
		panic("FatalLogger is not initialized")
	}

	msg := fmt.Sprintf(format, args...)
	FatalLogger.With(
		zap.String("service", serviceName),
	).Fatal(msg)
}
