package domekit

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the SDK's root logger instance.
// It uses a no-op logger by default; Init replaces it with a host-backed one.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the SDK's root logger.
func SetLogger(l *zap.Logger) {
	logger = l
}
