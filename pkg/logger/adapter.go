package logger

import (
	"go.uber.org/zap"
)

// LoggerAdapter pairs the process logger with the optional event log so callers
// don't need to check whether event logging is enabled
type LoggerAdapter struct {
	main  *zap.Logger
	multi *MultiLogger
}

// NewLoggerAdapter creates a new logger adapter. multi may be nil.
func NewLoggerAdapter(main *zap.Logger, multi *MultiLogger) *LoggerAdapter {
	if main == nil {
		main = zap.NewNop()
	}
	return &LoggerAdapter{main: main, multi: multi}
}

// Main returns the process logger
func (la *LoggerAdapter) Main() *zap.Logger {
	return la.main
}

// HasEventLog reports whether JSON event logging is enabled
func (la *LoggerAdapter) HasEventLog() bool {
	return la.multi != nil
}

// Event records an event in the download category
func (la *LoggerAdapter) Event(event string, fields ...zap.Field) {
	if la.multi != nil {
		la.multi.LogDownloadEvent(event, fields...)
	}
}

// Failure records an event in the download and error categories
func (la *LoggerAdapter) Failure(event string, fields ...zap.Field) {
	if la.multi != nil {
		la.multi.LogFailure(event, fields...)
	}
}

// Sync flushes all loggers
func (la *LoggerAdapter) Sync() error {
	if la.multi != nil {
		if err := la.multi.Sync(); err != nil {
			return err
		}
	}
	return la.main.Sync()
}

// GetMultiLogger returns the underlying multi-logger (if available)
func (la *LoggerAdapter) GetMultiLogger() *MultiLogger {
	return la.multi
}
