package logger

import (
	"time"

	"github.com/harrison/scout/internal/models"
)

// Logger is the event surface shared by the console and file loggers.
type Logger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
	LogSearchStart(directory, pattern string, threads int)
	LogSearchComplete(summary models.Summary, duration time.Duration)
}

var (
	_ Logger = (*ConsoleLogger)(nil)
	_ Logger = (*FileLogger)(nil)
	_ Logger = (*NoOpLogger)(nil)
	_ Logger = (*MultiLogger)(nil)
)

// MultiLogger forwards every call to each of its loggers in order.
// Each logger applies its own level filter.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger creates a MultiLogger. Nil loggers are dropped.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	ml := &MultiLogger{}
	for _, l := range loggers {
		if l != nil {
			ml.loggers = append(ml.loggers, l)
		}
	}
	return ml
}

func (ml *MultiLogger) LogTrace(message string) {
	for _, l := range ml.loggers {
		l.LogTrace(message)
	}
}

func (ml *MultiLogger) LogDebug(message string) {
	for _, l := range ml.loggers {
		l.LogDebug(message)
	}
}

func (ml *MultiLogger) LogInfo(message string) {
	for _, l := range ml.loggers {
		l.LogInfo(message)
	}
}

func (ml *MultiLogger) LogWarn(message string) {
	for _, l := range ml.loggers {
		l.LogWarn(message)
	}
}

func (ml *MultiLogger) LogError(message string) {
	for _, l := range ml.loggers {
		l.LogError(message)
	}
}

func (ml *MultiLogger) LogSearchStart(directory, pattern string, threads int) {
	for _, l := range ml.loggers {
		l.LogSearchStart(directory, pattern, threads)
	}
}

func (ml *MultiLogger) LogSearchComplete(summary models.Summary, duration time.Duration) {
	for _, l := range ml.loggers {
		l.LogSearchComplete(summary, duration)
	}
}
