package scylladb

import (
	"errors"

	"github.com/consensuslabs/pavilion-mint/internal/logger"
)

// Logger is the logging surface the ScyllaDB package writes to
type Logger interface {
	LogInfo(message string, fields map[string]interface{})
	LogError(message string, fields map[string]interface{})
}

// LoggerAdapter tags entries with the scylladb component
type LoggerAdapter struct {
	logger logger.Logger
}

// NewLoggerAdapter creates a new logger adapter
func NewLoggerAdapter(logger logger.Logger) *LoggerAdapter {
	return &LoggerAdapter{
		logger: logger,
	}
}

// LogInfo logs informational messages
func (l *LoggerAdapter) LogInfo(message string, fields map[string]interface{}) {
	l.logger.LogInfo(message, withComponent(fields))
}

// LogError logs error messages. An "error" field becomes the logged error.
func (l *LoggerAdapter) LogError(message string, fields map[string]interface{}) {
	fields = withComponent(fields)
	err := errors.New(message)
	if cause, ok := fields["error"].(string); ok && cause != "" {
		err = errors.New(cause)
		delete(fields, "error")
	}
	l.logger.WithFields(fields).LogError(err, message)
}

func withComponent(fields map[string]interface{}) map[string]interface{} {
	tagged := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		tagged[k] = v
	}
	tagged["component"] = "scylladb"
	return tagged
}
