package utils

import (
	"context"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ServiceName is attached to every log entry written through this package.
var ServiceName = "plan-pleno-api"

func GenerateTraceId() string {
	return uuid.New().String()
}

// LogEntry writes message at the given level.
func LogEntry(entry *log.Entry, level, message string) {
	switch level {
	case "debug":
		entry.Debug(message)
	case "info":
		entry.Info(message)
	case "warn":
		entry.Warn(message)
	case "error":
		entry.Error(message)
	case "fatal":
		entry.Fatal(message)
	case "panic":
		entry.Panic(message)
	default:
		entry.Info(message)
	}
}

func LogMessage(level, message string) {
	entry := log.WithFields(log.Fields{
		"service": ServiceName,
	})

	LogEntry(entry, level, message)
}

// TraceIdFromContext returns the trace id injected by the trace middleware, or an
// empty string outside of a request.
func TraceIdFromContext(ctx context.Context) string {
	traceId, _ := ctx.Value(TraceIdKey.String()).(string)
	return traceId
}

func LogMessageWithFields(ctx context.Context, level, message string) {
	entry := log.WithFields(log.Fields{
		"traceId": TraceIdFromContext(ctx),
		"service": ServiceName,
	})

	LogEntry(entry, level, message)
}

func LogMessageWithFieldsAndError(ctx context.Context, level, message string, err error) {
	entry := log.WithFields(log.Fields{
		"traceId": TraceIdFromContext(ctx),
		"service": ServiceName,
		"error":   err,
	})

	LogEntry(entry, level, message)
}
