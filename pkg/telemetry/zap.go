package telemetry

import (
	"go.uber.org/zap"

	"github.com/vango-dev/reactor/pkg/reactive"
)

// ZapHandler returns an error handler that logs to l. Warnings are
// logged at warn level, everything else at error level.
func ZapHandler(l *zap.Logger) reactive.ErrorHandler {
	return func(err *reactive.Error) {
		fields := []zap.Field{
			zap.String("code", err.Code),
			zap.Stringer("kind", err.Kind),
		}
		if err.Component != "" {
			fields = append(fields, zap.String("component", err.Component))
		}
		if err.Info != "" {
			fields = append(fields, zap.String("info", err.Info))
		}
		fields = append(fields, zap.Error(err.Err))

		msg := err.Diagnostic().Message
		if err.Warning() {
			l.Warn(msg, fields...)
			return
		}
		l.Error(msg, fields...)
	}
}

// NewLogger builds a zap logger for the given level and format
// ("console" or "json").
func NewLogger(level, format string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = lvl
	return cfg.Build()
}
