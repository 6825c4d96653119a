// Package logging builds the service logger and carries request-scoped
// entries through context.Context.
package logging

import (
	"context"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Leganyst/class-scheduler/internal/config"
)

type ctxKey struct{}

// New creates the root logger from config. Unknown levels fall back to info.
func New(cfg config.LogConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// WithLogger returns a copy of ctx carrying entry.
func WithLogger(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, ctxKey{}, entry)
}

// FromContext returns the request logger, or an entry on the standard logger
// when none was attached.
func FromContext(ctx context.Context) *logrus.Entry {
	if ctx != nil {
		switch typed := ctx.Value(ctxKey{}).(type) {
		case *logrus.Entry:
			return typed
		case *logrus.Logger:
			return logrus.NewEntry(typed)
		}
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

// WithFields is a shorthand for FromContext(ctx).WithFields(fields).
func WithFields(ctx context.Context, fields logrus.Fields) *logrus.Entry {
	return FromContext(ctx).WithFields(fields)
}
