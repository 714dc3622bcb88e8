// Package logger configures the process-wide logrus logger.
package logger

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	defaultLogger *logrus.Logger
	once          sync.Once
)

// Init sets the level ("debug", "info", "warn", "error") and output format
// of the shared logger. Unknown levels fall back to info.
func Init(level string, json bool) {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(parseLevel(level))
	if json {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	defaultLogger = l
}

func parseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// Get returns the shared logger, initializing it with defaults on first use.
func Get() *logrus.Logger {
	once.Do(func() {
		if defaultLogger == nil {
			Init("info", false)
		}
	})
	return defaultLogger
}

// With returns an entry carrying the given fields.
func With(fields logrus.Fields) *logrus.Entry {
	return Get().WithFields(fields)
}
