// Package logging configures the process-wide go-log root logger and
// hands out name-tagged loggers for executors and subsystems, the way
// the teacher's reference redis client uses github.com/rsms/go-log.
package logging

import (
	"os"
	"strings"

	log "github.com/rsms/go-log"
)

// Configure sets the root logger's level and writer once at process
// startup, from the server config's log level string.
func Configure(level string) {
	log.RootLogger.SetWriter(os.Stderr)
	switch strings.ToLower(level) {
	case "debug":
		log.RootLogger.Level = log.LevelDebug
	case "warn", "warning":
		log.RootLogger.Level = log.LevelWarn
	case "error":
		log.RootLogger.Level = log.LevelError
	default:
		log.RootLogger.Level = log.LevelInfo
	}
}

// Tagged is a name-prefixed logger: every message is prefixed with
// "[name] " so log lines from different executors/subsystems are easy
// to tell apart without a structured-logging dependency the rest of
// the stack doesn't otherwise need.
type Tagged struct{ prefix string }

// Tag returns a logger that prefixes every message with name.
func Tag(name string) Tagged { return Tagged{prefix: "[" + name + "] "} }

func (t Tagged) Debug(format string, args ...any) { log.Debug(t.prefix+format, args...) }
func (t Tagged) Info(format string, args ...any)  { log.Info(t.prefix+format, args...) }
func (t Tagged) Warn(format string, args ...any)  { log.Warn(t.prefix+format, args...) }
func (t Tagged) Error(format string, args ...any) { log.Error(t.prefix+format, args...) }

// Sync flushes the root logger, for use before process exit.
func Sync() { log.Sync() }
