// Package logging provides the standard library log.Logger-backed
// implementation of application.Logger.
package logging

import (
	"io"
	"log"

	"iotscp/internal/application"
)

// LogLogger wraps a standard library *log.Logger behind application.Logger.
type LogLogger struct {
	logger *log.Logger
}

// New builds a LogLogger writing to out with the given level prefix.
func New(out io.Writer, level string) application.Logger {
	prefix := ""
	if level != "" {
		prefix = "[" + level + "] "
	}
	return &LogLogger{logger: log.New(out, prefix, log.LstdFlags)}
}

func (l *LogLogger) Printf(format string, v ...any) {
	l.logger.Printf(format, v...)
}
