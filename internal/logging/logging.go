// Package logging configures the launcher's logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init parses level and wires a logger that writes to console and, when
// logPath is set, to a rotated file. The returned closer releases the file.
func Init(level, logPath string, console io.Writer) (*log.Logger, io.Closer, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing log level %q: %w", level, err)
	}

	logger := log.New()
	logger.SetLevel(lvl)
	logger.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})

	if console == nil {
		console = io.Discard
	}

	if logPath == "" || logPath == "console" {
		logger.SetOutput(console)
		return logger, nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, nil, fmt.Errorf("ensure log directory: %w", err)
	}

	rotated := &lumberjack.Logger{
		Filename:   filepath.ToSlash(logPath),
		MaxSize:    5, // MB
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	logger.SetOutput(io.MultiWriter(console, rotated))
	return logger, rotated, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
