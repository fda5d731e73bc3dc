package main

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger creates the command logger writing to w and, when a log file
// is configured, to a rotated file. The returned closer releases the file.
func NewLogger(c LogConfig, w io.Writer) (*logrus.Logger, io.Closer, error) {
	l := logrus.New()
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}
	l.SetLevel(level)

	switch c.Format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"})
	case "text", "":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, nil, fmt.Errorf("log format %q: expect text or json", c.Format)
	}

	var closer io.Closer = nopCloser{}
	if c.File != "" {
		file := &lumberjack.Logger{
			Filename:   c.File,
			MaxSize:    c.MaxSize,
			MaxBackups: c.MaxBackups,
			MaxAge:     c.MaxAge,
			Compress:   c.Compress,
		}
		w = io.MultiWriter(w, file)
		closer = file
	}
	l.SetOutput(w)
	return l, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
