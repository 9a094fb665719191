// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package telemetry

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	defaultLogger *logrus.Logger
	once          sync.Once
)

// Init initializes the default logger, writing structured (JSON) log
// lines to stdout and, if logFile is non-empty, also appending them to
// logFile. Safe to call from multiple workers; only the first call's
// logFile takes effect.
func Init(logFile string) (*logrus.Logger, error) {
	var err error
	once.Do(func() {
		defaultLogger, err = newLogger(logFile)
	})
	return defaultLogger, err
}

func newLogger(logFile string) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if logFile == "" {
		logger.SetOutput(os.Stdout)
		return logger, nil
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return nil, err
	}
	logger.SetOutput(io.MultiWriter(os.Stdout, file))
	return logger, nil
}

// GetDefault returns the default logger, initializing a stdout-only one
// if Init was never called — the same "always have a working logger"
// guarantee the teacher's package-level GetDefault provides.
func GetDefault() *logrus.Logger {
	if defaultLogger == nil {
		logger, _ := Init("")
		return logger
	}
	return defaultLogger
}
