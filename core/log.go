// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

// NewLogger creates the engine logger. Unknown levels fall back to info.
func NewLogger(cfg LogConfiguration, out io.Writer) *log.Logger {
	if out == nil {
		out = os.Stderr
	}
	logger := log.New()
	logger.SetOutput(out)
	logger.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// Component returns a logger tagged with the component name
func Component(logger log.FieldLogger, name string) log.FieldLogger {
	if logger == nil {
		l := log.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return logger.WithField("component", name)
}
