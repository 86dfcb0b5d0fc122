// Package logging builds the process logger.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/mind-engage/mindengage-trainer/internal/config"
)

// New returns a JSON logger online and a text logger offline. An unknown
// LOG_LEVEL falls back to info.
func New(cfg config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if cfg.Mode == config.ModeOnline {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	lvl, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}
