package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/mind-engage/mindengage-trainer/internal/config"
)

func TestNew(t *testing.T) {
	l := New(config.Config{Mode: config.ModeOnline, LogLevel: "debug"})
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, l.Formatter)

	l = New(config.Config{Mode: config.ModeOffline, LogLevel: "nonsense"})
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, l.Formatter)
}
