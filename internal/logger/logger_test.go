package logger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-msgform/internal/logger"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *logger.Config
		enabled zapcore.Level
		muted   zapcore.Level
	}{
		{"Defaults", nil, zapcore.WarnLevel, zapcore.InfoLevel},
		{"DebugConsole", &logger.Config{Level: "debug", Format: "console"}, zapcore.DebugLevel, zapcore.DebugLevel - 1},
		{"InfoJSON", &logger.Config{Level: "info", Format: "json"}, zapcore.InfoLevel, zapcore.DebugLevel},
		{"UpperCase", &logger.Config{Level: "ERROR"}, zapcore.ErrorLevel, zapcore.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := logger.New(tt.cfg)
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.enabled))
			assert.False(t, l.Core().Enabled(tt.muted))
		})
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := logger.New(&logger.Config{Level: "chatty"})
	assert.Error(t, err)
}
