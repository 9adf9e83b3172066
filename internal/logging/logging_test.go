package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"ERROR", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		for _, json := range []bool{false, true} {
			logger, err := New(Config{Level: tt.level, JSON: json})
			require.NoError(t, err, "level %q", tt.level)
			assert.True(t, logger.Core().Enabled(tt.want), "level %q", tt.level)
			if tt.want > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.want-1), "level %q", tt.level)
			}
		}
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "chatty"})
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	assert.False(t, Nop().Core().Enabled(zapcore.ErrorLevel))
}
