package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	cases := []struct {
		level, format string
		wantErr       bool
	}{
		{"info", "json", false},
		{"DEBUG", "console", false},
		{"warn", "", false},
		{"loud", "json", true},
		{"info", "xml", true},
	}
	for _, c := range cases {
		log, err := New(c.level, c.format)
		if c.wantErr {
			assert.Error(t, err, "level=%s format=%s", c.level, c.format)
			continue
		}
		require.NoError(t, err, "level=%s format=%s", c.level, c.format)
		assert.NotNil(t, log.Logger)
	}
}

func TestNew_LevelApplied(t *testing.T) {
	log, err := New("warn", "json")
	require.NoError(t, err)

	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
}
