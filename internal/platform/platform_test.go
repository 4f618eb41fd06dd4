package platform

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlatform_MonotonicAdvances(t *testing.T) {
	switch runtime.GOOS {
	case "linux", "darwin", "windows":
	default:
		t.Skip("no platform implementation for " + runtime.GOOS)
	}

	p, err := NewPlatform()
	require.NoError(t, err)

	first := p.Monotonic()
	time.Sleep(5 * time.Millisecond)
	second := p.Monotonic()

	assert.GreaterOrEqual(t, second-first, 4*time.Millisecond)
}

func TestNewPlatform_SystemInfo(t *testing.T) {
	switch runtime.GOOS {
	case "linux", "darwin", "windows":
	default:
		t.Skip("no platform implementation for " + runtime.GOOS)
	}

	p, err := NewPlatform()
	require.NoError(t, err)

	info, err := p.GetSystemInfo()
	require.NoError(t, err)
	assert.Equal(t, runtime.GOOS, info.OS)
	assert.NotEmpty(t, info.Hostname)
}
