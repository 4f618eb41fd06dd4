package platform

import (
	"os"
	"time"
)

// processStart anchors the fallback monotonic clock; time.Since on it reads
// the runtime's monotonic clock rather than the wall clock.
var processStart = time.Now()

func runtimeMonotonic() time.Duration {
	return time.Since(processStart)
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "unknown-device"
	}
	return name
}
