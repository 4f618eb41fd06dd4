package platform

import "time"

// Platform defines the OS services the agent relies on
type Platform interface {
	// Monotonic returns a reading of a clock that only moves forward and is not
	// affected by changes to the system date or time. Only differences between
	// readings are meaningful.
	Monotonic() time.Duration

	// GetSystemInfo returns system information
	GetSystemInfo() (*SystemInfo, error)

	// OpenBrowser opens the default browser with the given URL
	OpenBrowser(url string) error
}

// SystemInfo contains system information
type SystemInfo struct {
	OS       string
	Arch     string
	Hostname string
}
