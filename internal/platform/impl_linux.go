//go:build linux

package platform

import (
	"fmt"
	"os/exec"
	"time"

	"golang.org/x/sys/unix"
)

type linuxImpl struct{}

func newLinuxPlatform() (Platform, error) {
	return &linuxImpl{}, nil
}

// Monotonic reads CLOCK_MONOTONIC directly, falling back to the runtime clock
// if the call fails
func (p *linuxImpl) Monotonic() time.Duration {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return runtimeMonotonic()
	}
	return time.Duration(ts.Nano())
}

func (p *linuxImpl) GetSystemInfo() (*SystemInfo, error) {
	return systemInfo(), nil
}

func (p *linuxImpl) OpenBrowser(url string) error {
	browsers := []string{"xdg-open", "x-www-browser", "firefox", "google-chrome", "chromium"}
	for _, browser := range browsers {
		cmd := exec.Command(browser, url)
		if err := cmd.Start(); err == nil {
			return nil
		}
	}
	return fmt.Errorf("no browser found")
}

func newDarwinPlatform() (Platform, error) {
	return nil, &UnsupportedPlatformError{OS: "darwin (building for linux)"}
}

func newWindowsPlatform() (Platform, error) {
	return nil, &UnsupportedPlatformError{OS: "windows (building for linux)"}
}
