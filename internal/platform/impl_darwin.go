//go:build darwin

package platform

import (
	"os/exec"
	"time"
)

type darwinImpl struct{}

func newDarwinPlatform() (Platform, error) {
	return &darwinImpl{}, nil
}

func (p *darwinImpl) Monotonic() time.Duration {
	return runtimeMonotonic()
}

func (p *darwinImpl) GetSystemInfo() (*SystemInfo, error) {
	return systemInfo(), nil
}

func (p *darwinImpl) OpenBrowser(url string) error {
	return exec.Command("open", url).Start()
}

func newLinuxPlatform() (Platform, error) {
	return nil, &UnsupportedPlatformError{OS: "linux (building for darwin)"}
}

func newWindowsPlatform() (Platform, error) {
	return nil, &UnsupportedPlatformError{OS: "windows (building for darwin)"}
}
