//go:build windows

package platform

import (
	"os/exec"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procQueryPerformanceCounter   = kernel32.NewProc("QueryPerformanceCounter")
	procQueryPerformanceFrequency = kernel32.NewProc("QueryPerformanceFrequency")
)

type windowsImpl struct {
	frequency int64 // counts per second, 0 if unavailable
}

func newWindowsPlatform() (Platform, error) {
	p := &windowsImpl{}
	var freq int64
	if r, _, _ := procQueryPerformanceFrequency.Call(uintptr(unsafe.Pointer(&freq))); r != 0 && freq > 0 {
		p.frequency = freq
	}
	return p, nil
}

// Monotonic uses the performance counter, which Windows guarantees does not
// follow system time changes
func (p *windowsImpl) Monotonic() time.Duration {
	if p.frequency == 0 {
		return runtimeMonotonic()
	}
	var counter int64
	if r, _, _ := procQueryPerformanceCounter.Call(uintptr(unsafe.Pointer(&counter))); r == 0 {
		return runtimeMonotonic()
	}
	secs := counter / p.frequency
	rem := counter % p.frequency
	return time.Duration(secs)*time.Second + time.Duration(rem)*time.Second/time.Duration(p.frequency)
}

func (p *windowsImpl) GetSystemInfo() (*SystemInfo, error) {
	return systemInfo(), nil
}

func (p *windowsImpl) OpenBrowser(url string) error {
	// The empty title argument is required by cmd.exe's start
	cmd := exec.Command("cmd", "/c", "start", "", url)
	return cmd.Start()
}

func newLinuxPlatform() (Platform, error) {
	return nil, &UnsupportedPlatformError{OS: "linux (building for windows)"}
}

func newDarwinPlatform() (Platform, error) {
	return nil, &UnsupportedPlatformError{OS: "darwin (building for windows)"}
}
