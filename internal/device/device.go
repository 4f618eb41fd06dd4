package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DeviceManager resolves the identifier sent as X-Device-ID and keeps it
// stable across restarts in the device_info table
type DeviceManager struct {
	db       *sql.DB
	platform func() (string, error)
	logger   *zap.Logger
}

// NewDeviceManager creates a new device manager
func NewDeviceManager(db *sql.DB, logger *zap.Logger) *DeviceManager {
	dm := &DeviceManager{db: db, logger: logger}
	dm.platform = dm.getPlatformDeviceID
	return dm
}

// Resolve returns the configured id when set, else the stored id, else a
// platform id, else a new UUID. Whatever is chosen is stored.
func (dm *DeviceManager) Resolve(ctx context.Context, configuredID, name string) (string, error) {
	if configuredID != "" {
		return configuredID, dm.store(ctx, configuredID, name)
	}

	stored, err := dm.stored(ctx)
	if err != nil {
		return "", err
	}
	if stored != "" {
		return stored, nil
	}

	deviceID, err := dm.platform()
	if err != nil || deviceID == "" {
		dm.logger.Debug("No platform device id, generating one", zap.Error(err))
		deviceID = uuid.NewString()
	}

	if err := dm.store(ctx, deviceID, name); err != nil {
		return "", err
	}
	dm.logger.Info("Device registered locally", zap.String("device_id", deviceID))
	return deviceID, nil
}

func (dm *DeviceManager) stored(ctx context.Context) (string, error) {
	var deviceID string
	err := dm.db.QueryRowContext(ctx, `SELECT device_id FROM device_info WHERE id = 1`).Scan(&deviceID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read device id: %w", err)
	}
	return deviceID, nil
}

func (dm *DeviceManager) store(ctx context.Context, deviceID, name string) error {
	_, err := dm.db.ExecContext(ctx, `
		INSERT INTO device_info (id, device_id, device_name) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET device_id = excluded.device_id, device_name = excluded.device_name
	`, deviceID, name)
	if err != nil {
		return fmt.Errorf("failed to store device id: %w", err)
	}
	return nil
}

// getPlatformDeviceID gets a platform-specific device identifier
func (dm *DeviceManager) getPlatformDeviceID() (string, error) {
	switch runtime.GOOS {
	case "windows":
		return getWindowsDeviceID()
	case "darwin":
		return getDarwinDeviceID()
	case "linux":
		return getLinuxDeviceID()
	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// getWindowsDeviceID reads the SMBIOS UUID
func getWindowsDeviceID() (string, error) {
	output, err := exec.Command("wmic", "csproduct", "get", "uuid").Output()
	if err == nil {
		if id := firstValue(string(output), "UUID"); len(id) > 10 {
			return id, nil
		}
	}
	return hostnameID("windows")
}

// getDarwinDeviceID reads the hardware UUID
func getDarwinDeviceID() (string, error) {
	output, err := exec.Command("system_profiler", "SPHardwareDataType").Output()
	if err == nil {
		for _, line := range strings.Split(string(output), "\n") {
			if strings.Contains(line, "Hardware UUID") {
				if parts := strings.SplitN(line, ":", 2); len(parts) == 2 {
					return strings.TrimSpace(parts[1]), nil
				}
			}
		}
	}
	return hostnameID("darwin")
}

func getLinuxDeviceID() (string, error) {
	for _, path := range []string{"/etc/machine-id", "/var/lib/dbus/machine-id"} {
		machineID, err := os.ReadFile(path)
		if err == nil && len(strings.TrimSpace(string(machineID))) > 0 {
			return strings.TrimSpace(string(machineID)), nil
		}
	}
	return hostnameID("linux")
}

func firstValue(output, header string) string {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && line != header {
			return line
		}
	}
	return ""
}

func hostnameID(prefix string) (string, error) {
	hostname, err := os.Hostname()
	if err == nil && hostname != "" {
		return prefix + "-" + hostname, nil
	}
	return "", fmt.Errorf("could not determine %s device ID", prefix)
}
