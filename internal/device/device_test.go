package device

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"adeelasgher847/attendance-agent/internal/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestManager(t *testing.T) *DeviceManager {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "device.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewDeviceManager(db.DB, zap.NewNop())
}

func TestResolve_ConfiguredWins(t *testing.T) {
	dm := newTestManager(t)
	dm.platform = func() (string, error) { return "machine-1", nil }

	id, err := dm.Resolve(context.Background(), "configured", "laptop")
	require.NoError(t, err)
	assert.Equal(t, "configured", id)

	stored, err := dm.stored(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "configured", stored)
}

func TestResolve_StoredIsStable(t *testing.T) {
	dm := newTestManager(t)
	dm.platform = func() (string, error) { return "machine-1", nil }

	first, err := dm.Resolve(context.Background(), "", "laptop")
	require.NoError(t, err)
	assert.Equal(t, "machine-1", first)

	dm.platform = func() (string, error) { return "machine-2", nil }
	second, err := dm.Resolve(context.Background(), "", "laptop")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolve_FallsBackToUUID(t *testing.T) {
	dm := newTestManager(t)
	dm.platform = func() (string, error) { return "", errors.New("no id") }

	id, err := dm.Resolve(context.Background(), "", "")
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)
}

func TestFirstValue(t *testing.T) {
	assert.Equal(t, "4C4C4544-0042", firstValue("UUID  \r\n4C4C4544-0042  \r\n\r\n", "UUID"))
	assert.Empty(t, firstValue("UUID\n", "UUID"))
}
