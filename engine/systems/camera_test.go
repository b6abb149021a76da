package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lume/engine/renderer/components"
)

func TestCameraSystemAcquireSharesInstances(t *testing.T) {
	cs, err := NewCameraSystem(&CameraSystemConfig{MaxCameraCount: 2})
	require.NoError(t, err)

	first, err := cs.Acquire("world")
	require.NoError(t, err)
	second, err := cs.Acquire("world")
	require.NoError(t, err)
	assert.Same(t, first, second)

	other, err := cs.Acquire("capture")
	require.NoError(t, err)
	assert.NotSame(t, first, other)
}

func TestCameraSystemReleaseFreesSlot(t *testing.T) {
	cs, err := NewCameraSystem(&CameraSystemConfig{MaxCameraCount: 1})
	require.NoError(t, err)

	_, err = cs.Acquire("world")
	require.NoError(t, err)

	// The only slot is taken.
	_, err = cs.Acquire("capture")
	assert.Error(t, err)

	cs.Release("world")
	_, err = cs.Acquire("capture")
	assert.NoError(t, err)
}

func TestCameraSystemDefaultCamera(t *testing.T) {
	cs, err := NewCameraSystem(&CameraSystemConfig{MaxCameraCount: 1})
	require.NoError(t, err)

	def, err := cs.Acquire(components.DEFAULT_CAMERA_NAME)
	require.NoError(t, err)
	assert.Same(t, cs.GetDefault(), def)

	// Releasing the default is ignored; it stays usable.
	cs.Release(components.DEFAULT_CAMERA_NAME)
	assert.Same(t, def, cs.GetDefault())
}

func TestNewCameraSystemRejectsZeroCapacity(t *testing.T) {
	_, err := NewCameraSystem(&CameraSystemConfig{MaxCameraCount: 0})
	assert.Error(t, err)
}
