package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lume/engine/assets"
	"github.com/spaghettifunk/lume/engine/core"
	"github.com/spaghettifunk/lume/engine/renderer/software"
)

// newTestSystems stands up the full system stack on the software
// backend with an empty asset directory.
func newTestSystems(t *testing.T) *SystemManager {
	t.Helper()

	rendererSystem, err := NewRendererSystem(&RendererSystemConfig{
		ApplicationName: "systems-test",
		Width:           64,
		Height:          64,
	}, software.New())
	require.NoError(t, err)

	events := core.NewEventSystem()
	assetManager, err := assets.NewAssetManager(t.TempDir(), events)
	require.NoError(t, err)
	require.NoError(t, assetManager.Initialize())

	manager, err := NewSystemManager(rendererSystem, assetManager)
	require.NoError(t, err)
	require.NoError(t, manager.Initialize())

	t.Cleanup(func() {
		require.NoError(t, manager.Shutdown())
		require.NoError(t, assetManager.Shutdown())
		events.Shutdown()
	})

	return manager
}

func TestSystemManagerWiresEverySubsystem(t *testing.T) {
	manager := newTestSystems(t)

	assert.NotNil(t, manager.CameraSystem)
	assert.NotNil(t, manager.GeometrySystem)
	assert.NotNil(t, manager.JobSystem)
	assert.NotNil(t, manager.MaterialSystem)
	assert.NotNil(t, manager.RendererSystem)
	assert.NotNil(t, manager.TechniqueSystem)
	assert.NotNil(t, manager.TextureSystem)
	assert.NotNil(t, manager.AssetManager)
}

func TestSystemManagerProvidesDefaults(t *testing.T) {
	manager := newTestSystems(t)

	defaultTexture := manager.TextureSystem.GetDefaultTexture()
	require.NotNil(t, defaultTexture)
	assert.NotNil(t, defaultTexture.InternalData, "default texture should be uploaded to the backend")

	defaultMaterial := manager.MaterialSystem.GetDefault()
	require.NotNil(t, defaultMaterial)
	assert.NotNil(t, defaultMaterial.Technique)
	assert.NotNil(t, defaultMaterial.DiffuseMap)

	defaultGeometry := manager.GeometrySystem.GetDefault()
	require.NotNil(t, defaultGeometry)
	assert.Same(t, defaultMaterial, defaultGeometry.Material)

	assert.NotNil(t, manager.CameraSystem.GetDefault())
	assert.NotNil(t, manager.TechniqueSystem.GetDefault())
	assert.NotNil(t, manager.TechniqueSystem.GetDefaultNoTexture())
}
