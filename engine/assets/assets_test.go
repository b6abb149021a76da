package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lume/engine/core"
	"github.com/spaghettifunk/lume/engine/renderer/metadata"
)

func newTestManager(t *testing.T, events *core.EventSystem) (*AssetManager, string) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "materials"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "techniques"), 0o755))

	am, err := NewAssetManager(dir, events)
	require.NoError(t, err)
	require.NoError(t, am.Initialize())
	t.Cleanup(func() { am.Shutdown() })
	return am, dir
}

func TestLoadAssetResolvesMaterialName(t *testing.T) {
	am, dir := newTestManager(t, core.NewEventSystem())

	content := "name = stone\ntechnique = Builtin.Diffuse\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "materials", "stone.amt"), []byte(content), 0o644))

	resource, err := am.LoadAsset("stone", metadata.ResourceTypeMaterial, nil)
	require.NoError(t, err)
	assert.Equal(t, "stone", resource.Name)

	config, ok := resource.Data.(*metadata.MaterialConfig)
	require.True(t, ok)
	assert.Equal(t, "stone", config.Name)
}

func TestLoadAssetUnknownType(t *testing.T) {
	am, _ := newTestManager(t, core.NewEventSystem())

	_, err := am.LoadAsset("anything", metadata.ResourceTypeBinary, nil)
	assert.Error(t, err)
}

func TestLoadAssetMissingFile(t *testing.T) {
	am, _ := newTestManager(t, core.NewEventSystem())

	_, err := am.LoadAsset("ghost", metadata.ResourceTypeMaterial, nil)
	assert.Error(t, err)
}

func TestUnloadAssetClearsData(t *testing.T) {
	am, dir := newTestManager(t, core.NewEventSystem())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "materials", "tmp.amt"), []byte("name = tmp\n"), 0o644))
	resource, err := am.LoadAsset("tmp", metadata.ResourceTypeMaterial, nil)
	require.NoError(t, err)

	require.NoError(t, am.UnloadAsset(resource))
	assert.Nil(t, resource.Data)
}

func TestHandleFileEventFiresReloadForKnownAssets(t *testing.T) {
	events := core.NewEventSystem()
	am, dir := newTestManager(t, events)

	var reloads []*ReloadEvent
	events.Register(core.EVENT_CODE_ASSET_RELOADED, func(context core.EventContext) {
		if re, ok := context.Data.(*ReloadEvent); ok {
			reloads = append(reloads, re)
		}
	})

	path := filepath.Join(dir, "techniques", "Probe.toml")

	// First sighting indexes the asset without firing.
	am.handleFileEvent(path)
	assert.Empty(t, reloads)

	// A second change means a reload.
	am.handleFileEvent(path)
	require.Len(t, reloads, 1)
	assert.Equal(t, "Probe", reloads[0].Name)
	assert.Equal(t, metadata.ResourceTypeTechnique, reloads[0].Type)
}

func TestHandleFileEventIgnoresUnknownExtensions(t *testing.T) {
	events := core.NewEventSystem()
	am, dir := newTestManager(t, events)

	fired := false
	events.Register(core.EVENT_CODE_ASSET_RELOADED, func(core.EventContext) { fired = true })

	path := filepath.Join(dir, "notes.txt")
	am.handleFileEvent(path)
	am.handleFileEvent(path)
	assert.False(t, fired)
}

func TestShutdownIsIdempotent(t *testing.T) {
	am, _ := newTestManager(t, core.NewEventSystem())

	require.NoError(t, am.Shutdown())
	require.NoError(t, am.Shutdown())
}
