package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lume/engine/core"
)

func TestLoadApplicationConfigReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lume.toml")
	content := `
name = "baker"
width = 640
height = 480
asset_path = "data/assets"
output_path = "data/out"
catalog_path = "data/bakes.db"
log_level = "debug"
max_frames = 120
frame_cap = 30
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := LoadApplicationConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "baker", config.Name)
	assert.Equal(t, uint32(640), config.StartWidth)
	assert.Equal(t, uint32(480), config.StartHeight)
	assert.Equal(t, "data/assets", config.AssetPath)
	assert.Equal(t, "data/out", config.OutputPath)
	assert.Equal(t, "data/bakes.db", config.CatalogPath)
	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, uint64(120), config.MaxFrames)
	assert.Equal(t, uint32(30), config.FrameCap)
}

func TestLoadApplicationConfigMissingFileUsesDefaults(t *testing.T) {
	config, err := LoadApplicationConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultApplicationConfig(), config)
}

func TestLoadApplicationConfigPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lume.toml")
	require.NoError(t, os.WriteFile(path, []byte("name = \"partial\"\n"), 0o644))

	config, err := LoadApplicationConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "partial", config.Name)
	assert.Equal(t, uint32(1280), config.StartWidth)
	assert.Equal(t, "assets", config.AssetPath)
	assert.Equal(t, "output", config.OutputPath)
}

func TestLoadApplicationConfigRejectsBadInput(t *testing.T) {
	dir := t.TempDir()

	malformed := filepath.Join(dir, "broken.toml")
	require.NoError(t, os.WriteFile(malformed, []byte("name = [unclosed"), 0o644))
	_, err := LoadApplicationConfig(malformed)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.toml")
	require.NoError(t, os.WriteFile(invalid, []byte("width = 0\n"), 0o644))
	_, err = LoadApplicationConfig(invalid)
	assert.Error(t, err)
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	_, err = New(&Game{})
	assert.Error(t, err)

	config := DefaultApplicationConfig()
	config.StartWidth = 0
	_, err = New(&Game{ApplicationConfig: config})
	assert.Error(t, err)
}

func testConfig(t *testing.T) *ApplicationConfig {
	t.Helper()
	dir := t.TempDir()
	config := DefaultApplicationConfig()
	config.Name = "engine-test"
	config.StartWidth = 64
	config.StartHeight = 64
	config.AssetPath = filepath.Join(dir, "assets")
	config.OutputPath = filepath.Join(dir, "out")
	return config
}

func TestEngineLifecycle(t *testing.T) {
	config := testConfig(t)
	config.MaxFrames = 3

	initialized := 0
	updates := 0
	renders := 0
	resizes := 0
	game := &Game{
		ApplicationConfig: config,
		FnInitialize:      func() error { initialized++; return nil },
		FnUpdate:          func(float64) error { updates++; return nil },
		FnRender:          func(float64) error { renders++; return nil },
		FnOnResize:        func(uint32, uint32) error { resizes++; return nil },
	}

	e, err := New(game)
	require.NoError(t, err)
	assert.Equal(t, EngineStageUninitialized, e.Stage())
	require.NotNil(t, game.SystemManager)
	require.NotNil(t, game.Scene)
	require.NotNil(t, game.Events)

	frameEnded := 0
	game.Events.Register(core.EVENT_CODE_FRAME_ENDED, func(core.EventContext) { frameEnded++ })

	require.NoError(t, e.Initialize())
	assert.Equal(t, EngineStageInitialized, e.Stage())
	assert.Equal(t, 1, initialized)
	assert.Equal(t, 1, resizes)
	assert.DirExists(t, config.OutputPath)

	require.NoError(t, e.Run())
	assert.Equal(t, 3, updates)
	assert.Equal(t, 3, renders)
	assert.Equal(t, 3, frameEnded)
	assert.Equal(t, EngineStageInitialized, e.Stage())

	require.NoError(t, e.Shutdown())
	assert.Equal(t, EngineStageShuttingDown, e.Stage())
}

func TestEngineDoubleInitializeFails(t *testing.T) {
	game := &Game{ApplicationConfig: testConfig(t)}
	e, err := New(game)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	assert.Error(t, e.Initialize())
	require.NoError(t, e.Shutdown())
}

func TestEngineRunRequiresInitialize(t *testing.T) {
	game := &Game{ApplicationConfig: testConfig(t)}
	e, err := New(game)
	require.NoError(t, err)
	assert.Error(t, e.Run())
}

func TestEngineQuitEventStopsRun(t *testing.T) {
	config := testConfig(t)

	updates := 0
	game := &Game{ApplicationConfig: config}
	game.FnUpdate = func(float64) error {
		updates++
		if updates == 2 {
			game.Events.Fire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
		}
		return nil
	}

	e, err := New(game)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	require.NoError(t, e.Run())
	assert.Equal(t, 2, updates)
	require.NoError(t, e.Shutdown())
}

func TestEngineUpdateErrorStopsRun(t *testing.T) {
	config := testConfig(t)

	updates := 0
	game := &Game{
		ApplicationConfig: config,
		FnUpdate: func(float64) error {
			updates++
			if updates == 2 {
				return assert.AnError
			}
			return nil
		},
	}

	e, err := New(game)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	assert.ErrorIs(t, e.Run(), assert.AnError)
	assert.Equal(t, 2, updates)
	require.NoError(t, e.Shutdown())
}

func TestEngineRunFramesSteps(t *testing.T) {
	config := testConfig(t)

	updates := 0
	game := &Game{
		ApplicationConfig: config,
		FnUpdate:          func(float64) error { updates++; return nil },
	}

	e, err := New(game)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())

	require.NoError(t, e.RunFrames(2))
	assert.Equal(t, 2, updates)
	assert.Equal(t, EngineStageInitialized, e.Stage())

	require.NoError(t, e.RunFrames(3))
	assert.Equal(t, 5, updates)
	assert.Equal(t, uint64(0), config.MaxFrames)

	require.NoError(t, e.Shutdown())
}

func TestEngineResize(t *testing.T) {
	config := testConfig(t)

	var resizedTo [2]uint32
	resizes := 0
	game := &Game{
		ApplicationConfig: config,
		FnOnResize: func(w, h uint32) error {
			resizes++
			resizedTo = [2]uint32{w, h}
			return nil
		},
	}

	e, err := New(game)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	assert.Equal(t, 1, resizes)

	var eventPayload [2]uint32
	game.Events.Register(core.EVENT_CODE_RESIZED, func(context core.EventContext) {
		eventPayload = context.Data.([2]uint32)
	})

	require.NoError(t, e.Resize(128, 96))
	assert.Equal(t, 2, resizes)
	assert.Equal(t, [2]uint32{128, 96}, resizedTo)
	assert.Equal(t, [2]uint32{128, 96}, eventPayload)
	assert.Equal(t, uint32(128), game.SystemManager.RendererSystem.FramebufferWidth)
	assert.Equal(t, uint32(96), game.SystemManager.RendererSystem.FramebufferHeight)

	w, h := e.FramebufferSize()
	assert.Equal(t, uint32(128), w)
	assert.Equal(t, uint32(96), h)

	// Degenerate and redundant sizes are ignored.
	require.NoError(t, e.Resize(0, 96))
	require.NoError(t, e.Resize(128, 96))
	assert.Equal(t, 2, resizes)

	require.NoError(t, e.Shutdown())
}
