package testbed

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lume/engine"
	"github.com/spaghettifunk/lume/engine/scene"
)

// The demo runs end to end against the repository's real asset files.
func TestBakeGameRunsToCompletion(t *testing.T) {
	outDir := t.TempDir()

	config := engine.DefaultApplicationConfig()
	config.Name = "testbed-test"
	config.StartWidth = 64
	config.StartHeight = 64
	config.AssetPath = filepath.Join("..", "assets")
	config.OutputPath = outDir
	config.CatalogPath = filepath.Join(outDir, "bakes.db")
	config.LogLevel = "error"
	// Safety net so a stuck queue cannot hang the test.
	config.MaxFrames = 60

	game := NewBakeGame(config)

	e, err := engine.New(game.Game)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	require.NoError(t, e.Run())

	state := game.State.(*gameState)
	require.NotNil(t, state.queue)
	assert.True(t, state.queue.Drained())
	assert.True(t, state.quitting)

	var meshNodes []*scene.Node
	for _, node := range game.Scene.Root().Children() {
		if _, ok := scene.GetComponent[*scene.StaticMesh](node); ok {
			meshNodes = append(meshNodes, node)
		}
	}
	require.Len(t, meshNodes, len(demoMeshes))

	for _, node := range meshNodes {
		assert.FileExists(t, filepath.Join(outDir, fmt.Sprintf("node%d_bake.png", node.ID())))
		// The bake component detached itself when its capture finished.
		assert.Len(t, node.Components(), 1)
		mesh, ok := scene.GetComponent[*scene.StaticMesh](node)
		require.True(t, ok)
		assert.Equal(t, scene.ViewMaskNormal, mesh.ViewMask())
	}

	records, err := state.catalog.Recent(10)
	require.NoError(t, err)
	assert.Len(t, records, len(demoMeshes))

	game.Close()
	require.NoError(t, e.Shutdown())
}

func TestBakeGameFailsWithoutMaterials(t *testing.T) {
	config := engine.DefaultApplicationConfig()
	config.Name = "testbed-missing-assets"
	config.StartWidth = 64
	config.StartHeight = 64
	config.AssetPath = t.TempDir()
	config.OutputPath = t.TempDir()

	game := NewBakeGame(config)

	e, err := engine.New(game.Game)
	require.NoError(t, err)
	assert.Error(t, e.Initialize())
	game.Close()
	require.NoError(t, e.Shutdown())
}
