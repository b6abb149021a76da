package baking

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lume/engine/renderer/metadata"
	"github.com/spaghettifunk/lume/engine/scene"
)

func TestBakeQueueProcessesSequentially(t *testing.T) {
	env := newBakeEnv(t)
	nodes := []*scene.Node{
		env.addCubeNode(t, "floor", metadata.DefaultTechniqueName),
		env.addCubeNode(t, "crate", metadata.DefaultTechniqueName),
		env.addCubeNode(t, "wall", metadata.DefaultNoTextureTechniqueName),
	}

	outDir := t.TempDir()
	queue := NewBakeQueue(env.hosts, 8, outDir, 64)
	t.Cleanup(queue.Shutdown)

	for _, node := range nodes {
		require.NoError(t, queue.Enqueue(node))
	}

	// The first bake starts immediately, the rest wait their turn.
	assert.False(t, queue.Drained())
	assert.Equal(t, 2, queue.Pending())
	assert.Equal(t, 1, env.manager.RendererSystem.SurfaceCount())
	assert.Len(t, nodes[0].Components(), 2)

	env.runFrame(t)

	// First node finished and was detached, the second is capturing.
	assert.Len(t, nodes[0].Components(), 1)
	assert.Equal(t, 1, queue.Pending())
	assert.Equal(t, 1, env.manager.RendererSystem.SurfaceCount())
	assert.False(t, queue.Drained())

	env.runFrame(t)
	env.runFrame(t)

	assert.True(t, queue.Drained())
	assert.Equal(t, 0, env.manager.RendererSystem.SurfaceCount())
	for _, node := range nodes {
		assert.Len(t, node.Components(), 1)
		assert.FileExists(t, filepath.Join(outDir, fmt.Sprintf("node%d_bake.png", node.ID())))
	}
}

func TestBakeQueueSkipsUnrenderableNodes(t *testing.T) {
	env := newBakeEnv(t)
	bare := env.scene.CreateChild("bare")
	good := env.addCubeNode(t, "good", metadata.DefaultTechniqueName)

	outDir := t.TempDir()
	queue := NewBakeQueue(env.hosts, 8, outDir, 64)
	t.Cleanup(queue.Shutdown)

	require.NoError(t, queue.Enqueue(bare))
	require.NoError(t, queue.Enqueue(good))

	assert.Equal(t, 0, queue.Pending())
	assert.False(t, queue.Drained())

	env.runFrame(t)

	assert.True(t, queue.Drained())
	assert.FileExists(t, filepath.Join(outDir, fmt.Sprintf("node%d_bake.png", good.ID())))
	assert.NoFileExists(t, filepath.Join(outDir, fmt.Sprintf("node%d_bake.png", bare.ID())))
}

func TestBakeQueueCapacity(t *testing.T) {
	env := newBakeEnv(t)
	first := env.addCubeNode(t, "a", metadata.DefaultTechniqueName)
	second := env.addCubeNode(t, "b", metadata.DefaultTechniqueName)
	third := env.addCubeNode(t, "c", metadata.DefaultTechniqueName)
	fourth := env.addCubeNode(t, "d", metadata.DefaultTechniqueName)

	queue := NewBakeQueue(env.hosts, 2, t.TempDir(), 64)
	t.Cleanup(queue.Shutdown)

	require.NoError(t, queue.Enqueue(first))
	require.NoError(t, queue.Enqueue(second))
	require.NoError(t, queue.Enqueue(third))
	assert.Error(t, queue.Enqueue(fourth))
	assert.Error(t, queue.Enqueue(nil))
}

func TestBakeQueueShutdownCancelsActiveBake(t *testing.T) {
	env := newBakeEnv(t)
	node := env.addCubeNode(t, "crate", metadata.DefaultTechniqueName)
	mesh, ok := scene.GetComponent[*scene.StaticMesh](node)
	require.True(t, ok)
	originalMask := mesh.ViewMask()

	queue := NewBakeQueue(env.hosts, 8, t.TempDir(), 64)
	require.NoError(t, queue.Enqueue(node))
	assert.Equal(t, 1, env.manager.RendererSystem.SurfaceCount())

	queue.Shutdown()

	assert.True(t, queue.Drained())
	assert.Equal(t, 0, env.manager.RendererSystem.SurfaceCount())
	assert.Equal(t, originalMask, mesh.ViewMask())
	assert.Len(t, node.Components(), 1)
}

func TestBakeQueueRecordsToCatalog(t *testing.T) {
	env := newBakeEnv(t)
	first := env.addCubeNode(t, "floor", metadata.DefaultTechniqueName)
	second := env.addCubeNode(t, "wall", metadata.DefaultNoTextureTechniqueName)

	catalog, err := OpenCatalog(filepath.Join(t.TempDir(), "bakes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, catalog.Close()) })

	outDir := t.TempDir()
	queue := NewBakeQueue(env.hosts, 8, outDir, 64)
	t.Cleanup(queue.Shutdown)
	queue.SetCatalog(catalog)

	require.NoError(t, queue.Enqueue(first))
	require.NoError(t, queue.Enqueue(second))
	env.runFrame(t)
	env.runFrame(t)
	require.True(t, queue.Drained())

	records, err := catalog.Recent(10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	floorRecords, err := catalog.ByNode(first.ID())
	require.NoError(t, err)
	require.Len(t, floorRecords, 1)
	record := floorRecords[0]
	assert.Equal(t, "floor", record.NodeName)
	assert.Equal(t, filepath.Join(outDir, fmt.Sprintf("node%d_bake.png", first.ID())), record.File)
	assert.Equal(t, uint32(64), record.Width)
	assert.Equal(t, uint32(64), record.Height)
	assert.Equal(t, DiffBakeTechniqueName, record.Technique)
	assert.GreaterOrEqual(t, record.Duration, time.Duration(0))
	assert.False(t, record.CreatedAt.IsZero())

	wallRecords, err := catalog.ByNode(second.ID())
	require.NoError(t, err)
	require.Len(t, wallRecords, 1)
	assert.Equal(t, NoTextureBakeTechniqueName, wallRecords[0].Technique)
}
