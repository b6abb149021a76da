package testbed

import (
	"fmt"

	"github.com/spaghettifunk/lume/engine"
	"github.com/spaghettifunk/lume/engine/baking"
	"github.com/spaghettifunk/lume/engine/core"
	"github.com/spaghettifunk/lume/engine/math"
	"github.com/spaghettifunk/lume/engine/renderer/metadata"
	"github.com/spaghettifunk/lume/engine/scene"
)

const bakeImageSize uint32 = 256

// BakeGame is the demo application. It spawns a handful of mesh nodes,
// queues a lightmap bake for each of them and quits once the queue has
// drained.
type BakeGame struct {
	*engine.Game
}

type gameState struct {
	queue    *baking.BakeQueue
	catalog  *baking.Catalog
	quitting bool
}

type demoMesh struct {
	name     string
	material string
	size     math.Vec3
	position math.Vec3
}

// The scene: a floor slab, a crate sitting on it and a taller pillar
// off to the side. The pillar's material has no diffuse map.
var demoMeshes = []demoMesh{
	{name: "floor", material: "floor", size: math.NewVec3(40, 2, 40), position: math.NewVec3(0, -6, 10)},
	{name: "crate", material: "crate", size: math.NewVec3(10, 10, 10), position: math.NewVec3(-4, 0, 10)},
	{name: "pillar", material: "pillar", size: math.NewVec3(6, 16, 6), position: math.NewVec3(12, 3, 14)},
}

func NewBakeGame(config *engine.ApplicationConfig) *BakeGame {
	bg := &BakeGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State:             &gameState{},
		},
	}
	bg.FnInitialize = bg.initialize
	bg.FnUpdate = bg.update
	bg.FnOnResize = bg.onResize
	return bg
}

func (bg *BakeGame) initialize() error {
	state := bg.State.(*gameState)
	config := bg.ApplicationConfig

	camera, err := bg.SystemManager.CameraSystem.Acquire("world")
	if err != nil {
		return err
	}
	camera.SetPosition(math.NewVec3(0, 4, -40))
	camera.SetViewMask(scene.ViewMaskNormal)

	renderPath := metadata.NewRenderPath("world", &metadata.RenderPassConfig{
		Name:        "World",
		ClearColour: math.NewVec4(0.1, 0.1, 0.14, 1),
		ClearFlags:  metadata.RENDERPASS_CLEAR_COLOUR_BUFFER_FLAG,
	})
	bg.SystemManager.RendererSystem.SetMainViewport(metadata.NewViewport(bg.Scene, camera, renderPath))

	state.queue = baking.NewBakeQueue(baking.Hosts{
		Materials:  bg.SystemManager.MaterialSystem,
		Techniques: bg.SystemManager.TechniqueSystem,
		Textures:   bg.SystemManager.TextureSystem,
		Renderer:   bg.SystemManager.RendererSystem,
		Events:     bg.Events,
	}, len(demoMeshes), config.OutputPath, bakeImageSize)

	if config.CatalogPath != "" {
		catalog, err := baking.OpenCatalog(config.CatalogPath)
		if err != nil {
			return err
		}
		state.catalog = catalog
		state.queue.SetCatalog(catalog)
	}

	for _, demo := range demoMeshes {
		node, err := bg.spawnMesh(demo)
		if err != nil {
			return err
		}
		if err := state.queue.Enqueue(node); err != nil {
			return err
		}
	}
	core.LogInfo("queued %d nodes for baking into '%s'", len(demoMeshes), config.OutputPath)

	return nil
}

func (bg *BakeGame) spawnMesh(demo demoMesh) (*scene.Node, error) {
	material, err := bg.SystemManager.MaterialSystem.Acquire(demo.material)
	if err != nil {
		return nil, fmt.Errorf("demo mesh '%s' has no material: %w", demo.name, err)
	}

	geoConfig, err := bg.SystemManager.GeometrySystem.GenerateCubeConfig(
		demo.size.X, demo.size.Y, demo.size.Z, 1, 1, demo.name+"_geo", material.Name)
	if err != nil {
		return nil, err
	}
	geometry, err := bg.SystemManager.GeometrySystem.AcquireFromConfig(geoConfig, true)
	if err != nil {
		return nil, err
	}

	node := bg.Scene.CreateChild(demo.name)
	node.SetWorldPosition(demo.position)
	node.AddComponent(scene.NewStaticMesh(geometry))
	return node, nil
}

func (bg *BakeGame) update(deltaTime float64) error {
	state := bg.State.(*gameState)
	if state.quitting || state.queue == nil {
		return nil
	}
	if state.queue.Drained() {
		core.LogInfo("all bakes finished")
		state.quitting = true
		bg.Events.Fire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
	}
	return nil
}

func (bg *BakeGame) onResize(width, height uint32) error {
	core.LogDebug("render target resized to %dx%d", width, height)
	return nil
}

// Close releases the resources the game owns. Call it after the engine
// loop has stopped.
func (bg *BakeGame) Close() {
	state := bg.State.(*gameState)
	if state.queue != nil {
		state.queue.Shutdown()
		state.queue = nil
	}
	if state.catalog != nil {
		if err := state.catalog.Close(); err != nil {
			core.LogWarn("failed to close the bake catalog: %s", err.Error())
		}
		state.catalog = nil
	}
}
