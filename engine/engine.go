package engine

import (
	"fmt"

	"github.com/spaghettifunk/lume/engine/assets"
	"github.com/spaghettifunk/lume/engine/core"
	"github.com/spaghettifunk/lume/engine/platform"
	"github.com/spaghettifunk/lume/engine/renderer/metadata"
	"github.com/spaghettifunk/lume/engine/renderer/software"
	"github.com/spaghettifunk/lume/engine/scene"
	"github.com/spaghettifunk/lume/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

/**
 * @brief The heart of the application. It owns the platform layer, the
 * event bus, the asset manager, the subsystems and the scene, and it
 * drives them once per frame until a quit event or the configured
 * frame limit stops it.
 */
type Engine struct {
	currentStage Stage
	gameInstance *Game
	isRunning    bool

	platform      *platform.Platform
	events        *core.EventSystem
	assetManager  *assets.AssetManager
	systemManager *systems.SystemManager
	scene         *scene.Scene

	width  uint32
	height uint32

	clock       *core.Clock
	metrics     *core.Metrics
	lastTime    float64
	frameNumber uint64

	quitSub *core.EventSubscription
}

func New(g *Game) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, fmt.Errorf("func New - a game with an application config is required")
	}
	config := g.ApplicationConfig
	if err := config.Validate(); err != nil {
		return nil, err
	}

	core.LogSetLevel(config.LogLevel)

	p, err := platform.New()
	if err != nil {
		return nil, err
	}

	events := core.NewEventSystem()

	assetManager, err := assets.NewAssetManager(config.AssetPath, events)
	if err != nil {
		return nil, err
	}

	renderer, err := systems.NewRendererSystem(&systems.RendererSystemConfig{
		ApplicationName: config.Name,
		Width:           config.StartWidth,
		Height:          config.StartHeight,
	}, software.New())
	if err != nil {
		return nil, err
	}

	systemManager, err := systems.NewSystemManager(renderer, assetManager)
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		currentStage:  EngineStageUninitialized,
		gameInstance:  g,
		isRunning:     false,
		platform:      p,
		events:        events,
		assetManager:  assetManager,
		systemManager: systemManager,
		scene:         scene.NewScene(),
		width:         config.StartWidth,
		height:        config.StartHeight,
		clock:         core.NewClock(),
		metrics:       core.NewMetrics(),
	}

	// Game code reaches the engine through these.
	g.SystemManager = systemManager
	g.Scene = engine.scene
	g.Events = events

	return engine, nil
}

func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("func Initialize - engine has already been initialized")
	}
	e.currentStage = EngineStageInitializing

	config := e.gameInstance.ApplicationConfig

	e.quitSub = e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e.onQuit)

	if err := e.platform.Startup(config.Name); err != nil {
		return err
	}
	if config.OutputPath != "" {
		if err := e.platform.EnsureDirectory(config.OutputPath); err != nil {
			return err
		}
	}

	if err := e.assetManager.Initialize(); err != nil {
		core.LogError("failed to initialize the asset manager")
		return err
	}
	if err := e.systemManager.Initialize(); err != nil {
		core.LogError("failed to initialize the subsystems")
		return err
	}

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return fmt.Errorf("game initialization failed: %w", err)
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	core.LogInfo("engine '%s' initialized at %dx%d", config.Name, e.width, e.height)
	return nil
}

// Run drives the frame loop until a quit event fires or the configured
// frame limit is reached. Each frame updates the scene, calls the game
// hooks, draws, and fires EVENT_CODE_FRAME_ENDED.
func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("func Run - engine must be initialized first")
	}
	e.currentStage = EngineStageRunning
	e.isRunning = true

	config := e.gameInstance.ApplicationConfig
	targetFrameSeconds := 0.0
	if config.FrameCap > 0 {
		targetFrameSeconds = 1.0 / float64(config.FrameCap)
	}

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for e.isRunning {
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		frameStartTime := e.platform.GetAbsoluteTime()

		e.scene.Update(delta)

		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(delta); err != nil {
				core.LogError("game update failed, shutting down: %s", err.Error())
				e.isRunning = false
				return err
			}
		}
		if e.gameInstance.FnRender != nil {
			if err := e.gameInstance.FnRender(delta); err != nil {
				core.LogError("game render failed, shutting down: %s", err.Error())
				e.isRunning = false
				return err
			}
		}

		if err := e.systemManager.RendererSystem.DrawFrame(&metadata.RenderPacket{
			DeltaTime:   delta,
			FrameNumber: e.frameNumber,
		}); err != nil {
			core.LogError("frame %d failed to draw: %s", e.frameNumber, err.Error())
			e.isRunning = false
			return err
		}
		e.frameNumber++

		e.events.Fire(core.EventContext{Type: core.EVENT_CODE_FRAME_ENDED})

		frameElapsedTime := e.platform.GetAbsoluteTime() - frameStartTime
		e.metrics.Update(frameElapsedTime)

		if targetFrameSeconds > 0 {
			remaining := targetFrameSeconds - frameElapsedTime
			remainingMS := int64(remaining * 1000)
			if remainingMS > 0 {
				e.platform.Sleep(remainingMS - 1)
			}
		}

		if config.MaxFrames > 0 && e.frameNumber >= config.MaxFrames {
			core.LogInfo("frame limit of %d reached, stopping", config.MaxFrames)
			e.isRunning = false
		}

		e.lastTime = currentTime
	}

	if e.currentStage == EngineStageRunning {
		e.currentStage = EngineStageInitialized
	}
	return nil
}

// RunFrames steps the loop a fixed number of frames regardless of the
// configured limits. Useful for tools that know how much work is queued.
func (e *Engine) RunFrames(count uint64) error {
	config := e.gameInstance.ApplicationConfig
	savedMax := config.MaxFrames
	config.MaxFrames = e.frameNumber + count
	err := e.Run()
	config.MaxFrames = savedMax
	return err
}

func (e *Engine) Shutdown() error {
	core.LogInfo("shutting down engine")
	e.currentStage = EngineStageShuttingDown
	e.isRunning = false

	if e.quitSub != nil {
		e.events.Unregister(e.quitSub)
		e.quitSub = nil
	}

	if err := e.systemManager.Shutdown(); err != nil {
		core.LogError("failed to shutdown the subsystems: %s", err.Error())
	}
	if err := e.assetManager.Shutdown(); err != nil {
		core.LogError("failed to shutdown the asset manager: %s", err.Error())
	}
	e.events.Shutdown()
	if err := e.platform.Shutdown(); err != nil {
		return err
	}
	return nil
}

// Resize changes the main render target dimensions, notifies the game
// and fires EVENT_CODE_RESIZED. Safe to call between frames.
func (e *Engine) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		core.LogWarn("ignoring resize to %dx%d", width, height)
		return nil
	}
	if width == e.width && height == e.height {
		return nil
	}
	e.width = width
	e.height = height

	if err := e.systemManager.RendererSystem.OnResized(uint16(width), uint16(height)); err != nil {
		return err
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			return err
		}
	}
	e.events.Fire(core.EventContext{
		Type: core.EVENT_CODE_RESIZED,
		Data: [2]uint32{width, height},
	})
	return nil
}

func (e *Engine) onQuit(core.EventContext) {
	core.LogInfo("quit event received, stopping the loop")
	e.isRunning = false
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) Scene() *scene.Scene {
	return e.scene
}

func (e *Engine) Events() *core.EventSystem {
	return e.events
}

func (e *Engine) SystemManager() *systems.SystemManager {
	return e.systemManager
}

func (e *Engine) Metrics() *core.Metrics {
	return e.metrics
}

func (e *Engine) FramebufferSize() (uint32, uint32) {
	return e.width, e.height
}
