package engine

import (
	"github.com/spaghettifunk/lume/engine/core"
	"github.com/spaghettifunk/lume/engine/scene"
	"github.com/spaghettifunk/lume/engine/systems"
)

type Initialize func() error
type Update func(deltaTime float64) error
type Render func(deltaTime float64) error
type OnResize func(width uint32, height uint32) error

// Game wires application code into the engine loop. The engine fills
// in SystemManager, Scene and Events before FnInitialize runs; any of
// the hooks may be left nil.
type Game struct {
	ApplicationConfig *ApplicationConfig
	SystemManager     *systems.SystemManager
	Scene             *scene.Scene
	Events            *core.EventSystem
	State             interface{}

	FnInitialize Initialize
	FnUpdate     Update
	FnRender     Render
	FnOnResize   OnResize
}
