package systems

import (
	"fmt"

	"github.com/spaghettifunk/lume/engine/core"
	"github.com/spaghettifunk/lume/engine/renderer/components"
	"github.com/spaghettifunk/lume/engine/renderer/metadata"
)

/** @brief The camera system configuration. */
type CameraSystemConfig struct {
	/** @brief The maximum number of cameras that can be managed by the system. */
	MaxCameraCount uint16
}

// CameraSystem hands out named, refcounted cameras. The default camera
// lives outside the registry and is always available.
type CameraSystem struct {
	Config        *CameraSystemConfig
	Lookup        map[string]uint16
	Cameras       []*components.CameraLookup
	DefaultCamera *components.Camera
}

func NewCameraSystem(config *CameraSystemConfig) (*CameraSystem, error) {
	if config.MaxCameraCount == 0 {
		err := fmt.Errorf("func NewCameraSystem - config.MaxCameraCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	cs := &CameraSystem{
		Config:  config,
		Cameras: make([]*components.CameraLookup, config.MaxCameraCount),
		Lookup:  make(map[string]uint16, config.MaxCameraCount),
	}
	for i := range cs.Cameras {
		cs.Cameras[i] = &components.CameraLookup{ID: metadata.InvalidIDUint16}
	}
	cs.DefaultCamera = components.NewCamera()
	return cs, nil
}

func (cs *CameraSystem) Shutdown() error {
	return nil
}

/**
 * @brief Returns the camera registered under name, creating one in a
 * free slot on first acquire. Every acquire adds a reference.
 */
func (cs *CameraSystem) Acquire(name string) (*components.Camera, error) {
	if name == components.DEFAULT_CAMERA_NAME {
		return cs.DefaultCamera, nil
	}

	if id, ok := cs.Lookup[name]; ok {
		cs.Cameras[id].ReferenceCount++
		return cs.Cameras[id].Camera, nil
	}

	id := cs.freeSlot()
	if id == metadata.InvalidIDUint16 {
		err := fmt.Errorf("func CameraSystem Acquire failed to acquire new slot. Adjust camera system config to allow more")
		core.LogError(err.Error())
		return nil, err
	}

	core.LogDebug("creating new camera named '%s'...", name)
	cs.Cameras[id].Camera = components.NewCamera()
	cs.Cameras[id].ID = id
	cs.Cameras[id].ReferenceCount = 1
	cs.Lookup[name] = id

	return cs.Cameras[id].Camera, nil
}

func (cs *CameraSystem) freeSlot() uint16 {
	for i := uint16(0); i < cs.Config.MaxCameraCount; i++ {
		if cs.Cameras[i].ID == metadata.InvalidIDUint16 {
			return i
		}
	}
	return metadata.InvalidIDUint16
}

/**
 * @brief Drops one reference to the named camera. When the last
 * reference goes, the camera is reset and its slot freed for reuse.
 */
func (cs *CameraSystem) Release(name string) {
	if name == components.DEFAULT_CAMERA_NAME {
		core.LogDebug("cannot release default camera. Nothing was done")
		return
	}
	id, ok := cs.Lookup[name]
	if !ok {
		core.LogWarn("CameraSystem Release failed lookup. Nothing was done")
		return
	}

	cs.Cameras[id].ReferenceCount--
	if cs.Cameras[id].ReferenceCount < 1 {
		cs.Cameras[id].Camera.Reset()
		cs.Cameras[id].Camera = nil
		cs.Cameras[id].ID = metadata.InvalidIDUint16
		delete(cs.Lookup, name)
	}
}

/** @brief The fallback camera that always exists. */
func (cs *CameraSystem) GetDefault() *components.Camera {
	return cs.DefaultCamera
}
