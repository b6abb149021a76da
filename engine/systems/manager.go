package systems

import (
	"github.com/spaghettifunk/lume/engine/assets"
)

// SystemManager wires the engine subsystems together in dependency
// order and owns their lifecycle.
type SystemManager struct {
	CameraSystem    *CameraSystem
	GeometrySystem  *GeometrySystem
	JobSystem       *JobSystem
	MaterialSystem  *MaterialSystem
	RendererSystem  *RendererSystem
	TechniqueSystem *TechniqueSystem
	TextureSystem   *TextureSystem
	// Held for game code convenience. The engine owns its lifecycle.
	AssetManager *assets.AssetManager
}

func NewSystemManager(renderer *RendererSystem, assetManager *assets.AssetManager) (*SystemManager, error) {
	js, err := NewJobSystem(1, 32)
	if err != nil {
		return nil, err
	}

	cs, err := NewCameraSystem(&CameraSystemConfig{
		MaxCameraCount: 61,
	})
	if err != nil {
		return nil, err
	}
	ts, err := NewTextureSystem(&TextureSystemConfig{
		MaxTextureCount: 1000,
	}, js, assetManager, renderer)
	if err != nil {
		return nil, err
	}
	techs, err := NewTechniqueSystem(&TechniqueSystemConfig{
		MaxTechniqueCount: 128,
	}, assetManager)
	if err != nil {
		return nil, err
	}
	ms, err := NewMaterialSystem(&MaterialSystemConfig{
		MaxMaterialCount: 1000,
	}, ts, techs, assetManager)
	if err != nil {
		return nil, err
	}
	gs, err := NewGeometrySystem(&GeometrySystemConfig{
		MaxGeometryCount: 1000,
	}, ms, renderer)
	if err != nil {
		return nil, err
	}

	return &SystemManager{
		CameraSystem:    cs,
		GeometrySystem:  gs,
		JobSystem:       js,
		MaterialSystem:  ms,
		RendererSystem:  renderer,
		TechniqueSystem: techs,
		TextureSystem:   ts,
		AssetManager:    assetManager,
	}, nil
}

// Initialize brings the subsystems up. The renderer backend comes
// first since default resources upload through it.
func (sm *SystemManager) Initialize() error {
	if err := sm.RendererSystem.Initialize(); err != nil {
		return err
	}
	if err := sm.TextureSystem.Initialize(); err != nil {
		return err
	}
	if err := sm.TechniqueSystem.Initialize(); err != nil {
		return err
	}
	if err := sm.MaterialSystem.Initialize(); err != nil {
		return err
	}
	if err := sm.GeometrySystem.Initialize(); err != nil {
		return err
	}
	return nil
}

// Shutdown tears the subsystems down in reverse of construction. The
// renderer goes last because resource destruction flows through it.
func (sm *SystemManager) Shutdown() error {
	if err := sm.GeometrySystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.MaterialSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.TechniqueSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.TextureSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.CameraSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.JobSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.RendererSystem.Shutdown(); err != nil {
		return err
	}
	return nil
}
