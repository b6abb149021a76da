package systems

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/lume/engine/assets"
	"github.com/spaghettifunk/lume/engine/core"
	"github.com/spaghettifunk/lume/engine/renderer/metadata"
)

type TechniqueSystemConfig struct {
	/** @brief The maximum number of techniques that can be registered at once. */
	MaxTechniqueCount uint32
}

// TechniqueSystem resolves named techniques, loading their pass
// descriptions from TOML files under assets/techniques. Two built-in
// techniques always exist as fallbacks.
type TechniqueSystem struct {
	Config *TechniqueSystemConfig
	// Array of registered techniques.
	RegisteredTechniques []*metadata.Technique
	// Hashtable for technique lookups.
	RegisteredTechniqueTable map[string]*metadata.TechniqueReference

	defaultTechnique          *metadata.Technique
	defaultNoTextureTechnique *metadata.Technique

	assetManager *assets.AssetManager
}

func NewTechniqueSystem(config *TechniqueSystemConfig, am *assets.AssetManager) (*TechniqueSystem, error) {
	if config.MaxTechniqueCount == 0 {
		err := fmt.Errorf("func NewTechniqueSystem - config.MaxTechniqueCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}

	ts := &TechniqueSystem{
		Config:                   config,
		RegisteredTechniques:     make([]*metadata.Technique, config.MaxTechniqueCount),
		RegisteredTechniqueTable: make(map[string]*metadata.TechniqueReference),
		assetManager:             am,
	}

	for i := uint32(0); i < config.MaxTechniqueCount; i++ {
		ts.RegisteredTechniques[i] = &metadata.Technique{
			ID: metadata.InvalidID,
		}
	}

	ts.createDefaultTechniques()

	return ts, nil
}

func (ts *TechniqueSystem) Initialize() error {
	return nil
}

func (ts *TechniqueSystem) Shutdown() error {
	for _, t := range ts.RegisteredTechniques {
		t.ID = metadata.InvalidID
		t.Name = ""
		t.Passes = nil
	}
	return nil
}

/**
 * @brief Acquires a technique by name. Unknown names are loaded from
 * the asset layer; the reference count is incremented either way.
 */
func (ts *TechniqueSystem) Acquire(name string) (*metadata.Technique, error) {
	if name == metadata.DefaultTechniqueName {
		return ts.defaultTechnique, nil
	}
	if name == metadata.DefaultNoTextureTechniqueName {
		return ts.defaultNoTextureTechnique, nil
	}

	if ref, ok := ts.RegisteredTechniqueTable[name]; ok && ref.Handle != metadata.InvalidID {
		ref.ReferenceCount++
		return ts.RegisteredTechniques[ref.Handle], nil
	}

	resource, err := ts.assetManager.LoadAsset(name, metadata.ResourceTypeTechnique, nil)
	if err != nil {
		return nil, err
	}
	config, ok := resource.Data.(*metadata.TechniqueConfig)
	if !ok {
		return nil, fmt.Errorf("technique resource '%s' holds no config", name)
	}
	if config.Name != name {
		core.LogWarn("technique file for '%s' declares name '%s'. Using the declared name", name, config.Name)
	}
	return ts.AcquireFromConfig(config, true)
}

/**
 * @brief Registers and acquires a technique from an in-memory config.
 * Acquiring an already registered name increments its reference count.
 */
func (ts *TechniqueSystem) AcquireFromConfig(config *metadata.TechniqueConfig, autoRelease bool) (*metadata.Technique, error) {
	if config == nil || config.Name == "" {
		return nil, fmt.Errorf("technique config requires a name")
	}

	if ref, ok := ts.RegisteredTechniqueTable[config.Name]; ok && ref.Handle != metadata.InvalidID {
		ref.ReferenceCount++
		return ts.RegisteredTechniques[ref.Handle], nil
	}

	handle := metadata.InvalidID
	for i := uint32(0); i < ts.Config.MaxTechniqueCount; i++ {
		if ts.RegisteredTechniques[i].ID == metadata.InvalidID {
			handle = i
			break
		}
	}
	if handle == metadata.InvalidID {
		err := fmt.Errorf("technique system cannot hold any more techniques. Adjust configuration to allow more")
		core.LogError(err.Error())
		return nil, err
	}

	technique := ts.RegisteredTechniques[handle]
	technique.ID = handle
	technique.Name = config.Name
	technique.Passes = make([]*metadata.TechniquePass, 0, len(config.Passes))
	for _, pass := range config.Passes {
		technique.Passes = append(technique.Passes, &metadata.TechniquePass{
			Name:          pass.Name,
			Unlit:         pass.Unlit,
			UseDiffuseMap: pass.UseDiffuseMap,
			CullMode:      cullModeFromString(pass.CullMode),
			DepthWrite:    pass.DepthWrite,
		})
	}

	ts.RegisteredTechniqueTable[config.Name] = &metadata.TechniqueReference{
		ReferenceCount: 1,
		Handle:         handle,
		AutoRelease:    autoRelease,
	}

	return technique, nil
}

func (ts *TechniqueSystem) Release(name string) {
	if name == metadata.DefaultTechniqueName || name == metadata.DefaultNoTextureTechniqueName {
		return
	}
	ref, ok := ts.RegisteredTechniqueTable[name]
	if !ok {
		core.LogWarn("tried to release non-existent technique: '%s'", name)
		return
	}
	if ref.ReferenceCount == 0 {
		core.LogWarn("tried to release technique '%s' which has no references", name)
		return
	}
	ref.ReferenceCount--
	if ref.ReferenceCount == 0 && ref.AutoRelease {
		technique := ts.RegisteredTechniques[ref.Handle]
		technique.ID = metadata.InvalidID
		technique.Name = ""
		technique.Passes = nil
		delete(ts.RegisteredTechniqueTable, name)
	}
}

func (ts *TechniqueSystem) GetDefault() *metadata.Technique {
	return ts.defaultTechnique
}

func (ts *TechniqueSystem) GetDefaultNoTexture() *metadata.Technique {
	return ts.defaultNoTextureTechnique
}

// createDefaultTechniques builds the two built-in techniques in code
// so drawing never depends on files being present.
func (ts *TechniqueSystem) createDefaultTechniques() {
	ts.defaultTechnique = &metadata.Technique{
		ID:   metadata.InvalidID,
		Name: metadata.DefaultTechniqueName,
		Passes: []*metadata.TechniquePass{
			{
				Name:          "World",
				Unlit:         false,
				UseDiffuseMap: true,
				CullMode:      metadata.FaceCullModeBack,
				DepthWrite:    true,
			},
		},
	}
	ts.defaultNoTextureTechnique = &metadata.Technique{
		ID:   metadata.InvalidID,
		Name: metadata.DefaultNoTextureTechniqueName,
		Passes: []*metadata.TechniquePass{
			{
				Name:          "World",
				Unlit:         false,
				UseDiffuseMap: false,
				CullMode:      metadata.FaceCullModeBack,
				DepthWrite:    true,
			},
		},
	}
}

func cullModeFromString(mode string) metadata.FaceCullMode {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "none":
		return metadata.FaceCullModeNone
	case "front":
		return metadata.FaceCullModeFront
	case "back", "":
		return metadata.FaceCullModeBack
	case "front_and_back":
		return metadata.FaceCullModeFrontAndBack
	default:
		core.LogWarn("unknown cull mode '%s', defaulting to back", mode)
		return metadata.FaceCullModeBack
	}
}
