package systems

import (
	"fmt"

	"github.com/jinzhu/copier"

	"github.com/spaghettifunk/lume/engine/assets"
	"github.com/spaghettifunk/lume/engine/core"
	"github.com/spaghettifunk/lume/engine/math"
	"github.com/spaghettifunk/lume/engine/renderer/metadata"
)

type MaterialSystemConfig struct {
	/** @brief The maximum number of materials that can be registered at once. */
	MaxMaterialCount uint32
}

// MaterialSystem owns every material in the engine. Materials are
// acquired by name from .amt files, built from in-memory configs, or
// cloned from other materials.
type MaterialSystem struct {
	Config          *MaterialSystemConfig
	DefaultMaterial *metadata.Material
	// Array of registered materials.
	RegisteredMaterials []*metadata.Material
	// Hashtable for material lookups.
	RegisteredMaterialTable map[string]*metadata.MaterialReference
	// sub systems
	textureSystem   *TextureSystem
	techniqueSystem *TechniqueSystem
	assetManager    *assets.AssetManager
}

func NewMaterialSystem(config *MaterialSystemConfig, ts *TextureSystem, techs *TechniqueSystem, am *assets.AssetManager) (*MaterialSystem, error) {
	if config.MaxMaterialCount == 0 {
		err := fmt.Errorf("func NewMaterialSystem - config.MaxMaterialCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}

	ms := &MaterialSystem{
		Config:                  config,
		RegisteredMaterials:     make([]*metadata.Material, config.MaxMaterialCount),
		RegisteredMaterialTable: make(map[string]*metadata.MaterialReference),
		textureSystem:           ts,
		techniqueSystem:         techs,
		assetManager:            am,
	}

	// Invalidate all materials in the array.
	for i := uint32(0); i < config.MaxMaterialCount; i++ {
		ms.RegisteredMaterials[i] = &metadata.Material{
			ID:         metadata.InvalidID,
			Generation: metadata.InvalidID,
		}
	}

	return ms, nil
}

func (ms *MaterialSystem) Initialize() error {
	ms.createDefaultMaterial()
	return nil
}

func (ms *MaterialSystem) Shutdown() error {
	for i := uint32(0); i < ms.Config.MaxMaterialCount; i++ {
		if ms.RegisteredMaterials[i].ID != metadata.InvalidID {
			ms.destroyMaterial(ms.RegisteredMaterials[i])
		}
	}
	ms.DefaultMaterial = nil
	return nil
}

/**
 * @brief Attempts to acquire a material with the given name, loading
 * its configuration from the asset layer when it is not yet known.
 */
func (ms *MaterialSystem) Acquire(name string) (*metadata.Material, error) {
	if name == metadata.DefaultMaterialName {
		core.LogWarn("material system Acquire called for default material. Use GetDefault for material 'default'")
		return ms.DefaultMaterial, nil
	}

	if ref, ok := ms.RegisteredMaterialTable[name]; ok && ref.Handle != metadata.InvalidID {
		ref.ReferenceCount++
		return ms.RegisteredMaterials[ref.Handle], nil
	}

	resource, err := ms.assetManager.LoadAsset(name, metadata.ResourceTypeMaterial, nil)
	if err != nil {
		return nil, err
	}
	config, ok := resource.Data.(*metadata.MaterialConfig)
	if !ok {
		return nil, fmt.Errorf("material resource '%s' holds no config", name)
	}
	return ms.AcquireFromConfig(config)
}

/**
 * @brief Registers and acquires a material from an in-memory config.
 * Acquiring an already registered name increments its reference count.
 */
func (ms *MaterialSystem) AcquireFromConfig(config *metadata.MaterialConfig) (*metadata.Material, error) {
	if config == nil || config.Name == "" {
		return nil, fmt.Errorf("material config requires a name")
	}
	if config.Name == metadata.DefaultMaterialName {
		return ms.DefaultMaterial, nil
	}

	if ref, ok := ms.RegisteredMaterialTable[config.Name]; ok && ref.Handle != metadata.InvalidID {
		ref.ReferenceCount++
		return ms.RegisteredMaterials[ref.Handle], nil
	}

	handle := ms.findFreeSlot()
	if handle == metadata.InvalidID {
		err := fmt.Errorf("material system cannot hold any more materials. Adjust configuration to allow more")
		core.LogError(err.Error())
		return nil, err
	}

	material := ms.RegisteredMaterials[handle]
	if err := ms.loadMaterial(config, material); err != nil {
		return nil, err
	}
	material.ID = handle

	ms.RegisteredMaterialTable[config.Name] = &metadata.MaterialReference{
		ReferenceCount: 1,
		Handle:         handle,
		AutoRelease:    config.AutoRelease,
	}

	return material, nil
}

/**
 * @brief Clone produces an independent copy of the source material
 * under a new name. The copy carries its own texture map entries and
 * references, while the underlying textures stay shared, so edits to
 * the clone never touch the source.
 */
func (ms *MaterialSystem) Clone(source *metadata.Material, name string) (*metadata.Material, error) {
	if source == nil {
		return nil, fmt.Errorf("cannot clone a nil material")
	}
	if name == "" || name == source.Name {
		return nil, fmt.Errorf("a material clone requires a distinct name")
	}
	if _, exists := ms.RegisteredMaterialTable[name]; exists {
		return nil, fmt.Errorf("a material named '%s' already exists", name)
	}

	handle := ms.findFreeSlot()
	if handle == metadata.InvalidID {
		err := fmt.Errorf("material system cannot hold any more materials. Adjust configuration to allow more")
		core.LogError(err.Error())
		return nil, err
	}

	material := ms.RegisteredMaterials[handle]
	if err := copier.Copy(material, source); err != nil {
		return nil, fmt.Errorf("material clone of '%s' failed: %w", source.Name, err)
	}

	material.DiffuseMap = ms.cloneTextureMap(source.DiffuseMap)
	material.SpecularMap = ms.cloneTextureMap(source.SpecularMap)
	material.NormalMap = ms.cloneTextureMap(source.NormalMap)

	if source.Technique != nil && source.Technique.Name != "" {
		if technique, err := ms.techniqueSystem.Acquire(source.Technique.Name); err == nil {
			material.Technique = technique
		}
	}

	material.ID = handle
	material.Name = name
	material.Generation = 0

	ms.RegisteredMaterialTable[name] = &metadata.MaterialReference{
		ReferenceCount: 1,
		Handle:         handle,
		AutoRelease:    true,
	}

	return material, nil
}

/**
 * @brief SetTechnique swaps the technique the material is drawn with.
 * The material's reference on its previous technique moves over to the
 * new one.
 */
func (ms *MaterialSystem) SetTechnique(material *metadata.Material, technique *metadata.Technique) {
	if material == nil || technique == nil {
		return
	}
	if material.Technique != nil && material.Technique.Name != "" {
		ms.techniqueSystem.Release(material.Technique.Name)
	}
	if technique.Name != "" {
		if t, err := ms.techniqueSystem.Acquire(technique.Name); err == nil {
			technique = t
		}
	}
	material.Technique = technique
	material.Generation++
}

func (ms *MaterialSystem) Release(name string) {
	if name == metadata.DefaultMaterialName {
		return
	}
	ref, ok := ms.RegisteredMaterialTable[name]
	if !ok {
		core.LogWarn("tried to release non-existent material: '%s'", name)
		return
	}
	if ref.ReferenceCount == 0 {
		core.LogWarn("tried to release material '%s' which has no references", name)
		return
	}
	ref.ReferenceCount--
	if ref.ReferenceCount == 0 && ref.AutoRelease {
		ms.destroyMaterial(ms.RegisteredMaterials[ref.Handle])
		delete(ms.RegisteredMaterialTable, name)
	}
}

func (ms *MaterialSystem) GetDefault() *metadata.Material {
	return ms.DefaultMaterial
}

func (ms *MaterialSystem) findFreeSlot() uint32 {
	for i := uint32(0); i < ms.Config.MaxMaterialCount; i++ {
		if ms.RegisteredMaterials[i].ID == metadata.InvalidID {
			return i
		}
	}
	return metadata.InvalidID
}

func (ms *MaterialSystem) loadMaterial(config *metadata.MaterialConfig, material *metadata.Material) error {
	material.Name = config.Name
	material.DiffuseColour = config.DiffuseColour
	material.Shininess = config.Shininess

	material.DiffuseMap = ms.mapFor(config.DiffuseMapName, metadata.TextureUseMapDiffuse)
	material.SpecularMap = ms.mapFor(config.SpecularMapName, metadata.TextureUseMapSpecular)
	material.NormalMap = ms.mapFor(config.NormalMapName, metadata.TextureUseMapNormal)

	techniqueName := config.TechniqueName
	if techniqueName == "" {
		techniqueName = metadata.DefaultTechniqueName
	}
	technique, err := ms.techniqueSystem.Acquire(techniqueName)
	if err != nil {
		core.LogWarn("material '%s' wants technique '%s' which failed to load. Using default", config.Name, techniqueName)
		technique = ms.techniqueSystem.GetDefault()
	}
	material.Technique = technique
	material.Generation = 0

	return nil
}

// mapFor builds a texture map for the named texture, falling back to
// the slot's default when the name is empty or the texture fails.
func (ms *MaterialSystem) mapFor(textureName string, use metadata.TextureUse) *metadata.TextureMap {
	texture := ms.defaultTextureFor(use)
	if textureName != "" {
		t, err := ms.textureSystem.Acquire(textureName, true)
		if err != nil {
			core.LogWarn("unable to acquire texture '%s', using default", textureName)
		} else {
			texture = t
		}
	}
	return &metadata.TextureMap{
		Texture:       texture,
		Use:           use,
		FilterMinify:  metadata.TextureFilterModeLinear,
		FilterMagnify: metadata.TextureFilterModeLinear,
		RepeatU:       metadata.TextureRepeatRepeat,
		RepeatV:       metadata.TextureRepeatRepeat,
	}
}

func (ms *MaterialSystem) defaultTextureFor(use metadata.TextureUse) *metadata.Texture {
	switch use {
	case metadata.TextureUseMapSpecular:
		return ms.textureSystem.GetDefaultSpecularTexture()
	case metadata.TextureUseMapNormal:
		return ms.textureSystem.GetDefaultNormalTexture()
	default:
		return ms.textureSystem.GetDefaultDiffuseTexture()
	}
}

// cloneTextureMap copies a map entry, taking a reference on the texture
// it points at when the texture lives in the registry.
func (ms *MaterialSystem) cloneTextureMap(src *metadata.TextureMap) *metadata.TextureMap {
	if src == nil {
		return nil
	}
	m := *src
	if m.Texture != nil && m.Texture.Name != "" && !isDefaultTextureName(m.Texture.Name) && !m.Texture.IsRenderTarget() {
		if t, err := ms.textureSystem.Acquire(m.Texture.Name, true); err == nil {
			m.Texture = t
		}
	}
	return &m
}

func (ms *MaterialSystem) destroyMaterial(material *metadata.Material) {
	releaseMap := func(m *metadata.TextureMap) {
		if m != nil && m.Texture != nil && m.Texture.Name != "" && !m.Texture.IsRenderTarget() {
			ms.textureSystem.Release(m.Texture.Name)
		}
	}
	releaseMap(material.DiffuseMap)
	releaseMap(material.SpecularMap)
	releaseMap(material.NormalMap)

	if material.Technique != nil && material.Technique.Name != "" {
		ms.techniqueSystem.Release(material.Technique.Name)
	}

	material.ID = metadata.InvalidID
	material.Generation = metadata.InvalidID
	material.Name = ""
	material.DiffuseColour = math.NewVec4Zero()
	material.Shininess = 0
	material.DiffuseMap = nil
	material.SpecularMap = nil
	material.NormalMap = nil
	material.Technique = nil
}

func (ms *MaterialSystem) createDefaultMaterial() {
	ms.DefaultMaterial = &metadata.Material{
		ID:            metadata.InvalidID,
		Generation:    metadata.InvalidID,
		Name:          metadata.DefaultMaterialName,
		DiffuseColour: math.NewVec4One(),
		Shininess:     8.0,
		DiffuseMap:    ms.mapFor("", metadata.TextureUseMapDiffuse),
		SpecularMap:   ms.mapFor("", metadata.TextureUseMapSpecular),
		NormalMap:     ms.mapFor("", metadata.TextureUseMapNormal),
		Technique:     ms.techniqueSystem.GetDefault(),
	}
}
