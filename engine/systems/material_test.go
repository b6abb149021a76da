package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lume/engine/math"
	"github.com/spaghettifunk/lume/engine/renderer/metadata"
)

func testMaterialConfig(name string) *metadata.MaterialConfig {
	return &metadata.MaterialConfig{
		Name:          name,
		TechniqueName: metadata.DefaultTechniqueName,
		AutoRelease:   true,
		DiffuseColour: math.NewVec4(0.2, 0.4, 0.6, 1.0),
		Shininess:     16.0,
	}
}

func TestMaterialAcquireFromConfig(t *testing.T) {
	manager := newTestSystems(t)
	ms := manager.MaterialSystem

	material, err := ms.AcquireFromConfig(testMaterialConfig("surface"))
	require.NoError(t, err)

	assert.Equal(t, "surface", material.Name)
	assert.Equal(t, math.NewVec4(0.2, 0.4, 0.6, 1.0), material.DiffuseColour)
	assert.Equal(t, float32(16.0), material.Shininess)
	assert.Same(t, manager.TechniqueSystem.GetDefault(), material.Technique)

	// No map names were given, so the default textures back the maps.
	require.NotNil(t, material.DiffuseMap)
	assert.Same(t, manager.TextureSystem.GetDefaultDiffuseTexture(), material.DiffuseMap.Texture)
	assert.Same(t, manager.TextureSystem.GetDefaultSpecularTexture(), material.SpecularMap.Texture)
	assert.Same(t, manager.TextureSystem.GetDefaultNormalTexture(), material.NormalMap.Texture)
}

func TestMaterialAcquireIncrementsReferences(t *testing.T) {
	manager := newTestSystems(t)
	ms := manager.MaterialSystem

	first, err := ms.AcquireFromConfig(testMaterialConfig("shared"))
	require.NoError(t, err)

	second, err := ms.Acquire("shared")
	require.NoError(t, err)
	assert.Same(t, first, second)

	ref := ms.RegisteredMaterialTable["shared"]
	require.NotNil(t, ref)
	assert.Equal(t, uint64(2), ref.ReferenceCount)
}

func TestMaterialReleaseDestroysAtZero(t *testing.T) {
	manager := newTestSystems(t)
	ms := manager.MaterialSystem

	material, err := ms.AcquireFromConfig(testMaterialConfig("transient"))
	require.NoError(t, err)
	id := material.ID

	ms.Release("transient")

	assert.Equal(t, metadata.InvalidID, ms.RegisteredMaterials[id].ID)
	assert.Nil(t, material.DiffuseMap)
	assert.Nil(t, material.Technique)
	_, stillKnown := ms.RegisteredMaterialTable["transient"]
	assert.False(t, stillKnown)
}

func TestMaterialCloneIsIndependent(t *testing.T) {
	manager := newTestSystems(t)
	ms := manager.MaterialSystem

	source, err := ms.AcquireFromConfig(testMaterialConfig("clone_source"))
	require.NoError(t, err)

	clone, err := ms.Clone(source, "clone_copy")
	require.NoError(t, err)

	assert.Equal(t, "clone_copy", clone.Name)
	assert.NotEqual(t, source.ID, clone.ID)
	assert.Equal(t, source.DiffuseColour, clone.DiffuseColour)
	assert.Equal(t, source.Shininess, clone.Shininess)
	assert.Same(t, source.Technique, clone.Technique)

	// Map entries are copies; the textures they point at are shared.
	require.NotNil(t, clone.DiffuseMap)
	assert.NotSame(t, source.DiffuseMap, clone.DiffuseMap)
	assert.Same(t, source.DiffuseMap.Texture, clone.DiffuseMap.Texture)

	// Re-pointing the clone's technique leaves the source alone.
	ms.SetTechnique(clone, manager.TechniqueSystem.GetDefaultNoTexture())
	assert.Same(t, manager.TechniqueSystem.GetDefaultNoTexture(), clone.Technique)
	assert.Same(t, manager.TechniqueSystem.GetDefault(), source.Technique)
}

func TestMaterialCloneRejectsDuplicateNames(t *testing.T) {
	manager := newTestSystems(t)
	ms := manager.MaterialSystem

	source, err := ms.AcquireFromConfig(testMaterialConfig("clone_base"))
	require.NoError(t, err)

	_, err = ms.Clone(source, "clone_base")
	assert.Error(t, err)

	_, err = ms.Clone(source, "clone_once")
	require.NoError(t, err)
	_, err = ms.Clone(source, "clone_once")
	assert.Error(t, err)

	_, err = ms.Clone(nil, "clone_nil")
	assert.Error(t, err)
}

func TestMaterialCloneReleaseLeavesSourceIntact(t *testing.T) {
	manager := newTestSystems(t)
	ms := manager.MaterialSystem

	source, err := ms.AcquireFromConfig(testMaterialConfig("keeper"))
	require.NoError(t, err)

	clone, err := ms.Clone(source, "keeper_bake")
	require.NoError(t, err)
	_ = clone

	ms.Release("keeper_bake")

	assert.Equal(t, "keeper", source.Name)
	require.NotNil(t, source.DiffuseMap)
	assert.Same(t, manager.TextureSystem.GetDefaultDiffuseTexture(), source.DiffuseMap.Texture)
	assert.Same(t, manager.TechniqueSystem.GetDefault(), source.Technique)
}

func TestSetTechniqueBumpsGeneration(t *testing.T) {
	manager := newTestSystems(t)
	ms := manager.MaterialSystem

	material, err := ms.AcquireFromConfig(testMaterialConfig("regen"))
	require.NoError(t, err)
	before := material.Generation

	ms.SetTechnique(material, manager.TechniqueSystem.GetDefaultNoTexture())

	assert.Equal(t, before+1, material.Generation)
	assert.Same(t, manager.TechniqueSystem.GetDefaultNoTexture(), material.Technique)
}

func TestMaterialAcquireDefaultByName(t *testing.T) {
	manager := newTestSystems(t)
	ms := manager.MaterialSystem

	material, err := ms.Acquire(metadata.DefaultMaterialName)
	require.NoError(t, err)
	assert.Same(t, ms.GetDefault(), material)

	// Releasing the default is always a no-op.
	ms.Release(metadata.DefaultMaterialName)
	assert.NotNil(t, ms.GetDefault().DiffuseMap)
}
