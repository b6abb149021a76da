package metadata

import "github.com/spaghettifunk/lume/engine/math"

/** @brief The name of the default material. */
const DefaultMaterialName string = "default"

/** @brief Refcount bookkeeping for one registered material. */
type MaterialReference struct {
	ReferenceCount uint64
	Handle         uint32
	AutoRelease    bool
}

/**
 * @brief Material properties as parsed from an .amt file, or built in
 * code. MaterialSystem.AcquireFromConfig turns one of these into a
 * live Material.
 */
type MaterialConfig struct {
	/** @brief The material name, used as the lookup key on acquire. */
	Name string
	/** @brief The name of the technique the material is drawn with. */
	TechniqueName string
	/** @brief Release the material automatically once the last reference is gone. */
	AutoRelease bool
	/** @brief The base diffuse colour. */
	DiffuseColour math.Vec4
	/** @brief How concentrated the specular highlight is. */
	Shininess float32
	/** @brief Texture name for the diffuse map. Empty selects the default. */
	DiffuseMapName string
	/** @brief Texture name for the specular map. Empty selects the default. */
	SpecularMapName string
	/** @brief Texture name for the normal map. Empty selects the default. */
	NormalMapName string
}

/**
 * @brief The surface properties of something drawable: colour, the
 * three texture maps and the technique that shades them.
 */
type Material struct {
	/** @brief The material id. */
	ID uint32
	/** @brief Incremented every time the material's properties change. */
	Generation uint32
	/** @brief The material name. */
	Name string
	/** @brief The base diffuse colour. */
	DiffuseColour math.Vec4
	/** @brief The diffuse texture map. */
	DiffuseMap *TextureMap
	/** @brief The specular texture map. */
	SpecularMap *TextureMap
	/** @brief The normal texture map. */
	NormalMap *TextureMap
	/** @brief How concentrated the specular highlight is. */
	Shininess float32
	/** @brief The technique the material is drawn with. */
	Technique *Technique
}
