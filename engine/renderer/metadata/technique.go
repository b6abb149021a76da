package metadata

const (
	/** @brief The technique used when nothing else is specified. */
	DefaultTechniqueName string = "Builtin.Diffuse"
	/** @brief The technique for untextured surfaces. */
	DefaultNoTextureTechniqueName string = "Builtin.NoTexture"
)

type TechniqueReference struct {
	ReferenceCount uint64
	Handle         uint32
	AutoRelease    bool
}

/**
 * @brief A single pass inside a technique config file.
 */
type TechniquePassConfig struct {
	Name          string `toml:"name"`
	Unlit         bool   `toml:"unlit"`
	UseDiffuseMap bool   `toml:"use_diffuse_map"`
	CullMode      string `toml:"cull_mode"`
	DepthWrite    bool   `toml:"depth_write"`
}

/**
 * @brief Technique configuration as loaded from a .toml file.
 */
type TechniqueConfig struct {
	Name   string                `toml:"name"`
	Passes []TechniquePassConfig `toml:"passes"`
}

/** @brief A single resolved pass of a technique. */
type TechniquePass struct {
	Name          string
	Unlit         bool
	UseDiffuseMap bool
	CullMode      FaceCullMode
	DepthWrite    bool
}

/**
 * @brief A technique describes how a material is drawn: which passes
 * run and with what state. Materials reference techniques by pointer
 * so swapping a technique never touches the rest of the material.
 */
type Technique struct {
	/** @brief The technique id. */
	ID uint32
	/** @brief The technique name, unique across the technique system. */
	Name string
	/** @brief The ordered passes of the technique. */
	Passes []*TechniquePass
}

// PassByName returns the pass with the given name, or nil.
func (t *Technique) PassByName(name string) *TechniquePass {
	for _, p := range t.Passes {
		if p.Name == name {
			return p
		}
	}
	return nil
}
