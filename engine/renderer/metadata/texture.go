package metadata

const (
	/** @brief The default texture name. */
	DEFAULT_TEXTURE_NAME string = "default"
	/** @brief The default diffuse texture name. */
	DEFAULT_DIFFUSE_TEXTURE_NAME string = "default_DIFF"
	/** @brief The default specular texture name. */
	DEFAULT_SPECULAR_TEXTURE_NAME string = "default_SPEC"
	/** @brief The default normal texture name. */
	DEFAULT_NORMAL_TEXTURE_NAME string = "default_NORM"
)

/** @brief Refcount bookkeeping for one registered texture. */
type TextureReference struct {
	ReferenceCount uint64
	Handle         uint32
	AutoRelease    bool
}

// Carried through the async load job; also returned as its result data.
type TextureLoadParams struct {
	ResourceName      string
	OutTexture        *Texture
	TempTexture       *Texture
	CurrentGeneration uint32
	ImageResource     *Resource
}

type TextureFlag int

const (
	/** @brief The texture has an alpha channel that matters. */
	TextureFlagHasTransparency TextureFlag = 0x1
	/** @brief The texture can be rendered to. */
	TextureFlagIsWriteable TextureFlag = 0x2
)

/** @brief The set of flags on a texture. */
type TextureFlagBits uint8

func (b TextureFlagBits) Has(flag TextureFlag) bool {
	return b&TextureFlagBits(flag) != 0
}

/** @brief Supported texture filtering modes. */
type TextureFilter int

const (
	/** @brief Nearest-neighbor filtering. */
	TextureFilterModeNearest TextureFilter = 0x0
	/** @brief Linear (i.e. bilinear) filtering.*/
	TextureFilterModeLinear TextureFilter = 0x1
)

/** @brief How texture coordinates outside [0,1] resolve. */
type TextureRepeat int

const (
	/** @brief The texture tiles. */
	TextureRepeatRepeat TextureRepeat = 0x1
	/** @brief Coordinates clamp to the edge texel. */
	TextureRepeatClampToEdge TextureRepeat = 0x2
)

/**
 * @brief A texture registered with the renderer. Pixel data lives in
 * the backend behind InternalData.
 */
type Texture struct {
	/** @brief The unique texture identifier. */
	ID uint32
	/** @brief The texture Width. */
	Width uint32
	/** @brief The texture Height. */
	Height uint32
	/** @brief The number of channels in the texture. */
	ChannelCount uint8
	/** @brief The number of mip levels. Render targets always have exactly one. */
	MipLevels uint8
	/** @brief The filtering mode used when the texture is sampled. */
	FilterMode TextureFilter
	/** @brief The flags set on this texture. */
	Flags TextureFlagBits
	/** @brief Incremented every time the pixel data is reloaded. */
	Generation uint32
	/** @brief The texture Name. */
	Name string
	/** @brief Backend specific data, owned by the renderer backend. */
	InternalData interface{}
}

// IsRenderTarget reports whether the texture can be rendered to.
func (t *Texture) IsRenderTarget() bool {
	return t.Flags.Has(TextureFlagIsWriteable)
}

/** @brief The role a texture plays in a material. */
type TextureUse int

const (
	/** @brief No assigned use. Samples like a diffuse map. */
	TextureUseUnknown TextureUse = 0x00
	/** @brief The texture is used as a diffuse map. */
	TextureUseMapDiffuse TextureUse = 0x01
	/** @brief The texture is used as a specular map. */
	TextureUseMapSpecular TextureUse = 0x02
	/** @brief The texture is used as a normal map. */
	TextureUseMapNormal TextureUse = 0x03
)

/**
 * @brief A texture bound to a material slot together with its
 * sampler state.
 */
type TextureMap struct {
	/** @brief The bound texture. */
	Texture *Texture
	/** @brief The role the texture plays in the material. */
	Use TextureUse
	/** @brief Filtering mode for minification. */
	FilterMinify TextureFilter
	/** @brief Filtering mode for magnification. */
	FilterMagnify TextureFilter
	/** @brief Repeat mode on the U axis. */
	RepeatU TextureRepeat
	/** @brief Repeat mode on the V axis. */
	RepeatV TextureRepeat
}

/**
 * @brief The programmatically generated fallback textures, one per
 * material slot plus the checkerboard shown for missing textures.
 */
type DefaultTexture struct {
	DefaultTexture         *Texture
	TexturePixels          []uint8
	DefaultDiffuseTexture  *Texture
	DiffuseTexturePixels   []uint8
	DefaultSpecularTexture *Texture
	SpecularTexturePixels  []uint8
	DefaultNormalTexture   *Texture
	NormalTexturePixels    []uint8
}

func NewDefaultTexture() *DefaultTexture {
	return &DefaultTexture{
		DefaultTexture:         &Texture{},
		DefaultDiffuseTexture:  &Texture{},
		DefaultSpecularTexture: &Texture{},
		DefaultNormalTexture:   &Texture{},
	}
}

// describeSkeleton fills in the descriptor fields shared by every
// fallback texture. Pixel data is generated by the caller.
func describeSkeleton(texture *Texture, name string, dimension uint32) {
	texture.Name = name
	texture.Width = dimension
	texture.Height = dimension
	texture.ChannelCount = 4
	texture.MipLevels = 1
	texture.Generation = InvalidID
	texture.Flags = 0
}

// CreateSkeletonTextures fills in the pixel data and descriptors for
// the fallback textures. The caller still has to upload them to the
// renderer backend to make them drawable.
func (ts *DefaultTexture) CreateSkeletonTextures() bool {
	// Missing-texture fallback: a 256x256 blue/white checkerboard,
	// generated in code so it needs no asset on disk.
	const checkerDimension = uint32(256)
	const mapDimension = uint32(16)
	const channels = uint32(4)

	checker := make([]uint8, checkerDimension*checkerDimension*channels)
	for i := range checker {
		checker[i] = 255
	}
	for row := uint32(0); row < checkerDimension; row++ {
		for col := uint32(0); col < checkerDimension; col++ {
			// Kill red and green on alternating cells to leave blue.
			if (row+col)%2 == 0 {
				at := ((row * checkerDimension) + col) * channels
				checker[at+0] = 0
				checker[at+1] = 0
			}
		}
	}
	describeSkeleton(ts.DefaultTexture, DEFAULT_TEXTURE_NAME, checkerDimension)
	ts.TexturePixels = checker

	// Diffuse fallback is all white so the material colour shows as-is.
	diffuse := make([]uint8, mapDimension*mapDimension*channels)
	for i := range diffuse {
		diffuse[i] = 255
	}
	describeSkeleton(ts.DefaultDiffuseTexture, DEFAULT_DIFFUSE_TEXTURE_NAME, mapDimension)
	ts.DiffuseTexturePixels = diffuse

	// Specular fallback is black (no highlight), opaque alpha.
	specular := make([]uint8, mapDimension*mapDimension*channels)
	for i := uint32(0); i < mapDimension*mapDimension; i++ {
		specular[i*channels+3] = 255
	}
	describeSkeleton(ts.DefaultSpecularTexture, DEFAULT_SPECULAR_TEXTURE_NAME, mapDimension)
	ts.SpecularTexturePixels = specular

	// Normal fallback points every texel along +Z.
	normal := make([]uint8, mapDimension*mapDimension*channels)
	for i := uint32(0); i < mapDimension*mapDimension; i++ {
		normal[i*channels+0] = 128
		normal[i*channels+1] = 128
		normal[i*channels+2] = 255
		normal[i*channels+3] = 255
	}
	describeSkeleton(ts.DefaultNormalTexture, DEFAULT_NORMAL_TEXTURE_NAME, mapDimension)
	ts.NormalTexturePixels = normal

	return true
}

func (ts *DefaultTexture) DestroyDefaultTextures() {
	ts.DestroySkeletonTexture(ts.DefaultTexture)
	ts.DestroySkeletonTexture(ts.DefaultDiffuseTexture)
	ts.DestroySkeletonTexture(ts.DefaultSpecularTexture)
	ts.DestroySkeletonTexture(ts.DefaultNormalTexture)
}

func (ts *DefaultTexture) DestroySkeletonTexture(texture *Texture) {
	texture.ID = InvalidID
	texture.Generation = InvalidID
	texture.InternalData = nil
}
