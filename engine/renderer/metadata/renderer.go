package metadata

import (
	"github.com/spaghettifunk/lume/engine/math"
	"github.com/spaghettifunk/lume/engine/renderer/components"
)

/** @brief An invalid 32-bit identifier. */
const InvalidID uint32 = 4294967295

/** @brief An invalid 16-bit identifier. */
const InvalidIDUint16 uint16 = 65535

/** @brief An invalid 64-bit identifier. */
const InvalidIDUint64 uint64 = 18446744073709551615

/**
 * @brief The types of clearing to be done on a renderpass.
 * Can be combined together for multiple clearing functions.
 */
type RenderpassClearFlag uint32

const (
	/** @brief No clearing should be done. */
	RENDERPASS_CLEAR_NONE_FLAG RenderpassClearFlag = 0x0
	/** @brief Clear the colour buffer. */
	RENDERPASS_CLEAR_COLOUR_BUFFER_FLAG RenderpassClearFlag = 0x1
	/** @brief Clear the depth buffer. */
	RENDERPASS_CLEAR_DEPTH_BUFFER_FLAG RenderpassClearFlag = 0x2
	/** @brief Clear the stencil buffer. */
	RENDERPASS_CLEAR_STENCIL_BUFFER_FLAG RenderpassClearFlag = 0x4
)

/** @brief Determines face culling mode during rendering. */
type FaceCullMode int

const (
	/** @brief No faces are culled. */
	FaceCullModeNone FaceCullMode = 0x0
	/** @brief Only front faces are culled. */
	FaceCullModeFront FaceCullMode = 0x1
	/** @brief Only back faces are culled. */
	FaceCullModeBack FaceCullMode = 0x2
	/** @brief Both front and back faces are culled. */
	FaceCullModeFrontAndBack FaceCullMode = 0x3
)

type RenderPassConfig struct {
	/** @brief The Name of this renderpass. */
	Name string
	/** @brief The clear colour used for this renderpass. */
	ClearColour math.Vec4
	/** @brief The clear flags for this renderpass. */
	ClearFlags RenderpassClearFlag
	Depth      float32
	Stencil    uint32
}

/**
 * @brief An ordered list of renderpasses, shared by every viewport
 * that wants the same rendering recipe. Viewports hold a pointer to
 * a render path rather than a copy, so offscreen captures render
 * exactly like the view they mirror.
 */
type RenderPath struct {
	Name   string
	Passes []*RenderPassConfig
}

func NewRenderPath(name string, passes ...*RenderPassConfig) *RenderPath {
	return &RenderPath{
		Name:   name,
		Passes: passes,
	}
}

/**
 * @brief Supplies the geometry visible to a camera. Implemented by
 * the scene so the renderer does not depend on scene internals.
 */
type RenderProvider interface {
	VisibleGeometries(viewMask uint32) []*GeometryRenderData
}

/**
 * @brief Connects a geometry provider, a camera and a render path.
 * The renderer owns one main viewport; render surfaces carry their
 * own viewport for offscreen targets.
 */
type Viewport struct {
	/** @brief The source of renderable geometry, usually the scene. */
	Provider RenderProvider
	/** @brief The camera this viewport renders from. */
	Camera *components.Camera
	/** @brief The rendering recipe. Shared by pointer between viewports. */
	RenderPath *RenderPath
	/** @brief The render area as x, y, width, height. All zero means the full target. */
	RenderArea math.Vec4
}

func NewViewport(provider RenderProvider, camera *components.Camera, renderPath *RenderPath) *Viewport {
	return &Viewport{
		Provider:   provider,
		Camera:     camera,
		RenderPath: renderPath,
	}
}

/**
 * @brief A structure which is generated by the application and sent once
 * to the renderer to render a given frame.
 */
type RenderPacket struct {
	DeltaTime   float64
	FrameNumber uint64
}

/** @brief A single geometry to be drawn, with its world matrix and resolved material. */
type GeometryRenderData struct {
	Model    math.Mat4
	Geometry *Geometry
	/** @brief The material to draw with. Overrides the geometry's own material when set. */
	Material *Material
	UniqueID uint32
}
