package renderer

import (
	"github.com/spaghettifunk/lume/engine/math"
	"github.com/spaghettifunk/lume/engine/renderer/metadata"
)

// RendererBackend is the contract every rendering backend fulfills.
// The renderer system front-end drives one of these; the engine ships
// a deterministic software implementation for headless use.
type RendererBackend interface {
	Initialize(appName string, appWidth, appHeight uint32) error
	Shutdown() error
	Resized(width, height uint16) error
	BeginFrame(deltaTime float64) error
	EndFrame(deltaTime float64) error

	// TextureCreate uploads pixel data for a texture and stores the
	// backend representation in texture.InternalData.
	TextureCreate(pixels []uint8, texture *metadata.Texture)
	TextureDestroy(texture *metadata.Texture)
	// TextureCreateWriteable allocates a texture that can be used as a
	// render target.
	TextureCreateWriteable(texture *metadata.Texture)
	TextureResize(texture *metadata.Texture, newWidth, newHeight uint32)
	TextureWriteData(texture *metadata.Texture, offset, size uint32, pixels []uint8)
	// TextureReadData copies the texture contents back out. Used to
	// extract offscreen captures before their surface is destroyed.
	TextureReadData(texture *metadata.Texture) (*metadata.ImageResourceData, error)

	CreateGeometry(geometry *metadata.Geometry, vertices []math.Vertex3D, indices []uint32) error
	DestroyGeometry(geometry *metadata.Geometry)

	// DrawViewport renders the given geometries through the viewport's
	// camera and render path into target. A nil target means the main
	// framebuffer.
	DrawViewport(target *metadata.Texture, viewport *metadata.Viewport, geometries []*metadata.GeometryRenderData) error
}
