package systems

import (
	"fmt"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/lume/engine/core"
	"github.com/spaghettifunk/lume/engine/math"
	"github.com/spaghettifunk/lume/engine/renderer"
	"github.com/spaghettifunk/lume/engine/renderer/metadata"
)

type RendererSystemConfig struct {
	ApplicationName string
	Width           uint32
	Height          uint32
}

// RendererSystem is the front-end every other system talks to. It owns
// the backend, the main viewport and the registry of offscreen render
// surfaces, and decides what gets drawn each frame.
type RendererSystem struct {
	backend renderer.RendererBackend

	AppName string
	// The current framebuffer width.
	FramebufferWidth uint32
	// The current framebuffer height.
	FramebufferHeight uint32
	// Incremented after every completed frame.
	FrameNumber uint64

	mainViewport *metadata.Viewport

	surfaceMutex  sync.Mutex
	surfaces      map[uint32]*metadata.RenderSurface
	nextSurfaceID uint32
}

func NewRendererSystem(config *RendererSystemConfig, backend renderer.RendererBackend) (*RendererSystem, error) {
	if backend == nil {
		err := fmt.Errorf("func NewRendererSystem - a renderer backend is required")
		core.LogError(err.Error())
		return nil, err
	}
	if config.Width == 0 || config.Height == 0 {
		err := fmt.Errorf("func NewRendererSystem - framebuffer dimensions must be > 0")
		core.LogError(err.Error())
		return nil, err
	}

	return &RendererSystem{
		backend:           backend,
		AppName:           config.ApplicationName,
		FramebufferWidth:  config.Width,
		FramebufferHeight: config.Height,
		surfaces:          make(map[uint32]*metadata.RenderSurface),
	}, nil
}

func (r *RendererSystem) Initialize() error {
	return r.backend.Initialize(r.AppName, r.FramebufferWidth, r.FramebufferHeight)
}

func (r *RendererSystem) Shutdown() error {
	r.surfaceMutex.Lock()
	maps.Clear(r.surfaces)
	r.surfaceMutex.Unlock()

	return r.backend.Shutdown()
}

func (r *RendererSystem) OnResized(width, height uint16) error {
	r.FramebufferWidth = uint32(width)
	r.FramebufferHeight = uint32(height)
	return r.backend.Resized(width, height)
}

// SetMainViewport installs the viewport rendered into the main
// framebuffer each frame.
func (r *RendererSystem) SetMainViewport(viewport *metadata.Viewport) {
	r.mainViewport = viewport
}

func (r *RendererSystem) MainViewport() *metadata.Viewport {
	return r.mainViewport
}

// SurfaceCreate registers an offscreen render surface. The texture must
// be a render target; the viewport says what to draw into it and with
// which camera.
func (r *RendererSystem) SurfaceCreate(texture *metadata.Texture, viewport *metadata.Viewport, mode metadata.RenderSurfaceUpdateMode) (*metadata.RenderSurface, error) {
	if texture == nil || !texture.IsRenderTarget() {
		return nil, fmt.Errorf("render surfaces require a writeable texture")
	}
	if viewport == nil || viewport.Camera == nil {
		return nil, fmt.Errorf("render surfaces require a viewport with a camera")
	}

	r.surfaceMutex.Lock()
	defer r.surfaceMutex.Unlock()

	r.nextSurfaceID++
	surface := &metadata.RenderSurface{
		ID:         r.nextSurfaceID,
		Texture:    texture,
		Viewport:   viewport,
		UpdateMode: mode,
	}
	r.surfaces[surface.ID] = surface

	core.LogDebug("render surface %d created onto texture '%s'", surface.ID, texture.Name)
	return surface, nil
}

// SurfaceDestroy removes a surface from the frame loop. The texture is
// left alone; its owner releases it. Destroying an unknown or already
// destroyed surface is a no-op.
func (r *RendererSystem) SurfaceDestroy(surface *metadata.RenderSurface) {
	if surface == nil {
		return
	}
	r.surfaceMutex.Lock()
	defer r.surfaceMutex.Unlock()

	delete(r.surfaces, surface.ID)
}

// SurfaceQueueUpdate marks a manually updated surface for a redraw on
// the next frame.
func (r *RendererSystem) SurfaceQueueUpdate(surface *metadata.RenderSurface) {
	if surface == nil {
		return
	}
	r.surfaceMutex.Lock()
	defer r.surfaceMutex.Unlock()

	surface.UpdateQueued = true
}

func (r *RendererSystem) SurfaceCount() int {
	r.surfaceMutex.Lock()
	defer r.surfaceMutex.Unlock()

	return len(r.surfaces)
}

// DrawFrame renders the main viewport followed by every due render
// surface, then ends the frame. Surfaces draw in creation order.
func (r *RendererSystem) DrawFrame(packet *metadata.RenderPacket) error {
	if err := r.backend.BeginFrame(packet.DeltaTime); err != nil {
		return err
	}

	if r.mainViewport != nil {
		if err := r.drawViewport(nil, r.mainViewport); err != nil {
			return err
		}
	}

	for _, surface := range r.snapshotSurfaces() {
		if !r.surfaceDue(surface) {
			continue
		}
		if err := r.drawViewport(surface.Texture, surface.Viewport); err != nil {
			core.LogError("render surface %d draw failed: %s", surface.ID, err.Error())
		}
	}

	if err := r.backend.EndFrame(packet.DeltaTime); err != nil {
		return err
	}
	r.FrameNumber++
	return nil
}

func (r *RendererSystem) drawViewport(target *metadata.Texture, viewport *metadata.Viewport) error {
	if viewport == nil || viewport.Camera == nil {
		return fmt.Errorf("viewport is missing a camera")
	}
	var geometries []*metadata.GeometryRenderData
	if viewport.Provider != nil {
		geometries = viewport.Provider.VisibleGeometries(viewport.Camera.ViewMask)
	}
	return r.backend.DrawViewport(target, viewport, geometries)
}

func (r *RendererSystem) snapshotSurfaces() []*metadata.RenderSurface {
	r.surfaceMutex.Lock()
	defer r.surfaceMutex.Unlock()

	out := maps.Values(r.surfaces)
	slices.SortFunc(out, func(a, b *metadata.RenderSurface) int {
		return int(a.ID) - int(b.ID)
	})
	return out
}

func (r *RendererSystem) surfaceDue(surface *metadata.RenderSurface) bool {
	switch surface.UpdateMode {
	case metadata.SurfaceUpdateAlways, metadata.SurfaceUpdateVisible:
		return true
	case metadata.SurfaceUpdateManual:
		r.surfaceMutex.Lock()
		defer r.surfaceMutex.Unlock()
		if surface.UpdateQueued {
			surface.UpdateQueued = false
			return true
		}
	}
	return false
}

func (r *RendererSystem) TextureCreate(pixels []uint8, texture *metadata.Texture) {
	r.backend.TextureCreate(pixels, texture)
}

func (r *RendererSystem) TextureDestroy(texture *metadata.Texture) {
	r.backend.TextureDestroy(texture)
}

func (r *RendererSystem) TextureCreateWriteable(texture *metadata.Texture) {
	r.backend.TextureCreateWriteable(texture)
}

func (r *RendererSystem) TextureResize(texture *metadata.Texture, newWidth, newHeight uint32) {
	r.backend.TextureResize(texture, newWidth, newHeight)
}

func (r *RendererSystem) TextureWriteData(texture *metadata.Texture, offset, size uint32, pixels []uint8) {
	r.backend.TextureWriteData(texture, offset, size, pixels)
}

// TextureReadData pulls the current contents of a texture out of the
// backend. This is how offscreen captures become CPU-side images.
func (r *RendererSystem) TextureReadData(texture *metadata.Texture) (*metadata.ImageResourceData, error) {
	return r.backend.TextureReadData(texture)
}

func (r *RendererSystem) CreateGeometry(geometry *metadata.Geometry, vertices []math.Vertex3D, indices []uint32) error {
	return r.backend.CreateGeometry(geometry, vertices, indices)
}

func (r *RendererSystem) DestroyGeometry(geometry *metadata.Geometry) {
	r.backend.DestroyGeometry(geometry)
}
