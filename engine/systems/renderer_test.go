package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lume/engine/math"
	"github.com/spaghettifunk/lume/engine/renderer/components"
	"github.com/spaghettifunk/lume/engine/renderer/metadata"
)

type stubProvider struct {
	data     []*metadata.GeometryRenderData
	lastMask uint32
	calls    int
}

func (p *stubProvider) VisibleGeometries(viewMask uint32) []*metadata.GeometryRenderData {
	p.lastMask = viewMask
	p.calls++
	return p.data
}

// captureScene registers an unlit red plane and returns everything a
// surface draw needs: the provider serving it and a capture camera.
func captureScene(t *testing.T, manager *SystemManager) (*stubProvider, *components.Camera) {
	t.Helper()

	_, err := manager.TechniqueSystem.AcquireFromConfig(&metadata.TechniqueConfig{
		Name: "Test.Unlit",
		Passes: []metadata.TechniquePassConfig{
			{Name: "Capture", Unlit: true, UseDiffuseMap: false, CullMode: "none"},
		},
	}, true)
	require.NoError(t, err)

	_, err = manager.MaterialSystem.AcquireFromConfig(&metadata.MaterialConfig{
		Name:          "test_red",
		TechniqueName: "Test.Unlit",
		AutoRelease:   true,
		DiffuseColour: math.NewVec4(1, 0, 0, 1),
		Shininess:     8,
	})
	require.NoError(t, err)

	config, err := manager.GeometrySystem.GeneratePlaneConfig(10, 10, 1, 1, 1, 1, "capture_plane", "test_red")
	require.NoError(t, err)
	geometry, err := manager.GeometrySystem.AcquireFromConfig(config, true)
	require.NoError(t, err)

	provider := &stubProvider{
		data: []*metadata.GeometryRenderData{
			{
				Model:    math.NewMat4Identity(),
				Geometry: geometry,
				Material: geometry.Material,
			},
		},
	}

	camera := components.NewCamera()
	camera.SetPosition(math.NewVec3(0, 0, -5))
	camera.SetOrthographic(true)
	camera.SetOrthoSize(math.NewVec2(20, 20))
	camera.SetNearClip(0.1)
	camera.SetFarClip(100)
	camera.SetViewMask(1 << 1)

	return provider, camera
}

func clearingRenderPath(colour math.Vec4) *metadata.RenderPath {
	return metadata.NewRenderPath("capture", &metadata.RenderPassConfig{
		Name:        "World",
		ClearColour: colour,
		ClearFlags:  metadata.RENDERPASS_CLEAR_COLOUR_BUFFER_FLAG,
	})
}

func pixelAt(data *metadata.ImageResourceData, x, y int) [4]uint8 {
	i := (y*int(data.Width) + x) * 4
	return [4]uint8{data.Pixels[i], data.Pixels[i+1], data.Pixels[i+2], data.Pixels[i+3]}
}

func TestSurfaceCreateValidation(t *testing.T) {
	manager := newTestSystems(t)
	r := manager.RendererSystem

	_, camera := captureScene(t, manager)
	viewport := metadata.NewViewport(nil, camera, nil)

	// The default texture is not writeable.
	_, err := r.SurfaceCreate(manager.TextureSystem.GetDefaultTexture(), viewport, metadata.SurfaceUpdateAlways)
	assert.Error(t, err)

	_, err = r.SurfaceCreate(nil, viewport, metadata.SurfaceUpdateAlways)
	assert.Error(t, err)

	target, err := manager.TextureSystem.AcquireWriteable("validation_target", 32, 32, 4, false)
	require.NoError(t, err)

	_, err = r.SurfaceCreate(target, metadata.NewViewport(nil, nil, nil), metadata.SurfaceUpdateAlways)
	assert.Error(t, err)

	surface, err := r.SurfaceCreate(target, viewport, metadata.SurfaceUpdateAlways)
	require.NoError(t, err)
	assert.Equal(t, 1, r.SurfaceCount())

	r.SurfaceDestroy(surface)
	assert.Equal(t, 0, r.SurfaceCount())

	// Destroying twice, or destroying nil, is a no-op.
	r.SurfaceDestroy(surface)
	r.SurfaceDestroy(nil)
	assert.Equal(t, 0, r.SurfaceCount())
}

func TestDrawFrameRendersDueSurfaces(t *testing.T) {
	manager := newTestSystems(t)
	r := manager.RendererSystem

	provider, camera := captureScene(t, manager)
	viewport := metadata.NewViewport(provider, camera, clearingRenderPath(math.NewVec4(0, 0, 1, 1)))

	target, err := manager.TextureSystem.AcquireWriteable("frame_target", 64, 64, 4, false)
	require.NoError(t, err)

	_, err = r.SurfaceCreate(target, viewport, metadata.SurfaceUpdateAlways)
	require.NoError(t, err)

	require.NoError(t, r.DrawFrame(&metadata.RenderPacket{DeltaTime: 0.016}))

	assert.Equal(t, uint64(1), r.FrameNumber)
	assert.Equal(t, 1, provider.calls)
	assert.Equal(t, uint32(1<<1), provider.lastMask, "the provider must be filtered by the camera view mask")

	data, err := r.TextureReadData(target)
	require.NoError(t, err)

	// The 10x10 plane fills the middle of the 20x20 ortho volume; the
	// rest keeps the clear colour.
	assert.Equal(t, [4]uint8{255, 0, 0, 255}, pixelAt(data, 32, 32))
	assert.Equal(t, [4]uint8{0, 0, 255, 255}, pixelAt(data, 2, 2))
	assert.Equal(t, [4]uint8{0, 0, 255, 255}, pixelAt(data, 61, 61))
}

func TestManualSurfacesDrawOnlyWhenQueued(t *testing.T) {
	manager := newTestSystems(t)
	r := manager.RendererSystem

	provider, camera := captureScene(t, manager)
	viewport := metadata.NewViewport(provider, camera, clearingRenderPath(math.NewVec4(0, 0, 1, 1)))

	target, err := manager.TextureSystem.AcquireWriteable("manual_target", 64, 64, 4, false)
	require.NoError(t, err)

	surface, err := r.SurfaceCreate(target, viewport, metadata.SurfaceUpdateManual)
	require.NoError(t, err)

	require.NoError(t, r.DrawFrame(&metadata.RenderPacket{DeltaTime: 0.016}))
	assert.Equal(t, 0, provider.calls, "a manual surface must not draw unqueued")

	data, err := r.TextureReadData(target)
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{0, 0, 0, 0}, pixelAt(data, 32, 32))

	r.SurfaceQueueUpdate(surface)
	require.NoError(t, r.DrawFrame(&metadata.RenderPacket{DeltaTime: 0.016}))
	assert.Equal(t, 1, provider.calls)

	data, err = r.TextureReadData(target)
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{255, 0, 0, 255}, pixelAt(data, 32, 32))

	// The queued flag is consumed by the draw.
	require.NoError(t, r.DrawFrame(&metadata.RenderPacket{DeltaTime: 0.016}))
	assert.Equal(t, 1, provider.calls)
}

func TestDrawFrameFailsOnBrokenMainViewport(t *testing.T) {
	manager := newTestSystems(t)
	r := manager.RendererSystem

	r.SetMainViewport(metadata.NewViewport(nil, nil, nil))
	err := r.DrawFrame(&metadata.RenderPacket{DeltaTime: 0.016})
	assert.Error(t, err)

	r.SetMainViewport(nil)
	assert.NoError(t, r.DrawFrame(&metadata.RenderPacket{DeltaTime: 0.016}))
}

func TestOnResized(t *testing.T) {
	manager := newTestSystems(t)
	r := manager.RendererSystem

	require.NoError(t, r.OnResized(320, 200))
	assert.Equal(t, uint32(320), r.FramebufferWidth)
	assert.Equal(t, uint32(200), r.FramebufferHeight)
}
