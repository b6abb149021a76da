package software

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lume/engine/math"
	"github.com/spaghettifunk/lume/engine/renderer/components"
	"github.com/spaghettifunk/lume/engine/renderer/metadata"
)

func newTestBackend(t *testing.T) *Renderer {
	t.Helper()
	r := New()
	require.NoError(t, r.Initialize("test", 8, 8))
	return r
}

func newCaptureCamera(orthoSize float32) *components.Camera {
	cam := components.NewCamera()
	cam.SetOrthographic(true)
	cam.SetOrthoSize(math.NewVec2(orthoSize, orthoSize))
	cam.SetNearClip(0.0001)
	cam.SetFarClip(100)
	cam.SetViewFromWorld(math.NewMat4Translation(math.NewVec3(0, 0, -2)))
	return cam
}

func newRenderTexture(t *testing.T, r *Renderer, size uint32) *metadata.Texture {
	t.Helper()
	tex := &metadata.Texture{
		ID:           1,
		Name:         "capture",
		Width:        size,
		Height:       size,
		ChannelCount: 4,
		MipLevels:    1,
		Flags:        metadata.TextureFlagBits(metadata.TextureFlagIsWriteable),
	}
	r.TextureCreateWriteable(tex)
	return tex
}

func unlitTechnique(useDiffuseMap bool) *metadata.Technique {
	return &metadata.Technique{
		ID:   1,
		Name: "test",
		Passes: []*metadata.TechniquePass{
			{Name: "base", Unlit: true, UseDiffuseMap: useDiffuseMap, CullMode: metadata.FaceCullModeBack, DepthWrite: true},
		},
	}
}

func quadGeometry(halfSize float32) *metadata.Geometry {
	return &metadata.Geometry{
		ID:   1,
		Name: "quad",
		Extents: math.Extents3D{
			Min: math.NewVec3(-halfSize, -halfSize, 0),
			Max: math.NewVec3(halfSize, halfSize, 0),
		},
	}
}

func worldPath() *metadata.RenderPath {
	return metadata.NewRenderPath("Renderpath.Test", &metadata.RenderPassConfig{
		Name:        "Renderpass.Test.World",
		ClearColour: math.NewVec4(0, 0, 0, 1),
		ClearFlags:  metadata.RENDERPASS_CLEAR_COLOUR_BUFFER_FLAG,
	})
}

func pixelAt(data *metadata.ImageResourceData, x, y int) [4]uint8 {
	i := (y*int(data.Width) + x) * 4
	return [4]uint8{data.Pixels[i], data.Pixels[i+1], data.Pixels[i+2], data.Pixels[i+3]}
}

func TestWriteableTextureRoundTrip(t *testing.T) {
	r := newTestBackend(t)
	tex := newRenderTexture(t, r, 4)

	pixels := make([]uint8, 4*4*4)
	for i := range pixels {
		pixels[i] = uint8(i % 251)
	}
	r.TextureWriteData(tex, 0, uint32(len(pixels)), pixels)

	data, err := r.TextureReadData(tex)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), data.Width)
	assert.Equal(t, uint32(4), data.Height)
	assert.Equal(t, pixels, data.Pixels)
}

func TestTextureReadDataWithoutBackingFails(t *testing.T) {
	r := newTestBackend(t)
	_, err := r.TextureReadData(&metadata.Texture{Name: "empty"})
	assert.Error(t, err)
}

func TestDrawViewportFillsTarget(t *testing.T) {
	r := newTestBackend(t)
	tex := newRenderTexture(t, r, 8)

	cam := newCaptureCamera(4)
	vp := metadata.NewViewport(nil, cam, worldPath())

	material := &metadata.Material{
		Name:          "red",
		DiffuseColour: math.NewVec4(1, 0, 0, 1),
		Technique:     unlitTechnique(false),
	}
	geoms := []*metadata.GeometryRenderData{{
		Model:    math.NewMat4Identity(),
		Geometry: quadGeometry(2),
		Material: material,
		UniqueID: 7,
	}}

	require.NoError(t, r.DrawViewport(tex, vp, geoms))

	data, err := r.TextureReadData(tex)
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{255, 0, 0, 255}, pixelAt(data, 4, 4))
	assert.Equal(t, [4]uint8{255, 0, 0, 255}, pixelAt(data, 0, 0))
}

func TestDrawViewportRegisteredVerticesGiveTightBounds(t *testing.T) {
	r := newTestBackend(t)
	tex := newRenderTexture(t, r, 8)

	// Extents claim the whole ortho volume but the registered vertices
	// only cover the central half, so only that half is filled.
	geometry := quadGeometry(2)
	vertices := []math.Vertex3D{
		{Position: math.NewVec3(-1, -1, 0)},
		{Position: math.NewVec3(1, -1, 0)},
		{Position: math.NewVec3(1, 1, 0)},
		{Position: math.NewVec3(-1, 1, 0)},
	}
	require.NoError(t, r.CreateGeometry(geometry, vertices, []uint32{0, 1, 2, 2, 3, 0}))

	cam := newCaptureCamera(4)
	vp := metadata.NewViewport(nil, cam, worldPath())
	material := &metadata.Material{
		Name:          "green",
		DiffuseColour: math.NewVec4(0, 1, 0, 1),
		Technique:     unlitTechnique(false),
	}
	geoms := []*metadata.GeometryRenderData{{
		Model:    math.NewMat4Identity(),
		Geometry: geometry,
		Material: material,
		UniqueID: 8,
	}}

	require.NoError(t, r.DrawViewport(tex, vp, geoms))

	data, err := r.TextureReadData(tex)
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{0, 255, 0, 255}, pixelAt(data, 4, 4))
	assert.Equal(t, [4]uint8{0, 0, 0, 255}, pixelAt(data, 0, 0))
}

func TestDrawViewportSamplesDiffuseMap(t *testing.T) {
	r := newTestBackend(t)
	tex := newRenderTexture(t, r, 8)

	blue := &metadata.Texture{ID: 2, Name: "blue", Width: 2, Height: 2, ChannelCount: 4}
	pixels := make([]uint8, 2*2*4)
	for i := 0; i < 4; i++ {
		pixels[i*4+2] = 255
		pixels[i*4+3] = 255
	}
	r.TextureCreate(pixels, blue)

	material := &metadata.Material{
		Name:          "textured",
		DiffuseColour: math.NewVec4(1, 1, 1, 1),
		DiffuseMap: &metadata.TextureMap{
			Texture:       blue,
			Use:           metadata.TextureUseMapDiffuse,
			FilterMinify:  metadata.TextureFilterModeLinear,
			FilterMagnify: metadata.TextureFilterModeLinear,
		},
		Technique: unlitTechnique(true),
	}

	cam := newCaptureCamera(4)
	vp := metadata.NewViewport(nil, cam, worldPath())
	geoms := []*metadata.GeometryRenderData{{
		Model:    math.NewMat4Identity(),
		Geometry: quadGeometry(2),
		Material: material,
		UniqueID: 9,
	}}

	require.NoError(t, r.DrawViewport(tex, vp, geoms))

	data, err := r.TextureReadData(tex)
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{0, 0, 255, 255}, pixelAt(data, 4, 4))
}

func TestDrawViewportTilesRepeatingDiffuseMap(t *testing.T) {
	r := newTestBackend(t)

	// A 2x2 texture, left column red, right column blue.
	striped := &metadata.Texture{ID: 4, Name: "striped", Width: 2, Height: 2, ChannelCount: 4}
	pixels := []uint8{
		255, 0, 0, 255, 0, 0, 255, 255,
		255, 0, 0, 255, 0, 0, 255, 255,
	}
	r.TextureCreate(pixels, striped)

	// Texture coordinates span two repetitions on U.
	geometry := quadGeometry(2)
	vertices := []math.Vertex3D{
		{Position: math.NewVec3(-2, -2, 0), Texcoord: math.NewVec2(0, 0)},
		{Position: math.NewVec3(2, -2, 0), Texcoord: math.NewVec2(2, 0)},
		{Position: math.NewVec3(2, 2, 0), Texcoord: math.NewVec2(2, 1)},
		{Position: math.NewVec3(-2, 2, 0), Texcoord: math.NewVec2(0, 1)},
	}
	require.NoError(t, r.CreateGeometry(geometry, vertices, []uint32{0, 1, 2, 2, 3, 0}))

	mapFor := func(repeat metadata.TextureRepeat) *metadata.TextureMap {
		return &metadata.TextureMap{
			Texture:       striped,
			Use:           metadata.TextureUseMapDiffuse,
			FilterMinify:  metadata.TextureFilterModeNearest,
			FilterMagnify: metadata.TextureFilterModeNearest,
			RepeatU:       repeat,
			RepeatV:       repeat,
		}
	}
	drawWith := func(repeat metadata.TextureRepeat) *metadata.ImageResourceData {
		tex := newRenderTexture(t, r, 8)
		material := &metadata.Material{
			Name:          "striped",
			DiffuseColour: math.NewVec4(1, 1, 1, 1),
			DiffuseMap:    mapFor(repeat),
			Technique:     unlitTechnique(true),
		}
		cam := newCaptureCamera(4)
		vp := metadata.NewViewport(nil, cam, worldPath())
		geoms := []*metadata.GeometryRenderData{{
			Model:    math.NewMat4Identity(),
			Geometry: geometry,
			Material: material,
			UniqueID: 12,
		}}
		require.NoError(t, r.DrawViewport(tex, vp, geoms))
		data, err := r.TextureReadData(tex)
		require.NoError(t, err)
		return data
	}

	// Tiled: the pattern restarts at the second repetition, so the
	// column just past the middle is red again.
	tiled := drawWith(metadata.TextureRepeatRepeat)
	assert.Equal(t, [4]uint8{255, 0, 0, 255}, pixelAt(tiled, 1, 4))
	assert.Equal(t, [4]uint8{0, 0, 255, 255}, pixelAt(tiled, 3, 4))
	assert.Equal(t, [4]uint8{255, 0, 0, 255}, pixelAt(tiled, 5, 4))

	// Clamped: one stretched copy, so the right half stays blue.
	clamped := drawWith(metadata.TextureRepeatClampToEdge)
	assert.Equal(t, [4]uint8{255, 0, 0, 255}, pixelAt(clamped, 1, 4))
	assert.Equal(t, [4]uint8{0, 0, 255, 255}, pixelAt(clamped, 5, 4))
}

func TestLitPassAppliesAmbient(t *testing.T) {
	r := newTestBackend(t)
	tex := newRenderTexture(t, r, 8)

	technique := &metadata.Technique{
		ID:   3,
		Name: "lit",
		Passes: []*metadata.TechniquePass{
			{Name: "base", Unlit: false, UseDiffuseMap: false, CullMode: metadata.FaceCullModeBack},
		},
	}
	material := &metadata.Material{
		Name:          "white",
		DiffuseColour: math.NewVec4(1, 1, 1, 1),
		Technique:     technique,
	}

	cam := newCaptureCamera(4)
	vp := metadata.NewViewport(nil, cam, worldPath())
	geoms := []*metadata.GeometryRenderData{{
		Model:    math.NewMat4Identity(),
		Geometry: quadGeometry(2),
		Material: material,
		UniqueID: 10,
	}}

	require.NoError(t, r.DrawViewport(tex, vp, geoms))

	data, err := r.TextureReadData(tex)
	require.NoError(t, err)
	px := pixelAt(data, 4, 4)
	assert.Equal(t, uint8(204), px[0])
	assert.Equal(t, uint8(204), px[1])
	assert.Equal(t, uint8(204), px[2])
	assert.Equal(t, uint8(255), px[3])
}

func TestGeometryBehindCameraIsSkipped(t *testing.T) {
	r := newTestBackend(t)
	tex := newRenderTexture(t, r, 8)

	cam := newCaptureCamera(4)
	vp := metadata.NewViewport(nil, cam, worldPath())
	material := &metadata.Material{
		Name:          "red",
		DiffuseColour: math.NewVec4(1, 0, 0, 1),
		Technique:     unlitTechnique(false),
	}
	geoms := []*metadata.GeometryRenderData{{
		// Behind the camera, which sits at z = -2 looking towards +Z.
		Model:    math.NewMat4Translation(math.NewVec3(0, 0, -200)),
		Geometry: quadGeometry(2),
		Material: material,
		UniqueID: 11,
	}}

	require.NoError(t, r.DrawViewport(tex, vp, geoms))

	data, err := r.TextureReadData(tex)
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{0, 0, 0, 255}, pixelAt(data, 4, 4))
}
