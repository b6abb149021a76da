package software

import (
	"fmt"
	"image"
	"image/color"
	"sort"

	"golang.org/x/image/draw"

	"github.com/spaghettifunk/lume/engine/core"
	"github.com/spaghettifunk/lume/engine/math"
	"github.com/spaghettifunk/lume/engine/renderer/metadata"
)

// Flat ambient term applied by lit passes. The reference backend has
// no light sources.
const litAmbient = 0.8

// Drawn when a geometry arrives without a usable material.
var missingMaterialColour = color.RGBA{R: 255, G: 0, B: 255, A: 255}

type geometryBuffers struct {
	vertices []math.Vertex3D
	indices  []uint32
}

// Renderer is a deterministic software backend. Geometries are
// projected through the camera and filled as screen-space boxes,
// back to front. It exists so the engine can run and be tested
// without a GPU; captures read back exactly what was drawn.
type Renderer struct {
	appName        string
	width          uint32
	height         uint32
	frameNumber    uint64
	mainTarget     *image.RGBA
	geometries     map[uint32]*geometryBuffers
	nextGeometryID uint32
}

func New() *Renderer {
	return &Renderer{
		geometries: make(map[uint32]*geometryBuffers),
	}
}

func (r *Renderer) Initialize(appName string, appWidth, appHeight uint32) error {
	if appWidth == 0 || appHeight == 0 {
		return fmt.Errorf("software renderer requires non-zero dimensions, got %dx%d", appWidth, appHeight)
	}
	r.appName = appName
	r.width = appWidth
	r.height = appHeight
	r.mainTarget = image.NewRGBA(image.Rect(0, 0, int(appWidth), int(appHeight)))
	core.LogInfo("software renderer initialized at %dx%d", appWidth, appHeight)
	return nil
}

func (r *Renderer) Shutdown() error {
	r.geometries = make(map[uint32]*geometryBuffers)
	r.mainTarget = nil
	return nil
}

func (r *Renderer) Resized(width, height uint16) error {
	r.width = uint32(width)
	r.height = uint32(height)
	r.mainTarget = image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	return nil
}

func (r *Renderer) BeginFrame(deltaTime float64) error {
	return nil
}

func (r *Renderer) EndFrame(deltaTime float64) error {
	r.frameNumber++
	return nil
}

// FrameNumber returns the number of completed frames.
func (r *Renderer) FrameNumber() uint64 {
	return r.frameNumber
}

func (r *Renderer) TextureCreate(pixels []uint8, texture *metadata.Texture) {
	channels := texture.ChannelCount
	if channels == 0 {
		channels = 4
	}
	data := &metadata.ImageResourceData{
		ChannelCount: channels,
		Width:        texture.Width,
		Height:       texture.Height,
		Pixels:       pixels,
	}
	texture.InternalData = data.RGBA()
}

func (r *Renderer) TextureDestroy(texture *metadata.Texture) {
	texture.InternalData = nil
}

func (r *Renderer) TextureCreateWriteable(texture *metadata.Texture) {
	texture.InternalData = image.NewRGBA(image.Rect(0, 0, int(texture.Width), int(texture.Height)))
}

func (r *Renderer) TextureResize(texture *metadata.Texture, newWidth, newHeight uint32) {
	texture.Width = newWidth
	texture.Height = newHeight
	texture.InternalData = image.NewRGBA(image.Rect(0, 0, int(newWidth), int(newHeight)))
}

func (r *Renderer) TextureWriteData(texture *metadata.Texture, offset, size uint32, pixels []uint8) {
	img, ok := texture.InternalData.(*image.RGBA)
	if !ok {
		core.LogWarn("texture write on '%s' which has no backing image", texture.Name)
		return
	}
	end := int(offset + size)
	if end > len(img.Pix) {
		end = len(img.Pix)
	}
	copy(img.Pix[offset:end], pixels)
}

func (r *Renderer) TextureReadData(texture *metadata.Texture) (*metadata.ImageResourceData, error) {
	img, ok := texture.InternalData.(*image.RGBA)
	if !ok {
		return nil, fmt.Errorf("texture '%s' has no backing image to read", texture.Name)
	}
	pixels := make([]uint8, len(img.Pix))
	copy(pixels, img.Pix)
	return &metadata.ImageResourceData{
		ChannelCount: 4,
		Width:        texture.Width,
		Height:       texture.Height,
		Pixels:       pixels,
	}, nil
}

func (r *Renderer) CreateGeometry(geometry *metadata.Geometry, vertices []math.Vertex3D, indices []uint32) error {
	if geometry == nil {
		return fmt.Errorf("cannot create backend data for a nil geometry")
	}
	r.nextGeometryID++
	id := r.nextGeometryID

	buffers := &geometryBuffers{
		vertices: make([]math.Vertex3D, len(vertices)),
		indices:  make([]uint32, len(indices)),
	}
	copy(buffers.vertices, vertices)
	copy(buffers.indices, indices)

	r.geometries[id] = buffers
	geometry.InternalID = id
	return nil
}

func (r *Renderer) DestroyGeometry(geometry *metadata.Geometry) {
	if geometry == nil {
		return
	}
	delete(r.geometries, geometry.InternalID)
	geometry.InternalID = metadata.InvalidID
}

func (r *Renderer) DrawViewport(target *metadata.Texture, viewport *metadata.Viewport, geometries []*metadata.GeometryRenderData) error {
	dst := r.mainTarget
	if target != nil {
		img, ok := target.InternalData.(*image.RGBA)
		if !ok {
			return fmt.Errorf("render target '%s' has no backing image", target.Name)
		}
		dst = img
	}
	if dst == nil {
		return fmt.Errorf("no render target bound")
	}
	if viewport == nil || viewport.Camera == nil {
		return fmt.Errorf("viewport has no camera")
	}

	view := viewport.Camera.GetView()
	viewProj := view.Mul(viewport.Camera.GetProjection())

	passes := []*metadata.RenderPassConfig{nil}
	if viewport.RenderPath != nil && len(viewport.RenderPath.Passes) > 0 {
		passes = viewport.RenderPath.Passes
	}

	ordered := orderBackToFront(geometries, view)

	for _, pass := range passes {
		if pass != nil && pass.ClearFlags&metadata.RENDERPASS_CLEAR_COLOUR_BUFFER_FLAG != 0 {
			clear := image.NewUniform(vecToColour(pass.ClearColour, 1.0))
			draw.Draw(dst, dst.Bounds(), clear, image.Point{}, draw.Src)
		}
		for _, data := range ordered {
			r.drawGeometry(dst, data, viewProj)
		}
	}
	return nil
}

func (r *Renderer) drawGeometry(dst *image.RGBA, data *metadata.GeometryRenderData, viewProj math.Mat4) {
	rect, ok := r.projectBounds(data, viewProj, dst.Bounds())
	if !ok {
		return
	}

	material := data.Material
	if material == nil && data.Geometry != nil {
		material = data.Geometry.Material
	}
	if material == nil || material.Technique == nil {
		draw.Draw(dst, rect, image.NewUniform(missingMaterialColour), image.Point{}, draw.Src)
		return
	}

	for _, pass := range material.Technique.Passes {
		if pass.CullMode == metadata.FaceCullModeFrontAndBack {
			continue
		}
		factor := float32(1.0)
		if !pass.Unlit {
			factor = litAmbient
		}

		src := diffuseImage(material)
		if pass.UseDiffuseMap && src != nil {
			r.drawDiffuse(dst, rect, data, material.DiffuseMap, src)
			modulate(dst, rect, material.DiffuseColour, factor)
			continue
		}
		fill := image.NewUniform(vecToColour(material.DiffuseColour, factor))
		draw.Draw(dst, rect, fill, image.Point{}, draw.Src)
	}
}

// projectBounds transforms the geometry through the camera and returns
// the covered screen rectangle. Registered vertex buffers give a tight
// bound; otherwise the extents corners are used.
func (r *Renderer) projectBounds(data *metadata.GeometryRenderData, viewProj math.Mat4, bounds image.Rectangle) (image.Rectangle, bool) {
	var points []math.Vec3
	if data.Geometry != nil {
		if buffers, ok := r.geometries[data.Geometry.InternalID]; ok && len(buffers.vertices) > 0 {
			points = make([]math.Vec3, 0, len(buffers.vertices))
			for _, v := range buffers.vertices {
				points = append(points, v.Position)
			}
		} else {
			corners := data.Geometry.Extents.Corners()
			points = corners[:]
		}
	}
	if len(points) == 0 {
		return image.Rectangle{}, false
	}

	first := true
	var minX, maxX, minY, maxY, minZ, maxZ float32
	for _, p := range points {
		world := p.Transform(data.Model)
		clip := world.ToVec4(1).Transform(viewProj)
		if clip.W <= 0 {
			continue
		}
		ndc := clip.MulScalar(1.0 / clip.W)
		if first {
			minX, maxX = ndc.X, ndc.X
			minY, maxY = ndc.Y, ndc.Y
			minZ, maxZ = ndc.Z, ndc.Z
			first = false
			continue
		}
		minX = math.Min(minX, ndc.X)
		maxX = math.Max(maxX, ndc.X)
		minY = math.Min(minY, ndc.Y)
		maxY = math.Max(maxY, ndc.Y)
		minZ = math.Min(minZ, ndc.Z)
		maxZ = math.Max(maxZ, ndc.Z)
	}
	if first {
		return image.Rectangle{}, false
	}
	if minZ > 1 || maxZ < 0 {
		return image.Rectangle{}, false
	}

	w := float32(bounds.Dx())
	h := float32(bounds.Dy())

	// NDC to pixels, with y growing downwards on screen.
	x0 := int(math.Floor((minX*0.5 + 0.5) * w))
	x1 := int(math.Ceil((maxX*0.5 + 0.5) * w))
	y0 := int(math.Floor((1.0 - (maxY*0.5 + 0.5)) * h))
	y1 := int(math.Ceil((1.0 - (minY*0.5 + 0.5)) * h))

	rect := image.Rect(
		math.Clamp(x0, bounds.Min.X, bounds.Max.X),
		math.Clamp(y0, bounds.Min.Y, bounds.Max.Y),
		math.Clamp(x1, bounds.Min.X, bounds.Max.X),
		math.Clamp(y1, bounds.Min.Y, bounds.Max.Y),
	)
	if rect.Empty() {
		return image.Rectangle{}, false
	}
	return rect, true
}

func diffuseImage(material *metadata.Material) *image.RGBA {
	if material.DiffuseMap == nil || material.DiffuseMap.Texture == nil {
		return nil
	}
	img, ok := material.DiffuseMap.Texture.InternalData.(*image.RGBA)
	if !ok {
		return nil
	}
	return img
}

// drawDiffuse fills rect with the diffuse texture. Maps with a
// repeating axis tile the texture as many times as the geometry's
// texture coordinates span; clamped axes stretch a single copy.
func (r *Renderer) drawDiffuse(dst *image.RGBA, rect image.Rectangle, data *metadata.GeometryRenderData, textureMap *metadata.TextureMap, src *image.RGBA) {
	scaler := interpolatorFor(textureMap)
	tilesU, tilesV := r.textureTiles(data, textureMap)
	if tilesU <= 1 && tilesV <= 1 {
		scaler.Scale(dst, rect, src, src.Bounds(), draw.Src, nil)
		return
	}

	cellW := float64(rect.Dx()) / float64(tilesU)
	cellH := float64(rect.Dy()) / float64(tilesV)
	for tv := 0; tv < tilesV; tv++ {
		for tu := 0; tu < tilesU; tu++ {
			cell := image.Rect(
				rect.Min.X+int(float64(tu)*cellW),
				rect.Min.Y+int(float64(tv)*cellH),
				rect.Min.X+int(float64(tu+1)*cellW),
				rect.Min.Y+int(float64(tv+1)*cellH),
			).Intersect(rect)
			if cell.Empty() {
				continue
			}
			scaler.Scale(dst, cell, src, src.Bounds(), draw.Src, nil)
		}
	}
}

// textureTiles derives how many whole repetitions of the texture the
// geometry's texture coordinates ask for on each axis.
func (r *Renderer) textureTiles(data *metadata.GeometryRenderData, textureMap *metadata.TextureMap) (int, int) {
	if textureMap == nil || data.Geometry == nil {
		return 1, 1
	}
	buffers, ok := r.geometries[data.Geometry.InternalID]
	if !ok || len(buffers.vertices) == 0 {
		return 1, 1
	}

	var spanU, spanV float32
	for _, v := range buffers.vertices {
		spanU = math.Max(spanU, math.Abs(v.Texcoord.X))
		spanV = math.Max(spanV, math.Abs(v.Texcoord.Y))
	}

	tilesU, tilesV := 1, 1
	if textureMap.RepeatU == metadata.TextureRepeatRepeat && spanU > 1 {
		tilesU = int(math.Ceil(spanU))
	}
	if textureMap.RepeatV == metadata.TextureRepeatRepeat && spanV > 1 {
		tilesV = int(math.Ceil(spanV))
	}
	return tilesU, tilesV
}

func interpolatorFor(textureMap *metadata.TextureMap) draw.Interpolator {
	if textureMap != nil && textureMap.FilterMagnify == metadata.TextureFilterModeNearest {
		return draw.NearestNeighbor
	}
	return draw.BiLinear
}

func orderBackToFront(geometries []*metadata.GeometryRenderData, view math.Mat4) []*metadata.GeometryRenderData {
	ordered := make([]*metadata.GeometryRenderData, len(geometries))
	copy(ordered, geometries)
	depth := func(data *metadata.GeometryRenderData) float32 {
		center := math.NewVec3Zero()
		if data.Geometry != nil {
			center = data.Geometry.Center
		}
		return center.Transform(data.Model).Transform(view).Z
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return depth(ordered[i]) > depth(ordered[j])
	})
	return ordered
}

func vecToColour(v math.Vec4, factor float32) color.RGBA {
	return color.RGBA{
		R: uint8(math.Clamp(v.X*factor, 0, 1) * 255),
		G: uint8(math.Clamp(v.Y*factor, 0, 1) * 255),
		B: uint8(math.Clamp(v.Z*factor, 0, 1) * 255),
		A: uint8(math.Clamp(v.W, 0, 1) * 255),
	}
}

func modulate(dst *image.RGBA, rect image.Rectangle, colour math.Vec4, factor float32) {
	cr := math.Clamp(colour.X*factor, 0, 1)
	cg := math.Clamp(colour.Y*factor, 0, 1)
	cb := math.Clamp(colour.Z*factor, 0, 1)
	ca := math.Clamp(colour.W, 0, 1)
	if cr == 1 && cg == 1 && cb == 1 && ca == 1 {
		return
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		i := dst.PixOffset(rect.Min.X, y)
		for x := rect.Min.X; x < rect.Max.X; x++ {
			dst.Pix[i+0] = uint8(float32(dst.Pix[i+0]) * cr)
			dst.Pix[i+1] = uint8(float32(dst.Pix[i+1]) * cg)
			dst.Pix[i+2] = uint8(float32(dst.Pix[i+2]) * cb)
			dst.Pix[i+3] = uint8(float32(dst.Pix[i+3]) * ca)
			i += 4
		}
	}
}
