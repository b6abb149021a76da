package systems

import (
	"fmt"

	"github.com/spaghettifunk/lume/engine/core"
	"github.com/spaghettifunk/lume/engine/math"
	"github.com/spaghettifunk/lume/engine/renderer/metadata"
)

type GeometrySystemConfig struct {
	/** @brief The maximum number of geometries that can be registered at once. */
	MaxGeometryCount uint32
}

type GeometrySystem struct {
	Config          *GeometrySystemConfig
	DefaultGeometry *metadata.Geometry
	// Array of registered geometries.
	RegisteredGeometries []*metadata.GeometryReference
	// sub systems
	materialSystem *MaterialSystem
	renderer       *RendererSystem
}

func NewGeometrySystem(config *GeometrySystemConfig, ms *MaterialSystem, r *RendererSystem) (*GeometrySystem, error) {
	if config.MaxGeometryCount == 0 {
		err := fmt.Errorf("func NewGeometrySystem - config.MaxGeometryCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}

	gs := &GeometrySystem{
		Config:               config,
		RegisteredGeometries: make([]*metadata.GeometryReference, config.MaxGeometryCount),
		materialSystem:       ms,
		renderer:             r,
	}

	// Invalidate all geometries in the array.
	for i := uint32(0); i < config.MaxGeometryCount; i++ {
		gs.RegisteredGeometries[i] = &metadata.GeometryReference{
			Geometry: &metadata.Geometry{
				ID:         metadata.InvalidID,
				InternalID: metadata.InvalidID,
				Generation: metadata.InvalidIDUint16,
			},
		}
	}

	return gs, nil
}

func (gs *GeometrySystem) Initialize() error {
	if err := gs.createDefaultGeometry(); err != nil {
		core.LogError("failed to create default geometry. Application cannot continue")
		return err
	}
	return nil
}

func (gs *GeometrySystem) Shutdown() error {
	for i := uint32(0); i < gs.Config.MaxGeometryCount; i++ {
		ref := gs.RegisteredGeometries[i]
		if ref.Geometry.ID != metadata.InvalidID {
			gs.destroyGeometry(ref.Geometry)
			ref.ReferenceCount = 0
			ref.AutoRelease = false
		}
	}
	if gs.DefaultGeometry != nil {
		gs.renderer.DestroyGeometry(gs.DefaultGeometry)
		gs.DefaultGeometry = nil
	}
	return nil
}

/**
 * @brief Acquires an existing geometry by id.
 */
func (gs *GeometrySystem) AcquireByID(id uint32) (*metadata.Geometry, error) {
	if id < gs.Config.MaxGeometryCount && gs.RegisteredGeometries[id].Geometry.ID != metadata.InvalidID {
		gs.RegisteredGeometries[id].ReferenceCount++
		return gs.RegisteredGeometries[id].Geometry, nil
	}

	err := fmt.Errorf("geometry system cannot acquire invalid geometry id %d", id)
	core.LogError(err.Error())
	return nil, err
}

/**
 * @brief Registers and acquires a new geometry using the given config.
 *
 * @param config The geometry configuration.
 * @param autoRelease Indicates if the acquired geometry should be unloaded when its reference count reaches 0.
 */
func (gs *GeometrySystem) AcquireFromConfig(config *metadata.GeometryConfig, autoRelease bool) (*metadata.Geometry, error) {
	var geometry *metadata.Geometry
	for i := uint32(0); i < gs.Config.MaxGeometryCount; i++ {
		if gs.RegisteredGeometries[i].Geometry.ID == metadata.InvalidID {
			// Found empty slot.
			gs.RegisteredGeometries[i].AutoRelease = autoRelease
			gs.RegisteredGeometries[i].ReferenceCount = 1
			geometry = gs.RegisteredGeometries[i].Geometry
			geometry.ID = i
			break
		}
	}

	if geometry == nil {
		err := fmt.Errorf("unable to obtain free slot for geometry. Adjust configuration to allow more space")
		core.LogError(err.Error())
		return nil, err
	}

	if err := gs.createGeometry(config, geometry); err != nil {
		core.LogError("failed to create geometry '%s'", config.Name)
		return nil, err
	}

	return geometry, nil
}

/**
 * @brief Releases a reference to the provided geometry.
 */
func (gs *GeometrySystem) Release(geometry *metadata.Geometry) {
	if geometry == nil || geometry.ID == metadata.InvalidID {
		core.LogWarn("geometry system cannot release an invalid geometry. Nothing was done")
		return
	}

	ref := gs.RegisteredGeometries[geometry.ID]
	if ref.Geometry.ID != geometry.ID {
		core.LogError("geometry id mismatch. Check registration logic, as this should never occur")
		return
	}

	if ref.ReferenceCount > 0 {
		ref.ReferenceCount--
	}

	// Also blanks out the geometry id.
	if ref.ReferenceCount < 1 && ref.AutoRelease {
		gs.destroyGeometry(ref.Geometry)
		ref.ReferenceCount = 0
		ref.AutoRelease = false
	}
}

func (gs *GeometrySystem) GetDefault() *metadata.Geometry {
	return gs.DefaultGeometry
}

/**
 * @brief Generates configuration for a plane laid out on the XY axes.
 *
 * @param width The overall width of the plane. Must be non-zero.
 * @param height The overall height of the plane. Must be non-zero.
 * @param xSegmentCount The number of segments along the x-axis in the plane. Must be non-zero.
 * @param ySegmentCount The number of segments along the y-axis in the plane. Must be non-zero.
 * @param tileX The number of times the texture should tile across the plane on the x-axis. Must be non-zero.
 * @param tileY The number of times the texture should tile across the plane on the y-axis. Must be non-zero.
 * @param name The name of the generated geometry.
 * @param materialName The name of the material to be used.
 * @return A geometry configuration which can then be fed into AcquireFromConfig.
 */
func (gs *GeometrySystem) GeneratePlaneConfig(width, height float32, xSegmentCount, ySegmentCount uint32, tileX, tileY float32, name, materialName string) (*metadata.GeometryConfig, error) {
	if width == 0 {
		core.LogWarn("width must be nonzero. Defaulting to one")
		width = 1.0
	}
	if height == 0 {
		core.LogWarn("height must be nonzero. Defaulting to one")
		height = 1.0
	}
	if xSegmentCount < 1 {
		core.LogWarn("xSegmentCount must be a positive number. Defaulting to one")
		xSegmentCount = 1
	}
	if ySegmentCount < 1 {
		core.LogWarn("ySegmentCount must be a positive number. Defaulting to one")
		ySegmentCount = 1
	}
	if tileX == 0 {
		core.LogWarn("tileX must be nonzero. Defaulting to one")
		tileX = 1.0
	}
	if tileY == 0 {
		core.LogWarn("tileY must be nonzero. Defaulting to one")
		tileY = 1.0
	}

	config := &metadata.GeometryConfig{
		Vertices: make([]math.Vertex3D, xSegmentCount*ySegmentCount*4), // 4 verts per segment
		Indices:  make([]uint32, xSegmentCount*ySegmentCount*6),        // 6 indices per segment
	}

	segWidth := width / float32(xSegmentCount)
	segHeight := height / float32(ySegmentCount)
	halfWidth := width * 0.5
	halfHeight := height * 0.5
	for y := uint32(0); y < ySegmentCount; y++ {
		for x := uint32(0); x < xSegmentCount; x++ {
			minX := (float32(x) * segWidth) - halfWidth
			minY := (float32(y) * segHeight) - halfHeight
			maxX := minX + segWidth
			maxY := minY + segHeight
			minUVX := (float32(x) / float32(xSegmentCount)) * tileX
			minUVY := (float32(y) / float32(ySegmentCount)) * tileY
			maxUVX := (float32(x+1) / float32(xSegmentCount)) * tileX
			maxUVY := (float32(y+1) / float32(ySegmentCount)) * tileY

			vOffset := ((y * xSegmentCount) + x) * 4

			config.Vertices[vOffset+0].Position = math.NewVec3(minX, minY, 0)
			config.Vertices[vOffset+0].Texcoord = math.NewVec2(minUVX, minUVY)

			config.Vertices[vOffset+1].Position = math.NewVec3(maxX, maxY, 0)
			config.Vertices[vOffset+1].Texcoord = math.NewVec2(maxUVX, maxUVY)

			config.Vertices[vOffset+2].Position = math.NewVec3(minX, maxY, 0)
			config.Vertices[vOffset+2].Texcoord = math.NewVec2(minUVX, maxUVY)

			config.Vertices[vOffset+3].Position = math.NewVec3(maxX, minY, 0)
			config.Vertices[vOffset+3].Texcoord = math.NewVec2(maxUVX, minUVY)

			iOffset := ((y * xSegmentCount) + x) * 6
			config.Indices[iOffset+0] = vOffset + 0
			config.Indices[iOffset+1] = vOffset + 1
			config.Indices[iOffset+2] = vOffset + 2
			config.Indices[iOffset+3] = vOffset + 0
			config.Indices[iOffset+4] = vOffset + 3
			config.Indices[iOffset+5] = vOffset + 1
		}
	}

	config.MinExtents = math.NewVec3(-halfWidth, -halfHeight, 0)
	config.MaxExtents = math.NewVec3(halfWidth, halfHeight, 0)
	// Always 0 since min/max of each axis are -/+ half of the size.
	config.Center = math.NewVec3Zero()

	if len(name) > 0 {
		config.Name = name
	} else {
		config.Name = metadata.DefaultGeometryName
	}

	if len(materialName) > 0 {
		config.MaterialName = materialName
	} else {
		config.MaterialName = metadata.DefaultMaterialName
	}

	return config, nil
}

/**
 * @brief Generates configuration for a cube centered on the origin.
 */
func (gs *GeometrySystem) GenerateCubeConfig(width, height, depth, tileX, tileY float32, name, materialName string) (*metadata.GeometryConfig, error) {
	if width == 0 {
		core.LogWarn("width must be nonzero. Defaulting to one")
		width = 1.0
	}
	if height == 0 {
		core.LogWarn("height must be nonzero. Defaulting to one")
		height = 1.0
	}
	if depth == 0 {
		core.LogWarn("depth must be nonzero. Defaulting to one")
		depth = 1.0
	}
	if tileX == 0 {
		core.LogWarn("tileX must be nonzero. Defaulting to one")
		tileX = 1.0
	}
	if tileY == 0 {
		core.LogWarn("tileY must be nonzero. Defaulting to one")
		tileY = 1.0
	}

	config := &metadata.GeometryConfig{
		Vertices: make([]math.Vertex3D, 4*6), // 4 verts per side, 6 sides
		Indices:  make([]uint32, 6*6),        // 6 indices per side, 6 sides
	}

	halfWidth := width * 0.5
	halfHeight := height * 0.5
	halfDepth := depth * 0.5
	minX := -halfWidth
	minY := -halfHeight
	minZ := -halfDepth
	maxX := halfWidth
	maxY := halfHeight
	maxZ := halfDepth
	minUVX := float32(0.0)
	minUVY := float32(0.0)
	maxUVX := tileX
	maxUVY := tileY

	config.MinExtents = math.NewVec3(minX, minY, minZ)
	config.MaxExtents = math.NewVec3(maxX, maxY, maxZ)
	// Always 0 since min/max of each axis are -/+ half of the size.
	config.Center = math.NewVec3Zero()

	verts := config.Vertices

	// Front face
	verts[(0*4)+0].Position = math.NewVec3(minX, minY, maxZ)
	verts[(0*4)+1].Position = math.NewVec3(maxX, maxY, maxZ)
	verts[(0*4)+2].Position = math.NewVec3(minX, maxY, maxZ)
	verts[(0*4)+3].Position = math.NewVec3(maxX, minY, maxZ)
	verts[(0*4)+0].Texcoord = math.NewVec2(minUVX, minUVY)
	verts[(0*4)+1].Texcoord = math.NewVec2(maxUVX, maxUVY)
	verts[(0*4)+2].Texcoord = math.NewVec2(minUVX, maxUVY)
	verts[(0*4)+3].Texcoord = math.NewVec2(maxUVX, minUVY)
	verts[(0*4)+0].Normal = math.NewVec3(0.0, 0.0, 1.0)
	verts[(0*4)+1].Normal = math.NewVec3(0.0, 0.0, 1.0)
	verts[(0*4)+2].Normal = math.NewVec3(0.0, 0.0, 1.0)
	verts[(0*4)+3].Normal = math.NewVec3(0.0, 0.0, 1.0)

	// Back face
	verts[(1*4)+0].Position = math.NewVec3(maxX, minY, minZ)
	verts[(1*4)+1].Position = math.NewVec3(minX, maxY, minZ)
	verts[(1*4)+2].Position = math.NewVec3(maxX, maxY, minZ)
	verts[(1*4)+3].Position = math.NewVec3(minX, minY, minZ)
	verts[(1*4)+0].Texcoord = math.NewVec2(minUVX, minUVY)
	verts[(1*4)+1].Texcoord = math.NewVec2(maxUVX, maxUVY)
	verts[(1*4)+2].Texcoord = math.NewVec2(minUVX, maxUVY)
	verts[(1*4)+3].Texcoord = math.NewVec2(maxUVX, minUVY)
	verts[(1*4)+0].Normal = math.NewVec3(0.0, 0.0, -1.0)
	verts[(1*4)+1].Normal = math.NewVec3(0.0, 0.0, -1.0)
	verts[(1*4)+2].Normal = math.NewVec3(0.0, 0.0, -1.0)
	verts[(1*4)+3].Normal = math.NewVec3(0.0, 0.0, -1.0)

	// Left face
	verts[(2*4)+0].Position = math.NewVec3(minX, minY, minZ)
	verts[(2*4)+1].Position = math.NewVec3(minX, maxY, maxZ)
	verts[(2*4)+2].Position = math.NewVec3(minX, maxY, minZ)
	verts[(2*4)+3].Position = math.NewVec3(minX, minY, maxZ)
	verts[(2*4)+0].Texcoord = math.NewVec2(minUVX, minUVY)
	verts[(2*4)+1].Texcoord = math.NewVec2(maxUVX, maxUVY)
	verts[(2*4)+2].Texcoord = math.NewVec2(minUVX, maxUVY)
	verts[(2*4)+3].Texcoord = math.NewVec2(maxUVX, minUVY)
	verts[(2*4)+0].Normal = math.NewVec3(-1.0, 0.0, 0.0)
	verts[(2*4)+1].Normal = math.NewVec3(-1.0, 0.0, 0.0)
	verts[(2*4)+2].Normal = math.NewVec3(-1.0, 0.0, 0.0)
	verts[(2*4)+3].Normal = math.NewVec3(-1.0, 0.0, 0.0)

	// Right face
	verts[(3*4)+0].Position = math.NewVec3(maxX, minY, maxZ)
	verts[(3*4)+1].Position = math.NewVec3(maxX, maxY, minZ)
	verts[(3*4)+2].Position = math.NewVec3(maxX, maxY, maxZ)
	verts[(3*4)+3].Position = math.NewVec3(maxX, minY, minZ)
	verts[(3*4)+0].Texcoord = math.NewVec2(minUVX, minUVY)
	verts[(3*4)+1].Texcoord = math.NewVec2(maxUVX, maxUVY)
	verts[(3*4)+2].Texcoord = math.NewVec2(minUVX, maxUVY)
	verts[(3*4)+3].Texcoord = math.NewVec2(maxUVX, minUVY)
	verts[(3*4)+0].Normal = math.NewVec3(1.0, 0.0, 0.0)
	verts[(3*4)+1].Normal = math.NewVec3(1.0, 0.0, 0.0)
	verts[(3*4)+2].Normal = math.NewVec3(1.0, 0.0, 0.0)
	verts[(3*4)+3].Normal = math.NewVec3(1.0, 0.0, 0.0)

	// Bottom face
	verts[(4*4)+0].Position = math.NewVec3(maxX, minY, maxZ)
	verts[(4*4)+1].Position = math.NewVec3(minX, minY, minZ)
	verts[(4*4)+2].Position = math.NewVec3(maxX, minY, minZ)
	verts[(4*4)+3].Position = math.NewVec3(minX, minY, maxZ)
	verts[(4*4)+0].Texcoord = math.NewVec2(minUVX, minUVY)
	verts[(4*4)+1].Texcoord = math.NewVec2(maxUVX, maxUVY)
	verts[(4*4)+2].Texcoord = math.NewVec2(minUVX, maxUVY)
	verts[(4*4)+3].Texcoord = math.NewVec2(maxUVX, minUVY)
	verts[(4*4)+0].Normal = math.NewVec3(0.0, -1.0, 0.0)
	verts[(4*4)+1].Normal = math.NewVec3(0.0, -1.0, 0.0)
	verts[(4*4)+2].Normal = math.NewVec3(0.0, -1.0, 0.0)
	verts[(4*4)+3].Normal = math.NewVec3(0.0, -1.0, 0.0)

	// Top face
	verts[(5*4)+0].Position = math.NewVec3(minX, maxY, maxZ)
	verts[(5*4)+1].Position = math.NewVec3(maxX, maxY, minZ)
	verts[(5*4)+2].Position = math.NewVec3(minX, maxY, minZ)
	verts[(5*4)+3].Position = math.NewVec3(maxX, maxY, maxZ)
	verts[(5*4)+0].Texcoord = math.NewVec2(minUVX, minUVY)
	verts[(5*4)+1].Texcoord = math.NewVec2(maxUVX, maxUVY)
	verts[(5*4)+2].Texcoord = math.NewVec2(minUVX, maxUVY)
	verts[(5*4)+3].Texcoord = math.NewVec2(maxUVX, minUVY)
	verts[(5*4)+0].Normal = math.NewVec3(0.0, 1.0, 0.0)
	verts[(5*4)+1].Normal = math.NewVec3(0.0, 1.0, 0.0)
	verts[(5*4)+2].Normal = math.NewVec3(0.0, 1.0, 0.0)
	verts[(5*4)+3].Normal = math.NewVec3(0.0, 1.0, 0.0)

	for i := 0; i < 6; i++ {
		vOffset := i * 4
		iOffset := i * 6
		config.Indices[iOffset+0] = uint32(vOffset + 0)
		config.Indices[iOffset+1] = uint32(vOffset + 1)
		config.Indices[iOffset+2] = uint32(vOffset + 2)
		config.Indices[iOffset+3] = uint32(vOffset + 0)
		config.Indices[iOffset+4] = uint32(vOffset + 3)
		config.Indices[iOffset+5] = uint32(vOffset + 1)
	}

	if len(name) > 0 {
		config.Name = name
	} else {
		config.Name = metadata.DefaultGeometryName
	}

	if len(materialName) > 0 {
		config.MaterialName = materialName
	} else {
		config.MaterialName = metadata.DefaultMaterialName
	}

	config.Vertices = math.GeometryGenerateTangents(config.Vertices, config.Indices)

	return config, nil
}

func (gs *GeometrySystem) createDefaultGeometry() error {
	verts := make([]math.Vertex3D, 4)

	f := float32(10.0)

	verts[0].Position.X = -0.5 * f // 0    3
	verts[0].Position.Y = -0.5 * f //
	verts[0].Texcoord.X = 0.0      //
	verts[0].Texcoord.Y = 0.0      // 2    1

	verts[1].Position.X = 0.5 * f
	verts[1].Position.Y = 0.5 * f
	verts[1].Texcoord.X = 1.0
	verts[1].Texcoord.Y = 1.0

	verts[2].Position.X = -0.5 * f
	verts[2].Position.Y = 0.5 * f
	verts[2].Texcoord.X = 0.0
	verts[2].Texcoord.Y = 1.0

	verts[3].Position.X = 0.5 * f
	verts[3].Position.Y = -0.5 * f
	verts[3].Texcoord.X = 1.0
	verts[3].Texcoord.Y = 0.0

	indices := []uint32{0, 1, 2, 0, 3, 1}

	gs.DefaultGeometry = &metadata.Geometry{
		ID:         metadata.InvalidID,
		InternalID: metadata.InvalidID,
		Generation: metadata.InvalidIDUint16,
		Name:       metadata.DefaultGeometryName,
		Extents: math.Extents3D{
			Min: math.NewVec3(-0.5*f, -0.5*f, 0),
			Max: math.NewVec3(0.5*f, 0.5*f, 0),
		},
	}

	// Send the geometry off to the renderer to be uploaded.
	if err := gs.renderer.CreateGeometry(gs.DefaultGeometry, verts, indices); err != nil {
		return err
	}

	// Acquire the default material.
	gs.DefaultGeometry.Material = gs.materialSystem.GetDefault()

	return nil
}

func (gs *GeometrySystem) createGeometry(config *metadata.GeometryConfig, geometry *metadata.Geometry) error {
	// Send the geometry off to the renderer to be uploaded.
	if err := gs.renderer.CreateGeometry(geometry, config.Vertices, config.Indices); err != nil {
		// Invalidate the entry.
		gs.RegisteredGeometries[geometry.ID].ReferenceCount = 0
		gs.RegisteredGeometries[geometry.ID].AutoRelease = false
		geometry.ID = metadata.InvalidID
		geometry.Generation = metadata.InvalidIDUint16
		geometry.InternalID = metadata.InvalidID
		return err
	}

	geometry.Name = config.Name
	geometry.Generation = 0

	// Copy over extents, center, etc.
	geometry.Center = config.Center
	geometry.Extents.Min = config.MinExtents
	geometry.Extents.Max = config.MaxExtents

	// Acquire the material.
	if config.MaterialName == metadata.DefaultMaterialName {
		geometry.Material = gs.materialSystem.GetDefault()
	} else if len(config.MaterialName) > 0 {
		material, err := gs.materialSystem.Acquire(config.MaterialName)
		if err != nil {
			core.LogWarn("unable to acquire material '%s' for geometry '%s', using default", config.MaterialName, config.Name)
			material = gs.materialSystem.GetDefault()
		}
		geometry.Material = material
	}
	return nil
}

func (gs *GeometrySystem) destroyGeometry(geometry *metadata.Geometry) {
	gs.renderer.DestroyGeometry(geometry)
	geometry.InternalID = metadata.InvalidID
	geometry.Generation = metadata.InvalidIDUint16
	geometry.ID = metadata.InvalidID
	geometry.Name = ""

	// Release the material.
	if geometry.Material != nil && len(geometry.Material.Name) > 0 {
		gs.materialSystem.Release(geometry.Material.Name)
		geometry.Material = nil
	}
}
