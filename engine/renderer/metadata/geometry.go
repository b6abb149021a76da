package metadata

import (
	"github.com/spaghettifunk/lume/engine/math"
)

/** @brief The name of the default geometry. */
const DefaultGeometryName string = "default"

/**
 * @brief Everything needed to create a geometry: the vertex and index
 * data plus the precomputed local-space bounds. Produced by the
 * procedural generators and consumed by GeometrySystem.AcquireFromConfig.
 */
type GeometryConfig struct {
	/** @brief The vertex data. */
	Vertices []math.Vertex3D
	/** @brief Indices into Vertices, three per triangle. */
	Indices []uint32

	/** @brief The local-space center of the vertex data. */
	Center math.Vec3
	/** @brief The minimum corner of the local-space bounds. */
	MinExtents math.Vec3
	/** @brief The maximum corner of the local-space bounds. */
	MaxExtents math.Vec3

	/** @brief The geometry name, used as the lookup key on acquire. */
	Name string
	/** @brief Name of the material to acquire for this geometry. */
	MaterialName string
}

/** @brief Refcount bookkeeping for one registered geometry. */
type GeometryReference struct {
	ReferenceCount uint64
	Geometry       *Geometry
	AutoRelease    bool
}

/**
 * @brief A geometry registered with the renderer, paired with the
 * material it draws with.
 */
type Geometry struct {
	/** @brief The geometry identifier. */
	ID uint32
	/** @brief Identifier the renderer backend uses to find the uploaded vertex data. */
	InternalID uint32
	/** @brief Incremented every time the vertex data changes. */
	Generation uint16
	/** @brief The local-space center. */
	Center math.Vec3
	/** @brief The local-space extents. */
	Extents math.Extents3D
	/** @brief The geometry name. */
	Name string
	/** @brief The material this geometry draws with. */
	Material *Material
}
