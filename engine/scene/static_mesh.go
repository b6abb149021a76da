package scene

import (
	"github.com/spaghettifunk/lume/engine/math"
	"github.com/spaghettifunk/lume/engine/renderer/metadata"
)

// StaticMesh renders a fixed geometry at its node's transform. The
// material can be overridden per mesh without touching the geometry's
// own material.
type StaticMesh struct {
	node     *Node
	geometry *metadata.Geometry
	material *metadata.Material
	viewMask uint32
}

func NewStaticMesh(geometry *metadata.Geometry) *StaticMesh {
	m := &StaticMesh{
		geometry: geometry,
		viewMask: ViewMaskNormal,
	}
	if geometry != nil {
		m.material = geometry.Material
	}
	return m
}

func (m *StaticMesh) OnAttach(node *Node) {
	m.node = node
}

func (m *StaticMesh) OnDetach() {
	m.node = nil
}

func (m *StaticMesh) Node() *Node {
	return m.node
}

func (m *StaticMesh) Geometry() *metadata.Geometry {
	return m.geometry
}

// GetMaterial returns the material the mesh is currently drawn with.
func (m *StaticMesh) GetMaterial() *metadata.Material {
	return m.material
}

// SetMaterial overrides the material the mesh is drawn with.
func (m *StaticMesh) SetMaterial(material *metadata.Material) {
	m.material = material
}

func (m *StaticMesh) ViewMask() uint32 {
	return m.viewMask
}

func (m *StaticMesh) SetViewMask(mask uint32) {
	m.viewMask = mask
}

// WorldBoundingBox returns the geometry extents transformed into world
// space by the owning node.
func (m *StaticMesh) WorldBoundingBox() math.Extents3D {
	if m.geometry == nil {
		return math.Extents3D{}
	}
	if m.node == nil {
		return m.geometry.Extents
	}
	return m.geometry.Extents.Transformed(m.node.Transform().GetWorld())
}
