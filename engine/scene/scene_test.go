package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lume/engine/math"
	"github.com/spaghettifunk/lume/engine/renderer/components"
	"github.com/spaghettifunk/lume/engine/renderer/metadata"
)

func testGeometry(name string) *metadata.Geometry {
	return &metadata.Geometry{
		ID:   1,
		Name: name,
		Extents: math.Extents3D{
			Min: math.NewVec3(-1, -1, -1),
			Max: math.NewVec3(1, 1, 1),
		},
		Material: &metadata.Material{Name: "mat_" + name},
	}
}

func TestSceneCreateChildTracksNodes(t *testing.T) {
	s := NewScene()
	require.NotNil(t, s.Root())

	a := s.CreateChild("a")
	b := a.CreateChild("b")

	assert.NotEqual(t, uint32(0), a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, a, s.NodeByID(a.ID()))
	assert.Equal(t, b, s.NodeByID(b.ID()))
	assert.Equal(t, a, b.Parent())
	assert.Equal(t, 3, s.NodeCount())
}

func TestNodeRemoveDetachesSubtree(t *testing.T) {
	s := NewScene()
	parent := s.CreateChild("parent")
	child := parent.CreateChild("child")

	mesh := NewStaticMesh(testGeometry("cube"))
	child.AddComponent(mesh)
	require.Equal(t, child, mesh.Node())

	parentID := parent.ID()
	childID := child.ID()
	parent.Remove()

	assert.Nil(t, s.NodeByID(parentID))
	assert.Nil(t, s.NodeByID(childID))
	assert.Nil(t, mesh.Node())
	assert.Empty(t, s.Root().Children())
	assert.Equal(t, 1, s.NodeCount())
}

func TestGetComponent(t *testing.T) {
	s := NewScene()
	node := s.CreateChild("model")

	_, found := GetComponent[*StaticMesh](node)
	assert.False(t, found)

	mesh := NewStaticMesh(testGeometry("cube"))
	node.AddComponent(mesh)

	got, found := GetComponent[*StaticMesh](node)
	require.True(t, found)
	assert.Equal(t, mesh, got)
}

func TestStaticMeshMaterialOverride(t *testing.T) {
	geometry := testGeometry("cube")
	mesh := NewStaticMesh(geometry)

	assert.Equal(t, geometry.Material, mesh.GetMaterial())
	assert.Equal(t, ViewMaskNormal, mesh.ViewMask())

	override := &metadata.Material{Name: "override"}
	mesh.SetMaterial(override)
	assert.Equal(t, override, mesh.GetMaterial())
}

func TestStaticMeshWorldBoundingBox(t *testing.T) {
	s := NewScene()
	node := s.CreateChild("model")
	node.Transform().SetPosition(math.NewVec3(10, 0, 0))

	mesh := NewStaticMesh(testGeometry("cube"))
	node.AddComponent(mesh)

	box := mesh.WorldBoundingBox()
	assert.InDelta(t, 10.0, float64(box.Center().X), 1e-4)
	assert.InDelta(t, 1.0, float64(box.HalfSize().X), 1e-4)
}

func TestSetWorldPositionRespectsParent(t *testing.T) {
	s := NewScene()
	parent := s.CreateChild("parent")
	parent.Transform().SetPosition(math.NewVec3(5, 0, 0))

	child := parent.CreateChild("child")
	child.SetWorldPosition(math.NewVec3(7, 1, 0))

	local := child.Transform().Position
	assert.InDelta(t, 2.0, float64(local.X), 1e-4)
	assert.InDelta(t, 1.0, float64(local.Y), 1e-4)

	world := child.GetWorldPosition()
	assert.InDelta(t, 7.0, float64(world.X), 1e-4)
	assert.InDelta(t, 1.0, float64(world.Y), 1e-4)
}

func TestVisibleGeometriesFiltersByMask(t *testing.T) {
	s := NewScene()

	normalNode := s.CreateChild("normal")
	normalMesh := NewStaticMesh(testGeometry("normal"))
	normalNode.AddComponent(normalMesh)

	captureNode := s.CreateChild("capture")
	captureMesh := NewStaticMesh(testGeometry("capture"))
	captureMesh.SetViewMask(ViewMaskCapture)
	captureNode.AddComponent(captureMesh)

	normalOnly := s.VisibleGeometries(ViewMaskNormal)
	require.Len(t, normalOnly, 1)
	assert.Equal(t, normalNode.ID(), normalOnly[0].UniqueID)

	captureOnly := s.VisibleGeometries(ViewMaskCapture)
	require.Len(t, captureOnly, 1)
	assert.Equal(t, captureNode.ID(), captureOnly[0].UniqueID)

	both := s.VisibleGeometries(ViewMaskNormal | ViewMaskCapture)
	assert.Len(t, both, 2)
}

func TestVisibleGeometriesCarriesOverrideMaterial(t *testing.T) {
	s := NewScene()
	node := s.CreateChild("model")
	mesh := NewStaticMesh(testGeometry("cube"))
	node.AddComponent(mesh)

	override := &metadata.Material{Name: "bake"}
	mesh.SetMaterial(override)

	visible := s.VisibleGeometries(ViewMaskNormal)
	require.Len(t, visible, 1)
	assert.Equal(t, override, visible[0].Material)
}

func TestCameraComponentFollowsNode(t *testing.T) {
	s := NewScene()
	node := s.CreateChild("RenderCamera")
	node.SetWorldPosition(math.NewVec3(0, 0, -4))

	cam := components.NewCamera()
	comp := NewCameraComponent(cam)
	node.AddComponent(comp)

	assert.InDelta(t, -4.0, float64(cam.GetPosition().Z), 1e-4)

	// A point at the origin sits 4 units ahead of the camera.
	viewSpace := math.NewVec3Zero().Transform(cam.GetView())
	assert.InDelta(t, 4.0, float64(viewSpace.Z), 1e-4)

	node.SetWorldPosition(math.NewVec3(0, 0, -2))
	s.Update(0.016)
	viewSpace = math.NewVec3Zero().Transform(cam.GetView())
	assert.InDelta(t, 2.0, float64(viewSpace.Z), 1e-4)
}
