package scene

import (
	"github.com/spaghettifunk/lume/engine/core"
	"github.com/spaghettifunk/lume/engine/math"
	"github.com/spaghettifunk/lume/engine/renderer/metadata"
)

// View masks partition what each camera sees. Normal content carries
// the normal bit; objects being captured offscreen additionally carry
// the capture bit so a capture camera can isolate them.
const (
	ViewMaskNormal  uint32 = 1 << 0
	ViewMaskCapture uint32 = 1 << 1
)

// Scene owns the node graph and hands out node identifiers. It also
// implements metadata.RenderProvider so viewports can pull visible
// geometry from it.
type Scene struct {
	root  *Node
	ids   *core.IdentifierPool
	nodes map[uint32]*Node
}

func NewScene() *Scene {
	s := &Scene{
		ids:   core.NewIdentifierPool(),
		nodes: make(map[uint32]*Node),
	}
	s.root = &Node{
		id:        s.ids.Acquire("root"),
		name:      "root",
		transform: math.TransformCreate(),
		scene:     s,
	}
	s.nodes[s.root.id] = s.root
	return s
}

func (s *Scene) Root() *Node {
	return s.root
}

// CreateChild adds a node directly under the scene root.
func (s *Scene) CreateChild(name string) *Node {
	return s.root.CreateChild(name)
}

// NodeByID returns the node with the given identifier, or nil when it
// does not exist or has been removed.
func (s *Scene) NodeByID(id uint32) *Node {
	return s.nodes[id]
}

// NodeCount returns the number of live nodes, including the root.
func (s *Scene) NodeCount() int {
	return len(s.nodes)
}

// Update ticks every component that implements Updater, depth first.
func (s *Scene) Update(deltaTime float64) {
	s.updateNode(s.root, deltaTime)
}

func (s *Scene) updateNode(n *Node, deltaTime float64) {
	for _, c := range n.components {
		if u, ok := c.(Updater); ok {
			u.Update(deltaTime)
		}
	}
	for _, child := range n.children {
		s.updateNode(child, deltaTime)
	}
}

// VisibleGeometries collects the render data of every static mesh
// whose view mask shares at least one bit with the camera mask.
func (s *Scene) VisibleGeometries(viewMask uint32) []*metadata.GeometryRenderData {
	var out []*metadata.GeometryRenderData
	s.collectGeometries(s.root, viewMask, &out)
	return out
}

func (s *Scene) collectGeometries(n *Node, viewMask uint32, out *[]*metadata.GeometryRenderData) {
	for _, c := range n.components {
		mesh, ok := c.(*StaticMesh)
		if !ok || mesh.Geometry() == nil {
			continue
		}
		if mesh.ViewMask()&viewMask == 0 {
			continue
		}
		*out = append(*out, &metadata.GeometryRenderData{
			Model:    n.transform.GetWorld(),
			Geometry: mesh.Geometry(),
			Material: mesh.GetMaterial(),
			UniqueID: n.id,
		})
	}
	for _, child := range n.children {
		s.collectGeometries(child, viewMask, out)
	}
}

func (s *Scene) track(n *Node) {
	s.nodes[n.id] = n
}

func (s *Scene) untrack(n *Node) {
	delete(s.nodes, n.id)
	if err := s.ids.Release(n.id); err != nil {
		core.LogWarn("scene: releasing node id %d: %v", n.id, err)
	}
}
