package scene

import (
	"github.com/spaghettifunk/lume/engine/math"
)

// Component is anything attachable to a scene node. Components are
// notified when they join or leave a node.
type Component interface {
	OnAttach(node *Node)
	OnDetach()
}

// Updater is implemented by components that want a tick every frame.
type Updater interface {
	Update(deltaTime float64)
}

// Node is a single entry in the scene graph. Nodes are created through
// the scene or a parent node, never directly.
type Node struct {
	id         uint32
	name       string
	transform  *math.Transform
	parent     *Node
	children   []*Node
	components []Component
	scene      *Scene
}

func (n *Node) ID() uint32 {
	return n.id
}

func (n *Node) Name() string {
	return n.name
}

func (n *Node) Transform() *math.Transform {
	return n.transform
}

func (n *Node) Parent() *Node {
	return n.parent
}

func (n *Node) Scene() *Scene {
	return n.scene
}

func (n *Node) Children() []*Node {
	return n.children
}

// CreateChild adds a new named node under this one. The child follows
// this node's transform.
func (n *Node) CreateChild(name string) *Node {
	child := &Node{
		id:        n.scene.ids.Acquire(name),
		name:      name,
		transform: math.TransformCreate(),
		parent:    n,
		scene:     n.scene,
	}
	child.transform.SetParent(n.transform)
	n.children = append(n.children, child)
	n.scene.track(child)
	return child
}

// SetWorldPosition places the node at a world-space position,
// accounting for the parent chain.
func (n *Node) SetWorldPosition(position math.Vec3) {
	if n.parent == nil {
		n.transform.SetPosition(position)
		return
	}
	parentWorld := n.parent.transform.GetWorld()
	local := position.Transform(parentWorld.Inverse())
	n.transform.SetPosition(local)
}

func (n *Node) GetWorldPosition() math.Vec3 {
	return n.transform.GetWorldPosition()
}

// AddComponent attaches the component and notifies it.
func (n *Node) AddComponent(c Component) {
	n.components = append(n.components, c)
	c.OnAttach(n)
}

// RemoveComponent detaches the component if present.
func (n *Node) RemoveComponent(c Component) {
	for i, existing := range n.components {
		if existing == c {
			n.components = append(n.components[:i], n.components[i+1:]...)
			c.OnDetach()
			return
		}
	}
}

// Components returns the attached components.
func (n *Node) Components() []Component {
	return n.components
}

// Remove detaches the node from its parent and the scene, recursively
// removing children and detaching every component.
func (n *Node) Remove() {
	children := make([]*Node, len(n.children))
	copy(children, n.children)
	for _, child := range children {
		child.Remove()
	}

	for _, c := range n.components {
		c.OnDetach()
	}
	n.components = nil

	if n.parent != nil {
		siblings := n.parent.children
		for i, sibling := range siblings {
			if sibling == n {
				n.parent.children = append(siblings[:i], siblings[i+1:]...)
				break
			}
		}
		n.parent = nil
	}

	if n.scene != nil {
		n.scene.untrack(n)
		n.scene = nil
	}
	n.transform.SetParent(nil)
}

// GetComponent returns the first attached component of type T.
func GetComponent[T Component](n *Node) (T, bool) {
	for _, c := range n.components {
		if t, ok := c.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}
