package scene

import (
	"github.com/spaghettifunk/lume/engine/renderer/components"
)

// CameraComponent drives a camera from its node's world transform.
// Every frame the camera view matrix is rebuilt from the node, so
// moving the node moves the camera.
type CameraComponent struct {
	node   *Node
	camera *components.Camera
}

func NewCameraComponent(camera *components.Camera) *CameraComponent {
	return &CameraComponent{camera: camera}
}

func (c *CameraComponent) OnAttach(node *Node) {
	c.node = node
	c.SyncView()
}

func (c *CameraComponent) OnDetach() {
	c.node = nil
}

func (c *CameraComponent) Camera() *components.Camera {
	return c.camera
}

// SyncView pushes the node's current world transform into the camera.
func (c *CameraComponent) SyncView() {
	if c.node == nil {
		return
	}
	c.camera.SetViewFromWorld(c.node.Transform().GetWorld())
}

func (c *CameraComponent) Update(deltaTime float64) {
	c.SyncView()
}
