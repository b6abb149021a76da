package components

import (
	"github.com/spaghettifunk/lume/engine/math"
)

/** @brief The name of the default camera. */
const DEFAULT_CAMERA_NAME string = "default"

/** @brief The default vertical field of view in degrees. */
const DefaultFOV float32 = 45.0

/**
 * @brief Represents a camera that can be used for
 * a variety of things, especially rendering. Ideally,
 * these are created and managed by the camera system.
 */
type Camera struct {
	/**
	 * @brief The position of this camera.
	 * NOTE: Do not set this directly, use SetPosition() instead
	 * so the view matrix is recalculated when needed.
	 */
	Position math.Vec3
	/**
	 * @brief The rotation of this camera using Euler angles (pitch, yaw, roll).
	 * NOTE: Do not set this directly, use SetEulerRotation() instead
	 * so the view matrix is recalculated when needed.
	 */
	EulerRotation math.Vec3
	/** @brief Internal flag used to determine when the view matrix needs to be rebuilt. */
	IsDirty bool
	/**
	 * @brief The view matrix of this camera.
	 * NOTE: IMPORTANT: Do not get this directly, use GetView() instead
	 * so the view matrix is recalculated when needed.
	 */
	ViewMatrix math.Mat4

	/** @brief The vertical field of view in degrees. Perspective only. */
	FOV float32
	/** @brief The near clip distance. */
	NearClip float32
	/** @brief The far clip distance. */
	FarClip float32
	/** @brief The width over height ratio. Perspective only. */
	AspectRatio float32
	/** @brief Whether the camera projects orthographically. */
	Orthographic bool
	/** @brief The orthographic view volume size in world units. */
	OrthoSize math.Vec2
	/** @brief Only objects whose view mask shares a bit with this mask are rendered. */
	ViewMask uint32

	projectionDirty  bool
	ProjectionMatrix math.Mat4
}

type CameraLookup struct {
	ID             uint16
	ReferenceCount uint16
	Camera         *Camera
}

func NewCamera() *Camera {
	camera := &Camera{}
	camera.Reset()
	return camera
}

func (c *Camera) Reset() {
	c.EulerRotation = math.NewVec3Zero()
	c.Position = math.NewVec3Zero()
	c.IsDirty = false
	c.ViewMatrix = math.NewMat4Identity()

	c.FOV = DefaultFOV
	c.NearClip = 0.1
	c.FarClip = 1000.0
	c.AspectRatio = 1.0
	c.Orthographic = false
	c.OrthoSize = math.NewVec2(1, 1)
	c.ViewMask = 0xffffffff
	c.projectionDirty = true
	c.ProjectionMatrix = math.NewMat4Identity()
}

func (c *Camera) GetPosition() math.Vec3 {
	return c.Position
}

func (c *Camera) SetPosition(position math.Vec3) {
	c.Position = position
	c.IsDirty = true
}

func (c *Camera) GetEulerRotation() math.Vec3 {
	return c.EulerRotation
}

func (c *Camera) SetEulerRotation(rotation math.Vec3) {
	c.EulerRotation = rotation
	c.IsDirty = true
}

func (c *Camera) SetFOV(degrees float32) {
	c.FOV = degrees
	c.projectionDirty = true
}

func (c *Camera) SetNearClip(near float32) {
	c.NearClip = near
	c.projectionDirty = true
}

func (c *Camera) SetFarClip(far float32) {
	c.FarClip = far
	c.projectionDirty = true
}

func (c *Camera) SetAspectRatio(ratio float32) {
	c.AspectRatio = ratio
	c.projectionDirty = true
}

func (c *Camera) SetOrthographic(enabled bool) {
	c.Orthographic = enabled
	c.projectionDirty = true
}

func (c *Camera) SetOrthoSize(size math.Vec2) {
	c.OrthoSize = size
	c.projectionDirty = true
}

func (c *Camera) SetViewMask(mask uint32) {
	c.ViewMask = mask
}

func (c *Camera) GetView() math.Mat4 {
	if c.IsDirty {
		rotation := math.NewMat4EulerXYZ(c.EulerRotation.X, c.EulerRotation.Y, c.EulerRotation.Z)
		translation := math.NewMat4Translation(c.Position)

		c.ViewMatrix = rotation.Mul(translation)
		c.ViewMatrix = c.ViewMatrix.Inverse()

		c.IsDirty = false
	}
	return c.ViewMatrix
}

// SetViewFromWorld derives the view matrix from a world transform,
// for cameras driven by a scene node instead of euler angles.
func (c *Camera) SetViewFromWorld(world math.Mat4) {
	c.Position = world.Position()
	c.ViewMatrix = world.Inverse()
	c.IsDirty = false
}

// GetProjection returns the projection matrix, rebuilding it when any
// projection parameter changed.
func (c *Camera) GetProjection() math.Mat4 {
	if c.projectionDirty {
		if c.Orthographic {
			halfW := c.OrthoSize.X * 0.5
			halfH := c.OrthoSize.Y * 0.5
			c.ProjectionMatrix = math.NewMat4Orthographic(-halfW, halfW, -halfH, halfH, c.NearClip, c.FarClip)
		} else {
			c.ProjectionMatrix = math.NewMat4Perspective(math.DegToRad(c.FOV), c.AspectRatio, c.NearClip, c.FarClip)
		}
		c.projectionDirty = false
	}
	return c.ProjectionMatrix
}

func (c *Camera) Forward() math.Vec3 {
	view := c.GetView()
	return view.Forward()
}

func (c *Camera) Backward() math.Vec3 {
	view := c.GetView()
	return view.Backward()
}

func (c *Camera) Left() math.Vec3 {
	view := c.GetView()
	return view.Left()
}

func (c *Camera) Right() math.Vec3 {
	view := c.GetView()
	return view.Right()
}

func (c *Camera) MoveForward(amount float32) {
	direction := c.Forward()
	direction = direction.MulScalar(amount)
	c.Position = c.Position.Add(direction)
	c.IsDirty = true
}

func (c *Camera) MoveBackward(amount float32) {
	direction := c.Backward()
	direction = direction.MulScalar(amount)
	c.Position = c.Position.Add(direction)
	c.IsDirty = true
}

func (c *Camera) MoveLeft(amount float32) {
	direction := c.Left()
	direction = direction.MulScalar(amount)
	c.Position = c.Position.Add(direction)
	c.IsDirty = true
}

func (c *Camera) MoveRight(amount float32) {
	direction := c.Right()
	direction = direction.MulScalar(amount)
	c.Position = c.Position.Add(direction)
	c.IsDirty = true
}

func (c *Camera) MoveUp(amount float32) {
	direction := math.NewVec3Up()
	direction = direction.MulScalar(amount)
	c.Position = c.Position.Add(direction)
	c.IsDirty = true
}

func (c *Camera) MoveDown(amount float32) {
	direction := math.NewVec3Down()
	direction = direction.MulScalar(amount)
	c.Position = c.Position.Add(direction)
	c.IsDirty = true
}

func (c *Camera) Yaw(amount float32) {
	c.EulerRotation.Y += amount
	c.IsDirty = true
}

func (c *Camera) Pitch(amount float32) {
	c.EulerRotation.X += amount

	// Clamp to avoid Gimbal lock.
	limit := float32(1.55334306) // 89 degrees, or equivalent to deg_to_rad(89.0f);
	c.EulerRotation.X = math.Clamp(c.EulerRotation.X, -limit, limit)

	c.IsDirty = true
}
