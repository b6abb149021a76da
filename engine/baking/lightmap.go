// Package baking renders static lighting for individual scene nodes
// into offscreen textures. A Lightmap component drives one capture: it
// swaps the target's material for a bake variant, renders the node
// from an orthographic camera into a writeable texture, saves the
// result to disk and restores the node afterwards.
package baking

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/spaghettifunk/lume/engine/core"
	"github.com/spaghettifunk/lume/engine/math"
	"github.com/spaghettifunk/lume/engine/renderer/components"
	"github.com/spaghettifunk/lume/engine/renderer/metadata"
	"github.com/spaghettifunk/lume/engine/scene"
)

const (
	// DefaultTextureSize is the capture resolution used when no size is
	// configured on the component or passed to BakeTexture.
	DefaultTextureSize uint32 = 512

	// DiffBakeTechniqueName is substituted for textured materials
	// during a capture.
	DiffBakeTechniqueName = "Lightmap.DiffBake"
	// NoTextureBakeTechniqueName is substituted for materials whose
	// technique draws without a diffuse map.
	NoTextureBakeTechniqueName = "Lightmap.NoTextureBake"

	// captureCameraName is the scene child node the capture camera
	// hangs off for the duration of a bake.
	captureCameraName = "RenderCamera"

	noTextureMarker = "NoTexture"
)

// EVENT_CODE_LIGHTMAP_DONE fires after a capture completes, carrying
// the baked *scene.Node as payload. The target is already restored
// when handlers run.
const EVENT_CODE_LIGHTMAP_DONE core.EventCode = core.EVENT_CODE_USER + 1

// BakeState tracks whether a Lightmap has a capture in flight.
type BakeState int

const (
	BakeStateIdle BakeState = iota
	BakeStateCapturing
)

// ErrBakeInProgress is returned when BakeTexture is called while a
// previous capture has not completed yet.
var ErrBakeInProgress = fmt.Errorf("a bake is already in progress on this component")

// MaterialHost supplies material cloning and technique swapping.
type MaterialHost interface {
	Clone(source *metadata.Material, name string) (*metadata.Material, error)
	SetTechnique(material *metadata.Material, technique *metadata.Technique)
	Release(name string)
}

// TechniqueHost resolves bake techniques by name.
type TechniqueHost interface {
	Acquire(name string) (*metadata.Technique, error)
	Release(name string)
}

// TextureHost provides writeable textures for capture targets.
type TextureHost interface {
	AcquireWriteable(name string, width, height uint32, channelCount uint8, hasTransparency bool) (*metadata.Texture, error)
	DestroyWriteable(name string)
}

// RenderHost exposes the renderer operations a capture needs.
type RenderHost interface {
	MainViewport() *metadata.Viewport
	SurfaceCreate(texture *metadata.Texture, viewport *metadata.Viewport, mode metadata.RenderSurfaceUpdateMode) (*metadata.RenderSurface, error)
	SurfaceDestroy(surface *metadata.RenderSurface)
	TextureReadData(texture *metadata.Texture) (*metadata.ImageResourceData, error)
}

// EventBus carries the frame and completion events.
type EventBus interface {
	Register(code core.EventCode, callback core.EventCallback) *core.EventSubscription
	RegisterOnce(code core.EventCode, callback core.EventCallback) *core.EventSubscription
	Unregister(subscription *core.EventSubscription)
	Fire(context core.EventContext) bool
}

// Hosts bundles the engine capabilities a bake needs. Usually filled
// straight from the system manager.
type Hosts struct {
	Materials  MaterialHost
	Techniques TechniqueHost
	Textures   TextureHost
	Renderer   RenderHost
	Events     EventBus
}

// Lightmap bakes the static lighting of the node it is attached to
// into a texture. One capture runs at a time per component.
type Lightmap struct {
	hosts Hosts
	node  *scene.Node

	width    uint32
	height   uint32
	saveFile bool

	state      BakeState
	outputPath string

	// Restoration state for the target mesh.
	savedMaterial *metadata.Material
	savedViewMask uint32
	workingName   string

	// The capture rig, alive only while state is BakeStateCapturing.
	captureTexture *metadata.Texture
	captureSurface *metadata.RenderSurface
	cameraNode     *scene.Node
	frameSub       *core.EventSubscription
}

// NewLightmap returns an idle component with the default capture size
// and file saving enabled.
func NewLightmap(hosts Hosts) *Lightmap {
	return &Lightmap{
		hosts:    hosts,
		width:    DefaultTextureSize,
		height:   DefaultTextureSize,
		saveFile: true,
	}
}

func (lm *Lightmap) OnAttach(node *scene.Node) {
	lm.node = node
}

// OnDetach cancels any capture in flight so the target never stays
// stuck with the bake material.
func (lm *Lightmap) OnDetach() {
	lm.Stop()
	lm.node = nil
}

// SetSize configures the capture resolution used when BakeTexture is
// called without an explicit size. Zero dimensions are ignored.
func (lm *Lightmap) SetSize(width, height uint32) {
	if width == 0 || height == 0 {
		core.LogWarn("lightmap capture size %dx%d is invalid and was ignored", width, height)
		return
	}
	lm.width = width
	lm.height = height
}

// SetSaveFile controls whether the captured image is written to disk
// when a bake completes.
func (lm *Lightmap) SetSaveFile(enabled bool) {
	lm.saveFile = enabled
}

func (lm *Lightmap) State() BakeState {
	return lm.state
}

// TechniqueNameFor returns the technique substituted for a material
// during a capture. Materials drawn with a textureless technique bake
// with the textureless variant.
func TechniqueNameFor(material *metadata.Material) string {
	if material != nil && material.Technique != nil &&
		strings.Contains(material.Technique.Name, noTextureMarker) {
		return NoTextureBakeTechniqueName
	}
	return DiffBakeTechniqueName
}

// BakeTexture starts a capture of the attached node. The node is drawn
// with a bake technique from an orthographic camera into a writeable
// texture sized imageSize squared (or the configured size when
// imageSize is zero). The capture itself happens during the next
// rendered frame; once that frame ends the target is restored, the
// image is written under outputPath and EVENT_CODE_LIGHTMAP_DONE
// fires.
//
// A node without a renderable mesh is left untouched and no completion
// event fires.
func (lm *Lightmap) BakeTexture(outputPath string, imageSize uint32) error {
	if lm.state == BakeStateCapturing {
		return ErrBakeInProgress
	}

	mesh := lm.targetMesh()
	if mesh == nil || mesh.Geometry() == nil {
		// Nothing renderable to bake.
		return nil
	}
	original := mesh.GetMaterial()
	if original == nil {
		return nil
	}

	width, height := lm.width, lm.height
	if imageSize > 0 {
		width, height = imageSize, imageSize
	}

	// Every resource of this capture shares one id so a failed bake is
	// easy to trace in the logs.
	bakeID := uuid.New().String()

	// Clone the material twice: one copy restores the original
	// appearance afterwards, the other is mutated into the bake
	// material and assigned while capturing.
	saved, err := lm.hosts.Materials.Clone(original, fmt.Sprintf("%s.save.%s", original.Name, bakeID))
	if err != nil {
		return fmt.Errorf("lightmap could not snapshot material '%s': %w", original.Name, err)
	}
	workingName := fmt.Sprintf("%s.bake.%s", original.Name, bakeID)
	working, err := lm.hosts.Materials.Clone(original, workingName)
	if err != nil {
		lm.hosts.Materials.Release(saved.Name)
		return fmt.Errorf("lightmap could not prepare bake material for '%s': %w", original.Name, err)
	}

	techniqueName := TechniqueNameFor(original)
	technique, err := lm.hosts.Techniques.Acquire(techniqueName)
	if err != nil {
		lm.hosts.Materials.Release(saved.Name)
		lm.hosts.Materials.Release(workingName)
		return fmt.Errorf("lightmap technique '%s' unavailable: %w", techniqueName, err)
	}
	lm.hosts.Materials.SetTechnique(working, technique)
	// SetTechnique took its own reference on the technique.
	lm.hosts.Techniques.Release(techniqueName)

	texture, err := lm.hosts.Textures.AcquireWriteable("bake_"+bakeID, width, height, 4, false)
	if err != nil {
		lm.hosts.Materials.Release(saved.Name)
		lm.hosts.Materials.Release(workingName)
		return fmt.Errorf("lightmap capture texture unavailable: %w", err)
	}

	// Aim an orthographic camera at the centre of the mesh from just
	// outside the front of its bounding box so the whole node fills
	// the capture.
	bounds := mesh.WorldBoundingBox()
	halfSize := bounds.HalfSize()

	cameraNode := lm.node.Scene().CreateChild(captureCameraName)
	cameraNode.SetWorldPosition(bounds.Center().Sub(math.NewVec3(0, 0, halfSize.Z)))

	camera := components.NewCamera()
	camera.SetFOV(90)
	camera.SetNearClip(0.0001)
	camera.SetAspectRatio(1)
	camera.SetOrthographic(true)
	camera.SetOrthoSize(math.NewVec2(float32(width), float32(height)))
	camera.SetViewMask(scene.ViewMaskCapture)
	cameraNode.AddComponent(scene.NewCameraComponent(camera))

	// The capture draws the scene through the same render path as the
	// main viewport, only the camera and target differ.
	var renderPath *metadata.RenderPath
	if main := lm.hosts.Renderer.MainViewport(); main != nil {
		renderPath = main.RenderPath
	}
	viewport := metadata.NewViewport(lm.node.Scene(), camera, renderPath)

	surface, err := lm.hosts.Renderer.SurfaceCreate(texture, viewport, metadata.SurfaceUpdateAlways)
	if err != nil {
		cameraNode.Remove()
		lm.hosts.Textures.DestroyWriteable(texture.Name)
		lm.hosts.Materials.Release(saved.Name)
		lm.hosts.Materials.Release(workingName)
		return fmt.Errorf("lightmap capture surface unavailable: %w", err)
	}

	// Point of no return: mutate the target and wait for the frame.
	lm.savedMaterial = saved
	lm.savedViewMask = mesh.ViewMask()
	lm.workingName = workingName
	mesh.SetMaterial(working)
	mesh.SetViewMask(lm.savedViewMask | scene.ViewMaskCapture)

	lm.captureTexture = texture
	lm.captureSurface = surface
	lm.cameraNode = cameraNode
	lm.outputPath = outputPath
	lm.frameSub = lm.hosts.Events.RegisterOnce(core.EVENT_CODE_FRAME_ENDED, lm.onFrameEnded)
	lm.state = BakeStateCapturing

	core.LogDebug("lightmap capture %s started for node %d at %dx%d with technique %s",
		bakeID, lm.node.ID(), width, height, techniqueName)

	return nil
}

// Stop cancels a capture in flight, restoring the target and tearing
// the rig down. No image is saved and no completion event fires. Safe
// to call at any time.
func (lm *Lightmap) Stop() {
	if lm.state != BakeStateCapturing {
		return
	}
	lm.restoreTarget()
	lm.teardownRig()
	lm.state = BakeStateIdle
}

// onFrameEnded finishes the capture: the pixels are read back before
// anything else, then the target is restored, the rig torn down, the
// image saved and the completion event fired.
func (lm *Lightmap) onFrameEnded(core.EventContext) {
	if lm.state != BakeStateCapturing {
		return
	}
	node := lm.node

	data, err := lm.hosts.Renderer.TextureReadData(lm.captureTexture)
	if err != nil {
		core.LogError("lightmap capture readback failed for node %d: %s", node.ID(), err.Error())
	}

	lm.restoreTarget()
	lm.teardownRig()
	lm.state = BakeStateIdle

	if lm.saveFile && data != nil {
		fileName := filepath.Join(lm.outputPath, fmt.Sprintf("node%d_bake.png", node.ID()))
		if err := writePNG(fileName, data); err != nil {
			core.LogError("lightmap could not save %s: %s", fileName, err.Error())
		} else {
			core.LogInfo("image baked as: %s", fileName)
		}
	}

	lm.hosts.Events.Fire(core.EventContext{
		Type: EVENT_CODE_LIGHTMAP_DONE,
		Data: node,
	})
}

// restoreTarget puts the snapshot material and the saved view mask
// back on the mesh and drops the bake material.
func (lm *Lightmap) restoreTarget() {
	if mesh := lm.targetMesh(); mesh != nil && lm.savedMaterial != nil {
		mesh.SetMaterial(lm.savedMaterial)
		mesh.SetViewMask(lm.savedViewMask)
	}
	if lm.workingName != "" {
		lm.hosts.Materials.Release(lm.workingName)
		lm.workingName = ""
	}
	// Ownership of the snapshot reverts to the target.
	lm.savedMaterial = nil
}

func (lm *Lightmap) teardownRig() {
	if lm.frameSub != nil {
		lm.hosts.Events.Unregister(lm.frameSub)
		lm.frameSub = nil
	}
	if lm.captureSurface != nil {
		lm.hosts.Renderer.SurfaceDestroy(lm.captureSurface)
		lm.captureSurface = nil
	}
	if lm.captureTexture != nil {
		lm.hosts.Textures.DestroyWriteable(lm.captureTexture.Name)
		lm.captureTexture = nil
	}
	if lm.cameraNode != nil {
		lm.cameraNode.Remove()
		lm.cameraNode = nil
	}
}

func (lm *Lightmap) targetMesh() *scene.StaticMesh {
	if lm.node == nil {
		return nil
	}
	mesh, ok := scene.GetComponent[*scene.StaticMesh](lm.node)
	if !ok {
		return nil
	}
	return mesh
}

func writePNG(path string, data *metadata.ImageResourceData) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return png.Encode(file, data.RGBA())
}
