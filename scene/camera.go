package scene

import (
	"github.com/chewxy/math32"

	"scene-engine/core"
	"scene-engine/math"
)

type CameraMode int

const (
	PerspectiveCamera CameraMode = iota
	OrthographicCamera
)

// Camera is a look-at camera. Rig cameras (stereo eyes) are rendered in its
// place and follow it on every Update.
type Camera struct {
	Name     string
	ID       string
	UniqueID int

	Position math.Vec3
	Target   math.Vec3
	Up       math.Vec3

	Mode CameraMode
	FOV  float32
	MinZ float32
	MaxZ float32
	// AspectRatio is used when the camera is not attached to a scene.
	AspectRatio float32

	OrthoLeft, OrthoRight, OrthoBottom, OrthoTop float32

	Viewport  core.Viewport
	LayerMask uint32

	// RigCameras replace this camera when rendering.
	RigCameras []*Camera
	RigParent  *Camera
	rigOffset  float32

	// CustomRenderTargets are rendered before each pass of this camera.
	CustomRenderTargets []*RenderTargetTexture
	// IsIntermediate marks cameras whose output is post-processed further.
	IsIntermediate bool

	activeMeshes []*Mesh
	scene        *Scene
	updateCount  int
}

func NewCamera(name string, position math.Vec3, s *Scene) *Camera {
	c := &Camera{
		Name:        name,
		ID:          name,
		Position:    position,
		Up:          math.Vec3Up,
		FOV:         0.8,
		MinZ:        0.1,
		MaxZ:        1000,
		AspectRatio: 1,
		Viewport:    core.DefaultViewport,
		LayerMask:   0x0FFFFFFF,
	}
	if s != nil {
		s.AddCamera(c)
	}
	return c
}

func (c *Camera) Scene() *Scene { return c.scene }

// SetTarget points the camera at target.
func (c *Camera) SetTarget(target math.Vec3) {
	c.Target = target
}

// GlobalPosition is the position used for LOD and audio.
func (c *Camera) GlobalPosition() math.Vec3 { return c.Position }

func (c *Camera) GetForward() math.Vec3 {
	return c.Target.Sub(c.Position).Normalize()
}

func (c *Camera) GetRight() math.Vec3 {
	return c.GetForward().Cross(c.Up).Normalize()
}

func (c *Camera) GetViewMatrix() math.Mat4 {
	return math.Mat4LookAt(c.Position, c.Target, c.Up)
}

// aspect is the ratio of the camera's pixel viewport on the scene's engine.
func (c *Camera) aspect() float32 {
	if c.scene != nil && c.scene.engine != nil {
		w, h := c.scene.engine.RenderSize()
		vw := float32(w) * c.Viewport.Width
		vh := float32(h) * c.Viewport.Height
		if vh > 0 {
			return vw / vh
		}
	}
	if c.AspectRatio > 0 {
		return c.AspectRatio
	}
	return 1
}

func (c *Camera) GetProjectionMatrix() math.Mat4 {
	if c.Mode == OrthographicCamera {
		return math.Mat4Orthographic(c.OrthoLeft, c.OrthoRight, c.OrthoBottom, c.OrthoTop, c.MinZ, c.MaxZ)
	}
	return math.Mat4Perspective(c.FOV, c.aspect(), c.MinZ, c.MaxZ)
}

func (c *Camera) GetViewProjectionMatrix() math.Mat4 {
	return c.GetViewMatrix().Mul(c.GetProjectionMatrix())
}

// ActiveMeshes are the meshes selected for this camera in the last pass.
func (c *Camera) ActiveMeshes() []*Mesh { return c.activeMeshes }

// Update refreshes state derived from the scene after a pass and moves rig
// cameras to follow the parent.
func (c *Camera) Update() {
	c.updateCount++
	if len(c.RigCameras) == 0 {
		return
	}
	right := c.GetRight()
	for _, rig := range c.RigCameras {
		offset := right.Mul(rig.rigOffset)
		rig.Position = c.Position.Add(offset)
		rig.Target = c.Target.Add(offset)
		rig.Up = c.Up
		rig.FOV = c.FOV
		rig.MinZ = c.MinZ
		rig.MaxZ = c.MaxZ
		rig.Mode = c.Mode
		rig.LayerMask = c.LayerMask
	}
}

// NewStereoscopicRig splits c into side-by-side left and right eyes
// separated by interaxial world units.
func NewStereoscopicRig(c *Camera, interaxial float32) {
	half := interaxial / 2
	left := NewCamera(c.Name+"_L", c.Position, nil)
	left.rigOffset = -half
	left.Viewport = core.Viewport{X: 0, Y: 0, Width: 0.5, Height: 1}
	right := NewCamera(c.Name+"_R", c.Position, nil)
	right.rigOffset = half
	right.Viewport = core.Viewport{X: 0.5, Y: 0, Width: 0.5, Height: 1}

	for _, rig := range []*Camera{left, right} {
		rig.RigParent = c
		rig.scene = c.scene
	}
	c.RigCameras = []*Camera{left, right}
	c.Update()
}

// OrbitCamera orbits a target at a fixed distance.
type OrbitCamera struct {
	*Camera
	Distance float32
	Yaw      float32
	Pitch    float32
}

func NewOrbitCamera(name string, target math.Vec3, distance float32, s *Scene) *OrbitCamera {
	c := &OrbitCamera{
		Camera:   NewCamera(name, math.Vec3Zero, s),
		Distance: distance,
		Pitch:    0.3,
	}
	c.Target = target
	c.UpdatePosition()
	return c
}

func (c *OrbitCamera) UpdatePosition() {
	c.Pitch = math.Clamp(c.Pitch, -1.5, 1.5)

	cosPitch, sinPitch := math32.Cos(c.Pitch), math32.Sin(c.Pitch)
	cosYaw, sinYaw := math32.Cos(c.Yaw), math32.Sin(c.Yaw)

	offset := math.Vec3{
		X: c.Distance * cosPitch * sinYaw,
		Y: c.Distance * sinPitch,
		Z: c.Distance * cosPitch * cosYaw,
	}
	c.Position = c.Target.Add(offset)
	c.Camera.Update()
}

func (c *OrbitCamera) Orbit(deltaYaw, deltaPitch float32) {
	c.Yaw += deltaYaw
	c.Pitch += deltaPitch
	c.UpdatePosition()
}

func (c *OrbitCamera) Zoom(delta float32) {
	c.Distance = math32.Max(c.Distance+delta, 0.1)
	c.UpdatePosition()
}
