package core

import (
	"scene-engine/math"
)

type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite = Color{1, 1, 1, 1}
	ColorBlack = Color{0, 0, 0, 1}
	ColorRed   = Color{1, 0, 0, 1}
	ColorGreen = Color{0, 1, 0, 1}
	ColorBlue  = Color{0, 0, 1, 1}
	// ColorScene is the default clear color.
	ColorScene = Color{0.2, 0.2, 0.3, 1}
)

// Vertex is the interleaved layout uploaded to the GPU. Joints and Weights
// are only meaningful for skinned meshes.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	UV       math.Vec2
	Color    Color
	Joints   [4]uint16
	Weights  [4]float32
}

type Transform struct {
	Position math.Vec3
	Rotation math.Quaternion
	Scale    math.Vec3
}

func NewTransform() Transform {
	return Transform{
		Position: math.Vec3Zero,
		Rotation: math.QuaternionIdentity(),
		Scale:    math.Vec3One,
	}
}

// GetMatrix returns the local matrix: scale, then rotation, then translation.
func (t Transform) GetMatrix() math.Mat4 {
	return math.Mat4Compose(t.Scale, t.Rotation, t.Position)
}

func (t Transform) GetForward() math.Vec3 {
	return t.Rotation.RotateVector(math.Vec3Back)
}

func (t Transform) GetRight() math.Vec3 {
	return t.Rotation.RotateVector(math.Vec3Right)
}

func (t Transform) GetUp() math.Vec3 {
	return t.Rotation.RotateVector(math.Vec3Up)
}

// Viewport is expressed in normalized [0, 1] render-target coordinates with
// the origin at the bottom left.
type Viewport struct {
	X, Y, Width, Height float32
}

var DefaultViewport = Viewport{X: 0, Y: 0, Width: 1, Height: 1}

// ToGlobal de-normalizes the viewport to pixels for a render surface of the
// given size.
func (v Viewport) ToGlobal(renderWidth, renderHeight float32) Viewport {
	return Viewport{
		X:      v.X * renderWidth,
		Y:      v.Y * renderHeight,
		Width:  v.Width * renderWidth,
		Height: v.Height * renderHeight,
	}
}
