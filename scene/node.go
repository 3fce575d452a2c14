package scene

import (
	"scene-engine/core"
	"scene-engine/math"
)

// Node is the transform-graph part shared by every mesh.
type Node struct {
	Name      string
	ID        string
	UniqueID  int
	Transform core.Transform
	Parent    *Node
	Children  []*Node

	scene   *Scene
	owner   *Mesh
	enabled bool

	// Cached world transform
	worldMatrixDirty bool
	worldMatrix      math.Mat4
}

func newNode(name string) Node {
	return Node{
		Name:             name,
		ID:               name,
		Transform:        core.NewTransform(),
		enabled:          true,
		worldMatrixDirty: true,
		worldMatrix:      math.Mat4Identity(),
	}
}

func (n *Node) Scene() *Scene { return n.scene }

// Mesh returns the mesh this node belongs to.
func (n *Node) Mesh() *Mesh { return n.owner }

func (n *Node) AddChild(child *Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	n.Children = append(n.Children, child)
	child.MarkWorldMatrixDirty()
}

func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			child.MarkWorldMatrixDirty()
			return
		}
	}
}

// SetEnabled toggles the node; a node is only enabled when all its parents are.
func (n *Node) SetEnabled(enabled bool) { n.enabled = enabled }

func (n *Node) IsEnabled() bool {
	if !n.enabled {
		return false
	}
	if n.Parent != nil {
		return n.Parent.IsEnabled()
	}
	return true
}

// GetWorldMatrix returns the local matrix followed by every parent's.
func (n *Node) GetWorldMatrix() math.Mat4 {
	if n.worldMatrixDirty {
		localMatrix := n.Transform.GetMatrix()
		if n.Parent != nil {
			n.worldMatrix = localMatrix.Mul(n.Parent.GetWorldMatrix())
		} else {
			n.worldMatrix = localMatrix
		}
		n.worldMatrixDirty = false
	}
	return n.worldMatrix
}

// MarkWorldMatrixDirty invalidates the cached world matrix of n and its
// descendants. Moving a mesh also invalidates the scene selection index.
func (n *Node) MarkWorldMatrixDirty() {
	n.worldMatrixDirty = true
	if n.owner != nil && n.scene != nil {
		n.scene.MarkSpatialIndexDirty()
	}
	for _, child := range n.Children {
		child.MarkWorldMatrixDirty()
	}
}

func (n *Node) SetPosition(pos math.Vec3) {
	n.Transform.Position = pos
	n.MarkWorldMatrixDirty()
}

func (n *Node) SetRotation(rot math.Quaternion) {
	n.Transform.Rotation = rot
	n.MarkWorldMatrixDirty()
}

func (n *Node) SetScale(scale math.Vec3) {
	n.Transform.Scale = scale
	n.MarkWorldMatrixDirty()
}

func (n *Node) Translate(delta math.Vec3) {
	n.Transform.Position = n.Transform.Position.Add(delta)
	n.MarkWorldMatrixDirty()
}

func (n *Node) Rotate(axis math.Vec3, angle float32) {
	rotation := math.QuaternionFromAxisAngle(axis, angle)
	n.Transform.Rotation = n.Transform.Rotation.Mul(rotation).Normalize()
	n.MarkWorldMatrixDirty()
}

// AbsolutePosition is the translation of the world matrix.
func (n *Node) AbsolutePosition() math.Vec3 {
	return n.GetWorldMatrix().GetTranslation()
}

// Traverse visits n and all its descendants depth first.
func (n *Node) Traverse(callback func(*Node)) {
	callback(n)
	for _, child := range n.Children {
		child.Traverse(callback)
	}
}

// Find finds a node by name
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, child := range n.Children {
		if found := child.Find(name); found != nil {
			return found
		}
	}
	return nil
}
