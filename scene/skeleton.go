package scene

import "scene-engine/math"

type Bone struct {
	Name   string
	Parent *Bone
	// Local is the animated transform relative to the parent bone.
	Local math.Mat4
	// InverseBind maps mesh space into the bone's bind space.
	InverseBind math.Mat4

	world math.Mat4
}

// Skeleton computes final bone matrices once per frame regardless of how
// many meshes share it.
type Skeleton struct {
	Name  string
	Bones []*Bone

	transforms   []math.Mat4
	prepareCount int
}

// NewSkeleton registers a skeleton with s when s is non-nil. Bones must be
// ordered parents first.
func NewSkeleton(name string, bones []*Bone, s *Scene) *Skeleton {
	sk := &Skeleton{Name: name, Bones: bones}
	if s != nil {
		s.AddSkeleton(sk)
	}
	return sk
}

// Prepare recomputes the skinning matrices from the bones' local transforms.
func (sk *Skeleton) Prepare() {
	if cap(sk.transforms) < len(sk.Bones) {
		sk.transforms = make([]math.Mat4, len(sk.Bones))
	}
	sk.transforms = sk.transforms[:len(sk.Bones)]

	for i, b := range sk.Bones {
		if b.Parent != nil {
			b.world = b.Local.Mul(b.Parent.world)
		} else {
			b.world = b.Local
		}
		sk.transforms[i] = b.InverseBind.Mul(b.world)
	}
	sk.prepareCount++
}

// Transforms returns the per-bone skinning matrices from the last Prepare.
func (sk *Skeleton) Transforms() []math.Mat4 { return sk.transforms }

// PrepareCount is the number of Prepare calls so far.
func (sk *Skeleton) PrepareCount() int { return sk.prepareCount }

// applySkeleton CPU-skins the mesh positions with the skeleton's current
// matrices.
func (m *Mesh) applySkeleton(sk *Skeleton) {
	if m.Geometry == nil {
		return
	}
	transforms := sk.Transforms()
	verts := m.Geometry.Vertices
	if cap(m.skinnedPositions) < len(verts) {
		m.skinnedPositions = make([]math.Vec3, len(verts))
	}
	m.skinnedPositions = m.skinnedPositions[:len(verts)]

	for i, v := range verts {
		var out math.Vec3
		total := float32(0)
		for k := 0; k < 4; k++ {
			w := v.Weights[k]
			j := int(v.Joints[k])
			if w == 0 || j >= len(transforms) {
				continue
			}
			out = out.Add(v.Position.TransformCoordinates(transforms[j]).Mul(w))
			total += w
		}
		if total == 0 {
			out = v.Position
		}
		m.skinnedPositions[i] = out
	}
}
