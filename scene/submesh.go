package scene

import "scene-engine/math"

// SubMesh is a draw range of its owning mesh with its own bounds.
type SubMesh struct {
	MaterialIndex int
	VerticesStart int
	VerticesCount int
	IndexStart    int
	IndexCount    int

	mesh         *Mesh
	id           int
	boundingInfo math.BoundingInfo
}

func (sm *SubMesh) Mesh() *Mesh { return sm.mesh }

// ID is the index of the sub-mesh in its mesh.
func (sm *SubMesh) ID() int { return sm.id }

func (sm *SubMesh) BoundingInfo() math.BoundingInfo { return sm.boundingInfo }

// Material resolves the sub-mesh material through a MultiMaterial if needed.
func (sm *SubMesh) Material() Material {
	mat := sm.mesh.Material
	if multi, ok := mat.(*MultiMaterial); ok {
		return multi.SubMaterial(sm.MaterialIndex)
	}
	return mat
}

func (sm *SubMesh) refreshBoundingInfo() {
	g := sm.mesh.Geometry
	if g == nil || len(g.Vertices) == 0 {
		sm.boundingInfo = sm.mesh.boundingInfo
		return
	}
	end := sm.IndexStart + sm.IndexCount
	if end > len(g.Indices) {
		end = len(g.Indices)
	}
	min, max := computeExtents(g.Vertices, g.Indices[sm.IndexStart:end])
	sm.boundingInfo = math.NewBoundingInfo(min, max)
}

func (sm *SubMesh) IsInFrustum(planes []math.Plane) bool {
	return sm.boundingInfo.IsInFrustum(planes)
}

// CanIntersects is the local-space box pre-test used before triangle tests.
func (sm *SubMesh) CanIntersects(ray math.Ray) bool {
	return ray.IntersectsBox(sm.boundingInfo.Box)
}

func (sm *SubMesh) intersects(ray math.Ray, positions []math.Vec3, indices []uint32, fastCheck bool) (math.IntersectionInfo, bool) {
	var (
		best  math.IntersectionInfo
		found bool
	)
	end := sm.IndexStart + sm.IndexCount
	for i := sm.IndexStart; i+2 < end && i+2 < len(indices); i += 3 {
		p0 := positions[indices[i]]
		p1 := positions[indices[i+1]]
		p2 := positions[indices[i+2]]

		info, ok := ray.IntersectsTriangle(p0, p1, p2)
		if !ok || info.Distance < 0 {
			continue
		}
		if fastCheck || !found || info.Distance < best.Distance {
			best, found = info, true
			best.FaceID = i / 3
			if fastCheck {
				break
			}
		}
	}
	return best, found
}
