package scene

import "sort"

// LODLevel substitutes Mesh (nil culls) once the camera is at least
// Distance away.
type LODLevel struct {
	Distance float32
	Mesh     *Mesh
}

// AddLODLevel registers a substitute; a nil mesh hides the owner past distance.
func (m *Mesh) AddLODLevel(distance float32, mesh *Mesh) *Mesh {
	if mesh != nil && mesh.lodOwner() {
		return m
	}
	m.lodLevels = append(m.lodLevels, LODLevel{Distance: distance, Mesh: mesh})
	sort.SliceStable(m.lodLevels, func(i, j int) bool {
		return m.lodLevels[i].Distance > m.lodLevels[j].Distance
	})
	return m
}

// RemoveLODLevel drops every level using mesh.
func (m *Mesh) RemoveLODLevel(mesh *Mesh) *Mesh {
	kept := m.lodLevels[:0]
	for _, l := range m.lodLevels {
		if l.Mesh != mesh {
			kept = append(kept, l)
		}
	}
	m.lodLevels = kept
	return m
}

func (m *Mesh) LODLevels() []LODLevel { return m.lodLevels }

func (m *Mesh) lodOwner() bool { return len(m.lodLevels) > 0 }

// GetLOD returns the representation to draw for camera: m itself, a
// substitute, or nil when the mesh should be culled.
func (m *Mesh) GetLOD(camera *Camera) *Mesh {
	if len(m.lodLevels) == 0 || camera == nil {
		return m
	}

	distance := m.boundingInfo.Sphere.CenterWorld.Distance(camera.GlobalPosition())
	if m.lodLevels[len(m.lodLevels)-1].Distance > distance {
		return m
	}
	for _, level := range m.lodLevels {
		if level.Distance <= distance {
			if level.Mesh != nil {
				level.Mesh.syncWorldMatrix(m)
			}
			return level.Mesh
		}
	}
	return m
}
