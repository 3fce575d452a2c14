package scene

import (
	"scene-engine/core"
	"scene-engine/math"
	"scene-engine/octree"
)

// Mesh is a renderable, pickable scene entity.
type Mesh struct {
	Node

	Geometry  *Geometry
	SubMeshes []*SubMesh
	Material  Material

	IsVisible  bool
	Visibility float32
	IsPickable bool
	// IsBlocked removes the mesh from evaluation entirely, including stats.
	IsBlocked                bool
	AlwaysSelectAsActiveMesh bool
	LayerMask                uint32
	ShowBoundingBox          bool
	RenderingGroupID         int

	Skeleton                 *Skeleton
	ComputeBonesUsingShaders bool

	ActionManager ActionManager
	EdgesRenderer EdgesRenderer

	UseOctreeForRenderingSelection bool
	UseOctreeForPicking            bool

	OnDispose core.Observable[*Mesh]

	boundingInfo            math.BoundingInfo
	customBounds            bool
	lodLevels               []LODLevel
	subMeshesOctree         *octree.Octree[*SubMesh]
	intersectionsInProgress []*Mesh
	renderID                int
	selectionID             int
	skinnedPositions        []math.Vec3
	disposed                bool
}

// NewMesh creates an empty mesh and registers it with s when s is non-nil.
func NewMesh(name string, s *Scene) *Mesh {
	m := &Mesh{
		Node:                     newNode(name),
		IsVisible:                true,
		Visibility:               1,
		IsPickable:               true,
		LayerMask:                0x0FFFFFFF,
		ComputeBonesUsingShaders: true,
		renderID:                 -1,
		selectionID:              -1,
	}
	m.owner = m
	m.boundingInfo = math.NewBoundingInfo(math.Vec3Zero, math.Vec3Zero)
	if s != nil {
		s.AddMesh(m)
	}
	return m
}

// NewBox creates a cube mesh of the given edge length.
func NewBox(name string, size float32, s *Scene) *Mesh {
	m := NewMesh(name, s)
	m.SetGeometry(NewBoxGeometry(size))
	return m
}

// NewPlane creates a square mesh in the XY plane.
func NewPlane(name string, size float32, s *Scene) *Mesh {
	m := NewMesh(name, s)
	m.SetGeometry(NewPlaneGeometry(size))
	return m
}

// SetGeometry replaces the geometry and resets the sub-meshes to a single
// one covering every index.
func (m *Mesh) SetGeometry(g *Geometry) {
	m.Geometry = g
	m.SubMeshes = m.SubMeshes[:0]
	m.subMeshesOctree = nil
	if g != nil {
		m.AddSubMesh(0, 0, len(g.Vertices), 0, len(g.Indices))
	}
	m.RefreshBoundingInfo()
	if m.scene != nil {
		m.scene.MarkSpatialIndexDirty()
	}
}

// AddSubMesh appends a sub-mesh over the given vertex and index ranges.
func (m *Mesh) AddSubMesh(materialIndex, verticesStart, verticesCount, indexStart, indexCount int) *SubMesh {
	sm := &SubMesh{
		MaterialIndex: materialIndex,
		VerticesStart: verticesStart,
		VerticesCount: verticesCount,
		IndexStart:    indexStart,
		IndexCount:    indexCount,
		mesh:          m,
		id:            len(m.SubMeshes),
	}
	sm.refreshBoundingInfo()
	m.SubMeshes = append(m.SubMeshes, sm)
	return sm
}

// SetBoundingInfo overrides the local extents, typically for meshes
// without geometry.
func (m *Mesh) SetBoundingInfo(min, max math.Vec3) {
	m.customBounds = true
	m.boundingInfo = math.NewBoundingInfo(min, max)
	m.boundingInfo.Update(m.GetWorldMatrix())
}

// RefreshBoundingInfo recomputes the local extents from the geometry.
func (m *Mesh) RefreshBoundingInfo() {
	if m.Geometry != nil && !m.customBounds {
		min, max := m.Geometry.Extents()
		m.boundingInfo = math.NewBoundingInfo(min, max)
	}
	for _, sm := range m.SubMeshes {
		sm.refreshBoundingInfo()
	}
	m.updateBoundingInfo(m.GetWorldMatrix())
}

func (m *Mesh) BoundingInfo() math.BoundingInfo { return m.boundingInfo }

// ComputeWorldMatrix refreshes the world matrix and every world-space
// bounding volume derived from it.
func (m *Mesh) ComputeWorldMatrix() math.Mat4 {
	world := m.GetWorldMatrix()
	m.updateBoundingInfo(world)
	return world
}

func (m *Mesh) updateBoundingInfo(world math.Mat4) {
	m.boundingInfo.Update(world)
	for _, sm := range m.SubMeshes {
		sm.boundingInfo.Update(world)
	}
}

// syncWorldMatrix makes m (a LOD substitute) use source's world matrix.
func (m *Mesh) syncWorldMatrix(source *Mesh) {
	m.worldMatrix = source.GetWorldMatrix()
	m.worldMatrixDirty = false
	m.updateBoundingInfo(m.worldMatrix)
}

func (m *Mesh) TotalVertices() int {
	if m.Geometry == nil {
		return 0
	}
	return m.Geometry.TotalVertices()
}

func (m *Mesh) IsReady() bool {
	if m.Geometry != nil && !m.Geometry.IsReady() {
		return false
	}
	if m.Material != nil && !m.Material.IsReady(m) {
		return false
	}
	return true
}

func (m *Mesh) IsInFrustum(planes []math.Plane) bool {
	return m.boundingInfo.IsInFrustum(planes)
}

func (m *Mesh) IsCompletelyInFrustum(planes []math.Plane) bool {
	return m.boundingInfo.IsCompletelyInFrustum(planes)
}

// IntersectsMesh compares current world bounding volumes.
func (m *Mesh) IntersectsMesh(other *Mesh, precise bool) bool {
	return m.boundingInfo.Intersects(other.boundingInfo, precise)
}

// IntersectsPoint reports whether a world point is inside the world box.
func (m *Mesh) IntersectsPoint(p math.Vec3) bool {
	return m.boundingInfo.Box.IntersectsPoint(p)
}

// RenderID is the id of the last frame that activated the mesh.
func (m *Mesh) RenderID() int { return m.renderID }

// Positions returns the vertex positions used for picking and drawing:
// CPU-skinned positions when available, otherwise the geometry's.
func (m *Mesh) Positions() []math.Vec3 {
	if m.skinnedPositions != nil {
		return m.skinnedPositions
	}
	if m.Geometry == nil {
		return nil
	}
	return m.Geometry.Positions()
}

// SkinnedPositions returns the last CPU-skinned positions, or nil.
func (m *Mesh) SkinnedPositions() []math.Vec3 { return m.skinnedPositions }

// CreateOrUpdateSubMeshesOctree builds the per-mesh sub-mesh index used by
// UseOctreeForRenderingSelection and UseOctreeForPicking.
func (m *Mesh) CreateOrUpdateSubMeshesOctree(maxCapacity, maxDepth int) *octree.Octree[*SubMesh] {
	if m.subMeshesOctree == nil {
		m.subMeshesOctree = octree.New(func(sm *SubMesh) (math.Vec3, math.Vec3) {
			b := sm.boundingInfo.Box
			return b.MinimumWorld, b.MaximumWorld
		}, maxCapacity, maxDepth)
	}
	m.ComputeWorldMatrix()
	b := m.boundingInfo.Box
	m.subMeshesOctree.Update(b.MinimumWorld, b.MaximumWorld, m.SubMeshes)
	return m.subMeshesOctree
}

// Intersects tests a ray expressed in the mesh's local space. Distances in
// the result are measured in world space.
func (m *Mesh) Intersects(ray math.Ray, fastCheck bool) PickingInfo {
	if !ray.IntersectsSphere(m.boundingInfo.Sphere) || !ray.IntersectsBox(m.boundingInfo.Box) {
		return PickingInfo{}
	}

	var (
		best  math.IntersectionInfo
		found bool
	)

	positions := m.Positions()
	if len(positions) == 0 || m.Geometry == nil || len(m.Geometry.Indices) == 0 {
		box := m.boundingInfo.Box
		d, ok := ray.IntersectsBoxDistance(box.Minimum, box.Maximum)
		if !ok {
			return PickingInfo{}
		}
		best, found = math.IntersectionInfo{Distance: d}, true
	} else {
		subMeshes := m.SubMeshes
		if m.UseOctreeForPicking && m.subMeshesOctree != nil {
			worldRay := ray.Transform(m.GetWorldMatrix())
			subMeshes = m.subMeshesOctree.Intersects(worldRay, nil)
		}
		for _, sm := range subMeshes {
			if len(m.SubMeshes) > 1 && !sm.CanIntersects(ray) {
				continue
			}
			info, ok := sm.intersects(ray, positions, m.Geometry.Indices, fastCheck)
			if !ok {
				continue
			}
			if fastCheck || !found || info.Distance < best.Distance {
				best, found = info, true
				best.SubMeshID = sm.id
				if fastCheck {
					break
				}
			}
		}
	}
	if !found {
		return PickingInfo{}
	}

	world := m.GetWorldMatrix()
	worldOrigin := ray.Origin.TransformCoordinates(world)
	worldDirection := ray.Direction.Mul(best.Distance).TransformNormal(world)
	picked := worldOrigin.Add(worldDirection)

	return PickingInfo{
		Hit:         true,
		Distance:    worldOrigin.Distance(picked),
		PickedPoint: picked,
		PickedMesh:  m,
		BU:          best.BU,
		BV:          best.BV,
		FaceID:      best.FaceID,
		SubMeshID:   best.SubMeshID,
	}
}

// Dispose removes the mesh and its child meshes from the scene.
func (m *Mesh) Dispose() {
	if m.disposed {
		return
	}
	m.disposed = true

	for len(m.Children) > 0 {
		child := m.Children[0]
		if cm := child.Mesh(); cm != nil {
			cm.Dispose()
		}
		m.RemoveChild(child)
	}
	if m.Parent != nil {
		m.Parent.RemoveChild(&m.Node)
	}
	if m.scene != nil {
		m.scene.RemoveMesh(m)
	}
	m.OnDispose.Notify(m)
	m.OnDispose.Clear()
	m.intersectionsInProgress = nil
	m.lodLevels = nil
}

func (m *Mesh) IsDisposed() bool { return m.disposed }
