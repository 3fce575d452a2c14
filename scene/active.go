package scene

import (
	"fmt"

	"scene-engine/math"
)

// ActiveSet is the output of one visibility pass. Its slices alias the
// scene's frame buffers and are only valid until the next pass.
type ActiveSet struct {
	Meshes                []*Mesh
	ParticleSystems       []*ParticleSystem
	Skeletons             []*Skeleton
	SoftwareSkinnedMeshes []*Mesh
	RenderTargets         []*RenderTargetTexture
}

// ActiveSet returns the result of the last visibility pass.
func (s *Scene) ActiveSet() ActiveSet {
	return ActiveSet{
		Meshes:                s.frame.activeMeshes,
		ParticleSystems:       s.frame.activeParticleSystems,
		Skeletons:             s.frame.activeSkeletons,
		SoftwareSkinnedMeshes: s.frame.softwareSkinnedMeshes,
		RenderTargets:         s.frame.renderTargets,
	}
}

func (s *Scene) ActiveMeshCount() int { return len(s.frame.activeMeshes) }

func (s *Scene) ActiveParticleSystemCount() int { return len(s.frame.activeParticleSystems) }

// MeshesForIntersections lists the meshes tracked for intersection triggers
// this frame.
func (s *Scene) MeshesForIntersections() []*Mesh { return s.frame.meshesForIntersections }

// EvaluateVisibility runs a standalone visibility pass for camera (the
// active camera when nil) without drawing. Selected sub-meshes are still
// dispatched when a dispatcher is set.
func (s *Scene) EvaluateVisibility(camera *Camera) (ActiveSet, error) {
	if camera == nil {
		camera = s.ActiveCamera
	}
	if camera == nil {
		return ActiveSet{}, fmt.Errorf("evaluate visibility: %w", ErrNoActiveCamera)
	}
	s.renderID++
	s.updateTransformMatrix(camera)
	s.evaluateActiveMeshes(&FrameContext{Scene: s, Camera: camera, RenderID: s.renderID})
	return s.ActiveSet(), nil
}

func (s *Scene) updateTransformMatrix(camera *Camera) {
	s.setTransformMatrix(camera.GetViewMatrix(), camera.GetProjectionMatrix())
}

func (s *Scene) setTransformMatrix(view, projection math.Mat4) {
	s.frame.transformMatrix = view.Mul(projection)
	s.frame.frustumPlanes = math.UpdateFrustumPlanes(s.frame.transformMatrix, s.frame.frustumPlanes)
}

func hasIntersectionTriggers(m *Mesh) bool {
	return m.ActionManager != nil &&
		m.ActionManager.HasSpecificTriggers(TriggerIntersectionEnter, TriggerIntersectionExit)
}

// candidateMeshes returns the meshes to evaluate: the selection index result
// when an index exists, every mesh otherwise. Meshes that bypass the
// frustum (always-active or intersection-tracked) are added back so the
// index never changes which meshes end up active.
func (s *Scene) candidateMeshes() []*Mesh {
	index, err := s.SelectionOctree()
	if err != nil {
		return s.meshes
	}

	f := &s.frame
	f.candidates = index.Select(f.frustumPlanes, f.candidates[:0])
	for _, m := range f.candidates {
		m.selectionID = s.renderID
	}
	for _, m := range s.meshes {
		if m.selectionID == s.renderID {
			continue
		}
		if m.AlwaysSelectAsActiveMesh || hasIntersectionTriggers(m) {
			f.candidates = append(f.candidates, m)
		}
	}
	return f.candidates
}

func (s *Scene) resetActiveSet(camera *Camera) {
	f := &s.frame
	camera.activeMeshes = camera.activeMeshes[:0]
	f.activeMeshes = f.activeMeshes[:0]
	f.activeParticleSystems = f.activeParticleSystems[:0]
	f.activeSkeletons = f.activeSkeletons[:0]
	f.softwareSkinnedMeshes = f.softwareSkinnedMeshes[:0]
	f.edgesRenderers = f.edgesRenderers[:0]
	if s.Dispatcher != nil {
		s.Dispatcher.Reset()
	}
	if s.BoundingBoxRenderer != nil {
		s.BoundingBoxRenderer.Reset()
	}
}

func (s *Scene) evaluateActiveMeshes(ctx *FrameContext) {
	camera := ctx.Camera
	f := &s.frame
	s.resetActiveSet(camera)

	for _, mesh := range s.candidateMeshes() {
		if mesh.IsBlocked {
			continue
		}
		s.stats.totalVertices.AddCount(float64(mesh.TotalVertices()), false)

		if !mesh.IsReady() || !mesh.IsEnabled() {
			continue
		}
		mesh.ComputeWorldMatrix()

		if hasIntersectionTriggers(mesh) {
			f.meshesForIntersections = pushNoDuplicate(f.meshesForIntersections, mesh)
		}

		lod := mesh.GetLOD(camera)
		if lod == nil {
			continue
		}

		if mesh.AlwaysSelectAsActiveMesh ||
			mesh.IsVisible && mesh.Visibility > 0 &&
				mesh.LayerMask&camera.LayerMask != 0 &&
				mesh.IsInFrustum(f.frustumPlanes) {
			f.activeMeshes = append(f.activeMeshes, mesh)
			camera.activeMeshes = append(camera.activeMeshes, mesh)
			mesh.renderID = s.renderID
			s.activeMesh(mesh, lod)
		}
	}
	s.stats.totalVertices.AddCount(0, true)
	s.stats.activeIndices.AddCount(0, true)

	s.stats.particlesDuration.BeginMonitoring(s.clock.Now())
	if s.ParticlesEnabled {
		s.evaluateParticleSystems()
	}
	s.stats.particlesDuration.EndMonitoring(s.clock.Now(), false)
}

// activeMesh collects what an active mesh needs for drawing. source passed
// the visibility test; mesh is the LOD representation actually drawn.
func (s *Scene) activeMesh(source, mesh *Mesh) {
	f := &s.frame
	if mesh.Skeleton != nil && s.SkeletonsEnabled {
		if indexOf(f.activeSkeletons, mesh.Skeleton) < 0 {
			f.activeSkeletons = append(f.activeSkeletons, mesh.Skeleton)
			mesh.Skeleton.Prepare()
			s.stats.activeBones.AddCount(float64(len(mesh.Skeleton.Bones)), false)
		}
		if !mesh.ComputeBonesUsingShaders {
			f.softwareSkinnedMeshes = pushNoDuplicate(f.softwareSkinnedMeshes, mesh)
		}
	}

	if (source.ShowBoundingBox || s.ForceShowBoundingBoxes) && s.BoundingBoxRenderer != nil {
		s.BoundingBoxRenderer.Add(source)
	}
	if source.EdgesRenderer != nil {
		f.edgesRenderers = append(f.edgesRenderers, source.EdgesRenderer)
	}

	subMeshes := mesh.SubMeshes
	if mesh.UseOctreeForRenderingSelection && mesh.subMeshesOctree != nil {
		f.subMeshCandidates = mesh.subMeshesOctree.Select(f.frustumPlanes, f.subMeshCandidates[:0])
		subMeshes = f.subMeshCandidates
	}
	for _, sm := range subMeshes {
		s.evaluateSubMesh(sm, mesh)
	}
}

func (s *Scene) evaluateSubMesh(sm *SubMesh, mesh *Mesh) {
	f := &s.frame
	if !mesh.AlwaysSelectAsActiveMesh && len(mesh.SubMeshes) != 1 && !sm.IsInFrustum(f.frustumPlanes) {
		return
	}

	if material := sm.Material(); material != nil {
		for _, rt := range material.RenderTargetTextures() {
			f.renderTargets = pushNoDuplicate(f.renderTargets, rt)
		}
	}

	s.stats.activeIndices.AddCount(float64(sm.IndexCount), false)
	if s.Dispatcher != nil {
		s.Dispatcher.Dispatch(sm)
	}
}

// evaluateParticleSystems activates started systems whose emitter is
// enabled (or absent) and advances each by one step.
func (s *Scene) evaluateParticleSystems() {
	f := &s.frame
	for _, ps := range s.particleSystems {
		if !ps.IsStarted() {
			continue
		}
		if ps.Emitter != nil && !ps.Emitter.IsEnabled() {
			continue
		}
		f.activeParticleSystems = append(f.activeParticleSystems, ps)
		ps.Animate()
		s.stats.activeParticles.AddCount(float64(ps.Count()), false)
		if s.Dispatcher != nil {
			s.Dispatcher.DispatchParticles(ps)
		}
	}
	s.stats.activeParticles.AddCount(0, true)
}

// applySoftwareSkinning CPU-skins the meshes flagged by the last pass.
func (s *Scene) applySoftwareSkinning() {
	for _, mesh := range s.frame.softwareSkinnedMeshes {
		mesh.applySkeleton(mesh.Skeleton)
	}
}
