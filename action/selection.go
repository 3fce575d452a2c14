package action

import (
	"slices"

	"scene-engine/core"
	"scene-engine/math"
	"scene-engine/scene"
)

// Selection tracks selected meshes. Selected meshes show their bounding box
// and disposed meshes leave the selection.
type Selection struct {
	// OnChange is notified after every change with the selection itself.
	OnChange core.Observable[*Selection]

	meshes []*scene.Mesh
	active *scene.Mesh

	scene      *scene.Scene
	pickObs    *core.Observer[*scene.PointerInfo]
	removedObs *core.Observer[*scene.Mesh]
}

func NewSelection() *Selection {
	return &Selection{}
}

// Attach selects whatever the pipeline picks in s and drops meshes removed
// from s.
func (sel *Selection) Attach(s *scene.Scene) {
	sel.Detach()
	sel.scene = s
	sel.pickObs = s.OnPointer.AddWithMask(func(pi *scene.PointerInfo, _ *core.EventState) {
		if pi.PickInfo.Hit && pi.PickInfo.PickedMesh != nil {
			sel.SelectSingle(pi.PickInfo.PickedMesh)
		}
	}, uint32(scene.PointerPick))
	sel.removedObs = s.OnMeshRemoved.Add(func(m *scene.Mesh, _ *core.EventState) {
		sel.Remove(m)
	})
}

func (sel *Selection) Detach() {
	if sel.scene == nil {
		return
	}
	sel.scene.OnPointer.Remove(sel.pickObs)
	sel.scene.OnMeshRemoved.Remove(sel.removedObs)
	sel.scene, sel.pickObs, sel.removedObs = nil, nil, nil
}

func (sel *Selection) Meshes() []*scene.Mesh { return sel.meshes }

// Active is the last selected mesh.
func (sel *Selection) Active() *scene.Mesh { return sel.active }

func (sel *Selection) Len() int { return len(sel.meshes) }

func (sel *Selection) IsSelected(m *scene.Mesh) bool { return slices.Contains(sel.meshes, m) }

func (sel *Selection) Clear() {
	if len(sel.meshes) == 0 {
		return
	}
	for _, m := range sel.meshes {
		m.ShowBoundingBox = false
	}
	sel.meshes = sel.meshes[:0]
	sel.active = nil
	sel.OnChange.Notify(sel)
}

// SelectSingle replaces the selection with m.
func (sel *Selection) SelectSingle(m *scene.Mesh) {
	if len(sel.meshes) == 1 && sel.meshes[0] == m {
		return
	}
	for _, old := range sel.meshes {
		old.ShowBoundingBox = false
	}
	sel.meshes = append(sel.meshes[:0], m)
	sel.active = m
	m.ShowBoundingBox = true
	sel.OnChange.Notify(sel)
}

// Toggle adds m, or removes it when already selected.
func (sel *Selection) Toggle(m *scene.Mesh) {
	if sel.IsSelected(m) {
		sel.Remove(m)
		return
	}
	sel.meshes = append(sel.meshes, m)
	sel.active = m
	m.ShowBoundingBox = true
	sel.OnChange.Notify(sel)
}

// Remove drops m; the active mesh falls back to the last remaining one.
func (sel *Selection) Remove(m *scene.Mesh) {
	i := slices.Index(sel.meshes, m)
	if i < 0 {
		return
	}
	sel.meshes = slices.Delete(sel.meshes, i, i+1)
	m.ShowBoundingBox = false
	if sel.active == m {
		sel.active = nil
		if n := len(sel.meshes); n > 0 {
			sel.active = sel.meshes[n-1]
		}
	}
	sel.OnChange.Notify(sel)
}

// Center returns the mean position of the selected meshes.
func (sel *Selection) Center() math.Vec3 {
	if len(sel.meshes) == 0 {
		return math.Vec3Zero
	}
	center := math.Vec3Zero
	for _, m := range sel.meshes {
		center = center.Add(m.AbsolutePosition())
	}
	return center.Div(float32(len(sel.meshes)))
}

// DisposeCommands returns one undo-less dispose command per selected mesh.
func (sel *Selection) DisposeCommands() []Command {
	cmds := make([]Command, 0, len(sel.meshes))
	for _, m := range sel.meshes {
		cmds = append(cmds, &DisposeCommand{Mesh: m})
	}
	return cmds
}
