// Package renderer sorts what the visibility pass selected into rendering
// groups and hands it to a Drawer in draw order.
package renderer

import (
	"cmp"
	"log/slog"
	"slices"

	"scene-engine/core"
	"scene-engine/scene"
)

// MaxRenderingGroups bounds Mesh.RenderingGroupID and friends.
const MaxRenderingGroups = 4

// Drawer issues the GPU work for one item.
type Drawer interface {
	DrawSubMesh(sm *scene.SubMesh, ctx *scene.FrameContext)
	DrawSprites(sm *scene.SpriteManager, ctx *scene.FrameContext)
	DrawParticles(ps *scene.ParticleSystem, ctx *scene.FrameContext)
	// ClearDepthStencil runs between rendering groups so later groups draw
	// on top.
	ClearDepthStencil()
}

// GroupInfo is broadcast around every non-empty rendering group.
type GroupInfo struct {
	ID      int
	Context *scene.FrameContext
}

// RenderingGroup holds one group's sub-meshes split by blending mode.
type RenderingGroup struct {
	ID int

	opaque      []*scene.SubMesh
	alphaTest   []*scene.SubMesh
	transparent []*scene.SubMesh
	particles   []*scene.ParticleSystem
}

func (g *RenderingGroup) reset() {
	clear(g.opaque)
	clear(g.alphaTest)
	clear(g.transparent)
	clear(g.particles)
	g.opaque = g.opaque[:0]
	g.alphaTest = g.alphaTest[:0]
	g.transparent = g.transparent[:0]
	g.particles = g.particles[:0]
}

func (g *RenderingGroup) dispatch(sm *scene.SubMesh) {
	mesh := sm.Mesh()
	mat := sm.Material()
	switch {
	case mesh.Visibility < 1 || (mat != nil && mat.NeedAlphaBlending()):
		g.transparent = append(g.transparent, sm)
	case mat != nil && mat.NeedAlphaTesting():
		g.alphaTest = append(g.alphaTest, sm)
	default:
		g.opaque = append(g.opaque, sm)
	}
}

func (g *RenderingGroup) empty() bool {
	return len(g.opaque) == 0 && len(g.alphaTest) == 0 &&
		len(g.transparent) == 0 && len(g.particles) == 0
}

// Stats counts the draws issued by the last Render call.
type Stats struct {
	SubMeshes       int
	Sprites         int
	ParticleSystems int
	Groups          int
}

// Manager implements scene.RenderingGroupDispatcher on top of a Drawer.
// Within a group opaque then alpha-tested sub-meshes draw front to back,
// sprites next, transparent sub-meshes back to front, particles last.
type Manager struct {
	// AutoClearDepthStencil clears depth and stencil before group i. Group 0
	// is never cleared here; the scene clears the frame.
	AutoClearDepthStencil [MaxRenderingGroups]bool

	OnBeforeGroup core.Observable[*GroupInfo]
	OnAfterGroup  core.Observable[*GroupInfo]

	drawer Drawer
	logger *slog.Logger
	groups [MaxRenderingGroups]RenderingGroup
	stats  Stats
}

var _ scene.RenderingGroupDispatcher = (*Manager)(nil)

func NewManager(drawer Drawer, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{drawer: drawer, logger: logger}
	for i := range m.groups {
		m.groups[i].ID = i
		m.AutoClearDepthStencil[i] = true
	}
	return m
}

func (m *Manager) Reset() {
	for i := range m.groups {
		m.groups[i].reset()
	}
}

func (m *Manager) group(id int, what string) *RenderingGroup {
	if id < 0 || id >= MaxRenderingGroups {
		m.logger.Warn("rendering group out of range", "group", id, "entity", what)
		return nil
	}
	return &m.groups[id]
}

func (m *Manager) Dispatch(sm *scene.SubMesh) {
	if g := m.group(sm.Mesh().RenderingGroupID, sm.Mesh().Name); g != nil {
		g.dispatch(sm)
	}
}

func (m *Manager) DispatchParticles(ps *scene.ParticleSystem) {
	if g := m.group(ps.RenderingGroupID, ps.Name); g != nil {
		g.particles = append(g.particles, ps)
	}
}

// Render draws every group in ascending ID order for ctx.Camera.
func (m *Manager) Render(ctx *scene.FrameContext) {
	m.stats = Stats{}
	var sprites [MaxRenderingGroups][]*scene.SpriteManager
	for _, sm := range ctx.Scene.SpriteManagers() {
		if len(sm.Sprites) == 0 || sm.RenderingGroupID < 0 || sm.RenderingGroupID >= MaxRenderingGroups {
			continue
		}
		if ctx.Camera != nil && sm.LayerMask&ctx.Camera.LayerMask == 0 {
			continue
		}
		sprites[sm.RenderingGroupID] = append(sprites[sm.RenderingGroupID], sm)
	}

	for i := range m.groups {
		g := &m.groups[i]
		if g.empty() && len(sprites[i]) == 0 {
			continue
		}
		info := &GroupInfo{ID: i, Context: ctx}
		m.OnBeforeGroup.NotifyWithMask(info, 1<<uint(i))
		if i > 0 && m.AutoClearDepthStencil[i] {
			m.drawer.ClearDepthStencil()
		}
		m.renderGroup(g, sprites[i], ctx)
		m.OnAfterGroup.NotifyWithMask(info, 1<<uint(i))
		m.stats.Groups++
	}
}

func (m *Manager) renderGroup(g *RenderingGroup, sprites []*scene.SpriteManager, ctx *scene.FrameContext) {
	eye := ctx.Camera
	if eye != nil {
		frontToBack(g.opaque, eye)
		frontToBack(g.alphaTest, eye)
		backToFront(g.transparent, eye)
	}
	for _, sm := range g.opaque {
		m.drawer.DrawSubMesh(sm, ctx)
	}
	for _, sm := range g.alphaTest {
		m.drawer.DrawSubMesh(sm, ctx)
	}
	for _, sm := range sprites {
		m.drawer.DrawSprites(sm, ctx)
	}
	for _, sm := range g.transparent {
		m.drawer.DrawSubMesh(sm, ctx)
	}
	for _, ps := range g.particles {
		m.drawer.DrawParticles(ps, ctx)
	}
	m.stats.SubMeshes += len(g.opaque) + len(g.alphaTest) + len(g.transparent)
	m.stats.Sprites += len(sprites)
	m.stats.ParticleSystems += len(g.particles)
}

// Stats reports the draws of the last Render call.
func (m *Manager) Stats() Stats { return m.stats }

func distanceToCamera(sm *scene.SubMesh, cam *scene.Camera) float32 {
	return sm.Mesh().BoundingInfo().Sphere.CenterWorld.Distance(cam.Position)
}

func frontToBack(list []*scene.SubMesh, cam *scene.Camera) {
	slices.SortStableFunc(list, func(a, b *scene.SubMesh) int {
		return cmp.Compare(distanceToCamera(a, cam), distanceToCamera(b, cam))
	})
}

func backToFront(list []*scene.SubMesh, cam *scene.Camera) {
	slices.SortStableFunc(list, func(a, b *scene.SubMesh) int {
		return cmp.Compare(distanceToCamera(b, cam), distanceToCamera(a, cam))
	})
}
