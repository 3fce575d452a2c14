package scene

import "scene-engine/core"

// refreshSchedule implements the refresh-rate policy shared by render
// targets and procedural textures: rate 0 renders once, 1 every frame, N
// every Nth frame. The first check always renders.
type refreshSchedule struct {
	RefreshRate      int
	currentRefreshID int
}

func newRefreshSchedule(rate int) refreshSchedule {
	return refreshSchedule{RefreshRate: rate, currentRefreshID: -1}
}

func (r *refreshSchedule) ShouldRender() bool {
	if r.currentRefreshID == -1 {
		r.currentRefreshID = 1
		return true
	}
	if r.RefreshRate == r.currentRefreshID {
		r.currentRefreshID = 1
		return true
	}
	r.currentRefreshID++
	return false
}

// ResetRefreshCounter forces a render on the next check.
func (r *refreshSchedule) ResetRefreshCounter() { r.currentRefreshID = -1 }

// FrameContext is passed to every nested render call of a frame.
type FrameContext struct {
	Scene  *Scene
	Camera *Camera
	// Intermediate is set while rendering into a render target inside a
	// camera pass.
	Intermediate bool
	RenderID     int
}

// RenderTargetTexture renders a mesh list into an offscreen framebuffer.
type RenderTargetTexture struct {
	refreshSchedule

	Name          string
	Width, Height int
	RenderList    []*Mesh
	// ActiveCamera overrides the scene camera for custom render targets.
	ActiveCamera *Camera
	// Dispatcher draws the render list; nil only notifies observers.
	Dispatcher RenderingGroupDispatcher
	ClearColor core.Color

	OnBeforeRender core.Observable[*FrameContext]
	OnAfterRender  core.Observable[*FrameContext]

	// Framebuffer is owned by the engine backend.
	Framebuffer any

	scene       *Scene
	renderCount int
}

// NewRenderTargetTexture creates a target rendered once (RefreshRate 0) and
// registers it with the scene textures.
func NewRenderTargetTexture(name string, width, height int, s *Scene) *RenderTargetTexture {
	rt := &RenderTargetTexture{
		refreshSchedule: newRefreshSchedule(0),
		Name:            name,
		Width:           width,
		Height:          height,
		ClearColor:      core.Color{},
		scene:           s,
	}
	if s != nil {
		s.AddTexture(rt)
	}
	return rt
}

// RenderCount is the number of completed renders.
func (rt *RenderTargetTexture) RenderCount() int { return rt.renderCount }

// Render draws the render list into the target.
func (rt *RenderTargetTexture) Render(ctx *FrameContext) {
	s := ctx.Scene
	engine := s.engine
	engine.BindFramebuffer(rt)
	engine.Clear(rt.ClearColor, true, true, true)

	rt.OnBeforeRender.Notify(ctx)
	if rt.Dispatcher != nil {
		rt.Dispatcher.Reset()
		for _, mesh := range rt.RenderList {
			if mesh.IsDisposed() || !mesh.IsEnabled() || !mesh.IsVisible || !mesh.IsReady() {
				continue
			}
			mesh.ComputeWorldMatrix()
			for _, sm := range mesh.SubMeshes {
				rt.Dispatcher.Dispatch(sm)
			}
		}
		rt.Dispatcher.Render(ctx)
	}
	rt.OnAfterRender.Notify(ctx)

	engine.UnbindFramebuffer(rt)
	rt.renderCount++
}

func (rt *RenderTargetTexture) Dispose() {
	if rt.scene != nil {
		rt.scene.RemoveTexture(rt)
	}
	rt.OnBeforeRender.Clear()
	rt.OnAfterRender.Clear()
}

// ProceduralTexture regenerates its pixels through Generate on its refresh
// schedule.
type ProceduralTexture struct {
	refreshSchedule

	Name     string
	Texture  *Texture
	Generate func(t *Texture, ctx *FrameContext)
}

func NewProceduralTexture(name string, size, refreshRate int, generate func(*Texture, *FrameContext), s *Scene) *ProceduralTexture {
	pt := &ProceduralTexture{
		refreshSchedule: newRefreshSchedule(refreshRate),
		Name:            name,
		Texture:         &Texture{Name: name, Width: size, Height: size, Pixels: make([]byte, size*size*4)},
		Generate:        generate,
	}
	if s != nil {
		s.AddProceduralTexture(pt)
	}
	return pt
}

func (pt *ProceduralTexture) Render(ctx *FrameContext) {
	if pt.Generate != nil {
		pt.Generate(pt.Texture, ctx)
	}
}

// Layer is a full-screen 2D overlay drawn before or after the meshes.
type Layer interface {
	IsBackground() bool
	LayerMask() uint32
	Render(ctx *FrameContext)
}

type LensFlareSystem interface {
	IsEnabled() bool
	LayerMask() uint32
	Render(ctx *FrameContext)
}

// HighlightLayer renders glowing outlines through its own main texture and
// composites them after the main pass.
type HighlightLayer interface {
	ShouldRender() bool
	// Camera is nil when the layer applies to every camera.
	Camera() *Camera
	MainTexture() *RenderTargetTexture
	Render(ctx *FrameContext)
}

// BoundingBoxRenderer draws debug boxes for the meshes added each frame.
type BoundingBoxRenderer interface {
	Reset()
	Add(mesh *Mesh)
	Render(ctx *FrameContext)
}

// EdgesRenderer draws the outline edges of one mesh.
type EdgesRenderer interface {
	Render(ctx *FrameContext)
}
