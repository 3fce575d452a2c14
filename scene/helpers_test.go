package scene

import (
	"fmt"
	"io"
	"log/slog"

	"scene-engine/core"
	"scene-engine/math"
)

// frameLog collects the calls of every fake in one ordered list.
type frameLog struct {
	entries []string
}

func (l *frameLog) add(format string, args ...any) {
	l.entries = append(l.entries, fmt.Sprintf(format, args...))
}

func (l *frameLog) index(entry string) int {
	for i, e := range l.entries {
		if e == entry {
			return i
		}
	}
	return -1
}

func (l *frameLog) count(entry string) int {
	n := 0
	for _, e := range l.entries {
		if e == entry {
			n++
		}
	}
	return n
}

type fakeEngine struct {
	log           *frameLog
	width, height int
	stencil       bool
}

func (e *fakeEngine) RenderSize() (int, int) { return e.width, e.height }
func (e *fakeEngine) HardwareScalingLevel() float32 { return 1 }
func (e *fakeEngine) SetViewport(vp core.Viewport) {
	e.log.add("viewport %v,%v,%v,%v", vp.X, vp.Y, vp.Width, vp.Height)
}
func (e *fakeEngine) Clear(_ core.Color, backBuffer, depth, stencil bool) {
	e.log.add("clear color=%t depth=%t stencil=%t", backBuffer, depth, stencil)
}
func (e *fakeEngine) SetDepthBuffer(enabled bool) { e.log.add("depth %t", enabled) }
func (e *fakeEngine) StencilBuffer() bool { return e.stencil }
func (e *fakeEngine) SetStencilBuffer(enabled bool) {
	e.stencil = enabled
	e.log.add("stencil %t", enabled)
}
func (e *fakeEngine) BindFramebuffer(rt *RenderTargetTexture) { e.log.add("bind %s", rt.Name) }
func (e *fakeEngine) UnbindFramebuffer(rt *RenderTargetTexture) { e.log.add("unbind %s", rt.Name) }
func (e *fakeEngine) RestoreDefaultFramebuffer() { e.log.add("restore") }

type fakeDispatcher struct {
	log       *frameLog
	subMeshes []*SubMesh
	particles []*ParticleSystem
}

func (d *fakeDispatcher) Reset() {
	d.subMeshes = d.subMeshes[:0]
	d.particles = d.particles[:0]
}

func (d *fakeDispatcher) Dispatch(sm *SubMesh) { d.subMeshes = append(d.subMeshes, sm) }

func (d *fakeDispatcher) DispatchParticles(ps *ParticleSystem) {
	d.particles = append(d.particles, ps)
}

func (d *fakeDispatcher) Render(ctx *FrameContext) {
	d.log.add("render %s", ctx.Camera.Name)
}

func (d *fakeDispatcher) meshes() []*Mesh {
	var out []*Mesh
	for _, sm := range d.subMeshes {
		out = append(out, sm.Mesh())
	}
	return out
}

type fakeIntersectionAction struct {
	trigger  Trigger
	target   *Mesh
	precise  bool
	executed int
}

func (a *fakeIntersectionAction) Trigger() Trigger { return a.trigger }
func (a *fakeIntersectionAction) Target() *Mesh { return a.target }
func (a *fakeIntersectionAction) Precise() bool { return a.precise }
func (a *fakeIntersectionAction) Execute(_ ActionEvent) { a.executed++ }

type fakeActionManager struct {
	triggers     []Trigger
	intersection []IntersectionAction
	processed    []Trigger
	cursor       string
}

func (m *fakeActionManager) ProcessTrigger(trigger Trigger, _ ActionEvent) {
	m.processed = append(m.processed, trigger)
}

func (m *fakeActionManager) HasSpecificTrigger(trigger Trigger) bool {
	return m.HasSpecificTriggers(trigger)
}

func (m *fakeActionManager) HasSpecificTriggers(triggers ...Trigger) bool {
	for _, have := range m.triggers {
		for _, want := range triggers {
			if have == want {
				return true
			}
		}
	}
	return false
}

func (m *fakeActionManager) HasPointerTriggers() bool {
	for _, t := range m.triggers {
		if t.IsPointer() {
			return true
		}
	}
	return false
}

func (m *fakeActionManager) HasPickTriggers() bool {
	for _, t := range m.triggers {
		if t.IsPick() {
			return true
		}
	}
	return false
}

func (m *fakeActionManager) IntersectionActions() []IntersectionAction { return m.intersection }

func (m *fakeActionManager) HoverCursor() string { return m.cursor }

type countingDisposable struct{ disposed int }

func (d *countingDisposable) Dispose() { d.disposed++ }

// newTestScene returns an 800x600 scene with a recording engine and
// dispatcher and a camera at (0,0,5) looking at the origin.
func newTestScene() (*Scene, *frameLog, *fakeDispatcher) {
	log := &frameLog{}
	engine := &fakeEngine{log: log, width: 800, height: 600}
	s := NewScene(engine, Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	d := &fakeDispatcher{log: log}
	s.Dispatcher = d
	cam := NewCamera("camera", math.NewVec3(0, 0, 5), s)
	cam.SetTarget(math.Vec3Zero)
	return s, log, d
}
