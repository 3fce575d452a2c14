package ecs

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"

	"scene-engine/core"
	"scene-engine/math"
	"scene-engine/scene"
)

type nullEngine struct{}

func (nullEngine) RenderSize() (int, int)                       { return 800, 600 }
func (nullEngine) HardwareScalingLevel() float32                { return 1 }
func (nullEngine) SetViewport(core.Viewport)                    {}
func (nullEngine) Clear(core.Color, bool, bool, bool)           {}
func (nullEngine) SetDepthBuffer(bool)                          {}
func (nullEngine) StencilBuffer() bool                          { return false }
func (nullEngine) SetStencilBuffer(bool)                        {}
func (nullEngine) BindFramebuffer(*scene.RenderTargetTexture)   {}
func (nullEngine) UnbindFramebuffer(*scene.RenderTargetTexture) {}
func (nullEngine) RestoreDefaultFramebuffer()                   {}

func newScene() *scene.Scene {
	s := scene.NewScene(nullEngine{}, scene.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	cam := scene.NewCamera("camera", math.NewVec3(0, 0, 10), s)
	cam.SetTarget(math.Vec3Zero)
	return s
}

func collect(world donburi.World) *[]TriggerEvent {
	var received []TriggerEvent
	TriggerEventType.Subscribe(world, func(_ donburi.World, e TriggerEvent) {
		received = append(received, e)
	})
	return &received
}

func TestAttachLinksEntityAndMesh(t *testing.T) {
	world := donburi.NewWorld()
	box := scene.NewBox("box", 1, nil)

	d := Attach(world, box, scene.TriggerPick)

	assert.Same(t, d, box.ActionManager)
	assert.True(t, world.Valid(d.Entity()))
	assert.Same(t, box, MeshOf(world, d.Entity()))
}

func TestProcessTriggerPublishesQueuedEvents(t *testing.T) {
	world := donburi.NewWorld()
	received := collect(world)
	box := scene.NewBox("box", 1, nil)
	d := Attach(world, box, scene.TriggerPick, scene.TriggerPointerOver)

	d.ProcessTrigger(scene.TriggerPick, scene.NewMeshActionEvent(box, nil, nil))
	d.ProcessTrigger(scene.TriggerPointerOut, scene.NewMeshActionEvent(box, nil, nil))
	d.ProcessTrigger(scene.TriggerPointerOver, scene.NewMeshActionEvent(box, nil, nil))
	assert.Empty(t, *received, "events wait for ProcessEvents")

	TriggerEventType.ProcessEvents(world)
	require.Len(t, *received, 2)
	assert.Equal(t, scene.TriggerPick, (*received)[0].Trigger)
	assert.Equal(t, scene.TriggerPointerOver, (*received)[1].Trigger)
	assert.Equal(t, d.Entity(), (*received)[0].Entity)
	assert.Same(t, box, (*received)[0].Event.Source)
}

func TestPredicates(t *testing.T) {
	world := donburi.NewWorld()
	other := scene.NewBox("other", 1, nil)

	tests := []struct {
		name     string
		setup    func(d *Dispatcher)
		pointer  bool
		pick     bool
		specific bool
	}{
		{"nothing", func(*Dispatcher) {}, false, false, false},
		{"pick", func(d *Dispatcher) { d.Listen(scene.TriggerPick) }, true, true, false},
		{"over", func(d *Dispatcher) { d.Listen(scene.TriggerPointerOver) }, true, false, false},
		{"key", func(d *Dispatcher) { d.Listen(scene.TriggerKeyDown) }, false, false, false},
		{"intersection", func(d *Dispatcher) {
			d.ListenIntersection(scene.TriggerIntersectionExit, other, false)
		}, false, false, true},
		{"intersection via listen", func(d *Dispatcher) { d.Listen(scene.TriggerIntersectionEnter) }, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Attach(world, scene.NewBox(tt.name, 1, nil))
			tt.setup(d)
			assert.Equal(t, tt.pointer, d.HasPointerTriggers())
			assert.Equal(t, tt.pick, d.HasPickTriggers())
			assert.Equal(t, tt.specific, d.HasSpecificTriggers(scene.TriggerIntersectionEnter, scene.TriggerIntersectionExit))
		})
	}
}

func TestListenIgnoresDuplicates(t *testing.T) {
	world := donburi.NewWorld()
	received := collect(world)
	box := scene.NewBox("box", 1, nil)
	d := Attach(world, box, scene.TriggerPick, scene.TriggerPick)
	d.Listen(scene.TriggerPick)

	d.ProcessTrigger(scene.TriggerPick, scene.NewMeshActionEvent(box, nil, nil))
	events.ProcessAllEvents(world)
	assert.Len(t, *received, 1)
}

func TestDisposeRemovesEntity(t *testing.T) {
	world := donburi.NewWorld()
	received := collect(world)
	box := scene.NewBox("box", 1, nil)
	d := Attach(world, box, scene.TriggerPick)
	entity := d.Entity()

	box.Dispose()
	assert.False(t, world.Valid(entity))
	assert.Nil(t, MeshOf(world, entity))

	d.ProcessTrigger(scene.TriggerPick, scene.NewMeshActionEvent(box, nil, nil))
	TriggerEventType.ProcessEvents(world)
	assert.Empty(t, *received)
}

func TestIntersectionEventsFromSceneRender(t *testing.T) {
	s := newScene()
	world := donburi.NewWorld()
	received := collect(world)

	a := scene.NewBox("a", 1, s)
	b := scene.NewBox("b", 1, s)
	d := Attach(world, a)
	d.ListenIntersection(scene.TriggerIntersectionEnter, b, false)
	d.ListenIntersection(scene.TriggerIntersectionExit, b, false)

	for _, x := range []float32{10, 0.5, 0.2, 10} {
		b.SetPosition(math.NewVec3(x, 0, 0))
		require.NoError(t, s.Render())
	}
	TriggerEventType.ProcessEvents(world)

	require.Len(t, *received, 2)
	assert.Equal(t, scene.TriggerIntersectionEnter, (*received)[0].Trigger)
	assert.Equal(t, scene.TriggerIntersectionExit, (*received)[1].Trigger)
	assert.Same(t, b, (*received)[0].Event.Additional)
}

func TestHoverCursor(t *testing.T) {
	d := Attach(donburi.NewWorld(), scene.NewBox("box", 1, nil))
	assert.Empty(t, d.HoverCursor())
	d.Cursor = "hand"
	assert.Equal(t, "hand", d.HoverCursor())
}
