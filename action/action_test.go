package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-engine/math"
	"scene-engine/scene"
)

func TestManagerProcessTrigger(t *testing.T) {
	m := NewManager(nil)
	var got []string
	m.Register(New(scene.TriggerPick, func(scene.ActionEvent) { got = append(got, "pick") }))
	m.Register(New(scene.TriggerPickDown, func(scene.ActionEvent) { got = append(got, "down") }))
	m.Register(New(scene.TriggerPick, func(scene.ActionEvent) { got = append(got, "pick2") }))

	m.ProcessTrigger(scene.TriggerPick, scene.ActionEvent{})
	assert.Equal(t, []string{"pick", "pick2"}, got)

	m.ProcessTrigger(scene.TriggerPointerOver, scene.ActionEvent{})
	assert.Len(t, got, 2)
}

func TestManagerTriggerQueries(t *testing.T) {
	tests := []struct {
		name    string
		trigger scene.Trigger
		pointer bool
		pick    bool
	}{
		{"pick", scene.TriggerPick, true, true},
		{"pick up", scene.TriggerPickUp, true, true},
		{"long press", scene.TriggerLongPress, true, false},
		{"pointer over", scene.TriggerPointerOver, true, false},
		{"every frame", scene.TriggerEveryFrame, false, false},
		{"key down", scene.TriggerKeyDown, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(nil)
			m.Register(New(tt.trigger, nil))
			assert.Equal(t, tt.pointer, m.HasPointerTriggers())
			assert.Equal(t, tt.pick, m.HasPickTriggers())
			assert.True(t, m.HasSpecificTrigger(tt.trigger))
			assert.True(t, m.HasSpecificTriggers(scene.TriggerNothing, tt.trigger))
			assert.False(t, m.HasSpecificTrigger(scene.TriggerPickOut))
		})
	}
}

func TestConditionAndKeyFilter(t *testing.T) {
	m := NewManager(nil)
	enabled := false
	count := 0
	m.Register(New(scene.TriggerEveryFrame, func(scene.ActionEvent) { count++ })).
		When(func(scene.ActionEvent) bool { return enabled })
	keys := 0
	m.Register(NewKey(scene.TriggerKeyDown, 65, func(scene.ActionEvent) { keys++ }))

	m.ProcessTrigger(scene.TriggerEveryFrame, scene.ActionEvent{})
	enabled = true
	m.ProcessTrigger(scene.TriggerEveryFrame, scene.ActionEvent{})
	assert.Equal(t, 1, count)

	m.ProcessTrigger(scene.TriggerKeyDown, scene.ActionEvent{SourceEvent: scene.KeyboardEvent{Key: 66}})
	m.ProcessTrigger(scene.TriggerKeyDown, scene.ActionEvent{SourceEvent: &scene.KeyboardEvent{Key: 65}})
	m.ProcessTrigger(scene.TriggerKeyDown, scene.ActionEvent{})
	assert.Equal(t, 1, keys)
}

func TestUnregisterWhileProcessing(t *testing.T) {
	m := NewManager(nil)
	calls := 0
	var once *Action
	once = m.Register(New(scene.TriggerPick, func(scene.ActionEvent) {
		calls++
		m.Unregister(once)
	}))
	m.Register(New(scene.TriggerPick, func(scene.ActionEvent) { calls++ }))

	m.ProcessTrigger(scene.TriggerPick, scene.ActionEvent{})
	m.ProcessTrigger(scene.TriggerPick, scene.ActionEvent{})
	assert.Equal(t, 3, calls)
	assert.Len(t, m.Actions(), 1)
	assert.False(t, m.Unregister(once))
}

func TestIntersectionActionsDrivenByScene(t *testing.T) {
	s := scene.NewScene(nil, scene.Options{})
	cam := scene.NewCamera("camera", math.NewVec3(0, 0, 5), s)
	cam.SetTarget(math.Vec3Zero)
	a := scene.NewBox("a", 1, s)
	b := scene.NewBox("b", 1, s)

	m := NewManager(nil)
	entered, exited := 0, 0
	m.Register(NewIntersection(scene.TriggerIntersectionEnter, b, false, func(evt scene.ActionEvent) {
		entered++
		assert.Equal(t, a, evt.Source)
		assert.Equal(t, b, evt.Additional)
	}))
	m.Register(NewIntersection(scene.TriggerIntersectionExit, b, true, func(scene.ActionEvent) { exited++ }))
	a.ActionManager = m

	require.Len(t, m.IntersectionActions(), 2)
	// the manager itself never runs intersection actions
	m.ProcessTrigger(scene.TriggerIntersectionEnter, scene.ActionEvent{})
	assert.Zero(t, entered)

	_, err := s.EvaluateVisibility(nil)
	require.NoError(t, err)
	assert.Equal(t, []*scene.Mesh{a}, s.MeshesForIntersections())
}

func TestCommandHistory(t *testing.T) {
	s := scene.NewScene(nil, scene.Options{})
	box := scene.NewBox("box", 1, s)
	h := NewHistory(2)

	move := NewCommand(scene.TriggerPick, h, func(evt scene.ActionEvent) Command {
		return NewMoveCommand(box, box.Transform.Position.Add(math.NewVec3(1, 0, 0)))
	})
	for i := 0; i < 3; i++ {
		move.Execute(scene.ActionEvent{})
	}
	assert.Equal(t, float32(3), box.Transform.Position.X)

	assert.True(t, h.Undo())
	assert.True(t, h.Undo())
	assert.False(t, h.Undo())
	assert.Equal(t, float32(1), box.Transform.Position.X)

	assert.True(t, h.Redo())
	assert.Equal(t, float32(2), box.Transform.Position.X)
	assert.True(t, h.CanRedo())

	toggle := NewToggleVisibilityCommand(box)
	h.Do(toggle)
	assert.False(t, box.IsVisible)
	assert.False(t, h.CanRedo())
	h.Undo()
	assert.True(t, box.IsVisible)
}

func TestDisposeCommandQueues(t *testing.T) {
	s := scene.NewScene(nil, scene.Options{})
	box := scene.NewBox("box", 1, s)
	cmd := &DisposeCommand{Mesh: box}
	cmd.Execute()
	assert.Equal(t, 1, s.PendingDisposals())
	assert.False(t, box.IsDisposed())
	assert.Equal(t, "Dispose box", cmd.Description())
}
