package action

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-engine/core"
	"scene-engine/math"
	"scene-engine/scene"
)

func TestSelectionSingleAndToggle(t *testing.T) {
	a := scene.NewBox("a", 1, nil)
	b := scene.NewBox("b", 1, nil)
	a.SetPosition(math.NewVec3(2, 0, 0))
	b.SetPosition(math.NewVec3(4, 2, 0))

	sel := NewSelection()
	changes := 0
	sel.OnChange.Add(func(*Selection, *core.EventState) { changes++ })

	sel.SelectSingle(a)
	sel.SelectSingle(a)
	assert.Equal(t, 1, changes, "reselecting is a no-op")
	assert.True(t, a.ShowBoundingBox)

	sel.Toggle(b)
	assert.Equal(t, []*scene.Mesh{a, b}, sel.Meshes())
	assert.Same(t, b, sel.Active())
	assert.Equal(t, math.NewVec3(3, 1, 0), sel.Center())

	sel.Toggle(b)
	assert.False(t, b.ShowBoundingBox)
	assert.Same(t, a, sel.Active())

	sel.SelectSingle(b)
	assert.False(t, a.ShowBoundingBox)
	assert.Equal(t, []*scene.Mesh{b}, sel.Meshes())

	sel.Clear()
	assert.Zero(t, sel.Len())
	assert.Nil(t, sel.Active())
	assert.False(t, b.ShowBoundingBox)
	assert.Equal(t, math.Vec3Zero, sel.Center())
	assert.Equal(t, 5, changes)
}

func TestSelectionFollowsScene(t *testing.T) {
	s := scene.NewScene(nil, scene.Options{Logger: slog.New(slog.DiscardHandler)})
	a := scene.NewBox("a", 1, s)
	b := scene.NewBox("b", 1, s)

	sel := NewSelection()
	sel.Attach(s)

	pick := func(m *scene.Mesh, typ scene.PointerEventType) {
		s.OnPointer.NotifyWithMask(&scene.PointerInfo{
			Type:     typ,
			PickInfo: scene.PickingInfo{Hit: m != nil, PickedMesh: m},
		}, uint32(typ))
	}

	pick(a, scene.PointerPick)
	assert.True(t, sel.IsSelected(a))
	pick(b, scene.PointerDown)
	assert.False(t, sel.IsSelected(b), "only picks select")
	pick(nil, scene.PointerPick)
	assert.True(t, sel.IsSelected(a), "a miss keeps the selection")

	a.Dispose()
	assert.Zero(t, sel.Len())

	sel.Detach()
	pick(b, scene.PointerPick)
	assert.Zero(t, sel.Len())
}

func TestSelectionDisposeCommands(t *testing.T) {
	s := scene.NewScene(nil, scene.Options{Logger: slog.New(slog.DiscardHandler)})
	a := scene.NewBox("a", 1, s)
	b := scene.NewBox("b", 1, s)
	sel := NewSelection()
	sel.Toggle(a)
	sel.Toggle(b)

	cmds := sel.DisposeCommands()
	require.Len(t, cmds, 2)
	for _, c := range cmds {
		c.Execute()
	}
	assert.Equal(t, 2, s.PendingDisposals())
}
