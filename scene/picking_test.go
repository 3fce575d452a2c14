package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-engine/math"
)

func TestPickOriginBox(t *testing.T) {
	s, _, _ := newTestScene()
	box := NewBox("box", 1, s)

	info, err := s.Pick(400, 300, nil, false, nil)
	require.NoError(t, err)
	require.True(t, info.Hit)
	assert.Same(t, box, info.PickedMesh)
	assert.InDelta(t, 4.4, info.Distance, 1e-3)
	assert.InDelta(t, 0.5, info.PickedPoint.Z, 1e-3)

	miss, err := s.Pick(10, 10, nil, false, nil)
	require.NoError(t, err)
	assert.Equal(t, PickingInfo{}, miss)
}

func TestPickNearestHit(t *testing.T) {
	tests := []struct {
		name      string
		nearFirst bool
	}{
		{"near registered first", true},
		{"far registered first", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := newTestScene()
			var near, far *Mesh
			if tt.nearFirst {
				near = NewBox("near", 1, s)
				far = NewBox("far", 1, s)
			} else {
				far = NewBox("far", 1, s)
				near = NewBox("near", 1, s)
			}
			far.SetPosition(math.NewVec3(0, 0, -3))

			info, err := s.Pick(400, 300, nil, false, nil)
			require.NoError(t, err)
			require.True(t, info.Hit)
			assert.Same(t, near, info.PickedMesh)

			again, err := s.Pick(400, 300, nil, false, nil)
			require.NoError(t, err)
			assert.Equal(t, info, again)
		})
	}
}

func TestPickPredicateAndFastCheck(t *testing.T) {
	s, _, _ := newTestScene()
	near := NewBox("near", 1, s)
	far := NewBox("far", 1, s)
	far.SetPosition(math.NewVec3(0, 0, -3))

	info, err := s.Pick(400, 300, func(m *Mesh) bool { return m != near }, false, nil)
	require.NoError(t, err)
	require.True(t, info.Hit)
	assert.Same(t, far, info.PickedMesh)
	assert.InDelta(t, 7.4, info.Distance, 1e-3)

	fast, err := s.Pick(400, 300, nil, true, nil)
	require.NoError(t, err)
	assert.True(t, fast.Hit)

	none, err := s.Pick(10, 10, nil, true, nil)
	require.NoError(t, err)
	assert.False(t, none.Hit)
}

func TestPickSkipsDisabledHiddenAndUnpickable(t *testing.T) {
	tests := []struct {
		name   string
		modify func(m *Mesh)
	}{
		{"disabled", func(m *Mesh) { m.SetEnabled(false) }},
		{"hidden", func(m *Mesh) { m.IsVisible = false }},
		{"not pickable", func(m *Mesh) { m.IsPickable = false }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := newTestScene()
			box := NewBox("box", 1, s)
			tt.modify(box)

			info, err := s.Pick(400, 300, nil, false, nil)
			require.NoError(t, err)
			assert.False(t, info.Hit)
		})
	}
}

func TestPickDisabledParent(t *testing.T) {
	s, _, _ := newTestScene()
	parent := NewMesh("parent", s)
	child := NewBox("child", 1, s)
	parent.AddChild(&child.Node)
	parent.SetEnabled(false)

	info, err := s.Pick(400, 300, nil, false, nil)
	require.NoError(t, err)
	assert.False(t, info.Hit)
}

func TestMultiPick(t *testing.T) {
	s, _, _ := newTestScene()
	NewBox("near", 1, s)
	far := NewBox("far", 1, s)
	far.SetPosition(math.NewVec3(0, 0, -3))
	side := NewBox("side", 1, s)
	side.SetPosition(math.NewVec3(10, 0, 0))

	hits, err := s.MultiPick(400, 300, nil, nil)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "near", hits[0].PickedMesh.Name)
	assert.Equal(t, "far", hits[1].PickedMesh.Name)
}

func TestPickWithRay(t *testing.T) {
	s, _, _ := newTestScene()
	box := NewBox("box", 1, s)
	box.SetPosition(math.NewVec3(2, 0, 0))
	box.SetScale(math.NewVec3(2, 2, 2))

	info := s.PickWithRay(math.NewRay(math.NewVec3(2, 0, 10), math.Vec3Back), nil, false)
	require.True(t, info.Hit)
	assert.Same(t, box, info.PickedMesh)
	assert.InDelta(t, 9, info.Distance, 1e-3)

	miss := s.PickWithRay(math.NewRay(math.NewVec3(0, 0, 10), math.Vec3Back), nil, false)
	assert.False(t, miss.Hit)

	all := s.MultiPickWithRay(math.NewRay(math.NewVec3(2, 0, 10), math.Vec3Back), nil)
	assert.Len(t, all, 1)
}

func TestPickWithoutCamera(t *testing.T) {
	s := NewScene(&fakeEngine{log: &frameLog{}, width: 800, height: 600}, Options{})
	NewBox("box", 1, s)

	_, err := s.Pick(400, 300, nil, false, nil)
	assert.ErrorIs(t, err, ErrNoActiveCamera)

	_, err = s.PickSprite(400, 300, nil, false, nil)
	assert.ErrorIs(t, err, ErrNoActiveCamera)
}

func TestPickingRayViewport(t *testing.T) {
	s, _, _ := newTestScene()
	cam := s.ActiveCamera
	cam.Viewport.X = 0.5
	cam.Viewport.Width = 0.5

	// the center of the right half of the window
	ray, err := s.CreatePickingRay(600, 300, math.Mat4Identity(), nil)
	require.NoError(t, err)
	assert.InDelta(t, 0, ray.Direction.X, 1e-4)
	assert.InDelta(t, 0, ray.Direction.Y, 1e-4)
	assert.InDelta(t, -1, ray.Direction.Z, 1e-4)

	camRay, err := s.CreatePickingRayInCameraSpace(600, 300, nil)
	require.NoError(t, err)
	assert.InDelta(t, -0.1, camRay.Origin.Z, 1e-4)
}

func TestPickSprite(t *testing.T) {
	s, _, _ := newTestScene()
	sm := NewSpriteManager("sprites", 10, 64, s)
	sm.IsPickable = true
	sp := sm.NewSprite("sprite")
	sp.IsPickable = true

	info, err := s.PickSprite(400, 300, nil, false, nil)
	require.NoError(t, err)
	require.True(t, info.Hit)
	assert.Same(t, sp, info.PickedSprite)

	sp.IsVisible = false
	info, err = s.PickSprite(400, 300, nil, false, nil)
	require.NoError(t, err)
	assert.False(t, info.Hit)

	sp.IsVisible = true
	sm.IsPickable = false
	info, err = s.PickSprite(400, 300, nil, false, nil)
	require.NoError(t, err)
	assert.False(t, info.Hit)
}

func TestPickTiledGroundSubMesh(t *testing.T) {
	s, _, _ := newTestScene()
	cam := s.ActiveCamera
	cam.Position = math.NewVec3(0, 10, 0.001)
	cam.SetTarget(math.Vec3Zero)

	ground := NewTiledGround("ground", 4, 2, s)
	require.Len(t, ground.SubMeshes, 4)

	info := s.PickWithRay(math.NewRay(math.NewVec3(1, 5, 1), math.Vec3Down), nil, false)
	require.True(t, info.Hit)
	assert.Equal(t, 3, info.SubMeshID)
	assert.InDelta(t, 5, info.Distance, 1e-3)
}
