package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-engine/core"
	"scene-engine/math"
)

func TestUniqueIDsAreMonotonic(t *testing.T) {
	s, _, _ := newTestScene()
	a := NewBox("a", 1, s)
	cam := NewCamera("other", math.Vec3Zero, s)
	b := NewBox("b", 1, s)

	assert.Less(t, s.ActiveCamera.UniqueID, a.UniqueID)
	assert.Less(t, a.UniqueID, cam.UniqueID)
	assert.Less(t, cam.UniqueID, b.UniqueID)

	assert.Equal(t, b, s.GetMeshByUniqueID(b.UniqueID))
	assert.Equal(t, a, s.GetMeshByName("a"))
	assert.Equal(t, a, s.GetMeshByID("a"))
	assert.Equal(t, cam, s.GetCameraByName("other"))
	assert.Nil(t, s.GetMeshByName("missing"))
}

func TestAddRemoveMesh(t *testing.T) {
	s, _, _ := newTestScene()
	var added, removed []string
	s.OnNewMeshAdded.Add(func(m *Mesh, _ *core.EventState) { added = append(added, m.Name) })
	s.OnMeshRemoved.Add(func(m *Mesh, _ *core.EventState) { removed = append(removed, m.Name) })

	a := NewBox("a", 1, s)
	b := NewBox("b", 1, s)
	s.AddMesh(a)
	s.MeshUnderPointer = b

	assert.Equal(t, 1, s.RemoveMesh(b))
	assert.Equal(t, -1, s.RemoveMesh(b))
	assert.Nil(t, s.MeshUnderPointer)
	assert.Equal(t, []string{"a", "b"}, added)
	assert.Equal(t, []string{"b"}, removed)
	assert.Equal(t, []*Mesh{a}, s.Meshes())
}

func TestDisposeMeshRemovesChildren(t *testing.T) {
	s, _, _ := newTestScene()
	parent := NewBox("parent", 1, s)
	child := NewBox("child", 1, s)
	parent.AddChild(&child.Node)

	parent.Dispose()
	assert.True(t, child.IsDisposed())
	assert.Empty(t, s.Meshes())
}

func TestRemoveActiveCamera(t *testing.T) {
	s, _, _ := newTestScene()
	first := s.ActiveCamera
	second := NewCamera("second", math.Vec3Zero, s)
	s.ActiveCameras = []*Camera{first, second}

	assert.Equal(t, 0, s.RemoveCamera(first))
	assert.Equal(t, second, s.ActiveCamera)
	assert.Equal(t, []*Camera{second}, s.ActiveCameras)
}

func TestSelectionOctreeLifecycle(t *testing.T) {
	s, _, _ := newTestScene()
	_, err := s.SelectionOctree()
	assert.ErrorIs(t, err, ErrNoSpatialIndex)

	a := NewBox("a", 1, s)
	tree := s.CreateOrUpdateSelectionOctree(4, 2)
	require.NotNil(t, tree)
	assert.Equal(t, 1, tree.Len())

	NewBox("b", 1, s).SetPosition(math.NewVec3(3, 0, 0))
	a.SetPosition(math.NewVec3(-3, 0, 0))
	tree, err = s.SelectionOctree()
	require.NoError(t, err)
	assert.Equal(t, 2, tree.Len())

	lo, hi := s.WorldExtents()
	assert.InDelta(t, -3.5, lo.X, 1e-5)
	assert.InDelta(t, 3.5, hi.X, 1e-5)
}

func TestExecuteWhenReady(t *testing.T) {
	s, _, _ := newTestScene()
	pending := NewMesh("pending", s)
	pending.SetGeometry(NewDelayedGeometry())

	calls := 0
	s.ExecuteWhenReady(func() { calls++ })
	require.NoError(t, s.Render())
	assert.Zero(t, calls)

	box := NewBoxGeometry(1)
	pending.Geometry.SetData(box.Vertices, box.Indices)
	require.NoError(t, s.Render())
	require.NoError(t, s.Render())
	assert.Equal(t, 1, calls)

	s.ExecuteWhenReady(func() { calls++ })
	assert.Equal(t, 2, calls)
}

func TestSceneDispose(t *testing.T) {
	s, _, _ := newTestScene()
	NewBox("a", 1, s)
	rt := NewRenderTargetTexture("rt", 8, 8, s)
	s.CustomRenderTargets = append(s.CustomRenderTargets, rt)
	queued := &countingDisposable{}
	s.QueueDispose(queued)
	notified := false
	s.OnDispose.Add(func(*Scene, *core.EventState) { notified = true })

	s.Dispose()
	s.Dispose()
	assert.True(t, notified)
	assert.True(t, s.IsDisposed())
	assert.Equal(t, 1, queued.disposed)
	assert.Empty(t, s.Meshes())
	assert.Empty(t, s.Textures())
	assert.Empty(t, s.CustomRenderTargets)
	assert.Nil(t, s.ActiveCamera)
}
