package scene

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-engine/math"
)

// gridScene fills a 9x9x3 grid of boxes around the origin, some disabled,
// hidden or masked out.
func gridScene() (*Scene, *fakeDispatcher) {
	s, _, d := newTestScene()
	cam := s.ActiveCamera
	cam.Position = math.NewVec3(3, 4, 20)
	cam.SetTarget(math.NewVec3(-2, 0, 0))

	i := 0
	for x := -4; x <= 4; x++ {
		for y := -4; y <= 4; y++ {
			for z := -1; z <= 1; z++ {
				m := NewBox(fmt.Sprintf("box%d", i), 0.8, s)
				m.SetPosition(math.NewVec3(float32(x)*6, float32(y)*6, float32(z)*6))
				switch i % 7 {
				case 1:
					m.SetEnabled(false)
				case 2:
					m.IsVisible = false
				case 3:
					m.LayerMask = 0x10000000
				}
				i++
			}
		}
	}
	return s, d
}

func TestEvaluateIndexMatchesLinearScan(t *testing.T) {
	s, _ := gridScene()

	linear, err := s.EvaluateVisibility(nil)
	require.NoError(t, err)
	want := append([]*Mesh(nil), linear.Meshes...)
	require.NotEmpty(t, want)
	require.Less(t, len(want), len(s.Meshes()))

	s.CreateOrUpdateSelectionOctree(4, 3)
	indexed, err := s.EvaluateVisibility(nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, want, indexed.Meshes)

	// moving a mesh after the build still matches a full scan
	moved := s.Meshes()[0]
	moved.SetPosition(math.NewVec3(-2, 0, 0))
	indexed, err = s.EvaluateVisibility(nil)
	require.NoError(t, err)
	assert.Contains(t, indexed.Meshes, moved)
}

func TestEvaluateExcludesDisabledMeshes(t *testing.T) {
	s, d := gridScene()
	s.CreateOrUpdateSelectionOctree(8, 2)

	set, err := s.EvaluateVisibility(nil)
	require.NoError(t, err)
	for _, m := range set.Meshes {
		assert.True(t, m.IsEnabled(), m.Name)
		assert.True(t, m.IsVisible, m.Name)
		assert.NotZero(t, m.LayerMask&s.ActiveCamera.LayerMask, m.Name)
		assert.Equal(t, s.RenderID(), m.RenderID())
	}
	assert.ElementsMatch(t, set.Meshes, d.meshes())
	assert.Equal(t, len(set.Meshes), s.ActiveMeshCount())
	assert.ElementsMatch(t, set.Meshes, s.ActiveCamera.ActiveMeshes())
}

func TestEvaluateAlwaysSelectAsActiveMesh(t *testing.T) {
	s, _, _ := newTestScene()
	behind := NewBox("behind", 1, s)
	behind.SetPosition(math.NewVec3(0, 0, 50))
	always := NewBox("always", 1, s)
	always.SetPosition(math.NewVec3(0, 0, 60))
	always.AlwaysSelectAsActiveMesh = true

	for _, indexed := range []bool{false, true} {
		if indexed {
			s.CreateOrUpdateSelectionOctree(2, 2)
		}
		set, err := s.EvaluateVisibility(nil)
		require.NoError(t, err)
		assert.Equal(t, []*Mesh{always}, set.Meshes, "indexed=%t", indexed)
	}
}

func TestEvaluateBlockedAndNotReady(t *testing.T) {
	s, _, _ := newTestScene()
	blocked := NewBox("blocked", 1, s)
	blocked.IsBlocked = true
	pending := NewBox("pending", 1, s)
	pending.Geometry = NewDelayedGeometry()
	NewBox("visible", 1, s)

	set, err := s.EvaluateVisibility(nil)
	require.NoError(t, err)
	require.Len(t, set.Meshes, 1)
	assert.Equal(t, "visible", set.Meshes[0].Name)
	// blocked meshes are not even counted
	assert.Equal(t, float64(24), s.TotalVerticesCounter().Current())
}

func TestEvaluateSubMeshCulling(t *testing.T) {
	s, _, d := newTestScene()
	cam := s.ActiveCamera
	cam.Position = math.NewVec3(-15, 3, -15)
	cam.SetTarget(math.NewVec3(-16, 0, -16))
	cam.MaxZ = 10

	ground := NewTiledGround("ground", 40, 4, s)
	_, err := s.EvaluateVisibility(nil)
	require.NoError(t, err)
	require.NotEmpty(t, d.subMeshes)
	assert.Less(t, len(d.subMeshes), len(ground.SubMeshes))
	dispatched := append([]*SubMesh(nil), d.subMeshes...)

	ground.CreateOrUpdateSubMeshesOctree(2, 2)
	ground.UseOctreeForRenderingSelection = true
	_, err = s.EvaluateVisibility(nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, dispatched, d.subMeshes)
}

func TestEvaluateLOD(t *testing.T) {
	tests := []struct {
		name     string
		distance float32
		want     string
	}{
		{"close uses the mesh", 5, "mesh"},
		{"middle uses the substitute", 15, "low"},
		{"far is culled", 25, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, d := newTestScene()
			cam := s.ActiveCamera
			cam.Position = math.NewVec3(0, 0, tt.distance)

			mesh := NewBox("mesh", 1, s)
			low := NewBox("low", 1, nil)
			mesh.AddLODLevel(20, nil)
			mesh.AddLODLevel(10, low)

			set, err := s.EvaluateVisibility(nil)
			require.NoError(t, err)
			if tt.want == "" {
				assert.Empty(t, set.Meshes)
				assert.Empty(t, d.subMeshes)
				return
			}
			assert.Equal(t, []*Mesh{mesh}, set.Meshes)
			require.Len(t, d.subMeshes, 1)
			assert.Equal(t, tt.want, d.subMeshes[0].Mesh().Name)
		})
	}
}

func TestEvaluateSkeletonsPreparedOnce(t *testing.T) {
	s, _, _ := newTestScene()
	bone := &Bone{Name: "root", Local: math.Mat4Translation(math.NewVec3(0, 1, 0)), InverseBind: math.Mat4Identity()}
	sk := NewSkeleton("rig", []*Bone{bone}, s)

	a := NewBox("a", 1, s)
	a.Skeleton = sk
	b := NewBox("b", 1, s)
	b.Skeleton = sk
	b.ComputeBonesUsingShaders = false
	for i := range b.Geometry.Vertices {
		b.Geometry.Vertices[i].Weights[0] = 1
	}

	set, err := s.EvaluateVisibility(nil)
	require.NoError(t, err)
	assert.Equal(t, []*Skeleton{sk}, set.Skeletons)
	assert.Equal(t, 1, sk.PrepareCount())
	assert.Equal(t, []*Mesh{b}, set.SoftwareSkinnedMeshes)

	s.applySoftwareSkinning()
	skinned := b.SkinnedPositions()
	require.Len(t, skinned, len(b.Geometry.Vertices))
	assert.InDelta(t, b.Geometry.Vertices[0].Position.Y+1, skinned[0].Y, 1e-5)
	assert.Nil(t, a.SkinnedPositions())
}

func TestEvaluateParticleSystems(t *testing.T) {
	s, _, d := newTestScene()
	emitter := NewBox("emitter", 1, s)
	free := NewParticleSystem("free", 100, s)
	free.Start()
	attached := NewParticleSystem("attached", 100, s)
	attached.Emitter = emitter
	attached.Start()
	NewParticleSystem("stopped", 100, s)

	emitter.SetEnabled(false)
	set, err := s.EvaluateVisibility(nil)
	require.NoError(t, err)
	assert.Equal(t, []*ParticleSystem{free}, set.ParticleSystems)
	assert.Equal(t, []*ParticleSystem{free}, d.particles)
	assert.Equal(t, 1, free.Count())

	emitter.SetEnabled(true)
	set, err = s.EvaluateVisibility(nil)
	require.NoError(t, err)
	assert.Equal(t, []*ParticleSystem{free, attached}, set.ParticleSystems)
	assert.Equal(t, 2, s.ActiveParticleSystemCount())
}

func TestEvaluateMaterialRenderTargets(t *testing.T) {
	s, _, _ := newTestScene()
	mirror := NewRenderTargetTexture("mirror", 64, 64, s)
	mat := NewStandardMaterial("mirror")
	mat.ReflectionTexture = mirror

	a := NewBox("a", 1, s)
	a.Material = mat
	b := NewBox("b", 1, s)
	b.SetPosition(math.NewVec3(1, 0, 0))
	b.Material = mat

	set, err := s.EvaluateVisibility(nil)
	require.NoError(t, err)
	assert.Equal(t, []*RenderTargetTexture{mirror}, set.RenderTargets)
}

func TestEvaluateWithoutCamera(t *testing.T) {
	s := NewScene(nil, Options{})
	_, err := s.EvaluateVisibility(nil)
	assert.ErrorIs(t, err, ErrNoActiveCamera)
}
