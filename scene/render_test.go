package scene

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-engine/core"
	"scene-engine/math"
)

type disposeFunc func()

func (f disposeFunc) Dispose() { f() }

type recordingAnimatable struct {
	times []time.Duration
	limit int
}

func (a *recordingAnimatable) Animate(now time.Duration) bool {
	a.times = append(a.times, now)
	return len(a.times) < a.limit
}

func TestRenderPhaseOrder(t *testing.T) {
	s, log, _ := newTestScene()
	first := s.ActiveCamera
	second := NewCamera("camera2", math.NewVec3(0, 0, -5), s)
	second.SetTarget(math.Vec3Zero)
	s.ActiveCameras = []*Camera{first, second}

	mirror := NewRenderTargetTexture("mirror", 32, 32, nil)
	first.CustomRenderTargets = []*RenderTargetTexture{mirror}
	NewBox("box", 1, s)

	s.OnBeforeRender.Add(func(*Scene, *core.EventState) { log.add("before render") })
	s.OnAfterRender.Add(func(*Scene, *core.EventState) { log.add("after render") })
	s.OnBeforeCameraRender.Add(func(c *Camera, _ *core.EventState) { log.add("before %s", c.Name) })

	require.NoError(t, s.Render())

	order := []string{
		"before render",
		"clear color=true depth=true stencil=true",
		"before camera",
		"bind mirror",
		"unbind mirror",
		"restore",
		"render camera",
		"clear color=false depth=true stencil=true",
		"before camera2",
		"render camera2",
		"after render",
	}
	last := -1
	for _, entry := range order {
		i := log.index(entry)
		require.NotEqual(t, -1, i, "missing %q in %v", entry, log.entries)
		assert.Greater(t, i, last, "%q out of order in %v", entry, log.entries)
		last = i
	}
	assert.Equal(t, 1, log.count("bind mirror"))
	assert.Equal(t, 1, log.count("clear color=false depth=true stencil=true"))
	assert.Equal(t, second, s.ActiveCamera)
}

func TestRenderFailsBeforeAnyPhase(t *testing.T) {
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("no camera", func(t *testing.T) {
		log := &frameLog{}
		s := NewScene(&fakeEngine{log: log, width: 800, height: 600}, Options{Logger: discard})
		called := false
		s.OnBeforeRender.Add(func(*Scene, *core.EventState) { called = true })
		d := &countingDisposable{}
		s.QueueDispose(d)

		err := s.Render()
		assert.ErrorIs(t, err, ErrNoActiveCamera)
		assert.False(t, called)
		assert.Empty(t, log.entries)
		assert.Zero(t, d.disposed)
		assert.Zero(t, s.RenderID())
	})

	t.Run("no engine", func(t *testing.T) {
		s := NewScene(nil, Options{Logger: discard})
		NewCamera("camera", math.NewVec3(0, 0, 5), s)
		assert.ErrorIs(t, s.Render(), ErrNoEngine)
	})

	t.Run("disposed", func(t *testing.T) {
		s, log, _ := newTestScene()
		s.Dispose()
		log.entries = nil
		assert.ErrorIs(t, s.Render(), ErrDisposed)
		assert.Empty(t, log.entries)
	})
}

func TestRenderTargetRefreshRate(t *testing.T) {
	tests := []struct {
		rate int
		want int
	}{
		{0, 1},
		{1, 5},
		{2, 3},
		{3, 2},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("rate %d", tt.rate), func(t *testing.T) {
			s, log, _ := newTestScene()
			rt := NewRenderTargetTexture("rt", 16, 16, s)
			rt.RefreshRate = tt.rate
			s.CustomRenderTargets = append(s.CustomRenderTargets, rt)

			for i := 0; i < 5; i++ {
				require.NoError(t, s.Render())
			}
			assert.Equal(t, tt.want, rt.RenderCount())
			assert.Equal(t, tt.want, log.count("bind rt"))
		})
	}
}

func TestRenderMaterialTargetsPerCamera(t *testing.T) {
	s, log, _ := newTestScene()
	mirror := NewRenderTargetTexture("mirror", 32, 32, s)
	mirror.RefreshRate = 1
	mat := NewStandardMaterial("mirror")
	mat.ReflectionTexture = mirror
	NewBox("box", 1, s).Material = mat

	require.NoError(t, s.Render())
	assert.Less(t, log.index("bind mirror"), log.index("render camera"))
	// rendered targets are not carried over to the next frame
	assert.Empty(t, s.ActiveSet().RenderTargets)

	s.GetMeshByName("box").SetEnabled(false)
	require.NoError(t, s.Render())
	assert.Equal(t, 1, mirror.RenderCount())
}

func TestRenderShadowMaps(t *testing.T) {
	s, log, _ := newTestScene()
	light := NewDirectionalLight("sun", math.NewVec3(0, -1, 0), s)
	gen := NewShadowGenerator(light, 256, s)
	gen.AddShadowCaster(NewBox("caster", 1, s))

	require.NoError(t, s.Render())
	i := log.index("bind " + gen.ShadowMap.Name)
	require.NotEqual(t, -1, i, "%v", log.entries)
	assert.Less(t, i, log.index("render camera"))

	s.ShadowsEnabled = false
	gen.ShadowMap.ResetRefreshCounter()
	require.NoError(t, s.Render())
	assert.Equal(t, 1, gen.ShadowMap.RenderCount())
}

func TestRenderDisposeQueue(t *testing.T) {
	s, _, d := newTestScene()
	mesh := NewBox("doomed", 1, s)
	s.QueueDispose(mesh)

	var late countingDisposable
	chained := disposeFunc(func() { s.QueueDispose(&late) })
	s.QueueDispose(chained)

	var fromAfterRender countingDisposable
	s.OnAfterRender.AddOnce(func(*Scene, *core.EventState) { s.QueueDispose(&fromAfterRender) })

	require.NoError(t, s.Render())
	// still drawn in the frame it was queued in
	assert.Contains(t, d.meshes(), mesh)
	assert.True(t, mesh.IsDisposed())
	assert.Nil(t, s.GetMeshByName("doomed"))
	assert.Equal(t, 1, fromAfterRender.disposed)
	assert.Zero(t, late.disposed)
	assert.Equal(t, 1, s.PendingDisposals())

	require.NoError(t, s.Render())
	assert.Equal(t, 1, late.disposed)
	assert.Zero(t, s.PendingDisposals())
	assert.NotContains(t, d.meshes(), mesh)
}

func TestRenderDeltaTime(t *testing.T) {
	clock := core.NewManualClock(time.Unix(1000, 0))
	log := &frameLog{}
	s := NewScene(&fakeEngine{log: log, width: 800, height: 600}, Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock:  clock,
	})
	NewCamera("camera", math.NewVec3(0, 0, 5), s)
	anim := &recordingAnimatable{limit: 3}
	s.AddAnimatable(anim)

	steps := []struct {
		advance time.Duration
		want    time.Duration
	}{
		{0, time.Millisecond},
		{16 * time.Millisecond, 16 * time.Millisecond},
		{5 * time.Second, time.Second},
		{10 * time.Millisecond, 10 * time.Millisecond},
	}
	for _, step := range steps {
		clock.Advance(step.advance)
		require.NoError(t, s.Render())
		assert.Equal(t, step.want, s.DeltaTime())
	}

	assert.InDelta(t, 0.6, s.AnimationRatio(), 1e-4)
	// the animation clock stops once nothing is left to animate
	assert.Equal(t, time.Second+17*time.Millisecond, s.AnimationTime())
	// dropped after returning false on its third frame
	assert.Equal(t, []time.Duration{
		time.Millisecond,
		17 * time.Millisecond,
		time.Second + 17*time.Millisecond,
	}, anim.times)
	assert.Empty(t, s.Animatables())
}

func TestRenderRigCameras(t *testing.T) {
	s, log, _ := newTestScene()
	cam := s.ActiveCamera
	NewStereoscopicRig(cam, 0.2)
	NewBox("box", 1, s)

	require.NoError(t, s.Render())
	left := log.index("render camera_L")
	right := log.index("render camera_R")
	require.NotEqual(t, -1, left)
	assert.Greater(t, right, left)
	assert.Equal(t, -1, log.index("render camera"))
	assert.Equal(t, 1, log.count("viewport 0,0,0.5,1"))
	assert.Equal(t, 1, log.count("viewport 0.5,0,0.5,1"))
	assert.Equal(t, cam, s.ActiveCamera)
}

func TestRenderStats(t *testing.T) {
	s, _, _ := newTestScene()
	NewBox("a", 1, s)
	NewBox("b", 1, s).SetPosition(math.NewVec3(0, 0, 100))

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Render())
		assert.Equal(t, float64(48), s.TotalVerticesCounter().Current())
		assert.Equal(t, float64(36), s.ActiveIndicesCounter().Current())
	}
	assert.Equal(t, 3, s.LastFrameDuration().Count())
	assert.Equal(t, 1, s.ActiveMeshCount())
}
