package animation

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanema/gween/ease"

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

func TestMoveTo(t *testing.T) {
	m := scene.NewBox("box", 1, nil)
	ends := 0
	tw := MoveTo(m, math.NewVec3(10, 0, 0), time.Second, ease.Linear)
	tw.OnEnd = func() { ends++ }

	steps := []struct {
		at      time.Duration
		x       float32
		running bool
	}{
		{2 * time.Second, 0, true},
		{2*time.Second + 250*time.Millisecond, 2.5, true},
		{2*time.Second + 500*time.Millisecond, 5, true},
		{3 * time.Second, 10, false},
	}
	for _, step := range steps {
		assert.Equal(t, step.running, tw.Animate(step.at), "at %v", step.at)
		assert.InDelta(t, step.x, m.Transform.Position.X, 1e-4, "at %v", step.at)
	}
	assert.Equal(t, 1, ends)
	assert.True(t, tw.Done())
	assert.False(t, tw.Animate(4*time.Second))
	assert.Equal(t, 1, ends)
}

func TestLoopRestarts(t *testing.T) {
	m := scene.NewBox("box", 1, nil)
	tw := FadeTo(m, 0, time.Second, nil)
	tw.Loop = true

	require.True(t, tw.Animate(0))
	require.True(t, tw.Animate(time.Second))
	assert.InDelta(t, 0, m.Visibility, 1e-4)
	require.True(t, tw.Animate(time.Second+250*time.Millisecond))
	assert.InDelta(t, 0.75, m.Visibility, 1e-4)
	assert.False(t, tw.Done())
}

func TestDisposedTargetStops(t *testing.T) {
	m := scene.NewBox("box", 1, nil)
	tw := ScaleTo(m, math.NewVec3(2, 2, 2), time.Second, ease.Linear)
	m.Dispose()

	assert.False(t, tw.Animate(0))
	assert.Equal(t, math.Vec3One, m.Transform.Scale)
}

func TestRotateToSlerps(t *testing.T) {
	m := scene.NewBox("box", 1, nil)
	to := math.QuaternionFromAxisAngle(math.Vec3Up, 1.5)
	tw := RotateTo(m, to, time.Second, ease.Linear)
	tw.Animate(0)
	tw.Animate(time.Second)
	got := m.Transform.Rotation
	assert.InDelta(t, to.Y, got.Y, 1e-4)
	assert.InDelta(t, to.W, got.W, 1e-4)
}

func TestColorTo(t *testing.T) {
	mat := scene.NewStandardMaterial("m")
	tw := ColorTo(mat, core.ColorRed, time.Second, ease.Linear)
	tw.Animate(0)
	tw.Animate(500 * time.Millisecond)
	assert.InDelta(t, 1, mat.Albedo.R, 1e-4)
	assert.InDelta(t, 0.5, mat.Albedo.G, 1e-4)
	assert.InDelta(t, 0.5, mat.Albedo.B, 1e-4)
}

func TestStop(t *testing.T) {
	m := scene.NewBox("box", 1, nil)
	tw := MoveTo(m, math.NewVec3(1, 0, 0), time.Second, nil)
	tw.Stop()
	assert.False(t, tw.Animate(0))
	assert.Equal(t, math.Vec3Zero, m.Transform.Position)
}

func TestPlayRunsWithSceneClock(t *testing.T) {
	clock := core.NewManualClock(time.Unix(100, 0))
	s := scene.NewScene(nullEngine{}, scene.Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock:  clock,
	})
	scene.NewCamera("camera", math.NewVec3(0, 0, 10), s).SetTarget(math.Vec3Zero)
	m := scene.NewBox("box", 1, s)

	ended := false
	Play(s, MoveTo(m, math.NewVec3(0, 4, 0), 200*time.Millisecond, ease.Linear)).OnEnd = func() { ended = true }
	require.Len(t, s.Animatables(), 1)

	for i := 0; i < 30 && !ended; i++ {
		clock.Advance(16 * time.Millisecond)
		require.NoError(t, s.Render())
	}
	assert.True(t, ended)
	assert.Empty(t, s.Animatables())
	assert.InDelta(t, 4, m.Transform.Position.Y, 1e-4)
}
