// Package animation drives eased property tweens on scene entities. A Tween
// is a scene.Animatable and advances with the scene animation clock.
package animation

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"scene-engine/core"
	"scene-engine/math"
	"scene-engine/scene"
)

// Tween animates up to a handful of float32 channels together and writes
// them back through an apply function every frame. If the target mesh is
// disposed the tween stops without writing.
type Tween struct {
	// Loop restarts every channel once all of them finished.
	Loop bool
	// OnEnd runs once when a non-looping tween completes.
	OnEnd func()

	tweens  []*gween.Tween
	values  []float32
	apply   func(values []float32)
	target  *scene.Mesh
	last    time.Duration
	started bool
	done    bool
}

var _ scene.Animatable = (*Tween)(nil)

func newTween(from, to []float32, d time.Duration, fn ease.TweenFunc, apply func([]float32)) *Tween {
	if fn == nil {
		fn = ease.Linear
	}
	t := &Tween{
		tweens: make([]*gween.Tween, len(from)),
		values: make([]float32, len(from)),
		apply:  apply,
	}
	for i := range from {
		t.tweens[i] = gween.New(from[i], to[i], float32(d.Seconds()), fn)
	}
	return t
}

// Animate advances the tween to the scene animation time now and reports
// whether it wants to keep running.
func (t *Tween) Animate(now time.Duration) bool {
	if t.done {
		return false
	}
	if t.target != nil && t.target.IsDisposed() {
		t.done = true
		return false
	}
	if !t.started {
		t.started = true
		t.last = now
	}
	dt := float32((now - t.last).Seconds())
	t.last = now

	finished := true
	for i, tw := range t.tweens {
		v, end := tw.Update(dt)
		t.values[i] = v
		if !end {
			finished = false
		}
	}
	t.apply(t.values)

	if !finished {
		return true
	}
	if t.Loop {
		for _, tw := range t.tweens {
			tw.Reset()
		}
		return true
	}
	t.done = true
	if t.OnEnd != nil {
		t.OnEnd()
	}
	return false
}

// Stop ends the tween; the scene drops it on the next frame.
func (t *Tween) Stop() { t.done = true }

func (t *Tween) Done() bool { return t.done }

// Play registers t with s and returns it.
func Play(s *scene.Scene, t *Tween) *Tween {
	s.AddAnimatable(t)
	return t
}

// MoveTo animates the local position of m.
func MoveTo(m *scene.Mesh, to math.Vec3, d time.Duration, fn ease.TweenFunc) *Tween {
	from := m.Transform.Position
	t := newTween(vec3(from), vec3(to), d, fn, func(v []float32) {
		m.SetPosition(math.NewVec3(v[0], v[1], v[2]))
	})
	t.target = m
	return t
}

// ScaleTo animates the local scale of m.
func ScaleTo(m *scene.Mesh, to math.Vec3, d time.Duration, fn ease.TweenFunc) *Tween {
	from := m.Transform.Scale
	t := newTween(vec3(from), vec3(to), d, fn, func(v []float32) {
		m.SetScale(math.NewVec3(v[0], v[1], v[2]))
	})
	t.target = m
	return t
}

// RotateTo slerps the local rotation of m; the eased channel is the slerp
// factor.
func RotateTo(m *scene.Mesh, to math.Quaternion, d time.Duration, fn ease.TweenFunc) *Tween {
	from := m.Transform.Rotation
	t := newTween([]float32{0}, []float32{1}, d, fn, func(v []float32) {
		m.SetRotation(from.Slerp(to, v[0]))
	})
	t.target = m
	return t
}

// FadeTo animates Mesh.Visibility.
func FadeTo(m *scene.Mesh, to float32, d time.Duration, fn ease.TweenFunc) *Tween {
	t := newTween([]float32{m.Visibility}, []float32{to}, d, fn, func(v []float32) {
		m.Visibility = v[0]
	})
	t.target = m
	return t
}

// ColorTo animates the albedo of a material.
func ColorTo(mat *scene.StandardMaterial, to core.Color, d time.Duration, fn ease.TweenFunc) *Tween {
	c := mat.Albedo
	return newTween(
		[]float32{c.R, c.G, c.B, c.A},
		[]float32{to.R, to.G, to.B, to.A},
		d, fn,
		func(v []float32) { mat.Albedo = core.Color{R: v[0], G: v[1], B: v[2], A: v[3]} },
	)
}

func vec3(v math.Vec3) []float32 { return []float32{v.X, v.Y, v.Z} }
