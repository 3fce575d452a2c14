package scene

import (
	"math/rand"

	"github.com/chewxy/math32"

	"scene-engine/core"
	"scene-engine/math"
)

// BlendMode controls how particle colours composite with the scene.
type BlendMode int

const (
	BlendAlpha    BlendMode = iota // smoke, mist, dust
	BlendAdditive                  // fire, sparks, glow
)

// Particle is a single live particle instance.
type Particle struct {
	Position math.Vec3
	Velocity math.Vec3
	Life     float32 // remaining lifetime in seconds
	MaxLife  float32
	Size     float32
	Color    core.Color
}

// ParticleSystem spawns and simulates CPU particles. It is advanced by the
// visibility pass of every camera that sees it.
type ParticleSystem struct {
	Name string

	// Emitter is the mesh the particles are emitted from; nil emits from
	// EmitterPosition.
	Emitter         *Mesh
	EmitterPosition math.Vec3
	Direction       math.Vec3
	Spread          float32 // half-angle of the emission cone in radians

	Rate               int // particles per second
	MinLife, MaxLife   float32
	MinSpeed, MaxSpeed float32
	MinSize, MaxSize   float32
	StartColor         core.Color
	EndColor           core.Color
	Gravity            math.Vec3
	BlendMode          BlendMode

	RenderingGroupID int
	LayerMask        uint32
	// UpdateSpeed is the simulated time per Animate call, in seconds.
	UpdateSpeed float32

	Particles []Particle

	started    bool
	capacity   int
	spawnAccum float32
	rng        *rand.Rand
}

// NewParticleSystem returns a fire-like system; adjust fields before Start.
func NewParticleSystem(name string, capacity int, s *Scene) *ParticleSystem {
	ps := &ParticleSystem{
		Name:        name,
		Direction:   math.Vec3Up,
		Spread:      0.4,
		Rate:        80,
		MinLife:     0.6,
		MaxLife:     1.8,
		MinSpeed:    2,
		MaxSpeed:    5,
		MinSize:     0.06,
		MaxSize:     0.22,
		StartColor:  core.Color{R: 1, G: 0.7, B: 0.15, A: 1},
		EndColor:    core.Color{R: 0.8, G: 0.05, B: 0, A: 0},
		Gravity:     math.Vec3{Y: 0.3},
		BlendMode:   BlendAdditive,
		LayerMask:   0x0FFFFFFF,
		UpdateSpeed: 1.0 / 60,
		Particles:   make([]Particle, 0, capacity),
		capacity:    capacity,
		rng:         rand.New(rand.NewSource(42)),
	}
	if s != nil {
		s.AddParticleSystem(ps)
	}
	return ps
}

func (ps *ParticleSystem) Start() { ps.started = true }

func (ps *ParticleSystem) Stop() { ps.started = false }

func (ps *ParticleSystem) IsStarted() bool { return ps.started }

func (ps *ParticleSystem) Count() int { return len(ps.Particles) }

func (ps *ParticleSystem) origin() math.Vec3 {
	if ps.Emitter != nil {
		return ps.Emitter.AbsolutePosition()
	}
	return ps.EmitterPosition
}

// Animate advances the simulation by UpdateSpeed seconds.
func (ps *ParticleSystem) Animate() {
	dt := ps.UpdateSpeed
	if ps.started {
		ps.spawnAccum += float32(ps.Rate) * dt
		for ps.spawnAccum >= 1 && len(ps.Particles) < ps.capacity {
			ps.spawn()
			ps.spawnAccum--
		}
	}

	write := 0
	for i := range ps.Particles {
		p := &ps.Particles[i]
		p.Life -= dt
		if p.Life <= 0 {
			continue
		}
		p.Velocity = p.Velocity.Add(ps.Gravity.Mul(dt))
		p.Position = p.Position.Add(p.Velocity.Mul(dt))

		t := 1 - p.Life/p.MaxLife
		p.Color = lerpColor(ps.StartColor, ps.EndColor, t)
		p.Size = ps.MinSize + (ps.MaxSize-ps.MinSize)*(1-t)

		ps.Particles[write] = *p
		write++
	}
	ps.Particles = ps.Particles[:write]
}

func (ps *ParticleSystem) spawn() {
	life := ps.MinLife + ps.rng.Float32()*(ps.MaxLife-ps.MinLife)
	speed := ps.MinSpeed + ps.rng.Float32()*(ps.MaxSpeed-ps.MinSpeed)
	dir := randomInCone(ps.Direction, ps.Spread, ps.rng)
	ps.Particles = append(ps.Particles, Particle{
		Position: ps.origin(),
		Velocity: dir.Mul(speed),
		Life:     life,
		MaxLife:  life,
		Size:     ps.MinSize,
		Color:    ps.StartColor,
	})
}

func (ps *ParticleSystem) Dispose() {
	ps.Stop()
	ps.Particles = ps.Particles[:0]
}

// randomInCone returns a unit vector uniformly distributed over the
// spherical cap of half-angle spread around axis.
func randomInCone(axis math.Vec3, spread float32, rng *rand.Rand) math.Vec3 {
	phi := rng.Float32() * 2 * math32.Pi
	cosMin := math32.Cos(spread)
	cosTheta := cosMin + rng.Float32()*(1-cosMin)
	sinTheta := math32.Sqrt(1 - cosTheta*cosTheta)

	up := math.Vec3Up
	if math32.Abs(axis.Dot(up)) > 0.99 {
		up = math.Vec3Right
	}
	right := axis.Cross(up).Normalize()
	up = right.Cross(axis).Normalize()

	return axis.Mul(cosTheta).
		Add(right.Mul(sinTheta * math32.Cos(phi))).
		Add(up.Mul(sinTheta * math32.Sin(phi))).
		Normalize()
}

func lerpColor(a, b core.Color, t float32) core.Color {
	return core.Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: a.A + (b.A-a.A)*t,
	}
}
