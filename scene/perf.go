package scene

import (
	"time"
)

// PerfCounter accumulates one statistic per frame: a count (vertices,
// indices) or a duration in milliseconds.
type PerfCounter struct {
	current  float64
	last     float64
	total    float64
	min, max float64
	count    int
	started  time.Time
}

func (c *PerfCounter) Current() float64 { return c.current }

// Last is the value recorded at the last fetch.
func (c *PerfCounter) Last() float64 { return c.last }

func (c *PerfCounter) Total() float64 { return c.total }

func (c *PerfCounter) Min() float64 { return c.min }

func (c *PerfCounter) Max() float64 { return c.max }

func (c *PerfCounter) Count() int { return c.count }

func (c *PerfCounter) Average() float64 {
	if c.count == 0 {
		return 0
	}
	return c.total / float64(c.count)
}

// FetchNewFrame starts a new frame sample.
func (c *PerfCounter) FetchNewFrame() {
	c.count++
	c.current = 0
}

// AddCount adds to the current sample and optionally records it.
func (c *PerfCounter) AddCount(n float64, fetchResult bool) {
	c.current += n
	if fetchResult {
		c.fetchResult()
	}
}

func (c *PerfCounter) BeginMonitoring(now time.Time) {
	c.started = now
}

// EndMonitoring records the time since BeginMonitoring as the current
// sample, in milliseconds.
func (c *PerfCounter) EndMonitoring(now time.Time, newFrame bool) {
	if newFrame {
		c.FetchNewFrame()
	}
	c.current = float64(now.Sub(c.started)) / float64(time.Millisecond)
	c.fetchResult()
}

func (c *PerfCounter) fetchResult() {
	c.total += c.current
	c.last = c.current
	if c.count <= 1 || c.current < c.min {
		c.min = c.current
	}
	if c.current > c.max {
		c.max = c.current
	}
}

type sceneStats struct {
	totalVertices   PerfCounter
	activeIndices   PerfCounter
	activeParticles PerfCounter
	activeBones     PerfCounter

	evaluateActiveMeshesDuration PerfCounter
	renderTargetsDuration        PerfCounter
	particlesDuration            PerfCounter
	renderDuration               PerfCounter
	frameDuration                PerfCounter
}

func (st *sceneStats) fetchNewFrame() {
	st.totalVertices.FetchNewFrame()
	st.activeIndices.FetchNewFrame()
	st.activeParticles.FetchNewFrame()
	st.activeBones.FetchNewFrame()
	st.evaluateActiveMeshesDuration.FetchNewFrame()
	st.renderTargetsDuration.FetchNewFrame()
	st.particlesDuration.FetchNewFrame()
	st.renderDuration.FetchNewFrame()
}

func (s *Scene) TotalVerticesCounter() *PerfCounter { return &s.stats.totalVertices }

func (s *Scene) ActiveIndicesCounter() *PerfCounter { return &s.stats.activeIndices }

func (s *Scene) ActiveParticlesCounter() *PerfCounter { return &s.stats.activeParticles }

func (s *Scene) ActiveBonesCounter() *PerfCounter { return &s.stats.activeBones }

func (s *Scene) EvaluateActiveMeshesDuration() *PerfCounter {
	return &s.stats.evaluateActiveMeshesDuration
}

func (s *Scene) RenderTargetsDuration() *PerfCounter { return &s.stats.renderTargetsDuration }

func (s *Scene) ParticlesDuration() *PerfCounter { return &s.stats.particlesDuration }

func (s *Scene) RenderDuration() *PerfCounter { return &s.stats.renderDuration }

// LastFrameDuration covers a whole Render call.
func (s *Scene) LastFrameDuration() *PerfCounter { return &s.stats.frameDuration }
