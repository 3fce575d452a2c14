package core

import (
	"sort"
	"time"
)

// Clock supplies the current time to frame timing and pointer gestures.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock only moves when told to.
type ManualClock struct {
	now time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time { return c.now }

func (c *ManualClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// Scheduler defers a callback. Implementations must run f on the thread that
// drives the scene.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

type timer struct {
	due time.Time
	seq int
	fn  func()
}

// TimerQueue is a Scheduler drained explicitly by the host loop through Run.
type TimerQueue struct {
	clock   Clock
	pending []timer
	seq     int
}

func NewTimerQueue(clock Clock) *TimerQueue {
	if clock == nil {
		clock = SystemClock{}
	}
	return &TimerQueue{clock: clock}
}

func (q *TimerQueue) AfterFunc(d time.Duration, f func()) {
	q.seq++
	q.pending = append(q.pending, timer{due: q.clock.Now().Add(d), seq: q.seq, fn: f})
}

// Run fires every timer due at the current clock time in due order and
// returns how many fired. Timers scheduled by a callback wait for the next Run.
func (q *TimerQueue) Run() int {
	now := q.clock.Now()
	var due, later []timer
	for _, t := range q.pending {
		if !t.due.After(now) {
			due = append(due, t)
		} else {
			later = append(later, t)
		}
	}
	q.pending = later

	sort.Slice(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].seq < due[j].seq
		}
		return due[i].due.Before(due[j].due)
	})
	for _, t := range due {
		t.fn()
	}
	return len(due)
}

func (q *TimerQueue) Len() int { return len(q.pending) }
