package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservableOrder(t *testing.T) {
	var o Observable[int]
	var calls []string

	o.Add(func(v int, _ *EventState) { calls = append(calls, "a") })
	o.Add(func(v int, _ *EventState) { calls = append(calls, "b") })
	o.Add(func(v int, _ *EventState) { calls = append(calls, "c") })

	assert.True(t, o.Notify(1))
	assert.Equal(t, []string{"a", "b", "c"}, calls)
}

func TestObservableRemoveDuringNotify(t *testing.T) {
	tests := []struct {
		name   string
		remove func(self, other *Observer[int]) *Observer[int]
		first  []string
		second []string
	}{
		{
			name:   "self",
			remove: func(self, _ *Observer[int]) *Observer[int] { return self },
			first:  []string{"a", "b", "c"},
			second: []string{"a", "c"},
		},
		{
			name:   "later observer",
			remove: func(_, later *Observer[int]) *Observer[int] { return later },
			first:  []string{"a", "b"},
			second: []string{"a", "b"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var o Observable[int]
			var calls []string
			var self, later *Observer[int]

			o.Add(func(int, *EventState) { calls = append(calls, "a") })
			self = o.Add(func(int, *EventState) {
				calls = append(calls, "b")
				o.Remove(tt.remove(self, later))
			})
			later = o.Add(func(int, *EventState) { calls = append(calls, "c") })

			o.Notify(0)
			assert.Equal(t, tt.first, calls)

			calls = nil
			o.Notify(0)
			assert.Equal(t, tt.second, calls)
		})
	}
}

func TestObservableAddDuringNotifyWaits(t *testing.T) {
	var o Observable[int]
	count := 0
	o.Add(func(int, *EventState) {
		o.Add(func(int, *EventState) { count++ })
	})

	o.Notify(0)
	assert.Equal(t, 0, count)
	o.Notify(0)
	assert.Equal(t, 1, count)
}

func TestObservableSkipAndMask(t *testing.T) {
	var o Observable[string]
	var got []string

	o.AddWithMask(func(v string, _ *EventState) { got = append(got, "move:"+v) }, 1)
	o.AddWithMask(func(v string, s *EventState) {
		got = append(got, "down:"+v)
		s.SkipNextObservers = true
	}, 2)
	o.Add(func(v string, _ *EventState) { got = append(got, "all:"+v) })

	assert.True(t, o.NotifyWithMask("x", 1))
	assert.False(t, o.NotifyWithMask("y", 2))
	assert.Equal(t, []string{"move:x", "all:x", "down:y"}, got)
}

func TestObservableOnceAndClear(t *testing.T) {
	var o Observable[int]
	n := 0
	o.AddOnce(func(int, *EventState) { n++ })
	require.True(t, o.HasObservers())

	o.Notify(0)
	o.Notify(0)
	assert.Equal(t, 1, n)
	assert.False(t, o.HasObservers())

	obs := o.Add(func(int, *EventState) { n++ })
	o.Clear()
	assert.False(t, o.Remove(obs))
	o.Notify(0)
	assert.Equal(t, 1, n)
}

func TestTimerQueue(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	q := NewTimerQueue(clock)

	var fired []string
	q.AfterFunc(500*time.Millisecond, func() { fired = append(fired, "late") })
	q.AfterFunc(100*time.Millisecond, func() { fired = append(fired, "early") })

	assert.Equal(t, 0, q.Run())
	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, 1, q.Run())
	clock.Advance(time.Second)
	assert.Equal(t, 1, q.Run())
	assert.Equal(t, []string{"early", "late"}, fired)
	assert.Equal(t, 0, q.Len())
}

func TestViewportToGlobal(t *testing.T) {
	v := Viewport{X: 0.5, Y: 0, Width: 0.5, Height: 1}.ToGlobal(800, 600)
	assert.Equal(t, Viewport{X: 400, Y: 0, Width: 400, Height: 600}, v)
}
