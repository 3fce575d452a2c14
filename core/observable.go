package core

// MaskAll matches every observer mask.
const MaskAll = ^uint32(0)

// EventState is handed to each observer during a notification.
type EventState struct {
	Mask uint32
	// SkipNextObservers stops the current notification after this observer.
	SkipNextObservers bool
}

type Observer[T any] struct {
	callback func(T, *EventState)
	mask     uint32
	once     bool
	removed  bool
}

// Observable is an ordered subscriber list. Observers run in registration
// order; removing an observer during a notification never skips or repeats
// another one, and observers added during a notification wait for the next.
type Observable[T any] struct {
	observers []*Observer[T]
	notifying int
	dirty     bool
}

func (o *Observable[T]) Add(callback func(T, *EventState)) *Observer[T] {
	return o.AddWithMask(callback, MaskAll)
}

func (o *Observable[T]) AddWithMask(callback func(T, *EventState), mask uint32) *Observer[T] {
	if callback == nil {
		return nil
	}
	obs := &Observer[T]{callback: callback, mask: mask}
	o.observers = append(o.observers, obs)
	return obs
}

// AddOnce registers an observer removed after its first call.
func (o *Observable[T]) AddOnce(callback func(T, *EventState)) *Observer[T] {
	obs := o.Add(callback)
	if obs != nil {
		obs.once = true
	}
	return obs
}

// Remove unregisters obs and reports whether it was registered.
func (o *Observable[T]) Remove(obs *Observer[T]) bool {
	if obs == nil || obs.removed {
		return false
	}
	for _, cur := range o.observers {
		if cur == obs {
			o.markRemoved(obs)
			return true
		}
	}
	return false
}

func (o *Observable[T]) markRemoved(obs *Observer[T]) {
	obs.removed = true
	if o.notifying > 0 {
		o.dirty = true
		return
	}
	o.compact()
}

func (o *Observable[T]) compact() {
	kept := o.observers[:0]
	for _, obs := range o.observers {
		if !obs.removed {
			kept = append(kept, obs)
		}
	}
	for i := len(kept); i < len(o.observers); i++ {
		o.observers[i] = nil
	}
	o.observers = kept
	o.dirty = false
}

func (o *Observable[T]) Notify(value T) bool {
	return o.NotifyWithMask(value, MaskAll)
}

// NotifyWithMask calls every observer whose mask shares a bit with mask. It
// returns false when an observer set SkipNextObservers.
func (o *Observable[T]) NotifyWithMask(value T, mask uint32) bool {
	if len(o.observers) == 0 {
		return true
	}

	state := EventState{Mask: mask}
	o.notifying++
	defer func() {
		o.notifying--
		if o.notifying == 0 && o.dirty {
			o.compact()
		}
	}()

	n := len(o.observers)
	for i := 0; i < n; i++ {
		obs := o.observers[i]
		if obs.removed || obs.mask&mask == 0 {
			continue
		}
		if obs.once {
			o.markRemoved(obs)
		}
		obs.callback(value, &state)
		if state.SkipNextObservers {
			return false
		}
	}
	return true
}

func (o *Observable[T]) HasObservers() bool {
	for _, obs := range o.observers {
		if !obs.removed {
			return true
		}
	}
	return false
}

func (o *Observable[T]) Clear() {
	for _, obs := range o.observers {
		obs.removed = true
	}
	if o.notifying > 0 {
		o.dirty = true
		return
	}
	o.observers = nil
}
