package scene

import "scene-engine/math"

// PointerEventType values double as observer masks.
type PointerEventType uint32

const (
	PointerDown  PointerEventType = 0x01
	PointerUp    PointerEventType = 0x02
	PointerMove  PointerEventType = 0x04
	PointerWheel PointerEventType = 0x08
	PointerPick  PointerEventType = 0x10
)

func (t PointerEventType) String() string {
	switch t {
	case PointerDown:
		return "down"
	case PointerUp:
		return "up"
	case PointerMove:
		return "move"
	case PointerWheel:
		return "wheel"
	case PointerPick:
		return "pick"
	}
	return "unknown"
}

// PointerEvent is a raw device event in window pixels.
type PointerEvent struct {
	X, Y   float32
	Button int
	// Wheel deltas, only set for wheel events.
	DeltaX, DeltaY float32
}

// PointerInfoPre is broadcast before any hit testing. Setting
// SkipOnPointerObservable stops all further processing of the event.
type PointerInfoPre struct {
	Type                    PointerEventType
	Event                   PointerEvent
	LocalPosition           math.Vec2
	SkipOnPointerObservable bool
}

// PointerInfo is broadcast after hit testing.
type PointerInfo struct {
	Type     PointerEventType
	Event    PointerEvent
	PickInfo PickingInfo
}

type KeyboardEventType uint32

const (
	KeyDown KeyboardEventType = 0x01
	KeyUp   KeyboardEventType = 0x02
)

type KeyboardEvent struct {
	Key int
}

type KeyboardInfoPre struct {
	Type                     KeyboardEventType
	Event                    KeyboardEvent
	SkipOnKeyboardObservable bool
}

type KeyboardInfo struct {
	Type  KeyboardEventType
	Event KeyboardEvent
}
