package scene

// Trigger identifies the event that runs an action.
type Trigger int

const (
	TriggerNothing Trigger = iota
	TriggerPick
	TriggerLeftPick
	TriggerRightPick
	TriggerCenterPick
	TriggerPickDown
	TriggerPickUp
	TriggerLongPress
	TriggerPointerOver
	TriggerPointerOut
	TriggerEveryFrame
	TriggerIntersectionEnter
	TriggerIntersectionExit
	TriggerKeyDown
	TriggerKeyUp
	TriggerPickOut
)

var triggerNames = [...]string{
	"Nothing", "Pick", "LeftPick", "RightPick", "CenterPick", "PickDown", "PickUp",
	"LongPress", "PointerOver", "PointerOut", "EveryFrame", "IntersectionEnter",
	"IntersectionExit", "KeyDown", "KeyUp", "PickOut",
}

func (t Trigger) String() string {
	if t < 0 || int(t) >= len(triggerNames) {
		return "Unknown"
	}
	return triggerNames[t]
}

// IsPick reports whether t is one of the pick family (Pick through PickUp).
func (t Trigger) IsPick() bool {
	return t >= TriggerPick && t <= TriggerPickUp
}

// IsPointer reports whether t reacts to the pointer (Pick through PointerOut).
func (t Trigger) IsPointer() bool {
	return t >= TriggerPick && t <= TriggerPointerOut
}

// ActionEvent is the payload passed to actions.
type ActionEvent struct {
	// Source is the *Mesh, *Sprite or *Scene the trigger fired on.
	Source           any
	PointerX         float32
	PointerY         float32
	MeshUnderPointer *Mesh
	SourceEvent      any
	Additional       any
}

// NewMeshActionEvent builds an event for a mesh trigger.
func NewMeshActionEvent(source *Mesh, evt any, additional any) ActionEvent {
	s := source.Scene()
	e := ActionEvent{Source: source, SourceEvent: evt, Additional: additional}
	if s != nil {
		e.PointerX, e.PointerY = s.PointerX, s.PointerY
		e.MeshUnderPointer = s.MeshUnderPointer
	}
	return e
}

// NewSpriteActionEvent builds an event for a sprite trigger.
func NewSpriteActionEvent(source *Sprite, s *Scene, evt any) ActionEvent {
	e := ActionEvent{Source: source, SourceEvent: evt}
	if s != nil {
		e.PointerX, e.PointerY = s.PointerX, s.PointerY
		e.MeshUnderPointer = s.MeshUnderPointer
	}
	return e
}

// NewSceneActionEvent builds an event for a scene-level trigger.
func NewSceneActionEvent(s *Scene, evt any) ActionEvent {
	return ActionEvent{
		Source:           s,
		PointerX:         s.PointerX,
		PointerY:         s.PointerY,
		MeshUnderPointer: s.MeshUnderPointer,
		SourceEvent:      evt,
	}
}

// IntersectionAction is an action bound to an intersection trigger against
// a target mesh. The scene executes it directly on enter/exit transitions.
type IntersectionAction interface {
	Trigger() Trigger
	Target() *Mesh
	Precise() bool
	Execute(evt ActionEvent)
}

// ActionManager is the trigger dispatcher attached to meshes, sprites and the
// scene itself.
type ActionManager interface {
	ProcessTrigger(trigger Trigger, evt ActionEvent)
	HasSpecificTrigger(trigger Trigger) bool
	HasSpecificTriggers(triggers ...Trigger) bool
	HasPointerTriggers() bool
	HasPickTriggers() bool
	IntersectionActions() []IntersectionAction
	// HoverCursor is the cursor hint shown over the owner; "" uses the scene default.
	HoverCursor() string
}
