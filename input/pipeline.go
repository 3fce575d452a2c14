// Package input turns raw device events into scene hover, pick and key
// triggers.
package input

import (
	"log/slog"
	"time"

	"github.com/chewxy/math32"

	"scene-engine/core"
	"scene-engine/math"
	"scene-engine/scene"
)

// EventSource delivers device callbacks; *core.Window implements it.
type EventSource interface {
	SetCursorPosCallback(cb core.CursorPosCallback)
	SetMouseButtonCallback(cb core.MouseButtonCallback)
	SetScrollCallback(cb core.ScrollCallback)
	SetKeyCallback(cb core.KeyCallback)
}

type cursorSetter interface {
	SetCursor(name string)
}

// PointerFunc receives an event together with the pick that ran for it.
type PointerFunc func(evt scene.PointerEvent, pick scene.PickingInfo)

type Options struct {
	// Scheduler runs the deferred long-press check. Without one long press
	// never fires.
	Scheduler core.Scheduler
	Logger    *slog.Logger
}

// Pipeline processes pointer and keyboard events for one scene. Events are
// handled synchronously on the calling goroutine.
type Pipeline struct {
	// Predicates default to pickable, visible, ready and enabled meshes; the
	// move predicate additionally requires an action manager unless the scene
	// sets ConstantlyUpdateMeshUnderPointer. Each is created on first use and
	// kept.
	PointerMovePredicate scene.MeshPredicate
	PointerDownPredicate scene.MeshPredicate
	PointerUpPredicate   scene.MeshPredicate
	SpritePredicate      scene.SpritePredicate

	OnPointerMove PointerFunc
	OnPointerDown PointerFunc
	OnPointerUp   PointerFunc
	OnPointerPick PointerFunc

	scene     *scene.Scene
	scheduler core.Scheduler
	logger    *slog.Logger

	source      EventSource
	disposeObs  *core.Observer[*scene.Scene]
	cursorX     float32
	cursorY     float32
	pressButton int

	// untranslated pointer position, used for picking
	rawX, rawY float32

	startingPointerPosition math.Vec2
	// zero when no press is pending or the long press was consumed
	startingPointerTime time.Time

	pickedDownMesh    *scene.Mesh
	pickedDownSprite  *scene.Sprite
	pointerOverMesh   *scene.Mesh
	pointerOverSprite *scene.Sprite
	cursor            string
}

func NewPipeline(s *scene.Scene, opts Options) *Pipeline {
	if opts.Logger == nil {
		opts.Logger = s.Logger()
	}
	return &Pipeline{
		scene:     s,
		scheduler: opts.Scheduler,
		logger:    opts.Logger,
	}
}

// Attach subscribes to the device callbacks of src, replacing any previous
// source. The pipeline detaches itself when the scene is disposed.
func (p *Pipeline) Attach(src EventSource) {
	if p.source != nil {
		p.Detach()
	}
	p.source = src

	src.SetCursorPosCallback(func(x, y float64) {
		p.cursorX, p.cursorY = float32(x), float32(y)
		p.PointerMove(scene.PointerEvent{X: p.cursorX, Y: p.cursorY, Button: p.pressButton})
	})
	src.SetMouseButtonCallback(func(button int, pressed bool) {
		evt := scene.PointerEvent{X: p.cursorX, Y: p.cursorY, Button: button}
		if pressed {
			p.pressButton = button
			p.PointerDown(evt)
			return
		}
		p.PointerUp(evt)
	})
	src.SetScrollCallback(func(xoff, yoff float64) {
		p.Wheel(scene.PointerEvent{X: p.cursorX, Y: p.cursorY, DeltaX: float32(xoff), DeltaY: float32(yoff)})
	})
	src.SetKeyCallback(func(key int, pressed bool) {
		if pressed {
			p.KeyDown(key)
			return
		}
		p.KeyUp(key)
	})

	p.disposeObs = p.scene.OnDispose.AddOnce(func(*scene.Scene, *core.EventState) { p.Detach() })
	p.logger.Debug("input attached")
}

// Detach removes every device callback installed by Attach.
func (p *Pipeline) Detach() {
	if p.source == nil {
		return
	}
	p.source.SetCursorPosCallback(nil)
	p.source.SetMouseButtonCallback(nil)
	p.source.SetScrollCallback(nil)
	p.source.SetKeyCallback(nil)
	p.source = nil
	if p.disposeObs != nil {
		p.scene.OnDispose.Remove(p.disposeObs)
		p.disposeObs = nil
	}
	p.logger.Debug("input detached")
}

func (p *Pipeline) IsAttached() bool { return p.source != nil }

// Cursor is the hover cursor hint: the scene (or action manager) hover
// cursor over entities with pointer triggers, "" elsewhere.
func (p *Pipeline) Cursor() string { return p.cursor }

func (p *Pipeline) PointerOverMesh() *scene.Mesh { return p.pointerOverMesh }

func (p *Pipeline) PointerOverSprite() *scene.Sprite { return p.pointerOverSprite }

func (p *Pipeline) PickedDownMesh() *scene.Mesh { return p.pickedDownMesh }

// --- Predicates ---

func (p *Pipeline) movePredicate() scene.MeshPredicate {
	if p.PointerMovePredicate == nil {
		s := p.scene
		p.PointerMovePredicate = func(m *scene.Mesh) bool {
			return m.IsPickable && m.IsVisible && m.IsReady() && m.IsEnabled() &&
				(s.ConstantlyUpdateMeshUnderPointer || m.ActionManager != nil)
		}
	}
	return p.PointerMovePredicate
}

func (p *Pipeline) downPredicate() scene.MeshPredicate {
	if p.PointerDownPredicate == nil {
		p.PointerDownPredicate = pickableMesh
	}
	return p.PointerDownPredicate
}

func (p *Pipeline) upPredicate() scene.MeshPredicate {
	if p.PointerUpPredicate == nil {
		p.PointerUpPredicate = pickableMesh
	}
	return p.PointerUpPredicate
}

func (p *Pipeline) spritePredicate() scene.SpritePredicate {
	if p.SpritePredicate == nil {
		p.SpritePredicate = func(sp *scene.Sprite) bool {
			return sp.IsPickable && sp.IsVisible && sp.ActionManager != nil
		}
	}
	return p.SpritePredicate
}

func pickableMesh(m *scene.Mesh) bool {
	return m.IsPickable && m.IsVisible && m.IsReady() && m.IsEnabled()
}

// --- Shared steps ---

func (p *Pipeline) hasCamera() bool {
	s := p.scene
	return s.CameraToUseForPointers != nil || s.ActiveCamera != nil
}

// updatePointerPosition caches the raw position for picking and the
// viewport-relative one on the scene.
func (p *Pipeline) updatePointerPosition(evt scene.PointerEvent) {
	s := p.scene
	p.rawX, p.rawY = evt.X, evt.Y
	x, y := evt.X, evt.Y
	if cam := s.CameraToUseForPointers; cam != nil && s.Engine() != nil {
		w, h := s.Engine().RenderSize()
		x -= cam.Viewport.X * float32(w)
		y -= cam.Viewport.Y * float32(h)
	}
	s.PointerX, s.PointerY = x, y
}

// notifyPre broadcasts the pre-dispatch record and reports whether an
// observer asked to skip further processing.
func (p *Pipeline) notifyPre(t scene.PointerEventType, evt scene.PointerEvent) bool {
	obs := &p.scene.OnPrePointer
	if !obs.HasObservers() {
		return false
	}
	pre := &scene.PointerInfoPre{Type: t, Event: evt, LocalPosition: math.Vec2{X: p.rawX, Y: p.rawY}}
	obs.NotifyWithMask(pre, uint32(t))
	return pre.SkipOnPointerObservable
}

func (p *Pipeline) notifyPointer(t scene.PointerEventType, evt scene.PointerEvent, pick scene.PickingInfo) {
	obs := &p.scene.OnPointer
	if obs.HasObservers() {
		obs.NotifyWithMask(&scene.PointerInfo{Type: t, Event: evt, PickInfo: pick}, uint32(t))
	}
}

func (p *Pipeline) pickMesh(predicate scene.MeshPredicate) scene.PickingInfo {
	info, err := p.scene.Pick(p.rawX, p.rawY, predicate, false, p.scene.CameraToUseForPointers)
	if err != nil {
		p.logger.Error("pointer pick: " + err.Error())
		return scene.PickingInfo{}
	}
	return info
}

func (p *Pipeline) pickSprite() scene.PickingInfo {
	info, err := p.scene.PickSprite(p.rawX, p.rawY, p.spritePredicate(), false, p.scene.CameraToUseForPointers)
	if err != nil {
		p.logger.Error("sprite pick: " + err.Error())
		return scene.PickingInfo{}
	}
	return info
}

func (p *Pipeline) withinDragThreshold() bool {
	threshold := p.scene.DragMovementThreshold
	return math32.Abs(p.startingPointerPosition.X-p.scene.PointerX) < threshold &&
		math32.Abs(p.startingPointerPosition.Y-p.scene.PointerY) < threshold
}

func (p *Pipeline) setCursor(name string) {
	p.cursor = name
	if c, ok := p.source.(cursorSetter); ok {
		c.SetCursor(name)
	}
}

func (p *Pipeline) hoverCursor(am scene.ActionManager) string {
	if am == nil || !am.HasPointerTriggers() {
		return ""
	}
	if c := am.HoverCursor(); c != "" {
		return c
	}
	return p.scene.HoverCursor
}

func buttonTrigger(button int) scene.Trigger {
	switch button {
	case core.MouseLeft:
		return scene.TriggerLeftPick
	case core.MouseMiddle:
		return scene.TriggerCenterPick
	case core.MouseRight:
		return scene.TriggerRightPick
	}
	return scene.TriggerNothing
}
