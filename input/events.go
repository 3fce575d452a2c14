package input

import (
	"time"

	"scene-engine/scene"
)

// PointerMove updates hover state, the cursor hint and the mesh under the
// pointer.
func (p *Pipeline) PointerMove(evt scene.PointerEvent) {
	p.updatePointerPosition(evt)
	if p.notifyPre(scene.PointerMove, evt) || !p.hasCamera() {
		return
	}

	pick := p.pickMesh(p.movePredicate())
	if pick.Hit && pick.PickedMesh != nil {
		p.setPointerOverSprite(nil, evt)
		p.setPointerOverMesh(pick.PickedMesh, evt)
		p.setCursor(p.hoverCursor(pick.PickedMesh.ActionManager))
	} else {
		p.setPointerOverMesh(nil, evt)
		pick = p.pickSprite()
		if pick.Hit && pick.PickedSprite != nil {
			p.setPointerOverSprite(pick.PickedSprite, evt)
			p.setCursor(p.hoverCursor(pick.PickedSprite.ActionManager))
		} else {
			p.setPointerOverSprite(nil, evt)
			p.setCursor("")
		}
	}

	if p.OnPointerMove != nil {
		p.OnPointerMove(evt, pick)
	}
	p.notifyPointer(scene.PointerMove, evt, pick)
}

// PointerDown records the press, fires button and pick-down triggers and
// schedules the long-press check.
func (p *Pipeline) PointerDown(evt scene.PointerEvent) {
	p.updatePointerPosition(evt)
	if p.notifyPre(scene.PointerDown, evt) || !p.hasCamera() {
		return
	}
	s := p.scene

	p.startingPointerPosition.X, p.startingPointerPosition.Y = s.PointerX, s.PointerY
	p.startingPointerTime = s.Clock().Now()
	p.pickedDownMesh = nil

	pick := p.pickMesh(p.downPredicate())
	if mesh := pick.PickedMesh; pick.Hit && mesh != nil {
		p.pickedDownMesh = mesh
	}
	if mesh := p.pickedDownMesh; mesh != nil && mesh.ActionManager != nil {
		am := mesh.ActionManager
		if am.HasPickTriggers() {
			ae := scene.NewMeshActionEvent(mesh, evt, nil)
			if t := buttonTrigger(evt.Button); t != scene.TriggerNothing {
				am.ProcessTrigger(t, ae)
			}
			am.ProcessTrigger(scene.TriggerPickDown, ae)
		}
		if am.HasSpecificTrigger(scene.TriggerLongPress) {
			p.scheduleLongPress(evt)
		}
	}

	if p.OnPointerDown != nil {
		p.OnPointerDown(evt, pick)
	}
	p.notifyPointer(scene.PointerDown, evt, pick)

	p.pickedDownSprite = nil
	if len(s.SpriteManagers()) == 0 {
		return
	}
	sp := p.pickSprite()
	if sprite := sp.PickedSprite; sp.Hit && sprite != nil && sprite.ActionManager != nil {
		p.pickedDownSprite = sprite
		ae := scene.NewSpriteActionEvent(sprite, s, evt)
		if t := buttonTrigger(evt.Button); t != scene.TriggerNothing {
			sprite.ActionManager.ProcessTrigger(t, ae)
		}
		sprite.ActionManager.ProcessTrigger(scene.TriggerPickDown, ae)
	}
}

// scheduleLongPress re-picks after the delay and fires the long-press trigger
// only if the press is still pending and the pointer stayed put.
func (p *Pipeline) scheduleLongPress(evt scene.PointerEvent) {
	if p.scheduler == nil {
		return
	}
	s := p.scene
	delay := s.LongPressDelay
	p.scheduler.AfterFunc(delay, func() {
		pick := p.pickMesh(func(m *scene.Mesh) bool {
			return pickableMesh(m) &&
				m.ActionManager != nil && m.ActionManager.HasSpecificTrigger(scene.TriggerLongPress)
		})
		if !pick.Hit || pick.PickedMesh == nil {
			return
		}
		if p.startingPointerTime.IsZero() ||
			s.Clock().Now().Sub(p.startingPointerTime) < delay ||
			!p.withinDragThreshold() {
			return
		}
		p.startingPointerTime = time.Time{}
		pick.PickedMesh.ActionManager.ProcessTrigger(scene.TriggerLongPress, scene.NewMeshActionEvent(pick.PickedMesh, evt, nil))
	})
}

// PointerUp fires pick-up, click (same entity, no drag) and pick-out
// triggers, then ends the press.
func (p *Pipeline) PointerUp(evt scene.PointerEvent) {
	p.updatePointerPosition(evt)
	if p.notifyPre(scene.PointerUp, evt) || !p.hasCamera() {
		return
	}
	s := p.scene

	pick := p.pickMesh(p.upPredicate())
	if mesh := pick.PickedMesh; pick.Hit && mesh != nil {
		sameTarget := p.pickedDownMesh != nil && mesh == p.pickedDownMesh
		if sameTarget {
			if p.OnPointerPick != nil {
				p.OnPointerPick(evt, pick)
			}
			p.notifyPointer(scene.PointerPick, evt, pick)
		}
		if am := mesh.ActionManager; am != nil {
			ae := scene.NewMeshActionEvent(mesh, evt, nil)
			am.ProcessTrigger(scene.TriggerPickUp, ae)
			if sameTarget && p.withinDragThreshold() {
				am.ProcessTrigger(scene.TriggerPick, ae)
			}
		}
	}
	if down := p.pickedDownMesh; down != nil && down.ActionManager != nil && down != pick.PickedMesh {
		down.ActionManager.ProcessTrigger(scene.TriggerPickOut, scene.NewMeshActionEvent(down, evt, nil))
	}

	if p.OnPointerUp != nil {
		p.OnPointerUp(evt, pick)
	}
	p.notifyPointer(scene.PointerUp, evt, pick)
	p.startingPointerTime = time.Time{}

	if len(s.SpriteManagers()) > 0 {
		sp := p.pickSprite()
		if sprite := sp.PickedSprite; sp.Hit && sprite != nil && sprite.ActionManager != nil {
			ae := scene.NewSpriteActionEvent(sprite, s, evt)
			sprite.ActionManager.ProcessTrigger(scene.TriggerPickUp, ae)
			if sprite == p.pickedDownSprite && p.withinDragThreshold() {
				sprite.ActionManager.ProcessTrigger(scene.TriggerPick, ae)
			}
		}
		if down := p.pickedDownSprite; down != nil && down.ActionManager != nil && down != sp.PickedSprite {
			down.ActionManager.ProcessTrigger(scene.TriggerPickOut, scene.NewSpriteActionEvent(down, s, evt))
		}
	}
	p.pickedDownMesh = nil
	p.pickedDownSprite = nil
}

// Wheel picks under the pointer and broadcasts the wheel event.
func (p *Pipeline) Wheel(evt scene.PointerEvent) {
	p.updatePointerPosition(evt)
	if p.notifyPre(scene.PointerWheel, evt) || !p.hasCamera() {
		return
	}
	pick := p.pickMesh(p.upPredicate())
	p.notifyPointer(scene.PointerWheel, evt, pick)
}

func (p *Pipeline) KeyDown(key int) { p.key(scene.KeyDown, scene.TriggerKeyDown, key) }

func (p *Pipeline) KeyUp(key int) { p.key(scene.KeyUp, scene.TriggerKeyUp, key) }

func (p *Pipeline) key(t scene.KeyboardEventType, trigger scene.Trigger, key int) {
	s := p.scene
	evt := scene.KeyboardEvent{Key: key}
	if s.OnPreKeyboard.HasObservers() {
		pre := &scene.KeyboardInfoPre{Type: t, Event: evt}
		s.OnPreKeyboard.NotifyWithMask(pre, uint32(t))
		if pre.SkipOnKeyboardObservable {
			return
		}
	}
	if s.ActionManager != nil {
		s.ActionManager.ProcessTrigger(trigger, scene.NewSceneActionEvent(s, evt))
	}
	if s.OnKeyboard.HasObservers() {
		s.OnKeyboard.NotifyWithMask(&scene.KeyboardInfo{Type: t, Event: evt}, uint32(t))
	}
}

// --- Hover ---

func (p *Pipeline) setPointerOverMesh(mesh *scene.Mesh, evt scene.PointerEvent) {
	if p.pointerOverMesh == mesh {
		return
	}
	if old := p.pointerOverMesh; old != nil && old.ActionManager != nil {
		old.ActionManager.ProcessTrigger(scene.TriggerPointerOut, scene.NewMeshActionEvent(old, evt, nil))
	}
	p.pointerOverMesh = mesh
	p.scene.MeshUnderPointer = mesh
	if mesh != nil && mesh.ActionManager != nil {
		mesh.ActionManager.ProcessTrigger(scene.TriggerPointerOver, scene.NewMeshActionEvent(mesh, evt, nil))
	}
}

func (p *Pipeline) setPointerOverSprite(sprite *scene.Sprite, evt scene.PointerEvent) {
	if p.pointerOverSprite == sprite {
		return
	}
	if old := p.pointerOverSprite; old != nil && old.ActionManager != nil {
		old.ActionManager.ProcessTrigger(scene.TriggerPointerOut, scene.NewSpriteActionEvent(old, p.scene, evt))
	}
	p.pointerOverSprite = sprite
	if sprite != nil && sprite.ActionManager != nil {
		sprite.ActionManager.ProcessTrigger(scene.TriggerPointerOver, scene.NewSpriteActionEvent(sprite, p.scene, evt))
	}
}
