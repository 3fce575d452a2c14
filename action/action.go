// Package action provides the default trigger dispatcher attached to meshes,
// sprites and scenes.
package action

import "scene-engine/scene"

// Action runs Func when its trigger fires and its condition (if any) holds.
type Action struct {
	Func func(evt scene.ActionEvent)

	trigger   scene.Trigger
	target    *scene.Mesh
	precise   bool
	key       int
	hasKey    bool
	condition func(evt scene.ActionEvent) bool
}

// New returns an action for trigger.
func New(trigger scene.Trigger, fn func(scene.ActionEvent)) *Action {
	return &Action{trigger: trigger, Func: fn}
}

// NewIntersection returns an action fired when the owner starts (enter) or
// stops (exit) overlapping target. Precise uses oriented boxes.
func NewIntersection(trigger scene.Trigger, target *scene.Mesh, precise bool, fn func(scene.ActionEvent)) *Action {
	return &Action{trigger: trigger, target: target, precise: precise, Func: fn}
}

// NewKey returns a key down/up action restricted to one key code.
func NewKey(trigger scene.Trigger, key int, fn func(scene.ActionEvent)) *Action {
	return &Action{trigger: trigger, key: key, hasKey: true, Func: fn}
}

// When adds a condition evaluated right before execution.
func (a *Action) When(condition func(scene.ActionEvent) bool) *Action {
	a.condition = condition
	return a
}

func (a *Action) Trigger() scene.Trigger { return a.trigger }

func (a *Action) Target() *scene.Mesh { return a.target }

func (a *Action) Precise() bool { return a.precise }

// Execute runs the action if its condition holds.
func (a *Action) Execute(evt scene.ActionEvent) {
	if a.condition != nil && !a.condition(evt) {
		return
	}
	if a.Func != nil {
		a.Func(evt)
	}
}

func (a *Action) matchesKey(evt scene.ActionEvent) bool {
	if !a.hasKey {
		return true
	}
	switch e := evt.SourceEvent.(type) {
	case scene.KeyboardEvent:
		return e.Key == a.key
	case *scene.KeyboardEvent:
		return e != nil && e.Key == a.key
	}
	return false
}
