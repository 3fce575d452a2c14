package ecs

import (
	"slices"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"

	"scene-engine/core"
	"scene-engine/scene"
)

// MeshData links an entity to the scene mesh it stands for.
type MeshData struct {
	Mesh *scene.Mesh
}

// MeshComponent is attached to every entity created by Attach.
var MeshComponent = donburi.NewComponentType[MeshData]()

// TriggerEvent is published for every trigger a Dispatcher handles.
type TriggerEvent struct {
	Entity  donburi.Entity
	Trigger scene.Trigger
	Event   scene.ActionEvent
}

// TriggerEventType queues trigger events until ProcessEvents.
var TriggerEventType = events.NewEventType[TriggerEvent]()

// Dispatcher is a scene.ActionManager that turns triggers into Donburi
// events instead of running callbacks.
type Dispatcher struct {
	// Cursor overrides the scene hover cursor over the mesh.
	Cursor string

	world         donburi.World
	entity        donburi.Entity
	triggers      []scene.Trigger
	intersections []scene.IntersectionAction
}

var _ scene.ActionManager = (*Dispatcher)(nil)

// Attach creates an entity for m, installs a Dispatcher handling triggers
// as m's action manager and removes the entity when m is disposed.
func Attach(world donburi.World, m *scene.Mesh, triggers ...scene.Trigger) *Dispatcher {
	entity := world.Create(MeshComponent)
	MeshComponent.SetValue(world.Entry(entity), MeshData{Mesh: m})

	d := &Dispatcher{world: world, entity: entity}
	for _, t := range triggers {
		d.Listen(t)
	}
	m.ActionManager = d
	m.OnDispose.AddOnce(func(*scene.Mesh, *core.EventState) {
		if world.Valid(entity) {
			world.Remove(entity)
		}
	})
	return d
}

func (d *Dispatcher) Entity() donburi.Entity { return d.entity }

// Listen adds trigger to the handled set. Intersection triggers need a
// target and go through ListenIntersection.
func (d *Dispatcher) Listen(trigger scene.Trigger) {
	if isIntersection(trigger) {
		return
	}
	d.addTrigger(trigger)
}

func (d *Dispatcher) addTrigger(trigger scene.Trigger) {
	if !slices.Contains(d.triggers, trigger) {
		d.triggers = append(d.triggers, trigger)
	}
}

func isIntersection(t scene.Trigger) bool {
	return t == scene.TriggerIntersectionEnter || t == scene.TriggerIntersectionExit
}

// ListenIntersection publishes trigger when the owner starts or stops
// intersecting target.
func (d *Dispatcher) ListenIntersection(trigger scene.Trigger, target *scene.Mesh, precise bool) {
	if !isIntersection(trigger) || target == nil {
		return
	}
	d.addTrigger(trigger)
	d.intersections = append(d.intersections, &intersection{
		dispatcher: d,
		trigger:    trigger,
		target:     target,
		precise:    precise,
	})
}

func (d *Dispatcher) publish(trigger scene.Trigger, evt scene.ActionEvent) {
	if !d.world.Valid(d.entity) {
		return
	}
	TriggerEventType.Publish(d.world, TriggerEvent{Entity: d.entity, Trigger: trigger, Event: evt})
}

// ProcessTrigger publishes evt when trigger is handled. Intersection
// triggers are published by the scene through IntersectionActions.
func (d *Dispatcher) ProcessTrigger(trigger scene.Trigger, evt scene.ActionEvent) {
	if !isIntersection(trigger) && slices.Contains(d.triggers, trigger) {
		d.publish(trigger, evt)
	}
}

func (d *Dispatcher) HasSpecificTrigger(trigger scene.Trigger) bool {
	return slices.Contains(d.triggers, trigger)
}

func (d *Dispatcher) HasSpecificTriggers(triggers ...scene.Trigger) bool {
	return slices.ContainsFunc(d.triggers, func(t scene.Trigger) bool { return slices.Contains(triggers, t) })
}

func (d *Dispatcher) HasPointerTriggers() bool {
	return slices.ContainsFunc(d.triggers, scene.Trigger.IsPointer)
}

func (d *Dispatcher) HasPickTriggers() bool {
	return slices.ContainsFunc(d.triggers, scene.Trigger.IsPick)
}

func (d *Dispatcher) IntersectionActions() []scene.IntersectionAction { return d.intersections }

func (d *Dispatcher) HoverCursor() string { return d.Cursor }

type intersection struct {
	dispatcher *Dispatcher
	trigger    scene.Trigger
	target     *scene.Mesh
	precise    bool
}

func (i *intersection) Trigger() scene.Trigger { return i.trigger }
func (i *intersection) Target() *scene.Mesh    { return i.target }
func (i *intersection) Precise() bool          { return i.precise }

func (i *intersection) Execute(evt scene.ActionEvent) { i.dispatcher.publish(i.trigger, evt) }

// MeshOf returns the mesh linked to entity, or nil when the entity is gone.
func MeshOf(world donburi.World, entity donburi.Entity) *scene.Mesh {
	if !world.Valid(entity) {
		return nil
	}
	entry := world.Entry(entity)
	if !entry.HasComponent(MeshComponent) {
		return nil
	}
	return MeshComponent.Get(entry).Mesh
}
