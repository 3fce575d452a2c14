// Package ecs bridges scene action triggers into a Donburi world.
//
// Attach a Dispatcher to a mesh; every trigger it handles is published as a
// TriggerEvent on TriggerEventType. Systems subscribe with
// TriggerEventType.Subscribe and drain the queue with ProcessEvents, usually
// once per frame from Scene.OnAfterRender.
package ecs
