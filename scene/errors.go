package scene

import "errors"

var (
	// ErrNoActiveCamera is returned when rendering or building a picking ray
	// without any camera to use.
	ErrNoActiveCamera = errors.New("scene: no active camera")
	// ErrDisposed is returned by Render after Dispose.
	ErrDisposed = errors.New("scene: disposed")
	// ErrNoSpatialIndex is returned when the selection octree is queried before
	// it was ever built.
	ErrNoSpatialIndex = errors.New("scene: selection octree not built")
	// ErrNoEngine is returned by Render on a scene created without an engine.
	ErrNoEngine = errors.New("scene: no engine")
)
