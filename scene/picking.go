package scene

import (
	"fmt"

	"scene-engine/math"
)

// PickingInfo is the result of a pick. The zero value is the canonical miss.
type PickingInfo struct {
	Hit          bool
	Distance     float32
	PickedPoint  math.Vec3
	PickedMesh   *Mesh
	PickedSprite *Sprite
	BU, BV       float32
	FaceID       int
	SubMeshID    int
}

// MeshPredicate filters meshes considered by picking.
type MeshPredicate func(*Mesh) bool

// SpritePredicate filters sprites considered by sprite picking.
type SpritePredicate func(*Sprite) bool

func defaultPickPredicate(m *Mesh) bool {
	return m.IsEnabled() && m.IsVisible && m.IsPickable
}

func (s *Scene) pickingCamera(camera *Camera) (*Camera, error) {
	if camera != nil {
		return camera, nil
	}
	if s.ActiveCamera == nil {
		return nil, ErrNoActiveCamera
	}
	return s.ActiveCamera, nil
}

// CreatePickingRay builds a ray through window pixel (x, y) in the space of
// world, which is the world space when world is the identity.
func (s *Scene) CreatePickingRay(x, y float32, world math.Mat4, camera *Camera) (math.Ray, error) {
	return s.createPickingRay(x, y, world, camera, false)
}

// CreatePickingRayInCameraSpace builds the same ray with the view replaced
// by the identity.
func (s *Scene) CreatePickingRayInCameraSpace(x, y float32, camera *Camera) (math.Ray, error) {
	return s.createPickingRay(x, y, math.Mat4Identity(), camera, true)
}

func (s *Scene) createPickingRay(x, y float32, world math.Mat4, camera *Camera, cameraViewSpace bool) (math.Ray, error) {
	camera, err := s.pickingCamera(camera)
	if err != nil {
		return math.Ray{}, fmt.Errorf("create picking ray: %w", err)
	}
	if s.engine == nil {
		return math.Ray{}, fmt.Errorf("create picking ray: %w", ErrNoEngine)
	}

	w, h := s.engine.RenderSize()
	renderW, renderH := float32(w), float32(h)
	viewport := camera.Viewport.ToGlobal(renderW, renderH)
	scale := s.engine.HardwareScalingLevel()
	if scale == 0 {
		scale = 1
	}

	// window pixels to the camera viewport; window y grows down, viewport y up
	x = x/scale - viewport.X
	y = y/scale - (renderH - viewport.Y - viewport.Height)

	view := camera.GetViewMatrix()
	if cameraViewSpace {
		view = math.Mat4Identity()
	}
	return math.RayFromScreen(x, y, viewport.Width, viewport.Height, world, view, camera.GetProjectionMatrix()), nil
}

// internalPick runs the nearest-hit search. rayFunc returns the ray in the
// local space of the given world matrix.
func (s *Scene) internalPick(rayFunc func(world math.Mat4) (math.Ray, error), predicate MeshPredicate, fastCheck bool) (PickingInfo, error) {
	var best PickingInfo
	for _, mesh := range s.meshes {
		if predicate != nil {
			if !predicate(mesh) {
				continue
			}
		} else if !defaultPickPredicate(mesh) {
			continue
		}

		world := mesh.ComputeWorldMatrix()
		ray, err := rayFunc(world)
		if err != nil {
			return PickingInfo{}, err
		}

		result := mesh.Intersects(ray, fastCheck)
		if !result.Hit {
			continue
		}
		if !fastCheck && best.Hit && result.Distance >= best.Distance {
			continue
		}
		best = result
		if fastCheck {
			break
		}
	}
	return best, nil
}

func (s *Scene) internalMultiPick(rayFunc func(world math.Mat4) (math.Ray, error), predicate MeshPredicate) ([]PickingInfo, error) {
	var hits []PickingInfo
	for _, mesh := range s.meshes {
		if predicate != nil {
			if !predicate(mesh) {
				continue
			}
		} else if !defaultPickPredicate(mesh) {
			continue
		}

		world := mesh.ComputeWorldMatrix()
		ray, err := rayFunc(world)
		if err != nil {
			return nil, err
		}
		if result := mesh.Intersects(ray, false); result.Hit {
			hits = append(hits, result)
		}
	}
	return hits, nil
}

// Pick returns the nearest mesh under window pixel (x, y). A nil predicate
// selects enabled, visible and pickable meshes; a nil camera uses the
// active camera. A miss is the zero PickingInfo with a nil error.
func (s *Scene) Pick(x, y float32, predicate MeshPredicate, fastCheck bool, camera *Camera) (PickingInfo, error) {
	return s.internalPick(func(world math.Mat4) (math.Ray, error) {
		return s.CreatePickingRay(x, y, world, camera)
	}, predicate, fastCheck)
}

// MultiPick returns every mesh hit under (x, y), in scene order.
func (s *Scene) MultiPick(x, y float32, predicate MeshPredicate, camera *Camera) ([]PickingInfo, error) {
	return s.internalMultiPick(func(world math.Mat4) (math.Ray, error) {
		return s.CreatePickingRay(x, y, world, camera)
	}, predicate)
}

// PickWithRay picks with a world-space ray.
func (s *Scene) PickWithRay(ray math.Ray, predicate MeshPredicate, fastCheck bool) PickingInfo {
	info, _ := s.internalPick(func(world math.Mat4) (math.Ray, error) {
		return ray.Transform(world.Inverse()), nil
	}, predicate, fastCheck)
	return info
}

// MultiPickWithRay returns every mesh hit by a world-space ray.
func (s *Scene) MultiPickWithRay(ray math.Ray, predicate MeshPredicate) []PickingInfo {
	hits, _ := s.internalMultiPick(func(world math.Mat4) (math.Ray, error) {
		return ray.Transform(world.Inverse()), nil
	}, predicate)
	return hits
}

// PickSprite returns the nearest sprite under (x, y) across pickable sprite
// managers.
func (s *Scene) PickSprite(x, y float32, predicate SpritePredicate, fastCheck bool, camera *Camera) (PickingInfo, error) {
	camera, err := s.pickingCamera(camera)
	if err != nil {
		return PickingInfo{}, fmt.Errorf("pick sprite: %w", err)
	}
	ray, err := s.CreatePickingRayInCameraSpace(x, y, camera)
	if err != nil {
		return PickingInfo{}, err
	}
	return s.internalPickSprites(ray, predicate, fastCheck, camera), nil
}

func (s *Scene) internalPickSprites(ray math.Ray, predicate SpritePredicate, fastCheck bool, camera *Camera) PickingInfo {
	var best PickingInfo
	for _, sm := range s.spriteManagers {
		if !sm.IsPickable {
			continue
		}
		result := sm.Intersects(ray, camera, predicate, fastCheck)
		if !result.Hit {
			continue
		}
		if !fastCheck && best.Hit && result.Distance >= best.Distance {
			continue
		}
		best = result
		if fastCheck {
			break
		}
	}
	return best
}
