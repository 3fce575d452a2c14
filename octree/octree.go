// Package octree implements the selection index used to pre-filter entities
// before per-entity frustum and ray tests.
//
// The tree is rebuilt as a whole by Update and is not kept in sync with
// entity movement; it reflects the extents and entity list of the last
// Update call. Each entity lives in exactly one place: the deepest block
// that fully contains its bounds, or the out-of-bounds list when it does not
// fit inside the root.
package octree

import (
	"scene-engine/math"
)

const (
	DefaultMaxCapacity = 64
	DefaultMaxDepth    = 2
)

// BoundsFunc returns the current world-space axis-aligned extents of e.
type BoundsFunc[T any] func(e T) (min, max math.Vec3)

type Octree[T any] struct {
	MaxCapacity int
	MaxDepth    int

	bounds  BoundsFunc[T]
	root    *Block[T]
	outside []T
	count   int
}

func New[T any](bounds BoundsFunc[T], maxCapacity, maxDepth int) *Octree[T] {
	if maxCapacity <= 0 {
		maxCapacity = DefaultMaxCapacity
	}
	if maxDepth < 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Octree[T]{MaxCapacity: maxCapacity, MaxDepth: maxDepth, bounds: bounds}
}

// Update discards the previous tree and rebuilds it over [worldMin, worldMax].
func (o *Octree[T]) Update(worldMin, worldMax math.Vec3, entities []T) {
	o.root = newBlock[T](worldMin, worldMax, 0)
	o.outside = o.outside[:0]
	o.count = len(entities)

	for _, e := range entities {
		mn, mx := o.bounds(e)
		if !math.AABBContains(worldMin, worldMax, mn, mx) {
			o.outside = append(o.outside, e)
			continue
		}
		o.root.insert(o, e, mn, mx)
	}
}

// Built reports whether Update ran at least once.
func (o *Octree[T]) Built() bool { return o.root != nil }

func (o *Octree[T]) Len() int { return o.count }

func (o *Octree[T]) Root() *Block[T] { return o.root }

// Select appends to dst every entity whose bounds intersect all planes.
// Subtrees whose region is outside the frustum are skipped whole.
func (o *Octree[T]) Select(planes []math.Plane, dst []T) []T {
	if o.root != nil && math.AABBIntersectsFrustum(o.root.Min, o.root.Max, planes) {
		dst = o.root.selectFrustum(o, planes, dst)
	}
	for _, e := range o.outside {
		mn, mx := o.bounds(e)
		if math.AABBIntersectsFrustum(mn, mx, planes) {
			dst = append(dst, e)
		}
	}
	return dst
}

// Intersects appends to dst every entity whose bounds the ray crosses.
func (o *Octree[T]) Intersects(ray math.Ray, dst []T) []T {
	if o.root != nil && ray.IntersectsBoxMinMax(o.root.Min, o.root.Max) {
		dst = o.root.selectRay(o, ray, dst)
	}
	for _, e := range o.outside {
		mn, mx := o.bounds(e)
		if ray.IntersectsBoxMinMax(mn, mx) {
			dst = append(dst, e)
		}
	}
	return dst
}
