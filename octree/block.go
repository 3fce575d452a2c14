package octree

import (
	"scene-engine/math"
)

// Block is one octree node. Entries holds the entities that straddle the
// boundary between two of its children.
type Block[T any] struct {
	Min, Max math.Vec3
	Entries  []T
	Children []*Block[T]

	depth int
}

func newBlock[T any](min, max math.Vec3, depth int) *Block[T] {
	return &Block[T]{Min: min, Max: max, depth: depth}
}

func (b *Block[T]) Depth() int { return b.depth }

func (b *Block[T]) insert(o *Octree[T], e T, mn, mx math.Vec3) {
	if b.Children != nil {
		if c := b.childContaining(mn, mx); c != nil {
			c.insert(o, e, mn, mx)
			return
		}
		b.Entries = append(b.Entries, e)
		return
	}

	b.Entries = append(b.Entries, e)
	if len(b.Entries) > o.MaxCapacity && b.depth < o.MaxDepth {
		b.subdivide(o)
	}
}

func (b *Block[T]) subdivide(o *Octree[T]) {
	half := b.Max.Sub(b.Min).Mul(0.5)
	b.Children = make([]*Block[T], 0, 8)
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			for z := 0; z < 2; z++ {
				mn := b.Min.Add(math.Vec3{X: half.X * float32(x), Y: half.Y * float32(y), Z: half.Z * float32(z)})
				b.Children = append(b.Children, newBlock[T](mn, mn.Add(half), b.depth+1))
			}
		}
	}

	entries := b.Entries
	b.Entries = nil
	for _, e := range entries {
		mn, mx := o.bounds(e)
		b.insert(o, e, mn, mx)
	}
}

func (b *Block[T]) childContaining(mn, mx math.Vec3) *Block[T] {
	for _, c := range b.Children {
		if math.AABBContains(c.Min, c.Max, mn, mx) {
			return c
		}
	}
	return nil
}

func (b *Block[T]) selectFrustum(o *Octree[T], planes []math.Plane, dst []T) []T {
	for _, e := range b.Entries {
		mn, mx := o.bounds(e)
		if math.AABBIntersectsFrustum(mn, mx, planes) {
			dst = append(dst, e)
		}
	}
	for _, c := range b.Children {
		if math.AABBIntersectsFrustum(c.Min, c.Max, planes) {
			dst = c.selectFrustum(o, planes, dst)
		}
	}
	return dst
}

func (b *Block[T]) selectRay(o *Octree[T], ray math.Ray, dst []T) []T {
	for _, e := range b.Entries {
		mn, mx := o.bounds(e)
		if ray.IntersectsBoxMinMax(mn, mx) {
			dst = append(dst, e)
		}
	}
	for _, c := range b.Children {
		if ray.IntersectsBoxMinMax(c.Min, c.Max) {
			dst = c.selectRay(o, ray, dst)
		}
	}
	return dst
}
