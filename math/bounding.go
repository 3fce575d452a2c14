package math

import "github.com/chewxy/math32"

// BoundingBox is an oriented box: a local min/max pair plus its world-space
// corners, axis-aligned world extents and axes after the last Update.
type BoundingBox struct {
	Minimum, Maximum Vec3
	Center, Extend   Vec3

	MinimumWorld, MaximumWorld Vec3
	CenterWorld, ExtendWorld   Vec3
	Directions                 [3]Vec3
	VectorsWorld               [8]Vec3
}

func NewBoundingBox(min, max Vec3) BoundingBox {
	b := BoundingBox{Minimum: min, Maximum: max}
	b.Update(Mat4Identity())
	return b
}

// Update recomputes every world-space field from the local extents and world.
func (b *BoundingBox) Update(world Mat4) {
	b.Center = b.Minimum.Add(b.Maximum).Mul(0.5)
	b.Extend = b.Maximum.Sub(b.Minimum).Mul(0.5)

	mn, mx := b.Minimum, b.Maximum
	local := [8]Vec3{
		{X: mn.X, Y: mn.Y, Z: mn.Z},
		{X: mx.X, Y: mx.Y, Z: mx.Z},
		{X: mx.X, Y: mn.Y, Z: mn.Z},
		{X: mn.X, Y: mx.Y, Z: mn.Z},
		{X: mn.X, Y: mn.Y, Z: mx.Z},
		{X: mx.X, Y: mx.Y, Z: mn.Z},
		{X: mn.X, Y: mx.Y, Z: mx.Z},
		{X: mx.X, Y: mn.Y, Z: mx.Z},
	}
	b.MinimumWorld = Vec3Splat(math32.MaxFloat32)
	b.MaximumWorld = Vec3Splat(-math32.MaxFloat32)
	for i, v := range local {
		w := world.MulVec3(v)
		b.VectorsWorld[i] = w
		b.MinimumWorld = b.MinimumWorld.Min(w)
		b.MaximumWorld = b.MaximumWorld.Max(w)
	}
	b.CenterWorld = b.MinimumWorld.Add(b.MaximumWorld).Mul(0.5)
	b.ExtendWorld = b.MaximumWorld.Sub(b.MinimumWorld).Mul(0.5)

	for i := 0; i < 3; i++ {
		b.Directions[i] = world.Row(i).Normalize()
	}
}

// IntersectsFrustum tests the eight world corners; the box is rejected only
// when all of them are behind the same plane.
func (b BoundingBox) IntersectsFrustum(planes []Plane) bool {
	for _, p := range planes {
		inside := false
		for _, v := range b.VectorsWorld {
			if p.DistanceTo(v) >= 0 {
				inside = true
				break
			}
		}
		if !inside {
			return false
		}
	}
	return true
}

func (b BoundingBox) IsCompletelyInFrustum(planes []Plane) bool {
	for _, p := range planes {
		for _, v := range b.VectorsWorld {
			if p.DistanceTo(v) < 0 {
				return false
			}
		}
	}
	return true
}

func (b BoundingBox) IntersectsPoint(pt Vec3) bool {
	const delta = -epsilon
	return !(b.MaximumWorld.X-pt.X < delta || delta > pt.X-b.MinimumWorld.X ||
		b.MaximumWorld.Y-pt.Y < delta || delta > pt.Y-b.MinimumWorld.Y ||
		b.MaximumWorld.Z-pt.Z < delta || delta > pt.Z-b.MinimumWorld.Z)
}

// BoxesIntersect compares world-space axis-aligned extents.
func BoxesIntersect(a, b BoundingBox) bool {
	return AABBOverlap(a.MinimumWorld, a.MaximumWorld, b.MinimumWorld, b.MaximumWorld)
}

// AABBOverlap reports whether two closed min/max boxes share at least one point.
func AABBOverlap(minA, maxA, minB, maxB Vec3) bool {
	return !(maxA.X < minB.X || minA.X > maxB.X ||
		maxA.Y < minB.Y || minA.Y > maxB.Y ||
		maxA.Z < minB.Z || minA.Z > maxB.Z)
}

// AABBContains reports whether the inner box lies entirely inside the outer one.
func AABBContains(outerMin, outerMax, innerMin, innerMax Vec3) bool {
	return innerMin.X >= outerMin.X && innerMin.Y >= outerMin.Y && innerMin.Z >= outerMin.Z &&
		innerMax.X <= outerMax.X && innerMax.Y <= outerMax.Y && innerMax.Z <= outerMax.Z
}

type BoundingSphere struct {
	Center      Vec3
	Radius      float32
	CenterWorld Vec3
	RadiusWorld float32
}

func NewBoundingSphere(min, max Vec3) BoundingSphere {
	s := BoundingSphere{
		Center: min.Add(max).Mul(0.5),
		Radius: max.Distance(min) * 0.5,
	}
	s.Update(Mat4Identity())
	return s
}

// Update scales the radius by the largest axis scale of world.
func (s *BoundingSphere) Update(world Mat4) {
	s.CenterWorld = world.MulVec3(s.Center)
	scale := math32.Max(world.Row(0).Length(), math32.Max(world.Row(1).Length(), world.Row(2).Length()))
	s.RadiusWorld = s.Radius * scale
}

func (s BoundingSphere) IntersectsFrustum(planes []Plane) bool {
	for _, p := range planes {
		if p.DistanceTo(s.CenterWorld) <= -s.RadiusWorld {
			return false
		}
	}
	return true
}

func SpheresIntersect(a, b BoundingSphere) bool {
	r := a.RadiusWorld + b.RadiusWorld
	return a.CenterWorld.Sub(b.CenterWorld).LengthSqr() <= r*r
}

// BoundingInfo pairs the box and sphere of one entity.
type BoundingInfo struct {
	Box    BoundingBox
	Sphere BoundingSphere
}

func NewBoundingInfo(min, max Vec3) BoundingInfo {
	return BoundingInfo{Box: NewBoundingBox(min, max), Sphere: NewBoundingSphere(min, max)}
}

func (bi *BoundingInfo) Update(world Mat4) {
	bi.Box.Update(world)
	bi.Sphere.Update(world)
}

// IsInFrustum runs the cheap sphere rejection before the box test.
func (bi BoundingInfo) IsInFrustum(planes []Plane) bool {
	if !bi.Sphere.IntersectsFrustum(planes) {
		return false
	}
	return bi.Box.IntersectsFrustum(planes)
}

func (bi BoundingInfo) IsCompletelyInFrustum(planes []Plane) bool {
	return bi.Box.IsCompletelyInFrustum(planes)
}

// Intersects tests sphere then world AABB overlap. With precise set, the
// oriented boxes are also run through the 15-axis separating axis test.
func (bi BoundingInfo) Intersects(other BoundingInfo, precise bool) bool {
	if !SpheresIntersect(bi.Sphere, other.Sphere) {
		return false
	}
	if !BoxesIntersect(bi.Box, other.Box) {
		return false
	}
	if !precise {
		return true
	}

	a, b := bi.Box, other.Box
	axes := make([]Vec3, 0, 15)
	axes = append(axes, a.Directions[:]...)
	axes = append(axes, b.Directions[:]...)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			axes = append(axes, a.Directions[i].Cross(b.Directions[j]))
		}
	}
	for _, axis := range axes {
		if axis.LengthSqr() < epsilon {
			continue
		}
		if !axisOverlap(axis, a.VectorsWorld, b.VectorsWorld) {
			return false
		}
	}
	return true
}

func axisOverlap(axis Vec3, a, b [8]Vec3) bool {
	minA, maxA := projectInterval(axis, a)
	minB, maxB := projectInterval(axis, b)
	return !(minA > maxB || minB > maxA)
}

func projectInterval(axis Vec3, pts [8]Vec3) (float32, float32) {
	lo := axis.Dot(pts[0])
	hi := lo
	for _, p := range pts[1:] {
		d := axis.Dot(p)
		lo = math32.Min(lo, d)
		hi = math32.Max(hi, d)
	}
	return lo, hi
}
