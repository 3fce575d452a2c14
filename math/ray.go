package math

import "github.com/chewxy/math32"

const epsilon = 1e-7

// Ray is a half-line; hits farther than Length are ignored.
type Ray struct {
	Origin    Vec3
	Direction Vec3
	Length    float32
}

// IntersectionInfo describes a ray/triangle hit in barycentric form.
type IntersectionInfo struct {
	BU, BV    float32
	Distance  float32
	FaceID    int
	SubMeshID int
}

func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction, Length: math32.MaxFloat32}
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float32) Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// IntersectsBoxMinMax is a boolean slab test starting at d = 0.
func (r Ray) IntersectsBoxMinMax(min, max Vec3) bool {
	d := float32(0)
	maxValue := float32(math32.MaxFloat32)

	origin := [3]float32{r.Origin.X, r.Origin.Y, r.Origin.Z}
	dir := [3]float32{r.Direction.X, r.Direction.Y, r.Direction.Z}
	lo := [3]float32{min.X, min.Y, min.Z}
	hi := [3]float32{max.X, max.Y, max.Z}

	for i := 0; i < 3; i++ {
		if math32.Abs(dir[i]) < epsilon {
			if origin[i] < lo[i] || origin[i] > hi[i] {
				return false
			}
			continue
		}
		inv := 1 / dir[i]
		t1 := (lo[i] - origin[i]) * inv
		t2 := (hi[i] - origin[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		d = math32.Max(t1, d)
		maxValue = math32.Min(t2, maxValue)
		if d > maxValue {
			return false
		}
	}
	return true
}

// IntersectsBox tests against the local extents of b.
func (r Ray) IntersectsBox(b BoundingBox) bool {
	return r.IntersectsBoxMinMax(b.Minimum, b.Maximum)
}

// IntersectsSphere tests against the local center and radius of s.
func (r Ray) IntersectsSphere(s BoundingSphere) bool {
	x := s.Center.X - r.Origin.X
	y := s.Center.Y - r.Origin.Y
	z := s.Center.Z - r.Origin.Z
	pyth := x*x + y*y + z*z
	rr := s.Radius * s.Radius
	if pyth <= rr {
		return true
	}
	dot := x*r.Direction.X + y*r.Direction.Y + z*r.Direction.Z
	if dot < 0 {
		return false
	}
	// transformed rays keep an unnormalized direction
	dd := r.Direction.LengthSqr()
	if dd == 0 {
		return false
	}
	return pyth-dot*dot/dd <= rr
}

// IntersectsBoxDistance returns the entry distance into an axis-aligned box.
func (r Ray) IntersectsBoxDistance(min, max Vec3) (float32, bool) {
	invDir := Vec3{X: 1 / r.Direction.X, Y: 1 / r.Direction.Y, Z: 1 / r.Direction.Z}

	t1 := (min.X - r.Origin.X) * invDir.X
	t2 := (max.X - r.Origin.X) * invDir.X
	t3 := (min.Y - r.Origin.Y) * invDir.Y
	t4 := (max.Y - r.Origin.Y) * invDir.Y
	t5 := (min.Z - r.Origin.Z) * invDir.Z
	t6 := (max.Z - r.Origin.Z) * invDir.Z

	tmin := math32.Max(math32.Max(math32.Min(t1, t2), math32.Min(t3, t4)), math32.Min(t5, t6))
	tmax := math32.Min(math32.Min(math32.Max(t1, t2), math32.Max(t3, t4)), math32.Max(t5, t6))

	if tmax < 0 || tmin > tmax {
		return 0, false
	}
	if tmin < 0 {
		tmin = 0
	}
	return tmin, true
}

// IntersectsTriangle is Möller–Trumbore. Hits behind the origin or beyond
// Length are rejected.
func (r Ray) IntersectsTriangle(v0, v1, v2 Vec3) (IntersectionInfo, bool) {
	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	h := r.Direction.Cross(edge2)
	a := edge1.Dot(h)

	if a > -epsilon && a < epsilon {
		return IntersectionInfo{}, false // parallel
	}

	f := 1 / a
	s := r.Origin.Sub(v0)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return IntersectionInfo{}, false
	}

	q := s.Cross(edge1)
	v := f * r.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return IntersectionInfo{}, false
	}

	t := f * edge2.Dot(q)
	if t <= epsilon || t > r.Length {
		return IntersectionInfo{}, false
	}
	return IntersectionInfo{BU: u, BV: v, Distance: t}, true
}

// Transform maps the ray through m. The direction is not renormalized so a
// distance measured in the new space stays proportional to the old one.
func (r Ray) Transform(m Mat4) Ray {
	return Ray{
		Origin:    r.Origin.TransformCoordinates(m),
		Direction: r.Direction.TransformNormal(m),
		Length:    r.Length,
	}
}

// Unproject maps a viewport pixel (x, y) with depth z in [0, 1] back through
// world * view * projection.
func Unproject(source Vec3, viewportWidth, viewportHeight float32, world, view, projection Mat4) Vec3 {
	inv := world.Mul(view).Mul(projection).Inverse()
	ndc := Vec3{
		X: source.X/viewportWidth*2 - 1,
		Y: -(source.Y/viewportHeight*2 - 1),
		Z: source.Z*2 - 1,
	}
	return inv.MulVec3(ndc)
}

// RayFromScreen builds a ray through pixel (x, y) from the near to the far plane.
func RayFromScreen(x, y, viewportWidth, viewportHeight float32, world, view, projection Mat4) Ray {
	start := Unproject(Vec3{X: x, Y: y, Z: 0}, viewportWidth, viewportHeight, world, view, projection)
	end := Unproject(Vec3{X: x, Y: y, Z: 1}, viewportWidth, viewportHeight, world, view, projection)
	return NewRay(start, end.Sub(start).Normalize())
}
