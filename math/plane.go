package math

// Plane is the half-space n·p + d >= 0. Normal points into the kept side.
type Plane struct {
	Normal Vec3
	D      float32
}

// Plane indices in the slice returned by FrustumPlanes.
const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// NewPlane builds a normalized plane from the raw equation ax + by + cz + d = 0.
func NewPlane(a, b, c, d float32) Plane {
	l := Vec3{X: a, Y: b, Z: c}.Length()
	if l == 0 {
		return Plane{}
	}
	return Plane{Normal: Vec3{X: a / l, Y: b / l, Z: c / l}, D: d / l}
}

// DistanceTo returns the signed distance from pt to the plane; positive is inside.
func (p Plane) DistanceTo(pt Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

// FrustumPlanes extracts the six normalized clip planes of a view-projection
// matrix. See UpdateFrustumPlanes.
func FrustumPlanes(vp Mat4) []Plane {
	return UpdateFrustumPlanes(vp, make([]Plane, 6))
}

// UpdateFrustumPlanes writes the six planes of vp into dst and returns
// dst[:6], reallocating when cap(dst) < 6. With row vectors clip = p * VP, so
// clip component j is the dot product of p with column j of vp
// (Gribb/Hartmann on columns).
func UpdateFrustumPlanes(vp Mat4, dst []Plane) []Plane {
	c0, c1, c2, c3 := vp.Col(0), vp.Col(1), vp.Col(2), vp.Col(3)

	if cap(dst) < 6 {
		dst = make([]Plane, 6)
	}
	dst = dst[:6]
	dst[FrustumLeft] = NewPlane(c3.X+c0.X, c3.Y+c0.Y, c3.Z+c0.Z, c3.W+c0.W)
	dst[FrustumRight] = NewPlane(c3.X-c0.X, c3.Y-c0.Y, c3.Z-c0.Z, c3.W-c0.W)
	dst[FrustumBottom] = NewPlane(c3.X+c1.X, c3.Y+c1.Y, c3.Z+c1.Z, c3.W+c1.W)
	dst[FrustumTop] = NewPlane(c3.X-c1.X, c3.Y-c1.Y, c3.Z-c1.Z, c3.W-c1.W)
	dst[FrustumNear] = NewPlane(c3.X+c2.X, c3.Y+c2.Y, c3.Z+c2.Z, c3.W+c2.W)
	dst[FrustumFar] = NewPlane(c3.X-c2.X, c3.Y-c2.Y, c3.Z-c2.Z, c3.W-c2.W)
	return dst
}

// AABBIntersectsFrustum is the p-vertex test: false only when the box lies
// entirely outside at least one plane.
func AABBIntersectsFrustum(min, max Vec3, planes []Plane) bool {
	for _, p := range planes {
		px := max.X
		if p.Normal.X < 0 {
			px = min.X
		}
		py := max.Y
		if p.Normal.Y < 0 {
			py = min.Y
		}
		pz := max.Z
		if p.Normal.Z < 0 {
			pz = min.Z
		}
		if p.DistanceTo(Vec3{X: px, Y: py, Z: pz}) < 0 {
			return false
		}
	}
	return true
}
