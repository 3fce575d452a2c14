package math

import (
	"math"
	"testing"
)

func TestVec3Operations(t *testing.T) {
	v1 := NewVec3(1, 2, 3)
	v2 := NewVec3(4, 5, 6)

	// Addition
	result := v1.Add(v2)
	expected := NewVec3(5, 7, 9)
	if result != expected {
		t.Errorf("Add: expected %v, got %v", expected, result)
	}

	result = v2.Sub(v1)
	expected = NewVec3(3, 3, 3)
	if result != expected {
		t.Errorf("Sub: expected %v, got %v", expected, result)
	}

	dot := v1.Dot(v2)
	if dot != 32 {
		t.Errorf("Dot: expected 32, got %v", dot)
	}

	// Right x Up = Front in a right-handed system
	cross := Vec3Right.Cross(Vec3Up)
	if cross != Vec3Front {
		t.Errorf("Cross: expected %v, got %v", Vec3Front, cross)
	}

	if got := v1.Min(v2); got != v1 {
		t.Errorf("Min: expected %v, got %v", v1, got)
	}
	if got := v1.Max(v2); got != v2 {
		t.Errorf("Max: expected %v, got %v", v2, got)
	}
}

func TestMat4Translation(t *testing.T) {
	translation := NewVec3(1, 2, 3)
	m := Mat4Translation(translation)

	if m[3][0] != 1 || m[3][1] != 2 || m[3][2] != 3 {
		t.Errorf("Translation: expected (1,2,3), got (%v,%v,%v)", m[3][0], m[3][1], m[3][2])
	}

	result := NewVec4(0, 0, 0, 1).MulMat(m)
	if result.ToVec3() != translation {
		t.Errorf("Translation: expected %v, got %v", translation, result.ToVec3())
	}

	// directions ignore translation
	if n := Vec3Up.TransformNormal(m); n != Vec3Up {
		t.Errorf("TransformNormal: expected %v, got %v", Vec3Up, n)
	}
}

func TestMat4ComposeOrder(t *testing.T) {
	// scale first, then rotate 90 degrees about Y, then translate
	rot := QuaternionFromAxisAngle(Vec3Up, float32(math.Pi/2))
	m := Mat4Compose(NewVec3(2, 2, 2), rot, NewVec3(10, 0, 0))

	got := Vec3Right.TransformCoordinates(m)
	want := NewVec3(10, 0, -2)
	if !got.ApproxEqual(want, 1e-4) {
		t.Errorf("Compose: expected %v, got %v", want, got)
	}
}

func TestMat4Inverse(t *testing.T) {
	rot := QuaternionFromEuler(NewVec3(0.3, -1.1, 0.7))
	m := Mat4Compose(NewVec3(1, 2, 3), rot, NewVec3(-4, 5, 6))
	p := NewVec3(0.5, -2, 7)

	back := p.TransformCoordinates(m).TransformCoordinates(m.Inverse())
	if !back.ApproxEqual(p, 1e-3) {
		t.Errorf("Inverse: expected %v, got %v", p, back)
	}

	id := m.Mul(m.Inverse())
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			want := float32(0)
			if i == j {
				want = 1
			}
			if math.Abs(float64(id[i][j]-want)) > 1e-4 {
				t.Errorf("Inverse: m * inv [%d][%d] = %v", i, j, id[i][j])
			}
		}
	}
}

func TestQuaternionRotation(t *testing.T) {
	q := QuaternionFromAxisAngle(Vec3Up, float32(math.Pi/2))

	// +X rotated 90 degrees about +Y lands on -Z
	result := q.RotateVector(Vec3Right)
	if !result.ApproxEqual(Vec3Back, 0.001) {
		t.Errorf("Quaternion rotation: expected approximately (0,0,-1), got %v", result)
	}

	// the matrix form agrees with the quaternion for row vectors
	viaMatrix := Vec3Right.TransformCoordinates(q.ToMat4())
	if !viaMatrix.ApproxEqual(result, 0.001) {
		t.Errorf("ToMat4: expected %v, got %v", result, viaMatrix)
	}
}

func TestMat4LookAt(t *testing.T) {
	eye := NewVec3(0, 0, 5)
	m := Mat4LookAt(eye, Vec3Zero, Vec3Up)

	// The view matrix should transform the eye position to origin
	result := m.MulVec(eye.ToVec4(1))
	if !result.ToVec3().ApproxEqual(Vec3Zero, 0.001) {
		t.Errorf("LookAt: expected eye to transform to origin, got %v", result)
	}

	// the target sits in front of the camera on -Z
	target := Vec3Zero.TransformCoordinates(m)
	if !target.ApproxEqual(NewVec3(0, 0, -5), 0.001) {
		t.Errorf("LookAt: expected target at (0,0,-5), got %v", target)
	}
}

func TestClamp(t *testing.T) {
	if Clamp(5, 1, 3) != 3 || Clamp(-1, 1, 3) != 1 || Clamp(2, 1, 3) != 2 {
		t.Error("Clamp: int bounds not applied")
	}
	if Clamp(float32(0.5), 0, 1) != 0.5 {
		t.Error("Clamp: float32 in range changed")
	}
}

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Mat4Identity()
	m2 := Mat4Identity()

	for i := 0; i < b.N; i++ {
		_ = m1.Mul(m2)
	}
}

func BenchmarkMat4Inverse(b *testing.B) {
	m := Mat4Compose(NewVec3(1, 2, 3), QuaternionFromEuler(NewVec3(0.1, 0.2, 0.3)), NewVec3(4, 5, 6))

	for i := 0; i < b.N; i++ {
		_ = m.Inverse()
	}
}
