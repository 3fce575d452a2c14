package octree

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-engine/math"
)

type box struct {
	id       int
	min, max math.Vec3
}

func boxBounds(b *box) (math.Vec3, math.Vec3) { return b.min, b.max }

func cameraPlanes(eye, target math.Vec3) []math.Plane {
	view := math.Mat4LookAt(eye, target, math.Vec3Up)
	proj := math.Mat4Perspective(math32.Pi/4, 1, 0.1, 50)
	return math.FrustumPlanes(view.Mul(proj))
}

func randomBoxes(n int) []*box {
	r := rand.New(rand.NewSource(7))
	out := make([]*box, n)
	for i := range out {
		c := math.NewVec3(r.Float32()*80-40, r.Float32()*80-40, r.Float32()*80-40)
		h := math.Vec3Splat(0.2 + r.Float32()*2)
		out[i] = &box{id: i, min: c.Sub(h), max: c.Add(h)}
	}
	return out
}

func ids(bs []*box) []int {
	out := make([]int, len(bs))
	for i, b := range bs {
		out[i] = b.id
	}
	sort.Ints(out)
	return out
}

func TestSelectMatchesLinearScan(t *testing.T) {
	boxes := randomBoxes(500)
	tree := New(boxBounds, 8, 3)
	tree.Update(math.Vec3Splat(-40), math.Vec3Splat(40), boxes)
	require.Len(t, tree.Root().Children, 8)

	cameras := []struct {
		name        string
		eye, target math.Vec3
	}{
		{"from front", math.NewVec3(0, 0, 60), math.Vec3Zero},
		{"from corner", math.NewVec3(45, 45, 45), math.Vec3Zero},
		{"inside looking out", math.Vec3Zero, math.NewVec3(1, 0, 0)},
		{"away from world", math.NewVec3(0, 0, 200), math.NewVec3(0, 0, 400)},
	}
	for _, cam := range cameras {
		t.Run(cam.name, func(t *testing.T) {
			planes := cameraPlanes(cam.eye, cam.target)

			var linear []*box
			for _, b := range boxes {
				if math.AABBIntersectsFrustum(b.min, b.max, planes) {
					linear = append(linear, b)
				}
			}
			assert.Equal(t, ids(linear), ids(tree.Select(planes, nil)))
		})
	}
}

func TestStraddlersStayAtParent(t *testing.T) {
	var boxes []*box
	for i := 0; i < 4; i++ {
		f := float32(i)
		boxes = append(boxes, &box{id: i, min: math.NewVec3(2+f, 2, 2), max: math.NewVec3(3+f, 3, 3)})
	}
	// crosses the x = 0 split plane
	straddler := &box{id: 99, min: math.NewVec3(-1, 1, 1), max: math.NewVec3(1, 2, 2)}
	boxes = append(boxes, straddler)

	tree := New(boxBounds, 2, 2)
	tree.Update(math.Vec3Splat(-10), math.Vec3Splat(10), boxes)

	root := tree.Root()
	require.NotNil(t, root.Children)
	assert.Equal(t, []*box{straddler}, root.Entries)

	// nothing duplicated across blocks
	total := 0
	var walk func(b *Block[*box])
	walk = func(b *Block[*box]) {
		total += len(b.Entries)
		for _, c := range b.Children {
			walk(c)
		}
	}
	walk(root)
	assert.Equal(t, len(boxes), total)
}

func TestOutOfBoundsEntitiesAreAlwaysTested(t *testing.T) {
	far := &box{id: 1, min: math.NewVec3(-1, -1, -120), max: math.NewVec3(1, 1, -118)}
	tree := New(boxBounds, DefaultMaxCapacity, DefaultMaxDepth)
	tree.Update(math.Vec3Splat(-10), math.Vec3Splat(10), []*box{far})

	// the camera sees past the world extents but not the world itself
	planes := cameraPlanes(math.NewVec3(0, 0, -100), math.NewVec3(0, 0, -200))
	assert.Equal(t, []*box{far}, tree.Select(planes, nil))
}

func TestEmptyTree(t *testing.T) {
	tree := New(boxBounds, 0, -1)
	assert.Equal(t, DefaultMaxCapacity, tree.MaxCapacity)
	assert.Equal(t, DefaultMaxDepth, tree.MaxDepth)
	assert.False(t, tree.Built())

	planes := cameraPlanes(math.NewVec3(0, 0, 5), math.Vec3Zero)
	assert.Empty(t, tree.Select(planes, nil))

	tree.Update(math.Vec3Splat(-1), math.Vec3Splat(1), nil)
	assert.True(t, tree.Built())
	assert.Empty(t, tree.Select(planes, nil))
}

func TestIntersectsRay(t *testing.T) {
	boxes := []*box{
		{id: 0, min: math.NewVec3(-1, -1, -1), max: math.NewVec3(1, 1, 1)},
		{id: 1, min: math.NewVec3(5, 5, 5), max: math.NewVec3(6, 6, 6)},
		{id: 2, min: math.NewVec3(-1, -1, -8), max: math.NewVec3(1, 1, -6)},
	}
	tree := New(boxBounds, 1, 2)
	tree.Update(math.Vec3Splat(-10), math.Vec3Splat(10), boxes)

	hits := tree.Intersects(math.NewRay(math.NewVec3(0, 0, 20), math.Vec3Back), nil)
	assert.Equal(t, []int{0, 2}, ids(hits))
}

func BenchmarkSelect(b *testing.B) {
	boxes := randomBoxes(5000)
	tree := New(boxBounds, DefaultMaxCapacity, 4)
	tree.Update(math.Vec3Splat(-40), math.Vec3Splat(40), boxes)
	planes := cameraPlanes(math.NewVec3(0, 0, 60), math.Vec3Zero)

	var dst []*box
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dst = tree.Select(planes, dst[:0])
	}
}
