package scene

import (
	"scene-engine/core"
	"scene-engine/math"
)

// DrawMode controls the primitive type used when rendering a mesh.
type DrawMode int

const (
	DrawTriangles DrawMode = iota // default
	DrawLines                     // pairs of indices form line segments
	DrawPoints
)

// Geometry holds CPU-side vertex/index data shared by one or more meshes.
// GPU upload is managed by the renderer backend.
type Geometry struct {
	Vertices []core.Vertex
	Indices  []uint32
	DrawMode DrawMode

	// GPUData is set by the renderer backend; do not access directly.
	GPUData any

	min, max  math.Vec3
	positions []math.Vec3
	delayed   bool
}

// NewGeometry wraps vertex data and pre-computes its local extents.
func NewGeometry(vertices []core.Vertex, indices []uint32) *Geometry {
	g := &Geometry{Vertices: vertices, Indices: indices}
	g.min, g.max = computeExtents(vertices, nil)
	return g
}

// NewDelayedGeometry returns an empty geometry that reports not ready until
// SetData is called.
func NewDelayedGeometry() *Geometry {
	return &Geometry{delayed: true}
}

func (g *Geometry) SetData(vertices []core.Vertex, indices []uint32) {
	g.Vertices = vertices
	g.Indices = indices
	g.min, g.max = computeExtents(vertices, nil)
	g.positions = nil
	g.delayed = false
	g.GPUData = nil
}

func (g *Geometry) IsReady() bool { return !g.delayed }

func (g *Geometry) TotalVertices() int { return len(g.Vertices) }

// Positions returns the vertex positions, cached until SetData.
func (g *Geometry) Positions() []math.Vec3 {
	if g.positions == nil && len(g.Vertices) > 0 {
		g.positions = make([]math.Vec3, len(g.Vertices))
		for i, v := range g.Vertices {
			g.positions[i] = v.Position
		}
	}
	return g.positions
}

func (g *Geometry) Extents() (math.Vec3, math.Vec3) { return g.min, g.max }

// computeExtents returns the tight box of the vertices, or of only the
// vertices referenced by indices when indices is non-nil.
func computeExtents(vertices []core.Vertex, indices []uint32) (math.Vec3, math.Vec3) {
	if len(vertices) == 0 {
		return math.Vec3Zero, math.Vec3Zero
	}
	if indices == nil {
		min, max := vertices[0].Position, vertices[0].Position
		for i := 1; i < len(vertices); i++ {
			min = min.Min(vertices[i].Position)
			max = max.Max(vertices[i].Position)
		}
		return min, max
	}
	if len(indices) == 0 {
		return math.Vec3Zero, math.Vec3Zero
	}
	min, max := vertices[indices[0]].Position, vertices[indices[0]].Position
	for _, idx := range indices[1:] {
		min = min.Min(vertices[idx].Position)
		max = max.Max(vertices[idx].Position)
	}
	return min, max
}

// Primitive generation helpers

// NewBoxGeometry builds a cube of the given edge length centered on the origin.
func NewBoxGeometry(size float32) *Geometry {
	s := size / 2
	faces := []struct {
		normal, u, v math.Vec3
	}{
		{math.Vec3Front, math.Vec3Right, math.Vec3Up},
		{math.Vec3Back, math.Vec3Left, math.Vec3Up},
		{math.Vec3Up, math.Vec3Right, math.Vec3Back},
		{math.Vec3Down, math.Vec3Right, math.Vec3Front},
		{math.Vec3Right, math.Vec3Back, math.Vec3Up},
		{math.Vec3Left, math.Vec3Front, math.Vec3Up},
	}
	corners := [4]math.Vec2{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}}

	vertices := make([]core.Vertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		base := uint32(len(vertices))
		for _, c := range corners {
			p := f.normal.Add(f.u.Mul(c.X)).Add(f.v.Mul(c.Y)).Mul(s)
			vertices = append(vertices, core.Vertex{
				Position: p,
				Normal:   f.normal,
				UV:       math.Vec2{X: (c.X + 1) / 2, Y: (c.Y + 1) / 2},
				Color:    core.ColorWhite,
			})
		}
		indices = append(indices, base, base+1, base+2, base+2, base+3, base)
	}
	return NewGeometry(vertices, indices)
}

// NewPlaneGeometry builds a square in the XY plane facing +Z.
func NewPlaneGeometry(size float32) *Geometry {
	s := size / 2
	n := math.Vec3Front
	vertices := []core.Vertex{
		{Position: math.Vec3{X: -s, Y: -s}, Normal: n, UV: math.Vec2{X: 0, Y: 0}, Color: core.ColorWhite},
		{Position: math.Vec3{X: s, Y: -s}, Normal: n, UV: math.Vec2{X: 1, Y: 0}, Color: core.ColorWhite},
		{Position: math.Vec3{X: s, Y: s}, Normal: n, UV: math.Vec2{X: 1, Y: 1}, Color: core.ColorWhite},
		{Position: math.Vec3{X: -s, Y: s}, Normal: n, UV: math.Vec2{X: 0, Y: 1}, Color: core.ColorWhite},
	}
	return NewGeometry(vertices, []uint32{0, 1, 2, 2, 3, 0})
}
