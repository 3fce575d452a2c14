package scene

import (
	"github.com/chewxy/math32"

	"scene-engine/core"
	"scene-engine/math"
)

var primitiveColor = core.Color{R: 0.8, G: 0.8, B: 0.8, A: 1}

// NewSphereGeometry generates a UV sphere.
func NewSphereGeometry(radius float32, segments, rings int) *Geometry {
	segments = max(segments, 3)
	rings = max(rings, 2)

	vertices := make([]core.Vertex, 0, (rings+1)*(segments+1))
	indices := make([]uint32, 0, rings*segments*6)

	for ring := 0; ring <= rings; ring++ {
		phi := float32(ring) * math32.Pi / float32(rings)
		sinPhi, cosPhi := math32.Sincos(phi)

		for seg := 0; seg <= segments; seg++ {
			theta := float32(seg) * 2 * math32.Pi / float32(segments)
			sinTheta, cosTheta := math32.Sincos(theta)

			normal := math.Vec3{X: sinPhi * cosTheta, Y: cosPhi, Z: sinPhi * sinTheta}
			vertices = append(vertices, core.Vertex{
				Position: normal.Mul(radius),
				Normal:   normal,
				UV:       math.Vec2{X: float32(seg) / float32(segments), Y: float32(ring) / float32(rings)},
				Color:    primitiveColor,
			})
		}
	}

	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			current := uint32(ring*(segments+1) + seg)
			next := current + uint32(segments+1)
			indices = append(indices, current, next, current+1, current+1, next, next+1)
		}
	}
	return NewGeometry(vertices, indices)
}

// NewTorusGeometry generates a torus around the Y axis.
func NewTorusGeometry(majorRadius, minorRadius float32, majorSegments, minorSegments int) *Geometry {
	majorSegments = max(majorSegments, 3)
	minorSegments = max(minorSegments, 3)

	var (
		vertices []core.Vertex
		indices  []uint32
	)
	for i := 0; i <= majorSegments; i++ {
		sinTheta, cosTheta := math32.Sincos(float32(i) * 2 * math32.Pi / float32(majorSegments))
		for j := 0; j <= minorSegments; j++ {
			sinPhi, cosPhi := math32.Sincos(float32(j) * 2 * math32.Pi / float32(minorSegments))
			ring := majorRadius + minorRadius*cosPhi

			vertices = append(vertices, core.Vertex{
				Position: math.Vec3{X: ring * cosTheta, Y: minorRadius * sinPhi, Z: ring * sinTheta},
				Normal:   math.Vec3{X: cosPhi * cosTheta, Y: sinPhi, Z: cosPhi * sinTheta}.Normalize(),
				UV:       math.Vec2{X: float32(i) / float32(majorSegments), Y: float32(j) / float32(minorSegments)},
				Color:    primitiveColor,
			})
		}
	}

	for i := 0; i < majorSegments; i++ {
		for j := 0; j < minorSegments; j++ {
			current := uint32(i*(minorSegments+1) + j)
			next := uint32((i+1)*(minorSegments+1) + j)
			indices = append(indices, current, next, current+1, current+1, next, next+1)
		}
	}
	return NewGeometry(vertices, indices)
}

// NewSphere creates a sphere mesh of the given diameter.
func NewSphere(name string, diameter float32, segments int, s *Scene) *Mesh {
	m := NewMesh(name, s)
	m.SetGeometry(NewSphereGeometry(diameter/2, segments*2, segments))
	return m
}

func NewTorus(name string, majorRadius, minorRadius float32, segments int, s *Scene) *Mesh {
	m := NewMesh(name, s)
	m.SetGeometry(NewTorusGeometry(majorRadius, minorRadius, segments, segments/2))
	return m
}

// NewTiledGround creates a square XZ ground of tiles x tiles quads, each its
// own sub-mesh so that tiles are culled and picked independently.
func NewTiledGround(name string, size float32, tiles int, s *Scene) *Mesh {
	tiles = max(tiles, 1)
	tile := size / float32(tiles)
	half := size / 2

	vertices := make([]core.Vertex, 0, tiles*tiles*4)
	indices := make([]uint32, 0, tiles*tiles*6)
	for z := 0; z < tiles; z++ {
		for x := 0; x < tiles; x++ {
			x0 := -half + float32(x)*tile
			z0 := -half + float32(z)*tile
			base := uint32(len(vertices))
			for _, c := range [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}} {
				vertices = append(vertices, core.Vertex{
					Position: math.Vec3{X: x0 + c[0]*tile, Z: z0 + c[1]*tile},
					Normal:   math.Vec3Up,
					UV:       math.Vec2{X: c[0], Y: c[1]},
					Color:    primitiveColor,
				})
			}
			indices = append(indices, base, base+3, base+1, base+1, base+3, base+2)
		}
	}

	m := NewMesh(name, s)
	m.SetGeometry(NewGeometry(vertices, indices))
	m.SubMeshes = m.SubMeshes[:0]
	for i := 0; i < tiles*tiles; i++ {
		m.AddSubMesh(0, i*4, 4, i*6, 6)
	}
	m.RefreshBoundingInfo()
	return m
}
