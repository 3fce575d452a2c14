package scene

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"scene-engine/core"
	"scene-engine/math"
)

// ImportResult lists what ImportGLTF added to the scene.
type ImportResult struct {
	// Meshes holds one entity per glTF node, in document order.
	Meshes []*Mesh
	// Roots are the entities without a parent.
	Roots    []*Mesh
	Textures []*Texture
}

// ImportGLTF loads a .glb or .gltf file into s. Every node becomes a Mesh
// entity; a glTF mesh with several primitives becomes one geometry with one
// sub-mesh per primitive and a MultiMaterial. Metallic-roughness materials
// are approximated by StandardMaterial.
func ImportGLTF(path string, s *Scene) (*ImportResult, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	logger := s.logger
	result := &ImportResult{}

	textures := make([]*Texture, len(doc.Textures))
	for i, gt := range doc.Textures {
		if gt.Source == nil {
			continue
		}
		tex, err := loadGLTFImage(doc, *gt.Source, filepath.Dir(path))
		if err != nil {
			logger.Warn("gltf: skipping image", "image", *gt.Source, "err", err)
			continue
		}
		if tex != nil {
			textures[i] = tex
			result.Textures = append(result.Textures, tex)
		}
	}

	materials := make([]*StandardMaterial, len(doc.Materials))
	for i, gm := range doc.Materials {
		materials[i] = convertGLTFMaterial(gm, textures)
	}

	geometries := make([]*gltfGeometry, len(doc.Meshes))
	for mi, gm := range doc.Meshes {
		g, err := loadGLTFMesh(doc, gm, materials)
		if err != nil {
			logger.Warn("gltf: skipping mesh", "mesh", mi, "err", err)
			continue
		}
		geometries[mi] = g
	}

	meshes := make([]*Mesh, len(doc.Nodes))
	for i, gn := range doc.Nodes {
		name := gn.Name
		if name == "" {
			name = fmt.Sprintf("node_%d", i)
		}
		m := NewMesh(name, s)

		t := gn.TranslationOrDefault()
		sc := gn.ScaleOrDefault()
		r := gn.RotationOrDefault()
		m.Transform = core.Transform{
			Position: math.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])},
			Rotation: math.Quaternion{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])},
			Scale:    math.Vec3{X: float32(sc[0]), Y: float32(sc[1]), Z: float32(sc[2])},
		}
		m.MarkWorldMatrixDirty()

		if gn.Mesh != nil && *gn.Mesh < len(geometries) && geometries[*gn.Mesh] != nil {
			geometries[*gn.Mesh].apply(m)
		} else {
			// transform-only node
			m.IsPickable = false
		}
		meshes[i] = m
	}

	hasParent := make([]bool, len(meshes))
	for i, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if c < len(meshes) {
				meshes[i].AddChild(&meshes[c].Node)
				hasParent[c] = true
			}
		}
	}
	for i, m := range meshes {
		if !hasParent[i] {
			result.Roots = append(result.Roots, m)
		}
	}
	result.Meshes = meshes

	// bounds depend on parents wired above
	for _, m := range meshes {
		m.RefreshBoundingInfo()
	}
	s.logger.Debug("gltf imported", "path", path, "meshes", len(meshes), "textures", len(result.Textures))
	return result, nil
}

type primitiveRange struct {
	verticesStart, verticesCount int
	indexStart, indexCount       int
}

// gltfGeometry is one glTF mesh flattened into a single vertex and index
// buffer.
type gltfGeometry struct {
	name      string
	vertices  []core.Vertex
	indices   []uint32
	ranges    []primitiveRange
	materials []Material
}

func (g *gltfGeometry) apply(m *Mesh) {
	m.SetGeometry(NewGeometry(g.vertices, g.indices))
	if len(g.ranges) > 1 {
		m.SubMeshes = m.SubMeshes[:0]
		for i, r := range g.ranges {
			m.AddSubMesh(i, r.verticesStart, r.verticesCount, r.indexStart, r.indexCount)
		}
		m.Material = &MultiMaterial{Name: g.name, SubMaterials: g.materials}
	} else if len(g.materials) == 1 && g.materials[0] != nil {
		m.Material = g.materials[0]
	}
}

func loadGLTFMesh(doc *gltf.Document, gm *gltf.Mesh, materials []*StandardMaterial) (*gltfGeometry, error) {
	g := &gltfGeometry{name: gm.Name}
	for pi, prim := range gm.Primitives {
		verts, indices, err := loadGLTFPrimitive(doc, prim)
		if err != nil {
			return nil, fmt.Errorf("primitive %d: %w", pi, err)
		}
		base := uint32(len(g.vertices))
		if indices == nil {
			indices = make([]uint32, len(verts))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}
		g.ranges = append(g.ranges, primitiveRange{
			verticesStart: len(g.vertices),
			verticesCount: len(verts),
			indexStart:    len(g.indices),
			indexCount:    len(indices),
		})
		g.vertices = append(g.vertices, verts...)
		for _, idx := range indices {
			g.indices = append(g.indices, idx+base)
		}

		var mat Material
		if prim.Material != nil && *prim.Material < len(materials) {
			mat = materials[*prim.Material]
		}
		g.materials = append(g.materials, mat)
	}
	if len(g.ranges) == 0 {
		return nil, fmt.Errorf("mesh %q has no primitives", gm.Name)
	}
	return g, nil
}

func loadGLTFPrimitive(doc *gltf.Document, prim *gltf.Primitive) ([]core.Vertex, []uint32, error) {
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, nil, fmt.Errorf("positions: %w", err)
	}

	var (
		normals [][3]float32
		uvs     [][2]float32
	)
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, _ = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, _ = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
	}

	verts := make([]core.Vertex, len(positions))
	for i, p := range positions {
		v := core.Vertex{
			Position: math.Vec3{X: p[0], Y: p[1], Z: p[2]},
			Normal:   math.Vec3Up,
			Color:    core.ColorWhite,
		}
		if i < len(normals) {
			v.Normal = math.Vec3{X: normals[i][0], Y: normals[i][1], Z: normals[i][2]}
		}
		if i < len(uvs) {
			v.UV = math.Vec2{X: uvs[i][0], Y: uvs[i][1]}
		}
		verts[i] = v
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, nil, fmt.Errorf("indices: %w", err)
		}
	}
	return verts, indices, nil
}

func convertGLTFMaterial(gm *gltf.Material, textures []*Texture) *StandardMaterial {
	mat := NewStandardMaterial(gm.Name)
	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		cf := pbr.BaseColorFactorOrDefault()
		mat.Albedo = core.Color{R: float32(cf[0]), G: float32(cf[1]), B: float32(cf[2]), A: float32(cf[3])}
		mat.Alpha = float32(cf[3])
		if pbr.BaseColorTexture != nil {
			if idx := pbr.BaseColorTexture.Index; idx < len(textures) && textures[idx] != nil {
				mat.AlbedoTexture = textures[idx]
			}
		}
		// smooth surfaces get tight highlights, metals bright ones
		roughness := float32(pbr.RoughnessFactorOrDefault())
		metallic := float32(pbr.MetallicFactorOrDefault())
		mat.Shininess = (1-roughness)*(1-roughness)*128 + 1
		spec := metallic * 0.7
		mat.Specular = core.Color{R: spec, G: spec, B: spec, A: 1}
	}
	mat.AlphaTest = gm.AlphaMode == gltf.AlphaMask
	mat.BackFaceCull = !gm.DoubleSided
	return mat
}

func loadGLTFImage(doc *gltf.Document, source int, dir string) (*Texture, error) {
	img := doc.Images[source]
	switch {
	case img.BufferView != nil:
		raw, err := modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
		if err != nil {
			return nil, fmt.Errorf("buffer view: %w", err)
		}
		name := img.Name
		if name == "" {
			name = fmt.Sprintf("gltf_img_%d", source)
		}
		return decodeImageBytes(name, raw)
	case img.URI != "" && !img.IsEmbeddedResource():
		return LoadTexture(filepath.Join(dir, img.URI))
	}
	return nil, nil
}

func decodeImageBytes(name string, data []byte) (*Texture, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return &Texture{Name: name, Width: bounds.Dx(), Height: bounds.Dy(), Pixels: rgba.Pix}, nil
}
