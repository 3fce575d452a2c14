// Package io reads and writes scene content: Wavefront OBJ geometry and
// .gorscene layout files.
package io

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"scene-engine/core"
	"scene-engine/math"
	"scene-engine/scene"
)

// OBJData holds a parsed OBJ file before it becomes scene entities.
type OBJData struct {
	Name      string
	Meshes    []OBJMesh
	Materials map[string]*scene.StandardMaterial
}

// OBJMesh is one object or group of an OBJ file.
type OBJMesh struct {
	Name     string
	Vertices []core.Vertex
	Indices  []uint32
	Material string
}

func parseFloats(parts []string, n int) ([]float32, bool) {
	if len(parts) < n {
		return nil, false
	}
	out := make([]float32, n)
	for i := range out {
		f, err := strconv.ParseFloat(parts[i], 32)
		if err != nil {
			return nil, false
		}
		out[i] = float32(f)
	}
	return out, true
}

// LoadOBJ parses a Wavefront .obj file. Faces are fan-triangulated and
// every distinct v/vt/vn triple becomes one vertex.
func LoadOBJ(path string) (*OBJData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open OBJ file: %w", err)
	}
	defer f.Close()

	data := &OBJData{
		Name:      filepath.Base(path),
		Materials: make(map[string]*scene.StandardMaterial),
	}

	var positions []math.Vec3
	var normals []math.Vec3
	var uvs []math.Vec2

	current := OBJMesh{Name: "default"}
	currentMaterial := ""
	vertexMap := make(map[string]uint32) // "v/vt/vn" -> vertex index

	flush := func(next string) {
		if len(current.Vertices) > 0 {
			data.Meshes = append(data.Meshes, current)
		}
		current = OBJMesh{Name: next, Material: currentMaterial}
		vertexMap = make(map[string]uint32)
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)

		switch parts[0] {
		case "v":
			if v, ok := parseFloats(parts[1:], 3); ok {
				positions = append(positions, math.NewVec3(v[0], v[1], v[2]))
			}
		case "vn":
			if v, ok := parseFloats(parts[1:], 3); ok {
				normals = append(normals, math.NewVec3(v[0], v[1], v[2]))
			}
		case "vt":
			if v, ok := parseFloats(parts[1:], 2); ok {
				uvs = append(uvs, math.Vec2{X: v[0], Y: v[1]})
			}
		case "f":
			face := make([]uint32, 0, len(parts)-1)
			for _, spec := range parts[1:] {
				if idx, ok := vertexMap[spec]; ok {
					face = append(face, idx)
					continue
				}
				idx := uint32(len(current.Vertices))
				current.Vertices = append(current.Vertices, parseFaceVertex(spec, positions, normals, uvs))
				vertexMap[spec] = idx
				face = append(face, idx)
			}
			for i := 2; i < len(face); i++ {
				current.Indices = append(current.Indices, face[0], face[i-1], face[i])
			}
		case "o", "g":
			name := "unnamed"
			if len(parts) > 1 {
				name = parts[1]
			}
			flush(name)
		case "usemtl":
			if len(parts) > 1 {
				currentMaterial = parts[1]
				current.Material = currentMaterial
			}
		case "mtllib":
			if len(parts) > 1 {
				mtlPath := filepath.Join(filepath.Dir(path), parts[1])
				mtls, err := LoadMTL(mtlPath)
				if err != nil {
					slog.Warn("failed to load MTL file", "path", mtlPath, "err", err)
					continue
				}
				for k, v := range mtls {
					data.Materials[k] = v
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read OBJ file: %w", err)
	}
	flush("")

	if len(data.Meshes) == 0 {
		return nil, fmt.Errorf("no mesh data found in OBJ file %s", path)
	}
	return data, nil
}

// LoadMTL parses a Wavefront .mtl file into standard materials. Diffuse
// textures (map_Kd) are loaded relative to the .mtl file.
func LoadMTL(path string) (map[string]*scene.StandardMaterial, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	result := make(map[string]*scene.StandardMaterial)
	var current *scene.StandardMaterial

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)
		if parts[0] == "newmtl" {
			if len(parts) > 1 {
				current = scene.NewStandardMaterial(parts[1])
				result[parts[1]] = current
			}
			continue
		}
		if current == nil {
			continue
		}

		switch parts[0] {
		case "Kd":
			if c, ok := parseFloats(parts[1:], 3); ok {
				current.Albedo = core.Color{R: c[0], G: c[1], B: c[2], A: 1}
			}
		case "Ks":
			if c, ok := parseFloats(parts[1:], 3); ok {
				current.Specular = core.Color{R: c[0], G: c[1], B: c[2], A: 1}
			}
		case "Ke":
			if c, ok := parseFloats(parts[1:], 3); ok {
				current.EmissiveColor = core.Color{R: c[0], G: c[1], B: c[2], A: 1}
			}
		case "Ns":
			if v, ok := parseFloats(parts[1:], 1); ok {
				current.Shininess = v[0]
			}
		case "d", "Tr":
			if v, ok := parseFloats(parts[1:], 1); ok {
				d := v[0]
				if parts[0] == "Tr" {
					d = 1 - d
				}
				current.Alpha = math.Clamp(d, 0, 1)
			}
		case "map_Kd":
			if len(parts) > 1 {
				tex, err := scene.LoadTexture(filepath.Join(filepath.Dir(path), parts[len(parts)-1]))
				if err != nil {
					slog.Warn("failed to load diffuse map: " + err.Error())
					continue
				}
				current.AlbedoTexture = tex
			}
		}
	}
	return result, scanner.Err()
}

// ImportOBJ loads path and adds one mesh per OBJ object to s.
func ImportOBJ(path string, s *scene.Scene) ([]*scene.Mesh, error) {
	data, err := LoadOBJ(path)
	if err != nil {
		return nil, err
	}
	meshes := make([]*scene.Mesh, 0, len(data.Meshes))
	for _, om := range data.Meshes {
		m := scene.NewMesh(om.Name, s)
		m.SetGeometry(scene.NewGeometry(om.Vertices, om.Indices))
		if mat, ok := data.Materials[om.Material]; ok {
			m.Material = mat
		}
		meshes = append(meshes, m)
	}
	s.Logger().Debug("obj imported", "path", path, "meshes", len(meshes))
	return meshes, nil
}

// ExportOBJ writes meshes to path with their world transform baked into
// positions and normals.
func ExportOBJ(path string, meshes []*scene.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create OBJ file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "# scene-engine OBJ export")

	offset := uint32(0)
	for _, m := range meshes {
		if m.Geometry == nil || len(m.Geometry.Indices) == 0 {
			continue
		}
		world := m.ComputeWorldMatrix()
		fmt.Fprintf(w, "\no %s\n", m.Name)
		for _, v := range m.Geometry.Vertices {
			p := v.Position.TransformCoordinates(world)
			fmt.Fprintf(w, "v %g %g %g\n", p.X, p.Y, p.Z)
		}
		for _, v := range m.Geometry.Vertices {
			n := v.Normal.TransformNormal(world).Normalize()
			fmt.Fprintf(w, "vn %g %g %g\n", n.X, n.Y, n.Z)
		}
		for _, v := range m.Geometry.Vertices {
			fmt.Fprintf(w, "vt %g %g\n", v.UV.X, v.UV.Y)
		}
		idx := m.Geometry.Indices
		for i := 0; i+2 < len(idx); i += 3 {
			a, b, c := idx[i]+1+offset, idx[i+1]+1+offset, idx[i+2]+1+offset
			fmt.Fprintf(w, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
		}
		offset += uint32(len(m.Geometry.Vertices))
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write OBJ file: %w", err)
	}
	return nil
}

// parseFaceVertex resolves a "v/vt/vn" spec; negative indices count from
// the end.
func parseFaceVertex(spec string, positions, normals []math.Vec3, uvs []math.Vec2) core.Vertex {
	v := core.Vertex{Color: core.Color{R: 0.8, G: 0.8, B: 0.8, A: 1}}
	parts := strings.Split(spec, "/")

	resolve := func(i, n int) (int, bool) {
		if len(parts) <= i || parts[i] == "" {
			return 0, false
		}
		idx, err := strconv.Atoi(parts[i])
		if err != nil {
			return 0, false
		}
		if idx < 0 {
			idx = n + idx + 1
		}
		return idx - 1, idx > 0 && idx <= n
	}

	if i, ok := resolve(0, len(positions)); ok {
		v.Position = positions[i]
	}
	if i, ok := resolve(1, len(uvs)); ok {
		v.UV = uvs[i]
	}
	if i, ok := resolve(2, len(normals)); ok {
		v.Normal = normals[i]
	}
	return v
}
