package scene

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"scene-engine/core"
)

// Material is what the visibility pass needs to know about a surface.
type Material interface {
	IsReady(mesh *Mesh) bool
	// RenderTargetTextures lists textures that must be rendered before the
	// material can be drawn (mirrors, refraction).
	RenderTargetTextures() []*RenderTargetTexture
	NeedAlphaBlending() bool
	NeedAlphaTesting() bool
}

// StandardMaterial describes surface appearance for the default shaders.
type StandardMaterial struct {
	Name          string
	Albedo        core.Color
	Specular      core.Color
	Shininess     float32
	EmissiveColor core.Color
	Unlit         bool
	Alpha         float32
	AlphaTest     bool
	BackFaceCull  bool

	AlbedoTexture     *Texture
	ReflectionTexture *RenderTargetTexture
}

// NewStandardMaterial creates a white matte material.
func NewStandardMaterial(name string) *StandardMaterial {
	return &StandardMaterial{
		Name:         name,
		Albedo:       core.ColorWhite,
		Specular:     core.Color{R: 0.3, G: 0.3, B: 0.3, A: 1},
		Shininess:    32,
		Alpha:        1,
		BackFaceCull: true,
	}
}

func (m *StandardMaterial) IsReady(mesh *Mesh) bool {
	return m.AlbedoTexture == nil || m.AlbedoTexture.IsReady()
}

func (m *StandardMaterial) RenderTargetTextures() []*RenderTargetTexture {
	if m.ReflectionTexture == nil {
		return nil
	}
	return []*RenderTargetTexture{m.ReflectionTexture}
}

func (m *StandardMaterial) NeedAlphaBlending() bool { return m.Alpha < 1 }

func (m *StandardMaterial) NeedAlphaTesting() bool { return m.AlphaTest }

// MultiMaterial selects a material per sub-mesh through SubMesh.MaterialIndex.
type MultiMaterial struct {
	Name         string
	SubMaterials []Material
}

func (m *MultiMaterial) SubMaterial(index int) Material {
	if index < 0 || index >= len(m.SubMaterials) {
		return nil
	}
	return m.SubMaterials[index]
}

func (m *MultiMaterial) IsReady(mesh *Mesh) bool {
	for _, sub := range m.SubMaterials {
		if sub != nil && !sub.IsReady(mesh) {
			return false
		}
	}
	return true
}

func (m *MultiMaterial) RenderTargetTextures() []*RenderTargetTexture {
	var out []*RenderTargetTexture
	for _, sub := range m.SubMaterials {
		if sub != nil {
			out = append(out, sub.RenderTargetTextures()...)
		}
	}
	return out
}

func (m *MultiMaterial) NeedAlphaBlending() bool { return false }

func (m *MultiMaterial) NeedAlphaTesting() bool { return false }

// Texture holds CPU-side RGBA8 pixels. A texture without pixels is still
// loading and makes its material not ready.
type Texture struct {
	Name   string
	Width  int
	Height int
	Pixels []byte
	// GLID is set by the OpenGL backend after upload.
	GLID uint32
}

func (t *Texture) IsReady() bool { return len(t.Pixels) > 0 }

// LoadTexture reads a PNG or JPEG file and converts it to RGBA8.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture %q: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %q: %w", path, err)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	return &Texture{
		Name:   path,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Pixels: rgba.Pix,
	}, nil
}

// NewSolidTexture creates a 1x1 texture of the given color.
func NewSolidTexture(name string, r, g, b, a uint8) *Texture {
	return &Texture{Name: name, Width: 1, Height: 1, Pixels: []byte{r, g, b, a}}
}
