package scene

import (
	"scene-engine/core"
	"scene-engine/math"
)

// Light types
const (
	LightTypeDirectional = iota
	LightTypePoint
	LightTypeSpot
)

type Light struct {
	Name      string
	Type      int
	Position  math.Vec3
	Direction math.Vec3
	Color     core.Color
	Intensity float32
	Range     float32
	SpotAngle float32
	Enabled   bool

	ShadowGenerator *ShadowGenerator
}

func NewDirectionalLight(name string, direction math.Vec3, s *Scene) *Light {
	l := &Light{
		Name:      name,
		Type:      LightTypeDirectional,
		Direction: direction.Normalize(),
		Color:     core.ColorWhite,
		Intensity: 1,
		Enabled:   true,
	}
	if s != nil {
		s.AddLight(l)
	}
	return l
}

// ShadowGenerator owns the depth render target of a shadow-casting light.
type ShadowGenerator struct {
	Light     *Light
	ShadowMap *RenderTargetTexture
}

// NewShadowGenerator attaches a size x size shadow map to light. The map is
// refreshed every frame and registered with the light's scene textures.
func NewShadowGenerator(light *Light, size int, s *Scene) *ShadowGenerator {
	rt := NewRenderTargetTexture(light.Name+"_shadowMap", size, size, s)
	rt.RefreshRate = 1
	g := &ShadowGenerator{Light: light, ShadowMap: rt}
	light.ShadowGenerator = g
	return g
}

// AddShadowCaster adds mesh to the shadow map render list.
func (g *ShadowGenerator) AddShadowCaster(mesh *Mesh) {
	g.ShadowMap.RenderList = append(g.ShadowMap.RenderList, mesh)
}
