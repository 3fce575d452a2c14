package scene

import (
	"github.com/chewxy/math32"

	"scene-engine/core"
	"scene-engine/math"
)

// Sprite is a camera-facing quad owned by a SpriteManager.
type Sprite struct {
	Name          string
	Position      math.Vec3
	Width, Height float32
	Angle         float32
	Color         core.Color
	CellIndex     int
	IsPickable    bool
	IsVisible     bool
	ActionManager ActionManager

	manager *SpriteManager
}

func (sp *Sprite) Manager() *SpriteManager { return sp.manager }

func (sp *Sprite) Dispose() {
	if sp.manager != nil {
		sp.manager.RemoveSprite(sp)
	}
}

// SpriteManager batches sprites sharing one texture atlas.
type SpriteManager struct {
	Name             string
	Capacity         int
	CellSize         int
	Texture          *Texture
	IsPickable       bool
	LayerMask        uint32
	RenderingGroupID int
	Sprites          []*Sprite
}

func NewSpriteManager(name string, capacity, cellSize int, s *Scene) *SpriteManager {
	sm := &SpriteManager{
		Name:      name,
		Capacity:  capacity,
		CellSize:  cellSize,
		LayerMask: 0x0FFFFFFF,
	}
	if s != nil {
		s.AddSpriteManager(sm)
	}
	return sm
}

// NewSprite adds a 1x1 sprite to the manager.
func (sm *SpriteManager) NewSprite(name string) *Sprite {
	sp := &Sprite{
		Name:      name,
		Width:     1,
		Height:    1,
		Color:     core.ColorWhite,
		IsVisible: true,
		manager:   sm,
	}
	sm.Sprites = append(sm.Sprites, sp)
	return sp
}

func (sm *SpriteManager) RemoveSprite(sp *Sprite) {
	for i, cur := range sm.Sprites {
		if cur == sp {
			sm.Sprites = append(sm.Sprites[:i], sm.Sprites[i+1:]...)
			sp.manager = nil
			return
		}
	}
}

// Intersects tests a camera-space ray against every eligible sprite and
// keeps the nearest. predicate defaults to IsPickable and IsVisible.
func (sm *SpriteManager) Intersects(ray math.Ray, camera *Camera, predicate func(*Sprite) bool, fastCheck bool) PickingInfo {
	count := len(sm.Sprites)
	if sm.Capacity > 0 && sm.Capacity < count {
		count = sm.Capacity
	}

	view := camera.GetViewMatrix()
	distance := float32(math32.MaxFloat32)
	var current *Sprite

	for _, sp := range sm.Sprites[:count] {
		if predicate != nil {
			if !predicate(sp) {
				continue
			}
		} else if !sp.IsPickable || !sp.IsVisible {
			continue
		}

		p := sp.Position.TransformCoordinates(view)
		min := math.Vec3{X: p.X - sp.Width/2, Y: p.Y - sp.Height/2, Z: p.Z}
		max := math.Vec3{X: p.X + sp.Width/2, Y: p.Y + sp.Height/2, Z: p.Z}
		if !ray.IntersectsBoxMinMax(min, max) {
			continue
		}
		d := p.Distance(ray.Origin)
		if distance > d {
			distance = d
			current = sp
			if fastCheck {
				break
			}
		}
	}

	if current == nil {
		return PickingInfo{}
	}
	return PickingInfo{Hit: true, Distance: distance, PickedSprite: current}
}
