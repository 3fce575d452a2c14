package main

import (
	"fmt"
	"time"

	"github.com/chewxy/math32"

	"scene-engine/core"
	"scene-engine/internal/opengl"
	"scene-engine/math"
	"scene-engine/scene"
)

// dayPalette holds the sky and light values for one key time of day.
type dayPalette struct {
	t            float32 // normalised time 0..1
	horizon      core.Color
	sunColor     core.Color
	sunIntensity float32
	ambient      core.Color
}

// palettes is ordered by t and wraps (0 == 1).
var palettes = []dayPalette{
	{ // noon
		t:            0.00,
		horizon:      core.Color{R: 0.58, G: 0.75, B: 0.95, A: 1},
		sunColor:     core.Color{R: 1.00, G: 0.98, B: 0.92, A: 1},
		sunIntensity: 1.20,
		ambient:      core.Color{R: 0.16, G: 0.18, B: 0.26, A: 1},
	},
	{ // golden hour
		t:            0.22,
		horizon:      core.Color{R: 0.90, G: 0.52, B: 0.18, A: 1},
		sunColor:     core.Color{R: 1.00, G: 0.65, B: 0.25, A: 1},
		sunIntensity: 0.90,
		ambient:      core.Color{R: 0.10, G: 0.12, B: 0.20, A: 1},
	},
	{ // dusk
		t:            0.30,
		horizon:      core.Color{R: 0.50, G: 0.22, B: 0.28, A: 1},
		sunColor:     core.Color{R: 0.70, G: 0.40, B: 0.55, A: 1},
		sunIntensity: 0.25,
		ambient:      core.Color{R: 0.06, G: 0.07, B: 0.14, A: 1},
	},
	{ // midnight, moonlight
		t:            0.50,
		horizon:      core.Color{R: 0.04, G: 0.04, B: 0.08, A: 1},
		sunColor:     core.Color{R: 0.40, G: 0.45, B: 0.65, A: 1},
		sunIntensity: 0.12,
		ambient:      core.Color{R: 0.03, G: 0.04, B: 0.09, A: 1},
	},
	{ // dawn
		t:            0.78,
		horizon:      core.Color{R: 0.88, G: 0.45, B: 0.22, A: 1},
		sunColor:     core.Color{R: 1.00, G: 0.60, B: 0.28, A: 1},
		sunIntensity: 0.70,
		ambient:      core.Color{R: 0.09, G: 0.10, B: 0.17, A: 1},
	},
}

// DayNight cycles the sun, the clear color and the ambient term. It runs as
// a scene animatable so it follows the scene clock and time scale.
type DayNight struct {
	Time   float32 // 0..1: 0=noon, 0.25=sunset, 0.5=midnight, 0.75=sunrise
	Cycle  time.Duration
	Active bool

	scene  *scene.Scene
	sun    *scene.Light
	drawer *opengl.Drawer
	last   time.Duration
	seen   bool
}

var _ scene.Animatable = (*DayNight)(nil)

func NewDayNight(s *scene.Scene, sun *scene.Light, drawer *opengl.Drawer) *DayNight {
	return &DayNight{
		Cycle:  2 * time.Minute,
		Active: true,
		scene:  s,
		sun:    sun,
		drawer: drawer,
	}
}

func (dn *DayNight) Animate(now time.Duration) bool {
	if dn.seen && dn.Active && dn.Cycle > 0 {
		dn.Time += float32((now - dn.last).Seconds() / dn.Cycle.Seconds())
		dn.Time -= math32.Floor(dn.Time)
	}
	dn.last, dn.seen = now, true
	dn.apply()
	return true
}

func (dn *DayNight) apply() {
	p := samplePalette(dn.Time)

	angle := dn.Time * 2 * math32.Pi
	if dn.sun != nil {
		dn.sun.Direction = math.Vec3{X: math32.Sin(angle), Y: -math32.Cos(angle), Z: 0.35}.Normalize()
		dn.sun.Color = p.sunColor
		dn.sun.Intensity = p.sunIntensity
	}
	dn.scene.ClearColor = p.horizon
	if dn.drawer != nil {
		dn.drawer.Ambient = p.ambient
	}
}

func lerpColor(a, b core.Color, t float32) core.Color {
	return core.Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: 1,
	}
}

// samplePalette interpolates the two keys around t, wrapping from the last
// key back to noon.
func samplePalette(t float32) dayPalette {
	n := len(palettes)
	a, b := palettes[n-1], palettes[0]
	span := 1 - a.t + b.t
	local := t - a.t
	if local < 0 {
		local += 1
	}
	for i := 0; i < n-1; i++ {
		if t >= palettes[i].t && t < palettes[i+1].t {
			a, b = palettes[i], palettes[i+1]
			span = b.t - a.t
			local = t - a.t
			break
		}
	}
	f := local / span
	return dayPalette{
		t:            t,
		horizon:      lerpColor(a.horizon, b.horizon, f),
		sunColor:     lerpColor(a.sunColor, b.sunColor, f),
		sunIntensity: a.sunIntensity + (b.sunIntensity-a.sunIntensity)*f,
		ambient:      lerpColor(a.ambient, b.ambient, f),
	}
}

// TimeOfDay returns a 12-hour clock label.
func (dn *DayNight) TimeOfDay() string {
	// noon is Time 0
	hours := math32.Mod(dn.Time*24+12, 24)
	h := int(hours)
	m := int((hours - float32(h)) * 60)
	period := "AM"
	if h >= 12 {
		period = "PM"
	}
	displayH := h % 12
	if displayH == 0 {
		displayH = 12
	}
	return fmt.Sprintf("%02d:%02d %s", displayH, m, period)
}
