package render

import (
	"math"

	"github.com/taigrr/cheer/pkg/math3d"
)

// LightKind distinguishes the light sources a rig can hold.
type LightKind int

const (
	LightAmbient LightKind = iota
	LightPoint
)

// Light is one source. Color is linear RGB in 0-1. Position and Distance
// only matter for point lights; Distance is the radius past which the light
// contributes nothing.
type Light struct {
	Kind      LightKind
	Color     math3d.Vec3
	Intensity float64
	Position  math3d.Vec3
	Distance  float64
}

// AmbientLight creates an ambient light from a 0xRRGGBB color.
func AmbientLight(hex uint32, intensity float64) Light {
	return Light{Kind: LightAmbient, Color: HexVec(hex), Intensity: intensity}
}

// PointLight creates a point light from a 0xRRGGBB color.
func PointLight(hex uint32, intensity, distance float64, pos math3d.Vec3) Light {
	return Light{
		Kind:      LightPoint,
		Color:     HexVec(hex),
		Intensity: intensity,
		Position:  pos,
		Distance:  distance,
	}
}

// HexVec converts 0xRRGGBB to an RGB vector in 0-1.
func HexVec(hex uint32) math3d.Vec3 {
	return math3d.V3(
		float64((hex>>16)&0xff)/255,
		float64((hex>>8)&0xff)/255,
		float64(hex&0xff)/255,
	)
}

// Attenuation is the falloff of a point light at distance d. It is 1 at the
// light, 0 at and beyond cutoff, and falls off quadratically between. A
// cutoff of zero means no falloff.
func Attenuation(d, cutoff float64) float64 {
	if cutoff <= 0 {
		return 1
	}
	if d >= cutoff {
		return 0
	}
	f := 1 - d/cutoff
	return f * f
}

// LightingRig is the fixed set of lights in a scene.
type LightingRig struct {
	Lights []Light
}

// NewLightingRig creates a rig from lights.
func NewLightingRig(lights ...Light) *LightingRig {
	return &LightingRig{Lights: lights}
}

// Irradiance returns the Lambert-weighted light reaching a surface point p
// with unit normal n, per channel. It is not clamped.
func (r *LightingRig) Irradiance(p, n math3d.Vec3) math3d.Vec3 {
	var sum math3d.Vec3
	for _, l := range r.Lights {
		switch l.Kind {
		case LightAmbient:
			sum = sum.Add(l.Color.Scale(l.Intensity))
		case LightPoint:
			toLight := l.Position.Sub(p)
			d := toLight.Len()
			if d == 0 {
				continue
			}
			ndotl := n.Dot(toLight.Scale(1 / d))
			if ndotl <= 0 {
				continue
			}
			sum = sum.Add(l.Color.Scale(l.Intensity * ndotl * Attenuation(d, l.Distance)))
		}
	}
	return sum.Scale(1 / math.Pi)
}

// Shade multiplies base by light and clamps each channel.
func Shade(base Color, light math3d.Vec3) Color {
	return Color{
		R: clamp8(float64(base.R) * light.X),
		G: clamp8(float64(base.G) * light.Y),
		B: clamp8(float64(base.B) * light.Z),
		A: 255,
	}
}

func clamp8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}
