package render

import (
	"math"
	"testing"

	"github.com/taigrr/cheer/pkg/math3d"
)

func TestAttenuation(t *testing.T) {
	tests := []struct {
		d, cutoff, want float64
	}{
		{0, 50, 1},
		{25, 50, 0.25},
		{50, 50, 0},
		{80, 50, 0},
		{1000, 0, 1},
	}
	for _, tc := range tests {
		if got := Attenuation(tc.d, tc.cutoff); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("Attenuation(%v, %v) = %v, want %v", tc.d, tc.cutoff, got, tc.want)
		}
	}
}

func TestHexVec(t *testing.T) {
	got := HexVec(0xff8000)
	if got.X != 1 || math.Abs(got.Y-128.0/255) > 1e-9 || got.Z != 0 {
		t.Errorf("HexVec = %v", got)
	}
}

func TestIrradiancePointLight(t *testing.T) {
	rig := NewLightingRig(PointLight(0xffffff, math.Pi, 10, math3d.V3(0, 0, 5)))
	up := math3d.V3(0, 0, 1)

	// Facing the light at distance 5: (1 - 0.5)^2 = 0.25.
	got := rig.Irradiance(math3d.Zero3(), up)
	if math.Abs(got.X-0.25) > 1e-9 {
		t.Errorf("facing = %v, want 0.25", got.X)
	}

	// Facing away gets nothing.
	if got := rig.Irradiance(math3d.Zero3(), up.Negate()); got.X != 0 {
		t.Errorf("facing away = %v, want 0", got.X)
	}

	// Beyond the cutoff gets nothing.
	if got := rig.Irradiance(math3d.V3(0, 0, -20), up); got.X != 0 {
		t.Errorf("out of range = %v, want 0", got.X)
	}
}

func TestIrradianceAmbientTint(t *testing.T) {
	rig := NewLightingRig(AmbientLight(0xff0000, math.Pi))
	got := rig.Irradiance(math3d.Zero3(), math3d.V3(0, 1, 0))
	if math.Abs(got.X-1) > 1e-9 || got.Y != 0 || got.Z != 0 {
		t.Errorf("ambient red = %v", got)
	}
}

func TestShadeClamps(t *testing.T) {
	if got := Shade(RGB(200, 100, 0), math3d.V3(2, 0.5, 1)); got != RGB(255, 50, 0) {
		t.Errorf("Shade = %v", got)
	}
}
