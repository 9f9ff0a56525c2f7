package scene

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/cheer/pkg/math3d"
)

func TestNormalize(t *testing.T) {
	vp := Viewport{Width: 200, Height: 100}

	tests := []struct {
		name   string
		px, py float64
		want   Pointer
	}{
		{"centre", 100, 50, Pointer{0, 0}},
		{"top-left", 0, 0, Pointer{-1, 1}},
		{"bottom-right", 200, 100, Pointer{1, -1}},
		{"top-right", 200, 0, Pointer{1, 1}},
		{"quarter", 50, 75, Pointer{-0.5, -0.5}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.px, tc.py, vp)
			assert.InDelta(t, tc.want.X, got.X, 1e-12)
			assert.InDelta(t, tc.want.Y, got.Y, 1e-12)
		})
	}
}

func TestNormalizeStaysInRange(t *testing.T) {
	vp := Viewport{Width: 80, Height: 48}
	for px := 0; px <= vp.Width; px += 7 {
		for py := 0; py <= vp.Height; py += 5 {
			p := Normalize(float64(px), float64(py), vp)
			assert.GreaterOrEqual(t, p.X, -1.0)
			assert.LessOrEqual(t, p.X, 1.0)
			assert.GreaterOrEqual(t, p.Y, -1.0)
			assert.LessOrEqual(t, p.Y, 1.0)
		}
	}
}

func TestNormalizeEmptyViewport(t *testing.T) {
	assert.Equal(t, Pointer{}, Normalize(10, 10, Viewport{}))
}

func TestOrient(t *testing.T) {
	vp := Viewport{Width: 120, Height: 60}
	m := NewModel("dragon", triangleMesh(), nil, DefaultPlacement())

	m.Orient(Normalize(0, 0, vp))
	assert.InDelta(t, -math.Pi, m.Rotation.Yaw, 1e-12)
	assert.InDelta(t, math.Pi/2, m.Rotation.Pitch, 1e-12)

	m.Orient(Normalize(120, 60, vp))
	assert.InDelta(t, math.Pi, m.Rotation.Yaw, 1e-12)
	assert.InDelta(t, -math.Pi/2, m.Rotation.Pitch, 1e-12)

	m.Rotation.Roll = 0.3
	m.Orient(Normalize(60, 30, vp))
	assert.Equal(t, math3d.Euler{Roll: 0.3}, m.Rotation)
}

func TestNewModelPlacement(t *testing.T) {
	m := NewModel("dragon", triangleMesh(), nil, DefaultPlacement())

	assert.Equal(t, math3d.V3(0, -1.5, 0), m.Position)
	assert.Equal(t, 0.5, m.Scale)
	assert.InDelta(t, math.Pi, m.Rotation.Yaw, 1e-12)

	// Yaw of pi mirrors X, then the half scale and drop apply.
	p := m.Transform().MulVec3(math3d.V3(1, 0, 0))
	assert.InDelta(t, -0.5, p.X, 1e-9)
	assert.InDelta(t, -1.5, p.Y, 1e-9)
	assert.InDelta(t, 0, p.Z, 1e-9)
}

func TestAttachOnce(t *testing.T) {
	s := NewScene(Background)
	require.Nil(t, s.Model())

	first := NewModel("a", triangleMesh(), nil, DefaultPlacement())
	require.NoError(t, s.Attach(first))
	assert.ErrorIs(t, s.Attach(NewModel("b", triangleMesh(), nil, DefaultPlacement())), ErrModelAttached)
	assert.Same(t, first, s.Model())
}

func TestDefaultRig(t *testing.T) {
	rig := DefaultRig()
	require.Len(t, rig.Lights, 3)
	for _, l := range rig.Lights[1:] {
		assert.Equal(t, 50.0, l.Distance)
		assert.Equal(t, 2.0, l.Intensity)
	}
	assert.Equal(t, 1.5, rig.Lights[0].Intensity)
}
