package scene

import (
	"errors"

	"github.com/taigrr/cheer/pkg/math3d"
	"github.com/taigrr/cheer/pkg/render"
)

// ErrModelAttached is returned when a model is attached a second time.
var ErrModelAttached = errors.New("model already attached")

// Background is the default clear color.
var Background = render.Hex(0xf8f0e3)

// DefaultRig is a warm ambient fill with a pink key light up-left and a
// green one down-right.
func DefaultRig() *render.LightingRig {
	return render.NewLightingRig(
		render.AmbientLight(0xf0e1d6, 1.5),
		render.PointLight(0xffa0b0, 2, 50, math3d.V3(-5, 5, 5)),
		render.PointLight(0xa8f0a1, 2, 50, math3d.V3(5, -5, 5)),
	)
}

// Scene holds the lights, the background and at most one model.
type Scene struct {
	Rig        *render.LightingRig
	Background render.Color

	model *Model
}

// NewScene creates an empty scene with the default rig.
func NewScene(bg render.Color) *Scene {
	return &Scene{Rig: DefaultRig(), Background: bg}
}

// Attach adds m to the scene. Only one model can ever be attached.
func (s *Scene) Attach(m *Model) error {
	if s.model != nil {
		return ErrModelAttached
	}
	s.model = m
	return nil
}

// Model returns the attached model, or nil before one is loaded.
func (s *Scene) Model() *Model {
	return s.model
}
