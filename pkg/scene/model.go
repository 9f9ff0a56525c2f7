package scene

import (
	"math"

	"github.com/taigrr/cheer/pkg/math3d"
	"github.com/taigrr/cheer/pkg/models"
	"github.com/taigrr/cheer/pkg/render"
)

// Placement is where a freshly loaded model is put.
type Placement struct {
	Position math3d.Vec3
	Scale    float64
	Yaw      float64
}

// DefaultPlacement turns the model to face the camera, halves it, and drops
// it below centre so the title and quote stay clear.
func DefaultPlacement() Placement {
	return Placement{
		Position: math3d.V3(0, -1.5, 0),
		Scale:    0.5,
		Yaw:      math.Pi,
	}
}

// Model is the one loaded asset in the scene.
type Model struct {
	Name     string
	Mesh     *models.Mesh
	Texture  *render.Texture // nil when the asset has no base color image
	Position math3d.Vec3
	Scale    float64
	Rotation math3d.Euler
}

// NewModel places mesh according to p.
func NewModel(name string, mesh *models.Mesh, tex *render.Texture, p Placement) *Model {
	return &Model{
		Name:     name,
		Mesh:     mesh,
		Texture:  tex,
		Position: p.Position,
		Scale:    p.Scale,
		Rotation: math3d.Euler{Yaw: p.Yaw},
	}
}

// Transform returns the model matrix.
func (m *Model) Transform() math3d.Mat4 {
	return math3d.TRS(m.Position, m.Rotation, math3d.V3(m.Scale, m.Scale, m.Scale))
}

// Orient points the model at p. Yaw and pitch are overwritten; roll is kept.
func (m *Model) Orient(p Pointer) {
	m.Rotation.Yaw = p.X * math.Pi
	m.Rotation.Pitch = p.Y * math.Pi * 0.5
}
