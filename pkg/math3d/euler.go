package math3d

// Euler is an orientation in radians, applied in X, Y, Z order.
type Euler struct {
	Pitch float64 // about X
	Yaw   float64 // about Y
	Roll  float64 // about Z
}

// Matrix returns RotateX(Pitch) * RotateY(Yaw) * RotateZ(Roll).
func (e Euler) Matrix() Mat4 {
	return RotateX(e.Pitch).Mul(RotateY(e.Yaw)).Mul(RotateZ(e.Roll))
}

// TRS composes a model matrix: translate, then rotate, then scale, read
// right to left as applied to a vertex.
func TRS(position Vec3, rotation Euler, scale Vec3) Mat4 {
	return Translate(position).Mul(rotation.Matrix()).Mul(Scale(scale))
}
