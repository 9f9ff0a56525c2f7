// Package scene drives the single-model scene: it owns the camera, the
// render surface and the model, and turns pointer and resize events into
// changes to them.
package scene

// Viewport is the size of the render surface in pixels.
type Viewport struct {
	Width  int
	Height int
}

// Aspect returns Width/Height, or 1 for an empty viewport.
func (v Viewport) Aspect() float64 {
	if v.Height <= 0 {
		return 1
	}
	return float64(v.Width) / float64(v.Height)
}

// Pointer is a position in normalized device coordinates. X runs -1 (left)
// to 1 (right) and Y runs 1 (top) to -1 (bottom).
type Pointer struct {
	X, Y float64
}

// Normalize maps a surface pixel position to NDC. An empty viewport maps
// everything to the centre.
func Normalize(px, py float64, vp Viewport) Pointer {
	if vp.Width <= 0 || vp.Height <= 0 {
		return Pointer{}
	}
	return Pointer{
		X: px/float64(vp.Width)*2 - 1,
		Y: -(py/float64(vp.Height))*2 + 1,
	}
}
