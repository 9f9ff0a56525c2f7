package render

import (
	"math"

	"github.com/taigrr/cheer/pkg/math3d"
)

// Vertex carries the attributes interpolated across a triangle.
type Vertex struct {
	Position math3d.Vec3 // world space
	Normal   math3d.Vec3
	UV       math3d.Vec2
	Color    Color       // lit color, used when no texture is bound
	Light    math3d.Vec3 // per-channel light, used with a texture
}

// Triangle is three world-space vertices.
type Triangle struct {
	V [3]Vertex
}

// MeshRenderer is the read side of a mesh. It mirrors models.Mesh so the
// render package does not import models.
type MeshRenderer interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2)
	GetFace(i int) [3]int
}

// BoundedMeshRenderer is a mesh that can be frustum culled.
type BoundedMeshRenderer interface {
	MeshRenderer
	GetBounds() (min, max math3d.Vec3)
}

// ColoredMeshRenderer is a mesh with a per-face base color.
type ColoredMeshRenderer interface {
	MeshRenderer
	FaceBaseColor(i int) (r, g, b uint8)
}

// Rasterizer draws triangles into a framebuffer with a depth test.
type Rasterizer struct {
	camera  *Camera
	fb      *Framebuffer
	zbuffer []float64

	// Culled counts meshes skipped by the frustum test since the last
	// ClearDepth.
	Culled int
}

// NewRasterizer creates a rasterizer drawing through camera into fb.
func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{camera: camera, fb: fb}
	r.Resize()
	return r
}

// Resize reallocates the depth buffer to match the framebuffer.
func (r *Rasterizer) Resize() {
	r.zbuffer = make([]float64, r.fb.Width*r.fb.Height)
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int { return r.fb.Width }

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int { return r.fb.Height }

// ClearDepth resets the depth buffer. Call once per frame.
func (r *Rasterizer) ClearDepth() {
	n := len(r.zbuffer)
	r.Culled = 0
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// depthTest writes z at (x, y) if it is nearer than what is there.
func (r *Rasterizer) depthTest(x, y int, z float64) bool {
	i := y*r.fb.Width + x
	if z >= r.zbuffer[i] {
		return false
	}
	r.zbuffer[i] = z
	return true
}

type screenVertex struct {
	X, Y, Z float64
	InvW    float64
}

// project maps a triangle to screen space. It reports false when the
// triangle is behind the camera or back-facing.
func (r *Rasterizer) project(tri *Triangle) ([3]screenVertex, bool) {
	var sv [3]screenVertex
	viewProj := r.camera.ViewProjectionMatrix()
	w, h := float64(r.Width()), float64(r.Height())

	for i := range 3 {
		clip := viewProj.MulVec4(math3d.V4FromV3(tri.V[i].Position, 1))
		// Near-plane clipping is not done; drop anything touching it.
		if clip.W <= 0 {
			return sv, false
		}
		ndc := clip.PerspectiveDivide()
		sv[i] = screenVertex{
			X:    (ndc.X + 1) * 0.5 * w,
			Y:    (1 - ndc.Y) * 0.5 * h,
			Z:    ndc.Z,
			InvW: 1 / clip.W,
		}
	}

	cross := (sv[1].X-sv[0].X)*(sv[2].Y-sv[0].Y) - (sv[1].Y-sv[0].Y)*(sv[2].X-sv[0].X)
	return sv, cross > 0
}

// raster walks the covered pixels of a projected triangle and calls plot
// with perspective-corrected barycentrics for each one that passes the
// depth test.
func (r *Rasterizer) raster(sv [3]screenVertex, plot func(x, y int, b0, b1, b2 float64)) {
	minX := max(0, int(math.Floor(min(sv[0].X, sv[1].X, sv[2].X))))
	maxX := min(r.Width()-1, int(math.Ceil(max(sv[0].X, sv[1].X, sv[2].X))))
	minY := max(0, int(math.Floor(min(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := min(r.Height()-1, int(math.Ceil(max(sv[0].Y, sv[1].Y, sv[2].Y))))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			bc := barycentric(sv[0].X, sv[0].Y, sv[1].X, sv[1].Y, sv[2].X, sv[2].Y, float64(x)+0.5, float64(y)+0.5)
			if bc.X < 0 || bc.Y < 0 || bc.Z < 0 {
				continue
			}
			z := bc.X*sv[0].Z + bc.Y*sv[1].Z + bc.Z*sv[2].Z
			if !r.depthTest(x, y, z) {
				continue
			}

			w0, w1, w2 := bc.X*sv[0].InvW, bc.Y*sv[1].InvW, bc.Z*sv[2].InvW
			sum := w0 + w1 + w2
			if sum == 0 {
				continue
			}
			plot(x, y, w0/sum, w1/sum, w2/sum)
		}
	}
}

// DrawTriangle fills a triangle with interpolated vertex colors.
func (r *Rasterizer) DrawTriangle(tri Triangle) {
	sv, ok := r.project(&tri)
	if !ok {
		return
	}
	c0, c1, c2 := tri.V[0].Color, tri.V[1].Color, tri.V[2].Color
	r.raster(sv, func(x, y int, b0, b1, b2 float64) {
		r.fb.SetPixel(x, y, interpolateColor3(c0, c1, c2, math3d.V3(b0, b1, b2)))
	})
}

// DrawTriangleTextured samples tex with perspective-correct UVs and
// modulates it by the interpolated per-vertex light.
func (r *Rasterizer) DrawTriangleTextured(tri Triangle, tex *Texture) {
	sv, ok := r.project(&tri)
	if !ok {
		return
	}
	v := tri.V
	r.raster(sv, func(x, y int, b0, b1, b2 float64) {
		u := b0*v[0].UV.X + b1*v[1].UV.X + b2*v[2].UV.X
		w := b0*v[0].UV.Y + b1*v[1].UV.Y + b2*v[2].UV.Y
		light := v[0].Light.Scale(b0).Add(v[1].Light.Scale(b1)).Add(v[2].Light.Scale(b2))
		r.fb.SetPixel(x, y, Shade(tex.Sample(u, w), light))
	})
}

// culled reports whether a bounded mesh is entirely outside the frustum.
func (r *Rasterizer) culled(mesh MeshRenderer, transform math3d.Mat4) bool {
	bounded, ok := mesh.(BoundedMeshRenderer)
	if !ok {
		return false
	}
	lo, hi := bounded.GetBounds()
	world := AABB{Min: lo, Max: hi}.Transform(transform)
	if NewFrustumFromMatrix(r.camera.ViewProjectionMatrix()).IntersectAABB(world) {
		return false
	}
	r.Culled++
	return true
}

// DrawMeshLit draws mesh with Gouraud shading from rig. Light is computed
// per vertex in world space. With a texture the light modulates the
// sampled texel; without one it modulates the face base color (white when
// the mesh has no per-face colors).
func (r *Rasterizer) DrawMeshLit(mesh MeshRenderer, transform math3d.Mat4, tex *Texture, rig *LightingRig) {
	if r.culled(mesh, transform) {
		return
	}
	colored, hasColors := mesh.(ColoredMeshRenderer)

	for i := range mesh.TriangleCount() {
		face := mesh.GetFace(i)
		base := ColorWhite
		if hasColors {
			base = RGB(colored.FaceBaseColor(i))
		}

		var tri Triangle
		for k := range 3 {
			p, n, uv := mesh.GetVertex(face[k])
			wp := transform.MulVec3(p)
			wn := transform.MulVec3Dir(n).Normalize()
			light := rig.Irradiance(wp, wn)
			tri.V[k] = Vertex{
				Position: wp,
				Normal:   wn,
				UV:       uv,
				Color:    Shade(base, light),
				Light:    light,
			}
		}

		if tex != nil {
			r.DrawTriangleTextured(tri, tex)
		} else {
			r.DrawTriangle(tri)
		}
	}
}

// DrawMeshWireframe draws every triangle edge in color, without depth.
func (r *Rasterizer) DrawMeshWireframe(mesh MeshRenderer, transform math3d.Mat4, color Color) {
	if r.culled(mesh, transform) {
		return
	}
	for i := range mesh.TriangleCount() {
		face := mesh.GetFace(i)
		var p [3]math3d.Vec3
		for k := range 3 {
			pos, _, _ := mesh.GetVertex(face[k])
			p[k] = transform.MulVec3(pos)
		}
		r.drawLine3D(p[0], p[1], color)
		r.drawLine3D(p[1], p[2], color)
		r.drawLine3D(p[2], p[0], color)
	}
}

func (r *Rasterizer) drawLine3D(a, b math3d.Vec3, color Color) {
	viewProj := r.camera.ViewProjectionMatrix()
	ca := viewProj.MulVec4(math3d.V4FromV3(a, 1))
	cb := viewProj.MulVec4(math3d.V4FromV3(b, 1))
	if ca.W <= 0 || cb.W <= 0 {
		return
	}
	na, nb := ca.PerspectiveDivide(), cb.PerspectiveDivide()
	w, h := float64(r.Width()), float64(r.Height())
	r.fb.DrawLine(
		int((na.X+1)*0.5*w), int((1-na.Y)*0.5*h),
		int((nb.X+1)*0.5*w), int((1-nb.Y)*0.5*h),
		color,
	)
}

// barycentric returns the weights of (px, py) against the triangle corners.
func barycentric(x0, y0, x1, y1, x2, y2, px, py float64) math3d.Vec3 {
	v0x, v0y := x2-x0, y2-y0
	v1x, v1y := x1-x0, y1-y0
	v2x, v2y := px-x0, py-y0

	dot00 := v0x*v0x + v0y*v0y
	dot01 := v0x*v1x + v0y*v1y
	dot02 := v0x*v2x + v0y*v2y
	dot11 := v1x*v1x + v1y*v1y
	dot12 := v1x*v2x + v1y*v2y

	denom := dot00*dot11 - dot01*dot01
	if denom == 0 {
		return math3d.V3(-1, -1, -1)
	}
	inv := 1 / denom
	u := (dot11*dot02 - dot01*dot12) * inv
	v := (dot00*dot12 - dot01*dot02) * inv
	return math3d.V3(1-u-v, v, u)
}

func interpolateColor3(c0, c1, c2 Color, bc math3d.Vec3) Color {
	return RGB(
		clamp8(float64(c0.R)*bc.X+float64(c1.R)*bc.Y+float64(c2.R)*bc.Z),
		clamp8(float64(c0.G)*bc.X+float64(c1.G)*bc.Y+float64(c2.G)*bc.Z),
		clamp8(float64(c0.B)*bc.X+float64(c1.B)*bc.Y+float64(c2.B)*bc.Z),
	)
}
