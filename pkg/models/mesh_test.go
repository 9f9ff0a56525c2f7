package models

import (
	"math"
	"testing"

	"github.com/taigrr/cheer/pkg/math3d"
)

func quadMesh() *Mesh {
	m := NewMesh("quad")
	m.Vertices = []MeshVertex{
		{Position: math3d.V3(0, 0, 0)},
		{Position: math3d.V3(4, 0, 0)},
		{Position: math3d.V3(4, 2, 0)},
		{Position: math3d.V3(0, 2, 0)},
	}
	m.Faces = []Face{
		{V: [3]int{0, 1, 2}, Material: 0},
		{V: [3]int{0, 2, 3}, Material: -1},
	}
	return m
}

func TestCalculateBounds(t *testing.T) {
	m := quadMesh()
	m.CalculateBounds()

	if m.BoundsMin != math3d.V3(0, 0, 0) || m.BoundsMax != math3d.V3(4, 2, 0) {
		t.Errorf("bounds = %v..%v", m.BoundsMin, m.BoundsMax)
	}
	if c := m.Center(); c != math3d.V3(2, 1, 0) {
		t.Errorf("center = %v, want (2,1,0)", c)
	}
}

func TestFitCentersAndScales(t *testing.T) {
	m := quadMesh()
	m.Fit(2)

	if c := m.Center(); c.Len() > 1e-9 {
		t.Errorf("center after fit = %v, want origin", c)
	}
	if got := m.Size().MaxComponent(); math.Abs(got-2) > 1e-9 {
		t.Errorf("largest extent = %v, want 2", got)
	}
}

func TestFitEmptyMesh(t *testing.T) {
	m := NewMesh("empty")
	m.Fit(2)
	if m.VertexCount() != 0 {
		t.Error("fit should not invent vertices")
	}
}

func TestSmoothNormalsFacePlusZ(t *testing.T) {
	m := quadMesh()
	m.CalculateSmoothNormals()

	for i, v := range m.Vertices {
		if math.Abs(v.Normal.Z-1) > 1e-9 {
			t.Errorf("vertex %d normal = %v, want +Z", i, v.Normal)
		}
	}
}

func TestFaceBaseColor(t *testing.T) {
	m := quadMesh()
	m.Materials = []Material{{Name: "pink", BaseColor: [4]float64{1, 0.5, 0, 1}}}

	r, g, b := m.FaceBaseColor(0)
	if r != 255 || g != 128 || b != 0 {
		t.Errorf("face 0 color = %d,%d,%d", r, g, b)
	}

	r, g, b = m.FaceBaseColor(1)
	if r != 255 || g != 255 || b != 255 {
		t.Errorf("face without material should be white, got %d,%d,%d", r, g, b)
	}
}

func TestGetMaterialBounds(t *testing.T) {
	m := quadMesh()
	m.Materials = make([]Material, 2)

	if m.GetMaterial(-1) != nil {
		t.Error("GetMaterial(-1) should be nil")
	}
	if m.GetMaterial(2) != nil {
		t.Error("GetMaterial(2) should be nil")
	}
	if m.GetMaterial(1) == nil {
		t.Error("GetMaterial(1) should exist")
	}
}
