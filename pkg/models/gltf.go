package models

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // embedded base color textures
	_ "image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/cheer/pkg/math3d"
)

var (
	// ErrNoGeometry is returned when a document has no triangle primitives.
	ErrNoGeometry = errors.New("no triangle geometry")
	// ErrExternalBuffer is returned for glTF buffers stored outside the file.
	ErrExternalBuffer = errors.New("external buffers not supported")
)

// GLTFLoader loads glTF and GLB documents into a single Mesh.
type GLTFLoader struct {
	SmoothNormals bool // generate normals when the asset has none
	LoadTextures  bool // decode the first base color image
}

// NewGLTFLoader returns a loader with normals and textures enabled.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		SmoothNormals: true,
		LoadTextures:  true,
	}
}

// LoadGLB loads a mesh, ignoring textures.
func LoadGLB(path string) (*Mesh, error) {
	l := NewGLTFLoader()
	l.LoadTextures = false
	mesh, _, err := l.Load(path)
	return mesh, err
}

// LoadGLBWithTexture loads a mesh and its first decodable embedded texture.
// The image is nil when the asset has none.
func LoadGLBWithTexture(path string) (*Mesh, image.Image, error) {
	return NewGLTFLoader().Load(path)
}

// Load opens path and flattens every triangle primitive into one mesh.
func (l *GLTFLoader) Load(path string) (*Mesh, image.Image, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewMesh(filepath.Base(path))
	mesh.Materials = readMaterials(doc)

	for _, m := range doc.Meshes {
		if err := l.processMesh(doc, m, mesh); err != nil {
			return nil, nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}
	if len(mesh.Faces) == 0 {
		return nil, nil, fmt.Errorf("%s: %w", mesh.Name, ErrNoGeometry)
	}

	if l.SmoothNormals && !hasNormals(mesh) {
		mesh.CalculateSmoothNormals()
	}
	mesh.CalculateBounds()

	var img image.Image
	if l.LoadTextures {
		img = firstTexture(doc, filepath.Dir(path))
	}
	return mesh, img, nil
}

func hasNormals(mesh *Mesh) bool {
	for _, v := range mesh.Vertices {
		if v.Normal.Len() > 0.001 {
			return true
		}
	}
	return false
}

func readMaterials(doc *gltf.Document) []Material {
	out := make([]Material, 0, len(doc.Materials))
	for _, gm := range doc.Materials {
		mat := Material{
			Name:      gm.Name,
			BaseColor: [4]float64{1, 1, 1, 1},
			Roughness: 1,
		}
		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			mat.BaseColor = pbr.BaseColorFactorOrDefault()
			mat.Metallic = pbr.MetallicFactorOrDefault()
			mat.Roughness = pbr.RoughnessFactorOrDefault()
			mat.HasTexture = pbr.BaseColorTexture != nil
		}
		out = append(out, mat)
	}
	return out
}

func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals []math3d.Vec3
		if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
			if normals, err = readVec3Accessor(doc, idx); err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}

		var uvs []math3d.Vec2
		if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			if uvs, err = readVec2Accessor(doc, idx); err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}

		material := -1
		if prim.Material != nil {
			material = *prim.Material
		}

		base := len(mesh.Vertices)
		for i, p := range positions {
			v := MeshVertex{Position: p}
			if i < len(normals) {
				v.Normal = normals[i]
			}
			if i < len(uvs) {
				// glTF puts V=0 at the top of the image.
				v.UV = math3d.V2(uvs[i].X, 1-uvs[i].Y)
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		var indices []int
		if prim.Indices != nil {
			if indices, err = readIndices(doc, *prim.Indices); err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		// glTF front faces are CCW; the rasterizer culls in a Y-down
		// screen space, so swap the last two corners.
		for i := 0; i+2 < len(indices); i += 3 {
			mesh.Faces = append(mesh.Faces, Face{
				V:        [3]int{base + indices[i], base + indices[i+2], base + indices[i+1]},
				Material: material,
			})
		}
	}
	return nil
}

func readVec3Accessor(doc *gltf.Document, idx int) ([]math3d.Vec3, error) {
	acc := doc.Accessors[idx]
	if acc.Type != gltf.AccessorVec3 || acc.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float VEC3, got %v/%v", acc.Type, acc.ComponentType)
	}
	data, stride, err := accessorBytes(doc, acc, 12)
	if err != nil {
		return nil, err
	}

	out := make([]math3d.Vec3, acc.Count)
	for i := range out {
		b := data[i*stride:]
		out[i] = math3d.V3(readFloat32(b), readFloat32(b[4:]), readFloat32(b[8:]))
	}
	return out, nil
}

func readVec2Accessor(doc *gltf.Document, idx int) ([]math3d.Vec2, error) {
	acc := doc.Accessors[idx]
	if acc.Type != gltf.AccessorVec2 || acc.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float VEC2, got %v/%v", acc.Type, acc.ComponentType)
	}
	data, stride, err := accessorBytes(doc, acc, 8)
	if err != nil {
		return nil, err
	}

	out := make([]math3d.Vec2, acc.Count)
	for i := range out {
		b := data[i*stride:]
		out[i] = math3d.V2(readFloat32(b), readFloat32(b[4:]))
	}
	return out, nil
}

func readIndices(doc *gltf.Document, idx int) ([]int, error) {
	acc := doc.Accessors[idx]

	var size int
	switch acc.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index type: %v", acc.ComponentType)
	}

	data, stride, err := accessorBytes(doc, acc, size)
	if err != nil {
		return nil, err
	}

	out := make([]int, acc.Count)
	for i := range out {
		b := data[i*stride:]
		switch size {
		case 1:
			out[i] = int(b[0])
		case 2:
			out[i] = int(binary.LittleEndian.Uint16(b))
		default:
			out[i] = int(binary.LittleEndian.Uint32(b))
		}
	}
	return out, nil
}

// accessorBytes returns the bytes backing acc starting at its first element,
// plus the element stride. elemSize is used when the view is tightly packed.
func accessorBytes(doc *gltf.Document, acc *gltf.Accessor, elemSize int) ([]byte, int, error) {
	if acc.BufferView == nil {
		return nil, 0, errors.New("accessor has no buffer view")
	}
	view := doc.BufferViews[*acc.BufferView]
	buf := doc.Buffers[view.Buffer]
	if buf.Data == nil {
		if buf.URI != "" {
			return nil, 0, ErrExternalBuffer
		}
		return nil, 0, errors.New("buffer has no data")
	}

	stride := view.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	start := view.ByteOffset + acc.ByteOffset
	end := start + (acc.Count-1)*stride + elemSize
	if acc.Count == 0 {
		end = start
	}
	if start < 0 || end > len(buf.Data) {
		return nil, 0, fmt.Errorf("accessor out of range: [%d:%d] of %d", start, end, len(buf.Data))
	}
	return buf.Data[start:end], stride, nil
}

func readFloat32(b []byte) float64 {
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
}

// firstTexture decodes the first image in doc that decodes cleanly, whether
// it lives in a buffer view or next to the document.
func firstTexture(doc *gltf.Document, dir string) image.Image {
	for _, gi := range doc.Images {
		var data []byte
		switch {
		case gi.BufferView != nil:
			view := doc.BufferViews[*gi.BufferView]
			buf := doc.Buffers[view.Buffer]
			if buf.Data == nil || view.ByteOffset+view.ByteLength > len(buf.Data) {
				continue
			}
			data = buf.Data[view.ByteOffset : view.ByteOffset+view.ByteLength]
		case gi.URI != "" && !gi.IsEmbeddedResource():
			raw, err := os.ReadFile(filepath.Join(dir, gi.URI))
			if err != nil {
				continue
			}
			data = raw
		default:
			continue
		}

		if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
			return img
		}
	}
	return nil
}
