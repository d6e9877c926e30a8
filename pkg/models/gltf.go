package models

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/polyraster/pkg/math3d"
	"github.com/taigrr/polyraster/pkg/render"
)

// ErrNoGeometry is returned when a document has no triangle primitives.
var ErrNoGeometry = errors.New("models: no triangle geometry")

// GLTFLoader loads glTF and GLB files into a Mesh.
type GLTFLoader struct {
	// CalculateNormals fills in smooth normals when the file has none.
	CalculateNormals bool
}

// NewGLTFLoader creates a loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{CalculateNormals: true}
}

// LoadGLB loads a glTF or GLB file with the default loader.
func LoadGLB(path string) (*Mesh, error) {
	mesh, _, err := NewGLTFLoader().Load(path)
	return mesh, err
}

// Load reads path and returns the merged mesh of every triangle primitive
// plus the decoded textures, indexed like Material.Texture.
func (l *GLTFLoader) Load(path string) (*Mesh, []*render.Texture, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewMesh(filepath.Base(path))
	mesh.Materials = readMaterials(doc)

	hasNormals := true
	for _, m := range doc.Meshes {
		n, err := l.processMesh(doc, m, mesh)
		if err != nil {
			return nil, nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
		hasNormals = hasNormals && n
	}
	if len(mesh.Faces) == 0 {
		return nil, nil, fmt.Errorf("%s: %w", path, ErrNoGeometry)
	}
	if l.CalculateNormals && !hasNormals {
		mesh.CalculateSmoothNormals()
	}
	mesh.CalculateBounds()

	return mesh, readTextures(doc, filepath.Dir(path)), nil
}

// processMesh appends the triangle primitives of m and reports whether
// every primitive carried normals.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) (bool, error) {
	hasNormals := true
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return false, fmt.Errorf("read positions: %w", err)
		}

		var normals [][3]float32
		if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
			if err != nil {
				return false, fmt.Errorf("read normals: %w", err)
			}
		} else {
			hasNormals = false
		}

		var uvs [][2]float32
		if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
			if err != nil {
				return false, fmt.Errorf("read uvs: %w", err)
			}
		}

		base := uint32(len(mesh.Vertices))
		for i, p := range positions {
			v := MeshVertex{Position: math3d.V3(p[0], p[1], p[2])}
			if i < len(normals) {
				v.Normal = math3d.V3(normals[i][0], normals[i][1], normals[i][2])
			}
			// glTF has V=0 at the top of the image, as do textures here.
			if i < len(uvs) {
				v.U, v.V = uvs[i][0], uvs[i][1]
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		material := -1
		if prim.Material != nil {
			material = *prim.Material
		}

		var indices []uint32
		if prim.Indices != nil {
			indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return false, fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}
		for i := 0; i+2 < len(indices); i += 3 {
			f := Face{V: [3]uint32{base + indices[i], base + indices[i+1], base + indices[i+2]}, Material: material}
			if f.V[0] >= uint32(len(mesh.Vertices)) || f.V[1] >= uint32(len(mesh.Vertices)) || f.V[2] >= uint32(len(mesh.Vertices)) {
				return false, fmt.Errorf("index out of range in primitive of %q", m.Name)
			}
			mesh.Faces = append(mesh.Faces, f)
		}
	}
	return hasNormals, nil
}

func readMaterials(doc *gltf.Document) []Material {
	mats := make([]Material, len(doc.Materials))
	for i, m := range doc.Materials {
		mats[i] = Material{Name: m.Name, BaseColor: 0xffffffff, Texture: -1}
		pbr := m.PBRMetallicRoughness
		if pbr == nil {
			continue
		}
		if f := pbr.BaseColorFactor; f != nil {
			mats[i].BaseColor = colorFromFactor(*f)
		}
		if pbr.BaseColorTexture != nil && pbr.BaseColorTexture.Index < len(doc.Textures) {
			if src := doc.Textures[pbr.BaseColorTexture.Index].Source; src != nil {
				mats[i].Texture = *src
			}
		}
	}
	return mats
}

func colorFromFactor(f [4]float64) uint32 {
	ch := func(v float64) uint32 {
		return uint32(min(max(v, 0), 1)*255 + 0.5)
	}
	return ch(f[3])<<24 | ch(f[0])<<16 | ch(f[1])<<8 | ch(f[2])
}

// readTextures decodes every image in the document. Images that fail to
// decode are left nil so material indices stay valid.
func readTextures(doc *gltf.Document, dir string) []*render.Texture {
	textures := make([]*render.Texture, len(doc.Images))
	for i, img := range doc.Images {
		var data []byte
		switch {
		case img.BufferView != nil:
			bv := doc.BufferViews[*img.BufferView]
			buf := doc.Buffers[bv.Buffer]
			if bv.ByteOffset+bv.ByteLength <= len(buf.Data) {
				data = buf.Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
			}
		case img.URI != "" && !img.IsEmbeddedResource():
			b, err := os.ReadFile(filepath.Join(dir, img.URI))
			if err != nil {
				render.Logger().Warn("gltf texture unreadable", "uri", img.URI, "err", err)
				continue
			}
			data = b
		default:
			b, err := img.MarshalData()
			if err != nil {
				continue
			}
			data = b
		}
		tex, err := render.DecodeTexture(data)
		if err != nil {
			render.Logger().Warn("gltf texture undecodable", "image", i, "err", err)
			continue
		}
		textures[i] = tex
	}
	return textures
}
