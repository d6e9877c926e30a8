// Package models loads meshes and flattens them into rasterizer vertices.
package models

import (
	"github.com/taigrr/polyraster/pkg/math3d"
	"github.com/taigrr/polyraster/pkg/render"
)

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Name      string
	Vertices  []MeshVertex
	Faces     []Face
	Materials []Material

	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// MeshVertex holds all vertex attributes.
type MeshVertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	U, V     float32
}

// Face is a triangle with a material reference.
type Face struct {
	V        [3]uint32 // indices into Mesh.Vertices
	Material int       // index into Mesh.Materials, -1 for none
}

// Material is the subset of a glTF material the rasterizer can use.
type Material struct {
	Name      string
	BaseColor uint32 // BGRA
	Texture   int    // image index, -1 for none
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// CalculateSmoothNormals averages area weighted face normals per vertex.
func (m *Mesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Vec3{}
	}
	for _, f := range m.Faces {
		v0 := m.Vertices[f.V[0]].Position
		v1 := m.Vertices[f.V[1]].Position
		v2 := m.Vertices[f.V[2]].Position
		n := v1.Sub(v0).Cross(v2.Sub(v0))
		for _, idx := range f.V {
			m.Vertices[idx].Normal = m.Vertices[idx].Normal.Add(n)
		}
	}
	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

// Transform applies an affine matrix to every vertex.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i := range m.Vertices {
		v := &m.Vertices[i]
		v.Position = mat.MulPoint(v.Position)
		v.Normal = mat.MulDir(v.Normal).Normalize()
	}
	m.CalculateBounds()
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	clone := *m
	clone.Vertices = append([]MeshVertex(nil), m.Vertices...)
	clone.Faces = append([]Face(nil), m.Faces...)
	clone.Materials = append([]Material(nil), m.Materials...)
	return &clone
}

// GetMaterial returns the material at index i, or nil if there is none.
func (m *Mesh) GetMaterial(i int) *Material {
	if i < 0 || i >= len(m.Materials) {
		return nil
	}
	return &m.Materials[i]
}

// TriVertices returns the mesh as rasterizer vertices plus a triangle
// list index buffer for DrawElements.
func (m *Mesh) TriVertices() ([]render.TriVertex, []uint32) {
	verts := make([]render.TriVertex, len(m.Vertices))
	for i, v := range m.Vertices {
		verts[i] = render.TriVertex{
			X: v.Position.X, Y: v.Position.Y, Z: v.Position.Z, W: 1,
			U: v.U, V: v.V,
		}
	}
	indices := make([]uint32, 0, len(m.Faces)*3)
	for _, f := range m.Faces {
		indices = append(indices, f.V[0], f.V[1], f.V[2])
	}
	return verts, indices
}

// GroupByMaterial splits the index buffer per material so each batch can
// be drawn with its own DrawArgs. Key -1 collects faces with no material.
func (m *Mesh) GroupByMaterial() map[int][]uint32 {
	groups := make(map[int][]uint32)
	for _, f := range m.Faces {
		groups[f.Material] = append(groups[f.Material], f.V[0], f.V[1], f.V[2])
	}
	return groups
}

// Cube returns a unit cube centred on the origin with per face UVs and
// counter-clockwise front faces.
func Cube() *Mesh {
	m := NewMesh("cube")
	faces := [6]struct{ n, u, v math3d.Vec3 }{
		{math3d.V3(0, 0, 1), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)},
		{math3d.V3(0, 0, -1), math3d.V3(-1, 0, 0), math3d.V3(0, 1, 0)},
		{math3d.V3(1, 0, 0), math3d.V3(0, 0, -1), math3d.V3(0, 1, 0)},
		{math3d.V3(-1, 0, 0), math3d.V3(0, 0, 1), math3d.V3(0, 1, 0)},
		{math3d.V3(0, 1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, -1)},
		{math3d.V3(0, -1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, 1)},
	}
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for _, f := range faces {
		base := uint32(len(m.Vertices))
		for _, c := range corners {
			p := f.n.Add(f.u.Scale(c[0])).Add(f.v.Scale(c[1])).Scale(0.5)
			m.Vertices = append(m.Vertices, MeshVertex{
				Position: p,
				Normal:   f.n,
				U:        (c[0] + 1) / 2,
				V:        (1 - c[1]) / 2,
			})
		}
		m.Faces = append(m.Faces,
			Face{V: [3]uint32{base, base + 1, base + 2}, Material: -1},
			Face{V: [3]uint32{base, base + 2, base + 3}, Material: -1},
		)
	}
	m.CalculateBounds()
	return m
}
