// Package shapes provides in-memory vertex and index payloads for glmesh.GeometryBuffer.
package shapes

import (
	"github.com/soypat/glgl/math/ms3"
)

// Geometry is an indexed triangle list. Vertices holds x,y,z triplets.
type Geometry struct {
	Vertices []float32
	Indices  []uint32
}

// VertexCount returns the number of x,y,z vertices.
func (g Geometry) VertexCount() int { return len(g.Vertices) / 3 }

// TriangleCount returns the number of whole triangles described by the indices.
func (g Geometry) TriangleCount() int { return len(g.Indices) / 3 }

// Vertex returns the i'th vertex position.
func (g Geometry) Vertex(i int) ms3.Vec {
	return ms3.Vec{X: g.Vertices[3*i], Y: g.Vertices[3*i+1], Z: g.Vertices[3*i+2]}
}

// Bounds returns the bounding box of all vertices. It returns the zero Box for empty geometry.
func (g Geometry) Bounds() ms3.Box {
	n := g.VertexCount()
	if n == 0 {
		return ms3.Box{}
	}
	bb := ms3.Box{Min: g.Vertex(0), Max: g.Vertex(0)}
	for i := 1; i < n; i++ {
		v := g.Vertex(i)
		bb.Min = ms3.MinElem(bb.Min, v)
		bb.Max = ms3.MaxElem(bb.Max, v)
	}
	return bb
}

// Triangle returns a single triangle facing +Z.
func Triangle() Geometry {
	return Geometry{
		Vertices: []float32{
			-1, -1, 0,
			1, -1, 0,
			0, 1, 0,
		},
		Indices: []uint32{0, 1, 2},
	}
}

// Quad returns a square in the XY plane made of two triangles.
func Quad() Geometry {
	return Geometry{
		Vertices: []float32{
			-1, -1, 0,
			1, -1, 0,
			1, 1, 0,
			-1, 1, 0,
		},
		Indices: []uint32{
			0, 1, 2,
			2, 3, 0,
		},
	}
}

// Pyramid returns a triangular pyramid: 4 vertices, 4 faces.
func Pyramid() Geometry {
	return Geometry{
		Vertices: []float32{
			-1, -1, 0,
			0, -1, 1,
			1, -1, 0,
			0, 1, 0,
		},
		Indices: []uint32{
			0, 3, 1,
			1, 3, 2,
			2, 3, 0,
			0, 1, 2,
		},
	}
}

// FromTriangles indexes a triangle soup. Vertices with identical positions are shared.
func FromTriangles(tris []ms3.Triangle) Geometry {
	seen := make(map[ms3.Vec]uint32, len(tris))
	g := Geometry{
		Vertices: make([]float32, 0, 3*len(tris)),
		Indices:  make([]uint32, 0, 3*len(tris)),
	}
	for _, t := range tris {
		for _, v := range t {
			idx, ok := seen[v]
			if !ok {
				idx = uint32(len(seen))
				seen[v] = idx
				g.Vertices = append(g.Vertices, v.X, v.Y, v.Z)
			}
			g.Indices = append(g.Indices, idx)
		}
	}
	return g
}
