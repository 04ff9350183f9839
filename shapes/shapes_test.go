package shapes

import (
	"testing"

	"github.com/soypat/glgl/math/ms3"
	"github.com/stretchr/testify/require"
)

func TestBuiltinShapes(t *testing.T) {
	for _, test := range []struct {
		name      string
		g         Geometry
		vertices  int
		triangles int
	}{
		{"triangle", Triangle(), 3, 1},
		{"quad", Quad(), 4, 2},
		{"pyramid", Pyramid(), 4, 4},
	} {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.vertices, test.g.VertexCount())
			require.Equal(t, test.triangles, test.g.TriangleCount())
			require.Len(t, test.g.Indices, 3*test.triangles)
			for _, idx := range test.g.Indices {
				require.Less(t, int(idx), test.g.VertexCount())
			}
		})
	}
}

func TestPyramidBounds(t *testing.T) {
	bb := Pyramid().Bounds()
	require.Equal(t, ms3.Vec{X: -1, Y: -1, Z: 0}, bb.Min)
	require.Equal(t, ms3.Vec{X: 1, Y: 1, Z: 1}, bb.Max)
	require.Equal(t, ms3.Box{}, Geometry{}.Bounds())
}

func TestFromTrianglesSharesVertices(t *testing.T) {
	a := ms3.Vec{X: 0, Y: 0, Z: 0}
	b := ms3.Vec{X: 1, Y: 0, Z: 0}
	c := ms3.Vec{X: 1, Y: 1, Z: 0}
	d := ms3.Vec{X: 0, Y: 1, Z: 0}
	g := FromTriangles([]ms3.Triangle{{a, b, c}, {c, d, a}})
	require.Equal(t, 4, g.VertexCount())
	require.Equal(t, []uint32{0, 1, 2, 2, 3, 0}, g.Indices)
	require.Equal(t, d, g.Vertex(3))
}

func TestFromTrianglesEmpty(t *testing.T) {
	g := FromTriangles(nil)
	require.Zero(t, g.VertexCount())
	require.Empty(t, g.Indices)
}
