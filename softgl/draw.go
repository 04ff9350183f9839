package softgl

import (
	"encoding/binary"
	"math"

	"github.com/fogleman/fauxgl"
	"github.com/soypat/glmesh"
)

// Draw is a recorded DrawElements call.
type Draw struct {
	Mode        glmesh.Primitive
	Count       int32
	IndexType   glmesh.IndexType
	Offset      int
	VertexArray glmesh.Handle
	// Triangles is the number of triangles assembled from the draw.
	Triangles int
}

func (c *Context) DrawElements(mode glmesh.Primitive, count int32, xtype glmesh.IndexType, offset int) {
	const op = "DrawElements"
	c.stats.DrawCalls++
	isize := xtype.Size()
	switch {
	case mode != glmesh.Points && mode != glmesh.Lines && mode != glmesh.Triangles:
		c.raise(op, ErrInvalidEnum)
		return
	case isize == 0:
		c.raise(op, ErrInvalidEnum)
		return
	case count < 0 || offset < 0:
		c.raise(op, ErrInvalidValue)
		return
	case c.boundArray == 0:
		c.raise(op, ErrInvalidOperation)
		return
	}
	va := c.arrays[c.boundArray]
	eb, ok := c.buffers[va.elementBuffer]
	if !ok || offset%isize != 0 || offset+int(count)*isize > len(eb.data) {
		c.raise(op, ErrInvalidOperation)
		return
	}
	indices := eb.data[offset : offset+int(count)*isize]
	var tris []*fauxgl.Triangle
	if mode == glmesh.Triangles {
		var err error
		tris, err = c.assemble(va, indices, isize)
		if err != nil {
			c.raise(op, err)
			return
		}
	}
	c.draws = append(c.draws, Draw{
		Mode:        mode,
		Count:       count,
		IndexType:   xtype,
		Offset:      offset,
		VertexArray: c.boundArray,
		Triangles:   len(tris),
	})
	if c.raster != nil && c.raster.Shader != nil && len(tris) > 0 {
		c.raster.DrawTriangles(tris)
	}
}

// assemble builds triangles from the position attribute (slot 0) of va. A
// disabled position attribute yields no triangles, as every vertex would
// collapse onto the same constant position.
func (c *Context) assemble(va *vertexArray, indices []byte, isize int) ([]*fauxgl.Triangle, error) {
	attr := va.attribs[0]
	if !attr.Enabled {
		return nil, nil
	}
	vb, ok := c.buffers[attr.Buffer]
	if !ok {
		return nil, ErrInvalidOperation
	}
	stride := int(attr.Stride)
	if stride == 0 {
		stride = 4 * int(attr.Size)
	}
	n := len(indices) / isize
	tris := make([]*fauxgl.Triangle, 0, n/3)
	var p [3]fauxgl.Vector
	for i := 0; i+3 <= n; i += 3 {
		for k := range p {
			idx := readIndex(indices[(i+k)*isize:], isize)
			base := attr.Offset + idx*stride
			if base+4*int(attr.Size) > len(vb.data) {
				return nil, ErrInvalidOperation
			}
			p[k] = position(vb.data[base:], attr.Size)
		}
		tris = append(tris, fauxgl.NewTriangleForPoints(p[0], p[1], p[2]))
	}
	return tris, nil
}

func readIndex(b []byte, size int) int {
	switch size {
	case 1:
		return int(b[0])
	case 2:
		return int(binary.LittleEndian.Uint16(b))
	}
	return int(binary.LittleEndian.Uint32(b))
}

// position reads up to three float32 components. Missing components are zero.
func position(b []byte, size int32) fauxgl.Vector {
	var v [3]float64
	for i := 0; i < int(size) && i < 3; i++ {
		v[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:])))
	}
	return fauxgl.Vector{X: v[0], Y: v[1], Z: v[2]}
}
