package glmesh

import (
	"errors"
	"fmt"
	"math"
)

// positionAttrib is the vertex attribute location holding 3-component positions.
const positionAttrib = 0

// GeometryBuffer owns the GPU resources for one piece of indexed triangle
// geometry: a vertex array, a vertex buffer of tightly packed 3D positions and
// an index buffer of 32-bit indices.
//
// A GeometryBuffer is either empty, with all handles zero, or live, with all
// handles non-zero. Owners must call Destroy once they are done with it,
// usually with defer, since the resources are not garbage collected.
type GeometryBuffer struct {
	ctx        Context
	vao        Handle
	vbo        Handle
	ibo        Handle
	indexCount int32
	destroyed  bool
}

// NewGeometryBuffer returns an empty GeometryBuffer whose resources will be
// allocated in ctx. No graphics calls are made.
func NewGeometryBuffer(ctx Context) *GeometryBuffer {
	if ctx == nil {
		panic("glmesh: nil Context")
	}
	return &GeometryBuffer{ctx: ctx}
}

// Create allocates the vertex array, index buffer and vertex buffer and uploads
// vertices and indices to them. vertices holds x,y,z triplets and indices
// selects triplets to assemble into triangles. The counts uploaded are the
// slice lengths; pass sub-slices to upload fewer elements.
//
// A live buffer is released before the new resources are allocated. If
// creation fails the buffer is left empty and the error is returned. Context
// errors pending before the call are cleared and not reported.
func (g *GeometryBuffer) Create(vertices []float32, indices []uint32) error {
	if g.destroyed {
		return ErrDestroyed
	} else if len(indices) > math.MaxInt32 {
		return fmt.Errorf("glmesh: create: %d indices exceeds maximum draw count", len(indices))
	}
	g.Release()
	_ = g.ctx.Err()
	g.indexCount = int32(len(indices))
	err := g.upload(vertices, indices)
	if ctxErr := g.ctx.Err(); ctxErr != nil {
		err = errors.Join(err, ctxErr)
	}
	if err != nil {
		g.Release()
		return fmt.Errorf("glmesh: create: %w", err)
	}
	return nil
}

// upload runs the bind/allocate/upload sequence. Deferred unbinds run in
// reverse order: vertex buffer, index buffer, then vertex array.
func (g *GeometryBuffer) upload(vertices []float32, indices []uint32) error {
	ctx := g.ctx
	g.vao = ctx.GenVertexArray()
	if g.vao == 0 {
		return fmt.Errorf("vertex array: %w", ErrAllocation)
	}
	defer bindVertexArray(ctx, g.vao)()

	g.ibo = ctx.GenBuffer()
	if g.ibo == 0 {
		return fmt.Errorf("index buffer: %w", ErrAllocation)
	}
	defer bindBuffer(ctx, ElementArrayBuffer, g.ibo)()
	ctx.BufferDataUint32(ElementArrayBuffer, indices, StaticDraw)

	g.vbo = ctx.GenBuffer()
	if g.vbo == 0 {
		return fmt.Errorf("vertex buffer: %w", ErrAllocation)
	}
	defer bindBuffer(ctx, ArrayBuffer, g.vbo)()
	ctx.BufferDataFloat32(ArrayBuffer, vertices, StaticDraw)

	ctx.VertexAttribPointer(positionAttrib, 3, Float, false, 0, 0)
	ctx.EnableVertexAttribArray(positionAttrib)
	return nil
}

// Render draws the geometry as a triangle list. The vertex array and index
// buffer are unbound again before Render returns.
//
// Rendering a buffer that is not live returns ErrNotLive (or ErrDestroyed)
// without issuing any graphics calls. Context errors pending before the call
// are cleared and not reported.
func (g *GeometryBuffer) Render() error {
	if g.destroyed {
		return ErrDestroyed
	} else if !g.Live() {
		return ErrNotLive
	}
	_ = g.ctx.Err()
	g.draw()
	if err := g.ctx.Err(); err != nil {
		return fmt.Errorf("glmesh: render: %w", err)
	}
	return nil
}

func (g *GeometryBuffer) draw() {
	ctx := g.ctx
	defer bindVertexArray(ctx, g.vao)()
	defer bindBuffer(ctx, ElementArrayBuffer, g.ibo)()
	ctx.DrawElements(Triangles, g.indexCount, UnsignedInt, 0)
}

// Release deletes any allocated resources and leaves the buffer empty. It is
// safe to call on an empty buffer, in which case no graphics calls are made.
func (g *GeometryBuffer) Release() {
	if g.ibo != 0 {
		g.ctx.DeleteBuffer(g.ibo)
		g.ibo = 0
	}
	if g.vbo != 0 {
		g.ctx.DeleteBuffer(g.vbo)
		g.vbo = 0
	}
	if g.vao != 0 {
		g.ctx.DeleteVertexArray(g.vao)
		g.vao = 0
	}
	g.indexCount = 0
}

// Destroy releases the buffer's resources and marks it unusable. Subsequent
// calls to Create or Render return ErrDestroyed. Destroy is idempotent.
func (g *GeometryBuffer) Destroy() {
	g.Release()
	g.destroyed = true
}

// Live reports whether the buffer holds allocated resources.
func (g *GeometryBuffer) Live() bool {
	return g.vao != 0 && g.vbo != 0 && g.ibo != 0
}

// Destroyed reports whether Destroy has been called.
func (g *GeometryBuffer) Destroyed() bool { return g.destroyed }

// IndexCount returns the number of indices submitted per Render call.
func (g *GeometryBuffer) IndexCount() int { return int(g.indexCount) }

// VertexArray returns the vertex array handle, or 0 if the buffer is empty.
func (g *GeometryBuffer) VertexArray() Handle { return g.vao }

// VertexBuffer returns the handle of the buffer holding vertex positions, or 0 if the buffer is empty.
func (g *GeometryBuffer) VertexBuffer() Handle { return g.vbo }

// IndexBuffer returns the handle of the buffer holding indices, or 0 if the buffer is empty.
func (g *GeometryBuffer) IndexBuffer() Handle { return g.ibo }
