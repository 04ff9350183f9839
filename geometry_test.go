package glmesh_test

import (
	"math"
	"strconv"
	"testing"
	"unsafe"

	"github.com/soypat/glmesh"
	"github.com/soypat/glmesh/shapes"
	"github.com/soypat/glmesh/softgl"
	"github.com/stretchr/testify/require"
)

func newLive(t *testing.T, ctx glmesh.Context, g shapes.Geometry) *glmesh.GeometryBuffer {
	t.Helper()
	buf := glmesh.NewGeometryBuffer(ctx)
	require.NoError(t, buf.Create(g.Vertices, g.Indices))
	return buf
}

func requireEmpty(t *testing.T, g *glmesh.GeometryBuffer) {
	t.Helper()
	require.False(t, g.Live())
	require.Zero(t, g.VertexArray())
	require.Zero(t, g.VertexBuffer())
	require.Zero(t, g.IndexBuffer())
	require.Zero(t, g.IndexCount())
}

func requireUnbound(t *testing.T, ctx *softgl.Context) {
	t.Helper()
	require.Equal(t, softgl.Bindings{}, ctx.Bindings())
}

func TestCreateTriangle(t *testing.T) {
	ctx := softgl.NewContext(0, 0)
	tri := shapes.Triangle()
	g := newLive(t, ctx, tri)
	defer g.Destroy()

	require.True(t, g.Live())
	require.Equal(t, 3, g.IndexCount())
	require.NotEqual(t, g.VertexBuffer(), g.IndexBuffer())
	requireUnbound(t, ctx)

	vb, ok := ctx.Buffer(g.VertexBuffer())
	require.True(t, ok)
	require.Equal(t, softgl.BufferInfo{Size: 4 * len(tri.Vertices), Usage: glmesh.StaticDraw}, vb)
	ib, ok := ctx.Buffer(g.IndexBuffer())
	require.True(t, ok)
	require.Equal(t, softgl.BufferInfo{Size: 4 * len(tri.Indices), Usage: glmesh.StaticDraw}, ib)

	_, attribs, ok := ctx.VertexArrayState(g.VertexArray())
	require.True(t, ok)
	require.Equal(t, softgl.Attrib{
		Enabled: true,
		Buffer:  g.VertexBuffer(),
		Size:    3,
		Type:    glmesh.Float,
	}, attribs[0])
	require.False(t, attribs[1].Enabled)
}

func TestRenderTriangle(t *testing.T) {
	ctx := softgl.NewContext(0, 0)
	g := newLive(t, ctx, shapes.Triangle())
	defer g.Destroy()

	require.NoError(t, g.Render())
	requireUnbound(t, ctx)
	draws := ctx.Draws()
	require.Len(t, draws, 1)
	require.Equal(t, softgl.Draw{
		Mode:        glmesh.Triangles,
		Count:       3,
		IndexType:   glmesh.UnsignedInt,
		Offset:      0,
		VertexArray: g.VertexArray(),
		Triangles:   1,
	}, draws[0])
}

func TestCreatePyramid(t *testing.T) {
	ctx := softgl.NewContext(0, 0)
	g := newLive(t, ctx, shapes.Pyramid())
	defer g.Destroy()
	require.Equal(t, 12, g.IndexCount())
	require.NoError(t, g.Render())
	require.Equal(t, 4, ctx.Draws()[0].Triangles)
}

func TestCreateSubslice(t *testing.T) {
	ctx := softgl.NewContext(0, 0)
	quad := shapes.Quad()
	g := newLive(t, ctx, shapes.Geometry{Vertices: quad.Vertices, Indices: quad.Indices[:3]})
	defer g.Destroy()
	require.Equal(t, 3, g.IndexCount())
	ib, _ := ctx.Buffer(g.IndexBuffer())
	require.Equal(t, 12, ib.Size)
}

func TestReleaseIdempotent(t *testing.T) {
	ctx := softgl.NewContext(0, 0)
	g := newLive(t, ctx, shapes.Pyramid())
	g.Release()
	requireEmpty(t, g)
	stats := ctx.Stats()
	require.Zero(t, stats.LiveArrays())
	require.Zero(t, stats.LiveBuffers())
	require.Equal(t, 3, stats.DeleteCalls)

	g.Release()
	requireEmpty(t, g)
	require.Equal(t, stats, ctx.Stats(), "second release must not issue graphics calls")
	require.NoError(t, ctx.Err())
}

func TestRecreateDoesNotLeak(t *testing.T) {
	ctx := softgl.NewContext(0, 0)
	g := newLive(t, ctx, shapes.Triangle())
	defer g.Destroy()
	old := [3]glmesh.Handle{g.VertexArray(), g.VertexBuffer(), g.IndexBuffer()}

	for i := 0; i < 10; i++ {
		pyramid := shapes.Pyramid()
		require.NoError(t, g.Create(pyramid.Vertices, pyramid.Indices))
		stats := ctx.Stats()
		require.Equal(t, 1, stats.LiveArrays())
		require.Equal(t, 2, stats.LiveBuffers())
	}
	require.Equal(t, 12, g.IndexCount())
	for _, h := range old {
		require.NotEqual(t, h, g.VertexArray())
		require.NotEqual(t, h, g.VertexBuffer())
		require.NotEqual(t, h, g.IndexBuffer())
	}
	_, ok := ctx.Buffer(old[1])
	require.False(t, ok, "previous vertex buffer must be deleted")
}

func TestHandlesNotReusedAfterRelease(t *testing.T) {
	ctx := softgl.NewContext(0, 0)
	g := newLive(t, ctx, shapes.Triangle())
	defer g.Destroy()
	released := map[glmesh.Handle]bool{g.VertexBuffer(): true, g.IndexBuffer(): true}
	releasedArray := g.VertexArray()
	g.Release()

	tri := shapes.Triangle()
	require.NoError(t, g.Create(tri.Vertices, tri.Indices))
	require.NotEqual(t, releasedArray, g.VertexArray())
	require.False(t, released[g.VertexBuffer()])
	require.False(t, released[g.IndexBuffer()])
}

func TestDestroyNeverCreated(t *testing.T) {
	ctx := softgl.NewContext(0, 0)
	g := glmesh.NewGeometryBuffer(ctx)
	g.Destroy()
	require.True(t, g.Destroyed())
	requireEmpty(t, g)
	require.Equal(t, softgl.Stats{}, ctx.Stats())
}

func TestDestroy(t *testing.T) {
	ctx := softgl.NewContext(0, 0)
	g := newLive(t, ctx, shapes.Quad())
	g.Destroy()
	g.Destroy()
	requireEmpty(t, g)
	require.Zero(t, ctx.Stats().LiveBuffers())
	require.Zero(t, ctx.Stats().LiveArrays())

	quad := shapes.Quad()
	require.ErrorIs(t, g.Create(quad.Vertices, quad.Indices), glmesh.ErrDestroyed)
	require.ErrorIs(t, g.Render(), glmesh.ErrDestroyed)
	require.Equal(t, 1, ctx.Stats().ArraysGenerated)
}

func TestRenderAfterRelease(t *testing.T) {
	ctx := softgl.NewContext(0, 0)
	g := newLive(t, ctx, shapes.Triangle())
	g.Release()
	before := ctx.Stats()
	require.ErrorIs(t, g.Render(), glmesh.ErrNotLive)
	require.Equal(t, before, ctx.Stats())
	require.Empty(t, ctx.Draws())
	requireUnbound(t, ctx)
}

func TestRenderRestoresBindings(t *testing.T) {
	ctx := softgl.NewContext(0, 0)
	a := newLive(t, ctx, shapes.Triangle())
	defer a.Destroy()
	b := newLive(t, ctx, shapes.Pyramid())
	defer b.Destroy()
	empty := glmesh.NewGeometryBuffer(ctx)
	defer empty.Destroy()

	require.NoError(t, a.Render())
	require.NoError(t, b.Render())
	direct := append([]softgl.Draw(nil), ctx.Draws()...)
	ctx.ResetDraws()

	require.NoError(t, a.Render())
	requireUnbound(t, ctx)
	require.ErrorIs(t, empty.Render(), glmesh.ErrNotLive)
	requireUnbound(t, ctx)
	require.NoError(t, b.Render())
	requireUnbound(t, ctx)
	require.Equal(t, direct, ctx.Draws())
	require.NoError(t, ctx.Err())
}

func TestCreateDetachesElementBuffer(t *testing.T) {
	// Unbinding the index buffer while the vertex array is bound clears the
	// array's element binding, which is why Render binds the index buffer itself.
	ctx := softgl.NewContext(0, 0)
	g := newLive(t, ctx, shapes.Triangle())
	defer g.Destroy()
	elem, _, ok := ctx.VertexArrayState(g.VertexArray())
	require.True(t, ok)
	require.Zero(t, elem)
	require.NoError(t, g.Render())
	require.Len(t, ctx.Draws(), 1)
}

func TestCreateAllocationFailure(t *testing.T) {
	for limit := 0; limit < 3; limit++ {
		ctx := softgl.NewContext(0, 0)
		ctx.MaxObjects = limit
		if limit == 0 {
			ctx.MaxObjects = -1 // Any non-positive value disables the limit.
		}
		g := glmesh.NewGeometryBuffer(ctx)
		tri := shapes.Triangle()
		err := g.Create(tri.Vertices, tri.Indices)
		if limit == 0 {
			require.NoError(t, err)
			g.Destroy()
			continue
		}
		require.ErrorIs(t, err, glmesh.ErrAllocation)
		require.ErrorIs(t, err, softgl.ErrOutOfMemory)
		requireEmpty(t, g)
		requireUnbound(t, ctx)
		require.Zero(t, ctx.Stats().LiveArrays())
		require.Zero(t, ctx.Stats().LiveBuffers())
		require.NoError(t, ctx.Err())
	}
}

func TestRecreateFailureLeavesEmpty(t *testing.T) {
	ctx := softgl.NewContext(0, 0)
	g := newLive(t, ctx, shapes.Triangle())
	defer g.Destroy()
	ctx.MaxObjects = 2
	pyramid := shapes.Pyramid()
	require.ErrorIs(t, g.Create(pyramid.Vertices, pyramid.Indices), glmesh.ErrAllocation)
	requireEmpty(t, g)
	require.Zero(t, ctx.Stats().LiveBuffers())
}

// failingContext raises a context error on every upload.
type failingContext struct {
	*softgl.Context
	raised bool
}

func (f *failingContext) BufferDataFloat32(target glmesh.BufferTarget, data []float32, usage glmesh.Usage) {
	f.raised = true
	f.Context.BufferDataFloat32(target, data, 0) // Invalid usage.
}

func TestCreateContextError(t *testing.T) {
	ctx := &failingContext{Context: softgl.NewContext(0, 0)}
	g := glmesh.NewGeometryBuffer(ctx)
	tri := shapes.Triangle()
	err := g.Create(tri.Vertices, tri.Indices)
	require.True(t, ctx.raised)
	require.ErrorIs(t, err, softgl.ErrInvalidEnum)
	requireEmpty(t, g)
	require.Zero(t, ctx.Stats().LiveBuffers())
	requireUnbound(t, ctx.Context)
}

func TestCreateEmptyPayload(t *testing.T) {
	ctx := softgl.NewContext(0, 0)
	g := glmesh.NewGeometryBuffer(ctx)
	defer g.Destroy()
	require.NoError(t, g.Create(nil, nil))
	require.True(t, g.Live())
	require.Zero(t, g.IndexCount())
	require.NoError(t, g.Render())
	require.Equal(t, 0, ctx.Draws()[0].Triangles)
}

// noArrayContext fails every vertex array allocation.
type noArrayContext struct {
	*softgl.Context
}

func (noArrayContext) GenVertexArray() glmesh.Handle { return 0 }

func TestCreateVertexArrayAllocationFailure(t *testing.T) {
	ctx := noArrayContext{Context: softgl.NewContext(0, 0)}
	g := glmesh.NewGeometryBuffer(ctx)
	tri := shapes.Triangle()
	err := g.Create(tri.Vertices, tri.Indices)
	require.ErrorIs(t, err, glmesh.ErrAllocation)
	requireEmpty(t, g)
	require.Zero(t, ctx.Stats().BuffersGenerated)
	require.Zero(t, ctx.Stats().BindCalls)
	requireUnbound(t, ctx.Context)
}

func TestCreateIgnoresPendingContextError(t *testing.T) {
	ctx := softgl.NewContext(0, 0)
	ctx.BindVertexArray(42) // Raises invalid operation before Create.
	g := glmesh.NewGeometryBuffer(ctx)
	defer g.Destroy()
	tri := shapes.Triangle()
	require.NoError(t, g.Create(tri.Vertices, tri.Indices))
	require.True(t, g.Live())
	require.Equal(t, 3, g.IndexCount())
	require.NoError(t, ctx.Err())
}

func TestRenderIgnoresPendingContextError(t *testing.T) {
	ctx := softgl.NewContext(0, 0)
	g := newLive(t, ctx, shapes.Triangle())
	defer g.Destroy()
	ctx.BindVertexArray(42)
	require.NoError(t, g.Render())
	require.Len(t, ctx.Draws(), 1)
	requireUnbound(t, ctx)
}

func TestCollectionAddIgnoresPendingContextError(t *testing.T) {
	ctx := softgl.NewContext(0, 0)
	c := glmesh.NewCollection(ctx)
	defer c.Clear()
	ctx.BindBuffer(glmesh.BufferTarget(1), 0)
	pyramid := shapes.Pyramid()
	g, err := c.Add(pyramid.Vertices, pyramid.Indices)
	require.NoError(t, err)
	require.True(t, g.Live())
	require.Equal(t, 1, c.Len())
}

func TestCreateTooManyIndices(t *testing.T) {
	if strconv.IntSize < 64 {
		t.Skip("index count cannot exceed int32 range on this platform")
	}
	ctx := softgl.NewContext(0, 0)
	g := glmesh.NewGeometryBuffer(ctx)
	var idx uint32
	n := math.MaxInt32
	n++
	// The slice is never read: Create rejects it by length alone.
	huge := unsafe.Slice(&idx, n)
	err := g.Create(shapes.Triangle().Vertices, huge)
	require.ErrorContains(t, err, "exceeds maximum draw count")
	requireEmpty(t, g)
	require.Equal(t, softgl.Stats{}, ctx.Stats())
}
