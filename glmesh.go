// Package glmesh owns GPU-resident indexed geometry: a vertex array, its
// vertex buffer and its index buffer. Graphics calls go through a Context,
// which may be a real OpenGL context (see package glctx) or a software
// emulation (see package softgl).
//
// None of the types in this package are safe for concurrent use. All calls must
// happen on the goroutine that owns the graphics context, which for OpenGL
// means a goroutine pinned with runtime.LockOSThread.
package glmesh

import "errors"

// Handle is an opaque name for a GPU resource. The zero Handle denotes no resource.
type Handle uint32

// The enum types below carry their OpenGL numeric values so backends can pass them through.
type (
	// BufferTarget selects the binding point of a data buffer.
	BufferTarget uint32
	// Usage is a hint on how a buffer's contents will be accessed after upload.
	Usage uint32
	// Primitive is the topology used to assemble indexed vertices.
	Primitive uint32
	// IndexType is the element width of index data.
	IndexType uint32
	// AttribType is the component type of a vertex attribute.
	AttribType uint32
)

const (
	ArrayBuffer        BufferTarget = 0x8892
	ElementArrayBuffer BufferTarget = 0x8893
)

const (
	StreamDraw  Usage = 0x88E0
	StaticDraw  Usage = 0x88E4
	DynamicDraw Usage = 0x88E8
)

const (
	Points    Primitive = 0x0000
	Lines     Primitive = 0x0001
	Triangles Primitive = 0x0004
)

const (
	UnsignedByte  IndexType = 0x1401
	UnsignedShort IndexType = 0x1403
	UnsignedInt   IndexType = 0x1405
)

const (
	Float AttribType = 0x1406
)

// Size returns the size in bytes of a single index.
func (t IndexType) Size() int {
	switch t {
	case UnsignedByte:
		return 1
	case UnsignedShort:
		return 2
	case UnsignedInt:
		return 4
	}
	return 0
}

func (t BufferTarget) String() string {
	switch t {
	case ArrayBuffer:
		return "ARRAY_BUFFER"
	case ElementArrayBuffer:
		return "ELEMENT_ARRAY_BUFFER"
	}
	return "BufferTarget(?)"
}

// Context is the set of graphics services a GeometryBuffer consumes. It mirrors
// the OpenGL vertex array and buffer object API: a Gen call returns 0 on failure,
// and errors raised by any call are reported later through Err.
type Context interface {
	GenVertexArray() Handle
	DeleteVertexArray(Handle)
	// BindVertexArray makes h the active vertex array. Binding 0 deactivates it.
	BindVertexArray(h Handle)

	GenBuffer() Handle
	DeleteBuffer(Handle)
	// BindBuffer makes h the active buffer for target. Binding 0 deactivates it.
	BindBuffer(target BufferTarget, h Handle)
	// BufferDataFloat32 uploads data into the buffer bound to target.
	BufferDataFloat32(target BufferTarget, data []float32, usage Usage)
	// BufferDataUint32 uploads data into the buffer bound to target.
	BufferDataUint32(target BufferTarget, data []uint32, usage Usage)

	// VertexAttribPointer describes attribute index of the active vertex array as
	// sourced from the buffer bound to ArrayBuffer. Stride and offset are in bytes.
	VertexAttribPointer(index uint32, size int32, xtype AttribType, normalized bool, stride int32, offset int)
	EnableVertexAttribArray(index uint32)

	// DrawElements submits count indices read from the active vertex array's
	// element buffer, starting at byte offset.
	DrawElements(mode Primitive, count int32, xtype IndexType, offset int)

	// Err returns and clears the context error flag. It returns nil if no
	// error was raised since the last call.
	Err() error
}

var (
	// ErrAllocation is returned when the context fails to produce a handle.
	ErrAllocation = errors.New("glmesh: resource allocation failed")
	// ErrNotLive is returned when rendering a buffer with no resources.
	ErrNotLive = errors.New("glmesh: geometry buffer not created")
	// ErrDestroyed is returned by operations on a destroyed buffer.
	ErrDestroyed = errors.New("glmesh: geometry buffer destroyed")
)
