// Package glctx implements glmesh.Context on top of OpenGL.
//
// OpenGL must be initialized and a context made current on the calling OS
// thread before any method is called, e.g. with glgl.InitWithCurrentWindow33.
package glctx

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/all-core/gl"
	"github.com/soypat/glmesh"
)

var _ glmesh.Context = (*Context)(nil)

// Context forwards glmesh calls to the current OpenGL context.
type Context struct{}

func New() *Context { return &Context{} }

func (*Context) GenVertexArray() glmesh.Handle {
	var h uint32
	gl.GenVertexArrays(1, &h)
	return glmesh.Handle(h)
}

func (*Context) DeleteVertexArray(h glmesh.Handle) {
	name := uint32(h)
	gl.DeleteVertexArrays(1, &name)
}

func (*Context) BindVertexArray(h glmesh.Handle) {
	gl.BindVertexArray(uint32(h))
}

func (*Context) GenBuffer() glmesh.Handle {
	var h uint32
	gl.GenBuffers(1, &h)
	return glmesh.Handle(h)
}

func (*Context) DeleteBuffer(h glmesh.Handle) {
	name := uint32(h)
	gl.DeleteBuffers(1, &name)
}

func (*Context) BindBuffer(target glmesh.BufferTarget, h glmesh.Handle) {
	gl.BindBuffer(uint32(target), uint32(h))
}

func (*Context) BufferDataFloat32(target glmesh.BufferTarget, data []float32, usage glmesh.Usage) {
	if len(data) == 0 {
		gl.BufferData(uint32(target), 0, nil, uint32(usage))
		return
	}
	gl.BufferData(uint32(target), 4*len(data), gl.Ptr(data), uint32(usage))
}

func (*Context) BufferDataUint32(target glmesh.BufferTarget, data []uint32, usage glmesh.Usage) {
	if len(data) == 0 {
		gl.BufferData(uint32(target), 0, nil, uint32(usage))
		return
	}
	gl.BufferData(uint32(target), 4*len(data), gl.Ptr(data), uint32(usage))
}

func (*Context) VertexAttribPointer(index uint32, size int32, xtype glmesh.AttribType, normalized bool, stride int32, offset int) {
	gl.VertexAttribPointer(index, size, uint32(xtype), normalized, stride, gl.PtrOffset(offset))
}

func (*Context) EnableVertexAttribArray(index uint32) {
	gl.EnableVertexAttribArray(index)
}

func (*Context) DrawElements(mode glmesh.Primitive, count int32, xtype glmesh.IndexType, offset int) {
	gl.DrawElements(uint32(mode), count, uint32(xtype), gl.PtrOffset(offset))
}

// Err drains the OpenGL error flags. The returned error joins one Error per raised flag.
func (*Context) Err() error {
	var errs []error
	// Bounded in case the context is lost, where some drivers report errors indefinitely.
	for i := 0; i < 16; i++ {
		code := gl.GetError()
		if code == gl.NO_ERROR {
			break
		}
		errs = append(errs, Error(code))
	}
	return errors.Join(errs...)
}

// Error is an OpenGL error code as returned by glGetError.
type Error uint32

func (e Error) Error() string {
	switch e {
	case gl.INVALID_ENUM:
		return "gl: invalid enum"
	case gl.INVALID_VALUE:
		return "gl: invalid value"
	case gl.INVALID_OPERATION:
		return "gl: invalid operation"
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return "gl: invalid framebuffer operation"
	case gl.OUT_OF_MEMORY:
		return "gl: out of memory"
	case gl.STACK_UNDERFLOW:
		return "gl: stack underflow"
	case gl.STACK_OVERFLOW:
		return "gl: stack overflow"
	}
	return fmt.Sprintf("gl: error 0x%04x", uint32(e))
}
