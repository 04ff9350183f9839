// Package softgl implements glmesh.Context in pure Go. It follows the OpenGL
// core profile rules for vertex arrays and buffer objects closely enough to
// catch binding mistakes, and rasterizes indexed triangles with fauxgl so the
// result can be saved as an image without a GPU.
package softgl

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/fogleman/fauxgl"
	"github.com/soypat/glmesh"
)

// Errors reported by Context.Err, named after their OpenGL counterparts.
var (
	ErrInvalidEnum      = errors.New("invalid enum")
	ErrInvalidValue     = errors.New("invalid value")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrOutOfMemory      = errors.New("out of memory")
)

// MaxVertexAttribs is the number of vertex attribute slots per vertex array.
const MaxVertexAttribs = 16

var _ glmesh.Context = (*Context)(nil)

// Context is a software graphics context. The zero value is not usable, use NewContext.
type Context struct {
	// MaxObjects limits the number of vertex arrays and buffers alive at once.
	// Once reached, Gen calls return 0 and raise ErrOutOfMemory. Zero means no limit.
	MaxObjects int

	lastArray  glmesh.Handle
	lastBuffer glmesh.Handle
	// arrays always contains the default vertex array under name 0.
	arrays  map[glmesh.Handle]*vertexArray
	buffers map[glmesh.Handle]*buffer

	boundArray  glmesh.Handle
	arrayBuffer glmesh.Handle

	errs   []error
	stats  Stats
	draws  []Draw
	raster *fauxgl.Context
}

type vertexArray struct {
	elementBuffer glmesh.Handle
	attribs       [MaxVertexAttribs]Attrib
}

type buffer struct {
	data  []byte
	usage glmesh.Usage
}

// Attrib is the state of one vertex attribute slot of a vertex array.
type Attrib struct {
	Enabled    bool
	Buffer     glmesh.Handle
	Size       int32
	Type       glmesh.AttribType
	Normalized bool
	Stride     int32
	Offset     int
}

// BufferInfo describes a buffer object's storage.
type BufferInfo struct {
	Size  int
	Usage glmesh.Usage
}

// Bindings is the context's current binding state.
type Bindings struct {
	VertexArray glmesh.Handle
	ArrayBuffer glmesh.Handle
	// ElementArrayBuffer is the element buffer of the bound vertex array.
	ElementArrayBuffer glmesh.Handle
}

// Stats counts calls and objects over the lifetime of a Context.
type Stats struct {
	ArraysGenerated  int
	ArraysDeleted    int
	BuffersGenerated int
	BuffersDeleted   int
	// DeleteCalls counts every Delete call, including no-op deletes.
	DeleteCalls int
	BindCalls   int
	DrawCalls   int
}

// LiveArrays returns the number of vertex arrays generated and not yet deleted.
func (s Stats) LiveArrays() int { return s.ArraysGenerated - s.ArraysDeleted }

// LiveBuffers returns the number of buffers generated and not yet deleted.
func (s Stats) LiveBuffers() int { return s.BuffersGenerated - s.BuffersDeleted }

// NewContext returns a Context that rasterizes triangle draws into a
// width x height image. If either dimension is zero draws are validated and
// recorded but not rasterized.
func NewContext(width, height int) *Context {
	c := &Context{
		arrays:  map[glmesh.Handle]*vertexArray{0: {}},
		buffers: make(map[glmesh.Handle]*buffer),
	}
	if width > 0 && height > 0 {
		c.raster = fauxgl.NewContext(width, height)
		c.raster.Cull = fauxgl.CullNone
		c.raster.Shader = fauxgl.NewSolidColorShader(fauxgl.Identity(), fauxgl.HexColor("#FFFFFF"))
	}
	return c
}

func (c *Context) GenVertexArray() glmesh.Handle {
	if !c.canAllocate() {
		c.raise("GenVertexArray", ErrOutOfMemory)
		return 0
	}
	c.lastArray++
	c.arrays[c.lastArray] = &vertexArray{}
	c.stats.ArraysGenerated++
	return c.lastArray
}

func (c *Context) DeleteVertexArray(h glmesh.Handle) {
	c.stats.DeleteCalls++
	if _, ok := c.arrays[h]; !ok || h == 0 {
		return // Unused names and the default array are silently ignored.
	}
	if c.boundArray == h {
		c.boundArray = 0
	}
	delete(c.arrays, h)
	c.stats.ArraysDeleted++
}

func (c *Context) BindVertexArray(h glmesh.Handle) {
	c.stats.BindCalls++
	if _, ok := c.arrays[h]; !ok {
		c.raise("BindVertexArray", ErrInvalidOperation)
		return
	}
	c.boundArray = h
}

func (c *Context) GenBuffer() glmesh.Handle {
	if !c.canAllocate() {
		c.raise("GenBuffer", ErrOutOfMemory)
		return 0
	}
	c.lastBuffer++
	c.buffers[c.lastBuffer] = &buffer{}
	c.stats.BuffersGenerated++
	return c.lastBuffer
}

func (c *Context) DeleteBuffer(h glmesh.Handle) {
	c.stats.DeleteCalls++
	if _, ok := c.buffers[h]; !ok {
		return
	}
	// Deleting a bound buffer reverts its bindings in the current context to 0.
	if c.arrayBuffer == h {
		c.arrayBuffer = 0
	}
	if va := c.arrays[c.boundArray]; va.elementBuffer == h {
		va.elementBuffer = 0
	}
	delete(c.buffers, h)
	c.stats.BuffersDeleted++
}

func (c *Context) BindBuffer(target glmesh.BufferTarget, h glmesh.Handle) {
	c.stats.BindCalls++
	if !validTarget(target) {
		c.raise("BindBuffer", ErrInvalidEnum)
		return
	}
	if _, ok := c.buffers[h]; h != 0 && !ok {
		c.raise("BindBuffer", ErrInvalidOperation)
		return
	}
	switch target {
	case glmesh.ArrayBuffer:
		c.arrayBuffer = h
	case glmesh.ElementArrayBuffer:
		c.arrays[c.boundArray].elementBuffer = h
	}
}

func (c *Context) BufferDataFloat32(target glmesh.BufferTarget, data []float32, usage glmesh.Usage) {
	b := c.bufferForData("BufferDataFloat32", target, usage)
	if b == nil {
		return
	}
	b.data = make([]byte, 4*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint32(b.data[4*i:], math.Float32bits(v))
	}
	b.usage = usage
}

func (c *Context) BufferDataUint32(target glmesh.BufferTarget, data []uint32, usage glmesh.Usage) {
	b := c.bufferForData("BufferDataUint32", target, usage)
	if b == nil {
		return
	}
	b.data = make([]byte, 4*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint32(b.data[4*i:], v)
	}
	b.usage = usage
}

func (c *Context) bufferForData(op string, target glmesh.BufferTarget, usage glmesh.Usage) *buffer {
	if !validTarget(target) || !validUsage(usage) {
		c.raise(op, ErrInvalidEnum)
		return nil
	}
	h := c.boundBuffer(target)
	if h == 0 {
		c.raise(op, ErrInvalidOperation)
		return nil
	}
	return c.buffers[h]
}

func (c *Context) VertexAttribPointer(index uint32, size int32, xtype glmesh.AttribType, normalized bool, stride int32, offset int) {
	const op = "VertexAttribPointer"
	switch {
	case xtype != glmesh.Float:
		c.raise(op, ErrInvalidEnum)
	case index >= MaxVertexAttribs || size < 1 || size > 4 || stride < 0 || offset < 0:
		c.raise(op, ErrInvalidValue)
	case c.boundArray == 0 || c.arrayBuffer == 0:
		c.raise(op, ErrInvalidOperation)
	default:
		attr := &c.arrays[c.boundArray].attribs[index]
		*attr = Attrib{
			Enabled:    attr.Enabled,
			Buffer:     c.arrayBuffer,
			Size:       size,
			Type:       xtype,
			Normalized: normalized,
			Stride:     stride,
			Offset:     offset,
		}
	}
}

func (c *Context) EnableVertexAttribArray(index uint32) {
	const op = "EnableVertexAttribArray"
	if index >= MaxVertexAttribs {
		c.raise(op, ErrInvalidValue)
		return
	} else if c.boundArray == 0 {
		c.raise(op, ErrInvalidOperation)
		return
	}
	c.arrays[c.boundArray].attribs[index].Enabled = true
}

// Err returns every error raised since the last call joined together, or nil.
func (c *Context) Err() error {
	if len(c.errs) == 0 {
		return nil
	}
	err := errors.Join(c.errs...)
	c.errs = c.errs[:0]
	return err
}

// Stats returns call and object counters.
func (c *Context) Stats() Stats { return c.stats }

// Bindings returns the current binding state.
func (c *Context) Bindings() Bindings {
	return Bindings{
		VertexArray:        c.boundArray,
		ArrayBuffer:        c.arrayBuffer,
		ElementArrayBuffer: c.arrays[c.boundArray].elementBuffer,
	}
}

// VertexArrayState returns the element buffer and attribute state recorded in
// vertex array h. ok is false if h does not name a vertex array.
func (c *Context) VertexArrayState(h glmesh.Handle) (elementBuffer glmesh.Handle, attribs [MaxVertexAttribs]Attrib, ok bool) {
	va, ok := c.arrays[h]
	if !ok {
		return 0, attribs, false
	}
	return va.elementBuffer, va.attribs, true
}

// Buffer returns information on buffer h. ok is false if h does not name a buffer.
func (c *Context) Buffer(h glmesh.Handle) (info BufferInfo, ok bool) {
	b, ok := c.buffers[h]
	if !ok {
		return info, false
	}
	return BufferInfo{Size: len(b.data), Usage: b.usage}, true
}

// Draws returns the draw calls accepted so far.
func (c *Context) Draws() []Draw { return c.draws }

// ResetDraws forgets recorded draw calls.
func (c *Context) ResetDraws() { c.draws = c.draws[:0] }

// SetShader sets the fauxgl shader used to rasterize subsequent draws.
func (c *Context) SetShader(s fauxgl.Shader) {
	if c.raster != nil {
		c.raster.Shader = s
	}
}

// Clear clears the color buffer to color and resets the depth buffer.
func (c *Context) Clear(color fauxgl.Color) {
	if c.raster != nil {
		c.raster.ClearColorBufferWith(color)
		c.raster.ClearDepthBuffer()
	}
}

// Image returns the rasterized color buffer, or nil if the context does not rasterize.
func (c *Context) Image() image.Image {
	if c.raster == nil {
		return nil
	}
	return c.raster.Image()
}

func (c *Context) boundBuffer(target glmesh.BufferTarget) glmesh.Handle {
	if target == glmesh.ArrayBuffer {
		return c.arrayBuffer
	}
	return c.arrays[c.boundArray].elementBuffer
}

func (c *Context) canAllocate() bool {
	live := len(c.arrays) - 1 + len(c.buffers)
	return c.MaxObjects <= 0 || live < c.MaxObjects
}

func (c *Context) raise(op string, err error) {
	c.errs = append(c.errs, fmt.Errorf("softgl: %s: %w", op, err))
}

func validTarget(t glmesh.BufferTarget) bool {
	return t == glmesh.ArrayBuffer || t == glmesh.ElementArrayBuffer
}

func validUsage(u glmesh.Usage) bool {
	return u == glmesh.StaticDraw || u == glmesh.DynamicDraw || u == glmesh.StreamDraw
}
