package glmesh

import "fmt"

// Collection owns a list of geometry buffers created in the same context.
// Clear destroys every buffer in the collection.
type Collection struct {
	ctx     Context
	buffers []*GeometryBuffer
}

// NewCollection returns an empty collection whose buffers are created in ctx.
func NewCollection(ctx Context) *Collection {
	if ctx == nil {
		panic("glmesh: nil Context")
	}
	return &Collection{ctx: ctx}
}

// Add creates a geometry buffer from vertices and indices and appends it to
// the collection. The returned buffer is owned by the collection and must not
// be destroyed by the caller. On failure nothing is added.
func (c *Collection) Add(vertices []float32, indices []uint32) (*GeometryBuffer, error) {
	g := NewGeometryBuffer(c.ctx)
	err := g.Create(vertices, indices)
	if err != nil {
		g.Destroy()
		return nil, err
	}
	c.buffers = append(c.buffers, g)
	return g, nil
}

// Len returns the number of buffers in the collection.
func (c *Collection) Len() int { return len(c.buffers) }

// At returns the i'th buffer added to the collection.
func (c *Collection) At(i int) *GeometryBuffer { return c.buffers[i] }

// Each calls fn for every buffer in insertion order and stops at the first error.
func (c *Collection) Each(fn func(i int, g *GeometryBuffer) error) error {
	for i, g := range c.buffers {
		if err := fn(i, g); err != nil {
			return err
		}
	}
	return nil
}

// Render renders every buffer in insertion order.
func (c *Collection) Render() error {
	return c.Each(func(i int, g *GeometryBuffer) error {
		if err := g.Render(); err != nil {
			return fmt.Errorf("buffer %d: %w", i, err)
		}
		return nil
	})
}

// Clear destroys all buffers and empties the collection.
func (c *Collection) Clear() {
	for i, g := range c.buffers {
		g.Destroy()
		c.buffers[i] = nil
	}
	c.buffers = c.buffers[:0]
}
