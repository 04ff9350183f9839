package glmesh

// bindVertexArray activates vertex array h and returns the function that
// deactivates it. Callers defer the returned function so the context is left
// with no vertex array bound on every exit path.
func bindVertexArray(ctx Context, h Handle) (unbind func()) {
	ctx.BindVertexArray(h)
	return func() { ctx.BindVertexArray(0) }
}

// bindBuffer is the buffer equivalent of bindVertexArray.
func bindBuffer(ctx Context, target BufferTarget, h Handle) (unbind func()) {
	ctx.BindBuffer(target, h)
	return func() { ctx.BindBuffer(target, 0) }
}
