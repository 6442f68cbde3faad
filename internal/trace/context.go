package trace

import "context"

type (
	tracerKey struct{}
	parentKey struct{}
)

// FromContext returns the tracer attached to ctx, or Nop when there is none.
func FromContext(ctx context.Context) Tracer {
	if ctx == nil {
		return Nop
	}
	if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
		return t
	}
	return Nop
}

// WithTracer attaches t to ctx. A nil t detaches tracing.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// WithParent makes s the parent of spans begun from the returned context.
func WithParent(ctx context.Context, s *Span) context.Context {
	return context.WithValue(ctx, parentKey{}, s.ID())
}

// Parent returns the span id set by WithParent, 0 at the root of a run.
func Parent(ctx context.Context) uint64 {
	if ctx == nil {
		return 0
	}
	id, _ := ctx.Value(parentKey{}).(uint64)
	return id
}

// Nop discards everything; FromContext falls back to it.
var Nop Tracer = nopTracer{}

type nopTracer struct{}

func (nopTracer) Emit(*Event)   {}
func (nopTracer) Flush() error  { return nil }
func (nopTracer) Close() error  { return nil }
func (nopTracer) Level() Level  { return LevelOff }
func (nopTracer) Enabled() bool { return false }
