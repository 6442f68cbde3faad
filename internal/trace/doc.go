// Package trace provides the structured logging subsystem of the analyser.
//
// Events describe spans (begin/end pairs) and instant points. Driver
// operations, modules, analysis phases, files and single declarations each
// get their own Scope, and the Level decides which scopes are emitted.
//
// # Usage
//
//	c2sema check --trace=- --trace-level=phase c2sema.toml
//
// # Tracers
//
//   - Nop: zero-overhead tracer when disabled
//   - StreamTracer: immediate write (text or NDJSON)
//   - RingTracer: in-memory circular buffer dumped when the run ends; with a
//     StreamTracer behind it, it also forwards every event
//
// Every event carries a Subject (module, phase, file) and end events of
// counted spans carry the number of errors the span produced.
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: nothing is streamed; the ring keeps phase boundaries
//   - LevelPhase: driver, module and phase boundaries
//   - LevelDetail: plus per-file steps
//   - LevelDebug: plus per-declaration events
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePhase, "resolve-types", trace.Parent(ctx),
//		trace.Subject{Module: "app"})
//	span.WithErrors(n).End("")
package trace
