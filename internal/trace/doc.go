// Package trace provides a tracing subsystem for the analysis driver.
//
// Traces record what a run spent its time on: command phases, rule
// execution and per-module visits. They are the tool of choice when a
// check pass is slow or a watch pass hangs.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	argus check --trace=- --trace-level=phase
//	argus check --trace=run.ndjson --trace-level=detail
//	argus watch --trace=run.chrome.json --trace-level=debug
//
// # Architecture
//
// The package provides several tracer implementations:
//
//   - Nop: zero-overhead no-op tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer for crash dumps
//   - MultiTracer: combines multiple tracers
//
// # Levels
//
// Tracing verbosity is controlled by levels:
//
//   - LevelOff: no tracing
//   - LevelError: only crash dumps
//   - LevelPhase: driver and pass boundaries
//   - LevelDetail: rule-level spans
//   - LevelDebug: everything including per-module visits
//
// # Scopes
//
// Events are categorized by scope:
//
//   - ScopeDriver: top-level command operations
//   - ScopePass: phases of one run (load, analyze, render)
//   - ScopeRule: one rule over the whole project
//   - ScopeModule: per-module visits inside a rule
//
// # Context Propagation
//
// Tracers travel through the run via context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "analyze", parentID)
//	defer span.End("")
package trace
