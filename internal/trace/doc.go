// Package trace records what faultline does while it searches: driver steps,
// per-file analysis, search passes and individual block decisions.
//
// It helps explain why a particular block was reported and spots inputs that
// make the heuristics crawl.
//
// # Usage
//
//	faultline check --trace=- --trace-level=debug broken.rb
//
// # Tracers
//
//   - Nop: zero-overhead tracer when disabled
//   - StreamTracer: immediate write to a file or stderr
//   - RingTracer: circular buffer, dumped when a search times out
//   - MultiTracer: fan-out to several tracers
//
// # Levels and scopes
//
// LevelPhase emits ScopeDriver and ScopeFile events, LevelDetail adds
// ScopeSearch (seed/expand passes), LevelDebug adds ScopeStep (every block
// pushed into the frontier).
//
//	span := trace.Begin(t, trace.ScopeFile, "analyze", 0)
//	defer span.End("")
package trace
