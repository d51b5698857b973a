// Package pipelinectx carries the read-only state the CFG pipeline consults:
// whether a language-server query is in flight (which must suppress any
// pass that would move source locations) and a tracer for timing spans. It
// deliberately does not carry the rest of a full compiler context -- module
// registries, import graphs, diagnostics for end users -- none of which this
// pipeline needs or produces.
package pipelinectx

import "context"

// State is the read-only signal set the pipeline consults before running a
// pass that would otherwise move or discard source-observable structure.
type State struct {
	// lspQueryActive is true while a language-server query is in flight over
	// the method being processed; Simplify and RemoveDeadAssigns must be
	// skipped so that locations the language server is tracking stay put.
	lspQueryActive bool
}

// NewState returns a State for batch compilation, with no LSP query active.
func NewState() State { return State{} }

// WithLSPQuery returns a copy of s reflecting an in-flight language-server
// query over the method being processed.
func (s State) WithLSPQuery(active bool) State {
	s.lspQueryActive = active
	return s
}

// SkipLocationMovingPasses reports whether the simplifier and dead-assign
// remover must be skipped this run.
func (s State) SkipLocationMovingPasses() bool { return s.lspQueryActive }

// Context is the per-call handle passed to every pipeline operation. It is
// cheap to construct and carries no ownership over the CFG it operates on.
type Context struct {
	Go     context.Context
	State  State
	Tracer *Tracer
	// Debug gates the sanity checker: when true, Simplify re-validates
	// invariants after every structural mutation it makes.
	Debug bool
}

// New builds a Context for a single CFG's pass over the pipeline.
func New(goCtx context.Context, state State, debug bool) *Context {
	return &Context{Go: goCtx, State: state, Debug: debug}
}
