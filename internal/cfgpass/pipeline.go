// Package cfgpass implements the CFG post-processing pipeline: the
// sequence of in-place passes that turn a freshly built control flow graph
// into the canonicalized, alias-free, argument-annotated graph the type
// inference back-end consumes. Run chains the passes in data-flow order.
package cfgpass

import (
	"cfgcanon/internal/cfgir"
	"cfgcanon/internal/pipelinectx"
)

// Run executes the whole pipeline over cfg: simplify, dealias,
// markLoopHeaders, removeDeadAssigns, computeMinMaxLoops,
// fillInBlockArguments, then a final forward topo-sort.
//
// The dealiaser and the first phase of the block-argument solver both read
// cfg.ForwardsTopoSort, so it must already hold a valid order before they
// run; Run seeds it with an initial forward topo-sort if the external
// builder didn't already establish one, then recomputes it a second time
// at the end since the simplifier's fusions and shortcuts can otherwise
// leave predecessors ordered after successors they no longer actually
// precede. See DESIGN.md's note on this for the reasoning.
func Run(ctx *pipelinectx.Context, rw *cfgir.ReadsAndWrites, cfg *cfgir.CFG) {
	tr, goCtx := pipelinectx.StartSpan(ctx.Go, "cfgpass.run")
	runCtx := &pipelinectx.Context{Go: goCtx, State: ctx.State, Tracer: tr, Debug: ctx.Debug}
	defer tr.Finish(nil)

	if len(cfg.ForwardsTopoSort) == 0 {
		TopoSortFwd(runCtx, cfg)
	}

	Simplify(runCtx, cfg)
	Dealias(runCtx, cfg)
	MarkLoopHeaders(runCtx, cfg)
	RemoveDeadAssigns(runCtx, rw, cfg)
	ComputeMinMaxLoops(runCtx, rw, cfg)
	FillInBlockArguments(runCtx, rw, cfg)
	TopoSortFwd(runCtx, cfg)
}
