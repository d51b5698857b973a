package cfgpass

import (
	"cfgcanon/internal/cfgir"
	"cfgcanon/internal/pipelinectx"
)

// MarkLoopHeaders tags every block that has a predecessor at a shallower
// loop depth with LoopHeader: an edge from a shallower loop level into a
// deeper one is a reentry into that loop's header.
func MarkLoopHeaders(ctx *pipelinectx.Context, cfg *cfgir.CFG) {
	tr, _ := pipelinectx.StartSpan(ctx.Go, "cfgpass.markLoopHeaders")
	defer tr.Finish(nil)

	for _, b := range cfg.Blocks() {
		for _, pred := range b.BackEdges {
			if pred.OuterLoops < b.OuterLoops {
				b.Flags |= cfgir.LoopHeader
				break
			}
		}
	}
}
