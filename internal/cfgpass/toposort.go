package cfgpass

import (
	"sort"

	"cfgcanon/internal/cfgir"
	"cfgcanon/internal/pipelinectx"
)

// TopoSortFwd recomputes cfg.ForwardsTopoSort from scratch: a DFS from
// Entry producing a post-order that is reversed so predecessors precede
// successors. Downstream consumers (and the dealiaser and block-argument
// solver earlier in this same run) rely on that ordering guarantee.
//
// The DFS is biased: among a block's successors, the one with the
// shallower OuterLoops is visited first, which ensures loop bodies are
// numbered before their loop's exit block in the post-order reversal.
func TopoSortFwd(ctx *pipelinectx.Context, cfg *cfgir.CFG) {
	tr, _ := pipelinectx.StartSpan(ctx.Go, "cfgpass.topoSortFwd")
	defer tr.Finish(nil)

	for _, b := range cfg.Blocks() {
		b.FwdID = cfgir.FwdUnvisited
	}

	post := make([]*cfgir.BasicBlock, 0, len(cfg.Blocks()))
	nextFree := 0
	nextFree = topoSortFwd(&post, nextFree, cfg.Entry)

	ordered := make([]*cfgir.BasicBlock, len(post))
	for i, b := range post {
		ordered[len(post)-1-i] = b
	}
	cfg.ForwardsTopoSort = ordered

	tr.Printw("topoSortFwd done", "blocks", nextFree)
}

// topoSortFwd is the recursive post-order worker: target accumulates blocks
// as they finish, the caller reverses it, and the return value is the next
// free position -- each block is assigned nextFree and the counter bumped.
func topoSortFwd(target *[]*cfgir.BasicBlock, nextFree int, currentBB *cfgir.BasicBlock) int {
	if currentBB.FwdID != cfgir.FwdUnvisited {
		return nextFree
	}
	currentBB.FwdID = cfgir.FwdInProgress

	succs := currentBB.Successors()
	sort.SliceStable(succs, func(i, j int) bool {
		return succs[i].OuterLoops < succs[j].OuterLoops
	})

	for _, succ := range succs {
		nextFree = topoSortFwd(target, nextFree, succ)
	}

	currentBB.FwdID = nextFree
	*target = append(*target, currentBB)
	return nextFree + 1
}
