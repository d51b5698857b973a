package cfgpass

import (
	"sort"

	"github.com/oleiade/lane"

	"cfgcanon/internal/cfgir"
	"cfgcanon/internal/pipelinectx"
	"cfgcanon/internal/telemetry"
)

// varSet is a per-block set of variables. Each pass that needs one owns its
// own scratch map, indexed by block ID, and lets it go out of scope on
// return rather than caching it on the block.
type varSet = map[cfgir.LocalRef]bool

// FillInBlockArguments computes B.Args for every block: the variables both
// live on entry (some successor reads them before a write) and possibly
// defined by a predecessor (some ancestor writes them). Exact live-variable
// analysis over an arbitrary graph is iterative fixpoint work; this pass
// instead computes two cheaper overapproximations, U1 and U2, and
// intersects them.
func FillInBlockArguments(ctx *pipelinectx.Context, rw *cfgir.ReadsAndWrites, cfg *cfgir.CFG) {
	tr, _ := pipelinectx.StartSpan(ctx.Go, "cfgpass.fillInBlockArguments")
	defer tr.Finish(nil)

	u1 := upperBoundReadsBackward(cfg, rw)
	u2 := upperBoundWritesForward(cfg, rw)

	added := int64(0)
	for _, b := range cfg.Blocks() {
		args := intersectSorted(u1[b.ID], u2[b.ID])
		b.Args = args
		added += int64(len(args))
	}
	telemetry.BlockArguments.Add(added)

	tr.Printw("fillInBlockArguments done", "variables", added)
}

// upperBoundReadsBackward computes U1: reads flowing backwards through
// successors, via a worklist fixpoint. A block's predecessors are requeued
// whenever its own set changes, since that's the only way a predecessor's
// union can still change. Loop-depth pinning -- dropping a variable dead at B but mentioned
// at or above B's own loop depth, compensating for the type system's
// flow-insensitive treatment of loop-carried variables -- is folded into
// the same step as the union, not applied as a separate pass afterward: a
// variable pulled in from a successor must be pinned back out before it is
// ever offered to B's own predecessors.
func upperBoundReadsBackward(cfg *cfgir.CFG, rw *cfgir.ReadsAndWrites) map[int]varSet {
	u1 := make(map[int]varSet, cfg.MaxBasicBlockID)
	preds := make(map[int][]*cfgir.BasicBlock, cfg.MaxBasicBlockID)

	blocks := cfg.Blocks()
	queue := lane.NewQueue()
	for _, b := range blocks {
		if b == cfg.DeadBlock {
			continue
		}
		s := varSet{}
		for v := range rw.ReadsOf(b.ID) {
			s[v] = true
		}
		pinLoopDeadVars(s, cfg, rw, b)
		u1[b.ID] = s
		queue.Enqueue(b)
	}
	for _, b := range blocks {
		for _, succ := range b.Successors() {
			if succ == cfg.DeadBlock {
				continue
			}
			preds[succ.ID] = append(preds[succ.ID], b)
		}
	}

	enqueued := make(map[int]bool, len(blocks))
	for _, b := range blocks {
		enqueued[b.ID] = true
	}

	for !queue.Empty() {
		v := queue.Dequeue()
		if v == nil {
			break
		}
		b := v.(*cfgir.BasicBlock)
		enqueued[b.ID] = false

		before := len(u1[b.ID])
		for _, succ := range b.Successors() {
			if succ == cfg.DeadBlock {
				continue
			}
			for x := range u1[succ.ID] {
				u1[b.ID][x] = true
			}
		}
		pinLoopDeadVars(u1[b.ID], cfg, rw, b)

		if len(u1[b.ID]) != before {
			for _, pred := range preds[b.ID] {
				if !enqueued[pred.ID] {
					enqueued[pred.ID] = true
					queue.Enqueue(pred)
				}
			}
		}
	}

	return u1
}

// pinLoopDeadVars removes from s every variable that is dead at b but
// mentioned at or above b's own loop depth, the same prune applied at
// every visit to b in upperBoundReadsBackward's worklist loop.
func pinLoopDeadVars(s varSet, cfg *cfgir.CFG, rw *cfgir.ReadsAndWrites, b *cfgir.BasicBlock) {
	for v := range rw.DeadOf(b.ID) {
		if min, ok := cfg.MinLoops[v]; ok && b.OuterLoops <= min {
			delete(s, v)
		}
	}
}

// upperBoundWritesForward computes U2: writes flowing forward through
// backedges, iterated to fixpoint over cfg.ForwardsTopoSort. That array is
// stored entry-first (TopoSortFwd reverses its DFS post-order, so a block
// comes after its predecessors other than loop backedges), so walking it in increasing index order visits every
// predecessor before its successors and, absent cycles, a single pass
// already converges.
func upperBoundWritesForward(cfg *cfgir.CFG, rw *cfgir.ReadsAndWrites) map[int]varSet {
	u2 := make(map[int]varSet, cfg.MaxBasicBlockID)
	for _, b := range cfg.Blocks() {
		u2[b.ID] = varSet{}
	}

	for {
		changed := false
		order := cfg.ForwardsTopoSort
		for i := 0; i < len(order); i++ {
			b := order[i]
			if b == cfg.DeadBlock {
				continue
			}
			for _, pred := range b.BackEdges {
				if pred == cfg.DeadBlock {
					continue
				}
				for v := range rw.WritesOf(pred.ID) {
					if !u2[b.ID][v] {
						u2[b.ID][v] = true
						changed = true
					}
				}
				for v := range u2[pred.ID] {
					if !u2[b.ID][v] {
						u2[b.ID][v] = true
						changed = true
					}
				}
			}
		}
		if !changed {
			break
		}
	}
	return u2
}

// intersectSorted returns sorted(a ∩ b), reserving capacity against the
// smaller of the two sets since the result can never exceed it.
func intersectSorted(a, b varSet) []cfgir.LocalRef {
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}

	out := make([]cfgir.LocalRef, 0, len(small))
	for v := range small {
		if large[v] {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
