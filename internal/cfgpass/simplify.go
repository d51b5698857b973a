package cfgpass

import (
	"cfgcanon/internal/cfgir"
	"cfgcanon/internal/pipelinectx"
)

// Simplify canonicalizes cfg in place: unreachable blocks are dropped, jumps
// are threaded, and straight-line runs are fused. It is skipped entirely
// when a language-server query is active, since every rule here can move
// or discard a source location the server is tracking.
//
// The sweep repeats to a fixpoint. Within one pass over cfg.Blocks(), each
// block other than the entry and the dead block is offered the rules in
// order and stops at the first one that fires; the pass then goes on to the
// next block, and a new pass starts whenever any rule fired, since a fired
// rule can change what rule applies to an earlier block (e.g. fusing a
// successor can make that successor's own former successor newly
// unreachable).
func Simplify(ctx *pipelinectx.Context, cfg *cfgir.CFG) {
	tr, _ := pipelinectx.StartSpan(ctx.Go, "cfgpass.simplify")
	defer tr.Finish(nil)

	if ctx.State.SkipLocationMovingPasses() {
		return
	}

	removed := 0
	for {
		changed := false
		for _, b := range cfg.Blocks() {
			if b == cfg.Entry || b == cfg.DeadBlock {
				continue
			}
			if !cfg.Live(b.ID) {
				continue
			}

			b.DedupBackEdges()

			if tryRemoveUnreachable(cfg, b) {
				removed++
				changed = true
				assertInvariants(ctx, cfg)
				continue
			}
			normalizeUnconditional(b)

			fired := tryFuseBlock(cfg, b) ||
				tryCollapseEmptyPassThrough(cfg, b) ||
				tryThenShortcut(cfg, b) ||
				tryElseShortcut(cfg, b)
			if fired {
				changed = true
				assertInvariants(ctx, cfg)
			}
		}
		if !changed {
			break
		}
	}
	tr.Printw("simplify done", "removed", removed)
}

// tryRemoveUnreachable implements rule 1: a block with no predecessors left
// is dropped from the graph entirely.
func tryRemoveUnreachable(cfg *cfgir.CFG, b *cfgir.BasicBlock) bool {
	if len(b.BackEdges) > 0 {
		return false
	}
	cfg.DeleteBlock(b)
	return true
}

// normalizeUnconditional implements rule 3: once both arms of a branch
// point at the same block, the condition no longer matters.
func normalizeUnconditional(b *cfgir.BasicBlock) {
	if b.Bexit.Thenb != nil && b.Bexit.Thenb == b.Bexit.Elseb {
		b.Bexit.Cond = cfgir.Unconditional
	}
}

// eligibleFusionTarget holds the guards shared by rules 4 and 5: they prevent fusing across
// source-observable scopes (RubyBlockID) or loop-depth boundaries that
// downstream passes track independently of the graph shape.
func eligibleFusionTarget(b, t *cfgir.BasicBlock, deadBlock *cfgir.BasicBlock) bool {
	return t != deadBlock && t != b && t.RubyBlockID == b.RubyBlockID && t.OuterLoops == b.OuterLoops
}

// tryFuseBlock implements rule 4: when both arms of b point at the same
// single-predecessor block T in the same lexical scope, T's code is folded
// onto the end of b and b inherits T's branch exit.
func tryFuseBlock(cfg *cfgir.CFG, b *cfgir.BasicBlock) bool {
	t := b.Bexit.Thenb
	if t == nil || t != b.Bexit.Elseb {
		return false
	}
	if !eligibleFusionTarget(b, t, cfg.DeadBlock) {
		return false
	}
	if len(t.BackEdges) != 1 {
		return false
	}

	b.Exprs = append(b.Exprs, t.Exprs...)
	relinkBranchExit(b, t)
	t.BackEdges = nil
	cfg.DeleteBlock(t)
	return true
}

// tryCollapseEmptyPassThrough implements rule 5: same guards as fusion, but
// T is empty and is not a block-call synchronization point, so b simply
// adopts T's branch exit directly instead of copying any code.
func tryCollapseEmptyPassThrough(cfg *cfgir.CFG, b *cfgir.BasicBlock) bool {
	t := b.Bexit.Thenb
	if t == nil || t != b.Bexit.Elseb {
		return false
	}
	if !eligibleFusionTarget(b, t, cfg.DeadBlock) {
		return false
	}
	if len(t.Exprs) != 0 {
		return false
	}
	if t.Bexit.Cond == cfgir.BlockCall {
		return false
	}

	t.RemoveBackEdge(b)
	relinkBranchExit(b, t)
	return true
}

// relinkBranchExit makes b inherit t's branch exit, adding b to every one
// of t's successors' backedges. It never removes t from those backedges:
// tryFuseBlock's subsequent cfg.DeleteBlock(t) does that for the callers
// that actually delete t, but tryCollapseEmptyPassThrough keeps t alive and
// still reachable through its own unchanged Bexit, so t must stay listed
// wherever it still branches.
func relinkBranchExit(b, t *cfgir.BasicBlock) {
	for _, succ := range t.Successors() {
		succ.AddBackEdge(b)
	}
	b.Bexit = t.Bexit
}

// tryThenShortcut implements rule 6: if the then-arm is an empty block in
// the same lexical scope whose own two arms already agree, skip straight to
// that shared target.
func tryThenShortcut(cfg *cfgir.CFG, b *cfgir.BasicBlock) bool {
	thenb := b.Bexit.Thenb
	if thenb == nil || thenb == cfg.DeadBlock {
		return false
	}
	if thenb.RubyBlockID != b.RubyBlockID || len(thenb.Exprs) != 0 {
		return false
	}
	target := thenb.Bexit.Thenb
	if target == nil || target != thenb.Bexit.Elseb {
		return false
	}
	if b.Bexit.Thenb == target {
		return false
	}

	thenb.RemoveBackEdge(b)
	b.Bexit.Thenb = target
	target.AddBackEdge(b)
	return true
}

// tryElseShortcut is the else-arm mirror of tryThenShortcut: when b's
// else-target is itself an empty unconditional block whose then/else both
// land on the same place, b can skip straight there. The guard compares
// against elseb's own RubyBlockID (the block actually being shortcut),
// keeping it symmetric with tryThenShortcut's comparison against thenb.
func tryElseShortcut(cfg *cfgir.CFG, b *cfgir.BasicBlock) bool {
	elseb := b.Bexit.Elseb
	if elseb == nil || elseb == cfg.DeadBlock {
		return false
	}
	if elseb.RubyBlockID != b.RubyBlockID || len(elseb.Exprs) != 0 {
		return false
	}
	target := elseb.Bexit.Thenb
	if target == nil || target != elseb.Bexit.Elseb {
		return false
	}
	if b.Bexit.Elseb == target {
		return false
	}

	elseb.RemoveBackEdge(b)
	b.Bexit.Elseb = target
	target.AddBackEdge(b)
	return true
}
