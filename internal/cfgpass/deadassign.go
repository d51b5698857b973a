package cfgpass

import (
	"cfgcanon/internal/cfgir"
	"cfgcanon/internal/pipelinectx"
)

// RemoveDeadAssigns drops side-effect-free bindings whose result is never
// consumed, using the reads/writes/dead summary rw. It is skipped under an
// active language-server query for the same reason Simplify is. One sweep
// suffices: erasing a pure binding cannot make another pure binding dead,
// since rw's read sets were computed up front and don't shrink as a
// consequence of this pass running.
func RemoveDeadAssigns(ctx *pipelinectx.Context, rw *cfgir.ReadsAndWrites, cfg *cfgir.CFG) {
	tr, _ := pipelinectx.StartSpan(ctx.Go, "cfgpass.removeDeadAssigns")
	defer tr.Finish(nil)

	if ctx.State.SkipLocationMovingPasses() {
		return
	}

	removed := 0
	for _, b := range cfg.Blocks() {
		reads := rw.ReadsOf(b.ID)

		out := b.Exprs[:0]
		for _, binding := range b.Exprs {
			if keepBinding(b, binding, reads) {
				out = append(out, binding)
			} else {
				removed++
			}
		}
		b.Exprs = out
	}
	tr.Printw("removeDeadAssigns done", "removed", removed)
}

func keepBinding(b *cfgir.BasicBlock, binding cfgir.Binding, reads map[cfgir.LocalRef]bool) bool {
	if binding.Bind.IsAliasForGlobal() {
		return true
	}

	wasRead := reads[binding.Bind] || argOf(b.Bexit.Thenb, binding.Bind) || argOf(b.Bexit.Elseb, binding.Bind)
	if wasRead {
		return true
	}

	return !cfgir.IsPure(binding.Value)
}

func argOf(b *cfgir.BasicBlock, v cfgir.LocalRef) bool {
	if b == nil {
		return false
	}
	for _, a := range b.Args {
		if a == v {
			return true
		}
	}
	return false
}
