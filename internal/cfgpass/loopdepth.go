package cfgpass

import (
	"cfgcanon/internal/cfgir"
	"cfgcanon/internal/pipelinectx"
)

// ComputeMinMaxLoops populates cfg.MinLoops (the shallowest loop depth at
// which each variable is mentioned at all) and cfg.MaxLoopWrite (the
// deepest loop depth at which each variable is assigned). These drive the
// loop-depth pinning guard in FillInBlockArguments.
func ComputeMinMaxLoops(ctx *pipelinectx.Context, rw *cfgir.ReadsAndWrites, cfg *cfgir.CFG) {
	tr, _ := pipelinectx.StartSpan(ctx.Go, "cfgpass.computeMinMaxLoops")
	defer tr.Finish(nil)

	cfg.MinLoops = make(map[cfgir.LocalRef]int)
	cfg.MaxLoopWrite = make(map[cfgir.LocalRef]int)

	for _, b := range cfg.Blocks() {
		if b == cfg.DeadBlock {
			continue
		}

		for v := range rw.ReadsOf(b.ID) {
			observeMin(cfg, v, b.OuterLoops)
		}

		for _, binding := range b.Exprs {
			observeMin(cfg, binding.Bind, b.OuterLoops)
			observeMaxWrite(cfg, binding.Bind, b.OuterLoops)
		}
	}
}

func observeMin(cfg *cfgir.CFG, v cfgir.LocalRef, depth int) {
	if cur, ok := cfg.MinLoops[v]; !ok || depth < cur {
		cfg.MinLoops[v] = depth
	}
}

func observeMaxWrite(cfg *cfgir.CFG, v cfgir.LocalRef, depth int) {
	if cur, ok := cfg.MaxLoopWrite[v]; !ok || depth > cur {
		cfg.MaxLoopWrite[v] = depth
	}
}
