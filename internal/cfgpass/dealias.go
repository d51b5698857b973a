package cfgpass

import (
	"cfgcanon/internal/cfgir"
	"cfgcanon/internal/pipelinectx"
)

// aliasMap is the outgoing map a block hands to its successors: synthetic
// temporary -> the canonical source value it currently stands for.
type aliasMap map[cfgir.LocalRef]cfgir.LocalRef

// Dealias rewrites uses of synthetic temporaries to their canonical source
// variable via a forward dataflow over cfg.ForwardsTopoSort. Scratch state
// (each block's outgoing alias map) is sized by MaxBasicBlockID and owned
// entirely by this call; nothing survives it.
func Dealias(ctx *pipelinectx.Context, cfg *cfgir.CFG) {
	tr, _ := pipelinectx.StartSpan(ctx.Go, "cfgpass.dealias")
	defer tr.Finish(nil)

	outAliases := make([]aliasMap, cfg.MaxBasicBlockID)

	for _, b := range cfg.ForwardsTopoSort {
		if b == cfg.DeadBlock {
			continue
		}
		current := mergeIncoming(b, outAliases)

		for i := range b.Exprs {
			transferBinding(&b.Exprs[i], current)
		}

		if b.Bexit.Cond != cfgir.Unconditional {
			b.Bexit.Cond = maybeDealias(b.Bexit.Cond, current)
		}

		outAliases[b.ID] = current
	}
}

// mergeIncoming implements step 1: start from the first predecessor's
// outgoing map and intersect every other predecessor's map against it,
// keeping k->v only where every predecessor agrees. This is conservative at
// loop headers, where a backedge predecessor hasn't been processed yet and
// so contributes no map at all -- any key it would have disagreed on (or
// simply not yet supplied) is dropped. See DESIGN.md for why this
// imprecision is kept rather than fixed.
func mergeIncoming(b *cfgir.BasicBlock, outAliases []aliasMap) aliasMap {
	if len(b.BackEdges) == 0 {
		return aliasMap{}
	}

	current := aliasMap{}
	for k, v := range outAliases[b.BackEdges[0].ID] {
		current[k] = v
	}

	for _, pred := range b.BackEdges[1:] {
		predMap := outAliases[pred.ID]
		for k, v := range current {
			if predMap[k] != v {
				delete(current, k)
			}
		}
	}
	return current
}

// transferBinding implements step 2. Two separate rewrite passes happen
// over the same Ident binding for different reasons: the first
// (unconditional) canonicalizes the alias's own source even if the Ident
// was marked synthetic, because the alias map itself must stay canonical.
// The second (gated on !Synthetic) rewrites instructions that may surface
// in a diagnostic, which must name the user's variable, not the temporary
// the front-end introduced for it.
func transferBinding(b *cfgir.Binding, current aliasMap) {
	if ident, ok := b.Value.(*cfgir.Ident); ok {
		ident.What = maybeDealias(ident.What, current)
	}

	for k, v := range current {
		if v == b.Bind {
			delete(current, k)
		}
	}

	if !b.Value.Synthetic() {
		rewriteReferenceFields(b.Value, current)
	}

	if ident, ok := b.Value.(*cfgir.Ident); ok {
		current[b.Bind] = ident.What
	}
}

// rewriteReferenceFields rewrites the reference fields of every
// diagnostic-visible instruction kind: Ident.What, Send.Recv and
// Send.Args, TAbsurd.What, Return.What.
func rewriteReferenceFields(instr cfgir.Instruction, current aliasMap) {
	switch v := instr.(type) {
	case *cfgir.Ident:
		v.What = maybeDealias(v.What, current)
	case *cfgir.Send:
		v.Recv = maybeDealias(v.Recv, current)
		for i, a := range v.Args {
			v.Args[i] = maybeDealias(a, current)
		}
	case *cfgir.TAbsurd:
		v.What = maybeDealias(v.What, current)
	case *cfgir.Return:
		v.What = maybeDealias(v.What, current)
	}
}

// maybeDealias returns the canonical source of v if v is a synthetic
// temporary with a known alias, else v unchanged. Named source variables
// are never candidates for rewriting.
func maybeDealias(v cfgir.LocalRef, m aliasMap) cfgir.LocalRef {
	if !v.IsSyntheticTemporary() {
		return v
	}
	if canon, ok := m[v]; ok {
		return canon
	}
	return v
}
