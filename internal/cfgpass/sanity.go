package cfgpass

import (
	"fmt"

	nerrors "github.com/nikandfor/errors"

	"cfgcanon/internal/cfgir"
	"cfgcanon/internal/pipelinectx"
)

// InvariantViolation is the only error this pipeline ever produces. It is
// always fatal: a malformed CFG cannot be repaired locally, so the caller
// is expected to let it propagate and abort the process rather than retry.
type InvariantViolation struct {
	err error
}

func (v *InvariantViolation) Error() string { return v.err.Error() }
func (v *InvariantViolation) Unwrap() error { return v.err }

// CheckInvariants is the sanity checker (component A): a predicate over the
// whole CFG checking, for every live block B, that every predecessor in
// B.BackEdges actually branches to B, that B carries WAS_JUMP_DESTINATION
// unless it is the entry block, and that B appears in the backedges of
// both of its successors. It returns the first invariant it finds broken,
// or nil if the graph is sound.
func CheckInvariants(cfg *cfgir.CFG) error {
	for _, b := range cfg.Blocks() {
		if err := checkBlockInvariants(cfg, b); err != nil {
			return err
		}
	}
	return nil
}

func checkBlockInvariants(cfg *cfgir.CFG, b *cfgir.BasicBlock) error {
	if b == cfg.DeadBlock {
		return nil
	}

	for _, pred := range b.BackEdges {
		if pred.Bexit.Thenb != b && pred.Bexit.Elseb != b {
			return fmt.Errorf("block %d lists %d as a predecessor, but %d does not branch to %d", b.ID, pred.ID, pred.ID, b.ID)
		}
	}

	if b != cfg.Entry && !b.Flags.Has(cfgir.WasJumpDestination) {
		return fmt.Errorf("live block %d is not the entry block and lacks WAS_JUMP_DESTINATION", b.ID)
	}

	for _, succ := range b.Successors() {
		if !backEdgeContains(succ, b) {
			return fmt.Errorf("block %d branches to %d, but %d is missing %d from its backedges", b.ID, succ.ID, succ.ID, b.ID)
		}
	}
	return nil
}

func backEdgeContains(b *cfgir.BasicBlock, pred *cfgir.BasicBlock) bool {
	for _, p := range b.BackEdges {
		if p == pred {
			return true
		}
	}
	return false
}

// assertInvariants is the debug-only hook Simplify calls after every
// structural mutation. It panics with an *InvariantViolation -- the only
// signaling mechanism this pipeline uses, since a malformed CFG cannot be
// repaired locally once discovered mid-pass.
func assertInvariants(ctx *pipelinectx.Context, cfg *cfgir.CFG) {
	if !ctx.Debug {
		return
	}
	if err := CheckInvariants(cfg); err != nil {
		panic(&InvariantViolation{err: nerrors.Wrap(err, "cfg invariant violation")})
	}
}
