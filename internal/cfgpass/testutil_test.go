package cfgpass

import (
	"context"

	"cfgcanon/internal/cfgir"
	"cfgcanon/internal/pipelinectx"
)

// link wires from -> thenb/elseb, keeping backedges and
// WasJumpDestination consistent the way an external CFG builder would.
func link(from *cfgir.BasicBlock, cond cfgir.LocalRef, thenb, elseb *cfgir.BasicBlock) {
	from.Bexit = cfgir.BranchExit{Cond: cond, Thenb: thenb, Elseb: elseb}
	thenb.AddBackEdge(from)
	thenb.Flags |= cfgir.WasJumpDestination
	if elseb != nil && elseb != thenb {
		elseb.AddBackEdge(from)
		elseb.Flags |= cfgir.WasJumpDestination
	}
}

func testContext(debug bool) *pipelinectx.Context {
	return pipelinectx.New(context.Background(), pipelinectx.NewState(), debug)
}

func lspContext(debug bool) *pipelinectx.Context {
	return pipelinectx.New(context.Background(), pipelinectx.NewState().WithLSPQuery(true), debug)
}

// seedTopoOrder gives cfg a forward topo order the way the external
// builder or the pipeline's own first call to TopoSortFwd would.
func seedTopoOrder(cfg *cfgir.CFG) {
	TopoSortFwd(testContext(false), cfg)
}
