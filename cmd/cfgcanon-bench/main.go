// Command cfgcanon-bench builds a synthetic CFG of a requested shape and
// size, runs the canonicalization pipeline over it, and reports the
// resulting block count, topo-sort length, and block-argument telemetry.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"cfgcanon/internal/cfgir"
	"cfgcanon/internal/cfgpass"
	"cfgcanon/internal/pipelinectx"
	"cfgcanon/internal/telemetry"
)

const version = "0.1.0"

func main() {
	shape := pflag.StringP("shape", "s", "chain", "graph shape: chain, diamond, or loop")
	size := pflag.IntP("size", "n", 64, "number of repeated units to build")
	debug := pflag.BoolP("debug", "d", false, "run the pipeline with invariant checking enabled")
	showVersion := pflag.BoolP("version", "v", false, "show version")
	pflag.Parse()

	if *showVersion {
		fmt.Printf("cfgcanon-bench %s\n", version)
		return
	}

	var cfg *cfgir.CFG
	var rw *cfgir.ReadsAndWrites
	switch *shape {
	case "chain":
		cfg, rw = buildChain(*size)
	case "diamond":
		cfg, rw = buildDiamondFan(*size)
	case "loop":
		cfg, rw = buildLoopNest(*size)
	default:
		fmt.Fprintf(os.Stderr, "unknown shape %q: want chain, diamond, or loop\n", *shape)
		pflag.Usage()
		os.Exit(1)
	}

	ctx := pipelinectx.New(context.Background(), pipelinectx.NewState(), *debug)
	cfgpass.Run(ctx, rw, cfg)

	fmt.Printf("blocks=%d topo=%d blockArguments=%d\n",
		len(cfg.Blocks()), len(cfg.ForwardsTopoSort), telemetry.BlockArguments.Value())
}

func link(from *cfgir.BasicBlock, cond cfgir.LocalRef, thenb, elseb *cfgir.BasicBlock) {
	from.Bexit = cfgir.BranchExit{Cond: cond, Thenb: thenb, Elseb: elseb}
	thenb.AddBackEdge(from)
	thenb.Flags |= cfgir.WasJumpDestination
	if elseb != nil && elseb != thenb {
		elseb.AddBackEdge(from)
		elseb.Flags |= cfgir.WasJumpDestination
	}
}

// buildChain constructs entry -> B1 -> B2 -> ... -> Bn -> exit, each Bi
// binding a fresh synthetic temporary to a literal that nothing reads.
func buildChain(n int) (*cfgir.CFG, *cfgir.ReadsAndWrites) {
	rw := cfgir.NewReadsAndWrites()
	entry := cfgir.NewBasicBlock(0, 0, 0)
	blocks := []*cfgir.BasicBlock{entry}
	prev := entry
	for i := 1; i <= n; i++ {
		b := cfgir.NewBasicBlock(i, 0, 0)
		v := cfgir.NewSyntheticTemp(i)
		b.Exprs = []cfgir.Binding{{Bind: v, Value: &cfgir.Literal{Value: i}}}
		link(prev, cfgir.Unconditional, b, b)
		blocks = append(blocks, b)
		prev = b
	}
	exit := cfgir.NewBasicBlock(n+1, 0, 0)
	link(prev, cfgir.Unconditional, exit, exit)
	blocks = append(blocks, exit)
	deadBlock := cfgir.NewBasicBlock(n+2, 0, 0)
	blocks = append(blocks, deadBlock)

	return cfgir.NewCFG(entry, deadBlock, blocks), rw
}

// buildDiamondFan constructs n independent diamonds chained entry -> D1 ->
// D2 -> ... -> exit, each diamond aliasing a variable down two arms that
// rejoin, to exercise the dealiaser's intersection-at-join behavior.
func buildDiamondFan(n int) (*cfgir.CFG, *cfgir.ReadsAndWrites) {
	rw := cfgir.NewReadsAndWrites()
	entry := cfgir.NewBasicBlock(0, 0, 0)
	blocks := []*cfgir.BasicBlock{entry}
	prev := entry
	nextID := 1
	for i := 0; i < n; i++ {
		src := cfgir.NewNamedVar(fmt.Sprintf("src%d", i))
		t := cfgir.NewSyntheticTemp(1000 + i)
		cond := cfgir.NewNamedVar(fmt.Sprintf("cond%d", i))

		split := cfgir.NewBasicBlock(nextID, 0, 0)
		nextID++
		thenb := cfgir.NewBasicBlock(nextID, 0, 0)
		nextID++
		thenb.Exprs = []cfgir.Binding{{Bind: t, Value: &cfgir.Ident{What: src}}}
		elseb := cfgir.NewBasicBlock(nextID, 0, 0)
		nextID++
		elseb.Exprs = []cfgir.Binding{{Bind: t, Value: &cfgir.Ident{What: src}}}
		join := cfgir.NewBasicBlock(nextID, 0, 0)
		nextID++
		use := cfgir.NewSyntheticTemp(2000 + i)
		join.Exprs = []cfgir.Binding{{Bind: use, Value: &cfgir.Send{Recv: t, Method: "dup"}}}

		link(prev, cfgir.Unconditional, split, split)
		link(split, cond, thenb, elseb)
		link(thenb, cfgir.Unconditional, join, join)
		link(elseb, cfgir.Unconditional, join, join)
		rw.AddRead(join.ID, t)

		blocks = append(blocks, split, thenb, elseb, join)
		prev = join
	}
	exit := cfgir.NewBasicBlock(nextID, 0, 0)
	nextID++
	link(prev, cfgir.Unconditional, exit, exit)
	blocks = append(blocks, exit)
	deadBlock := cfgir.NewBasicBlock(nextID, 0, 0)
	blocks = append(blocks, deadBlock)

	return cfgir.NewCFG(entry, deadBlock, blocks), rw
}

// buildLoopNest constructs entry -> H -> Body -> H, H -> exit, with n
// iterations' worth of bindings packed into Body to give the block-argument
// solver and loop summarizer real work to do.
func buildLoopNest(n int) (*cfgir.CFG, *cfgir.ReadsAndWrites) {
	rw := cfgir.NewReadsAndWrites()
	i := cfgir.NewNamedVar("i")
	more := cfgir.NewNamedVar("more")

	entry := cfgir.NewBasicBlock(0, 0, 0)
	entry.Exprs = []cfgir.Binding{{Bind: i, Value: &cfgir.Literal{Value: 0}}}
	header := cfgir.NewBasicBlock(1, 0, 1)
	header.Exprs = []cfgir.Binding{{Bind: cfgir.NewSyntheticTemp(1), Value: &cfgir.Literal{Value: "header"}}}
	body := cfgir.NewBasicBlock(2, 0, 1)
	for k := 0; k < n; k++ {
		body.Exprs = append(body.Exprs, cfgir.Binding{Bind: i, Value: &cfgir.Literal{Value: k}})
	}
	exit := cfgir.NewBasicBlock(3, 0, 0)
	deadBlock := cfgir.NewBasicBlock(4, 0, 0)

	link(entry, cfgir.Unconditional, header, header)
	link(header, more, body, exit)
	link(body, cfgir.Unconditional, header, header)

	rw.AddWrite(entry.ID, i)
	rw.AddWrite(body.ID, i)
	rw.AddRead(header.ID, more)
	rw.AddRead(exit.ID, i)

	return cfgir.NewCFG(entry, deadBlock, []*cfgir.BasicBlock{entry, header, body, exit, deadBlock}), rw
}
