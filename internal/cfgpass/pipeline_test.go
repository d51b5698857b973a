package cfgpass

import (
	"testing"

	"cfgcanon/internal/cfgir"
)

// TestRun_AliasChainThroughDiamondEndsUpClean builds a small method body:
//
//	entry:  t1 := Ident(x); branch cond ? thenb : elseb
//	thenb:  t2 := Ident(t1); y := Send(t2, "positive")
//	elseb:  t2 := Ident(t1); y := Send(t2, "negative")
//	join:   unused := Literal(0)   (dead, should be removed)
//
// and checks the whole pipeline leaves a sound, fully dealiased graph with
// no unread pure bindings left over.
func TestRun_AliasChainThroughDiamondEndsUpClean(t *testing.T) {
	x := cfgir.NewNamedVar("x")
	cond := cfgir.NewNamedVar("cond")
	t1 := cfgir.NewSyntheticTemp(1)
	t2then := cfgir.NewSyntheticTemp(2)
	t2else := cfgir.NewSyntheticTemp(3)
	yThen := cfgir.NewSyntheticTemp(4)
	yElse := cfgir.NewSyntheticTemp(5)
	unused := cfgir.NewSyntheticTemp(6)

	entry := cfgir.NewBasicBlock(1, 0, 0)
	entry.Exprs = []cfgir.Binding{{Bind: t1, Value: &cfgir.Ident{What: x}}}

	thenb := cfgir.NewBasicBlock(2, 0, 0)
	thenb.Exprs = []cfgir.Binding{
		{Bind: t2then, Value: &cfgir.Ident{What: t1}},
		{Bind: yThen, Value: &cfgir.Send{Recv: t2then, Method: "positive"}},
	}

	elseb := cfgir.NewBasicBlock(3, 0, 0)
	elseb.Exprs = []cfgir.Binding{
		{Bind: t2else, Value: &cfgir.Ident{What: t1}},
		{Bind: yElse, Value: &cfgir.Send{Recv: t2else, Method: "negative"}},
	}

	join := cfgir.NewBasicBlock(4, 0, 0)
	join.Exprs = []cfgir.Binding{{Bind: unused, Value: &cfgir.Literal{Value: 0}}}

	deadBlock := cfgir.NewBasicBlock(5, 0, 0)

	link(entry, cond, thenb, elseb)
	link(thenb, cfgir.Unconditional, join, join)
	link(elseb, cfgir.Unconditional, join, join)

	cfg := cfgir.NewCFG(entry, deadBlock, []*cfgir.BasicBlock{entry, thenb, elseb, join, deadBlock})

	rw := cfgir.NewReadsAndWrites()
	rw.AddRead(entry.ID, x)

	Run(testContext(true), rw, cfg)

	if err := CheckInvariants(cfg); err != nil {
		t.Fatalf("expected the pipeline to leave a sound graph, got %v", err)
	}

	thenSend := thenb.Exprs[len(thenb.Exprs)-1].Value.(*cfgir.Send)
	if thenSend.Recv != x {
		t.Fatalf("expected then-branch's send receiver to be dealiased to x, got %v", thenSend.Recv)
	}
	elseSend := elseb.Exprs[len(elseb.Exprs)-1].Value.(*cfgir.Send)
	if elseSend.Recv != x {
		t.Fatalf("expected else-branch's send receiver to be dealiased to x, got %v", elseSend.Recv)
	}

	if len(join.Exprs) != 0 {
		t.Fatalf("expected join's unused literal binding to be removed, got %d bindings left", len(join.Exprs))
	}
}

// TestRun_LoopGetsHeaderFlagAndArguments exercises the loop-header marker
// and the block-argument solver together over a small counting loop.
func TestRun_LoopGetsHeaderFlagAndArguments(t *testing.T) {
	i := cfgir.NewNamedVar("i")
	more := cfgir.NewNamedVar("more")

	entry := cfgir.NewBasicBlock(1, 0, 0)
	entry.Exprs = []cfgir.Binding{{Bind: i, Value: &cfgir.Literal{Value: 0}}}

	header := cfgir.NewBasicBlock(2, 0, 1)
	marker := cfgir.NewSyntheticTemp(7)
	header.Exprs = []cfgir.Binding{{Bind: marker, Value: &cfgir.Literal{Value: "loop-header"}}}

	body := cfgir.NewBasicBlock(3, 0, 1)
	body.Exprs = []cfgir.Binding{{Bind: i, Value: &cfgir.Literal{Value: 1}}}

	exit := cfgir.NewBasicBlock(4, 0, 0)
	deadBlock := cfgir.NewBasicBlock(5, 0, 0)

	link(entry, cfgir.Unconditional, header, header)
	link(header, more, body, exit)
	link(body, cfgir.Unconditional, header, header)

	cfg := cfgir.NewCFG(entry, deadBlock, []*cfgir.BasicBlock{entry, header, body, exit, deadBlock})

	rw := cfgir.NewReadsAndWrites()
	rw.AddWrite(entry.ID, i)
	rw.AddWrite(body.ID, i)
	rw.AddRead(header.ID, more)
	rw.AddRead(exit.ID, i)

	Run(testContext(true), rw, cfg)

	if err := CheckInvariants(cfg); err != nil {
		t.Fatalf("expected the pipeline to leave a sound graph, got %v", err)
	}
	if !header.Flags.Has(cfgir.LoopHeader) {
		t.Fatalf("expected the loop header to be flagged")
	}

	found := false
	for _, ref := range header.Args {
		if ref == i {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the loop header to take i as a block argument, got %v", header.Args)
	}
}
