package cfgpass

import (
	"testing"

	"cfgcanon/internal/cfgir"
)

func TestDealias_ChainCollapsesToSource(t *testing.T) {
	x := cfgir.NewNamedVar("x")
	t1 := cfgir.NewSyntheticTemp(1)
	t2 := cfgir.NewSyntheticTemp(2)
	foo := cfgir.NewSyntheticTemp(3)

	entry := cfgir.NewBasicBlock(1, 0, 0)
	entry.Exprs = []cfgir.Binding{
		{Bind: t1, Value: &cfgir.Ident{What: x}},
		{Bind: t2, Value: &cfgir.Ident{What: t1}},
		{Bind: foo, Value: &cfgir.Send{Recv: t2, Method: "foo"}},
	}
	dead := cfgir.NewBasicBlock(2, 0, 0)

	cfg := cfgir.NewCFG(entry, dead, []*cfgir.BasicBlock{entry, dead})
	seedTopoOrder(cfg)

	Dealias(testContext(true), cfg)

	send := entry.Exprs[2].Value.(*cfgir.Send)
	if send.Recv != x {
		t.Fatalf("expected Send.Recv to be dealiased all the way to x, got %v", send.Recv)
	}
}

func TestDealias_DivergentBranchesDropAlias(t *testing.T) {
	x := cfgir.NewNamedVar("x")
	y := cfgir.NewNamedVar("y")
	t1 := cfgir.NewSyntheticTemp(1)
	cond := cfgir.NewNamedVar("cond")

	entry := cfgir.NewBasicBlock(1, 0, 0)
	thenb := cfgir.NewBasicBlock(2, 0, 0)
	thenb.Exprs = []cfgir.Binding{{Bind: t1, Value: &cfgir.Ident{What: x}}}
	elseb := cfgir.NewBasicBlock(3, 0, 0)
	elseb.Exprs = []cfgir.Binding{{Bind: t1, Value: &cfgir.Ident{What: y}}}
	join := cfgir.NewBasicBlock(4, 0, 0)
	result := cfgir.NewSyntheticTemp(9)
	join.Exprs = []cfgir.Binding{{Bind: result, Value: &cfgir.Send{Recv: t1, Method: "bar"}}}
	dead := cfgir.NewBasicBlock(5, 0, 0)

	link(entry, cond, thenb, elseb)
	link(thenb, cfgir.Unconditional, join, join)
	link(elseb, cfgir.Unconditional, join, join)

	cfg := cfgir.NewCFG(entry, dead, []*cfgir.BasicBlock{entry, thenb, elseb, join, dead})
	seedTopoOrder(cfg)

	Dealias(testContext(true), cfg)

	send := join.Exprs[0].Value.(*cfgir.Send)
	if send.Recv != t1 {
		t.Fatalf("expected join block's use of t1 to stay unaliased when predecessors disagree, got %v", send.Recv)
	}
}

func TestDealias_IsIdempotent(t *testing.T) {
	x := cfgir.NewNamedVar("x")
	t1 := cfgir.NewSyntheticTemp(1)
	entry := cfgir.NewBasicBlock(1, 0, 0)
	r := cfgir.NewSyntheticTemp(2)
	entry.Exprs = []cfgir.Binding{
		{Bind: t1, Value: &cfgir.Ident{What: x}},
		{Bind: r, Value: &cfgir.Send{Recv: t1, Method: "foo"}},
	}
	dead := cfgir.NewBasicBlock(2, 0, 0)
	cfg := cfgir.NewCFG(entry, dead, []*cfgir.BasicBlock{entry, dead})
	seedTopoOrder(cfg)

	ctx := testContext(true)
	Dealias(ctx, cfg)
	first := entry.Exprs[1].Value.(*cfgir.Send).Recv

	Dealias(ctx, cfg)
	second := entry.Exprs[1].Value.(*cfgir.Send).Recv

	if first != second || first != x {
		t.Fatalf("expected dealias to be idempotent and stable at x, got %v then %v", first, second)
	}
}
