package pipelinectx

import (
	"context"

	"tlog.app/go/tlog"
)

// Tracer wraps a tlog span covering one pipeline operation (simplify,
// dealias, ...) for one CFG. A nil *Tracer is valid and silently does
// nothing, so callers that build a Context without tracing enabled don't
// need to guard every call site.
type Tracer struct {
	span tlog.Span
}

// StartSpan opens a tracing span named for the pass about to run and
// returns both the span wrapper and a Go context carrying it, mirroring how
// span propagation through context.Context works across the rest of the
// ecosystem this pipeline borrows from.
func StartSpan(ctx context.Context, name string, kvs ...any) (*Tracer, context.Context) {
	tr, next := tlog.SpawnFromContextAndWrap(ctx, name, kvs...)
	return &Tracer{span: tr}, next
}

// Finish closes the span, optionally recording a terminal error.
func (t *Tracer) Finish(err error) {
	if t == nil {
		return
	}
	if err != nil {
		t.span.Finish("err", err)
		return
	}
	t.span.Finish()
}

// Printw records a timestamped event on the span, e.g. how many blocks a
// simplifier sweep removed.
func (t *Tracer) Printw(msg string, kvs ...any) {
	if t == nil {
		return
	}
	t.span.Printw(msg, kvs...)
}
