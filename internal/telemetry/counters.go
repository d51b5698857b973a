// Package telemetry holds the process-wide counters the pipeline updates.
// Every CFG is owned by a single worker and never touches another CFG's
// state, but many workers compiling independent method bodies in parallel
// do share these histograms, so the adds themselves must be atomic. There
// is no suitable third-party metrics histogram among the libraries this
// module otherwise draws on, so this single counter type is built directly
// on sync/atomic rather than forcing in a dependency for one call site.
package telemetry

import "sync/atomic"

// Counter is a monotonically increasing, concurrency-safe count.
type Counter struct {
	v atomic.Int64
}

// Add increments the counter by delta and returns the new value.
func (c *Counter) Add(delta int64) int64 {
	return c.v.Add(delta)
}

// Value returns the counter's current value.
func (c *Counter) Value() int64 {
	return c.v.Load()
}

// BlockArguments counts variables added across every block argument list
// ever computed by FillInBlockArguments.
var BlockArguments Counter
