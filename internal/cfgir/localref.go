// Package cfgir is the data model for the post-parse control flow graph: basic
// blocks, bindings, instructions and variable handles. It owns no parsing, no
// AST, and no diagnostics of its own; it is filled in by an external builder
// and mutated in place by the passes in cfgpass.
package cfgir

import "fmt"

// refKind discriminates the different flavors a LocalRef can take.
type refKind uint8

const (
	refNamed refKind = iota
	refSyntheticTemp
	refGlobalAlias
	refSentinelUnconditional
	refSentinelBlockCall
)

// LocalRef is a handle to a variable. It is a plain comparable value so it
// can be used directly as a map key and compared with ==; ordering is
// provided by Less for the sorted sequences the passes require.
type LocalRef struct {
	kind refKind
	id   int
	name string
}

// Unconditional is the sentinel branch condition meaning "always take thenb".
var Unconditional = LocalRef{kind: refSentinelUnconditional, name: "<unconditional>"}

// BlockCall is the sentinel condition marking a header synchronization point
// (a block whose branch exists only to call into another block, not to test
// a value). Passes must not fuse through a block guarded by it.
var BlockCall = LocalRef{kind: refSentinelBlockCall, name: "<block-call>"}

// NewNamedVar returns a LocalRef for a variable with a source-level name.
// Named variables are never rewritten by the dealiaser.
func NewNamedVar(name string) LocalRef {
	return LocalRef{kind: refNamed, name: name}
}

// NewSyntheticTemp returns a LocalRef for a compiler-introduced scratch
// variable, eligible for alias elimination.
func NewSyntheticTemp(id int) LocalRef {
	return LocalRef{kind: refSyntheticTemp, id: id}
}

// NewGlobalAlias returns a LocalRef standing in for a global binding.
func NewGlobalAlias(name string) LocalRef {
	return LocalRef{kind: refGlobalAlias, name: name}
}

// IsSyntheticTemporary reports whether v is compiler-generated scratch,
// the only kind of reference the dealiaser is allowed to rewrite.
func (v LocalRef) IsSyntheticTemporary() bool { return v.kind == refSyntheticTemp }

// IsAliasForGlobal reports whether v stands in for a global variable.
// Bindings to these are never pruned by the dead-assign remover.
func (v LocalRef) IsAliasForGlobal() bool { return v.kind == refGlobalAlias }

// IsSentinel reports whether v is one of Unconditional or BlockCall.
func (v LocalRef) IsSentinel() bool {
	return v.kind == refSentinelUnconditional || v.kind == refSentinelBlockCall
}

// Less gives LocalRef a strict total order, used to keep block argument
// lists in canonical sorted form.
func (v LocalRef) Less(other LocalRef) bool {
	if v.kind != other.kind {
		return v.kind < other.kind
	}
	if v.kind == refNamed || v.kind == refGlobalAlias {
		return v.name < other.name
	}
	return v.id < other.id
}

func (v LocalRef) String() string {
	switch v.kind {
	case refSyntheticTemp:
		return fmt.Sprintf("%%t%d", v.id)
	case refGlobalAlias:
		return "$" + v.name
	case refSentinelUnconditional:
		return "<unconditional>"
	case refSentinelBlockCall:
		return "<block-call>"
	default:
		return v.name
	}
}
