package cfgir

// Binding pairs a defined variable with the instruction that produces it.
// BasicBlock.Exprs is an ordered sequence of these; order matters both for
// the dealiaser's forward transfer and for dead-assign removal.
type Binding struct {
	Bind  LocalRef
	Value Instruction
}
