package cfgir

// CFG owns every basic block of a single method body. Blocks are created by
// an external builder; CFG never allocates new ones itself -- passes may
// only delete blocks, never add them.
type CFG struct {
	// blocks is the owning container, indexed by stable block ID. A block
	// removed from the graph is deleted from this map; no other structure
	// may continue to reference it afterwards.
	blocks map[int]*BasicBlock

	// order is the insertion order of live block IDs. The simplifier walks
	// this slice and reacts to deletion by compacting it, restarting its
	// fixpoint sweep rather than relying on iterator stability.
	order []int

	Entry     *BasicBlock
	DeadBlock *BasicBlock

	// ForwardsTopoSort is the flat, ordered view of live blocks maintained
	// incrementally by the simplifier and recomputed authoritatively by
	// the forward topo-sort pass.
	ForwardsTopoSort []*BasicBlock

	// MaxBasicBlockID is one past the largest ID ever assigned; it never
	// decreases, even as blocks are deleted.
	MaxBasicBlockID int

	MinLoops     map[LocalRef]int
	MaxLoopWrite map[LocalRef]int
}

// NewCFG wires up a CFG from blocks already constructed and linked by an
// external builder. entry and deadBlock must both appear in blocks.
func NewCFG(entry, deadBlock *BasicBlock, blocks []*BasicBlock) *CFG {
	cfg := &CFG{
		blocks:       make(map[int]*BasicBlock, len(blocks)),
		order:        make([]int, 0, len(blocks)),
		Entry:        entry,
		DeadBlock:    deadBlock,
		MinLoops:     make(map[LocalRef]int),
		MaxLoopWrite: make(map[LocalRef]int),
	}
	for _, b := range blocks {
		cfg.blocks[b.ID] = b
		cfg.order = append(cfg.order, b.ID)
		if b.ID >= cfg.MaxBasicBlockID {
			cfg.MaxBasicBlockID = b.ID + 1
		}
	}
	return cfg
}

// Block looks up a block by ID; ok is false once the block has been deleted.
func (c *CFG) Block(id int) (*BasicBlock, bool) {
	b, ok := c.blocks[id]
	return b, ok
}

// Blocks returns the live blocks in insertion order. The slice returned is
// owned by the caller; mutating it does not affect the CFG's own order.
func (c *CFG) Blocks() []*BasicBlock {
	out := make([]*BasicBlock, 0, len(c.order))
	for _, id := range c.order {
		if b, ok := c.blocks[id]; ok {
			out = append(out, b)
		}
	}
	return out
}

// Live reports whether id still names a block in the graph.
func (c *CFG) Live(id int) bool {
	_, ok := c.blocks[id]
	return ok
}

// DeleteBlock removes b from the graph: from the owning container, from the
// insertion order, from ForwardsTopoSort, and from every successor's
// BackEdges. No pass may hold a pointer to b afterwards.
func (c *CFG) DeleteBlock(b *BasicBlock) {
	if b == nil {
		return
	}
	delete(c.blocks, b.ID)

	out := c.order[:0]
	for _, id := range c.order {
		if id != b.ID {
			out = append(out, id)
		}
	}
	c.order = out

	filtered := c.ForwardsTopoSort[:0]
	for _, fb := range c.ForwardsTopoSort {
		if fb != b {
			filtered = append(filtered, fb)
		}
	}
	c.ForwardsTopoSort = filtered

	for _, succ := range b.Successors() {
		succ.RemoveBackEdge(b)
	}
}

// ReadsAndWrites is the external summary supplied by the reads/writes/dead
// analysis that runs between the loop-header marker and the dead-assign
// remover. It is aligned with block IDs, not pointers, because it is
// computed once up front and must stay valid across the simplifier's block
// deletions (a deleted block's entries are simply never consulted again).
type ReadsAndWrites struct {
	Reads map[int]map[LocalRef]bool
	Writes map[int]map[LocalRef]bool
	Dead   map[int]map[LocalRef]bool
}

// NewReadsAndWrites returns an empty summary ready to be populated.
func NewReadsAndWrites() *ReadsAndWrites {
	return &ReadsAndWrites{
		Reads:  make(map[int]map[LocalRef]bool),
		Writes: make(map[int]map[LocalRef]bool),
		Dead:   make(map[int]map[LocalRef]bool),
	}
}

func (rw *ReadsAndWrites) AddRead(blockID int, v LocalRef) {
	set(rw.Reads, blockID, v)
}

func (rw *ReadsAndWrites) AddWrite(blockID int, v LocalRef) {
	set(rw.Writes, blockID, v)
}

func (rw *ReadsAndWrites) AddDead(blockID int, v LocalRef) {
	set(rw.Dead, blockID, v)
}

func set(m map[int]map[LocalRef]bool, blockID int, v LocalRef) {
	s, ok := m[blockID]
	if !ok {
		s = make(map[LocalRef]bool)
		m[blockID] = s
	}
	s[v] = true
}

// ReadsOf, WritesOf and DeadOf return the named set for blockID, never nil.
func (rw *ReadsAndWrites) ReadsOf(blockID int) map[LocalRef]bool  { return orEmpty(rw.Reads, blockID) }
func (rw *ReadsAndWrites) WritesOf(blockID int) map[LocalRef]bool { return orEmpty(rw.Writes, blockID) }
func (rw *ReadsAndWrites) DeadOf(blockID int) map[LocalRef]bool   { return orEmpty(rw.Dead, blockID) }

func orEmpty(m map[int]map[LocalRef]bool, blockID int) map[LocalRef]bool {
	if s, ok := m[blockID]; ok {
		return s
	}
	return emptySet
}

var emptySet = map[LocalRef]bool{}
