package ir

import "fmt"

// blockID is the unique, method-local identifier of a BasicBlock, assigned
// monotonically by the owning MethodBuilder's block counter.
type blockID uint32

// BasicBlock is an ordered sequence of value references plus a terminator.
// Phi values occupy a prefix of Values; everything past the terminator is
// meaningless. A BasicBlock is owned by exactly one Method.
type BasicBlock struct {
	id     blockID
	name   string
	method *Method

	values      []ValueRef // block-local order; phi values are the prefix.
	phiCount    int
	terminator  ValueRef
	hasTerm     bool
	location    Location
	successors  []*BasicBlock // cached; recomputed by propagateSuccessors.
	predecessors []*BasicBlock

	// --- SSA construction state, owned by the engine but stored per-block
	// since each BasicBlock is itself the natural unit of "processed"/
	// "sealed" state in Braun et al.'s algorithm.
	ssa ssaBlockState
}

// ssaBlockState is the per-block bookkeeping the SSA construction engine
// needs: the local variable -> value map, pending incomplete phis, and the
// processed/sealed flags. Kept generic-free here (interface{} keyed) so
// BasicBlock itself does not need to be generic; Engine[V] type-asserts
// its own key type when reading/writing.
type ssaBlockState struct {
	processed bool
	sealed    bool
	marker    int32

	values         map[interface{}]ValueID
	incompletePhis map[interface{}]ValueID
}

// newBasicBlock is used internally by MethodBuilder.createBlockLocked; frontends
// never construct a BasicBlock directly.
func newBasicBlock(id blockID, m *Method) *BasicBlock {
	return &BasicBlock{
		id:     id,
		name:   fmt.Sprintf("blk%d", id),
		method: m,
		ssa: ssaBlockState{
			values:         make(map[interface{}]ValueID),
			incompletePhis: make(map[interface{}]ValueID),
		},
	}
}

// ID returns the block's method-local identifier.
func (b *BasicBlock) ID() blockID { return b.id }

// Name returns the block's debug name, e.g. "blk0".
func (b *BasicBlock) Name() string { return b.name }

// Method returns the owning Method.
func (b *BasicBlock) Method() *Method { return b.method }

// Location returns the block's source coordinate, if any.
func (b *BasicBlock) Location() Location { return b.location }

// Values returns the block's ordered value references. Phis occupy the
// prefix [0, PhiCount()).
func (b *BasicBlock) Values() []ValueRef { return b.values }

// PhiCount returns how many of Values() are phis.
func (b *BasicBlock) PhiCount() int { return b.phiCount }

// Terminated reports whether the block has a non-null terminator.
func (b *BasicBlock) Terminated() bool { return b.hasTerm }

// Terminator returns the block's terminator value reference. Only valid
// when Terminated() is true.
func (b *BasicBlock) Terminator() ValueRef { return b.terminator }

// Successors returns the cached successor list, derived from the
// terminator by the last propagateSuccessors call.
func (b *BasicBlock) Successors() []*BasicBlock { return b.successors }

// Predecessors returns the blocks known to branch into b.
func (b *BasicBlock) Predecessors() []*BasicBlock { return b.predecessors }

// Sealed reports whether all of b's predecessors are known, in the SSA
// construction sense.
func (b *BasicBlock) Sealed() bool { return b.ssa.sealed }

// Processed reports whether the SSA engine has marked b processed.
func (b *BasicBlock) Processed() bool { return b.ssa.processed }

// insertAtPosition inserts ref at index pos in the block's value list. Used
// by BlockBuilder.append and insertBeforeTerminator (pos == the builder's
// insert cursor) and BlockBuilder.insertAtBeginning (pos == phiCount);
// callers are responsible for keeping the phi-prefix invariant.
func (b *BasicBlock) insertAtPosition(pos int, ref ValueRef) {
	b.values = append(b.values, ValueRef{})
	copy(b.values[pos+1:], b.values[pos:])
	b.values[pos] = ref
}

// removeAt deletes the value reference at index i.
func (b *BasicBlock) removeAt(i int) {
	b.values = append(b.values[:i], b.values[i+1:]...)
}

// indexOf returns the position of id in b.values, or -1.
func (b *BasicBlock) indexOf(id ValueID) int {
	for i, r := range b.values {
		if r.ID() == id {
			return i
		}
	}
	return -1
}

// setTerminatorRaw installs t as the block's terminator without touching
// successor/predecessor links; MethodBuilder.updateControlFlow is
// responsible for the canonical recomputation.
func (b *BasicBlock) setTerminatorRaw(t ValueRef) {
	b.terminator = t
	b.hasTerm = true
}

// propagateSuccessors recomputes b.successors from the terminator's target
// list and appends b to each target's predecessor list. Called only from
// MethodBuilder.updateControlFlow, which clears all blocks' predecessor
// lists first so this can be re-run idempotently; control-flow updates are
// always explicit, never recomputed implicitly on read.
func (b *BasicBlock) propagateSuccessors(arena *ValueArena) {
	b.successors = b.successors[:0]
	if !b.hasTerm {
		return
	}
	term := b.terminator.Resolve(arena)
	for _, t := range term.Successors() {
		b.successors = append(b.successors, t)
		t.predecessors = append(t.predecessors, b)
	}
}

// clearPredecessors empties b's predecessor list; used by
// MethodBuilder.updateControlFlow before recomputation.
func (b *BasicBlock) clearPredecessors() {
	b.predecessors = b.predecessors[:0]
}

// String implements fmt.Stringer.
func (b *BasicBlock) String() string { return b.name }
