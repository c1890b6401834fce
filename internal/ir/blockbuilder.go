package ir

// BlockBuilder is the scoped mutator for one BasicBlock: an insert cursor
// plus a set of values scheduled for removal, so a caller can
// stage several edits (e.g. a peephole rewrite's "replace this, drop that")
// before committing them in one pass over the block's value list.
type BlockBuilder struct {
	block          *BasicBlock
	insertPosition int
	pendingRemoval map[ValueID]struct{}
	mb             *MethodBuilder
}

// Block returns the block this builder mutates.
func (bb *BlockBuilder) Block() *BasicBlock { return bb.block }

// InsertPosition returns the index the next append lands at.
func (bb *BlockBuilder) InsertPosition() int { return bb.insertPosition }

// SetInsertPosition repositions the cursor, e.g. to rewind before a value
// being replaced in place.
func (bb *BlockBuilder) SetInsertPosition(pos int) { bb.insertPosition = pos }

// append adds v to the block at the current cursor and advances it. v must
// already have its fields populated save for .block, which append sets.
func (bb *BlockBuilder) append(v *Value) ValueRef {
	assert(bb.mb.ctx.Flags, !bb.block.hasTerm, v.location, "BlockBuilder.append", "appending past an existing terminator")
	v.block = bb.block
	ref := NewValueRef(v.id)
	bb.block.insertAtPosition(bb.insertPosition, ref)
	bb.insertPosition++
	if v.IsTerminator() {
		bb.block.setTerminatorRaw(ref)
		bb.mb.scheduleControlFlowUpdate()
	}
	return ref
}

// insertBeforeTerminator inserts a non-terminator v immediately ahead of
// the block's terminator, or via the normal cursor if the block has none
// yet. This is for machinery that must land a value at the end of a
// predecessor block that may already be terminated — e.g. a phi argument's
// primitive conversion — where BlockBuilder.append's "no appending past a
// terminator" invariant would otherwise trip.
func (bb *BlockBuilder) insertBeforeTerminator(v *Value) ValueRef {
	v.block = bb.block
	ref := NewValueRef(v.id)
	if bb.block.hasTerm && len(bb.block.values) > 0 {
		pos := len(bb.block.values) - 1
		bb.block.insertAtPosition(pos, ref)
		if pos < bb.insertPosition {
			bb.insertPosition++
		}
		return ref
	}
	bb.block.insertAtPosition(bb.insertPosition, ref)
	bb.insertPosition++
	return ref
}

// insertAtBeginning inserts v as the last element of the phi prefix (phi
// values occupy a prefix of the block), shifting the cursor and every
// non-phi value right by one; existing phis keep their index.
func (bb *BlockBuilder) insertAtBeginning(v *Value) ValueRef {
	v.block = bb.block
	ref := NewValueRef(v.id)
	bb.block.insertAtPosition(bb.block.phiCount, ref)
	bb.block.phiCount++
	bb.insertPosition++
	return ref
}

// scheduleRemove marks id for removal on the next performRemoval. Removing
// a value that other, still-live values reference is only safe once the
// arena has already redirected those references elsewhere; this method
// does not itself check that.
func (bb *BlockBuilder) scheduleRemove(id ValueID) {
	if bb.pendingRemoval == nil {
		bb.pendingRemoval = make(map[ValueID]struct{})
	}
	bb.pendingRemoval[id] = struct{}{}
}

// performRemoval drops every value scheduled via scheduleRemove from the
// block's value list, adjusting the phi-prefix count and insert cursor for
// whatever was removed ahead of them. Any scheduled value the arena has no
// replacement for yet is first replaced with an Undefined of its own type,
// so a use-site holding a ValueRef to it still resolves to something
// well-typed instead of a value that has silently fallen out of the block.
func (bb *BlockBuilder) performRemoval() {
	if len(bb.pendingRemoval) == 0 {
		return
	}
	for id := range bb.pendingRemoval {
		if bb.mb.ctx.Values.IsReplaced(id) {
			continue
		}
		old := bb.mb.ctx.Values.Get(id)
		undef := bb.mb.irBuilder.CreateUndefined(old.typ, old.location)
		if err := bb.mb.ctx.Values.Replace(old, undef); err != nil {
			panic(err)
		}
	}
	kept := bb.block.values[:0]
	for i, ref := range bb.block.values {
		if _, drop := bb.pendingRemoval[ref.ID()]; drop {
			if i < bb.block.phiCount {
				bb.block.phiCount--
			}
			if i < bb.insertPosition {
				bb.insertPosition--
			}
			continue
		}
		kept = append(kept, ref)
	}
	bb.block.values = kept
	bb.pendingRemoval = nil
}

// splitBlock divides the block at value index at into two: the original
// keeps the prefix and gains an unconditional branch to a freshly created
// tail block, which inherits the original's terminator and successors. When
// keep is true the value at index at stays in the original block;
// otherwise it moves to the tail along with everything after it. Phi
// arguments in the tail's successors that were keyed by the original block
// are rekeyed to the tail, since the tail — not the original — is now their
// actual predecessor.
func (bb *BlockBuilder) splitBlock(at int, keep bool) *BasicBlock {
	bb.performRemoval()
	boundary := at
	if keep {
		boundary = at + 1
	}
	original := bb.block
	tailValues := append([]ValueRef(nil), original.values[boundary:]...)
	original.values = original.values[:boundary]

	tail := bb.mb.createBlockLocked()
	tail.values = tailValues
	for _, ref := range tailValues {
		ref.Resolve(bb.mb.ctx.Values).block = tail
	}
	if original.phiCount > boundary {
		tail.phiCount = original.phiCount - boundary
		original.phiCount = boundary
	}

	tail.terminator = original.terminator
	tail.hasTerm = original.hasTerm
	tail.location = original.location

	jump, jumpID := bb.mb.ctx.Values.alloc()
	jump.kind = KindBranch
	jump.typ = bb.mb.ctx.Types.Void()
	jump.targets = []*BasicBlock{tail}
	jump.block = original
	original.values = append(original.values, NewValueRef(jumpID))
	original.terminator = NewValueRef(jumpID)
	original.hasTerm = true
	bb.insertPosition = len(original.values)

	for _, succ := range tail.targetsOfTerminator(bb.mb.ctx.Values) {
		for _, ref := range succ.values[:succ.phiCount] {
			phi := ref.Resolve(bb.mb.ctx.Values)
			if phi.kind == KindPhi {
				phi.renamePhiArg(original, tail)
			}
		}
	}

	bb.mb.scheduleControlFlowUpdate()
	bb.mb.ctx.diag.blockSplit(original.id, tail.id)
	return tail
}

// targetsOfTerminator reports b's terminator's successor list without
// relying on the cached Successors(), which may not have been recomputed
// yet at split/merge time.
func (b *BasicBlock) targetsOfTerminator(a *ValueArena) []*BasicBlock {
	if !b.hasTerm {
		return nil
	}
	return b.terminator.Resolve(a).targets
}

// mergeBlock folds other into bb's block: other must be bb's block's sole
// successor and have no other predecessor. other's values are appended
// after bb's block's terminator is dropped in favor of other's, and any phi
// in a successor of other keyed by other is rekeyed to bb's block.
func (bb *BlockBuilder) mergeBlock(other *BasicBlock) {
	original := bb.block
	if len(other.predecessors) != 1 || other.predecessors[0] != original {
		panic(errInvalidState(NoLocation, "mergeBlock", "other has predecessors besides original"))
	}
	bb.performRemoval()

	phiShift := other.phiCount
	original.values = append(original.values[:len(original.values)-boolToInt(original.hasTerm)], other.values...)
	original.phiCount += phiShift
	original.terminator = other.terminator
	original.hasTerm = other.hasTerm
	for _, ref := range other.values {
		ref.Resolve(bb.mb.ctx.Values).block = original
	}

	for _, succ := range other.targetsOfTerminator(bb.mb.ctx.Values) {
		for _, ref := range succ.values[:succ.phiCount] {
			phi := ref.Resolve(bb.mb.ctx.Values)
			if phi.kind == KindPhi {
				phi.renamePhiArg(other, original)
			}
		}
	}

	removeBlock(bb.mb.method, other)
	bb.mb.scheduleControlFlowUpdate()
	bb.mb.ctx.diag.blockMerged(original.id, other.id)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func removeBlock(m *Method, target *BasicBlock) {
	for i, b := range m.blocks {
		if b.id == target.id {
			m.blocks = append(m.blocks[:i], m.blocks[i+1:]...)
			return
		}
	}
}

// replaceWithCall collapses v — ordinarily a value the inliner has decided
// not to specialize further — into a Call to target, reusing v's existing
// operands as the call's arguments.
func (bb *BlockBuilder) replaceWithCall(v *Value, target MethodHandle) *Value {
	call, callID := bb.mb.ctx.Values.alloc()
	call.kind = KindCall
	call.typ = v.typ
	call.location = v.location
	call.operands = append([]ValueRef(nil), v.operands...)
	call.callee = &target

	idx := bb.block.indexOf(v.id)
	if idx >= 0 {
		bb.block.values[idx] = NewValueRef(callID)
		call.block = bb.block
	}
	if err := bb.mb.ctx.Values.Replace(v, call); err != nil {
		panic(err)
	}
	return call
}

// setTerminator installs t as the block's terminator, replacing any
// previous one, and schedules the resulting control-flow update. A prior
// terminator occupies the last slot of the block's value list (the
// terminator-is-also-last-value invariant); setTerminator keeps that
// invariant by overwriting that slot instead of leaving it stale.
func (bb *BlockBuilder) setTerminator(t *Value) {
	if !t.IsTerminator() {
		panic(errTypeMismatch(t.location, "setTerminator", "value is not a terminator kind"))
	}
	t.block = bb.block
	ref := NewValueRef(t.id)
	if bb.block.hasTerm && len(bb.block.values) > 0 {
		bb.block.values[len(bb.block.values)-1] = ref
	} else {
		bb.block.values = append(bb.block.values, ref)
	}
	bb.block.setTerminatorRaw(ref)
	bb.mb.scheduleControlFlowUpdate()
}
