package ir

import (
	"sync"

	"github.com/hashicorp/go-multierror"
)

// MethodBuilder owns the exclusive right to mutate one Method; at most one
// builder may hold a method at a time. It tracks block creation, the
// method's parameter list, and the control-flow state that the per-block
// BlockBuilders leave dirty until Dispose commits it.
type MethodBuilder struct {
	ctx       *Context
	method    *Method
	irBuilder *IRBuilder

	currentBlock *BasicBlock

	mu            sync.Mutex
	blockBuilders map[blockID]*BlockBuilder
	cfgDirty      bool
	disposed      bool
}

// Context returns the owning compilation Context.
func (mb *MethodBuilder) Context() *Context { return mb.ctx }

// Method returns the Method under construction. Blocks() on it is only
// authoritative (RPO-ordered) after Dispose.
func (mb *MethodBuilder) Method() *Method { return mb.method }

// Builder returns the IRBuilder used to create values, which always emits
// into CurrentBlock().
func (mb *MethodBuilder) Builder() *IRBuilder { return mb.irBuilder }

// CurrentBlock returns the block new values are appended to.
func (mb *MethodBuilder) CurrentBlock() *BasicBlock { return mb.currentBlock }

// SetInsertBlock switches the active insertion point to b, which must
// belong to this method.
func (mb *MethodBuilder) SetInsertBlock(b *BasicBlock) {
	if b.method != mb.method {
		panic(errArgumentOutOfRange(NoLocation, "SetInsertBlock", "b"))
	}
	mb.currentBlock = b
}

// CreateBlock appends a fresh, unsealed BasicBlock to the method.
func (mb *MethodBuilder) CreateBlock() *BasicBlock {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return mb.createBlockLocked()
}

// createBlockLocked is the non-locking core used by CreateBlock (which holds
// mb.mu), by Context.NewMethodBuilder to seed the entry block, and by
// splitBlock, ensureUniqueExitBlock and CloneBlocks, which call it without
// taking mb.mu.
func (mb *MethodBuilder) createBlockLocked() *BasicBlock {
	id := mb.method.nextBlockID
	mb.method.nextBlockID++
	b := newBasicBlock(id, mb.method)
	mb.method.blocks = append(mb.method.blocks, b)
	return b
}

// BlockBuilderFor returns the scoped mutator for b, creating one on first
// use. The same *BlockBuilder is returned for repeated calls against the
// same block so its pending-removal set and insert cursor persist across
// callers within one method-builder lifetime.
func (mb *MethodBuilder) BlockBuilderFor(b *BasicBlock) *BlockBuilder {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	if mb.blockBuilders == nil {
		mb.blockBuilders = make(map[blockID]*BlockBuilder)
	}
	if bb, ok := mb.blockBuilders[b.id]; ok {
		return bb
	}
	bb := &BlockBuilder{block: b, insertPosition: len(b.values), mb: mb}
	mb.blockBuilders[b.id] = bb
	return bb
}

// AddParameter appends a new trailing parameter of type t, represented as a
// KindParameter Value outside any block.
func (mb *MethodBuilder) AddParameter(t *TypeNode) *Parameter {
	return mb.InsertParameter(len(mb.method.parameters), t)
}

// InsertParameter inserts a new parameter of type t at position index,
// shifting later parameters right. Index() on every Parameter is only
// authoritative after Dispose compacts the list.
func (mb *MethodBuilder) InsertParameter(index int, t *TypeNode) *Parameter {
	v, id := mb.ctx.Values.alloc()
	v.kind = KindParameter
	v.typ = t
	v.location = NoLocation
	p := &Parameter{method: mb.method, valueID: id, typ: t}
	params := mb.method.parameters
	params = append(params, nil)
	copy(params[index+1:], params[index:])
	params[index] = p
	mb.method.parameters = params
	return p
}

// scheduleControlFlowUpdate marks the method's cached successor/predecessor
// links dirty; the next Dispose (or explicit FlushControlFlow) recomputes
// them. Updates are always explicit, never implicit on read.
func (mb *MethodBuilder) scheduleControlFlowUpdate() {
	mb.cfgDirty = true
}

// FlushControlFlow recomputes successor/predecessor links and the blocks'
// reverse-post-order if an update is pending; a no-op otherwise.
func (mb *MethodBuilder) FlushControlFlow() {
	if !mb.cfgDirty {
		return
	}
	mb.updateControlFlow()
	mb.cfgDirty = false
}

// updateControlFlow clears every block's cached predecessor list, then
// re-derives successors/predecessors from each terminator and reorders
// method.blocks into reverse post order over the resulting graph.
func (mb *MethodBuilder) updateControlFlow() {
	for _, b := range mb.method.blocks {
		b.clearPredecessors()
	}
	for _, b := range mb.method.blocks {
		b.propagateSuccessors(mb.ctx.Values)
	}
	mb.method.blocks = reversePostOrder(mb.method.entryBlock, mb.method.blocks)
}

// reversePostOrder returns all of blocks in reverse post order starting
// from entry; blocks unreachable from entry (e.g. never-wired scratch
// blocks) are appended afterward in their original relative order so
// nothing is silently dropped.
func reversePostOrder(entry *BasicBlock, blocks []*BasicBlock) []*BasicBlock {
	visited := make(map[blockID]bool, len(blocks))
	var order []*BasicBlock
	var visit func(b *BasicBlock)
	visit = func(b *BasicBlock) {
		if visited[b.id] {
			return
		}
		visited[b.id] = true
		for _, s := range b.successors {
			visit(s)
		}
		order = append(order, b)
	}
	visit(entry)
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	for _, b := range blocks {
		if !visited[b.id] {
			order = append(order, b)
		}
	}
	return order
}

// ensureUniqueExitBlock merges every block whose terminator is a Return
// into a single synthesized exit block, phi-joining the returned values. A
// method with zero Returns already satisfies the single-exit invariant
// vacuously. It is idempotent: a method already reduced to one exit is
// left untouched.
func (mb *MethodBuilder) ensureUniqueExitBlock() {
	var returns []*BasicBlock
	for _, b := range mb.method.blocks {
		if !b.hasTerm {
			continue
		}
		if t := b.terminator.Resolve(mb.ctx.Values); t.kind == KindReturn {
			returns = append(returns, b)
		}
	}
	if len(returns) <= 1 {
		return
	}

	exit := mb.createBlockLocked()
	retType := mb.method.decl.ReturnType
	var phi *Value
	var phiID ValueID
	hasValue := retType != nil && retType.Kind != TypeKindVoid
	if hasValue {
		phi, phiID = mb.ctx.Values.alloc()
		phi.kind = KindPhi
		phi.typ = retType
		phi.location = NoLocation
		exitBB := mb.BlockBuilderFor(exit)
		exitBB.insertAtBeginning(phi)
	}

	for _, b := range returns {
		term := b.terminator.Resolve(mb.ctx.Values)
		if hasValue && len(term.operands) > 0 {
			phi.setPhiArg(b, term.operands[0])
		}
		jump, jumpID := mb.ctx.Values.alloc()
		jump.kind = KindBranch
		jump.typ = mb.ctx.Types.Void()
		jump.location = term.location
		jump.targets = []*BasicBlock{exit}
		jump.block = b
		// The old Return was the last entry of b.values (the
		// terminator-is-also-last-value invariant); swap it in place rather
		// than appending, so the slot it occupied doesn't leak a dangling
		// unreachable Return into the block.
		b.values[len(b.values)-1] = NewValueRef(jumpID)
		b.setTerminatorRaw(NewValueRef(jumpID))
		b.ssa.marker = 0
	}

	ret, retID := mb.ctx.Values.alloc()
	ret.kind = KindReturn
	ret.typ = mb.ctx.Types.Void()
	ret.location = NoLocation
	ret.block = exit
	if hasValue {
		ret.operands = []ValueRef{NewValueRef(phiID)}
	}
	exit.values = append(exit.values, NewValueRef(retID))
	exit.setTerminatorRaw(NewValueRef(retID))

	mb.cfgDirty = true
	mb.ctx.diag.exitUnified(len(returns), exit.id)
}

// Dispose finalizes the method: every still-open BlockBuilder flushes its
// pending removals, exit blocks are unified, control flow is flushed, and
// the parameter list is compacted (replaced parameters are dropped and the
// survivors reassigned contiguous indices). It then releases the handle so
// a later NewMethodBuilder call for it is permitted again. Errors from the
// removal flush and from exit unification are aggregated rather than
// stopping at the first one.
func (mb *MethodBuilder) Dispose() (*Method, error) {
	if mb.disposed {
		return mb.method, errInvalidState(NoLocation, "Dispose", "method builder already disposed")
	}
	mb.disposed = true

	var errs *multierror.Error
	func() {
		defer func() {
			if r := recover(); r != nil {
				if e, ok := r.(error); ok {
					errs = multierror.Append(errs, e)
					return
				}
				panic(r)
			}
		}()
		for _, bb := range mb.blockBuilders {
			bb.performRemoval()
		}
	}()

	func() {
		defer func() {
			if r := recover(); r != nil {
				if e, ok := r.(error); ok {
					errs = multierror.Append(errs, e)
					return
				}
				panic(r)
			}
		}()
		mb.ensureUniqueExitBlock()
	}()

	mb.FlushControlFlow()

	survivors := mb.method.parameters[:0]
	for _, p := range mb.method.parameters {
		if mb.ctx.Values.IsReplaced(p.valueID) {
			p.isReplaced = true
			continue
		}
		p.index = len(survivors)
		survivors = append(survivors, p)
	}
	mb.method.parameters = survivors

	mb.ctx.release(mb.method.decl.Handle)
	return mb.method, errs.ErrorOrNil()
}
