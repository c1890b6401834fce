package ir

import "sync/atomic"

// Engine drives the on-demand SSA construction algorithm of Braun et al.,
// 2013 ("Simple and Efficient Construction of Static Single Assignment
// Form"), parameterized over a caller-chosen variable key type V. The
// default key type for frontends with no richer notion of "variable" is
// Variable; any comparable type works.
type Engine[V comparable] struct {
	irb *IRBuilder

	nextMarker int32
	phis       []ValueID // every phi this engine has created, for cascading trivial-phi re-checks.
}

// NewEngine creates an SSA construction engine emitting phis through irb.
func NewEngine[V comparable](irb *IRBuilder) *Engine[V] {
	return &Engine[V]{irb: irb}
}

// Write records that v holds value in block b.
func (e *Engine[V]) Write(b *BasicBlock, v V, value ValueRef) {
	if b.ssa.values == nil {
		b.ssa.values = make(map[interface{}]ValueID)
	}
	b.ssa.values[v] = value.ID()
}

// Read resolves the current value of v visible at block b, creating a phi
// on demand when no local definition exists.
func (e *Engine[V]) Read(b *BasicBlock, v V) ValueRef {
	if id, ok := b.ssa.values[v]; ok {
		return NewValueRef(id)
	}
	if b.ssa.sealed && len(b.predecessors) == 1 {
		return e.Read(b.predecessors[0], v)
	}

	typ := e.peekType(b, v)
	phi, phiID := e.irb.ctx.Values.alloc()
	phi.kind = KindPhi
	phi.typ = typ
	phi.location = NoLocation
	e.irb.mb.BlockBuilderFor(b).insertAtBeginning(phi)
	e.phis = append(e.phis, phiID)

	e.Write(b, v, NewValueRef(phiID))

	if b.ssa.sealed {
		e.addPhiOperands(b, v, phi)
	} else {
		if b.ssa.incompletePhis == nil {
			b.ssa.incompletePhis = make(map[interface{}]ValueID)
		}
		b.ssa.incompletePhis[v] = phiID
	}
	return NewValueRef(phiID)
}

// addPhiOperands wires one argument per predecessor of b into phi, reading
// each recursively and converting it to phi's primitive type first if the
// predecessor's value disagrees, then attempts trivial-phi elimination.
func (e *Engine[V]) addPhiOperands(b *BasicBlock, v V, phi *Value) {
	for _, pred := range b.predecessors {
		arg := e.Read(pred, v)
		arg = e.convertForPhi(pred, arg, phi.typ)
		phi.setPhiArg(pred, arg)
	}
	e.tryRemoveTrivialPhi(phi, b)
}

// convertForPhi inserts a primitive conversion of arg into phiType at the
// end of pred (ahead of pred's terminator, if any) when the two disagree
// on primitive type, so a phi never joins mismatched representations of a
// variable read across different-width/signedness predecessors.
func (e *Engine[V]) convertForPhi(pred *BasicBlock, arg ValueRef, phiType *TypeNode) ValueRef {
	argVal := e.irb.resolve(arg)
	if argVal.typ == phiType || !phiType.IsPrimitive() || !argVal.typ.IsPrimitive() {
		return arg
	}
	if raw, bv, ok := e.irb.asPrimitiveConst(arg); ok {
		return e.irb.CreatePrimitive(phiType.BV, convertConstant(raw, bv, phiType.BV, 0), NoLocation)
	}
	c, _ := e.irb.ctx.Values.alloc()
	c.kind = KindConvert
	c.typ = phiType
	c.location = NoLocation
	c.operands = []ValueRef{arg}
	return e.irb.mb.BlockBuilderFor(pred).insertBeforeTerminator(c)
}

// Seal declares that every predecessor of b is now known: every predecessor
// must already be Process()ed or Sealed, after which b's pending
// incomplete phis are wired.
func (e *Engine[V]) Seal(b *BasicBlock) {
	if b.ssa.sealed {
		panic(errInvalidState(NoLocation, "Seal", "block already sealed"))
	}
	for _, pred := range b.predecessors {
		if !pred.ssa.processed && !pred.ssa.sealed {
			panic(errInvalidState(NoLocation, "Seal", "predecessor not processed or sealed"))
		}
	}
	for key, phiID := range b.ssa.incompletePhis {
		v := key.(V)
		phi := e.irb.ctx.Values.Get(phiID)
		e.addPhiOperands(b, v, phi)
	}
	b.ssa.incompletePhis = nil
	b.ssa.sealed = true
}

// Process marks b processed, idempotently.
func (e *Engine[V]) Process(b *BasicBlock) {
	b.ssa.processed = true
}

// peekType discovers the type a not-yet-created phi for v at b should carry
// by following predecessors under a fresh marker, so cycles in a diamond
// or loop graph terminate instead of recursing forever; the marker
// (int32, bumped per call) is what breaks the cycle during recursive
// peeking.
func (e *Engine[V]) peekType(b *BasicBlock, v V) *TypeNode {
	marker := atomic.AddInt32(&e.nextMarker, 1)
	t := e.peek(b, v, marker)
	if t == nil {
		panic(errInvalidState(NoLocation, "peekType", "no reachable definition of variable"))
	}
	return t
}

func (e *Engine[V]) peek(b *BasicBlock, v V, marker int32) *TypeNode {
	if atomic.LoadInt32(&b.ssa.marker) == marker {
		return nil
	}
	atomic.StoreInt32(&b.ssa.marker, marker)
	if id, ok := b.ssa.values[v]; ok {
		return e.irb.ctx.Values.Get(id).typ
	}
	for _, pred := range b.predecessors {
		if t := e.peek(pred, v, marker); t != nil {
			return t
		}
	}
	return nil
}

// tryRemoveTrivialPhi collapses phi to its single non-self argument when one
// exists, cascading into any other known phi that referenced it, since a
// collapse can make a previously non-trivial phi trivial.
func (e *Engine[V]) tryRemoveTrivialPhi(phi *Value, b *BasicBlock) {
	e.collapseIfTrivial(phi, b)
	for _, id := range e.phis {
		other := e.irb.ctx.Values.Get(id)
		if other.id == phi.id || e.irb.ctx.Values.IsReplaced(other.id) {
			continue
		}
		e.collapseIfTrivial(other, other.block)
	}
}

func (e *Engine[V]) collapseIfTrivial(phi *Value, b *BasicBlock) {
	if e.irb.ctx.Values.IsReplaced(phi.id) {
		return
	}
	var unique ValueID = invalidValueID
	sawAny := false
	for _, arg := range phi.phiArgs {
		root := arg.Resolve(e.irb.ctx.Values)
		sawAny = true
		if root.id == phi.id {
			continue // self-reference, ignore
		}
		if unique.Valid() && root.id != unique {
			return // two distinct non-self arguments: not trivial.
		}
		unique = root.id
	}
	if !sawAny {
		return
	}
	if !unique.Valid() {
		undef := e.irb.CreateUndefined(phi.typ, phi.location)
		_ = e.irb.ctx.Values.Replace(phi, undef)
		return
	}
	uniqueVal := e.irb.ctx.Values.Get(unique)
	if err := e.irb.ctx.Values.Replace(phi, uniqueVal); err == nil && b != nil {
		e.irb.ctx.diag.phiTrivialized(b.id, phi.id, unique)
	}
}
