package ir

// Rebuilder clones a block collection from one method into another,
// remapping operands through a value mapping and blocks through a block
// mapping, and interned type identity through the shared TypeContext. It
// backs call specialization: inlining a callee's already-built IR into a
// caller at a call site.
type Rebuilder struct {
	ctx *Context

	values map[ValueID]ValueRef
	blocks map[blockID]*BasicBlock
}

// NewRebuilder creates an empty Rebuilder for ctx.
func NewRebuilder(ctx *Context) *Rebuilder {
	return &Rebuilder{
		ctx:    ctx,
		values: make(map[ValueID]ValueRef),
		blocks: make(map[blockID]*BasicBlock),
	}
}

// MapValue registers that references to src in the source collection should
// resolve to dst in the target method, seeding the mapping with e.g. a
// callee's parameters bound to a call's argument operands.
func (r *Rebuilder) MapValue(src ValueID, dst ValueRef) {
	r.values[src] = dst
}

// mapRef remaps one operand reference through the value table, falling
// back to the original reference when nothing was cloned for it (constants
// and already-target-method values resolve through themselves).
func (r *Rebuilder) mapRef(ref ValueRef) ValueRef {
	if mapped, ok := r.values[ref.ID()]; ok {
		return mapped
	}
	return ref
}

func (r *Rebuilder) mapBlock(b *BasicBlock) *BasicBlock {
	if mapped, ok := r.blocks[b.id]; ok {
		return mapped
	}
	return b
}

// CloneBlocks clones every block in src into mb's method (each as a fresh
// block created via mb.createBlockLocked), then clones every value within
// each block in order, remapping operands/targets through the mapping
// tables built up as cloning proceeds. Returns the cloned blocks in the
// same order as src.
func (r *Rebuilder) CloneBlocks(mb *MethodBuilder, src []*BasicBlock) []*BasicBlock {
	cloned := make([]*BasicBlock, len(src))
	for i, b := range src {
		nb := mb.createBlockLocked()
		r.blocks[b.id] = nb
		cloned[i] = nb
	}
	for i, b := range src {
		nb := cloned[i]
		bb := mb.BlockBuilderFor(nb)
		for _, ref := range b.values {
			v := ref.Resolve(r.ctx.Values)
			nv := r.cloneValue(v)
			if nv.kind == KindPhi {
				bb.insertAtBeginning(nv)
			} else {
				bb.append(nv)
			}
		}
	}
	return cloned
}

// cloneValue copies v into the target method's arena with remapped
// operands/targets/phi-args, records the src->dst mapping, and returns the
// new Value.
func (r *Rebuilder) cloneValue(v *Value) *Value {
	nv, nid := r.ctx.Values.alloc()
	nv.kind = v.kind
	nv.typ = v.typ
	nv.location = v.location
	nv.castOp = v.castOp
	nv.unaryOp = v.unaryOp
	nv.binOp = v.binOp
	nv.ternOp = v.ternOp
	nv.cmpOp = v.cmpOp
	nv.flags = v.flags
	nv.span = v.span
	nv.raw64 = v.raw64
	nv.callee = v.callee
	nv.emitted = v.emitted

	nv.operands = make([]ValueRef, len(v.operands))
	for i, op := range v.operands {
		nv.operands[i] = r.mapRef(op)
	}
	nv.targets = make([]*BasicBlock, len(v.targets))
	for i, t := range v.targets {
		nv.targets[i] = r.mapBlock(t)
	}
	nv.fields = make([]ValueRef, len(v.fields))
	for i, f := range v.fields {
		nv.fields[i] = r.mapRef(f)
	}
	if v.phiArgs != nil {
		nv.phiArgs = make(map[*BasicBlock]ValueRef, len(v.phiArgs))
		for pred, arg := range v.phiArgs {
			nv.setPhiArg(r.mapBlock(pred), r.mapRef(arg))
		}
	}

	r.values[v.id] = NewValueRef(nid)
	return nv
}

// SpecializeCall inlines callee's already-built method into the block
// currently being built by mb, replacing the call-site value call with the
// callee's (possibly phi-joined) return value. The caller is split at
// call's position so the call and everything after it move into the tail
// block that the
// callee's unique exit branches to; the caller's phi arguments in the tail's
// successors are remapped to the tail as the new predecessor, matching the
// effect of an ordinary BlockBuilder.splitBlock.
func SpecializeCall(mb *MethodBuilder, call *Value, callee *Method, args []ValueRef) ValueRef {
	b := call.block
	bb := mb.BlockBuilderFor(b)
	idx := b.indexOf(call.id)
	tail := bb.splitBlock(idx, false)

	r := NewRebuilder(mb.ctx)
	for i, p := range callee.parameters {
		if i < len(args) {
			r.MapValue(p.valueID, args[i])
		}
	}
	seeded := len(r.values)

	clonedBlocks := r.CloneBlocks(mb, callee.blocks)
	entry := r.mapBlock(callee.entryBlock)

	// splitBlock left b ending in an unconditional branch to tail; redirect
	// it to the callee's entry instead, since tail is now reached only
	// through the callee's exit blocks. setTerminator overwrites that
	// existing terminator in place rather than scheduling its removal and
	// appending past it, which append refuses once a block is terminated.
	toEntry, _ := mb.ctx.Values.alloc()
	toEntry.kind = KindBranch
	toEntry.typ = mb.ctx.Types.Void()
	toEntry.targets = []*BasicBlock{entry}
	bb.setTerminator(toEntry)

	var exitValues []ValueRef
	var exitBlocks []*BasicBlock
	for _, cb := range clonedBlocks {
		if cb.hasTerm {
			if t := cb.terminator.Resolve(mb.ctx.Values); t.kind == KindReturn {
				exitBlocks = append(exitBlocks, cb)
				if len(t.operands) > 0 {
					exitValues = append(exitValues, t.operands[0])
				}
			}
		}
	}

	for _, cb := range exitBlocks {
		jump, jumpID := mb.ctx.Values.alloc()
		jump.kind = KindBranch
		jump.typ = mb.ctx.Types.Void()
		jump.targets = []*BasicBlock{tail}
		cbBuilder := mb.BlockBuilderFor(cb)
		cbBuilder.setTerminator(jump)
		_ = jumpID
	}

	var result ValueRef
	if len(exitValues) == 1 {
		result = exitValues[0]
	} else if len(exitValues) > 1 {
		phi, phiID := mb.ctx.Values.alloc()
		phi.kind = KindPhi
		phi.typ = call.typ
		phi.location = call.location
		mb.BlockBuilderFor(tail).insertAtBeginning(phi)
		for i, cb := range exitBlocks {
			phi.setPhiArg(cb, exitValues[i])
		}
		result = NewValueRef(phiID)
	}

	if err := mb.ctx.Values.Replace(call, result.Resolve(mb.ctx.Values)); err != nil {
		panic(err)
	}
	mb.scheduleControlFlowUpdate()
	mb.ctx.diag.specialized(mb.method.decl.Handle, callee.decl.Handle, len(r.values)-seeded)
	return result
}
