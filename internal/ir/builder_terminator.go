package ir

// CreateReturn terminates the current block, type-checking v against the
// method's declared return type; a void method synthesizes a null-void
// operand regardless of whether v was supplied.
func (b *IRBuilder) CreateReturn(v *ValueRef, loc Location) ValueRef {
	retType := b.mb.method.decl.ReturnType
	r := b.newValue(KindReturn, b.ctx.Types.Void(), loc)
	if retType == nil || retType.Kind == TypeKindVoid {
		r.operands = []ValueRef{b.CreateNull(b.ctx.Types.Void(), loc)}
	} else {
		if v == nil {
			panic(errArgumentNull(loc, "CreateReturn", "v"))
		}
		if b.resolve(*v).typ != retType {
			panic(errTypeMismatch(loc, "CreateReturn", "return value does not match declared return type"))
		}
		r.operands = []ValueRef{*v}
	}
	return b.emit(r)
}

// CreateBranch terminates the current block with an unconditional jump to
// target.
func (b *IRBuilder) CreateBranch(target *BasicBlock, loc Location) ValueRef {
	br := b.newValue(KindBranch, b.ctx.Types.Void(), loc)
	br.targets = []*BasicBlock{target}
	return b.emit(br)
}

// CreateConditionalBranch terminates the current block by branching to
// trueTarget or falseTarget depending on c, folding a constant condition to
// an unconditional branch.
func (b *IRBuilder) CreateConditionalBranch(c ValueRef, trueTarget, falseTarget *BasicBlock, loc Location) ValueRef {
	cv := b.resolve(c)
	if cv.kind == KindPrimitive {
		if cv.raw64 != 0 {
			return b.CreateBranch(trueTarget, loc)
		}
		return b.CreateBranch(falseTarget, loc)
	}
	br := b.newValue(KindBranch, b.ctx.Types.Void(), loc)
	br.operands = []ValueRef{c}
	br.targets = []*BasicBlock{trueTarget, falseTarget}
	return b.emit(br)
}

// CreateSwitchBranch terminates the current block with a multi-way branch
// over v's integer value against targets; a two-target switch lowers to a
// conditional branch comparing v against zero.
func (b *IRBuilder) CreateSwitchBranch(v ValueRef, targets []*BasicBlock, loc Location) ValueRef {
	if len(targets) == 2 {
		zero := b.CreatePrimitive(b.resolve(v).typ.BV, 0, loc)
		cond := b.Compare(v, zero, CmpEqual, 0, loc)
		return b.CreateConditionalBranch(cond, targets[0], targets[1], loc)
	}
	sw := b.newValue(KindSwitch, b.ctx.Types.Void(), loc)
	sw.operands = []ValueRef{v}
	sw.targets = append([]*BasicBlock(nil), targets...)
	return b.emit(sw)
}
