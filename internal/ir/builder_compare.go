package ir

// Compare emits a relational comparison of lhs and rhs, folding:
// both-constant evaluates directly; a constant LHS against a
// non-commutative kind swaps operands and mirrors the relation; an Int1
// compare against a primitive constant simplifies to Not or identity.
func (b *IRBuilder) Compare(lhs, rhs ValueRef, kind CompareKind, flags ArithFlags, loc Location) ValueRef {
	lv, rv := b.resolve(lhs), b.resolve(rhs)

	if lv.typ.BV == BasicValueInt1 && rv.kind == KindPrimitive && kind == CmpEqual {
		if rv.raw64 != 0 {
			return lhs
		}
		return b.Not(lhs, loc)
	}
	if rv.typ.BV == BasicValueInt1 && lv.kind == KindPrimitive && kind == CmpEqual {
		if lv.raw64 != 0 {
			return rhs
		}
		return b.Not(rhs, loc)
	}

	if lraw, lbv, lok := b.asPrimitiveConst(lhs); lok {
		if rraw, _, rok := b.asPrimitiveConst(rhs); rok {
			result := evalCompare(lraw, rraw, lbv, kind, flags)
			return b.CreatePrimitive(BasicValueInt1, boolRaw(result), loc)
		}
		return b.compareRaw(rhs, lhs, kind.InvertIfNonCommutative(), flags, loc)
	}

	return b.compareRaw(lhs, rhs, kind, flags, loc)
}

func (b *IRBuilder) compareRaw(lhs, rhs ValueRef, kind CompareKind, flags ArithFlags, loc Location) ValueRef {
	c := b.newValue(KindCompare, b.ctx.Types.Primitive(BasicValueInt1), loc)
	c.cmpOp = kind
	c.flags = flags
	c.operands = []ValueRef{lhs, rhs}
	return b.emit(c)
}

func boolRaw(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

func evalCompare(lraw, rraw uint64, bv BasicValueType, kind CompareKind, flags ArithFlags) bool {
	if bv.IsFloat() {
		l, r := toFloat64(lraw, bv, false), toFloat64(rraw, bv, false)
		switch kind {
		case CmpEqual:
			return l == r
		case CmpNotEqual:
			return l != r
		case CmpSignedLessThan:
			return l < r
		case CmpSignedLessThanOrEqual:
			return l <= r
		case CmpSignedGreaterThan:
			return l > r
		case CmpSignedGreaterThanOrEqual:
			return l >= r
		case CmpUnorderedEqual:
			return !(l < r || l > r) // true on NaN too
		case CmpUnorderedNotEqual:
			return l < r || l > r || l != l || r != r
		default:
			return l == r
		}
	}
	unsigned := flags.has(FlagUnsigned)
	if unsigned {
		l, r := truncateUint(lraw, bv), truncateUint(rraw, bv)
		switch kind {
		case CmpEqual:
			return l == r
		case CmpNotEqual:
			return l != r
		case CmpUnsignedLessThan:
			return l < r
		case CmpUnsignedLessThanOrEqual:
			return l <= r
		case CmpUnsignedGreaterThan:
			return l > r
		case CmpUnsignedGreaterThanOrEqual:
			return l >= r
		default:
			return l == r
		}
	}
	l, r := signExtend(lraw, bv), signExtend(rraw, bv)
	switch kind {
	case CmpEqual:
		return l == r
	case CmpNotEqual:
		return l != r
	case CmpSignedLessThan:
		return l < r
	case CmpSignedLessThanOrEqual:
		return l <= r
	case CmpSignedGreaterThan:
		return l > r
	case CmpSignedGreaterThanOrEqual:
		return l >= r
	default:
		return l == r
	}
}
