package ir

import "math"

// Not emits a logical/bitwise negation of v, folding double-negation and
// De Morgan over a Compare operand: Not(Not(x)) = x;
// Not(Compare(a,b,k)) = Compare(a,b,invert(k)), toggling to the unordered
// float form when the operands are floats.
func (b *IRBuilder) Not(v ValueRef, loc Location) ValueRef {
	src := b.resolve(v)

	if src.kind == KindArithmeticUnary && src.unaryOp == ArithNot {
		return src.operands[0]
	}
	if src.kind == KindCompare {
		lhs := b.resolve(src.operands[0])
		k := src.cmpOp.Invert()
		if lhs.typ.BV.IsFloat() {
			k = k.toUnordered()
		}
		return b.compareRaw(src.operands[0], src.operands[1], k, src.flags, loc)
	}
	if raw, bv, ok := b.asPrimitiveConst(v); ok {
		return b.CreatePrimitive(bv, ^raw&bitMask(bv), loc)
	}

	u := b.newValue(KindArithmeticUnary, src.typ, loc)
	u.unaryOp = ArithNot
	u.operands = []ValueRef{v}
	return b.emit(u)
}

// Neg emits arithmetic negation, folding Int1 Neg to Not.
func (b *IRBuilder) Neg(v ValueRef, loc Location) ValueRef {
	src := b.resolve(v)
	if src.typ.BV == BasicValueInt1 {
		return b.Not(v, loc)
	}
	if raw, bv, ok := b.asPrimitiveConst(v); ok {
		return b.CreatePrimitive(bv, negConstant(raw, bv), loc)
	}
	u := b.newValue(KindArithmeticUnary, src.typ, loc)
	u.unaryOp = ArithNeg
	u.operands = []ValueRef{v}
	return b.emit(u)
}

// Abs emits absolute value, folding to identity for unsigned operands.
func (b *IRBuilder) Abs(v ValueRef, unsigned bool, loc Location) ValueRef {
	if unsigned {
		return v
	}
	src := b.resolve(v)
	if raw, bv, ok := b.asPrimitiveConst(v); ok {
		if bv.IsFloat() {
			return b.CreatePrimitive(bv, math.Float64bits(math.Abs(toFloat64(raw, bv, false))), loc)
		}
		n := signExtend(raw, bv)
		if n < 0 {
			n = -n
		}
		return b.CreatePrimitive(bv, truncateUint(uint64(n), bv), loc)
	}
	u := b.newValue(KindArithmeticUnary, src.typ, loc)
	u.unaryOp = ArithAbs
	u.operands = []ValueRef{v}
	return b.emit(u)
}

// Sqrt, RcpF are unconditional floating-point unary ops; RcpF is also
// produced by Div's power-of-reciprocal fold below.
func (b *IRBuilder) Sqrt(v ValueRef, loc Location) ValueRef {
	return b.unaryFloatOp(v, ArithSqrt, math.Sqrt, loc)
}

func (b *IRBuilder) RcpF(v ValueRef, loc Location) ValueRef {
	return b.unaryFloatOp(v, ArithRcpF, func(f float64) float64 { return 1 / f }, loc)
}

func (b *IRBuilder) unaryFloatOp(v ValueRef, op ArithUnaryOp, fn func(float64) float64, loc Location) ValueRef {
	src := b.resolve(v)
	if !src.typ.BV.IsFloat() {
		panic(errTypeMismatch(loc, "unaryFloatOp", "operand is not a float"))
	}
	if raw, bv, ok := b.asPrimitiveConst(v); ok {
		return b.CreatePrimitive(bv, floatBits(fn(toFloat64(raw, bv, false)), bv), loc)
	}
	u := b.newValue(KindArithmeticUnary, src.typ, loc)
	u.unaryOp = op
	u.operands = []ValueRef{v}
	return b.emit(u)
}

// Predicate is predicate(cond, ifTrue, ifFalse), used to lower bool->T
// conversions: bool -> T becomes predicate(x, one(T), zero(T)).
func (b *IRBuilder) Predicate(cond, ifTrue, ifFalse ValueRef, loc Location) ValueRef {
	c := b.resolve(cond)
	if c.typ.BV != BasicValueInt1 {
		panic(errTypeMismatch(loc, "Predicate", "condition is not Int1"))
	}
	if c.kind == KindPrimitive {
		if c.raw64 != 0 {
			return ifTrue
		}
		return ifFalse
	}
	t := b.resolve(ifTrue)
	p := b.newValue(KindArithmeticTernary, t.typ, loc)
	p.ternOp = ArithPredicate
	p.operands = []ValueRef{cond, ifTrue, ifFalse}
	return b.emit(p)
}

// Fma is the fused a*b+c ternary op; only constants fold.
func (b *IRBuilder) Fma(a, c, d ValueRef, loc Location) ValueRef {
	av, cv := b.resolve(a), b.resolve(c)
	if raw1, bv, ok1 := b.asPrimitiveConst(a); ok1 {
		if raw2, _, ok2 := b.asPrimitiveConst(c); ok2 {
			if raw3, _, ok3 := b.asPrimitiveConst(d); ok3 {
				f := toFloat64(raw1, bv, false)*toFloat64(raw2, bv, false) + toFloat64(raw3, bv, false)
				return b.CreatePrimitive(bv, floatBits(f, bv), loc)
			}
		}
	}
	_ = cv
	f := b.newValue(KindArithmeticTernary, av.typ, loc)
	f.ternOp = ArithFma
	f.operands = []ValueRef{a, c, d}
	return b.emit(f)
}

// Binary emits a binary arithmetic op, applying every available fold:
// constant evaluation, commutative-constant-to-RHS normalization,
// Div(1,x)->RcpF, power-of-two shift rewriting, bitwise-on-float /
// transcendental-on-non-float rejection, and nested op(op(a,c1),c2)
// constant-combining.
func (b *IRBuilder) Binary(op ArithBinaryOp, lhs, rhs ValueRef, flags ArithFlags, loc Location) ValueRef {
	lv := b.resolve(lhs)
	bv := lv.typ.BV

	if isBitwise(op) && bv.IsFloat() {
		panic(errTypeMismatch(loc, "Binary", "bitwise operation on float operand"))
	}
	if (op == ArithAtan2F || op == ArithPowF) && !bv.IsFloat() {
		panic(errTypeMismatch(loc, "Binary", "transcendental operation on non-float operand"))
	}

	if lraw, _, lok := b.asPrimitiveConst(lhs); lok {
		if rraw, _, rok := b.asPrimitiveConst(rhs); rok {
			return b.CreatePrimitive(bv, evalBinary(op, lraw, rraw, bv, flags), loc)
		}
		if isCommutative(op) {
			return b.binaryRaw(op, rhs, lhs, flags, loc)
		}
	}

	if op == ArithDiv && bv.IsFloat() {
		if raw, _, ok := b.asPrimitiveConst(lhs); ok && toFloat64(raw, bv, false) == 1 {
			return b.RcpF(rhs, loc)
		}
	}

	// Mul-by-power-of-two lowers to Shl regardless of signedness: shifting
	// the two's-complement bit pattern left is bit-for-bit identical to
	// signed or unsigned multiplication by the same power of two. Div only
	// lowers to the logical right Shr when unsigned, since Shr floors
	// toward negative infinity while signed Div truncates toward zero —
	// the two disagree for any negative, non-exact-multiple dividend.
	if op == ArithMul && bv.IsInteger() {
		if raw, _, ok := b.asPrimitiveConst(rhs); ok {
			if shift, isPow2 := log2IfPowerOfTwo(raw, bv); isPow2 {
				amount := b.CreatePrimitive(bv, shift, loc)
				return b.binaryRaw(ArithShl, lhs, amount, flags, loc)
			}
		}
	}
	if op == ArithDiv && bv.IsInteger() && flags.has(FlagUnsigned) {
		if raw, _, ok := b.asPrimitiveConst(rhs); ok {
			if shift, isPow2 := log2IfPowerOfTwo(raw, bv); isPow2 {
				amount := b.CreatePrimitive(bv, shift, loc)
				return b.binaryRaw(ArithShr, lhs, amount, flags, loc)
			}
		}
	}

	if lv.kind == KindArithmeticBinary && lv.binOp == op {
		if c1, _, ok1 := b.asPrimitiveConst(lv.operands[1]); ok1 {
			if c2, _, ok2 := b.asPrimitiveConst(rhs); ok2 && isCommutative(op) {
				combined := evalBinary(op, c1, c2, bv, flags)
				return b.Binary(op, lv.operands[0], b.CreatePrimitive(bv, combined, loc), flags, loc)
			}
		}
	}

	return b.binaryRaw(op, lhs, rhs, flags, loc)
}

func (b *IRBuilder) binaryRaw(op ArithBinaryOp, lhs, rhs ValueRef, flags ArithFlags, loc Location) ValueRef {
	lv := b.resolve(lhs)
	v := b.newValue(KindArithmeticBinary, lv.typ, loc)
	v.binOp = op
	v.flags = flags
	v.operands = []ValueRef{lhs, rhs}
	return b.emit(v)
}

func isBitwise(op ArithBinaryOp) bool {
	switch op {
	case ArithAnd, ArithOr, ArithXor, ArithShl, ArithShr:
		return true
	default:
		return false
	}
}

func isCommutative(op ArithBinaryOp) bool {
	switch op {
	case ArithAdd, ArithMul, ArithAnd, ArithOr, ArithXor:
		return true
	default:
		return false
	}
}

func log2IfPowerOfTwo(raw uint64, bv BasicValueType) (uint64, bool) {
	n := signExtend(raw, bv)
	if n <= 0 || n&(n-1) != 0 {
		return 0, false
	}
	shift := 0
	for n > 1 {
		n >>= 1
		shift++
	}
	return uint64(shift), true
}

func bitMask(bv BasicValueType) uint64 {
	w := bv.BitWidth()
	if w >= 64 || w == 0 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(w)) - 1
}

func negConstant(raw uint64, bv BasicValueType) uint64 {
	if bv.IsFloat() {
		return floatBits(-toFloat64(raw, bv, false), bv)
	}
	return truncateUint(uint64(-signExtend(raw, bv)), bv)
}

func floatBits(f float64, bv BasicValueType) uint64 {
	switch bv {
	case BasicValueFloat32, BasicValueFloat16:
		return uint64(math.Float32bits(float32(f)))
	default:
		return math.Float64bits(f)
	}
}

func evalBinary(op ArithBinaryOp, lraw, rraw uint64, bv BasicValueType, flags ArithFlags) uint64 {
	if bv.IsFloat() {
		l, r := toFloat64(lraw, bv, false), toFloat64(rraw, bv, false)
		switch op {
		case ArithAdd:
			return floatBits(l+r, bv)
		case ArithSub:
			return floatBits(l-r, bv)
		case ArithMul:
			return floatBits(l*r, bv)
		case ArithDiv:
			return floatBits(l/r, bv)
		case ArithAtan2F:
			return floatBits(math.Atan2(l, r), bv)
		case ArithPowF:
			return floatBits(math.Pow(l, r), bv)
		default:
			return floatBits(l, bv)
		}
	}
	unsigned := flags.has(FlagUnsigned)
	if unsigned {
		l, r := truncateUint(lraw, bv), truncateUint(rraw, bv)
		return truncateUint(evalIntBinary(op, l, r), bv)
	}
	l, r := signExtend(lraw, bv), signExtend(rraw, bv)
	return truncateUint(uint64(evalIntBinarySigned(op, l, r)), bv)
}

func evalIntBinary(op ArithBinaryOp, l, r uint64) uint64 {
	switch op {
	case ArithAdd:
		return l + r
	case ArithSub:
		return l - r
	case ArithMul:
		return l * r
	case ArithDiv:
		if r == 0 {
			return 0
		}
		return l / r
	case ArithRem:
		if r == 0 {
			return 0
		}
		return l % r
	case ArithAnd:
		return l & r
	case ArithOr:
		return l | r
	case ArithXor:
		return l ^ r
	case ArithShl:
		return l << (r & 63)
	case ArithShr:
		return l >> (r & 63)
	default:
		return l
	}
}

func evalIntBinarySigned(op ArithBinaryOp, l, r int64) int64 {
	switch op {
	case ArithAdd:
		return l + r
	case ArithSub:
		return l - r
	case ArithMul:
		return l * r
	case ArithDiv:
		if r == 0 {
			return 0
		}
		return l / r
	case ArithRem:
		if r == 0 {
			return 0
		}
		return l % r
	case ArithAnd:
		return l & r
	case ArithOr:
		return l | r
	case ArithXor:
		return l ^ r
	case ArithShl:
		return l << uint(r&63)
	case ArithShr:
		return l >> uint(r&63)
	default:
		return l
	}
}
