package ir

import "math"

// Convert converts v to primitive type target, folding identity on the
// same type, lowering bool conversions to compare/predicate, and constant
// folding across every BasicValueType pair.
func (b *IRBuilder) Convert(v ValueRef, target BasicValueType, flags ArithFlags, loc Location) ValueRef {
	src := b.resolve(v)
	if !src.typ.IsPrimitive() {
		panic(errTypeMismatch(loc, "Convert", "operand is not a primitive"))
	}
	if src.typ.BV == target {
		return v
	}

	if target == BasicValueInt1 {
		zero := b.CreatePrimitive(src.typ.BV, 0, loc)
		return b.Compare(v, zero, CmpNotEqual, flags, loc)
	}
	if src.typ.BV == BasicValueInt1 {
		one := b.CreatePrimitive(target, 1, loc)
		zero := b.CreatePrimitive(target, 0, loc)
		return b.Predicate(v, one, zero, loc)
	}

	if src.kind == KindConvert {
		inner := b.resolve(src.operands[0])
		innerSrc := inner.typ.BV
		outerSrc := src.typ.BV // the intermediate type S
		widensFirst := outerSrc.BitWidth() > innerSrc.BitWidth() || outerSrc.IsFloat() != innerSrc.IsFloat()
		truncatesFurther := target.BitWidth() <= outerSrc.BitWidth()
		if widensFirst || truncatesFurther {
			return b.Convert(src.operands[0], target, flags, loc)
		}
	}

	if raw, bv, ok := b.asPrimitiveConst(v); ok {
		return b.CreatePrimitive(target, convertConstant(raw, bv, target, flags), loc)
	}

	c := b.newValue(KindConvert, b.ctx.Types.Primitive(target), loc)
	c.flags = flags
	c.operands = []ValueRef{v}
	return b.emit(c)
}

// convertConstant evaluates a primitive-to-primitive conversion honoring
// SourceUnsigned/TargetUnsigned flags, exhaustively across every
// BasicValueType pair.
func convertConstant(raw uint64, from, to BasicValueType, flags ArithFlags) uint64 {
	fv := toFloat64(raw, from, flags.has(FlagSourceUnsigned))
	if to.IsFloat() {
		switch to {
		case BasicValueFloat32:
			return uint64(math.Float32bits(float32(fv)))
		case BasicValueFloat16:
			return uint64(math.Float32bits(float32(fv))) // narrowed representation kept in 32-bit carrier
		default:
			return math.Float64bits(fv)
		}
	}
	if flags.has(FlagTargetUnsigned) {
		return truncateUint(uint64(fv), to)
	}
	return truncateUint(uint64(int64(fv)), to)
}

func toFloat64(raw uint64, bv BasicValueType, unsigned bool) float64 {
	switch bv {
	case BasicValueFloat32, BasicValueFloat16:
		return float64(math.Float32frombits(uint32(raw)))
	case BasicValueFloat64:
		return math.Float64frombits(raw)
	default:
		if unsigned {
			return float64(truncateUint(raw, bv))
		}
		return float64(signExtend(raw, bv))
	}
}

func truncateUint(v uint64, bv BasicValueType) uint64 {
	switch bv.BitWidth() {
	case 1:
		return v & 1
	case 8:
		return v & 0xff
	case 16:
		return v & 0xffff
	case 32:
		return v & 0xffffffff
	default:
		return v
	}
}

func signExtend(v uint64, bv BasicValueType) int64 {
	switch bv.BitWidth() {
	case 1:
		if v&1 != 0 {
			return -1
		}
		return 0
	case 8:
		return int64(int8(v))
	case 16:
		return int64(int16(v))
	case 32:
		return int64(int32(v))
	default:
		return int64(v)
	}
}
