package ir

import "math"

// IRBuilder is the factory for every Value kind. It always emits into its
// MethodBuilder's current block, folding eagerly wherever a simplification
// rule applies instead of allocating a fresh node. Every factory takes the
// caller-supplied Location as an opaque source coordinate, so the
// resulting value (and any error) carries it.
type IRBuilder struct {
	ctx *Context
	mb  *MethodBuilder
}

// Context returns the owning compilation Context.
func (b *IRBuilder) Context() *Context { return b.ctx }

// MethodBuilder returns the owning MethodBuilder.
func (b *IRBuilder) MethodBuilder() *MethodBuilder { return b.mb }

// newValue reserves a fresh Value of kind/typ without appending it anywhere;
// callers finish populating kind-specific fields before emit.
func (b *IRBuilder) newValue(kind ValueKind, typ *TypeNode, loc Location) *Value {
	v, _ := b.ctx.Values.alloc()
	v.kind = kind
	v.typ = typ
	v.location = loc
	return v
}

// emit appends v to the current block and returns a reference to it.
func (b *IRBuilder) emit(v *Value) ValueRef {
	return b.mb.BlockBuilderFor(b.mb.currentBlock).append(v)
}

// resolve is a small convenience around ValueArena.Resolve for operand refs.
func (b *IRBuilder) resolve(r ValueRef) *Value { return r.Resolve(b.ctx.Values) }

// asPrimitiveConst reports whether v resolves to a Primitive value, and
// returns its raw bit pattern alongside its scalar kind.
func (b *IRBuilder) asPrimitiveConst(r ValueRef) (raw64 uint64, bv BasicValueType, ok bool) {
	v := b.resolve(r)
	if v.kind != KindPrimitive {
		return 0, 0, false
	}
	return v.raw64, v.typ.BV, true
}

// CreatePrimitive returns the interned constant for (bv, raw64), or
// allocates and interns a new one on first use; primitive and null
// constants are uniqued. Force32BitFloats coerces an f64 constant to f32.
func (b *IRBuilder) CreatePrimitive(bv BasicValueType, raw64 uint64, loc Location) ValueRef {
	if b.ctx.Flags.Force32BitFloats && bv == BasicValueFloat64 {
		raw64 = uint64(math.Float32bits(float32(math.Float64frombits(raw64))))
		bv = BasicValueFloat32
	}
	v, id := b.ctx.Values.alloc()
	v.kind = KindPrimitive
	v.typ = b.ctx.Types.Primitive(bv)
	v.raw64 = raw64
	v.location = loc
	canonical, existed := b.ctx.Values.internConstant(bv, raw64, id)
	if existed {
		return NewValueRef(canonical)
	}
	return NewValueRef(id)
}

// CreateNull returns a primitive zero for a primitive T, or an interned
// NullValue(T) otherwise.
func (b *IRBuilder) CreateNull(t *TypeNode, loc Location) ValueRef {
	if t.IsPrimitive() {
		return b.CreatePrimitive(t.BV, 0, loc)
	}
	v, id := b.ctx.Values.alloc()
	v.kind = KindNull
	v.typ = t
	v.location = loc
	canonical, existed := b.ctx.Values.internNull(t, id)
	if existed {
		return NewValueRef(canonical)
	}
	return NewValueRef(id)
}

// CreateString returns the interned constant for string content s.
func (b *IRBuilder) CreateString(s string, loc Location) ValueRef {
	v, id := b.ctx.Values.alloc()
	v.kind = KindPrimitive
	v.typ = b.ctx.Types.StringType()
	v.location = loc
	v.emitted = s
	canonical, existed := b.ctx.Values.internString(s, id)
	if existed {
		return NewValueRef(canonical)
	}
	return NewValueRef(id)
}

// GetParam returns a reference to method parameter index i's value.
func (b *IRBuilder) GetParam(i int) ValueRef {
	p := b.mb.method.parameters[i]
	return NewValueRef(p.valueID)
}

// CreateUndefined allocates an Undefined value of type t, used by
// performRemoval to preserve use-site validity for a removed value that was
// never explicitly replaced.
func (b *IRBuilder) CreateUndefined(t *TypeNode, loc Location) *Value {
	return b.newValue(KindUndefined, t, loc)
}
