package ir

// CreateStructureValue builds a StructureValue over fieldValues, used both
// directly and as the terminal step of createObjectValue's decomposition.
func (b *IRBuilder) CreateStructureValue(structType *TypeNode, fieldValues []ValueRef, loc Location) ValueRef {
	if !structType.IsStructure() {
		panic(errTypeMismatch(loc, "CreateStructureValue", "type is not a Structure"))
	}
	v := b.newValue(KindStructureValue, structType, loc)
	v.fields = append([]ValueRef(nil), fieldValues...)
	return b.emit(v)
}

// CreateObjectValue lowers a language-level object described by info into
// IR: primitives and enums map directly onto a Primitive; arrays route
// through CreateArrayValue under mode; anything else not representable as
// one of these fails NotSupported, since class literals are out of the
// core's representable domain. The result is always zero-initialized:
// TypeInfo supplies field types only, so a primitive becomes a zero
// constant and structure fields become null values; no object memory is
// read.
func (b *IRBuilder) CreateObjectValue(info TypeInfo, t *TypeNode, mode ArrayMode, loc Location) ValueRef {
	switch t.Kind {
	case TypeKindPrimitive:
		return b.CreatePrimitive(t.BV, 0, loc)
	case TypeKindArray:
		lengths := make([]ValueRef, t.Rank)
		for i := range lengths {
			lengths[i] = b.CreatePrimitive(BasicValueInt32, 0, loc)
		}
		return b.CreateArrayValue(t, lengths, mode, loc)
	case TypeKindStructure:
		fieldValues := make([]ValueRef, 0, len(info.Fields()))
		offset := 0
		for _, ft := range info.Fields() {
			align := 1
			if s := b.ctx.Types.SizeOf(ft); s > 0 {
				align = s
			}
			if offset%align != 0 {
				pad := align - offset%align
				fieldValues = append(fieldValues, b.CreateNull(b.ctx.Types.Padding(paddingKindForSize(pad)), loc))
				offset += pad
			}
			fieldValues = append(fieldValues, b.CreateNull(ft, loc))
			offset += b.ctx.Types.SizeOf(ft)
		}
		if extra := info.ByteSize() - offset; extra > 0 {
			fieldValues = append(fieldValues, b.CreateNull(b.ctx.Types.Padding(paddingKindForSize(extra)), loc))
		}
		layout := b.ctx.Types.StructLayout(info.Fields())
		return b.CreateStructureValue(layout, fieldValues, loc)
	default:
		panic(errNotSupported(loc, "CreateObjectValue", "NotSupportedClassType"))
	}
}

func paddingKindForSize(n int) BasicValueType {
	switch {
	case n <= 1:
		return BasicValueInt8
	case n <= 2:
		return BasicValueInt16
	case n <= 4:
		return BasicValueInt32
	default:
		return BasicValueInt64
	}
}

// GetField reads span out of o, folding over StructureValue (pick),
// NullValue (fresh null of the sub-type), and SetField (span-containment
// arithmetic).
func (b *IRBuilder) GetField(o ValueRef, span FieldSpan, fieldType *TypeNode, loc Location) ValueRef {
	ov := b.resolve(o)

	switch ov.kind {
	case KindStructureValue:
		if span.IsScalar() && span.Index < len(ov.fields) {
			return ov.fields[span.Index]
		}
	case KindNull:
		return b.CreateNull(fieldType, loc)
	case KindSetField:
		prevSpan := ov.span
		switch {
		case prevSpan == span:
			return ov.operands[1]
		case span.Contains(prevSpan):
			// span covers more than the just-set field: no fold, emit a fresh GetField below.
		case prevSpan.Contains(span):
			return b.GetField(ov.operands[1], prevSpan.Narrow(span), fieldType, loc)
		default:
			if !prevSpan.Overlaps(span) {
				return b.GetField(ov.operands[0], span, fieldType, loc)
			}
		}
	}

	g := b.newValue(KindGetField, fieldType, loc)
	g.span = span
	g.operands = []ValueRef{o}
	return b.emit(g)
}

// SetField returns the value of writing v into span of o, folding
// StructureValue field replacement and full-span NullValue assignment.
func (b *IRBuilder) SetField(o ValueRef, span FieldSpan, v ValueRef, loc Location) ValueRef {
	ov := b.resolve(o)

	if ov.kind == KindNull && span.Index == 0 && span.Span == structureFieldCount(ov.typ) {
		return v
	}
	if ov.kind == KindStructureValue && span.IsScalar() && span.Index < len(ov.fields) {
		fields := append([]ValueRef(nil), ov.fields...)
		fields[span.Index] = v
		return b.CreateStructureValue(ov.typ, fields, loc)
	}

	s := b.newValue(KindSetField, ov.typ, loc)
	s.span = span
	s.operands = []ValueRef{o, v}
	return b.emit(s)
}

func structureFieldCount(t *TypeNode) int {
	if t.IsStructure() {
		return len(t.Fields)
	}
	return 1
}
