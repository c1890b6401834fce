package ir

// CompareKind represents the relation tested by a Compare value. It unifies
// signed, unsigned, and floating-point (ordered/unordered) relations so a
// single KindCompare value kind can represent every comparison category.
type CompareKind byte

const (
	CmpEqual CompareKind = iota
	CmpNotEqual
	CmpSignedLessThan
	CmpSignedGreaterThanOrEqual
	CmpSignedGreaterThan
	CmpSignedLessThanOrEqual
	CmpUnsignedLessThan
	CmpUnsignedGreaterThanOrEqual
	CmpUnsignedGreaterThan
	CmpUnsignedLessThanOrEqual
	// CmpUnsignedOrUnordered variants mirror the signed/ordered floating
	// point relations but additionally hold true when either operand is
	// NaN, matching IEEE "unordered" semantics. Only Equal/NotEqual need a
	// distinct unordered form for the De Morgan fold used by Not(Compare).
	CmpUnorderedEqual
	CmpUnorderedNotEqual
)

// String implements fmt.Stringer.
func (c CompareKind) String() string {
	switch c {
	case CmpEqual:
		return "eq"
	case CmpNotEqual:
		return "neq"
	case CmpSignedLessThan:
		return "lt_s"
	case CmpSignedGreaterThanOrEqual:
		return "ge_s"
	case CmpSignedGreaterThan:
		return "gt_s"
	case CmpSignedLessThanOrEqual:
		return "le_s"
	case CmpUnsignedLessThan:
		return "lt_u"
	case CmpUnsignedGreaterThanOrEqual:
		return "ge_u"
	case CmpUnsignedGreaterThan:
		return "gt_u"
	case CmpUnsignedLessThanOrEqual:
		return "le_u"
	case CmpUnorderedEqual:
		return "eq_unord"
	case CmpUnorderedNotEqual:
		return "neq_unord"
	default:
		panic("invalid compare kind")
	}
}

// IsCommutative reports whether swapping operands preserves the result,
// i.e. only (in)equality relations.
func (c CompareKind) IsCommutative() bool {
	switch c {
	case CmpEqual, CmpNotEqual, CmpUnorderedEqual, CmpUnorderedNotEqual:
		return true
	default:
		return false
	}
}

// Invert returns the logical negation of c: Invert(lt) == ge, etc. This
// backs Not(Compare(a,b,k)) -> Compare(a,b,invert(k)).
func (c CompareKind) Invert() CompareKind {
	switch c {
	case CmpEqual:
		return CmpNotEqual
	case CmpNotEqual:
		return CmpEqual
	case CmpSignedLessThan:
		return CmpSignedGreaterThanOrEqual
	case CmpSignedGreaterThanOrEqual:
		return CmpSignedLessThan
	case CmpSignedGreaterThan:
		return CmpSignedLessThanOrEqual
	case CmpSignedLessThanOrEqual:
		return CmpSignedGreaterThan
	case CmpUnsignedLessThan:
		return CmpUnsignedGreaterThanOrEqual
	case CmpUnsignedGreaterThanOrEqual:
		return CmpUnsignedLessThan
	case CmpUnsignedGreaterThan:
		return CmpUnsignedLessThanOrEqual
	case CmpUnsignedLessThanOrEqual:
		return CmpUnsignedGreaterThan
	case CmpUnorderedEqual:
		return CmpUnorderedNotEqual
	case CmpUnorderedNotEqual:
		return CmpUnorderedEqual
	default:
		panic("invalid compare kind")
	}
}

// InvertIfNonCommutative returns the relation that holds for swapped
// operands: Compare(a,b,c) == Compare(b,a,c.InvertIfNonCommutative()), so
// lt becomes gt and le becomes ge; commutative kinds are returned as is.
// The +2/-2 steps rely on the declaration order of the relational kinds.
func (c CompareKind) InvertIfNonCommutative() CompareKind {
	switch c {
	case CmpSignedLessThan, CmpUnsignedLessThan, CmpSignedGreaterThanOrEqual, CmpUnsignedGreaterThanOrEqual:
		return c + 2
	case CmpSignedGreaterThan, CmpUnsignedGreaterThan, CmpSignedLessThanOrEqual, CmpUnsignedLessThanOrEqual:
		return c - 2
	default:
		return c
	}
}

// toUnordered toggles a compare kind to its unordered-float counterpart,
// used when Not(Compare(a,b,k)) is folded over floating point operands.
func (c CompareKind) toUnordered() CompareKind {
	switch c {
	case CmpEqual:
		return CmpUnorderedEqual
	case CmpNotEqual:
		return CmpUnorderedNotEqual
	default:
		return c
	}
}
