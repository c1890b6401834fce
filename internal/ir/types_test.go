package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypeContextInterning(t *testing.T) {
	tc := NewTypeContext()

	tests := []struct {
		name    string
		construct func() *TypeNode
	}{
		{"pointer", func() *TypeNode { return tc.Pointer(tc.Primitive(BasicValueInt32), AddressSpaceGlobal) }},
		{"view", func() *TypeNode { return tc.View(tc.Primitive(BasicValueFloat32), AddressSpaceGeneric) }},
		{"array", func() *TypeNode { return tc.Array(tc.Primitive(BasicValueInt8), 1, 16) }},
		{"function", func() *TypeNode {
			return tc.Function([]*TypeNode{tc.Primitive(BasicValueInt32)}, tc.Void())
		}},
	}

	for _, tc2 := range tests {
		tc2 := tc2
		t.Run(tc2.name, func(t *testing.T) {
			a := tc2.construct()
			b := tc2.construct()
			require.Same(t, a, b, "structurally-equal constructions must intern to the same pointer")
		})
	}
}

func TestTypeContextPrimitivesAreFixed(t *testing.T) {
	tc := NewTypeContext()
	require.Same(t, tc.Primitive(BasicValueInt32), tc.Primitive(BasicValueInt32))
	require.NotSame(t, tc.Primitive(BasicValueInt32), tc.Primitive(BasicValueInt64))
}

func TestStructLayoutInsertsPadding(t *testing.T) {
	tc := NewTypeContext()
	i8 := tc.Primitive(BasicValueInt8)
	i32 := tc.Primitive(BasicValueInt32)

	st := tc.StructLayout([]*TypeNode{i8, i32})
	require.Len(t, st.Fields, 3, "expected an inserted padding field between i8 and i32")
	require.Equal(t, TypeKindPadding, st.Fields[1].Type.Kind)
	require.Equal(t, 4, st.Fields[2].Offset)
	require.Equal(t, 8, tc.SizeOf(st))
}

func TestFieldSpan(t *testing.T) {
	outer := FieldSpan{Index: 0, Span: 4}
	inner := FieldSpan{Index: 1, Span: 2}

	require.True(t, outer.Contains(inner))
	require.True(t, outer.Overlaps(inner))
	require.Equal(t, FieldSpan{Index: 1, Span: 2}, outer.Narrow(inner))
	require.True(t, inner.IsScalar() == false)
	require.True(t, FieldSpan{Index: 0, Span: 1}.IsScalar())
}
