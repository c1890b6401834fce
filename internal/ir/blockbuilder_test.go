package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitThenMergeBlockPreservesValueOrder(t *testing.T) {
	ctx, mb := newTestMethodReturning(t, BasicValueInt32)
	irb := mb.Builder()
	entry := mb.CurrentBlock()

	p := mb.AddParameter(ctx.Types.Primitive(BasicValueInt32))
	param := NewValueRef(p.valueID)
	v0 := irb.Neg(param, NoLocation)
	v1 := irb.Neg(v0, NoLocation)
	irb.CreateReturn(&v1, NoLocation)

	before := append([]ValueRef(nil), entry.Values()...)
	require.Len(t, before, 3, "v0, v1, return")

	bb := mb.BlockBuilderFor(entry)
	tail := bb.splitBlock(1, false)
	mb.FlushControlFlow()

	require.Equal(t, []*BasicBlock{tail}, entry.Successors())
	require.Len(t, entry.Values(), 2, "v0 + new jump")
	require.Len(t, tail.Values(), 2, "v1 + original return")

	mb.BlockBuilderFor(entry).mergeBlock(tail)
	mb.FlushControlFlow()

	after := entry.Values()
	require.Equal(t, len(before), len(after))
	for i := range before {
		require.Equal(t, before[i].ID(), after[i].ID(), "value order must round-trip through split+merge")
	}
}

func TestPerformRemovalReplacesUnreplacedValueWithUndefined(t *testing.T) {
	ctx, mb := newTestMethodReturning(t, BasicValueInt32)
	irb := mb.Builder()
	entry := mb.CurrentBlock()

	p := mb.AddParameter(ctx.Types.Primitive(BasicValueInt32))
	param := NewValueRef(p.valueID)
	dead := irb.Neg(param, NoLocation)
	live := irb.Neg(dead, NoLocation)
	irb.CreateReturn(&live, NoLocation)

	deadVal := ctx.Values.Resolve(dead.ID())
	bb := mb.BlockBuilderFor(entry)
	bb.scheduleRemove(deadVal.id)
	bb.performRemoval()

	resolved := ctx.Values.Resolve(dead.ID())
	require.Equal(t, KindUndefined, resolved.kind, "a removed value with no explicit replacement must resolve to Undefined")
	require.Equal(t, deadVal.typ, resolved.typ, "the Undefined substitute must carry the removed value's exact type")

	liveVal := ctx.Values.Resolve(live.ID())
	require.Equal(t, resolved.id, liveVal.operands[0].Resolve(ctx.Values).id, "a still-live use of the removed value must now see the Undefined substitute")

	for _, ref := range entry.Values() {
		require.NotEqual(t, deadVal.id, ref.ID(), "the removed value's original id must no longer appear in the block's value list")
	}
}

func TestPerformRemovalSkipsValueAlreadyReplaced(t *testing.T) {
	ctx, mb := newTestMethodReturning(t, BasicValueInt32)
	irb := mb.Builder()
	entry := mb.CurrentBlock()

	p := mb.AddParameter(ctx.Types.Primitive(BasicValueInt32))
	param := NewValueRef(p.valueID)
	old := irb.Neg(param, NoLocation)
	oldVal := ctx.Values.Resolve(old.ID())
	replacement := irb.CreatePrimitive(BasicValueInt32, 7, NoLocation)
	require.NoError(t, ctx.Values.Replace(oldVal, ctx.Values.Resolve(replacement.ID())))
	irb.CreateReturn(&replacement, NoLocation)

	bb := mb.BlockBuilderFor(entry)
	bb.scheduleRemove(oldVal.id)
	bb.performRemoval()

	resolved := ctx.Values.Resolve(old.ID())
	require.Equal(t, KindPrimitive, resolved.kind, "a value already replaced before removal must keep its existing replacement, not gain an Undefined one")
}

func TestReplaceWithCallPreservesOperandsAndType(t *testing.T) {
	ctx, mb := newTestMethodReturning(t, BasicValueInt32)
	irb := mb.Builder()
	entry := mb.CurrentBlock()

	p := mb.AddParameter(ctx.Types.Primitive(BasicValueInt32))
	param := NewValueRef(p.valueID)
	five := irb.CreatePrimitive(BasicValueInt32, 5, NoLocation)
	sum := irb.Binary(ArithAdd, param, five, 0, NoLocation)

	sumVal := ctx.Values.Resolve(sum.ID())
	bb := mb.BlockBuilderFor(entry)
	callee := MethodHandle{ID: 99, Name: "Callee"}
	call := bb.replaceWithCall(sumVal, callee)

	require.Equal(t, KindCall, call.Kind())
	require.Equal(t, callee, *call.Callee())
	require.Equal(t, sumVal.typ, call.typ)
	require.Equal(t, sumVal.operands, call.Operands())

	resolved := ctx.Values.Resolve(sum.ID())
	require.Equal(t, KindCall, resolved.kind, "every existing reference to the original value must now see the call")
}
