package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisposeUnifiesMultipleReturnsIntoOneExitWithPhi(t *testing.T) {
	ctx, mb := newTestMethodReturning(t, BasicValueInt32)
	irb := mb.Builder()
	entry := mb.CurrentBlock()

	b1 := mb.CreateBlock()
	b2 := mb.CreateBlock()

	mb.SetInsertBlock(entry)
	ten := irb.CreatePrimitive(BasicValueInt32, 10, NoLocation)
	irb.CreateReturn(&ten, NoLocation)

	mb.SetInsertBlock(b1)
	twenty := irb.CreatePrimitive(BasicValueInt32, 20, NoLocation)
	irb.CreateReturn(&twenty, NoLocation)

	mb.SetInsertBlock(b2)
	thirty := irb.CreatePrimitive(BasicValueInt32, 30, NoLocation)
	irb.CreateReturn(&thirty, NoLocation)

	method, err := mb.Dispose()
	require.NoError(t, err)

	exits := method.ExitBlocks()
	require.Len(t, exits, 1, "every return must be unified into a single exit block")
	exit := exits[0]

	require.Equal(t, 1, exit.PhiCount())
	phiRef := exit.Values()[0]
	phi := ctx.Values.Resolve(phiRef.ID())
	require.Equal(t, KindPhi, phi.kind)
	require.Len(t, phi.PhiArgs(), 3)

	check := func(b *BasicBlock, want ValueRef) {
		arg, ok := phi.PhiArg(b)
		require.True(t, ok, "missing phi argument for predecessor")
		require.Equal(t, want.ID(), ctx.Values.Resolve(arg.ID()).id)
	}
	check(entry, ten)
	check(b1, twenty)
	check(b2, thirty)

	ret := exit.Terminator().Resolve(ctx.Values)
	require.Equal(t, KindReturn, ret.kind)
	require.Equal(t, phiRef.ID(), ret.Operands()[0].ID())
}

func TestDisposeLeavesSingleReturnUntouched(t *testing.T) {
	_, mb := newTestMethodReturning(t, BasicValueInt32)
	irb := mb.Builder()

	five := irb.CreatePrimitive(BasicValueInt32, 5, NoLocation)
	irb.CreateReturn(&five, NoLocation)

	method, err := mb.Dispose()
	require.NoError(t, err)
	require.Len(t, method.ExitBlocks(), 1)
	require.Equal(t, 0, method.ExitBlocks()[0].PhiCount(), "a single return needs no synthesized phi")
}
