package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConditionalBranchFoldsConstantCondition(t *testing.T) {
	_, mb := newTestMethodReturning(t, BasicValueInt32)
	irb := mb.Builder()
	entry := mb.CurrentBlock()

	thenBlk := mb.CreateBlock()
	elseBlk := mb.CreateBlock()

	trueConst := irb.CreatePrimitive(BasicValueInt1, 1, NoLocation)
	irb.CreateConditionalBranch(trueConst, thenBlk, elseBlk, NoLocation)

	term := entry.Terminator().Resolve(mb.Context().Values)
	require.Equal(t, KindBranch, term.kind)
	require.Nil(t, term.Operands(), "a folded unconditional branch carries no condition operand")
	require.Equal(t, []*BasicBlock{thenBlk}, term.Successors())
}

func TestSwitchBranchWithTwoTargetsLowersToConditionalBranch(t *testing.T) {
	ctx, mb := newTestMethodReturning(t, BasicValueInt32)
	irb := mb.Builder()
	entry := mb.CurrentBlock()

	a := mb.CreateBlock()
	b := mb.CreateBlock()

	p := mb.AddParameter(ctx.Types.Primitive(BasicValueInt32))
	v := NewValueRef(p.valueID)
	irb.CreateSwitchBranch(v, []*BasicBlock{a, b}, NoLocation)

	term := entry.Terminator().Resolve(ctx.Values)
	require.Equal(t, KindBranch, term.kind)
	require.Len(t, term.Operands(), 1, "a 2-target switch carries the equality-to-zero condition")
	require.Equal(t, []*BasicBlock{a, b}, term.Successors())
}

func TestCreateReturnOnVoidMethodSynthesizesNullOperand(t *testing.T) {
	ctx, mb := newTestMethod(t, nil)
	irb := mb.Builder()

	irb.CreateReturn(nil, NoLocation)

	entry := mb.CurrentBlock()
	term := entry.Terminator().Resolve(ctx.Values)
	require.Equal(t, KindReturn, term.kind)
	require.Len(t, term.Operands(), 1)
	require.Equal(t, KindNull, term.Operands()[0].Resolve(ctx.Values).kind)
}
