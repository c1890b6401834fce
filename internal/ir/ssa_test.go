package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// buildDiamond wires entry -(cond)-> {then, else} -> merge, returning the
// blocks plus the method/builder plumbing shared by both scenarios below.
func buildDiamond(t *testing.T) (*Context, *MethodBuilder, *IRBuilder, entryThenElseMerge) {
	t.Helper()
	ctx, mb := newTestMethod(t, nil)
	irb := mb.Builder()

	entry := mb.CurrentBlock()
	thenBlk := mb.CreateBlock()
	elseBlk := mb.CreateBlock()
	merge := mb.CreateBlock()

	condParam := mb.AddParameter(ctx.Types.Primitive(BasicValueInt1))
	cond := NewValueRef(condParam.valueID)
	irb.CreateConditionalBranch(cond, thenBlk, elseBlk, NoLocation)

	mb.SetInsertBlock(thenBlk)
	irb.CreateBranch(merge, NoLocation)

	mb.SetInsertBlock(elseBlk)
	irb.CreateBranch(merge, NoLocation)

	mb.FlushControlFlow()

	return ctx, mb, irb, entryThenElseMerge{entry, thenBlk, elseBlk, merge}
}

type entryThenElseMerge struct {
	entry, then, els, merge *BasicBlock
}

func TestSSAEngineNonTrivialPhiAtDiamondJoin(t *testing.T) {
	ctx, _, irb, blocks := buildDiamond(t)
	engine := NewEngine[Variable](irb)
	x := Variable(0)

	engine.Process(blocks.entry)
	engine.Seal(blocks.entry)

	mb := irb.MethodBuilder()
	mb.SetInsertBlock(blocks.then)
	ten := irb.CreatePrimitive(BasicValueInt32, 10, NoLocation)
	engine.Write(blocks.then, x, ten)
	engine.Process(blocks.then)
	engine.Seal(blocks.then)

	mb.SetInsertBlock(blocks.els)
	twenty := irb.CreatePrimitive(BasicValueInt32, 20, NoLocation)
	engine.Write(blocks.els, x, twenty)
	engine.Process(blocks.els)
	engine.Seal(blocks.els)

	ref := engine.Read(blocks.merge, x)
	engine.Process(blocks.merge)
	engine.Seal(blocks.merge)

	v := ctx.Values.Resolve(ref.ID())
	require.Equal(t, KindPhi, v.kind, "distinct incoming values must produce a real phi")
	require.Len(t, v.phiArgs, 2)

	thenArg, ok := v.PhiArg(blocks.then)
	require.True(t, ok)
	require.Equal(t, ten.ID(), ctx.Values.Resolve(thenArg.ID()).id)

	elseArg, ok := v.PhiArg(blocks.els)
	require.True(t, ok)
	require.Equal(t, twenty.ID(), ctx.Values.Resolve(elseArg.ID()).id)
}

func TestSealConvertsPhiArgumentAcrossDifferingPrimitiveTypes(t *testing.T) {
	ctx, mb, irb, blocks := buildDiamond(t)
	engine := NewEngine[Variable](irb)
	x := Variable(0)

	engine.Process(blocks.entry)
	engine.Seal(blocks.entry)

	mb.SetInsertBlock(blocks.then)
	ten := irb.CreatePrimitive(BasicValueInt32, 10, NoLocation)
	engine.Write(blocks.then, x, ten)
	engine.Process(blocks.then)
	engine.Seal(blocks.then)

	mb.SetInsertBlock(blocks.els)
	p := mb.AddParameter(ctx.Types.Primitive(BasicValueInt64))
	wide := NewValueRef(p.valueID)
	engine.Write(blocks.els, x, wide)
	engine.Process(blocks.els)
	engine.Seal(blocks.els)

	ref := engine.Read(blocks.merge, x)
	engine.Process(blocks.merge)
	engine.Seal(blocks.merge)

	phi := ctx.Values.Resolve(ref.ID())
	require.Equal(t, KindPhi, phi.kind)
	require.Equal(t, BasicValueInt32, phi.typ.BV, "phi's type is fixed by the first predecessor definition peekType finds")

	thenArg, ok := phi.PhiArg(blocks.then)
	require.True(t, ok)
	require.Equal(t, ten.ID(), ctx.Values.Resolve(thenArg.ID()).id, "a predecessor value already matching the phi's type needs no conversion")

	elseArg, ok := phi.PhiArg(blocks.els)
	require.True(t, ok)
	elseArgVal := ctx.Values.Resolve(elseArg.ID())
	require.Equal(t, KindConvert, elseArgVal.kind, "a predecessor value of a differing primitive type must be converted to the phi's type before joining")
	require.Equal(t, phi.typ, elseArgVal.typ)
	require.Equal(t, wide.ID(), elseArgVal.operands[0].ID())
	require.Contains(t, blocks.els.Values(), elseArg, "the inserted conversion must land inside the predecessor block that produced the mismatched value")
}

func TestSSAEngineTrivialPhiCollapsesAfterSeal(t *testing.T) {
	ctx, _, irb, blocks := buildDiamond(t)
	engine := NewEngine[Variable](irb)
	x := Variable(0)

	ten := irb.CreatePrimitive(BasicValueInt32, 10, NoLocation)
	engine.Write(blocks.entry, x, ten)
	engine.Process(blocks.entry)
	engine.Seal(blocks.entry)

	engine.Process(blocks.then)
	engine.Seal(blocks.then)
	engine.Process(blocks.els)
	engine.Seal(blocks.els)

	ref := engine.Read(blocks.merge, x)
	engine.Process(blocks.merge)
	engine.Seal(blocks.merge)

	root := ctx.Values.Resolve(ref.ID())
	require.Equal(t, KindPrimitive, root.kind, "both arms read the same upstream definition, phi must collapse")
	require.Equal(t, ten.ID(), root.id)
}
