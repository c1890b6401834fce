package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSpecializeCallInlinesCalleeAtCallSite(t *testing.T) {
	ctx, calleeMB := newTestMethodReturning(t, BasicValueInt32)
	calleeIRB := calleeMB.Builder()
	p := calleeMB.AddParameter(ctx.Types.Primitive(BasicValueInt32))
	param := NewValueRef(p.valueID)
	one := calleeIRB.CreatePrimitive(BasicValueInt32, 1, NoLocation)
	sum := calleeIRB.Binary(ArithAdd, param, one, 0, NoLocation)
	calleeIRB.CreateReturn(&sum, NoLocation)
	callee, err := calleeMB.Dispose()
	require.NoError(t, err)

	callerCtx := ctx // shared compilation Context across both methods
	callerMB := callerCtx.NewMethodBuilder(MethodDeclaration{
		Handle:     MethodHandle{ID: 2, Name: "Caller"},
		ReturnType: callerCtx.Types.Primitive(BasicValueInt32),
	})
	callerIRB := callerMB.Builder()
	entry := callerMB.CurrentBlock()

	arg := callerIRB.CreatePrimitive(BasicValueInt32, 41, NoLocation)
	callTarget := MethodHandle{ID: 1, Name: "Callee"}
	callValue, _ := callerCtx.Values.alloc()
	callValue.kind = KindCall
	callValue.typ = callerCtx.Types.Primitive(BasicValueInt32)
	callValue.callee = &callTarget
	callValue.operands = []ValueRef{arg}
	callRef := callerMB.BlockBuilderFor(entry).append(callValue)

	result := SpecializeCall(callerMB, callValue, callee, []ValueRef{arg})

	resolved := callerCtx.Values.Resolve(result.ID())
	require.Equal(t, KindArithmeticBinary, resolved.kind, "single-exit callee inlines to its return value directly")

	callSiteNow := callerCtx.Values.Resolve(callRef.ID())
	require.Equal(t, resolved.id, callSiteNow.id, "the call site must now resolve to the inlined result")
}

// TestSpecializeCallWithDebugAssertionsEnabled guards against regressing to
// a scheduleRemove+append+performRemoval sequence for redirecting the
// caller's post-split jump: append refuses to land a value in an
// already-terminated block once EnableDebugAssertions is on, so
// SpecializeCall must retarget that jump via setTerminator instead.
func TestSpecializeCallWithDebugAssertionsEnabled(t *testing.T) {
	ctx := NewContext(ContextFlags{EnableDebugAssertions: true}, nil)
	calleeMB := ctx.NewMethodBuilder(MethodDeclaration{
		Handle:     MethodHandle{ID: 1, Name: "Callee"},
		ReturnType: ctx.Types.Primitive(BasicValueInt32),
	})
	calleeIRB := calleeMB.Builder()
	p := calleeMB.AddParameter(ctx.Types.Primitive(BasicValueInt32))
	param := NewValueRef(p.valueID)
	one := calleeIRB.CreatePrimitive(BasicValueInt32, 1, NoLocation)
	sum := calleeIRB.Binary(ArithAdd, param, one, 0, NoLocation)
	calleeIRB.CreateReturn(&sum, NoLocation)
	callee, err := calleeMB.Dispose()
	require.NoError(t, err)

	callerMB := ctx.NewMethodBuilder(MethodDeclaration{
		Handle:     MethodHandle{ID: 2, Name: "Caller"},
		ReturnType: ctx.Types.Primitive(BasicValueInt32),
	})
	callerIRB := callerMB.Builder()
	entry := callerMB.CurrentBlock()

	arg := callerIRB.CreatePrimitive(BasicValueInt32, 41, NoLocation)
	callTarget := MethodHandle{ID: 1, Name: "Callee"}
	callValue, _ := ctx.Values.alloc()
	callValue.kind = KindCall
	callValue.typ = ctx.Types.Primitive(BasicValueInt32)
	callValue.callee = &callTarget
	callValue.operands = []ValueRef{arg}
	callRef := callerMB.BlockBuilderFor(entry).append(callValue)

	require.NotPanics(t, func() {
		result := SpecializeCall(callerMB, callValue, callee, []ValueRef{arg})
		resolved := ctx.Values.Resolve(result.ID())
		require.Equal(t, KindArithmeticBinary, resolved.kind)
	})

	callSiteNow := ctx.Values.Resolve(callRef.ID())
	require.Equal(t, KindArithmeticBinary, callSiteNow.kind, "the call site must resolve to the inlined result even with debug assertions enabled")
}
