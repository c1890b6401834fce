package dump_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/m4rs-mt/ILGPU-sub002/internal/ir"
	"github.com/m4rs-mt/ILGPU-sub002/internal/ir/dump"
)

func buildSmallMethod(t *testing.T) *ir.Method {
	t.Helper()
	ctx := ir.NewContext(ir.ContextFlags{}, nil)
	mb := ctx.NewMethodBuilder(ir.MethodDeclaration{
		Handle:     ir.MethodHandle{ID: 1, Name: "Sample"},
		ReturnType: ctx.Types.Primitive(ir.BasicValueInt32),
	})
	irb := mb.Builder()

	p := mb.AddParameter(ctx.Types.Primitive(ir.BasicValueInt32))
	param := ir.NewValueRef(p.Value())
	five := irb.CreatePrimitive(ir.BasicValueInt32, 5, ir.NoLocation)
	sum := irb.Binary(ir.ArithAdd, param, five, 0, ir.NoLocation)
	irb.CreateReturn(&sum, ir.NoLocation)

	method, err := mb.Dispose()
	require.NoError(t, err)
	return method
}

func TestWriteTextProducesOneLinePerValue(t *testing.T) {
	method := buildSmallMethod(t)

	var sb strings.Builder
	require.NoError(t, dump.WriteText(&sb, method))

	out := sb.String()
	require.NotEmpty(t, out)
	require.Contains(t, out, "ArithmeticBinary")
	require.Contains(t, out, "Return")

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 1+len(method.EntryBlock().Values()))
}

func TestWriteDOTProducesAGraph(t *testing.T) {
	method := buildSmallMethod(t)

	var sb strings.Builder
	require.NoError(t, dump.WriteDOT(&sb, method))

	out := sb.String()
	require.Contains(t, out, "digraph")
	require.Contains(t, out, method.EntryBlock().Name())
}
