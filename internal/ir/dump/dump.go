// Package dump renders an ir.Method as text or as a Graphviz CFG, purely
// from the core's exported surface, as a textual form suitable for
// debugging and log output.
package dump

import (
	"fmt"
	"io"
	"strings"

	"github.com/emicklei/dot"

	"github.com/m4rs-mt/ILGPU-sub002/internal/ir"
)

// WriteText renders m's blocks and values: each value's kind, id, type, and
// operand ids, one line per value, blocks separated by a header line.
func WriteText(w io.Writer, m *ir.Method) error {
	for _, b := range m.Blocks() {
		if _, err := fmt.Fprintf(w, "%s:\n", blockHeader(b)); err != nil {
			return err
		}
		for _, ref := range b.Values() {
			v := ref.Resolve(m.Context().Values)
			if _, err := fmt.Fprintf(w, "  %s\n", formatValue(v)); err != nil {
				return err
			}
		}
	}
	return nil
}

func blockHeader(b *ir.BasicBlock) string {
	preds := make([]string, len(b.Predecessors()))
	for i, p := range b.Predecessors() {
		preds[i] = p.Name()
	}
	if len(preds) == 0 {
		return b.Name()
	}
	return fmt.Sprintf("%s (preds: %s)", b.Name(), strings.Join(preds, ", "))
}

func formatValue(v *ir.Value) string {
	var ops []string
	for _, o := range v.Operands() {
		ops = append(ops, o.ID().String())
	}
	extra := ""
	switch v.Kind() {
	case ir.KindBranch, ir.KindSwitch:
		var ts []string
		for _, t := range v.Successors() {
			ts = append(ts, t.Name())
		}
		extra = fmt.Sprintf(" -> [%s]", strings.Join(ts, ", "))
	case ir.KindPhi:
		var args []string
		for pred, ref := range v.PhiArgs() {
			args = append(args, fmt.Sprintf("%s:%s", pred.Name(), ref.ID()))
		}
		extra = fmt.Sprintf(" {%s}", strings.Join(args, ", "))
	case ir.KindPrimitive:
		extra = fmt.Sprintf(" #%d", v.Raw64())
	}
	return fmt.Sprintf("%s:%s = %s(%s)%s", v.ID(), v.Type(), v.Kind(), strings.Join(ops, ", "), extra)
}

// WriteDOT renders m's control-flow graph as a Graphviz digraph, one node
// per block labeled with its name and one edge per successor link.
func WriteDOT(w io.Writer, m *ir.Method) error {
	g := dot.NewGraph(dot.Directed)
	g.Attr("rankdir", "TB")

	nodes := make(map[string]dot.Node)
	for _, b := range m.Blocks() {
		n := g.Node(b.Name())
		n.Label(blockLabel(b))
		nodes[b.Name()] = n
	}
	for _, b := range m.Blocks() {
		for _, s := range b.Successors() {
			g.Edge(nodes[b.Name()], nodes[s.Name()])
		}
	}

	_, err := io.WriteString(w, g.String())
	return err
}

func blockLabel(b *ir.BasicBlock) string {
	var sb strings.Builder
	sb.WriteString(b.Name())
	sb.WriteString("\\n")
	for _, ref := range b.Values() {
		v := ref.Resolve(b.Method().Context().Values)
		sb.WriteString(formatValue(v))
		sb.WriteString("\\n")
	}
	return sb.String()
}
