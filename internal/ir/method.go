package ir

import "fmt"

// MethodHandle identifies a method across the compilation context. It
// serializes as "<name>/<id>" and is empty iff id<1 or name is empty.
type MethodHandle struct {
	ID   int64
	Name string
}

// IsEmpty reports whether h is the empty handle.
func (h MethodHandle) IsEmpty() bool {
	return h.ID < 1 || h.Name == ""
}

// Serialize renders h as "<name>/<id>", or "<Empty>" for the empty handle.
func (h MethodHandle) Serialize() string {
	if h.IsEmpty() {
		return "<Empty>"
	}
	return fmt.Sprintf("%s/%d", h.Name, h.ID)
}

// String implements fmt.Stringer.
func (h MethodHandle) String() string { return h.Serialize() }

// DeserializeMethodHandle parses the "<name>/<id>" form produced by
// Serialize. DeserializeMethodHandle(h.Serialize()) == h for every
// non-empty h.
func DeserializeMethodHandle(s string) (MethodHandle, error) {
	if s == "<Empty>" {
		return MethodHandle{}, nil
	}
	i := lastIndexByte(s, '/')
	if i < 0 {
		return MethodHandle{}, errArgumentOutOfRange(NoLocation, "DeserializeMethodHandle", "s")
	}
	name, idStr := s[:i], s[i+1:]
	id, err := parseInt64(idStr)
	if err != nil || name == "" || id < 1 {
		return MethodHandle{}, errArgumentOutOfRange(NoLocation, "DeserializeMethodHandle", "s")
	}
	return MethodHandle{ID: id, Name: name}, nil
}

func lastIndexByte(s string, b byte) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == b {
			return i
		}
	}
	return -1
}

func parseInt64(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty")
	}
	var n int64
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("not a digit: %q", c)
		}
		n = n*10 + int64(c-'0')
	}
	return n, nil
}

// MethodFlags are boolean feature switches seeded from the frontend's
// MethodBase.
type MethodFlags uint8

const (
	MethodFlagAggressiveInlining MethodFlags = 1 << iota
	MethodFlagNoInlining
)

// Has reports whether flag is set.
func (f MethodFlags) Has(flag MethodFlags) bool { return f&flag != 0 }

// MethodDeclaration is the method-level metadata carried alongside its
// blocks.
type MethodDeclaration struct {
	Handle     MethodHandle
	ReturnType *TypeNode
	SourceRef  interface{} // opaque frontend reference; unused by the core.
	Flags      MethodFlags
}

// Parameter is treated as a Value; Value() returns the ValueID of its
// record in the arena. Index is assigned on MethodBuilder.Dispose,
// which compacts the parameter list and reassigns contiguous indices.
type Parameter struct {
	method    *Method
	valueID   ValueID
	typ       *TypeNode
	index     int
	isReplaced bool
}

// Method returns the owning Method.
func (p *Parameter) Method() *Method { return p.method }

// Type returns the parameter's type.
func (p *Parameter) Type() *TypeNode { return p.typ }

// Index returns the parameter's position, valid only after Dispose.
func (p *Parameter) Index() int { return p.index }

// Value returns the ValueID this parameter is represented by in the arena.
func (p *Parameter) Value() ValueID { return p.valueID }

// IsReplaced reports whether the underlying value has been replaced (and so
// is dropped on compaction).
func (p *Parameter) IsReplaced() bool { return p.isReplaced }

// Method is an ordered collection of BasicBlocks with an entry block, a
// parameter list, and a declaration. Blocks are stored in
// reverse-post-order relative to the terminator graph once a MethodBuilder
// has disposed.
type Method struct {
	ctx        *Context
	decl       MethodDeclaration
	entryBlock *BasicBlock
	parameters []*Parameter
	blocks     []*BasicBlock

	nextBlockID blockID
}

// Declaration returns the method's handle/return-type/flags bundle.
func (m *Method) Declaration() MethodDeclaration { return m.decl }

// EntryBlock returns the method's unique entry block.
func (m *Method) EntryBlock() *BasicBlock { return m.entryBlock }

// Parameters returns the method's ordered parameter list.
func (m *Method) Parameters() []*Parameter { return m.parameters }

// Blocks returns the method's blocks in reverse post order as of the last
// FlushControlFlow (Dispose always flushes); blocks created since that flush
// follow in creation order.
func (m *Method) Blocks() []*BasicBlock { return m.blocks }

// Context returns the owning compilation Context.
func (m *Method) Context() *Context { return m.ctx }

// ExitBlocks returns every block whose terminator has no successors. After
// a MethodBuilder disposes, ensureUniqueExitBlock has merged all Return
// blocks into one, so this slice has length 1 for a method with at least
// one Return; a method with no Return is left without an exit block.
func (m *Method) ExitBlocks() []*BasicBlock {
	var exits []*BasicBlock
	for _, b := range m.blocks {
		if b.Terminated() && len(b.Successors()) == 0 {
			exits = append(exits, b)
		}
	}
	return exits
}
