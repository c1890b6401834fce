package ir

import "sync"

// constKey uniquely identifies a uniqued primitive or null constant by its
// scalar kind and raw bit pattern: primitive and null constants are uniqued
// per (BasicValueType, raw64).
type constKey struct {
	bv    BasicValueType
	raw64 uint64
}

// ValueArena owns every Value for the life of a compilation Context: id
// assignment, the replacement graph, and constant uniquing. A replaced
// value is never freed; it stays reachable so Resolve keeps working for
// any ValueRef still pointing at it.
type ValueArena struct {
	mu sync.RWMutex

	values      pool[Value]
	replacement []ValueID // parallel to the allocation index; invalidValueID means "no replacement"

	constants map[constKey]ValueID
	nulls     map[*TypeNode]ValueID
	strings   map[string]ValueID
}

// NewValueArena creates an empty arena.
func NewValueArena() *ValueArena {
	return &ValueArena{
		values:    newPool[Value](),
		constants: make(map[constKey]ValueID),
		nulls:     make(map[*TypeNode]ValueID),
		strings:   make(map[string]ValueID),
	}
}

// alloc reserves a fresh Value record and assigns it the next ValueID. The
// caller is expected to finish populating the fields before the value
// becomes visible to other code under single-owner construction.
func (a *ValueArena) alloc() (*Value, ValueID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := ValueID(a.values.allocated)
	v := a.values.allocate()
	v.id = id
	a.replacement = append(a.replacement, invalidValueID)
	return v, id
}

// Get returns the Value record for id without following replacement.
func (a *ValueArena) Get(id ValueID) *Value {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.values.view(int(id))
}

// Resolve follows v's replacement chain to its root, path-compressing the
// chain as it goes so subsequent resolves of any value along the old chain
// are O(1).
func (a *ValueArena) Resolve(id ValueID) *Value {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.resolveLocked(id)
}

func (a *ValueArena) resolveLocked(id ValueID) *Value {
	root := id
	for a.replacement[root].Valid() {
		root = a.replacement[root]
	}
	// Path compression: point every node visited directly at root.
	for id != root {
		next := a.replacement[id]
		if !next.Valid() {
			break
		}
		a.replacement[id] = root
		id = next
	}
	return a.values.view(int(root))
}

// IsReplaced reports whether id has ever been the target of Replace.
func (a *ValueArena) IsReplaced(id ValueID) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.replacement[id].Valid()
}

// Replace sets v's replacement to w: every ValueRef{v} subsequently
// Resolve()d returns w's root instead. It is idempotent — replacing v with
// the same root twice is a no-op — and fails with
// TypeMismatch if the two values disagree on type, since a replacement that
// changes a use-site's apparent type would silently corrupt later type
// checks.
func (a *ValueArena) Replace(v, w *Value) error {
	if v.typ != w.typ {
		return errTypeMismatch(v.location, "Replace", "NotSupportedReplacementTypeMismatch")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	root := a.resolveLocked(w.id)
	if root.id == v.id {
		return nil // replacing with self, already a no-op after resolution.
	}
	a.replacement[v.id] = root.id
	return nil
}

// internConstant returns the existing ValueID for (bv, raw64) if one was
// already created, or registers id as the canonical one.
func (a *ValueArena) internConstant(bv BasicValueType, raw64 uint64, id ValueID) (ValueID, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	k := constKey{bv: bv, raw64: raw64}
	if existing, ok := a.constants[k]; ok {
		return existing, true
	}
	a.constants[k] = id
	return id, false
}

// internNull returns the existing ValueID for a NullValue(T) if one exists
// for this exact *TypeNode, or registers id as canonical.
func (a *ValueArena) internNull(t *TypeNode, id ValueID) (ValueID, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if existing, ok := a.nulls[t]; ok {
		return existing, true
	}
	a.nulls[t] = id
	return id, false
}

// internString returns the existing ValueID for a string constant with this
// exact content, or registers id as canonical.
func (a *ValueArena) internString(s string, id ValueID) (ValueID, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if existing, ok := a.strings[s]; ok {
		return existing, true
	}
	a.strings[s] = id
	return id, false
}
