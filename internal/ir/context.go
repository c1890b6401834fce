package ir

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Context is the compilation context: it bundles the TypeContext and
// ValueArena that live for the whole compilation, plus the feature flags
// collaborators set. Concurrent compilation of distinct methods is the
// coarse-grained unit of parallelism this is built for;
// Context.NewMethodBuilder enforces the single-owner-per-method rule that
// makes that safe.
type Context struct {
	Types  *TypeContext
	Values *ValueArena
	Flags  ContextFlags

	id     uuid.UUID
	log    *zap.Logger
	diag   *diagnostics

	mu          sync.Mutex
	liveBuilders map[MethodHandle]struct{}
}

// NewContext creates a Context with fresh Type/Value stores. A nil logger
// is replaced with zap.NewNop(), since the core itself never requires
// logging to function correctly, while still letting an embedding
// application observe builder-level diagnostics when it wants to.
func NewContext(flags ContextFlags, logger *zap.Logger) *Context {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.New()
	c := &Context{
		Types:        NewTypeContext(),
		Values:       NewValueArena(),
		Flags:        flags,
		id:           id,
		log:          logger.With(zap.String("ctx", id.String())),
		liveBuilders: make(map[MethodHandle]struct{}),
	}
	c.diag = newDiagnostics(c.log)
	return c
}

// ID returns the stable identifier of this context instance, attached to
// every diagnostic log line so concurrently compiled methods can be told
// apart in shared log output.
func (c *Context) ID() uuid.UUID { return c.id }

// NewMethodBuilder begins constructing decl's method. It panics with an
// InvalidState *Error if a builder for this handle is already live: a
// method is exclusively owned by at most one builder at a time.
func (c *Context) NewMethodBuilder(decl MethodDeclaration) *MethodBuilder {
	c.mu.Lock()
	if _, live := c.liveBuilders[decl.Handle]; live {
		c.mu.Unlock()
		panic(errInvalidState(NoLocation, "NewMethodBuilder", "method builder already live for this handle"))
	}
	c.liveBuilders[decl.Handle] = struct{}{}
	c.mu.Unlock()

	m := &Method{ctx: c, decl: decl}
	mb := &MethodBuilder{ctx: c, method: m}
	mb.irBuilder = &IRBuilder{ctx: c, mb: mb}
	entry := mb.createBlockLocked()
	m.entryBlock = entry
	mb.currentBlock = entry
	return mb
}

// release is called by MethodBuilder.Dispose to free the method handle for
// later reuse, e.g. recompilation after a discarded builder.
func (c *Context) release(h MethodHandle) {
	c.mu.Lock()
	delete(c.liveBuilders, h)
	c.mu.Unlock()
}
