// Package ctx holds the shared mutable state of an in-progress assembly:
// the identifier pool, the ordinary-assembly context (sections, location
// counters, symbol table, USING stack, dependency graph hooks), the
// conditional-assembly context (SET-variable scopes, macro definitions,
// copy-member cache, sequence symbols), the processing stack, and metrics.
//
// Grounded on the teacher's internal/server/server.go (a single aggregate
// struct behind accessor methods, mutated only through them) generalized
// from LSP server state to HLASM assembly state, and on
// original_source/context/ which is the real ordinary_assembly_context
// this models.
package ctx

import (
	"github.com/sirupsen/logrus"

	"github.com/hlasm-tools/hlasmcore/internal/ids"
)

// idType and emptyId are local aliases so the rest of this package can
// read "idType"/"emptyId" instead of repeating the ids. prefix throughout
// files that are themselves about identifiers (sections, counters,
// symbols) by name.
type idType = ids.Id

const emptyId = ids.Empty

// Ctx is the shared state of one in-progress assembly.
type Ctx struct {
	pool *ids.Pool
	log  *logrus.Entry

	sections      map[idType]*Section
	sectionOrder  []idType
	currentSection idType
	hasExecutable bool
	hasStartSeen  bool

	symbols map[idType]*Symbol

	mnemonics map[idType]idType // alias -> existing opcode, per OPSYN

	using *usingStack

	conditional *conditionalState

	stack Stack

	metrics Metrics

	ended bool
}

// New creates an empty Ctx. pool may be nil to have Ctx create its own
// (spec §6's ids_init option supplies one when continuing a prior
// analysis).
func New(pool *ids.Pool, log *logrus.Entry) *Ctx {
	if pool == nil {
		pool = ids.NewPool()
	}

	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Ctx{
		pool:      pool,
		log:       log,
		sections:  make(map[idType]*Section),
		symbols:   make(map[idType]*Symbol),
		mnemonics: make(map[idType]idType),
		using:     newUsingStack(),
		conditional: newConditionalState(),
	}
}

// Intern interns name into this Ctx's identifier pool.
func (c *Ctx) Intern(name string) idType {
	return c.pool.Intern(name)
}

// Name returns the display spelling of id.
func (c *Ctx) Name(id idType) string {
	return c.pool.Name(id)
}

// Pool exposes the identifier pool, e.g. for handing to a nested analyzer
// invocation via spec §6's ids_init option.
func (c *Ctx) Pool() *ids.Pool {
	return c.pool
}

// EndReached reports whether an END statement has already been processed.
func (c *Ctx) EndReached() bool {
	return c.ended
}

// MarkEndReached records that an END statement has been processed.
func (c *Ctx) MarkEndReached() {
	c.ended = true
}

// Metrics returns the running metrics counters (spec §6 "metrics()").
func (c *Ctx) Metrics() *Metrics {
	return &c.metrics
}

// Close releases resources held by the context. Statements and symbols are
// arena-owned by Ctx and die with it, per spec §9's "arena-and-index"
// design note.
func (c *Ctx) Close() {
	c.sections = nil
	c.symbols = nil
	c.mnemonics = nil
}
