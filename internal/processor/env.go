package processor

import (
	"github.com/hlasm-tools/hlasmcore/internal/ctx"
	"github.com/hlasm-tools/hlasmcore/internal/deps"
	"github.com/hlasm-tools/hlasmcore/internal/diag"
	"github.com/hlasm-tools/hlasmcore/internal/ids"
	"github.com/hlasm-tools/hlasmcore/internal/lspindex"
	"github.com/hlasm-tools/hlasmcore/internal/semtok"
)

// Env bundles the collaborators every processor call needs, so Process
// functions take one argument instead of a growing parameter list as the
// directive set grows. Grounded on the teacher's internal/server request
// handlers, each of which closes over one *Server rather than threading
// five separate fields through every call.
type Env struct {
	Ctx    *ctx.Ctx
	Solver *deps.Solver
	Sink   *diag.Sink
	Tokens *semtok.Collector
	Index  *lspindex.Index
	Pool   *ids.Pool

	// Lookahead, when set, attempts to resolve target by scanning forward
	// through the statements the active provider has not yet served and
	// eagerly running the defining statement's ordinary-assembly side
	// effects (spec §4.5's Lookahead(target) state), returning whether
	// target became defined. The processing manager installs this before
	// driving a statement; conditional-assembly attribute references
	// (internal/processor/condasm_eval.go's T'/L'/S'/I') call it inline,
	// since a branch decision has to be made now — unlike an
	// ordinary-assembly forward value reference, there is no later
	// fixed-point pass that could revisit it.
	Lookahead func(target ids.Id) bool
}

func (e *Env) emit(d diag.Diagnostic) {
	e.Sink.Add(d)
}

func (e *Env) emitAll(ds []diag.Diagnostic) {
	for _, d := range ds {
		e.Sink.Add(d)
	}
}
