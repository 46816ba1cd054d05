package processor

import (
	"github.com/hlasm-tools/hlasmcore/internal/ctx"
	"github.com/hlasm-tools/hlasmcore/internal/hlparser"
	"github.com/hlasm-tools/hlasmcore/internal/ids"
	"github.com/hlasm-tools/hlasmcore/internal/reslocation"
	"github.com/hlasm-tools/hlasmcore/internal/stmt"
)

// Lookahead implements spec §4.5's Lookahead(target) excursion: when the
// ordinary processor needs an attribute of a symbol not yet defined, it
// scans the statements still ahead of the current position (via the
// active provider's Peek) for the statement that defines target, runs
// that one statement's ordinary-assembly side effects early through
// Ordinary itself, and reports whether target became defined.
//
// Grounded on the teacher's internal/workspace/indexer.go two-pass
// approach (index declarations before resolving references), adapted
// from "scan the whole file up front" to "scan forward from here,
// on demand, only as far as the target."
func Lookahead(e *Env, ahead []stmt.Statement, target ids.Id, loc reslocation.Location) (found bool) {
	e.Ctx.AddLookaheadExcursion()

	e.Ctx.PushFrame(ctx.Frame{Kind: ctx.FrameLookahead})
	defer e.Ctx.PopFrame()

	for i := range ahead {
		s := ahead[i]

		if s.Label != target {
			continue
		}

		// Peek's statements come back deferred (parsed under FormUnknown,
		// since the provider does not know each instruction's real form
		// ahead of time); reparse under assembler form so EQU/DC/DS/OPSYN
		// gets real operands before running its ordinary-assembly effects.
		reparsed, _ := hlparser.Reparse(e.Pool, s, stmt.ProcessingStatus{Form: stmt.FormAssembler, Kind: stmt.KindLookahead})

		Ordinary(e, &reparsed, loc)

		_, ok := e.Ctx.GetSymbol(target)

		return ok
	}

	return false
}
