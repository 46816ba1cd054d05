// Package processor implements spec §4.6's four processors — ordinary,
// macro-definition, lookahead, and conditional-assembly — each a
// self-contained unit that mutates internal/ctx.Ctx and internal/diag,
// internal/semtok and internal/lspindex as it handles one statement at a
// time. The processing manager (internal/procmgr) drives them and reacts to
// the Signal each Process call returns.
package processor

import (
	"github.com/hlasm-tools/hlasmcore/internal/ids"
	"github.com/hlasm-tools/hlasmcore/internal/lexspan"
	"github.com/hlasm-tools/hlasmcore/internal/stmt"
)

// SignalKind tells the processing manager what state transition (spec
// §4.5's table) a processor's handling of one statement requires.
type SignalKind int

const (
	// SignalNone: the statement was fully handled; stay in the current
	// state and pull the next one.
	SignalNone SignalKind = iota
	// SignalEnterMacroDef: a MACRO directive was seen; push a macro-def
	// frame (Ordinary -> MacroDef(1), or MacroDef(d) -> MacroDef(d+1)).
	// MacroDef(d)'s own MACRO/MEND counting and the finished definition's
	// hand-off to Ctx.DefineMacro happen inside internal/procmgr's DefState
	// feed loop directly, never through another Process call, so there is
	// no matching SignalExitMacroDef: MacroDef collection mode intercepts
	// every statement before it would reach Ordinary again.
	SignalEnterMacroDef
	// SignalCopyFetch: a COPY member is not yet cached; the manager must
	// suspend on library.Provider.GetLibrary(MemberId) and resume once it
	// completes.
	SignalCopyFetch
	// SignalCopyReady: a COPY member was already cached; the manager
	// pushes a Copy provider for MemberId immediately.
	SignalCopyReady
	// SignalCallMacro: the statement invoked a known macro; the manager
	// binds CallOperands to the macro's parameter list and pushes a Macro
	// provider.
	SignalCallMacro
	// SignalLookahead: an attribute reference could not be resolved yet;
	// the manager runs a lookahead excursion for Target/Attr before
	// resuming Ordinary.
	SignalLookahead
	// SignalEnd: an END statement was processed; analysis should wind
	// down after the dependency solver's closing pass.
	SignalEnd
	// SignalSeqJump: AGO or a taken AIF branch needs the manager to
	// redirect the active provider to sequence symbol Target's recorded
	// statement index, looked up in the current scope's sequence table.
	SignalSeqJump
	// SignalICTL: the manager must apply ICTLBegin/ICTLEnd/ICTLContinue to
	// the open-code provider's column settings.
	SignalICTL
	// SignalAInsert: the manager must push AInsertLines onto the open-code
	// provider's front (default) or back queue, per AInsertBack.
	SignalAInsert
)

// Signal is the outcome of one Process call, carrying whatever the manager
// needs to act on the requested transition.
type Signal struct {
	Kind SignalKind

	MemberId ids.Id
	Target   ids.Id
	Attr     stmt.AttrKind

	CallOperands []stmt.Operand
	CallRange    lexspan.Range

	ICTLBegin, ICTLEnd, ICTLContinue int

	AInsertLines []string
	AInsertBack  bool
}
