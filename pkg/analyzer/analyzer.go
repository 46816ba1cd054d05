// Package analyzer implements spec §6's external interface: one entry
// point, Analyze(text, opts), that drives the whole pipeline (preprocessor
// chain, statement providers, the processing manager and its four
// processors, the dependency solver's closing pass) and returns a Result
// bundling diagnostics, semantic tokens, the symbol index, metrics and any
// virtual-file handles produced along the way.
//
// Plays the role of the teacher's internal/lsp request handlers plus
// internal/server wiring, narrowed to the one operation this module
// contracts for; the JSON-RPC transport those handlers normally sit
// behind stays out of scope.
package analyzer

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/hlasm-tools/hlasmcore/internal/ctx"
	"github.com/hlasm-tools/hlasmcore/internal/deps"
	"github.com/hlasm-tools/hlasmcore/internal/diag"
	"github.com/hlasm-tools/hlasmcore/internal/ids"
	"github.com/hlasm-tools/hlasmcore/internal/library"
	"github.com/hlasm-tools/hlasmcore/internal/lspindex"
	"github.com/hlasm-tools/hlasmcore/internal/preprocess"
	"github.com/hlasm-tools/hlasmcore/internal/processor"
	"github.com/hlasm-tools/hlasmcore/internal/procmgr"
	"github.com/hlasm-tools/hlasmcore/internal/reslocation"
	"github.com/hlasm-tools/hlasmcore/internal/semtok"
	"github.com/hlasm-tools/hlasmcore/internal/stmtprovider"
	"github.com/hlasm-tools/hlasmcore/internal/task"
)

// ErrInvalidOptions reports a broken construction invariant on Options
// (spec §6's "no option key appears twice" / mutual-exclusion rule). This
// is a host-level failure, never a diagnostic: nothing about the source
// text is at fault.
var ErrInvalidOptions = errors.New("analyzer: invalid options")

// Options is spec §6's enumerated option set, mirroring the teacher's
// server.Config: a plain struct, defaulted by NewOptions and only ever
// adjusted afterward through Update.
type Options struct {
	// FileLocation identifies the document being analyzed, for diagnostics
	// and the symbol index.
	FileLocation reslocation.Location

	// LibraryProvider supplies COPY/macro members and reentrant macro
	// analysis. Defaults to library.None (no library access) if left nil.
	LibraryProvider library.Provider

	// AsmOption, when true, builds a fresh Ctx. Mutually exclusive with
	// AnalyzingContext.
	AsmOption bool

	// AnalyzingContext continues a prior analysis's Ctx instead of
	// building a fresh one (e.g. a reentrant library.Provider.ParseLibrary
	// call analyzing a macro member into the calling analysis's symbol
	// table). Mutually exclusive with AsmOption, IdsInit and
	// PreprocessorArgs.
	AnalyzingContext *ctx.Ctx

	// LibraryData tags why this analysis is running, for a host that
	// dispatches on it (e.g. a ParseLibrary implementation distinguishing
	// a macro-definition reentry from a top-level call).
	LibraryData library.Data

	// CollectHighlightingInfo, when true, retains the semantic tokens
	// Result.SemanticTokens() exposes. When false, tokens are still
	// collected internally (internal/processor always calls Env.Tokens)
	// but discarded rather than returned, since sorting and encoding a
	// token stream nobody asked for is wasted work only at the margins.
	CollectHighlightingInfo bool

	// ParsingOpenCode marks this as a top-level open-code analysis rather
	// than a reentrant macro-member parse; currently informational only,
	// carried for a host that branches on it.
	ParsingOpenCode bool

	// IdsInit supplies an existing identifier pool to intern into, for a
	// reentrant analysis that must share identifiers with its caller.
	// Mutually exclusive with AnalyzingContext (which already carries its
	// own pool).
	IdsInit *ids.Pool

	// PreprocessorArgs names the preprocessor chain stages to run, in
	// order, before statement processing begins. Mutually exclusive with
	// AnalyzingContext.
	PreprocessorArgs []preprocess.Kind

	// VFMonitor, if set, is notified whenever a preprocessor stage
	// synthesizes a virtual file.
	VFMonitor library.VirtualFileMonitor

	// MaxDiagnostics caps the diagnostic sink (0 means unlimited),
	// mirroring the teacher's Config.MaxProblems.
	MaxDiagnostics int

	// Log receives structured log output for this analysis. Defaults to
	// the standard logrus logger if left nil.
	Log *logrus.Entry
}

// NewOptions returns an Options with the teacher's Config-style defaults:
// a fresh context, unlimited library access denied, a sane diagnostic cap.
func NewOptions() *Options {
	return &Options{
		AsmOption:      true,
		MaxDiagnostics: 1000,
	}
}

// Update applies fn under the teacher's UpdateConfig mutator pattern, then
// validates the construction invariant, so callers cannot observe an
// Options value that momentarily violates it.
func (o *Options) Update(fn func(*Options)) error {
	fn(o)
	return o.validate()
}

func (o *Options) validate() error {
	if o.AnalyzingContext != nil && (o.AsmOption || o.IdsInit != nil || len(o.PreprocessorArgs) > 0) {
		return ErrInvalidOptions
	}

	if o.AnalyzingContext == nil && !o.AsmOption {
		return ErrInvalidOptions
	}

	return nil
}

// Result bundles spec §6's analyzer outputs. Every accessor is a cheap
// read of state already finalized by the time Analyze's Task completes.
type Result struct {
	ctx       *ctx.Ctx
	sink      *diag.Sink
	fade      *diag.FadeSink
	tokens    []semtok.Token
	index     *lspindex.Index
	vfHandles []library.VFHandle
}

// Diagnostics returns every diagnostic collected during this analysis, in
// emission order, up to Options.MaxDiagnostics.
func (r *Result) Diagnostics() []diag.Diagnostic {
	return r.sink.All()
}

// FadeMessages returns diagnostics the host should render "faded" rather
// than as ordinary problems (spec §6's fade_messages sink). No processor
// in this module currently classifies a diagnostic this way, so this is
// presently always empty; the sink exists for a host that wants to
// recategorize some of Diagnostics() itself.
func (r *Result) FadeMessages() []diag.Diagnostic {
	return r.fade.All()
}

// SemanticTokens returns the one-shot token list (spec §6's
// semantic_tokens()), empty unless Options.CollectHighlightingInfo was set.
func (r *Result) SemanticTokens() []semtok.Token {
	return r.tokens
}

// Metrics returns the running counters spec §6's metrics() exposes.
func (r *Result) Metrics() ctx.Metrics {
	return *r.ctx.Metrics()
}

// VFHandles returns the virtual-file handles produced during this
// analysis (spec §6's vf_handles(), "transferred on retrieval": calling
// this again after the Task completes still returns the same handles,
// since nothing else in this module consumes them).
func (r *Result) VFHandles() []library.VFHandle {
	return r.vfHandles
}

// Index exposes the symbol definition/reference index built for this
// document, for a host wiring go-to-definition/find-references on top.
func (r *Result) Index() *lspindex.Index {
	return r.index
}

// Ctx exposes the finished Ctx itself, for spec §6's analyzing_context
// option: a caller that wants to continue this analysis (e.g. a
// library.Provider.ParseLibrary reentrant call feeding a macro member's
// definitions back into the same symbol table) passes this back in as the
// next call's Options.AnalyzingContext.
func (r *Result) Ctx() *ctx.Ctx {
	return r.ctx
}

// Analyze runs spec §4's whole pipeline over text under opts, as a
// suspendable Task: the body suspends on Await calls made deep inside
// internal/procmgr (a COPY library fetch) or internal/preprocess (a DB2
// INCLUDE), and resumes exactly there once the driver completes the
// relevant Future.
func Analyze(text string, opts Options) *task.Task[*Result] {
	return task.Run(func(h *task.Handle) (*Result, error) {
		if err := opts.validate(); err != nil {
			return nil, err
		}

		log := opts.Log
		if log == nil {
			log = logrus.NewEntry(logrus.StandardLogger())
		}

		lib := opts.LibraryProvider
		if lib == nil {
			lib = library.None
		}

		var c *ctx.Ctx
		if opts.AnalyzingContext != nil {
			c = opts.AnalyzingContext
		} else {
			c = ctx.New(opts.IdsInit, log)
		}

		sink := diag.NewSink(opts.MaxDiagnostics)
		fade := diag.NewFadeSink()
		solver := deps.NewSolver()
		legend := semtok.NewLegend()
		tokens := semtok.NewCollector(legend, log)
		index := lspindex.New()

		doc := preprocess.NewDocument(text, opts.FileLocation)

		var vfHandles []library.VFHandle

		if len(opts.PreprocessorArgs) > 0 {
			chain := preprocess.NewChain(opts.PreprocessorArgs...)
			doc = chain.Run(h, lib, doc)

			for _, d := range doc.Diagnostics {
				sink.Add(d)
			}

			notifyVirtualFiles(opts.VFMonitor, chain, opts.FileLocation)

			for _, member := range chain.IncludedMembers() {
				vfHandles = append(vfHandles, library.VFHandle{Id: member, Location: opts.FileLocation})
			}
		}

		openCode := stmtprovider.NewOpenCode(c.Pool(), doc)

		env := &processor.Env{
			Ctx:    c,
			Solver: solver,
			Sink:   sink,
			Tokens: tokens,
			Index:  index,
			Pool:   c.Pool(),
		}

		mgr := procmgr.New(env, openCode, lib)
		mgr.Run(h)

		var out []semtok.Token
		if opts.CollectHighlightingInfo {
			out = tokens.Finish()
		}

		return &Result{
			ctx:       c,
			sink:      sink,
			fade:      fade,
			tokens:    out,
			index:     index,
			vfHandles: vfHandles,
		}, nil
	})
}

// notifyVirtualFiles reports every member a preprocessor stage included
// during this analysis (spec §6's VirtualFileMonitor), using the included
// member names as VFHandle ids since internal/preprocess does not mint a
// separate handle identity of its own.
func notifyVirtualFiles(mon library.VirtualFileMonitor, chain *preprocess.Chain, loc reslocation.Location) {
	if mon == nil {
		return
	}

	for _, member := range chain.IncludedMembers() {
		mon.Notify(library.VFHandle{Id: member, Location: loc})
	}
}
