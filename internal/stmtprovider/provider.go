// Package stmtprovider implements spec §4.4's statement providers: lazy,
// pull-style sources of statements for the processing manager. The three
// concrete providers (OpenCode, Macro, Copy) all implement the same
// GetNext contract; each keeps its own reparse cache keyed by processing
// status, per spec §3's "cached per (statement, processing-status) key
// once reparsed" lifecycle.
//
// Grounded on the teacher's internal/analysis/parse.go pure-function shape
// for the actual parse calls, and on spec §4.4 for the provider contract
// itself (there is no teacher analog for "pull the next statement from a
// replaying source" — DWScript's compiler reads its whole file at once).
package stmtprovider

import (
	"github.com/hlasm-tools/hlasmcore/internal/stmt"
)

// Provider is spec §4.4's pull interface: ask for the next statement,
// reparsing under hint if this provider has already produced the
// statement at its current position under a different processing status.
type Provider interface {
	// Name identifies the provider for diagnostics/metrics (e.g. the macro
	// or copy member name; "opencode" for the root provider).
	Name() string

	// GetNext returns the next statement, or ok=false once this provider's
	// source is exhausted. hint governs how a not-yet-seen-at-this-status
	// statement is parsed; a statement already parsed at this exact status
	// is served from the provider's own cache instead.
	GetNext(hint stmt.ProcessingStatus) (*stmt.Statement, bool)

	// Peek returns the statements this provider has not yet produced via
	// GetNext, parsed under FormUnknown (deferred), without consuming them
	// or affecting the real pull position. Used exclusively by the
	// lookahead processor (spec §4.6) to scan ahead for a symbol's
	// definition without side-effecting the real stream.
	Peek() []stmt.Statement

	// StatementIndex returns the statement-sequence position GetNext will
	// serve next: the position a sequence symbol (spec §3) observed at the
	// most recent GetNext call should be registered under.
	StatementIndex() int

	// Seek rewinds or advances the provider so the next GetNext call
	// serves the statement at index, for AGO/AIF's unconditional and
	// conditional sequence-symbol jumps (spec §4.6).
	Seek(index int) bool
}

// reparseCache memoizes Parse/Reparse results keyed by (position, status),
// per spec §3's statement cache invariant.
type reparseCache struct {
	entries map[stmt.CacheKey]*stmt.Statement
}

func newReparseCache() *reparseCache {
	return &reparseCache{entries: make(map[stmt.CacheKey]*stmt.Statement)}
}

func (c *reparseCache) get(index int, status stmt.ProcessingStatus) (*stmt.Statement, bool) {
	s, ok := c.entries[stmt.CacheKey{StatementIndex: index, Status: status}]
	return s, ok
}

func (c *reparseCache) put(index int, status stmt.ProcessingStatus, s *stmt.Statement) {
	c.entries[stmt.CacheKey{StatementIndex: index, Status: status}] = s
}
