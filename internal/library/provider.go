// Package library defines the external collaborators spec §6 consumes:
// LibraryProvider (renamed Provider here, since the package name already
// carries "library") and VirtualFileMonitor. Neither is implemented by
// the core itself — filesystem and network I/O are explicitly out of
// scope per spec §1 — but this package also ships MapProvider, an
// in-memory reference implementation for tests and the demonstration
// CLI.
package library

import (
	"errors"

	"github.com/hlasm-tools/hlasmcore/internal/ctx"
	"github.com/hlasm-tools/hlasmcore/internal/ids"
	"github.com/hlasm-tools/hlasmcore/internal/reslocation"
	"github.com/hlasm-tools/hlasmcore/internal/task"
)

// ErrNotFound is returned (wrapped in a completed Future, never panicked)
// when a requested library member does not exist.
var ErrNotFound = errors.New("library: member not found")

// ProcessingKind classifies why a library member is being fetched, the
// first half of spec §6's "library_data = (processing_kind, member_id)".
type ProcessingKind int

const (
	ProcessingKindCopy ProcessingKind = iota
	ProcessingKindMacroDef
	ProcessingKindLookahead
)

// Data is spec §6's library_data: which kind of fetch this is, and which
// member id it concerns.
type Data struct {
	Kind     ProcessingKind
	MemberId ids.Id
}

// Result is the (text, location) pair spec §6's get_library resolves to.
type Result struct {
	Text     string
	Location reslocation.Location
}

// Provider is spec §6's LibraryProvider: the host-supplied source of
// library members (COPY books, macro definitions). It is borrowed across
// a Task's suspensions, never owned, per spec §5.
type Provider interface {
	// HasLibrary is a synchronous, best-effort existence check.
	HasLibrary(name string) bool

	// GetLibrary fetches a member's text, suspending the caller if the
	// fetch is not already resolved.
	GetLibrary(name string) *task.Future[*Result]

	// ParseLibrary reentrantly analyzes a macro member's body into ctx's
	// macro table, for providers that need a full nested analysis pass
	// rather than raw text.
	ParseLibrary(name string, c *ctx.Ctx, data Data) *task.Future[bool]
}

// VFHandle identifies a virtual file synthesized by a preprocessor (e.g.
// a DB2 precompiler's EXEC SQL rewrite), per spec §6's vf_handles().
type VFHandle struct {
	Id       string
	Location reslocation.Location
}

// VirtualFileMonitor is notified whenever a preprocessor creates a
// virtual file. It is optional and, like Provider, borrowed rather than
// owned.
type VirtualFileMonitor interface {
	Notify(handle VFHandle)
}

type emptyProvider struct{}

func (emptyProvider) HasLibrary(name string) bool { return false }

func (emptyProvider) GetLibrary(name string) *task.Future[*Result] {
	return task.Completed[*Result](nil, ErrNotFound)
}

func (emptyProvider) ParseLibrary(name string, c *ctx.Ctx, data Data) *task.Future[bool] {
	return task.Completed(false, ErrNotFound)
}

// None is the process-wide empty Provider sentinel of spec §9's "global
// mutable state" design note: a process-wide constant, never mutated,
// used whenever an analysis has no real library access.
var None Provider = emptyProvider{}
