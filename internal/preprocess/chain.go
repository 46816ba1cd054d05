package preprocess

import (
	"github.com/hlasm-tools/hlasmcore/internal/library"
	"github.com/hlasm-tools/hlasmcore/internal/task"
)

// Kind enumerates spec §6's preprocessor_args values.
type Kind int

const (
	KindDB2 Kind = iota
	KindCICS
	KindEndevor
)

// Preprocessor is spec §4.3's contract: consume a Document, produce a
// Document, possibly suspending at library-fetch points along the way.
// GenerateReplacement runs on the caller's task body goroutine and must
// only suspend through the Handle it is given.
type Preprocessor interface {
	Name() string
	GenerateReplacement(h *task.Handle, provider library.Provider, doc *Document) *Document
	TakeStatements() []SyntheticStatement
	ViewIncludedMembers() []string
}

// Chain composes zero or more Preprocessor stages in order: the output of
// stage i is the input of stage i+1, and diagnostics accumulate in order.
type Chain struct {
	Stages []Preprocessor
}

// NewChain builds a Chain from spec §6's preprocessor_args enum, in the
// order given.
func NewChain(kinds ...Kind) *Chain {
	c := &Chain{}

	for _, k := range kinds {
		switch k {
		case KindDB2:
			c.Stages = append(c.Stages, NewDB2())
		case KindCICS:
			c.Stages = append(c.Stages, NewCICS())
		case KindEndevor:
			c.Stages = append(c.Stages, NewEndevor())
		}
	}

	return c
}

// Run drives every stage to completion on the calling task body, via h.
// It is the shape used when the chain is embedded inside a larger task
// (the analyzer's own), rather than driven standalone.
func (c *Chain) Run(h *task.Handle, provider library.Provider, doc *Document) *Document {
	current := doc

	for _, stage := range c.Stages {
		current = stage.GenerateReplacement(h, provider, current)
	}

	return current
}

// RunTask wraps Run in its own Task, for standalone use, matching spec
// §4.3's literal "generate_replacement(document) -> Task<document>"
// contract at the chain level.
func (c *Chain) RunTask(provider library.Provider, doc *Document) *task.Task[*Document] {
	return task.Run(func(h *task.Handle) (*Document, error) {
		return c.Run(h, provider, doc), nil
	})
}

// Statements aggregates every stage's TakeStatements, in chain order.
func (c *Chain) Statements() []SyntheticStatement {
	var out []SyntheticStatement

	for _, stage := range c.Stages {
		out = append(out, stage.TakeStatements()...)
	}

	return out
}

// IncludedMembers aggregates every stage's ViewIncludedMembers, in chain
// order.
func (c *Chain) IncludedMembers() []string {
	var out []string

	for _, stage := range c.Stages {
		out = append(out, stage.ViewIncludedMembers()...)
	}

	return out
}
