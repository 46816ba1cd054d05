// Package deps implements the postponed-statement dependency solver of
// spec §4.7: symbols whose value depends on other symbols, spaces whose
// length is not yet known, and location-counter expressions are wrapped in
// a Node and retried on every fixed-point pass until they resolve or the
// pass makes no further progress.
//
// Grounded on spec §4.7's "edge list" description, simplified from an
// explicit index-valued graph (spec §9's "arena-and-index" note, aimed at
// languages without a GC) to a slice of retry closures: each Node already
// knows how to attempt its own resolution against internal/ctx.Ctx and
// internal/stmt's expression evaluator, so the solver itself only needs to
// know "did this node finish this pass" to detect a cycle. This keeps
// internal/ctx and internal/stmt as the only packages that know about
// expression evaluation; this package is purely a scheduler.
package deps

import (
	"github.com/hlasm-tools/hlasmcore/internal/ctx"
	"github.com/hlasm-tools/hlasmcore/internal/diag"
	"github.com/hlasm-tools/hlasmcore/internal/lexspan"
	"github.com/hlasm-tools/hlasmcore/internal/reslocation"
)

// AttemptFunc attempts to resolve one postponed dependency against the
// current state of c. done is true once the node has committed its result
// (or given up permanently, e.g. on a diagnosed error that isn't a cycle);
// a false done with no diagnostics means "still waiting", and the node is
// retried on the solver's next pass.
type AttemptFunc func(c *ctx.Ctx) (done bool, diags []diag.Diagnostic)

// Node is spec §3's "Dependency node": a postponed statement plus the
// evaluation context it needs, represented here as a closure over that
// context rather than as separate (postponed-statement, evaluation-context)
// fields, since Go closures capture exactly that context for free.
type Node struct {
	Attempt     AttemptFunc
	Range       lexspan.Range
	Location    reslocation.Location
	Description string // for the E033 cycle diagnostic's message
}

// Solver holds the set of not-yet-resolved nodes for one analysis. Spec
// §3's symbols_pending/spaces_pending maps are implicit here: a Node that
// defines a symbol or resolves a space simply stops being retried once its
// Attempt reports done, and the fixed point pass itself provides "on each
// external fact, the solver scans dependents" by retrying every remaining
// node every pass.
type Solver struct {
	nodes []Node
}

// NewSolver creates an empty Solver.
func NewSolver() *Solver {
	return &Solver{}
}

// Add registers a postponed dependency.
func (s *Solver) Add(n Node) {
	s.nodes = append(s.nodes, n)
}

// Pending reports how many dependencies remain unresolved.
func (s *Solver) Pending() int {
	return len(s.nodes)
}

// Revalidate retries every pending node against c, repeatedly, until a full
// pass resolves nothing further, without treating whatever remains pending
// as a cycle. Used when something other than ordinary forward progress
// through the statement stream may have unstuck a node mid-analysis — a
// Lookahead excursion (spec §9 Open Question 2) runs statements out of
// order and can define a symbol a pending node was waiting on, so that node
// deserves another attempt right away rather than waiting for the closing
// RunToFixedPoint; anything still pending afterward is not yet a cycle,
// since the source may simply not have reached its definition yet.
func (s *Solver) Revalidate(c *ctx.Ctx) []diag.Diagnostic {
	var diags []diag.Diagnostic

	for {
		progressed := false
		remaining := s.nodes[:0]

		for _, n := range s.nodes {
			done, d := n.Attempt(c)
			diags = append(diags, d...)

			if done {
				progressed = true
				continue
			}

			remaining = append(remaining, n)
		}

		s.nodes = remaining

		if !progressed || len(s.nodes) == 0 {
			break
		}
	}

	return diags
}

// RunToFixedPoint is Revalidate's closing counterpart: it runs the same
// passes, then treats whatever is still pending as a genuine cycle. Per
// spec §4.7, this runs once, at the end of analysis (on stream exhaustion
// or END); it never silently drops a node: whatever remains unresolved
// after the fixed point is reported as an E033 cycle and discarded,
// satisfying spec §8's "no unresolved node is silently dropped" invariant.
func (s *Solver) RunToFixedPoint(c *ctx.Ctx) []diag.Diagnostic {
	diags := s.Revalidate(c)

	if len(s.nodes) > 0 {
		for _, n := range s.nodes {
			msg := n.Description
			if msg == "" {
				msg = "unresolved dependency cycle"
			}

			diags = append(diags, diag.Diagnostic{
				Code:     diag.CodeE033,
				Severity: diag.SeverityError,
				Range:    n.Range,
				Location: n.Location,
				Message:  msg,
			})
		}

		s.nodes = nil
	}

	return diags
}
