package semtok

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/hlasm-tools/hlasmcore/internal/lexspan"
)

// Collector accumulates tokens as processors emit them for the statement
// they are currently handling, then sorts and encodes once analysis ends.
//
// Grounded on the teacher's tokenCollector in
// internal/analysis/semantic_tokens.go: a visitor-shaped struct holding a
// legend and a token slice with an Add method that clamps invalid
// positions, except here tokens arrive from processor calls instead of an
// AST walk (HLASM's statement stream has no single tree to visit).
type Collector struct {
	legend *Legend
	tokens []Token
	log    *logrus.Entry
}

// NewCollector creates a Collector bound to legend.
func NewCollector(legend *Legend, log *logrus.Entry) *Collector {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Collector{legend: legend, log: log}
}

// Add records one token of the given type at r's start, with length
// matching r's span. Zero-length or unknown-type tokens are dropped.
func (c *Collector) Add(r lexspan.Range, tokenType string, modifiers uint32) {
	length := r.End.Character - r.Start.Character
	if r.End.Line != r.Start.Line || length == 0 {
		return
	}

	idx := c.legend.TypeIndex(tokenType)
	if idx < 0 {
		c.log.WithField("tokenType", tokenType).Warn("semtok: unknown token type")
		return
	}

	c.tokens = append(c.tokens, Token{
		Line:      r.Start.Line,
		StartChar: r.Start.Character,
		Length:    length,
		TokenType: uint32(idx),
		Modifiers: modifiers,
	})
}

// Finish sorts the collected tokens by position and returns them. The
// Collector must not be reused after Finish.
func (c *Collector) Finish() []Token {
	sort.Slice(c.tokens, func(i, j int) bool {
		if c.tokens[i].Line != c.tokens[j].Line {
			return c.tokens[i].Line < c.tokens[j].Line
		}

		return c.tokens[i].StartChar < c.tokens[j].StartChar
	})

	return c.tokens
}
