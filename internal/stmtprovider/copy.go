package stmtprovider

import (
	"github.com/hlasm-tools/hlasmcore/internal/hlparser"
	"github.com/hlasm-tools/hlasmcore/internal/ids"
	"github.com/hlasm-tools/hlasmcore/internal/stmt"
)

// Copy is spec §4.4's copy provider: it replays a cached copy member's
// logical lines verbatim, each re-parsed under whatever processing status
// the manager supplies (the member's own content has no opinion on
// machine/assembler/macro form until the manager asks for it).
type Copy struct {
	pool   *ids.Pool
	name   ids.Id
	lines  []stmt.LogicalLine
	pos    int
	cache  *reparseCache
}

// NewCopy creates a Copy provider replaying lines (a cached copy member's
// immutable logical-line sequence).
func NewCopy(pool *ids.Pool, name ids.Id, lines []stmt.LogicalLine) *Copy {
	return &Copy{pool: pool, name: name, lines: lines, cache: newReparseCache()}
}

func (c *Copy) Name() string { return c.pool.Name(c.name) }

func (c *Copy) GetNext(hint stmt.ProcessingStatus) (*stmt.Statement, bool) {
	if c.pos >= len(c.lines) {
		return nil, false
	}

	index := c.pos
	line := c.lines[c.pos]
	c.pos++

	if cached, ok := c.cache.get(index, hint); ok {
		return cached, true
	}

	s, _ := hlparser.Parse(c.pool, line, hint)
	c.cache.put(index, hint, &s)

	return &s, true
}

func (c *Copy) StatementIndex() int { return c.pos }

func (c *Copy) Seek(index int) bool {
	if index < 0 || index > len(c.lines) {
		return false
	}

	c.pos = index

	return true
}

func (c *Copy) Peek() []stmt.Statement {
	var out []stmt.Statement

	for i := c.pos; i < len(c.lines); i++ {
		s, _ := hlparser.Parse(c.pool, c.lines[i], stmt.ProcessingStatus{Form: stmt.FormUnknown, Kind: stmt.KindLookahead})
		out = append(out, s)
	}

	return out
}
