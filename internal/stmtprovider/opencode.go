package stmtprovider

import (
	"strings"

	"github.com/hlasm-tools/hlasmcore/internal/hlparser"
	"github.com/hlasm-tools/hlasmcore/internal/ids"
	"github.com/hlasm-tools/hlasmcore/internal/lexspan"
	"github.com/hlasm-tools/hlasmcore/internal/preprocess"
	"github.com/hlasm-tools/hlasmcore/internal/reslocation"
	"github.com/hlasm-tools/hlasmcore/internal/stmt"
)

// defaultBeginCol, defaultEndCol and defaultContinueCol are HLASM's classic
// fixed-format columns (1-based 1/72/16, stored here zero-based), in
// effect until an ICTL statement changes them.
const (
	defaultBeginCol    = 0
	defaultEndCol      = 71
	defaultContinueCol = 15
)

// OpenCode is spec §4.4's open-code provider: it reads logical lines out of
// the preprocessed Document, merges continuations according to the current
// ICTL columns, invokes the parser, and owns the AINSERT front/back side
// queues (spec §4.6 "AINSERT").
type OpenCode struct {
	pool  *ids.Pool
	lines []preprocess.Line
	pos   int

	beginCol, endCol, contCol int

	front []stmt.LogicalLine // AINSERT ,FRONT: consumed next, most-recently-inserted first
	back  []stmt.LogicalLine // AINSERT ,BACK: consumed once the main stream is exhausted, FIFO

	cache     *reparseCache
	nextIndex int

	// statementLineStart[i] records the physical-line offset (o.pos) that
	// was in effect just before statement i was read off the main stream,
	// so Seek can rewind pos alongside nextIndex for a backward AGO/AIF
	// jump. Statements served from the front/back AINSERT queues record
	// their pos unchanged, since those queues are consumed and cannot be
	// replayed by rewinding pos; seeking back onto one is not supported.
	statementLineStart []int
}

// NewOpenCode creates an OpenCode provider over doc's lines.
func NewOpenCode(pool *ids.Pool, doc *preprocess.Document) *OpenCode {
	return &OpenCode{
		pool:     pool,
		lines:    doc.Lines,
		beginCol: defaultBeginCol,
		endCol:   defaultEndCol,
		contCol:  defaultContinueCol,
		cache:    newReparseCache(),
	}
}

func (o *OpenCode) Name() string { return "opencode" }

// SetColumns applies an ICTL directive's (begin, end, continue) columns
// (spec §4.4 "honors ICTL column declarations"), 1-based as HLASM writes
// them.
func (o *OpenCode) SetColumns(begin, end, continue_ int) {
	if begin > 0 {
		o.beginCol = begin - 1
	}

	if end > 0 {
		o.endCol = end - 1
	}

	if continue_ > 0 {
		o.contCol = continue_ - 1
	}
}

// InsertFront pushes a synthetic logical line to the front queue, served
// before anything else on the next GetNext call (spec §4.6 "AINSERT"
// front form).
func (o *OpenCode) InsertFront(line stmt.LogicalLine) {
	o.front = append(o.front, line)
}

// InsertBack appends a synthetic logical line to the back queue, served
// once the main document stream is exhausted (spec §4.6 "AINSERT" back
// form).
func (o *OpenCode) InsertBack(line stmt.LogicalLine) {
	o.back = append(o.back, line)
}

func (o *OpenCode) GetNext(hint stmt.ProcessingStatus) (*stmt.Statement, bool) {
	startPos := o.pos

	if n := len(o.front); n > 0 {
		line := o.front[n-1]
		o.front = o.front[:n-1]

		return o.parseOne(line, hint, startPos)
	}

	if line, ok := o.mergeNext(); ok {
		return o.parseOne(line, hint, startPos)
	}

	if n := len(o.back); n > 0 {
		line := o.back[0]
		o.back = o.back[1:]

		return o.parseOne(line, hint, startPos)
	}

	return nil, false
}

func (o *OpenCode) parseOne(line stmt.LogicalLine, hint stmt.ProcessingStatus, startPos int) (*stmt.Statement, bool) {
	index := o.nextIndex
	o.nextIndex++

	if index == len(o.statementLineStart) {
		o.statementLineStart = append(o.statementLineStart, startPos)
	}

	if cached, ok := o.cache.get(index, hint); ok {
		return cached, true
	}

	s, _ := hlparser.Parse(o.pool, line, hint)
	o.cache.put(index, hint, &s)

	return &s, true
}

// StatementIndex returns the logical-statement position GetNext will serve
// next (spec §4.6's sequence-symbol registration point).
func (o *OpenCode) StatementIndex() int { return o.nextIndex }

// Seek rewinds or advances the main stream so the next GetNext call serves
// statement index. Only positions already passed through GetNext at least
// once (and therefore recorded in statementLineStart) can be targeted; this
// covers every backward AGO/AIF jump, since a sequence symbol must already
// have been registered by a prior GetNext before anything can jump to it.
func (o *OpenCode) Seek(index int) bool {
	if index < 0 || index > len(o.statementLineStart) {
		return false
	}

	if index == len(o.statementLineStart) {
		// Seeking to the position right after the last recorded statement:
		// only valid if that is also where the stream currently sits (no
		// front/back queue content to skip over).
		if index != o.nextIndex {
			return false
		}

		return true
	}

	o.pos = o.statementLineStart[index]
	o.nextIndex = index
	o.front = nil

	return true
}

// Peek parses every not-yet-consumed physical line (main stream plus the
// back queue; the front queue is transient AINSERT content with no
// meaningful "ahead" position) under FormUnknown, for the lookahead
// processor.
func (o *OpenCode) Peek() []stmt.Statement {
	saved := o.pos
	defer func() { o.pos = saved }()

	var out []stmt.Statement

	for {
		line, ok := o.mergeNext()
		if !ok {
			break
		}

		s, _ := hlparser.Parse(o.pool, line, stmt.ProcessingStatus{Form: stmt.FormUnknown, Kind: stmt.KindLookahead})
		out = append(out, s)
	}

	for _, line := range o.back {
		s, _ := hlparser.Parse(o.pool, line, stmt.ProcessingStatus{Form: stmt.FormUnknown, Kind: stmt.KindLookahead})
		out = append(out, s)
	}

	return out
}

// mergeNext reads the next physical line(s) from the main stream, merging
// any continuation lines according to the current ICTL columns, and
// returns the resulting LogicalLine.
func (o *OpenCode) mergeNext() (stmt.LogicalLine, bool) {
	if o.pos >= len(o.lines) {
		return stmt.LogicalLine{}, false
	}

	first := o.lines[o.pos]
	o.pos++

	text := o.clip(first.Text)
	startLine := first.LineNumber
	origin := first.Origin

	var contRanges []lexspan.Range

	for o.isContinued(first.Text) && o.pos < len(o.lines) {
		cont := o.lines[o.pos]
		o.pos++

		contText := o.continuationText(cont.Text)
		contRanges = append(contRanges, lexspan.SingleLine(cont.LineNumber, uint32(o.contCol), contText))
		text = joinContinuation(text, contText)
		first = cont
	}

	return stmt.LogicalLine{
		Text:               text,
		Location:           origin,
		Range:              lexspan.SingleLine(startLine, uint32(o.beginCol), text),
		ContinuationRanges: contRanges,
	}, true
}

func (o *OpenCode) clip(text string) string {
	if o.endCol >= 0 && len(text) > o.endCol {
		text = text[:o.endCol]
	}

	if o.beginCol > 0 && len(text) > o.beginCol {
		text = text[o.beginCol:]
	}

	return text
}

func (o *OpenCode) isContinued(text string) bool {
	if o.endCol < 0 || o.endCol >= len(text) {
		return false
	}

	return text[o.endCol] != ' '
}

func (o *OpenCode) continuationText(text string) string {
	if o.contCol >= len(text) {
		return ""
	}

	return strings.TrimRight(o.clip(text[o.contCol:]), " \t")
}

// joinContinuation concatenates a continued statement's two halves with no
// inserted space: HLASM continuation resumes the operand field exactly
// where the source left off, not word-wrapped.
func joinContinuation(head, tail string) string {
	return strings.TrimRight(head, " \t") + strings.TrimLeft(tail, " \t")
}

// newLogicalLineFromText builds a one-line LogicalLine out of raw text, for
// callers (macro replay, AINSERT) that already have assembled text rather
// than physical source lines.
func newLogicalLineFromText(text string, line uint32, loc reslocation.Location) stmt.LogicalLine {
	return stmt.LogicalLine{
		Text:     text,
		Location: loc,
		Range:    lexspan.SingleLine(line, 0, text),
	}
}
