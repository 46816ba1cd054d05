package ctx

// Metrics are the running counters spec §6's metrics() output exposes.
type Metrics struct {
	Lines            int64
	Statements       int64
	Reparsed         int64
	DefinedSymbols   int64
	MacrosDefined    int64
	CopyExpansions   int64
	LookaheadExcursions int64
	LiteralsFlushed  int64
	MaxNesting       int
}

// AddLines accounts for logical lines consumed from a statement provider.
func (c *Ctx) AddLines(n int64) {
	c.metrics.Lines += n
}

// AddStatement accounts for one statement having been processed.
func (c *Ctx) AddStatement() {
	c.metrics.Statements++
}

// AddReparsed accounts for one statement having been reparsed under a
// different processing status (spec §4.4's cache-by-(statement,status)
// miss).
func (c *Ctx) AddReparsed() {
	c.metrics.Reparsed++
}

// AddLookaheadExcursion accounts for one lookahead excursion having run.
func (c *Ctx) AddLookaheadExcursion() {
	c.metrics.LookaheadExcursions++
}
