package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlasm-tools/hlasmcore/internal/library"
	"github.com/hlasm-tools/hlasmcore/internal/reslocation"
	"github.com/hlasm-tools/hlasmcore/internal/task"
)

func run(t *testing.T, text string, opts Options) *Result {
	t.Helper()

	tk := Analyze(text, opts)

	status := tk.Step()
	for status == task.StatusSuspended {
		status = tk.Resume()
	}

	result, err := tk.Result()
	require.NoError(t, err)

	return result
}

func TestAnalyzeDefinesSymbolsAndCollectsMetrics(t *testing.T) {
	src := "LBL      EQU   5\n" +
		"OTHER    EQU   LBL+1\n" +
		"         END\n"

	result := run(t, src, Options{
		FileLocation:            reslocation.New("test.hlasm"),
		AsmOption:               true,
		CollectHighlightingInfo: true,
	})

	require.Empty(t, result.Diagnostics())

	m := result.Metrics()
	assert.EqualValues(t, 2, m.DefinedSymbols)
	assert.NotZero(t, m.Statements)

	c := result.Ctx()
	sym, ok := c.GetSymbol(c.Intern("OTHER"))
	require.True(t, ok, "expected OTHER to resolve")
	assert.True(t, sym.Value.IsDefined())
	assert.EqualValues(t, 6, sym.Value.Absolute)
}

func TestAnalyzeForwardReferenceResolvesWithoutCycle(t *testing.T) {
	src := "FIRST    EQU   SECOND+1\n" +
		"SECOND   EQU   41\n" +
		"         END\n"

	result := run(t, src, Options{
		FileLocation: reslocation.New("test.hlasm"),
		AsmOption:    true,
	})

	require.Empty(t, result.Diagnostics(), "forward reference should resolve, not be flagged as a cycle")

	c := result.Ctx()
	sym, ok := c.GetSymbol(c.Intern("FIRST"))
	require.True(t, ok)
	assert.True(t, sym.Value.IsDefined())
	assert.EqualValues(t, 42, sym.Value.Absolute)
}

func TestAnalyzeCopyMemberFromLibraryProvider(t *testing.T) {
	lib := library.NewMapProvider()
	lib.Set("MYCOPY", library.Result{
		Text:     "CPYLBL   EQU   9\n",
		Location: reslocation.New("mycopy.hlasm"),
	})

	src := "         COPY  MYCOPY\n" +
		"USER     EQU   CPYLBL+1\n" +
		"         END\n"

	result := run(t, src, Options{
		FileLocation:    reslocation.New("test.hlasm"),
		LibraryProvider: lib,
		AsmOption:       true,
	})

	require.Empty(t, result.Diagnostics())

	c := result.Ctx()
	sym, ok := c.GetSymbol(c.Intern("USER"))
	require.True(t, ok)
	assert.True(t, sym.Value.IsDefined())
	assert.EqualValues(t, 10, sym.Value.Absolute)

	assert.NotZero(t, result.Metrics().CopyExpansions)
}

func TestAnalyzeSemanticTokensGatedByOption(t *testing.T) {
	src := "LBL      EQU   5\n         END\n"

	withTokens := run(t, src, Options{
		FileLocation:            reslocation.New("test.hlasm"),
		AsmOption:               true,
		CollectHighlightingInfo: true,
	})
	assert.NotEmpty(t, withTokens.SemanticTokens())

	withoutTokens := run(t, src, Options{
		FileLocation: reslocation.New("test.hlasm"),
		AsmOption:    true,
	})
	assert.Empty(t, withoutTokens.SemanticTokens())
}

func TestAnalyzeIndexesDocumentSymbols(t *testing.T) {
	loc := reslocation.New("test.hlasm")
	src := "LBL      EQU   5\n         END\n"

	result := run(t, src, Options{
		FileLocation: loc,
		AsmOption:    true,
	})

	entries := result.Index().DocumentSymbols(loc)
	require.Len(t, entries, 1)
	assert.Equal(t, "LBL", entries[0].Name)
}

func TestOptionsRejectsConflictingConstruction(t *testing.T) {
	opts := NewOptions()

	err := opts.Update(func(o *Options) {
		o.AnalyzingContext = nil
		o.AsmOption = false
	})
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestAnalyzeValidatesOptionsBeforeRunning(t *testing.T) {
	opts := Options{AsmOption: false}

	tk := Analyze("LBL EQU 5\n", opts)
	tk.Step()

	_, err := tk.Result()
	assert.ErrorIs(t, err, ErrInvalidOptions)
}
