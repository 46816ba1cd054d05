package preprocess

import (
	"strings"
	"testing"

	"github.com/hlasm-tools/hlasmcore/internal/library"
	"github.com/hlasm-tools/hlasmcore/internal/reslocation"
	"github.com/hlasm-tools/hlasmcore/internal/task"
)

func runChain(t *testing.T, c *Chain, provider library.Provider, doc *Document) *Document {
	t.Helper()

	tk := c.RunTask(provider, doc)
	status := tk.Step()

	for status == task.StatusSuspended {
		status = tk.Resume()
	}

	result, err := tk.Result()
	if err != nil {
		t.Fatalf("unexpected chain error: %v", err)
	}

	return result
}

func TestEndevorRewritesIncToCopy(t *testing.T) {
	doc := NewDocument("-INC MYMEMBER\n LR 1,2", reslocation.New("file:///a.asm"))
	c := NewChain(KindEndevor)

	out := runChain(t, c, library.None, doc)

	if !strings.Contains(out.Lines[0].Text, "COPY") || !strings.Contains(out.Lines[0].Text, "MYMEMBER") {
		t.Errorf("expected -INC rewritten to COPY, got %q", out.Lines[0].Text)
	}
	if out.Lines[1].Text != " LR 1,2" {
		t.Errorf("expected second line untouched, got %q", out.Lines[1].Text)
	}
}

func TestCICSRewritesExecBlockToDFHECALL(t *testing.T) {
	doc := NewDocument("     EXEC CICS SEND MAP('FOO')\n     END-EXEC\n LR 1,2", reslocation.New("file:///a.asm"))
	c := NewChain(KindCICS)

	out := runChain(t, c, library.None, doc)

	if len(out.Lines) != 2 {
		t.Fatalf("expected the EXEC CICS block collapsed to one line, got %d lines", len(out.Lines))
	}
	if !strings.Contains(out.Lines[0].Text, "DFHECALL") || !strings.Contains(out.Lines[0].Text, "SEND") {
		t.Errorf("expected DFHECALL SEND, got %q", out.Lines[0].Text)
	}
}

func TestDB2StubsExecSqlWithoutInclude(t *testing.T) {
	doc := NewDocument("     EXEC SQL SELECT 1 INTO :H FROM SYSIBM.SYSDUMMY1\n     END-EXEC", reslocation.New("file:///a.asm"))
	c := NewChain(KindDB2)

	out := runChain(t, c, library.None, doc)

	if len(out.Lines) != 2 {
		t.Fatalf("expected an MNOTE and a DS stub line, got %d", len(out.Lines))
	}
	if !strings.Contains(out.Lines[0].Text, "MNOTE") {
		t.Errorf("expected MNOTE stub, got %q", out.Lines[0].Text)
	}
	if !strings.Contains(out.Lines[1].Text, "DS") {
		t.Errorf("expected DS stub, got %q", out.Lines[1].Text)
	}
}

func TestDB2ResolvesIncludeThroughProvider(t *testing.T) {
	provider := library.NewMapProvider()
	provider.Set("DCLGEN1", library.Result{Text: "* included member"})

	doc := NewDocument("     EXEC SQL\n     INCLUDE DCLGEN1\n     END-EXEC", reslocation.New("file:///a.asm"))
	c := NewChain(KindDB2)
	db2 := c.Stages[0].(*DB2)

	out := runChain(t, c, provider, doc)

	if len(out.Lines) != 1 || out.Lines[0].Text != "* included member" {
		t.Fatalf("expected the fetched member's text spliced in, got %#v", out.Lines)
	}

	members := db2.ViewIncludedMembers()
	if len(members) != 1 || members[0] != "DCLGEN1" {
		t.Errorf("expected DCLGEN1 recorded as included, got %v", members)
	}
}

func TestDB2IncludeMissingProducesDiagnostic(t *testing.T) {
	doc := NewDocument("     EXEC SQL\n     INCLUDE NOPE\n     END-EXEC", reslocation.New("file:///a.asm"))
	c := NewChain(KindDB2)

	out := runChain(t, c, library.None, doc)

	if len(out.Diagnostics) != 1 {
		t.Fatalf("expected one diagnostic for the missing member, got %d", len(out.Diagnostics))
	}
	if len(out.Lines) != 2 {
		t.Errorf("expected the block to fall back to the MNOTE/DS stub, got %d lines", len(out.Lines))
	}
}

func TestChainComposesStagesInOrder(t *testing.T) {
	doc := NewDocument("-INC MYMEMBER", reslocation.New("file:///a.asm"))
	c := NewChain(KindEndevor, KindCICS, KindDB2)

	out := runChain(t, c, library.None, doc)

	if !strings.Contains(out.Lines[0].Text, "COPY") {
		t.Errorf("expected Endevor's rewrite to survive the later stages, got %q", out.Lines[0].Text)
	}
}
