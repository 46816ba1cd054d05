package lspindex

import (
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/hlasm-tools/hlasmcore/internal/ids"
	"github.com/hlasm-tools/hlasmcore/internal/reslocation"
)

func TestAddAndFindDefinition(t *testing.T) {
	idx := New()
	loc := reslocation.New("file:///a.hlasm")

	idx.AddDefinition(Entry{
		Id:   ids.Id(1),
		Name: "LABEL1",
		Kind: KindOrdinarySymbol,
		Definition: protocol.Location{
			URI:   loc.String(),
			Range: protocol.Range{},
		},
	})

	defs := idx.FindDefinition(ids.Id(1))
	if len(defs) != 1 {
		t.Fatalf("expected 1 definition, got %d", len(defs))
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	idx := New()
	idx.AddDefinition(Entry{Id: ids.Id(1), Name: "MYLABEL", Kind: KindOrdinarySymbol})

	results := idx.Search("mylabel", 0)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
}

func TestRemoveFileDropsDefinitionsAndReferences(t *testing.T) {
	idx := New()
	loc := reslocation.New("file:///a.hlasm")

	idx.AddDefinition(Entry{
		Id:         ids.Id(1),
		Name:       "LABEL1",
		Definition: protocol.Location{URI: loc.String()},
	})
	idx.AddReference(ids.Id(1), protocol.Location{URI: loc.String()})

	idx.RemoveFile(loc)

	if defs := idx.FindDefinition(ids.Id(1)); len(defs) != 0 {
		t.Errorf("expected definitions removed, got %d", len(defs))
	}

	if refs := idx.FindReferences(ids.Id(1), false); len(refs) != 0 {
		t.Errorf("expected references removed, got %d", len(refs))
	}
}

func TestFindReferencesIncludingDeclaration(t *testing.T) {
	idx := New()
	loc := reslocation.New("file:///a.hlasm")

	idx.AddDefinition(Entry{Id: ids.Id(2), Name: "X", Definition: protocol.Location{URI: loc.String()}})
	idx.AddReference(ids.Id(2), protocol.Location{URI: loc.String()})

	refs := idx.FindReferences(ids.Id(2), true)
	if len(refs) != 2 {
		t.Fatalf("expected 2 (1 reference + 1 declaration), got %d", len(refs))
	}
}
