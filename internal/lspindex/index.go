// Package lspindex builds the LSP symbol/definition/reference index spec §6
// contracts as one of the analyzer's three outputs.
//
// Grounded on the teacher's internal/workspace/symbol_index.go (workspace
// symbol map keyed by name, with Search/RemoveFile/FindSymbolsInFile) and
// internal/server/symbol_index.go (per-document reference cache), merged
// into one index keyed by the interned Id instead of a bare string.
package lspindex

import (
	"sort"
	"strings"

	deadlock "github.com/sasha-s/go-deadlock"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/hlasm-tools/hlasmcore/internal/ids"
	"github.com/hlasm-tools/hlasmcore/internal/reslocation"
)

// Kind classifies what an indexed symbol denotes.
type Kind int

const (
	KindOrdinarySymbol Kind = iota
	KindSection
	KindLocationCounter
	KindMacro
	KindSequenceSymbol
	KindSetVariable
)

func (k Kind) protocolKind() protocol.SymbolKind {
	switch k {
	case KindSection:
		return protocol.SymbolKindModule
	case KindLocationCounter:
		return protocol.SymbolKindNamespace
	case KindMacro:
		return protocol.SymbolKindFunction
	case KindSequenceSymbol:
		return protocol.SymbolKindEvent
	case KindSetVariable:
		return protocol.SymbolKindVariable
	default:
		return protocol.SymbolKindConstant
	}
}

// Entry is one defined symbol: its name, kind, definition site, and the
// containing scope (e.g. the macro name a sequence symbol is local to).
type Entry struct {
	Id            ids.Id
	Name          string
	Kind          Kind
	Definition    protocol.Location
	ContainerName string
	Detail        string
}

// Index is the analyzer's symbol/definition/reference index for one
// translation unit (and, via the library provider, the members it pulled
// in). It is safe for concurrent reads by an LSP handler layer while the
// analyzer that built it is not itself running.
type Index struct {
	mu deadlock.RWMutex

	definitions map[ids.Id][]Entry
	references  map[ids.Id][]protocol.Location
	byFile      map[string][]ids.Id // resource-location string -> ids defined there
}

// New creates an empty Index.
func New() *Index {
	return &Index{
		definitions: make(map[ids.Id][]Entry),
		references:  make(map[ids.Id][]protocol.Location),
		byFile:      make(map[string][]ids.Id),
	}
}

// AddDefinition records where id was defined.
func (idx *Index) AddDefinition(e Entry) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.definitions[e.Id] = append(idx.definitions[e.Id], e)
	idx.byFile[e.Definition.URI] = append(idx.byFile[e.Definition.URI], e.Id)
}

// AddReference records one use site of id.
func (idx *Index) AddReference(id ids.Id, loc protocol.Location) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.references[id] = append(idx.references[id], loc)
}

// FindDefinition returns every definition site recorded for id.
func (idx *Index) FindDefinition(id ids.Id) []Entry {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return append([]Entry(nil), idx.definitions[id]...)
}

// FindReferences returns every reference site recorded for id, optionally
// including the definition sites themselves.
func (idx *Index) FindReferences(id ids.Id, includeDeclaration bool) []protocol.Location {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	result := append([]protocol.Location(nil), idx.references[id]...)

	if includeDeclaration {
		for _, e := range idx.definitions[id] {
			result = append(result, e.Definition)
		}
	}

	return result
}

// DocumentSymbols returns every symbol defined in loc, for the LSP
// "document symbol" request.
func (idx *Index) DocumentSymbols(loc reslocation.Location) []Entry {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var result []Entry

	for _, id := range idx.byFile[loc.String()] {
		for _, e := range idx.definitions[id] {
			if e.Definition.URI == loc.String() {
				result = append(result, e)
			}
		}
	}

	return result
}

// Search returns symbols whose name contains query (case-insensitive). An
// empty query returns every symbol, up to max (0 meaning unlimited), for
// the LSP "workspace symbol" request.
func (idx *Index) Search(query string, max int) []Entry {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	queryLower := strings.ToLower(query)

	var result []Entry

	for _, entries := range idx.definitions {
		for _, e := range entries {
			if query != "" && !strings.Contains(strings.ToLower(e.Name), queryLower) {
				continue
			}

			result = append(result, e)

			if max > 0 && len(result) >= max {
				return result
			}
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })

	return result
}

// RemoveFile drops every definition and reference recorded against loc,
// used before re-indexing a document.
func (idx *Index) RemoveFile(loc reslocation.Location) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	uri := loc.String()

	for _, id := range idx.byFile[uri] {
		remaining := idx.definitions[id][:0]

		for _, e := range idx.definitions[id] {
			if e.Definition.URI != uri {
				remaining = append(remaining, e)
			}
		}

		if len(remaining) == 0 {
			delete(idx.definitions, id)
		} else {
			idx.definitions[id] = remaining
		}

		remainingRefs := idx.references[id][:0]
		for _, r := range idx.references[id] {
			if r.URI != uri {
				remainingRefs = append(remainingRefs, r)
			}
		}

		if len(remainingRefs) == 0 {
			delete(idx.references, id)
		} else {
			idx.references[id] = remainingRefs
		}
	}

	delete(idx.byFile, uri)
}

// SymbolKind exposes the protocol-level kind for an Entry.
func (e Entry) SymbolKind() protocol.SymbolKind {
	return e.Kind.protocolKind()
}
