package ctx

import "github.com/hlasm-tools/hlasmcore/internal/value"

// SectionKind is spec §3 "Section"'s kind enum.
type SectionKind int

const (
	SectionExecutable SectionKind = iota
	SectionReadOnly
	SectionCommon
	SectionDummy
	SectionExternal
	SectionWeakExternal
)

// Space is spec §3's unresolved byte gap in a counter's chain.
type Space struct {
	Id          value.SpaceId
	Fill        *byte // nil means unfilled/uninitialized
	Length      *int64 // nil until resolved; resolved exactly once
	Alignment   int // boundary in bytes this space was created to reach, 1 if none
}

// Resolved reports whether the space's length has been committed.
func (s *Space) Resolved() bool {
	return s.Length != nil
}

// LocationCounter is a named sub-counter within a Section (spec §3,
// GLOSSARY "LOCTR"). The default counter has the empty id.
type LocationCounter struct {
	Id      idType
	Offset  int64
	Max     int64 // highest offset ever reached, for ORG with no operand
	Spaces  []*Space
	nextSpaceId value.SpaceId
}

// Section is spec §3's (id, kind, location-counters, current-counter).
type Section struct {
	Id               idType
	Kind             SectionKind
	Counters         map[idType]*LocationCounter
	CounterOrder     []idType // insertion order, default counter first
	CurrentCounter   idType
}

func newSection(id idType, kind SectionKind) *Section {
	def := &LocationCounter{Id: emptyId}

	return &Section{
		Id:             id,
		Kind:           kind,
		Counters:       map[idType]*LocationCounter{emptyId: def},
		CounterOrder:   []idType{emptyId},
		CurrentCounter: emptyId,
	}
}

func (s *Section) counter(id idType) (*LocationCounter, bool) {
	lc, ok := s.Counters[id]
	return lc, ok
}

func (s *Section) ensureCounter(id idType) *LocationCounter {
	if lc, ok := s.Counters[id]; ok {
		return lc
	}

	lc := &LocationCounter{Id: id}
	s.Counters[id] = lc
	s.CounterOrder = append(s.CounterOrder, id)

	return lc
}

func (s *Section) current() *LocationCounter {
	return s.Counters[s.CurrentCounter]
}

func (lc *LocationCounter) newSpace(alignment int, fill *byte) *Space {
	sp := &Space{Id: lc.nextSpaceId, Fill: fill, Alignment: alignment}
	lc.nextSpaceId++
	lc.Spaces = append(lc.Spaces, sp)

	return sp
}
