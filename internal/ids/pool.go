// Package ids interns HLASM identifiers into small comparable handles.
//
// HLASM identifiers are case-folded for comparison (the source case is kept
// only for display), 1-63 characters, drawn from letters, digits and
// @#$_, and must not start with a digit. The pool is the single source of
// truth for how two spellings of a name compare equal.
package ids

import "strings"

// Id is an interned identifier handle. The zero Id is the distinguished
// empty identifier: it compares equal only to itself.
type Id int32

// Empty is the distinguished empty identifier.
const Empty Id = 0

// Pool interns identifier strings into Ids. A Pool is not safe for
// concurrent use without external synchronization; Ctx owns exactly one and
// serializes access to it the same way it serializes every other mutation.
type Pool struct {
	byName []string         // index i holds the canonical (case-folded) spelling for Id(i)
	display []string        // index i holds the first-seen display spelling for Id(i)
	index   map[string]Id   // canonical spelling -> Id
}

// NewPool creates a pool pre-seeded with the empty identifier at index 0.
func NewPool() *Pool {
	p := &Pool{
		byName:  []string{""},
		display: []string{""},
		index:   map[string]Id{"": Empty},
	}
	return p
}

// Intern returns the Id for name, creating one if this is the first time
// name (case-folded) has been seen. An empty name always returns Empty.
func (p *Pool) Intern(name string) Id {
	if name == "" {
		return Empty
	}

	key := foldCase(name)
	if id, ok := p.index[key]; ok {
		return id
	}

	id := Id(len(p.byName))
	p.byName = append(p.byName, key)
	p.display = append(p.display, name)
	p.index[key] = id

	return id
}

// Lookup returns the Id for name without creating one. ok is false if name
// has never been interned.
func (p *Pool) Lookup(name string) (Id, bool) {
	if name == "" {
		return Empty, true
	}

	id, ok := p.index[foldCase(name)]

	return id, ok
}

// Name returns the display spelling recorded for id, or "" for an id this
// pool never interned (including Empty).
func (p *Pool) Name(id Id) string {
	if int(id) < 0 || int(id) >= len(p.display) {
		return ""
	}

	return p.display[id]
}

// CanonicalName returns the case-folded spelling used for comparisons.
func (p *Pool) CanonicalName(id Id) string {
	if int(id) < 0 || int(id) >= len(p.byName) {
		return ""
	}

	return p.byName[id]
}

// Len returns the number of distinct non-empty identifiers interned.
func (p *Pool) Len() int {
	return len(p.byName) - 1
}

func foldCase(name string) string {
	return strings.ToUpper(name)
}

// Valid reports whether name is a syntactically valid HLASM identifier:
// 1-63 characters, first character a letter or @#$_, remaining characters
// letters, digits, or @#$_.
func Valid(name string) bool {
	if len(name) == 0 || len(name) > 63 {
		return false
	}

	for i, r := range name {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r == '@' || r == '#' || r == '$' || r == '_':
			continue
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
			continue
		default:
			return false
		}
	}

	return true
}
