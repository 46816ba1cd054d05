// Package reslocation provides the opaque ResourceLocation value type spec
// treats as an external collaborator: a normalized URI with join/parent/
// filename operations and RFC-3986-style relative resolution. Equality is
// byte-equality of the normalized form.
//
// Grounded on the teacher's internal/analysis/path_utils.go, generalized
// from its single file://-to-path case to the general join/normalize
// contract the spec requires.
package reslocation

import (
	"path"
	"strings"
)

// Location is an opaque, normalized resource location.
type Location struct {
	normalized string
}

// New normalizes raw into a Location. Backslashes are turned into forward
// slashes, "." and ".." segments are resolved, and a trailing slash is
// stripped unless the location is the root.
func New(raw string) Location {
	return Location{normalized: normalize(raw)}
}

// Empty is the distinguished empty location.
var Empty = Location{}

// IsEmpty reports whether l has no normalized text.
func (l Location) IsEmpty() bool {
	return l.normalized == ""
}

// String returns the normalized form.
func (l Location) String() string {
	return l.normalized
}

// Equal reports byte-equality of the normalized forms.
func (l Location) Equal(other Location) bool {
	return l.normalized == other.normalized
}

// Filename returns the last path segment, excluding any query or fragment.
func (l Location) Filename() string {
	p := stripQueryFragment(l.normalized)
	return path.Base(p)
}

// Parent returns the location with its last path segment removed.
func (l Location) Parent() Location {
	scheme, rest := splitScheme(l.normalized)
	p := stripQueryFragment(rest)

	dir := ""
	if i := strings.LastIndex(p, "/"); i >= 0 {
		dir = p[:i]
		if strings.Trim(dir, "/") == "" {
			dir = p[:i+1]
		}
	}

	return New(joinScheme(scheme, dir))
}

// Join appends a relative segment to l the way a directory join would,
// re-normalizing the result.
func (l Location) Join(segment string) Location {
	scheme, rest := splitScheme(l.normalized)

	joined := rest
	if joined != "" && !strings.HasSuffix(joined, "/") {
		joined += "/"
	}

	return New(joinScheme(scheme, joined+segment))
}

// RelativeTo resolves other as an RFC-3986 reference against l taken as the
// base. If other already carries a scheme it is returned normalized as-is.
func (l Location) RelativeTo(other string) Location {
	if hasScheme(other) {
		return New(other)
	}

	if strings.HasPrefix(other, "/") {
		scheme, _ := splitScheme(l.normalized)
		return Location{normalized: normalize(joinScheme(scheme, other))}
	}

	return l.Parent().Join(other)
}

func hasScheme(s string) bool {
	i := strings.Index(s, ":")
	if i <= 0 {
		return false
	}

	for _, r := range s[:i] {
		if !(r == '+' || r == '-' || r == '.' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}

	return true
}

func splitScheme(s string) (scheme, rest string) {
	if !hasScheme(s) {
		return "", s
	}

	i := strings.Index(s, ":")

	return s[:i+1], s[i+1:]
}

func joinScheme(scheme, rest string) string {
	return scheme + rest
}

func stripQueryFragment(s string) string {
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		return s[:i]
	}

	return s
}

func normalize(raw string) string {
	if raw == "" {
		return ""
	}

	s := strings.ReplaceAll(raw, "\\", "/")

	scheme, rest := splitScheme(s)

	query := ""
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		query = rest[i:]
		rest = rest[:i]
	}

	// path.Clean collapses the "//" authority marker after a scheme; keep it
	// aside and clean only what follows it (e.g. file:///a/b keeps all
	// three slashes).
	authority := ""
	if strings.HasPrefix(rest, "//") {
		authority = "//"
		rest = rest[2:]
	}

	cleaned := path.Clean(rest)
	if cleaned == "." {
		cleaned = ""
	}

	return scheme + authority + cleaned + query
}
