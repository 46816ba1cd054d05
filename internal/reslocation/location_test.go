package reslocation

import "testing"

func TestNormalizeResolvesDotSegments(t *testing.T) {
	loc := New("file:///a/b/../c/./d.hlasm")
	if loc.String() != "file:///a/c/d.hlasm" {
		t.Errorf("got %q", loc.String())
	}
}

func TestEqualityIsByteEqualityOfNormalizedForm(t *testing.T) {
	a := New("file:///a/b/../c.hlasm")
	b := New("file:///a/c.hlasm")

	if !a.Equal(b) {
		t.Errorf("expected %q to equal %q after normalization", a, b)
	}
}

func TestFilenameAndParent(t *testing.T) {
	loc := New("file:///proj/src/MEMBER.hlasm")

	if got := loc.Filename(); got != "MEMBER.hlasm" {
		t.Errorf("Filename() = %q", got)
	}

	if got := loc.Parent().String(); got != "file:///proj/src" {
		t.Errorf("Parent() = %q", got)
	}
}

func TestJoin(t *testing.T) {
	loc := New("file:///proj/src")
	joined := loc.Join("MEMBER.hlasm")

	if got := joined.String(); got != "file:///proj/src/MEMBER.hlasm" {
		t.Errorf("Join() = %q", got)
	}
}

func TestRelativeToSibling(t *testing.T) {
	loc := New("file:///proj/src/MAIN.hlasm")
	rel := loc.RelativeTo("COPY1.hlasm")

	if got := rel.String(); got != "file:///proj/src/COPY1.hlasm" {
		t.Errorf("RelativeTo() = %q", got)
	}
}

func TestRelativeToAbsoluteScheme(t *testing.T) {
	loc := New("file:///proj/src/MAIN.hlasm")
	rel := loc.RelativeTo("file:///other/M.hlasm")

	if got := rel.String(); got != "file:///other/M.hlasm" {
		t.Errorf("RelativeTo() = %q", got)
	}
}
