package ids

import "testing"

func TestInternCaseFolding(t *testing.T) {
	p := NewPool()

	a := p.Intern("Label1")
	b := p.Intern("LABEL1")
	c := p.Intern("label1")

	if a != b || b != c {
		t.Fatalf("expected case-insensitive interning to collapse to one id, got %v %v %v", a, b, c)
	}

	if p.Name(a) != "Label1" {
		t.Errorf("expected display spelling to keep first-seen case, got %q", p.Name(a))
	}
}

func TestEmptyIdDistinguished(t *testing.T) {
	p := NewPool()

	if p.Intern("") != Empty {
		t.Errorf("expected interning empty string to return Empty")
	}

	other := p.Intern("X")
	if other == Empty {
		t.Errorf("non-empty identifier must not collide with Empty")
	}
}

func TestLookupMissing(t *testing.T) {
	p := NewPool()

	if _, ok := p.Lookup("NOTSEEN"); ok {
		t.Errorf("expected Lookup of unseen name to report not found")
	}

	p.Intern("NOTSEEN")
	if _, ok := p.Lookup("notseen"); !ok {
		t.Errorf("expected Lookup to be case-insensitive once interned")
	}
}

func TestValid(t *testing.T) {
	cases := map[string]bool{
		"A":        true,
		"LABEL1":   true,
		"@TEMP":    true,
		"#VAR":     true,
		"1LABEL":   false,
		"":         false,
		"has space": false,
	}

	for name, want := range cases {
		if got := Valid(name); got != want {
			t.Errorf("Valid(%q) = %v, want %v", name, got, want)
		}
	}
}
