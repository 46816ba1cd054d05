package library

import "testing"

func TestNoneSentinelAlwaysMisses(t *testing.T) {
	if None.HasLibrary("SYSMAC") {
		t.Errorf("expected the empty provider to report no libraries")
	}

	fut := None.GetLibrary("SYSMAC")
	if _, err := fut.Wait(); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMapProviderSetGetDelete(t *testing.T) {
	p := NewMapProvider()
	p.Set("mymac", Result{Text: "  MACRO\n  MEND"})

	if !p.HasLibrary("MYMAC") {
		t.Errorf("expected case-insensitive lookup to find the member")
	}

	fut := p.GetLibrary("MyMac")
	r, err := fut.Wait()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Text != "  MACRO\n  MEND" {
		t.Errorf("unexpected text %q", r.Text)
	}

	p.Delete("MYMAC")
	if p.HasLibrary("mymac") {
		t.Errorf("expected deleted member to be gone")
	}
}

func TestMapProviderGetMissing(t *testing.T) {
	p := NewMapProvider()

	fut := p.GetLibrary("NOPE")
	if _, err := fut.Wait(); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMapProviderClearAndList(t *testing.T) {
	p := NewMapProvider()
	p.Set("A", Result{Text: "a"})
	p.Set("B", Result{Text: "b"})

	if len(p.List()) != 2 {
		t.Errorf("expected 2 members, got %d", len(p.List()))
	}

	p.Clear()
	if len(p.List()) != 0 {
		t.Errorf("expected 0 members after Clear, got %d", len(p.List()))
	}
}
