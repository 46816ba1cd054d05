package diag

import "testing"

func TestLevelToSeverityTable(t *testing.T) {
	cases := []struct {
		level int
		want  Severity
	}{
		{0, SeverityHint},
		{1, SeverityHint},
		{2, SeverityInfo},
		{3, SeverityInfo},
		{4, SeverityWarning},
		{7, SeverityWarning},
		{8, SeverityError},
		{255, SeverityError},
	}

	for _, c := range cases {
		if got := LevelToSeverity(c.level); got != c.want {
			t.Errorf("LevelToSeverity(%d) = %v, want %v", c.level, got, c.want)
		}
	}
}

func TestSinkRespectsMax(t *testing.T) {
	s := NewSink(2)
	s.Add(Diagnostic{Code: CodeE031})
	s.Add(Diagnostic{Code: CodeE031})
	s.Add(Diagnostic{Code: CodeE031})

	if got := s.Len(); got != 2 {
		t.Errorf("expected cap to stop at 2 diagnostics, got %d", got)
	}
}

func TestSinkUnlimited(t *testing.T) {
	s := NewSink(0)
	for i := 0; i < 10; i++ {
		s.Add(Diagnostic{Code: CodeE031})
	}

	if got := s.Len(); got != 10 {
		t.Errorf("expected no cap, got %d", got)
	}
}
