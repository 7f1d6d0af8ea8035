package source

import "testing"

func TestPosition(t *testing.T) {
	m := NewSourceMap()
	id := m.Add("a.sml", "val x = 3\nval y =\n  x")

	tests := []struct {
		name string
		span Span
		want string
	}{
		{"first char", Span{File: id, Lo: 0, Hi: 3}, "a.sml:1:1"},
		{"mid first line", Span{File: id, Lo: 4, Hi: 5}, "a.sml:1:5"},
		{"line start", Span{File: id, Lo: 10, Hi: 13}, "a.sml:2:1"},
		{"indented", Span{File: id, Lo: 20, Hi: 21}, "a.sml:3:3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Position(tt.span).String(); got != tt.want {
				t.Errorf("Position = %s, want %s", got, tt.want)
			}
		})
	}

	if got := m.Snippet(Span{File: id, Lo: 4, Hi: 5}); got != "x" {
		t.Errorf("Snippet = %q, want %q", got, "x")
	}
}

func TestSpanTo(t *testing.T) {
	a := Span{File: 1, Lo: 4, Hi: 6}
	b := Span{File: 1, Lo: 10, Hi: 12}
	if got := a.To(b); got != (Span{File: 1, Lo: 4, Hi: 12}) {
		t.Errorf("To = %v", got)
	}
	if got := a.To(Span{File: 2, Lo: 0, Hi: 1}); got != a {
		t.Errorf("cross-file To should keep receiver, got %v", got)
	}
	if !Synthetic(1, 3).IsSynthetic() {
		t.Errorf("Synthetic span should report IsSynthetic")
	}
}
