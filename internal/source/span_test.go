package source

import "testing"

func TestSpanBasics(t *testing.T) {
	s := Span{File: 1, Start: 10, End: 14}
	if s.Empty() {
		t.Fatalf("span %v should not be empty", s)
	}
	if s.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", s.Len())
	}
	if (Span{File: 1, Start: 3, End: 3}).Empty() != true {
		t.Fatalf("zero-length span must be empty")
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 10, End: 14}
	b := Span{File: 1, Start: 4, End: 12}
	got := a.Cover(b)
	if got.Start != 4 || got.End != 14 {
		t.Fatalf("Cover = %v, want 1:4-14", got)
	}

	other := Span{File: 2, Start: 0, End: 100}
	if got := a.Cover(other); got != a {
		t.Fatalf("Cover across files must be a no-op, got %v", got)
	}
}

func TestInternerRoundTrip(t *testing.T) {
	in := NewInterner()
	id := in.Intern("neutron")
	if id == NoStringID {
		t.Fatalf("interned string got the sentinel ID")
	}
	if again := in.Intern("neutron"); again != id {
		t.Fatalf("second Intern returned %d, want %d", again, id)
	}
	s, ok := in.Lookup(id)
	if !ok || s != "neutron" {
		t.Fatalf("Lookup = %q, %v", s, ok)
	}
	if _, ok := in.Lookup(StringID(9999)); ok {
		t.Fatalf("Lookup of unknown ID must fail")
	}
	if got, _ := in.Lookup(NoStringID); got != "" {
		t.Fatalf("NoStringID must map to empty string, got %q", got)
	}
}

func TestFileSetResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("main.mi", []byte("let a = 1;\nlet b = 2;\n"))

	start, _ := fs.Resolve(Span{File: id, Start: 11, End: 14})
	if start.Line != 2 || start.Col != 1 {
		t.Fatalf("Resolve start = %+v, want line 2 col 1", start)
	}

	f := fs.Get(id)
	if got := f.GetLine(2); got != "let b = 2;" {
		t.Fatalf("GetLine(2) = %q", got)
	}
	if got := f.GetLine(5); got != "" {
		t.Fatalf("GetLine out of range = %q, want empty", got)
	}
}

func TestFileSetStaleIDDegrades(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("m.mi", []byte("let a = 1;\n"))
	stale := id + 7

	if f := fs.Get(stale); f != nil {
		t.Fatalf("Get with an unknown ID must return nil, got %+v", f)
	}
	start, end := fs.Resolve(Span{File: stale, Start: 11, End: 14})
	if start.Line != 1 || start.Col != 12 || end.Col != 15 {
		t.Fatalf("stale span must fall back to byte offsets, got %+v, %+v", start, end)
	}
}

func TestFileSetLatestWins(t *testing.T) {
	fs := NewFileSet()
	first := fs.AddVirtual("m.mi", []byte("one"))
	second := fs.AddVirtual("m.mi", []byte("two"))
	if first == second {
		t.Fatalf("re-adding a path must allocate a new ID")
	}
	latest, ok := fs.GetLatest("m.mi")
	if !ok || latest != second {
		t.Fatalf("GetLatest = %v, %v; want %v", latest, ok, second)
	}
}
