package arena

import "testing"

func TestSlabPointersStayValid(t *testing.T) {
	s := NewSlab[int](4)
	var ptrs []*int
	for i := 0; i < 50; i++ {
		ptrs = append(ptrs, s.Alloc(i))
	}
	for i, p := range ptrs {
		if *p != i {
			t.Fatalf("value %d moved: got %d", i, *p)
		}
	}
	if s.Len() != 50 {
		t.Errorf("Len = %d, want 50", s.Len())
	}
}

func TestAllocSliceIsIsolated(t *testing.T) {
	s := NewSlab[int](4)
	a := s.AllocSlice([]int{1, 2})
	b := s.AllocSlice([]int{3, 4, 5, 6, 7})
	a = append(a, 99)
	if b[0] != 3 {
		t.Errorf("appending to one run must not clobber the next, got %v", b)
	}
	if len(b) != 5 || b[4] != 7 {
		t.Errorf("oversized run = %v", b)
	}
	if s.AllocSlice(nil) != nil {
		t.Errorf("empty run should be nil")
	}
}

func TestRelease(t *testing.T) {
	s := NewSlab[string](0)
	s.Alloc("x")
	if s.Bytes() == 0 {
		t.Errorf("Bytes should count reserved chunks")
	}
	s.Release()
	if s.Len() != 0 || s.Bytes() != 0 {
		t.Errorf("Release should drop everything: len=%d bytes=%d", s.Len(), s.Bytes())
	}

	var st Stats
	st.Add(3, 24)
	st.Add(1, 8)
	if st.Nodes != 4 || st.Bytes != 32 {
		t.Errorf("Stats = %+v", st)
	}
}
