package randstr

import "testing"

func TestGenerateRandomString_LengthAndAlphabet(t *testing.T) {
	g := New([]byte("ABC123"))
	allowed := map[rune]bool{'A': true, 'B': true, 'C': true, '1': true, '2': true, '3': true}

	for i := 0; i < 50; i++ {
		s := g.GenerateRandomString(6)
		if len(s) != 6 {
			t.Fatalf("expected length 6, got %d (%q)", len(s), s)
		}
		for _, r := range s {
			if !allowed[r] {
				t.Fatalf("character %q not in alphabet", r)
			}
		}
	}
}

func TestGenerateRandomString_VariesAcrossCalls(t *testing.T) {
	g := New([]byte("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"))

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		seen[g.GenerateRandomString(6)] = true
	}
	if len(seen) < 15 {
		t.Fatalf("expected high variance across calls, got only %d distinct values out of 20", len(seen))
	}
}
