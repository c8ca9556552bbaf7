package codec

import "testing"

func TestSelectorWidth(t *testing.T) {
	golden := []struct {
		k    int
		want uint8
	}{
		{k: 0, want: 0},
		{k: 1, want: 0},
		{k: 2, want: 1},
		{k: 3, want: 2},
		{k: 4, want: 2},
		{k: 5, want: 3},
		{k: 8, want: 3},
		{k: 9, want: 4},
	}
	for _, g := range golden {
		got := selectorWidth(g.k)
		if g.want != got {
			t.Errorf("result mismatch of selectorWidth(%d); expected %d, got %d", g.k, g.want, got)
			continue
		}
	}
}

func TestSubbitsSelectorAlphabetSize(t *testing.T) {
	golden := []struct {
		sel  subbitsSelector
		want int
	}{
		{sel: subbitsSelector{numOptions: 4, always: false}, want: 5},
		{sel: subbitsSelector{numOptions: 4, always: true}, want: 4},
		{sel: subbitsSelector{numOptions: 0, always: false}, want: 1},
	}
	for _, g := range golden {
		got := g.sel.alphabetSize()
		if g.want != got {
			t.Errorf("result mismatch of alphabetSize(%+v); expected %d, got %d", g.sel, g.want, got)
			continue
		}
	}
}
