package richtext

import "testing"

func TestFindBreakOpportunities(t *testing.T) {
	tests := []struct {
		name string
		text string
		idx  int
		want BreakOpportunity
	}{
		{"never before first rune", "hello", 0, BreakNo},
		{"inside a word", "hello", 2, BreakNo},
		{"after a space", "a b", 2, BreakAllowed},
		{"not before a space", "a b", 1, BreakNo},
		{"after a hyphen", "re-do", 3, BreakAllowed},
		{"after a newline", "a\nb", 2, BreakMandatory},
		{"before an ideograph", "a中", 1, BreakAllowed},
		{"after an ideograph", "中a", 1, BreakAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := findBreakOpportunities([]rune(tt.text))
			if got[tt.idx] != tt.want {
				t.Errorf("breaks[%d] of %q = %v, want %v", tt.idx, tt.text, got[tt.idx], tt.want)
			}
		})
	}
}

func TestFindBreakOpportunities_Empty(t *testing.T) {
	if got := findBreakOpportunities(nil); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
}

func TestClassifyRune(t *testing.T) {
	tests := []struct {
		r    rune
		want BreakClass
	}{
		{' ', breakSpace},
		{'\t', breakSpace},
		{'\n', breakNewline},
		{'-', breakHyphen},
		{'—', breakHyphen},
		{'中', breakIdeographic},
		{'a', breakOther},
		{'!', breakOther},
	}
	for _, tt := range tests {
		if got := classifyRune(tt.r); got != tt.want {
			t.Errorf("classifyRune(%q) = %v, want %v", tt.r, got, tt.want)
		}
	}
}
