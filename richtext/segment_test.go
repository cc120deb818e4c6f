package richtext

import "testing"

func TestBaseDirection(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Direction
	}{
		{"empty", "", DirectionLTR},
		{"latin", "hello", DirectionLTR},
		{"hebrew", "שלום", DirectionRTL},
		{"arabic", "مرحبا", DirectionRTL},
		{"neutral prefix keeps strong direction", "123 שלום", DirectionRTL},
		{"latin before hebrew stays ltr", "abc שלום", DirectionLTR},
		{"punctuation only", "?!.", DirectionLTR},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BaseDirection(tt.text); got != tt.want {
				t.Errorf("BaseDirection(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
