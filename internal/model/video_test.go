package model

import (
	"math"
	"testing"
)

func TestNormalizeLabel_ValidLabels(t *testing.T) {
	valid := []string{"positive", "negative", "neutral", "mixed", "not_mentioned"}
	for _, in := range valid {
		got, ok := NormalizeLabel(in)
		if !ok {
			t.Errorf("NormalizeLabel(%q) reported invalid", in)
		}
		if string(got) != in {
			t.Errorf("NormalizeLabel(%q) = %q, want unchanged", in, got)
		}
	}
}

func TestNormalizeLabel_UnknownDefaultsToNeutral(t *testing.T) {
	tests := []string{"", "POSITIVE", "somewhat positive", "unknown", "neutral "}
	for _, in := range tests {
		got, ok := NormalizeLabel(in)
		if ok {
			t.Errorf("NormalizeLabel(%q) reported valid", in)
		}
		if got != SentimentNeutral {
			t.Errorf("NormalizeLabel(%q) = %q, want neutral", in, got)
		}
	}
}

func TestClampConfidence(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"in range", 0.73, 0.73},
		{"zero", 0, 0},
		{"one", 1, 1},
		{"above one", 1.4, 1},
		{"negative", -0.2, 0},
		{"way out", 100, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampConfidence(tt.in); got != tt.want {
				t.Errorf("ClampConfidence(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestClampConfidence_NaN(t *testing.T) {
	if got := ClampConfidence(math.NaN()); got != 0.5 {
		t.Errorf("ClampConfidence(NaN) = %v, want 0.5", got)
	}
}
