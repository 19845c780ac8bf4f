package sanitizer

import (
	"reflect"
	"testing"
)

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"only whitespace", "   \t\n ", ""},
		{"leading and trailing", "  sourdough basics  ", "sourdough basics"},
		{"internal runs", "learn\t\tGo   fast", "learn Go fast"},
		{"newlines collapse", "line one\nline two", "line one line two"},
		{"already clean", "Italian cooking", "Italian cooking"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.expected {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Ana.Lopez@Example.COM "); got != "ana.lopez@example.com" {
		t.Errorf("NormalizeEmail = %q", got)
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" guitar ", "", "  ", "music  theory"})
	want := []string{"guitar", "music theory"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeTags = %v, want %v", got, want)
	}

	if NormalizeTags(nil) != nil {
		t.Error("NormalizeTags(nil) should stay nil")
	}
}
