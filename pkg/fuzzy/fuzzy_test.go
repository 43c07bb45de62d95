package fuzzy

import (
	"testing"
)

func TestFold(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Lowercases", input: "Never Gonna Give You Up", expected: "never gonna give you up"},
		{name: "Strips diacritics", input: "Beyoncé", expected: "beyonce"},
		{name: "Replaces punctuation", input: "AC/DC - T.N.T.", expected: "ac dc t n t"},
		{name: "Collapses whitespace", input: "  too   many   spaces  ", expected: "too many spaces"},
		{name: "Empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fold(tt.input); got != tt.expected {
				t.Errorf("Fold(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected bool
	}{
		{name: "Identical", a: "Track", b: "Track", expected: true},
		{name: "Candidate contains query", a: "Track (Remastered 2021)", b: "Track", expected: true},
		{name: "Query contains candidate", a: "Track", b: "Track Extended Mix", expected: true},
		{name: "Case and diacritics ignored", a: "BEYONCÉ", b: "beyonce", expected: true},
		{name: "Disjoint", a: "One Song", b: "Another Tune", expected: false},
		{name: "Empty never overlaps", a: "", b: "Track", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.a, tt.b); got != tt.expected {
				t.Errorf("Overlaps(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	if got := Similarity("same", "same"); got != 1.0 {
		t.Errorf("Similarity of identical strings = %f, want 1.0", got)
	}

	if got := Similarity("", "anything"); got != 0.0 {
		t.Errorf("Similarity with empty string = %f, want 0.0", got)
	}

	partial := Similarity("never gonna give you up", "never gonna let you down")
	if partial <= 0.0 || partial >= 1.0 {
		t.Errorf("Similarity of related strings = %f, want value in (0, 1)", partial)
	}

	if Similarity("abc", "xyz") >= Similarity("abc", "abd") {
		t.Error("Similarity should rank closer strings higher")
	}
}
