package ui

import (
	"reflect"
	"testing"
)

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		s1, s2   string
		expected int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"hero", "hero", 0},
		{"heor", "hero", 2},
	}

	for _, tt := range tests {
		if got := LevenshteinDistance(tt.s1, tt.s2); got != tt.expected {
			t.Errorf("LevenshteinDistance(%q, %q) = %d, expected %d", tt.s1, tt.s2, got, tt.expected)
		}
	}
}

func TestFindSimilar(t *testing.T) {
	candidates := []string{"levels/hero", "levels/heroine", "audio/theme", "ui/custom"}

	tests := []struct {
		target   string
		expected []string
	}{
		{"levels/heor", []string{"levels/hero"}},
		{"hero", []string{"levels/hero", "levels/heroine", "audio/theme"}},
		{"AUDIO/THEME", []string{"audio/theme"}},
		{"textures/rock", []string{}},
	}

	for _, tt := range tests {
		got := FindSimilar(tt.target, candidates)
		if !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("FindSimilar(%q) = %v, expected %v", tt.target, got, tt.expected)
		}
	}
}

func TestFindSimilarLimit(t *testing.T) {
	got := FindSimilar("a", []string{"a1", "a2", "a3", "a4", "a5"})
	if len(got) != DefaultMaxSuggestions {
		t.Errorf("Expected %d suggestions, got %v", DefaultMaxSuggestions, got)
	}
	if got[0] != "a1" {
		t.Errorf("Expected stable order for equal distances, got %v", got)
	}
}
