package ui

import (
	"strings"
	"testing"
)

func TestFormatError(t *testing.T) {
	output := FormatError(ErrorOptions{
		Context:      "catalog",
		Problem:      "no snapshot found",
		HelpCommands: []string{"Load a project: vbxproj load demo.vproj"},
		NoColor:      true,
	})

	expected := "❌ CATALOG: no snapshot found\n\n   → Load a project: vbxproj load demo.vproj\n"
	if output != expected {
		t.Errorf("Expected %q, got %q", expected, output)
	}
}

func TestFormatErrorWithoutContext(t *testing.T) {
	output := FormatError(ErrorOptions{Problem: "project is locked", NoColor: true})
	if output != "❌ project is locked\n" {
		t.Errorf("Unexpected output %q", output)
	}
}

func TestNotFoundError(t *testing.T) {
	output := NotFoundError("asset", "levels/heor", []string{"levels/hero"}, true)

	for _, want := range []string{
		"❌ ASSET NOT FOUND: levels/heor",
		"Did you mean: levels/hero?",
		"→ List assets: vbxproj inspect",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in output:\n%s", want, output)
		}
	}
}

func TestNotFoundErrorNoSuggestions(t *testing.T) {
	output := NotFoundError("resource", "textures/rock", nil, true)
	if strings.Contains(output, "Did you mean") {
		t.Errorf("Expected no suggestions, got:\n%s", output)
	}
}

func TestFormatSuccess(t *testing.T) {
	if got := FormatSuccess("Saved demo", true); got != "✓ Saved demo" {
		t.Errorf("Unexpected output %q", got)
	}
}
