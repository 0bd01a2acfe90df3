package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true, "FILE", "WARNINGS", "STATUS")
	table.AddRow("Vbx/levels/hero.vbx", "0", "ok")
	table.AddRow("Res/rock.res", "2", "warn", "ignored")
	table.Render()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected 4 lines, got %d: %q", len(lines), buf.String())
	}

	if lines[0] != "FILE                 WARNINGS  STATUS" {
		t.Errorf("Unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], strings.Repeat("─", len("Vbx/levels/hero.vbx"))) {
		t.Errorf("Unexpected separator %q", lines[1])
	}
	if lines[3] != "Res/rock.res         2         warn" {
		t.Errorf("Unexpected row %q", lines[3])
	}
	if table.Len() != 2 {
		t.Errorf("Expected 2 rows, got %d", table.Len())
	}
}

func TestTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewTable(&buf, true).Render()
	if buf.Len() != 0 {
		t.Errorf("Expected no output for a table without headers, got %q", buf.String())
	}
}

func TestKeyValueTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewKeyValueTable(&buf, true)
	table.AddRow("Project", "demo")
	table.AddRow("Items", "7")
	table.Render()

	expected := "Project: demo\nItems:   7\n"
	if buf.String() != expected {
		t.Errorf("Expected %q, got %q", expected, buf.String())
	}
}

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	Header(&buf, "Catalog", true)

	expected := "Catalog\n───────\n"
	if buf.String() != expected {
		t.Errorf("Expected %q, got %q", expected, buf.String())
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		input    string
		width    int
		expected string
	}{
		{"abc", 5, "abc  "},
		{"abcdef", 3, "abcdef"},
		{"", 2, "  "},
		{"é", 3, "é  "},
	}

	for _, tt := range tests {
		if got := padRight(tt.input, tt.width); got != tt.expected {
			t.Errorf("padRight(%q, %d) = %q, expected %q", tt.input, tt.width, got, tt.expected)
		}
	}
}
