package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// ErrorOptions describes a formatted failure message.
type ErrorOptions struct {
	Context      string
	Problem      string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// FormatError renders a failure with optional suggestions and follow-up
// commands:
//
//	❌ ASSET NOT FOUND: levels/heor
//
//	   Did you mean: levels/hero?
//
//	   → List assets: vbxproj inspect
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	red := paint(opts.NoColor, color.FgRed, color.Bold)
	if opts.Context != "" {
		red.Fprintf(&b, "❌ %s: %s\n", strings.ToUpper(opts.Context), opts.Problem)
	} else {
		red.Fprintf(&b, "❌ %s\n", opts.Problem)
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		paint(opts.NoColor, color.FgYellow).Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		cyan := paint(opts.NoColor, color.FgCyan)
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// NotFoundError reports a name missing from the catalog.
func NotFoundError(kind, name string, suggestions []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Context:      kind + " not found",
		Problem:      name,
		Suggestions:  suggestions,
		HelpCommands: []string{fmt.Sprintf("List %ss: vbxproj inspect", kind)},
		NoColor:      noColor,
	})
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	return paint(noColor, color.FgGreen, color.Bold).Sprintf("✓ %s", message)
}
