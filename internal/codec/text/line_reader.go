// Package text implements the human-editable text formats of a project:
// per-asset object files, bundle files and the project manifest.
//
// All formats are line oriented. A logical line has surrounding whitespace
// and any trailing // comment removed; blocks are delimited by { and } on
// their own lines; fields are written as quoted tokens, "type" "name" "value".
package text

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// LineReader yields logical lines from a text stream.
//
// Thread Safety: LineReader instances are NOT thread-safe.
type LineReader struct {
	r    *bufio.Reader
	file string
	line int
	err  error
	eof  bool

	pushed    string
	hasPushed bool
}

// NewLineReader creates a reader over r. file is used for diagnostics only.
func NewLineReader(r io.Reader, file string) *LineReader {
	return &LineReader{
		r:    bufio.NewReader(r),
		file: file,
	}
}

// Next returns the next cleaned line. Blank lines are returned as "" with
// ok set; callers skip them explicitly. ok is false at end of stream.
func (lr *LineReader) Next() (string, bool) {
	if lr.hasPushed {
		lr.hasPushed = false
		return lr.pushed, true
	}
	if lr.eof {
		return "", false
	}

	raw, err := lr.r.ReadString('\n')
	if err != nil {
		lr.eof = true
		if err != io.EOF {
			lr.err = err
		}
		if raw == "" {
			return "", false
		}
	}
	lr.line++
	return CleanLine(raw), true
}

// Unread pushes line back so the next call to Next returns it again. Only
// one line of pushback is supported.
func (lr *LineReader) Unread(line string) {
	lr.pushed = line
	lr.hasPushed = true
}

// Line returns the 1-based number of the line last returned by Next.
func (lr *LineReader) Line() int { return lr.line }

// File returns the file name given at construction.
func (lr *LineReader) File() string { return lr.file }

// Err returns the first non-EOF read error.
func (lr *LineReader) Err() error { return lr.err }

// CleanLine trims whitespace and removes a // comment that starts outside
// of a quoted string.
func CleanLine(raw string) string {
	return strings.TrimSpace(stripComment(strings.TrimSpace(raw)))
}

func stripComment(line string) string {
	inString := false
	for i := 0; i < len(line); i++ {
		switch c := line[i]; {
		case c == '\\' && inString:
			i++
		case c == '"':
			inString = !inString
		case c == '/' && !inString && i+1 < len(line) && line[i+1] == '/':
			return line[:i]
		}
	}
	return line
}

// Tokens splits a logical line into its tokens. Quoted tokens may contain
// spaces and the escapes \" \\ \n and \r; bare words end at whitespace.
func Tokens(line string) ([]string, error) {
	var tokens []string
	i := 0
	for i < len(line) {
		c := line[i]
		if c == ' ' || c == '\t' {
			i++
			continue
		}

		if c != '"' {
			start := i
			for i < len(line) && line[i] != ' ' && line[i] != '\t' {
				i++
			}
			tokens = append(tokens, line[start:i])
			continue
		}

		var sb strings.Builder
		i++
		closed := false
		for i < len(line) {
			c := line[i]
			if c == '\\' && i+1 < len(line) {
				if r, ok := unescape[line[i+1]]; ok {
					sb.WriteByte(r)
					i += 2
					continue
				}
			}
			if c == '"' {
				closed = true
				i++
				break
			}
			sb.WriteByte(c)
			i++
		}
		if !closed {
			return tokens, fmt.Errorf("unterminated string in %q", line)
		}
		tokens = append(tokens, sb.String())
	}
	return tokens, nil
}

var unescape = map[byte]byte{'"': '"', '\\': '\\', 'n': '\n', 'r': '\r'}

// Quote wraps s in double quotes, escaping embedded quotes, backslashes and
// line breaks so the token stays on one line.
func Quote(s string) string {
	if !strings.ContainsAny(s, "\"\\\n\r") {
		return `"` + s + `"`
	}
	var sb strings.Builder
	sb.Grow(len(s) + 4)
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"', '\\':
			sb.WriteByte('\\')
			sb.WriteByte(s[i])
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteByte(s[i])
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// QuoteAll quotes every token and joins them with single spaces.
func QuoteAll(tokens ...string) string {
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = Quote(t)
	}
	return strings.Join(quoted, " ")
}
