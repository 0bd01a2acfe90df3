package text

import (
	"bufio"
	"io"
	"strings"
)

// Writer writes indented lines. Errors are sticky and reported by Flush.
type Writer struct {
	w     *bufio.Writer
	level int
	err   error
}

// NewWriter creates a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Line writes s at the current indentation. Empty lines carry no
// indentation.
func (w *Writer) Line(s string) {
	if w.err != nil {
		return
	}
	if s != "" {
		if _, w.err = w.w.WriteString(strings.Repeat("\t", w.level)); w.err != nil {
			return
		}
		if _, w.err = w.w.WriteString(s); w.err != nil {
			return
		}
	}
	w.err = w.w.WriteByte('\n')
}

// Open writes "{" and indents the following lines.
func (w *Writer) Open() {
	w.Line("{")
	w.level++
}

// Close dedents and writes "}".
func (w *Writer) Close() {
	if w.level > 0 {
		w.level--
	}
	w.Line("}")
}

// Banner writes the generated-file comment block.
func (w *Writer) Banner(title string) {
	w.Line("//=================================================//")
	w.Line("//")
	w.Line("// " + title)
	w.Line("//")
	w.Line("//=================================================//")
	w.Line("")
}

// Flush flushes buffered output and returns the first error encountered.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	return w.w.Flush()
}
