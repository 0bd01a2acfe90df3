package text

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanLine(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  FILEDATA  ", "FILEDATA"},
		{"whole line comment", "// banner", ""},
		{"trailing comment", `"Float" "Speed" "12.5" // fast`, `"Float" "Speed" "12.5"`},
		{"comment marker inside quotes", `"x" "y" "//not a comment" "z" // real comment`, `"x" "y" "//not a comment" "z"`},
		{"escaped quote keeps string open", `"a \" // still string" // gone`, `"a \" // still string"`},
		{"carriage return", "{\r\n", "{"},
		{"single slash", `"CString" "Path" "a/b"`, `"CString" "Path" "a/b"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanLine(tt.in))
		})
	}
}

func TestTokens(t *testing.T) {
	toks, err := Tokens(`"CString" "Name" "say \"hi\" \\o/"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"CString", "Name", `say "hi" \o/`}, toks)

	toks, err = Tokens("SoundNode 22222222-2222-2222-2222-222222222222 1")
	require.NoError(t, err)
	assert.Equal(t, []string{"SoundNode", "22222222-2222-2222-2222-222222222222", "1"}, toks)

	toks, err = Tokens(`"CString" "Empty" ""`)
	require.NoError(t, err)
	assert.Equal(t, []string{"CString", "Empty", ""}, toks)

	_, err = Tokens(`"CString" "Name" "open`)
	assert.Error(t, err)
}

func TestQuote_RoundTrip(t *testing.T) {
	for _, s := range []string{"", "plain", `a"b`, `c:\path\to`, `end\`, "line one\nline two", "crlf\r\n", `lit\n`} {
		toks, err := Tokens(Quote(s))
		require.NoError(t, err)
		require.Len(t, toks, 1)
		assert.Equal(t, s, toks[0])
	}
	assert.Equal(t, `"a\"b\\c"`, Quote(`a"b\c`))
	assert.Equal(t, `"one\ntwo\r"`, Quote("one\ntwo\r"))
	assert.Equal(t, `"lit\\n"`, Quote(`lit\n`))
	assert.Equal(t, `"Float" "Speed" "12.5"`, QuoteAll("Float", "Speed", "12.5"))
}

func TestLineReader(t *testing.T) {
	lr := NewLineReader(strings.NewReader("a\r\n\n  b // c\nlast"), "test.vbx")

	line, ok := lr.Next()
	require.True(t, ok)
	assert.Equal(t, "a", line)
	assert.Equal(t, 1, lr.Line())

	line, ok = lr.Next()
	require.True(t, ok)
	assert.Equal(t, "", line)

	line, ok = lr.Next()
	require.True(t, ok)
	assert.Equal(t, "b", line)
	assert.Equal(t, 3, lr.Line())

	lr.Unread(line)
	line, ok = lr.Next()
	require.True(t, ok)
	assert.Equal(t, "b", line)

	line, ok = lr.Next()
	require.True(t, ok)
	assert.Equal(t, "last", line)
	assert.Equal(t, 4, lr.Line())

	_, ok = lr.Next()
	assert.False(t, ok)
	assert.NoError(t, lr.Err())
	assert.Equal(t, "test.vbx", lr.File())
}
