package grammar

import (
	"bufio"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxLineSize bounds a single grammar line.
const maxLineSize = 1024 * 1024

// Line is a normalized, non-blank grammar source line.
type Line struct {
	// Num is the 1-based physical line number in the source.
	Num int
	// Column is the 1-based column of the first character of Text in the raw line.
	Column int
	// Text is the line with the comment removed and surrounding whitespace trimmed.
	Text string
}

// StripComment removes everything from the first unescaped '#' to the end
// of the line. The escape sequence `\#` yields a literal '#'.
func StripComment(s string) string {
	if !strings.ContainsRune(s, '#') {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\' && i+1 < len(s) && s[i+1] == '#':
			b.WriteByte('#')
			i++
		case s[i] == '#':
			return b.String()
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// NormalizeLine strips the comment and surrounding whitespace from raw.
// It reports the 1-based column where the remaining text starts and
// whether anything is left.
func NormalizeLine(raw string) (text string, column int, ok bool) {
	stripped := StripComment(raw)
	trimmedLeft := strings.TrimLeftFunc(stripped, unicode.IsSpace)
	text = strings.TrimRightFunc(trimmedLeft, unicode.IsSpace)
	if text == "" {
		return "", 0, false
	}
	column = utf8.RuneCountInString(stripped[:len(stripped)-len(trimmedLeft)]) + 1
	return text, column, true
}

// ReadLines reads r and returns its normalized non-blank lines.
// Blank and comment-only lines are dropped but still counted, so Num
// always matches the physical line in the source.
func ReadLines(r io.Reader) ([]Line, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines []Line
	num := 0
	for scanner.Scan() {
		num++
		raw := scanner.Text()
		if num == 1 {
			raw = strings.TrimPrefix(raw, "\ufeff")
		}
		text, col, ok := NormalizeLine(raw)
		if !ok {
			continue
		}
		lines = append(lines, Line{Num: num, Column: col, Text: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
