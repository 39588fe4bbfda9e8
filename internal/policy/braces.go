// Package policy decides where new lines should be indented for
// brace-structured text.
package policy

import (
	"strings"

	"github.com/r9s-ai/smart-indent/indent"
	"github.com/r9s-ai/smart-indent/internal/text"
)

// Braces indents one tab stop per unclosed '{', '(' or '[' and outdents
// lines that start with a closer. Brackets inside quoted strings and after
// '#' or '//' comments are ignored.
type Braces struct {
	TabSize int
}

func (b Braces) tabSize() int {
	if b.TabSize <= 0 {
		return 4
	}
	return b.TabSize
}

// NewLine returns the indentation for the line that starts at position,
// relative to the start of the closest non-blank line above it. The first
// non-blank line of a document is anchored at its own start with no offset.
func (b Braces) NewLine(src *text.Source, position int) (indent.Result, error) {
	cur, err := src.LineFromPosition(position)
	if err != nil {
		return indent.Result{}, err
	}

	prev, ok := previousNonBlank(src, cur.Number)
	if !ok {
		return indent.NewResult(cur.Start, 0), nil
	}

	prevText := src.Text(prev)
	trimmed := strings.TrimLeft(prevText, " \t")
	opens, closes := countBrackets(trimmed)
	delta := countLeadingClosers(trimmed) + opens - closes

	line := []rune(src.Text(cur))
	rest := strings.TrimLeft(string(line[min(position-cur.Start, len(line)):]), " \t")
	delta -= countLeadingClosers(rest)

	width := indent.VisualWidth(indent.LeadingWhitespace(prevText), b.tabSize())
	offset := max(0, width+delta*b.tabSize())
	return indent.NewResult(prev.Start, offset), nil
}

// Levels returns the nesting level of every line. Blank lines report the
// level a line at that point would have.
func Levels(lines []string) []int {
	out := make([]int, len(lines))
	level := 0
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			out[i] = level
			continue
		}
		out[i] = max(0, level-countLeadingClosers(trimmed))

		opens, closes := countBrackets(trimmed)
		level = max(0, level+opens-closes)
	}
	return out
}

func previousNonBlank(src *text.Source, number int) (text.Line, bool) {
	for n := number - 1; n >= 0; n-- {
		ln, err := src.Line(n)
		if err != nil {
			return text.Line{}, false
		}
		if strings.TrimSpace(src.Text(ln)) != "" {
			return ln, true
		}
	}
	return text.Line{}, false
}

func isOpener(ch byte) bool { return ch == '{' || ch == '(' || ch == '[' }

func isCloser(ch byte) bool { return ch == '}' || ch == ')' || ch == ']' }

func countLeadingClosers(line string) int {
	n := 0
	for i := 0; i < len(line); i++ {
		if !isCloser(line[i]) {
			break
		}
		n++
	}
	return n
}

func countBrackets(line string) (opens int, closes int) {
	var quote byte
	for i := 0; i < len(line); i++ {
		ch := line[i]
		if quote != 0 {
			if ch == '\\' && i+1 < len(line) {
				i++
				continue
			}
			if ch == quote {
				quote = 0
			}
			continue
		}
		switch {
		case ch == '"' || ch == '\'' || ch == '`':
			quote = ch
		case ch == '#':
			return opens, closes
		case ch == '/' && i+1 < len(line) && line[i+1] == '/':
			return opens, closes
		case isOpener(ch):
			opens++
		case isCloser(ch):
			closes++
		}
	}
	return opens, closes
}
