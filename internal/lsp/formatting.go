package lsp

import (
	"strings"

	"github.com/r9s-ai/smart-indent/indent"
	"github.com/r9s-ai/smart-indent/internal/policy"
	"github.com/r9s-ai/smart-indent/internal/text"
)

// formatDocument re-indents every line and keeps each line's original break.
func formatDocument(doc string, opts formattingOptions) string {
	if doc == "" {
		return ""
	}

	iopts := opts.indentOptions()
	if iopts.TabSize <= 0 {
		iopts.TabSize = 4
	}

	src := text.NewSource(doc)
	lines := make([]text.Line, src.LineCount())
	contents := make([]string, src.LineCount())
	for n := range lines {
		ln, err := src.Line(n)
		if err != nil {
			return doc
		}
		lines[n] = ln
		contents[n] = src.Text(ln)
	}

	levels := policy.Levels(contents)
	var b strings.Builder
	b.Grow(len(doc))
	for i, ln := range lines {
		trimmed := strings.Trim(contents[i], " \t")
		if trimmed != "" {
			prefix, err := indent.CreateString(levels[i]*iopts.TabSize, iopts)
			if err != nil {
				return doc
			}
			b.WriteString(prefix)
			b.WriteString(trimmed)
		}
		b.WriteString(src.LineBreak(ln))
	}
	return b.String()
}

func endPosition(doc string) Position {
	src := text.NewSource(doc)
	ln, err := src.Line(src.LineCount() - 1)
	if err != nil {
		return Position{}
	}
	col := 0
	for _, r := range src.Text(ln) {
		if r > 0xFFFF {
			col += 2
			continue
		}
		col++
	}
	return Position{Line: ln.Number, Character: col}
}
