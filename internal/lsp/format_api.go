package lsp

// FormatOptions controls indentation when re-indenting a whole document.
type FormatOptions struct {
	TabSize      int
	InsertSpaces bool
}

// FormatText re-indents every line of text by bracket nesting depth.
func FormatText(text string, opts FormatOptions) string {
	return formatDocument(text, formattingOptions(opts))
}
