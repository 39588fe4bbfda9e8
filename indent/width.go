package indent

// VisualWidth returns the number of columns s occupies when it starts at
// column zero and every tab advances to the next multiple of tabSize.
func VisualWidth(s string, tabSize int) int {
	if tabSize < 1 {
		tabSize = 1
	}
	col := 0
	for _, r := range s {
		if r == '\t' {
			col += tabSize - col%tabSize
			continue
		}
		col++
	}
	return col
}

// LeadingWhitespace returns the run of spaces and tabs that starts s.
func LeadingWhitespace(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' && s[i] != '\t' {
			return s[:i]
		}
	}
	return s
}
