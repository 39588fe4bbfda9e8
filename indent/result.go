// Package indent turns a relative indentation decision into the literal
// whitespace to insert at the start of a line.
package indent

// Result says where an indent should be placed. It is expressed as a
// position in the existing document plus the number of columns past that
// position's column.
//
// The base position may sit on any line, so a provider can describe "four
// columns past the first token of the previous line" or "eight columns from
// the start of the current line" without converting between the two.
type Result struct {
	basePosition int
	offset       int
}

// NewResult pairs a base position with a column offset. Neither value is
// validated; a bad base position is reported by the line lookup later.
func NewResult(basePosition, offset int) Result {
	return Result{basePosition: basePosition, offset: offset}
}

// BasePosition is the absolute document position the indent is relative to.
func (r Result) BasePosition() int { return r.basePosition }

// Offset is the number of columns to add to the base position's column. It
// may be negative.
func (r Result) Offset() int { return r.offset }
