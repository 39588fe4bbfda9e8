package indent

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfiguration is returned when the formatting options cannot be
// used to build an indentation string.
var ErrInvalidConfiguration = errors.New("invalid indentation configuration")

// LineLookup maps an absolute document position to the start position of
// the line containing it.
type LineLookup interface {
	LineStartOf(position int) (int, error)
}

// LineLookupFunc adapts an ordinary function to LineLookup.
type LineLookupFunc func(position int) (int, error)

func (f LineLookupFunc) LineStartOf(position int) (int, error) { return f(position) }

// Options controls how a column is rendered.
type Options struct {
	UseTabs bool
	TabSize int
}

// Validate reports whether the options can render a column.
func (o Options) Validate() error {
	if o.TabSize <= 0 {
		return fmt.Errorf("%w: tab size must be positive, got %d", ErrInvalidConfiguration, o.TabSize)
	}
	return nil
}

// TargetColumn resolves r to an absolute column: the base position's column
// within its own line plus the offset. The column counts characters, tabs
// are not expanded, and the result is not clamped. Lookup errors are
// returned as is.
func TargetColumn(r Result, lines LineLookup) (int, error) {
	lineStart, err := lines.LineStartOf(r.BasePosition())
	if err != nil {
		return 0, err
	}
	return r.BasePosition() - lineStart + r.Offset(), nil
}

// String renders the whitespace for r.
func String(r Result, lines LineLookup, opts Options) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}
	column, err := TargetColumn(r, lines)
	if err != nil {
		return "", err
	}
	return CreateString(column, opts)
}

// CreateString renders desired columns of indentation as tabs followed by
// spaces.
//
// Spaces start from the clamped value while the tab count comes from the
// unclamped one, so a negative desired indentation with UseTabs set can
// yield spaces. Callers rely on that arithmetic; keep the two separate.
func CreateString(desired int, opts Options) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}

	tabs := 0
	spaces := max(0, desired)
	if opts.UseTabs {
		tabs = desired / opts.TabSize
		spaces -= tabs * opts.TabSize
	}

	var b strings.Builder
	b.Grow(max(0, tabs) + spaces)
	for i := 0; i < tabs; i++ {
		b.WriteByte('\t')
	}
	for i := 0; i < spaces; i++ {
		b.WriteByte(' ')
	}
	return b.String(), nil
}
