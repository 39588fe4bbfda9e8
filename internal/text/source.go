// Package text provides a line-indexed view of a document.
package text

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned for positions outside the document.
var ErrOutOfRange = errors.New("position out of range")

// Line describes one line of a Source. Start and End are absolute positions;
// End excludes the line break.
type Line struct {
	Number int
	Start  int
	End    int
}

// Source is an immutable document split into lines. Positions count runes.
// "\n", "\r\n" and a lone "\r" all end a line.
type Source struct {
	runes  []rune
	starts []int
}

// NewSource indexes text.
func NewSource(text string) *Source {
	runes := []rune(text)
	starts := []int{0}
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '\r':
			if i+1 < len(runes) && runes[i+1] == '\n' {
				i++
			}
			starts = append(starts, i+1)
		case '\n':
			starts = append(starts, i+1)
		}
	}
	return &Source{runes: runes, starts: starts}
}

// Len returns the number of runes in the document.
func (s *Source) Len() int { return len(s.runes) }

// LineCount returns the number of lines. An empty document has one line.
func (s *Source) LineCount() int { return len(s.starts) }

// String returns the document text.
func (s *Source) String() string { return string(s.runes) }

// LineStartOf returns the start position of the line containing position.
func (s *Source) LineStartOf(position int) (int, error) {
	ln, err := s.LineFromPosition(position)
	if err != nil {
		return 0, err
	}
	return ln.Start, nil
}

// LineFromPosition returns the line containing position. The document end
// belongs to the last line.
func (s *Source) LineFromPosition(position int) (Line, error) {
	if position < 0 || position > len(s.runes) {
		return Line{}, fmt.Errorf("%w: %d not in [0, %d]", ErrOutOfRange, position, len(s.runes))
	}
	lo, hi := 0, len(s.starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if s.starts[mid] <= position {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return s.Line(lo)
}

// Line returns line n (zero-based).
func (s *Source) Line(n int) (Line, error) {
	if n < 0 || n >= len(s.starts) {
		return Line{}, fmt.Errorf("%w: line %d not in [0, %d)", ErrOutOfRange, n, len(s.starts))
	}
	start := s.starts[n]
	end := len(s.runes)
	if n+1 < len(s.starts) {
		end = s.starts[n+1]
		if end > start && s.runes[end-1] == '\n' {
			end--
		}
		if end > start && s.runes[end-1] == '\r' {
			end--
		}
	}
	return Line{Number: n, Start: start, End: end}, nil
}

// Text returns the content of ln without its line break.
func (s *Source) Text(ln Line) string {
	return string(s.runes[ln.Start:ln.End])
}

// LineBreak returns the break that ends ln, or "" for the last line.
func (s *Source) LineBreak(ln Line) string {
	if ln.Number+1 >= len(s.starts) {
		return ""
	}
	return string(s.runes[ln.End:s.starts[ln.Number+1]])
}

// Position converts a zero-based line and character into an absolute
// position. Characters past the end of the line are clamped to it.
func (s *Source) Position(line, character int) (int, error) {
	ln, err := s.Line(line)
	if err != nil {
		return 0, err
	}
	if character < 0 {
		return 0, fmt.Errorf("%w: character %d", ErrOutOfRange, character)
	}
	return min(ln.Start+character, ln.End), nil
}
