package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/r9s-ai/smart-indent/indent"
	"github.com/r9s-ai/smart-indent/internal/text"
)

var (
	tabGlyph   = color.New(color.FgHiBlue)
	spaceGlyph = color.New(color.FgHiBlack)
)

func newIndentCmd(opts Options) *cobra.Command {
	var show bool
	cmd := &cobra.Command{
		Use:   "indent <column>",
		Short: "Print the whitespace for an absolute column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			column, err := strconv.Atoi(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("invalid column %q: %w", args[0], err)
			}
			iopts, err := indentOptions(cmd)
			if err != nil {
				return err
			}
			s, err := indent.CreateString(column, iopts)
			if err != nil {
				return err
			}
			return printIndent(opts.Stdout, s, show)
		},
	}
	cmd.Flags().BoolVar(&show, "show", false, "render tabs and spaces visibly")
	return cmd
}

type atOptions struct {
	position int
	offset   int
	show     bool
	explain  bool
}

func newAtCmd(opts Options) *cobra.Command {
	var atOpts atOptions
	cmd := &cobra.Command{
		Use:   "at [file|-]",
		Short: "Print the whitespace for a column relative to a document position",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			iopts, err := indentOptions(cmd)
			if err != nil {
				return err
			}
			path := normalizePaths(args)[0]
			data, err := readFormatSource(path, opts.Stdin)
			if err != nil {
				return err
			}

			src := text.NewSource(string(data))
			result := indent.NewResult(atOpts.position, atOpts.offset)
			s, err := indent.String(result, src, iopts)
			if err != nil {
				return fmt.Errorf("position %d: %w", atOpts.position, err)
			}
			if atOpts.explain {
				return explain(opts.Stdout, src, result, s)
			}
			return printIndent(opts.Stdout, s, atOpts.show)
		},
	}

	fs := cmd.Flags()
	fs.IntVarP(&atOpts.position, "position", "p", 0, "zero-based base position in the document")
	fs.IntVarP(&atOpts.offset, "offset", "o", 0, "columns past the base position's column")
	fs.BoolVar(&atOpts.show, "show", false, "render tabs and spaces visibly")
	fs.BoolVar(&atOpts.explain, "explain", false, "print how the column was resolved")
	return cmd
}

func explain(w io.Writer, src *text.Source, result indent.Result, s string) error {
	ln, err := src.LineFromPosition(result.BasePosition())
	if err != nil {
		return err
	}
	target, err := indent.TargetColumn(result, src)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w,
		"base_position=%d line=%d line_start=%d anchor_column=%d offset=%d target_column=%d indent=%q\n",
		result.BasePosition(),
		ln.Number,
		ln.Start,
		result.BasePosition()-ln.Start,
		result.Offset(),
		target,
		s,
	)
	return err
}

func printIndent(w io.Writer, s string, show bool) error {
	if !show {
		_, err := io.WriteString(w, s)
		return err
	}
	_, err := fmt.Fprintf(w, "%s|\n", showWhitespace(s))
	return err
}

func showWhitespace(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\t':
			b.WriteString(tabGlyph.Sprint("→"))
		case ' ':
			b.WriteString(spaceGlyph.Sprint("·"))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
