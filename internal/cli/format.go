package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/r9s-ai/smart-indent/internal/lsp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type formatOptions struct {
	write bool
}

func newFormatCmd(opts Options) *cobra.Command {
	var formatOpts formatOptions
	cmd := &cobra.Command{
		Use:   "format [file...|-]",
		Short: "Re-indent documents by bracket nesting",
		RunE: func(cmd *cobra.Command, args []string) error {
			iopts, err := indentOptions(cmd)
			if err != nil {
				return err
			}
			fopts := lsp.FormatOptions{
				TabSize:      iopts.TabSize,
				InsertSpaces: !iopts.UseTabs,
			}

			paths := normalizePaths(args)
			if formatOpts.write {
				for _, path := range paths {
					if path == "-" {
						return errors.New("--write requires a file path")
					}
				}
			}

			results := make([]string, len(paths))
			var g errgroup.Group
			for i, path := range paths {
				i, path := i, path
				g.Go(func() error {
					src, err := readFormatSource(path, opts.Stdin)
					if err != nil {
						return err
					}
					formatted := lsp.FormatText(string(src), fopts)
					if formatOpts.write {
						return writeFormattedOutput(path, src, formatted)
					}
					results[i] = formatted
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			if formatOpts.write {
				return nil
			}
			for _, formatted := range results {
				if _, err := io.WriteString(opts.Stdout, formatted); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&formatOpts.write, "write", "w", false, "write result back to file")
	return cmd
}

func normalizePaths(args []string) []string {
	if len(args) == 0 {
		return []string{"-"}
	}
	paths := make([]string, 0, len(args))
	stdin := false
	for _, arg := range args {
		path := strings.TrimSpace(arg)
		if path == "" {
			path = "-"
		}
		if path == "-" {
			if stdin {
				continue
			}
			stdin = true
		}
		paths = append(paths, path)
	}
	return paths
}

func readFormatSource(path string, in io.Reader) ([]byte, error) {
	if path == "-" {
		src, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return src, nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %q: %w", path, err)
	}
	return src, nil
}

func writeFormattedOutput(path string, src []byte, formatted string) error {
	if formatted == string(src) {
		return nil
	}
	mode := os.FileMode(0o644)
	if st, statErr := os.Stat(path); statErr == nil {
		mode = st.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(formatted), mode); err != nil {
		return fmt.Errorf("write file %q: %w", path, err)
	}
	return nil
}
