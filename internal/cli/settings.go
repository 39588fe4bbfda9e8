package cli

import (
	"github.com/spf13/cobra"

	"github.com/r9s-ai/smart-indent/indent"
	"github.com/r9s-ai/smart-indent/internal/config"
)

// indentOptions resolves formatting preferences: explicit flags win over
// the config file, which wins over the defaults. The config file may be
// absent only when --config was not given. Validation runs on the merged
// result.
func indentOptions(cmd *cobra.Command) (indent.Options, error) {
	fs := cmd.Flags()
	path, err := fs.GetString("config")
	if err != nil {
		return indent.Options{}, err
	}
	cfg, err := config.Load(path, !fs.Changed("config"))
	if err != nil {
		return indent.Options{}, err
	}

	if fs.Changed("tab-size") {
		if cfg.TabSize, err = fs.GetInt("tab-size"); err != nil {
			return indent.Options{}, err
		}
	}
	if fs.Changed("tabs") {
		if cfg.UseTabs, err = fs.GetBool("tabs"); err != nil {
			return indent.Options{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return indent.Options{}, err
	}
	return cfg.Options(), nil
}
