package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/teamplan/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify teamplan configuration.

Without arguments, displays the effective configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), stores the value in the user config.

Configuration is stored at ~/.config/teamplan/config.yaml.
Project-specific overrides can be placed in .teamplan.yaml, and every key
can be overridden with TEAMPLAN_<SECTION>_<KEY> environment variables.`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch len(args) {
		case 0:
			displayAllConfig(out, env.cfg)
			return nil
		case 1:
			value, err := config.Value(env.cfg, strings.ToLower(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintln(out, formatConfigValue(value))
			return nil
		default:
			key := strings.ToLower(args[0])
			if err := config.SetUserValue(key, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(out, "Set %s = %s in %s\n", key, displayValue(key, args[1]), config.GetUserConfigPath())
			return nil
		}
	},
}

// displayAllConfig prints every key in file order, masking the API key.
func displayAllConfig(out io.Writer, cfg *config.Config) {
	sections := config.AsMap(cfg)
	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		values := sections[name].(map[string]any)
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "%s.%s: %s\n", name, k, formatConfigValue(values[k]))
		}
	}

	fmt.Fprintf(out, "\ncredentials: %s\n", config.GetAPIKeySource(cfg))
	if p := config.GetProjectConfigPath(); p != "" {
		fmt.Fprintf(out, "project config: %s\n", p)
	}
	fmt.Fprintf(out, "user config: %s\n", config.GetUserConfigPath())
}

func formatConfigValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "(not set)"
	case string:
		if x == "" {
			return "(not set)"
		}
		return x
	default:
		return fmt.Sprint(x)
	}
}

func displayValue(key, value string) string {
	if key == "anthropic.api_key" {
		return config.MaskAPIKey(value)
	}
	return value
}
