package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit parkvar settings",
		Long: `Inspect and edit parkvar settings.

Settings live in ~/.parkvar.yaml and can be overridden per-invocation
with PARKVAR_* environment variables or command flags. Run without a
subcommand to print the effective configuration as YAML.`,
		Example: `  parkvar config
  parkvar config get clinvar.rate_limit
  parkvar config set port 9090
  parkvar config set validator.rate_limit 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			val := viper.Get(args[0])
			if val == nil {
				return fmt.Errorf("no setting named %q", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), val)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store one setting in the config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfig(cmd, args[0], args[1])
		},
	})

	return cmd
}

func showConfig(cmd *cobra.Command) error {
	settings := viper.AllSettings()
	if len(settings) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "# no settings stored; defaults apply")
		return nil
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("rendering settings: %w", err)
	}
	if path := viper.ConfigFileUsed(); path != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", path)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}

func setConfig(cmd *cobra.Command, key, raw string) error {
	viper.Set(key, parseConfigValue(raw))

	path := viper.ConfigFileUsed()
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("locating home directory: %w", err)
		}
		path = filepath.Join(home, ".parkvar.yaml")
	}

	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (saved to %s)\n", key, raw, path)
	return nil
}

// parseConfigValue keeps numeric settings (port, rate limits) typed in
// the YAML file instead of quoting everything as strings.
func parseConfigValue(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}
