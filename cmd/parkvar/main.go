// Package main provides the parkvar command-line tool.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/parkvar/parkvar/internal/annotate"
	"github.com/parkvar/parkvar/internal/validate"
	"github.com/parkvar/parkvar/internal/variant"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "parkvar",
		Short: "Validate and annotate patient genomic variants",
		Long: `parkvar runs patient variant CSVs through a two-stage pipeline:
VariantValidator normalizes raw coordinates into HGVS nomenclature, and
ClinVar supplies consensus classifications, star ratings and disease links.`,
		Example: `  # Validate a raw variant CSV
  parkvar validate input.csv validated.csv

  # Annotate a validated CSV against ClinVar
  parkvar annotate validated.csv annotated.csv

  # Start the web interface
  parkvar serve --port 8080`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cfgFile)
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.parkvar.yaml)")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	_ = viper.BindPFlag("debug", cmd.PersistentFlags().Lookup("debug"))

	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newAnnotateCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

func initConfig(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigName(".parkvar")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("PARKVAR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("genome_build", variant.GenomeBuild)
	viper.SetDefault("data_dir", "data")
	viper.SetDefault("port", 8080)
	viper.SetDefault("validator.base_url", validate.DefaultBaseURL)
	viper.SetDefault("validator.rate_limit", validate.DefaultRateLimit)
	viper.SetDefault("clinvar.base_url", annotate.DefaultEutilsBase)
	viper.SetDefault("clinvar.rate_limit", annotate.DefaultRateLimit)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

func newLogger() (*zap.Logger, error) {
	if viper.GetBool("debug") {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newValidator(logger *zap.Logger) *validate.Runner {
	client := validate.NewClient(
		viper.GetString("validator.base_url"),
		viper.GetString("genome_build"),
		viper.GetFloat64("validator.rate_limit"))
	client.SetLogger(logger)

	runner := validate.NewRunner(client)
	runner.SetLogger(logger)
	return runner
}

func newAnnotator(logger *zap.Logger) *annotate.Runner {
	client := annotate.NewClinVarClient(
		viper.GetString("clinvar.base_url"),
		viper.GetFloat64("clinvar.rate_limit"))
	client.SetLogger(logger)

	runner := annotate.NewRunner(client, nil)
	runner.SetLogger(logger)
	return runner
}
