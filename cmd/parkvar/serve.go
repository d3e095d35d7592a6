package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/parkvar/parkvar/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the parkVar web interface",
		Long: `Serves the upload / annotate / filter workflow in a browser. Uploaded
CSVs are tagged with a patient ID derived from the filename and combined
into one working table; annotation runs both pipeline stages and the
result can be filtered by patient.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			app := server.New(server.Config{
				DataDir:   viper.GetString("data_dir"),
				Validator: newValidator(logger),
				Annotator: newAnnotator(logger),
				Logger:    logger,
			})

			addr := fmt.Sprintf(":%d", viper.GetInt("port"))
			logger.Info("starting parkVar web interface")
			fmt.Printf("parkVar listening on %s\n", addr)
			return app.Start(addr)
		},
	}

	cmd.Flags().Int("port", 8080, "HTTP port")
	_ = viper.BindPFlag("port", cmd.Flags().Lookup("port"))
	cmd.Flags().String("data-dir", "data", "session data directory")
	_ = viper.BindPFlag("data_dir", cmd.Flags().Lookup("data-dir"))

	return cmd
}
