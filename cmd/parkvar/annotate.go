package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAnnotateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "annotate <validated.csv> <output.csv>",
		Short: "Annotate validated variants with ClinVar classifications",
		Long: `Reads a validated variant CSV (must carry a t_hgvs column), looks up
each transcript HGVS in ClinVar, and writes the annotated table with the
consensus classification, review status, star rating and first disease
link. Rows ClinVar does not know stay unannotated; lookup failures are
logged and never abort the batch.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			report, err := newAnnotator(logger).Run(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Printf("Annotated %d of %d variants (%d without ClinVar match, %d skipped), output: %s\n",
				report.Annotated, report.Rows, report.NoMatch, report.Skipped, args[1])
			return nil
		},
	}
}
