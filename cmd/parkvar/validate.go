package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <input.csv> <output.csv>",
		Short: "Normalize raw variants to HGVS via VariantValidator",
		Long: `Reads a variant CSV (#CHROM, POS, REF, ALT), resolves each row to HGVS
nomenclature restricted to the MANE Select transcript, and writes the
validated table. A transport failure talking to VariantValidator aborts
the batch; a variant the service cannot validate is logged and left with
empty enrichment columns.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			report, err := newValidator(logger).Run(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Printf("Validated %d of %d variants (%d failed), output: %s\n",
				report.Validated, report.Rows, report.Failed, args[1])
			return nil
		},
	}
}
