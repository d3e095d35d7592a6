package validate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/parkvar/parkvar/internal/variant"
)

// Status of a finished validation run. Completed is reached even when
// individual rows failed validation; only a transport failure aborts.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusAborted   Status = "aborted_on_transport_error"
)

// Report summarizes one validation run.
type Report struct {
	Status    Status
	Rows      int
	Validated int
	Failed    int
}

// Runner validates every row of a variant table against VariantValidator
// and writes the enriched table back out. Rows are processed strictly in
// order; pacing between calls is handled by the client.
type Runner struct {
	client *Client
	logger *zap.Logger
}

// NewRunner creates a validation runner using the given client.
func NewRunner(client *Client) *Runner {
	return &Runner{
		client: client,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for warning and info messages.
func (r *Runner) SetLogger(l *zap.Logger) {
	r.logger = l
}

// Run reads the raw table from inputPath, validates each row, and writes
// the validated table to outputPath. A transport failure aborts the whole
// batch; a row the service cannot validate is logged and left with nil
// enrichment fields.
func (r *Runner) Run(ctx context.Context, inputPath, outputPath string) (*Report, error) {
	rows, err := variant.LoadRecords(inputPath)
	if err != nil {
		return nil, fmt.Errorf("validation stage: %w", err)
	}

	r.logger.Info("read variants", zap.String("input", inputPath), zap.Int("rows", len(rows)))

	report := &Report{Rows: len(rows)}

	for i, row := range rows {
		row.GenomeBuild = variant.GenomeBuild

		res, err := r.client.Normalize(ctx, row.Chrom, row.Pos, row.Ref, row.Alt)
		if err != nil {
			report.Status = StatusAborted
			return report, fmt.Errorf("validation aborted at row %d (%s): %w", i, row.Descriptor(), err)
		}

		if !res.OK() {
			report.Failed++
			r.logger.Warn("variant could not be validated",
				zap.Int("row", i),
				zap.String("variant", row.Descriptor()),
				zap.String("reason", res.FailureReason))
			continue
		}

		row.GHGVS = &res.GHGVS
		row.THGVS = &res.THGVS
		row.HGNCID = &res.HGNCID
		row.Symbol = &res.Symbol
		row.PHGVSTLC = &res.PHGVSTLC
		report.Validated++
	}

	if err := variant.WriteCSV(outputPath, rows); err != nil {
		return report, fmt.Errorf("validation stage: %w", err)
	}

	report.Status = StatusCompleted
	r.logger.Info("variant validation complete",
		zap.String("output", outputPath),
		zap.Int("validated", report.Validated),
		zap.Int("failed", report.Failed))
	return report, nil
}
