package annotate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/parkvar/parkvar/internal/variant"
)

// Report summarizes one annotation run. The annotation stage always runs
// to completion; rows that cannot be annotated are counted, not fatal.
type Report struct {
	Rows      int
	Annotated int
	NoMatch   int
	Skipped   int
}

// Runner annotates every row of a validated variant table against ClinVar
// and writes the enriched table back out. Per-row failures are logged and
// skipped; partial writes to a row are kept.
type Runner struct {
	client *ClinVarClient
	stars  StarTable
	logger *zap.Logger
}

// NewRunner creates an annotation runner. A nil stars table selects the
// canonical mapping.
func NewRunner(client *ClinVarClient, stars StarTable) *Runner {
	if stars == nil {
		stars = DefaultStarTable()
	}
	return &Runner{
		client: client,
		stars:  stars,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for warning and info messages.
func (r *Runner) SetLogger(l *zap.Logger) {
	r.logger = l
}

// Run reads the validated table from inputPath, annotates each row, and
// writes the annotated table to outputPath. The input must carry a t_hgvs
// column; that is checked before any network call.
func (r *Runner) Run(ctx context.Context, inputPath, outputPath string) (*Report, error) {
	rows, err := variant.LoadAnnotated(inputPath)
	if err != nil {
		return nil, fmt.Errorf("annotation stage: %w", err)
	}

	r.logger.Info("read validated variants", zap.String("input", inputPath), zap.Int("rows", len(rows)))

	report := &Report{Rows: len(rows)}

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("annotation stage: %w", err)
		}

		if row.THGVS == nil || *row.THGVS == "" {
			report.Skipped++
			r.logger.Warn("row has no transcript HGVS, skipping",
				zap.Int("row", i),
				zap.String("variant", row.Descriptor()))
			continue
		}
		hgvs := *row.THGVS

		uids := r.client.SearchHGVS(ctx, hgvs)
		if len(uids) == 0 {
			report.NoMatch++
			r.logger.Warn("no ClinVar record found",
				zap.Int("row", i),
				zap.String("t_hgvs", hgvs))
			continue
		}

		// First UID wins when the search returns several candidates;
		// see DESIGN.md on disambiguation.
		uid := uids[0]
		row.ClinVarUID = &uid

		summary := r.client.FetchSummary(ctx, uid)
		ann := ExtractClassification(summary, r.stars)
		row.Classification = ann.Classification
		row.ReviewStatus = ann.ReviewStatus
		row.StarRating = ann.StarRating
		row.DiseaseName = ann.DiseaseName
		row.DiseaseMIM = ann.DiseaseMIM
		report.Annotated++
	}

	if err := variant.WriteCSV(outputPath, rows); err != nil {
		return report, fmt.Errorf("annotation stage: %w", err)
	}

	r.logger.Info("variant annotation complete",
		zap.String("output", outputPath),
		zap.Int("annotated", report.Annotated),
		zap.Int("no_match", report.NoMatch),
		zap.Int("skipped", report.Skipped))
	return report, nil
}
