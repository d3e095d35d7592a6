// Package variant defines the working variant table shared by the
// validation and annotation stages.
package variant

import "fmt"

// GenomeBuild is the reference assembly used for all lookups.
const GenomeBuild = "GRCh38"

// Record is one row of the working table. The four coordinate fields are
// immutable once loaded; the enrichment fields start nil and are written
// by the validation stage.
type Record struct {
	PatientID   string `csv:"Patient_ID"`
	Chrom       string `csv:"#CHROM"`
	Pos         int64  `csv:"POS"`
	Ref         string `csv:"REF"`
	Alt         string `csv:"ALT"`
	GenomeBuild string `csv:"genome_build"`

	GHGVS    *string `csv:"g_hgvs,omitempty"`
	THGVS    *string `csv:"t_hgvs,omitempty"`
	HGNCID   *string `csv:"hgnc_id,omitempty"`
	Symbol   *string `csv:"symbol,omitempty"`
	PHGVSTLC *string `csv:"p_hgvs_tlc,omitempty"`
}

// Descriptor returns the chrom-pos-ref-alt string used to address the
// variant in external services.
func (r *Record) Descriptor() string {
	return fmt.Sprintf("%s-%d-%s-%s", r.Chrom, r.Pos, r.Ref, r.Alt)
}

// Annotated is a validated Record plus the fields written by the
// annotation stage.
type Annotated struct {
	Record

	ClinVarUID     *string `csv:"clinvar_uid,omitempty"`
	Classification *string `csv:"classification,omitempty"`
	ReviewStatus   *string `csv:"review_status_text,omitempty"`
	StarRating     *int    `csv:"star_rating,omitempty"`
	DiseaseName    *string `csv:"disease_name,omitempty"`
	DiseaseMIM     *string `csv:"disease_mim,omitempty"`
}
