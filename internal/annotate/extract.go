package annotate

import "strings"

// omimSource is the trait cross-reference authority whose id is carried
// into the output table.
const omimSource = "OMIM"

// Annotation holds the fields extracted from one ClinVar record. All
// fields are nil when the record carries no usable data.
type Annotation struct {
	Classification *string
	ReviewStatus   *string
	StarRating     *int
	DiseaseName    *string
	DiseaseMIM     *string
}

// ExtractClassification pulls the consensus classification, review status,
// star rating and first disease linkage out of an esummary record. The
// germline classification object is preferred; records that predate it
// fall back to the legacy clinical significance object.
func ExtractClassification(s Summary, stars StarTable) Annotation {
	clin := s.GermlineClassification
	if clin == nil || clin.isEmpty() {
		clin = s.ClinicalSignificance
	}
	if clin == nil {
		return Annotation{}
	}

	var ann Annotation
	if clin.Description != "" {
		ann.Classification = strPtr(clin.Description)
	}
	if clin.ReviewStatus != "" {
		ann.ReviewStatus = strPtr(clin.ReviewStatus)
		ann.StarRating = stars.Stars(clin.ReviewStatus)
	}

	if len(clin.TraitSet) == 0 {
		return ann
	}

	// First listed trait wins; see DESIGN.md on disambiguation.
	trait := clin.TraitSet[0]
	if trait.TraitName != "" {
		ann.DiseaseName = strPtr(trait.TraitName)
	}
	for _, xref := range trait.TraitXRefs {
		if strings.EqualFold(xref.DBSource, omimSource) {
			ann.DiseaseMIM = strPtr(xref.DBID)
			break
		}
	}

	return ann
}

func strPtr(s string) *string { return &s }
