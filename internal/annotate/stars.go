// Package annotate enriches validated variants with ClinVar consensus
// classifications, star ratings and disease linkage.
package annotate

import "strings"

// StarTable maps canonical ClinVar review status phrases to the 0-4 star
// rating. The table handles exact matches; phrases that drift from the
// canonical wording fall through to ordered substring tiers.
type StarTable map[string]int

// DefaultStarTable returns the canonical review status mapping.
func DefaultStarTable() StarTable {
	return StarTable{
		"practice guideline":                                   4,
		"reviewed by expert panel":                             3,
		"criteria provided, multiple submitters, no conflicts": 2,
		"criteria provided, single submitter":                  1,
		"no assertion criteria provided":                       0,
		"no classification provided":                           0,
	}
}

// Stars derives the star rating for a review status string. Returns nil
// for empty or unrecognized text; unknown wording is not an error.
func (t StarTable) Stars(reviewText string) *int {
	normalized := strings.ToLower(strings.TrimSpace(reviewText))
	if normalized == "" {
		return nil
	}

	if stars, ok := t[normalized]; ok {
		return &stars
	}

	// Substring tiers, first match wins.
	switch {
	case strings.Contains(normalized, "practice guideline"):
		return intPtr(4)
	case strings.Contains(normalized, "expert panel"):
		return intPtr(3)
	case strings.Contains(normalized, "multiple submitters") &&
		strings.Contains(normalized, "no conflicts"):
		return intPtr(2)
	case strings.Contains(normalized, "criteria provided") &&
		strings.Contains(normalized, "single submitter"):
		return intPtr(1)
	case strings.Contains(normalized, "no assertion criteria provided"),
		strings.Contains(normalized, "no classification provided"):
		return intPtr(0)
	}

	return nil
}

func intPtr(v int) *int { return &v }
