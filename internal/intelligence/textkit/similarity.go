package textkit

// Similarity computes the Jaccard similarity of the normalised token sets of
// two text fragments: |A ∩ B| / |A ∪ B|, in [0, 1].  The metric is symmetric
// by construction.  Identical normalised strings score 1.0; when either side
// normalises to the empty set the score is 0.0, no-match rather than an
// error.  The metric is deliberately cheap and explainable: every equivalence
// decision must be defensible in human-readable terms for audit purposes.
func Similarity(a, b string) float64 {
	return JaccardSets(Normalize(a), Normalize(b))
}

// JaccardSets computes the Jaccard index of two pre-normalised token sets.
// Callers that compare one text against many should normalise once and use
// this form directly.
func JaccardSets(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	// Iterate the smaller set.
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	intersection := 0
	for tok := range small {
		if _, ok := large[tok]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
