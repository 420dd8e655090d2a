package engine

// ============================================================================
// FILTERS: Site + Payload Range Filtering via RecordView
// ============================================================================
// Single-pass filter: checks both predicates per record in one loop.
// Returns a SubView (index list into parent), zero data copy.
// ============================================================================

// Filter returns the records with rng.Low <= PayloadMass <= rng.High and,
// unless site is AllSites, Site == site. Both bounds are inclusive.
// An inverted range yields an empty view.
func Filter(view RecordView, site SiteSelector, rng PayloadRange) RecordView {
	if rng.IsInverted() {
		return newSubView(view, nil)
	}

	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		r := view.At(i)
		if !rng.Contains(r.PayloadMass) {
			continue
		}
		if !site.IsAll() && r.Site != string(site) {
			continue
		}
		indices = append(indices, i)
	}

	return newSubView(view, indices)
}
