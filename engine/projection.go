package engine

// Project maps each record to a scatter point, preserving input order.
// No sorting, deduplication or binning; Group is a label for the renderer.
func Project(rows RecordView) []ScatterPoint {
	points := make([]ScatterPoint, rows.Len())
	for i := range points {
		r := rows.At(i)
		points[i] = ScatterPoint{X: r.PayloadMass, Y: r.Outcome, Group: r.BoosterVersion}
	}
	return points
}

// NewScatterArtifact wraps projected points with the titles for site and rng.
func NewScatterArtifact(site SiteSelector, rng PayloadRange, points []ScatterPoint) ScatterArtifact {
	if points == nil {
		points = []ScatterPoint{}
	}
	return ScatterArtifact{
		Title:      ScatterTitle(site),
		Site:       site,
		Range:      rng,
		RangeLabel: RangeLabel(rng),
		Points:     points,
	}
}
