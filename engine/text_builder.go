package engine

import (
	"fmt"
)

// ============================================================================
// TEXT BUILDER: Plain-language summaries of published artifacts
// ============================================================================

// BuildText summarizes an artifact. Unknown artifact types return nil.
func BuildText(a Artifact) *TextData {
	switch art := a.(type) {
	case PieArtifact:
		return buildPieText(art)
	case *PieArtifact:
		return buildPieText(*art)
	case ScatterArtifact:
		return buildScatterText(art)
	case *ScatterArtifact:
		return buildScatterText(*art)
	default:
		return nil
	}
}

func buildPieText(art PieArtifact) *TextData {
	if art.Mode == PieModeSingle {
		b := OutcomeBuckets{}
		if art.Buckets != nil {
			b = *art.Buckets
		}
		rate := SuccessRate(b.Success, b.Total())
		return &TextData{
			Headline: fmt.Sprintf("%s: %s successful and %s failed launches (%.1f%% success rate).",
				art.Site, FormatInt(b.Success), FormatInt(b.Failure), rate),
			Launches:    b.Total(),
			Successes:   b.Success,
			SuccessRate: rate,
		}
	}

	var total int
	for _, n := range art.PerSite {
		total += n
	}

	data := &TextData{
		Headline:  fmt.Sprintf("%s successful launches across %d sites.", FormatInt(total), len(art.Order)),
		Successes: total,
	}
	for _, site := range art.Order {
		n := art.PerSite[site]
		share := SuccessRate(n, total)
		data.Lines = append(data.Lines, fmt.Sprintf("%s: %s (%.1f%% of successes)", site, FormatInt(n), share))
	}
	return data
}

func buildScatterText(art ScatterArtifact) *TextData {
	var successes int
	for _, p := range art.Points {
		successes += int(p.Y)
	}
	launches := len(art.Points)
	rate := SuccessRate(successes, launches)

	scope := "all sites"
	if !art.Site.IsAll() {
		scope = string(art.Site)
	}

	data := &TextData{
		Headline: fmt.Sprintf("%s launches from %s with payload %s, %s successful (%.1f%%).",
			FormatInt(launches), scope, art.RangeLabel, FormatInt(successes), rate),
		Launches:    launches,
		Successes:   successes,
		SuccessRate: rate,
	}

	if launches == 0 {
		return data
	}

	for _, g := range GroupByBooster(pointsView(art.Points)) {
		data.Lines = append(data.Lines, fmt.Sprintf("%s: %d/%d successful", g.Label, int(g.Value), g.Count))
	}
	return data
}
