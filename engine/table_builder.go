package engine

import (
	"strconv"
)

// ============================================================================
// TABLE BUILDER: Produces TableData from a published artifact
// ============================================================================

// BuildTable produces a TableData for an artifact. Unknown artifact types
// return nil.
func BuildTable(a Artifact) *TableData {
	switch art := a.(type) {
	case PieArtifact:
		return buildPieTable(art)
	case *PieArtifact:
		return buildPieTable(*art)
	case ScatterArtifact:
		return buildScatterTable(art)
	case *ScatterArtifact:
		return buildScatterTable(*art)
	default:
		return nil
	}
}

// ============================================================================
// PIE TABLE: Row per slice
// ============================================================================

func buildPieTable(art PieArtifact) *TableData {
	if art.Mode == PieModeSingle {
		b := OutcomeBuckets{}
		if art.Buckets != nil {
			b = *art.Buckets
		}
		return &TableData{
			Title: art.Title,
			Columns: []Column{
				{Key: "class", Label: "class", Type: "number", Align: "center"},
				{Key: "outcome", Label: "Outcome", Type: "text", Align: "left"},
				{Key: "count", Label: "Count", Type: "number", Align: "right"},
			},
			Rows: [][]string{
				{strconv.Itoa(int(Failure)), LabelForOutcome(Failure), strconv.Itoa(b.Failure)},
				{strconv.Itoa(int(Success)), LabelForOutcome(Success), strconv.Itoa(b.Success)},
			},
			Summary: &Summary{
				Label: "Total",
				Values: map[string]string{
					"count": FormatInt(b.Total()),
				},
			},
		}
	}

	rows := make([][]string, 0, len(art.Order))
	var total int
	for _, site := range art.Order {
		n := art.PerSite[site]
		rows = append(rows, []string{site, strconv.Itoa(n)})
		total += n
	}

	return &TableData{
		Title: art.Title,
		Columns: []Column{
			{Key: "site", Label: "Launch Site", Type: "text", Align: "left"},
			{Key: "successes", Label: "Successes", Type: "number", Align: "right"},
		},
		Rows: rows,
		Summary: &Summary{
			Label: "Total",
			Values: map[string]string{
				"successes": FormatInt(total),
			},
		},
	}
}

// ============================================================================
// SCATTER TABLE: Row per launch
// ============================================================================

func buildScatterTable(art ScatterArtifact) *TableData {
	rows := make([][]string, 0, len(art.Points))
	var successes int
	for _, p := range art.Points {
		rows = append(rows, []string{
			strconv.FormatFloat(p.X, 'f', -1, 64),
			strconv.Itoa(int(p.Y)),
			p.Group,
		})
		successes += int(p.Y)
	}

	return &TableData{
		Title: art.Title,
		Columns: []Column{
			{Key: "payload_mass", Label: "Payload Mass (kg)", Type: "number", Align: "right"},
			{Key: "class", Label: "class", Type: "number", Align: "center"},
			{Key: "booster_version", Label: "Booster Version", Type: "text", Align: "left"},
		},
		Rows: rows,
		Summary: &Summary{
			Label: "Total (" + FormatInt(len(art.Points)) + " launches, " + art.RangeLabel + ")",
			Values: map[string]string{
				"class": FormatInt(successes),
			},
		},
	}
}
