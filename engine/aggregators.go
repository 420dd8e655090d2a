package engine

import (
	"math"
	"strings"
)

// ============================================================================
// AGGREGATORS: Grouping and Outcome Aggregation via RecordView
// ============================================================================
// All functions operate on RecordView for zero-copy access to any data source.
// Grouping produces SubViews (index lists into parent view).
// ============================================================================

// Aggregate builds the pie artifact for rows.
//
// ALL: successes per site, in first-seen site order. Sites whose total is
// zero are omitted since a zero-valued slice cannot render.
// Single site: failure and success counts among rows, both always present,
// with DefaultOutcomeColors. Callers pass rows already narrowed to the site.
func Aggregate(rows RecordView, site SiteSelector) PieArtifact {
	if site.IsAll() {
		return aggregateBySite(rows)
	}
	return aggregateOutcomes(rows, string(site))
}

func aggregateBySite(rows RecordView) PieArtifact {
	groups := GroupBySite(rows)

	art := PieArtifact{
		Mode:    PieModeAll,
		Title:   PieTitle(AllSites),
		PerSite: make(map[string]int, len(groups)),
		Order:   make([]string, 0, len(groups)),
	}
	for _, g := range groups {
		if g.Value == 0 {
			continue
		}
		art.PerSite[g.Key] = int(g.Value)
		art.Order = append(art.Order, g.Key)
	}
	return art
}

func aggregateOutcomes(rows RecordView, site string) PieArtifact {
	buckets := CountOutcomes(rows)
	colors := DefaultOutcomeColors
	return PieArtifact{
		Mode:    PieModeSingle,
		Title:   PieTitle(SiteSelector(site)),
		Site:    site,
		Buckets: &buckets,
		Colors:  &colors,
	}
}

// ============================================================================
// GROUPING
// ============================================================================

// GroupBySite groups rows by launch site in first-seen order. Each group's
// Value is the summed outcome and Count the number of launches.
func GroupBySite(view RecordView) []Group {
	return groupBy(view, func(r Record) string { return r.Site })
}

// GroupByBooster groups rows by booster version in first-seen order.
func GroupByBooster(view RecordView) []Group {
	return groupBy(view, func(r Record) string { return r.BoosterVersion })
}

func groupBy(view RecordView, key func(Record) string) []Group {
	grouped := make(map[string][]int)
	order := make([]string, 0)

	for i := 0; i < view.Len(); i++ {
		k := key(view.At(i))
		if _, exists := grouped[k]; !exists {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], i)
	}

	groups := make([]Group, 0, len(order))
	for _, k := range order {
		sub := newSubView(view, grouped[k])
		groups = append(groups, Group{
			Key:   k,
			Label: k,
			Value: float64(SumOutcome(sub)),
			Count: sub.Len(),
			View:  sub,
		})
	}
	return groups
}

// ============================================================================
// AGGREGATION
// ============================================================================

// SumOutcome adds up the outcome value (0 or 1) of every record.
func SumOutcome(view RecordView) int {
	var total int
	for i := 0; i < view.Len(); i++ {
		total += int(view.At(i).Outcome)
	}
	return total
}

// CountOutcomes partitions the view by outcome value.
func CountOutcomes(view RecordView) OutcomeBuckets {
	var b OutcomeBuckets
	for i := 0; i < view.Len(); i++ {
		if view.At(i).Outcome == Success {
			b.Success++
		} else {
			b.Failure++
		}
	}
	return b
}

// PayloadBounds returns the smallest and largest payload in view, or 0, 0
// for an empty view.
func PayloadBounds(view RecordView) (float64, float64) {
	n := view.Len()
	if n == 0 {
		return 0, 0
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := 0; i < n; i++ {
		m := view.At(i).PayloadMass
		if m < lo {
			lo = m
		}
		if m > hi {
			hi = m
		}
	}
	return lo, hi
}

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================

// RoundTo2 rounds to 2 decimal places.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SuccessRate returns successes/launches as a percentage rounded to 2 places.
func SuccessRate(successes, launches int) float64 {
	if launches == 0 {
		return 0
	}
	return RoundTo2(float64(successes) / float64(launches) * 100)
}

// LabelForOutcome returns the slice label used for an outcome bucket.
func LabelForOutcome(o Outcome) string {
	return strings.ToUpper(o.String()[:1]) + o.String()[1:]
}
