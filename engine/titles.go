package engine

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Presentational strings. Regenerated on every recompute.

var printer = message.NewPrinter(language.English)

// PieTitle returns the pie chart title for site.
func PieTitle(site SiteSelector) string {
	if site.IsAll() {
		return "Total Success Launches By Site (All Sites)"
	}
	return "Success vs. Failed Launches for site " + string(site)
}

// ScatterTitle returns the scatter chart title for site.
func ScatterTitle(site SiteSelector) string {
	if site.IsAll() {
		return "Correlation between Payload and Success for All Sites (Filtered by Payload Range)"
	}
	return "Correlation between Payload and Success for site " + string(site) + " (Filtered by Payload Range)"
}

// RangeLabel renders a payload range as "1,000 kg - 5,000 kg".
func RangeLabel(rng PayloadRange) string {
	return FormatKg(rng.Low) + " - " + FormatKg(rng.High)
}

// FormatKg formats a mass with thousands separators. Whole numbers carry no
// decimals; infinite bounds render as "-inf"/"inf".
func FormatKg(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "inf kg"
	case math.IsInf(v, -1):
		return "-inf kg"
	case v == math.Trunc(v):
		return printer.Sprintf("%d kg", int64(v))
	default:
		return printer.Sprintf("%.2f kg", v)
	}
}

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	return printer.Sprintf("%d", n)
}
