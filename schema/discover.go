package schema

import (
	"bytes"
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ============================================================================
// AUTO-DISCOVERY: Heuristic column classification
// ============================================================================
// Inspects a header row plus sample rows and produces a Config whose
// Column fields name the actual headers found in the data.
//
// Pipeline:
//   1. Resolve headers onto roles (configured names, aliases, keywords)
//   2. Sample values per column → detect type (numeric, bool, string)
//   3. Check each role's column has a compatible type
//   4. Record samples and cardinality on dimensions
//   5. List every other column as skipped
// ============================================================================

// DiscoverOptions controls discovery behavior.
type DiscoverOptions struct {
	SampleSize int    // Max rows to inspect (0 = all). Default: 1000
	Name       string // Dataset name override
	Source     string // Recorded in DiscoveredFrom
	Base       *Config
}

// DefaultDiscoverOptions returns sensible defaults.
func DefaultDiscoverOptions() DiscoverOptions {
	return DiscoverOptions{
		SampleSize: 1000,
	}
}

// DiscoverFromCSV generates a Config by inspecting CSV data.
func DiscoverFromCSV(data []byte, opts ...DiscoverOptions) (*Config, error) {
	opt := DefaultDiscoverOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.Source == "" {
		opt.Source = "CSV"
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, eris.Wrap(err, "schema: read CSV headers")
	}

	limit := opt.SampleSize
	if limit <= 0 {
		limit = 100000 // safety cap
	}

	var rows [][]string
	for i := 0; i < limit; i++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}
		rows = append(rows, row)
	}

	return Discover(headers, rows, opt)
}

// Discover classifies the columns of a table given its headers and sample rows.
func Discover(headers []string, rows [][]string, opts ...DiscoverOptions) (*Config, error) {
	opt := DefaultDiscoverOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if len(headers) == 0 {
		return nil, eris.New("schema: table has no columns")
	}

	base := Default()
	if opt.Base != nil {
		base = opt.Base.merge(Default())
	}

	mapping, err := base.Resolve(headers)
	if err != nil {
		return nil, err
	}

	if opt.SampleSize > 0 && len(rows) > opt.SampleSize {
		rows = rows[:opt.SampleSize]
	}

	columns := make([]columnAnalysis, len(headers))
	for i, header := range headers {
		columns[i] = analyzeColumn(header, i, rows)
	}

	if err := checkTypes(mapping, columns); err != nil {
		return nil, err
	}

	config := &Config{
		Name:           base.Name,
		Version:        base.Version,
		Description:    base.Description,
		Sites:          base.Sites,
		DiscoveredFrom: opt.Source,
		DiscoveredAt:   time.Now().Format(time.RFC3339),
	}
	if opt.Name != "" {
		config.Name = opt.Name
	}

	used := make(map[int]bool)
	for _, d := range base.Dimensions {
		col := columns[mapping.Index(d.Role)]
		used[col.index] = true
		config.Dimensions = append(config.Dimensions, col.toDimension(d))
	}
	for _, m := range base.Measures {
		col := columns[mapping.Index(m.Role)]
		used[col.index] = true
		config.Measures = append(config.Measures, col.toMeasure(m))
	}

	for _, col := range columns {
		if used[col.index] {
			continue
		}
		reason := "Not used by the dashboard"
		if strings.TrimSpace(col.header) == "" {
			reason = "Unnamed column (likely a row index)"
		}
		config.SkippedColumns = append(config.SkippedColumns, SkippedColumn{
			Column: col.header,
			Reason: reason,
		})
	}

	return config, nil
}

// checkTypes rejects mappings whose measure columns hold non-numeric data.
// Only sampled, non-null values are considered.
func checkTypes(mapping Mapping, columns []columnAnalysis) error {
	payload := columns[mapping.Payload]
	if payload.present > 0 && payload.colType == typeString {
		return eris.Errorf("schema: payload column %q is not numeric", payload.header)
	}
	outcome := columns[mapping.Outcome]
	if outcome.present > 0 && outcome.colType == typeString {
		return eris.Errorf("schema: outcome column %q is not a 0/1 class", outcome.header)
	}
	return nil
}

// ============================================================================
// COLUMN ANALYSIS
// ============================================================================

type columnType int

const (
	typeString columnType = iota
	typeNumeric
	typeBool
)

// Cell values treated as missing, compared lower-cased.
var nullTokens = map[string]bool{"": true, "null": true, "n/a": true, "nan": true, "none": true}

// Cell values that read as a 0/1 flag, compared lower-cased.
var boolTokens = map[string]bool{
	"0": true, "1": true, "0.0": true, "1.0": true,
	"true": true, "false": true, "yes": true, "no": true,
}

type columnAnalysis struct {
	header  string
	index   int
	colType columnType

	present     int // non-null cells
	distinct    int
	sampleVals  []string
	cardinality string
}

// analyzeColumn profiles one column of the sampled rows. Short rows count
// as null cells.
func analyzeColumn(header string, index int, rows [][]string) columnAnalysis {
	col := columnAnalysis{header: header, index: index}

	seen := make(map[string]struct{})
	var values []string
	for _, row := range rows {
		if index >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[index])
		if nullTokens[strings.ToLower(v)] {
			continue
		}
		values = append(values, v)
		seen[v] = struct{}{}
	}

	col.present = len(values)
	col.distinct = len(seen)
	col.sampleVals = collectSamples(seen, 10)
	col.colType = detectType(values)
	col.cardinality = cardinality(col.distinct)
	return col
}

func cardinality(distinct int) string {
	switch {
	case distinct <= 10:
		return "low"
	case distinct <= 100:
		return "medium"
	default:
		return "high"
	}
}

// detectType picks bool when at least 80% of values (rounded up) read as a
// 0/1 flag, then numeric on the same rule, else string.
func detectType(values []string) columnType {
	if len(values) == 0 {
		return typeString
	}

	need := (len(values)*4 + 4) / 5
	var flags, numbers int
	for _, v := range values {
		if boolTokens[strings.ToLower(v)] {
			flags++
		}
		if isNumeric(v) {
			numbers++
		}
	}

	switch {
	case flags >= need:
		return typeBool
	case numbers >= need:
		return typeNumeric
	default:
		return typeString
	}
}

// isNumeric accepts thousands separators ("1,234.56").
func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	return err == nil
}

// collectSamples returns up to limit values in sorted order.
func collectSamples(seen map[string]struct{}, limit int) []string {
	samples := make([]string, 0, len(seen))
	for v := range seen {
		samples = append(samples, v)
	}
	sort.Strings(samples)
	if len(samples) > limit {
		samples = samples[:limit]
	}
	return samples
}

// ============================================================================
// CONVERSION HELPERS
// ============================================================================

func (col *columnAnalysis) toDimension(base DimensionMeta) DimensionMeta {
	d := base
	d.Column = col.header
	d.SampleValues = col.sampleVals
	d.CardinalityHint = col.cardinality
	if d.DisplayName == "" {
		d.DisplayName = toDisplayName(col.header)
	}
	return d
}

func (col *columnAnalysis) toMeasure(base MeasureMeta) MeasureMeta {
	m := base
	m.Column = col.header
	if m.DisplayName == "" {
		m.DisplayName = toDisplayName(col.header)
	}
	return m
}

// ============================================================================
// STRING UTILITIES
// ============================================================================

// toSnakeCase lower-cases s and joins its words with underscores, splitting
// camelCase humps: "Booster Version" and "boosterVersion" both give
// "booster_version".
func toSnakeCase(s string) string {
	var b strings.Builder
	var prev rune
	for _, r := range s {
		switch {
		case r == ' ' || r == '-':
			r = '_'
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
		prev = r
	}

	out := b.String()
	for strings.Contains(out, "__") {
		out = strings.ReplaceAll(out, "__", "_")
	}
	return strings.Trim(out, "_")
}

// toDisplayName turns a key into a label: "booster_version" → "Booster Version".
// Headers that already contain spaces are kept as written.
func toDisplayName(s string) string {
	if strings.Contains(s, " ") {
		return strings.TrimSpace(s)
	}
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' })
	return cases.Title(language.English).String(strings.Join(words, " "))
}
