// Package dataset loads the launch table from a tabular source into a frozen,
// validated, in-memory Dataset.
package dataset

import (
	"context"
	"errors"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/spektr-org/launchboard/engine"
	"github.com/spektr-org/launchboard/schema"
)

// Dataset is the immutable launch table. It satisfies engine.Table.
// Safe for concurrent reads; there is no mutation API.
type Dataset struct {
	source  string
	records []engine.Record
	min     float64
	max     float64
	sites   []string
	siteSet map[string]struct{}
}

// Summary describes a loaded dataset.
type Summary struct {
	Source     string   `json:"source" yaml:"source"`
	Records    int      `json:"records" yaml:"records"`
	Successes  int      `json:"successes" yaml:"successes"`
	Sites      []string `json:"sites" yaml:"sites"`
	MinPayload float64  `json:"minPayload" yaml:"minPayload"`
	MaxPayload float64  `json:"maxPayload" yaml:"maxPayload"`
}

// New validates records and freezes them into a Dataset. When sites is
// non-empty it is the fixed site enumeration and every record must use one
// of its values; otherwise sites are collected in first-seen order.
func New(records []engine.Record, sites []string) (*Dataset, error) {
	return build("memory", records, sites, nil)
}

func build(source string, records []engine.Record, sites []string, rowOf func(int) int) (*Dataset, error) {
	d := &Dataset{
		source:  source,
		records: records,
		siteSet: make(map[string]struct{}),
	}
	if rowOf == nil {
		rowOf = func(i int) int { return i + 1 }
	}

	fixed := len(sites) > 0
	for _, s := range sites {
		s = strings.TrimSpace(s)
		if _, dup := d.siteSet[s]; dup || s == "" {
			continue
		}
		d.siteSet[s] = struct{}{}
		d.sites = append(d.sites, s)
	}

	for i, r := range records {
		if r.Site == "" {
			return nil, &LoadError{Source: source, Row: rowOf(i), Err: ErrEmptySite}
		}
		if math.IsNaN(r.PayloadMass) || math.IsInf(r.PayloadMass, 0) || r.PayloadMass < 0 {
			return nil, &LoadError{Source: source, Row: rowOf(i), Err: ErrInvalidPayload}
		}
		if r.Outcome != engine.Failure && r.Outcome != engine.Success {
			return nil, &LoadError{Source: source, Row: rowOf(i), Err: ErrInvalidOutcome}
		}
		if _, ok := d.siteSet[r.Site]; !ok {
			if fixed {
				return nil, &LoadError{Source: source, Row: rowOf(i), Value: r.Site, Err: ErrUnknownSite}
			}
			d.siteSet[r.Site] = struct{}{}
			d.sites = append(d.sites, r.Site)
		}
	}

	d.min, d.max = engine.PayloadBounds(engine.NewSliceView(records))
	return d, nil
}

func (d *Dataset) Len() int { return len(d.records) }

func (d *Dataset) At(i int) engine.Record {
	if i < 0 || i >= len(d.records) {
		return engine.Record{}
	}
	return d.records[i]
}

// MinPayload is the smallest payload mass, 0 for an empty dataset.
func (d *Dataset) MinPayload() float64 { return d.min }

// MaxPayload is the largest payload mass, 0 for an empty dataset.
func (d *Dataset) MaxPayload() float64 { return d.max }

// Sites returns the site enumeration.
func (d *Dataset) Sites() []string {
	return append([]string(nil), d.sites...)
}

// HasSite reports whether site belongs to the enumeration.
func (d *Dataset) HasSite(site string) bool {
	_, ok := d.siteSet[site]
	return ok
}

// Source names where the records came from.
func (d *Dataset) Source() string { return d.source }

// Records returns a copy of every record in source order.
func (d *Dataset) Records() []engine.Record {
	return append([]engine.Record(nil), d.records...)
}

// Summary reports counts and bounds.
func (d *Dataset) Summary() Summary {
	return Summary{
		Source:     d.source,
		Records:    len(d.records),
		Successes:  engine.SumOutcome(d),
		Sites:      d.Sites(),
		MinPayload: d.min,
		MaxPayload: d.max,
	}
}

// ============================================================================
// LOAD
// ============================================================================

// Option configures Load.
type Option func(*loadConfig)

type loadConfig struct {
	logger *zap.Logger
}

// WithLogger sets the logger. Defaults to zap.L().
func WithLogger(l *zap.Logger) Option {
	return func(c *loadConfig) { c.logger = l }
}

// Load reads src, maps its columns through sch and validates every row.
// Any failure is a *LoadError.
func Load(ctx context.Context, src Source, sch schema.Config, opts ...Option) (*Dataset, error) {
	cfg := &loadConfig{}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.L()
	}

	table, err := src.Read(ctx)
	if err != nil {
		return nil, &LoadError{Source: src.Name(), Err: err}
	}

	mapping, err := sch.Resolve(table.Headers)
	if err != nil {
		return nil, &LoadError{Source: src.Name(), Err: err}
	}

	records, lines, err := parseRows(src.Name(), table, mapping)
	if err != nil {
		return nil, err
	}

	d, err := build(src.Name(), records, sch.Sites, func(i int) int { return lines[i] })
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) && errors.Is(le.Err, ErrUnknownSite) {
			le.Column = mapping.Header(schema.RoleSite)
		}
		return nil, err
	}

	cfg.logger.Info("dataset loaded",
		zap.String("source", src.Name()),
		zap.Int("records", d.Len()),
		zap.Strings("sites", d.sites),
		zap.Float64("min_payload", d.min),
		zap.Float64("max_payload", d.max),
	)
	return d, nil
}

// parseRows converts raw rows to records. Blank rows are skipped. lines maps
// each record to its source line.
func parseRows(source string, table *RawTable, m schema.Mapping) ([]engine.Record, []int, error) {
	records := make([]engine.Record, 0, len(table.Rows))
	lines := make([]int, 0, len(table.Rows))

	cell := func(row []string, i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	for i, row := range table.Rows {
		line := i + 2
		if isBlank(row) {
			continue
		}

		site := cell(row, m.Site)
		if site == "" {
			return nil, nil, &LoadError{Source: source, Row: line, Column: m.Header(schema.RoleSite), Err: ErrEmptySite}
		}

		raw := cell(row, m.Payload)
		mass, err := ParsePayload(raw)
		if err != nil {
			return nil, nil, &LoadError{Source: source, Row: line, Column: m.Header(schema.RolePayload), Value: raw, Err: err}
		}

		raw = cell(row, m.Outcome)
		outcome, err := ParseOutcome(raw)
		if err != nil {
			return nil, nil, &LoadError{Source: source, Row: line, Column: m.Header(schema.RoleOutcome), Value: raw, Err: err}
		}

		records = append(records, engine.Record{
			Site:           site,
			PayloadMass:    mass,
			Outcome:        outcome,
			BoosterVersion: cell(row, m.Booster),
		})
		lines = append(lines, line)
	}
	return records, lines, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
