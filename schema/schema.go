package schema

// ============================================================================
// SCHEMA: Describes how a launch table's columns map onto Record fields
// ============================================================================
// Built from Default(), loaded from a YAML/JSON file, or discovered from the
// data. The dataset loader uses it to resolve headers into column indices.
// ============================================================================

// Role is the Record field a column feeds.
type Role string

const (
	RoleSite    Role = "site"
	RolePayload Role = "payload_mass"
	RoleOutcome Role = "outcome"
	RoleBooster Role = "booster_version"
)

// Roles lists every role in column order of the reference dataset.
var Roles = []Role{RoleSite, RolePayload, RoleOutcome, RoleBooster}

// Config describes the complete shape of a launch dataset.
type Config struct {
	Name        string `json:"name" yaml:"name"`
	Version     string `json:"version,omitempty" yaml:"version,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	Dimensions []DimensionMeta `json:"dimensions" yaml:"dimensions"`
	Measures   []MeasureMeta   `json:"measures" yaml:"measures"`

	// Optional fixed site enumeration. Empty means sites are taken from the data.
	Sites []string `json:"sites,omitempty" yaml:"sites,omitempty"`

	// Auto-discovery metadata
	DiscoveredFrom string `json:"discoveredFrom,omitempty" yaml:"discoveredFrom,omitempty"`
	DiscoveredAt   string `json:"discoveredAt,omitempty" yaml:"discoveredAt,omitempty"`

	// Columns skipped during auto-discovery
	SkippedColumns []SkippedColumn `json:"skippedColumns,omitempty" yaml:"skippedColumns,omitempty"`
}

// DimensionMeta describes a string column: the launch site or booster version.
type DimensionMeta struct {
	Key             string   `json:"key" yaml:"key"`
	Role            Role     `json:"role" yaml:"role"`
	Column          string   `json:"column" yaml:"column"`                       // header as it appears in the source
	Aliases         []string `json:"aliases,omitempty" yaml:"aliases,omitempty"` // other accepted headers
	Exact           bool     `json:"exact,omitempty" yaml:"exact,omitempty"`     // no keyword fallback when Column and Aliases miss
	DisplayName     string   `json:"displayName" yaml:"displayName"`
	Description     string   `json:"description,omitempty" yaml:"description,omitempty"`
	SampleValues    []string `json:"sampleValues,omitempty" yaml:"sampleValues,omitempty"`
	CardinalityHint string   `json:"cardinalityHint,omitempty" yaml:"cardinalityHint,omitempty"` // "low", "medium", "high"
}

// MeasureMeta describes a numeric column: payload mass or outcome class.
type MeasureMeta struct {
	Key         string   `json:"key" yaml:"key"`
	Role        Role     `json:"role" yaml:"role"`
	Column      string   `json:"column" yaml:"column"`
	Aliases     []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Exact       bool     `json:"exact,omitempty" yaml:"exact,omitempty"`
	DisplayName string   `json:"displayName" yaml:"displayName"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Unit        string   `json:"unit,omitempty" yaml:"unit,omitempty"` // "kg", "class"
}

// SkippedColumn records why a column was excluded during auto-discovery.
type SkippedColumn struct {
	Column string `json:"column" yaml:"column"`
	Reason string `json:"reason" yaml:"reason"`
}

// Default returns the mapping for the reference launch CSV:
// Launch Site, Payload Mass (kg), class, Booster Version.
func Default() Config {
	return Config{
		Name:        "SpaceX Launch Records",
		Version:     "1.0",
		Description: "One row per launch: site, payload mass, outcome class and booster version",
		Dimensions: []DimensionMeta{
			{
				Key:         "launch_site",
				Role:        RoleSite,
				Column:      "Launch Site",
				Aliases:     []string{"site", "launch_site", "launchsite"},
				DisplayName: "Launch Site",
			},
			{
				Key:         "booster_version",
				Role:        RoleBooster,
				Column:      "Booster Version",
				Aliases:     []string{"booster", "booster_version", "boosterversion"},
				DisplayName: "Booster Version",
			},
		},
		Measures: []MeasureMeta{
			{
				Key:         "payload_mass_kg",
				Role:        RolePayload,
				Column:      "Payload Mass (kg)",
				Aliases:     []string{"payload_mass", "payload", "payloadmass", "payload_mass_kg"},
				DisplayName: "Payload Mass (kg)",
				Unit:        "kg",
			},
			{
				Key:         "class",
				Role:        RoleOutcome,
				Column:      "class",
				Aliases:     []string{"outcome", "success", "landing_class"},
				DisplayName: "class",
				Unit:        "class",
			},
		},
	}
}

// DimensionKeys returns all dimension keys.
func (c Config) DimensionKeys() []string {
	keys := make([]string, len(c.Dimensions))
	for i, d := range c.Dimensions {
		keys[i] = d.Key
	}
	return keys
}

// MeasureKeys returns all measure keys.
func (c Config) MeasureKeys() []string {
	keys := make([]string, len(c.Measures))
	for i, m := range c.Measures {
		keys[i] = m.Key
	}
	return keys
}

// Column returns the configured header and aliases for a role.
func (c Config) Column(role Role) (string, []string, bool) {
	for _, d := range c.Dimensions {
		if d.Role == role {
			return d.Column, d.Aliases, true
		}
	}
	for _, m := range c.Measures {
		if m.Role == role {
			return m.Column, m.Aliases, true
		}
	}
	return "", nil, false
}

// exact reports whether role must match its configured Column or Aliases.
func (c Config) exact(role Role) bool {
	for _, d := range c.Dimensions {
		if d.Role == role {
			return d.Exact
		}
	}
	for _, m := range c.Measures {
		if m.Role == role {
			return m.Exact
		}
	}
	return false
}

// WithBoosterColumn returns a copy of c grouping scatter points by column,
// e.g. "Booster Version Category". A source without that column fails to
// resolve.
func (c Config) WithBoosterColumn(column string) Config {
	out := c
	out.Dimensions = make([]DimensionMeta, len(c.Dimensions))
	copy(out.Dimensions, c.Dimensions)
	for i := range out.Dimensions {
		if out.Dimensions[i].Role == RoleBooster {
			out.Dimensions[i].Column = column
			out.Dimensions[i].Key = toSnakeCase(column)
			out.Dimensions[i].DisplayName = toDisplayName(column)
			out.Dimensions[i].Aliases = nil
			out.Dimensions[i].Exact = true
		}
	}
	return out
}

// merge fills roles missing from c with the entries from base.
func (c Config) merge(base Config) Config {
	out := c
	if out.Name == "" {
		out.Name = base.Name
	}
	for _, d := range base.Dimensions {
		if _, _, ok := out.Column(d.Role); !ok {
			out.Dimensions = append(out.Dimensions, d)
		}
	}
	for _, m := range base.Measures {
		if _, _, ok := out.Column(m.Role); !ok {
			out.Measures = append(out.Measures, m)
		}
	}
	return out
}
