package schema

import (
	"sort"
	"strings"
	"unicode"
)

// ============================================================================
// RESOLVE: Header → column index mapping
// ============================================================================
// Matching order per role:
//   1. configured Column, normalized
//   2. configured Aliases, normalized
//   3. keyword fallback (every keyword present in the normalized header),
//      skipped for roles marked Exact
// Each header is claimed by at most one role.
// ============================================================================

// Mapping holds the column index of each role.
type Mapping struct {
	Site    int      `json:"site"`
	Payload int      `json:"payloadMass"`
	Outcome int      `json:"outcome"`
	Booster int      `json:"boosterVersion"`
	Headers []string `json:"headers"`
}

// Index returns the column index for role, -1 if unknown.
func (m Mapping) Index(role Role) int {
	switch role {
	case RoleSite:
		return m.Site
	case RolePayload:
		return m.Payload
	case RoleOutcome:
		return m.Outcome
	case RoleBooster:
		return m.Booster
	default:
		return -1
	}
}

// Header returns the source header for role.
func (m Mapping) Header(role Role) string {
	i := m.Index(role)
	if i < 0 || i >= len(m.Headers) {
		return ""
	}
	return m.Headers[i]
}

// MissingColumnsError lists roles no header could be matched to.
type MissingColumnsError struct {
	Roles   []Role
	Headers []string
}

func (e *MissingColumnsError) Error() string {
	names := make([]string, len(e.Roles))
	for i, r := range e.Roles {
		names[i] = string(r)
	}
	return "missing required columns: " + strings.Join(names, ", ") +
		" (have: " + strings.Join(e.Headers, ", ") + ")"
}

// keywords is the last-resort match per role.
var keywords = map[Role][][]string{
	RoleSite:    {{"site"}},
	RolePayload: {{"payload"}, {"mass"}},
	RoleOutcome: {{"class"}, {"outcome"}, {"success"}},
	RoleBooster: {{"booster", "version"}, {"booster"}},
}

// Resolve maps headers onto the four roles. It fails with a
// *MissingColumnsError naming every unmatched role.
func (c Config) Resolve(headers []string) (Mapping, error) {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = Normalize(h)
	}

	claimed := make(map[int]bool)
	found := make(map[Role]int)

	find := func(role Role, match func(h string) bool) {
		if _, ok := found[role]; ok {
			return
		}
		for i, h := range normalized {
			if !claimed[i] && match(h) {
				found[role] = i
				claimed[i] = true
				return
			}
		}
	}

	// Pass 1+2: exact configured names for every role before any fuzzy match.
	for _, role := range Roles {
		column, _, _ := c.Column(role)
		if column != "" {
			want := Normalize(column)
			find(role, func(h string) bool { return h == want })
		}
	}
	for _, role := range Roles {
		_, aliases, _ := c.Column(role)
		for _, a := range aliases {
			want := Normalize(a)
			find(role, func(h string) bool { return h == want })
		}
	}
	// Pass 3: keywords.
	for _, role := range Roles {
		if c.exact(role) {
			continue
		}
		for _, set := range keywords[role] {
			find(role, func(h string) bool { return containsAll(h, set) })
		}
	}

	var missing []Role
	for _, role := range Roles {
		if _, ok := found[role]; !ok {
			missing = append(missing, role)
		}
	}
	if len(missing) > 0 {
		return Mapping{}, &MissingColumnsError{Roles: missing, Headers: headers}
	}

	return Mapping{
		Site:    found[RoleSite],
		Payload: found[RolePayload],
		Outcome: found[RoleOutcome],
		Booster: found[RoleBooster],
		Headers: headers,
	}, nil
}

// Normalize reduces a header to lowercase snake case with punctuation
// removed: "Payload Mass (kg)" → "payload_mass_kg".
func Normalize(header string) string {
	s := toSnakeCase(strings.TrimSpace(strings.TrimPrefix(header, "\ufeff")))
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	s = b.String()
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return strings.Trim(s, "_")
}

func containsAll(header string, words []string) bool {
	parts := strings.Split(header, "_")
	sort.Strings(parts)
	for _, w := range words {
		i := sort.SearchStrings(parts, w)
		if i >= len(parts) || parts[i] != w {
			return false
		}
	}
	return true
}
