package schema

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a schema from a YAML or JSON file. Roles the file leaves out
// fall back to Default().
//
//	name: Launches 2024
//	sites: [CCAFS LC-40, KSC LC-39A]
//	dimensions:
//	  - role: booster_version
//	    column: Booster Version Category
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, eris.Wrapf(err, "schema: read %s", path)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes a schema document. ext selects the format (".json" or
// anything else for YAML).
func Parse(data []byte, ext string) (Config, error) {
	var c Config
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &c); err != nil {
			return Config{}, eris.Wrap(err, "schema: decode json")
		}
	default:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return Config{}, eris.Wrap(err, "schema: decode yaml")
		}
	}

	// A column named in the file is binding.
	for i, d := range c.Dimensions {
		if err := checkRole(d.Role, RoleSite, RoleBooster); err != nil {
			return Config{}, err
		}
		if d.Column != "" {
			c.Dimensions[i].Exact = true
		}
	}
	for i, m := range c.Measures {
		if err := checkRole(m.Role, RolePayload, RoleOutcome); err != nil {
			return Config{}, err
		}
		if m.Column != "" {
			c.Measures[i].Exact = true
		}
	}

	return c.merge(Default()), nil
}

func checkRole(role Role, allowed ...Role) error {
	for _, a := range allowed {
		if role == a {
			return nil
		}
	}
	return eris.Errorf("schema: role %q is not valid here (want one of %v)", role, allowed)
}
