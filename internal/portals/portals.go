// Package portals maps Florida counties to their official property appraiser
// and building department websites. The table steers search-grounded
// extraction toward government sources.
package portals

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed portals.yaml
var defaultPortals []byte

// County is one county's portal set. Only PropertyAppraiser is required.
type County struct {
	Name              string `yaml:"name" json:"name"`
	PropertyAppraiser string `yaml:"property_appraiser" json:"property_appraiser"`
	TaxSearch         string `yaml:"tax_search,omitempty" json:"tax_search,omitempty"`
	BuildingDept      string `yaml:"building_dept,omitempty" json:"building_dept,omitempty"`
	PermitSearch      string `yaml:"permit_search,omitempty" json:"permit_search,omitempty"`
	Notes             string `yaml:"notes,omitempty" json:"notes,omitempty"`
}

type file struct {
	Counties []County `yaml:"counties"`
}

// Registry looks counties up by name.
type Registry struct {
	byKey map[string]County
	names []string
}

// Default returns the registry built from the embedded table.
func Default() *Registry {
	r, err := Parse(defaultPortals)
	if err != nil {
		panic(fmt.Sprintf("portals: embedded table: %v", err))
	}
	return r
}

// Load reads a registry from a YAML file. An empty path yields the default
// registry.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read portals file: %w", err)
	}
	return Parse(b)
}

// Parse builds a registry from YAML.
func Parse(b []byte) (*Registry, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse portals: %w", err)
	}
	r := &Registry{byKey: make(map[string]County, len(f.Counties))}
	for i, c := range f.Counties {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			return nil, fmt.Errorf("counties[%d]: name must be non-empty", i)
		}
		if c.PropertyAppraiser == "" {
			return nil, fmt.Errorf("counties[%d] %s: property_appraiser must be non-empty", i, c.Name)
		}
		key := countyKey(c.Name)
		if _, dup := r.byKey[key]; dup {
			return nil, fmt.Errorf("duplicate county: %s", c.Name)
		}
		r.byKey[key] = c
		r.names = append(r.names, c.Name)
	}
	sort.Strings(r.names)
	return r, nil
}

var countySuffix = regexp.MustCompile(`(?i)\s+county$`)

// countyKey normalizes "  miami-dade County " to "miami-dade".
func countyKey(name string) string {
	name = countySuffix.ReplaceAllString(strings.TrimSpace(name), "")
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// Lookup returns the portals for county, ignoring case and a trailing
// "County".
func (r *Registry) Lookup(county string) (County, bool) {
	c, ok := r.byKey[countyKey(county)]
	return c, ok
}

// Supported reports whether county has a portal entry.
func (r *Registry) Supported(county string) bool {
	_, ok := r.Lookup(county)
	return ok
}

// Counties returns the supported county names, sorted.
func (r *Registry) Counties() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// SearchInstructions renders the portal list for a prompt. Unknown counties
// get a generic instruction.
func (r *Registry) SearchInstructions(county string) string {
	c, ok := r.Lookup(county)
	if !ok {
		return fmt.Sprintf("Search %s County, Florida government websites for property and permit data.", county)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Search the following official %s County websites:\n\n", county)
	fmt.Fprintf(&b, "1. Property Appraiser: %s\n", c.PropertyAppraiser)
	if c.TaxSearch != "" {
		fmt.Fprintf(&b, "   Tax Search: %s\n", c.TaxSearch)
	}
	if c.BuildingDept != "" {
		fmt.Fprintf(&b, "2. Building Department: %s\n", c.BuildingDept)
	}
	if c.PermitSearch != "" {
		fmt.Fprintf(&b, "   Permit Search: %s\n", c.PermitSearch)
	}
	if c.Notes != "" {
		fmt.Fprintf(&b, "\nNote: %s\n", c.Notes)
	}
	return strings.TrimSpace(b.String())
}
