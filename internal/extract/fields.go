package extract

import (
	"sort"
	"strconv"
	"strings"
)

// Tier is the position of Gemini search extraction in the field source
// hierarchy. Fields from a higher tier are considered weaker and may be
// replaced by this one.
const Tier = 3.5

// FieldInfo describes one extractable field.
type FieldInfo struct {
	ID    int     `json:"id"`
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Batch BatchID `json:"batch"`
}

var fieldLabels = map[int]string{
	37:  "Tax Rate",
	38:  "Exemptions",
	60:  "Roof Permit Year",
	61:  "HVAC Permit Year",
	62:  "Other Permit Year",
	151: "Homestead Status",
	152: "CDD Exists",
	153: "CDD Fee",

	75:  "Transit Score",
	76:  "Bike Score",
	91:  "Median Home Price (ZIP)",
	95:  "Days on Market (ZIP)",
	116: "Emergency Room Distance",
	159: "Water Body Name",

	12:  "Market Value Estimate",
	16:  "Redfin Estimate",
	31:  "HOA Fee Annual",
	33:  "HOA Includes",
	98:  "Rental Estimate",
	131: "View Type",
}

var catalog = buildCatalog()

func buildCatalog() map[int]FieldInfo {
	out := make(map[int]FieldInfo, len(fieldLabels))
	for _, b := range batches {
		for _, key := range b.Schema.Keys() {
			id, ok := FieldKeyID(key)
			if !ok {
				panic("extract: field key without numeric id: " + key)
			}
			out[id] = FieldInfo{ID: id, Key: key, Label: fieldLabels[id], Batch: b.ID}
		}
	}
	return out
}

// FieldKeyID extracts the numeric field id from a key like "37_tax_rate".
func FieldKeyID(key string) (int, bool) {
	prefix, _, _ := strings.Cut(key, "_")
	id, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Fields returns the catalog sorted by field id.
func Fields() []FieldInfo {
	out := make([]FieldInfo, 0, len(catalog))
	for _, f := range catalog {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FieldIDs returns every extractable field id, sorted.
func FieldIDs() []int {
	fs := Fields()
	ids := make([]int, len(fs))
	for i, f := range fs {
		ids[i] = f.ID
	}
	return ids
}

// LookupField returns catalog information for id.
func LookupField(id int) (FieldInfo, bool) {
	f, ok := catalog[id]
	return f, ok
}
