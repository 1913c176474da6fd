package extract

import (
	"sort"
	"time"

	"clues/internal/gemini"
	"clues/internal/schema"
)

const (
	sourceLabel      = "Gemini 2.0 Search (Tier 3.5)"
	extractionMethod = "google_search_grounding"
)

type FieldMetadata struct {
	ExtractionMethod string  `json:"extractionMethod"`
	BatchExtraction  bool    `json:"batchExtraction"`
	Batch            BatchID `json:"batch,omitempty"`
}

// FieldResult is one extracted field in the valuation field format.
type FieldResult struct {
	Value      any           `json:"value"`
	Source     *string       `json:"source"`
	Tier       float64       `json:"tier"`
	Confidence string        `json:"confidence"`
	Timestamp  time.Time     `json:"timestamp"`
	Metadata   FieldMetadata `json:"metadata"`
}

// BatchOutcome records how one batch fared.
type BatchOutcome struct {
	Batch      BatchID         `json:"batch"`
	Name       string          `json:"name"`
	OK         bool            `json:"ok"`
	Error      string          `json:"error,omitempty"`
	Cached     bool            `json:"cached"`
	DurationMS int64           `json:"duration_ms"`
	NonNull    int             `json:"non_null"`
	Issues     []schema.Issue  `json:"issues,omitempty"`
	Sources    []gemini.Source `json:"sources,omitempty"`
	Usage      *gemini.Usage   `json:"usage,omitempty"`
}

// Report is the outcome of a full extraction.
type Report struct {
	Address   string              `json:"address"`
	Fields    map[int]FieldResult `json:"fields"`
	Batches   []BatchOutcome      `json:"batches"`
	Extracted int                 `json:"extracted"`
	Total     int                 `json:"total"`
}

// MapFields converts merged batch values into field results keyed by field
// id. Keys outside the catalog are dropped.
func MapFields(values schema.Values, now time.Time) map[int]FieldResult {
	out := make(map[int]FieldResult, len(values))
	for key, v := range values {
		id, ok := FieldKeyID(key)
		if !ok {
			continue
		}
		info, ok := catalog[id]
		if !ok {
			continue
		}
		r := FieldResult{
			Value:      v,
			Tier:       Tier,
			Confidence: "Low",
			Timestamp:  now.UTC(),
			Metadata: FieldMetadata{
				ExtractionMethod: extractionMethod,
				BatchExtraction:  true,
				Batch:            info.Batch,
			},
		}
		if v != nil {
			src := sourceLabel
			r.Source = &src
			r.Confidence = "High"
		}
		out[id] = r
	}
	return out
}

// NeedsExtraction reports whether any catalog field is missing, null, or
// came from a weaker tier.
func NeedsExtraction(fields map[int]FieldResult) bool {
	for id := range catalog {
		f, ok := fields[id]
		if !ok || f.Value == nil || f.Tier > Tier {
			return true
		}
	}
	return false
}

func nonNullKeys(values schema.Values) []string {
	var keys []string
	for k, v := range values {
		if v != nil {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
