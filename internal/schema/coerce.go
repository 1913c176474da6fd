package schema

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
)

var (
	currencyNoise = regexp.MustCompile(`[$,€£\s]`)
	leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// CoerceCurrency turns a currency-ish value into a float64 or nil.
// Numbers pass through, strings like "$450,000" or "450,000.00" are stripped
// of symbols and separators and parsed from their leading numeric prefix.
// Anything else, including unparseable strings, becomes nil.
func CoerceCurrency(v any) any {
	switch n := v.(type) {
	case string:
		cleaned := currencyNoise.ReplaceAllString(n, "")
		m := leadingNumber.FindString(cleaned)
		if m == "" {
			return nil
		}
		f, err := strconv.ParseFloat(m, 64)
		if err != nil || math.IsInf(f, 0) {
			return nil
		}
		return f
	default:
		if f, ok := toFloat(v); ok {
			return f
		}
		return nil
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case float32:
		return float64(n), !math.IsNaN(float64(n))
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// jsonValue converts v into the plain JSON value space the validator accepts.
func jsonValue(v any) (any, error) {
	switch v.(type) {
	case nil, bool, string, float64:
		return v, nil
	case map[string]any, []any:
		return v, nil
	}
	if f, ok := toFloat(v); ok {
		return f, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
