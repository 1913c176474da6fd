package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func testObject() *Object {
	return NewObject("listing",
		Currency("12_market_value", 10000, 50000000, "Market value"),
		String("33_hoa_includes", "What the HOA covers"),
		Year("60_roof_permit", "Roof permit year"),
		Enum("151_homestead", "Homestead active", "Yes", "No"),
	)
}

func validDoc() map[string]any {
	return map[string]any{
		"12_market_value": "$450,000",
		"33_hoa_includes": "Pool, Trash",
		"60_roof_permit":  "2021",
		"151_homestead":   "Yes",
	}
}

func issuePaths(issues []Issue) []string {
	out := make([]string, 0, len(issues))
	for _, is := range issues {
		out = append(out, is.Path)
	}
	return out
}

func TestCoerceCurrency(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{name: "number", in: 450000.0, want: 450000.0},
		{name: "int", in: 12, want: 12.0},
		{name: "dollar string", in: "$450,000", want: 450000.0},
		{name: "plain string", in: "450000", want: 450000.0},
		{name: "decimals", in: "450,000.00", want: 450000.0},
		{name: "euro with spaces", in: "€ 1 250", want: 1250.0},
		{name: "leading prefix", in: "1.85%", want: 1.85},
		{name: "unparseable", in: "N/A", want: nil},
		{name: "empty", in: "", want: nil},
		{name: "bool", in: true, want: nil},
		{name: "nil", in: nil, want: nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CoerceCurrency(tc.in))
		})
	}
}

func TestParse_CoercesAndStripsUnknownKeys(t *testing.T) {
	doc := validDoc()
	doc["extra"] = "ignored"

	vals, err := testObject().Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, 450000.0, vals["12_market_value"])
	assert.Equal(t, "2021", vals["60_roof_permit"])
	assert.NotContains(t, vals, "extra")
	assert.Len(t, vals, 4)
}

func TestParse_NullsAreAccepted(t *testing.T) {
	doc := map[string]any{
		"12_market_value": nil,
		"33_hoa_includes": nil,
		"60_roof_permit":  nil,
		"151_homestead":   nil,
	}
	vals, err := testObject().Parse(doc)
	require.NoError(t, err)
	for k, v := range vals {
		assert.Nil(t, v, k)
	}
}

func TestParse_UnparseableCurrencyBecomesNull(t *testing.T) {
	doc := validDoc()
	doc["12_market_value"] = "Estimate Not Available"
	vals, err := testObject().Parse(doc)
	require.NoError(t, err)
	assert.Nil(t, vals["12_market_value"])
}

func TestParse_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{name: "below minimum", key: "12_market_value", value: "$5,000"},
		{name: "above maximum", key: "12_market_value", value: 60000000},
		{name: "bad year", key: "60_roof_permit", value: "21"},
		{name: "year as number", key: "60_roof_permit", value: 2021},
		{name: "not in enum", key: "151_homestead", value: "Maybe"},
		{name: "string type", key: "33_hoa_includes", value: 12},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc := validDoc()
			doc[tc.key] = tc.value
			_, err := testObject().Parse(doc)
			require.Error(t, err)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, "listing", ve.Schema)
			assert.Contains(t, issuePaths(ve.Issues), tc.key)
		})
	}
}

func TestParse_MissingKeyIsRequired(t *testing.T) {
	doc := validDoc()
	delete(doc, "60_roof_permit")
	_, err := testObject().Parse(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "60_roof_permit")

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, []Issue{{Path: "60_roof_permit", Message: "required"}}, ve.Issues)
}

func TestParse_MissingKeysSplitPerField(t *testing.T) {
	res := testObject().SafeParse(map[string]any{})
	assert.False(t, res.Success)
	assert.Equal(t, []string{"151_homestead", "33_hoa_includes", "60_roof_permit"}, issuePaths(res.Issues))
}

func TestParse_MissingCurrencyBecomesNull(t *testing.T) {
	doc := validDoc()
	delete(doc, "12_market_value")
	vals, err := testObject().Parse(doc)
	require.NoError(t, err)
	require.Contains(t, vals, "12_market_value")
	assert.Nil(t, vals["12_market_value"])
}

func TestParse_RejectsNonObject(t *testing.T) {
	res := testObject().SafeParse([]any{1, 2})
	assert.False(t, res.Success)
	require.Len(t, res.Issues, 1)
	assert.Contains(t, res.Issues[0].Message, "expected object")
}

func TestParseJSON(t *testing.T) {
	vals, err := testObject().ParseJSON([]byte(`{"12_market_value": 510000, "33_hoa_includes": null, "60_roof_permit": "2019", "151_homestead": "No"}`))
	require.NoError(t, err)
	assert.Equal(t, 510000.0, vals["12_market_value"])

	_, err = testObject().ParseJSON([]byte(`{"12_market_value":`))
	require.Error(t, err)
}

func TestSafeParse(t *testing.T) {
	ok := testObject().SafeParse(validDoc())
	assert.True(t, ok.Success)
	assert.Empty(t, ok.Issues)

	doc := validDoc()
	doc["151_homestead"] = "maybe"
	bad := testObject().SafeParse(doc)
	assert.False(t, bad.Success)
	assert.Nil(t, bad.Data)
	assert.NotEmpty(t, bad.Issues)
}

func TestSafeParseJSON(t *testing.T) {
	ok := testObject().SafeParseJSON([]byte(`{"12_market_value": "$510,000", "33_hoa_includes": null, "60_roof_permit": null, "151_homestead": null}`))
	assert.True(t, ok.Success)
	assert.Equal(t, 510000.0, ok.Data["12_market_value"])

	bad := testObject().SafeParseJSON([]byte(`{"a":1} {"b":2}`))
	assert.False(t, bad.Success)
	require.Len(t, bad.Issues, 1)
	assert.Equal(t, "trailing data after JSON value", bad.Issues[0].Message)
}

func TestNewObject_PanicsOnDuplicateKey(t *testing.T) {
	assert.Panics(t, func() {
		NewObject("dup", String("a", ""), Number("a", ""))
	})
}

func TestGemini_ConvertsEveryField(t *testing.T) {
	g := testObject().Gemini()

	assert.Equal(t, genai.TypeObject, g.Type)
	assert.Equal(t, []string{"12_market_value", "33_hoa_includes", "60_roof_permit", "151_homestead"}, g.Required)
	assert.Equal(t, g.Required, g.PropertyOrdering)
	require.Len(t, g.Properties, 4)

	mv := g.Properties["12_market_value"]
	assert.Equal(t, genai.TypeNumber, mv.Type)
	require.NotNil(t, mv.Minimum)
	require.NotNil(t, mv.Maximum)
	assert.Equal(t, 10000.0, *mv.Minimum)
	assert.Equal(t, 50000000.0, *mv.Maximum)
	assert.Equal(t, "Market value", mv.Description)

	roof := g.Properties["60_roof_permit"]
	assert.Equal(t, genai.TypeString, roof.Type)
	assert.Equal(t, `^\d{4}$`, roof.Pattern)

	hs := g.Properties["151_homestead"]
	assert.Equal(t, genai.TypeString, hs.Type)
	assert.Equal(t, []string{"Yes", "No"}, hs.Enum)

	for key, p := range g.Properties {
		require.NotNil(t, p.Nullable, key)
		assert.True(t, *p.Nullable, key)
	}
}

func TestJSONSchema_MatchesFields(t *testing.T) {
	js := testObject().JSONSchema()
	assert.Equal(t, "object", js["type"])
	props := js["properties"].(map[string]any)
	require.Len(t, props, 4)

	hs := props["151_homestead"].(map[string]any)
	assert.Equal(t, []any{"Yes", "No", nil}, hs["enum"])
	mv := props["12_market_value"].(map[string]any)
	assert.Equal(t, []any{"number", "null"}, mv["type"])
	assert.Equal(t, 10000.0, mv["minimum"])
}

func TestDecode(t *testing.T) {
	var out struct {
		MarketValue *float64 `json:"12_market_value"`
		RoofPermit  *string  `json:"60_roof_permit"`
	}
	vals, err := testObject().Parse(validDoc())
	require.NoError(t, err)
	require.NoError(t, Decode(vals, &out))
	require.NotNil(t, out.MarketValue)
	assert.Equal(t, 450000.0, *out.MarketValue)
	require.NotNil(t, out.RoofPermit)
	assert.Equal(t, "2021", *out.RoofPermit)
}
