package extract

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clues/internal/portals"
	"clues/internal/schema"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(ex *Extractor, runsDir string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/extract", Handler(ex, runsDir, 10))
	r.GET("/api/fields", FieldsHandler())
	r.GET("/api/counties", CountiesHandler(portals.Default()))
	r.GET("/api/schemas", SchemasHandler())
	r.GET("/api/schemas/:batch", SchemaHandler())
	r.POST("/api/validate/:batch", ValidateHandler())
	return r
}

func do(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_Extract(t *testing.T) {
	runsDir := t.TempDir()
	ex := newTestExtractor(newFakeGenerator(allValid()), "")
	r := newTestRouter(ex, runsDir)

	w := do(r, http.MethodPost, "/api/extract", `{"address":"1 Main St","county":"Pinellas"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		RunID     string                     `json:"run_id"`
		Address   string                     `json:"address"`
		Extracted int                        `json:"extracted"`
		Fields    map[string]json.RawMessage `json:"fields"`
		Batches   []BatchOutcome             `json:"batches"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.RunID, "run_"))
	assert.Equal(t, "1 Main St, Pinellas County, Florida", resp.Address)
	assert.Equal(t, 16, resp.Extracted)
	assert.Len(t, resp.Fields, 20)
	assert.Contains(t, string(resp.Fields["37"]), `"source":"Gemini 2.0 Search (Tier 3.5)"`)
	assert.Len(t, resp.Batches, 3)

	for _, name := range []string{"request.json", "report.json"} {
		_, err := os.Stat(filepath.Join(runsDir, resp.RunID, name))
		assert.NoError(t, err, name)
	}
	_, err := os.Stat(filepath.Join(runsDir, "index.json"))
	assert.NoError(t, err)
}

func TestHandler_ExtractErrors(t *testing.T) {
	tests := []struct {
		name string
		ex   *Extractor
		body string
		want int
	}{
		{name: "not configured", ex: nil, body: `{"address":"1 Main St","county":"Pinellas"}`, want: http.StatusServiceUnavailable},
		{name: "invalid json", ex: newTestExtractor(newFakeGenerator(allValid()), ""), body: `{`, want: http.StatusBadRequest},
		{name: "missing county", ex: newTestExtractor(newFakeGenerator(allValid()), ""), body: `{"address":"1 Main St"}`, want: http.StatusBadRequest},
		{name: "blank address", ex: newTestExtractor(newFakeGenerator(allValid()), ""), body: `{"address":"   ","county":"Pinellas"}`, want: http.StatusBadRequest},
		{name: "address too long", ex: newTestExtractor(newFakeGenerator(allValid()), ""), body: `{"address":"` + strings.Repeat("a", 301) + `","county":"Pinellas"}`, want: http.StatusBadRequest},
		{name: "body too large", ex: newTestExtractor(newFakeGenerator(allValid()), ""), body: `{"address":"` + strings.Repeat("a", 20*1024) + `","county":"Pinellas"}`, want: http.StatusRequestEntityTooLarge},
		{name: "all batches fail", ex: newTestExtractor(newFakeGenerator(map[string]reply{}), ""), body: `{"address":"1 Main St","county":"Pinellas"}`, want: http.StatusBadGateway},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			runsDir := t.TempDir()
			w := do(newTestRouter(tc.ex, runsDir), http.MethodPost, "/api/extract", tc.body)
			assert.Equal(t, tc.want, w.Code, w.Body.String())

			entries, err := os.ReadDir(runsDir)
			require.NoError(t, err)
			assert.Empty(t, entries, "failed runs must not leave artifacts")
		})
	}
}

func TestHandler_FieldsAndCounties(t *testing.T) {
	r := newTestRouter(nil, t.TempDir())

	w := do(r, http.MethodGet, "/api/fields", "")
	require.Equal(t, http.StatusOK, w.Code)
	var fields struct {
		Tier   float64     `json:"tier"`
		Fields []FieldInfo `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fields))
	assert.Equal(t, 3.5, fields.Tier)
	assert.Len(t, fields.Fields, 20)

	w = do(r, http.MethodGet, "/api/counties", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Miami-Dade")
}

func TestHandler_Schemas(t *testing.T) {
	r := newTestRouter(nil, t.TempDir())

	w := do(r, http.MethodGet, "/api/schemas", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"public_records"`)

	w = do(r, http.MethodGet, "/api/schemas/portals", "")
	require.Equal(t, http.StatusOK, w.Code)
	var gem map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &gem))
	assert.Equal(t, "OBJECT", gem["type"])
	assert.Len(t, gem["required"], 6)

	w = do(r, http.MethodGet, "/api/schemas/1?format=json", "")
	require.Equal(t, http.StatusOK, w.Code)
	var js map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &js))
	assert.Equal(t, "object", js["type"])

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/schemas/1?format=xml", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/schemas/zillow", "").Code)
}

func TestHandler_Validate(t *testing.T) {
	r := newTestRouter(nil, t.TempDir())

	w := do(r, http.MethodPost, "/api/validate/portals", portalJSON)
	require.Equal(t, http.StatusOK, w.Code)
	var ok schema.ParseResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ok))
	assert.True(t, ok.Success)
	assert.Equal(t, 520000.0, ok.Data["16_avms"])

	w = do(r, http.MethodPost, "/api/validate/neighborhood", `{"75_transit_score":500}`)
	require.Equal(t, http.StatusOK, w.Code)
	var bad schema.ParseResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bad))
	assert.False(t, bad.Success)
	assert.NotEmpty(t, bad.Issues)

	w = do(r, http.MethodPost, "/api/validate/portals", `not json`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "invalid JSON")

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, "/api/validate/zillow", "{}").Code)
}
