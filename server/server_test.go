package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return New(Deps{RunsDir: filepath.Join(t.TempDir(), "runs"), RunsMax: 5})
}

func serve(r *gin.Engine, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthAndReady(t *testing.T) {
	r := testRouter(t)

	w := serve(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = serve(r, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","gemini":false}`, w.Body.String())
}

func TestReady_RunsDirNotWritable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := filepath.Join(t.TempDir(), "runs")
	if err := os.MkdirAll(dir, 0o555); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })
	if f, err := os.CreateTemp(dir, "x"); err == nil {
		f.Close()
		t.Skip("directory permissions are not enforced for this user")
	}

	w := serve(New(Deps{RunsDir: dir}), http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "runs dir not writable")

	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReady_LeavesNoProbeFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := filepath.Join(t.TempDir(), "runs")
	w := serve(New(Deps{RunsDir: dir}), http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPublicRoutes(t *testing.T) {
	r := testRouter(t)
	for _, target := range []string{"/api/fields", "/api/counties", "/api/schemas", "/api/schemas/neighborhood"} {
		w := serve(r, http.MethodGet, target, "", nil)
		assert.Equal(t, http.StatusOK, w.Code, target)
	}
	w := serve(r, http.MethodPost, "/api/validate/1", `{}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExtractIsGated(t *testing.T) {
	body := `{"address":"1 Main St","county":"Pinellas"}`

	t.Setenv("CLUES_API_KEY", "")
	w := serve(testRouter(t), http.MethodPost, "/api/extract", body, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	t.Setenv("CLUES_API_KEY", "secret")
	w = serve(testRouter(t), http.MethodPost, "/api/extract", body, map[string]string{"X-API-Key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(testRouter(t), http.MethodPost, "/api/extract", body, map[string]string{"X-API-Key": "secret"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
