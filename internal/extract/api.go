package extract

import (
	"io"
	"net/http"

	"clues/internal/config"
	"clues/internal/httputil"
	"clues/internal/portals"

	"github.com/gin-gonic/gin"
)

type schemaSummary struct {
	Batch  BatchID  `json:"batch"`
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
}

// FieldsHandler handles GET /api/fields.
func FieldsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"tier": Tier, "fields": Fields()})
	}
}

// SchemasHandler handles GET /api/schemas.
func SchemasHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		out := make([]schemaSummary, 0, len(batches))
		for _, b := range batches {
			out = append(out, schemaSummary{Batch: b.ID, Name: b.Name, Fields: b.Schema.Keys()})
		}
		c.JSON(http.StatusOK, gin.H{"schemas": out})
	}
}

// SchemaHandler handles GET /api/schemas/:batch?format=gemini|json.
func SchemaHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		b, ok := LookupBatch(c.Param("batch"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown batch"})
			return
		}
		switch c.DefaultQuery("format", "gemini") {
		case "gemini":
			c.JSON(http.StatusOK, b.Schema.Gemini())
		case "json":
			c.JSON(http.StatusOK, b.Schema.JSONSchema())
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "format must be gemini or json"})
		}
	}
}

// ValidateHandler handles POST /api/validate/:batch. The body is the raw
// model answer; the response is the parse result.
func ValidateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		b, ok := LookupBatch(c.Param("batch"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown batch"})
			return
		}
		httputil.LimitBody(c, config.MaxValidateBodyBytes)
		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			if httputil.IsBodyTooLarge(err) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
			return
		}
		c.JSON(http.StatusOK, b.Schema.SafeParseJSON(raw))
	}
}

// CountiesHandler handles GET /api/counties.
func CountiesHandler(reg *portals.Registry) gin.HandlerFunc {
	if reg == nil {
		reg = portals.Default()
	}
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"counties": reg.Counties()})
	}
}
