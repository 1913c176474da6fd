package server

import (
	"net/http"
	"os"
	"time"

	"clues/internal/auth"
	"clues/internal/extract"
	"clues/internal/portals"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps are the components the router serves. A nil Extractor leaves
// POST /api/extract answering 503.
type Deps struct {
	Extractor *extract.Extractor
	Portals   *portals.Registry
	RunsDir   string
	RunsMax   int
	Logger    *zap.Logger
}

// New builds the HTTP router.
func New(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(d.Logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := checkWritable(d.RunsDir); err != nil {
			d.Logger.Warn("runs dir not writable", zap.String("dir", d.RunsDir), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "runs dir not writable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "gemini": d.Extractor != nil})
	})

	// ----- Public schema API -----
	api := r.Group("/api")
	{
		api.GET("/fields", extract.FieldsHandler())
		api.GET("/counties", extract.CountiesHandler(d.Portals))
		api.GET("/schemas", extract.SchemasHandler())
		api.GET("/schemas/:batch", extract.SchemaHandler())
		api.POST("/validate/:batch", extract.ValidateHandler())
	}

	// ----- API gated by X-API-Key or api_key query -----
	gated := r.Group("/api")
	gated.Use(auth.APIKey())
	{
		gated.POST("/extract", extract.Handler(d.Extractor, d.RunsDir, d.RunsMax))
	}
	return r
}

// checkWritable creates dir if needed and proves a file can be written in it.
func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".ready-*")
	if err != nil {
		return err
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	return os.Remove(name)
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
