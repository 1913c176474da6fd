package extract

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"clues/internal/config"
	"clues/internal/httputil"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ExtractRequest is the JSON body for POST /api/extract.
type ExtractRequest struct {
	Address string `json:"address" binding:"required"`
	County  string `json:"county" binding:"required"`
}

// ExtractResponse is the JSON response for POST /api/extract.
type ExtractResponse struct {
	RunID string `json:"run_id"`
	*Report
}

// Handler handles POST /api/extract. Expects the API key middleware to have
// run first. A nil extractor means Gemini is not configured.
func Handler(ex *Extractor, runsDir string, maxRuns int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ex == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "gemini not configured"})
			return
		}
		log := ex.logger

		httputil.LimitBody(c, config.MaxExtractBodyBytes)
		var req ExtractRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			if httputil.IsBodyTooLarge(err) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "address and county are required"})
			return
		}
		req.Address = strings.TrimSpace(req.Address)
		req.County = strings.TrimSpace(req.County)
		if req.Address == "" || CountyName(req.County) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "address and county must be non-empty"})
			return
		}
		if len(req.Address) > config.MaxAddressLength {
			c.JSON(http.StatusBadRequest, gin.H{"error": "address too long"})
			return
		}

		runID, runPath, err := createRunDir(runsDir)
		if err != nil {
			log.Error("create run dir", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create run directory"})
			return
		}
		cleanupRun := true
		defer func() {
			if cleanupRun {
				_ = os.RemoveAll(runPath)
			}
		}()

		if err := saveJSON(filepath.Join(runPath, "request.json"), req); err != nil {
			log.Error("save request", zap.String("run_id", runID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save run files"})
			return
		}

		report, err := ex.Run(c.Request.Context(), req.Address, req.County)
		switch {
		case errors.Is(err, ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		case errors.Is(err, ErrNoBatchSucceeded):
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "batches": report.Batches})
			return
		case err != nil:
			log.Error("extract", zap.String("run_id", runID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "extraction failed"})
			return
		}

		if err := saveJSON(filepath.Join(runPath, "report.json"), report); err != nil {
			log.Error("save report", zap.String("run_id", runID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist run report"})
			return
		}

		cleanupRun = false
		if err := updateRunsIndex(runsDir, config.RunsIndexLimit(), RunIndexEntry{
			RunID:     runID,
			Address:   report.Address,
			Extracted: report.Extracted,
			Total:     report.Total,
			Timestamp: time.Now().Unix(),
		}); err != nil {
			log.Warn("runs index update", zap.Error(err))
		}
		if err := pruneRuns(runsDir, maxRuns); err != nil {
			log.Warn("prune runs", zap.Error(err))
		}

		c.JSON(http.StatusOK, ExtractResponse{RunID: runID, Report: report})
	}
}
