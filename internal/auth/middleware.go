package auth

import (
	"crypto/subtle"
	"net/http"

	"clues/internal/config"

	"github.com/gin-gonic/gin"
)

// APIKey checks the request for a valid API key (header or query).
// Expects X-API-Key header or api_key query param to match CLUES_API_KEY.
func APIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		expect := config.APIKey()
		if expect == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server not configured"})
			return
		}
		got := c.GetHeader("X-API-Key")
		if got == "" {
			got = c.Query("api_key")
		}
		if !constantTimeEqual(got, expect) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
			return
		}
		c.Next()
	}
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
