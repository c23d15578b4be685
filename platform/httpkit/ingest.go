package httpkit

import (
	"crypto/subtle"
	"net/http"

	"kpi_coach_backend/platform/config"
	"kpi_coach_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// IngestTokenHeader carries the shared machine token on automation calls.
const IngestTokenHeader = "X-Ingest-Token"

// IngestAuth guards automation endpoints with a shared static token instead
// of user JWTs. The comparison is constant-time. When no token is configured
// the endpoints are disabled entirely rather than left open.
func IngestAuth(cfg config.IngestConfig, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := cfg.GetIngestToken()
		if expected == "" {
			log.IngestRejected("", "ingest token not configured", c.ClientIP())
			Error(c, http.StatusServiceUnavailable, "ingest is not enabled", nil)
			c.Abort()
			return
		}

		got := c.GetHeader(IngestTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
			log.IngestRejected("", "invalid ingest token", c.ClientIP())
			Error(c, http.StatusUnauthorized, "invalid ingest token", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}
