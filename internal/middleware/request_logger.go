package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/prevozi/carpool-backend/internal/observability"
	"github.com/prevozi/carpool-backend/internal/utils"
)

// RequestLogger logs every request with logrus fields and records request
// metrics. Device info is parsed from the User-Agent header.
func RequestLogger(logger *logrus.Logger, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		device := utils.ParseUserAgent(c.Request.UserAgent())

		fields := logrus.Fields{
			"status":     status,
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"device":     device.DeviceType,
			"os":         device.OS,
			"browser":    device.Browser,
		}
		if device.IsBot {
			fields["bot"] = true
		}
		if userCtx, exists := GetUserContext(c); exists {
			fields["user_id"] = userCtx.UserID
		}

		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			entry.WithField("errors", c.Errors.String()).Error("Request failed with errors")
		} else if status >= 500 {
			entry.Error("Request completed with server error")
		} else if status >= 400 {
			entry.Warn("Request completed with client error")
		} else {
			entry.Info("Request completed")
		}

		if metrics != nil {
			metrics.ObserveRequest(c.Request.Method, c.FullPath(), status, latency)
		}
	}
}
