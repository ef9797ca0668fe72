package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"hostel/internal/logger"
	"hostel/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs every request, turns panics into JSON 500s and keeps
// the process alive.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		defer func() {
			if recovered := recover(); recovered != nil {
				logger.ErrorLogger.WithFields(logrus.Fields{
					"method":    c.Request.Method,
					"path":      c.Request.URL.Path,
					"client_ip": c.ClientIP(),
					"panic":     fmt.Sprintf("%v", recovered),
					"stack":     string(debug.Stack()),
				}).Error("request panicked")

				response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
				c.Abort()
				return
			}

			entry := logger.InfoLogger.WithFields(logrus.Fields{
				"method":    c.Request.Method,
				"path":      c.Request.URL.Path,
				"status":    c.Writer.Status(),
				"latency":   time.Since(start).String(),
				"client_ip": c.ClientIP(),
			})
			if c.Writer.Status() >= http.StatusInternalServerError {
				entry.Error("request failed")
			} else {
				entry.Info("request")
			}
		}()

		c.Next()
	}
}
