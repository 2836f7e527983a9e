package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"taskboard/internal/pkg/response"
)

// RequestLogger logs every request and recovers from handler panics.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				log.Error().
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Str("client_ip", c.ClientIP()).
					Int64("user_id", c.GetInt64("user_id")).
					Str("panic", fmt.Sprintf("%v", recovered)).
					Str("stack", string(debug.Stack())).
					Msg("request panic")

				response.Error(c, http.StatusInternalServerError, "Internal Server Error")
				c.Abort()
				return
			}

			evt := log.Info()
			if c.Writer.Status() >= http.StatusInternalServerError {
				evt = log.Error()
			}
			evt.
				Int("status", c.Writer.Status()).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Str("query", c.Request.URL.RawQuery).
				Str("client_ip", c.ClientIP()).
				Int64("user_id", c.GetInt64("user_id")).
				Dur("latency", time.Since(start)).
				Msg("request")
		}()

		c.Next()
	}
}
