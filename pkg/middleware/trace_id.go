package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/manzanit0/skydash/pkg/logger"
)

const HeaderTraceID = "X-Trace-Id"

func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := logger.WithTraceID(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderTraceID, logger.TraceID(ctx))

		c.Next()
	}
}
