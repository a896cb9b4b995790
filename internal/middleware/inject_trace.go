package middleware

import (
	"github.com/gin-gonic/gin"

	"plan-pleno/internal/utils"
)

const traceHeader = "X-Trace-Id"

// InjectTrace tags every request with a trace id, reusing the one sent by the
// client when present.
func InjectTrace() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := c.GetHeader(traceHeader)
		if traceId == "" || len(traceId) > 64 {
			traceId = utils.GenerateTraceId()
		}
		c.Set(utils.TraceIdKey.String(), traceId)
		c.Header(traceHeader, traceId)
		c.Next()
	}
}
