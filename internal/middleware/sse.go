package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/skillsprint/skillsprint-backend/internal/sse"
	"github.com/skillsprint/skillsprint-backend/internal/ssedata"
)

// FlushSSE broadcasts the events a handler queued once it has finished, so
// clients never see a notification for a mutation that later failed.
func FlushSSE(broadcaster sse.Broadcaster) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		data := ssedata.GetSSEData(c.Request.Context())
		if data == nil || c.Writer.Status() >= 400 {
			return
		}
		for _, msg := range data.Messages {
			broadcaster.Broadcast(msg)
		}
	}
}
