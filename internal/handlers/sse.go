package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillsprint/skillsprint-backend/internal/logger"
	"github.com/skillsprint/skillsprint-backend/internal/requestdata"
	"github.com/skillsprint/skillsprint-backend/internal/sse"
)

type SSEHandler struct {
	log *logger.Logger
	hub *sse.SSEHub
}

func NewSSEHandler(log *logger.Logger, hub *sse.SSEHub) *SSEHandler {
	return &SSEHandler{
		log: log.With("handler", "SSEHandler"),
		hub: hub,
	}
}

// Stream holds the connection open and writes hub messages as SSE frames.
func (sh *SSEHandler) Stream(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		RespondError(c, http.StatusInternalServerError, "internal", fmt.Errorf("streaming unsupported"))
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)

	client := sh.hub.NewSSEClient(rd.UserID)
	defer sh.hub.RemoveClient(client)

	ctx := c.Request.Context()
	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			sh.log.Debug("SSE client disconnected", "clientID", client.ID)
			return
		case <-heartbeat.C:
			fmt.Fprint(c.Writer, ": ping\n\n")
			flusher.Flush()
		case msg := <-client.Outbound:
			raw, err := json.Marshal(msg)
			if err != nil {
				sh.log.Warn("Failed to marshal SSE message", "error", err)
				continue
			}
			fmt.Fprintf(c.Writer, "event: message\ndata: %s\n\n", raw)
			flusher.Flush()
		}
	}
}

func (sh *SSEHandler) Subscribe(c *gin.Context) {
	var req struct {
		Channel string `json:"channel"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Channel == "" {
		RespondAppError(c, errInvalidBody())
		return
	}
	rd := requestdata.GetRequestData(c.Request.Context())
	sh.hub.AddUserChannel(rd.UserID, req.Channel)
	RespondOK(c, gin.H{"success": true})
}

func (sh *SSEHandler) Unsubscribe(c *gin.Context) {
	var req struct {
		Channel string `json:"channel"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Channel == "" {
		RespondAppError(c, errInvalidBody())
		return
	}
	rd := requestdata.GetRequestData(c.Request.Context())
	sh.hub.RemoveUserChannel(rd.UserID, req.Channel)
	RespondOK(c, gin.H{"success": true})
}
