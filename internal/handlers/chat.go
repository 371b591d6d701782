package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skillsprint/skillsprint-backend/internal/requestdata"
	"github.com/skillsprint/skillsprint-backend/internal/services"
)

type ChatHandler struct {
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (ch *ChatHandler) CreateSession(c *gin.Context) {
	var req struct {
		Skill string `json:"skill"`
		Topic string `json:"topic"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondAppError(c, errInvalidBody())
		return
	}
	rd := requestdata.GetRequestData(c.Request.Context())
	session, err := ch.chatService.CreateSession(c.Request.Context(), rd.UserID, req.Skill, req.Topic)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, session)
}

func (ch *ChatHandler) GetSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondAppError(c, errInvalidBody())
		return
	}
	rd := requestdata.GetRequestData(c.Request.Context())
	session, err := ch.chatService.GetSession(c.Request.Context(), rd.UserID, sessionID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, session)
}

func (ch *ChatHandler) CloseSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondAppError(c, errInvalidBody())
		return
	}
	rd := requestdata.GetRequestData(c.Request.Context())
	if err := ch.chatService.CloseSession(c.Request.Context(), rd.UserID, sessionID); err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

// SendMessage streams the tutor's reply as SSE fragments. The error taxonomy
// cannot apply once streaming begins, so failures before the first byte get a
// normal JSON error and failures after it surface inside the stream.
func (ch *ChatHandler) SendMessage(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondAppError(c, errInvalidBody())
		return
	}
	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondAppError(c, errInvalidBody())
		return
	}
	rd := requestdata.GetRequestData(c.Request.Context())

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		RespondError(c, http.StatusInternalServerError, "internal", fmt.Errorf("streaming unsupported"))
		return
	}

	started := false
	emit := func(fragment string) error {
		if !started {
			c.Header("Content-Type", "text/event-stream")
			c.Header("Cache-Control", "no-cache")
			c.Header("Connection", "keep-alive")
			c.Writer.WriteHeader(http.StatusOK)
			started = true
		}
		payload, mErr := json.Marshal(gin.H{"text": fragment})
		if mErr != nil {
			return mErr
		}
		if _, wErr := fmt.Fprintf(c.Writer, "event: fragment\ndata: %s\n\n", payload); wErr != nil {
			return wErr
		}
		flusher.Flush()
		return nil
	}

	final, err := ch.chatService.StreamTurn(c.Request.Context(), rd.UserID, sessionID, req.Message, emit)
	if err != nil && !started {
		RespondAppError(c, err)
		return
	}

	if !started {
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Writer.WriteHeader(http.StatusOK)
	}
	if payload, mErr := json.Marshal(final); mErr == nil {
		fmt.Fprintf(c.Writer, "event: done\ndata: %s\n\n", payload)
		flusher.Flush()
	}
}
