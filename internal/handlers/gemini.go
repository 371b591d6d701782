package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillsprint/skillsprint-backend/internal/apperr"
	"github.com/skillsprint/skillsprint-backend/internal/requestdata"
	"github.com/skillsprint/skillsprint-backend/internal/services"
)

type GeminiHandler struct {
	gemini services.GeminiClient
}

func NewGeminiHandler(gemini services.GeminiClient) *GeminiHandler {
	return &GeminiHandler{gemini: gemini}
}

// Proxy forwards a generation payload to the provider verbatim and returns the
// provider's reply verbatim. The server owns the API key; clients never see it.
func (gh *GeminiHandler) Proxy(c *gin.Context) {
	var req struct {
		Action  string          `json:"action"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondAppError(c, errInvalidBody())
		return
	}
	if req.Action != "generate" {
		RespondAppError(c, fmt.Errorf("%w: unknown action %q", apperr.ErrValidationFailure, req.Action))
		return
	}
	if len(req.Payload) == 0 {
		RespondAppError(c, fmt.Errorf("%w: payload is required", apperr.ErrValidationFailure))
		return
	}

	rd := requestdata.GetRequestData(c.Request.Context())
	reply, err := gh.gemini.Proxy(c.Request.Context(), &rd.UserID, req.Payload)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", reply)
}
