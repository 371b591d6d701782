package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skillsprint/skillsprint-backend/internal/services"
)

type SecureKeyHandler struct {
	keyService services.SecureKeyService
}

func NewSecureKeyHandler(keyService services.SecureKeyService) *SecureKeyHandler {
	return &SecureKeyHandler{keyService: keyService}
}

func (kh *SecureKeyHandler) List(c *gin.Context) {
	keys, err := kh.keyService.List(c.Request.Context())
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"keys": keys})
}

func (kh *SecureKeyHandler) Create(c *gin.Context) {
	var req services.CreateKeyInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondAppError(c, errInvalidBody())
		return
	}
	key, err := kh.keyService.Create(c.Request.Context(), req)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, key)
}

func (kh *SecureKeyHandler) Update(c *gin.Context) {
	keyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondAppError(c, errInvalidBody())
		return
	}
	var req services.UpdateKeyInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondAppError(c, errInvalidBody())
		return
	}
	key, err := kh.keyService.Update(c.Request.Context(), keyID, req)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, key)
}

func (kh *SecureKeyHandler) Delete(c *gin.Context) {
	keyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondAppError(c, errInvalidBody())
		return
	}
	if err := kh.keyService.Delete(c.Request.Context(), keyID); err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (kh *SecureKeyHandler) ToggleActive(c *gin.Context) {
	keyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondAppError(c, errInvalidBody())
		return
	}
	var req struct {
		IsActive bool `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondAppError(c, errInvalidBody())
		return
	}
	key, err := kh.keyService.ToggleActive(c.Request.Context(), keyID, req.IsActive)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, key)
}
