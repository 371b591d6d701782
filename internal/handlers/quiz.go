package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/skillsprint/skillsprint-backend/internal/requestdata"
	"github.com/skillsprint/skillsprint-backend/internal/services"
)

type QuizHandler struct {
	quizService services.QuizService
}

func NewQuizHandler(quizService services.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

func (qh *QuizHandler) Generate(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	quiz, err := qh.quizService.GenerateQuiz(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"quiz": quiz})
}
