package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/skillsprint/skillsprint-backend/internal/apperr"
	"github.com/skillsprint/skillsprint-backend/internal/logger"
	"github.com/skillsprint/skillsprint-backend/internal/repos"
	"github.com/skillsprint/skillsprint-backend/internal/types"
)

const quizOptionCount = 4

// QuizService generates ephemeral quizzes from the caller's stored plan.
// Nothing is persisted; "try again" is just another call.
type QuizService interface {
	GenerateQuiz(ctx context.Context, userID uuid.UUID) ([]types.QuizQuestion, error)
}

type quizService struct {
	log      *logger.Logger
	planRepo repos.LearningPlanRepo
	gemini   GeminiClient
}

func NewQuizService(log *logger.Logger, planRepo repos.LearningPlanRepo, gemini GeminiClient) QuizService {
	return &quizService{
		log:      log.With("service", "QuizService"),
		planRepo: planRepo,
		gemini:   gemini,
	}
}

func (qs *quizService) GenerateQuiz(ctx context.Context, userID uuid.UUID) ([]types.QuizQuestion, error) {
	plan, err := qs.planRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}

	req := BuildQuizRequest(plan)
	text, err := qs.gemini.GenerateText(ctx, &userID, types.AICallTypeQuizGeneration, req)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Quiz []types.QuizQuestion `json:"quiz"`
	}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("%w: reply is not valid JSON: %v", apperr.ErrMalformedResponse, err)
	}
	if parsed.Quiz == nil {
		return nil, fmt.Errorf("%w: reply has no quiz array", apperr.ErrMalformedResponse)
	}

	for i, q := range parsed.Quiz {
		if len(q.Options) != quizOptionCount {
			return nil, fmt.Errorf("%w: question %d has %d options", apperr.ErrMalformedResponse, i, len(q.Options))
		}
		if q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex >= quizOptionCount {
			return nil, fmt.Errorf("%w: question %d answer index %d out of range", apperr.ErrMalformedResponse, i, q.CorrectAnswerIndex)
		}
	}

	qs.log.Info("Generated quiz", "user_id", userID, "questions", len(parsed.Quiz))
	return parsed.Quiz, nil
}
