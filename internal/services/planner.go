package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillsprint/skillsprint-backend/internal/apperr"
	"github.com/skillsprint/skillsprint-backend/internal/logger"
	"github.com/skillsprint/skillsprint-backend/internal/normalization"
	"github.com/skillsprint/skillsprint-backend/internal/repos"
	"github.com/skillsprint/skillsprint-backend/internal/sse"
	"github.com/skillsprint/skillsprint-backend/internal/ssedata"
	"github.com/skillsprint/skillsprint-backend/internal/types"
)

const maxPlanDuration = 90

// DayUpdate carries a partial mutation of one day's progress state.
type DayUpdate struct {
	IsCompleted *bool   `json:"is_completed,omitempty"`
	Reflection  *string `json:"reflection,omitempty"`
}

type PlannerService interface {
	GeneratePlan(ctx context.Context, userID uuid.UUID, skill string, duration int) (*types.LearningPlan, error)
	GetPlan(ctx context.Context, userID uuid.UUID) (*types.LearningPlan, error)
	DeletePlan(ctx context.Context, userID uuid.UUID) error
	UpdateDay(ctx context.Context, userID uuid.UUID, day int, update DayUpdate) (*types.LearningPlan, error)
}

type plannerService struct {
	db          *gorm.DB
	log         *logger.Logger
	planRepo    repos.LearningPlanRepo
	gemini      GeminiClient
	broadcaster sse.Broadcaster
}

func NewPlannerService(db *gorm.DB, log *logger.Logger, planRepo repos.LearningPlanRepo, gemini GeminiClient, broadcaster sse.Broadcaster) PlannerService {
	return &plannerService{
		db:          db,
		log:         log.With("service", "PlannerService"),
		planRepo:    planRepo,
		gemini:      gemini,
		broadcaster: broadcaster,
	}
}

// GeneratePlan runs the whole pipeline: validate, prompt, call, parse,
// hydrate, store. A failure at any step leaves a previously stored plan
// untouched; nothing partial is ever written.
func (ps *plannerService) GeneratePlan(ctx context.Context, userID uuid.UUID, skill string, duration int) (*types.LearningPlan, error) {
	skill = normalization.TrimInputString(skill)
	if skill == "" {
		return nil, fmt.Errorf("%w: a skill is required", apperr.ErrValidationFailure)
	}
	if duration < 1 || duration > maxPlanDuration {
		return nil, fmt.Errorf("%w: duration must be between 1 and %d days", apperr.ErrValidationFailure, maxPlanDuration)
	}

	req := BuildPlanRequest(skill, duration)
	text, err := ps.gemini.GenerateText(ctx, &userID, types.AICallTypePlanGeneration, req)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Plan []types.RawDayPlan `json:"plan"`
	}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("%w: reply is not valid JSON: %v", apperr.ErrMalformedResponse, err)
	}
	if parsed.Plan == nil {
		return nil, fmt.Errorf("%w: reply has no plan array", apperr.ErrMalformedResponse)
	}

	// Ascending by day number. Duplicates or gaps in the upstream numbering
	// are preserved as-is.
	sort.SliceStable(parsed.Plan, func(i, j int) bool {
		return parsed.Plan[i].Day < parsed.Plan[j].Day
	})

	days := make([]types.DayPlan, 0, len(parsed.Plan))
	for _, raw := range parsed.Plan {
		days = append(days, raw.Hydrate())
	}

	plan := &types.LearningPlan{Skill: skill, Duration: duration, Days: days}
	if err := ps.planRepo.Upsert(ctx, nil, userID, plan); err != nil {
		return nil, err
	}

	ssedata.Append(ctx, ps.broadcaster, sse.SSEMessage{
		Channel: sse.UserChannel(userID),
		Event:   sse.SSEEventPlanCreated,
		Data:    map[string]any{"skill": plan.Skill, "duration": plan.Duration},
	})
	ps.log.Info("Generated learning plan", "user_id", userID, "skill", skill, "days", len(days))
	return plan, nil
}

func (ps *plannerService) GetPlan(ctx context.Context, userID uuid.UUID) (*types.LearningPlan, error) {
	return ps.planRepo.GetByUserID(ctx, nil, userID)
}

func (ps *plannerService) DeletePlan(ctx context.Context, userID uuid.UUID) error {
	if err := ps.planRepo.DeleteByUserID(ctx, nil, userID); err != nil {
		return err
	}
	ssedata.Append(ctx, ps.broadcaster, sse.SSEMessage{
		Channel: sse.UserChannel(userID),
		Event:   sse.SSEEventPlanDeleted,
	})
	return nil
}

// UpdateDay mutates one day in place and re-saves the whole blob. Last
// writer wins; there is no optimistic concurrency control.
func (ps *plannerService) UpdateDay(ctx context.Context, userID uuid.UUID, day int, update DayUpdate) (*types.LearningPlan, error) {
	plan, err := ps.planRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range plan.Days {
		if plan.Days[i].Day != day {
			continue
		}
		if update.IsCompleted != nil {
			plan.Days[i].IsCompleted = *update.IsCompleted
		}
		if update.Reflection != nil {
			plan.Days[i].Reflection = *update.Reflection
		}
		found = true
		break
	}
	if !found {
		return nil, fmt.Errorf("%w: plan has no day %d", apperr.ErrNotFound, day)
	}

	if err := ps.planRepo.Upsert(ctx, nil, userID, plan); err != nil {
		return nil, err
	}

	ssedata.Append(ctx, ps.broadcaster, sse.SSEMessage{
		Channel: sse.UserChannel(userID),
		Event:   sse.SSEEventPlanDayUpdated,
		Data:    map[string]any{"day": day},
	})
	return plan, nil
}
