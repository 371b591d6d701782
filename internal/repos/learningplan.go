package repos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/skillsprint/skillsprint-backend/internal/apperr"
	"github.com/skillsprint/skillsprint-backend/internal/logger"
	"github.com/skillsprint/skillsprint-backend/internal/types"
)

// LearningPlanRepo persists one plan per user as an opaque serialized blob.
// Upsert always replaces the prior value, never merges; last writer wins.
type LearningPlanRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, userID uuid.UUID, plan *types.LearningPlan) error
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.LearningPlan, error)
	DeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type learningPlanRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningPlanRepo(db *gorm.DB, baseLog *logger.Logger) LearningPlanRepo {
	return &learningPlanRepo{db: db, log: baseLog.With("repo", "LearningPlanRepo")}
}

func (lpr *learningPlanRepo) Upsert(ctx context.Context, tx *gorm.DB, userID uuid.UUID, plan *types.LearningPlan) error {
	transaction := tx
	if transaction == nil {
		transaction = lpr.db
	}

	raw, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("serialize plan: %w", err)
	}

	record := types.LearningPlanRecord{
		ID:     uuid.New(),
		UserID: userID,
		Plan:   datatypes.JSON(raw),
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"plan", "updated_at"}),
		}).
		Create(&record).Error; err != nil {
		return fmt.Errorf("%w: upsert plan: %v", apperr.ErrPersistenceFailure, err)
	}
	return nil
}

func (lpr *learningPlanRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.LearningPlan, error) {
	transaction := tx
	if transaction == nil {
		transaction = lpr.db
	}

	var record types.LearningPlanRecord
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no plan for user", apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: fetch plan: %v", apperr.ErrPersistenceFailure, err)
	}

	var plan types.LearningPlan
	if err := json.Unmarshal(record.Plan, &plan); err != nil {
		return nil, fmt.Errorf("%w: deserialize plan: %v", apperr.ErrPersistenceFailure, err)
	}
	return &plan, nil
}

func (lpr *learningPlanRepo) DeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = lpr.db
	}
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&types.LearningPlanRecord{}).Error; err != nil {
		return fmt.Errorf("%w: delete plan: %v", apperr.ErrPersistenceFailure, err)
	}
	return nil
}
