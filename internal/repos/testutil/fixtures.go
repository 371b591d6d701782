package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillsprint/skillsprint-backend/internal/types"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "hashed",
		FirstName: "test",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedAdmin(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := SeedUser(tb, ctx, tx, email)
	u.IsAdmin = true
	if err := tx.WithContext(ctx).Model(u).Update("is_admin", true).Error; err != nil {
		tb.Fatalf("seed admin: %v", err)
	}
	return u
}

func SamplePlan(skill string, duration int) *types.LearningPlan {
	days := make([]types.DayPlan, 0, duration)
	for i := 1; i <= duration; i++ {
		days = append(days, types.DayPlan{
			Day:          i,
			Title:        "Day title",
			Lessons:      []string{"lesson one", "lesson two"},
			PracticeTask: "practice",
		})
	}
	return &types.LearningPlan{Skill: skill, Duration: duration, Days: days}
}
