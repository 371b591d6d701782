package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// LearningPlan is the whole multi-day schedule for one skill. Field names on
// the wire match what clients of the original app already store.
type LearningPlan struct {
	Skill    string    `json:"skill"`
	Duration int       `json:"duration"`
	Days     []DayPlan `json:"days"`
}

// DayPlan is one day of a LearningPlan, hydrated with progress state.
type DayPlan struct {
	Day          int      `json:"day"`
	Title        string   `json:"title"`
	Lessons      []string `json:"lessons"`
	PracticeTask string   `json:"practiceTask"`
	IsCompleted  bool     `json:"isCompleted"`
	Reflection   string   `json:"reflection"`
}

// RawDayPlan is a day as the model returns it, before hydration.
type RawDayPlan struct {
	Day          int      `json:"day"`
	Title        string   `json:"title"`
	Lessons      []string `json:"lessons"`
	PracticeTask string   `json:"practiceTask"`
}

// Hydrate attaches default progress state. Upstream completion/reflection
// content, if any, is discarded.
func (r RawDayPlan) Hydrate() DayPlan {
	return DayPlan{
		Day:          r.Day,
		Title:        r.Title,
		Lessons:      r.Lessons,
		PracticeTask: r.PracticeTask,
		IsCompleted:  false,
		Reflection:   "",
	}
}

// LearningPlanRecord is the persisted row: one plan per user, the plan body
// stored as an opaque serialized blob.
type LearningPlanRecord struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User      *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	Plan      datatypes.JSON `gorm:"column:plan;not null" json:"plan"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (LearningPlanRecord) TableName() string {
	return "learning_plan"
}
