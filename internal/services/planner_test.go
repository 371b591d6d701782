package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/skillsprint/skillsprint-backend/internal/apperr"
	"github.com/skillsprint/skillsprint-backend/internal/gemini"
	"github.com/skillsprint/skillsprint-backend/internal/repos"
	"github.com/skillsprint/skillsprint-backend/internal/repos/testutil"
	"github.com/skillsprint/skillsprint-backend/internal/sse"
)

// fakeGemini scripts the upstream: a fixed reply or a fixed error.
type fakeGemini struct {
	reply string
	err   error
	calls int
}

func (f *fakeGemini) GenerateText(ctx context.Context, userID *uuid.UUID, callType string, req *gemini.GenerateContentRequest) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeGemini) Proxy(ctx context.Context, userID *uuid.UUID, payload json.RawMessage) (json.RawMessage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(f.reply), nil
}

type captureBroadcaster struct {
	messages []sse.SSEMessage
}

func (cb *captureBroadcaster) Broadcast(msg sse.SSEMessage) {
	cb.messages = append(cb.messages, msg)
}

func planReplyJSON(t *testing.T, duration int) string {
	t.Helper()
	days := make([]map[string]any, 0, duration)
	// deliberately out of order so sorting is exercised
	for i := duration; i >= 1; i-- {
		days = append(days, map[string]any{
			"day":          i,
			"title":        "Topic",
			"lessons":      []string{"a", "b"},
			"practiceTask": "do the thing",
		})
	}
	raw, err := json.Marshal(map[string]any{"plan": days})
	if err != nil {
		t.Fatalf("marshal reply: %v", err)
	}
	return string(raw)
}

func newPlannerForTest(t *testing.T, fake *fakeGemini) (PlannerService, *captureBroadcaster) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	planRepo := repos.NewLearningPlanRepo(db, log)
	cb := &captureBroadcaster{}
	return NewPlannerService(db, log, planRepo, fake, cb), cb
}

func TestGeneratePlanHydratesAndStores(t *testing.T) {
	fake := &fakeGemini{reply: planReplyJSON(t, 3)}
	svc, cb := newPlannerForTest(t, fake)
	userID := uuid.New()

	plan, err := svc.GeneratePlan(context.Background(), userID, "  juggling  ", 3)
	if err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}
	if plan.Skill != "juggling" {
		t.Errorf("skill=%q, want trimmed", plan.Skill)
	}
	if len(plan.Days) != 3 {
		t.Fatalf("days=%d", len(plan.Days))
	}
	for i, d := range plan.Days {
		if d.Day != i+1 {
			t.Errorf("days not sorted: index %d has day %d", i, d.Day)
		}
		if d.IsCompleted || d.Reflection != "" {
			t.Errorf("day %d progress not zeroed: %+v", d.Day, d)
		}
	}

	stored, err := svc.GetPlan(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if stored.Skill != "juggling" || len(stored.Days) != 3 {
		t.Errorf("stored plan mismatch: %+v", stored)
	}

	if len(cb.messages) != 1 || cb.messages[0].Event != sse.SSEEventPlanCreated {
		t.Errorf("broadcast=%+v", cb.messages)
	}
}

func TestGeneratePlanValidation(t *testing.T) {
	fake := &fakeGemini{reply: planReplyJSON(t, 1)}
	svc, _ := newPlannerForTest(t, fake)
	userID := uuid.New()

	if _, err := svc.GeneratePlan(context.Background(), userID, "   ", 5); !errors.Is(err, apperr.ErrValidationFailure) {
		t.Errorf("blank skill: %v", err)
	}
	if _, err := svc.GeneratePlan(context.Background(), userID, "go", 0); !errors.Is(err, apperr.ErrValidationFailure) {
		t.Errorf("zero duration: %v", err)
	}
	if _, err := svc.GeneratePlan(context.Background(), userID, "go", 91); !errors.Is(err, apperr.ErrValidationFailure) {
		t.Errorf("oversized duration: %v", err)
	}
	if fake.calls != 0 {
		t.Errorf("upstream called %d times on invalid input", fake.calls)
	}
}

func TestGeneratePlanMalformedReplyLeavesStoreUntouched(t *testing.T) {
	good := &fakeGemini{reply: planReplyJSON(t, 2)}
	svc, _ := newPlannerForTest(t, good)
	userID := uuid.New()

	if _, err := svc.GeneratePlan(context.Background(), userID, "go", 2); err != nil {
		t.Fatalf("seed plan: %v", err)
	}

	for _, reply := range []string{"not json at all", `{"wrong": []}`} {
		bad := &fakeGemini{reply: reply}
		badSvc, _ := newPlannerForTest(t, bad)
		if _, err := badSvc.GeneratePlan(context.Background(), userID, "rust", 2); !errors.Is(err, apperr.ErrMalformedResponse) {
			t.Errorf("reply %q: %v", reply, err)
		}
	}

	stored, err := svc.GetPlan(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if stored.Skill != "go" {
		t.Errorf("previous plan clobbered: %+v", stored)
	}
}

func TestGeneratePlanReplacesPrevious(t *testing.T) {
	svc, _ := newPlannerForTest(t, &fakeGemini{reply: planReplyJSON(t, 2)})
	userID := uuid.New()

	if _, err := svc.GeneratePlan(context.Background(), userID, "go", 2); err != nil {
		t.Fatalf("first plan: %v", err)
	}
	svc2, _ := newPlannerForTest(t, &fakeGemini{reply: planReplyJSON(t, 4)})
	if _, err := svc2.GeneratePlan(context.Background(), userID, "rust", 4); err != nil {
		t.Fatalf("second plan: %v", err)
	}

	stored, err := svc.GetPlan(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if stored.Skill != "rust" || len(stored.Days) != 4 {
		t.Errorf("plan not replaced: %+v", stored)
	}
}

func TestUpdateDay(t *testing.T) {
	svc, cb := newPlannerForTest(t, &fakeGemini{reply: planReplyJSON(t, 3)})
	userID := uuid.New()

	if _, err := svc.GeneratePlan(context.Background(), userID, "go", 3); err != nil {
		t.Fatalf("seed plan: %v", err)
	}
	cb.messages = nil

	done := true
	note := "went well"
	plan, err := svc.UpdateDay(context.Background(), userID, 2, DayUpdate{IsCompleted: &done, Reflection: &note})
	if err != nil {
		t.Fatalf("UpdateDay: %v", err)
	}
	if !plan.Days[1].IsCompleted || plan.Days[1].Reflection != "went well" {
		t.Errorf("day 2 not updated: %+v", plan.Days[1])
	}
	if plan.Days[0].IsCompleted || plan.Days[2].IsCompleted {
		t.Errorf("other days touched: %+v", plan.Days)
	}

	stored, err := svc.GetPlan(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if !stored.Days[1].IsCompleted || stored.Days[1].Reflection != "went well" {
		t.Errorf("update not persisted: %+v", stored.Days[1])
	}

	if _, err := svc.UpdateDay(context.Background(), userID, 99, DayUpdate{IsCompleted: &done}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown day: %v", err)
	}

	if len(cb.messages) == 0 || cb.messages[0].Event != sse.SSEEventPlanDayUpdated {
		t.Errorf("broadcast=%+v", cb.messages)
	}
}

func TestDeletePlan(t *testing.T) {
	svc, cb := newPlannerForTest(t, &fakeGemini{reply: planReplyJSON(t, 2)})
	userID := uuid.New()

	if _, err := svc.GeneratePlan(context.Background(), userID, "go", 2); err != nil {
		t.Fatalf("seed plan: %v", err)
	}
	cb.messages = nil

	if err := svc.DeletePlan(context.Background(), userID); err != nil {
		t.Fatalf("DeletePlan: %v", err)
	}
	if _, err := svc.GetPlan(context.Background(), userID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("plan still present: %v", err)
	}
	if len(cb.messages) != 1 || cb.messages[0].Event != sse.SSEEventPlanDeleted {
		t.Errorf("broadcast=%+v", cb.messages)
	}
}
