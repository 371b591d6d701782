package services

import (
	"strings"
	"testing"

	"github.com/skillsprint/skillsprint-backend/internal/repos/testutil"
)

func TestQuizQuestionCount(t *testing.T) {
	cases := []struct {
		duration int
		want     int
	}{
		{1, 5},
		{3, 5},
		{5, 5},
		{7, 7},
		{10, 10},
		{14, 10},
		{30, 10},
	}
	for _, tc := range cases {
		if got := QuizQuestionCount(tc.duration); got != tc.want {
			t.Errorf("QuizQuestionCount(%d)=%d, want %d", tc.duration, got, tc.want)
		}
	}
}

func TestBuildPlanRequest(t *testing.T) {
	t.Setenv("GEMINI_PLAN_TEMPERATURE", "")
	req := BuildPlanRequest("watercolor painting", 7)

	prompt := req.FirstPromptText()
	if !strings.Contains(prompt, `Create a 7-day microlearning plan for a complete beginner to learn "watercolor painting"`) {
		t.Fatalf("unexpected prompt: %q", prompt)
	}
	if req.GenerationConfig == nil {
		t.Fatal("missing generation config")
	}
	if req.GenerationConfig.ResponseMIMEType != "application/json" {
		t.Errorf("mime=%q", req.GenerationConfig.ResponseMIMEType)
	}
	if req.GenerationConfig.Temperature == nil || *req.GenerationConfig.Temperature != 0.7 {
		t.Errorf("temperature=%v", req.GenerationConfig.Temperature)
	}
	schema := req.GenerationConfig.ResponseSchema
	if schema == nil || schema.Properties["plan"] == nil {
		t.Fatal("schema missing plan property")
	}
	day := schema.Properties["plan"].Items
	for _, field := range []string{"day", "title", "lessons", "practiceTask"} {
		if day.Properties[field] == nil {
			t.Errorf("day schema missing %q", field)
		}
	}
}

func TestBuildQuizRequest(t *testing.T) {
	t.Setenv("GEMINI_QUIZ_TEMPERATURE", "")
	plan := testutil.SamplePlan("chess", 3)
	plan.Days[0].Title = "Openings"
	plan.Days[1].Title = "Tactics"
	plan.Days[2].Title = "Endgames"

	req := BuildQuizRequest(plan)
	prompt := req.FirstPromptText()

	if !strings.Contains(prompt, "exactly 5 multiple-choice questions") {
		t.Errorf("question count not clamped: %q", prompt)
	}
	if !strings.Contains(prompt, "Openings, Tactics, Endgames") {
		t.Errorf("topics not joined: %q", prompt)
	}
	if !strings.Contains(prompt, `skill "chess"`) {
		t.Errorf("skill missing: %q", prompt)
	}
	if req.GenerationConfig.Temperature == nil || *req.GenerationConfig.Temperature != 0.8 {
		t.Errorf("temperature=%v", req.GenerationConfig.Temperature)
	}
	if req.GenerationConfig.ResponseSchema.Properties["quiz"] == nil {
		t.Fatal("schema missing quiz property")
	}
}

func TestTemperatureEnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_PLAN_TEMPERATURE", "0.2")
	t.Setenv("GEMINI_QUIZ_TEMPERATURE", "1.0")

	planReq := BuildPlanRequest("chess", 3)
	if planReq.GenerationConfig.Temperature == nil || *planReq.GenerationConfig.Temperature != 0.2 {
		t.Errorf("plan temperature=%v", planReq.GenerationConfig.Temperature)
	}
	quizReq := BuildQuizRequest(testutil.SamplePlan("chess", 3))
	if quizReq.GenerationConfig.Temperature == nil || *quizReq.GenerationConfig.Temperature != 1.0 {
		t.Errorf("quiz temperature=%v", quizReq.GenerationConfig.Temperature)
	}

	// unparsable values fall back to the defaults
	t.Setenv("GEMINI_PLAN_TEMPERATURE", "warm")
	planReq = BuildPlanRequest("chess", 3)
	if planReq.GenerationConfig.Temperature == nil || *planReq.GenerationConfig.Temperature != 0.7 {
		t.Errorf("plan temperature fallback=%v", planReq.GenerationConfig.Temperature)
	}
}

func TestBuildChatTurnRequest(t *testing.T) {
	req := BuildChatTurnRequest("cooking", "Knife skills", "How do I hold the knife?")

	if req.SystemInstruction == nil {
		t.Fatal("missing system instruction")
	}
	instruction := req.SystemInstruction.Parts[0].Text
	if !strings.Contains(instruction, `learning about "cooking"`) {
		t.Errorf("skill missing from instruction: %q", instruction)
	}
	if !strings.Contains(instruction, `today's specific topic is "Knife skills"`) {
		t.Errorf("topic missing from instruction: %q", instruction)
	}
	if got := req.FirstPromptText(); got != "How do I hold the knife?" {
		t.Errorf("prompt=%q", got)
	}
	if req.GenerationConfig != nil {
		t.Error("chat turns should not pin a generation config")
	}
}
