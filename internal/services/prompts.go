package services

import (
	"fmt"
	"strings"

	"github.com/skillsprint/skillsprint-backend/internal/gemini"
	"github.com/skillsprint/skillsprint-backend/internal/types"
	"github.com/skillsprint/skillsprint-backend/internal/utils"
)

// Default sampling temperatures, overridable per deployment.
const (
	planTemperature = 0.7
	quizTemperature = 0.8

	quizQuestionMin = 5
	quizQuestionMax = 10
)

var planResponseSchema = &gemini.Schema{
	Type: gemini.TypeObject,
	Properties: map[string]*gemini.Schema{
		"plan": {
			Type:        gemini.TypeArray,
			Description: "The learning plan, with one entry per day.",
			Items: &gemini.Schema{
				Type: gemini.TypeObject,
				Properties: map[string]*gemini.Schema{
					"day":   {Type: gemini.TypeNumber, Description: "The day number, starting from 1."},
					"title": {Type: gemini.TypeString, Description: "A concise title for the day's topic."},
					"lessons": {
						Type:        gemini.TypeArray,
						Description: "A list of 2-4 key lesson points for the day.",
						Items:       &gemini.Schema{Type: gemini.TypeString},
					},
					"practiceTask": {Type: gemini.TypeString, Description: "A short, practical task to apply the lessons."},
				},
				Required: []string{"day", "title", "lessons", "practiceTask"},
			},
		},
	},
	Required: []string{"plan"},
}

var quizResponseSchema = &gemini.Schema{
	Type: gemini.TypeObject,
	Properties: map[string]*gemini.Schema{
		"quiz": {
			Type:        gemini.TypeArray,
			Description: "The list of quiz questions.",
			Items: &gemini.Schema{
				Type: gemini.TypeObject,
				Properties: map[string]*gemini.Schema{
					"questionText": {Type: gemini.TypeString, Description: "The text of the multiple-choice question."},
					"options": {
						Type:        gemini.TypeArray,
						Description: "An array of 4 possible answers.",
						Items:       &gemini.Schema{Type: gemini.TypeString},
					},
					"correctAnswerIndex": {Type: gemini.TypeNumber, Description: "The 0-based index of the correct answer in the 'options' array."},
					"explanation":        {Type: gemini.TypeString, Description: "A brief explanation of why the correct answer is right."},
				},
				Required: []string{"questionText", "options", "correctAnswerIndex", "explanation"},
			},
		},
	},
	Required: []string{"quiz"},
}

// BuildPlanRequest shapes the day-by-day plan generation call.
func BuildPlanRequest(skill string, duration int) *gemini.GenerateContentRequest {
	prompt := fmt.Sprintf(
		`Create a %d-day microlearning plan for a complete beginner to learn "%s". `+
			`Each day must have a clear title, 2 to 4 distinct lesson points, and a single practical task. `+
			`The plan should be progressive and easy to follow.`,
		duration, skill)

	return &gemini.GenerateContentRequest{
		Contents: gemini.UserText(prompt),
		GenerationConfig: &gemini.GenerationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   planResponseSchema,
			Temperature:      gemini.Temperature(utils.GetEnvAsFloat("GEMINI_PLAN_TEMPERATURE", planTemperature, nil)),
		},
	}
}

// QuizQuestionCount clamps the question count to [5,10] of the plan duration.
func QuizQuestionCount(duration int) int {
	if duration < quizQuestionMin {
		return quizQuestionMin
	}
	if duration > quizQuestionMax {
		return quizQuestionMax
	}
	return duration
}

// BuildQuizRequest shapes the quiz generation call over a plan's day titles.
func BuildQuizRequest(plan *types.LearningPlan) *gemini.GenerateContentRequest {
	titles := make([]string, 0, len(plan.Days))
	for _, d := range plan.Days {
		titles = append(titles, d.Title)
	}
	topics := strings.Join(titles, ", ")
	questionCount := QuizQuestionCount(plan.Duration)

	prompt := fmt.Sprintf(
		`You are a quiz generator. Create a quiz with exactly %d multiple-choice questions to test a beginner's understanding of the skill "%s". `+
			`The quiz should cover these topics: %s. `+
			`For each question, provide the question text, exactly 4 answer options, the 0-based index of the correct answer, and a brief explanation for the correct answer. `+
			`Ensure the questions are relevant for a beginner and cover a range of the provided topics.`,
		questionCount, plan.Skill, topics)

	return &gemini.GenerateContentRequest{
		Contents: gemini.UserText(prompt),
		GenerationConfig: &gemini.GenerationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   quizResponseSchema,
			Temperature:      gemini.Temperature(utils.GetEnvAsFloat("GEMINI_QUIZ_TEMPERATURE", quizTemperature, nil)),
		},
	}
}

// BuildChatTurnRequest shapes one stateless tutor exchange. Each turn stands
// alone; no prior conversation is threaded upstream.
func BuildChatTurnRequest(skill, topic, message string) *gemini.GenerateContentRequest {
	instruction := fmt.Sprintf(
		`You are a friendly and encouraging AI tutor. The user is learning about "%s", and today's specific topic is "%s". `+
			`Your goal is to help them understand this topic better. Keep your answers concise, clear, and directly related to the topic. `+
			`Ask clarifying questions to guide them. Do not answer questions outside this topic.`,
		skill, topic)

	return &gemini.GenerateContentRequest{
		Contents:          gemini.UserText(message),
		SystemInstruction: gemini.SystemText(instruction),
	}
}
