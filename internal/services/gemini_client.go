package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/skillsprint/skillsprint-backend/internal/apperr"
	"github.com/skillsprint/skillsprint-backend/internal/gemini"
	"github.com/skillsprint/skillsprint-backend/internal/logger"
	"github.com/skillsprint/skillsprint-backend/internal/repos"
	"github.com/skillsprint/skillsprint-backend/internal/types"
	"github.com/skillsprint/skillsprint-backend/internal/utils"
)

// GeminiKeyName is the secure-store name of the provider secret the backend
// injects upstream.
const GeminiKeyName = "GEMINI_API_KEY"

// GeminiClient is what the domain services call. One request, one response,
// no automatic retry; the UI owns "try again".
type GeminiClient interface {
	// GenerateText issues one typed request and returns the reply text.
	GenerateText(ctx context.Context, userID *uuid.UUID, callType string, req *gemini.GenerateContentRequest) (string, error)
	// Proxy forwards a caller-supplied raw generateContent payload verbatim
	// and returns the provider's envelope untouched.
	Proxy(ctx context.Context, userID *uuid.UUID, payload json.RawMessage) (json.RawMessage, error)
}

type geminiClient struct {
	log           *logger.Logger
	client        *gemini.Client
	secureKeyRepo repos.SecureAPIKeyRepo
	aiCallLogRepo repos.AICallLogRepo
	model         string
}

func NewGeminiClient(log *logger.Logger, client *gemini.Client, secureKeyRepo repos.SecureAPIKeyRepo, aiCallLogRepo repos.AICallLogRepo) GeminiClient {
	return &geminiClient{
		log:           log.With("service", "GeminiClient"),
		client:        client,
		secureKeyRepo: secureKeyRepo,
		aiCallLogRepo: aiCallLogRepo,
		model:         utils.GetEnv("GEMINI_MODEL", "gemini-2.5-flash", log),
	}
}

// resolveKey prefers the active secure-store row and falls back to the
// process environment, matching the original proxy's lookup order.
func (gc *geminiClient) resolveKey(ctx context.Context) (string, error) {
	key, err := gc.secureKeyRepo.GetActiveByName(ctx, nil, GeminiKeyName)
	if err != nil {
		gc.log.Warn("Secure key lookup failed, falling back to environment", "error", err)
	}
	if key != nil && key.APIKey != "" {
		return key.APIKey, nil
	}
	if envKey := os.Getenv(GeminiKeyName); envKey != "" {
		return envKey, nil
	}
	return "", fmt.Errorf("%w: %s not found in secure storage or environment", apperr.ErrUnconfigured, GeminiKeyName)
}

func (gc *geminiClient) GenerateText(ctx context.Context, userID *uuid.UUID, callType string, req *gemini.GenerateContentRequest) (string, error) {
	apiKey, err := gc.resolveKey(ctx)
	if err != nil {
		return "", err
	}

	resp, err := gc.client.GenerateContent(ctx, gc.model, apiKey, req)
	if err != nil {
		gc.logCall(ctx, userID, callType, req.FirstPromptText(), "", err)
		return "", err
	}

	text := resp.Text()
	if text == "" {
		err := fmt.Errorf("%w: empty reply text", apperr.ErrMalformedResponse)
		gc.logCall(ctx, userID, callType, req.FirstPromptText(), "", err)
		return "", err
	}

	gc.logCall(ctx, userID, callType, req.FirstPromptText(), text, nil)
	return text, nil
}

func (gc *geminiClient) Proxy(ctx context.Context, userID *uuid.UUID, payload json.RawMessage) (json.RawMessage, error) {
	apiKey, err := gc.resolveKey(ctx)
	if err != nil {
		return nil, err
	}

	body, err := gc.client.Do(ctx, gc.model, apiKey, payload)
	if err != nil {
		gc.logCall(ctx, userID, types.AICallTypeProxy, "", "", err)
		return nil, err
	}

	gc.logCall(ctx, userID, types.AICallTypeProxy, "", string(body), nil)
	return json.RawMessage(body), nil
}

// logCall records the exchange; a failed audit write never fails the call.
func (gc *geminiClient) logCall(ctx context.Context, userID *uuid.UUID, callType, prompt, response string, callErr error) {
	row := &types.AICallLog{
		ID:       uuid.New(),
		UserID:   userID,
		CallType: callType,
		Model:    gc.model,
		Prompt:   prompt,
		Response: response,
		Success:  callErr == nil,
	}
	if callErr != nil {
		row.Error = callErr.Error()
	}
	if _, err := gc.aiCallLogRepo.Create(ctx, nil, []*types.AICallLog{row}); err != nil {
		gc.log.Warn("Failed to record AI call log", "error", err, "call_type", callType)
	}
}
