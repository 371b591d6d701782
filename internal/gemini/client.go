package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/skillsprint/skillsprint-backend/internal/apperr"
	"github.com/skillsprint/skillsprint-backend/internal/logger"
	"github.com/skillsprint/skillsprint-backend/internal/utils"
)

const tracerName = "skillsprint/gemini"

type Client struct {
	httpClient *http.Client
	log        *logger.Logger
	baseURL    string
}

func NewClient(log *logger.Logger) *Client {
	baseURL := utils.GetEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta", log)
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		log:        log.With("client", "GeminiClient"),
		baseURL:    baseURL,
	}
}

// Do posts a raw generateContent payload and returns the raw reply body.
// The caller's context carries cancellation; there is no retry.
func (c *Client) Do(ctx context.Context, model, apiKey string, payload []byte) ([]byte, error) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "gemini.generateContent")
	defer span.End()
	span.SetAttributes(attribute.String("gemini.model", model))

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", apperr.ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: read reply: %v", apperr.ErrUpstreamFailure, err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		span.SetStatus(codes.Error, fmt.Sprintf("status %d", resp.StatusCode))
		c.log.Warn("Gemini returned non-success status", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("%w: gemini status %d: %s", apperr.ErrUpstreamFailure, resp.StatusCode, string(body))
	}
	return body, nil
}

// GenerateContent issues one typed request and decodes the reply envelope.
func (c *Client) GenerateContent(ctx context.Context, model, apiKey string, req *GenerateContentRequest) (*GenerateContentResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("serialize gemini request: %w", err)
	}
	body, err := c.Do(ctx, model, apiKey, payload)
	if err != nil {
		return nil, err
	}
	var out GenerateContentResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: decode reply envelope: %v", apperr.ErrMalformedResponse, err)
	}
	return &out, nil
}
