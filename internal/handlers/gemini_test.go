package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skillsprint/skillsprint-backend/internal/apperr"
	"github.com/skillsprint/skillsprint-backend/internal/gemini"
	"github.com/skillsprint/skillsprint-backend/internal/middleware"
	"github.com/skillsprint/skillsprint-backend/internal/repos/testutil"
	"github.com/skillsprint/skillsprint-backend/internal/requestdata"
	"github.com/skillsprint/skillsprint-backend/internal/types"
)

const testAccessToken = "valid-access-token"

// staticAuthService accepts one fixed token and binds it to one fixed user.
type staticAuthService struct {
	userID uuid.UUID
}

func (s *staticAuthService) RegisterUser(ctx context.Context, user *types.User) error {
	return fmt.Errorf("not supported")
}

func (s *staticAuthService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
	return "", "", fmt.Errorf("not supported")
}

func (s *staticAuthService) RefreshUser(ctx context.Context) (string, string, error) {
	return "", "", fmt.Errorf("not supported")
}

func (s *staticAuthService) LogoutUser(ctx context.Context) error { return nil }

func (s *staticAuthService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString != testAccessToken {
		return ctx, fmt.Errorf("%w: invalid token", apperr.ErrUnauthenticated)
	}
	return requestdata.WithRequestData(ctx, &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      s.userID,
	}), nil
}

func (s *staticAuthService) GetAccessTTL() time.Duration { return time.Hour }

// recordingGemini captures the payload the handler relays.
type recordingGemini struct {
	gotPayload json.RawMessage
	gotUserID  *uuid.UUID
	reply      json.RawMessage
	err        error
}

func (g *recordingGemini) GenerateText(ctx context.Context, userID *uuid.UUID, callType string, req *gemini.GenerateContentRequest) (string, error) {
	return "", fmt.Errorf("not supported")
}

func (g *recordingGemini) Proxy(ctx context.Context, userID *uuid.UUID, payload json.RawMessage) (json.RawMessage, error) {
	g.gotUserID = userID
	g.gotPayload = payload
	if g.err != nil {
		return nil, g.err
	}
	return g.reply, nil
}

func newProxyTestRouter(t *testing.T, upstream *recordingGemini, userID uuid.UUID) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	authMiddleware := middleware.NewAuthMiddleware(testutil.Logger(t), &staticAuthService{userID: userID})
	api := router.Group("/api", authMiddleware.RequireAuth())
	api.POST("/gemini", NewGeminiHandler(upstream).Proxy)
	return router
}

func doProxyRequest(router *gin.Engine, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/gemini", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v (body %q)", err, rec.Body.String())
	}
	return envelope.Error.Code
}

func TestProxyRejectsMissingOrInvalidToken(t *testing.T) {
	upstream := &recordingGemini{reply: json.RawMessage(`{}`)}
	router := newProxyTestRouter(t, upstream, uuid.New())
	body := `{"action":"generate","payload":{"contents":[]}}`

	if rec := doProxyRequest(router, "", body); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status=%d", rec.Code)
	}
	if rec := doProxyRequest(router, "garbage", body); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status=%d", rec.Code)
	}
	if upstream.gotPayload != nil {
		t.Errorf("upstream reached without auth: %s", upstream.gotPayload)
	}
}

func TestProxyRejectsUnknownActionAndEmptyPayload(t *testing.T) {
	upstream := &recordingGemini{reply: json.RawMessage(`{}`)}
	router := newProxyTestRouter(t, upstream, uuid.New())

	rec := doProxyRequest(router, testAccessToken, `{"action":"translate","payload":{"contents":[]}}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown action: status=%d body=%q", rec.Code, rec.Body.String())
	}
	if code := decodeErrorCode(t, rec); code != "validation_failure" {
		t.Errorf("unknown action: code=%q", code)
	}

	rec = doProxyRequest(router, testAccessToken, `{"action":"generate"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing payload: status=%d body=%q", rec.Code, rec.Body.String())
	}

	rec = doProxyRequest(router, testAccessToken, `not json at all`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body: status=%d", rec.Code)
	}
	if upstream.gotPayload != nil {
		t.Errorf("upstream reached on rejected input: %s", upstream.gotPayload)
	}
}

func TestProxyRelaysPayloadVerbatim(t *testing.T) {
	payload := `{"contents":[{"parts":[{"text":"hello"}]}],"generationConfig":{"temperature":0.3}}`
	reply := `{"candidates":[{"content":{"parts":[{"text":"hi"}]}}]}`
	userID := uuid.New()
	upstream := &recordingGemini{reply: json.RawMessage(reply)}
	router := newProxyTestRouter(t, upstream, userID)

	rec := doProxyRequest(router, testAccessToken, `{"action":"generate","payload":`+payload+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%q", rec.Code, rec.Body.String())
	}
	if got := string(upstream.gotPayload); got != payload {
		t.Errorf("relayed payload=%q, want %q", got, payload)
	}
	if upstream.gotUserID == nil || *upstream.gotUserID != userID {
		t.Errorf("upstream user=%v, want %s", upstream.gotUserID, userID)
	}
	if got := rec.Body.String(); got != reply {
		t.Errorf("reply=%q, want %q", got, reply)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("content type=%q", ct)
	}
}

func TestProxyMapsUpstreamFailure(t *testing.T) {
	upstream := &recordingGemini{err: fmt.Errorf("%w: gemini status 429", apperr.ErrUpstreamFailure)}
	router := newProxyTestRouter(t, upstream, uuid.New())

	rec := doProxyRequest(router, testAccessToken, `{"action":"generate","payload":{"contents":[]}}`)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status=%d body=%q", rec.Code, rec.Body.String())
	}
	if code := decodeErrorCode(t, rec); code != "upstream_failure" {
		t.Errorf("code=%q", code)
	}
}
