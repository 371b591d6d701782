package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/skillsprint/skillsprint-backend/internal/apperr"
	"github.com/skillsprint/skillsprint-backend/internal/repos/testutil"
	"github.com/skillsprint/skillsprint-backend/internal/types"
)

func TestCreateSessionGreeting(t *testing.T) {
	svc := NewChatService(testutil.Logger(t), &fakeGemini{reply: "hi"})
	userID := uuid.New()

	session, err := svc.CreateSession(context.Background(), userID, "go", "Slices and maps")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if session.State != ChatStateIdle {
		t.Errorf("state=%q", session.State)
	}
	if len(session.Messages) != 1 {
		t.Fatalf("messages=%d", len(session.Messages))
	}
	greeting := session.Messages[0]
	if greeting.Role != types.ChatRoleModel {
		t.Errorf("greeting role=%q", greeting.Role)
	}
	want := `Hello! I'm your AI tutor for today. Ask me anything about "Slices and maps"!`
	if greeting.Content != want {
		t.Errorf("greeting=%q", greeting.Content)
	}

	if _, err := svc.CreateSession(context.Background(), userID, "", "topic"); !errors.Is(err, apperr.ErrValidationFailure) {
		t.Errorf("blank skill: %v", err)
	}
}

func TestStreamTurnFragmentsRejoin(t *testing.T) {
	reply := "A slice is a view over an array"
	fake := &fakeGemini{reply: reply}
	svc := NewChatService(testutil.Logger(t), fake)
	userID := uuid.New()

	session, err := svc.CreateSession(context.Background(), userID, "go", "Slices")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	var fragments []string
	final, err := svc.StreamTurn(context.Background(), userID, session.ID, "what is a slice?", func(fragment string) error {
		fragments = append(fragments, fragment)
		return nil
	})
	if err != nil {
		t.Fatalf("StreamTurn: %v", err)
	}

	if got := strings.Join(fragments, ""); got != reply {
		t.Errorf("fragments rejoin to %q, want %q", got, reply)
	}
	if len(fragments) != len(strings.Fields(reply)) {
		t.Errorf("fragments=%d, want one per word", len(fragments))
	}
	if final.Content != reply || final.Role != types.ChatRoleModel {
		t.Errorf("final=%+v", final)
	}

	view, err := svc.GetSession(context.Background(), userID, session.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	// greeting, user message, model reply
	if len(view.Messages) != 3 {
		t.Fatalf("history=%d", len(view.Messages))
	}
	if view.Messages[1].Role != types.ChatRoleUser || view.Messages[1].Content != "what is a slice?" {
		t.Errorf("user message=%+v", view.Messages[1])
	}
	if view.State != ChatStateIdle {
		t.Errorf("state after turn=%q", view.State)
	}
}

func TestStreamTurnUpstreamErrorAppendsErrorMessage(t *testing.T) {
	svc := NewChatService(testutil.Logger(t), &fakeGemini{err: apperr.ErrUpstreamFailure})
	userID := uuid.New()

	session, err := svc.CreateSession(context.Background(), userID, "go", "Slices")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	final, err := svc.StreamTurn(context.Background(), userID, session.ID, "hello?", nil)
	if !errors.Is(err, apperr.ErrUpstreamFailure) {
		t.Fatalf("StreamTurn: %v", err)
	}
	if !final.IsError || final.Content != chatErrorReply {
		t.Errorf("error message=%+v", final)
	}

	view, _ := svc.GetSession(context.Background(), userID, session.ID)
	if view.State != ChatStateIdle {
		t.Errorf("state=%q, want idle after failure", view.State)
	}
	last := view.Messages[len(view.Messages)-1]
	if !last.IsError {
		t.Errorf("history missing error message: %+v", last)
	}
}

func TestStreamTurnCancellationKeepsPartialContent(t *testing.T) {
	reply := "one two three four five six seven eight nine ten"
	svc := NewChatService(testutil.Logger(t), &fakeGemini{reply: reply})
	userID := uuid.New()

	session, err := svc.CreateSession(context.Background(), userID, "go", "Slices")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	var emitted int
	final, err := svc.StreamTurn(ctx, userID, session.ID, "count", func(fragment string) error {
		emitted++
		if emitted == 3 {
			cancel()
		}
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("StreamTurn: %v", err)
	}
	if final.Content != "one two three" {
		t.Errorf("partial content=%q", final.Content)
	}

	// the truncated reply still lands in the history and the session is reusable
	view, _ := svc.GetSession(context.Background(), userID, session.ID)
	if view.State != ChatStateIdle {
		t.Errorf("state=%q", view.State)
	}
	last := view.Messages[len(view.Messages)-1]
	if last.Content != "one two three" {
		t.Errorf("history content=%q", last.Content)
	}
}

func TestStreamTurnCloseSessionStopsReplay(t *testing.T) {
	reply := "one two three four five six seven eight nine ten"
	svc := NewChatService(testutil.Logger(t), &fakeGemini{reply: reply})
	userID := uuid.New()

	session, err := svc.CreateSession(context.Background(), userID, "go", "Slices")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	var emitted int
	final, err := svc.StreamTurn(context.Background(), userID, session.ID, "count", func(fragment string) error {
		emitted++
		if emitted == 3 {
			if closeErr := svc.CloseSession(context.Background(), userID, session.ID); closeErr != nil {
				t.Fatalf("CloseSession: %v", closeErr)
			}
		}
		return nil
	})
	if err == nil || errors.Is(err, context.Canceled) {
		t.Fatalf("StreamTurn after close: %v", err)
	}
	if final.Content != "one two three" {
		t.Errorf("partial content=%q", final.Content)
	}
	if emitted != 3 {
		t.Errorf("emitted=%d, want no fragments after close", emitted)
	}

	// the closed session is gone entirely
	if _, err := svc.GetSession(context.Background(), userID, session.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("session still reachable: %v", err)
	}
}

func TestStreamTurnRejectsConcurrentAndUnknown(t *testing.T) {
	svc := NewChatService(testutil.Logger(t), &fakeGemini{reply: "ok"})
	userID := uuid.New()

	if _, err := svc.StreamTurn(context.Background(), userID, uuid.New(), "hi", nil); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown session: %v", err)
	}

	session, err := svc.CreateSession(context.Background(), userID, "go", "Slices")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if _, err := svc.StreamTurn(context.Background(), userID, session.ID, "  ", nil); !errors.Is(err, apperr.ErrValidationFailure) {
		t.Errorf("blank message: %v", err)
	}
	if _, err := svc.GetSession(context.Background(), uuid.New(), session.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("other user's session: %v", err)
	}
}

func TestCloseSession(t *testing.T) {
	svc := NewChatService(testutil.Logger(t), &fakeGemini{reply: "ok"})
	userID := uuid.New()

	session, err := svc.CreateSession(context.Background(), userID, "go", "Slices")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if err := svc.CloseSession(context.Background(), userID, session.ID); err != nil {
		t.Fatalf("CloseSession: %v", err)
	}
	if _, err := svc.GetSession(context.Background(), userID, session.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("session still reachable: %v", err)
	}
	if err := svc.CloseSession(context.Background(), userID, session.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("double close: %v", err)
	}
}
