package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skillsprint/skillsprint-backend/internal/apperr"
	"github.com/skillsprint/skillsprint-backend/internal/logger"
	"github.com/skillsprint/skillsprint-backend/internal/normalization"
	"github.com/skillsprint/skillsprint-backend/internal/types"
)

// chatFragmentDelay paces the cosmetic replay of a completed reply. The full
// text is in hand before the first fragment goes out.
const chatFragmentDelay = 50 * time.Millisecond

const chatErrorReply = "I'm sorry, I encountered an error. Please try again."

type ChatState string

const (
	ChatStateIdle      ChatState = "idle"
	ChatStateSending   ChatState = "sending"
	ChatStateStreaming ChatState = "streaming"
)

// ChatSessionView is a read-only snapshot handed to handlers.
type ChatSessionView struct {
	ID       uuid.UUID           `json:"id"`
	Skill    string              `json:"skill"`
	Topic    string              `json:"topic"`
	State    ChatState           `json:"state"`
	Messages []types.ChatMessage `json:"messages"`
}

// ChatService owns ephemeral tutor sessions. One session per topic, one turn
// in flight at a time; each turn is one stateless upstream exchange whose
// reply is replayed as timed word fragments.
type ChatService interface {
	CreateSession(ctx context.Context, userID uuid.UUID, skill, topic string) (*ChatSessionView, error)
	GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*ChatSessionView, error)
	CloseSession(ctx context.Context, userID, sessionID uuid.UUID) error
	// StreamTurn appends the user message, performs the exchange, and calls
	// emit once per fragment. Emission stops when ctx is cancelled or the
	// session is closed; the accumulated text still lands in the history.
	StreamTurn(ctx context.Context, userID, sessionID uuid.UUID, message string, emit func(fragment string) error) (types.ChatMessage, error)
}

type chatSession struct {
	mu       sync.Mutex
	id       uuid.UUID
	userID   uuid.UUID
	skill    string
	topic    string
	state    ChatState
	messages []types.ChatMessage
	closed   chan struct{}
}

func (s *chatSession) view() *ChatSessionView {
	msgs := make([]types.ChatMessage, len(s.messages))
	copy(msgs, s.messages)
	return &ChatSessionView{
		ID:       s.id,
		Skill:    s.skill,
		Topic:    s.topic,
		State:    s.state,
		Messages: msgs,
	}
}

type chatService struct {
	mu       sync.RWMutex
	log      *logger.Logger
	gemini   GeminiClient
	sessions map[uuid.UUID]*chatSession
}

func NewChatService(log *logger.Logger, gemini GeminiClient) ChatService {
	return &chatService{
		log:      log.With("service", "ChatService"),
		gemini:   gemini,
		sessions: make(map[uuid.UUID]*chatSession),
	}
}

func (cs *chatService) CreateSession(ctx context.Context, userID uuid.UUID, skill, topic string) (*ChatSessionView, error) {
	skill = normalization.TrimInputString(skill)
	topic = normalization.TrimInputString(topic)
	if skill == "" || topic == "" {
		return nil, fmt.Errorf("%w: skill and topic are required", apperr.ErrValidationFailure)
	}

	session := &chatSession{
		id:     uuid.New(),
		userID: userID,
		skill:  skill,
		topic:  topic,
		state:  ChatStateIdle,
		closed: make(chan struct{}),
		// The greeting is appended locally, never sent upstream.
		messages: []types.ChatMessage{{
			Role:    types.ChatRoleModel,
			Content: fmt.Sprintf(`Hello! I'm your AI tutor for today. Ask me anything about "%s"!`, topic),
		}},
	}

	cs.mu.Lock()
	cs.sessions[session.id] = session
	cs.mu.Unlock()

	cs.log.Debug("Chat session created", "session_id", session.id, "user_id", userID, "topic", topic)
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.view(), nil
}

func (cs *chatService) lookup(userID, sessionID uuid.UUID) (*chatSession, error) {
	cs.mu.RLock()
	session, ok := cs.sessions[sessionID]
	cs.mu.RUnlock()
	if !ok || session.userID != userID {
		return nil, fmt.Errorf("%w: no such chat session", apperr.ErrNotFound)
	}
	return session, nil
}

func (cs *chatService) GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*ChatSessionView, error) {
	session, err := cs.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.view(), nil
}

func (cs *chatService) CloseSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	session, err := cs.lookup(userID, sessionID)
	if err != nil {
		return err
	}
	cs.mu.Lock()
	delete(cs.sessions, sessionID)
	cs.mu.Unlock()

	session.mu.Lock()
	defer session.mu.Unlock()
	select {
	case <-session.closed:
	default:
		close(session.closed)
	}
	return nil
}

func (cs *chatService) StreamTurn(ctx context.Context, userID, sessionID uuid.UUID, message string, emit func(fragment string) error) (types.ChatMessage, error) {
	message = normalization.TrimInputString(message)
	if message == "" {
		return types.ChatMessage{}, fmt.Errorf("%w: message is required", apperr.ErrValidationFailure)
	}

	session, err := cs.lookup(userID, sessionID)
	if err != nil {
		return types.ChatMessage{}, err
	}

	session.mu.Lock()
	if session.state != ChatStateIdle {
		session.mu.Unlock()
		return types.ChatMessage{}, fmt.Errorf("%w: a turn is already in flight", apperr.ErrValidationFailure)
	}
	session.state = ChatStateSending
	session.messages = append(session.messages, types.ChatMessage{Role: types.ChatRoleUser, Content: message})
	skill, topic := session.skill, session.topic
	session.mu.Unlock()

	req := BuildChatTurnRequest(skill, topic, message)
	reply, err := cs.gemini.GenerateText(ctx, &userID, types.AICallTypeChatTurn, req)
	if err != nil {
		errMsg := types.ChatMessage{Role: types.ChatRoleModel, Content: chatErrorReply, IsError: true}
		session.mu.Lock()
		session.messages = append(session.messages, errMsg)
		session.state = ChatStateIdle
		session.mu.Unlock()
		return errMsg, err
	}

	session.mu.Lock()
	session.state = ChatStateStreaming
	session.mu.Unlock()

	content, streamErr := cs.replay(ctx, session, reply, emit)

	finalMsg := types.ChatMessage{Role: types.ChatRoleModel, Content: content}
	session.mu.Lock()
	session.messages = append(session.messages, finalMsg)
	session.state = ChatStateIdle
	session.mu.Unlock()

	return finalMsg, streamErr
}

// replay emits the reply word by word with a fixed delay between fragments.
// It returns whatever accumulated when cancelled or the sink failed.
func (cs *chatService) replay(ctx context.Context, session *chatSession, reply string, emit func(fragment string) error) (string, error) {
	words := strings.Fields(reply)
	var sb strings.Builder

	timer := time.NewTimer(chatFragmentDelay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for i, word := range words {
		if i > 0 {
			timer.Reset(chatFragmentDelay)
			select {
			case <-ctx.Done():
				return sb.String(), ctx.Err()
			case <-session.closed:
				return sb.String(), fmt.Errorf("chat session closed mid-stream")
			case <-timer.C:
			}
		}

		fragment := word
		if i > 0 {
			fragment = " " + word
		}
		sb.WriteString(fragment)
		if emit != nil {
			if err := emit(fragment); err != nil {
				return sb.String(), err
			}
		}
	}
	return sb.String(), nil
}
