package types

const (
	ChatRoleUser  = "user"
	ChatRoleModel = "model"
)

// ChatMessage lives only for the lifetime of one tutor chat session.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	IsError bool   `json:"isError,omitempty"`
}
