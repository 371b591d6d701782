package types

import (
	"time"

	"github.com/google/uuid"
)

// SecureAPIKey is a named provider secret managed by admins. The Gemini key
// the backend injects upstream lives here under key_name GEMINI_API_KEY.
type SecureAPIKey struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	KeyName     string     `gorm:"index;not null;column:key_name" json:"key_name"`
	APIKey      string     `gorm:"not null;column:api_key" json:"api_key"`
	Description string     `gorm:"column:description" json:"description"`
	IsActive    bool       `gorm:"not null;default:true;column:is_active" json:"is_active"`
	CreatedBy   *uuid.UUID `gorm:"type:uuid;column:created_by" json:"created_by,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (SecureAPIKey) TableName() string {
	return "secure_api_key"
}
