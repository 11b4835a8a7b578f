package session

import (
	"time"

	"github.com/Aayan-01/CLOT/internal/domain/analysis"
)

// Conversation roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultTTL is the sliding lifetime of a session. Reads do not extend
// it; conversation updates do.
const DefaultTTL = 24 * time.Hour

// Turn is one conversation entry.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Aggregate Root: Session binds the uploaded photos, the structured
// analysis and the running follow-up conversation.
type Session struct {
	ID           string          `json:"id"`
	ImageRefs    []string        `json:"imageRefs,omitempty"`
	Analysis     analysis.Result `json:"analysis"`
	Conversation []Turn          `json:"conversation"`
	CreatedAt    time.Time       `json:"createdAt"`
	ExpiresAt    time.Time       `json:"expiresAt"`
}

// Expired reports whether the session is past its lifetime at now.
// The expiry instant itself still counts as alive.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
