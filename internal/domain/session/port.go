package session

import (
	"context"
	"errors"

	"github.com/Aayan-01/CLOT/internal/domain/analysis"
)

// ErrNotFound covers both unknown and expired session ids. Callers
// cannot tell the two apart.
var ErrNotFound = errors.New("session not found")

// Store port (interface for session persistence)
type Store interface {
	// Create mints a new session with a fresh id and full TTL.
	Create(ctx context.Context, imageRefs []string, result analysis.Result) (*Session, error)

	// Get returns the session or ErrNotFound. An expired session is
	// removed on access and reported as ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)

	// Update replaces the conversation and slides the expiry forward.
	Update(ctx context.Context, id string, conversation []Turn) error

	// Delete removes the session. Deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error

	// Sweep removes every expired session and returns how many went.
	Sweep(ctx context.Context) (int, error)
}
