// Package session persists query states between tool calls. Redis is the
// primary backend; an in-process map serves as fallback when Redis is
// unreachable or errors on a call.
package session

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/querysculptor/querysculptor/internal/querystate"
)

// KeyPrefix namespaces session keys in the backing store.
const KeyPrefix = "querystate:"

// Store is the session persistence interface.
type Store interface {
	// Save writes the state under id and refreshes its lifetime.
	Save(ctx context.Context, id string, state *querystate.QueryState) error

	// Load reads the state for id. Returns ErrNotFound when the session
	// does not exist or has expired.
	Load(ctx context.Context, id string) (*querystate.QueryState, error)

	// Delete removes the session.
	Delete(ctx context.Context, id string) error
}

// NewSessionID returns a fresh opaque 32-hex-character session id.
func NewSessionID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// IsValidSessionID reports whether id has the expected 32-hex shape.
func IsValidSessionID(id string) bool {
	if len(id) != 32 {
		return false
	}
	for _, r := range id {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}
