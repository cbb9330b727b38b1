package identity

import (
	"fmt"
	"strings"
	"sync"

	"live-auction/internal/auctionerrors"
	model "live-auction/internal/models"
)

// Verifier turns a bearer token into a verified user. Identity issuance is
// owned by an external collaborator; this core only consumes the mapping.
type Verifier interface {
	Verify(token string) (model.User, error)
}

// Directory resolves user ids to display names for public views.
type Directory interface {
	DisplayName(userID string) string
}

// StaticVerifier is a token map backed Verifier/Directory, loaded from
// configuration. Anonymous viewing never goes through Verify; anonymous
// mutation fails here.
type StaticVerifier struct {
	mu    sync.RWMutex
	users map[string]model.User // key: token -> value: user
	names map[string]string     // key: userID -> value: username
}

// NewStaticVerifier builds a verifier from a token -> user mapping.
func NewStaticVerifier(tokens map[string]model.User) *StaticVerifier {
	names := make(map[string]string, len(tokens))
	for _, u := range tokens {
		names[u.UserID] = u.Username
	}
	return &StaticVerifier{users: tokens, names: names}
}

// Verify resolves a bearer token to a verified user.
func (v *StaticVerifier) Verify(token string) (model.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return model.User{}, fmt.Errorf("verify token: %w - empty bearer token", auctionerrors.ErrAuth)
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	u, ok := v.users[token]
	if !ok {
		return model.User{}, fmt.Errorf("verify token: %w - unknown bearer token", auctionerrors.ErrAuth)
	}
	return u, nil
}

// DisplayName returns the user's username, or a shortened fallback handle for
// ids the directory has never seen.
func (v *StaticVerifier) DisplayName(userID string) string {
	v.mu.RLock()
	name, ok := v.names[userID]
	v.mu.RUnlock()
	if ok {
		return name
	}
	if len(userID) > 8 {
		return "bidder-" + userID[:8]
	}
	return "bidder-" + userID
}

// Register adds a user to the directory. This method is intended for tests only.
func (v *StaticVerifier) Register(token string, u model.User) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.users[token] = u
	v.names[u.UserID] = u.Username
}
