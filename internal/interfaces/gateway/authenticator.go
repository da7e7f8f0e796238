package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/mwhitacre/leaguelive/internal/usecase"
)

// Identity is the verified result of a token exchange.
type Identity struct {
	UserID  string
	TeamIDs []string
}

func (i Identity) Owns(teamID string) bool {
	for _, id := range i.TeamIDs {
		if id == teamID {
			return true
		}
	}
	return false
}

// Authenticator verifies a client token. The real verifier lives outside
// this service; StaticAuthenticator covers development and tests.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (Identity, error)
}

type StaticAuthenticator struct {
	mu     sync.RWMutex
	tokens map[string]Identity
}

func NewStaticAuthenticator(tokens map[string]Identity) *StaticAuthenticator {
	if tokens == nil {
		tokens = make(map[string]Identity)
	}
	return &StaticAuthenticator{tokens: tokens}
}

func (a *StaticAuthenticator) Authenticate(_ context.Context, token string) (Identity, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	identity, ok := a.tokens[token]
	if !ok {
		return Identity{}, fmt.Errorf("%w: unknown token", usecase.ErrUnauthorized)
	}
	return identity, nil
}

func (a *StaticAuthenticator) Grant(token string, identity Identity) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tokens[token] = identity
}
