package authflowrepo

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrStateNotFound is returned by Take for unknown or already redeemed states
	ErrStateNotFound = errors.New("state not found")
	// ErrStateExists is returned by Put when the state is already live
	ErrStateExists = errors.New("state already exists")
)

// AuthFlowState is what the login handler remembers between the redirect to
// the identity provider and the callback.
type AuthFlowState struct {
	CodeVerifier  string    `json:"code_verifier"`
	CodeChallenge string    `json:"code_challenge"`
	CreatedAt     time.Time `json:"created_at"`
}

// Repo maps a state value to its pending login. Entries are single use: Take
// removes the entry atomically so concurrent callbacks for one state see
// exactly one hit. Entries never expire.
type Repo interface {
	Put(ctx context.Context, state string, authState AuthFlowState) error
	Take(ctx context.Context, state string) (AuthFlowState, error)
}
