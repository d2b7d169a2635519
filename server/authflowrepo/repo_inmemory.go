package authflowrepo

import (
	"context"
	"errors"
	"sync"
)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface
type InMemoryRepo struct {
	mu     sync.Mutex
	states map[string]AuthFlowState
}

var _ Repo = (*InMemoryRepo)(nil)

// NewInMemoryRepo creates a new in-memory auth flow state repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		states: make(map[string]AuthFlowState),
	}
}

// Put stores a new auth flow state
func (r *InMemoryRepo) Put(_ context.Context, state string, authState AuthFlowState) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.states[state]; exists {
		return ErrStateExists
	}
	r.states[state] = authState
	return nil
}

// Take removes and returns the auth flow state for state
func (r *InMemoryRepo) Take(_ context.Context, state string) (AuthFlowState, error) {
	if state == "" {
		return AuthFlowState{}, ErrStateNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	authState, exists := r.states[state]
	if !exists {
		return AuthFlowState{}, ErrStateNotFound
	}
	delete(r.states, state)
	return authState, nil
}

// Len returns the number of pending logins. Abandoned logins are never
// reclaimed, so this only shrinks through Take.
func (r *InMemoryRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}
