package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrijs2005/authdash/internal/client/models"
)

// Observer is the read-only view of a Store handed to the view layer.
type Observer interface {
	State() State
	Subscribe(fn func(State)) (unsubscribe func())
}

type subscriber struct {
	id int
	fn func(State)
}

// Flow identifies one authentication attempt started by BeginAuth.
type Flow uint64

var (
	// ErrFlowInProgress is returned by BeginAuth while another flow runs.
	ErrFlowInProgress = errors.New("another authentication flow is in progress")
	// ErrAuthenticated is returned by BeginAuth when a session already exists.
	ErrAuthenticated = errors.New("session already authenticated")
	// ErrFlowEnded is returned when a flow tries to finish after it was
	// superseded, typically by a logout. Nothing is changed.
	ErrFlowEnded = errors.New("authentication flow has ended")
)

// Store owns the session state and the durable token.
//
// Every mutation, including the durable write that goes with it, is applied
// under the lock and published to subscribers once the lock is released, so
// observers only ever see complete snapshots. A flow finishes only if no
// logout or newer flow happened since its BeginAuth.
type Store struct {
	mu     sync.Mutex
	state  State
	tokens TokenStore
	gen    uint64
	subs   []subscriber
	nextID int
}

func NewStore(tokens TokenStore) *Store {
	return &Store{
		state:  State{Phase: PhaseAnonymous},
		tokens: tokens,
	}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Token
}

func (s *Store) User() *models.UserRecord {
	return s.State().User
}

func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsAuthenticated()
}

// StoredToken returns the token kept in durable storage, or ErrNoToken.
func (s *Store) StoredToken(ctx context.Context) (string, error) {
	return s.tokens.Load(ctx)
}

// Subscribe registers fn to receive every new snapshot. Callbacks run
// synchronously in subscription order on the goroutine that mutated the store.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.subs = slices.DeleteFunc(s.subs, func(sub subscriber) bool { return sub.id == id })
	}
}

// BeginAuth starts an authentication flow. The checks and the start happen
// under one lock: it fails with ErrAuthenticated when a session exists and
// with ErrFlowInProgress when another flow holds the store.
func (s *Store) BeginAuth() (Flow, error) {
	var flow Flow
	err := s.update(func(st *State) (bool, error) {
		if st.Loading {
			return false, ErrFlowInProgress
		}
		if st.IsAuthenticated() {
			return false, ErrAuthenticated
		}
		s.gen++
		flow = Flow(s.gen)
		st.Loading = true
		st.Phase = PhaseAuthenticating
		st.LastError = ""
		st.ValidationErrors = nil
		return true, nil
	})
	return flow, err
}

// SetSession persists token and then publishes token and user together.
// On a storage failure the in-memory state is left untouched.
func (s *Store) SetSession(ctx context.Context, flow Flow, token string, user *models.UserRecord) error {
	if token == "" || user == nil {
		return errors.New("set session: token and user are both required")
	}
	u := *user
	return s.update(func(st *State) (bool, error) {
		if !s.owns(flow) {
			return false, ErrFlowEnded
		}
		if err := s.tokens.Save(ctx, token); err != nil {
			return false, fmt.Errorf("persist token: %w", err)
		}
		*st = State{Phase: PhaseAuthenticated, Token: token, User: &u}
		return true, nil
	})
}

// ClearSession drops token, user and errors from memory, wipes durable
// storage and ends any flow in flight. Memory is cleared even when the
// storage wipe fails; that error is returned for the caller to log.
func (s *Store) ClearSession(ctx context.Context) error {
	return s.update(func(st *State) (bool, error) {
		s.gen++
		*st = State{Phase: PhaseAnonymous}
		return true, s.clearTokens(ctx)
	})
}

// Cancel ends flow the way ClearSession does, without an error to report.
func (s *Store) Cancel(ctx context.Context, flow Flow) error {
	return s.update(func(st *State) (bool, error) {
		if !s.owns(flow) {
			return false, ErrFlowEnded
		}
		s.gen++
		*st = State{Phase: PhaseAnonymous}
		return true, s.clearTokens(ctx)
	})
}

// Reject ends a flow whose network exchange failed: memory drops any token
// and user in the same snapshot that reports the failure, then durable
// storage is wiped.
func (s *Store) Reject(ctx context.Context, flow Flow, message string, errs []models.ValidationError) error {
	return s.update(func(st *State) (bool, error) {
		if !s.owns(flow) {
			return false, ErrFlowEnded
		}
		*st = State{
			Phase:            PhaseError,
			LastError:        message,
			ValidationErrors: slices.Clone(errs),
		}
		return true, s.clearTokens(ctx)
	})
}

// Fail ends flow in the error phase with a single message. Storage is not
// touched.
func (s *Store) Fail(flow Flow, message string) error {
	return s.update(func(st *State) (bool, error) {
		if !s.owns(flow) {
			return false, ErrFlowEnded
		}
		st.Phase = PhaseError
		st.Loading = false
		st.LastError = message
		st.ValidationErrors = nil
		return true, nil
	})
}

// ClearErrors forgets the last failure. An error phase with no session falls
// back to anonymous. Nothing is published when there was nothing to clear.
func (s *Store) ClearErrors() {
	_ = s.update(func(st *State) (bool, error) {
		if st.LastError == "" && len(st.ValidationErrors) == 0 {
			return false, nil
		}
		st.LastError = ""
		st.ValidationErrors = nil
		if st.Phase == PhaseError && !st.IsAuthenticated() {
			st.Phase = PhaseAnonymous
		}
		return true, nil
	})
}

// owns reports whether flow is the one currently in flight. Callers hold mu.
func (s *Store) owns(flow Flow) bool {
	return s.state.Loading && uint64(flow) == s.gen
}

func (s *Store) clearTokens(ctx context.Context) error {
	if err := s.tokens.Clear(ctx); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// update applies fn under the lock and, if fn reports a change, publishes the
// new snapshot after unlocking. fn's error is returned either way.
func (s *Store) update(fn func(st *State) (bool, error)) error {
	s.mu.Lock()
	changed, err := fn(&s.state)
	if !changed {
		s.mu.Unlock()
		return err
	}
	snapshot := s.state.clone()
	subs := append([]subscriber(nil), s.subs...)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(snapshot)
	}
	return err
}
