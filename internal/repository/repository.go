// Package repository is the data access facade the rest of the
// application talks to. It owns the current backend session, refuses
// privileged calls without one, and validates records before they ever
// reach the wire. It holds no row data itself: every read goes to the
// backend.
package repository

import (
	"context"
	"errors"
	"sync"

	"fintrack/internal/backend"
	"fintrack/internal/log"
)

// ErrNotConfirmed is returned by deletes that were not explicitly
// confirmed by the caller.
var ErrNotConfirmed = errors.New("confirmation required")

type Repository struct {
	auth  backend.Auth
	store backend.Store
	log   *log.Logger

	mu      sync.RWMutex
	session backend.Session
}

func New(auth backend.Auth, store backend.Store, logger *log.Logger) *Repository {
	return &Repository{
		auth:  auth,
		store: store,
		log:   logger.WithComponent(log.ComponentRepository),
	}
}

// Session returns the current session, valid or not.
func (r *Repository) Session() backend.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.session
}

// LoggedIn reports whether a usable session is present.
func (r *Repository) LoggedIn() bool { return r.Session().Valid() }

func (r *Repository) setSession(s backend.Session) {
	r.mu.Lock()
	r.session = s
	r.mu.Unlock()
	if tb, ok := r.store.(backend.TokenBearer); ok {
		tb.SetToken(s.AccessToken)
	}
}

// userID returns the owner for the current session, or ErrNoSession.
func (r *Repository) userID() (string, error) {
	s := r.Session()
	if !s.Valid() {
		return "", backend.ErrNoSession
	}
	return s.UserID, nil
}

func (r *Repository) SignUp(ctx context.Context, email, password string) error {
	return r.auth.SignUp(ctx, email, password)
}

func (r *Repository) SignIn(ctx context.Context, email, password string) error {
	s, err := r.auth.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	r.setSession(s)
	r.log.Info("Signed in", "user", s.Email)
	return nil
}

// Restore resumes a session from a previously issued access token, as
// after a restart. The token is checked against the backend so a revoked
// or expired one is rejected up front.
func (r *Repository) Restore(ctx context.Context, token string) error {
	u, err := r.auth.CurrentUser(ctx, token)
	if err != nil {
		return err
	}
	s, err := backend.SessionFromToken(token)
	if err != nil {
		// Opaque token; the backend vouched for it above.
		s = backend.Session{AccessToken: token}
	}
	s.UserID = u.ID
	s.Email = u.Email
	r.setSession(s)
	r.log.Info("Session restored", "user", s.Email)
	return nil
}

// SignOut ends the session. The local session is dropped even when the
// backend call fails; there is nothing useful to do with it afterwards.
func (r *Repository) SignOut(ctx context.Context) error {
	s := r.Session()
	r.setSession(backend.Session{})
	if s.AccessToken == "" {
		return nil
	}
	if err := r.auth.SignOut(ctx, s.AccessToken); err != nil {
		r.log.Warn("Sign out failed", "error", err)
		return err
	}
	return nil
}

func (r *Repository) RequestPasswordReset(ctx context.Context, email string) error {
	return r.auth.RequestPasswordReset(ctx, email)
}

// UpdatePassword sets a new password using the given token, which may be
// a recovery token from a reset link or the current session token.
func (r *Repository) UpdatePassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		token = r.Session().AccessToken
	}
	if token == "" {
		return backend.ErrNoSession
	}
	return r.auth.UpdatePassword(ctx, token, newPassword)
}

func (r *Repository) Close() error {
	return r.store.Close()
}

// owned stamps the record with the session's user id, rejecting the call
// when no session is present.
func (r *Repository) owned(set func(userID string)) error {
	id, err := r.userID()
	if err != nil {
		return err
	}
	set(id)
	return nil
}
