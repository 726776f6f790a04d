package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/backend"
)

const (
	sessionTokenTTL  = 24 * time.Hour
	recoveryTokenTTL = time.Hour

	purposeSession  = "session"
	purposeRecovery = "recovery"
)

// claims are the JWT claims for both session and recovery tokens.
type claims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

func (s *Store) SignUp(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash) VALUES (?, ?, ?)`,
		uuid.New().String(), email, string(hash))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return &backend.Error{Op: "signup", Message: "User already registered", Err: err}
		}
		return storeErr("signup", err)
	}
	return nil
}

func (s *Store) SignIn(ctx context.Context, email, password string) (backend.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var id, hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM users WHERE email = ?`, email).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return backend.Session{}, &backend.Error{Op: "signin", Message: "Invalid login credentials"}
	}
	if err != nil {
		return backend.Session{}, storeErr("signin", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return backend.Session{}, &backend.Error{Op: "signin", Message: "Invalid login credentials"}
	}

	expires := time.Now().Add(sessionTokenTTL)
	token, err := s.signToken(id, email, purposeSession, expires)
	if err != nil {
		return backend.Session{}, err
	}
	return backend.Session{AccessToken: token, UserID: id, Email: email, ExpiresAt: expires}, nil
}

// SignOut is a no-op: tokens are stateless and expire on their own; the
// client discards its copy.
func (s *Store) SignOut(context.Context, string) error { return nil }

// RequestPasswordReset has no mailer in the self-hosted setup; the
// recovery link is written to the log for the operator to pass on.
func (s *Store) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM users WHERE email = ?`, email).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		// Whether the address exists is not disclosed.
		return nil
	}
	if err != nil {
		return storeErr("request password reset", err)
	}

	token, err := s.signToken(id, email, purposeRecovery, time.Now().Add(recoveryTokenTTL))
	if err != nil {
		return err
	}
	slog.Info("Password recovery link issued",
		"component", "backend", "email", email,
		"link", "/#access_token="+token+"&type=recovery")
	return nil
}

func (s *Store) UpdatePassword(ctx context.Context, token, newPassword string) error {
	// Either a live session token or a recovery token may set a new
	// password, matching the hosted flow.
	c, err := s.verifyToken(token, purposeSession, purposeRecovery)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`, string(hash), c.Subject)
	if err != nil {
		return storeErr("update password", err)
	}
	return affected("update password", res)
}

func (s *Store) CurrentUser(_ context.Context, token string) (backend.User, error) {
	c, err := s.verifyToken(token, purposeSession)
	if err != nil {
		return backend.User{}, err
	}
	return backend.User{ID: c.Subject, Email: c.Email}, nil
}

func (s *Store) signToken(userID, email, purpose string, expires time.Time) (string, error) {
	c := &claims{
		Email:   email,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (s *Store) verifyToken(token string, purposes ...string) (*claims, error) {
	if token == "" {
		return nil, backend.ErrNoSession
	}
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, backend.ErrNoSession
	}
	c, ok := parsed.Claims.(*claims)
	if !ok {
		return nil, backend.ErrNoSession
	}
	for _, p := range purposes {
		if c.Purpose == p {
			return c, nil
		}
	}
	return nil, backend.ErrNoSession
}
