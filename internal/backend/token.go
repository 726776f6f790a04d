package backend

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionFromToken rebuilds a Session from a bare access token, without
// verifying the signature. Verification is the backend's job on the next
// call; this only recovers the identity fields (sub, email, exp) so a
// stored token can be turned back into a usable session.
func SessionFromToken(token string) (Session, error) {
	if token == "" {
		return Session{}, ErrNoSession
	}
	var claims struct {
		Email string `json:"email"`
		jwt.RegisteredClaims
	}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Session{}, ErrNoSession
	}
	s := Session{AccessToken: token, UserID: claims.Subject, Email: claims.Email}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	if !s.Valid() {
		return Session{}, ErrNoSession
	}
	return s, nil
}
