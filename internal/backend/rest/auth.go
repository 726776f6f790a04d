package rest

import (
	"context"
	"net/http"
	"net/url"

	"fintrack/internal/backend"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	User        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

func (c *Client) SignUp(ctx context.Context, email, password string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/v1/signup", nil, credentials{email, password})
	if err != nil {
		return err
	}
	return c.do("signup", req, nil)
}

func (c *Client) SignIn(ctx context.Context, email, password string) (backend.Session, error) {
	q := url.Values{"grant_type": {"password"}}
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/v1/token", q, credentials{email, password})
	if err != nil {
		return backend.Session{}, err
	}
	var tr tokenResponse
	if err := c.do("signin", req, &tr); err != nil {
		return backend.Session{}, err
	}
	// The token itself is the source of truth for identity and expiry;
	// the response envelope only mirrors it.
	sess, err := backend.SessionFromToken(tr.AccessToken)
	if err != nil {
		return backend.Session{}, &backend.Error{Op: "signin", Message: "Invalid login credentials", Err: err}
	}
	if sess.Email == "" {
		sess.Email = tr.User.Email
	}
	return sess, nil
}

func (c *Client) SignOut(ctx context.Context, token string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/v1/logout", nil, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return c.do("signout", req, nil)
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	var q url.Values
	if c.siteURL != "" {
		q = url.Values{"redirect_to": {c.siteURL}}
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/v1/recover", q, struct {
		Email string `json:"email"`
	}{email})
	if err != nil {
		return err
	}
	return c.do("request password reset", req, nil)
}

func (c *Client) UpdatePassword(ctx context.Context, token, newPassword string) error {
	req, err := c.newRequest(ctx, http.MethodPut, "/auth/v1/user", nil, struct {
		Password string `json:"password"`
	}{newPassword})
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return c.do("update password", req, nil)
}

func (c *Client) CurrentUser(ctx context.Context, token string) (backend.User, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/auth/v1/user", nil, nil)
	if err != nil {
		return backend.User{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	var u backend.User
	if err := c.do("current user", req, &u); err != nil {
		return backend.User{}, err
	}
	if u.ID == "" {
		return backend.User{}, backend.ErrNoSession
	}
	return u, nil
}
