package app

import (
	"context"
	"strings"

	"fintrack/internal/session"
)

// Register creates an account. The invite code is checked locally; a
// wrong code never reaches the backend.
func (a *App) Register(ctx context.Context, email, password, confirm, invite string) {
	if invite != a.inviteCode {
		a.setStatus(session.PanelAuth, "Invalid invite code.")
		return
	}
	if msg, ok := checkPassword(password, confirm); !ok {
		a.setStatus(session.PanelAuth, msg)
		return
	}
	email = strings.TrimSpace(email)
	if email == "" {
		a.setStatus(session.PanelAuth, "Email is required.")
		return
	}
	if err := a.repo.SignUp(ctx, email, password); err != nil {
		a.setStatus(session.PanelAuth, displayText(err))
		return
	}
	a.log.Info("Account registered", "email", email)
	a.setStatus(session.PanelAuth, "Account created. You can sign in now.")
}

// Login signs in and, on success, loads the reference lists and lands on
// the menu.
func (a *App) Login(ctx context.Context, email, password string) {
	if !a.state.Begin("login") {
		return
	}
	defer a.state.End("login")

	if err := a.repo.SignIn(ctx, strings.TrimSpace(email), password); err != nil {
		a.setStatus(session.PanelAuth, displayText(err))
		return
	}
	a.setStatus(session.PanelAuth, "")
	a.resetForms()
	a.state.SignedIn()
	if err := a.RefreshAll(ctx); err != nil {
		a.setStatus(session.PanelMenu, displayText(err))
	}
}

// ForgotPassword requests a reset link. The response does not say
// whether the address exists.
func (a *App) ForgotPassword(ctx context.Context, email string) {
	email = strings.TrimSpace(email)
	if email == "" {
		a.setStatus(session.PanelAuth, "Email is required.")
		return
	}
	if err := a.repo.RequestPasswordReset(ctx, email); err != nil {
		a.setStatus(session.PanelAuth, displayText(err))
		return
	}
	a.setStatus(session.PanelAuth, "If the address is registered, a reset link is on its way.")
}

// SetNewPassword finishes the recovery flow. The token comes from the
// reset link; signed-in users changing their password pass an empty
// token and their session token is used instead.
func (a *App) SetNewPassword(ctx context.Context, token, password, confirm string) {
	if msg, ok := checkPassword(password, confirm); !ok {
		a.setStatus(session.PanelReset, msg)
		return
	}
	if err := a.repo.UpdatePassword(ctx, token, password); err != nil {
		a.setStatus(session.PanelReset, displayText(err))
		return
	}
	a.log.Info("Password updated")
	a.setStatus(session.PanelReset, "")
	a.setStatus(session.PanelAuth, "Password updated. Sign in with the new one.")
	a.state.SignedOut()
}

// Logout ends the session and returns to the auth panel.
func (a *App) Logout(ctx context.Context) {
	if err := a.repo.SignOut(ctx); err != nil {
		a.log.Warn("Sign out reported an error", "error", err)
	}
	a.mu.Lock()
	a.accounts, a.bills, a.companies = nil, nil, nil
	a.status = make(map[session.Panel]string)
	a.mu.Unlock()
	a.resetForms()
	a.state.SignedOut()
}

func checkPassword(password, confirm string) (string, bool) {
	if len(password) < MinPasswordLength {
		return "Password must be at least 6 characters.", false
	}
	if password != confirm {
		return "Passwords do not match.", false
	}
	return "", true
}
