package app

import (
	"context"

	"fintrack/internal/forms"
	"fintrack/internal/session"
)

// SaveAccount persists the submitted account form. On success the form
// clears and the list refreshes; on failure the input is kept so the
// user can correct it.
func (a *App) SaveAccount(ctx context.Context, f forms.AccountForm) {
	if !a.state.Begin("account") {
		return
	}
	defer a.state.End("account")

	a.mu.Lock()
	a.accountForm = f
	a.mu.Unlock()

	rec, err := f.Record()
	if err != nil {
		a.setStatus(session.PanelAccounts, displayText(err))
		return
	}
	if err := a.repo.SaveAccount(ctx, rec); err != nil {
		a.setStatus(session.PanelAccounts, displayText(err))
		return
	}

	a.mu.Lock()
	a.accountForm.Reset()
	a.mu.Unlock()
	a.setStatus(session.PanelAccounts, "Account saved.")
	if err := a.refreshAccounts(ctx); err != nil {
		a.setStatus(session.PanelAccounts, displayText(err))
	}
}

// EditAccount loads an account from the list into the form.
func (a *App) EditAccount(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, acc := range a.accounts {
		if acc.ID == id {
			a.accountForm.Load(acc)
			return
		}
	}
}

// CancelAccountEdit clears the form back to a new account.
func (a *App) CancelAccountEdit() {
	a.mu.Lock()
	a.accountForm.Reset()
	a.mu.Unlock()
}

// DeleteAccount removes an account. Bills that referenced it keep their
// dangling reference and simply lose the label.
func (a *App) DeleteAccount(ctx context.Context, id string, confirmed bool) {
	if err := a.repo.DeleteAccount(ctx, id, confirmed); err != nil {
		a.setStatus(session.PanelAccounts, displayText(err))
		return
	}
	a.mu.Lock()
	if a.accountForm.ID == id {
		a.accountForm.Reset()
	}
	a.mu.Unlock()
	a.setStatus(session.PanelAccounts, "Account deleted.")
	if err := a.refreshAccounts(ctx); err != nil {
		a.setStatus(session.PanelAccounts, displayText(err))
	}
}
