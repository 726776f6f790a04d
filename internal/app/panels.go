package app

import (
	"context"
	"errors"

	"fintrack/internal/backend"
	"fintrack/internal/session"
)

// OpenPanel navigates to a panel, loading what it needs. Unauthenticated
// sessions are pinned to the auth panel, recovery sessions to the reset
// panel.
func (a *App) OpenPanel(ctx context.Context, p session.Panel) {
	switch a.state.Phase() {
	case session.Unauthenticated:
		p = session.PanelAuth
	case session.RecoveryPending:
		p = session.PanelReset
	}

	var err error
	switch p {
	case session.PanelAccounts:
		err = a.refreshAccounts(ctx)
	case session.PanelBills:
		if err = a.refreshBills(ctx); err == nil {
			err = a.refreshAccounts(ctx)
		}
	case session.PanelAdmin:
		err = a.refreshCompanies(ctx)
	case session.PanelFinances:
		if err = a.refreshCompanies(ctx); err == nil {
			a.loadShift(ctx)
		}
	}
	if err != nil {
		a.setStatus(p, displayText(err))
	}
	a.state.Open(p)
}

// Back returns to the previous panel without reloading anything.
func (a *App) Back() session.Panel {
	return a.state.Back()
}

// SelectCompany makes a company the target of shift entry and loads its
// shift for the day cursor.
func (a *App) SelectCompany(ctx context.Context, id string) {
	a.state.SelectCompany(id)
	a.loadShift(ctx)
}

// SetDay moves the day cursor and reloads the shift form for it.
func (a *App) SetDay(ctx context.Context, date string) {
	a.state.SetWorkDate(date)
	a.loadShift(ctx)
}

// ShiftDay moves the day cursor by delta days, clamped at today.
func (a *App) ShiftDay(ctx context.Context, delta int) {
	a.state.ShiftWorkDay(delta)
	a.loadShift(ctx)
}

// ShiftMonth moves the month cursor. The panels re-fetch on render, so
// nothing is loaded here.
func (a *App) ShiftMonth(delta int) {
	a.state.ShiftMonth(delta)
}

// loadShift fills the shift form from the stored shift of the active
// company and day. No stored shift means a blank form; that is the
// normal case, not an error.
func (a *App) loadShift(ctx context.Context) {
	companyID := a.state.ActiveCompany()
	if companyID == "" {
		a.mu.Lock()
		a.shiftForm.Reset()
		a.hasShift = false
		a.mu.Unlock()
		return
	}

	shift, err := a.repo.ShiftFor(ctx, companyID, a.state.WorkDate())
	a.mu.Lock()
	defer a.mu.Unlock()
	switch {
	case err == nil:
		a.shiftForm.Load(shift)
		a.hasShift = true
		a.status[session.PanelFinances] = ""
	case errors.Is(err, backend.ErrNotFound):
		a.shiftForm.Reset()
		a.hasShift = false
		a.status[session.PanelFinances] = ""
	default:
		a.shiftForm.Reset()
		a.hasShift = false
		a.status[session.PanelFinances] = displayText(err)
	}
}
