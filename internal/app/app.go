// Package app is the application controller. It drives the repository
// and the session state machine on behalf of the front-end, holds the
// entry forms between renders, and folds backend rows into the view
// state each panel needs. Like the backends it never owns durable data;
// the lists it keeps are display caches refreshed from the repository.
package app

import (
	"context"
	"errors"
	"strings"
	"sync"

	"fintrack/internal/backend"
	"fintrack/internal/core"
	"fintrack/internal/forms"
	"fintrack/internal/log"
	"fintrack/internal/repository"
	"fintrack/internal/session"
)

// MinPasswordLength matches the hosted auth service's own minimum.
const MinPasswordLength = 6

type App struct {
	repo  *repository.Repository
	state *session.State
	log   *log.Logger

	inviteCode   string
	upcomingDays int

	mu          sync.Mutex
	accounts    []core.Account
	bills       []core.Bill
	companies   []core.Company
	accountForm forms.AccountForm
	billForm    forms.BillForm
	companyForm forms.CompanyForm
	shiftForm   forms.ShiftForm
	hasShift    bool
	status      map[session.Panel]string
}

type Options struct {
	InviteCode   string
	UpcomingDays int
}

func New(repo *repository.Repository, logger *log.Logger, opts Options) *App {
	if opts.UpcomingDays <= 0 {
		opts.UpcomingDays = 14
	}
	a := &App{
		repo:         repo,
		state:        session.New(),
		log:          logger.WithComponent(log.ComponentApp),
		inviteCode:   opts.InviteCode,
		upcomingDays: opts.UpcomingDays,
		status:       make(map[session.Panel]string),
	}
	a.resetForms()
	return a
}

// State exposes the navigation state machine to the front-end.
func (a *App) State() *session.State { return a.state }

// Token returns the backend access token of the current session, empty
// when signed out. The front-end persists it so a restart can restore
// the session.
func (a *App) Token() string { return a.repo.Session().AccessToken }

func (a *App) resetForms() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.accountForm.Reset()
	a.billForm.Reset()
	a.companyForm.Reset()
	a.shiftForm.Reset()
	a.hasShift = false
}

func (a *App) setStatus(p session.Panel, msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status[p] = msg
}

func (a *App) statusOf(p session.Panel) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status[p]
}

// Start brings the session up for a visitor. A recovery link forces the
// password reset flow; otherwise a stored token is tried and, when it
// still works, the visitor lands on the menu without signing in again.
func (a *App) Start(ctx context.Context, visitURL, storedToken string) {
	if _, ok := session.RecoveryToken(visitURL); ok {
		a.state.EnterRecovery()
		return
	}
	if storedToken != "" {
		if err := a.repo.Restore(ctx, storedToken); err == nil {
			a.state.SignedIn()
			if err := a.RefreshAll(ctx); err != nil {
				a.log.Warn("Initial refresh failed", "error", err)
			}
			return
		}
		a.log.Info("Stored session no longer valid")
	}
	a.state.SignedOut()
}

// displayText maps an error to the text shown to the user. Backend
// messages pass through verbatim; anything unrecognized gets a generic
// line instead of internals.
func displayText(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, backend.ErrNoSession):
		return "Please sign in again."
	case errors.Is(err, backend.ErrRestricted):
		return "This company still has shifts recorded. Delete those first."
	case errors.Is(err, repository.ErrNotConfirmed):
		return "Deletion needs to be confirmed."
	}
	switch {
	case errors.Is(err, core.ErrNameRequired),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrDueDateRequired),
		errors.Is(err, core.ErrStartRequired),
		errors.Is(err, core.ErrCompanyRequired),
		errors.Is(err, core.ErrDateRequired):
		return capitalize(err.Error())
	}
	var berr *backend.Error
	if errors.As(err, &berr) && berr.Message != "" {
		return berr.Message
	}
	return "Something went wrong. Please try again."
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
