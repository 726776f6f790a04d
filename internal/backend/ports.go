// Package backend defines the outbound ports to the system of record.
// All durable state lives behind these interfaces; the application itself
// keeps nothing authoritative in memory. Three implementations exist:
// rest (remote Supabase-style API), sqlite (self-hosted) and memory
// (tests and development).
package backend

import (
	"context"
	"time"

	"fintrack/internal/core"
)

// Session is an authenticated backend session. The access token must be
// presented on every privileged call.
type Session struct {
	AccessToken string
	UserID      string
	Email       string
	ExpiresAt   time.Time
}

// Valid reports whether the session can still be used.
func (s Session) Valid() bool {
	if s.AccessToken == "" || s.UserID == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || time.Now().Before(s.ExpiresAt)
}

// User identifies the owner of the session.
type User struct {
	ID    string
	Email string
}

// Auth is the authentication surface of the backend.
type Auth interface {
	SignUp(ctx context.Context, email, password string) error
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context, token string) error
	RequestPasswordReset(ctx context.Context, email string) error
	// UpdatePassword sets a new password for the session or recovery
	// token presented.
	UpdatePassword(ctx context.Context, token, newPassword string) error
	// CurrentUser resolves the user behind a token, ErrNoSession when
	// the token is missing or stale.
	CurrentUser(ctx context.Context, token string) (User, error)
}

// TokenBearer is implemented by backends that attach the session token
// to their outgoing requests. The repository pushes token changes here
// whenever the session changes.
type TokenBearer interface {
	SetToken(token string)
}

// Store is the row storage surface of the backend. Every operation is
// scoped to one owning user; an implementation must never return or touch
// another user's rows.
type Store interface {
	ListAccounts(ctx context.Context, userID string) ([]core.Account, error)
	InsertAccount(ctx context.Context, account core.Account) error
	UpdateAccount(ctx context.Context, account core.Account) error
	DeleteAccount(ctx context.Context, userID, id string) error

	ListBills(ctx context.Context, userID string) ([]core.Bill, error)
	// ListBillsDueBetween returns active bills due in [from, to], both
	// date strings inclusive, ordered by due date.
	ListBillsDueBetween(ctx context.Context, userID, from, to string) ([]core.Bill, error)
	InsertBill(ctx context.Context, bill core.Bill) error
	UpdateBill(ctx context.Context, bill core.Bill) error
	DeleteBill(ctx context.Context, userID, id string) error

	ListCompanies(ctx context.Context, userID string) ([]core.Company, error)
	InsertCompany(ctx context.Context, company core.Company) error
	UpdateCompany(ctx context.Context, company core.Company) error
	// DeleteCompany fails when dependent shifts exist (restrict).
	DeleteCompany(ctx context.Context, userID, id string) error

	// GetShift returns ErrNotFound when no shift is saved for the day;
	// that is an expected outcome, not a failure.
	GetShift(ctx context.Context, userID, companyID, workDate string) (core.Shift, error)
	// UpsertShift inserts or overwrites on the natural key
	// (user, company, work date).
	UpsertShift(ctx context.Context, shift core.Shift) error
	DeleteShift(ctx context.Context, userID, companyID, workDate string) error
	// ListShiftsBetween returns the shifts whose start time falls inside
	// the window, any company.
	ListShiftsBetween(ctx context.Context, userID string, w core.MonthWindow) ([]core.Shift, error)
	// ListCompanyShiftsBetween is the same for one company, ordered by
	// work date descending.
	ListCompanyShiftsBetween(ctx context.Context, userID, companyID string, w core.MonthWindow) ([]core.Shift, error)

	Close() error
}
