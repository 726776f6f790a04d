package repository

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"fintrack/internal/backend"
	"fintrack/internal/backend/memory"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

func testLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func newTestRepo(t *testing.T) (*Repository, *memory.Store) {
	t.Helper()
	store := memory.New()
	return New(store, store, testLogger()), store
}

func login(t *testing.T, r *Repository) {
	t.Helper()
	ctx := context.Background()
	if err := r.SignUp(ctx, "me@example.com", "password1"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if err := r.SignIn(ctx, "me@example.com", "password1"); err != nil {
		t.Fatalf("signin: %v", err)
	}
}

func TestNoSessionBlocksStoreAccess(t *testing.T) {
	r, store := newTestRepo(t)
	ctx := context.Background()

	if _, err := r.ListAccounts(ctx); !errors.Is(err, backend.ErrNoSession) {
		t.Fatalf("got %v, want ErrNoSession", err)
	}
	if err := r.SaveBill(ctx, core.Bill{Name: "Rent", Amount: 900, NextDueDate: "2024-03-01"}); !errors.Is(err, backend.ErrNoSession) {
		t.Fatalf("got %v, want ErrNoSession", err)
	}
	if store.Calls["ListAccounts"]+store.Calls["InsertBill"] != 0 {
		t.Fatalf("store was reached without a session: %v", store.Calls)
	}
}

func TestValidationStopsBeforeBackend(t *testing.T) {
	r, store := newTestRepo(t)
	login(t, r)
	ctx := context.Background()

	if err := r.SaveBill(ctx, core.Bill{Name: "", Amount: 10, NextDueDate: "2024-03-01"}); !errors.Is(err, core.ErrNameRequired) {
		t.Fatalf("got %v, want ErrNameRequired", err)
	}
	if err := r.SaveBill(ctx, core.Bill{Name: "Rent", Amount: -1, NextDueDate: "2024-03-01"}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("got %v, want ErrInvalidAmount", err)
	}
	if err := r.SaveShift(ctx, core.Shift{WorkDate: "2024-03-01", StartTime: time.Now()}); !errors.Is(err, core.ErrCompanyRequired) {
		t.Fatalf("got %v, want ErrCompanyRequired", err)
	}
	if store.Calls["InsertBill"]+store.Calls["UpsertShift"] != 0 {
		t.Fatalf("invalid records reached the store: %v", store.Calls)
	}
}

func TestSaveBillStampsDerivedFields(t *testing.T) {
	r, _ := newTestRepo(t)
	login(t, r)
	ctx := context.Background()

	bill := core.Bill{Name: "Rent", Amount: 900, NextDueDate: "2024-03-01", Currency: "USD"}
	if err := r.SaveBill(ctx, bill); err != nil {
		t.Fatalf("save: %v", err)
	}

	bills, err := r.ListBills(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(bills) != 1 {
		t.Fatalf("got %d bills", len(bills))
	}
	got := bills[0]
	if got.Currency != core.Currency {
		t.Fatalf("currency not stamped: %q", got.Currency)
	}
	if got.Frequency != core.Monthly || !got.IsRecurring {
		t.Fatalf("defaults not applied: %+v", got)
	}
	if got.UserID != r.Session().UserID {
		t.Fatalf("owner not stamped: %q", got.UserID)
	}
}

func TestSaveShiftRecomputesTotalMileage(t *testing.T) {
	r, _ := newTestRepo(t)
	login(t, r)
	ctx := context.Background()

	if err := r.SaveCompany(ctx, core.Company{Name: "Evri"}); err != nil {
		t.Fatalf("save company: %v", err)
	}
	companies, _ := r.ListCompanies(ctx)

	start, end, stale := 100.0, 142.5, 999.0
	shift := core.Shift{
		CompanyID: companies[0].ID, WorkDate: "2024-03-01",
		StartTime:    time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local),
		StartMileage: &start, EndMileage: &end, TotalMileage: &stale,
	}
	if err := r.SaveShift(ctx, shift); err != nil {
		t.Fatalf("save shift: %v", err)
	}

	got, err := r.ShiftFor(ctx, companies[0].ID, "2024-03-01")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.TotalMileage == nil || *got.TotalMileage != 42.5 {
		t.Fatalf("stored total not recomputed: %+v", got.TotalMileage)
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	r, store := newTestRepo(t)
	login(t, r)
	ctx := context.Background()

	if err := r.SaveAccount(ctx, core.Account{Name: "Monzo"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	accounts, _ := r.ListAccounts(ctx)

	if err := r.DeleteAccount(ctx, accounts[0].ID, false); !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("got %v, want ErrNotConfirmed", err)
	}
	if store.Calls["DeleteAccount"] != 0 {
		t.Fatalf("unconfirmed delete reached the store")
	}

	if err := r.DeleteAccount(ctx, accounts[0].ID, true); err != nil {
		t.Fatalf("confirmed delete: %v", err)
	}
	if left, _ := r.ListAccounts(ctx); len(left) != 0 {
		t.Fatalf("account not deleted")
	}
}

func TestSignOutDropsSession(t *testing.T) {
	r, _ := newTestRepo(t)
	login(t, r)
	ctx := context.Background()

	if !r.LoggedIn() {
		t.Fatalf("expected a live session")
	}
	if err := r.SignOut(ctx); err != nil {
		t.Fatalf("signout: %v", err)
	}
	if r.LoggedIn() {
		t.Fatalf("session survived sign out")
	}
	if _, err := r.ListBills(ctx); !errors.Is(err, backend.ErrNoSession) {
		t.Fatalf("got %v, want ErrNoSession after sign out", err)
	}
}

func TestRestoreResumesSession(t *testing.T) {
	store := memory.New()
	first := New(store, store, testLogger())
	login(t, first)
	token := first.Session().AccessToken

	// A fresh repository over the same backend, as after a restart.
	second := New(store, store, testLogger())
	if err := second.Restore(context.Background(), token); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !second.LoggedIn() || second.Session().Email != "me@example.com" {
		t.Fatalf("restored session wrong: %+v", second.Session())
	}

	if err := second.Restore(context.Background(), "stale-token"); !errors.Is(err, backend.ErrNoSession) {
		t.Fatalf("got %v, want ErrNoSession for unknown token", err)
	}
}
