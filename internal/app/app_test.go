package app

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"fintrack/internal/backend/memory"
	"fintrack/internal/core"
	"fintrack/internal/forms"
	"fintrack/internal/log"
	"fintrack/internal/repository"
	"fintrack/internal/session"
)

const testInvite = "1006"

func newTestApp(t *testing.T) (*App, *memory.Store) {
	t.Helper()
	store := memory.New()
	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	repo := repository.New(store, store, logger)
	return New(repo, logger, Options{InviteCode: testInvite, UpcomingDays: 14}), store
}

func signIn(t *testing.T, a *App) {
	t.Helper()
	ctx := context.Background()
	a.Register(ctx, "me@example.com", "password1", "password1", testInvite)
	a.Login(ctx, "me@example.com", "password1")
	if a.state.Current() != session.PanelMenu {
		t.Fatalf("login did not reach the menu: %v (status %q)", a.state.Current(), a.statusOf(session.PanelAuth))
	}
}

func addCompany(t *testing.T, a *App, f forms.CompanyForm) core.Company {
	t.Helper()
	a.SaveCompany(context.Background(), f)
	v := a.Admin()
	for _, c := range v.Companies {
		if c.Name == f.Name {
			return c
		}
	}
	t.Fatalf("company %q not saved: %q", f.Name, v.Status)
	return core.Company{}
}

func TestRegisterWrongInviteMakesNoBackendCall(t *testing.T) {
	a, store := newTestApp(t)

	a.Register(context.Background(), "me@example.com", "password1", "password1", "0000")
	if got := a.Auth().Status; got != "Invalid invite code." {
		t.Fatalf("status %q", got)
	}
	if store.TotalCalls() != 0 {
		t.Fatalf("rejected registration reached the backend: %v", store.Calls)
	}
}

func TestRegisterPasswordRules(t *testing.T) {
	a, store := newTestApp(t)
	ctx := context.Background()

	a.Register(ctx, "me@example.com", "short", "short", testInvite)
	if got := a.Auth().Status; !strings.Contains(got, "at least 6") {
		t.Fatalf("status %q", got)
	}
	a.Register(ctx, "me@example.com", "password1", "password2", testInvite)
	if got := a.Auth().Status; got != "Passwords do not match." {
		t.Fatalf("status %q", got)
	}
	if store.TotalCalls() != 0 {
		t.Fatalf("invalid registration reached the backend: %v", store.Calls)
	}
}

func TestLoginLoadsReferenceLists(t *testing.T) {
	a, store := newTestApp(t)
	signIn(t, a)

	for _, call := range []string{"ListAccounts", "ListBills", "ListCompanies"} {
		if store.Calls[call] == 0 {
			t.Fatalf("%s not called on login", call)
		}
	}
}

func TestBadLoginStaysOnAuth(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	a.Login(ctx, "nobody@example.com", "password1")
	if a.state.Current() != session.PanelAuth {
		t.Fatalf("landed on %v", a.state.Current())
	}
	if got := a.Auth().Status; got != "Invalid login credentials" {
		t.Fatalf("status %q", got)
	}
}

func TestRecoveryLinkForcesReset(t *testing.T) {
	a, store := newTestApp(t)
	ctx := context.Background()

	// An account with a live session stands in for a recovery token.
	if err := store.SignUp(ctx, "me@example.com", "oldpassword"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	sess, err := store.SignIn(ctx, "me@example.com", "oldpassword")
	if err != nil {
		t.Fatalf("signin: %v", err)
	}

	a.Start(ctx, "https://app.example.com/#access_token="+sess.AccessToken+"&type=recovery", "")
	if a.state.Phase() != session.RecoveryPending || a.state.Current() != session.PanelReset {
		t.Fatalf("got %v %v", a.state.Phase(), a.state.Current())
	}

	a.SetNewPassword(ctx, sess.AccessToken, "newpassword", "newpassword")
	if a.state.Phase() != session.Unauthenticated {
		t.Fatalf("recovery completion must sign out, got %v", a.state.Phase())
	}
	if _, err := store.SignIn(ctx, "me@example.com", "newpassword"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}

func TestStartRestoresStoredSession(t *testing.T) {
	a, store := newTestApp(t)
	ctx := context.Background()

	if err := store.SignUp(ctx, "me@example.com", "password1"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	sess, err := store.SignIn(ctx, "me@example.com", "password1")
	if err != nil {
		t.Fatalf("signin: %v", err)
	}

	a.Start(ctx, "https://app.example.com/", sess.AccessToken)
	if a.state.Phase() != session.Authenticated || a.state.Current() != session.PanelMenu {
		t.Fatalf("got %v %v", a.state.Phase(), a.state.Current())
	}

	// A stale token falls back to the auth panel.
	b, _ := newTestApp(t)
	b.Start(ctx, "https://app.example.com/", "stale")
	if b.state.Phase() != session.Unauthenticated {
		t.Fatalf("stale token accepted")
	}
}

func TestSaveShiftUpsertsAndRereads(t *testing.T) {
	a, _ := newTestApp(t)
	signIn(t, a)
	ctx := context.Background()

	var cf forms.CompanyForm
	cf.Reset()
	cf.Name = "Evri"
	company := addCompany(t, a, cf)

	a.OpenPanel(ctx, session.PanelFinances)
	a.SelectCompany(ctx, company.ID)

	day := a.state.WorkDate()
	f := forms.ShiftForm{Start: day + "T09:00", End: day + "T17:00", Pay: "80"}
	a.SaveShift(ctx, f)
	if got := a.statusOf(session.PanelFinances); got != "Shift saved." {
		t.Fatalf("status %q", got)
	}

	v := a.Finances(ctx)
	if !v.HasShift || len(v.MonthRows) != 1 {
		t.Fatalf("shift not re-read: hasShift=%v rows=%d", v.HasShift, len(v.MonthRows))
	}
	if v.Metrics.Hours == nil || *v.Metrics.Hours != 8 {
		t.Fatalf("hours %v", v.Metrics.Hours)
	}
	if v.Metrics.Rate == nil || *v.Metrics.Rate != 10 {
		t.Fatalf("rate %v", v.Metrics.Rate)
	}

	// Saving the same day again replaces, never duplicates.
	f.Pay = "95"
	a.SaveShift(ctx, f)
	v = a.Finances(ctx)
	if len(v.MonthRows) != 1 {
		t.Fatalf("duplicate row after second save: %d", len(v.MonthRows))
	}
	if v.Form.Pay != "95" {
		t.Fatalf("form not re-read: %q", v.Form.Pay)
	}
}

func TestHiddenMileageSurvivesSave(t *testing.T) {
	a, _ := newTestApp(t)
	signIn(t, a)
	ctx := context.Background()

	cf := forms.CompanyForm{Name: "Flat rate Ltd", Parcels: true, Stops: true, Pay: true}
	company := addCompany(t, a, cf)

	a.OpenPanel(ctx, session.PanelFinances)
	a.SelectCompany(ctx, company.ID)
	day := a.state.WorkDate()

	// Mileage recorded before the capability was switched off.
	startM, endM := 100.0, 150.0
	start := *core.ParseLocalTime(day + "T09:00")
	err := a.repo.SaveShift(ctx, core.Shift{
		CompanyID: company.ID, WorkDate: day, StartTime: start,
		StartMileage: &startM, EndMileage: &endM,
	})
	if err != nil {
		t.Fatalf("seed shift: %v", err)
	}

	// The form the user sees has no mileage fields, so they come in blank.
	a.SaveShift(ctx, forms.ShiftForm{Start: day + "T09:00", Pay: "120"})

	stored, err := a.repo.ShiftFor(ctx, company.ID, day)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if stored.StartMileage == nil || *stored.StartMileage != 100 || stored.EndMileage == nil || *stored.EndMileage != 150 {
		t.Fatalf("hidden mileage lost: %+v", stored)
	}
	if stored.TotalMileage == nil || *stored.TotalMileage != 50 {
		t.Fatalf("total not recomputed from preserved readings: %v", stored.TotalMileage)
	}
	if stored.EstimatedPay == nil || *stored.EstimatedPay != 120 {
		t.Fatalf("visible field not updated: %v", stored.EstimatedPay)
	}
}

func TestDanglingAccountReferenceTolerated(t *testing.T) {
	a, _ := newTestApp(t)
	signIn(t, a)
	ctx := context.Background()

	a.SaveAccount(ctx, forms.AccountForm{Name: "Monzo", Type: "bank"})
	account := a.Accounts().Accounts[0]

	a.SaveBill(ctx, forms.BillForm{
		Name: "Rent", Amount: "900", NextDueDate: "2024-03-01",
		AccountID: account.ID, Active: true,
	})

	a.DeleteAccount(ctx, account.ID, true)

	v := a.Bills()
	if len(v.Bills) != 1 {
		t.Fatalf("bill disappeared with its account")
	}
	if v.Bills[0].AccountID != account.ID {
		t.Fatalf("reference nulled out, want it left dangling")
	}
	if v.Bills[0].AccountName != "" {
		t.Fatalf("dangling reference resolved to %q", v.Bills[0].AccountName)
	}
}

func TestDeleteCompanyWithShiftsRefused(t *testing.T) {
	a, _ := newTestApp(t)
	signIn(t, a)
	ctx := context.Background()

	var cf forms.CompanyForm
	cf.Reset()
	cf.Name = "Evri"
	company := addCompany(t, a, cf)

	a.OpenPanel(ctx, session.PanelFinances)
	a.SelectCompany(ctx, company.ID)
	day := a.state.WorkDate()
	a.SaveShift(ctx, forms.ShiftForm{Start: day + "T09:00"})

	a.DeleteCompany(ctx, company.ID, true)
	if got := a.Admin().Status; !strings.Contains(got, "still has shifts") {
		t.Fatalf("status %q, want the restrict explanation", got)
	}
	if _, ok := a.companyByID(company.ID); !ok {
		t.Fatalf("company vanished despite the refusal")
	}
}

func TestLogoutClearsState(t *testing.T) {
	a, _ := newTestApp(t)
	signIn(t, a)
	ctx := context.Background()

	a.SaveAccount(ctx, forms.AccountForm{Name: "Monzo"})
	a.Logout(ctx)

	if a.state.Phase() != session.Unauthenticated || a.state.Current() != session.PanelAuth {
		t.Fatalf("got %v %v", a.state.Phase(), a.state.Current())
	}
	if len(a.Accounts().Accounts) != 0 {
		t.Fatalf("caches survived logout")
	}
}

func TestFinancesDefaultsToFirstCompany(t *testing.T) {
	a, _ := newTestApp(t)
	signIn(t, a)
	ctx := context.Background()

	var cf forms.CompanyForm
	cf.Reset()
	cf.Name = "Evri"
	first := addCompany(t, a, cf)
	cf.Reset()
	cf.Name = "Yodel"
	second := addCompany(t, a, cf)

	a.OpenPanel(ctx, session.PanelFinances)
	v := a.Finances(ctx)
	if !v.HasActive || v.Active.ID != first.ID {
		t.Fatalf("active %q (hasActive=%v), want first company %q", v.Active.ID, v.HasActive, first.ID)
	}

	// Deleting the selected company moves the cursor to the next one.
	a.DeleteCompany(ctx, first.ID, true)
	a.OpenPanel(ctx, session.PanelFinances)
	v = a.Finances(ctx)
	if !v.HasActive || v.Active.ID != second.ID {
		t.Fatalf("active %q after delete (hasActive=%v), want %q", v.Active.ID, v.HasActive, second.ID)
	}
}

func TestUnauthenticatedNavigationPinned(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	a.OpenPanel(ctx, session.PanelBills)
	if a.state.Current() != session.PanelAuth {
		t.Fatalf("unauthenticated visitor reached %v", a.state.Current())
	}
}
