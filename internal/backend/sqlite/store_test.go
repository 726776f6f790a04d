package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/backend"
	"fintrack/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"), "test-secret")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func signUpAndIn(t *testing.T, s *Store, email string) backend.Session {
	t.Helper()
	ctx := context.Background()
	if err := s.SignUp(ctx, email, "password1"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	sess, err := s.SignIn(ctx, email, "password1")
	if err != nil {
		t.Fatalf("signin: %v", err)
	}
	return sess
}

func TestAuthRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sess := signUpAndIn(t, s, "me@example.com")

	if !sess.Valid() {
		t.Fatalf("fresh session must be valid")
	}

	u, err := s.CurrentUser(ctx, sess.AccessToken)
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if u.ID != sess.UserID || u.Email != "me@example.com" {
		t.Fatalf("got %+v", u)
	}

	if _, err := s.SignIn(ctx, "me@example.com", "wrong"); err == nil {
		t.Fatalf("wrong password must fail")
	}
	if err := s.SignUp(ctx, "me@example.com", "again"); err == nil {
		t.Fatalf("duplicate email must fail")
	}
	if _, err := s.CurrentUser(ctx, "garbage"); !errors.Is(err, backend.ErrNoSession) {
		t.Fatalf("got %v, want ErrNoSession", err)
	}
}

func TestUpdatePassword(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sess := signUpAndIn(t, s, "me@example.com")

	if err := s.UpdatePassword(ctx, sess.AccessToken, "newpassword"); err != nil {
		t.Fatalf("update password: %v", err)
	}
	if _, err := s.SignIn(ctx, "me@example.com", "password1"); err == nil {
		t.Fatalf("old password must no longer work")
	}
	if _, err := s.SignIn(ctx, "me@example.com", "newpassword"); err != nil {
		t.Fatalf("new password: %v", err)
	}
	if err := s.UpdatePassword(ctx, "garbage", "x"); !errors.Is(err, backend.ErrNoSession) {
		t.Fatalf("got %v, want ErrNoSession", err)
	}
}

func TestAccountsCRUDAndScoping(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	me := signUpAndIn(t, s, "me@example.com")
	other := signUpAndIn(t, s, "other@example.com")

	for _, name := range []string{"Monzo", "Cash jar"} {
		if err := s.InsertAccount(ctx, core.Account{UserID: me.UserID, Name: name, Type: core.AccountBank}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	if err := s.InsertAccount(ctx, core.Account{UserID: other.UserID, Name: "Not mine"}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	mine, err := s.ListAccounts(ctx, me.UserID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mine) != 2 || mine[0].Name != "Monzo" || mine[1].Name != "Cash jar" {
		t.Fatalf("creation-order list wrong: %+v", mine)
	}

	// Updates do not cross user boundaries.
	stolen := mine[0]
	stolen.UserID = other.UserID
	stolen.Name = "hijacked"
	if err := s.UpdateAccount(ctx, stolen); !errors.Is(err, backend.ErrNotFound) {
		t.Fatalf("cross-user update: got %v, want ErrNotFound", err)
	}

	if err := s.DeleteAccount(ctx, me.UserID, mine[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	mine, _ = s.ListAccounts(ctx, me.UserID)
	if len(mine) != 1 {
		t.Fatalf("got %d accounts after delete", len(mine))
	}
}

func TestBillsDueBetween(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	me := signUpAndIn(t, s, "me@example.com")

	bills := []core.Bill{
		{Name: "first day", Amount: 10, NextDueDate: "2024-03-01", Active: true},
		{Name: "last day", Amount: 20, NextDueDate: "2024-03-31", Active: true},
		{Name: "next month", Amount: 30, NextDueDate: "2024-04-01", Active: true},
		{Name: "inactive", Amount: 40, NextDueDate: "2024-03-15", Active: false},
	}
	for _, b := range bills {
		b.UserID = me.UserID
		if err := s.InsertBill(ctx, b.Normalized()); err != nil {
			t.Fatalf("insert %s: %v", b.Name, err)
		}
	}

	due, err := s.ListBillsDueBetween(ctx, me.UserID, "2024-03-01", "2024-03-31")
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	if len(due) != 2 || due[0].Name != "first day" || due[1].Name != "last day" {
		t.Fatalf("got %+v", due)
	}
}

func TestShiftUpsertIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	me := signUpAndIn(t, s, "me@example.com")

	if err := s.InsertCompany(ctx, core.Company{UserID: me.UserID, Name: "Evri"}); err != nil {
		t.Fatalf("insert company: %v", err)
	}
	companies, _ := s.ListCompanies(ctx, me.UserID)
	companyID := companies[0].ID

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local)
	end := start.Add(8 * time.Hour)
	pay := 80.0
	shift := core.Shift{
		UserID: me.UserID, CompanyID: companyID, WorkDate: "2024-03-01",
		StartTime: start, EndTime: &end, EstimatedPay: &pay,
	}
	if err := s.UpsertShift(ctx, shift); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	// Saving again for the same day overwrites; never a second row.
	newPay := 95.0
	shift.EstimatedPay = &newPay
	shift.Notes = "busy day"
	if err := s.UpsertShift(ctx, shift); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	w := core.WindowOf(start)
	rows, err := s.ListCompanyShiftsBetween(ctx, me.UserID, companyID, w)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].EstimatedPay == nil || *rows[0].EstimatedPay != 95 || rows[0].Notes != "busy day" {
		t.Fatalf("latest payload not reflected: %+v", rows[0])
	}

	got, err := s.GetShift(ctx, me.UserID, companyID, "2024-03-01")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.StartTime.Equal(start) || got.EndTime == nil || !got.EndTime.Equal(end) {
		t.Fatalf("timestamps mangled: %+v", got)
	}

	if _, err := s.GetShift(ctx, me.UserID, companyID, "2024-03-02"); !errors.Is(err, backend.ErrNotFound) {
		t.Fatalf("missing day: got %v, want ErrNotFound", err)
	}
}

func TestDeleteCompanyRestrictedByShifts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	me := signUpAndIn(t, s, "me@example.com")

	if err := s.InsertCompany(ctx, core.Company{UserID: me.UserID, Name: "Evri"}); err != nil {
		t.Fatalf("insert company: %v", err)
	}
	companies, _ := s.ListCompanies(ctx, me.UserID)
	companyID := companies[0].ID

	shift := core.Shift{
		UserID: me.UserID, CompanyID: companyID, WorkDate: "2024-03-01",
		StartTime: time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local),
	}
	if err := s.UpsertShift(ctx, shift); err != nil {
		t.Fatalf("upsert shift: %v", err)
	}

	err := s.DeleteCompany(ctx, me.UserID, companyID)
	if err == nil {
		t.Fatalf("delete with dependent shifts must be blocked")
	}
	var berr *backend.Error
	if !errors.As(err, &berr) {
		t.Fatalf("got %T, want *backend.Error", err)
	}

	if err := s.DeleteShift(ctx, me.UserID, companyID, "2024-03-01"); err != nil {
		t.Fatalf("delete shift: %v", err)
	}
	if err := s.DeleteCompany(ctx, me.UserID, companyID); err != nil {
		t.Fatalf("delete after clearing shifts: %v", err)
	}
}

func TestMonthWindowQueryBoundaries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	me := signUpAndIn(t, s, "me@example.com")

	if err := s.InsertCompany(ctx, core.Company{UserID: me.UserID, Name: "Evri"}); err != nil {
		t.Fatalf("insert company: %v", err)
	}
	companies, _ := s.ListCompanies(ctx, me.UserID)
	companyID := companies[0].ID

	for _, d := range []string{"2024-02-29", "2024-03-01", "2024-03-31", "2024-04-01"} {
		day, err := core.ParseDate(d)
		if err != nil {
			t.Fatalf("parse %s: %v", d, err)
		}
		shift := core.Shift{
			UserID: me.UserID, CompanyID: companyID, WorkDate: d,
			StartTime: time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, time.Local),
		}
		if err := s.UpsertShift(ctx, shift); err != nil {
			t.Fatalf("upsert %s: %v", d, err)
		}
	}

	w := core.WindowOf(time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local))
	rows, err := s.ListShiftsBetween(ctx, me.UserID, w)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d shifts in March, want 2", len(rows))
	}
}
