package app

import (
	"context"

	"fintrack/internal/core"
	"fintrack/internal/forms"
	"fintrack/internal/session"
)

// BillRow is a bill with its account reference resolved for display.
// AccountName is empty when the bill has no account or the account was
// deleted out from under it.
type BillRow struct {
	core.Bill
	AccountName string
}

// ShiftRow is a shift with its derived figures.
type ShiftRow struct {
	core.Shift
	Metrics core.ShiftMetrics
}

type AuthView struct {
	Status string
}

type ResetView struct {
	Status string
}

type MenuView struct {
	Email  string
	Status string
}

type MonthlyView struct {
	Label     string
	AtCurrent bool
	Summary   core.MonthSummary
	Upcoming  []BillRow
	Status    string
}

type AccountsView struct {
	Accounts []core.Account
	Form     forms.AccountForm
	Status   string
}

type BillsView struct {
	Bills    []BillRow
	Accounts []core.Account
	Form     forms.BillForm
	Status   string
}

type AdminView struct {
	Companies []core.Company
	Form      forms.CompanyForm
	Status    string
}

type FinancesView struct {
	Companies  []core.Company
	Active     core.Company
	HasActive  bool
	WorkDate   string
	AtToday    bool
	Form       forms.ShiftForm
	HasShift   bool
	Metrics    core.ShiftMetrics
	MonthLabel string
	MonthRows  []ShiftRow
	Status     string
}

func (a *App) Auth() AuthView {
	return AuthView{Status: a.statusOf(session.PanelAuth)}
}

func (a *App) Reset() ResetView {
	return ResetView{Status: a.statusOf(session.PanelReset)}
}

func (a *App) Menu() MenuView {
	return MenuView{Email: a.repo.Session().Email, Status: a.statusOf(session.PanelMenu)}
}

// Monthly builds the month summary panel: shift totals, bills due in the
// month, and the bills coming up in the next two weeks.
func (a *App) Monthly(ctx context.Context) MonthlyView {
	v := MonthlyView{
		Label:     a.state.MonthLabel(),
		AtCurrent: a.state.AtCurrentMonth(),
		Status:    a.statusOf(session.PanelMonthly),
	}
	w := a.state.Month()

	shifts, err := a.repo.ShiftsInMonth(ctx, w)
	if err != nil {
		v.Status = displayText(err)
		return v
	}
	billsDue, err := a.repo.BillsDueBetween(ctx, w.StartDate(), w.EndDate())
	if err != nil {
		v.Status = displayText(err)
		return v
	}
	today := core.Today()
	upcoming, err := a.repo.BillsDueBetween(ctx, today, core.AddDays(today, a.upcomingDays))
	if err != nil {
		v.Status = displayText(err)
		return v
	}

	v.Summary = core.Summarize(shifts, billsDue, upcoming)
	for _, b := range upcoming {
		v.Upcoming = append(v.Upcoming, BillRow{Bill: b, AccountName: a.accountName(b.AccountID)})
	}
	return v
}

func (a *App) Accounts() AccountsView {
	a.mu.Lock()
	defer a.mu.Unlock()
	return AccountsView{
		Accounts: a.accounts,
		Form:     a.accountForm,
		Status:   a.status[session.PanelAccounts],
	}
}

func (a *App) Bills() BillsView {
	a.mu.Lock()
	accounts := a.accounts
	bills := a.bills
	form := a.billForm
	status := a.status[session.PanelBills]
	a.mu.Unlock()

	v := BillsView{Accounts: accounts, Form: form, Status: status}
	for _, b := range bills {
		v.Bills = append(v.Bills, BillRow{Bill: b, AccountName: a.accountName(b.AccountID)})
	}
	return v
}

func (a *App) Admin() AdminView {
	a.mu.Lock()
	defer a.mu.Unlock()
	return AdminView{
		Companies: a.companies,
		Form:      a.companyForm,
		Status:    a.status[session.PanelAdmin],
	}
}

// Finances builds the shift entry panel for the selected company and
// day, including the company's shifts of the current month.
func (a *App) Finances(ctx context.Context) FinancesView {
	a.mu.Lock()
	companies := a.companies
	form := a.shiftForm
	hasShift := a.hasShift
	status := a.status[session.PanelFinances]
	a.mu.Unlock()

	workDate := a.state.WorkDate()
	v := FinancesView{
		Companies:  companies,
		WorkDate:   workDate,
		AtToday:    workDate >= core.Today(),
		Form:       form,
		HasShift:   hasShift,
		MonthLabel: a.state.MonthLabel(),
		Status:     status,
	}

	active, ok := a.companyByID(a.state.ActiveCompany())
	if !ok {
		return v
	}
	v.Active, v.HasActive = active, true

	if shift, err := form.Record(active.ID, workDate); err == nil {
		v.Metrics = shift.Normalized().Metrics()
	}

	rows, err := a.repo.CompanyShiftsInMonth(ctx, active.ID, a.state.Month())
	if err != nil {
		v.Status = displayText(err)
		return v
	}
	for _, s := range rows {
		v.MonthRows = append(v.MonthRows, ShiftRow{Shift: s, Metrics: s.Metrics()})
	}
	return v
}
