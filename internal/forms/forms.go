// Package forms holds the editable state of each entry form. Fields are
// the raw strings the inputs submit; converting them into domain records
// happens in one place per form so blank numeric fields stay absent
// instead of becoming zero.
package forms

import (
	"time"

	"fintrack/internal/core"
)

// AccountForm edits one account.
type AccountForm struct {
	ID    string
	Name  string
	Type  string
	Notes string
}

// Reset returns the form to its blank state for a new account.
func (f *AccountForm) Reset() {
	*f = AccountForm{Type: string(core.AccountBank)}
}

// Load fills the form from an existing account for editing.
func (f *AccountForm) Load(a core.Account) {
	*f = AccountForm{ID: a.ID, Name: a.Name, Type: string(a.Type), Notes: a.Notes}
}

// Record converts the form into an account ready to save.
func (f *AccountForm) Record() (core.Account, error) {
	a := core.Account{
		ID:    f.ID,
		Name:  f.Name,
		Type:  core.AccountType(f.Type),
		Notes: f.Notes,
	}
	if a.Type == "" {
		a.Type = core.AccountBank
	}
	return a, a.Validate()
}

// BillForm edits one bill.
type BillForm struct {
	ID          string
	Name        string
	Amount      string
	Frequency   string
	NextDueDate string
	Category    string
	AccountID   string
	AutoPay     bool
	Variable    bool
	Active      bool
	Notes       string
	ExpiryDate  string
}

// Reset returns the form to its defaults for a new bill: monthly,
// auto-paid, fixed amount, active.
func (f *BillForm) Reset() {
	*f = BillForm{Frequency: string(core.Monthly), AutoPay: true, Active: true}
}

func (f *BillForm) Load(b core.Bill) {
	*f = BillForm{
		ID:          b.ID,
		Name:        b.Name,
		Amount:      core.FormatNumber(&b.Amount),
		Frequency:   string(b.Frequency),
		NextDueDate: b.NextDueDate,
		Category:    b.Category,
		AccountID:   b.AccountID,
		AutoPay:     b.AutoPay,
		Variable:    b.VariableAmount,
		Active:      b.Active,
		Notes:       b.Notes,
		ExpiryDate:  b.ExpiryDate,
	}
}

// Record converts the form into a bill ready to save. A blank or
// non-numeric amount is an invalid amount, not zero.
func (f *BillForm) Record() (core.Bill, error) {
	amount := core.ParseNumber(f.Amount)
	if amount == nil {
		return core.Bill{}, core.ErrInvalidAmount
	}
	b := core.Bill{
		ID:             f.ID,
		Name:           f.Name,
		Amount:         *amount,
		Frequency:      core.Frequency(f.Frequency),
		NextDueDate:    f.NextDueDate,
		Category:       f.Category,
		AccountID:      f.AccountID,
		AutoPay:        f.AutoPay,
		VariableAmount: f.Variable,
		Active:         f.Active,
		Notes:          f.Notes,
		ExpiryDate:     f.ExpiryDate,
	}
	return b, b.Validate()
}

// CompanyForm edits one employer profile.
type CompanyForm struct {
	ID      string
	Name    string
	Mileage bool
	Parcels bool
	Stops   bool
	Pay     bool
}

// Reset returns the form to its defaults for a new company: every
// capability on.
func (f *CompanyForm) Reset() {
	*f = CompanyForm{Mileage: true, Parcels: true, Stops: true, Pay: true}
}

func (f *CompanyForm) Load(c core.Company) {
	*f = CompanyForm{
		ID:      c.ID,
		Name:    c.Name,
		Mileage: c.Mileage,
		Parcels: c.Parcels,
		Stops:   c.Stops,
		Pay:     c.Pay,
	}
}

func (f *CompanyForm) Record() (core.Company, error) {
	c := core.Company{
		ID:   f.ID,
		Name: f.Name,
		CapabilityFlags: core.CapabilityFlags{
			Mileage: f.Mileage,
			Parcels: f.Parcels,
			Stops:   f.Stops,
			Pay:     f.Pay,
		},
	}
	return c, c.Validate()
}

// ShiftForm edits the shift of the selected company and day. All fields
// are optional except the start time.
type ShiftForm struct {
	Start        string
	End          string
	StartMileage string
	EndMileage   string
	Parcels      string
	Stops        string
	Pay          string
	Notes        string
}

func (f *ShiftForm) Reset() { *f = ShiftForm{} }

func (f *ShiftForm) Load(s core.Shift) {
	end := ""
	if s.EndTime != nil {
		end = core.FormatLocalTime(*s.EndTime)
	}
	*f = ShiftForm{
		Start:        core.FormatLocalTime(s.StartTime),
		End:          end,
		StartMileage: core.FormatNumber(s.StartMileage),
		EndMileage:   core.FormatNumber(s.EndMileage),
		Parcels:      core.FormatCount(s.Parcels),
		Stops:        core.FormatCount(s.Stops),
		Pay:          core.FormatNumber(s.EstimatedPay),
		Notes:        s.Notes,
	}
}

// StartNow stamps the start field with the given wall clock time.
func (f *ShiftForm) StartNow(now time.Time) { f.Start = core.FormatLocalTime(now) }

// EndNow stamps the end field with the given wall clock time.
func (f *ShiftForm) EndNow(now time.Time) { f.End = core.FormatLocalTime(now) }

// Record converts the form into a shift for the given company and day.
func (f *ShiftForm) Record(companyID, workDate string) (core.Shift, error) {
	start := core.ParseLocalTime(f.Start)
	if start == nil {
		return core.Shift{}, core.ErrStartRequired
	}
	s := core.Shift{
		CompanyID:    companyID,
		WorkDate:     workDate,
		StartTime:    *start,
		EndTime:      core.ParseLocalTime(f.End),
		StartMileage: core.ParseNumber(f.StartMileage),
		EndMileage:   core.ParseNumber(f.EndMileage),
		Parcels:      core.ParseCount(f.Parcels),
		Stops:        core.ParseCount(f.Stops),
		EstimatedPay: core.ParseNumber(f.Pay),
		Notes:        f.Notes,
	}
	return s, s.Validate()
}
