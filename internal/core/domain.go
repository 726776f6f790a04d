package core

import (
	"errors"
	"strings"
	"time"
)

const (
	AccountBank  AccountType = "bank"
	AccountCash  AccountType = "cash"
	AccountOther AccountType = "other"
)

const (
	OneOff    Frequency = "one_off"
	Weekly    Frequency = "weekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Yearly    Frequency = "yearly"
)

// Currency is fixed; the backend column exists but is not user-editable.
const Currency = "GBP"

type (
	// AccountType is an open string in practice; the constants above are
	// the values the account form offers.
	AccountType string

	// Frequency describes how often a bill recurs. A bill with OneOff
	// frequency is not recurring.
	Frequency string

	// Account is a bank or cash account a bill can be paid from.
	Account struct {
		ID        string      `json:"id,omitempty"`
		UserID    string      `json:"user_id"`
		Name      string      `json:"name"`
		Type      AccountType `json:"account_type"`
		Notes     string      `json:"notes"`
		CreatedAt time.Time   `json:"created_at,omitempty"`
	}

	// Bill is a one-off or recurring outgoing payment. AccountID is a
	// soft reference: deleting the account leaves it dangling and the
	// bill keeps working with no account label.
	Bill struct {
		ID             string    `json:"id,omitempty"`
		UserID         string    `json:"user_id"`
		Name           string    `json:"name"`
		Amount         float64   `json:"amount"`
		Currency       string    `json:"currency"`
		IsRecurring    bool      `json:"is_recurring"`
		Frequency      Frequency `json:"frequency"`
		NextDueDate    string    `json:"next_due_date"`
		Category       string    `json:"category"`
		AccountID      string    `json:"account_id"`
		AutoPay        bool      `json:"auto_pay"`
		VariableAmount bool      `json:"variable_amount"`
		Active         bool      `json:"active"`
		Notes          string    `json:"notes"`
		ExpiryDate     string    `json:"expiry_date"`
	}

	// CapabilityFlags selects which optional shift fields are relevant
	// for a company. The rendering layer hides fields whose flag is off;
	// stored values are preserved, never deleted.
	CapabilityFlags struct {
		Mileage bool `json:"uses_mileage"`
		Parcels bool `json:"uses_parcels"`
		Stops   bool `json:"uses_stops"`
		Pay     bool `json:"uses_pay"`
	}

	// Company is an employer profile.
	Company struct {
		ID     string `json:"id,omitempty"`
		UserID string `json:"user_id"`
		Name   string `json:"name"`
		CapabilityFlags
	}

	// Shift records one work session. Its natural key is
	// (UserID, CompanyID, WorkDate): saving always upserts on that
	// triple, so at most one shift exists per company per day.
	Shift struct {
		ID           string     `json:"id,omitempty"`
		UserID       string     `json:"user_id"`
		CompanyID    string     `json:"company_id"`
		WorkDate     string     `json:"work_date"`
		StartTime    time.Time  `json:"start_time"`
		EndTime      *time.Time `json:"end_time"`
		StartMileage *float64   `json:"start_mileage"`
		EndMileage   *float64   `json:"end_mileage"`
		TotalMileage *float64   `json:"total_mileage"`
		Parcels      *int       `json:"total_parcels"`
		Stops        *int       `json:"total_stops"`
		EstimatedPay *float64   `json:"estimated_pay"`
		Notes        string     `json:"notes"`
	}
)

var (
	ErrNameRequired    = errors.New("name is required")
	ErrInvalidAmount   = errors.New("amount must be a non-negative number")
	ErrDueDateRequired = errors.New("next due date is required")
	ErrStartRequired   = errors.New("start time is required")
	ErrCompanyRequired = errors.New("select a company first")
	ErrDateRequired    = errors.New("work date is required")
)

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrNameRequired
	}
	return nil
}

func (b Bill) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrNameRequired
	}
	if b.Amount < 0 {
		return ErrInvalidAmount
	}
	if b.NextDueDate == "" {
		return ErrDueDateRequired
	}
	return nil
}

// Normalized returns the bill as it must be persisted: currency stamped,
// frequency defaulted and the recurring flag recomputed from it.
func (b Bill) Normalized() Bill {
	if b.Frequency == "" {
		b.Frequency = Monthly
	}
	b.Currency = Currency
	b.IsRecurring = b.Frequency != OneOff
	return b
}

func (c Company) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrNameRequired
	}
	return nil
}

func (s Shift) Validate() error {
	if s.CompanyID == "" {
		return ErrCompanyRequired
	}
	if s.WorkDate == "" {
		return ErrDateRequired
	}
	if s.StartTime.IsZero() {
		return ErrStartRequired
	}
	return nil
}

// Normalized returns the shift with TotalMileage recomputed from the raw
// odometer readings. The stored total is never trusted; it is overwritten
// on every save.
func (s Shift) Normalized() Shift {
	if total, ok := TotalMileage(s.StartMileage, s.EndMileage); ok {
		s.TotalMileage = &total
	} else {
		s.TotalMileage = nil
	}
	return s
}
