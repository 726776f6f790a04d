package repository

import (
	"context"

	"fintrack/internal/core"
)

// ShiftFor loads the shift saved for one company and day. The backend's
// ErrNotFound is passed through; an empty day is a normal outcome.
func (r *Repository) ShiftFor(ctx context.Context, companyID, workDate string) (core.Shift, error) {
	id, err := r.userID()
	if err != nil {
		return core.Shift{}, err
	}
	return r.store.GetShift(ctx, id, companyID, workDate)
}

// SaveShift upserts on (user, company, work date). The stored mileage
// total is recomputed from the odometer readings on every save.
func (r *Repository) SaveShift(ctx context.Context, s core.Shift) error {
	if err := s.Validate(); err != nil {
		return err
	}
	s = s.Normalized()
	if err := r.owned(func(id string) { s.UserID = id }); err != nil {
		return err
	}
	return r.store.UpsertShift(ctx, s)
}

func (r *Repository) DeleteShift(ctx context.Context, companyID, workDate string, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	id, err := r.userID()
	if err != nil {
		return err
	}
	return r.store.DeleteShift(ctx, id, companyID, workDate)
}

// ShiftsInMonth returns every shift of the month, any company.
func (r *Repository) ShiftsInMonth(ctx context.Context, w core.MonthWindow) ([]core.Shift, error) {
	id, err := r.userID()
	if err != nil {
		return nil, err
	}
	return r.store.ListShiftsBetween(ctx, id, w)
}

// CompanyShiftsInMonth returns the month's shifts for one company,
// newest first.
func (r *Repository) CompanyShiftsInMonth(ctx context.Context, companyID string, w core.MonthWindow) ([]core.Shift, error) {
	id, err := r.userID()
	if err != nil {
		return nil, err
	}
	return r.store.ListCompanyShiftsBetween(ctx, id, companyID, w)
}
