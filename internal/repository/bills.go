package repository

import (
	"context"

	"fintrack/internal/core"
)

func (r *Repository) ListBills(ctx context.Context) ([]core.Bill, error) {
	id, err := r.userID()
	if err != nil {
		return nil, err
	}
	return r.store.ListBills(ctx, id)
}

// BillsDueBetween returns the active bills due in [from, to] inclusive,
// ordered by due date.
func (r *Repository) BillsDueBetween(ctx context.Context, from, to string) ([]core.Bill, error) {
	id, err := r.userID()
	if err != nil {
		return nil, err
	}
	return r.store.ListBillsDueBetween(ctx, id, from, to)
}

// SaveBill validates, normalizes and persists the bill. Currency and the
// recurring flag are stamped here so callers cannot store inconsistent
// rows.
func (r *Repository) SaveBill(ctx context.Context, b core.Bill) error {
	if err := b.Validate(); err != nil {
		return err
	}
	b = b.Normalized()
	if err := r.owned(func(id string) { b.UserID = id }); err != nil {
		return err
	}
	if b.ID == "" {
		return r.store.InsertBill(ctx, b)
	}
	return r.store.UpdateBill(ctx, b)
}

func (r *Repository) DeleteBill(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	userID, err := r.userID()
	if err != nil {
		return err
	}
	return r.store.DeleteBill(ctx, userID, id)
}
