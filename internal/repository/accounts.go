package repository

import (
	"context"

	"fintrack/internal/core"
)

func (r *Repository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	id, err := r.userID()
	if err != nil {
		return nil, err
	}
	return r.store.ListAccounts(ctx, id)
}

// SaveAccount inserts or, when the account carries an id, updates it.
func (r *Repository) SaveAccount(ctx context.Context, a core.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if err := r.owned(func(id string) { a.UserID = id }); err != nil {
		return err
	}
	if a.ID == "" {
		return r.store.InsertAccount(ctx, a)
	}
	return r.store.UpdateAccount(ctx, a)
}

func (r *Repository) DeleteAccount(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	userID, err := r.userID()
	if err != nil {
		return err
	}
	return r.store.DeleteAccount(ctx, userID, id)
}
