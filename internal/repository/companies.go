package repository

import (
	"context"

	"fintrack/internal/core"
)

func (r *Repository) ListCompanies(ctx context.Context) ([]core.Company, error) {
	id, err := r.userID()
	if err != nil {
		return nil, err
	}
	return r.store.ListCompanies(ctx, id)
}

func (r *Repository) SaveCompany(ctx context.Context, c core.Company) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := r.owned(func(id string) { c.UserID = id }); err != nil {
		return err
	}
	if c.ID == "" {
		return r.store.InsertCompany(ctx, c)
	}
	return r.store.UpdateCompany(ctx, c)
}

// DeleteCompany is refused by the backend while shifts still reference
// the company; that error is passed through untouched.
func (r *Repository) DeleteCompany(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	userID, err := r.userID()
	if err != nil {
		return err
	}
	return r.store.DeleteCompany(ctx, userID, id)
}
