package app

import (
	"context"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
)

// RefreshAll reloads the three reference lists in one go. The fetches
// run concurrently; the caches are only swapped when all of them
// succeeded.
func (a *App) RefreshAll(ctx context.Context) error {
	var (
		accounts  []core.Account
		bills     []core.Bill
		companies []core.Company
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		accounts, err = a.repo.ListAccounts(ctx)
		return err
	})
	g.Go(func() (err error) {
		bills, err = a.repo.ListBills(ctx)
		return err
	})
	g.Go(func() (err error) {
		companies, err = a.repo.ListCompanies(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	a.mu.Lock()
	a.accounts, a.bills, a.companies = accounts, bills, companies
	a.mu.Unlock()
	a.ensureActiveCompany(companies)
	return nil
}

func (a *App) refreshAccounts(ctx context.Context) error {
	accounts, err := a.repo.ListAccounts(ctx)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.accounts = accounts
	a.mu.Unlock()
	return nil
}

func (a *App) refreshBills(ctx context.Context) error {
	bills, err := a.repo.ListBills(ctx)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.bills = bills
	a.mu.Unlock()
	return nil
}

func (a *App) refreshCompanies(ctx context.Context) error {
	companies, err := a.repo.ListCompanies(ctx)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.companies = companies
	a.mu.Unlock()
	a.ensureActiveCompany(companies)
	return nil
}

// ensureActiveCompany keeps the company cursor pointing at something
// real: unset or stale, it falls back to the first listed company.
func (a *App) ensureActiveCompany(companies []core.Company) {
	active := a.state.ActiveCompany()
	for _, c := range companies {
		if c.ID == active {
			return
		}
	}
	if len(companies) > 0 {
		a.state.SelectCompany(companies[0].ID)
		return
	}
	a.state.SelectCompany("")
}

// accountName resolves an account id against the cache. A dangling
// reference resolves to the empty string; the bill keeps working.
func (a *App) accountName(id string) string {
	if id == "" {
		return ""
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, acc := range a.accounts {
		if acc.ID == id {
			return acc.Name
		}
	}
	return ""
}

func (a *App) companyByID(id string) (core.Company, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, c := range a.companies {
		if c.ID == id {
			return c, true
		}
	}
	return core.Company{}, false
}
