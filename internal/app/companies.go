package app

import (
	"context"

	"fintrack/internal/forms"
	"fintrack/internal/session"
)

func (a *App) SaveCompany(ctx context.Context, f forms.CompanyForm) {
	if !a.state.Begin("company") {
		return
	}
	defer a.state.End("company")

	a.mu.Lock()
	a.companyForm = f
	a.mu.Unlock()

	rec, err := f.Record()
	if err != nil {
		a.setStatus(session.PanelAdmin, displayText(err))
		return
	}
	if err := a.repo.SaveCompany(ctx, rec); err != nil {
		a.setStatus(session.PanelAdmin, displayText(err))
		return
	}

	a.mu.Lock()
	a.companyForm.Reset()
	a.mu.Unlock()
	a.setStatus(session.PanelAdmin, "Company saved.")
	if err := a.refreshCompanies(ctx); err != nil {
		a.setStatus(session.PanelAdmin, displayText(err))
	}
}

func (a *App) EditCompany(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, c := range a.companies {
		if c.ID == id {
			a.companyForm.Load(c)
			return
		}
	}
}

func (a *App) CancelCompanyEdit() {
	a.mu.Lock()
	a.companyForm.Reset()
	a.mu.Unlock()
}

// DeleteCompany removes an employer profile. The backend refuses while
// shifts still reference it; that refusal is shown as-is.
func (a *App) DeleteCompany(ctx context.Context, id string, confirmed bool) {
	if err := a.repo.DeleteCompany(ctx, id, confirmed); err != nil {
		a.setStatus(session.PanelAdmin, displayText(err))
		return
	}
	if a.state.ActiveCompany() == id {
		a.state.SelectCompany("")
	}
	a.mu.Lock()
	if a.companyForm.ID == id {
		a.companyForm.Reset()
	}
	a.mu.Unlock()
	a.setStatus(session.PanelAdmin, "Company deleted.")
	if err := a.refreshCompanies(ctx); err != nil {
		a.setStatus(session.PanelAdmin, displayText(err))
	}
}
