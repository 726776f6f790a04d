package app

import (
	"context"

	"fintrack/internal/forms"
	"fintrack/internal/session"
)

func (a *App) SaveBill(ctx context.Context, f forms.BillForm) {
	if !a.state.Begin("bill") {
		return
	}
	defer a.state.End("bill")

	a.mu.Lock()
	a.billForm = f
	a.mu.Unlock()

	rec, err := f.Record()
	if err != nil {
		a.setStatus(session.PanelBills, displayText(err))
		return
	}
	if err := a.repo.SaveBill(ctx, rec); err != nil {
		a.setStatus(session.PanelBills, displayText(err))
		return
	}

	a.mu.Lock()
	a.billForm.Reset()
	a.mu.Unlock()
	a.setStatus(session.PanelBills, "Bill saved.")
	if err := a.refreshBills(ctx); err != nil {
		a.setStatus(session.PanelBills, displayText(err))
	}
}

func (a *App) EditBill(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, b := range a.bills {
		if b.ID == id {
			a.billForm.Load(b)
			return
		}
	}
}

func (a *App) CancelBillEdit() {
	a.mu.Lock()
	a.billForm.Reset()
	a.mu.Unlock()
}

func (a *App) DeleteBill(ctx context.Context, id string, confirmed bool) {
	if err := a.repo.DeleteBill(ctx, id, confirmed); err != nil {
		a.setStatus(session.PanelBills, displayText(err))
		return
	}
	a.mu.Lock()
	if a.billForm.ID == id {
		a.billForm.Reset()
	}
	a.mu.Unlock()
	a.setStatus(session.PanelBills, "Bill deleted.")
	if err := a.refreshBills(ctx); err != nil {
		a.setStatus(session.PanelBills, displayText(err))
	}
}
