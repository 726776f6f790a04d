package app

import (
	"context"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/forms"
	"fintrack/internal/session"
)

// SaveShift upserts the shift of the active company and day, then
// re-reads it so the form reflects what the backend actually stored.
func (a *App) SaveShift(ctx context.Context, f forms.ShiftForm) {
	if !a.state.Begin("shift") {
		return
	}
	defer a.state.End("shift")

	a.mu.Lock()
	a.shiftForm = f
	a.mu.Unlock()

	rec, err := f.Record(a.state.ActiveCompany(), a.state.WorkDate())
	if err != nil {
		a.setStatus(session.PanelFinances, displayText(err))
		return
	}
	if company, ok := a.companyByID(rec.CompanyID); ok {
		rec = a.preserveHidden(ctx, rec, company.CapabilityFlags)
	}
	if err := a.repo.SaveShift(ctx, rec); err != nil {
		a.setStatus(session.PanelFinances, displayText(err))
		return
	}
	a.loadShift(ctx)
	a.setStatus(session.PanelFinances, "Shift saved.")
}

// DeleteShift removes the stored shift of the active company and day.
func (a *App) DeleteShift(ctx context.Context, confirmed bool) {
	companyID := a.state.ActiveCompany()
	if err := a.repo.DeleteShift(ctx, companyID, a.state.WorkDate(), confirmed); err != nil {
		a.setStatus(session.PanelFinances, displayText(err))
		return
	}
	a.loadShift(ctx)
	a.setStatus(session.PanelFinances, "Shift deleted.")
}

// preserveHidden carries stored values over for fields the company's
// capability flags hide. A hidden field is never rendered, so the
// submitted form is blank there; overwriting would silently delete data
// the user cannot even see.
func (a *App) preserveHidden(ctx context.Context, rec core.Shift, flags core.CapabilityFlags) core.Shift {
	if flags.Mileage && flags.Parcels && flags.Stops && flags.Pay {
		return rec
	}
	stored, err := a.repo.ShiftFor(ctx, rec.CompanyID, rec.WorkDate)
	if err != nil {
		return rec
	}
	if !flags.Mileage {
		rec.StartMileage, rec.EndMileage = stored.StartMileage, stored.EndMileage
	}
	if !flags.Parcels {
		rec.Parcels = stored.Parcels
	}
	if !flags.Stops {
		rec.Stops = stored.Stops
	}
	if !flags.Pay {
		rec.EstimatedPay = stored.EstimatedPay
	}
	return rec
}

// StampShiftStart fills the start field of the submitted form with the
// current wall clock and keeps it for the next render, unsaved.
func (a *App) StampShiftStart(f forms.ShiftForm) {
	f.StartNow(time.Now())
	a.mu.Lock()
	a.shiftForm = f
	a.mu.Unlock()
}

// StampShiftEnd fills the end field the same way.
func (a *App) StampShiftEnd(f forms.ShiftForm) {
	f.EndNow(time.Now())
	a.mu.Lock()
	a.shiftForm = f
	a.mu.Unlock()
}
