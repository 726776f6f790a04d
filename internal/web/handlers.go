package web

import (
	"html/template"
	"net/http"

	"github.com/gorilla/csrf"

	"fintrack/internal/app"
	"fintrack/internal/forms"
	"fintrack/internal/session"
)

// pageData is everything the page shell needs. Only the active panel's
// view is populated.
type pageData struct {
	Panel    session.Panel
	CSRF     template.HTML
	Auth     *app.AuthView
	Reset    *app.ResetView
	Menu     *app.MenuView
	Monthly  *app.MonthlyView
	Accounts *app.AccountsView
	Bills    *app.BillsView
	Admin    *app.AdminView
	Finances *app.FinancesView
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()

	// First contact: try the recovery marker, then the stored token.
	if s.app.State().Phase() == session.Unauthenticated {
		if token := s.storedToken(r); token != "" || r.URL.RawQuery != "" {
			s.app.Start(ctx, r.URL.String(), token)
			s.persistToken(w, r)
		}
	}

	data := pageData{
		Panel: s.app.State().Current(),
		CSRF:  csrf.TemplateField(r),
	}
	switch data.Panel {
	case session.PanelAuth:
		v := s.app.Auth()
		data.Auth = &v
	case session.PanelReset:
		v := s.app.Reset()
		data.Reset = &v
	case session.PanelMenu:
		v := s.app.Menu()
		data.Menu = &v
	case session.PanelMonthly:
		v := s.app.Monthly(ctx)
		data.Monthly = &v
	case session.PanelAccounts:
		v := s.app.Accounts()
		data.Accounts = &v
	case session.PanelBills:
		v := s.app.Bills()
		data.Bills = &v
	case session.PanelAdmin:
		v := s.app.Admin()
		data.Admin = &v
	case session.PanelFinances:
		v := s.app.Finances(ctx)
		data.Finances = &v
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		s.log.Error("Rendering failed", "panel", data.Panel, "error", err)
		http.Error(w, "rendering failed", http.StatusInternalServerError)
	}
}

// form enforces POST and parses the body. Handlers bail out when it
// returns false.
func (s *Server) form(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return false
	}
	return true
}

func home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

/* ---- auth ---- */

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !s.form(w, r) {
		return
	}
	s.app.Register(r.Context(),
		r.Form.Get("email"), r.Form.Get("password"),
		r.Form.Get("confirm"), r.Form.Get("invite"))
	home(w, r)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.form(w, r) {
		return
	}
	s.app.Login(r.Context(), r.Form.Get("email"), r.Form.Get("password"))
	s.persistToken(w, r)
	home(w, r)
}

func (s *Server) handleForgot(w http.ResponseWriter, r *http.Request) {
	if !s.form(w, r) {
		return
	}
	s.app.ForgotPassword(r.Context(), r.Form.Get("email"))
	home(w, r)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if !s.form(w, r) {
		return
	}
	s.app.SetNewPassword(r.Context(),
		r.Form.Get("token"), r.Form.Get("password"), r.Form.Get("confirm"))
	s.persistToken(w, r)
	home(w, r)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if !s.form(w, r) {
		return
	}
	s.app.Logout(r.Context())
	s.persistToken(w, r)
	home(w, r)
}

/* ---- navigation ---- */

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	if !s.form(w, r) {
		return
	}
	s.app.OpenPanel(r.Context(), session.Panel(r.Form.Get("panel")))
	home(w, r)
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	if !s.form(w, r) {
		return
	}
	s.app.Back()
	home(w, r)
}

func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	if !s.form(w, r) {
		return
	}
	switch r.Form.Get("dir") {
	case "prev":
		s.app.ShiftMonth(-1)
	case "next":
		s.app.ShiftMonth(1)
	}
	home(w, r)
}

func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	if !s.form(w, r) {
		return
	}
	ctx := r.Context()
	if date := r.Form.Get("date"); date != "" {
		s.app.SetDay(ctx, date)
	} else {
		switch r.Form.Get("dir") {
		case "prev":
			s.app.ShiftDay(ctx, -1)
		case "next":
			s.app.ShiftDay(ctx, 1)
		}
	}
	home(w, r)
}

func (s *Server) handleSelectCompany(w http.ResponseWriter, r *http.Request) {
	if !s.form(w, r) {
		return
	}
	s.app.SelectCompany(r.Context(), r.Form.Get("id"))
	home(w, r)
}

/* ---- accounts ---- */

func (s *Server) handleSaveAccount(w http.ResponseWriter, r *http.Request) {
	if !s.form(w, r) {
		return
	}
	s.app.SaveAccount(r.Context(), forms.AccountForm{
		ID:    r.Form.Get("id"),
		Name:  r.Form.Get("name"),
		Type:  r.Form.Get("account_type"),
		Notes: r.Form.Get("notes"),
	})
	home(w, r)
}

func (s *Server) handleEditAccount(w http.ResponseWriter, r *http.Request) {
	if !s.form(w, r) {
		return
	}
	if id := r.Form.Get("id"); id != "" {
		s.app.EditAccount(id)
	} else {
		s.app.CancelAccountEdit()
	}
	home(w, r)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if !s.form(w, r) {
		return
	}
	s.app.DeleteAccount(r.Context(), r.Form.Get("id"), r.Form.Get("confirmed") == "true")
	home(w, r)
}

/* ---- bills ---- */

func (s *Server) handleSaveBill(w http.ResponseWriter, r *http.Request) {
	if !s.form(w, r) {
		return
	}
	s.app.SaveBill(r.Context(), forms.BillForm{
		ID:          r.Form.Get("id"),
		Name:        r.Form.Get("name"),
		Amount:      r.Form.Get("amount"),
		Frequency:   r.Form.Get("frequency"),
		NextDueDate: r.Form.Get("next_due_date"),
		Category:    r.Form.Get("category"),
		AccountID:   r.Form.Get("account_id"),
		AutoPay:     r.Form.Get("auto_pay") == "on",
		Variable:    r.Form.Get("variable_amount") == "on",
		Active:      r.Form.Get("active") == "on",
		Notes:       r.Form.Get("notes"),
		ExpiryDate:  r.Form.Get("expiry_date"),
	})
	home(w, r)
}

func (s *Server) handleEditBill(w http.ResponseWriter, r *http.Request) {
	if !s.form(w, r) {
		return
	}
	if id := r.Form.Get("id"); id != "" {
		s.app.EditBill(id)
	} else {
		s.app.CancelBillEdit()
	}
	home(w, r)
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	if !s.form(w, r) {
		return
	}
	s.app.DeleteBill(r.Context(), r.Form.Get("id"), r.Form.Get("confirmed") == "true")
	home(w, r)
}

/* ---- companies ---- */

func (s *Server) handleSaveCompany(w http.ResponseWriter, r *http.Request) {
	if !s.form(w, r) {
		return
	}
	s.app.SaveCompany(r.Context(), forms.CompanyForm{
		ID:      r.Form.Get("id"),
		Name:    r.Form.Get("name"),
		Mileage: r.Form.Get("uses_mileage") == "on",
		Parcels: r.Form.Get("uses_parcels") == "on",
		Stops:   r.Form.Get("uses_stops") == "on",
		Pay:     r.Form.Get("uses_pay") == "on",
	})
	home(w, r)
}

func (s *Server) handleEditCompany(w http.ResponseWriter, r *http.Request) {
	if !s.form(w, r) {
		return
	}
	if id := r.Form.Get("id"); id != "" {
		s.app.EditCompany(id)
	} else {
		s.app.CancelCompanyEdit()
	}
	home(w, r)
}

func (s *Server) handleDeleteCompany(w http.ResponseWriter, r *http.Request) {
	if !s.form(w, r) {
		return
	}
	s.app.DeleteCompany(r.Context(), r.Form.Get("id"), r.Form.Get("confirmed") == "true")
	home(w, r)
}

/* ---- shifts ---- */

func shiftFormFrom(r *http.Request) forms.ShiftForm {
	return forms.ShiftForm{
		Start:        r.Form.Get("start"),
		End:          r.Form.Get("end"),
		StartMileage: r.Form.Get("start_mileage"),
		EndMileage:   r.Form.Get("end_mileage"),
		Parcels:      r.Form.Get("parcels"),
		Stops:        r.Form.Get("stops"),
		Pay:          r.Form.Get("pay"),
		Notes:        r.Form.Get("notes"),
	}
}

func (s *Server) handleSaveShift(w http.ResponseWriter, r *http.Request) {
	if !s.form(w, r) {
		return
	}
	s.app.SaveShift(r.Context(), shiftFormFrom(r))
	home(w, r)
}

// handleStampShift handles the "now" buttons. The form comes along so
// values typed before pressing the button are not lost.
func (s *Server) handleStampShift(w http.ResponseWriter, r *http.Request) {
	if !s.form(w, r) {
		return
	}
	switch r.Form.Get("field") {
	case "start":
		s.app.StampShiftStart(shiftFormFrom(r))
	case "end":
		s.app.StampShiftEnd(shiftFormFrom(r))
	}
	home(w, r)
}

func (s *Server) handleDeleteShift(w http.ResponseWriter, r *http.Request) {
	if !s.form(w, r) {
		return
	}
	s.app.DeleteShift(r.Context(), r.Form.Get("confirmed") == "true")
	home(w, r)
}
