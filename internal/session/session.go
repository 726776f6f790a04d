// Package session tracks the user-facing state of one browsing session:
// which phase of authentication it is in, which panel is showing, the
// navigation history, and the day and month cursors the panels share.
// Nothing here is durable; the system of record lives behind the
// repository.
package session

import (
	"net/url"
	"strings"
	"sync"
	"time"

	"fintrack/internal/core"
)

// Panel identifies one screen of the application.
type Panel string

const (
	PanelAuth     Panel = "auth"
	PanelReset    Panel = "reset"
	PanelMenu     Panel = "menu"
	PanelMonthly  Panel = "monthly"
	PanelBills    Panel = "bills"
	PanelAccounts Panel = "accounts"
	PanelFinances Panel = "finances"
	PanelAdmin    Panel = "admin"
)

// Phase is the authentication phase of the session.
type Phase int

const (
	// Unauthenticated sessions can only see the auth panel.
	Unauthenticated Phase = iota
	// Authenticated sessions navigate freely.
	Authenticated
	// RecoveryPending means the session arrived through a password reset
	// link and must set a new password before anything else.
	RecoveryPending
)

// State is the navigation state machine. It is safe for concurrent use.
type State struct {
	mu       sync.Mutex
	phase    Phase
	current  Panel
	history  []Panel
	company  string
	workDate string
	month    time.Time
	inFlight map[string]bool
	now      func() time.Time
}

func New() *State {
	s := &State{
		current:  PanelAuth,
		inFlight: make(map[string]bool),
		now:      time.Now,
	}
	s.resetCursors()
	return s
}

func (s *State) resetCursors() {
	s.company = ""
	s.workDate = core.FormatDate(s.now())
	s.month = core.MonthOf(s.now())
}

func (s *State) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *State) Current() Panel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SignedIn moves the session to the main menu with fresh cursors.
func (s *State) SignedIn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = Authenticated
	s.current = PanelMenu
	s.history = nil
	s.resetCursors()
}

// SignedOut returns the session to the auth panel and forgets everything
// it knew.
func (s *State) SignedOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = Unauthenticated
	s.current = PanelAuth
	s.history = nil
	s.inFlight = make(map[string]bool)
	s.resetCursors()
}

// EnterRecovery switches to the forced password reset flow.
func (s *State) EnterRecovery() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = RecoveryPending
	s.current = PanelReset
	s.history = nil
}

// Open shows a panel, remembering the previous one for Back. Opening the
// panel that is already showing is a no-op.
func (s *State) Open(p Panel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p == s.current {
		return
	}
	s.history = append(s.history, s.current)
	s.current = p
}

// Back pops the navigation history. With nothing left to pop it lands on
// the menu, or the auth panel when not signed in.
func (s *State) Back() Panel {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.history); n > 0 {
		s.current = s.history[n-1]
		s.history = s.history[:n-1]
		return s.current
	}
	if s.phase == Authenticated {
		s.current = PanelMenu
	} else {
		s.current = PanelAuth
	}
	return s.current
}

/* ---- cursors ---- */

// ActiveCompany is the company selected on the finances panel, empty when
// none is.
func (s *State) ActiveCompany() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.company
}

func (s *State) SelectCompany(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.company = id
}

// WorkDate is the day cursor of the finances panel.
func (s *State) WorkDate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workDate
}

// SetWorkDate moves the day cursor. Days after today are clamped back to
// today; shifts are never planned ahead.
func (s *State) SetWorkDate(date string) {
	if _, err := core.ParseDate(date); err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if today := core.FormatDate(s.now()); date > today {
		date = today
	}
	s.workDate = date
}

// ShiftWorkDay moves the day cursor by delta days, clamped at today.
func (s *State) ShiftWorkDay(delta int) {
	s.mu.Lock()
	date := core.AddDays(s.workDate, delta)
	s.mu.Unlock()
	s.SetWorkDate(date)
}

// Month is the window of the month cursor.
func (s *State) Month() core.MonthWindow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.WindowOf(s.month)
}

// MonthLabel renders the month cursor for display.
func (s *State) MonthLabel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.MonthLabel(s.month)
}

// AtCurrentMonth reports whether forward month navigation is exhausted.
func (s *State) AtCurrentMonth() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.AtCurrentMonth(s.month, s.now())
}

// ShiftMonth moves the month cursor by delta months. The cursor never
// goes past the current month; months that have not happened have no
// data.
func (s *State) ShiftMonth(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := core.AddMonths(s.month, delta)
	if core.AtCurrentMonth(next, s.now()) {
		next = core.MonthOf(s.now())
	}
	s.month = next
}

/* ---- submission guard ---- */

// Begin marks a named form as in flight and reports whether the caller
// may proceed. A second submission while the first is pending is refused.
func (s *State) Begin(form string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[form] {
		return false
	}
	s.inFlight[form] = true
	return true
}

// End clears the in-flight mark set by Begin.
func (s *State) End(form string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, form)
}

/* ---- recovery links ---- */

// RecoveryToken extracts the access token from a password recovery link.
// The hosted auth flow delivers both token and marker in the URL
// fragment, e.g. "/#access_token=...&type=recovery". The second value is
// false when the URL is not a recovery link.
func RecoveryToken(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	fragment := u.Fragment
	if fragment == "" {
		// Some clients re-send the fragment as a query string.
		fragment = u.RawQuery
	}
	values, err := url.ParseQuery(strings.TrimPrefix(fragment, "/"))
	if err != nil {
		return "", false
	}
	if values.Get("type") != "recovery" {
		return "", false
	}
	return values.Get("access_token"), true
}
