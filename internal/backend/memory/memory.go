// Package memory is an in-memory backend used by tests and for local
// development. It honors the same contract as the real backends:
// per-user scoping, bill ordering, shift upsert on the natural key and
// restrict semantics on company deletion.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/backend"
	"fintrack/internal/core"
)

type user struct {
	id       string
	email    string
	password string
}

// Store implements backend.Auth and backend.Store in memory.
type Store struct {
	mu        sync.Mutex
	users     map[string]user            // by email
	sessions  map[string]backend.Session // by token
	accounts  []core.Account
	bills     []core.Bill
	companies []core.Company
	shifts    []core.Shift

	// Calls counts store reads and writes per method name, letting tests
	// assert that a rejected action made no backend request.
	Calls map[string]int
}

var (
	_ backend.Auth  = (*Store)(nil)
	_ backend.Store = (*Store)(nil)
)

func New() *Store {
	return &Store{
		users:    make(map[string]user),
		sessions: make(map[string]backend.Session),
		Calls:    make(map[string]int),
	}
}

func (s *Store) count(method string) {
	s.Calls[method]++
}

// TotalCalls returns the number of store operations seen so far.
func (s *Store) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.Calls {
		n += c
	}
	return n
}

/* ---- auth ---- */

func (s *Store) SignUp(_ context.Context, email, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("SignUp")
	email = strings.ToLower(strings.TrimSpace(email))
	if _, exists := s.users[email]; exists {
		return &backend.Error{Op: "signup", Message: "User already registered"}
	}
	s.users[email] = user{id: uuid.New().String(), email: email, password: password}
	return nil
}

func (s *Store) SignIn(_ context.Context, email, password string) (backend.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("SignIn")
	email = strings.ToLower(strings.TrimSpace(email))
	u, ok := s.users[email]
	if !ok || u.password != password {
		return backend.Session{}, &backend.Error{Op: "signin", Message: "Invalid login credentials"}
	}
	sess := backend.Session{
		AccessToken: uuid.New().String(),
		UserID:      u.id,
		Email:       u.email,
		ExpiresAt:   time.Now().Add(24 * time.Hour),
	}
	s.sessions[sess.AccessToken] = sess
	return sess, nil
}

func (s *Store) SignOut(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("SignOut")
	delete(s.sessions, token)
	return nil
}

func (s *Store) RequestPasswordReset(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("RequestPasswordReset")
	// Whether the address exists is not disclosed.
	return nil
}

func (s *Store) UpdatePassword(_ context.Context, token, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("UpdatePassword")
	sess, ok := s.sessions[token]
	if !ok {
		return backend.ErrNoSession
	}
	u := s.users[sess.Email]
	u.password = newPassword
	s.users[sess.Email] = u
	return nil
}

func (s *Store) CurrentUser(_ context.Context, token string) (backend.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("CurrentUser")
	sess, ok := s.sessions[token]
	if !ok || !sess.Valid() {
		return backend.User{}, backend.ErrNoSession
	}
	return backend.User{ID: sess.UserID, Email: sess.Email}, nil
}

/* ---- accounts ---- */

func (s *Store) ListAccounts(_ context.Context, userID string) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("ListAccounts")
	var out []core.Account
	for _, a := range s.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) InsertAccount(_ context.Context, a core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("InsertAccount")
	a.ID = uuid.New().String()
	a.CreatedAt = time.Now()
	s.accounts = append(s.accounts, a)
	return nil
}

func (s *Store) UpdateAccount(_ context.Context, a core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("UpdateAccount")
	for i, cur := range s.accounts {
		if cur.ID == a.ID && cur.UserID == a.UserID {
			a.CreatedAt = cur.CreatedAt
			s.accounts[i] = a
			return nil
		}
	}
	return backend.ErrNotFound
}

func (s *Store) DeleteAccount(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("DeleteAccount")
	for i, a := range s.accounts {
		if a.ID == id && a.UserID == userID {
			s.accounts = append(s.accounts[:i], s.accounts[i+1:]...)
			// Bills referencing the account keep their dangling
			// account_id; the reference is tolerated at read time.
			return nil
		}
	}
	return backend.ErrNotFound
}

/* ---- bills ---- */

func (s *Store) ListBills(_ context.Context, userID string) ([]core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("ListBills")
	var out []core.Bill
	for _, b := range s.bills {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].NextDueDate < out[j].NextDueDate })
	return out, nil
}

func (s *Store) ListBillsDueBetween(_ context.Context, userID, from, to string) ([]core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("ListBillsDueBetween")
	var mine []core.Bill
	for _, b := range s.bills {
		if b.UserID == userID {
			mine = append(mine, b)
		}
	}
	return core.BillsDueBetween(mine, from, to), nil
}

func (s *Store) InsertBill(_ context.Context, b core.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("InsertBill")
	b.ID = uuid.New().String()
	s.bills = append(s.bills, b)
	return nil
}

func (s *Store) UpdateBill(_ context.Context, b core.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("UpdateBill")
	for i, cur := range s.bills {
		if cur.ID == b.ID && cur.UserID == b.UserID {
			s.bills[i] = b
			return nil
		}
	}
	return backend.ErrNotFound
}

func (s *Store) DeleteBill(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("DeleteBill")
	for i, b := range s.bills {
		if b.ID == id && b.UserID == userID {
			s.bills = append(s.bills[:i], s.bills[i+1:]...)
			return nil
		}
	}
	return backend.ErrNotFound
}

/* ---- companies ---- */

func (s *Store) ListCompanies(_ context.Context, userID string) ([]core.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("ListCompanies")
	var out []core.Company
	for _, c := range s.companies {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) InsertCompany(_ context.Context, c core.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("InsertCompany")
	c.ID = uuid.New().String()
	s.companies = append(s.companies, c)
	return nil
}

func (s *Store) UpdateCompany(_ context.Context, c core.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("UpdateCompany")
	for i, cur := range s.companies {
		if cur.ID == c.ID && cur.UserID == c.UserID {
			s.companies[i] = c
			return nil
		}
	}
	return backend.ErrNotFound
}

func (s *Store) DeleteCompany(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("DeleteCompany")
	for _, sh := range s.shifts {
		if sh.UserID == userID && sh.CompanyID == id {
			return &backend.Error{Op: "delete company", Message: "update or delete on table violates foreign key constraint", Err: backend.ErrRestricted}
		}
	}
	for i, c := range s.companies {
		if c.ID == id && c.UserID == userID {
			s.companies = append(s.companies[:i], s.companies[i+1:]...)
			return nil
		}
	}
	return backend.ErrNotFound
}

/* ---- shifts ---- */

func (s *Store) GetShift(_ context.Context, userID, companyID, workDate string) (core.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("GetShift")
	for _, sh := range s.shifts {
		if sh.UserID == userID && sh.CompanyID == companyID && sh.WorkDate == workDate {
			return sh, nil
		}
	}
	return core.Shift{}, backend.ErrNotFound
}

func (s *Store) UpsertShift(_ context.Context, shift core.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("UpsertShift")
	for i, sh := range s.shifts {
		if sh.UserID == shift.UserID && sh.CompanyID == shift.CompanyID && sh.WorkDate == shift.WorkDate {
			shift.ID = sh.ID
			s.shifts[i] = shift
			return nil
		}
	}
	shift.ID = uuid.New().String()
	s.shifts = append(s.shifts, shift)
	return nil
}

func (s *Store) DeleteShift(_ context.Context, userID, companyID, workDate string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("DeleteShift")
	for i, sh := range s.shifts {
		if sh.UserID == userID && sh.CompanyID == companyID && sh.WorkDate == workDate {
			s.shifts = append(s.shifts[:i], s.shifts[i+1:]...)
			return nil
		}
	}
	return backend.ErrNotFound
}

func (s *Store) ListShiftsBetween(_ context.Context, userID string, w core.MonthWindow) ([]core.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("ListShiftsBetween")
	var out []core.Shift
	for _, sh := range s.shifts {
		if sh.UserID == userID && w.Contains(sh.StartTime) {
			out = append(out, sh)
		}
	}
	return out, nil
}

func (s *Store) ListCompanyShiftsBetween(_ context.Context, userID, companyID string, w core.MonthWindow) ([]core.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count("ListCompanyShiftsBetween")
	var out []core.Shift
	for _, sh := range s.shifts {
		if sh.UserID == userID && sh.CompanyID == companyID && w.Contains(sh.StartTime) {
			out = append(out, sh)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].WorkDate > out[j].WorkDate })
	return out, nil
}

func (s *Store) Close() error { return nil }
