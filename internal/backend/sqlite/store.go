// Package sqlite is the self-hosted backend: the same contract the remote
// REST backend offers, kept in a local SQLite database. Useful when the
// tracker runs without any hosted service behind it.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure Go driver, no CGO

	"fintrack/internal/backend"
	"fintrack/internal/core"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// timeLayout is how timestamps are stored. UTC RFC3339 keeps string
// comparison chronological for range scans.
const timeLayout = time.RFC3339

type Store struct {
	db        *sql.DB
	jwtSecret []byte
}

var (
	_ backend.Auth  = (*Store)(nil)
	_ backend.Store = (*Store)(nil)
)

// New opens (creating if needed) the database at dbPath and brings the
// schema up to date.
func New(dbPath, jwtSecret string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, jwtSecret: []byte(jwtSecret)}, nil
}

func runMigrations(dbPath string) error {
	// Separate connection so the migration driver does not interfere
	// with the main pool.
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := migratesqlite.WithInstance(migrateDB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

// storeErr wraps a database failure so its text reaches the user the same
// way a remote backend's message would.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return backend.ErrNotFound
	}
	wrapped := &backend.Error{Op: op, Message: err.Error(), Err: err}
	if strings.Contains(err.Error(), "FOREIGN KEY constraint") {
		wrapped.Err = backend.ErrRestricted
	}
	return wrapped
}

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.Local(), nil
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

/* ---- accounts ---- */

func (s *Store) ListAccounts(ctx context.Context, userID string) ([]core.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, account_type, COALESCE(notes, '')
		FROM fin_accounts WHERE user_id = ?
		ORDER BY created_at ASC, rowid ASC`, userID)
	if err != nil {
		return nil, storeErr("list accounts", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		var a core.Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.Notes); err != nil {
			return nil, storeErr("scan account", err)
		}
		out = append(out, a)
	}
	return out, storeErr("list accounts", rows.Err())
}

func (s *Store) InsertAccount(ctx context.Context, a core.Account) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fin_accounts (id, user_id, name, account_type, notes)
		VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), a.UserID, a.Name, a.Type, nullStr(a.Notes))
	return storeErr("insert account", err)
}

func (s *Store) UpdateAccount(ctx context.Context, a core.Account) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE fin_accounts SET name = ?, account_type = ?, notes = ?
		WHERE id = ? AND user_id = ?`,
		a.Name, a.Type, nullStr(a.Notes), a.ID, a.UserID)
	if err != nil {
		return storeErr("update account", err)
	}
	return affected("update account", res)
}

func (s *Store) DeleteAccount(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM fin_accounts WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return storeErr("delete account", err)
	}
	return affected("delete account", res)
}

/* ---- bills ---- */

const billColumns = `id, user_id, name, amount, currency, is_recurring, frequency,
	next_due_date, COALESCE(category, ''), COALESCE(account_id, ''), auto_pay,
	variable_amount, active, COALESCE(notes, ''), COALESCE(expiry_date, '')`

func scanBill(rows *sql.Rows) (core.Bill, error) {
	var b core.Bill
	err := rows.Scan(&b.ID, &b.UserID, &b.Name, &b.Amount, &b.Currency, &b.IsRecurring,
		&b.Frequency, &b.NextDueDate, &b.Category, &b.AccountID, &b.AutoPay,
		&b.VariableAmount, &b.Active, &b.Notes, &b.ExpiryDate)
	return b, err
}

func (s *Store) listBills(ctx context.Context, op, where string, args ...any) ([]core.Bill, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+billColumns+` FROM fin_bills WHERE `+where+` ORDER BY next_due_date ASC`, args...)
	if err != nil {
		return nil, storeErr(op, err)
	}
	defer rows.Close()

	var out []core.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, storeErr(op, err)
		}
		out = append(out, b)
	}
	return out, storeErr(op, rows.Err())
}

func (s *Store) ListBills(ctx context.Context, userID string) ([]core.Bill, error) {
	return s.listBills(ctx, "list bills", "user_id = ?", userID)
}

func (s *Store) ListBillsDueBetween(ctx context.Context, userID, from, to string) ([]core.Bill, error) {
	return s.listBills(ctx, "list bills due",
		"user_id = ? AND active = 1 AND next_due_date >= ? AND next_due_date <= ?",
		userID, from, to)
}

func (s *Store) InsertBill(ctx context.Context, b core.Bill) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fin_bills (id, user_id, name, amount, currency, is_recurring,
			frequency, next_due_date, category, account_id, auto_pay,
			variable_amount, active, notes, expiry_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), b.UserID, b.Name, b.Amount, b.Currency, b.IsRecurring,
		b.Frequency, b.NextDueDate, nullStr(b.Category), nullStr(b.AccountID),
		b.AutoPay, b.VariableAmount, b.Active, nullStr(b.Notes), nullStr(b.ExpiryDate))
	return storeErr("insert bill", err)
}

func (s *Store) UpdateBill(ctx context.Context, b core.Bill) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE fin_bills SET name = ?, amount = ?, currency = ?, is_recurring = ?,
			frequency = ?, next_due_date = ?, category = ?, account_id = ?,
			auto_pay = ?, variable_amount = ?, active = ?, notes = ?, expiry_date = ?
		WHERE id = ? AND user_id = ?`,
		b.Name, b.Amount, b.Currency, b.IsRecurring, b.Frequency, b.NextDueDate,
		nullStr(b.Category), nullStr(b.AccountID), b.AutoPay, b.VariableAmount,
		b.Active, nullStr(b.Notes), nullStr(b.ExpiryDate), b.ID, b.UserID)
	if err != nil {
		return storeErr("update bill", err)
	}
	return affected("update bill", res)
}

func (s *Store) DeleteBill(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM fin_bills WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return storeErr("delete bill", err)
	}
	return affected("delete bill", res)
}

/* ---- companies ---- */

func (s *Store) ListCompanies(ctx context.Context, userID string) ([]core.Company, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, uses_mileage, uses_parcels, uses_stops, uses_pay
		FROM fin_companies WHERE user_id = ?
		ORDER BY created_at ASC, rowid ASC`, userID)
	if err != nil {
		return nil, storeErr("list companies", err)
	}
	defer rows.Close()

	var out []core.Company
	for rows.Next() {
		var c core.Company
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name,
			&c.Mileage, &c.Parcels, &c.Stops, &c.Pay); err != nil {
			return nil, storeErr("scan company", err)
		}
		out = append(out, c)
	}
	return out, storeErr("list companies", rows.Err())
}

func (s *Store) InsertCompany(ctx context.Context, c core.Company) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fin_companies (id, user_id, name, uses_mileage, uses_parcels, uses_stops, uses_pay)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), c.UserID, c.Name, c.Mileage, c.Parcels, c.Stops, c.Pay)
	return storeErr("insert company", err)
}

func (s *Store) UpdateCompany(ctx context.Context, c core.Company) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE fin_companies SET name = ?, uses_mileage = ?, uses_parcels = ?, uses_stops = ?, uses_pay = ?
		WHERE id = ? AND user_id = ?`,
		c.Name, c.Mileage, c.Parcels, c.Stops, c.Pay, c.ID, c.UserID)
	if err != nil {
		return storeErr("update company", err)
	}
	return affected("update company", res)
}

func (s *Store) DeleteCompany(ctx context.Context, userID, id string) error {
	// Shifts reference companies with ON DELETE RESTRICT; the constraint
	// failure is surfaced, not pre-checked.
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM fin_companies WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return storeErr("delete company", err)
	}
	return affected("delete company", res)
}

/* ---- shifts ---- */

const shiftColumns = `id, user_id, company_id, work_date, start_time, end_time,
	start_mileage, end_mileage, total_mileage, total_parcels, total_stops,
	estimated_pay, COALESCE(notes, '')`

func scanShift(scan func(dest ...any) error) (core.Shift, error) {
	var (
		sh           core.Shift
		startRaw     string
		endRaw       sql.NullString
		startMileage sql.NullFloat64
		endMileage   sql.NullFloat64
		totalMileage sql.NullFloat64
		parcels      sql.NullInt64
		stops        sql.NullInt64
		pay          sql.NullFloat64
	)
	err := scan(&sh.ID, &sh.UserID, &sh.CompanyID, &sh.WorkDate, &startRaw, &endRaw,
		&startMileage, &endMileage, &totalMileage, &parcels, &stops, &pay, &sh.Notes)
	if err != nil {
		return core.Shift{}, err
	}

	if sh.StartTime, err = parseTime(startRaw); err != nil {
		return core.Shift{}, fmt.Errorf("parse start time: %w", err)
	}
	if endRaw.Valid {
		end, err := parseTime(endRaw.String)
		if err != nil {
			return core.Shift{}, fmt.Errorf("parse end time: %w", err)
		}
		sh.EndTime = &end
	}
	if startMileage.Valid {
		sh.StartMileage = &startMileage.Float64
	}
	if endMileage.Valid {
		sh.EndMileage = &endMileage.Float64
	}
	if totalMileage.Valid {
		sh.TotalMileage = &totalMileage.Float64
	}
	if parcels.Valid {
		n := int(parcels.Int64)
		sh.Parcels = &n
	}
	if stops.Valid {
		n := int(stops.Int64)
		sh.Stops = &n
	}
	if pay.Valid {
		sh.EstimatedPay = &pay.Float64
	}
	return sh, nil
}

func (s *Store) GetShift(ctx context.Context, userID, companyID, workDate string) (core.Shift, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+shiftColumns+` FROM fin_shifts
		WHERE user_id = ? AND company_id = ? AND work_date = ?`,
		userID, companyID, workDate)
	sh, err := scanShift(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Shift{}, backend.ErrNotFound
		}
		return core.Shift{}, storeErr("get shift", err)
	}
	return sh, nil
}

func (s *Store) UpsertShift(ctx context.Context, sh core.Shift) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fin_shifts (id, user_id, company_id, work_date, start_time,
			end_time, start_mileage, end_mileage, total_mileage, total_parcels,
			total_stops, estimated_pay, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, company_id, work_date) DO UPDATE SET
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			start_mileage = excluded.start_mileage,
			end_mileage = excluded.end_mileage,
			total_mileage = excluded.total_mileage,
			total_parcels = excluded.total_parcels,
			total_stops = excluded.total_stops,
			estimated_pay = excluded.estimated_pay,
			notes = excluded.notes`,
		uuid.New().String(), sh.UserID, sh.CompanyID, sh.WorkDate,
		formatTime(sh.StartTime), formatTimePtr(sh.EndTime),
		nullFloat(sh.StartMileage), nullFloat(sh.EndMileage), nullFloat(sh.TotalMileage),
		nullInt(sh.Parcels), nullInt(sh.Stops), nullFloat(sh.EstimatedPay), nullStr(sh.Notes))
	return storeErr("upsert shift", err)
}

func (s *Store) DeleteShift(ctx context.Context, userID, companyID, workDate string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM fin_shifts WHERE user_id = ? AND company_id = ? AND work_date = ?`,
		userID, companyID, workDate)
	if err != nil {
		return storeErr("delete shift", err)
	}
	return affected("delete shift", res)
}

func (s *Store) listShifts(ctx context.Context, op, where, order string, args ...any) ([]core.Shift, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+shiftColumns+` FROM fin_shifts WHERE `+where+` ORDER BY `+order, args...)
	if err != nil {
		return nil, storeErr(op, err)
	}
	defer rows.Close()

	var out []core.Shift
	for rows.Next() {
		sh, err := scanShift(rows.Scan)
		if err != nil {
			return nil, storeErr(op, err)
		}
		out = append(out, sh)
	}
	return out, storeErr(op, rows.Err())
}

func (s *Store) ListShiftsBetween(ctx context.Context, userID string, w core.MonthWindow) ([]core.Shift, error) {
	return s.listShifts(ctx, "list shifts",
		"user_id = ? AND start_time >= ? AND start_time < ?", "start_time ASC",
		userID, formatTime(w.Start), formatTime(w.End))
}

func (s *Store) ListCompanyShiftsBetween(ctx context.Context, userID, companyID string, w core.MonthWindow) ([]core.Shift, error) {
	return s.listShifts(ctx, "list company shifts",
		"user_id = ? AND company_id = ? AND start_time >= ? AND start_time < ?",
		"work_date DESC",
		userID, companyID, formatTime(w.Start), formatTime(w.End))
}

func affected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr(op, err)
	}
	if n == 0 {
		return backend.ErrNotFound
	}
	return nil
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
