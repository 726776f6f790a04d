package rest

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"fintrack/internal/backend"
	"fintrack/internal/core"
)

// accountPayload is the writable subset of an account row. created_at is
// owned by the database and never sent.
type accountPayload struct {
	UserID string           `json:"user_id"`
	Name   string           `json:"name"`
	Type   core.AccountType `json:"account_type"`
	Notes  string           `json:"notes"`
}

func (c *Client) ListAccounts(ctx context.Context, userID string) ([]core.Account, error) {
	q := url.Values{
		"user_id": {"eq." + userID},
		"order":   {"created_at.asc"},
	}
	var out []core.Account
	if err := c.getList(ctx, "list accounts", "/rest/v1/fin_accounts", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) InsertAccount(ctx context.Context, a core.Account) error {
	return c.insert(ctx, "insert account", "/rest/v1/fin_accounts",
		accountPayload{a.UserID, a.Name, a.Type, a.Notes})
}

func (c *Client) UpdateAccount(ctx context.Context, a core.Account) error {
	return c.update(ctx, "update account", "/rest/v1/fin_accounts", a.UserID, a.ID,
		accountPayload{a.UserID, a.Name, a.Type, a.Notes})
}

func (c *Client) DeleteAccount(ctx context.Context, userID, id string) error {
	return c.delete(ctx, "delete account", "/rest/v1/fin_accounts", userID, id)
}

func (c *Client) ListBills(ctx context.Context, userID string) ([]core.Bill, error) {
	q := url.Values{
		"user_id": {"eq." + userID},
		"order":   {"next_due_date.asc"},
	}
	var out []core.Bill
	if err := c.getList(ctx, "list bills", "/rest/v1/fin_bills", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListBillsDueBetween(ctx context.Context, userID, from, to string) ([]core.Bill, error) {
	q := url.Values{
		"user_id": {"eq." + userID},
		"active":  {"eq.true"},
		"order":   {"next_due_date.asc"},
	}
	q.Add("next_due_date", "gte."+from)
	q.Add("next_due_date", "lte."+to)
	var out []core.Bill
	if err := c.getList(ctx, "list bills due", "/rest/v1/fin_bills", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) InsertBill(ctx context.Context, b core.Bill) error {
	b.ID = ""
	return c.insert(ctx, "insert bill", "/rest/v1/fin_bills", b)
}

func (c *Client) UpdateBill(ctx context.Context, b core.Bill) error {
	id := b.ID
	b.ID = ""
	return c.update(ctx, "update bill", "/rest/v1/fin_bills", b.UserID, id, b)
}

func (c *Client) DeleteBill(ctx context.Context, userID, id string) error {
	return c.delete(ctx, "delete bill", "/rest/v1/fin_bills", userID, id)
}

func (c *Client) ListCompanies(ctx context.Context, userID string) ([]core.Company, error) {
	q := url.Values{
		"user_id": {"eq." + userID},
		"order":   {"created_at.asc"},
	}
	var out []core.Company
	if err := c.getList(ctx, "list companies", "/rest/v1/fin_companies", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) InsertCompany(ctx context.Context, co core.Company) error {
	co.ID = ""
	return c.insert(ctx, "insert company", "/rest/v1/fin_companies", co)
}

func (c *Client) UpdateCompany(ctx context.Context, co core.Company) error {
	id := co.ID
	co.ID = ""
	return c.update(ctx, "update company", "/rest/v1/fin_companies", co.UserID, id, co)
}

func (c *Client) DeleteCompany(ctx context.Context, userID, id string) error {
	return c.delete(ctx, "delete company", "/rest/v1/fin_companies", userID, id)
}

func (c *Client) GetShift(ctx context.Context, userID, companyID, workDate string) (core.Shift, error) {
	q := url.Values{
		"user_id":    {"eq." + userID},
		"company_id": {"eq." + companyID},
		"work_date":  {"eq." + workDate},
		"limit":      {"1"},
	}
	var out []core.Shift
	if err := c.getList(ctx, "get shift", "/rest/v1/fin_shifts", q, &out); err != nil {
		return core.Shift{}, err
	}
	if len(out) == 0 {
		return core.Shift{}, backend.ErrNotFound
	}
	return out[0], nil
}

func (c *Client) UpsertShift(ctx context.Context, s core.Shift) error {
	s.ID = ""
	q := url.Values{"on_conflict": {"user_id,company_id,work_date"}}
	req, err := c.newRequest(ctx, http.MethodPost, "/rest/v1/fin_shifts", q, s)
	if err != nil {
		return err
	}
	req.Header.Set("Prefer", "resolution=merge-duplicates")
	return c.do("save shift", req, nil)
}

func (c *Client) DeleteShift(ctx context.Context, userID, companyID, workDate string) error {
	q := url.Values{
		"user_id":    {"eq." + userID},
		"company_id": {"eq." + companyID},
		"work_date":  {"eq." + workDate},
	}
	req, err := c.newRequest(ctx, http.MethodDelete, "/rest/v1/fin_shifts", q, nil)
	if err != nil {
		return err
	}
	return c.do("delete shift", req, nil)
}

func (c *Client) ListShiftsBetween(ctx context.Context, userID string, w core.MonthWindow) ([]core.Shift, error) {
	q := shiftWindowQuery(userID, w)
	var out []core.Shift
	if err := c.getList(ctx, "list shifts", "/rest/v1/fin_shifts", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListCompanyShiftsBetween(ctx context.Context, userID, companyID string, w core.MonthWindow) ([]core.Shift, error) {
	q := shiftWindowQuery(userID, w)
	q.Set("company_id", "eq."+companyID)
	q.Set("order", "work_date.desc")
	var out []core.Shift
	if err := c.getList(ctx, "list company shifts", "/rest/v1/fin_shifts", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func shiftWindowQuery(userID string, w core.MonthWindow) url.Values {
	q := url.Values{
		"user_id": {"eq." + userID},
		"order":   {"start_time.asc"},
	}
	q.Add("start_time", "gte."+w.Start.Format(time.RFC3339))
	q.Add("start_time", "lt."+w.End.Format(time.RFC3339))
	return q
}

func (c *Client) getList(ctx context.Context, op, path string, q url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return err
	}
	return c.do(op, req, out)
}

func (c *Client) insert(ctx context.Context, op, path string, body any) error {
	req, err := c.newRequest(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return err
	}
	return c.do(op, req, nil)
}

func (c *Client) update(ctx context.Context, op, path, userID, id string, body any) error {
	q := url.Values{
		"id":      {"eq." + id},
		"user_id": {"eq." + userID},
	}
	req, err := c.newRequest(ctx, http.MethodPatch, path, q, body)
	if err != nil {
		return err
	}
	return c.do(op, req, nil)
}

func (c *Client) delete(ctx context.Context, op, path, userID, id string) error {
	q := url.Values{
		"id":      {"eq." + id},
		"user_id": {"eq." + userID},
	}
	req, err := c.newRequest(ctx, http.MethodDelete, path, q, nil)
	if err != nil {
		return err
	}
	return c.do(op, req, nil)
}
