package core

import (
	"testing"
	"time"
)

func TestSummarize(t *testing.T) {
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.Local)
	shifts := []Shift{
		{StartTime: start, EndTime: tp(start.Add(8 * time.Hour)), EstimatedPay: fp(80)},
		{StartTime: start.AddDate(0, 0, 1), EndTime: tp(start.AddDate(0, 0, 1).Add(4 * time.Hour)), EstimatedPay: fp(45.5)},
		{StartTime: start.AddDate(0, 0, 2)}, // open shift: counts, contributes nothing
	}
	billsDue := []Bill{
		{Name: "Rent", Amount: 600, Active: true},
		{Name: "Gym", Amount: 25.5, Active: true},
	}
	upcoming := []Bill{{Name: "Gym"}}

	s := Summarize(shifts, billsDue, upcoming)
	if s.ShiftCount != 3 {
		t.Fatalf("shift count: got %d, want 3", s.ShiftCount)
	}
	if s.TotalHours != 12.00 {
		t.Fatalf("hours: got %v, want 12", s.TotalHours)
	}
	if s.TotalIncome != 125.5 {
		t.Fatalf("income: got %v, want 125.5", s.TotalIncome)
	}
	if s.TotalBillsDue != 625.5 {
		t.Fatalf("bills due: got %v, want 625.5", s.TotalBillsDue)
	}
	if s.NetIncome != s.TotalIncome-s.TotalBillsDue {
		t.Fatalf("net income identity broken: %v != %v - %v", s.NetIncome, s.TotalIncome, s.TotalBillsDue)
	}
	if s.UpcomingCount != 1 {
		t.Fatalf("upcoming: got %d, want 1", s.UpcomingCount)
	}
}

func TestBillsDueBetweenBoundaries(t *testing.T) {
	bills := []Bill{
		{Name: "first day", NextDueDate: "2024-03-01", Active: true},
		{Name: "mid month", NextDueDate: "2024-03-15", Active: true},
		{Name: "last day", NextDueDate: "2024-03-31", Active: true},
		{Name: "day after", NextDueDate: "2024-04-01", Active: true},
		{Name: "day before", NextDueDate: "2024-02-29", Active: true},
	}

	due := BillsDueBetween(bills, "2024-03-01", "2024-03-31")
	if len(due) != 3 {
		t.Fatalf("got %d bills, want 3", len(due))
	}
	if due[0].Name != "first day" || due[2].Name != "last day" {
		t.Fatalf("boundary bills missing or misordered: %+v", due)
	}
}

func TestInactiveBillExcludedEverywhere(t *testing.T) {
	bills := []Bill{
		{Name: "active", NextDueDate: "2024-03-10", Amount: 10, Active: true},
		{Name: "inactive", NextDueDate: "2024-03-10", Amount: 99, Active: false},
	}

	due := BillsDueBetween(bills, "2024-03-01", "2024-03-31")
	if len(due) != 1 || due[0].Name != "active" {
		t.Fatalf("inactive bill leaked into due list: %+v", due)
	}

	up := UpcomingBills(bills, "2024-03-01", 14)
	if len(up) != 1 || up[0].Name != "active" {
		t.Fatalf("inactive bill leaked into upcoming list: %+v", up)
	}

	s := Summarize(nil, due, up)
	if s.TotalBillsDue != 10 {
		t.Fatalf("bills due: got %v, want 10", s.TotalBillsDue)
	}
}

func TestUpcomingBillsWindow(t *testing.T) {
	bills := []Bill{
		{Name: "today", NextDueDate: "2024-03-01", Active: true},
		{Name: "day 14", NextDueDate: "2024-03-15", Active: true},
		{Name: "day 15", NextDueDate: "2024-03-16", Active: true},
		{Name: "yesterday", NextDueDate: "2024-02-29", Active: true},
	}

	up := UpcomingBills(bills, "2024-03-01", 14)
	if len(up) != 2 {
		t.Fatalf("got %d bills, want 2", len(up))
	}
	if up[0].Name != "today" || up[1].Name != "day 14" {
		t.Fatalf("wrong window contents: %+v", up)
	}
}
