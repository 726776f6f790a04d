package core

import "sort"

// MonthSummary is the aggregated view of one calendar month.
type MonthSummary struct {
	ShiftCount    int
	TotalHours    float64
	TotalIncome   float64
	TotalBillsDue float64
	NetIncome     float64
	UpcomingCount int
}

// Summarize folds the month's shift rows and bill rows into totals.
// Shifts with undefined hours still count as shifts and contribute zero
// hours. Income is the raw entered pay, never the derived rate. The net
// figure is exactly income minus bills due.
func Summarize(shifts []Shift, billsDue []Bill, upcoming []Bill) MonthSummary {
	s := MonthSummary{ShiftCount: len(shifts), UpcomingCount: len(upcoming)}
	for _, sh := range shifts {
		if h, ok := ElapsedHours(sh.StartTime, sh.EndTime); ok {
			s.TotalHours += h
		}
		if sh.EstimatedPay != nil {
			s.TotalIncome += *sh.EstimatedPay
		}
	}
	for _, b := range billsDue {
		s.TotalBillsDue += b.Amount
	}
	s.NetIncome = s.TotalIncome - s.TotalBillsDue
	return s
}

// BillsDueBetween returns the active bills due in [from, to], both ends
// inclusive, ordered by due date. The comparison is on date strings, not
// timestamps.
func BillsDueBetween(bills []Bill, from, to string) []Bill {
	var due []Bill
	for _, b := range bills {
		if !b.Active {
			continue
		}
		if b.NextDueDate >= from && b.NextDueDate <= to {
			due = append(due, b)
		}
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].NextDueDate < due[j].NextDueDate })
	return due
}

// UpcomingBills returns the active bills due within the next days days,
// today inclusive.
func UpcomingBills(bills []Bill, today string, days int) []Bill {
	return BillsDueBetween(bills, today, AddDays(today, days))
}
