package aggregate

import (
	"fmt"
	"time"

	"servicos/internal/core"
)

// Period selects the trailing window of the analytics view.
type Period string

const (
	Period3Months  Period = "3months"
	Period6Months  Period = "6months"
	Period12Months Period = "12months"
	PeriodAll      Period = "all"

	DefaultPeriod = Period6Months
)

// Periods lists the selectable windows in display order.
func Periods() []Period {
	return []Period{Period3Months, Period6Months, Period12Months, PeriodAll}
}

// ParsePeriod accepts the query-string form of a period. Empty input yields
// the default period.
func ParsePeriod(s string) (Period, error) {
	if s == "" {
		return DefaultPeriod, nil
	}
	for _, p := range Periods() {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("invalid period %q", s)
}

// Months returns the window length, or 0 for the unbounded period.
func (p Period) Months() int {
	switch p {
	case Period3Months:
		return 3
	case Period6Months:
		return 6
	case Period12Months:
		return 12
	default:
		return 0
	}
}

// Label is the human readable period description used in reports.
func (p Period) Label() string {
	if p.Months() == 0 {
		return "Todos os registros"
	}
	return fmt.Sprintf("Últimos %d meses", p.Months())
}

// WindowStart returns the first instant of the window, which is the first
// day of the month N months before now. ok is false for the unbounded period.
func WindowStart(p Period, now time.Time) (start time.Time, ok bool) {
	n := p.Months()
	if n == 0 {
		return time.Time{}, false
	}
	return time.Date(now.Year(), now.Month()-time.Month(n), 1, 0, 0, 0, 0, now.Location()), true
}

// FilterWindow keeps the records created on or after the window start. The
// unbounded period returns the input unchanged.
func FilterWindow(records []core.ServiceRecord, p Period, now time.Time) []core.ServiceRecord {
	start, ok := WindowStart(p, now)
	if !ok {
		return records
	}
	out := make([]core.ServiceRecord, 0, len(records))
	for _, r := range records {
		if !r.CreatedAtOrEpoch().Before(start) {
			out = append(out, r)
		}
	}
	return out
}

// Analytics is everything the analytics view renders for one period.
type Analytics struct {
	Period  Period
	Overall Totals
	Months  []MonthBucket
	Types   []TypeStats
	Users   []UserStats
}

// Analyze applies the window first, then every rollup. Per-user stats are
// only computed when includeUsers is set (admin view).
func Analyze(records []core.ServiceRecord, p Period, now time.Time, includeUsers bool) Analytics {
	filtered := FilterWindow(records, p, now)
	a := Analytics{
		Period:  p,
		Overall: Overall(filtered),
		Months:  ByMonth(filtered, now.Location()),
		Types:   ByType(filtered),
	}
	if includeUsers {
		a.Users = ByUser(filtered)
	}
	return a
}
