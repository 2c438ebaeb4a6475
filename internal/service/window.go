package service

import (
	"time"

	"expensetracker/internal/model"
	"expensetracker/internal/repository"
)

// Period is the analytics window token accepted by the API.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// ParsePeriod maps a query value to a Period. Empty and unknown values fall back to month.
func ParsePeriod(s string) Period {
	switch Period(s) {
	case PeriodWeek, PeriodYear:
		return Period(s)
	default:
		return PeriodMonth
	}
}

// PeriodForBudget maps a stored budget period onto the analytics window token.
func PeriodForBudget(p model.BudgetPeriod) Period {
	switch p {
	case model.BudgetPeriodWeekly:
		return PeriodWeek
	case model.BudgetPeriodYearly:
		return PeriodYear
	default:
		return PeriodMonth
	}
}

// Window is the [Start, End] range an aggregation covers. Both bounds are inclusive.
type Window struct {
	Period Period
	Start  time.Time
	End    time.Time
}

// ResolveWindow computes the window for period ending at now. A week is the
// rolling last seven days; month and year start at the calendar boundary.
func ResolveWindow(period Period, now time.Time) Window {
	var start time.Time
	switch period {
	case PeriodWeek:
		start = now.Add(-7 * 24 * time.Hour)
	case PeriodYear:
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	default:
		period = PeriodMonth
		start = startOfMonth(now)
	}
	return Window{Period: period, Start: start, End: now}
}

// Range is the window as a repository range with an inclusive end.
func (w Window) Range() repository.TimeRange {
	return repository.TimeRange{From: w.Start, To: w.End}
}

// Previous is the equal-length range immediately before the window. Its end
// is exclusive so an expense at Start is only counted once.
func (w Window) Previous() repository.TimeRange {
	length := w.End.Sub(w.Start)
	return repository.TimeRange{From: w.Start.Add(-length), To: w.Start, OpenEnd: true}
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
