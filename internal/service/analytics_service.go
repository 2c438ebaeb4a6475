package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"expensetracker/internal/repository"
)

const (
	DefaultTopCategoriesLimit = 5
	maxTopCategoriesLimit     = 50
	DefaultTrendMonths        = 6
	maxTrendMonths            = 60
)

// SummaryStats describes the spend of one window.
type SummaryStats struct {
	TotalExpenses    float64 `json:"totalExpenses"`
	AverageExpense   float64 `json:"averageExpense"`
	ExpenseCount     int64   `json:"expenseCount"`
	PercentageChange float64 `json:"percentageChange"`
	Period           Period  `json:"period"`
}

// TopCategory is one entry of the top categories ranking.
type TopCategory struct {
	CategoryID   uuid.UUID `json:"categoryId"`
	CategoryName string    `json:"categoryName"`
	TotalAmount  float64   `json:"totalAmount"`
	Count        int64     `json:"count"`
}

// DistributionEntry is the spend of one category, zero when it had none.
type DistributionEntry struct {
	CategoryID   uuid.UUID `json:"categoryId"`
	CategoryName string    `json:"categoryName"`
	Amount       float64   `json:"amount"`
}

// TrendPoint is the spend of one calendar month labelled YYYY-MM.
type TrendPoint struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
	Count  int64   `json:"count"`
}

// DailyAmount is the spend of one day of the current month.
type DailyAmount struct {
	Day    int     `json:"day"`
	Amount float64 `json:"amount"`
}

// AnalyticsService computes the aggregate views over a user's expenses.
type AnalyticsService interface {
	Summary(ctx context.Context, userID uuid.UUID, period Period) (*SummaryStats, error)
	TopCategories(ctx context.Context, userID uuid.UUID, period Period, limit int) ([]TopCategory, error)
	Distribution(ctx context.Context, userID uuid.UUID, period Period) ([]DistributionEntry, error)
	MonthlyTrend(ctx context.Context, userID uuid.UUID, months int) ([]TrendPoint, error)
	DailyExpenses(ctx context.Context, userID uuid.UUID) ([]DailyAmount, error)
	// TotalExpenses is the unrounded all-time spend.
	TotalExpenses(ctx context.Context, userID uuid.UUID) (float64, error)
}

type analyticsService struct {
	repo       repository.AnalyticsRepository
	categories repository.CategoryRepository
	now        func() time.Time
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(repo repository.AnalyticsRepository, categories repository.CategoryRepository) AnalyticsService {
	return &analyticsService{
		repo:       repo,
		categories: categories,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *analyticsService) Summary(ctx context.Context, userID uuid.UUID, period Period) (*SummaryStats, error) {
	window := ResolveWindow(period, s.now())

	current, err := s.repo.Totals(ctx, userID, window.Range())
	if err != nil {
		return nil, fmt.Errorf("current totals: %w", err)
	}
	previous, err := s.repo.Totals(ctx, userID, window.Previous())
	if err != nil {
		return nil, fmt.Errorf("previous totals: %w", err)
	}

	average := decimal.Zero
	if current.Count > 0 {
		average = current.Total.Div(decimal.NewFromInt(current.Count))
	}

	return &SummaryStats{
		TotalExpenses:    roundMoney(current.Total),
		AverageExpense:   roundMoney(average),
		ExpenseCount:     current.Count,
		PercentageChange: percentOf(current.Total.Sub(previous.Total), previous.Total),
		Period:           window.Period,
	}, nil
}

func (s *analyticsService) TopCategories(ctx context.Context, userID uuid.UUID, period Period, limit int) ([]TopCategory, error) {
	switch {
	case limit <= 0:
		limit = DefaultTopCategoriesLimit
	case limit > maxTopCategoriesLimit:
		limit = maxTopCategoriesLimit
	}
	window := ResolveWindow(period, s.now())

	rows, err := s.repo.CategoryTotals(ctx, userID, window.Range(), limit)
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}

	top := make([]TopCategory, 0, len(rows))
	for _, row := range rows {
		if len(top) == limit {
			break
		}
		top = append(top, TopCategory{
			CategoryID:   row.CategoryID,
			CategoryName: row.CategoryName,
			TotalAmount:  roundMoney(row.Total),
			Count:        row.ExpenseCount,
		})
	}
	return top, nil
}

// Distribution lists every category of the user. Spend on categories that no
// longer exist is not reported.
func (s *analyticsService) Distribution(ctx context.Context, userID uuid.UUID, period Period) ([]DistributionEntry, error) {
	window := ResolveWindow(period, s.now())

	categories, err := s.categories.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	rows, err := s.repo.CategoryTotals(ctx, userID, window.Range(), 0)
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}

	spent := make(map[uuid.UUID]decimal.Decimal, len(rows))
	for _, row := range rows {
		spent[row.CategoryID] = row.Total
	}

	entries := make([]DistributionEntry, 0, len(categories))
	for _, c := range categories {
		entries = append(entries, DistributionEntry{
			CategoryID:   c.ID,
			CategoryName: c.Name,
			Amount:       roundMoney(spent[c.ID]),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Amount != entries[j].Amount {
			return entries[i].Amount > entries[j].Amount
		}
		return entries[i].CategoryName < entries[j].CategoryName
	})
	return entries, nil
}

// MonthlyTrend covers the current month and the months-1 before it, oldest first.
func (s *analyticsService) MonthlyTrend(ctx context.Context, userID uuid.UUID, months int) ([]TrendPoint, error) {
	switch {
	case months <= 0:
		months = DefaultTrendMonths
	case months > maxTrendMonths:
		months = maxTrendMonths
	}
	now := s.now()
	first := startOfMonth(now).AddDate(0, -(months - 1), 0)

	rows, err := s.repo.MonthlyTotals(ctx, userID, repository.TimeRange{From: first, To: now})
	if err != nil {
		return nil, fmt.Errorf("monthly totals: %w", err)
	}

	type key struct{ year, month int }
	byMonth := make(map[key]repository.MonthTotal, len(rows))
	for _, row := range rows {
		byMonth[key{row.Year, row.Month}] = row
	}

	points := make([]TrendPoint, 0, months)
	for i := 0; i < months; i++ {
		m := first.AddDate(0, i, 0)
		row := byMonth[key{m.Year(), int(m.Month())}]
		points = append(points, TrendPoint{
			Month:  fmt.Sprintf("%d-%02d", m.Year(), int(m.Month())),
			Amount: roundMoney(row.Total),
			Count:  row.ExpenseCount,
		})
	}
	return points, nil
}

func (s *analyticsService) DailyExpenses(ctx context.Context, userID uuid.UUID) ([]DailyAmount, error) {
	now := s.now()
	start := startOfMonth(now)

	rows, err := s.repo.DailyTotals(ctx, userID, repository.TimeRange{From: start, To: now})
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}

	days := make([]DailyAmount, daysIn(now.Year(), now.Month(), now.Location()))
	for i := range days {
		days[i].Day = i + 1
	}
	for _, row := range rows {
		if row.Day >= 1 && row.Day <= len(days) {
			days[row.Day-1].Amount = roundMoney(row.Total)
		}
	}
	return days, nil
}

func (s *analyticsService) TotalExpenses(ctx context.Context, userID uuid.UUID) (float64, error) {
	total, err := s.repo.AllTimeTotal(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("all time total: %w", err)
	}
	return total.InexactFloat64(), nil
}
