package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/model"
	"expensetracker/internal/repository"
)

func newTestAnalyticsService(repo *MockAnalyticsRepository, categories *MockCategoryRepository, now time.Time) *analyticsService {
	svc := NewAnalyticsService(repo, categories).(*analyticsService)
	svc.now = fixedClock(now)
	return svc
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAnalyticsService_Summary(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	w := ResolveWindow(PeriodMonth, now)

	tests := []struct {
		name        string
		current     repository.Totals
		previous    repository.Totals
		wantTotal   float64
		wantAverage float64
		wantChange  float64
	}{
		{"average and growth", repository.Totals{Total: dec("300"), Count: 4}, repository.Totals{Total: dec("200"), Count: 2}, 300, 75, 50},
		{"no previous spend", repository.Totals{Total: dec("500"), Count: 1}, repository.Totals{}, 500, 500, 0},
		{"no expenses", repository.Totals{}, repository.Totals{Total: dec("100"), Count: 1}, 0, 0, -100},
		{"rounding", repository.Totals{Total: dec("10"), Count: 3}, repository.Totals{Total: dec("3"), Count: 1}, 10, 3.33, 233.33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockAnalyticsRepository)
			repo.On("Totals", mock.Anything, userID, w.Range()).Return(tt.current, nil)
			repo.On("Totals", mock.Anything, userID, w.Previous()).Return(tt.previous, nil)

			stats, err := newTestAnalyticsService(repo, nil, now).Summary(context.Background(), userID, "")
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, stats.TotalExpenses)
			assert.Equal(t, tt.wantAverage, stats.AverageExpense)
			assert.Equal(t, tt.current.Count, stats.ExpenseCount)
			assert.Equal(t, tt.wantChange, stats.PercentageChange)
			assert.Equal(t, PeriodMonth, stats.Period)
		})
	}
}

func TestAnalyticsService_SummaryPropagatesStoreErrors(t *testing.T) {
	repo := new(MockAnalyticsRepository)
	repo.On("Totals", mock.Anything, mock.Anything, mock.Anything).Return(repository.Totals{}, assert.AnError)

	_, err := newTestAnalyticsService(repo, nil, time.Now()).Summary(context.Background(), uuid.New(), PeriodWeek)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestAnalyticsService_TopCategories(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	rows := []repository.CategoryTotal{
		{CategoryID: uuid.New(), CategoryName: "Rent", Total: dec("900"), ExpenseCount: 1},
		{CategoryID: uuid.New(), CategoryName: "Food", Total: dec("120.456"), ExpenseCount: 6},
		{CategoryID: uuid.New(), CategoryName: "Taxi", Total: dec("40"), ExpenseCount: 2},
	}

	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{"default limit", 0, DefaultTopCategoriesLimit},
		{"explicit limit", 2, 2},
		{"clamped", 1000, maxTopCategoriesLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockAnalyticsRepository)
			returned := rows
			if tt.wantLimit < len(rows) {
				returned = rows[:tt.wantLimit]
			}
			repo.On("CategoryTotals", mock.Anything, userID, ResolveWindow(PeriodMonth, now).Range(), tt.wantLimit).Return(returned, nil)

			top, err := newTestAnalyticsService(repo, nil, now).TopCategories(context.Background(), userID, PeriodMonth, tt.limit)
			require.NoError(t, err)
			assert.LessOrEqual(t, len(top), tt.wantLimit)
			for i := 1; i < len(top); i++ {
				assert.GreaterOrEqual(t, top[i-1].TotalAmount, top[i].TotalAmount)
			}
			assert.Equal(t, "Rent", top[0].CategoryName)
			if len(top) > 1 {
				assert.Equal(t, 120.46, top[1].TotalAmount)
				assert.EqualValues(t, 6, top[1].Count)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestAnalyticsService_DistributionZeroFills(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	food := model.Category{ID: uuid.New(), UserID: userID, Name: "Food"}
	others := model.Category{ID: uuid.New(), UserID: userID, Name: "Others"}
	books := model.Category{ID: uuid.New(), UserID: userID, Name: "Books"}

	categories := new(MockCategoryRepository)
	categories.On("ListByUser", mock.Anything, userID).Return([]model.Category{books, food, others}, nil)
	repo := new(MockAnalyticsRepository)
	repo.On("CategoryTotals", mock.Anything, userID, mock.Anything, 0).Return([]repository.CategoryTotal{
		{CategoryID: food.ID, CategoryName: "Food", Total: dec("42.5"), ExpenseCount: 2},
	}, nil)

	entries, err := newTestAnalyticsService(repo, categories, now).Distribution(context.Background(), userID, PeriodMonth)
	require.NoError(t, err)

	require.Len(t, entries, 3, "one entry per category of the user")
	assert.Equal(t, "Food", entries[0].CategoryName)
	assert.Equal(t, 42.5, entries[0].Amount)
	assert.Equal(t, "Books", entries[1].CategoryName)
	assert.Equal(t, 0.0, entries[1].Amount)
	assert.Equal(t, "Others", entries[2].CategoryName)
	assert.Equal(t, 0.0, entries[2].Amount)
}

func TestAnalyticsService_MonthlyTrendLabels(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	repo := new(MockAnalyticsRepository)
	repo.On("MonthlyTotals", mock.Anything, userID, repository.TimeRange{From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), To: now}).
		Return([]repository.MonthTotal{{Year: 2024, Month: 2, Total: dec("75.255"), ExpenseCount: 3}}, nil)

	points, err := newTestAnalyticsService(repo, nil, now).MonthlyTrend(context.Background(), userID, 3)
	require.NoError(t, err)

	labels := make([]string, len(points))
	for i, p := range points {
		labels[i] = p.Month
	}
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03"}, labels)
	assert.Equal(t, 0.0, points[0].Amount)
	assert.Equal(t, 75.26, points[1].Amount)
	assert.EqualValues(t, 3, points[1].Count)
	repo.AssertExpectations(t)
}

func TestAnalyticsService_MonthlyTrendAcrossYearAndDefaults(t *testing.T) {
	now := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	repo := new(MockAnalyticsRepository)
	repo.On("MonthlyTotals", mock.Anything, mock.Anything, mock.Anything).Return([]repository.MonthTotal{}, nil)

	points, err := newTestAnalyticsService(repo, nil, now).MonthlyTrend(context.Background(), uuid.New(), 0)
	require.NoError(t, err)
	require.Len(t, points, DefaultTrendMonths)
	assert.Equal(t, "2023-09", points[0].Month)
	assert.Equal(t, "2023-10", points[1].Month)
	assert.Equal(t, "2024-02", points[5].Month)
}

func TestAnalyticsService_DailyExpenses(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2024, 4, 20, 9, 0, 0, 0, time.UTC)

	repo := new(MockAnalyticsRepository)
	repo.On("DailyTotals", mock.Anything, userID, repository.TimeRange{From: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), To: now}).
		Return([]repository.DayTotal{{Day: 5, Total: dec("50")}}, nil)

	days, err := newTestAnalyticsService(repo, nil, now).DailyExpenses(context.Background(), userID)
	require.NoError(t, err)

	require.Len(t, days, 30)
	for i, d := range days {
		assert.Equal(t, i+1, d.Day)
		if d.Day == 5 {
			assert.Equal(t, 50.0, d.Amount)
		} else {
			assert.Equal(t, 0.0, d.Amount)
		}
	}
}

func TestAnalyticsService_TotalExpensesIsRaw(t *testing.T) {
	userID := uuid.New()
	repo := new(MockAnalyticsRepository)
	repo.On("AllTimeTotal", mock.Anything, userID).Return(dec("10.125"), nil)

	total, err := newTestAnalyticsService(repo, nil, time.Now()).TotalExpenses(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 10.125, total)
}
