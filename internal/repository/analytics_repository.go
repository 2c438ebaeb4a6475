package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"expensetracker/internal/model"
)

// TimeRange bounds an aggregation by created_at. From is always inclusive;
// To is inclusive unless OpenEnd is set.
type TimeRange struct {
	From    time.Time
	To      time.Time
	OpenEnd bool
}

// Totals is the sum and number of expenses in a range.
type Totals struct {
	Total decimal.Decimal
	Count int64
}

// CategoryTotal is the spend of one category in a range.
type CategoryTotal struct {
	CategoryID   uuid.UUID
	CategoryName string
	Total        decimal.Decimal
	ExpenseCount int64
}

// MonthTotal is the spend of one calendar month.
type MonthTotal struct {
	Year         int
	Month        int
	Total        decimal.Decimal
	ExpenseCount int64
}

// DayTotal is the spend of one day of a month.
type DayTotal struct {
	Day   int
	Total decimal.Decimal
}

// AnalyticsRepository runs the aggregate queries behind the analytics
// endpoints. Every query is scoped to one user first.
type AnalyticsRepository interface {
	Totals(ctx context.Context, userID uuid.UUID, r TimeRange) (Totals, error)
	// CategoryTotals groups by category ordered by total descending. limit <= 0 returns all groups.
	CategoryTotals(ctx context.Context, userID uuid.UUID, r TimeRange, limit int) ([]CategoryTotal, error)
	MonthlyTotals(ctx context.Context, userID uuid.UUID, r TimeRange) ([]MonthTotal, error)
	DailyTotals(ctx context.Context, userID uuid.UUID, r TimeRange) ([]DayTotal, error)
	AllTimeTotal(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new analytics repository.
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

// expenses starts a query over the user's expenses inside r.
func (r *analyticsRepository) expenses(ctx context.Context, userID uuid.UUID, tr TimeRange) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Expense{}).
		Where("expenses.user_id = ?", userID).
		Where("expenses.created_at >= ?", tr.From)
	if tr.OpenEnd {
		return q.Where("expenses.created_at < ?", tr.To)
	}
	return q.Where("expenses.created_at <= ?", tr.To)
}

func (r *analyticsRepository) Totals(ctx context.Context, userID uuid.UUID, tr TimeRange) (Totals, error) {
	var out Totals
	err := r.expenses(ctx, userID, tr).
		Select("COALESCE(SUM(expenses.amount), 0) AS total, COUNT(*) AS count").
		Scan(&out).Error
	return out, err
}

func (r *analyticsRepository) CategoryTotals(ctx context.Context, userID uuid.UUID, tr TimeRange, limit int) ([]CategoryTotal, error) {
	q := r.expenses(ctx, userID, tr).
		Select("expenses.category_id AS category_id, categories.name AS category_name, " +
			"SUM(expenses.amount) AS total, COUNT(*) AS expense_count").
		Joins("JOIN categories ON categories.id = expenses.category_id AND categories.user_id = expenses.user_id").
		Group("expenses.category_id, categories.name").
		Order("total DESC").
		Order("categories.name ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var out []CategoryTotal
	if err := q.Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *analyticsRepository) MonthlyTotals(ctx context.Context, userID uuid.UUID, tr TimeRange) ([]MonthTotal, error) {
	year, month := datePart(r.db, "year"), datePart(r.db, "month")

	var out []MonthTotal
	err := r.expenses(ctx, userID, tr).
		Select(year + " AS year, " + month + " AS month, SUM(expenses.amount) AS total, COUNT(*) AS expense_count").
		Group(year + ", " + month).
		Order("year ASC").
		Order("month ASC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *analyticsRepository) DailyTotals(ctx context.Context, userID uuid.UUID, tr TimeRange) ([]DayTotal, error) {
	day := datePart(r.db, "day")

	var out []DayTotal
	err := r.expenses(ctx, userID, tr).
		Select(day + " AS day, SUM(expenses.amount) AS total").
		Group(day).
		Order("day ASC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *analyticsRepository) AllTimeTotal(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var out struct{ Total decimal.Decimal }
	err := r.db.WithContext(ctx).Model(&model.Expense{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0) AS total").
		Scan(&out).Error
	return out.Total, err
}

// datePart returns the dialect's integer expression for a part of expenses.created_at.
func datePart(db *gorm.DB, part string) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "CAST(EXTRACT(" + part + " FROM expenses.created_at) AS INTEGER)"
	case "sqlite":
		format := map[string]string{"year": "%Y", "month": "%m", "day": "%d"}[part]
		return "CAST(strftime('" + format + "', expenses.created_at) AS INTEGER)"
	default:
		return part + "(expenses.created_at)"
	}
}
