package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"expensetracker/internal/db"
	"expensetracker/internal/model"
)

// RepositorySuite runs the GORM repositories against an in-memory SQLite database.
type RepositorySuite struct {
	suite.Suite
	db  *gorm.DB
	ctx context.Context

	user      *model.User
	food      *model.Category
	transport *model.Category
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupTest() {
	gdb, err := db.Open("sqlite", ":memory:", nil)
	require.NoError(s.T(), err, "failed to open test database")
	sqlDB, err := gdb.DB()
	require.NoError(s.T(), err)
	// every pooled connection to :memory: would get its own empty database
	sqlDB.SetMaxOpenConns(1)
	require.NoError(s.T(), db.Migrate(gdb))

	s.db = gdb
	s.ctx = context.Background()

	s.user = &model.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "x"}
	s.food = &model.Category{Name: "Food"}
	require.NoError(s.T(), NewUserRepository(gdb).CreateWithCategory(s.ctx, s.user, s.food))
	s.transport = &model.Category{UserID: s.user.ID, Name: "Transport"}
	require.NoError(s.T(), NewCategoryRepository(gdb).Create(s.ctx, s.transport))
}

func (s *RepositorySuite) TearDownTest() {
	if sqlDB, err := s.db.DB(); err == nil {
		sqlDB.Close()
	}
}

func (s *RepositorySuite) addExpense(category *model.Category, amount string, at time.Time) *model.Expense {
	e := &model.Expense{
		Title:      "expense",
		Amount:     decimal.RequireFromString(amount),
		CategoryID: category.ID,
		UserID:     s.user.ID,
		CreatedAt:  at,
	}
	require.NoError(s.T(), NewExpenseRepository(s.db).Create(s.ctx, e))
	return e
}

func (s *RepositorySuite) TestUserCreatedWithCategory() {
	repo := NewUserRepository(s.db)

	found, err := repo.FindByEmail(s.ctx, "ada@example.com")
	s.Require().NoError(err)
	s.Equal(s.user.ID, found.ID)
	s.Equal(s.user.ID, s.food.UserID)

	_, err = repo.FindByID(s.ctx, uuid.New())
	s.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (s *RepositorySuite) TestCategoryNameUniquePerUser() {
	repo := NewCategoryRepository(s.db)

	err := repo.Create(s.ctx, &model.Category{UserID: s.user.ID, Name: "Food"})
	s.Error(err, "duplicate (user, name) must be rejected by the unique index")

	other := uuid.New()
	s.NoError(repo.Create(s.ctx, &model.Category{UserID: other, Name: "Food"}))

	list, err := repo.ListByUser(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Len(list, 2)
	s.Equal("Food", list[0].Name)
	s.Equal("Transport", list[1].Name)
}

func (s *RepositorySuite) TestCategoryDeleteScopedToOwner() {
	repo := NewCategoryRepository(s.db)

	s.ErrorIs(repo.Delete(s.ctx, uuid.New(), s.food.ID), gorm.ErrRecordNotFound)
	s.NoError(repo.Delete(s.ctx, s.user.ID, s.food.ID))
	_, err := repo.FindByID(s.ctx, s.user.ID, s.food.ID)
	s.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (s *RepositorySuite) TestExpenseUpdateKeepsCategoryAndOwner() {
	repo := NewExpenseRepository(s.db)
	e := s.addExpense(s.food, "12.50", time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC))

	e.Title = "Dinner"
	e.Amount = decimal.RequireFromString("20")
	e.CategoryID = s.transport.ID
	s.Require().NoError(repo.Update(s.ctx, e))

	got, err := repo.FindByID(s.ctx, s.user.ID, e.ID)
	s.Require().NoError(err)
	s.Equal("Dinner", got.Title)
	s.True(decimal.RequireFromString("20").Equal(got.Amount))
	s.Equal(s.food.ID, got.CategoryID)
	s.Require().NotNil(got.Category)
	s.Equal("Food", got.Category.Name)

	e.UserID = uuid.New()
	s.ErrorIs(repo.Update(s.ctx, e), gorm.ErrRecordNotFound)
}

func (s *RepositorySuite) TestExpenseListFiltersAndPaginates() {
	repo := NewExpenseRepository(s.db)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		s.addExpense(s.food, "1", base.Add(time.Duration(i)*time.Hour))
	}
	s.addExpense(s.transport, "2", base)

	page, total, err := repo.List(s.ctx, ExpenseFilter{UserID: s.user.ID, CategoryID: &s.food.ID, Limit: 2, Offset: 1})
	s.Require().NoError(err)
	s.EqualValues(5, total)
	s.Require().Len(page, 2)
	s.True(page[0].CreatedAt.After(page[1].CreatedAt))

	recent, err := repo.Recent(s.ctx, s.user.ID, 3)
	s.Require().NoError(err)
	s.Len(recent, 3)
}

func (s *RepositorySuite) TestAnalyticsTotalsAndCategoryTotals() {
	repo := NewAnalyticsRepository(s.db)
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	s.addExpense(s.food, "100", start)
	s.addExpense(s.food, "25.5", time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC))
	s.addExpense(s.transport, "50", time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC))
	s.addExpense(s.transport, "999", time.Date(2024, 2, 28, 8, 0, 0, 0, time.UTC))

	totals, err := repo.Totals(s.ctx, s.user.ID, TimeRange{From: start, To: now})
	s.Require().NoError(err)
	s.EqualValues(3, totals.Count)
	s.Equal("175.5", totals.Total.Round(2).String())

	prev, err := repo.Totals(s.ctx, s.user.ID, TimeRange{From: start.AddDate(0, -1, 0), To: start, OpenEnd: true})
	s.Require().NoError(err)
	s.EqualValues(1, prev.Count, "the open end excludes the expense created exactly at start")

	cats, err := repo.CategoryTotals(s.ctx, s.user.ID, TimeRange{From: start, To: now}, 1)
	s.Require().NoError(err)
	s.Require().Len(cats, 1)
	s.Equal("Food", cats[0].CategoryName)
	s.Equal(s.food.ID, cats[0].CategoryID)
	s.EqualValues(2, cats[0].ExpenseCount)

	all, err := repo.AllTimeTotal(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Equal("1174.5", all.Round(2).String())

	empty, err := repo.AllTimeTotal(s.ctx, uuid.New())
	s.Require().NoError(err)
	s.True(empty.IsZero())
}

func (s *RepositorySuite) TestAnalyticsMonthlyAndDailyTotals() {
	repo := NewAnalyticsRepository(s.db)
	s.addExpense(s.food, "10", time.Date(2024, 1, 20, 8, 0, 0, 0, time.UTC))
	s.addExpense(s.food, "5", time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC))
	s.addExpense(s.transport, "7", time.Date(2024, 3, 5, 18, 0, 0, 0, time.UTC))

	r := TimeRange{From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), To: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)}
	months, err := repo.MonthlyTotals(s.ctx, s.user.ID, r)
	s.Require().NoError(err)
	s.Require().Len(months, 2)
	assert.Equal(s.T(), []int{2024, 1}, []int{months[0].Year, months[0].Month})
	assert.Equal(s.T(), []int{2024, 3}, []int{months[1].Year, months[1].Month})
	s.EqualValues(2, months[1].ExpenseCount)

	days, err := repo.DailyTotals(s.ctx, s.user.ID, TimeRange{From: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), To: r.To})
	s.Require().NoError(err)
	s.Require().Len(days, 1)
	s.Equal(5, days[0].Day)
	s.Equal("12", days[0].Total.Round(2).String())
}

func (s *RepositorySuite) TestBudgetUpsert() {
	repo := NewBudgetRepository(s.db)

	_, err := repo.FindByUser(s.ctx, s.user.ID)
	s.ErrorIs(err, gorm.ErrRecordNotFound)

	first, err := repo.Upsert(s.ctx, &model.Budget{UserID: s.user.ID, Amount: decimal.NewFromInt(500)})
	s.Require().NoError(err)
	s.Equal(model.BudgetPeriodMonthly, first.Period)

	second, err := repo.Upsert(s.ctx, &model.Budget{UserID: s.user.ID, Amount: decimal.NewFromInt(80), Period: model.BudgetPeriodWeekly})
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID, "the row is updated in place")
	s.True(decimal.NewFromInt(80).Equal(second.Amount))
	s.Equal(model.BudgetPeriodWeekly, second.Period)
}
