package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/auth"
	"expensetracker/internal/config"
	"expensetracker/internal/db"
	"expensetracker/internal/events"
	"expensetracker/internal/handler"
	"expensetracker/internal/log"
	"expensetracker/internal/model"
	"expensetracker/internal/repository"
	"expensetracker/internal/router"
	"expensetracker/internal/service"
)

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()

	gdb, err := db.Open("sqlite", ":memory:", nil)
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(gdb))

	userRepo := repository.NewUserRepository(gdb)
	categoryRepo := repository.NewCategoryRepository(gdb)
	expenseRepo := repository.NewExpenseRepository(gdb)
	analyticsRepo := repository.NewAnalyticsRepository(gdb)

	authService := service.NewAuthService(userRepo, auth.NewJWTService("client-test"), auth.NewTokenStore(nil))
	userService := service.NewUserService(userRepo, nil)
	categoryService := service.NewCategoryService(categoryRepo)
	expenseService := service.NewExpenseService(expenseRepo, categoryRepo, events.NopPublisher{})
	analyticsService := service.NewAnalyticsService(analyticsRepo, categoryRepo)
	budgetService := service.NewBudgetService(repository.NewBudgetRepository(gdb), analyticsRepo, userService)

	e := echo.New()
	router.Register(e, &config.Config{RateLimitAuth: 100}, log.New(log.Config{Output: io.Discard}), authService, router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		User:      handler.NewUserHandler(userService, budgetService),
		Category:  handler.NewCategoryHandler(categoryService),
		Expense:   handler.NewExpenseHandler(expenseService, analyticsService),
		Analytics: handler.NewAnalyticsHandler(analyticsService),
		Budget:    handler.NewBudgetHandler(budgetService),
		Overview:  handler.NewOverviewHandler(service.NewOverviewService(analyticsService, budgetService, expenseRepo)),
	})

	srv := httptest.NewServer(e)
	t.Cleanup(func() {
		srv.Close()
		sqlDB.Close()
	})
	return srv
}

func TestClient_Workflow(t *testing.T) {
	srv := newAPIServer(t)
	ctx := context.Background()
	c := New(srv.URL + "/api")

	_, err := c.Register(ctx, "grace@example.com", "hopper123", "Grace")
	require.NoError(t, err)

	user, err := c.Login(ctx, "grace@example.com", "hopper123")
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", user.Email)
	assert.NotEmpty(t, c.Token())

	categories, err := c.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, model.DefaultCategoryName, categories[0].Name)

	travel, err := c.CreateCategory(ctx, "Travel")
	require.NoError(t, err)

	_, err = c.CreateCategory(ctx, "Travel")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "CATEGORY_EXISTS", apiErr.Code)

	_, err = c.CreateExpense(ctx, NewExpense{Title: "Train", Amount: decimal.NewFromInt(40), CategoryID: travel.ID})
	require.NoError(t, err)
	_, err = c.CreateExpense(ctx, NewExpense{Title: "Coffee", Amount: decimal.RequireFromString("2.50"), CategoryID: categories[0].ID})
	require.NoError(t, err)

	page, err := c.ListExpenses(ctx, 1, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	assert.Len(t, page.Items, 1)

	_, err = c.UpdateBudget(ctx, decimal.NewFromInt(50), model.BudgetPeriodMonthly)
	require.NoError(t, err)

	status, err := c.BudgetStatus(ctx, service.PeriodMonth)
	require.NoError(t, err)
	assert.Equal(t, 42.5, status.Spent)
	assert.Equal(t, 7.5, status.Remaining)
	assert.False(t, status.IsOverBudget)

	overview, err := c.Overview(ctx, service.PeriodMonth, true)
	require.NoError(t, err)
	assert.Empty(t, overview.Errors)
	assert.Equal(t, 42.5, overview.SummaryStats.TotalExpenses)
	require.NotEmpty(t, overview.TopCategories)
	assert.Equal(t, "Travel", overview.TopCategories[0].CategoryName)
	assert.Len(t, overview.MonthlyTrend, service.DefaultTrendMonths)

	require.NoError(t, c.Logout(ctx))
	assert.Empty(t, c.Token())
}

func TestClient_OnUnauthorized(t *testing.T) {
	srv := newAPIServer(t)

	var calls int32
	var seenPath string
	c := New(srv.URL+"/api", WithToken("stale"), WithOnUnauthorized(func(req *http.Request) {
		atomic.AddInt32(&calls, 1)
		seenPath = req.URL.Path
	}))

	_, err := c.ListCategories(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	assert.Equal(t, "/api/categories", seenPath)
}

func TestClient_RefreshWithoutToken(t *testing.T) {
	c := New("http://127.0.0.1:0/api")
	err := c.Refresh(context.Background())
	assert.True(t, IsUnauthorized(err))
}

func TestClient_NonEnvelopeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, WithHTTPClient(&http.Client{Timeout: time.Second}))
	_, err := c.ListCategories(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream down", apiErr.Message)
}
