package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"expensetracker/internal/config"
	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/handler"
	"expensetracker/internal/log"
	"expensetracker/internal/service"
)

// Handlers groups every HTTP handler the API exposes.
type Handlers struct {
	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	Category  *handler.CategoryHandler
	Expense   *handler.ExpenseHandler
	Analytics *handler.AnalyticsHandler
	Budget    *handler.BudgetHandler
	Overview  *handler.OverviewHandler
	Seed      *handler.SeedHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, logger *log.Logger, authService service.AuthService, h Handlers) {
	e.HTTPErrorHandler = handler.HTTPErrorHandler
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(middleware.RequestID())
	e.Use(log.RequestLogger(logger))
	e.Use(middleware.Recover())
	if cfg.RequestTimeout > 0 {
		e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{Timeout: cfg.RequestTimeout}))
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes, rate limited per client IP
	authGroup := api.Group("/auth", middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimitAuth)),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return apperrors.NewHTTPError(http.StatusForbidden, "unable to identify client", "FORBIDDEN")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return apperrors.NewHTTPError(http.StatusTooManyRequests, "too many requests", "RATE_LIMITED")
		},
	}))
	authGroup.POST("/register", h.Auth.Register)
	authGroup.POST("/login", h.Auth.Login)
	authGroup.POST("/refresh", h.Auth.Refresh)
	authGroup.POST("/logout", h.Auth.Logout)

	// Secured routes (require JWT authentication)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return authService.Authenticate(c.Request().Context(), token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return apperrors.NewHTTPError(http.StatusUnauthorized, "invalid or expired token", "UNAUTHORIZED")
		},
	}))

	secured.GET("/me", h.User.Me)

	// Category routes
	secured.GET("/categories", h.Category.List)
	secured.POST("/categories", h.Category.Create)
	secured.PUT("/categories/:id", h.Category.Rename)
	secured.DELETE("/categories/:id", h.Category.Delete)

	// Expense routes
	secured.GET("/expenses", h.Expense.List)
	secured.POST("/expenses", h.Expense.Create)
	secured.GET("/expenses/total", h.Expense.Total)
	secured.GET("/expenses/daily", h.Expense.Daily)
	secured.GET("/expenses/:id", h.Expense.Get)
	secured.PUT("/expenses/:id", h.Expense.Update)
	secured.DELETE("/expenses/:id", h.Expense.Delete)

	// Analytics routes
	secured.GET("/analytics/summary", h.Analytics.Summary)
	secured.GET("/analytics/top-categories", h.Analytics.TopCategories)
	secured.GET("/analytics/expense-distribution", h.Analytics.Distribution)
	secured.GET("/analytics/monthly-trend", h.Analytics.MonthlyTrend)

	// Budget routes
	secured.GET("/budget", h.Budget.Get)
	secured.PUT("/budget", h.Budget.Update)
	secured.GET("/budget/status", h.Budget.Status)

	secured.GET("/overview", h.Overview.Get)

	if h.Seed != nil {
		secured.POST("/seed/expenses", h.Seed.SeedExpenses)
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
