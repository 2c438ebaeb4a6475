package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/model"
	"expensetracker/internal/repository"
)

// BudgetSettings is the budget as exposed to clients.
type BudgetSettings struct {
	MonthlyBudget float64            `json:"monthlyBudget"`
	BudgetPeriod  model.BudgetPeriod `json:"budgetPeriod"`
}

// BudgetStatus compares a budget with the spend of one window.
type BudgetStatus struct {
	Budget         float64 `json:"budget"`
	Spent          float64 `json:"spent"`
	Remaining      float64 `json:"remaining"`
	PercentageUsed float64 `json:"percentageUsed"`
	Period         Period  `json:"period"`
	IsOverBudget   bool    `json:"isOverBudget"`
}

// EvaluateBudget is the pure budget computation: remaining may go negative and
// the percentage is 0 whenever the budget is not positive.
func EvaluateBudget(budget, spent decimal.Decimal, period Period) BudgetStatus {
	remaining := budget.Sub(spent)
	return BudgetStatus{
		Budget:         roundMoney(budget),
		Spent:          roundMoney(spent),
		Remaining:      roundMoney(remaining),
		PercentageUsed: percentOf(spent, budget),
		Period:         period,
		IsOverBudget:   remaining.IsNegative(),
	}
}

// BudgetService manages the per-user budget and evaluates it against spend.
type BudgetService interface {
	GetSettings(ctx context.Context, userID uuid.UUID) (*BudgetSettings, error)
	UpdateSettings(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, period model.BudgetPeriod) (*BudgetSettings, error)
	// Status evaluates the budget over the stored period's window, or over
	// requested when the user never stored a period.
	Status(ctx context.Context, userID uuid.UUID, requested Period) (*BudgetStatus, error)
}

type budgetService struct {
	budgets   repository.BudgetRepository
	analytics repository.AnalyticsRepository
	users     UserService
	now       func() time.Time
}

// NewBudgetService creates a new budget service.
func NewBudgetService(budgets repository.BudgetRepository, analytics repository.AnalyticsRepository, users UserService) BudgetService {
	return &budgetService{
		budgets:   budgets,
		analytics: analytics,
		users:     users,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// storedBudget is the budget a user has configured. Period is nil when
// nothing was ever stored.
type storedBudget struct {
	amount decimal.Decimal
	period *model.BudgetPeriod
}

// load reads the Budget row and falls back to the deprecated user fields.
func (s *budgetService) load(ctx context.Context, userID uuid.UUID) (storedBudget, error) {
	budget, err := s.budgets.FindByUser(ctx, userID)
	if err == nil {
		period := budget.Period
		return storedBudget{amount: budget.Amount, period: &period}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return storedBudget{}, fmt.Errorf("find budget: %w", err)
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return storedBudget{}, err
	}
	stored := storedBudget{amount: decimal.Zero}
	if user.MonthlyBudget != nil {
		stored.amount = *user.MonthlyBudget
	}
	if user.BudgetPeriod != nil && user.BudgetPeriod.Valid() {
		stored.period = user.BudgetPeriod
	}
	return stored, nil
}

func (s *budgetService) GetSettings(ctx context.Context, userID uuid.UUID) (*BudgetSettings, error) {
	stored, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	period := model.BudgetPeriodMonthly
	if stored.period != nil {
		period = *stored.period
	}
	return &BudgetSettings{MonthlyBudget: roundMoney(stored.amount), BudgetPeriod: period}, nil
}

func (s *budgetService) UpdateSettings(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, period model.BudgetPeriod) (*BudgetSettings, error) {
	if amount.IsNegative() {
		return nil, apperrors.ErrInvalidBudget
	}
	if period == "" {
		period = model.BudgetPeriodMonthly
	}
	if !period.Valid() {
		return nil, apperrors.ErrInvalidBudgetPeriod
	}

	budget, err := s.budgets.Upsert(ctx, &model.Budget{
		UserID: userID,
		Amount: amount.Round(2),
		Period: period,
	})
	if err != nil {
		return nil, fmt.Errorf("save budget: %w", err)
	}
	s.users.Invalidate(ctx, userID)

	return &BudgetSettings{MonthlyBudget: roundMoney(budget.Amount), BudgetPeriod: budget.Period}, nil
}

func (s *budgetService) Status(ctx context.Context, userID uuid.UUID, requested Period) (*BudgetStatus, error) {
	stored, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	period := requested
	if stored.period != nil {
		period = PeriodForBudget(*stored.period)
	}
	window := ResolveWindow(period, s.now())

	totals, err := s.analytics.Totals(ctx, userID, window.Range())
	if err != nil {
		return nil, fmt.Errorf("budget spend: %w", err)
	}

	status := EvaluateBudget(stored.amount, totals.Total, window.Period)
	return &status, nil
}
