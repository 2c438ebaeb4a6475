package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"expensetracker/internal/log"
	"expensetracker/internal/model"
	"expensetracker/internal/repository"
)

const recentExpensesLimit = 5

// Overview section names, also used as keys of Overview.Errors.
const (
	SectionSummary       = "summaryStats"
	SectionTopCategories = "topCategories"
	SectionDistribution  = "expenseDistribution"
	SectionMonthlyTrend  = "monthlyTrend"
	SectionRecent        = "recentExpenses"
	SectionBudget        = "budgetStatus"
)

// Overview is the combined dashboard payload.
type Overview struct {
	SummaryStats        *SummaryStats       `json:"summaryStats"`
	TopCategories       []TopCategory       `json:"topCategories"`
	ExpenseDistribution []DistributionEntry `json:"expenseDistribution"`
	MonthlyTrend        []TrendPoint        `json:"monthlyTrend"`
	RecentExpenses      []model.Expense     `json:"recentExpenses"`
	BudgetStatus        *BudgetStatus       `json:"budgetStatus"`
	// Errors maps a failed section to its message. Only set in partial mode.
	Errors map[string]string `json:"errors,omitempty"`
}

// OverviewService assembles the dashboard from the analytics and budget services.
type OverviewService interface {
	// Overview runs every section concurrently. Unless partial is set, the
	// first failing section fails the whole call.
	Overview(ctx context.Context, userID uuid.UUID, period Period, partial bool) (*Overview, error)
}

type overviewService struct {
	analytics AnalyticsService
	budgets   BudgetService
	expenses  repository.ExpenseRepository
}

// NewOverviewService creates a new overview service.
func NewOverviewService(analytics AnalyticsService, budgets BudgetService, expenses repository.ExpenseRepository) OverviewService {
	return &overviewService{analytics: analytics, budgets: budgets, expenses: expenses}
}

type section struct {
	name string
	run  func(ctx context.Context) error
}

func (s *overviewService) sections(userID uuid.UUID, period Period, out *Overview) []section {
	return []section{
		{SectionSummary, func(ctx context.Context) (err error) {
			out.SummaryStats, err = s.analytics.Summary(ctx, userID, period)
			return err
		}},
		{SectionTopCategories, func(ctx context.Context) (err error) {
			out.TopCategories, err = s.analytics.TopCategories(ctx, userID, period, DefaultTopCategoriesLimit)
			return err
		}},
		{SectionDistribution, func(ctx context.Context) (err error) {
			out.ExpenseDistribution, err = s.analytics.Distribution(ctx, userID, period)
			return err
		}},
		{SectionMonthlyTrend, func(ctx context.Context) (err error) {
			out.MonthlyTrend, err = s.analytics.MonthlyTrend(ctx, userID, DefaultTrendMonths)
			return err
		}},
		{SectionRecent, func(ctx context.Context) (err error) {
			out.RecentExpenses, err = s.expenses.Recent(ctx, userID, recentExpensesLimit)
			if err == nil && out.RecentExpenses == nil {
				out.RecentExpenses = []model.Expense{}
			}
			return err
		}},
		{SectionBudget, func(ctx context.Context) (err error) {
			out.BudgetStatus, err = s.budgets.Status(ctx, userID, period)
			return err
		}},
	}
}

func (s *overviewService) Overview(ctx context.Context, userID uuid.UUID, period Period, partial bool) (*Overview, error) {
	out := &Overview{}
	sections := s.sections(userID, period, out)

	if !partial {
		g, gctx := errgroup.WithContext(ctx)
		for _, sec := range sections {
			sec := sec
			g.Go(func() error {
				if err := sec.run(gctx); err != nil {
					return fmt.Errorf("%s: %w", sec.name, err)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return out, nil
	}

	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	logger := log.FromContext(ctx).WithComponent(log.ComponentAnalytics)
	for _, sec := range sections {
		sec := sec
		g.Go(func() error {
			if err := sec.run(ctx); err != nil {
				logger.Warn("overview section failed", log.FieldSection, sec.name, log.FieldError, err.Error())
				mu.Lock()
				if out.Errors == nil {
					out.Errors = make(map[string]string)
				}
				out.Errors[sec.name] = "failed to load " + sec.name
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}
