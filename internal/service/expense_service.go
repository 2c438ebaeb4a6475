package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/events"
	"expensetracker/internal/log"
	"expensetracker/internal/model"
	"expensetracker/internal/repository"
)

const (
	defaultExpensePageSize = 20
	maxExpensePageSize     = 100
)

// CreateExpenseInput carries the fields accepted when recording an expense.
type CreateExpenseInput struct {
	Title      string
	Amount     decimal.Decimal
	Note       string
	CategoryID uuid.UUID
	// CreatedAt is optional; the current time is used when zero.
	CreatedAt time.Time
}

// UpdateExpenseInput carries the mutable fields of an expense.
type UpdateExpenseInput struct {
	Title  string
	Amount decimal.Decimal
	Note   string
}

// ExpenseListQuery filters and pages an expense listing.
type ExpenseListQuery struct {
	CategoryID *uuid.UUID
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// ExpensePage is one page of a listing together with the unpaged count.
type ExpensePage struct {
	Items  []model.Expense `json:"items"`
	Total  int64           `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// ExpenseService handles expense operations.
type ExpenseService interface {
	Create(ctx context.Context, userID uuid.UUID, in CreateExpenseInput) (*model.Expense, error)
	Update(ctx context.Context, userID, id uuid.UUID, in UpdateExpenseInput) (*model.Expense, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Get(ctx context.Context, userID, id uuid.UUID) (*model.Expense, error)
	List(ctx context.Context, userID uuid.UUID, q ExpenseListQuery) (*ExpensePage, error)
}

type expenseService struct {
	expenses   repository.ExpenseRepository
	categories repository.CategoryRepository
	publisher  events.Publisher
	now        func() time.Time
}

// NewExpenseService creates a new expense service. A nil publisher drops events.
func NewExpenseService(expenses repository.ExpenseRepository, categories repository.CategoryRepository, publisher events.Publisher) ExpenseService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &expenseService{
		expenses:   expenses,
		categories: categories,
		publisher:  publisher,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *expenseService) Create(ctx context.Context, userID uuid.UUID, in CreateExpenseInput) (*model.Expense, error) {
	title, err := normalizeExpenseTitle(in.Title)
	if err != nil {
		return nil, err
	}
	if in.Amount.IsNegative() {
		return nil, apperrors.ErrInvalidAmount
	}

	if _, err := s.categories.FindByID(ctx, userID, in.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("find category: %w", err)
	}

	createdAt := in.CreatedAt.UTC()
	if in.CreatedAt.IsZero() {
		createdAt = s.now()
	}

	expense := &model.Expense{
		Title:      title,
		Amount:     in.Amount.Round(2),
		Note:       in.Note,
		CategoryID: in.CategoryID,
		UserID:     userID,
		CreatedAt:  createdAt,
	}
	if err := s.expenses.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}

	s.publish(ctx, events.ExpenseCreated, expense)
	return expense, nil
}

// Update changes title, amount and note. Category, owner and creation time stay as created.
func (s *expenseService) Update(ctx context.Context, userID, id uuid.UUID, in UpdateExpenseInput) (*model.Expense, error) {
	title, err := normalizeExpenseTitle(in.Title)
	if err != nil {
		return nil, err
	}
	if in.Amount.IsNegative() {
		return nil, apperrors.ErrInvalidAmount
	}

	expense, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	expense.Title = title
	expense.Amount = in.Amount.Round(2)
	expense.Note = in.Note
	if err := s.expenses.Update(ctx, expense); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, fmt.Errorf("update expense: %w", err)
	}

	s.publish(ctx, events.ExpenseUpdated, expense)
	return expense, nil
}

func (s *expenseService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	expense, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.expenses.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrExpenseNotFound
		}
		return fmt.Errorf("delete expense: %w", err)
	}

	s.publish(ctx, events.ExpenseDeleted, expense)
	return nil
}

func (s *expenseService) Get(ctx context.Context, userID, id uuid.UUID) (*model.Expense, error) {
	expense, err := s.expenses.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, fmt.Errorf("find expense: %w", err)
	}
	return expense, nil
}

func (s *expenseService) List(ctx context.Context, userID uuid.UUID, q ExpenseListQuery) (*ExpensePage, error) {
	limit := q.Limit
	switch {
	case limit <= 0:
		limit = defaultExpensePageSize
	case limit > maxExpensePageSize:
		limit = maxExpensePageSize
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	items, total, err := s.expenses.List(ctx, repository.ExpenseFilter{
		UserID:     userID,
		CategoryID: q.CategoryID,
		From:       q.From,
		To:         q.To,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	if items == nil {
		items = []model.Expense{}
	}
	return &ExpensePage{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

// publish never fails the calling operation; a lost event is only logged.
func (s *expenseService) publish(ctx context.Context, t events.Type, e *model.Expense) {
	event := events.NewEvent(t, e.ID, e.UserID, e.CategoryID, e.Amount)
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.FromContext(ctx).WithComponent(log.ComponentEvents).Warn("failed to publish expense event",
			log.FieldOperation, string(t),
			log.FieldExpenseID, e.ID.String(),
			log.FieldError, err.Error(),
		)
	}
}

func normalizeExpenseTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperrors.ErrInvalidTitle
	}
	return title, nil
}
