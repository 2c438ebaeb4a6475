package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"expensetracker/internal/model"
)

// BudgetRepository defines budget persistence operations.
type BudgetRepository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) (*model.Budget, error)
	Upsert(ctx context.Context, budget *model.Budget) (*model.Budget, error)
}

type budgetRepository struct {
	db *gorm.DB
}

// NewBudgetRepository creates a new budget repository.
func NewBudgetRepository(db *gorm.DB) BudgetRepository {
	return &budgetRepository{db: db}
}

func (r *budgetRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*model.Budget, error) {
	var budget model.Budget
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&budget).Error; err != nil {
		return nil, err
	}
	return &budget, nil
}

// Upsert inserts the user's budget or overwrites amount and period of the
// existing row, then returns the stored row.
func (r *budgetRepository) Upsert(ctx context.Context, budget *model.Budget) (*model.Budget, error) {
	budget.UpdatedAt = time.Now().UTC()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "period", "updated_at"}),
	}).Create(budget).Error
	if err != nil {
		return nil, err
	}
	return r.FindByUser(ctx, budget.UserID)
}
