package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Expense is a single spending record owned by one user and filed under one category.
type Expense struct {
	ID         uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	Title      string          `json:"title" gorm:"size:255;not null"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null"`
	Note       string          `json:"note,omitempty" gorm:"type:text"`
	CategoryID uuid.UUID       `json:"categoryId" gorm:"type:char(36);not null;index"`
	UserID     uuid.UUID       `json:"userId" gorm:"type:char(36);not null;index:idx_expenses_user_created"`
	CreatedAt  time.Time       `json:"createdAt" gorm:"not null;index:idx_expenses_user_created"`
	UpdatedAt  time.Time       `json:"updatedAt"`

	// Relations. No foreign key is migrated: deleting a category leaves
	// its expenses in place.
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

// BeforeCreate sets UUID and the creation time before creating the record.
func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	return nil
}
