package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "Income"
	Expense TransactionType = "Expense"
)

type (
	TransactionType string

	User struct {
		ID        int64
		Username  string
		CreatedAt time.Time
	}

	Transaction struct {
		ID          int64
		UserID      int64
		Description string
		Amount      decimal.Decimal
		Type        TransactionType
		GoalID      *int64 // optional link to a savings goal
		Date        time.Time
	}

	SavingsGoal struct {
		ID            int64
		UserID        int64
		Title         string
		TargetAmount  decimal.Decimal
		CurrentAmount decimal.Decimal
		Description   string
		Deadline      *time.Time
		CreatedAt     time.Time
	}
)

var (
	ErrEmptyUsername    = errors.New("empty username")
	ErrEmptyPassword    = errors.New("empty password")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyTitle       = errors.New("empty title")
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrInvalidType      = errors.New("invalid transaction type")
)

// IsValid returns true if the type is one of the two literal values.
func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

func (t TransactionType) String() string {
	return string(t)
}

func (tx Transaction) Validate() error {
	if len(strings.TrimSpace(tx.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(tx.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if !tx.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !tx.Type.IsValid() {
		return ErrInvalidType
	}
	return nil
}

func (g SavingsGoal) Validate() error {
	if len(strings.TrimSpace(g.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(g.Title) > 100 {
		return errors.New("title too long (max 100 characters)")
	}
	if !g.TargetAmount.IsPositive() {
		return ErrInvalidAmount
	}
	if g.CurrentAmount.IsNegative() {
		return errors.New("current amount cannot be negative")
	}
	return nil
}
