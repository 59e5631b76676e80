// Package store defines the single storage contract every backend
// implements. The backend factory constructs exactly one implementation
// at process start.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"finbit/internal/core"
)

var (
	// ErrNotFound is returned when a lookup matches no record. Failed
	// logins also surface as ErrNotFound: callers cannot distinguish an
	// unknown username from a wrong password.
	ErrNotFound = errors.New("not found")

	// ErrUsernameTaken is returned when creating a user whose username
	// already exists. It wraps the engine's unique-constraint error.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrNotAuthenticated is returned for mutating calls made without an
	// active session.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// AddTransactionParams carries the caller-supplied fields of a new
// transaction. The date is stamped by the store at creation time.
type AddTransactionParams struct {
	UserID      int64
	Description string
	Amount      decimal.Decimal
	Type        core.TransactionType
	GoalID      *int64
}

// AddGoalParams carries the caller-supplied fields of a new savings goal.
// The current amount always starts at zero.
type AddGoalParams struct {
	UserID       int64
	Title        string
	TargetAmount decimal.Decimal
	Description  string
	Deadline     *time.Time
}

// Store is the capability set shared by all backends. Exactly one concrete
// implementation is constructed at startup via the factory.
type Store interface {
	// CreateUser registers a new user with a hashed credential. Fails
	// with ErrUsernameTaken if the username exists.
	CreateUser(ctx context.Context, username, password string) (core.User, error)

	// AuthenticateUser verifies the claimed credential and returns the
	// user record, or ErrNotFound on any mismatch.
	AuthenticateUser(ctx context.Context, username, password string) (core.User, error)

	// AddTransaction stamps the current time and stores the transaction.
	AddTransaction(ctx context.Context, p AddTransactionParams) (core.Transaction, error)

	// ListTransactions returns every transaction owned by the user.
	// The sqlite and memory backends return them unsorted; the postgres
	// backend orders by date descending. Callers needing an order sort.
	ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error)

	// ListGoalTransactions returns every transaction linked to the goal.
	ListGoalTransactions(ctx context.Context, goalID int64) ([]core.Transaction, error)

	// AddGoal stores a new savings goal with a zero current amount.
	AddGoal(ctx context.Context, p AddGoalParams) (core.SavingsGoal, error)

	// ListGoals returns every savings goal owned by the user.
	ListGoals(ctx context.Context, userID int64) ([]core.SavingsGoal, error)

	// UpdateGoalAmount overwrites the goal's current amount and returns
	// the updated record, or ErrNotFound for an unknown id.
	UpdateGoalAmount(ctx context.Context, goalID int64, amount decimal.Decimal) (core.SavingsGoal, error)

	Close() error
}
