// Package services orchestrates store operations into the actions the
// API exposes: registration, login, the ledger, the dashboard summary
// and savings-goal upkeep.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"finbit/internal/auth"
	"finbit/internal/core"
	"finbit/internal/store"
)

type FinanceService struct {
	store    store.Store
	sessions *auth.Sessions
}

func NewFinanceService(st store.Store, sessions *auth.Sessions) *FinanceService {
	return &FinanceService{
		store:    st,
		sessions: sessions,
	}
}

// Register creates a user account. The duplicate-username constraint is
// enforced by the store's unique index.
func (s *FinanceService) Register(ctx context.Context, username, password string) (core.User, error) {
	return s.store.CreateUser(ctx, username, password)
}

// Login verifies the credential and issues a session token. Unknown
// usernames and wrong passwords both come back as not-authenticated so
// the response does not reveal which one it was.
func (s *FinanceService) Login(ctx context.Context, username, password string) (core.User, string, error) {
	user, err := s.store.AuthenticateUser(ctx, username, password)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return core.User{}, "", store.ErrNotAuthenticated
		}
		return core.User{}, "", err
	}

	token, err := s.sessions.Issue(user.ID)
	if err != nil {
		return core.User{}, "", fmt.Errorf("issue session: %w", err)
	}
	return user, token, nil
}

// Logout revokes the session token.
func (s *FinanceService) Logout(token string) {
	s.sessions.Revoke(token)
}

// Authorize resolves a session token to the user id behind it.
func (s *FinanceService) Authorize(token string) (int64, error) {
	return s.sessions.Resolve(token)
}

// AddTransaction stores the transaction and, when it is linked to a goal,
// refreshes that goal's current amount from its linked income. The two
// writes are separate round trips; a refresh failure leaves the stored
// transaction in place and is reported in the log, not to the caller.
func (s *FinanceService) AddTransaction(ctx context.Context, p store.AddTransactionParams) (core.Transaction, error) {
	tx, err := s.store.AddTransaction(ctx, p)
	if err != nil {
		return core.Transaction{}, err
	}

	if tx.GoalID != nil {
		if _, err := s.RefreshGoalAmount(ctx, *tx.GoalID); err != nil {
			slog.ErrorContext(ctx, "Failed to refresh linked goal amount",
				"goal_id", *tx.GoalID, "transaction_id", tx.ID, "error", err)
		}
	}

	return tx, nil
}

// ListTransactions returns the user's ledger.
func (s *FinanceService) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, userID)
}

// Summary computes the dashboard totals from the user's ledger.
func (s *FinanceService) Summary(ctx context.Context, userID int64) (core.Summary, error) {
	txs, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return core.Summary{}, err
	}
	return core.Summarize(txs), nil
}

// AddGoal creates a savings goal with a zero current amount.
func (s *FinanceService) AddGoal(ctx context.Context, p store.AddGoalParams) (core.SavingsGoal, error) {
	return s.store.AddGoal(ctx, p)
}

// ListGoals returns the user's savings goals.
func (s *FinanceService) ListGoals(ctx context.Context, userID int64) ([]core.SavingsGoal, error) {
	return s.store.ListGoals(ctx, userID)
}

// UpdateGoalAmount overwrites a goal's current amount.
func (s *FinanceService) UpdateGoalAmount(ctx context.Context, goalID int64, amount decimal.Decimal) (core.SavingsGoal, error) {
	if amount.IsNegative() {
		return core.SavingsGoal{}, core.ErrInvalidAmount
	}
	return s.store.UpdateGoalAmount(ctx, goalID, amount)
}

// RefreshGoalAmount recomputes the goal's current amount as the sum of
// its linked income transactions and overwrites the stored value.
func (s *FinanceService) RefreshGoalAmount(ctx context.Context, goalID int64) (core.SavingsGoal, error) {
	txs, err := s.store.ListGoalTransactions(ctx, goalID)
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("list goal transactions: %w", err)
	}

	total := core.LinkedIncomeTotal(txs, goalID)
	return s.store.UpdateGoalAmount(ctx, goalID, total)
}
