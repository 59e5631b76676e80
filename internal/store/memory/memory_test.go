package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"finbit/internal/core"
	"finbit/internal/store"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestStore_CreateAndAuthenticateUser(t *testing.T) {
	ctx := context.Background()
	s := New()

	user, err := s.CreateUser(ctx, "ana", "pw123")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.ID == 0 {
		t.Error("CreateUser should assign an id")
	}

	t.Run("duplicate username fails", func(t *testing.T) {
		_, err := s.CreateUser(ctx, "ana", "other")
		if !errors.Is(err, store.ErrUsernameTaken) {
			t.Errorf("CreateUser duplicate = %v, want ErrUsernameTaken", err)
		}
	})

	t.Run("wrong password is not found", func(t *testing.T) {
		_, err := s.AuthenticateUser(ctx, "ana", "wrong")
		if !errors.Is(err, store.ErrNotFound) {
			t.Errorf("AuthenticateUser wrong password = %v, want ErrNotFound", err)
		}
	})

	t.Run("unknown username is not found", func(t *testing.T) {
		_, err := s.AuthenticateUser(ctx, "nobody", "pw123")
		if !errors.Is(err, store.ErrNotFound) {
			t.Errorf("AuthenticateUser unknown user = %v, want ErrNotFound", err)
		}
	})

	t.Run("exact match succeeds", func(t *testing.T) {
		got, err := s.AuthenticateUser(ctx, "ana", "pw123")
		if err != nil {
			t.Fatalf("AuthenticateUser: %v", err)
		}
		if got.ID != user.ID || got.Username != "ana" {
			t.Errorf("AuthenticateUser = %+v, want id %d username ana", got, user.ID)
		}
	})
}

func TestStore_Transactions(t *testing.T) {
	ctx := context.Background()
	s := New()

	ana, _ := s.CreateUser(ctx, "ana", "pw")
	bob, _ := s.CreateUser(ctx, "bob", "pw")

	salary, err := s.AddTransaction(ctx, store.AddTransactionParams{
		UserID:      ana.ID,
		Description: "Salary",
		Amount:      dec("1200"),
		Type:        core.Income,
	})
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	if salary.Date.IsZero() {
		t.Error("AddTransaction should stamp the date")
	}

	if _, err := s.AddTransaction(ctx, store.AddTransactionParams{
		UserID:      ana.ID,
		Description: "Groceries",
		Amount:      dec("45.5"),
		Type:        core.Expense,
	}); err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}

	if _, err := s.AddTransaction(ctx, store.AddTransactionParams{
		UserID:      bob.ID,
		Description: "Coffee",
		Amount:      dec("3"),
		Type:        core.Expense,
	}); err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}

	t.Run("listing is scoped to the owner", func(t *testing.T) {
		txs, err := s.ListTransactions(ctx, ana.ID)
		if err != nil {
			t.Fatalf("ListTransactions: %v", err)
		}
		if len(txs) != 2 {
			t.Fatalf("ListTransactions = %d transactions, want 2", len(txs))
		}
		for _, tx := range txs {
			if tx.UserID != ana.ID {
				t.Errorf("transaction %d belongs to user %d, want %d", tx.ID, tx.UserID, ana.ID)
			}
		}
	})

	t.Run("amounts round-trip exactly", func(t *testing.T) {
		txs, _ := s.ListTransactions(ctx, ana.ID)
		s := core.Summarize(txs)
		if !s.Balance.Equal(dec("1154.5")) {
			t.Errorf("balance = %s, want 1154.5", s.Balance)
		}
	})

	t.Run("invalid transaction is rejected", func(t *testing.T) {
		_, err := s.AddTransaction(ctx, store.AddTransactionParams{
			UserID:      ana.ID,
			Description: "Bad",
			Amount:      dec("-1"),
			Type:        core.Expense,
		})
		if !errors.Is(err, core.ErrInvalidAmount) {
			t.Errorf("AddTransaction negative amount = %v, want ErrInvalidAmount", err)
		}
	})
}

func TestStore_Goals(t *testing.T) {
	ctx := context.Background()
	s := New()

	ana, _ := s.CreateUser(ctx, "ana", "pw")

	goal, err := s.AddGoal(ctx, store.AddGoalParams{
		UserID:       ana.ID,
		Title:        "Vacation",
		TargetAmount: dec("500"),
	})
	if err != nil {
		t.Fatalf("AddGoal: %v", err)
	}
	if !goal.CurrentAmount.IsZero() {
		t.Errorf("new goal current amount = %s, want 0", goal.CurrentAmount)
	}

	t.Run("update overwrites and reads back the same value", func(t *testing.T) {
		updated, err := s.UpdateGoalAmount(ctx, goal.ID, dec("100"))
		if err != nil {
			t.Fatalf("UpdateGoalAmount: %v", err)
		}
		if !updated.CurrentAmount.Equal(dec("100")) {
			t.Errorf("current = %s, want 100", updated.CurrentAmount)
		}

		goals, _ := s.ListGoals(ctx, ana.ID)
		if len(goals) != 1 || !goals[0].CurrentAmount.Equal(dec("100")) {
			t.Errorf("ListGoals after update = %+v, want current 100", goals)
		}
		if got := core.GoalProgress(goals[0]); got != 0.2 {
			t.Errorf("progress = %v, want 0.2", got)
		}
	})

	t.Run("unknown goal is not found", func(t *testing.T) {
		_, err := s.UpdateGoalAmount(ctx, 999, dec("1"))
		if !errors.Is(err, store.ErrNotFound) {
			t.Errorf("UpdateGoalAmount unknown = %v, want ErrNotFound", err)
		}
	})

	t.Run("linked transactions are listed by goal", func(t *testing.T) {
		if _, err := s.AddTransaction(ctx, store.AddTransactionParams{
			UserID:      ana.ID,
			Description: "Deposit",
			Amount:      dec("50"),
			Type:        core.Income,
			GoalID:      &goal.ID,
		}); err != nil {
			t.Fatalf("AddTransaction: %v", err)
		}

		txs, err := s.ListGoalTransactions(ctx, goal.ID)
		if err != nil {
			t.Fatalf("ListGoalTransactions: %v", err)
		}
		if len(txs) != 1 || txs[0].Description != "Deposit" {
			t.Errorf("ListGoalTransactions = %+v, want the single deposit", txs)
		}
	})
}
