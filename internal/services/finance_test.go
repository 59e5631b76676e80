package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finbit/internal/auth"
	"finbit/internal/core"
	"finbit/internal/store"
	"finbit/internal/store/memory"
)

func newTestService() *FinanceService {
	return NewFinanceService(memory.New(), auth.NewSessions(time.Hour))
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestFinanceService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	if _, err := svc.Register(ctx, "ana", "pw123"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	t.Run("duplicate registration fails", func(t *testing.T) {
		if _, err := svc.Register(ctx, "ana", "other"); !errors.Is(err, store.ErrUsernameTaken) {
			t.Errorf("Register duplicate = %v, want ErrUsernameTaken", err)
		}
	})

	t.Run("wrong password fails login", func(t *testing.T) {
		if _, _, err := svc.Login(ctx, "ana", "wrong"); !errors.Is(err, store.ErrNotAuthenticated) {
			t.Errorf("Login wrong password = %v, want ErrNotAuthenticated", err)
		}
	})

	t.Run("login issues a resolvable token", func(t *testing.T) {
		user, token, err := svc.Login(ctx, "ana", "pw123")
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		if token == "" {
			t.Fatal("Login should issue a token")
		}

		userID, err := svc.Authorize(token)
		if err != nil {
			t.Fatalf("Authorize: %v", err)
		}
		if userID != user.ID {
			t.Errorf("Authorize = %d, want %d", userID, user.ID)
		}
	})

	t.Run("logout revokes the token", func(t *testing.T) {
		_, token, err := svc.Login(ctx, "ana", "pw123")
		if err != nil {
			t.Fatalf("Login: %v", err)
		}

		svc.Logout(token)

		if _, err := svc.Authorize(token); !errors.Is(err, store.ErrNotAuthenticated) {
			t.Errorf("Authorize after logout = %v, want ErrNotAuthenticated", err)
		}
	})
}

func TestFinanceService_Summary(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	user, _ := svc.Register(ctx, "ana", "pw")

	if _, err := svc.AddTransaction(ctx, store.AddTransactionParams{
		UserID: user.ID, Description: "Salary", Amount: dec("1200"), Type: core.Income,
	}); err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	if _, err := svc.AddTransaction(ctx, store.AddTransactionParams{
		UserID: user.ID, Description: "Groceries", Amount: dec("45.5"), Type: core.Expense,
	}); err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}

	summary, err := svc.Summary(ctx, user.ID)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if !summary.Balance.Equal(dec("1154.5")) {
		t.Errorf("Balance = %s, want 1154.5", summary.Balance)
	}
	if !summary.Income.Equal(dec("1200")) {
		t.Errorf("Income = %s, want 1200", summary.Income)
	}
	if !summary.Expenses.Equal(dec("45.5")) {
		t.Errorf("Expenses = %s, want 45.5", summary.Expenses)
	}
}

func TestFinanceService_GoalRecompute(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	user, _ := svc.Register(ctx, "ana", "pw")
	goal, err := svc.AddGoal(ctx, store.AddGoalParams{
		UserID: user.ID, Title: "Vacation", TargetAmount: dec("500"),
	})
	if err != nil {
		t.Fatalf("AddGoal: %v", err)
	}

	t.Run("linked income refreshes the goal automatically", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			if _, err := svc.AddTransaction(ctx, store.AddTransactionParams{
				UserID:      user.ID,
				Description: "Deposit",
				Amount:      dec("50"),
				Type:        core.Income,
				GoalID:      &goal.ID,
			}); err != nil {
				t.Fatalf("AddTransaction: %v", err)
			}
		}

		goals, _ := svc.ListGoals(ctx, user.ID)
		if len(goals) != 1 {
			t.Fatalf("ListGoals = %d goals, want 1", len(goals))
		}
		if !goals[0].CurrentAmount.Equal(dec("100")) {
			t.Errorf("current = %s, want 100", goals[0].CurrentAmount)
		}
		if got := core.GoalProgress(goals[0]); got != 0.2 {
			t.Errorf("progress = %v, want 0.2", got)
		}
	})

	t.Run("linked expense does not count toward the goal", func(t *testing.T) {
		if _, err := svc.AddTransaction(ctx, store.AddTransactionParams{
			UserID:      user.ID,
			Description: "Withdrawal fee",
			Amount:      dec("5"),
			Type:        core.Expense,
			GoalID:      &goal.ID,
		}); err != nil {
			t.Fatalf("AddTransaction: %v", err)
		}

		goals, _ := svc.ListGoals(ctx, user.ID)
		if !goals[0].CurrentAmount.Equal(dec("100")) {
			t.Errorf("current = %s, want unchanged 100", goals[0].CurrentAmount)
		}
	})

	t.Run("explicit refresh matches the manual sum", func(t *testing.T) {
		txs, _ := svc.store.ListGoalTransactions(ctx, goal.ID)
		want := core.LinkedIncomeTotal(txs, goal.ID)

		refreshed, err := svc.RefreshGoalAmount(ctx, goal.ID)
		if err != nil {
			t.Fatalf("RefreshGoalAmount: %v", err)
		}
		if !refreshed.CurrentAmount.Equal(want) {
			t.Errorf("refreshed = %s, want %s", refreshed.CurrentAmount, want)
		}
	})

	t.Run("manual overwrite is idempotent", func(t *testing.T) {
		updated, err := svc.UpdateGoalAmount(ctx, goal.ID, dec("250"))
		if err != nil {
			t.Fatalf("UpdateGoalAmount: %v", err)
		}
		if !updated.CurrentAmount.Equal(dec("250")) {
			t.Errorf("current = %s, want 250", updated.CurrentAmount)
		}

		again, err := svc.UpdateGoalAmount(ctx, goal.ID, dec("250"))
		if err != nil {
			t.Fatalf("UpdateGoalAmount repeat: %v", err)
		}
		if !again.CurrentAmount.Equal(dec("250")) {
			t.Errorf("repeat current = %s, want 250", again.CurrentAmount)
		}
	})

	t.Run("negative overwrite is rejected", func(t *testing.T) {
		if _, err := svc.UpdateGoalAmount(ctx, goal.ID, dec("-1")); !errors.Is(err, core.ErrInvalidAmount) {
			t.Errorf("UpdateGoalAmount(-1) = %v, want ErrInvalidAmount", err)
		}
	})

	t.Run("refresh of unknown goal is not found", func(t *testing.T) {
		if _, err := svc.RefreshGoalAmount(ctx, 999); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("RefreshGoalAmount unknown = %v, want ErrNotFound", err)
		}
	})
}
