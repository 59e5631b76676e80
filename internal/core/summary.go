// Package core defines the canonical in-memory shapes shared by every
// storage backend, plus the derived values computed from them.
//
// Derived values are pure functions over the transaction set so they can
// never go stale: a goal's current amount is recomputed from its linked
// income transactions rather than kept as an independently mutated field.
package core

import "github.com/shopspring/decimal"

// Summary holds the dashboard totals for one user.
type Summary struct {
	Balance  decimal.Decimal
	Income   decimal.Decimal
	Expenses decimal.Decimal
}

// Summarize computes income, expense and balance totals over a transaction set.
func Summarize(txs []Transaction) Summary {
	s := Summary{
		Balance:  decimal.Zero,
		Income:   decimal.Zero,
		Expenses: decimal.Zero,
	}
	for _, tx := range txs {
		switch tx.Type {
		case Income:
			s.Income = s.Income.Add(tx.Amount)
		case Expense:
			s.Expenses = s.Expenses.Add(tx.Amount)
		}
	}
	s.Balance = s.Income.Sub(s.Expenses)
	return s
}

// LinkedIncomeTotal sums the income transactions linked to the given goal.
// This is the source of truth for a goal's current amount.
func LinkedIncomeTotal(txs []Transaction, goalID int64) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Type != Income {
			continue
		}
		if tx.GoalID != nil && *tx.GoalID == goalID {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// GoalProgress returns current/target clamped to [0, 1]. Clamping is a
// display concern only; the stored current amount may exceed the target.
func GoalProgress(g SavingsGoal) float64 {
	if !g.TargetAmount.IsPositive() {
		return 0
	}
	ratio, _ := g.CurrentAmount.Div(g.TargetAmount).Float64()
	if ratio < 0 {
		return 0
	}
	if ratio > 1 {
		return 1
	}
	return ratio
}
