// Package memory implements the store contract in process memory. It is
// the default backend and the test double for everything above the store.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"finbit/internal/auth"
	"finbit/internal/core"
	"finbit/internal/store"
)

type userRecord struct {
	user         core.User
	passwordHash string
}

type Store struct {
	mu sync.Mutex

	nextUserID int64
	nextTxID   int64
	nextGoalID int64

	users        []userRecord
	transactions []core.Transaction
	goals        []core.SavingsGoal

	now func() time.Time
}

func New() *Store {
	return &Store{now: time.Now}
}

func (s *Store) CreateUser(_ context.Context, username, password string) (core.User, error) {
	if username == "" {
		return core.User{}, core.ErrEmptyUsername
	}
	if password == "" {
		return core.User{}, core.ErrEmptyPassword
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return core.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.users {
		if rec.user.Username == username {
			return core.User{}, fmt.Errorf("%w: %s", store.ErrUsernameTaken, username)
		}
	}

	s.nextUserID++
	user := core.User{
		ID:        s.nextUserID,
		Username:  username,
		CreatedAt: s.now().UTC(),
	}
	s.users = append(s.users, userRecord{user: user, passwordHash: hash})
	return user, nil
}

func (s *Store) AuthenticateUser(_ context.Context, username, password string) (core.User, error) {
	s.mu.Lock()
	rec, ok := s.findUser(username)
	s.mu.Unlock()

	if !ok || !auth.CheckPassword(rec.passwordHash, password) {
		return core.User{}, store.ErrNotFound
	}
	return rec.user, nil
}

func (s *Store) AddTransaction(_ context.Context, p store.AddTransactionParams) (core.Transaction, error) {
	tx := core.Transaction{
		UserID:      p.UserID,
		Description: p.Description,
		Amount:      p.Amount,
		Type:        p.Type,
		GoalID:      p.GoalID,
		Date:        s.now().UTC(),
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextTxID++
	tx.ID = s.nextTxID
	s.transactions = append(s.transactions, tx)
	return tx, nil
}

func (s *Store) ListTransactions(_ context.Context, userID int64) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Transaction
	for _, tx := range s.transactions {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (s *Store) ListGoalTransactions(_ context.Context, goalID int64) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Transaction
	for _, tx := range s.transactions {
		if tx.GoalID != nil && *tx.GoalID == goalID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (s *Store) AddGoal(_ context.Context, p store.AddGoalParams) (core.SavingsGoal, error) {
	goal := core.SavingsGoal{
		UserID:        p.UserID,
		Title:         p.Title,
		TargetAmount:  p.TargetAmount,
		CurrentAmount: decimal.Zero,
		Description:   p.Description,
		Deadline:      p.Deadline,
		CreatedAt:     s.now().UTC(),
	}
	if err := goal.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextGoalID++
	goal.ID = s.nextGoalID
	s.goals = append(s.goals, goal)
	return goal, nil
}

func (s *Store) ListGoals(_ context.Context, userID int64) ([]core.SavingsGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.SavingsGoal
	for _, g := range s.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *Store) UpdateGoalAmount(_ context.Context, goalID int64, amount decimal.Decimal) (core.SavingsGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.goals {
		if s.goals[i].ID == goalID {
			s.goals[i].CurrentAmount = amount
			return s.goals[i], nil
		}
	}
	return core.SavingsGoal{}, store.ErrNotFound
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) findUser(username string) (userRecord, bool) {
	for _, rec := range s.users {
		if rec.user.Username == username {
			return rec, true
		}
	}
	return userRecord{}, false
}
