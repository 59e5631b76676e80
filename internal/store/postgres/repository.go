// Package postgres implements the store contract against a remote
// relational backend over a pgx pool.
//
// The backend keeps its own shapes: snake_case columns, NUMERIC amounts
// that arrive as decimal strings, ISO timestamps. Translation to the
// shared domain shapes happens here, in both directions. The schema
// (profiles, transactions, savings_goals) is owned by the hosted
// database; schema.sql in this package is reference DDL only.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"finbit/internal/auth"
	"finbit/internal/core"
	"finbit/internal/store"
)

// Postgres unique_violation error code.
const uniqueViolationCode = "23505"

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(ctx context.Context, url string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Repository{pool: pool}, nil
}

func (r *Repository) Close() error {
	if r.pool != nil {
		r.pool.Close()
	}
	return nil
}

func (r *Repository) CreateUser(ctx context.Context, username, password string) (core.User, error) {
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

	var user core.User
	err = r.pool.QueryRow(ctx,
		`INSERT INTO profiles (username, password_hash)
		 VALUES ($1, $2)
		 RETURNING id, username, created_at`,
		username, hash).Scan(&user.ID, &user.Username, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, fmt.Errorf("%w: %s", store.ErrUsernameTaken, username)
		}
		return core.User{}, fmt.Errorf("create profile: %w", err)
	}

	slog.InfoContext(ctx, "Profile created", "id", user.ID, "username", username)

	return user, nil
}

func (r *Repository) AuthenticateUser(ctx context.Context, username, password string) (core.User, error) {
	var (
		user core.User
		hash string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at FROM profiles WHERE username = $1`,
		username).Scan(&user.ID, &user.Username, &hash, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// No rows is an expected outcome here, not a backend failure.
		return core.User{}, store.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get profile: %w", err)
	}

	if !auth.CheckPassword(hash, password) {
		return core.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *Repository) AddTransaction(ctx context.Context, p store.AddTransactionParams) (core.Transaction, error) {
	tx := core.Transaction{
		UserID:      p.UserID,
		Description: p.Description,
		Amount:      p.Amount,
		Type:        p.Type,
		GoalID:      p.GoalID,
		Date:        time.Now().UTC(),
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	// Amount goes out numeric and comes back as a decimal string.
	var amount string
	err := r.pool.QueryRow(ctx,
		`INSERT INTO transactions (user_id, description, amount, type, goal_id, date)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, amount::text, date`,
		tx.UserID, tx.Description, tx.Amount.String(), string(tx.Type), tx.GoalID, tx.Date).
		Scan(&tx.ID, &amount, &tx.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	if tx.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"user_id", tx.UserID,
		"type", tx.Type,
		"amount", amount)

	return tx, nil
}

func (r *Repository) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	// The backend orders by date descending; the local store leaves
	// ordering to the caller.
	return r.queryTransactions(ctx,
		`SELECT id, user_id, description, amount::text, type, goal_id, date
		 FROM transactions WHERE user_id = $1 ORDER BY date DESC`, userID)
}

func (r *Repository) ListGoalTransactions(ctx context.Context, goalID int64) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		`SELECT id, user_id, description, amount::text, type, goal_id, date
		 FROM transactions WHERE goal_id = $1 ORDER BY date DESC`, goalID)
}

func (r *Repository) AddGoal(ctx context.Context, p store.AddGoalParams) (core.SavingsGoal, error) {
	goal := core.SavingsGoal{
		UserID:        p.UserID,
		Title:         p.Title,
		TargetAmount:  p.TargetAmount,
		CurrentAmount: decimal.Zero,
		Description:   p.Description,
		Deadline:      p.Deadline,
		CreatedAt:     time.Now().UTC(),
	}
	if err := goal.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO savings_goals (user_id, title, target_amount, current_amount, description, deadline)
		 VALUES ($1, $2, $3, 0, $4, $5)
		 RETURNING id, user_id, title, target_amount::text, current_amount::text, description, deadline, created_at`,
		goal.UserID, goal.Title, goal.TargetAmount.String(), goal.Description, goal.Deadline)
	created, err := scanGoal(row)
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("insert savings goal: %w", err)
	}

	slog.InfoContext(ctx, "Savings goal saved",
		"id", created.ID,
		"user_id", created.UserID,
		"target", created.TargetAmount.String())

	return created, nil
}

func (r *Repository) ListGoals(ctx context.Context, userID int64) ([]core.SavingsGoal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, title, target_amount::text, current_amount::text, description, deadline, created_at
		 FROM savings_goals WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list savings goals: %w", err)
	}
	defer rows.Close()

	var goals []core.SavingsGoal
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list savings goals: %w", err)
	}
	return goals, nil
}

func (r *Repository) UpdateGoalAmount(ctx context.Context, goalID int64, amount decimal.Decimal) (core.SavingsGoal, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE savings_goals SET current_amount = $1 WHERE id = $2
		 RETURNING id, user_id, title, target_amount::text, current_amount::text, description, deadline, created_at`,
		amount.String(), goalID)
	goal, err := scanGoal(row)
	if errors.Is(err, store.ErrNotFound) {
		return core.SavingsGoal{}, store.ErrNotFound
	}
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("update goal amount: %w", err)
	}
	return goal, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGoal(row rowScanner) (core.SavingsGoal, error) {
	var (
		goal    core.SavingsGoal
		target  string
		current string
	)
	err := row.Scan(&goal.ID, &goal.UserID, &goal.Title, &target, &current,
		&goal.Description, &goal.Deadline, &goal.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.SavingsGoal{}, store.ErrNotFound
	}
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("scan savings goal: %w", err)
	}

	if goal.TargetAmount, err = decimal.NewFromString(target); err != nil {
		return core.SavingsGoal{}, fmt.Errorf("parse target amount: %w", err)
	}
	if goal.CurrentAmount, err = decimal.NewFromString(current); err != nil {
		return core.SavingsGoal{}, fmt.Errorf("parse current amount: %w", err)
	}
	return goal, nil
}

func (r *Repository) queryTransactions(ctx context.Context, query string, arg any) ([]core.Transaction, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var (
			tx     core.Transaction
			amount string
			txType string
		)
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Description, &amount, &txType, &tx.GoalID, &tx.Date); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if tx.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse amount: %w", err)
		}
		tx.Type = core.TransactionType(txType)
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
