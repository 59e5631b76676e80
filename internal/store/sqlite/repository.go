// Package sqlite implements the store contract on an embedded SQLite
// database. This is the local backend: one database file, three tables,
// schema managed by embedded migrations.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"finbit/internal/auth"
	"finbit/internal/core"
	"finbit/internal/store"
)

// Amounts and dates are stored as text: decimal strings round-trip
// exactly, RFC 3339 timestamps sort lexicographically.
const timeLayout = time.RFC3339Nano

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
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

	createdAt := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)`,
		username, hash, createdAt.Format(timeLayout))
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, fmt.Errorf("%w: %s", store.ErrUsernameTaken, username)
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("create user: last insert id: %w", err)
	}

	slog.InfoContext(ctx, "User created", "id", id, "username", username)

	return core.User{ID: id, Username: username, CreatedAt: createdAt}, nil
}

func (r *Repository) AuthenticateUser(ctx context.Context, username, password string) (core.User, error) {
	var (
		user      core.User
		hash      string
		createdAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`,
		username).Scan(&user.ID, &user.Username, &hash, &createdAt)
	if err == sql.ErrNoRows {
		return core.User{}, store.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("authenticate user: %w", err)
	}

	if !auth.CheckPassword(hash, password) {
		return core.User{}, store.ErrNotFound
	}

	user.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return core.User{}, fmt.Errorf("parse user created_at: %w", err)
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

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, description, amount, type, goal_id, date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		tx.UserID, tx.Description, tx.Amount.String(), string(tx.Type),
		nullableID(tx.GoalID), tx.Date.Format(timeLayout))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}

	tx.ID, err = res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"user_id", tx.UserID,
		"type", tx.Type,
		"amount", tx.Amount.String())

	return tx, nil
}

func (r *Repository) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	// Unsorted on purpose: sort order is a caller concern here.
	return r.queryTransactions(ctx,
		`SELECT id, user_id, description, amount, type, goal_id, date
		 FROM transactions WHERE user_id = ?`, userID)
}

func (r *Repository) ListGoalTransactions(ctx context.Context, goalID int64) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		`SELECT id, user_id, description, amount, type, goal_id, date
		 FROM transactions WHERE goal_id = ?`, goalID)
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

	var deadline sql.NullString
	if goal.Deadline != nil {
		deadline = sql.NullString{String: goal.Deadline.UTC().Format(timeLayout), Valid: true}
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO savings_goals (user_id, title, target_amount, current_amount, description, deadline, created_at)
		 VALUES (?, ?, ?, '0', ?, ?, ?)`,
		goal.UserID, goal.Title, goal.TargetAmount.String(),
		goal.Description, deadline, goal.CreatedAt.Format(timeLayout))
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("add savings goal: %w", err)
	}

	goal.ID, err = res.LastInsertId()
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("add savings goal: last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Savings goal saved",
		"id", goal.ID,
		"user_id", goal.UserID,
		"target", goal.TargetAmount.String())

	return goal, nil
}

func (r *Repository) ListGoals(ctx context.Context, userID int64) ([]core.SavingsGoal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, target_amount, current_amount, description, deadline, created_at
		 FROM savings_goals WHERE user_id = ?`, userID)
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
	res, err := r.db.ExecContext(ctx,
		`UPDATE savings_goals SET current_amount = ? WHERE id = ?`,
		amount.String(), goalID)
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("update goal amount: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("update goal amount: rows affected: %w", err)
	}
	if affected == 0 {
		return core.SavingsGoal{}, store.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, target_amount, current_amount, description, deadline, created_at
		 FROM savings_goals WHERE id = ?`, goalID)
	return scanGoal(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGoal(row rowScanner) (core.SavingsGoal, error) {
	var (
		goal      core.SavingsGoal
		target    string
		current   string
		deadline  sql.NullString
		createdAt string
	)
	err := row.Scan(&goal.ID, &goal.UserID, &goal.Title, &target, &current,
		&goal.Description, &deadline, &createdAt)
	if err == sql.ErrNoRows {
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
	if deadline.Valid {
		t, err := time.Parse(timeLayout, deadline.String)
		if err != nil {
			return core.SavingsGoal{}, fmt.Errorf("parse deadline: %w", err)
		}
		goal.Deadline = &t
	}
	if goal.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return core.SavingsGoal{}, fmt.Errorf("parse created_at: %w", err)
	}
	return goal, nil
}

func (r *Repository) queryTransactions(ctx context.Context, query string, arg any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
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
			goalID sql.NullInt64
			date   string
		)
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Description, &amount, &txType, &goalID, &date); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if tx.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse amount: %w", err)
		}
		tx.Type = core.TransactionType(txType)
		if goalID.Valid {
			id := goalID.Int64
			tx.GoalID = &id
		}
		if tx.Date, err = time.Parse(timeLayout, date); err != nil {
			return nil, fmt.Errorf("parse date: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
