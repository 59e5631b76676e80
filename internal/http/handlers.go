package http

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"finbit/internal/core"
	"finbit/internal/store"
)

// Wire shapes are camelCase with epoch-millisecond timestamps, matching
// the local shapes the UI consumes. Amounts are decimal strings so they
// round-trip exactly.

type userDTO struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type transactionDTO struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"userId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	GoalID      *int64          `json:"savingsGoalId,omitempty"`
	Date        int64           `json:"date"`
}

type goalDTO struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"userId"`
	Title         string          `json:"title"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	Description   string          `json:"description,omitempty"`
	Deadline      *int64          `json:"deadline,omitempty"`
	CreatedAt     int64           `json:"createdAt"`
	Progress      float64         `json:"progress"`
}

type summaryDTO struct {
	Balance  decimal.Decimal `json:"balance"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

func toUserDTO(u core.User) userDTO {
	return userDTO{ID: u.ID, Username: u.Username}
}

func toTransactionDTO(tx core.Transaction) transactionDTO {
	return transactionDTO{
		ID:          tx.ID,
		UserID:      tx.UserID,
		Description: tx.Description,
		Amount:      tx.Amount,
		Type:        string(tx.Type),
		GoalID:      tx.GoalID,
		Date:        tx.Date.UnixMilli(),
	}
}

func toGoalDTO(g core.SavingsGoal) goalDTO {
	dto := goalDTO{
		ID:            g.ID,
		UserID:        g.UserID,
		Title:         g.Title,
		TargetAmount:  g.TargetAmount,
		CurrentAmount: g.CurrentAmount,
		Description:   g.Description,
		CreatedAt:     g.CreatedAt.UnixMilli(),
		Progress:      core.GoalProgress(g),
	}
	if g.Deadline != nil {
		ms := g.Deadline.UnixMilli()
		dto.Deadline = &ms
	}
	return dto
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, badRequest(err))
		return
	}

	user, err := s.finance.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserDTO(user))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, badRequest(err))
		return
	}

	user, token, err := s.finance.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":  toUserDTO(user),
		"token": token,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		s.finance.Logout(token)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request, userID int64) {
	summary, err := s.finance.Summary(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summaryDTO{
		Balance:  summary.Balance,
		Income:   summary.Income,
		Expenses: summary.Expenses,
	})
}

type addTransactionRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	GoalID      *int64          `json:"savingsGoalId"`
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request, userID int64) {
	var req addTransactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, badRequest(err))
		return
	}

	tx, err := s.finance.AddTransaction(r.Context(), store.AddTransactionParams{
		UserID:      userID,
		Description: req.Description,
		Amount:      req.Amount,
		Type:        core.TransactionType(req.Type),
		GoalID:      req.GoalID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionDTO(tx))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, userID int64) {
	txs, err := s.finance.ListTransactions(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	dtos := make([]transactionDTO, 0, len(txs))
	for _, tx := range txs {
		dtos = append(dtos, toTransactionDTO(tx))
	}
	writeJSON(w, http.StatusOK, dtos)
}

type addGoalRequest struct {
	Title        string          `json:"title"`
	TargetAmount decimal.Decimal `json:"targetAmount"`
	Description  string          `json:"description"`
	Deadline     *int64          `json:"deadline"`
}

func (s *Server) handleAddGoal(w http.ResponseWriter, r *http.Request, userID int64) {
	var req addGoalRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, badRequest(err))
		return
	}

	var deadline *time.Time
	if req.Deadline != nil {
		t := time.UnixMilli(*req.Deadline).UTC()
		deadline = &t
	}

	goal, err := s.finance.AddGoal(r.Context(), store.AddGoalParams{
		UserID:       userID,
		Title:        req.Title,
		TargetAmount: req.TargetAmount,
		Description:  req.Description,
		Deadline:     deadline,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toGoalDTO(goal))
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request, userID int64) {
	goals, err := s.finance.ListGoals(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	dtos := make([]goalDTO, 0, len(goals))
	for _, g := range goals {
		dtos = append(dtos, toGoalDTO(g))
	}
	writeJSON(w, http.StatusOK, dtos)
}

type updateGoalAmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (s *Server) handleUpdateGoalAmount(w http.ResponseWriter, r *http.Request, _ int64) {
	goalID, err := pathID(r)
	if err != nil {
		writeError(w, r, badRequest(err))
		return
	}

	var req updateGoalAmountRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, badRequest(err))
		return
	}

	goal, err := s.finance.UpdateGoalAmount(r.Context(), goalID, req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toGoalDTO(goal))
}

func (s *Server) handleRefreshGoal(w http.ResponseWriter, r *http.Request, _ int64) {
	goalID, err := pathID(r)
	if err != nil {
		writeError(w, r, badRequest(err))
		return
	}

	goal, err := s.finance.RefreshGoalAmount(r.Context(), goalID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toGoalDTO(goal))
}
