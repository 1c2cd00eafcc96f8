package server

import (
	"net/http"

	"github.com/splitledger/splitledger/internal/calculator"
	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/money"
	"github.com/splitledger/splitledger/internal/service"
)

// Amounts travel as two-decimal strings ("90.00") so no client ever
// feeds binary floating point into the ledger.
type allocationPayload struct {
	UserID string `json:"user_id"`
	Amount string `json:"amount"`
}

type createExpenseRequest struct {
	Description string              `json:"description"`
	Amount      string              `json:"amount"`
	Currency    string              `json:"currency"`
	PaidBy      []allocationPayload `json:"paid_by"`
	SplitType   string              `json:"split_type"`
	Users       []string            `json:"users"`
	Splits      []allocationPayload `json:"splits"`
	Percentages map[string]string   `json:"percentages"`
}

type allocationResponse struct {
	UserID string `json:"user_id"`
	Amount string `json:"amount"`
}

type expenseResponse struct {
	ID          string               `json:"id"`
	GroupID     string               `json:"group_id"`
	Description string               `json:"description,omitempty"`
	Amount      string               `json:"amount"`
	Currency    string               `json:"currency"`
	PaidBy      []allocationResponse `json:"paid_by"`
	Shares      []allocationResponse `json:"shares"`
	CreatedAt   int64                `json:"created_at"`
}

type balanceResponse struct {
	UserID string `json:"user_id"`
	Net    string `json:"net"`
}

type settlementResponse struct {
	ID        string `json:"id"`
	GroupID   string `json:"group_id"`
	PayerID   string `json:"payer_id"`
	PayeeID   string `json:"payee_id"`
	Amount    string `json:"amount"`
	Generated bool   `json:"generated"`
	CreatedAt int64  `json:"created_at"`
}

func toExpenseResponse(e *models.Expense) expenseResponse {
	resp := expenseResponse{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Description: e.Description,
		Amount:      e.Amount.String(),
		Currency:    e.Currency,
		PaidBy:      []allocationResponse{},
		Shares:      []allocationResponse{},
		CreatedAt:   e.CreatedAt,
	}
	for _, p := range e.Payers {
		resp.PaidBy = append(resp.PaidBy, allocationResponse{UserID: p.UserID, Amount: p.Amount.String()})
	}
	for _, sh := range e.Shares {
		resp.Shares = append(resp.Shares, allocationResponse{UserID: sh.UserID, Amount: sh.Amount.String()})
	}
	return resp
}

func toBalanceResponses(balances []service.Balance) []balanceResponse {
	out := make([]balanceResponse, 0, len(balances))
	for _, b := range balances {
		out = append(out, balanceResponse{UserID: b.UserID, Net: b.Net.String()})
	}
	return out
}

func toSettlementResponse(s *models.Settlement) settlementResponse {
	return settlementResponse{
		ID:        s.ID,
		GroupID:   s.GroupID,
		PayerID:   s.PayerID,
		PayeeID:   s.PayeeID,
		Amount:    s.Amount.String(),
		Generated: s.Generated,
		CreatedAt: s.CreatedAt,
	}
}

func parseAllocations(w http.ResponseWriter, field string, in []allocationPayload) ([]calculator.Allocation, bool) {
	out := make([]calculator.Allocation, 0, len(in))
	for _, a := range in {
		amount, err := money.Parse(a.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, field+": "+err.Error())
			return nil, false
		}
		out = append(out, calculator.Allocation{UserID: a.UserID, Amount: amount})
	}
	return out, true
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if !decodeBody(w, r, &req) {
		return
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "amount: "+err.Error())
		return
	}
	paidBy, ok := parseAllocations(w, "paid_by", req.PaidBy)
	if !ok {
		return
	}
	splits, ok := parseAllocations(w, "splits", req.Splits)
	if !ok {
		return
	}

	var percentages map[string]money.Percent
	if len(req.Percentages) > 0 {
		percentages = make(map[string]money.Percent, len(req.Percentages))
		for uid, p := range req.Percentages {
			pct, err := money.ParsePercent(p)
			if err != nil {
				writeError(w, http.StatusBadRequest, "percentages: "+err.Error())
				return
			}
			percentages[uid] = pct
		}
	}

	expense, err := s.ledger.CreateExpense(r.Context(), r.PathValue("groupID"), service.ExpenseInput{
		Description: req.Description,
		Amount:      amount,
		Currency:    req.Currency,
		PaidBy:      paidBy,
		Split: calculator.SplitSpec{
			Type:        calculator.SplitType(req.SplitType),
			Users:       req.Users,
			Splits:      splits,
			Percentages: percentages,
		},
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	s.metrics.ExpensesCreated.Inc()
	writeJSON(w, http.StatusCreated, toExpenseResponse(expense))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.ledger.ListExpenses(r.Context(), r.PathValue("groupID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := s.ledger.GetBalances(r.Context(), r.PathValue("groupID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceResponses(balances))
}

func (s *Server) handleSettle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PayerID string `json:"payer_id"`
		PayeeID string `json:"payee_id"`
		Amount  string `json:"amount"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "amount: "+err.Error())
		return
	}

	balances, err := s.ledger.Settle(r.Context(), r.PathValue("groupID"), req.PayerID, req.PayeeID, amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	s.metrics.SettlementsRecorded.Inc()
	writeJSON(w, http.StatusOK, toBalanceResponses(balances))
}

func (s *Server) handleSimplify(w http.ResponseWriter, r *http.Request) {
	settlements, balances, err := s.ledger.Simplify(r.Context(), r.PathValue("groupID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	s.metrics.SimplifyRuns.Inc()
	s.metrics.SimplifyTransfers.Add(float64(len(settlements)))
	s.metrics.SettlementsRecorded.Add(float64(len(settlements)))

	out := struct {
		Settlements []settlementResponse `json:"settlements"`
		Balances    []balanceResponse    `json:"balances"`
	}{
		Settlements: make([]settlementResponse, 0, len(settlements)),
		Balances:    toBalanceResponses(balances),
	}
	for _, st := range settlements {
		out.Settlements = append(out.Settlements, toSettlementResponse(st))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListSettlements(w http.ResponseWriter, r *http.Request) {
	settlements, err := s.ledger.ListSettlements(r.Context(), r.PathValue("groupID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]settlementResponse, 0, len(settlements))
	for _, st := range settlements {
		out = append(out, toSettlementResponse(st))
	}
	writeJSON(w, http.StatusOK, out)
}
