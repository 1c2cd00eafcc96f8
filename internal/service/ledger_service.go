package service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/splitledger/splitledger/internal/calculator"
	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/money"
	"github.com/splitledger/splitledger/internal/storage"
)

// DefaultCurrency is used when an expense request omits the code.
const DefaultCurrency = "USD"

// Balance is one member's net position within a group. Positive means
// the member is owed money, negative that they owe.
type Balance struct {
	UserID string
	Net    money.Money
}

// ExpenseInput is the façade-facing request for recording an expense.
type ExpenseInput struct {
	Description string
	Amount      money.Money
	Currency    string
	PaidBy      []calculator.Allocation
	Split       calculator.SplitSpec
}

// LedgerService implements the core ledger operations: recording
// expenses, deriving balances, validating settlements and simplifying
// debts. Expenses and settlements are append-only facts; every
// rejected operation leaves the fact stream unchanged.
type LedgerService struct {
	store storage.Store
	locks *groupLocks
}

// NewLedgerService creates a new LedgerService with the given storage
// backend.
func NewLedgerService(store storage.Store) *LedgerService {
	return &LedgerService{store: store, locks: newGroupLocks()}
}

// CreateExpense validates the split and payer allocations, then
// persists the expense with both allocation sets atomically. The
// shares are computed before anything is written; any validation
// failure means no facts are persisted.
func (s *LedgerService) CreateExpense(ctx context.Context, groupID string, in ExpenseInput) (*models.Expense, error) {
	unlock := s.locks.lock(groupID)
	defer unlock()

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, storeErr("GetGroup", "group", groupID, err)
	}

	shares, err := calculator.ComputeShares(in.Amount, in.Split, group.Members)
	if err != nil {
		return nil, validationErr("%v", err)
	}
	if err := calculator.ValidatePayers(in.Amount, in.PaidBy, group.Members); err != nil {
		return nil, validationErr("%v", err)
	}

	currency := in.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	expense := &models.Expense{
		GroupID:     groupID,
		Description: in.Description,
		Amount:      in.Amount,
		Currency:    currency,
	}
	for _, p := range in.PaidBy {
		expense.Payers = append(expense.Payers, models.PayerAllocation{
			UserID: p.UserID,
			Amount: p.Amount,
		})
	}
	for _, uid := range sortedShareKeys(shares) {
		expense.Shares = append(expense.Shares, models.ShareAllocation{
			UserID: uid,
			Amount: shares[uid],
		})
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, &RepositoryError{Op: "CreateExpense", Err: err}
	}

	slog.Info("expense recorded",
		"group_id", groupID,
		"expense_id", expense.ID,
		"amount", expense.Amount,
		"currency", expense.Currency,
		"split_type", in.Split.Type,
	)
	return expense, nil
}

// GetBalances derives every participating member's net position from
// the group's fact stream. Read-only; safe to call concurrently.
func (s *LedgerService) GetBalances(ctx context.Context, groupID string) ([]Balance, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, storeErr("GetGroup", "group", groupID, err)
	}
	return s.balances(ctx, groupID)
}

// ListExpenses returns the group's expenses, newest first.
func (s *LedgerService) ListExpenses(ctx context.Context, groupID string) ([]*models.Expense, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, storeErr("GetGroup", "group", groupID, err)
	}
	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, &RepositoryError{Op: "ListExpensesByGroup", Err: err}
	}
	return expenses, nil
}

// ListSettlements returns the group's settlements, newest first.
func (s *LedgerService) ListSettlements(ctx context.Context, groupID string) ([]*models.Settlement, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, storeErr("GetGroup", "group", groupID, err)
	}
	settlements, err := s.store.ListSettlementsByGroup(ctx, groupID)
	if err != nil {
		return nil, &RepositoryError{Op: "ListSettlementsByGroup", Err: err}
	}
	return settlements, nil
}

// Settle validates a payer→payee transfer against the balances as of
// this moment and, if acceptable, appends one settlement fact. The
// group lock is held across the whole check-then-append window.
func (s *LedgerService) Settle(ctx context.Context, groupID, payerID, payeeID string, amount money.Money) ([]Balance, error) {
	unlock := s.locks.lock(groupID)
	defer unlock()

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, storeErr("GetGroup", "group", groupID, err)
	}
	if !group.HasMember(payerID) {
		return nil, validationErr("payer %s is not a member of the group", payerID)
	}
	if !group.HasMember(payeeID) {
		return nil, validationErr("payee %s is not a member of the group", payeeID)
	}
	if payerID == payeeID {
		return nil, validationErr("payer and payee must be different members")
	}
	if !amount.IsPositive() {
		return nil, validationErr("settlement amount must be positive")
	}

	nets, err := s.netsByUser(ctx, groupID)
	if err != nil {
		return nil, err
	}
	payerNet := nets[payerID]
	payeeNet := nets[payeeID]

	if !payerNet.IsNegative() {
		return nil, validationErr("payer %s does not owe anything", payerID)
	}
	if !payeeNet.IsPositive() {
		return nil, validationErr("payee %s is not owed anything", payeeID)
	}
	if outstanding := money.Min(payerNet.Abs(), payeeNet); amount > outstanding {
		return nil, validationErr("cannot settle more than outstanding: %s > %s", amount, outstanding)
	}

	settlement := &models.Settlement{
		GroupID: groupID,
		PayerID: payerID,
		PayeeID: payeeID,
		Amount:  amount,
	}
	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		return nil, &RepositoryError{Op: "CreateSettlement", Err: err}
	}

	slog.Info("settlement recorded",
		"group_id", groupID,
		"settlement_id", settlement.ID,
		"payer_id", payerID,
		"payee_id", payeeID,
		"amount", amount,
	)
	return s.balances(ctx, groupID)
}

// Simplify replaces the group's tangled obligations with a greedy
// minimal set of transfers, persisting each as a generated settlement
// fact. Idempotent: on an already-settled group it writes nothing. The
// group lock is held from the balance read through the last append.
func (s *LedgerService) Simplify(ctx context.Context, groupID string) ([]*models.Settlement, []Balance, error) {
	unlock := s.locks.lock(groupID)
	defer unlock()

	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, nil, storeErr("GetGroup", "group", groupID, err)
	}

	nets, err := s.netsByUser(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}

	transfers := calculator.SimplifyDebts(nets)
	settlements := make([]*models.Settlement, 0, len(transfers))
	for _, tr := range transfers {
		settlement := &models.Settlement{
			GroupID:   groupID,
			PayerID:   tr.PayerID,
			PayeeID:   tr.PayeeID,
			Amount:    tr.Amount,
			Generated: true,
		}
		if err := s.store.CreateSettlement(ctx, settlement); err != nil {
			return nil, nil, &RepositoryError{Op: "CreateSettlement", Err: err}
		}
		settlements = append(settlements, settlement)
	}

	slog.Info("debts simplified", "group_id", groupID, "transfers", len(settlements))

	balances, err := s.balances(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	return settlements, balances, nil
}

// netsByUser folds the group's fact stream into net positions.
func (s *LedgerService) netsByUser(ctx context.Context, groupID string) (map[string]money.Money, error) {
	payers, err := s.store.ListPayerAllocations(ctx, groupID)
	if err != nil {
		return nil, &RepositoryError{Op: "ListPayerAllocations", Err: err}
	}
	shares, err := s.store.ListShareAllocations(ctx, groupID)
	if err != nil {
		return nil, &RepositoryError{Op: "ListShareAllocations", Err: err}
	}
	settlements, err := s.store.ListSettlementsByGroup(ctx, groupID)
	if err != nil {
		return nil, &RepositoryError{Op: "ListSettlementsByGroup", Err: err}
	}
	return calculator.ComputeBalances(payers, shares, settlements), nil
}

func (s *LedgerService) balances(ctx context.Context, groupID string) ([]Balance, error) {
	nets, err := s.netsByUser(ctx, groupID)
	if err != nil {
		return nil, err
	}

	balances := make([]Balance, 0, len(nets))
	for uid, net := range nets {
		balances = append(balances, Balance{UserID: uid, Net: net})
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].UserID < balances[j].UserID })
	return balances, nil
}

func sortedShareKeys(shares map[string]money.Money) []string {
	keys := make([]string, 0, len(shares))
	for k := range shares {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
