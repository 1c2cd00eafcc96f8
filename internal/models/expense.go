package models

import "github.com/splitledger/splitledger/internal/money"

// Expense represents a cost incurred by a group. It owns the payer and
// share allocations created atomically with it; together they must both
// sum to Amount.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// Description is an optional human-readable label.
	Description string

	// Amount is the total cost of the expense. Always positive.
	Amount money.Money

	// Currency is the ISO currency code, e.g. "USD".
	Currency string

	// Payers records who put up the money, summing to Amount.
	Payers []PayerAllocation

	// Shares records who owes what, summing to Amount (equal and exact
	// modes; percentage shares may drift by rounding).
	Shares []ShareAllocation

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// PayerAllocation is one member's contribution toward an expense.
type PayerAllocation struct {
	ExpenseID string
	UserID    string
	Amount    money.Money
}

// ShareAllocation is one member's owed portion of an expense.
type ShareAllocation struct {
	ExpenseID string
	UserID    string
	Amount    money.Money
}
