package models

import "github.com/splitledger/splitledger/internal/money"

// Settlement represents a direct transfer between two group members,
// recorded to reduce the payer's obligation to the payee.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID string

	// PayerID is the debtor making the transfer.
	PayerID string

	// PayeeID is the creditor receiving it.
	PayeeID string

	// Amount is the transfer amount. Always positive.
	Amount money.Money

	// Generated marks settlements produced by debt simplification
	// rather than recorded by a user.
	Generated bool

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64
}
