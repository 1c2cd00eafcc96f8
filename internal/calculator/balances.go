package calculator

import (
	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/money"
)

// ComputeBalances folds a group's fact stream into net positions.
//
// For each member: net = paid − share + settlements paid − settlements
// received. A positive net means the member is owed money; negative
// means they owe. The map contains every member appearing in at least
// one fact; absence means no facts, which callers treat as zero.
//
// Because every expense's payer sum equals its share sum (equal and
// exact modes) and every settlement moves value between exactly two
// members, the nets sum to zero across the group.
func ComputeBalances(payers []models.PayerAllocation, shares []models.ShareAllocation, settlements []*models.Settlement) map[string]money.Money {
	balances := make(map[string]money.Money)

	for _, p := range payers {
		balances[p.UserID] = balances[p.UserID].Add(p.Amount)
	}
	for _, s := range shares {
		balances[s.UserID] = balances[s.UserID].Sub(s.Amount)
	}
	for _, s := range settlements {
		balances[s.PayerID] = balances[s.PayerID].Add(s.Amount)
		balances[s.PayeeID] = balances[s.PayeeID].Sub(s.Amount)
	}

	return balances
}
