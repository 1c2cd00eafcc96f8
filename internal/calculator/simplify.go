package calculator

import (
	"container/heap"
	"sort"

	"github.com/splitledger/splitledger/internal/money"
)

// Transfer is one payer→payee payment produced by debt simplification.
type Transfer struct {
	PayerID string
	PayeeID string
	Amount  money.Money
}

// SimplifyDebts computes a set of transfers that zeroes every balance
// without changing any member's net position.
//
// It greedily matches the largest debtor with the largest creditor; the
// transfer is the smaller of the two magnitudes, so at least one party
// is fully settled each step and the loop emits at most
// debtors+creditors−1 transfers. Greedy largest-first matching is a
// heuristic: it keeps the transfer count small but is not guaranteed
// minimal for every balance topology.
//
// Ties between equal magnitudes are broken by member ID ascending, so
// the output is deterministic for a given balance map.
func SimplifyDebts(balances map[string]money.Money) []Transfer {
	var debtors, creditors partyHeap
	for _, uid := range sortedKeys(balances) {
		net := balances[uid]
		switch {
		case net.IsNegative():
			debtors = append(debtors, party{id: uid, magnitude: net.Abs()})
		case net.IsPositive():
			creditors = append(creditors, party{id: uid, magnitude: net})
		}
	}
	heap.Init(&debtors)
	heap.Init(&creditors)

	var transfers []Transfer
	for debtors.Len() > 0 && creditors.Len() > 0 {
		debtor := heap.Pop(&debtors).(party)
		creditor := heap.Pop(&creditors).(party)

		amount := money.Min(debtor.magnitude, creditor.magnitude)
		transfers = append(transfers, Transfer{
			PayerID: debtor.id,
			PayeeID: creditor.id,
			Amount:  amount,
		})

		if rest := debtor.magnitude.Sub(amount); rest.IsPositive() {
			heap.Push(&debtors, party{id: debtor.id, magnitude: rest})
		}
		if rest := creditor.magnitude.Sub(amount); rest.IsPositive() {
			heap.Push(&creditors, party{id: creditor.id, magnitude: rest})
		}
	}

	return transfers
}

type party struct {
	id        string
	magnitude money.Money
}

// partyHeap is a max-heap on magnitude, ties broken by id ascending.
type partyHeap []party

func (h partyHeap) Len() int { return len(h) }

func (h partyHeap) Less(i, j int) bool {
	if h[i].magnitude != h[j].magnitude {
		return h[i].magnitude > h[j].magnitude
	}
	return h[i].id < h[j].id
}

func (h partyHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *partyHeap) Push(x any) { *h = append(*h, x.(party)) }

func (h *partyHeap) Pop() any {
	old := *h
	n := len(old)
	p := old[n-1]
	*h = old[:n-1]
	return p
}

func sortedKeys(m map[string]money.Money) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
