package calculator

import (
	"testing"

	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/money"
)

func TestComputeBalances(t *testing.T) {
	tests := []struct {
		name        string
		payers      []models.PayerAllocation
		shares      []models.ShareAllocation
		settlements []*models.Settlement
		want        map[string]int64
	}{
		{
			name: "expense paid by one, shared by three",
			payers: []models.PayerAllocation{
				{ExpenseID: "e1", UserID: "alice", Amount: cents(9000)},
			},
			shares: []models.ShareAllocation{
				{ExpenseID: "e1", UserID: "alice", Amount: cents(3000)},
				{ExpenseID: "e1", UserID: "bob", Amount: cents(3000)},
				{ExpenseID: "e1", UserID: "carol", Amount: cents(3000)},
			},
			want: map[string]int64{"alice": 6000, "bob": -3000, "carol": -3000},
		},
		{
			name: "settlement moves value symmetrically",
			payers: []models.PayerAllocation{
				{ExpenseID: "e1", UserID: "alice", Amount: cents(10000)},
			},
			shares: []models.ShareAllocation{
				{ExpenseID: "e1", UserID: "alice", Amount: cents(7000)},
				{ExpenseID: "e1", UserID: "bob", Amount: cents(3000)},
			},
			settlements: []*models.Settlement{
				{GroupID: "g", PayerID: "bob", PayeeID: "alice", Amount: cents(3000)},
			},
			want: map[string]int64{"alice": 0, "bob": 0},
		},
		{
			name: "multiple expenses accumulate",
			payers: []models.PayerAllocation{
				{ExpenseID: "e1", UserID: "alice", Amount: cents(2000)},
				{ExpenseID: "e2", UserID: "bob", Amount: cents(1000)},
			},
			shares: []models.ShareAllocation{
				{ExpenseID: "e1", UserID: "alice", Amount: cents(1000)},
				{ExpenseID: "e1", UserID: "bob", Amount: cents(1000)},
				{ExpenseID: "e2", UserID: "alice", Amount: cents(500)},
				{ExpenseID: "e2", UserID: "bob", Amount: cents(500)},
			},
			want: map[string]int64{"alice": 500, "bob": -500},
		},
		{
			name: "no facts yields empty map",
			want: map[string]int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeBalances(tt.payers, tt.shares, tt.settlements)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d members, want %d: %v", len(got), len(tt.want), got)
			}
			var sum money.Money
			for uid, wantCents := range tt.want {
				if got[uid].Cents() != wantCents {
					t.Errorf("net(%s) = %s, want %d cents", uid, got[uid], wantCents)
				}
			}
			for _, net := range got {
				sum = sum.Add(net)
			}
			if !sum.IsZero() {
				t.Errorf("nets sum to %s, want zero", sum)
			}
		})
	}
}
