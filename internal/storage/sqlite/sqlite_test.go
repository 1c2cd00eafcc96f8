package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/money"
	"github.com/splitledger/splitledger/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createTestUser(t *testing.T, store *SQLiteStore, name string) *models.User {
	t.Helper()
	user := &models.User{Name: name}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create user %s: %v", name, err)
	}
	return user
}

func TestUserRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := &models.User{Name: "Alice", Email: "alice@example.com"}
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.ID == "" {
		t.Fatal("expected ID to be populated")
	}

	got, err := store.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got.Name != "Alice" || got.Email != "alice@example.com" {
		t.Errorf("got %+v, want name Alice, email alice@example.com", got)
	}
}

func TestGetUserNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetUser(context.Background(), "nope")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGroupWithMembers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := createTestUser(t, store, "Alice")
	bob := createTestUser(t, store, "Bob")

	group := &models.Group{Name: "Roommates", Members: []string{alice.ID, bob.ID}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	got, err := store.GetGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if len(got.Members) != 2 {
		t.Fatalf("got %d members, want 2", len(got.Members))
	}

	// Re-adding an existing member must be a no-op.
	if err := store.AddGroupMember(ctx, group.ID, alice.ID); err != nil {
		t.Fatalf("AddGroupMember failed: %v", err)
	}
	got, err = store.GetGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if len(got.Members) != 2 {
		t.Errorf("got %d members after duplicate add, want 2", len(got.Members))
	}

	if _, err := store.GetGroup(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing group, got %v", err)
	}
}

func TestCreateExpenseWithAllocations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := createTestUser(t, store, "Alice")
	bob := createTestUser(t, store, "Bob")
	group := &models.Group{Name: "Trip", Members: []string{alice.ID, bob.ID}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	expense := &models.Expense{
		GroupID:     group.ID,
		Description: "Dinner",
		Amount:      money.FromCents(10000),
		Currency:    "USD",
		Payers: []models.PayerAllocation{
			{UserID: alice.ID, Amount: money.FromCents(10000)},
		},
		Shares: []models.ShareAllocation{
			{UserID: alice.ID, Amount: money.FromCents(7000)},
			{UserID: bob.ID, Amount: money.FromCents(3000)},
		},
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	if expense.ID == "" {
		t.Fatal("expected expense ID to be populated")
	}

	payers, err := store.ListPayerAllocations(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListPayerAllocations failed: %v", err)
	}
	if len(payers) != 1 || payers[0].Amount.Cents() != 10000 {
		t.Errorf("payers = %+v, want one allocation of 100.00", payers)
	}

	shares, err := store.ListShareAllocations(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListShareAllocations failed: %v", err)
	}
	if len(shares) != 2 {
		t.Fatalf("got %d shares, want 2", len(shares))
	}
	if shares[0].ExpenseID != expense.ID {
		t.Errorf("share expense id = %s, want %s", shares[0].ExpenseID, expense.ID)
	}

	expenses, err := store.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListExpensesByGroup failed: %v", err)
	}
	if len(expenses) != 1 {
		t.Fatalf("got %d expenses, want 1", len(expenses))
	}
	if expenses[0].Description != "Dinner" || expenses[0].Amount.Cents() != 10000 {
		t.Errorf("expense = %+v", expenses[0])
	}
	if len(expenses[0].Payers) != 1 || len(expenses[0].Shares) != 2 {
		t.Errorf("expense allocations not populated: %+v", expenses[0])
	}
}

func TestSettlementRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := createTestUser(t, store, "Alice")
	bob := createTestUser(t, store, "Bob")
	group := &models.Group{Name: "Trip", Members: []string{alice.ID, bob.ID}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	settlement := &models.Settlement{
		GroupID:   group.ID,
		PayerID:   bob.ID,
		PayeeID:   alice.ID,
		Amount:    money.FromCents(3000),
		Generated: true,
	}
	if err := store.CreateSettlement(ctx, settlement); err != nil {
		t.Fatalf("CreateSettlement failed: %v", err)
	}

	settlements, err := store.ListSettlementsByGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListSettlementsByGroup failed: %v", err)
	}
	if len(settlements) != 1 {
		t.Fatalf("got %d settlements, want 1", len(settlements))
	}
	got := settlements[0]
	if got.PayerID != bob.ID || got.PayeeID != alice.ID || got.Amount.Cents() != 3000 || !got.Generated {
		t.Errorf("settlement = %+v", got)
	}
}
