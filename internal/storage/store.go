// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/splitledger/splitledger/internal/models"
)

// ErrNotFound is wrapped by store errors when a referenced entity does
// not exist. Callers test with errors.Is.
var ErrNotFound = errors.New("not found")

// Store defines the repository interface the core operates against.
// Expenses and settlements are append-only facts: there are no update
// or delete operations on them. This abstraction allows swapping
// storage backends (SQLite, PostgreSQL, etc.) without changing the
// service layer.
type Store interface {
	// CreateUser persists a new user. The ID field will be populated.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUser retrieves a user by ID, or an ErrNotFound-wrapping error.
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// CreateGroup persists a new group. The ID field will be populated.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its member list, or an
	// ErrNotFound-wrapping error.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// AddGroupMember adds a user to a group. Adding an existing member
	// is a no-op.
	AddGroupMember(ctx context.Context, groupID, userID string) error

	// CreateExpense persists an expense together with all its payer and
	// share allocations in one transaction.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// ListExpensesByGroup returns the group's expenses, newest first,
	// with allocations populated.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// ListPayerAllocations returns every payer allocation across the
	// group's expenses.
	ListPayerAllocations(ctx context.Context, groupID string) ([]models.PayerAllocation, error)

	// ListShareAllocations returns every share allocation across the
	// group's expenses.
	ListShareAllocations(ctx context.Context, groupID string) ([]models.ShareAllocation, error)

	// CreateSettlement persists a settlement fact.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// ListSettlementsByGroup returns the group's settlements, newest
	// first.
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)

	// Close releases any resources held by the store.
	Close() error
}
