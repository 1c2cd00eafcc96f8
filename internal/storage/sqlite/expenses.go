package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/money"
)

// CreateExpense persists an expense and all of its payer and share
// allocations in a single transaction. Either everything commits or
// nothing does.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	var description any
	if expense.Description != "" {
		description = expense.Description
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO expenses (id, group_id, description, amount_cents, currency, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		expense.ID, expense.GroupID, description, expense.Amount.Cents(), expense.Currency, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i := range expense.Payers {
		p := &expense.Payers[i]
		p.ExpenseID = expense.ID
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_payers (expense_id, user_id, amount_cents) VALUES (?, ?, ?)",
			p.ExpenseID, p.UserID, p.Amount.Cents(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert payer allocation: %w", err)
		}
	}

	for i := range expense.Shares {
		sh := &expense.Shares[i]
		sh.ExpenseID = expense.ID
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_shares (expense_id, user_id, amount_cents) VALUES (?, ?, ?)",
			sh.ExpenseID, sh.UserID, sh.Amount.Cents(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert share allocation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListExpensesByGroup returns the group's expenses, newest first, with
// payer and share allocations populated.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, group_id, COALESCE(description, ''), amount_cents, currency, created_at FROM expenses WHERE group_id = ? ORDER BY created_at DESC, id",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	byID := make(map[string]*models.Expense)
	for rows.Next() {
		e := &models.Expense{}
		var amountCents int64
		if err := rows.Scan(&e.ID, &e.GroupID, &e.Description, &amountCents, &e.Currency, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		e.Amount = money.FromCents(amountCents)
		expenses = append(expenses, e)
		byID[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	payers, err := s.ListPayerAllocations(ctx, groupID)
	if err != nil {
		return nil, err
	}
	for _, p := range payers {
		if e, ok := byID[p.ExpenseID]; ok {
			e.Payers = append(e.Payers, p)
		}
	}

	shares, err := s.ListShareAllocations(ctx, groupID)
	if err != nil {
		return nil, err
	}
	for _, sh := range shares {
		if e, ok := byID[sh.ExpenseID]; ok {
			e.Shares = append(e.Shares, sh)
		}
	}

	return expenses, nil
}

// ListPayerAllocations returns every payer allocation across the
// group's expenses.
func (s *SQLiteStore) ListPayerAllocations(ctx context.Context, groupID string) ([]models.PayerAllocation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ep.expense_id, ep.user_id, ep.amount_cents
		 FROM expense_payers ep
		 JOIN expenses e ON e.id = ep.expense_id
		 WHERE e.group_id = ?
		 ORDER BY ep.rowid`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payer allocations: %w", err)
	}
	defer rows.Close()

	var allocations []models.PayerAllocation
	for rows.Next() {
		var a models.PayerAllocation
		var amountCents int64
		if err := rows.Scan(&a.ExpenseID, &a.UserID, &amountCents); err != nil {
			return nil, fmt.Errorf("failed to scan payer allocation: %w", err)
		}
		a.Amount = money.FromCents(amountCents)
		allocations = append(allocations, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payer allocations: %w", err)
	}
	return allocations, nil
}

// ListShareAllocations returns every share allocation across the
// group's expenses.
func (s *SQLiteStore) ListShareAllocations(ctx context.Context, groupID string) ([]models.ShareAllocation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT es.expense_id, es.user_id, es.amount_cents
		 FROM expense_shares es
		 JOIN expenses e ON e.id = es.expense_id
		 WHERE e.group_id = ?
		 ORDER BY es.rowid`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list share allocations: %w", err)
	}
	defer rows.Close()

	var allocations []models.ShareAllocation
	for rows.Next() {
		var a models.ShareAllocation
		var amountCents int64
		if err := rows.Scan(&a.ExpenseID, &a.UserID, &amountCents); err != nil {
			return nil, fmt.Errorf("failed to scan share allocation: %w", err)
		}
		a.Amount = money.FromCents(amountCents)
		allocations = append(allocations, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate share allocations: %w", err)
	}
	return allocations, nil
}
