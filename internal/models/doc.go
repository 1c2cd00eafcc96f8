// Package models defines the core domain models for splitledger.
//
// # Facts
//
// Balances are never stored. They are derived from an append-only
// stream of facts:
//   - Expense: a cost incurred by the group, with payer and share
//     allocations created atomically alongside it
//   - Settlement: a direct payer→payee transfer, either user-initiated
//     or generated by debt simplification
//
// Facts are immutable once created; corrections are modeled as new
// facts, never as updates or deletes.
//
// # Identity
//
// Users and groups carry UUID string identifiers. Members referenced by
// any fact must belong to the group the fact belongs to; the service
// layer enforces this before anything is persisted.
package models
