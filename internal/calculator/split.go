package calculator

import (
	"fmt"

	"github.com/splitledger/splitledger/internal/money"
)

// SplitType selects the policy for dividing an expense into shares.
type SplitType string

const (
	SplitTypeEqual      SplitType = "equal"
	SplitTypeExact      SplitType = "exact"
	SplitTypePercentage SplitType = "percentage"
)

// Allocation pairs a user with an amount, used for both exact splits
// and payer contributions.
type Allocation struct {
	UserID string
	Amount money.Money
}

// SplitSpec is a tagged variant describing how an expense should be
// divided. Exactly one of Users, Splits or Percentages is consulted,
// depending on Type.
type SplitSpec struct {
	Type        SplitType
	Users       []string                 // equal: participants
	Splits      []Allocation             // exact: verbatim shares
	Percentages map[string]money.Percent // percentage: user -> pct
}

// ComputeShares divides amount among group members according to the
// spec. It validates the spec fully before computing anything.
//
// Equal mode rounds the base share half-up and then distributes the
// leftover cents one by one in participant order, so the shares always
// sum to amount exactly. Percentage mode rounds each share half-up with
// no redistribution; the rounded shares may drift from amount by a few
// cents, matching the recorded allocations.
func ComputeShares(amount money.Money, spec SplitSpec, members []string) (map[string]money.Money, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("expense amount must be positive")
	}

	memberSet := make(map[string]bool, len(members))
	for _, m := range members {
		memberSet[m] = true
	}

	switch spec.Type {
	case SplitTypeEqual:
		return equalShares(amount, spec.Users, memberSet)
	case SplitTypeExact:
		return exactShares(amount, spec.Splits, memberSet)
	case SplitTypePercentage:
		return percentageShares(amount, spec.Percentages, memberSet)
	default:
		return nil, fmt.Errorf("unknown split type %q", spec.Type)
	}
}

func equalShares(amount money.Money, users []string, memberSet map[string]bool) (map[string]money.Money, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("equal split requires users")
	}

	// Duplicates collapse to a single share at the first occurrence.
	seen := make(map[string]bool, len(users))
	var unique []string
	for _, uid := range users {
		if !memberSet[uid] {
			return nil, fmt.Errorf("user %s is not a member of the group", uid)
		}
		if !seen[uid] {
			seen[uid] = true
			unique = append(unique, uid)
		}
	}

	n := len(unique)
	base := amount.DivRoundHalfUp(n)
	remainder := amount.Cents() - base.Cents()*int64(n)

	// Half-up rounding leaves between -n/2 and n/2 cents unassigned.
	// Spread them one cent at a time over the leading participants so
	// the shares sum to the amount exactly.
	step := int64(1)
	if remainder < 0 {
		step = -1
		remainder = -remainder
	}

	shares := make(map[string]money.Money, n)
	for i, uid := range unique {
		s := base
		if int64(i) < remainder {
			s = s.Add(money.FromCents(step))
		}
		shares[uid] = s
	}
	return shares, nil
}

func exactShares(amount money.Money, splits []Allocation, memberSet map[string]bool) (map[string]money.Money, error) {
	if len(splits) == 0 {
		return nil, fmt.Errorf("exact split requires splits")
	}

	shares := make(map[string]money.Money, len(splits))
	var sum money.Money
	for _, s := range splits {
		if s.Amount.IsNegative() {
			return nil, fmt.Errorf("negative split not allowed for user %s", s.UserID)
		}
		if !memberSet[s.UserID] {
			return nil, fmt.Errorf("user %s is not a member of the group", s.UserID)
		}
		shares[s.UserID] = shares[s.UserID].Add(s.Amount)
		sum = sum.Add(s.Amount)
	}
	if sum != amount {
		return nil, fmt.Errorf("sum of exact splits (%s) must equal total amount (%s)", sum, amount)
	}
	return shares, nil
}

func percentageShares(amount money.Money, percentages map[string]money.Percent, memberSet map[string]bool) (map[string]money.Money, error) {
	if len(percentages) == 0 {
		return nil, fmt.Errorf("percentage split requires percentages")
	}

	var total money.Percent
	for uid, pct := range percentages {
		if pct < 0 {
			return nil, fmt.Errorf("negative percentage not allowed for user %s", uid)
		}
		if !memberSet[uid] {
			return nil, fmt.Errorf("user %s is not a member of the group", uid)
		}
		total += pct
	}
	if total != money.HundredPercent {
		return nil, fmt.Errorf("percentages must sum to 100.00, got %s", total)
	}

	shares := make(map[string]money.Money, len(percentages))
	for uid, pct := range percentages {
		shares[uid] = amount.ApplyPercent(pct)
	}
	return shares, nil
}

// ValidatePayers checks an expense's payer allocations: every amount
// non-negative, every payer a group member, and the amounts summing to
// the expense total exactly.
func ValidatePayers(amount money.Money, payers []Allocation, members []string) error {
	if len(payers) == 0 {
		return fmt.Errorf("paid_by must not be empty")
	}

	memberSet := make(map[string]bool, len(members))
	for _, m := range members {
		memberSet[m] = true
	}

	var sum money.Money
	for _, p := range payers {
		if p.Amount.IsNegative() {
			return fmt.Errorf("negative payment not allowed for user %s", p.UserID)
		}
		if !memberSet[p.UserID] {
			return fmt.Errorf("user %s is not a member of the group", p.UserID)
		}
		sum = sum.Add(p.Amount)
	}
	if sum != amount {
		return fmt.Errorf("sum of paid_by amounts (%s) must equal total amount (%s)", sum, amount)
	}
	return nil
}
