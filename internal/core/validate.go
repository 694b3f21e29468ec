package core

import "github.com/shopspring/decimal"

// ValidateLine checks one proposed PO line against the item's current ledger
// snapshot and the allocation policy. Both checks run independently so a line
// that is over balance AND over the price ceiling reports both violations in
// one pass.
//
// A zero requested quantity means "not ordered this time" and is always
// valid; both checks are skipped. A quantity exactly equal to the remaining
// balance passes, as does a unit price exactly equal to rate × (1 +
// tolerance/100).
func ValidateLine(snap ItemSnapshot, qty, unitPrice decimal.Decimal, policy AllocationPolicy) []Violation {
	if qty.IsZero() {
		return nil
	}

	var violations []Violation

	if qty.GreaterThan(snap.Balance) {
		violations = append(violations, Violation{
			Kind:      ViolationBalanceExceeded,
			Requested: qty.StringFixed(2),
			Limit:     snap.Balance.StringFixed(2),
		})
	}

	ceiling := policy.PriceCeiling(snap.Rate)
	if unitPrice.GreaterThan(ceiling) {
		violations = append(violations, Violation{
			Kind:      ViolationPriceCeilingExceeded,
			Requested: unitPrice.StringFixed(2),
			Limit:     ceiling.StringFixed(2),
		})
	}

	return violations
}
