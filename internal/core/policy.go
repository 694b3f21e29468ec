package core

import (
	"os"

	"github.com/shopspring/decimal"
)

// AllocationPolicy carries the domain policy constants used by validation and
// totals computation. They are configuration, not algorithm: adjusting the
// price tolerance or tax split must never require touching the allocation
// code.
type AllocationPolicy struct {
	// OrgPrefix is the fixed organization prefix of every PO number.
	OrgPrefix string
	// PriceTolerancePercent is how far a PO line's unit price may exceed the
	// BOQ reference rate, in percent.
	PriceTolerancePercent decimal.Decimal
	// TaxPercent is the default GST percentage applied to the PO subtotal.
	// It is split evenly between CGST and SGST for display.
	TaxPercent decimal.Decimal
}

// DefaultPolicy returns the organization's standing policy: ZTPL prefix,
// 10% price escalation tolerance, 18% GST.
func DefaultPolicy() AllocationPolicy {
	return AllocationPolicy{
		OrgPrefix:             "ZTPL",
		PriceTolerancePercent: decimal.NewFromInt(10),
		TaxPercent:            decimal.NewFromInt(18),
	}
}

// PolicyFromEnv builds the policy from ORG_PREFIX, PRICE_TOLERANCE_PERCENT
// and DEFAULT_TAX_PERCENT, falling back to DefaultPolicy values for unset or
// unparseable variables.
func PolicyFromEnv() AllocationPolicy {
	p := DefaultPolicy()
	if v := os.Getenv("ORG_PREFIX"); v != "" {
		p.OrgPrefix = v
	}
	if v := os.Getenv("PRICE_TOLERANCE_PERCENT"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil && !d.IsNegative() {
			p.PriceTolerancePercent = d
		}
	}
	if v := os.Getenv("DEFAULT_TAX_PERCENT"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil && !d.IsNegative() {
			p.TaxPercent = d
		}
	}
	return p
}

// PriceCeiling returns the maximum acceptable unit price for a BOQ reference
// rate under this policy.
func (p AllocationPolicy) PriceCeiling(rate decimal.Decimal) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	return rate.Mul(hundred.Add(p.PriceTolerancePercent)).Div(hundred)
}
