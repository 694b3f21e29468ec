package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrForbidden is returned when the acting user's role does not permit the
// requested operation.
var ErrForbidden = errors.New("operation not permitted for this role")

// IntegrityError reports a user-correctable data conflict, such as creating a
// location with a duplicate code or allocating against a deleted project. It
// is never retried automatically.
type IntegrityError struct {
	Detail string
}

func (e *IntegrityError) Error() string { return e.Detail }

// ViolationKind identifies which allocation guardrail a PO line broke.
type ViolationKind string

const (
	ViolationBalanceExceeded      ViolationKind = "BALANCE_EXCEEDED"
	ViolationPriceCeilingExceeded ViolationKind = "PRICE_CEILING_EXCEEDED"
	ViolationRateEditForbidden    ViolationKind = "RATE_EDIT_FORBIDDEN"
)

// Violation is a single failed check with the offending and limiting values,
// so callers can render an actionable message.
type Violation struct {
	Kind      ViolationKind `json:"kind"`
	Requested string        `json:"requested"`
	Limit     string        `json:"limit"`
}

func (v Violation) String() string {
	switch v.Kind {
	case ViolationBalanceExceeded:
		return fmt.Sprintf("requested quantity %s exceeds balance to deliver %s", v.Requested, v.Limit)
	case ViolationPriceCeilingExceeded:
		return fmt.Sprintf("unit price %s exceeds allowed ceiling %s", v.Requested, v.Limit)
	case ViolationRateEditForbidden:
		return fmt.Sprintf("unit price %s above BOQ rate %s requires admin role", v.Requested, v.Limit)
	}
	return string(v.Kind)
}

// LineViolations groups every violation found on one PO line.
type LineViolations struct {
	BOQRef     string      `json:"boq_ref"`
	Violations []Violation `json:"violations"`
}

// ValidationErrors is the batched rejection of a PO allocation: every
// offending line with every failed check. When returned, no ledger state was
// mutated.
type ValidationErrors struct {
	Lines []LineViolations `json:"lines"`
}

func (e *ValidationErrors) Error() string {
	var b strings.Builder
	b.WriteString("allocation rejected:")
	for _, l := range e.Lines {
		for _, v := range l.Violations {
			fmt.Fprintf(&b, " %s: %s;", l.BOQRef, v)
		}
	}
	return strings.TrimSuffix(b.String(), ";")
}

// Add appends a line's violations, ignoring empty sets.
func (e *ValidationErrors) Add(boqRef string, violations []Violation) {
	if len(violations) == 0 {
		return
	}
	e.Lines = append(e.Lines, LineViolations{BOQRef: boqRef, Violations: violations})
}

// Empty reports whether no violation was recorded.
func (e *ValidationErrors) Empty() bool { return len(e.Lines) == 0 }
