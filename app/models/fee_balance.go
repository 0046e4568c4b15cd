package models

import "github.com/shopspring/decimal"

// TermBalance holds paid/outstanding amounts for one academic term.
type TermBalance struct {
	TermNumber  int             `json:"term_number"`
	Paid        decimal.Decimal `json:"paid"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// MonthBalance holds paid/outstanding amounts for one billing month
// (monthly transport variant only).
type MonthBalance struct {
	Month       string          `json:"month"` // "2006-01"
	Paid        decimal.Decimal `json:"paid"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// CategoryBalance holds the balance of one fee category. Book fees carry only
// the flat paid/outstanding pair; tuition and transport carry a per-term or
// per-month breakdown.
type CategoryBalance struct {
	Total       decimal.Decimal `json:"total"`
	Paid        decimal.Decimal `json:"paid"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Terms       []TermBalance   `json:"terms,omitempty"`
	Months      []MonthBalance  `json:"months,omitempty"`
}

// FeeBalance is the read-only per-student balance snapshot fetched once per
// staging session. It is never mutated locally.
type FeeBalance struct {
	AdmissionNo string             `json:"admission_no"`
	Context     InstitutionContext `json:"context"`
	Book        CategoryBalance    `json:"book"`
	Tuition     CategoryBalance    `json:"tuition"`
	Transport   CategoryBalance    `json:"transport"`
}

// Category returns the balance bucket for a payment purpose. OtherFee lines
// have no balance backing and return nil.
func (b *FeeBalance) Category(purpose PaymentPurpose) *CategoryBalance {
	switch purpose {
	case BookFee:
		return &b.Book
	case TuitionFee:
		return &b.Tuition
	case TransportFee:
		return &b.Transport
	}
	return nil
}

// NextUnpaidTerm returns the lowest term number with an outstanding amount,
// or 0 when every term of the category is settled.
func (b *FeeBalance) NextUnpaidTerm(purpose PaymentPurpose) int {
	cat := b.Category(purpose)
	if cat == nil {
		return 0
	}
	next := 0
	for _, t := range cat.Terms {
		if t.Outstanding.IsPositive() && (next == 0 || t.TermNumber < next) {
			next = t.TermNumber
		}
	}
	return next
}

// TermOutstanding returns the outstanding amount for a specific term, or zero
// when the term is unknown or already settled.
func (b *FeeBalance) TermOutstanding(purpose PaymentPurpose, term int) decimal.Decimal {
	cat := b.Category(purpose)
	if cat == nil {
		return decimal.Zero
	}
	for _, t := range cat.Terms {
		if t.TermNumber == term {
			return t.Outstanding
		}
	}
	return decimal.Zero
}

// HasTerm reports whether the category's breakdown declares the given term.
func (b *FeeBalance) HasTerm(purpose PaymentPurpose, term int) bool {
	cat := b.Category(purpose)
	if cat == nil {
		return false
	}
	for _, t := range cat.Terms {
		if t.TermNumber == term {
			return true
		}
	}
	return false
}
