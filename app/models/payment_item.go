package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PaymentItem represents one staged payment line. Which optional fields are
// meaningful is keyed by Purpose:
//   - TuitionFee: TermNumber
//   - TransportFee: TermNumber, or PaymentMonth for the monthly billing variant
//   - OtherFee: CustomPurposeName
//   - BookFee: neither
type PaymentItem struct {
	ID                string          `json:"id" validate:"required"`
	Purpose           PaymentPurpose  `json:"purpose" validate:"required,oneof=book_fee tuition_fee transport_fee other"`
	TermNumber        *int            `json:"term_number,omitempty"`
	PaymentMonth      *string         `json:"payment_month,omitempty"` // "2006-01"
	CustomPurposeName string          `json:"custom_purpose_name,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	PaymentMethod     PaymentMethod   `json:"payment_method" validate:"required,oneof=cash mobile_money bank_transfer cheque"`
}

// UsesTermSequencing reports whether this line is bound by term ordering:
// tuition always, transport only in its term-based variant.
func (i *PaymentItem) UsesTermSequencing() bool {
	switch i.Purpose {
	case TuitionFee:
		return true
	case TransportFee:
		return i.TermNumber != nil
	}
	return false
}

// Term returns the term number, or 0 when the line carries none.
func (i *PaymentItem) Term() int {
	if i.TermNumber == nil {
		return 0
	}
	return *i.TermNumber
}

// DuplicateKey builds the composite key used to detect duplicate lines.
// Amount and payment method are deliberately excluded.
func (i *PaymentItem) DuplicateKey() string {
	term := ""
	if i.TermNumber != nil {
		term = fmt.Sprintf("%d", *i.TermNumber)
	}
	month := ""
	if i.PaymentMonth != nil {
		month = *i.PaymentMonth
	}
	return fmt.Sprintf("%s|%s|%s|%s", i.Purpose, term, month, i.CustomPurposeName)
}

// Label returns a short human-readable name for error messages.
func (i *PaymentItem) Label() string {
	switch {
	case i.Purpose == OtherFee && i.CustomPurposeName != "":
		return i.CustomPurposeName
	case i.TermNumber != nil:
		return fmt.Sprintf("%s (term %d)", i.Purpose, *i.TermNumber)
	case i.PaymentMonth != nil:
		return fmt.Sprintf("%s (%s)", i.Purpose, *i.PaymentMonth)
	}
	return string(i.Purpose)
}
