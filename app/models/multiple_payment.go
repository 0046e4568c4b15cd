package models

import "github.com/shopspring/decimal"

// MultiplePaymentData is the full staged batch handed to the payment service.
// TotalAmount is always derived from the items, never stored on its own.
type MultiplePaymentData struct {
	StudentID   string        `json:"student_id" validate:"required,uuid"`
	AdmissionNo string        `json:"admission_no" validate:"required"`
	Items       []PaymentItem `json:"items"`
	Remarks     string        `json:"remarks,omitempty"`
}

// Total returns the sum of all staged line amounts.
func (d *MultiplePaymentData) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range d.Items {
		total = total.Add(item.Amount)
	}
	return total
}

// Purposes returns the distinct fee categories touched by the batch.
func (d *MultiplePaymentData) Purposes() []PaymentPurpose {
	seen := make(map[PaymentPurpose]bool)
	var purposes []PaymentPurpose
	for _, item := range d.Items {
		if !seen[item.Purpose] {
			seen[item.Purpose] = true
			purposes = append(purposes, item.Purpose)
		}
	}
	return purposes
}

// ValidationRules is a pure parameter object configuring the payment
// validator. Nil bounds mean the check is skipped.
type ValidationRules struct {
	MinAmount        *decimal.Decimal `json:"min_amount,omitempty"`
	MaxAmount        *decimal.Decimal `json:"max_amount,omitempty"`
	AllowOverpayment bool             `json:"allow_overpayment"`
}
