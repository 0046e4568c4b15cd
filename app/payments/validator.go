package payments

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"institute-admin/app/models"
)

// ValidationResult carries the outcome of a validation pass. Errors are
// user-facing messages for inline display; validation never fails with a Go
// error.
type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors,omitempty"`
}

// ValidateForm runs every rule against the staged batch. It is a pure
// function over the batch, the balance snapshot fetched at session start, and
// the configured rules; it is re-run after every item-list mutation so the
// operator gets live feedback before a submission is attempted.
func ValidateForm(data models.MultiplePaymentData, balances models.FeeBalance, rules models.ValidationRules) ValidationResult {
	var errs []string

	if len(data.Items) == 0 {
		errs = append(errs, "at least one payment line is required")
	}

	for i := range data.Items {
		errs = append(errs, validateItemShape(&data.Items[i])...)
		errs = append(errs, ValidateAmount(data.Items[i].Amount, rules)...)
	}

	errs = append(errs, ValidateDuplicates(data.Items)...)
	errs = append(errs, ValidateTermSequence(data.Items, balances, rules)...)

	if len(data.Items) > 0 && !data.Total().IsPositive() {
		errs = append(errs, "total amount must be greater than zero")
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

// validateItemShape enforces the purpose-keyed field invariants: exactly one
// of term/month is meaningful, and an "other" line needs a name.
func validateItemShape(item *models.PaymentItem) []string {
	var errs []string
	switch item.Purpose {
	case models.TuitionFee:
		if item.TermNumber == nil {
			errs = append(errs, "tuition fee lines require a term number")
		}
		if item.PaymentMonth != nil {
			errs = append(errs, "tuition fee lines cannot carry a payment month")
		}
	case models.TransportFee:
		if item.TermNumber == nil && item.PaymentMonth == nil {
			errs = append(errs, "transport fee lines require a term number or payment month")
		}
		if item.TermNumber != nil && item.PaymentMonth != nil {
			errs = append(errs, fmt.Sprintf("%s: term number and payment month are mutually exclusive", item.Label()))
		}
	case models.OtherFee:
		if item.CustomPurposeName == "" {
			errs = append(errs, "a custom purpose name is required for other fees")
		}
	}
	return errs
}

// ValidateAmount checks a single line amount against the rule bounds.
func ValidateAmount(amount decimal.Decimal, rules models.ValidationRules) []string {
	var errs []string
	if !amount.IsPositive() {
		errs = append(errs, "amount must be greater than zero")
		return errs
	}
	if rules.MinAmount != nil && amount.LessThan(*rules.MinAmount) {
		errs = append(errs, fmt.Sprintf("amount %s is below the minimum of %s", amount, rules.MinAmount))
	}
	if rules.MaxAmount != nil && amount.GreaterThan(*rules.MaxAmount) {
		errs = append(errs, fmt.Sprintf("amount %s exceeds the maximum of %s", amount, rules.MaxAmount))
	}
	return errs
}

// ValidateDuplicates rejects any two lines sharing the composite key
// (purpose, term, month, custom name), regardless of differing amounts.
func ValidateDuplicates(items []models.PaymentItem) []string {
	var errs []string
	seen := make(map[string]bool, len(items))
	for i := range items {
		key := items[i].DuplicateKey()
		if seen[key] {
			dup := &DuplicateItemError{Label: items[i].Label()}
			errs = append(errs, dup.Error())
			continue
		}
		seen[key] = true
	}
	return errs
}

// ValidateTermSequence groups term-sequenced lines by purpose and checks that
// the staged terms are contiguous and start at the next unpaid term implied
// by the balance snapshot: no gaps, no re-paying a settled term, no skipping
// ahead. Unless overpayment is allowed, a line may not exceed the term's
// outstanding amount.
func ValidateTermSequence(items []models.PaymentItem, balances models.FeeBalance, rules models.ValidationRules) []string {
	var errs []string

	groups := make(map[models.PaymentPurpose][]models.PaymentItem)
	for i := range items {
		if items[i].UsesTermSequencing() {
			groups[items[i].Purpose] = append(groups[items[i].Purpose], items[i])
		}
	}

	for purpose, group := range groups {
		sort.Slice(group, func(i, j int) bool { return group[i].Term() < group[j].Term() })

		next := balances.NextUnpaidTerm(purpose)
		if next == 0 {
			errs = append(errs, fmt.Sprintf("no outstanding %s terms to pay", purpose))
			continue
		}

		expected := next
		for _, item := range group {
			term := item.Term()
			switch {
			case term < next && balances.HasTerm(purpose, term):
				errs = append(errs, fmt.Sprintf("%s term %d is already settled", purpose, term))
			case !balances.HasTerm(purpose, term):
				errs = append(errs, fmt.Sprintf("%s term %d is not part of the fee structure", purpose, term))
			case term > expected:
				errs = append(errs, fmt.Sprintf("%s term %d cannot be paid before term %d", purpose, term, expected))
			case term == expected:
				if !rules.AllowOverpayment {
					outstanding := balances.TermOutstanding(purpose, term)
					if item.Amount.GreaterThan(outstanding) {
						errs = append(errs, fmt.Sprintf("%s term %d payment %s exceeds outstanding balance %s",
							purpose, term, item.Amount, outstanding))
					}
				}
				expected++
			}
			// duplicate terms (term == expected-1) fall through; the
			// duplicate check reports those.
		}
	}

	return errs
}
