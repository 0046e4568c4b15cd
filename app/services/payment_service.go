package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"institute-admin/app/database"
	"institute-admin/app/models"
)

// DBPaymentService records validated payment batches. It satisfies the
// submission coordinator's PaymentService interface.
type DBPaymentService struct {
	db      *sql.DB
	context models.InstitutionContext
}

func NewDBPaymentService(db *sql.DB, context models.InstitutionContext) *DBPaymentService {
	return &DBPaymentService{db: db, context: context}
}

// Submit persists the batch in one transaction and returns the receipt
// reference. A context cancellation aborts the transaction and surfaces as an
// error to the coordinator.
func (s *DBPaymentService) Submit(ctx context.Context, data models.MultiplePaymentData) (string, error) {
	reference := newReference()

	total, _ := data.Total().Float64()
	payment := &models.Payment{
		StudentID:   data.StudentID,
		AdmissionNo: data.AdmissionNo,
		Context:     s.context,
		TotalAmount: total,
		Reference:   reference,
	}
	if data.Remarks != "" {
		payment.Remarks = &data.Remarks
	}

	lines := make([]*models.PaymentLine, 0, len(data.Items))
	for i := range data.Items {
		item := &data.Items[i]
		amount, _ := item.Amount.Float64()
		line := &models.PaymentLine{
			Purpose:       item.Purpose,
			TermNumber:    item.TermNumber,
			PaymentMonth:  item.PaymentMonth,
			Amount:        amount,
			PaymentMethod: item.PaymentMethod,
		}
		if item.CustomPurposeName != "" {
			name := item.CustomPurposeName
			line.CustomPurposeName = &name
		}
		lines = append(lines, line)
	}

	if err := database.CreateStudentPayment(ctx, s.db, payment, lines); err != nil {
		return "", err
	}
	return reference, nil
}

func newReference() string {
	return "RCT-" + strings.ToUpper(uuid.New().String()[:8])
}
