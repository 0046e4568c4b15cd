package database

import (
	"context"
	"database/sql"
	"fmt"

	"institute-admin/app/models"
)

// CreateStudentPayment records a payment header and all of its lines in a
// single transaction; generated ids are written back to the passed structs.
func CreateStudentPayment(ctx context.Context, db *sql.DB, payment *models.Payment, lines []*models.PaymentLine) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	queryPayment := `INSERT INTO payments (student_id, admission_no, context, total_amount, reference, remarks, status)
	                 VALUES ($1, $2, $3, $4, $5, $6, 'completed')
					 RETURNING id, created_at`
	err = tx.QueryRowContext(ctx, queryPayment,
		payment.StudentID,
		payment.AdmissionNo,
		string(payment.Context),
		payment.TotalAmount,
		payment.Reference,
		payment.Remarks,
	).Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %v", err)
	}

	queryLine := `INSERT INTO payment_lines (payment_id, purpose, term_number, payment_month, custom_purpose_name, amount, payment_method)
	              VALUES ($1, $2, $3, $4, $5, $6, $7)
				  RETURNING id`
	for _, line := range lines {
		line.PaymentID = payment.ID
		err = tx.QueryRowContext(ctx, queryLine,
			line.PaymentID,
			string(line.Purpose),
			line.TermNumber,
			line.PaymentMonth,
			line.CustomPurposeName,
			line.Amount,
			string(line.PaymentMethod),
		).Scan(&line.ID)
		if err != nil {
			return fmt.Errorf("failed to insert payment line: %v", err)
		}
	}

	return tx.Commit()
}

// GetPaymentByReference retrieves a recorded payment and its lines.
func GetPaymentByReference(db *sql.DB, reference string) (*models.Payment, error) {
	p := &models.Payment{}
	var ctx string
	query := `SELECT id, student_id, admission_no, context, total_amount, reference, remarks, status, created_at, updated_at
	          FROM payments
			  WHERE reference = $1 AND deleted_at IS NULL`
	err := db.QueryRow(query, reference).Scan(
		&p.ID, &p.StudentID, &p.AdmissionNo, &ctx, &p.TotalAmount,
		&p.Reference, &p.Remarks, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Context = models.InstitutionContext(ctx)

	queryLines := `SELECT id, payment_id, purpose, term_number, payment_month, custom_purpose_name, amount, payment_method, created_at
	               FROM payment_lines
				   WHERE payment_id = $1
				   ORDER BY created_at`
	rows, err := db.Query(queryLines, p.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		line := &models.PaymentLine{}
		var purpose, method string
		err := rows.Scan(
			&line.ID, &line.PaymentID, &purpose, &line.TermNumber,
			&line.PaymentMonth, &line.CustomPurposeName, &line.Amount,
			&method, &line.CreatedAt,
		)
		if err != nil {
			continue
		}
		line.Purpose = models.PaymentPurpose(purpose)
		line.PaymentMethod = models.PaymentMethod(method)
		p.Lines = append(p.Lines, line)
	}

	return p, nil
}

// GetStudentPayments retrieves all recorded payments for one admission number.
func GetStudentPayments(db *sql.DB, admissionNo string, context models.InstitutionContext) ([]*models.Payment, error) {
	query := `SELECT id, student_id, admission_no, total_amount, reference, remarks, status, created_at
	          FROM payments
			  WHERE admission_no = $1 AND context = $2 AND deleted_at IS NULL
			  ORDER BY created_at DESC`

	rows, err := db.Query(query, admissionNo, string(context))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p := &models.Payment{Context: context}
		err := rows.Scan(
			&p.ID, &p.StudentID, &p.AdmissionNo, &p.TotalAmount,
			&p.Reference, &p.Remarks, &p.Status, &p.CreatedAt,
		)
		if err != nil {
			continue
		}
		payments = append(payments, p)
	}

	return payments, nil
}
