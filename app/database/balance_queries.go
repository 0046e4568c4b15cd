package database

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"institute-admin/app/models"
)

// GetFeeBalances builds the per-category balance snapshot for one student.
// Book fees carry a flat paid/outstanding pair; tuition and transport carry a
// per-term (or per-month, for monthly transport) breakdown.
func GetFeeBalances(db *sql.DB, admissionNo string, context models.InstitutionContext) (models.FeeBalance, error) {
	balance := models.FeeBalance{AdmissionNo: admissionNo, Context: context}

	query := `SELECT b.category, b.term_number, b.payment_month, b.total, b.paid
	          FROM student_fee_balances b
			  JOIN students s ON b.student_id = s.id
			  WHERE s.admission_no = $1 AND b.context = $2 AND s.is_active = true
			  ORDER BY b.category, b.term_number, b.payment_month`

	rows, err := db.Query(query, admissionNo, string(context))
	if err != nil {
		return balance, fmt.Errorf("failed to query fee balances: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var category string
		var termNumber *int
		var paymentMonth *string
		var total, paid float64

		if err := rows.Scan(&category, &termNumber, &paymentMonth, &total, &paid); err != nil {
			continue
		}

		totalDec := decimal.NewFromFloat(total)
		paidDec := decimal.NewFromFloat(paid)
		outstanding := totalDec.Sub(paidDec)

		var cat *models.CategoryBalance
		switch category {
		case "book":
			cat = &balance.Book
		case "tuition":
			cat = &balance.Tuition
		case "transport":
			cat = &balance.Transport
		default:
			continue
		}

		cat.Total = cat.Total.Add(totalDec)
		cat.Paid = cat.Paid.Add(paidDec)
		cat.Outstanding = cat.Outstanding.Add(outstanding)

		switch {
		case termNumber != nil:
			cat.Terms = append(cat.Terms, models.TermBalance{
				TermNumber:  *termNumber,
				Paid:        paidDec,
				Outstanding: outstanding,
			})
		case paymentMonth != nil:
			cat.Months = append(cat.Months, models.MonthBalance{
				Month:       *paymentMonth,
				Paid:        paidDec,
				Outstanding: outstanding,
			})
		}
	}

	return balance, rows.Err()
}

// GetStudentByAdmissionNo resolves a student id for session start.
func GetStudentByAdmissionNo(db *sql.DB, admissionNo string, context models.InstitutionContext) (string, error) {
	var id string
	query := `SELECT id FROM students
	          WHERE admission_no = $1 AND context = $2 AND is_active = true`
	err := db.QueryRow(query, admissionNo, string(context)).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}
