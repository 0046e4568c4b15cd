package services

import (
	"database/sql"

	"institute-admin/app/database"
	"institute-admin/app/models"
)

// BalanceService is the read-only fee balance collaborator. A snapshot is
// queried once per staging session and never mutated locally.
type BalanceService struct {
	db *sql.DB
}

func NewBalanceService(db *sql.DB) *BalanceService {
	return &BalanceService{db: db}
}

// GetBalances returns the per-category outstanding/paid snapshot for one
// student in one institution context.
func (s *BalanceService) GetBalances(admissionNo string, context models.InstitutionContext) (models.FeeBalance, error) {
	return database.GetFeeBalances(s.db, admissionNo, context)
}

// ResolveStudent maps an admission number to the student record id.
func (s *BalanceService) ResolveStudent(admissionNo string, context models.InstitutionContext) (string, error) {
	return database.GetStudentByAdmissionNo(s.db, admissionNo, context)
}
