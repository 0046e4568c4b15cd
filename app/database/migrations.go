package database

import (
	"database/sql"
	"log"
)

// RunMigrations checks and applies necessary schema updates
func RunMigrations(db *sql.DB) error {
	log.Println("Running database migrations...")

	steps := []struct {
		name  string
		apply func(*sql.DB) error
	}{
		{"core tables", createCoreTables},
		{"payment tables", createPaymentTables},
		{"balance context column", addBalanceContextColumn},
	}

	for _, step := range steps {
		if err := step.apply(db); err != nil {
			log.Printf("Migration %q failed: %v", step.name, err)
			return err
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createCoreTables(db *sql.DB) error {
	query := `
		CREATE EXTENSION IF NOT EXISTS "pgcrypto";

		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			is_active BOOLEAN DEFAULT true,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		);

		CREATE TABLE IF NOT EXISTS roles (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name TEXT UNIQUE NOT NULL,
			is_active BOOLEAN DEFAULT true,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		);

		CREATE TABLE IF NOT EXISTS user_roles (
			user_id UUID NOT NULL REFERENCES users(id),
			role_id UUID NOT NULL REFERENCES roles(id),
			PRIMARY KEY (user_id, role_id)
		);

		CREATE TABLE IF NOT EXISTS students (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			admission_no TEXT NOT NULL,
			context VARCHAR(20) NOT NULL,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			is_active BOOLEAN DEFAULT true,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			deleted_at TIMESTAMPTZ,
			UNIQUE (admission_no, context)
		);
	`
	_, err := db.Exec(query)
	return err
}

func createPaymentTables(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS payments (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			student_id UUID NOT NULL REFERENCES students(id),
			admission_no TEXT NOT NULL,
			context VARCHAR(20) NOT NULL,
			total_amount NUMERIC(12,2) NOT NULL CHECK (total_amount > 0),
			reference TEXT UNIQUE NOT NULL,
			remarks TEXT,
			status VARCHAR(20) NOT NULL DEFAULT 'completed',
			recorded_by UUID,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS idx_payments_admission ON payments(admission_no, context);

		CREATE TABLE IF NOT EXISTS payment_lines (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			payment_id UUID NOT NULL REFERENCES payments(id),
			purpose VARCHAR(20) NOT NULL,
			term_number INTEGER,
			payment_month VARCHAR(7),
			custom_purpose_name TEXT,
			amount NUMERIC(12,2) NOT NULL CHECK (amount > 0),
			payment_method VARCHAR(20) NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_payment_lines_payment ON payment_lines(payment_id);

		CREATE TABLE IF NOT EXISTS student_fee_balances (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			student_id UUID NOT NULL REFERENCES students(id),
			context VARCHAR(20) NOT NULL,
			category VARCHAR(20) NOT NULL CHECK (category IN ('book', 'tuition', 'transport')),
			term_number INTEGER,
			payment_month VARCHAR(7),
			total NUMERIC(12,2) NOT NULL DEFAULT 0,
			paid NUMERIC(12,2) NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_fee_balances_student ON student_fee_balances(student_id, context);
	`
	_, err := db.Exec(query)
	return err
}

// Older deployments carried balances without a tenant column.
func addBalanceContextColumn(db *sql.DB) error {
	query := `
		DO $$
		BEGIN
			IF NOT EXISTS (
				SELECT 1
				FROM information_schema.columns
				WHERE table_name = 'student_fee_balances'
				AND column_name = 'context'
			) THEN
				ALTER TABLE student_fee_balances ADD COLUMN context VARCHAR(20) NOT NULL DEFAULT 'school';
				RAISE NOTICE 'Added context column to student_fee_balances';
			END IF;
		END $$;
	`
	_, err := db.Exec(query)
	if err != nil {
		log.Printf("Failed to run migration for balance context column: %v", err)
		return err
	}
	return nil
}
