package models

import "time"

// Payment represents a recorded multi-line payment made for a student.
type Payment struct {
	ID          string             `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()" validate:"required,uuid"`
	StudentID   string             `json:"student_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	AdmissionNo string             `json:"admission_no" gorm:"not null;index" validate:"required"`
	Context     InstitutionContext `json:"context" gorm:"not null;type:varchar(20)" validate:"required"`
	TotalAmount float64            `json:"total_amount" gorm:"not null;type:decimal(12,2)" validate:"required,gt=0"`
	Reference   string             `json:"reference" gorm:"uniqueIndex;not null"`
	Remarks     *string            `json:"remarks,omitempty" gorm:"type:text"`
	Status      PaymentStatus      `json:"status" gorm:"not null;default:'completed';index;type:varchar(20)"`
	RecordedBy  *string            `json:"recorded_by,omitempty" gorm:"index;type:uuid"`
	CreatedAt   time.Time          `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time          `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt   *time.Time         `json:"deleted_at,omitempty" gorm:"index"`

	Lines []*PaymentLine `json:"lines,omitempty" gorm:"foreignKey:PaymentID;references:ID"`
}

// PaymentLine is one persisted line of a multi-line payment.
type PaymentLine struct {
	ID                string         `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()" validate:"required,uuid"`
	PaymentID         string         `json:"payment_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	Purpose           PaymentPurpose `json:"purpose" gorm:"not null;type:varchar(20)" validate:"required"`
	TermNumber        *int           `json:"term_number,omitempty"`
	PaymentMonth      *string        `json:"payment_month,omitempty" gorm:"type:varchar(7)"`
	CustomPurposeName *string        `json:"custom_purpose_name,omitempty"`
	Amount            float64        `json:"amount" gorm:"not null;type:decimal(12,2)" validate:"required,gt=0"`
	PaymentMethod     PaymentMethod  `json:"payment_method" gorm:"not null;type:varchar(20)" validate:"required"`
	CreatedAt         time.Time      `json:"created_at" gorm:"autoCreateTime"`

	Payment *Payment `json:"payment,omitempty" gorm:"foreignKey:PaymentID;references:ID"`
}
