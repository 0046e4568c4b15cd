package models

// PaymentPurpose defines the fee category a payment line applies to.
type PaymentPurpose string

const (
	BookFee      PaymentPurpose = "book_fee"
	TuitionFee   PaymentPurpose = "tuition_fee"
	TransportFee PaymentPurpose = "transport_fee"
	OtherFee     PaymentPurpose = "other"
)

// PaymentMethod defines how a payment line was settled.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodMobileMoney  PaymentMethod = "mobile_money"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCheque       PaymentMethod = "cheque"
)

// InstitutionContext selects the tenant namespace. Two parallel deployments
// (school and college) share one codebase and one invalidation table.
type InstitutionContext string

const (
	SchoolContext  InstitutionContext = "school"
	CollegeContext InstitutionContext = "college"
)

// PaymentStatus defines the status of a recorded payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)
