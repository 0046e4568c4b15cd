package invalidation

// Root region keys for list-level cached views.
const (
	RegionStudents     RegionKey = "students"
	RegionEnrollments  RegionKey = "enrollments"
	RegionAttendance   RegionKey = "attendance"
	RegionReservations RegionKey = "reservations"
	RegionAdmissions   RegionKey = "admissions"
	RegionPayments     RegionKey = "payments"
	RegionFees         RegionKey = "fees"
	RegionFeeBalances  RegionKey = "fee-balances"
	RegionEmployees    RegionKey = "employees"
	RegionPayroll      RegionKey = "payroll"
	RegionDashboard    RegionKey = "dashboard"
)

// DefaultRules is the denormalization dependency table. Every edge is
// declared by hand: a region appears under an entity/operation whenever its
// cached view embeds fields copied from that entity (a display name, a
// balance, a roster count). The same table serves both institution contexts.
func DefaultRules() map[Rule][]Descriptor {
	return map[Rule][]Descriptor{
		// Student master data is denormalized into nearly every roster view.
		{EntityStudent, OpCreate}: {
			Static(RegionStudents),
			Static(RegionAdmissions),
			Static(RegionDashboard),
		},
		{EntityStudent, OpUpdate}: {
			ByID("student-detail:%s"),
			ByID("student-balances:%s"),
			Static(RegionStudents),
			Static(RegionEnrollments),
			Static(RegionAttendance),
			Static(RegionReservations),
			Static(RegionAdmissions),
		},
		{EntityStudent, OpDelete}: {
			Static(RegionStudents),
			Static(RegionEnrollments),
			Static(RegionAttendance),
			Static(RegionReservations),
			Static(RegionAdmissions),
			Static(RegionDashboard),
		},

		// A recorded payment changes the student's balance views and the
		// collection dashboards.
		{EntityPayment, OpCreate}: {
			ByIDFunc(func(id string) []RegionKey {
				return []RegionKey{
					RegionKey("student-balances:" + id),
					RegionKey("student-payments:" + id),
				}
			}),
			Static(RegionPayments),
			Static(RegionFees),
			Static(RegionFeeBalances),
			Static(RegionDashboard),
		},
		{EntityPayment, OpUpdate}: {
			ByID("payment-detail:%s"),
			Static(RegionPayments),
			Static(RegionFeeBalances),
			Static(RegionDashboard),
		},
		{EntityPayment, OpDelete}: {
			Static(RegionPayments),
			Static(RegionFees),
			Static(RegionFeeBalances),
			Static(RegionDashboard),
		},

		// Fee structure edits invalidate balance-derived views.
		{EntityFee, OpCreate}: {
			Static(RegionFees),
			Static(RegionFeeBalances),
		},
		{EntityFee, OpUpdate}: {
			ByID("fee-detail:%s"),
			Static(RegionFees),
			Static(RegionFeeBalances),
			Static(RegionDashboard),
		},
		{EntityFee, OpDelete}: {
			Static(RegionFees),
			Static(RegionFeeBalances),
			Static(RegionDashboard),
		},

		// Enrollment moves a student between rosters.
		{EntityEnrollment, OpCreate}: {
			Static(RegionEnrollments),
			Static(RegionStudents),
			Static(RegionDashboard),
		},
		{EntityEnrollment, OpUpdate}: {
			ByID("enrollment-detail:%s"),
			Static(RegionEnrollments),
			Static(RegionStudents),
		},
		{EntityEnrollment, OpDelete}: {
			Static(RegionEnrollments),
			Static(RegionStudents),
			Static(RegionDashboard),
		},

		{EntityReservation, OpCreate}: {
			Static(RegionReservations),
			Static(RegionAdmissions),
		},
		{EntityReservation, OpUpdate}: {
			ByID("reservation-detail:%s"),
			Static(RegionReservations),
			Static(RegionAdmissions),
		},
		{EntityReservation, OpDelete}: {
			Static(RegionReservations),
			Static(RegionAdmissions),
		},

		// Payroll views embed employee names and salary figures.
		{EntityEmployee, OpCreate}: {
			Static(RegionEmployees),
			Static(RegionPayroll),
		},
		{EntityEmployee, OpUpdate}: {
			ByID("employee-detail:%s"),
			Static(RegionEmployees),
			Static(RegionPayroll),
		},
		{EntityEmployee, OpDelete}: {
			Static(RegionEmployees),
			Static(RegionPayroll),
			Static(RegionDashboard),
		},
	}
}

// NewDefaultResolver builds a resolver over the default dependency table.
func NewDefaultResolver() *Resolver {
	return NewResolver(DefaultRules())
}
