package shared

// Console permissions. Reading any table only needs a signed-in admin; these
// gate the actions and the operational pages.
const (
	PermOperatorsManage = "operators.manage"
	PermCouponsManage   = "coupons.manage"
	PermBookingsCancel  = "bookings.cancel"
	PermAuditView       = "audit.view"
	PermJobsView        = "jobs.view"
)

// ConsoleScopes lists every console permission.
func ConsoleScopes() []string {
	return []string{
		PermOperatorsManage,
		PermCouponsManage,
		PermBookingsCancel,
		PermAuditView,
		PermJobsView,
	}
}
