// Package rbac gates console actions by the role the backend reports for the
// signed-in admin.
package rbac

import (
	"strings"

	"github.com/transitdesk/console/internal/shared"
)

// Policy maps a role name to the permissions it grants.
type Policy map[string][]string

// DefaultPolicy matches the platform's admin roles.
func DefaultPolicy() Policy {
	return Policy{
		"superadmin": shared.ConsoleScopes(),
		"admin": {
			shared.PermOperatorsManage,
			shared.PermCouponsManage,
			shared.PermBookingsCancel,
			shared.PermAuditView,
		},
		"support": {
			shared.PermBookingsCancel,
		},
	}
}

// Permissions returns the permissions granted to role. Unknown roles get none.
func (p Policy) Permissions(role string) []string {
	return p[strings.ToLower(strings.TrimSpace(role))]
}
