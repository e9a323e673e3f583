package models

// Role represents user roles in the system
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleOperator   Role = "operator"
)

// Actions checked by HasPermission.
const (
	ActionViewRecords   = "view_records"
	ActionCreateRecord  = "create_record"
	ActionViewDashboard = "view_dashboard"
	ActionExportReport  = "export_report"
)

// Principal is the authenticated actor of a session and its city scope.
// Supervisors carry a specific city; admins and operators carry CityGlobal.
type Principal struct {
	Role Role   `json:"role"`
	City City   `json:"city"`
	Name string `json:"name"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt int64     `json:"expires_at"`
	Principal Principal `json:"principal"`
}

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleSupervisor, RoleOperator:
		return true
	default:
		return false
	}
}

// Scope is the label shown on the dashboard: the supervisor's city, or
// Global for everyone else.
func (p *Principal) Scope() City {
	if p.Role == RoleSupervisor {
		return p.City
	}
	return CityGlobal
}

// HasPermission checks if the principal may perform a specific action.
// Operators can read and register records but have no dashboard or export.
func (p *Principal) HasPermission(action string) bool {
	switch p.Role {
	case RoleAdmin:
		return true
	case RoleSupervisor:
		return action == ActionViewRecords || action == ActionCreateRecord ||
			action == ActionViewDashboard || action == ActionExportReport
	case RoleOperator:
		return action == ActionViewRecords || action == ActionCreateRecord
	default:
		return false
	}
}
