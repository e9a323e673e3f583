package fleet

import (
	"fmt"

	"github.com/ukydev/fleet-equipment/internal/models"
)

// FilterVisible returns the records the principal may see, in input order.
// Supervisors see their own city; admins and operators see everything.
// The input slice is never modified.
func FilterVisible(principal models.Principal, records []models.FleetRecord) ([]models.FleetRecord, error) {
	switch principal.Role {
	case models.RoleAdmin, models.RoleOperator:
		visible := make([]models.FleetRecord, len(records))
		copy(visible, records)
		return visible, nil
	case models.RoleSupervisor:
		visible := make([]models.FleetRecord, 0, len(records))
		for _, r := range records {
			if r.City == principal.City {
				visible = append(visible, r)
			}
		}
		return visible, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, principal.Role)
	}
}
